package cmd

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/powermap/internal/config"
	"github.com/papapumpkin/powermap/internal/payload"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the most influential actors as a table",
	RunE:  runRank,
}

func init() {
	addInputFlags(rankCmd)
	rankCmd.Flags().IntP("top", "n", payload.DefaultSummaryTop, "number of actors to list (0 for all)")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	top, _ := cmd.Flags().GetInt("top")

	logger := newLogger(cfg.Verbose)
	ctx, cancel := setupSignalContext(logger)
	defer cancel()

	return executeRank(ctx, cmd.OutOrStdout(), cfg, logger, top)
}

// executeRank runs the pipeline with brokers enabled and prints the
// summary table to w.
func executeRank(ctx context.Context, w io.Writer, cfg config.Config, logger *log.Logger, top int) error {
	records, err := loadRecords(ctx, cfg, logger)
	if err != nil {
		return err
	}
	env, err := newRunEnv(cfg, logger)
	if err != nil {
		return err
	}
	defer env.close()
	env.pipeline.Brokers = true

	out, err := env.pipeline.Run(ctx, records)
	if err != nil {
		return err
	}
	table, err := (&payload.SummaryFormat{Top: top}).Render(out.Payload)
	if err != nil {
		return err
	}
	return writeOutput(w, stdoutPath, table)
}
