package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/powermap/internal/config"
	"github.com/papapumpkin/powermap/internal/payload"
)

// placeholderMessage is shown by the front end when acquisition fails.
const placeholderMessage = "データ取得エラー\n(時間をおいて再実行してください)"

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the influence graph and write the payload",
	Long: `Loads roster records, builds the co-membership graph, scores every actor and
writes the payload in the selected format.

With --placeholder-on-error, a failed acquisition writes a single-node error
payload instead of failing, so a published page never goes blank.`,
	RunE: runBuild,
}

func init() {
	addInputFlags(buildCmd)
	buildCmd.Flags().StringP("format", "f", "", "output format: "+strings.Join(payload.FormatNames(), ", "))
	buildCmd.Flags().StringP("output", "o", "", `output path, "-" for stdout (default data.json)`)
	buildCmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics to this path")
	buildCmd.Flags().Bool("placeholder-on-error", false, "write an error payload when acquisition fails")
	buildCmd.Flags().Bool("brokers", false, "compute betweenness broker scores")
	rootCmd.AddCommand(buildCmd)
}

// buildFlags are the build options that do not live in config.
type buildFlags struct {
	placeholderOnError bool
	brokers            bool
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var bf buildFlags
	bf.placeholderOnError, _ = cmd.Flags().GetBool("placeholder-on-error")
	bf.brokers, _ = cmd.Flags().GetBool("brokers")

	logger := newLogger(cfg.Verbose)
	ctx, cancel := setupSignalContext(logger)
	defer cancel()

	return executeBuild(ctx, cmd.OutOrStdout(), cfg, logger, bf)
}

// executeBuild acquires records, runs the pipeline and writes the result.
func executeBuild(ctx context.Context, w io.Writer, cfg config.Config, logger *log.Logger, bf buildFlags) error {
	records, err := loadRecords(ctx, cfg, logger)
	if err != nil {
		if !bf.placeholderOnError {
			return err
		}
		logger.Error("acquisition failed, writing placeholder payload", "err", err)
		return writePayload(w, cfg, payload.Placeholder(placeholderMessage))
	}

	env, err := newRunEnv(cfg, logger)
	if err != nil {
		return err
	}
	defer env.close()
	env.pipeline.Brokers = bf.brokers || cfg.Format == "summary"

	out, err := env.pipeline.Run(ctx, records)
	if err != nil {
		return err
	}
	if err := writePayload(w, cfg, out.Payload); err != nil {
		return err
	}
	if cfg.Output != stdoutPath {
		logger.Info("payload written", "path", cfg.Output, "format", cfg.Format)
	}
	return nil
}

func writePayload(w io.Writer, cfg config.Config, p *payload.Payload) error {
	content, err := render(cfg.Format, p)
	if err != nil {
		return fmt.Errorf("render %s: %w", cfg.Format, err)
	}
	return writeOutput(w, cfg.Output, content)
}
