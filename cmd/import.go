package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/powermap/internal/config"
	"github.com/papapumpkin/powermap/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load roster records into the local SQLite store",
	Long: `Reads records from a file or the live SPARQL endpoint and upserts them into a
local SQLite database. Later runs can use the database as input with
--input roster.db, avoiding repeated endpoint queries.`,
	RunE: runImport,
}

func init() {
	addInputFlags(importCmd)
	importCmd.Flags().String("db", "", "SQLite database path (default roster.db)")
	importCmd.Flags().Bool("reset", false, "delete stored records before importing")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reset, _ := cmd.Flags().GetBool("reset")

	logger := newLogger(cfg.Verbose)
	ctx, cancel := setupSignalContext(logger)
	defer cancel()

	return executeImport(ctx, cmd.OutOrStdout(), cfg, logger, reset)
}

// executeImport copies records from the configured input into cfg.DB.
func executeImport(ctx context.Context, w io.Writer, cfg config.Config, logger *log.Logger, reset bool) error {
	if cfg.DB == "" {
		return errors.New("import: no database path")
	}
	if cfg.Input == cfg.DB {
		return fmt.Errorf("import: input and database are the same file %s", cfg.DB)
	}

	records, err := loadRecords(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := source.OpenStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if reset {
		if err := store.Reset(ctx); err != nil {
			return err
		}
	}
	n, err := store.Import(ctx, records)
	if err != nil {
		return err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	logger.Debug("import complete", "db", cfg.DB, "imported", n, "total", total)
	fmt.Fprintf(w, "imported %d records into %s (%d stored)\n", n, cfg.DB, total)
	return nil
}
