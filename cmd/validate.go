package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/powermap/internal/config"
	"github.com/papapumpkin/powermap/internal/source"
)

// errValidation is returned when any validate check fails.
var errValidation = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and that the input is readable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ config: %v\n", err)
			return errValidation
		}
		applyFlagOverrides(cmd, &cfg)
		return validateConfig(cmd.ErrOrStderr(), cfg)
	},
}

func init() {
	addInputFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

// validateConfig prints one line per check and fails if any check fails.
func validateConfig(w io.Writer, cfg config.Config) error {
	ok := true

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "✗ config: %v\n", err)
		ok = false
	} else {
		fmt.Fprintln(w, "✓ config valid")
	}

	kind := source.Kind(cfg.Source)
	if kind == "" || kind == source.KindAuto {
		k, err := source.Detect(cfg.Input)
		if err != nil {
			fmt.Fprintf(w, "✗ input: %v\n", err)
			ok = false
		}
		kind = k
	}
	switch {
	case kind == source.KindSPARQL:
		fmt.Fprintf(w, "✓ input: live endpoint %s\n", cfg.SPARQL.Endpoint)
	case kind != "":
		if _, err := os.Stat(cfg.Input); err != nil {
			fmt.Fprintf(w, "✗ input: %v\n", err)
			ok = false
		} else {
			fmt.Fprintf(w, "✓ input: %s (%s)\n", cfg.Input, kind)
		}
	}

	if cfg.Output != stdoutPath && cfg.Output != "" {
		dir := filepath.Dir(cfg.Output)
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			fmt.Fprintf(w, "✗ output: %s is not a directory\n", dir)
			ok = false
		} else {
			fmt.Fprintf(w, "✓ output: %s\n", cfg.Output)
		}
	}

	if !ok {
		return errValidation
	}
	return nil
}
