package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-to-html/config"
	"github.com/dhcgn/eml-to-html/model"
	"github.com/dhcgn/eml-to-html/replace"
	"github.com/dhcgn/eml-to-html/runner"
)

// NewRootCommand builds the eml2html command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "eml2html",
		Short:         "Extract the base64 encoded HTML part of an EML file into an HTML file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConvert,
	}

	config.RegisterPersistentFlags(rootCmd)
	config.RegisterFlags(rootCmd)
	rootCmd.AddCommand(newMboxCommand())

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
// User-facing messages, including errors, are written to stdout.
func Execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(config.ExpandPairArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return runner.ExitOK
	}
	// Help was already printed for a missing --input.
	if !errors.Is(err, config.ErrMissingInput) {
		fmt.Fprintf(stdout, "Error: %v\n", err)
	}
	return runner.ExitCode(err)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, logger, cleanup, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = cleanup()
	}()

	out := cmd.OutOrStdout()
	output := cfg.OutputPath
	if output == "" {
		output = runner.DefaultOutputPath(cfg.InputPath)
	}
	logger.Info("starting eml2html", "input", cfg.InputPath, "output", output)

	replacements, err := loadReplacements(out, cfg, logger)
	if err != nil {
		return err
	}

	r := runner.New(replacements, logger)
	result, err := r.ConvertFile(cfg.InputPath, output)
	logger.Info("conversion finished", r.Summary().LogAttrs()...)
	if err != nil {
		return err
	}

	switch result.Status {
	case model.StatusPartNotFound:
		fmt.Fprintf(out, "No HTML content found in %s.\n", cfg.InputPath)
	case model.StatusConverted:
		fmt.Fprintf(out, "HTML content saved to %s\n", result.Output)
	}
	return nil
}

// prepare loads the config and logger shared by every command. A missing --input
// prints the command help before the error is returned.
func prepare(cmd *cobra.Command) (config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.LoadConfig(cmd)
	if err != nil {
		if errors.Is(err, config.ErrMissingInput) {
			_ = cmd.Help()
		}
		return config.Config{}, nil, nil, err
	}

	logger, cleanup, err := setupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, cleanup, nil
}

// loadReplacements merges the replacements file with the inline -r pairs, inline pairs
// winning. A missing replacements file is reported and skipped.
func loadReplacements(out io.Writer, cfg config.Config, logger *slog.Logger) (*replace.Set, error) {
	set := replace.New()

	if cfg.ReplacementsFile != "" {
		fromFile, err := replace.LoadFile(cfg.ReplacementsFile)
		switch {
		case errors.Is(err, replace.ErrFileNotFound):
			fmt.Fprintf(out, "Error: Replacements file not found: %s\n", cfg.ReplacementsFile)
			logger.Warn("replacements file skipped", "path", cfg.ReplacementsFile, "err", err)
		case err != nil:
			return nil, err
		default:
			logger.Debug("replacements file loaded", "path", cfg.ReplacementsFile, "pairs", fromFile.Len())
			set.Merge(fromFile)
		}
	}

	set.Merge(cfg.InlineReplacements())
	return set, nil
}
