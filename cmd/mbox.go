package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-to-html/config"
	"github.com/dhcgn/eml-to-html/mbox"
	"github.com/dhcgn/eml-to-html/model"
	"github.com/dhcgn/eml-to-html/runner"
)

func newMboxCommand() *cobra.Command {
	mboxCmd := &cobra.Command{
		Use:   "mbox",
		Short: "Convert the HTML part of every message in an mbox archive",
		Args:  cobra.NoArgs,
		RunE:  runMbox,
	}
	config.RegisterMboxFlags(mboxCmd)
	return mboxCmd
}

func runMbox(cmd *cobra.Command, args []string) error {
	cfg, logger, cleanup, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = cleanup()
	}()

	out := cmd.OutOrStdout()
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(cfg.InputPath)
	}
	logger.Info("starting eml2html mbox", "input", cfg.InputPath, "outputDir", outputDir)

	replacements, err := loadReplacements(out, cfg, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", runner.ErrWrite, err)
	}

	base := filepath.Base(cfg.InputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "message"
	}

	r := runner.New(replacements, logger)
	err = mbox.Read(cfg.InputPath, func(idx int, msg model.Message) error {
		dst := filepath.Join(outputDir, fmt.Sprintf("%s-%04d.html", base, idx+1))

		result, err := r.Convert(msg, dst)
		if err != nil {
			// One bad message does not stop the archive.
			fmt.Fprintf(out, "Error: %v\n", err)
			return nil
		}

		switch result.Status {
		case model.StatusPartNotFound:
			fmt.Fprintf(out, "No HTML content found in %s.\n", msg.Source)
		case model.StatusConverted:
			fmt.Fprintf(out, "HTML content saved to %s\n", result.Output)
		}
		return nil
	})

	summary := r.Summary()
	logger.Info("mbox conversion finished", summary.LogAttrs()...)

	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%w: %w", runner.ErrSourceNotFound, err)
		}
		return err
	}

	fmt.Fprintf(out, "Converted %d of %d messages (%d without HTML content, %d failed)\n",
		summary.Converted, summary.Scanned, summary.PartNotFound, summary.Errors)

	if summary.Errors > 0 {
		return fmt.Errorf("%w: %d of %d", runner.ErrBatchIncomplete, summary.Errors, summary.Scanned)
	}
	return nil
}
