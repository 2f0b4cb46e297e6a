// Package config reads the command-line flags into a Config.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-to-html/replace"
)

// ErrMissingInput is returned by LoadConfig when --input was not given.
var ErrMissingInput = errors.New("--input is required")

// Config captures all command-line options required to run a conversion.
type Config struct {
	InputPath        string
	OutputPath       string
	OutputDir        string
	Replace          []replace.Pair
	ReplacementsFile string
	LogLevel         string
	LogDir           string
}

// RegisterPersistentFlags attaches the flags shared by every command.
func RegisterPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringArrayP("replace", "r", nil, "Literal pair to replace: -r FIND REPLACE (repeatable, later pairs override earlier ones)")
	flags.String("replacements-file", "", "CSV file of find,replace rows (or a YAML mapping for .yaml/.yml files)")
	flags.String("log-level", "warn", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (logs go to stderr only when empty)")
}

// RegisterFlags attaches the single-file conversion flags to the root command.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path to the EML file")
	flags.StringP("output", "o", "", "Path to the output HTML file (default: input path with .html extension)")
}

// RegisterMboxFlags attaches the batch conversion flags to the mbox command.
func RegisterMboxFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path to the mbox archive")
	flags.String("output-dir", "", "Directory for the HTML files (default: directory of the archive)")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	input, err := flags.GetString("input")
	if err != nil {
		return Config{}, err
	}
	rawPairs, err := flags.GetStringArray("replace")
	if err != nil {
		return Config{}, err
	}
	replacementsFile, err := flags.GetString("replacements-file")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}

	var output, outputDir string
	if flags.Lookup("output") != nil {
		if output, err = flags.GetString("output"); err != nil {
			return Config{}, err
		}
	}
	if flags.Lookup("output-dir") != nil {
		if outputDir, err = flags.GetString("output-dir"); err != nil {
			return Config{}, err
		}
	}

	pairs, err := zipPairs(rawPairs)
	if err != nil {
		return Config{}, err
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Config{
		InputPath:        input,
		OutputPath:       output,
		OutputDir:        outputDir,
		Replace:          pairs,
		ReplacementsFile: replacementsFile,
		LogLevel:         logLevel,
		LogDir:           logDir,
	}
	if cfg.LogDir != "" {
		cfg.LogDir = filepath.Clean(cfg.LogDir)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// InlineReplacements returns the -r pairs as a set, later duplicates winning.
func (c Config) InlineReplacements() *replace.Set {
	set := replace.New()
	for _, p := range c.Replace {
		set.Add(p.Find, p.Replace)
	}
	return set
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InputPath) == "" {
		return ErrMissingInput
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

func zipPairs(values []string) ([]replace.Pair, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("--replace requires two values: FIND REPLACE")
	}
	pairs := make([]replace.Pair, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		pairs = append(pairs, replace.Pair{Find: values[i], Replace: values[i+1]})
	}
	return pairs, nil
}

// ExpandPairArgs rewrites "-r FIND REPLACE" and "--replace FIND REPLACE" into two
// --replace occurrences so the flag parser can read both values. Arguments after a
// bare "--" are left alone.
func ExpandPairArgs(args []string) []string {
	out := make([]string, 0, len(args)+4)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if arg != "-r" && arg != "--replace" {
			out = append(out, arg)
			continue
		}
		if i+2 >= len(args) {
			// Incomplete pair, rejected later by LoadConfig or the flag parser.
			out = append(out, args[i:]...)
			return out
		}
		out = append(out, "--replace="+args[i+1], "--replace="+args[i+2])
		i += 2
	}
	return out
}
