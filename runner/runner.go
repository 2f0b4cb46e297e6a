// Package runner converts email messages into HTML files one at a time.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dhcgn/eml-to-html/extract"
	"github.com/dhcgn/eml-to-html/model"
	"github.com/dhcgn/eml-to-html/replace"
	"github.com/dhcgn/eml-to-html/stats"
)

var (
	ErrSourceNotFound  = errors.New("source file not found")
	ErrDecode          = extract.ErrDecode
	ErrWrite           = errors.New("write output")
	ErrBatchIncomplete = errors.New("some messages failed to convert")
)

// Exit codes reported by the CLI for each failure kind.
const (
	ExitOK         = 0
	ExitUsage      = 1
	ExitNotFound   = 2
	ExitDecode     = 3
	ExitWrite      = 4
	ExitIncomplete = 5
)

// ExitCode maps a conversion error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrSourceNotFound):
		return ExitNotFound
	case errors.Is(err, ErrDecode):
		return ExitDecode
	case errors.Is(err, ErrWrite):
		return ExitWrite
	case errors.Is(err, ErrBatchIncomplete):
		return ExitIncomplete
	default:
		return ExitUsage
	}
}

// Runner converts messages one at a time: load, extract, decode, substitute, write.
type Runner struct {
	replacements *replace.Set
	logger       *slog.Logger
	collector    *stats.Collector
}

func New(replacements *replace.Set, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		replacements: replacements,
		logger:       logger,
		collector:    stats.NewCollector(),
	}
}

func (r *Runner) Summary() stats.Summary {
	return r.collector.Snapshot()
}

// ConvertFile converts the EML file at src into dst.
func (r *Runner) ConvertFile(src, dst string) (model.Result, error) {
	raw, err := Load(src)
	if err != nil {
		r.collector.Record(stats.Event{Type: stats.EventTypeError, Source: src, Err: err})
		return model.Result{Source: src}, err
	}
	return r.Convert(model.Message{ID: src, Source: src, Raw: raw}, dst)
}

// Convert runs the extract, transform and write stages for a loaded message.
// A message without a matching HTML part yields StatusPartNotFound and no output file.
func (r *Runner) Convert(msg model.Message, dst string) (model.Result, error) {
	result := model.Result{Source: msg.Source}
	r.collector.Record(stats.Event{Type: stats.EventTypeScanned, Source: msg.Source})

	payload, ok := extract.HTML(msg.Raw)
	if !ok {
		r.logger.Debug("no html part", "source", msg.Source, "id", msg.ID)
		r.collector.Record(stats.Event{Type: stats.EventTypePartNotFound, Source: msg.Source})
		result.Status = model.StatusPartNotFound
		return result, nil
	}
	r.logger.Debug("html part found", "source", msg.Source, "id", msg.ID, "encodedBytes", len(payload))

	html, err := r.Transform(payload)
	if err != nil {
		r.collector.Record(stats.Event{Type: stats.EventTypeError, Source: msg.Source, Err: err})
		return result, fmt.Errorf("message %s: %w", msg.ID, err)
	}

	if err := WriteFile(dst, html); err != nil {
		r.collector.Record(stats.Event{Type: stats.EventTypeError, Source: msg.Source, Err: err})
		return result, err
	}

	r.collector.Record(stats.Event{Type: stats.EventTypeConverted, Source: msg.Source})
	r.logger.Debug("html written", "source", msg.Source, "output", dst, "bytes", len(html))

	result.Status = model.StatusConverted
	result.Output = dst
	result.Bytes = len(html)
	return result, nil
}

// Transform decodes the payload and then applies the replacement set.
func (r *Runner) Transform(payload []byte) (string, error) {
	html, err := extract.Decode(payload)
	if err != nil {
		return "", err
	}
	if r.replacements.Len() > 0 {
		r.logger.Debug("applying replacements", "count", r.replacements.Len())
		html = r.replacements.Apply(html)
	}
	return html, nil
}

// Load reads the whole source file.
func Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrSourceNotFound, path, err)
	}
	return raw, nil
}
