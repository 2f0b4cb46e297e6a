package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputPath swaps the extension of input for .html. Names made only of
// leading dots plus one extension (".hidden", "..eml") keep their full name.
func DefaultOutputPath(input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(input)
	if strings.Trim(strings.TrimSuffix(base, ext), ".") == "" {
		ext = ""
	}
	return strings.TrimSuffix(input, ext) + ".html"
}

// WriteFile writes text to path. An existing destination is truncated in place, so
// symlinks are followed and the file mode is kept. A new destination is written to a
// temporary file first and renamed into place, so a failed write leaves nothing behind.
func WriteFile(path, text string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return truncateAndWrite(path, text)
	case errors.Is(err, fs.ErrNotExist):
		return createAndWrite(path, text)
	default:
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
}

func truncateAndWrite(path, text string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if _, err := file.WriteString(text); err != nil {
		_ = file.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrWrite, path, err)
	}
	return nil
}

func createAndWrite(path, text string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.WriteString(text); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrWrite, path, err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrWrite, path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
