// Package mbox reads the messages of an mbox archive.
package mbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/dhcgn/eml-to-html/model"
)

// Read opens an mbox archive and calls fn for each message in file order.
// Message line endings are normalised to CRLF. Returning an error from fn stops the scan.
func Read(path string, fn func(idx int, msg model.Message) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	return ReadFrom(file, path, fn)
}

// ReadFrom is Read over an already opened archive; source labels the messages.
func ReadFrom(r io.Reader, source string, fn func(idx int, msg model.Message) error) error {
	reader := mboxlib.NewReader(r)

	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return fmt.Errorf("message %d read: %w", idx, err)
		}
		raw = ToCRLF(raw)

		msg := model.Message{
			ID:     messageID(raw, idx),
			Source: fmt.Sprintf("%s#%d", source, idx+1),
			Raw:    raw,
		}
		if err := fn(idx, msg); err != nil {
			return err
		}
	}
}

// ToCRLF rewrites bare LF line endings as CRLF and leaves existing CRLF untouched.
func ToCRLF(raw []byte) []byte {
	normalized := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(normalized, []byte("\n"), []byte("\r\n"))
}

// messageID returns the Message-Id header without angle brackets, or a positional id
// when the header is missing or the message cannot be parsed.
func messageID(raw []byte, idx int) string {
	fallback := fmt.Sprintf("message-%d", idx+1)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return fallback
	}
	id := strings.Trim(strings.TrimSpace(msg.Header.Get("Message-Id")), " <>")
	if id == "" {
		return fallback
	}
	return id
}
