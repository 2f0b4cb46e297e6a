// Package extract finds the base64 encoded HTML part of a raw email message and decodes it.
package extract

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// ErrDecode is returned when the payload is not valid base64 or does not decode to UTF-8 text.
var ErrDecode = errors.New("invalid base64 payload")

// htmlPart matches a base64 encoded UTF-8 text/html part and captures its body up to the
// next boundary marker. Header lines must end in CRLF.
var htmlPart = regexp.MustCompile(`(?s)` +
	`Content-Type: text/html; charset="?utf-8"?\r\n` +
	`(?:Content-Id: .*?\r\n)?` +
	`Content-Transfer-Encoding: base64\r\n` +
	`\r\n` +
	`(.*?)--`)

// HTML returns the still-encoded payload of the first matching HTML part in raw.
// The boolean is false when no part matches or the matched payload is blank.
func HTML(raw []byte) ([]byte, bool) {
	m := htmlPart.FindSubmatch(raw)
	if m == nil {
		return nil, false
	}

	payload := bytes.TrimSpace(m[1])
	if len(payload) == 0 {
		return nil, false
	}
	return payload, true
}

// Decode turns a MIME-wrapped base64 payload into text.
func Decode(payload []byte) (string, error) {
	compact := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			return -1
		}
		return r
	}, payload)

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(compact)))
	n, err := base64.StdEncoding.Decode(decoded, compact)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	decoded = decoded[:n]

	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: decoded content is not valid UTF-8", ErrDecode)
	}
	return string(decoded), nil
}
