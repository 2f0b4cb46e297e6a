package extract

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// wrap splits s into lines of at most 76 characters, like MIME encoders do.
func wrap(s string) string {
	var sb strings.Builder
	for len(s) > 76 {
		sb.WriteString(s[:76])
		sb.WriteString("\r\n")
		s = s[76:]
	}
	sb.WriteString(s)
	return sb.String()
}

func buildMessage(html string, extraHeaders ...string) []byte {
	lines := []string{
		"From: sender@example.com",
		"Subject: Newsletter",
		"Content-Type: multipart/alternative; boundary=\"b1\"",
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain body",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
	}
	lines = append(lines, extraHeaders...)
	lines = append(lines,
		"Content-Transfer-Encoding: base64",
		"",
		wrap(base64.StdEncoding.EncodeToString([]byte(html))),
		"--b1--",
		"",
	)
	return []byte(strings.Join(lines, "\r\n"))
}

func TestHTML_RoundTrip(t *testing.T) {
	html := "<html><body><h1>Grüße</h1>" + strings.Repeat("<p>lorem ipsum dolor sit amet</p>", 20) + "</body></html>"

	payload, ok := HTML(buildMessage(html))
	if !ok {
		t.Fatal("expected HTML part to be found")
	}
	if !strings.Contains(string(payload), "\r\n") {
		t.Error("expected wrapped payload to keep its line breaks")
	}

	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != html {
		t.Errorf("Decode() = %q, want %q", got, html)
	}
}

func TestHTML_Scenario(t *testing.T) {
	raw := []byte("Content-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\nPGgxPkhlbGxvPC9oMT4=\r\n--boundary")

	payload, ok := HTML(raw)
	if !ok {
		t.Fatal("expected HTML part to be found")
	}
	if string(payload) != "PGgxPkhlbGxvPC9oMT4=" {
		t.Errorf("payload = %q", payload)
	}

	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "<h1>Hello</h1>" {
		t.Errorf("Decode() = %q, want %q", got, "<h1>Hello</h1>")
	}
}

func TestHTML_HeaderVariants(t *testing.T) {
	body := "\r\nContent-Transfer-Encoding: base64\r\n\r\nPGI+eDwvYj4=\r\n--b"

	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{
			name:   "unquoted charset",
			raw:    "Content-Type: text/html; charset=utf-8" + body,
			wantOK: true,
		},
		{
			name:   "quoted charset",
			raw:    "Content-Type: text/html; charset=\"utf-8\"" + body,
			wantOK: true,
		},
		{
			name:   "content id line",
			raw:    "Content-Type: text/html; charset=utf-8\r\nContent-Id: <part1@example.com>" + body,
			wantOK: true,
		},
		{
			name:   "other charset",
			raw:    "Content-Type: text/html; charset=iso-8859-1" + body,
			wantOK: false,
		},
		{
			name:   "plain text part",
			raw:    "Content-Type: text/plain; charset=utf-8" + body,
			wantOK: false,
		},
		{
			name:   "quoted printable",
			raw:    "Content-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: quoted-printable\r\n\r\n<b>x</b>\r\n--b",
			wantOK: false,
		},
		{
			name:   "bare LF line endings",
			raw:    "Content-Type: text/html; charset=utf-8\nContent-Transfer-Encoding: base64\n\nPGI+eDwvYj4=\n--b",
			wantOK: false,
		},
		{
			name:   "no boundary after payload",
			raw:    "Content-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\nPGI+eDwvYj4=\r\n",
			wantOK: false,
		},
		{
			name:   "blank payload",
			raw:    "Content-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\n \r\n--b",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := HTML([]byte(tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("HTML() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && string(payload) != "PGI+eDwvYj4=" {
				t.Errorf("HTML() payload = %q", payload)
			}
			if !ok && payload != nil {
				t.Errorf("HTML() payload = %q, want nil", payload)
			}
		})
	}
}

func TestHTML_FirstMatchWins(t *testing.T) {
	first := base64.StdEncoding.EncodeToString([]byte("<p>first</p>"))
	second := base64.StdEncoding.EncodeToString([]byte("<p>second</p>"))
	raw := "--b\r\nContent-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\n" + first +
		"\r\n--b\r\nContent-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\n" + second +
		"\r\n--b--\r\n"

	payload, ok := HTML([]byte(raw))
	if !ok {
		t.Fatal("expected HTML part to be found")
	}
	if string(payload) != first {
		t.Errorf("HTML() payload = %q, want %q", payload, first)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "invalid padding character", payload: "PGgxPkhlbGxvPC9oMT4!"},
		{name: "invalid alphabet", payload: "PGgx*khl"},
		{name: "truncated", payload: "PGgxPkhlbG"},
		{name: "not utf-8", payload: base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			if !errors.Is(err, ErrDecode) {
				t.Errorf("Decode() error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecode_ToleratesWhitespace(t *testing.T) {
	got, err := Decode([]byte("PGgxPkhl\r\nbGxvPC9o \t\r\nMT4=\r\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "<h1>Hello</h1>" {
		t.Errorf("Decode() = %q", got)
	}
}
