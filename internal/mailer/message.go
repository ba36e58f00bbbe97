// Package mailer packages an exported email as an RFC 5322 message and
// delivers test sends over SMTP.
package mailer

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
)

// Envelope names the sender and recipients of a message.
type Envelope struct {
	From string
	To   []string
}

// BuildMessage returns a single-part text/html message carrying body.
func BuildMessage(env Envelope, subject, body string, now time.Time) ([]byte, error) {
	from, err := mail.ParseAddress(env.From)
	if err != nil {
		return nil, fmt.Errorf("mailer: from address: %w", err)
	}
	to := make([]*mail.Address, 0, len(env.To))
	for _, raw := range env.To {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("mailer: recipient %q: %w", raw, err)
		}
		to = append(to, addr)
	}

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{from})
	if len(to) > 0 {
		h.SetAddressList("To", to)
	}
	h.SetSubject(subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("mailer: message id: %w", err)
	}
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("mailer: create writer: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("mailer: close writer: %w", err)
	}
	return buf.Bytes(), nil
}

func parseBare(raw string) (string, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("mailer: address %q: %w", raw, err)
	}
	return addr.Address, nil
}
