package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/starford/mailcraft/internal/apperr"
)

// DefaultFrom is the sender used when none is configured.
const DefaultFrom = "Mailcraft <mailcraft@localhost>"

// Config describes the SMTP relay used for test sends.
type Config struct {
	Address  string // host:port; empty disables sending
	From     string
	Username string
	Password string
}

// Sender delivers exported emails to an SMTP relay.
type Sender struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewSender creates a sender for cfg.
func NewSender(cfg Config, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{cfg: cfg, logger: logger, now: time.Now}
}

// Enabled reports whether a relay is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.Address != ""
}

// Send packages html and delivers it to the recipients.
func (s *Sender) Send(ctx context.Context, to []string, subject, html string) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp relay: %w", apperr.ErrDisabled)
	}
	if len(to) == 0 {
		return fmt.Errorf("mailer: at least one recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	env := Envelope{From: s.from(), To: to}
	msg, err := BuildMessage(env, subject, html, s.now())
	if err != nil {
		return err
	}

	var auth sasl.Client
	if s.cfg.Username != "" {
		auth = sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
	}
	from, rcpts, err := envelopeAddresses(env)
	if err != nil {
		return err
	}
	if err := smtp.SendMail(s.cfg.Address, auth, from, rcpts, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}

	s.logger.Info("test email sent",
		slog.String("relay", s.cfg.Address),
		slog.Int("recipients", len(rcpts)))
	return nil
}

// Package builds the .eml form of html without sending it.
func (s *Sender) Package(subject, html string) ([]byte, error) {
	return BuildMessage(Envelope{From: s.from()}, subject, html, s.now())
}

func (s *Sender) from() string {
	if s.cfg.From == "" {
		return DefaultFrom
	}
	return s.cfg.From
}

func envelopeAddresses(env Envelope) (string, []string, error) {
	from, err := parseBare(env.From)
	if err != nil {
		return "", nil, err
	}
	rcpts := make([]string, 0, len(env.To))
	for _, raw := range env.To {
		addr, err := parseBare(raw)
		if err != nil {
			return "", nil, err
		}
		rcpts = append(rcpts, addr)
	}
	return from, rcpts, nil
}
