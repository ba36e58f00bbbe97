// Package webhook delivers JSON notifications to user-configured URLs.
//
// Delivery is a single best-effort attempt: there are no retries, the
// response body is ignored and failures are only logged.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultTimeout bounds a single delivery.
const DefaultTimeout = 10 * time.Second

var (
	ErrInvalidURL      = errors.New("webhook: invalid url")
	ErrDeliveryFailed  = errors.New("webhook: delivery failed")
	ErrUnexpectedReply = errors.New("webhook: unexpected status")
)

// Payload is the body sent after each generated proposal reply.
type Payload struct {
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	MessageCount int       `json:"messageCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// Sender performs synchronous deliveries.
type Sender struct {
	client *http.Client
}

// NewSender returns a sender whose requests time out after timeout.
func NewSender(timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{client: &http.Client{Timeout: timeout}}
}

// Send POSTs body as JSON to target and reports non-2xx replies as errors.
func (s *Sender) Send(ctx context.Context, target string, body any) error {
	if err := ValidateURL(target); err != nil {
		return err
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("webhook: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedReply, resp.StatusCode)
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, target)
	}
	return nil
}

// Notifier runs deliveries in the background.
type Notifier struct {
	sender *Sender
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewNotifier creates a fire-and-forget notifier.
func NewNotifier(sender *Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, logger: logger}
}

// Notify starts delivering p to target and returns immediately. Cancelling
// ctx after Notify returns does not abort the delivery.
func (n *Notifier) Notify(ctx context.Context, target string, p Payload) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.sender.Send(ctx, target, p); err != nil {
			n.logger.Warn("webhook delivery failed",
				slog.String("url", target),
				slog.String("error", err.Error()))
			return
		}
		n.logger.Info("webhook delivered",
			slog.String("url", target),
			slog.Int("message_count", p.MessageCount))
	}()
}

// Wait blocks until every started delivery has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
