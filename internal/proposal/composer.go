package proposal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/mailcraft/internal/apperr"
	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/webhook"
)

// DefaultReplyDelay is how long the simulated assistant takes to answer.
const DefaultReplyDelay = 1500 * time.Millisecond

// Notifier delivers webhook payloads in the background.
type Notifier interface {
	Notify(ctx context.Context, target string, p webhook.Payload)
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithReplyDelay overrides DefaultReplyDelay.
func WithReplyDelay(d time.Duration) ComposerOption {
	return func(c *Composer) { c.delay = d }
}

// WithNotifier sets where webhook payloads are delivered.
func WithNotifier(n Notifier) ComposerOption {
	return func(c *Composer) { c.notifier = n }
}

// WithWebhookURL sets the initial webhook URL. Empty disables the webhook.
func WithWebhookURL(u string) ComposerOption {
	return func(c *Composer) { c.webhookURL = u }
}

// WithComposerLogger sets the composer's logger.
func WithComposerLogger(l *slog.Logger) ComposerOption {
	return func(c *Composer) { c.logger = l }
}

// WithComposerClock overrides the time source for message timestamps.
func WithComposerClock(now func() time.Time) ComposerOption {
	return func(c *Composer) { c.now = now }
}

// Composer runs the send flow: append the user's message, wait, append the
// templated assistant reply and fire the webhook.
type Composer struct {
	store    *Store
	notifier Notifier
	delay    time.Duration
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	generating bool
	webhookURL string
}

// NewComposer creates a composer appending to store.
func NewComposer(store *Store, opts ...ComposerOption) *Composer {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Composer{
		store:  store,
		delay:  DefaultReplyDelay,
		logger: slog.Default(),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send validates text, appends it as a user message and schedules the
// assistant reply. It returns the appended user message.
func (c *Composer) Send(ctx context.Context, text string) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, apperr.ErrEmptyMessage
	}

	// The closed check and wg.Add share c.mu with Close so a reply can never
	// be scheduled after Close has started waiting.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Message{}, fmt.Errorf("composer closed: %w", apperr.ErrDisabled)
	}
	if c.generating {
		c.mu.Unlock()
		return models.Message{}, apperr.ErrGenerating
	}
	c.generating = true
	c.wg.Add(1)
	c.mu.Unlock()

	msg := models.Message{
		ID:        uuid.NewString(),
		Content:   text,
		Role:      models.RoleUser,
		Timestamp: c.now().UTC(),
	}
	c.store.AddMessage(ctx, msg)
	c.store.emit(EventGeneratingChange)

	go c.reply(text)
	return msg, nil
}

func (c *Composer) reply(text string) {
	defer c.wg.Done()
	defer c.setGenerating(false)

	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-c.ctx.Done():
		c.logger.Info("pending proposal reply cancelled")
		return
	case <-timer.C:
	}

	sess := c.store.Session()
	c.store.AddMessage(c.ctx, models.Message{
		ID:        uuid.NewString(),
		Content:   ReplyText(sess.Company, text),
		Role:      models.RoleAssistant,
		Timestamp: c.now().UTC(),
	})

	target := c.WebhookURL()
	if target == "" || c.notifier == nil {
		return
	}
	sess = c.store.Session()
	c.notifier.Notify(c.ctx, target, webhook.Payload{
		Title:        sess.Title,
		Company:      sess.Company,
		MessageCount: len(sess.Messages),
		Timestamp:    c.now().UTC(),
	})
}

func (c *Composer) setGenerating(v bool) {
	c.mu.Lock()
	c.generating = v
	c.mu.Unlock()
	c.store.emit(EventGeneratingChange)
}

// Generating reports whether a reply is pending.
func (c *Composer) Generating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// SetWebhookURL replaces the webhook URL. Empty disables the webhook.
func (c *Composer) SetWebhookURL(u string) error {
	if u != "" {
		if err := webhook.ValidateURL(u); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.webhookURL = u
	c.mu.Unlock()
	return nil
}

// WebhookURL returns the configured webhook URL.
func (c *Composer) WebhookURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.webhookURL
}

// Close cancels pending replies and waits for them to stop. Send fails
// after Close.
func (c *Composer) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// Wait blocks until pending replies have been appended.
func (c *Composer) Wait() {
	c.wg.Wait()
}

// ReplyText is the simulated assistant answer to request.
func ReplyText(company, request string) string {
	if company == "" {
		company = "sua empresa"
	}
	return fmt.Sprintf("Aqui está um rascunho de proposta para %s baseado no seu pedido: \"%s\".\n\n"+
		"Estruturei com uma introdução, escopo de trabalho, cronograma, preços e condições. "+
		"Você pode ver a prévia no painel à direita.", company, request)
}
