package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/mailcraft/internal/access"
	"github.com/starford/mailcraft/internal/assets"
	"github.com/starford/mailcraft/internal/canvas"
	"github.com/starford/mailcraft/internal/editor"
	"github.com/starford/mailcraft/internal/emailservice"
	"github.com/starford/mailcraft/internal/index"
	"github.com/starford/mailcraft/internal/mailer"
	"github.com/starford/mailcraft/internal/proposal"
	"github.com/starford/mailcraft/internal/sse"
	"github.com/starford/mailcraft/internal/storage"
	"github.com/starford/mailcraft/internal/webhook"
)

// components is the object graph shared by the HTTP, MCP and export modes.
type components struct {
	kv        storage.Backend
	db        *index.DB
	broker    *sse.Broker
	email     *emailservice.Service
	proposals *proposal.Store
	composer  *proposal.Composer
	notifier  *webhook.Notifier
	assets    *assets.Dir
	access    *access.Store
}

func wire(ctx context.Context, cfg *Config, logger *slog.Logger) (*components, error) {
	kv, err := storage.Open(ctx, cfg.Storage.Options())
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("init index: %w", err)
	}

	dir, err := assets.NewDir(cfg.Assets.Path)
	if err != nil {
		_ = db.Close()
		_ = kv.Close()
		return nil, fmt.Errorf("init assets: %w", err)
	}

	if changes, err := index.Sync(ctx, db, kv, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("catalog synced", slog.Int("changes", len(changes)))
	}

	broker := sse.NewBroker(0)

	ed := editor.New(kv,
		editor.WithLogger(logger),
		editor.WithListener(func(ev editor.Event) {
			broker.PublishChange(ev.Kind, ev.ComponentID)
		}),
	)
	ctrl := canvas.New(ed, canvas.WithActivationDistance(cfg.Canvas.ActivationDistance))
	mail := mailer.NewSender(mailer.Config{
		Address:  cfg.SMTP.Address,
		From:     cfg.SMTP.From,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	}, logger)

	proposals := proposal.NewStore(ctx, kv,
		proposal.WithLogger(logger),
		proposal.WithListener(func(kind string) {
			broker.PublishChange(kind, "")
		}),
	)
	notifier := webhook.NewNotifier(webhook.NewSender(cfg.Proposal.WebhookTimeout), logger)
	composer := proposal.NewComposer(proposals,
		proposal.WithReplyDelay(cfg.Proposal.ReplyDelay),
		proposal.WithNotifier(notifier),
		proposal.WithWebhookURL(cfg.Proposal.WebhookURL),
		proposal.WithComposerLogger(logger),
	)

	perms := access.NewStore(ctx, kv,
		access.WithLogger(logger),
		access.WithListener(func(kind string) {
			broker.PublishChange(kind, "")
		}),
	)

	return &components{
		kv:        kv,
		db:        db,
		broker:    broker,
		email:     emailservice.NewService(ed, ctrl, db, kv, mail, logger),
		proposals: proposals,
		composer:  composer,
		notifier:  notifier,
		assets:    dir,
		access:    perms,
	}, nil
}

// close stops background work and releases storage. Pending assistant
// replies are abandoned; started webhook deliveries are allowed to finish.
func (c *components) close(logger *slog.Logger) {
	c.composer.Close()
	c.notifier.Wait()
	c.broker.Close()
	if err := c.db.Close(); err != nil {
		logger.Warn("close index", slog.String("error", err.Error()))
	}
	if err := c.kv.Close(); err != nil {
		logger.Warn("close storage", slog.String("error", err.Error()))
	}
}
