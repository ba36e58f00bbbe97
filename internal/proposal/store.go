// Package proposal implements the proposal chat: an append-only
// conversation log, the simulated reply generator and the proposal preview.
package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
)

// StorageKey is the storage key of the persisted session.
const StorageKey = "proposal-storage"

// Event kinds emitted after store mutations.
const (
	EventMessageAdded     = "proposal.message_added"
	EventMessagesCleared  = "proposal.messages_cleared"
	EventDetailsChanged   = "proposal.details_changed"
	EventGeneratingChange = "proposal.generating"
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithListener registers fn to be called with the event kind after every
// mutation.
func WithListener(fn func(kind string)) StoreOption {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

// Store holds the proposal session and writes it through to storage after
// every change.
type Store struct {
	kv        storage.Provider
	logger    *slog.Logger
	listeners []func(string)

	mu      sync.Mutex
	session models.ProposalSession
}

// NewStore restores the persisted session, or starts an empty one when
// nothing was saved or the saved blob is unreadable.
func NewStore(ctx context.Context, kv storage.Provider, opts ...StoreOption) *Store {
	s := &Store{kv: kv, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.session = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) models.ProposalSession {
	empty := models.ProposalSession{Messages: []models.Message{}}
	data, err := s.kv.Read(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			s.logger.Warn("proposal session unreadable, starting empty", slog.String("error", err.Error()))
		}
		return empty
	}
	var sess models.ProposalSession
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("proposal session corrupt, starting empty", slog.String("error", err.Error()))
		return empty
	}
	if sess.Messages == nil {
		sess.Messages = []models.Message{}
	}
	return sess
}

// Session returns a copy of the current session.
func (s *Store) Session() models.ProposalSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// AddMessage appends m to the end of the conversation.
func (s *Store) AddMessage(ctx context.Context, m models.Message) {
	s.update(ctx, EventMessageAdded, func(sess *models.ProposalSession) {
		sess.Messages = append(sess.Messages, m)
	})
}

// SetTitle sets the proposal title.
func (s *Store) SetTitle(ctx context.Context, title string) {
	s.update(ctx, EventDetailsChanged, func(sess *models.ProposalSession) {
		sess.Title = title
	})
}

// SetCompany sets the company the proposal is prepared for.
func (s *Store) SetCompany(ctx context.Context, company string) {
	s.update(ctx, EventDetailsChanged, func(sess *models.ProposalSession) {
		sess.Company = company
	})
}

// ClearMessages empties the conversation, keeping title and company.
func (s *Store) ClearMessages(ctx context.Context) {
	s.update(ctx, EventMessagesCleared, func(sess *models.ProposalSession) {
		sess.Messages = []models.Message{}
	})
}

func (s *Store) update(ctx context.Context, kind string, fn func(*models.ProposalSession)) {
	s.mu.Lock()
	fn(&s.session)
	data, err := json.Marshal(s.session)
	s.mu.Unlock()

	if err == nil {
		err = s.kv.Write(ctx, StorageKey, data)
	}
	if err != nil {
		s.logger.Error("persist proposal session failed", slog.String("error", err.Error()))
	}
	s.emit(kind)
}

func (s *Store) emit(kind string) {
	for _, fn := range s.listeners {
		fn(kind)
	}
}
