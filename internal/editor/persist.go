package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
)

// SavedEmailsKey is the storage key of the saved-emails collection.
const SavedEmailsKey = "savedEmails"

// Save appends a timestamped snapshot of the current document to the
// saved-emails collection. A collection that exists but cannot be decoded is
// left untouched and Save fails.
func (s *Store) Save(ctx context.Context) (models.SavedDocument, error) {
	st := s.State()
	saved := models.SavedDocument{
		ID:         s.newID(),
		Title:      st.Title,
		Components: st.Components,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.appendSaved(ctx, saved); err != nil {
		s.logger.Error("save email failed", slog.String("error", err.Error()))
		return models.SavedDocument{}, err
	}

	s.logger.Info("email saved", slog.String("id", saved.ID), slog.String("title", saved.Title))
	s.emit(Event{Kind: EventEmailSaved, ComponentID: saved.ID})
	return saved, nil
}

// appendSaved adds doc to the end of the collection. The read-modify-write
// runs under saveMu so concurrent saves each keep their snapshot.
func (s *Store) appendSaved(ctx context.Context, doc models.SavedDocument) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	docs, err := s.readCollection(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(append(docs, doc))
	if err != nil {
		return fmt.Errorf("editor: encode saved emails: %w", err)
	}
	if err := s.kv.Write(ctx, SavedEmailsKey, data); err != nil {
		return fmt.Errorf("editor: write saved emails: %w", err)
	}
	return nil
}

// Load replaces the title and components with the saved email id. Unknown
// ids and unreadable collections leave the document unchanged.
func (s *Store) Load(ctx context.Context, id string) bool {
	var found *models.SavedDocument
	for _, d := range s.SavedDocuments(ctx) {
		if d.ID == id {
			found = &d
			break
		}
	}
	if found == nil {
		return false
	}

	s.mu.Lock()
	s.title = found.Title
	s.components = models.CloneComponents(found.Components)
	if s.components == nil {
		s.components = []models.Component{}
	}
	if s.indexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventEmailLoaded, ComponentID: id})
	return true
}

// SavedDocuments returns the saved-emails collection in save order. Read and
// decode failures are logged and yield an empty collection.
func (s *Store) SavedDocuments(ctx context.Context) []models.SavedDocument {
	s.saveMu.Lock()
	docs, err := s.readCollection(ctx)
	s.saveMu.Unlock()
	if err != nil {
		s.logger.Warn("saved emails unreadable, treating as empty", slog.String("error", err.Error()))
		return []models.SavedDocument{}
	}
	if docs == nil {
		return []models.SavedDocument{}
	}
	return docs
}

// readCollection returns nil without error when nothing was saved yet.
func (s *Store) readCollection(ctx context.Context) ([]models.SavedDocument, error) {
	data, err := s.kv.Read(ctx, SavedEmailsKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("editor: read saved emails: %w", err)
	}
	return DecodeSavedEmails(data)
}

// DecodeSavedEmails parses a saved-emails collection blob.
func DecodeSavedEmails(data []byte) ([]models.SavedDocument, error) {
	var docs []models.SavedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("editor: decode saved emails: %w", err)
	}
	return docs, nil
}
