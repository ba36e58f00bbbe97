// Package emailservice coordinates the editor, the canvas policy layer, the
// saved-email catalog and the mailer for the API and MCP surfaces.
package emailservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/mailcraft/internal/apperr"
	"github.com/starford/mailcraft/internal/canvas"
	"github.com/starford/mailcraft/internal/checksum"
	"github.com/starford/mailcraft/internal/editor"
	"github.com/starford/mailcraft/internal/export"
	"github.com/starford/mailcraft/internal/index"
	"github.com/starford/mailcraft/internal/mailer"
	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
)

// EmailListItem is a lightweight saved-email entry.
type EmailListItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Checksum       string    `json:"checksum"`
	ComponentCount int       `json:"componentCount"`
	Types          []string  `json:"types"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SearchHit is one full-text match over saved emails.
type SearchHit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Export is a rendered document ready for download.
type Export struct {
	HTML     string
	FileName string
	ETag     string
}

// Service coordinates editor, catalog and delivery operations.
type Service struct {
	editor *editor.Store
	canvas *canvas.Controller
	db     index.EmailIndex
	kv     storage.Provider
	mail   *mailer.Sender
	logger *slog.Logger
}

// NewService creates a new email service. mail may be nil, which disables
// test sends but keeps .eml packaging.
func NewService(ed *editor.Store, ctrl *canvas.Controller, db index.EmailIndex, kv storage.Provider, mail *mailer.Sender, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if mail == nil {
		mail = mailer.NewSender(mailer.Config{}, logger)
	}
	return &Service{editor: ed, canvas: ctrl, db: db, kv: kv, mail: mail, logger: logger}
}

// Editor exposes the underlying document store.
func (s *Service) Editor() *editor.Store { return s.editor }

// Canvas exposes the drag controller.
func (s *Service) Canvas() *canvas.Controller { return s.canvas }

// Document returns the current editor state.
func (s *Service) Document(_ context.Context) editor.State {
	return s.editor.State()
}

// AddComponent parses typeName and appends a component before the footer.
func (s *Service) AddComponent(_ context.Context, typeName string, props models.Props) (models.Component, error) {
	t, err := models.ParseComponentType(typeName)
	if err != nil {
		return models.Component{}, fmt.Errorf("%w: %v", apperr.ErrInvalidComponentType, err)
	}
	return s.editor.AddComponent(t, props), nil
}

// UpdateComponent merges props into component id.
func (s *Service) UpdateComponent(_ context.Context, id string, props models.Props) (models.Component, error) {
	if !s.editor.UpdateComponentProps(id, props) {
		return models.Component{}, fmt.Errorf("component %q: %w", id, apperr.ErrNotFound)
	}
	c, _ := s.editor.Component(id)
	return c, nil
}

// RemoveComponent deletes id. Headers and footers are refused.
func (s *Service) RemoveComponent(_ context.Context, id string) error {
	return s.canvas.Delete(id)
}

// DuplicateComponent copies id next to itself. Headers and footers are refused.
func (s *Service) DuplicateComponent(_ context.Context, id string) (models.Component, error) {
	return s.canvas.Duplicate(id)
}

// ReorderComponents moves movedID to targetID's position.
func (s *Service) ReorderComponents(_ context.Context, movedID, targetID string) error {
	return s.canvas.Reorder(movedID, targetID)
}

// SelectComponent selects id, or deselects when id is empty.
func (s *Service) SelectComponent(_ context.Context, id string) error {
	if !s.editor.SelectComponent(id) {
		return fmt.Errorf("component %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// SetTitle renames the document.
func (s *Service) SetTitle(_ context.Context, title string) {
	s.editor.SetTitle(title)
}

// TogglePreview flips the preview width and reports whether mobile is on.
func (s *Service) TogglePreview(_ context.Context) bool {
	return s.editor.TogglePreviewMode()
}

// Reset restores the initial document.
func (s *Service) Reset(_ context.Context) {
	s.editor.Reset()
}

// Export renders the document with its download name and entity tag.
func (s *Service) Export(_ context.Context) Export {
	st := s.editor.State()
	html := s.editor.ExportHTML()
	return Export{
		HTML:     html,
		FileName: export.FileName(st.Title),
		ETag:     checksum.ETag([]byte(html)),
	}
}

// Preview renders the document at the active preview width, or at mobile
// width when forced.
func (s *Service) Preview(_ context.Context, forceMobile bool) string {
	if forceMobile {
		return s.editor.PreviewHTMLFor(true)
	}
	return s.editor.PreviewHTML()
}

// ExportEML packages the exported document as an RFC 5322 message.
func (s *Service) ExportEML(ctx context.Context) ([]byte, string, error) {
	ex := s.Export(ctx)
	raw, err := s.mail.Package(s.editor.State().Title, ex.HTML)
	if err != nil {
		return nil, "", err
	}
	return raw, strings.TrimSuffix(ex.FileName, ".html") + ".eml", nil
}

// SendTest delivers the exported document to recipients.
func (s *Service) SendTest(ctx context.Context, to []string) error {
	ex := s.Export(ctx)
	return s.mail.Send(ctx, to, s.editor.State().Title, ex.HTML)
}

// SaveEmail snapshots the document into the saved-emails collection and
// refreshes the catalog.
func (s *Service) SaveEmail(ctx context.Context) (models.SavedDocument, error) {
	saved, err := s.editor.Save(ctx)
	if err != nil {
		return models.SavedDocument{}, err
	}
	if _, err := s.SyncCatalog(ctx); err != nil {
		s.logger.Warn("catalog refresh after save failed", slog.String("error", err.Error()))
	}
	return saved, nil
}

// LoadEmail replaces the document with saved email id.
func (s *Service) LoadEmail(ctx context.Context, id string) (editor.State, error) {
	if !s.editor.Load(ctx, id) {
		return editor.State{}, fmt.Errorf("saved email %q: %w", id, apperr.ErrNotFound)
	}
	return s.editor.State(), nil
}

// ListEmails returns saved emails from the catalog, paginated and optionally
// filtered to those containing componentType.
func (s *Service) ListEmails(_ context.Context, limit, offset int, componentType, sort string) ([]EmailListItem, int, error) {
	rows, total, err := s.db.ListEmails(limit, offset, componentType, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]EmailListItem, len(rows))
	for i, r := range rows {
		items[i] = EmailListItem{
			ID:             r.ID,
			Title:          r.Title,
			Checksum:       r.Checksum,
			ComponentCount: r.ComponentCount,
			Types:          nonNilSlice(r.Types),
			CreatedAt:      r.CreatedAt,
		}
	}
	return items, total, nil
}

// Search runs a full-text query over saved emails.
func (s *Service) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = SearchHit{ID: r.ID, Title: r.Title, Snippet: r.Snippet}
	}
	return hits, nil
}

// SyncCatalog reconciles the catalog with the saved-emails collection.
func (s *Service) SyncCatalog(ctx context.Context) ([]index.Change, error) {
	return index.Sync(ctx, s.db, s.kv, s.logger)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
