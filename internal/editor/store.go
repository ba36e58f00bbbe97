// Package editor holds the single shared email document being edited and
// the commands that mutate it.
package editor

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/mailcraft/internal/export"
	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
	"github.com/starford/mailcraft/internal/style"
)

// DefaultTitle is the title of a fresh document.
const DefaultTitle = "Novo Email"

// State is a snapshot of the editor.
type State struct {
	Title         string             `json:"title"`
	Components    []models.Component `json:"components"`
	SelectedID    string             `json:"selectedId"`
	PreviewMobile bool               `json:"previewMobile"`
}

// Document returns the snapshot's document part.
func (s State) Document() models.Document {
	return models.Document{Title: s.Title, Components: s.Components}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithListener registers fn to be called after every successful mutation.
// fn runs outside the store lock and may read the store.
func WithListener(fn func(Event)) Option {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

// WithClock overrides the time source for saved timestamps and the default
// copyright year.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how component and saved-email ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store is the document store. Commands serialise on an internal mutex and
// each runs to completion before the next starts.
type Store struct {
	kv        storage.Provider
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	listeners []func(Event)

	// saveMu serialises access to the saved-emails collection so appends
	// are never lost to an interleaved read-modify-write.
	saveMu sync.Mutex

	mu            sync.Mutex
	title         string
	components    []models.Component
	selectedID    string
	previewMobile bool
}

// New creates a store holding the default header and footer document.
func New(kv storage.Provider, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.resetLocked()
	return s
}

// DefaultHeader returns the header every new document starts with.
func DefaultHeader(id string) models.Component {
	return models.Component{ID: id, Type: models.TypeHeader, Props: models.Props{
		"logo":            style.DefaultLogoURL,
		"backgroundColor": style.DefaultBackground,
		"padding":         style.DefaultPadding,
		"alignment":       "center",
		"companyName":     style.DefaultCompanyName,
		"tagline":         style.DefaultTagline,
	}}
}

// DefaultFooter returns the footer every new document starts with.
func DefaultFooter(id string, year int) models.Component {
	return models.Component{ID: id, Type: models.TypeFooter, Props: models.Props{
		"backgroundColor": style.DefaultFooterBackground,
		"textColor":       style.DefaultFooterTextColor,
		"padding":         style.DefaultPadding,
		"socialLinks": []any{
			map[string]any{"platform": "instagram", "url": "https://instagram.com/", "icon": "instagram"},
			map[string]any{"platform": "facebook", "url": "https://facebook.com/", "icon": "facebook"},
		},
		"companyAddress": style.DefaultCompanyAddress,
		"copyrightText":  style.DefaultCopyright(year),
	}}
}

// State returns a deep copy of the current editor state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	components := models.CloneComponents(s.components)
	if components == nil {
		components = []models.Component{}
	}
	return State{
		Title:         s.title,
		Components:    components,
		SelectedID:    s.selectedID,
		PreviewMobile: s.previewMobile,
	}
}

// Component returns a copy of the component with the given id.
func (s *Store) Component(id string) (models.Component, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Component{}, false
	}
	return s.components[i].Clone(), true
}

// AddComponent creates a component of type t and inserts it immediately
// before the footer, or at the end when there is no footer.
func (s *Store) AddComponent(t models.ComponentType, props models.Props) models.Component {
	s.mu.Lock()
	c := models.Component{ID: s.newID(), Type: t, Props: props.Clone()}
	at := slices.IndexFunc(s.components, func(c models.Component) bool {
		return c.Type == models.TypeFooter
	})
	if at < 0 {
		at = len(s.components)
	}
	s.components = slices.Insert(s.components, at, c)
	out := c.Clone()
	s.mu.Unlock()

	s.emit(Event{Kind: EventComponentAdded, ComponentID: c.ID})
	return out
}

// RemoveComponent deletes the component with the given id, clearing the
// selection if it pointed at it. Unknown ids are a no-op.
func (s *Store) RemoveComponent(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.components = slices.Delete(s.components, i, i+1)
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventComponentRemoved, ComponentID: id})
	return true
}

// SelectComponent marks id as selected. An empty id clears the selection.
// Selecting an unknown id is a no-op.
func (s *Store) SelectComponent(id string) bool {
	s.mu.Lock()
	if id != "" && s.indexOf(id) < 0 {
		s.mu.Unlock()
		return false
	}
	s.selectedID = id
	s.mu.Unlock()

	s.emit(Event{Kind: EventSelectionChanged, ComponentID: id})
	return true
}

// UpdateComponentProps shallow-merges partial into the component's props.
func (s *Store) UpdateComponentProps(id string, partial models.Props) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.components[i].Props = s.components[i].Props.Merge(partial)
	s.mu.Unlock()

	s.emit(Event{Kind: EventComponentUpdated, ComponentID: id})
	return true
}

// ReorderComponents moves movedID to the position targetID occupied before
// the move. Both indices are taken first, then the moved component is cut
// out and re-inserted at the target's original index, so a component moved
// downwards lands after the target and one moved upwards lands before it.
func (s *Store) ReorderComponents(movedID, targetID string) bool {
	s.mu.Lock()
	from, to := s.indexOf(movedID), s.indexOf(targetID)
	if from < 0 || to < 0 || from == to {
		s.mu.Unlock()
		return false
	}
	moved := s.components[from]
	s.components = slices.Delete(s.components, from, from+1)
	s.components = slices.Insert(s.components, to, moved)
	s.mu.Unlock()

	s.emit(Event{Kind: EventComponentsReordered, ComponentID: movedID})
	return true
}

// DuplicateComponent inserts a deep copy of the component, with a new id,
// directly after it.
func (s *Store) DuplicateComponent(id string) (models.Component, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Component{}, false
	}
	dup := s.components[i].Clone()
	dup.ID = s.newID()
	s.components = slices.Insert(s.components, i+1, dup)
	out := dup.Clone()
	s.mu.Unlock()

	s.emit(Event{Kind: EventComponentDuplicated, ComponentID: dup.ID})
	return out, true
}

// SetTitle replaces the document title.
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()

	s.emit(Event{Kind: EventTitleChanged})
}

// TogglePreviewMode flips between desktop and mobile preview and returns
// whether mobile preview is now on.
func (s *Store) TogglePreviewMode() bool {
	s.mu.Lock()
	s.previewMobile = !s.previewMobile
	mobile := s.previewMobile
	s.mu.Unlock()

	s.emit(Event{Kind: EventPreviewToggled})
	return mobile
}

// ExportHTML renders the current document as a complete HTML email.
func (s *Store) ExportHTML() string {
	st := s.State()
	return s.renderer().Document(st.Document())
}

// PreviewHTML renders the current document at the active preview width.
func (s *Store) PreviewHTML() string {
	st := s.State()
	return s.renderer().Preview(st.Document(), st.PreviewMobile)
}

// PreviewHTMLFor renders the current document at the given width, ignoring
// the stored preview mode.
func (s *Store) PreviewHTMLFor(mobile bool) string {
	st := s.State()
	return s.renderer().Preview(st.Document(), mobile)
}

// Reset restores the initial header and footer document with fresh ids.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventDocumentReset})
}

func (s *Store) resetLocked() {
	s.title = DefaultTitle
	s.components = []models.Component{
		DefaultHeader(s.newID()),
		DefaultFooter(s.newID(), s.now().Year()),
	}
	s.selectedID = ""
	s.previewMobile = false
}

func (s *Store) renderer() export.Renderer {
	return export.Renderer{Now: s.now}
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.components, func(c models.Component) bool { return c.ID == id })
}

func (s *Store) emit(ev Event) {
	for _, fn := range s.listeners {
		fn(ev)
	}
}
