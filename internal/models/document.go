package models

import "time"

// Document is the unit of editing: a title plus the ordered component list.
// Order is the vertical stacking order of the email.
type Document struct {
	Title      string      `json:"title"`
	Components []Component `json:"components"`
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	return Document{Title: d.Title, Components: CloneComponents(d.Components)}
}

// SavedDocument is a persisted, timestamped snapshot of a Document.
type SavedDocument struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Components []Component `json:"components"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Document returns the snapshot's document part.
func (s SavedDocument) Document() Document {
	return Document{Title: s.Title, Components: CloneComponents(s.Components)}
}
