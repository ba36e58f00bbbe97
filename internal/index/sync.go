package index

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/starford/mailcraft/internal/checksum"
	"github.com/starford/mailcraft/internal/editor"
	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
)

// Change kinds reported by Sync and Watch.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change is one catalog mutation made by a sync pass.
type Change struct {
	Kind string
	ID   string
}

// Sync reads the saved-emails collection and brings the catalog up to date:
//   - new/changed emails are upserted
//   - emails no longer in the collection are deleted
//
// A missing collection empties the catalog. An undecodable one is logged and
// leaves the catalog untouched.
func Sync(ctx context.Context, db EmailIndex, kv storage.Provider, logger *slog.Logger) ([]Change, error) {
	var docs []models.SavedDocument
	data, err := kv.Read(ctx, editor.SavedEmailsKey)
	switch {
	case errors.Is(err, storage.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		docs, err = editor.DecodeSavedEmails(data)
		if err != nil {
			logger.Warn("sync: saved emails corrupt", slog.String("error", err.Error()))
			return nil, nil
		}
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return nil, err
	}

	var changes []Change
	present := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		present[d.ID] = struct{}{}
		row, body, err := catalogRow(d)
		if err != nil {
			logger.Warn("sync: encode failed", slog.String("id", d.ID), slog.String("error", err.Error()))
			continue
		}
		prev, known := checksums[d.ID]
		if known && prev == row.Checksum {
			continue
		}
		if err := db.UpsertEmail(row, body); err != nil {
			logger.Warn("sync: index failed", slog.String("id", d.ID), slog.String("error", err.Error()))
			continue
		}
		kind := ChangeCreated
		if known {
			kind = ChangeUpdated
		}
		changes = append(changes, Change{Kind: kind, ID: d.ID})
		logger.Debug("sync: indexed", slog.String("id", d.ID))
	}

	for id := range checksums {
		if _, ok := present[id]; ok {
			continue
		}
		if err := db.DeleteEmail(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		changes = append(changes, Change{Kind: ChangeDeleted, ID: id})
		logger.Debug("sync: removed stale", slog.String("id", id))
	}

	return changes, nil
}

func catalogRow(d models.SavedDocument) (EmailRow, string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return EmailRow{}, "", err
	}
	types := make([]string, len(d.Components))
	for i, c := range d.Components {
		types[i] = string(c.Type)
	}
	return EmailRow{
		ID:             d.ID,
		Title:          d.Title,
		Checksum:       checksum.Sum(data),
		ComponentCount: len(d.Components),
		Types:          types,
		CreatedAt:      d.CreatedAt,
	}, searchText(d.Components), nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// searchable props, in the order they are concatenated.
var textProps = []string{"companyName", "tagline", "content", "text", "alt", "companyAddress"}

func searchText(components []models.Component) string {
	var parts []string
	var walk func([]models.Component)
	walk = func(cs []models.Component) {
		for _, c := range cs {
			for _, key := range textProps {
				s, ok := c.Props[key].(string)
				if !ok {
					continue
				}
				s = strings.Join(strings.Fields(tagPattern.ReplaceAllString(s, " ")), " ")
				if s != "" {
					parts = append(parts, s)
				}
			}
			walk(c.Children)
		}
	}
	walk(components)
	return strings.Join(parts, "\n")
}
