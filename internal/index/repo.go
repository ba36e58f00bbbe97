package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EmailRow represents a row in the saved_emails table.
type EmailRow struct {
	ID             string
	Title          string
	Checksum       string
	ComponentCount int
	Types          []string
	CreatedAt      time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

// UpsertEmail inserts or replaces a saved email, its FTS entry and its
// component types within a transaction.
func (db *DB) UpsertEmail(e EmailRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO saved_emails (id, title, checksum, component_count, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title           = excluded.title,
			checksum        = excluded.checksum,
			component_count = excluded.component_count,
			body            = excluded.body,
			created_at      = excluded.created_at
	`, e.ID, e.Title, e.Checksum, e.ComponentCount, body, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert email: %w", err)
	}

	if err := ftsUpsert(tx, e.ID, e.Title, body); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM email_components WHERE email_id = ?`, e.ID)
	if len(e.Types) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO email_components (email_id, position, type) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare component insert: %w", err)
		}
		defer stmt.Close()
		for i, typ := range e.Types {
			if _, err := stmt.Exec(e.ID, i, typ); err != nil {
				return fmt.Errorf("index: insert component: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteEmail removes a saved email, its FTS entry and component rows.
func (db *DB) DeleteEmail(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM email_components WHERE email_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM saved_emails WHERE id = ?`, id)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an email, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM saved_emails WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id → checksum for every catalogued email.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM saved_emails`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// ListEmails returns a page of saved emails and the total matching count.
// componentType, when set, keeps only emails containing that component type.
// sort is one of "created" (newest first, default), "created_asc" or "title".
func (db *DB) ListEmails(limit, offset int, componentType, sort string) ([]EmailRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	var args []any
	if componentType != "" {
		where = `WHERE id IN (SELECT email_id FROM email_components WHERE type = ?)`
		args = append(args, componentType)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM saved_emails `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count emails: %w", err)
	}

	order := "created_at DESC"
	switch sort {
	case "created_asc":
		order = "created_at ASC"
	case "title":
		order = "title COLLATE NOCASE ASC"
	}

	rows, err := db.conn.Query(`
		SELECT id, title, checksum, component_count, created_at
		FROM saved_emails `+where+`
		ORDER BY `+order+`, id
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list emails: %w", err)
	}
	defer rows.Close()

	var out []EmailRow
	for rows.Next() {
		var r EmailRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Checksum, &r.ComponentCount, &r.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		types, err := db.componentTypes(out[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].Types = types
	}
	return out, total, nil
}

func (db *DB) componentTypes(id string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT type FROM email_components WHERE email_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("index: component types: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
