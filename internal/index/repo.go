package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/apperr"
)

// DayRow represents a row in the days table: one indexed daily note.
type DayRow struct {
	Day       string
	Key       string
	Title     string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Day     string
	Title   string
	Snippet string
}

// UpsertDay inserts or replaces a day, its FTS entry, and day-to-day links
// within a transaction.
func (db *DB) UpsertDay(d DayRow, body string, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)

	// Upsert days table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO days (day, key, title, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			key        = excluded.key,
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Day, d.Key, d.Title, d.Checksum, string(tagsJSON), body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert day: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Day, d.Title, body, d.Tags); err != nil {
		return err
	}

	// Replace outgoing links: delete old then bulk insert. Targets are the
	// day keys the note's wikilinks resolve to.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, d.Day)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(d.Day, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDay removes a day, its FTS entry, and outgoing links.
func (db *DB) DeleteDay(day string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, day)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, day)
	_, _ = tx.Exec(`DELETE FROM days WHERE day = ?`, day)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a day, or empty string if not found.
func (db *DB) GetChecksum(day string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM days WHERE day = ?`, day).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetDay returns the indexed row for a day, or apperr.ErrNotFound.
func (db *DB) GetDay(day string) (*DayRow, error) {
	var (
		d        DayRow
		tagsJSON string
	)
	err := db.conn.QueryRow(`
		SELECT day, key, title, checksum, tags, updated_at
		FROM days WHERE day = ?
	`, day).Scan(&d.Day, &d.Key, &d.Title, &d.Checksum, &tagsJSON, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get day: %w", err)
	}
	_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
	return &d, nil
}

// ListDays returns indexed days most recent first, plus the total count.
func (db *DB) ListDays(limit, offset int) ([]DayRow, int, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM days`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count days: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT day, key, title, checksum, tags, updated_at
		FROM days ORDER BY day DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list days: %w", err)
	}
	defer rows.Close()

	var out []DayRow
	for rows.Next() {
		var (
			d        DayRow
			tagsJSON string
		)
		if err := rows.Scan(&d.Day, &d.Key, &d.Title, &d.Checksum, &tagsJSON, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// AllChecksums returns every indexed day's checksum keyed by vault key,
// used by Sync to diff the index against the vault.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT key, checksum FROM days`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, cs string
		if err := rows.Scan(&k, &cs); err != nil {
			return nil, err
		}
		out[k] = cs
	}
	return out, rows.Err()
}

// Backlinks returns all days whose notes link to the given day.
func (db *DB) Backlinks(day string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM links WHERE target = ? ORDER BY source`, day)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
