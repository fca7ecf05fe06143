//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS days_fts USING fts5(
			day UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, day, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM days_fts WHERE day = ?`, day)
	_, err := tx.Exec(`INSERT INTO days_fts (day, title, body, tags) VALUES (?, ?, ?, ?)`,
		day, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, day string) {
	_, _ = tx.Exec(`DELETE FROM days_fts WHERE day = ?`, day)
}

// Search performs an FTS5 full-text search over daily notes and returns
// matching days with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT day,
		       title,
		       snippet(days_fts, 2, '<b>', '</b>', '...', 64)
		FROM days_fts
		WHERE days_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Day, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
