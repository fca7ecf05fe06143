package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/checksum"
	"github.com/psycho-baller/obsidian-journal/internal/parser"
	"github.com/psycho-baller/obsidian-journal/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed daily notes are parsed and upserted
//   - days whose files are gone from disk are deleted from the index
//
// Vault files whose names are not day-keyed are ignored entirely.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	infos, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		day, ok := DayFromKey(info.Key)
		if !ok {
			continue
		}
		disk[info.Key] = struct{}{}

		if checksums[info.Key] == info.Checksum {
			continue
		}

		data, err := store.Read(info.Key)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("key", info.Key), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDay(db, day, info.Key, data); err != nil {
			logger.Warn("sync: index failed", slog.String("day", day), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("day", day))
		}
	}

	// Remove stale entries.
	for key := range checksums {
		if _, ok := disk[key]; ok {
			continue
		}
		day, ok := DayFromKey(key)
		if !ok {
			continue
		}
		if err := db.DeleteDay(day); err != nil {
			logger.Warn("sync: delete failed", slog.String("day", day), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("day", day))
		}
	}

	return nil
}

// IndexDay parses a daily note and upserts it into the DB.
func IndexDay(db *DB, day, key string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	row := DayRow{
		Day:       day,
		Key:       key,
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		Tags:      res.Tags,
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertDay(row, res.Body, dayLinks(res.Links))
}

// dayLinks keeps only wikilink targets that resolve to a calendar day,
// normalising an optional .md suffix.
func dayLinks(links []string) []string {
	var out []string
	for _, l := range links {
		target := strings.TrimSuffix(l, ".md")
		if _, ok := DayFromKey(target + ".md"); ok {
			out = append(out, target)
		}
	}
	return out
}
