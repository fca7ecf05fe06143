// Package journal implements the document store: read-modify-write
// orchestration of daily notes over the keyed vault, plus the cached
// inferred template.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/apperr"
	"github.com/psycho-baller/obsidian-journal/internal/merge"
	"github.com/psycho-baller/obsidian-journal/internal/models"
	"github.com/psycho-baller/obsidian-journal/internal/storage"
	"github.com/psycho-baller/obsidian-journal/internal/template"
)

// DayLayout is the calendar-day key format used for documents.
const DayLayout = "2006-01-02"

// templateKey is the fixed state-store key for the cached inferred template.
const templateKey = "template.json"

// DefaultCutoffHour is the local hour before which a capture belongs to the
// previous calendar day. A 01:00 entry goes into yesterday's note.
const DefaultCutoffHour = 4

// Service coordinates daily-note reads and writes over the vault provider
// and owns the cached inferred template in the state provider.
type Service struct {
	vault  storage.Provider
	state  storage.Provider
	cutoff int
}

// NewService creates a document store. cutoffHour is the journal-day
// boundary; values outside [0, 23] fall back to DefaultCutoffHour.
func NewService(vault, state storage.Provider, cutoffHour int) *Service {
	if cutoffHour < 0 || cutoffHour > 23 {
		cutoffHour = DefaultCutoffHour
	}
	return &Service{vault: vault, state: state, cutoff: cutoffHour}
}

// DayKey buckets an instant into its journal day: the calendar date, except
// instants before the cutoff hour belong to the previous day.
func (s *Service) DayKey(instant time.Time) string {
	if instant.Hour() < s.cutoff {
		instant = instant.AddDate(0, 0, -1)
	}
	return instant.Format(DayLayout)
}

// DocKey returns the vault key for a day's document.
func DocKey(day string) string {
	return day + ".md"
}

// Read returns the day's document, or apperr.ErrNotFound when absent.
func (s *Service) Read(day string) (string, error) {
	data, err := s.vault.Read(DocKey(day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// GetOrCreate returns the day's document, creating it first when absent:
// from the rendered template when one is supplied, else from the fixed
// default skeleton. Absence is the creation path, never an error.
func (s *Service) GetOrCreate(day string, tmpl *models.InferredTemplate) (string, error) {
	doc, err := s.Read(day)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return "", err
	}

	if tmpl != nil && tmpl.Template != "" {
		anchor, perr := time.ParseInLocation(DayLayout, day, time.Local)
		if perr != nil {
			return "", fmt.Errorf("journal: bad day key %q: %w", day, perr)
		}
		doc = template.Render(tmpl.Template, anchor)
	} else {
		doc = DefaultSkeleton(day)
	}

	if err := s.vault.Write(DocKey(day), []byte(doc)); err != nil {
		return "", err
	}
	slog.Info("journal: created daily note", slog.String("day", day))
	return doc, nil
}

// ApplyUpdates reads (or creates) the day's document, merges the updates,
// and persists the result in one write. The cached template, when present,
// seeds newly created documents.
func (s *Service) ApplyUpdates(day string, updates []models.TemplateUpdate) (string, []merge.Result, error) {
	tmpl, err := s.CachedTemplate()
	if err != nil {
		return "", nil, err
	}
	doc, err := s.GetOrCreate(day, tmpl)
	if err != nil {
		return "", nil, err
	}

	merged, results := merge.Apply(doc, updates)
	if merged != doc {
		if err := s.vault.Write(DocKey(day), []byte(merged)); err != nil {
			return "", nil, err
		}
	}

	for _, r := range results {
		slog.Debug("journal: update",
			slog.String("day", day),
			slog.String("field", r.Field),
			slog.String("outcome", string(r.Outcome)))
	}
	return merged, results, nil
}

// RecentSamples collects up to limit existing daily notes, most recent day
// first, for template inference.
func (s *Service) RecentSamples(limit int) ([]models.DailyNoteSample, error) {
	if limit <= 0 {
		limit = 5
	}
	infos, err := s.vault.List("")
	if err != nil {
		return nil, err
	}

	var samples []models.DailyNoteSample
	for _, info := range infos {
		date, perr := time.ParseInLocation(DayLayout, trimMD(info.Key), time.Local)
		if perr != nil {
			continue // not a daily note
		}
		data, rerr := s.vault.Read(info.Key)
		if rerr != nil {
			continue
		}
		samples = append(samples, models.DailyNoteSample{Date: date, Content: string(data)})
	}

	// Most recent first.
	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			if samples[j].Date.After(samples[i].Date) {
				samples[i], samples[j] = samples[j], samples[i]
			}
		}
	}
	if len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

func trimMD(key string) string {
	if len(key) > 3 && key[len(key)-3:] == ".md" {
		return key[:len(key)-3]
	}
	return key
}

// CachedTemplate returns the stored inferred template, or nil when none is
// cached. A malformed cache entry is treated as "no data": it is cleared
// with a warning rather than surfaced as an error.
func (s *Service) CachedTemplate() (*models.InferredTemplate, error) {
	data, err := s.state.Read(templateKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var tmpl models.InferredTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		slog.Warn("journal: cached template malformed, clearing",
			slog.String("error", err.Error()))
		_ = s.state.Delete(templateKey)
		return nil, nil
	}
	return &tmpl, nil
}

// SaveTemplate caches an inferred template under the fixed key.
func (s *Service) SaveTemplate(tmpl models.InferredTemplate) error {
	data, err := json.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("journal: encode template: %w", err)
	}
	return s.state.Write(templateKey, data)
}

// ClearTemplate removes the cached template. Clearing an absent cache is
// not an error.
func (s *Service) ClearTemplate() error {
	if err := s.state.Delete(templateKey); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DefaultSkeleton is the fixed fallback structure for a new daily note when
// no template has been inferred yet.
func DefaultSkeleton(day string) string {
	return "# Daily Note: " + day + "\n\n" +
		"## Metrics\n" +
		"- Mood:\n" +
		"- Energy:\n" +
		"- Sleep Hours:\n\n" +
		"## Morning Intentions\n\n" +
		"## Things I Learned\n\n" +
		"## Gratitude\n\n" +
		"## Tasks Completed\n\n" +
		"## Reflections\n"
}
