// Package capture coordinates the voice-capture pipeline: drafts are
// submitted, structured signals are extracted from the transcript, and the
// day's note is merged, persisted, and re-indexed.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/apperr"
	"github.com/psycho-baller/obsidian-journal/internal/checksum"
	"github.com/psycho-baller/obsidian-journal/internal/draft"
	"github.com/psycho-baller/obsidian-journal/internal/extract"
	"github.com/psycho-baller/obsidian-journal/internal/index"
	"github.com/psycho-baller/obsidian-journal/internal/journal"
	"github.com/psycho-baller/obsidian-journal/internal/merge"
	"github.com/psycho-baller/obsidian-journal/internal/models"
	"github.com/psycho-baller/obsidian-journal/internal/parser"
	"github.com/psycho-baller/obsidian-journal/internal/sse"
)

// sampleLimit bounds how many recent daily notes are sent for template
// inference.
const sampleLimit = 7

// Service coordinates drafts, the journal, extraction, and the index.
type Service struct {
	drafts    *draft.Manager
	journal   *journal.Service
	extractor extract.Extractor
	db        index.DayIndex
	broker    *sse.Broker
	logger    *slog.Logger
}

// NewService creates a new capture service. db and broker may be nil when
// indexing or event delivery is not wired.
func NewService(drafts *draft.Manager, js *journal.Service, ex extract.Extractor, db index.DayIndex, broker *sse.Broker, logger *slog.Logger) *Service {
	return &Service{
		drafts:    drafts,
		journal:   js,
		extractor: ex,
		db:        db,
		broker:    broker,
		logger:    logger,
	}
}

// SubmitResult reports what a submission did to the day's note.
type SubmitResult struct {
	Day     string         `json:"day"`
	Content string         `json:"content"`
	Results []merge.Result `json:"results"`
	Notes   string         `json:"notes,omitempty"`
}

// Submit runs the capture pipeline for a draft. id may be empty to submit
// the current draft. The draft's creation time anchors which journal day
// receives the updates, so a capture written before the 4 AM cutoff lands
// on the previous day even if submitted later.
//
// The draft is archived only after extraction and merge succeed; an
// extraction failure leaves both the draft and the day's note untouched.
func (s *Service) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	var d models.Draft
	if id == "" {
		d = s.drafts.Current()
	} else {
		var err error
		if d, err = s.drafts.Get(id); err != nil {
			return nil, err
		}
	}
	if d.IsEmpty() {
		return nil, apperr.ErrEmptyDraft
	}

	day := s.journal.DayKey(d.CreatedAt)

	tmpl, err := s.journal.CachedTemplate()
	if err != nil {
		s.logger.Warn("capture: template load failed", slog.String("error", err.Error()))
		tmpl = nil
	}
	doc, err := s.journal.GetOrCreate(day, tmpl)
	if err != nil {
		return nil, fmt.Errorf("capture: prepare day %s: %w", day, err)
	}

	resp, err := s.extractor.Populate(ctx, d.Content, doc, d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("capture: extract: %w", err)
	}

	merged, results, err := s.journal.ApplyUpdates(day, resp.Updates)
	if err != nil {
		return nil, fmt.Errorf("capture: merge day %s: %w", day, err)
	}

	if err := s.IndexDay(day, merged); err != nil {
		s.logger.Warn("capture: index failed", slog.String("day", day), slog.String("error", err.Error()))
	}

	if err := s.drafts.Archive(d.ID); err != nil {
		return nil, fmt.Errorf("capture: archive draft: %w", err)
	}

	if s.broker != nil {
		s.broker.PublishDayEvent("updated", day)
		s.broker.Publish(sse.Event{Type: "draft.archived", Data: map[string]string{"id": d.ID}})
	}

	s.logger.Info("capture: submitted",
		slog.String("day", day),
		slog.String("draft", d.ID),
		slog.Int("updates", len(resp.Updates)))

	return &SubmitResult{Day: day, Content: merged, Results: results, Notes: resp.ProcessingNotes}, nil
}

// InferTemplate asks the extractor to derive a daily-note template from
// recent samples and caches the result for future day creation.
func (s *Service) InferTemplate(ctx context.Context) (*models.InferredTemplate, error) {
	samples, err := s.journal.RecentSamples(sampleLimit)
	if err != nil {
		return nil, fmt.Errorf("capture: collect samples: %w", err)
	}
	tmpl, err := s.extractor.InferTemplate(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("capture: infer template: %w", err)
	}
	if err := s.journal.SaveTemplate(*tmpl); err != nil {
		return nil, fmt.Errorf("capture: cache template: %w", err)
	}
	s.logger.Info("capture: template inferred",
		slog.Int("samples", len(samples)),
		slog.Float64("confidence", tmpl.Confidence))
	return tmpl, nil
}

// Template returns the cached template, or nil when none is cached.
func (s *Service) Template() (*models.InferredTemplate, error) {
	return s.journal.CachedTemplate()
}

// ClearTemplate drops the cached template so the next day is created from
// the built-in skeleton.
func (s *Service) ClearTemplate() error {
	return s.journal.ClearTemplate()
}

// DayDetail is the full representation of a journal day.
type DayDetail struct {
	Day       string    `json:"day"`
	Content   string    `json:"content"`
	Checksum  string    `json:"checksum"`
	Backlinks []string  `json:"backlinks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetDay reads a day's note and enriches it with backlinks from the index.
func (s *Service) GetDay(_ context.Context, day string) (*DayDetail, error) {
	content, err := s.journal.Read(day)
	if err != nil {
		return nil, err
	}
	var bl []string
	if s.db != nil {
		if bl, err = s.db.Backlinks(day); err != nil {
			return nil, err
		}
	}
	return &DayDetail{
		Day:       day,
		Content:   content,
		Checksum:  checksum.Sum([]byte(content)),
		Backlinks: nonNilSlice(bl),
		UpdatedAt: time.Now(),
	}, nil
}

// ListDays returns indexed days most recent first, plus the total count.
func (s *Service) ListDays(_ context.Context, limit, offset int) ([]index.DayRow, int, error) {
	if s.db == nil {
		return nil, 0, apperr.ErrNotConfigured
	}
	days, total, err := s.db.ListDays(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(days), total, nil
}

// Search delegates full-text search over daily notes to the index. The
// result is never nil so API responses encode an empty list, not null.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, apperr.ErrNotConfigured
	}
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(results), nil
}

// IndexDay parses a day's content and upserts it into the index.
// Exported so the API layer can reuse it after direct edits.
func (s *Service) IndexDay(day, content string) error {
	if s.db == nil {
		return nil
	}
	res, err := parser.Parse([]byte(content))
	if err != nil {
		return err
	}
	return s.db.UpsertDay(index.DayRow{
		Day:       day,
		Key:       journal.DocKey(day),
		Title:     res.Title,
		Checksum:  checksum.Sum([]byte(content)),
		Tags:      nonNilSlice(res.Tags),
		UpdatedAt: time.Now().UTC(),
	}, res.Body, dayLinks(res.Links))
}

// dayLinks keeps only wikilink targets that name a calendar day.
func dayLinks(links []string) []string {
	var out []string
	for _, l := range links {
		target := strings.TrimSuffix(l, ".md")
		if _, err := time.Parse(journal.DayLayout, target); err == nil {
			out = append(out, target)
		}
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
