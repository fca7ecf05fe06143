package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/models"
	"github.com/psycho-baller/obsidian-journal/internal/storage"
)

func testService(t *testing.T) (*Service, storage.Provider) {
	t.Helper()
	vault, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS vault: %v", err)
	}
	state, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS state: %v", err)
	}
	return NewService(vault, state, DefaultCutoffHour), vault
}

func TestDayKey_Boundary(t *testing.T) {
	svc, _ := testService(t)

	cases := []struct {
		instant time.Time
		want    string
	}{
		{time.Date(2026, 1, 8, 3, 59, 0, 0, time.Local), "2026-01-07"},
		{time.Date(2026, 1, 8, 4, 0, 0, 0, time.Local), "2026-01-08"},
		{time.Date(2026, 1, 8, 0, 30, 0, 0, time.Local), "2026-01-07"},
		{time.Date(2026, 1, 8, 23, 59, 0, 0, time.Local), "2026-01-08"},
		{time.Date(2026, 1, 1, 1, 0, 0, 0, time.Local), "2025-12-31"},
	}
	for _, c := range cases {
		if got := svc.DayKey(c.instant); got != c.want {
			t.Errorf("DayKey(%v) = %q, want %q", c.instant, got, c.want)
		}
	}
}

func TestGetOrCreate_DefaultSkeleton(t *testing.T) {
	svc, vault := testService(t)

	doc, err := svc.GetOrCreate("2026-01-08", nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !strings.HasPrefix(doc, "# Daily Note: 2026-01-08") {
		t.Errorf("doc does not start with heading:\n%s", doc)
	}
	for _, section := range []string{"## Metrics", "- Mood:", "- Energy:", "- Sleep Hours:",
		"## Morning Intentions", "## Things I Learned", "## Gratitude",
		"## Tasks Completed", "## Reflections"} {
		if !strings.Contains(doc, section) {
			t.Errorf("skeleton missing %q", section)
		}
	}

	// Persisted in one write.
	data, err := vault.Read("2026-01-08.md")
	if err != nil {
		t.Fatalf("vault read: %v", err)
	}
	if string(data) != doc {
		t.Error("persisted document differs from returned one")
	}
}

func TestGetOrCreate_ExistingUntouched(t *testing.T) {
	svc, vault := testService(t)
	existing := "# My own note\nfree-form content\n"
	_ = vault.Write("2026-01-08.md", []byte(existing))

	doc, err := svc.GetOrCreate("2026-01-08", nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if doc != existing {
		t.Errorf("existing document was replaced:\n%s", doc)
	}
}

func TestGetOrCreate_RendersTemplate(t *testing.T) {
	svc, _ := testService(t)
	tmpl := &models.InferredTemplate{
		Template:   "# {{date}} | {{weekday}}\n\n## Journal\n",
		Confidence: 0.9,
	}
	doc, err := svc.GetOrCreate("2026-01-08", tmpl)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	want := "# 2026-01-08 | Thursday\n\n## Journal\n"
	if doc != want {
		t.Errorf("doc = %q, want %q", doc, want)
	}
}

func TestApplyUpdates_MergesAndPersists(t *testing.T) {
	svc, vault := testService(t)

	updates := []models.TemplateUpdate{
		{Field: "Sleep Hours", Value: "7", UpdateType: models.UpdateMetric},
		{Field: "## Gratitude", Value: "Sunny weather", UpdateType: models.UpdateAppend},
	}
	doc, results, err := svc.ApplyUpdates("2026-01-08", updates)
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if !strings.Contains(doc, "- Sleep Hours: 7") {
		t.Errorf("metric not applied:\n%s", doc)
	}
	if !strings.Contains(doc, "- Sunny weather") {
		t.Errorf("append not applied:\n%s", doc)
	}

	data, _ := vault.Read("2026-01-08.md")
	if string(data) != doc {
		t.Error("persisted document differs from merge result")
	}
}

func TestApplyUpdates_NoSignalLeavesFileAlone(t *testing.T) {
	svc, vault := testService(t)
	existing := "# Daily Note: 2026-01-08\n\n## Gratitude\n"
	_ = vault.Write("2026-01-08.md", []byte(existing))

	doc, _, err := svc.ApplyUpdates("2026-01-08", []models.TemplateUpdate{
		{Field: "## Gratitude", Value: "", UpdateType: models.UpdateAppend},
	})
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
	if doc != existing {
		t.Error("document changed on no-signal updates")
	}
}

func TestTemplateCache_RoundTrip(t *testing.T) {
	svc, _ := testService(t)

	if tmpl, err := svc.CachedTemplate(); err != nil || tmpl != nil {
		t.Fatalf("empty cache: tmpl=%v err=%v", tmpl, err)
	}

	in := models.InferredTemplate{
		Template:   "# {{date}}\n",
		Variables:  []models.TemplateVariable{{Name: "date", Format: "yyyy-MM-dd"}},
		Confidence: 0.85,
		Notes:      "date heading detected",
	}
	if err := svc.SaveTemplate(in); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}

	got, err := svc.CachedTemplate()
	if err != nil {
		t.Fatalf("CachedTemplate: %v", err)
	}
	if got == nil || got.Template != in.Template || got.Confidence != in.Confidence {
		t.Errorf("got %+v, want %+v", got, in)
	}

	if err := svc.ClearTemplate(); err != nil {
		t.Fatalf("ClearTemplate: %v", err)
	}
	if tmpl, _ := svc.CachedTemplate(); tmpl != nil {
		t.Error("cache should be empty after clear")
	}
	// Clearing twice is fine.
	if err := svc.ClearTemplate(); err != nil {
		t.Errorf("second ClearTemplate: %v", err)
	}
}

func TestTemplateCache_MalformedCleared(t *testing.T) {
	vault, _ := storage.NewFS(t.TempDir())
	stateDir := t.TempDir()
	state, _ := storage.NewFS(stateDir)
	svc := NewService(vault, state, DefaultCutoffHour)

	_ = state.Write("template.json", []byte("{not json"))
	tmpl, err := svc.CachedTemplate()
	if err != nil {
		t.Fatalf("CachedTemplate: %v", err)
	}
	if tmpl != nil {
		t.Error("malformed cache should read as no data")
	}
	if _, err := state.Read("template.json"); err == nil {
		t.Error("malformed cache entry should have been deleted")
	}
}

func TestRecentSamples_MostRecentFirst(t *testing.T) {
	svc, vault := testService(t)
	_ = vault.Write("2026-01-06.md", []byte("# a"))
	_ = vault.Write("2026-01-08.md", []byte("# c"))
	_ = vault.Write("2026-01-07.md", []byte("# b"))
	_ = vault.Write("notes.md", []byte("not a daily note"))

	samples, err := svc.RecentSamples(2)
	if err != nil {
		t.Fatalf("RecentSamples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("len = %d, want 2", len(samples))
	}
	if samples[0].Content != "# c" || samples[1].Content != "# b" {
		t.Errorf("unexpected order: %v", samples)
	}
}
