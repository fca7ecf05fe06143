package draft

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/apperr"
	"github.com/psycho-baller/obsidian-journal/internal/models"
	"github.com/psycho-baller/obsidian-journal/internal/storage"
)

func testStore(t *testing.T) storage.Provider {
	t.Helper()
	s, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testStore(t))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestInit_CreatesCurrentDraft(t *testing.T) {
	m := testManager(t)
	cur := m.Current()
	if cur.ID == "" {
		t.Fatal("no current draft after init")
	}
	if !cur.Active() || !cur.IsEmpty() {
		t.Errorf("expected fresh empty active draft, got %+v", cur)
	}
}

func TestInit_ResumesMostRecentActive(t *testing.T) {
	store := testStore(t)
	old := models.Draft{ID: "old", Content: "earlier", Status: models.StatusDraft,
		CreatedAt: time.Now().Add(-2 * time.Hour), ModifiedAt: time.Now().Add(-2 * time.Hour)}
	recent := models.Draft{ID: "recent", Content: "later", Status: models.StatusDraft,
		CreatedAt: time.Now().Add(-time.Hour), ModifiedAt: time.Now().Add(-time.Minute)}
	blank := models.Draft{ID: "blank", Content: "   \n", Status: models.StatusDraft,
		CreatedAt: time.Now(), ModifiedAt: time.Now()}
	data, _ := json.Marshal([]models.Draft{old, recent, blank})
	_ = store.Write("drafts.json", data)

	m, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := m.Current().ID; got != "recent" {
		t.Errorf("current = %q, want recent", got)
	}
	// The whitespace-only draft is pruned on init.
	if _, err := m.Get("blank"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("blank draft should be pruned, err = %v", err)
	}
}

func TestInit_MalformedCollectionResets(t *testing.T) {
	store := testStore(t)
	_ = store.Write("drafts.json", []byte("{definitely not a json array"))

	m, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if len(m.List()) != 1 {
		t.Errorf("expected a single fresh draft, got %d", len(m.List()))
	}
}

func TestCreateNew_ReusesEmptyCurrent(t *testing.T) {
	m := testManager(t)
	first, err := m.CreateNew()
	if err != nil {
		t.Fatalf("CreateNew: %v", err)
	}
	second, err := m.CreateNew()
	if err != nil {
		t.Fatalf("CreateNew: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("empty current should be reused: %q vs %q", first.ID, second.ID)
	}
}

func TestCreateNew_AfterEditMakesFreshDraft(t *testing.T) {
	m := testManager(t)
	edited, err := m.Update("some words")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	fresh, err := m.CreateNew()
	if err != nil {
		t.Fatalf("CreateNew: %v", err)
	}
	if fresh.ID == edited.ID {
		t.Error("expected a new draft after editing the current one")
	}
	if m.Current().ID != fresh.ID {
		t.Error("fresh draft should be current")
	}
	// The edited draft survives.
	if _, err := m.Get(edited.ID); err != nil {
		t.Errorf("edited draft lost: %v", err)
	}
}

func TestUpdate_BumpsModifiedAt(t *testing.T) {
	m := testManager(t)
	before := m.Current().ModifiedAt
	time.Sleep(10 * time.Millisecond)
	d, err := m.Update("hello")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !d.ModifiedAt.After(before) {
		t.Error("ModifiedAt not bumped")
	}
	if d.Content != "hello" {
		t.Errorf("content = %q", d.Content)
	}
}

func TestSelect_AutoDiscardsEmptyCurrent(t *testing.T) {
	m := testManager(t)
	_, _ = m.Update("keep me")
	kept := m.Current()

	// A fresh empty draft becomes current, then we select back.
	empty, _ := m.CreateNew()
	if _, err := m.Select(kept.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if m.Current().ID != kept.ID {
		t.Error("select did not switch current")
	}
	if _, err := m.Get(empty.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("empty outgoing draft should be discarded, err = %v", err)
	}
}

func TestSelect_KeepsNonEmptyOutgoing(t *testing.T) {
	m := testManager(t)
	_, _ = m.Update("first")
	first := m.Current()
	second, _ := m.CreateNew()
	_, _ = m.Update("second")

	if _, err := m.Select(first.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := m.Get(second.ID); err != nil {
		t.Errorf("non-empty outgoing draft must survive: %v", err)
	}
}

func TestSelect_UnknownID(t *testing.T) {
	m := testManager(t)
	if _, err := m.Select("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestArchive_CurrentHandsOffToFreshDraft(t *testing.T) {
	m := testManager(t)
	_, _ = m.Update("submitted content")
	submitted := m.Current()

	if err := m.Archive(submitted.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	got, err := m.Get(submitted.ID)
	if err != nil {
		t.Fatalf("Get archived: %v", err)
	}
	if got.Status != models.StatusArchived {
		t.Errorf("status = %q, want archived", got.Status)
	}

	cur := m.Current()
	if cur.ID == submitted.ID {
		t.Error("archived draft must not stay current")
	}
	if !cur.Active() || !cur.IsEmpty() {
		t.Errorf("new current should be fresh and empty, got %+v", cur)
	}
}

func TestArchiveAndRestore(t *testing.T) {
	m := testManager(t)
	_, _ = m.Update("words")
	d := m.Current()
	_ = m.Archive(d.ID)

	if err := m.Restore(d.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, _ := m.Get(d.ID)
	if got.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", got.Status)
	}
	// Restore does not steal the current pointer.
	if m.Current().ID == d.ID {
		t.Error("restored draft should not become current automatically")
	}
}

func TestDelete_CurrentFallsBackToLatestActive(t *testing.T) {
	m := testManager(t)
	_, _ = m.Update("first")
	first := m.Current()
	_, _ = m.CreateNew()
	_, _ = m.Update("second")
	second := m.Current()

	if err := m.Delete(second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if m.Current().ID != first.ID {
		t.Errorf("current = %q, want %q", m.Current().ID, first.ID)
	}
}

func TestDelete_LastDraftCreatesNew(t *testing.T) {
	m := testManager(t)
	_, _ = m.Update("only one")
	only := m.Current()

	if err := m.Delete(only.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cur := m.Current()
	if cur.ID == only.ID || cur.ID == "" {
		t.Error("expected a fresh current draft")
	}
}

func TestImport_DoesNotChangeCurrent(t *testing.T) {
	m := testManager(t)
	before := m.Current()
	d, err := m.Import("shared text from elsewhere")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if d.Content != "shared text from elsewhere" {
		t.Errorf("content = %q", d.Content)
	}
	if m.Current().ID != before.ID {
		t.Error("import must not steal the current pointer")
	}
}

func TestPersistence_SurvivesRestart(t *testing.T) {
	store := testStore(t)
	m1, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	_, _ = m1.Update("carry me over")
	id := m1.Current().ID

	m2, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager (reload): %v", err)
	}
	got, err := m2.Get(id)
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got.Content != "carry me over" {
		t.Errorf("content = %q", got.Content)
	}
	if m2.Current().ID != id {
		t.Error("most recent active draft should be current after reload")
	}
}

func TestInvariant_ExactlyOneCurrent(t *testing.T) {
	m := testManager(t)
	_, _ = m.Update("a")
	a := m.Current()
	_, _ = m.CreateNew()
	_, _ = m.Update("b")
	b := m.Current()

	steps := []func() error{
		func() error { _, err := m.Select(a.ID); return err },
		func() error { return m.Archive(a.ID) },
		func() error { return m.Restore(a.ID) },
		func() error { return m.Delete(b.ID) },
		func() error { _, err := m.CreateNew(); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		cur := m.Current()
		if cur.ID == "" {
			t.Fatalf("step %d: no current draft", i)
		}
		seen := map[string]bool{}
		for _, d := range m.List() {
			if seen[d.ID] {
				t.Fatalf("step %d: duplicate id %q", i, d.ID)
			}
			seen[d.ID] = true
		}
	}
}
