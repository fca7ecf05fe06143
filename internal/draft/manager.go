// Package draft implements the capture-buffer lifecycle: a state machine
// over drafts with a single "current" pointer, persisted write-through as
// one JSON array in the state store.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/apperr"
	"github.com/psycho-baller/obsidian-journal/internal/models"
	"github.com/psycho-baller/obsidian-journal/internal/storage"
)

// draftsKey is the fixed state-store key for the serialized collection.
const draftsKey = "drafts.json"

// Manager owns the draft collection and the current pointer. After any
// operation completes, exactly one draft is current and ids are unique.
// Every mutation re-serializes the whole collection (last writer wins).
type Manager struct {
	mu      sync.Mutex
	store   storage.Provider
	drafts  []models.Draft
	current string
	now     func() time.Time
}

// NewManager loads the persisted collection, prunes empty active drafts,
// and establishes the current pointer: the most recently modified active
// draft, or a fresh empty one.
func NewManager(store storage.Provider) (*Manager, error) {
	m := &Manager{store: store, now: time.Now}

	if err := m.load(); err != nil {
		return nil, err
	}

	m.pruneEmpty("")
	if latest := m.latestActive(); latest != "" {
		m.current = latest
	} else {
		m.newCurrentLocked()
	}
	if err := m.persist(); err != nil {
		return nil, err
	}

	slog.Debug("draft: manager initialized",
		slog.Int("total", len(m.drafts)),
		slog.String("current", m.current))
	return m, nil
}

// Current returns the current draft.
func (m *Manager) Current() models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, _ := m.find(m.current)
	return d
}

// Get returns the draft with the given id.
func (m *Manager) Get(id string) (models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.find(id)
	if !ok {
		return models.Draft{}, apperr.ErrNotFound
	}
	return d, nil
}

// List returns all drafts ordered by modification time, newest first.
func (m *Manager) List() []models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Draft, len(m.drafts))
	copy(out, m.drafts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ModifiedAt.After(out[j].ModifiedAt)
	})
	return out
}

// CreateNew makes a fresh empty draft current. When the current draft is
// already active and empty it is reused instead, so blank buffers never
// accumulate.
func (m *Manager) CreateNew() (models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.find(m.current); ok && cur.Active() && cur.IsEmpty() {
		return cur, nil
	}

	m.pruneEmpty(m.current)
	d := m.newCurrentLocked()
	if err := m.persist(); err != nil {
		return models.Draft{}, err
	}
	slog.Info("draft: created", slog.String("id", d.ID))
	return d, nil
}

// Update replaces the current draft's content and bumps its modified time.
func (m *Manager) Update(content string) (models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index(m.current)
	if !ok {
		return models.Draft{}, apperr.ErrNotFound
	}
	m.drafts[i].Content = content
	m.drafts[i].ModifiedAt = m.now()
	if err := m.persist(); err != nil {
		return models.Draft{}, err
	}
	return m.drafts[i], nil
}

// Import creates a draft pre-filled with externally injected content
// (share sheet / file import). It does not change the current pointer.
func (m *Manager) Import(content string) (models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := models.NewDraft(m.now())
	d.Content = content
	m.drafts = append(m.drafts, d)
	if err := m.persist(); err != nil {
		return models.Draft{}, err
	}
	slog.Info("draft: imported", slog.String("id", d.ID))
	return d, nil
}

// Select makes the draft with the given id current. An outgoing current
// draft that is active, empty, and distinct from the target is discarded.
func (m *Manager) Select(id string) (models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.find(id)
	if !ok {
		return models.Draft{}, apperr.ErrNotFound
	}

	if cur, ok := m.find(m.current); ok && cur.ID != target.ID && cur.Active() && cur.IsEmpty() {
		m.remove(cur.ID)
		slog.Debug("draft: auto-discarded empty draft", slog.String("id", cur.ID))
	}

	m.current = target.ID
	if err := m.persist(); err != nil {
		return models.Draft{}, err
	}
	return target, nil
}

// Archive marks a draft as merged. Archiving the current draft hands the
// current pointer to a fresh empty one.
func (m *Manager) Archive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index(id)
	if !ok {
		return apperr.ErrNotFound
	}
	m.drafts[i].Status = models.StatusArchived
	m.drafts[i].ModifiedAt = m.now()

	if m.current == id {
		m.pruneEmpty(m.current)
		m.newCurrentLocked()
	}
	if err := m.persist(); err != nil {
		return err
	}
	slog.Info("draft: archived", slog.String("id", id))
	return nil
}

// Restore returns an archived draft to the active state. It does not become
// current; the caller decides that. Other empty active drafts are pruned
// first.
func (m *Manager) Restore(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index(id)
	if !ok {
		return apperr.ErrNotFound
	}

	m.pruneEmptyExcept(id, m.current)
	// Indexes may have shifted.
	i, _ = m.index(id)
	m.drafts[i].Status = models.StatusDraft
	m.drafts[i].ModifiedAt = m.now()

	if err := m.persist(); err != nil {
		return err
	}
	slog.Info("draft: restored", slog.String("id", id))
	return nil
}

// Delete removes a draft unconditionally. When the current draft is
// deleted, the most recently modified remaining active draft (or a fresh
// one) becomes current.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index(id); !ok {
		return apperr.ErrNotFound
	}
	m.remove(id)

	if m.current == id {
		if latest := m.latestActive(); latest != "" {
			m.current = latest
		} else {
			m.newCurrentLocked()
		}
	}
	if err := m.persist(); err != nil {
		return err
	}
	slog.Info("draft: deleted", slog.String("id", id))
	return nil
}

// --- internal helpers (caller holds the lock) ---

func (m *Manager) find(id string) (models.Draft, bool) {
	i, ok := m.index(id)
	if !ok {
		return models.Draft{}, false
	}
	return m.drafts[i], true
}

func (m *Manager) index(id string) (int, bool) {
	for i := range m.drafts {
		if m.drafts[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (m *Manager) remove(id string) {
	for i := range m.drafts {
		if m.drafts[i].ID == id {
			m.drafts = append(m.drafts[:i], m.drafts[i+1:]...)
			return
		}
	}
}

// pruneEmpty removes active drafts with whitespace-only content, keeping
// the one with the given id.
func (m *Manager) pruneEmpty(keep string) {
	m.pruneEmptyExcept(keep, keep)
}

func (m *Manager) pruneEmptyExcept(keep, keep2 string) {
	kept := m.drafts[:0]
	for _, d := range m.drafts {
		if d.ID != keep && d.ID != keep2 && d.Active() && d.IsEmpty() {
			continue
		}
		kept = append(kept, d)
	}
	m.drafts = kept
}

// latestActive returns the id of the most recently modified active draft.
func (m *Manager) latestActive() string {
	var id string
	var best time.Time
	for _, d := range m.drafts {
		if d.Active() && (id == "" || d.ModifiedAt.After(best)) {
			id = d.ID
			best = d.ModifiedAt
		}
	}
	return id
}

func (m *Manager) newCurrentLocked() models.Draft {
	d := models.NewDraft(m.now())
	m.drafts = append(m.drafts, d)
	m.current = d.ID
	return d
}

func (m *Manager) load() error {
	data, err := m.store.Read(draftsKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var drafts []models.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		// Malformed collection is treated as no data, not fatal.
		slog.Warn("draft: persisted collection malformed, resetting",
			slog.String("error", err.Error()))
		m.drafts = nil
		return nil
	}
	m.drafts = drafts
	return nil
}

func (m *Manager) persist() error {
	data, err := json.Marshal(m.drafts)
	if err != nil {
		return fmt.Errorf("draft: encode collection: %w", err)
	}
	return m.store.Write(draftsKey, data)
}
