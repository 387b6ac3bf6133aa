package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"homeboard/internal/errs"
	"homeboard/internal/models"
)

// MemoryStore is an in-process Store used by tests and throwaway runs.
// The state document is kept encoded so loads go through the same
// reconcile path as the SQLite store.
type MemoryStore struct {
	mu       sync.RWMutex
	settings map[string]string
	state    []byte
	popups   map[string]models.Popup
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		settings: make(map[string]string),
		popups:   make(map[string]models.Popup),
	}
}

func (m *MemoryStore) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *MemoryStore) LoadState(_ context.Context) (*models.SharedState, error) {
	m.mu.RLock()
	raw := m.state
	m.mu.RUnlock()

	if raw == nil {
		return nil, nil
	}
	doc, err := models.DecodeState(raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *MemoryStore) SaveState(_ context.Context, doc models.SharedState) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = raw
	return nil
}

// PutRawState stores an encoded document as-is, bypassing the encoder.
// Tests use it to simulate documents written by older schemas.
func (m *MemoryStore) PutRawState(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = append([]byte(nil), raw...)
}

func (m *MemoryStore) GetPopup(_ context.Context, id string) (models.Popup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.popups[id]
	if !ok {
		return models.Popup{}, errs.ErrNotFound
	}
	return copyPopup(p), nil
}

func (m *MemoryStore) UpsertPopup(_ context.Context, p models.Popup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.popups[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	}
	m.popups[p.ID] = copyPopup(p)
	return nil
}

func (m *MemoryStore) ListPopups(_ context.Context) ([]models.Popup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(models.Popup) bool { return true }), nil
}

func (m *MemoryStore) ListActivePopups(_ context.Context, now time.Time) ([]models.Popup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(p models.Popup) bool { return p.IsActive(now) }), nil
}

func (m *MemoryStore) ClearPopups(_ context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.popups {
		p.Visible = false
		p.UpdatedAt = now.UTC()
		m.popups[id] = p
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) sorted(keep func(models.Popup) bool) []models.Popup {
	out := make([]models.Popup, 0, len(m.popups))
	for _, p := range m.popups {
		if keep(p) {
			out = append(out, copyPopup(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func copyPopup(p models.Popup) models.Popup {
	if p.DurationSeconds != nil {
		d := *p.DurationSeconds
		p.DurationSeconds = &d
	}
	if p.ExpiresAt != nil {
		e := *p.ExpiresAt
		p.ExpiresAt = &e
	}
	return p
}
