package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"morningbrief/internal/core"
)

// MemoryStore is an in-process Store for tests and the memory driver.
// All operations are serialized by a single mutex.
type MemoryStore struct {
	mu        sync.Mutex
	settings  *core.Settings
	briefings map[string]core.Briefing
	byDate    map[core.Date]string
	now       func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore(defaults Defaults) *MemoryStore {
	return &MemoryStore{
		settings:  &core.Settings{LogisticsCost: defaults.LogisticsCost, TaxRate: defaults.TaxRate},
		briefings: make(map[string]core.Briefing),
		byDate:    make(map[core.Date]string),
		now:       time.Now,
	}
}

func (m *MemoryStore) GetSettings(ctx context.Context) (*core.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *m.settings
	return &s, nil
}

func (m *MemoryStore) SaveSettings(ctx context.Context, update core.SettingsUpdate) (*core.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = mergeSettings(m.settings, update, m.now())
	s := *m.settings
	return &s, nil
}

func (m *MemoryStore) HasBriefingOn(ctx context.Context, date core.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byDate[date]
	return ok, nil
}

func (m *MemoryStore) GetLatestBriefing(ctx context.Context) (*core.Briefing, error) {
	history, _ := m.GetBriefingHistory(ctx, 1)
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return &history[0], nil
}

func (m *MemoryStore) GetBriefingHistory(ctx context.Context, limit int) ([]core.Briefing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]core.Briefing, 0, len(m.briefings))
	for _, b := range m.briefings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReportDate.After(out[j].ReportDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetBriefingByID(ctx context.Context, id string) (*core.Briefing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.briefings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStore) SaveBriefing(ctx context.Context, b *core.Briefing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byDate[b.ReportDate]; ok {
		return ErrBriefingExists
	}
	if _, ok := m.briefings[b.ID]; ok {
		return ErrBriefingExists
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.now().UTC()
	}
	m.briefings[b.ID] = *b
	m.byDate[b.ReportDate] = b.ID
	return nil
}

func (m *MemoryStore) DeleteAllBriefings(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.briefings)
	m.briefings = make(map[string]core.Briefing)
	m.byDate = make(map[core.Date]string)
	return n, nil
}

func (m *MemoryStore) DeleteBriefingsSince(ctx context.Context, date core.Date) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for d, id := range m.byDate {
		if !d.Before(date) {
			delete(m.byDate, d)
			delete(m.briefings, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
