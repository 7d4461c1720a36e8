package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

// InMemoryStore backs every gamification port with maps guarded by one
// lock. Values are copied on the way in and out so callers never share
// state with the store. Each port is exposed through its own view.
type InMemoryStore struct {
	mu sync.RWMutex

	progress     map[string]*domain.ProgressRecord
	streaks      map[string]*domain.StreakState
	achievements map[string]*domain.EarnedAchievement
	tradelines   map[string][]*domain.Tradeline
	layouts      map[string]*domain.WidgetLayout
	profiles     map[string]*domain.Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		progress:     make(map[string]*domain.ProgressRecord),
		streaks:      make(map[string]*domain.StreakState),
		achievements: make(map[string]*domain.EarnedAchievement),
		tradelines:   make(map[string][]*domain.Tradeline),
		layouts:      make(map[string]*domain.WidgetLayout),
		profiles:     make(map[string]*domain.Profile),
	}
}

func (s *InMemoryStore) Progress() domain.ProgressRepository        { return memoryProgress{s} }
func (s *InMemoryStore) Streaks() domain.StreakRepository           { return memoryStreaks{s} }
func (s *InMemoryStore) Achievements() domain.AchievementRepository { return memoryAchievements{s} }
func (s *InMemoryStore) Tradelines() domain.TradelineRepository     { return memoryTradelines{s} }
func (s *InMemoryStore) Layouts() domain.LayoutRepository           { return memoryLayouts{s} }
func (s *InMemoryStore) Profiles() domain.ProfileRepository         { return memoryProfiles{s} }

type memoryProgress struct{ s *InMemoryStore }

func progressKey(userID string, module domain.ModuleID, step string) string {
	return userID + "|" + string(module) + "|" + step
}

func (m memoryProgress) ListByUser(ctx context.Context, userID string) ([]*domain.ProgressRecord, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := []*domain.ProgressRecord{}
	for _, rec := range m.s.progress {
		if rec.UserID == userID {
			out = append(out, copyProgress(rec))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (m memoryProgress) Get(ctx context.Context, userID string, module domain.ModuleID, step string) (*domain.ProgressRecord, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rec, ok := m.s.progress[progressKey(userID, module, step)]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return copyProgress(rec), nil
}

func (m memoryProgress) Upsert(ctx context.Context, record *domain.ProgressRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	key := progressKey(record.UserID, record.Module, record.Step)
	if existing, ok := m.s.progress[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else if record.ID == "" {
		record.ID = uuid.NewString()
	}

	m.s.progress[key] = copyProgress(record)
	return nil
}

func copyProgress(r *domain.ProgressRecord) *domain.ProgressRecord {
	c := *r
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		c.CompletedAt = &at
	}
	if r.Notes != nil {
		n := *r.Notes
		c.Notes = &n
	}
	c.Metadata = make(domain.Metadata, len(r.Metadata))
	for k, v := range r.Metadata {
		c.Metadata[k] = v
	}
	return &c
}

type memoryStreaks struct{ s *InMemoryStore }

func (m memoryStreaks) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	st, ok := m.s.streaks[userID]
	if !ok {
		return nil, domain.ErrStreakNotFound
	}
	return st.Clone(), nil
}

func (m memoryStreaks) Save(ctx context.Context, state *domain.StreakState) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.streaks[state.UserID] = state.Clone()
	return nil
}

type memoryAchievements struct{ s *InMemoryStore }

func (m memoryAchievements) ListEarned(ctx context.Context, userID string) ([]*domain.EarnedAchievement, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := []*domain.EarnedAchievement{}
	for _, e := range m.s.achievements {
		if e.UserID == userID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EarnedAt.Before(out[j].EarnedAt)
	})
	return out, nil
}

func (m memoryAchievements) Insert(ctx context.Context, e *domain.EarnedAchievement) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	key := e.UserID + "|" + e.AchievementID
	if _, ok := m.s.achievements[key]; ok {
		return false, nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	c := *e
	m.s.achievements[key] = &c
	return true, nil
}

type memoryTradelines struct{ s *InMemoryStore }

func (m memoryTradelines) Create(ctx context.Context, t *domain.Tradeline) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, existing := range m.s.tradelines[t.UserID] {
		if existing.ID == t.ID {
			return domain.ErrInvalidTradeline
		}
	}
	c := *t
	c.ReportsTo = append([]string{}, t.ReportsTo...)
	m.s.tradelines[t.UserID] = append(m.s.tradelines[t.UserID], &c)
	return nil
}

func (m memoryTradelines) ListByUser(ctx context.Context, userID string) ([]*domain.Tradeline, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]*domain.Tradeline, 0, len(m.s.tradelines[userID]))
	for _, t := range m.s.tradelines[userID] {
		c := *t
		c.ReportsTo = append([]string{}, t.ReportsTo...)
		out = append(out, &c)
	}
	return out, nil
}

func (m memoryTradelines) CountByUser(ctx context.Context, userID string) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	return len(m.s.tradelines[userID]), nil
}

type memoryLayouts struct{ s *InMemoryStore }

func (m memoryLayouts) Get(ctx context.Context, userID string) (*domain.WidgetLayout, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	l, ok := m.s.layouts[userID]
	if !ok {
		return nil, domain.ErrLayoutNotFound
	}
	return copyLayout(l), nil
}

func (m memoryLayouts) Save(ctx context.Context, l *domain.WidgetLayout) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.layouts[l.UserID] = copyLayout(l)
	return nil
}

func copyLayout(l *domain.WidgetLayout) *domain.WidgetLayout {
	c := *l
	c.WidgetOrder = append([]domain.WidgetID{}, l.WidgetOrder...)
	c.HiddenWidgets = append([]domain.WidgetID{}, l.HiddenWidgets...)
	return &c
}

type memoryProfiles struct{ s *InMemoryStore }

func (m memoryProfiles) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	p, ok := m.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	c := *p
	return &c, nil
}

func (m memoryProfiles) Upsert(ctx context.Context, p *domain.Profile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c := *p
	if existing, ok := m.s.profiles[p.ID]; ok {
		c.CreatedAt = existing.CreatedAt
		if c.FullName == nil {
			c.FullName = existing.FullName
		}
	}
	m.s.profiles[p.ID] = &c
	p.CreatedAt = c.CreatedAt
	p.FullName = c.FullName
	return nil
}
