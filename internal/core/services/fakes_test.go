package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

var errStorage = errors.New("storage unavailable")

func ptr[T any](v T) *T {
	return &v
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeProgressRepo struct {
	mu            sync.Mutex
	rows          map[string]*domain.ProgressRecord
	simulateError error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*domain.ProgressRecord)}
}

func progressKey(userID string, module domain.ModuleID, step string) string {
	return userID + "|" + string(module) + "|" + step
}

func (r *fakeProgressRepo) ListByUser(ctx context.Context, userID string) ([]*domain.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProgressRecord
	for _, rec := range r.rows {
		if rec.UserID == userID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) Get(ctx context.Context, userID string, module domain.ModuleID, step string) (*domain.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[progressKey(userID, module, step)]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeProgressRepo) Upsert(ctx context.Context, rec *domain.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.simulateError != nil {
		return r.simulateError
	}
	clone := *rec
	r.rows[progressKey(rec.UserID, rec.Module, rec.Step)] = &clone
	return nil
}

func (r *fakeProgressRepo) complete(userID string, module domain.ModuleID, steps ...string) {
	for _, s := range steps {
		rec, _ := domain.NewProgressRecord(userID, module, s)
		rec.SetCompleted(true, time.Now())
		_ = r.Upsert(context.Background(), rec)
	}
}

type fakeStreakRepo struct {
	mu            sync.Mutex
	rows          map[string]*domain.StreakState
	saves         int
	simulateError error
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{rows: make(map[string]*domain.StreakState)}
}

func (r *fakeStreakRepo) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[userID]
	if !ok {
		return nil, domain.ErrStreakNotFound
	}
	return s.Clone(), nil
}

func (r *fakeStreakRepo) Save(ctx context.Context, s *domain.StreakState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.simulateError != nil {
		return r.simulateError
	}
	r.saves++
	r.rows[s.UserID] = s.Clone()
	return nil
}

type fakeAchievementRepo struct {
	mu            sync.Mutex
	rows          []*domain.EarnedAchievement
	inserts       int
	simulateError error
}

func (r *fakeAchievementRepo) ListEarned(ctx context.Context, userID string) ([]*domain.EarnedAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.EarnedAchievement
	for _, e := range r.rows {
		if e.UserID == userID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) Insert(ctx context.Context, e *domain.EarnedAchievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.simulateError != nil {
		return false, r.simulateError
	}
	r.inserts++
	for _, existing := range r.rows {
		if existing.UserID == e.UserID && existing.AchievementID == e.AchievementID {
			return false, nil
		}
	}
	clone := *e
	r.rows = append(r.rows, &clone)
	return true, nil
}

func (r *fakeAchievementRepo) count(userID string) int {
	rows, _ := r.ListEarned(context.Background(), userID)
	return len(rows)
}

type fakeTradelineRepo struct {
	mu   sync.Mutex
	rows []*domain.Tradeline
}

func (r *fakeTradelineRepo) Create(ctx context.Context, t *domain.Tradeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *fakeTradelineRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Tradeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Tradeline
	for _, t := range r.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTradelineRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	rows, _ := r.ListByUser(ctx, userID)
	return len(rows), nil
}

type fakeLayoutRepo struct {
	mu            sync.Mutex
	rows          map[string]*domain.WidgetLayout
	saves         int
	simulateError error
}

func newFakeLayoutRepo() *fakeLayoutRepo {
	return &fakeLayoutRepo{rows: make(map[string]*domain.WidgetLayout)}
}

func (r *fakeLayoutRepo) Get(ctx context.Context, userID string) (*domain.WidgetLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[userID]
	if !ok {
		return nil, domain.ErrLayoutNotFound
	}
	clone := *l
	clone.WidgetOrder = append([]string(nil), l.WidgetOrder...)
	clone.HiddenWidgets = append([]string(nil), l.HiddenWidgets...)
	return &clone, nil
}

func (r *fakeLayoutRepo) Save(ctx context.Context, l *domain.WidgetLayout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.simulateError != nil {
		return r.simulateError
	}
	r.saves++
	clone := *l
	clone.WidgetOrder = append([]string(nil), l.WidgetOrder...)
	clone.HiddenWidgets = append([]string(nil), l.HiddenWidgets...)
	r.rows[l.UserID] = &clone
	return nil
}

type fakeProfileRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{rows: make(map[string]*domain.Profile)}
}

func (r *fakeProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.rows[p.ID] = &clone
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.NotificationKind
	for _, m := range n.sent {
		out = append(out, m.Kind)
	}
	return out
}

func (n *recordingNotifier) byKind(kind domain.NotificationKind) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for _, m := range n.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

type recordingScheduler struct {
	mu    sync.Mutex
	users []string
}

func (s *recordingScheduler) Enqueue(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, userID)
}

type memoryTokenStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Session
	ttls map[string]time.Duration
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{rows: map[string]*domain.Session{}, ttls: map[string]time.Duration{}}
}

func (m *memoryTokenStore) Save(ctx context.Context, userID string, s *domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = s
	m.ttls[userID] = ttl
	return nil
}

func (m *memoryTokenStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *memoryTokenStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}
