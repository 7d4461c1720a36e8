package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

// RedisTokenStore is the persistent, remember-me store. Entries outlive a
// process restart and expire with their TTL.
type RedisTokenStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, prefix: "session:"}
}

func (s *RedisTokenStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisTokenStore) Save(ctx context.Context, userID string, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("token store: encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("token store: save: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("token store: load: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		s.rdb.Del(ctx, s.key(userID))
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("token store: delete: %w", err)
	}
	return nil
}

// MemoryTokenStore is the session-scoped store: it lives as long as the
// process does.
type MemoryTokenStore struct {
	mu   sync.Mutex
	now  func() time.Time
	rows map[string]memoryToken
}

type memoryToken struct {
	session   domain.Session
	expiresAt time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{now: time.Now, rows: make(map[string]memoryToken)}
}

func (s *MemoryTokenStore) Save(ctx context.Context, userID string, session *domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.rows[userID] = memoryToken{session: *session, expiresAt: exp}
	return nil
}

func (s *MemoryTokenStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !row.expiresAt.IsZero() && !s.now().Before(row.expiresAt) {
		delete(s.rows, userID)
		return nil, domain.ErrSessionNotFound
	}
	session := row.session
	return &session, nil
}

func (s *MemoryTokenStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, userID)
	return nil
}
