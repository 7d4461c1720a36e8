package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

var _ domain.ProgressRepository = (*CachedProgressRepository)(nil)

const progressCacheTTL = 30 * time.Minute

// CachedProgressRepository is a cache-aside decorator over the user's full
// progress list. Any write drops the user's key.
type CachedProgressRepository struct {
	next  domain.ProgressRepository
	cache *redis.Client
	log   *logger.Logger
}

func NewCachedProgressRepository(next domain.ProgressRepository, cache *redis.Client, log *logger.Logger) *CachedProgressRepository {
	return &CachedProgressRepository{
		next:  next,
		cache: cache,
		log:   log.With("component", "progress_cache"),
	}
}

func (r *CachedProgressRepository) cacheKey(userID string) string {
	return fmt.Sprintf("progress:%s", userID)
}

func (r *CachedProgressRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		r.log.Warn("cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (r *CachedProgressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ProgressRecord, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var records []*domain.ProgressRecord
		if err := json.Unmarshal(val, &records); err == nil {
			return records, nil
		}

		r.log.Warn("corrupted cache entry, cleaning up key", "user_id", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("cache read failed", "error", err)
	}

	records, err := r.next.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if setErr := r.cache.Set(ctx, key, data, progressCacheTTL).Err(); setErr != nil {
			r.log.Warn("cache write failed", "error", setErr)
		}
	}

	return records, nil
}

func (r *CachedProgressRepository) Get(ctx context.Context, userID string, module domain.ModuleID, step string) (*domain.ProgressRecord, error) {
	return r.next.Get(ctx, userID, module, step)
}

func (r *CachedProgressRepository) Upsert(ctx context.Context, record *domain.ProgressRecord) error {
	if err := r.next.Upsert(ctx, record); err != nil {
		return err
	}
	r.invalidate(ctx, record.UserID)
	return nil
}
