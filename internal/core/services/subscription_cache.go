package services

import (
	"sync"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

type subscriptionEntry struct {
	sub       domain.Subscription
	fetchedAt time.Time
}

// SubscriptionCache holds subscription lookups per user for a fixed TTL.
// It is owned by the session facade and emptied on sign-out.
type SubscriptionCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     Clock
	entries map[string]subscriptionEntry
}

func NewSubscriptionCache(ttl time.Duration) *SubscriptionCache {
	return &SubscriptionCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]subscriptionEntry),
	}
}

// Get returns a cached value only while it is fresh.
func (c *SubscriptionCache) Get(userID string) (domain.Subscription, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return domain.Subscription{}, false
	}
	return e.sub, true
}

// Peek returns the last value regardless of age and when it was fetched.
func (c *SubscriptionCache) Peek(userID string) (domain.Subscription, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	return e.sub, e.fetchedAt, ok
}

func (c *SubscriptionCache) Set(userID string, sub domain.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = subscriptionEntry{sub: sub, fetchedAt: c.now()}
}

func (c *SubscriptionCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

func (c *SubscriptionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]subscriptionEntry)
}

func (c *SubscriptionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
