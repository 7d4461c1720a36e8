package services

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

// Clock returns the current instant. Tests replace it to pin "today".
type Clock func() time.Time

// AchievementScheduler queues an asynchronous achievement re-check.
type AchievementScheduler interface {
	Enqueue(userID string)
}

// userLocks serializes read-modify-write cycles per user. Entries are
// reference counted and removed once no caller holds or waits on them.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (u *userLocks) lock(userID string) func() {
	u.mu.Lock()
	if u.locks == nil {
		u.locks = make(map[string]*userLock)
	}
	l, ok := u.locks[userID]
	if !ok {
		l = &userLock{}
		u.locks[userID] = l
	}
	l.refs++
	u.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, userID)
		}
		u.mu.Unlock()
	}
}

func (u *userLocks) size() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.locks)
}

// notify never fails the caller: delivery problems are only logged.
func notify(ctx context.Context, n domain.Notifier, log *logger.Logger, msg domain.Notification) {
	if n == nil {
		return
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if err := n.Notify(ctx, msg); err != nil {
		log.Warn("notification not delivered", "user_id", msg.UserID, "kind", msg.Kind, "error", err)
	}
}

func saveFailed(userID, what string) domain.Notification {
	return domain.Notification{
		UserID:  userID,
		Kind:    domain.NotifySaveFailed,
		Title:   "Changes not saved",
		Message: "Your " + what + " may not have been saved. Please try again.",
	}
}
