package workers

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

type AchievementChecker interface {
	CheckAndAward(ctx context.Context, userID string) ([]domain.Achievement, error)
}

// DefaultJobTimeout bounds a single re-check.
const DefaultJobTimeout = 30 * time.Second

type AchievementJob struct {
	UserID string
}

// AchievementWorker re-evaluates achievements off the request path.
// Enqueue never blocks; jobs for a user already waiting are coalesced.
type AchievementWorker struct {
	checker AchievementChecker
	log     *logger.Logger
	jobs    chan AchievementJob
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]bool

	wg sync.WaitGroup
}

func NewAchievementWorker(checker AchievementChecker, log *logger.Logger, queueSize int) *AchievementWorker {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &AchievementWorker{
		checker: checker,
		log:     log.With("worker", "AchievementWorker"),
		jobs:    make(chan AchievementJob, queueSize),
		timeout: DefaultJobTimeout,
		pending: make(map[string]bool),
	}
}

// SetJobTimeout changes the per-job deadline. Call it before Start.
func (w *AchievementWorker) SetJobTimeout(d time.Duration) {
	if d > 0 {
		w.timeout = d
	}
}

func (w *AchievementWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.log.Info("achievement worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.log.Info("achievement worker shutting down")
				return
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (w *AchievementWorker) Wait() {
	w.wg.Wait()
}

func (w *AchievementWorker) Enqueue(userID string) {
	w.mu.Lock()
	if w.pending[userID] {
		w.mu.Unlock()
		return
	}
	w.pending[userID] = true
	w.mu.Unlock()

	select {
	case w.jobs <- AchievementJob{UserID: userID}:
	default:
		w.mu.Lock()
		delete(w.pending, userID)
		w.mu.Unlock()
		w.log.Warn("achievement queue full, dropping job", "user_id", userID)
	}
}

func (w *AchievementWorker) processJob(ctx context.Context, job AchievementJob) {
	w.mu.Lock()
	delete(w.pending, job.UserID)
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	awarded, err := w.checker.CheckAndAward(ctx, job.UserID)
	if err != nil {
		w.log.Error("achievement check failed", "user_id", job.UserID, "error", err)
	}
	for _, a := range awarded {
		w.log.Info("achievement awarded", "user_id", job.UserID, "achievement_id", a.ID)
	}
}
