package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
	"github.com/google/uuid"
)

// TaskRecorder is the streak side effect of completing a step.
type TaskRecorder interface {
	RecordTaskCompletion(ctx context.Context, userID string) (*domain.StreakState, error)
}

type ProgressService struct {
	repo     domain.ProgressRepository
	tasks    TaskRecorder
	checks   AchievementScheduler
	notifier domain.Notifier
	log      *logger.Logger
	now      Clock
	locks    userLocks
}

func NewProgressService(repo domain.ProgressRepository, tasks TaskRecorder, checks AchievementScheduler, notifier domain.Notifier, log *logger.Logger) *ProgressService {
	return &ProgressService{
		repo:     repo,
		tasks:    tasks,
		checks:   checks,
		notifier: notifier,
		log:      log.With("service", "ProgressService"),
		now:      time.Now,
	}
}

func (s *ProgressService) SetClock(c Clock) {
	s.now = c
}

type SaveStepInput struct {
	UserID    string
	Module    domain.ModuleID
	Step      string
	Completed bool
	Notes     *string
	Metadata  domain.Metadata
}

type ProgressOverview struct {
	Modules           []domain.ModuleProgressView `json:"modules"`
	OverallPercentage int                         `json:"overall_percentage"`
	TotalCompleted    int                         `json:"total_completed"`
	NextSteps         map[domain.ModuleID]string  `json:"next_steps"`
}

func (s *ProgressService) List(ctx context.Context, userID string) (domain.ProgressSet, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("progress service: list: %w", err)
	}
	return domain.ProgressSet(records), nil
}

func (s *ProgressService) ModuleProgress(ctx context.Context, userID string, module domain.ModuleID) (domain.ModuleProgressView, error) {
	set, err := s.List(ctx, userID)
	if err != nil {
		return domain.ModuleProgressView{}, err
	}
	return set.ModuleProgress(module), nil
}

func (s *ProgressService) AllModules(ctx context.Context, userID string) ([]domain.ModuleProgressView, error) {
	set, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return set.AllModulesProgress(), nil
}

// NextStep returns ok=false once every step of the module is completed.
func (s *ProgressService) NextStep(ctx context.Context, userID string, module domain.ModuleID) (step string, ok bool, err error) {
	if _, known := domain.LookupModule(module); !known {
		return "", false, domain.ErrUnknownModule
	}
	set, err := s.List(ctx, userID)
	if err != nil {
		return "", false, err
	}
	step, ok = set.NextStep(module)
	return step, ok, nil
}

func (s *ProgressService) Overview(ctx context.Context, userID string) (*ProgressOverview, error) {
	set, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := make(map[domain.ModuleID]string)
	for _, id := range domain.ModuleIDs() {
		if step, ok := set.NextStep(id); ok {
			next[id] = step
		}
	}
	return &ProgressOverview{
		Modules:           set.AllModulesProgress(),
		OverallPercentage: set.OverallPercentage(),
		TotalCompleted:    set.TotalCompleted(),
		NextSteps:         next,
	}, nil
}

// SaveStep upserts one step. A step turning completed counts as a task for
// the streak engine; every successful save schedules an achievement re-check.
func (s *ProgressService) SaveStep(ctx context.Context, input SaveStepInput) (*domain.ProgressRecord, error) {
	if err := domain.ValidateStep(input.Module, input.Step); err != nil {
		return nil, err
	}

	defer s.locks.lock(input.UserID)()

	record, err := s.repo.Get(ctx, input.UserID, input.Module, input.Step)
	switch {
	case errors.Is(err, domain.ErrProgressNotFound):
		record, err = domain.NewProgressRecord(input.UserID, input.Module, input.Step)
		if err != nil {
			return nil, err
		}
		record.ID = uuid.NewString()
	case err != nil:
		return nil, fmt.Errorf("progress service: load step: %w", err)
	}

	wasCompleted := record.Completed
	now := s.now()
	record.SetCompleted(input.Completed, now)
	if input.Notes != nil {
		record.Notes = input.Notes
	}
	if input.Metadata != nil {
		record.Metadata = input.Metadata
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		s.log.Error("failed to save progress", "user_id", input.UserID, "module", input.Module, "step", input.Step, "error", err)
		notify(ctx, s.notifier, s.log, saveFailed(input.UserID, "progress"))
		return nil, fmt.Errorf("progress service: save step: %w", err)
	}

	if !wasCompleted && record.Completed && s.tasks != nil {
		if _, err := s.tasks.RecordTaskCompletion(ctx, input.UserID); err != nil {
			s.log.Warn("task streak not updated", "user_id", input.UserID, "error", err)
		}
	}
	if s.checks != nil {
		s.checks.Enqueue(input.UserID)
	}
	return record, nil
}
