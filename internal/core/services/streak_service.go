package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

type StreakService struct {
	repo     domain.StreakRepository
	notifier domain.Notifier
	log      *logger.Logger
	loc      *time.Location
	now      Clock
	locks    userLocks
}

// NewStreakService computes calendar days in loc (UTC when nil).
func NewStreakService(repo domain.StreakRepository, notifier domain.Notifier, log *logger.Logger, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakService{
		repo:     repo,
		notifier: notifier,
		log:      log.With("service", "StreakService"),
		loc:      loc,
		now:      time.Now,
	}
}

func (s *StreakService) SetClock(c Clock) {
	s.now = c
}

func (s *StreakService) today() string {
	return domain.Today(s.now(), s.loc)
}

// Get returns the user's streak row, creating a zeroed one on first access.
func (s *StreakService) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	state, err := s.repo.Get(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrStreakNotFound) {
		return nil, fmt.Errorf("streak service: load: %w", err)
	}

	state = domain.NewStreakState(userID)
	if err := s.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("streak service: create: %w", err)
	}
	return state, nil
}

// RecordLogin applies today's login. recorded is false when a login was
// already counted today. The returned state is the persisted one: on a
// failed write the previous state is returned together with the error.
func (s *StreakService) RecordLogin(ctx context.Context, userID string) (state *domain.StreakState, recorded bool, err error) {
	defer s.locks.lock(userID)()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	next := current.Clone()
	if !next.RecordLogin(s.today()) {
		return current, false, nil
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Error("failed to persist login streak", "user_id", userID, "error", err)
		return current, false, fmt.Errorf("streak service: save login: %w", err)
	}

	if domain.IsMilestone(next.LoginStreakCurrent) {
		notify(ctx, s.notifier, s.log, domain.Notification{
			UserID:  userID,
			Kind:    domain.NotifyStreakMilestone,
			Title:   fmt.Sprintf("%d-day login streak!", next.LoginStreakCurrent),
			Message: "You keep showing up. Keep the streak alive tomorrow.",
			Data:    domain.Metadata{"streak": "login", "count": next.LoginStreakCurrent},
		})
	}
	return next, true, nil
}

// RecordTaskCompletion counts one completed task. The lifetime total grows
// on every call, the streak only on the first task of the day.
func (s *StreakService) RecordTaskCompletion(ctx context.Context, userID string) (*domain.StreakState, error) {
	defer s.locks.lock(userID)()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	moved := next.RecordTask(s.today())
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Error("failed to persist task streak", "user_id", userID, "error", err)
		return current, fmt.Errorf("streak service: save task: %w", err)
	}

	if moved && domain.IsMilestone(next.TaskStreakCurrent) {
		notify(ctx, s.notifier, s.log, domain.Notification{
			UserID:  userID,
			Kind:    domain.NotifyStreakMilestone,
			Title:   fmt.Sprintf("%d-day task streak!", next.TaskStreakCurrent),
			Message: "Another day, another step forward.",
			Data:    domain.Metadata{"streak": "task", "count": next.TaskStreakCurrent},
		})
	}
	return next, nil
}

type StreakSummary struct {
	*domain.StreakState
	domain.StreakStatus
}

func (s *StreakService) Summary(ctx context.Context, userID string) (*StreakSummary, error) {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StreakSummary{StreakState: state, StreakStatus: state.Status(s.today())}, nil
}

// Status never fails on missing data; a load error degrades to "not at risk".
func (s *StreakService) Status(ctx context.Context, userID string) domain.StreakStatus {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrStreakNotFound) {
			s.log.Warn("streak status unavailable", "user_id", userID, "error", err)
		}
		return domain.StreakStatus{}
	}
	return state.Status(s.today())
}
