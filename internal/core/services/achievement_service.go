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

// AchievementDeps groups the fact sources the evaluator reads from.
type AchievementDeps struct {
	Earned     domain.AchievementRepository
	Progress   domain.ProgressRepository
	Tradelines domain.TradelineRepository
	Streaks    domain.StreakRepository
	Profiles   domain.ProfileRepository
	Notifier   domain.Notifier
}

type AchievementService struct {
	catalog   *domain.AchievementCatalog
	evaluator *domain.Evaluator
	deps      AchievementDeps
	log       *logger.Logger
	now       Clock
	locks     userLocks
}

func NewAchievementService(catalog *domain.AchievementCatalog, evaluator *domain.Evaluator, deps AchievementDeps, log *logger.Logger) *AchievementService {
	return &AchievementService{
		catalog:   catalog,
		evaluator: evaluator,
		deps:      deps,
		log:       log.With("service", "AchievementService"),
		now:       time.Now,
	}
}

func (s *AchievementService) SetClock(c Clock) {
	s.now = c
}

func (s *AchievementService) Catalog() *domain.AchievementCatalog {
	return s.catalog
}

// Facts gathers everything the evaluator needs. A missing streak row or
// profile is not an error: those facts are simply absent.
func (s *AchievementService) Facts(ctx context.Context, userID string) (domain.AchievementFacts, error) {
	var facts domain.AchievementFacts

	records, err := s.deps.Progress.ListByUser(ctx, userID)
	if err != nil {
		return facts, fmt.Errorf("achievement service: progress facts: %w", err)
	}
	facts.Progress = records

	count, err := s.deps.Tradelines.CountByUser(ctx, userID)
	if err != nil {
		return facts, fmt.Errorf("achievement service: tradeline facts: %w", err)
	}
	facts.TradelineCount = count

	streak, err := s.deps.Streaks.Get(ctx, userID)
	switch {
	case err == nil:
		facts.Streak = streak
	case !errors.Is(err, domain.ErrStreakNotFound):
		return facts, fmt.Errorf("achievement service: streak facts: %w", err)
	}

	if s.deps.Profiles != nil {
		profile, err := s.deps.Profiles.Get(ctx, userID)
		switch {
		case err == nil:
			facts.AccountCreatedAt = profile.CreatedAt
		case !errors.Is(err, domain.ErrProfileNotFound):
			return facts, fmt.Errorf("achievement service: profile facts: %w", err)
		}
	}
	return facts, nil
}

func (s *AchievementService) CheckRequirementMet(ctx context.Context, userID, achievementID string) (bool, error) {
	a, ok := s.catalog.Get(achievementID)
	if !ok {
		return false, domain.ErrUnknownAchievement
	}
	facts, err := s.Facts(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.evaluator.CheckRequirementMet(a, facts), nil
}

func (s *AchievementService) earnedSet(ctx context.Context, userID string) (map[string]*domain.EarnedAchievement, error) {
	rows, err := s.deps.Earned.ListEarned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("achievement service: list earned: %w", err)
	}
	set := make(map[string]*domain.EarnedAchievement, len(rows))
	for _, r := range rows {
		if _, dup := set[r.AchievementID]; !dup {
			set[r.AchievementID] = r
		}
	}
	return set, nil
}

func (s *AchievementService) IsEarned(ctx context.Context, userID, achievementID string) (bool, error) {
	set, err := s.earnedSet(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := set[achievementID]
	return ok, nil
}

// Award stores the achievement once. It reports whether this call earned
// it; an existing row is a no-op, not an error.
func (s *AchievementService) Award(ctx context.Context, userID, achievementID string) (bool, error) {
	a, ok := s.catalog.Get(achievementID)
	if !ok {
		return false, domain.ErrUnknownAchievement
	}

	earned := &domain.EarnedAchievement{
		ID:            uuid.NewString(),
		UserID:        userID,
		AchievementID: a.ID,
		EarnedAt:      s.now().UTC(),
		Metadata:      domain.Metadata{"xp_reward": a.XPReward, "tier": a.Tier.String()},
	}
	inserted, err := s.deps.Earned.Insert(ctx, earned)
	if err != nil {
		s.log.Error("failed to award achievement", "user_id", userID, "achievement_id", a.ID, "error", err)
		return false, fmt.Errorf("achievement service: award %s: %w", a.ID, err)
	}
	if !inserted {
		return false, nil
	}

	s.log.Info("achievement unlocked", "user_id", userID, "achievement_id", a.ID, "xp", a.XPReward)
	notify(ctx, s.deps.Notifier, s.log, domain.Notification{
		UserID:  userID,
		Kind:    domain.NotifyAchievementUnlocked,
		Title:   "Achievement unlocked: " + a.Name,
		Message: a.Description,
		Data:    domain.Metadata{"achievement_id": a.ID, "xp_reward": a.XPReward},
	})
	return true, nil
}

// CheckAndAward walks the catalog in order and awards every achievement
// whose requirement is met and that is not yet earned. Repeated calls with
// unchanged facts award nothing.
func (s *AchievementService) CheckAndAward(ctx context.Context, userID string) ([]domain.Achievement, error) {
	defer s.locks.lock(userID)()

	facts, err := s.Facts(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.earnedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []domain.Achievement
	var errs []error
	for _, a := range s.catalog.All() {
		if _, done := earned[a.ID]; done {
			continue
		}
		if !s.evaluator.CheckRequirementMet(a, facts) {
			continue
		}
		ok, err := s.Award(ctx, userID, a.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			awarded = append(awarded, a)
		}
	}
	return awarded, errors.Join(errs...)
}

// List returns the catalog joined with the user's earned and eligible state.
func (s *AchievementService) List(ctx context.Context, userID string) ([]domain.AchievementView, error) {
	facts, err := s.Facts(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.earnedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := s.catalog.All()
	views := make([]domain.AchievementView, 0, len(all))
	for _, a := range all {
		v := domain.AchievementView{Achievement: a}
		if e, ok := earned[a.ID]; ok {
			at := e.EarnedAt
			v.Earned = true
			v.EarnedAt = &at
		} else {
			v.Eligible = s.evaluator.CheckRequirementMet(a, facts)
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *AchievementService) Stats(ctx context.Context, userID string) (domain.AchievementStats, error) {
	rows, err := s.deps.Earned.ListEarned(ctx, userID)
	if err != nil {
		return domain.AchievementStats{}, fmt.Errorf("achievement service: stats: %w", err)
	}
	return domain.BuildStats(s.catalog, rows), nil
}
