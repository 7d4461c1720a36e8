package domain

import (
	"encoding/json"
	"time"
)

type AchievementCategory string

const (
	CategoryFoundation AchievementCategory = "foundation"
	CategoryCredit     AchievementCategory = "credit"
	CategoryBrand      AchievementCategory = "brand"
	CategoryMilestone  AchievementCategory = "milestone"
	CategoryStreak     AchievementCategory = "streak"
	CategorySpecial    AchievementCategory = "special"
)

// AchievementTier is ordered low to high.
type AchievementTier int

const (
	TierBronze AchievementTier = iota + 1
	TierSilver
	TierGold
	TierPlatinum
)

func (t AchievementTier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	default:
		return "unknown"
	}
}

func (t AchievementTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Requirement is a closed sum type: only the variants declared in this
// package implement it.
type Requirement interface {
	Kind() RequirementKind
	isRequirement()
}

type RequirementKind string

const (
	RequirementProgressStep   RequirementKind = "progress_step"
	RequirementProgressCount  RequirementKind = "progress_count"
	RequirementTradelineCount RequirementKind = "tradeline_count"
	RequirementSpecial        RequirementKind = "special"
)

// ProgressStep is met when the given step is completed.
type ProgressStep struct {
	Module ModuleID `json:"module"`
	Step   string   `json:"step"`
}

// ProgressCount is met when Count steps are completed, within Module when
// set, across all modules otherwise.
type ProgressCount struct {
	Module ModuleID `json:"module,omitempty"`
	Count  int      `json:"count"`
}

// TradelineCount is met when the user tracks at least Count tradelines.
type TradelineCount struct {
	Count int `json:"count"`
}

// Special delegates to a named predicate.
type Special struct {
	ID string `json:"id"`
}

func (ProgressStep) Kind() RequirementKind   { return RequirementProgressStep }
func (ProgressCount) Kind() RequirementKind  { return RequirementProgressCount }
func (TradelineCount) Kind() RequirementKind { return RequirementTradelineCount }
func (Special) Kind() RequirementKind        { return RequirementSpecial }

// Requirements serialize with a "type" discriminator.
func (r ProgressStep) MarshalJSON() ([]byte, error) {
	type plain ProgressStep
	return marshalWithKind(r.Kind(), plain(r))
}

func (r ProgressCount) MarshalJSON() ([]byte, error) {
	type plain ProgressCount
	return marshalWithKind(r.Kind(), plain(r))
}

func (r TradelineCount) MarshalJSON() ([]byte, error) {
	type plain TradelineCount
	return marshalWithKind(r.Kind(), plain(r))
}

func (r Special) MarshalJSON() ([]byte, error) {
	type plain Special
	return marshalWithKind(r.Kind(), plain(r))
}

func marshalWithKind(kind RequirementKind, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = kind
	return json.Marshal(fields)
}

func (ProgressStep) isRequirement()   {}
func (ProgressCount) isRequirement()  {}
func (TradelineCount) isRequirement() {}
func (Special) isRequirement()        {}

// Achievement is a static catalog entry.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Tier        AchievementTier     `json:"tier"`
	XPReward    int                 `json:"xp_reward"`
	Requirement Requirement         `json:"requirement"`
}

// EarnedAchievement is append-only; unique per (UserID, AchievementID).
type EarnedAchievement struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at" db:"earned_at"`
	Metadata      Metadata  `json:"metadata" db:"metadata"`
}

// AchievementView is a catalog entry joined with the user's state.
type AchievementView struct {
	Achievement
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
	Eligible bool       `json:"eligible"`
}

// AchievementStats is derived from the earned set.
type AchievementStats struct {
	TotalXP              int `json:"total_xp"`
	Level                int `json:"level"`
	CurrentXP            int `json:"current_xp"`
	XPForNextLevel       int `json:"xp_for_next_level"`
	ProgressToNextLevel  int `json:"progress_to_next_level"`
	EarnedCount          int `json:"earned_count"`
	TotalCount           int `json:"total_count"`
	CompletionPercentage int `json:"completion_percentage"`
}

// AchievementFacts is everything the evaluator looks at.
type AchievementFacts struct {
	Progress         ProgressSet
	TradelineCount   int
	Streak           *StreakState
	AccountCreatedAt time.Time
}

// SpecialPredicate decides a Special requirement.
type SpecialPredicate func(f AchievementFacts) bool

// Evaluator checks requirements against facts.
type Evaluator struct {
	specials map[string]SpecialPredicate
}

// NewEvaluator builds an evaluator with the given special predicates.
func NewEvaluator(specials map[string]SpecialPredicate) *Evaluator {
	reg := make(map[string]SpecialPredicate, len(specials))
	for id, p := range specials {
		reg[id] = p
	}
	return &Evaluator{specials: reg}
}

// Register adds or replaces a special predicate.
func (e *Evaluator) Register(id string, p SpecialPredicate) {
	e.specials[id] = p
}

func (e *Evaluator) CheckRequirementMet(a Achievement, f AchievementFacts) bool {
	switch req := a.Requirement.(type) {
	case ProgressStep:
		return f.Progress.IsStepCompleted(req.Module, req.Step)
	case ProgressCount:
		if req.Module != "" {
			return f.Progress.CompletedCount(req.Module) >= req.Count
		}
		return f.Progress.TotalCompleted() >= req.Count
	case TradelineCount:
		return f.TradelineCount >= req.Count
	case Special:
		p, ok := e.specials[req.ID]
		if !ok || p == nil {
			return false
		}
		return p(f)
	default:
		return false
	}
}

// BuildStats derives XP, level and completion from the earned set. Rows
// pointing at achievements missing from the catalog contribute nothing.
func BuildStats(catalog *AchievementCatalog, earned []*EarnedAchievement) AchievementStats {
	seen := make(map[string]bool)
	stats := AchievementStats{TotalCount: catalog.Len()}
	for _, e := range earned {
		if e == nil || seen[e.AchievementID] {
			continue
		}
		a, ok := catalog.Get(e.AchievementID)
		if !ok {
			continue
		}
		seen[e.AchievementID] = true
		stats.TotalXP += a.XPReward
		stats.EarnedCount++
	}
	lvl := LevelFor(stats.TotalXP)
	stats.Level = lvl.Level
	stats.CurrentXP = lvl.CurrentXP
	stats.XPForNextLevel = lvl.XPForNextLevel
	stats.ProgressToNextLevel = lvl.Progress
	stats.CompletionPercentage = Percentage(stats.EarnedCount, stats.TotalCount)
	return stats
}
