package domain

import (
	"time"
)

// Special predicate ids.
const (
	SpecialMultiModule     = "multi_module"
	SpecialEarlyAdopter    = "early_adopter"
	SpecialWeekWarrior     = "week_warrior"
	SpecialMonthlyDevotion = "monthly_devotion"
	SpecialTaskMachine     = "task_machine"
)

// EarlyAdopterCutoff is the signup date before which accounts qualify for
// the early adopter badge.
var EarlyAdopterCutoff = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

// DefaultSpecials returns the built-in special predicates.
func DefaultSpecials(cutoff time.Time) map[string]SpecialPredicate {
	return map[string]SpecialPredicate{
		SpecialMultiModule: func(f AchievementFacts) bool {
			return len(f.Progress.StartedModules()) >= 3
		},
		SpecialEarlyAdopter: func(f AchievementFacts) bool {
			return !f.AccountCreatedAt.IsZero() && f.AccountCreatedAt.Before(cutoff)
		},
		SpecialWeekWarrior: func(f AchievementFacts) bool {
			return f.Streak != nil && f.Streak.LoginStreakLongest >= 7
		},
		SpecialMonthlyDevotion: func(f AchievementFacts) bool {
			return f.Streak != nil && f.Streak.LoginStreakLongest >= 30
		},
		SpecialTaskMachine: func(f AchievementFacts) bool {
			return f.Streak != nil && f.Streak.TotalTasksCompleted >= 50
		},
	}
}

// AchievementCatalog is an ordered, read-only set of achievements.
type AchievementCatalog struct {
	items []Achievement
	index map[string]int
}

func NewAchievementCatalog(items []Achievement) *AchievementCatalog {
	c := &AchievementCatalog{
		items: make([]Achievement, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, a := range items {
		if _, dup := c.index[a.ID]; dup {
			continue
		}
		c.index[a.ID] = len(c.items)
		c.items = append(c.items, a)
	}
	return c
}

// All returns the catalog in declaration order.
func (c *AchievementCatalog) All() []Achievement {
	out := make([]Achievement, len(c.items))
	copy(out, c.items)
	return out
}

func (c *AchievementCatalog) Get(id string) (Achievement, bool) {
	i, ok := c.index[id]
	if !ok {
		return Achievement{}, false
	}
	return c.items[i], true
}

func (c *AchievementCatalog) Len() int {
	return len(c.items)
}

// DefaultCatalog is the production achievement set.
func DefaultCatalog() *AchievementCatalog {
	return NewAchievementCatalog([]Achievement{
		{
			ID: "first_step", Name: "First Step",
			Description: "Complete your first task in any module",
			Category:    CategoryMilestone, Tier: TierBronze, XPReward: 25,
			Requirement: ProgressCount{Count: 1},
		},
		{
			ID: "llc_formed", Name: "Official Business",
			Description: "Form your LLC",
			Category:    CategoryFoundation, Tier: TierBronze, XPReward: 50,
			Requirement: ProgressStep{Module: ModuleBusinessStarter, Step: "create_llc"},
		},
		{
			ID: "ein_obtained", Name: "Tax Ready",
			Description: "Obtain your EIN",
			Category:    CategoryFoundation, Tier: TierBronze, XPReward: 50,
			Requirement: ProgressStep{Module: ModuleBusinessStarter, Step: "get_ein"},
		},
		{
			ID: "bank_ready", Name: "Banked",
			Description: "Open a business bank account",
			Category:    CategoryFoundation, Tier: TierSilver, XPReward: 75,
			Requirement: ProgressStep{Module: ModuleBusinessStarter, Step: "open_business_bank"},
		},
		{
			ID: "foundation_complete", Name: "Solid Foundation",
			Description: "Complete every business formation step",
			Category:    CategoryFoundation, Tier: TierGold, XPReward: 200,
			Requirement: ProgressCount{Module: ModuleBusinessStarter, Count: 5},
		},
		{
			ID: "credit_builder", Name: "Credit Builder",
			Description: "Complete 3 business credit steps",
			Category:    CategoryCredit, Tier: TierSilver, XPReward: 100,
			Requirement: ProgressCount{Module: ModuleBusinessCredit, Count: 3},
		},
		{
			ID: "credit_master", Name: "Credit Master",
			Description: "Complete every business credit step",
			Category:    CategoryCredit, Tier: TierGold, XPReward: 250,
			Requirement: ProgressCount{Module: ModuleBusinessCredit, Count: 6},
		},
		{
			ID: "first_tradeline", Name: "First Tradeline",
			Description: "Add your first tradeline",
			Category:    CategoryCredit, Tier: TierBronze, XPReward: 50,
			Requirement: TradelineCount{Count: 1},
		},
		{
			ID: "tradeline_trio", Name: "Tradeline Trio",
			Description: "Track 3 tradelines",
			Category:    CategoryCredit, Tier: TierSilver, XPReward: 100,
			Requirement: TradelineCount{Count: 3},
		},
		{
			ID: "tradeline_pro", Name: "Tradeline Pro",
			Description: "Track 5 tradelines",
			Category:    CategoryCredit, Tier: TierGold, XPReward: 200,
			Requirement: TradelineCount{Count: 5},
		},
		{
			ID: "brand_launched", Name: "Live on the Web",
			Description: "Launch your website",
			Category:    CategoryBrand, Tier: TierSilver, XPReward: 75,
			Requirement: ProgressStep{Module: ModulePersonalBrand, Step: "launch_website"},
		},
		{
			ID: "brand_complete", Name: "Brand Icon",
			Description: "Complete every personal brand step",
			Category:    CategoryBrand, Tier: TierGold, XPReward: 200,
			Requirement: ProgressCount{Module: ModulePersonalBrand, Count: 5},
		},
		{
			ID: "halfway", Name: "Halfway There",
			Description: "Complete 8 steps across all modules",
			Category:    CategoryMilestone, Tier: TierSilver, XPReward: 150,
			Requirement: ProgressCount{Count: 8},
		},
		{
			ID: "multi_tasker", Name: "Multi-Tasker",
			Description: "Start all three modules",
			Category:    CategorySpecial, Tier: TierSilver, XPReward: 100,
			Requirement: Special{ID: SpecialMultiModule},
		},
		{
			ID: "early_adopter", Name: "Early Adopter",
			Description: "Joined NÈKO during launch",
			Category:    CategorySpecial, Tier: TierPlatinum, XPReward: 100,
			Requirement: Special{ID: SpecialEarlyAdopter},
		},
		{
			ID: "week_warrior", Name: "Week Warrior",
			Description: "Log in 7 days in a row",
			Category:    CategoryStreak, Tier: TierSilver, XPReward: 100,
			Requirement: Special{ID: SpecialWeekWarrior},
		},
		{
			ID: "monthly_devotion", Name: "Monthly Devotion",
			Description: "Log in 30 days in a row",
			Category:    CategoryStreak, Tier: TierPlatinum, XPReward: 500,
			Requirement: Special{ID: SpecialMonthlyDevotion},
		},
		{
			ID: "task_machine", Name: "Task Machine",
			Description: "Complete 50 tasks",
			Category:    CategoryStreak, Tier: TierGold, XPReward: 250,
			Requirement: Special{ID: SpecialTaskMachine},
		},
	})
}
