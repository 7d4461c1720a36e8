package sqlite

import (
	"encoding/json"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

type profileRow struct {
	ID        string  `gorm:"primaryKey;size:64"`
	Email     string  `gorm:"size:320;not null"`
	FullName  *string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (profileRow) TableName() string { return "profiles" }

type progressRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	UserID      string `gorm:"size:64;not null;uniqueIndex:idx_progress_key,priority:1"`
	Module      string `gorm:"size:64;not null;uniqueIndex:idx_progress_key,priority:2"`
	Step        string `gorm:"size:64;not null;uniqueIndex:idx_progress_key,priority:3"`
	Completed   bool   `gorm:"not null;default:false"`
	CompletedAt *time.Time
	Notes       *string `gorm:"type:text"`
	Metadata    string  `gorm:"type:text;not null;default:'{}'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (progressRow) TableName() string { return "progress" }

type streakRow struct {
	UserID              string  `gorm:"primaryKey;size:64"`
	LoginStreakCurrent  int     `gorm:"not null;default:0"`
	LoginStreakLongest  int     `gorm:"not null;default:0"`
	LastLoginDate       *string `gorm:"size:10"`
	TaskStreakCurrent   int     `gorm:"not null;default:0"`
	TaskStreakLongest   int     `gorm:"not null;default:0"`
	LastTaskDate        *string `gorm:"size:10"`
	TotalLoginDays      int     `gorm:"not null;default:0"`
	TotalTasksCompleted int     `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (streakRow) TableName() string { return "user_streaks" }

type achievementRow struct {
	ID            string    `gorm:"primaryKey;size:64"`
	UserID        string    `gorm:"size:64;not null;uniqueIndex:idx_user_achievement,priority:1"`
	AchievementID string    `gorm:"size:64;not null;uniqueIndex:idx_user_achievement,priority:2"`
	EarnedAt      time.Time `gorm:"not null"`
	Metadata      string    `gorm:"type:text;not null;default:'{}'"`
}

func (achievementRow) TableName() string { return "user_achievements" }

type tradelineRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	UserID      string `gorm:"size:64;not null;index"`
	VendorName  string `gorm:"size:120;not null"`
	CreditLimit float64
	ReportsTo   string `gorm:"type:text;not null;default:'[]'"`
	OpenedAt    *time.Time
	CreatedAt   time.Time
}

func (tradelineRow) TableName() string { return "tradelines" }

type layoutRow struct {
	UserID        string `gorm:"primaryKey;size:64"`
	WidgetOrder   string `gorm:"type:text;not null;default:'[]'"`
	HiddenWidgets string `gorm:"type:text;not null;default:'[]'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (layoutRow) TableName() string { return "dashboard_layouts" }

func encodeJSON(v any, fallback string) string {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return fallback
	}
	return string(raw)
}

func decodeStrings(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func toProgress(r progressRow) *domain.ProgressRecord {
	meta := domain.Metadata{}
	_ = meta.Scan(r.Metadata)
	return &domain.ProgressRecord{
		ID:          r.ID,
		UserID:      r.UserID,
		Module:      domain.ModuleID(r.Module),
		Step:        r.Step,
		Completed:   r.Completed,
		CompletedAt: r.CompletedAt,
		Notes:       r.Notes,
		Metadata:    meta,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromProgress(p *domain.ProgressRecord) progressRow {
	return progressRow{
		ID:          p.ID,
		UserID:      p.UserID,
		Module:      string(p.Module),
		Step:        p.Step,
		Completed:   p.Completed,
		CompletedAt: p.CompletedAt,
		Notes:       p.Notes,
		Metadata:    encodeJSON(p.Metadata, "{}"),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toStreak(r streakRow) *domain.StreakState {
	return &domain.StreakState{
		UserID:              r.UserID,
		LoginStreakCurrent:  r.LoginStreakCurrent,
		LoginStreakLongest:  r.LoginStreakLongest,
		LastLoginDate:       r.LastLoginDate,
		TaskStreakCurrent:   r.TaskStreakCurrent,
		TaskStreakLongest:   r.TaskStreakLongest,
		LastTaskDate:        r.LastTaskDate,
		TotalLoginDays:      r.TotalLoginDays,
		TotalTasksCompleted: r.TotalTasksCompleted,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func fromStreak(s *domain.StreakState) streakRow {
	return streakRow{
		UserID:              s.UserID,
		LoginStreakCurrent:  s.LoginStreakCurrent,
		LoginStreakLongest:  s.LoginStreakLongest,
		LastLoginDate:       s.LastLoginDate,
		TaskStreakCurrent:   s.TaskStreakCurrent,
		TaskStreakLongest:   s.TaskStreakLongest,
		LastTaskDate:        s.LastTaskDate,
		TotalLoginDays:      s.TotalLoginDays,
		TotalTasksCompleted: s.TotalTasksCompleted,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func toTradeline(r tradelineRow) *domain.Tradeline {
	return &domain.Tradeline{
		ID:          r.ID,
		UserID:      r.UserID,
		VendorName:  r.VendorName,
		CreditLimit: r.CreditLimit,
		ReportsTo:   decodeStrings(r.ReportsTo),
		OpenedAt:    r.OpenedAt,
		CreatedAt:   r.CreatedAt,
	}
}

func toLayout(r layoutRow) *domain.WidgetLayout {
	return &domain.WidgetLayout{
		UserID:        r.UserID,
		WidgetOrder:   decodeStrings(r.WidgetOrder),
		HiddenWidgets: decodeStrings(r.HiddenWidgets),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
