package domain

import (
	"time"
)

// DateLayout is the calendar-day format used for streak dates.
const DateLayout = "2006-01-02"

var baseMilestones = []int{3, 7, 14, 30}

// StreakState is the single streak row of a user.
type StreakState struct {
	UserID              string    `json:"user_id" db:"user_id"`
	LoginStreakCurrent  int       `json:"login_streak_current" db:"login_streak_current"`
	LoginStreakLongest  int       `json:"login_streak_longest" db:"login_streak_longest"`
	LastLoginDate       *string   `json:"last_login_date" db:"last_login_date"`
	TaskStreakCurrent   int       `json:"task_streak_current" db:"task_streak_current"`
	TaskStreakLongest   int       `json:"task_streak_longest" db:"task_streak_longest"`
	LastTaskDate        *string   `json:"last_task_date" db:"last_task_date"`
	TotalLoginDays      int       `json:"total_login_days" db:"total_login_days"`
	TotalTasksCompleted int       `json:"total_tasks_completed" db:"total_tasks_completed"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// NewStreakState returns the zeroed row created on first access.
func NewStreakState(userID string) *StreakState {
	now := time.Now().UTC()
	return &StreakState{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so transitions can be applied before a write
// is confirmed.
func (s *StreakState) Clone() *StreakState {
	c := *s
	if s.LastLoginDate != nil {
		d := *s.LastLoginDate
		c.LastLoginDate = &d
	}
	if s.LastTaskDate != nil {
		d := *s.LastTaskDate
		c.LastTaskDate = &d
	}
	return &c
}

// RecordLogin applies the login transition for today (YYYY-MM-DD).
// It returns false when a login was already recorded today.
func (s *StreakState) RecordLogin(today string) bool {
	if s.LastLoginDate != nil && *s.LastLoginDate == today {
		return false
	}

	if s.LastLoginDate != nil && DaysBetween(*s.LastLoginDate, today) == 1 {
		s.LoginStreakCurrent++
	} else {
		s.LoginStreakCurrent = 1
	}
	if s.LoginStreakCurrent > s.LoginStreakLongest {
		s.LoginStreakLongest = s.LoginStreakCurrent
	}

	d := today
	s.LastLoginDate = &d
	s.TotalLoginDays++
	return true
}

// RecordTask applies the task transition for today. The lifetime total
// always increments; the streak only moves on the first task of a day.
// It returns whether the current streak was incremented or restarted.
func (s *StreakState) RecordTask(today string) bool {
	s.TotalTasksCompleted++

	if s.LastTaskDate != nil && *s.LastTaskDate == today {
		return false
	}

	if s.LastTaskDate != nil && DaysBetween(*s.LastTaskDate, today) == 1 {
		s.TaskStreakCurrent++
	} else {
		s.TaskStreakCurrent = 1
	}
	if s.TaskStreakCurrent > s.TaskStreakLongest {
		s.TaskStreakLongest = s.TaskStreakCurrent
	}

	d := today
	s.LastTaskDate = &d
	return true
}

// StreakStatus flags streaks that will break unless renewed today.
type StreakStatus struct {
	LoginAtRisk bool `json:"login_at_risk"`
	TaskAtRisk  bool `json:"task_at_risk"`
}

// Status never fails: a nil state or missing dates are not at risk.
// A login is at risk when the last one was neither today nor yesterday;
// a user who never logged in has no streak to lose and is not flagged.
func (s *StreakState) Status(today string) StreakStatus {
	if s == nil {
		return StreakStatus{}
	}
	yesterday := ShiftDay(today, -1)

	var st StreakStatus
	if s.LastLoginDate != nil {
		last := *s.LastLoginDate
		st.LoginAtRisk = last != today && last != yesterday
	}
	st.TaskAtRisk = s.TaskStreakCurrent > 0 && (s.LastTaskDate == nil || *s.LastTaskDate != today)
	return st
}

// IsMilestone reports whether a streak length deserves a celebration:
// 3, 7, 14, 30 and every further multiple of 30.
func IsMilestone(n int) bool {
	if n <= 1 {
		return false
	}
	for _, m := range baseMilestones {
		if n == m {
			return true
		}
	}
	return n > 30 && n%30 == 0
}

// Today formats now as a calendar day in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// DaysBetween returns the number of calendar days from a to b. Unparseable
// input yields a large gap so callers treat it as a broken streak.
func DaysBetween(a, b string) int {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	if errA != nil || errB != nil {
		return 1 << 30
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// ShiftDay moves a YYYY-MM-DD day by n days.
func ShiftDay(day string, n int) string {
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}
