package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Metadata is an opaque key-value bag persisted as JSON.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}
	out := Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	*m = out
	return nil
}

// ProgressRecord is the completion state of one step for one user.
// Identity is (UserID, Module, Step).
type ProgressRecord struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Module      ModuleID   `json:"module" db:"module"`
	Step        string     `json:"step" db:"step"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	Notes       *string    `json:"notes" db:"notes"`
	Metadata    Metadata   `json:"metadata" db:"metadata"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func NewProgressRecord(userID string, module ModuleID, step string) (*ProgressRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user_id is required")
	}
	if err := ValidateStep(module, step); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &ProgressRecord{
		UserID:    userID,
		Module:    module,
		Step:      step,
		Metadata:  Metadata{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetCompleted keeps CompletedAt non-nil exactly when Completed is true.
// An already completed record keeps its original completion time.
func (r *ProgressRecord) SetCompleted(completed bool, now time.Time) {
	if completed {
		if !r.Completed || r.CompletedAt == nil {
			at := now.UTC()
			r.CompletedAt = &at
		}
	} else {
		r.CompletedAt = nil
	}
	r.Completed = completed
	r.UpdatedAt = now.UTC()
}

// ModuleProgressView is derived on every read, never persisted.
type ModuleProgressView struct {
	Module     ModuleID                   `json:"module"`
	Completed  int                        `json:"completed"`
	Total      int                        `json:"total"`
	Percentage int                        `json:"percentage"`
	Steps      map[string]*ProgressRecord `json:"steps"`
}

// ProgressSet is the full record set of a single user.
type ProgressSet []*ProgressRecord

func (s ProgressSet) find(module ModuleID, step string) *ProgressRecord {
	for _, r := range s {
		if r != nil && r.Module == module && r.Step == step {
			return r
		}
	}
	return nil
}

// IsStepCompleted reports false for a missing record.
func (s ProgressSet) IsStepCompleted(module ModuleID, step string) bool {
	r := s.find(module, step)
	return r != nil && r.Completed
}

// CompletedCount counts completed steps of a module.
func (s ProgressSet) CompletedCount(module ModuleID) int {
	n := 0
	for _, r := range s {
		if r != nil && r.Module == module && r.Completed {
			n++
		}
	}
	return n
}

// TotalCompleted counts completed steps across all modules.
func (s ProgressSet) TotalCompleted() int {
	n := 0
	for _, r := range s {
		if r != nil && r.Completed {
			n++
		}
	}
	return n
}

// StartedModules returns the distinct modules with at least one completed step.
func (s ProgressSet) StartedModules() []ModuleID {
	seen := make(map[ModuleID]bool)
	var out []ModuleID
	for _, id := range ModuleIDs() {
		if s.CompletedCount(id) > 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s ProgressSet) ModuleProgress(module ModuleID) ModuleProgressView {
	total := TotalSteps(module)
	view := ModuleProgressView{
		Module: module,
		Total:  total,
		Steps:  make(map[string]*ProgressRecord),
	}
	for _, r := range s {
		if r == nil || r.Module != module {
			continue
		}
		view.Steps[r.Step] = r
		if r.Completed {
			view.Completed++
		}
	}
	view.Percentage = Percentage(view.Completed, total)
	return view
}

func (s ProgressSet) AllModulesProgress() []ModuleProgressView {
	ids := ModuleIDs()
	views := make([]ModuleProgressView, 0, len(ids))
	for _, id := range ids {
		views = append(views, s.ModuleProgress(id))
	}
	return views
}

// NextStep walks the curated step order and returns the first step that is
// missing or not completed. ok is false when every step is done or the
// module is unknown.
func (s ProgressSet) NextStep(module ModuleID) (string, bool) {
	for _, step := range StepOrder(module) {
		if !s.IsStepCompleted(module, step) {
			return step, true
		}
	}
	return "", false
}

// OverallPercentage is completed catalog steps over all catalog steps.
func (s ProgressSet) OverallPercentage() int {
	done := 0
	for _, id := range ModuleIDs() {
		for _, step := range StepOrder(id) {
			if s.IsStepCompleted(id, step) {
				done++
			}
		}
	}
	return Percentage(done, totalCatalogSteps())
}

// Percentage returns round(100*part/total) clamped to [0,100]; 0 when total is 0.
func Percentage(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(part) / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}
