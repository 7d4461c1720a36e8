package domain

import (
	"time"
)

type WidgetID = string

// Widget is a dashboard panel known to the current release.
type Widget struct {
	ID    WidgetID `json:"id"`
	Title string   `json:"title"`
}

// widgetCatalog is declared in default display order.
var widgetCatalog = []Widget{
	{ID: "welcome", Title: "Welcome"},
	{ID: "progress_overview", Title: "Progress Overview"},
	{ID: "next_steps", Title: "Next Steps"},
	{ID: "streaks", Title: "Streaks"},
	{ID: "achievements", Title: "Achievements"},
	{ID: "level", Title: "Level"},
	{ID: "tradelines", Title: "Tradelines"},
	{ID: "resources", Title: "Resources"},
	{ID: "announcements", Title: "Announcements"},
}

func Widgets() []Widget {
	out := make([]Widget, len(widgetCatalog))
	copy(out, widgetCatalog)
	return out
}

// DefaultWidgetOrder returns the catalog ids in declared order.
func DefaultWidgetOrder() []WidgetID {
	ids := make([]WidgetID, 0, len(widgetCatalog))
	for _, w := range widgetCatalog {
		ids = append(ids, w.ID)
	}
	return ids
}

func LookupWidget(id WidgetID) (Widget, bool) {
	for _, w := range widgetCatalog {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

func IsKnownWidget(id WidgetID) bool {
	_, ok := LookupWidget(id)
	return ok
}

// WidgetLayout is the per-user dashboard document.
type WidgetLayout struct {
	UserID        string     `json:"user_id" db:"user_id"`
	WidgetOrder   []WidgetID `json:"widget_order" db:"widget_order"`
	HiddenWidgets []WidgetID `json:"hidden_widgets" db:"hidden_widgets"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

func NewWidgetLayout(userID string) *WidgetLayout {
	now := time.Now().UTC()
	return &WidgetLayout{
		UserID:        userID,
		WidgetOrder:   DefaultWidgetOrder(),
		HiddenWidgets: []WidgetID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Normalize merges a persisted layout with the live catalog: unknown ids are
// dropped, duplicates collapsed, and catalog ids missing from the order are
// appended at the end. It reports whether anything changed.
func (l *WidgetLayout) Normalize() bool {
	order := knownUnique(l.WidgetOrder)
	present := make(map[WidgetID]bool, len(order))
	for _, id := range order {
		present[id] = true
	}
	for _, id := range DefaultWidgetOrder() {
		if !present[id] {
			order = append(order, id)
		}
	}
	hidden := knownUnique(l.HiddenWidgets)

	changed := !equalIDs(order, l.WidgetOrder) || !equalIDs(hidden, l.HiddenWidgets)
	l.WidgetOrder = order
	l.HiddenWidgets = hidden
	return changed
}

// Reorder replaces the order. Ids outside the catalog are ignored and any
// catalog widget left out keeps a slot at the end.
func (l *WidgetLayout) Reorder(newOrder []WidgetID, now time.Time) {
	l.WidgetOrder = knownUnique(newOrder)
	l.Normalize()
	l.UpdatedAt = now.UTC()
}

// Toggle flips the visibility of id and returns whether it is now hidden.
func (l *WidgetLayout) Toggle(id WidgetID, now time.Time) (bool, error) {
	if !IsKnownWidget(id) {
		return false, ErrUnknownWidget
	}

	hidden := make([]WidgetID, 0, len(l.HiddenWidgets)+1)
	wasHidden := false
	for _, h := range l.HiddenWidgets {
		if h == id {
			wasHidden = true
			continue
		}
		hidden = append(hidden, h)
	}
	if !wasHidden {
		hidden = append(hidden, id)
	}

	l.HiddenWidgets = hidden
	l.UpdatedAt = now.UTC()
	return !wasHidden, nil
}

func (l *WidgetLayout) Reset(now time.Time) {
	l.WidgetOrder = DefaultWidgetOrder()
	l.HiddenWidgets = []WidgetID{}
	l.UpdatedAt = now.UTC()
}

func (l *WidgetLayout) IsHidden(id WidgetID) bool {
	for _, h := range l.HiddenWidgets {
		if h == id {
			return true
		}
	}
	return false
}

// Visible is the order minus the hidden set.
func (l *WidgetLayout) Visible() []WidgetID {
	out := make([]WidgetID, 0, len(l.WidgetOrder))
	for _, id := range l.WidgetOrder {
		if !l.IsHidden(id) {
			out = append(out, id)
		}
	}
	return out
}

func knownUnique(ids []WidgetID) []WidgetID {
	seen := make(map[WidgetID]bool, len(ids))
	out := make([]WidgetID, 0, len(ids))
	for _, id := range ids {
		if seen[id] || !IsKnownWidget(id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func equalIDs(a, b []WidgetID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
