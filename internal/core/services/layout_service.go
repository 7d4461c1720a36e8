package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

type LayoutService struct {
	repo     domain.LayoutRepository
	notifier domain.Notifier
	log      *logger.Logger
	now      Clock
	locks    userLocks
}

func NewLayoutService(repo domain.LayoutRepository, notifier domain.Notifier, log *logger.Logger) *LayoutService {
	return &LayoutService{
		repo:     repo,
		notifier: notifier,
		log:      log.With("service", "LayoutService"),
		now:      time.Now,
	}
}

func (s *LayoutService) SetClock(c Clock) {
	s.now = c
}

// Get loads the layout merged with the live widget catalog. The default
// layout is created and stored on first access.
func (s *LayoutService) Get(ctx context.Context, userID string) (*domain.WidgetLayout, error) {
	defer s.locks.lock(userID)()
	return s.load(ctx, userID)
}

func (s *LayoutService) load(ctx context.Context, userID string) (*domain.WidgetLayout, error) {
	layout, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrLayoutNotFound) {
		layout = domain.NewWidgetLayout(userID)
		if err := s.repo.Save(ctx, layout); err != nil {
			return nil, fmt.Errorf("layout service: create default: %w", err)
		}
		return layout, nil
	}
	if err != nil {
		return nil, fmt.Errorf("layout service: load: %w", err)
	}

	if layout.Normalize() {
		layout.UpdatedAt = s.now().UTC()
		if err := s.repo.Save(ctx, layout); err != nil {
			s.log.Warn("merged layout not persisted", "user_id", userID, "error", err)
		}
	}
	return layout, nil
}

// mutate applies fn to a copy and persists the whole document. The stored
// layout is untouched when the write fails.
func (s *LayoutService) mutate(ctx context.Context, userID string, fn func(l *domain.WidgetLayout) error) (*domain.WidgetLayout, error) {
	defer s.locks.lock(userID)()

	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.WidgetOrder = append([]domain.WidgetID(nil), current.WidgetOrder...)
	next.HiddenWidgets = append([]domain.WidgetID{}, current.HiddenWidgets...)
	if err := fn(&next); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		s.log.Error("failed to save layout", "user_id", userID, "error", err)
		notify(ctx, s.notifier, s.log, saveFailed(userID, "dashboard layout"))
		return nil, fmt.Errorf("layout service: save: %w", err)
	}
	return &next, nil
}

func (s *LayoutService) Reorder(ctx context.Context, userID string, order []domain.WidgetID) (*domain.WidgetLayout, error) {
	return s.mutate(ctx, userID, func(l *domain.WidgetLayout) error {
		l.Reorder(order, s.now())
		return nil
	})
}

// Toggle flips a widget's visibility and returns a confirmation message.
func (s *LayoutService) Toggle(ctx context.Context, userID string, widgetID domain.WidgetID) (*domain.WidgetLayout, string, error) {
	var hidden bool
	layout, err := s.mutate(ctx, userID, func(l *domain.WidgetLayout) error {
		var err error
		hidden, err = l.Toggle(widgetID, s.now())
		return err
	})
	if err != nil {
		return nil, "", err
	}

	w, _ := domain.LookupWidget(widgetID)
	state := "shown"
	if hidden {
		state = "hidden"
	}
	msg := fmt.Sprintf("%s widget is now %s", w.Title, state)

	notify(ctx, s.notifier, s.log, domain.Notification{
		UserID:  userID,
		Kind:    domain.NotifyLayoutUpdated,
		Title:   "Dashboard updated",
		Message: msg,
		Data:    domain.Metadata{"widget_id": widgetID, "hidden": hidden},
	})
	return layout, msg, nil
}

func (s *LayoutService) Reset(ctx context.Context, userID string) (*domain.WidgetLayout, error) {
	return s.mutate(ctx, userID, func(l *domain.WidgetLayout) error {
		l.Reset(s.now())
		return nil
	})
}

func (s *LayoutService) Visible(ctx context.Context, userID string) ([]domain.WidgetID, error) {
	layout, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return layout.Visible(), nil
}
