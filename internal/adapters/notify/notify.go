// Package notify delivers user-facing notifications. Nothing here blocks a
// save: callers log delivery errors and move on.
package notify

import (
	"context"
	"errors"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

// LogNotifier writes every notification to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("service", "LogNotifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	n.log.Info("notification",
		"user_id", msg.UserID,
		"kind", msg.Kind,
		"title", msg.Title,
		"message", msg.Message,
	)
	return nil
}

// Multi fans out to every notifier and joins their errors.
type Multi []domain.Notifier

func (m Multi) Notify(ctx context.Context, msg domain.Notification) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
