package notification

import (
	"context"
	"sync"

	"github.com/stocklot/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// LogNotifier is a Notifier that writes notifications to the log instead of a
// platform notification center. Useful on headless deployments and in
// development; swap in a platform-backed implementation where one exists.
type LogNotifier struct {
	logger  *zap.Logger
	enabled bool

	mu        sync.Mutex
	scheduled []inventory.Notification
}

var _ inventory.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a new logging notifier. When enabled is false,
// RequestPermission reports denied and nothing is ever emitted, mirroring a
// user who declined the permission prompt.
func NewLogNotifier(logger *zap.Logger, enabled bool) *LogNotifier {
	return &LogNotifier{
		logger:  logger.Named("notifier"),
		enabled: enabled,
	}
}

// RequestPermission reports whether notifications are enabled
func (n *LogNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return n.enabled, nil
}

// CancelAllScheduled drops any scheduled-but-undelivered notifications
func (n *LogNotifier) CancelAllScheduled(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.scheduled) > 0 {
		n.logger.Debug("cancelling scheduled notifications",
			zap.Int("count", len(n.scheduled)),
		)
	}
	n.scheduled = nil
	return nil
}

// ScheduleImmediate emits the notification right away
func (n *LogNotifier) ScheduleImmediate(ctx context.Context, notif inventory.Notification) error {
	if !n.enabled {
		return nil
	}
	n.mu.Lock()
	n.scheduled = append(n.scheduled, notif)
	n.mu.Unlock()

	n.logger.Warn("NOTIFICATION",
		zap.String("title", notif.Title),
		zap.String("body", notif.Body),
	)
	return nil
}
