package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stocklot/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// NotificationService schedules expiry notifications and emits reactive stock
// alerts. Every path in this service is best-effort: errors are logged and
// swallowed, never propagated, so a broken notification channel can never
// block a save or an adjustment.
type NotificationService struct {
	productRepo inventory.ProductRepository
	settings    inventory.SettingsStore
	notifier    inventory.Notifier
	logger      *zap.Logger

	mu           sync.Mutex
	lastAlertKey string
}

var _ StockAlertSink = (*NotificationService)(nil)

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	productRepo inventory.ProductRepository,
	settings inventory.SettingsStore,
	notifier inventory.Notifier,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		productRepo: productRepo,
		settings:    settings,
		notifier:    notifier,
		logger:      logger.Named("notifications"),
	}
}

// RefreshExpiryNotifications rebuilds the scheduled expiry notifications from
// the current catalog. Previously scheduled notifications are cancelled first
// so threshold changes cannot leave stale alerts behind. Only the forward
// window [0, soonThresholdDays] is notified; already-expired stock is not
// re-announced here.
func (s *NotificationService) RefreshExpiryNotifications(ctx context.Context) {
	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		s.logger.Warn("notification permission request failed", zap.Error(err))
		return
	}
	if !granted {
		s.logger.Debug("notification permission not granted, skipping refresh")
		return
	}

	settings, err := s.settings.GetExpirySettings(ctx)
	if err != nil {
		s.logger.Warn("loading expiry settings failed, using defaults", zap.Error(err))
		settings = inventory.DefaultExpirySettings()
	}

	if err := s.notifier.CancelAllScheduled(ctx); err != nil {
		s.logger.Warn("cancelling scheduled notifications failed", zap.Error(err))
		return
	}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		s.logger.Warn("loading products for expiry refresh failed", zap.Error(err))
		return
	}

	today := time.Now()
	scheduled := 0
	for i := range products {
		product := &products[i]
		if product.NextExpiry == nil {
			continue
		}
		info := inventory.Classify(*product.NextExpiry, settings, today)
		if info.Status != inventory.ExpirySoon || info.Days == nil || *info.Days < 0 {
			continue
		}
		if err := s.notifier.ScheduleImmediate(ctx, expiryNotification(product.Name, *info.Days)); err != nil {
			s.logger.Warn("scheduling expiry notification failed",
				zap.String("product", product.Name),
				zap.Error(err),
			)
			continue
		}
		scheduled++
	}

	s.logger.Info("expiry notifications refreshed",
		zap.Int("scheduled", scheduled),
		zap.Int("soon_threshold_days", settings.SoonThresholdDays),
	)
}

// NotifyStockAlert emits a notification for a stock level transition away
// from "ok". Identical consecutive alerts are suppressed with a last-key
// comparison so rapid repeated edits do not spam the user.
func (s *NotificationService) NotifyStockAlert(ctx context.Context, alert StockAlert) {
	key := fmt.Sprintf("%s|%s|%s|%s", alert.Status, alert.Name, alert.Qty.String(), alert.MinStock.String())

	s.mu.Lock()
	if key == s.lastAlertKey {
		s.mu.Unlock()
		return
	}
	s.lastAlertKey = key
	s.mu.Unlock()

	var n inventory.Notification
	switch alert.Status {
	case inventory.StockStatusOut:
		n = inventory.Notification{
			Title: "Out of stock",
			Body:  fmt.Sprintf("%s is out of stock", alert.Name),
		}
	case inventory.StockStatusLow:
		n = inventory.Notification{
			Title: "Low stock",
			Body:  fmt.Sprintf("%s is down to %s (minimum %s)", alert.Name, alert.Qty.String(), alert.MinStock.String()),
		}
	default:
		return
	}

	if err := s.notifier.ScheduleImmediate(ctx, n); err != nil {
		s.logger.Warn("stock alert notification failed",
			zap.String("product", alert.Name),
			zap.Error(err),
		)
	}
}

func expiryNotification(name string, days int) inventory.Notification {
	body := fmt.Sprintf("%s expires in %d days", name, days)
	switch days {
	case 0:
		body = fmt.Sprintf("%s expires today", name)
	case 1:
		body = fmt.Sprintf("%s expires tomorrow", name)
	}
	return inventory.Notification{
		Title: "Expiring soon",
		Body:  body,
	}
}
