package inventory

import (
	"context"

	"github.com/stocklot/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// SettingsService exposes the expiry threshold settings to callers and keeps
// scheduled notifications consistent with them: every successful update is
// followed by a notification refresh.
type SettingsService struct {
	store         inventory.SettingsStore
	notifications *NotificationService
	logger        *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(store inventory.SettingsStore, notifications *NotificationService, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		store:         store,
		notifications: notifications,
		logger:        logger.Named("settings"),
	}
}

// Get returns the current expiry settings, normalized
func (s *SettingsService) Get(ctx context.Context) (inventory.ExpirySettings, error) {
	return s.store.GetExpirySettings(ctx)
}

// Update merges a partial settings change and reschedules expiry
// notifications under the new thresholds.
func (s *SettingsService) Update(ctx context.Context, patch inventory.ExpirySettingsPatch) (inventory.ExpirySettings, error) {
	if err := s.store.SetExpirySettings(ctx, patch); err != nil {
		return inventory.ExpirySettings{}, err
	}
	next, err := s.store.GetExpirySettings(ctx)
	if err != nil {
		return inventory.ExpirySettings{}, err
	}

	s.logger.Info("expiry settings updated",
		zap.Int("soon_threshold_days", next.SoonThresholdDays),
		zap.Int("ok_threshold_days", next.OkThresholdDays),
	)

	if s.notifications != nil {
		s.notifications.RefreshExpiryNotifications(ctx)
	}
	return next, nil
}
