package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/stocklot/backend/internal/domain/inventory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Versioned keys survive schema changes to the stored value: a format change
// gets a new suffix and old rows are simply ignored.
const (
	keySoonThresholdDays = "expiry_warning_days_v1"
	keyOKThresholdDays   = "expiry_ok_threshold_days_v1"
)

// settingRecord is a row in the key-value settings table
type settingRecord struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updatedAt"`
}

// TableName returns the table name for GORM
func (settingRecord) TableName() string {
	return "settings"
}

// GormSettingsStore implements SettingsStore using a key-value table
type GormSettingsStore struct {
	db *gorm.DB
}

var _ inventory.SettingsStore = (*GormSettingsStore)(nil)

// NewGormSettingsStore creates a new GormSettingsStore
func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

// GetExpirySettings returns the stored thresholds. Missing or unreadable
// values fall back to the defaults, and the result is always normalized, so
// corrupt rows can never leak invalid thresholds into classification.
func (s *GormSettingsStore) GetExpirySettings(ctx context.Context) (inventory.ExpirySettings, error) {
	settings := inventory.DefaultExpirySettings()

	soon, err := s.getInt(ctx, keySoonThresholdDays)
	if err != nil {
		return settings, err
	}
	if soon != nil {
		settings.SoonThresholdDays = *soon
	}

	ok, err := s.getInt(ctx, keyOKThresholdDays)
	if err != nil {
		return settings, err
	}
	if ok != nil {
		settings.OkThresholdDays = *ok
	}

	return settings.Normalized(), nil
}

// SetExpirySettings merges a partial update over the stored thresholds and
// persists the normalized result. Both keys are written so a later read never
// mixes a new value with a stale one.
func (s *GormSettingsStore) SetExpirySettings(ctx context.Context, patch inventory.ExpirySettingsPatch) error {
	current, err := s.GetExpirySettings(ctx)
	if err != nil {
		return err
	}
	next := patch.Apply(current)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, keySoonThresholdDays, strconv.Itoa(next.SoonThresholdDays)); err != nil {
			return err
		}
		return upsertSetting(tx, keyOKThresholdDays, strconv.Itoa(next.OkThresholdDays))
	})
}

// SeedDefaults writes the given thresholds for any key not yet present.
// Existing values are left alone, so configuration defaults never clobber
// what a user chose in a previous run.
func (s *GormSettingsStore) SeedDefaults(ctx context.Context, defaults inventory.ExpirySettings) error {
	defaults = defaults.Normalized()
	seed := map[string]int{
		keySoonThresholdDays: defaults.SoonThresholdDays,
		keyOKThresholdDays:   defaults.OkThresholdDays,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range seed {
			record := settingRecord{Key: key, Value: strconv.Itoa(value), UpdatedAt: time.Now()}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoNothing: true,
			}).Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// getInt reads an integer setting, returning nil when the key is absent or
// the stored value does not parse.
func (s *GormSettingsStore) getInt(ctx context.Context, key string) (*int, error) {
	var record settingRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	v, err := strconv.Atoi(record.Value)
	if err != nil {
		return nil, nil
	}
	return &v, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	record := settingRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&record).Error
}
