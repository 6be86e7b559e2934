package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeNotifier records notifications and can be told to deny permission or
// fail scheduling.
type fakeNotifier struct {
	mu          sync.Mutex
	granted     bool
	scheduleErr error
	cancelled   int
	notified    []inventory.Notification
}

var _ inventory.Notifier = (*fakeNotifier)(nil)

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{granted: true}
}

func (f *fakeNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return f.granted, nil
}

func (f *fakeNotifier) CancelAllScheduled(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
	f.notified = nil
	return nil
}

func (f *fakeNotifier) ScheduleImmediate(ctx context.Context, n inventory.Notification) error {
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, n)
	return nil
}

func (f *fakeNotifier) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.notified))
	for _, n := range f.notified {
		out = append(out, n.Body)
	}
	return out
}

func newNotificationEnv(t *testing.T) (*testEnv, *fakeNotifier, *NotificationService) {
	t.Helper()
	env := newTestEnv(t)
	notifier := newFakeNotifier()
	service := NewNotificationService(env.productRepo, env.settings, notifier, zap.NewNop())
	return env, notifier, service
}

func TestRefreshExpiryNotifications(t *testing.T) {
	t.Run("notifies only the forward soon window", func(t *testing.T) {
		env, notifier, service := newNotificationEnv(t)
		ctx := context.Background()

		soonDate := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
		farDate := time.Now().AddDate(0, 0, 90).Format("2006-01-02")
		pastDate := time.Now().AddDate(0, 0, -2).Format("2006-01-02")

		soon := env.createProduct(t, "Yogurt")
		far := env.createProduct(t, "Canned Beans")
		expired := env.createProduct(t, "Old Milk")
		env.createProduct(t, "Undated")

		for product, date := range map[*inventory.Product]string{soon: soonDate, far: farDate, expired: pastDate} {
			_, err := env.stock.Adjust(ctx, AdjustInput{ProductID: product.ID, Delta: decimal.NewFromInt(1), ExpiryDate: &date})
			require.NoError(t, err)
		}

		service.RefreshExpiryNotifications(ctx)

		bodies := notifier.bodies()
		require.Len(t, bodies, 1)
		assert.Contains(t, bodies[0], "Yogurt")
	})

	t.Run("cancels previously scheduled notifications first", func(t *testing.T) {
		_, notifier, service := newNotificationEnv(t)
		service.RefreshExpiryNotifications(context.Background())
		service.RefreshExpiryNotifications(context.Background())
		assert.Equal(t, 2, notifier.cancelled)
	})

	t.Run("denied permission emits nothing", func(t *testing.T) {
		env, notifier, service := newNotificationEnv(t)
		ctx := context.Background()
		notifier.granted = false

		date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
		product := env.createProduct(t, "Soon")
		_, err := env.stock.Adjust(ctx, AdjustInput{ProductID: product.ID, Delta: decimal.NewFromInt(1), ExpiryDate: &date})
		require.NoError(t, err)

		service.RefreshExpiryNotifications(ctx)
		assert.Empty(t, notifier.bodies())
		assert.Zero(t, notifier.cancelled)
	})

	t.Run("scheduling failures never propagate", func(t *testing.T) {
		env, notifier, service := newNotificationEnv(t)
		ctx := context.Background()
		notifier.scheduleErr = errors.New("channel broken")

		date := time.Now().Format("2006-01-02")
		product := env.createProduct(t, "Today")
		_, err := env.stock.Adjust(ctx, AdjustInput{ProductID: product.ID, Delta: decimal.NewFromInt(1), ExpiryDate: &date})
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			service.RefreshExpiryNotifications(ctx)
		})
	})
}

func TestNotifyStockAlert(t *testing.T) {
	t.Run("out of stock and low stock produce different notifications", func(t *testing.T) {
		_, notifier, service := newNotificationEnv(t)
		ctx := context.Background()

		service.NotifyStockAlert(ctx, StockAlert{
			Name: "Milk", Status: inventory.StockStatusOut,
			Qty: decimal.Zero, MinStock: decimal.NewFromInt(2),
		})
		service.NotifyStockAlert(ctx, StockAlert{
			Name: "Milk", Status: inventory.StockStatusLow,
			Qty: decimal.NewFromInt(1), MinStock: decimal.NewFromInt(2),
		})

		bodies := notifier.bodies()
		require.Len(t, bodies, 2)
		assert.Contains(t, bodies[0], "out of stock")
		assert.Contains(t, bodies[1], "down to 1")
	})

	t.Run("identical consecutive alerts are suppressed", func(t *testing.T) {
		_, notifier, service := newNotificationEnv(t)
		ctx := context.Background()

		alert := StockAlert{
			Name: "Milk", Status: inventory.StockStatusLow,
			Qty: decimal.NewFromInt(1), MinStock: decimal.NewFromInt(2),
		}
		service.NotifyStockAlert(ctx, alert)
		service.NotifyStockAlert(ctx, alert)
		assert.Len(t, notifier.bodies(), 1)

		// A different quantity is a new alert
		alert.Qty = decimal.Zero
		alert.Status = inventory.StockStatusOut
		service.NotifyStockAlert(ctx, alert)
		assert.Len(t, notifier.bodies(), 2)
	})

	t.Run("ok status is ignored", func(t *testing.T) {
		_, notifier, service := newNotificationEnv(t)
		service.NotifyStockAlert(context.Background(), StockAlert{
			Name: "Milk", Status: inventory.StockStatusOK,
			Qty: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(2),
		})
		assert.Empty(t, notifier.bodies())
	})
}

func TestStockServiceEmitsAlerts(t *testing.T) {
	env, notifier, service := newNotificationEnv(t)
	ctx := context.Background()
	env.stock.SetAlertSink(service)

	product, err := env.products.Upsert(ctx, UpsertProductInput{
		Name:     "Coffee",
		MinStock: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	_, err = env.stock.Adjust(ctx, AdjustInput{ProductID: product.ID, Delta: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Empty(t, notifier.bodies(), "healthy stock raises no alert")

	_, err = env.stock.Adjust(ctx, AdjustInput{ProductID: product.ID, Delta: decimal.NewFromInt(-4)})
	require.NoError(t, err)
	bodies := notifier.bodies()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "down to 1")

	_, err = env.stock.Adjust(ctx, AdjustInput{ProductID: product.ID, Delta: decimal.NewFromInt(-1)})
	require.NoError(t, err)
	bodies = notifier.bodies()
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[1], "out of stock")
}

func TestSettingsServiceUpdate(t *testing.T) {
	env, notifier, notifications := newNotificationEnv(t)
	service := NewSettingsService(env.settings, notifications, zap.NewNop())
	ctx := context.Background()

	soon := 20
	ok := 10
	next, err := service.Update(ctx, inventory.ExpirySettingsPatch{
		SoonThresholdDays: &soon,
		OkThresholdDays:   &ok,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, next.SoonThresholdDays)
	assert.Equal(t, 21, next.OkThresholdDays, "coherence enforced on write")
	assert.Equal(t, 1, notifier.cancelled, "update reschedules notifications")

	stored, err := service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, stored)
}
