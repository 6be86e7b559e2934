package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	inventoryapp "github.com/stocklot/backend/internal/application/inventory"
	"github.com/stocklot/backend/internal/infrastructure/config"
	"github.com/stocklot/backend/internal/infrastructure/logger"
	"github.com/stocklot/backend/internal/infrastructure/notification"
	"github.com/stocklot/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stocklot backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("database", cfg.Database.Path),
	)

	// Open database and migrate schema
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithIgnoreRecordNotFoundError(true),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Wire repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	settingsStore := persistence.NewGormSettingsStore(db.DB)

	// Wire services
	notifier := notification.NewLogNotifier(log, cfg.Notifications.Enabled)
	notificationService := inventoryapp.NewNotificationService(productRepo, settingsStore, notifier, log)
	settingsService := inventoryapp.NewSettingsService(settingsStore, notificationService, log)
	productService := inventoryapp.NewProductService(productRepo, batchRepo, movementRepo, log)
	stockService := inventoryapp.NewStockService(productRepo, batchRepo, movementRepo, log)
	stockService.SetAlertSink(notificationService)

	ctx := context.Background()

	// Seed the settings store from config on first run; existing values win
	if err := settingsStore.SeedDefaults(ctx, cfg.Expiry.ExpirySettings()); err != nil {
		log.Warn("Failed to seed expiry settings", zap.Error(err))
	}
	settings, err := settingsService.Get(ctx)
	if err != nil {
		log.Warn("Failed to read expiry settings", zap.Error(err))
	} else {
		log.Info("Expiry settings loaded",
			zap.Int("soon_threshold_days", settings.SoonThresholdDays),
			zap.Int("ok_threshold_days", settings.OkThresholdDays),
		)
	}

	// Reschedule expiry notifications for the current catalog
	notificationService.RefreshExpiryNotifications(ctx)

	if products, err := productService.List(ctx); err != nil {
		log.Warn("Failed to load catalog", zap.Error(err))
	} else {
		log.Info("Catalog loaded", zap.Int("products", len(products)))
	}
	if summary, err := stockService.ExpirySummary(ctx, cfg.Expiry.SummaryDaysAhead); err != nil {
		log.Warn("Failed to compute expiry summary", zap.Error(err))
	} else if len(summary) > 0 {
		log.Info("Expiry summary",
			zap.Int("products_with_dated_stock", len(summary)),
			zap.Int("days_ahead", cfg.Expiry.SummaryDaysAhead),
		)
	}

	log.Info("Stocklot backend ready")

	// SIGHUP re-runs the notification refresh; SIGINT/SIGTERM shut down
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for sig := range signals {
		if sig == syscall.SIGHUP {
			log.Info("Reloading expiry notifications on SIGHUP")
			notificationService.RefreshExpiryNotifications(ctx)
			continue
		}
		log.Info("Shutting down", zap.String("signal", sig.String()))
		break
	}
}
