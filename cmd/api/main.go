package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"facilitybook/internal/api"
	"facilitybook/internal/config"
	"facilitybook/internal/database"
	"facilitybook/internal/domain"
	"facilitybook/internal/events"
	"facilitybook/internal/export"
	"facilitybook/internal/google"
	"facilitybook/internal/logging"
	"facilitybook/internal/metrics"
	"facilitybook/internal/report"
	"facilitybook/internal/repository"
	"facilitybook/internal/service"
	"facilitybook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	health := map[string]api.HealthCheck{"database": db.Ping}

	var persistence domain.Persistence = db
	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
		snapshots := repository.NewRedisSnapshotStore(redisClient, cfg.Redis.KeyPrefix)
		persistence = repository.NewFailoverPersistence(db, snapshots, logging.Component(logger, "persistence"))
		health["redis"] = snapshots.Ping
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := repository.NewMemoryUserStore()
	bookings := repository.NewMemoryBookingStore()
	if err := loadSnapshot(ctx, persistence, users, bookings, logger); err != nil {
		return err
	}

	bus := events.NewEventBus()
	notifications := service.NewNotificationService(users, repository.NewMemoryNotificationStore(), logging.Component(logger, "notifications"))
	bookingService := service.NewBookingService(bookings, users, notifications, bus, cfg.Rooms, logging.Component(logger, "bookings"))
	userService, err := service.NewUserService(users, bookingService, bus, cfg.Registration.StudentEmailPattern, logging.Component(logger, "users"))
	if err != nil {
		return err
	}

	sinks := []worker.Sink{worker.NewPersistenceSink("persistence", persistence)}
	if mirror := initGoogleSheets(ctx, cfg, logger); mirror != nil {
		sinks = append(sinks, mirror)
	}
	syncWorker := worker.NewSyncWorker(users, bookings, sinks, worker.RetryPolicy{
		MaxRetries:   cfg.Sync.MaxRetries,
		InitialDelay: cfg.Sync.BaseDelay,
		MaxDelay:     cfg.Sync.MaxDelay,
	}, logging.Component(logger, "sync"))
	syncWorker.Subscribe(bus)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		syncWorker.Start(ctx)
	}()

	if _, err := userService.EnsureAdmin(ctx, cfg.Bootstrap.Name, cfg.Bootstrap.Email, cfg.Bootstrap.Password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	var generator domain.ReportGenerator
	if cfg.Report.APIKey != "" {
		generator = report.NewOpenAIGenerator(cfg.Report, cfg.Rooms, logging.Component(logger, "report"))
	} else {
		logger.Warn().Msg("report api key not set, report generation disabled")
	}
	reports := service.NewReportService(bookingService, generator, cfg.Report.Timeout(), logging.Component(logger, "reports"))

	backups := database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := backups.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("backup service stopped")
		}
	}()

	startMetrics(ctx, cfg, logger)

	httpServer := api.NewHTTPServer(cfg.API, api.Services{
		Bookings:      bookingService,
		Users:         userService,
		Notifications: notifications,
		Reports:       reports,
		Exporter:      export.NewExporter(cfg.Rooms),
		Health:        health,
	}, logging.Component(logger, "http"))

	err = serve(ctx, httpServer, logger)
	stop()
	wg.Wait()
	logger.Info().Msg("facilitybook stopped")
	return err
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, closer, nil
}

// loadSnapshot fills the in-memory stores from the persistence collaborator.
func loadSnapshot(ctx context.Context, persistence domain.Persistence, users domain.UserStore, bookings domain.BookingStore, logger *zerolog.Logger) error {
	storedUsers, err := persistence.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	storedBookings, err := persistence.LoadBookings(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	if err := users.Load(ctx, storedUsers); err != nil {
		return err
	}
	if err := bookings.Load(ctx, storedBookings); err != nil {
		return err
	}
	logger.Info().Int("users", len(storedUsers)).Int("bookings", len(storedBookings)).Msg("snapshot loaded")
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsMirror {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadsheetID == "" {
		return nil
	}

	mirror, err := google.NewSheetsMirror(ctx, cfg.Google, cfg.Rooms, logging.Component(logger, "sheets"))
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return mirror
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
