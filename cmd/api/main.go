package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"jojam/internal/api"
	"jojam/internal/config"
	"jojam/internal/database"
	"jojam/internal/domain"
	"jojam/internal/events"
	"jojam/internal/export"
	"jojam/internal/google"
	"jojam/internal/logging"
	"jojam/internal/metrics"
	"jojam/internal/models"
	"jojam/internal/repository"
	"jojam/internal/service"
	"jojam/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"
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
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg); err != nil {
		logger.Error().Err(err).Msg("failed to prepare directories")
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	redisClient, sessions := initSessions(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()

	// A nil *SheetsWorker must stay a nil interface
	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}
	reservationService := service.NewReservationService(
		db, db, eventBus, syncWorker,
		cfg.Booking.AllowReopen, cfg.Booking.MaxBookingDays, &logger,
	)
	userService := service.NewUserService(db, &logger)
	pricingService := service.NewPricingService(db, eventBus, &logger)
	exporter := export.NewExporter(cfg.Exports.Path, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(cfg.Monitoring, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	apiServer := api.NewHTTPServer(cfg.API, reservationService, userService, pricingService, sessions, exporter, &logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API server shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(cfg.Exports.Path, 0o755)
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize database")
		return nil, err
	}

	if err := seedPricing(db, logger); err != nil {
		db.Close()
		return nil, err
	}
	if err := seedAdmin(db, cfg.Admin, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// seedPricing loads the hourly rates shipped with the deployment. Existing
// rows win so admin rate changes survive restarts.
func seedPricing(db *database.DB, logger *zerolog.Logger) error {
	pricingPath := os.Getenv("PRICING_PATH")
	if pricingPath == "" {
		pricingPath = "configs/pricing.yaml"
	}

	data, err := os.ReadFile(pricingPath)
	if err != nil {
		logger.Error().Err(err).Msgf("failed to read %s", pricingPath)
		return err
	}

	var pricingConfig struct {
		Pricing []models.PricingEntry `yaml:"pricing"`
	}
	if err := yaml.Unmarshal(data, &pricingConfig); err != nil {
		logger.Error().Err(err).Msg("failed to parse pricing.yaml")
		return err
	}

	return db.SeedPricing(context.Background(), pricingConfig.Pricing)
}

func seedAdmin(db *database.DB, cfg config.AdminConfig, logger *zerolog.Logger) error {
	if cfg.Username == "" || cfg.Password == "" {
		logger.Warn().Msg("admin credentials are not configured, skipping admin seed")
		return nil
	}

	ctx := context.Background()
	if _, err := db.GetUserByUsername(ctx, cfg.Username); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     cfg.Username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		BandName:     "Studio staff",
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		logger.Error().Err(err).Msg("failed to seed admin user")
		return err
	}

	logger.Info().Str("username", cfg.Username).Msg("admin user created")
	return nil
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.ScheduleSpreadsheetID == "" {
		logger.Info().Msg("Google Sheets is not configured, schedule mirroring disabled")
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.ScheduleSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		if email, emailErr := google.GetServiceAccountEmail(cfg.Google.CredentialsFile); emailErr == nil {
			logger.Error().Err(err).Str("service_account", email).
				Msg("Google Sheets connection test failed, share the spreadsheet with the service account")
		} else {
			logger.Error().Err(err).Msg("Google Sheets connection test failed")
		}
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized")
	return sheetsSvc
}

func initSessions(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.SessionManager) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, sessions fall back to memory")
		}
	}

	primary := repository.NewRedisSessionStore(redisClient)
	fallback := repository.NewMemorySessionStore()
	store := repository.NewFailoverSessionStore(primary, fallback, logger)

	ttl := time.Duration(cfg.Booking.SessionTTLHours) * time.Hour
	return redisClient, service.NewSessionManager(store, ttl, logger)
}

func startMetricsServer(cfg config.MonitoringConfig, logger *zerolog.Logger) {
	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.PrometheusPort)
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}
