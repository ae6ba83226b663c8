package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking/config"
	deliveryHttp "clinic-booking/internal/delivery/http"
	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/calendar"
	"clinic-booking/internal/infrastructure/cache"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/metrics"
	"clinic-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const metricsNamespace = "clinic_booking"

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	RateLimiter *middleware.RateLimiter
	Log         *logrus.Logger
}

// LoadConfig reads the configuration and applies the logging settings.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(cfg.App.LogLevel)
	return cfg, nil
}

// NewCalendar builds the clinic calendar from the booking settings.
func NewCalendar(cfg config.BookingConfig) (*calendar.Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load clinic timezone: %w", err)
	}
	template, err := calendar.NewTemplate(cfg.OpenTime, cfg.CloseTime, time.Duration(cfg.SlotMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}
	return calendar.New(loc, template, cfg.HorizonDays, nil), nil
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, Log: logrus.StandardLogger()}

	if cfg.DB.AutoMigrate {
		if err := database.MigrateUp(cfg.DB.MigrationURL()); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Redis is optional; without it the cache is disabled and tokens live in memory.
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.RedisClient = redisClient
	} else {
		app.Log.Warn("Redis disabled, availability cache off and tokens kept in process memory")
	}

	cal, err := NewCalendar(cfg.Booking)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Server, app.RateLimiter = app.initializeServer(cal)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(cal *calendar.Calendar) (*http.Server, *middleware.RateLimiter) {
	cfg := app.Config
	db := app.DB
	log := app.Log
	debug := cfg.IsDevelopment()

	m := metrics.NewMetrics(metricsNamespace)
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository()
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	var (
		availabilityCache service.AvailabilityCache
		tokenStore        service.TokenStore
	)
	if app.RedisClient != nil {
		availabilityCache = service.NewRedisAvailabilityCache(app.RedisClient, log, m, cfg.Booking.CacheTTL)
		tokenStore = service.NewRedisTokenStore(app.RedisClient, log)
	} else {
		availabilityCache = service.NewNoopAvailabilityCache()
		tokenStore = service.NewMemoryTokenStore()
	}
	// Entries written by a previous process may predate writes made while it was down.
	availabilityCache.Invalidate(context.Background())

	auditService := service.NewAuditService(db, log, auditLogRepo)

	// Initialize usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, appointmentRepo, cal, availabilityCache)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, cal, availabilityCache, auditService, m)
	patientUsecase := usecase.NewPatientUsecase(db, log, appointmentRepo)
	reportUsecase := usecase.NewReportUsecase(db, log, appointmentRepo, cal)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, jwtService, tokenStore, auditService)

	// Initialize handlers
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase, log, debug)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator, log, m, debug)
	patientHandler := handler.NewPatientHandler(patientUsecase, log, debug)
	reportHandler := handler.NewReportHandler(reportUsecase, log, debug)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigin)
	rateLimiter := middleware.NewRateLimiter(cfg.Limit.RPS, cfg.Limit.Burst)

	// Initialize router
	router := deliveryHttp.NewRouter(
		log,
		m,
		availabilityHandler,
		appointmentHandler,
		patientHandler,
		reportHandler,
		auditLogHandler,
		authHandler,
		authMiddleware,
		corsMiddleware,
		rateLimiter,
	)

	// Create server
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, rateLimiter
}

// Run starts the HTTP server and blocks until it is shut down
func (app *App) Run() error {
	serverErr := make(chan error, 1)

	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	app.shutdown()
	return nil
}

func (app *App) shutdown() {
	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close releases the rate limiter, database and Redis connections
func (app *App) Close() {
	if app.RateLimiter != nil {
		app.RateLimiter.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
