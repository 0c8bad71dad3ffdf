package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/brightnest/daycare/internal/app/controllers"
	appMigrations "github.com/brightnest/daycare/internal/app/migrations"
	appRepos "github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/app/repositories/memory"
	appRoutes "github.com/brightnest/daycare/internal/app/routes"
	appServices "github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/config"
	"github.com/brightnest/daycare/internal/db"
	appMiddleware "github.com/brightnest/daycare/internal/middleware"
	pkgAuth "github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/brightnest/daycare/internal/pkg/filestorage"
	"github.com/brightnest/daycare/internal/pkg/helpers"
	"github.com/brightnest/daycare/internal/pkg/logger"
	"github.com/brightnest/daycare/internal/pkg/messaging"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/brightnest/daycare/internal/pkg/revocation"
	"github.com/brightnest/daycare/internal/pkg/websocket"
	"github.com/brightnest/daycare/internal/seed"
)

// DefaultConfigPath is read when DAYCARE_CONFIG is unset
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Metrics        *metrics.Metrics
	Hub            *websocket.Hub
	Logger         zerolog.Logger

	closers []func() error
}

// Close releases the connections opened by BuildDependencies, newest first
func (d *Dependencies) Close() error {
	var err error
	for i := len(d.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, d.closers[i]())
	}
	d.closers = nil
	return err
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := DefaultConfigPath
	if p := os.Getenv("DAYCARE_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "daycare-api",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured store, runs migrations and seeds the
// default data. The returned database is nil for the memory driver.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, *appRepos.Repositories, error) {
	var (
		database *db.PostgresDB
		repos    *appRepos.Repositories
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using the in-memory store; data is lost on restart")
		repos = memory.NewRepositories()

	default:
		lgr.Info().Msg("Establishing database connection...")
		var err error
		database, err = db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		migrationsDir := cfg.Server.MigrationsDir
		if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
			database.Close()
			lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
			return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}

		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.Pool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}

		repos = appRepos.NewRepositories(database.Pool)
	}

	admin := seed.Admin{Email: cfg.Auth.AdminEmail, Password: cfg.Auth.AdminPassword}
	if err := seed.CreateDefaultData(ctx, repos, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, repos, nil
}

// BuildDependencies initializes services, controllers and the optional
// Redis and RabbitMQ connections. ctx bounds the feed hub and token cleanup.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}
	checks := map[string]appControllers.Pinger{}
	if database != nil {
		checks["database"] = database
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.BaseURL, cfg.Server.MaxUploadBytes)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	var revocations revocation.List = revocation.NewMemoryList()
	if cfg.Redis.Enabled {
		timeout := helpers.ParseDuration(cfg.Redis.Timeout, 2*time.Second)
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		deps.closers = append(deps.closers, client.Close)
		checks["redis"] = appControllers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		revocations = revocation.NewRedisList(client, timeout)
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis token revocation list")
	}

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run(ctx)

	publishers := []messaging.Publisher{messaging.NewLogPublisher(lgr), deps.Hub}
	if cfg.AMQP.Enabled {
		timeout := helpers.ParseDuration(cfg.AMQP.Timeout, 5*time.Second)
		rabbit, err := messaging.NewRabbitMQPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, timeout)
		if err != nil {
			_ = deps.Close()
			lgr.Error().Err(err).Msg("Failed to connect to RabbitMQ")
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		deps.closers = append(deps.closers, rabbit.Close)
		publishers = append(publishers, rabbit)
		lgr.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Publishing content events to RabbitMQ")
	}

	accessExp, refreshExp := cfg.TokenLifetimes()
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  accessExp,
		RefreshTokenExp: refreshExp,
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(appServices.Dependencies{
		Repos:                      repos,
		JWT:                        deps.JWTService,
		Revocations:                revocations,
		Storage:                    deps.FileStorage,
		Publisher:                  messaging.NewMultiPublisher(publishers...),
		Metrics:                    deps.Metrics,
		Logger:                     lgr,
		AllowStaffSelfRegistration: cfg.Auth.AllowStaffSelfRegistration,
	})

	go RunTokenCleanup(ctx, deps.Services.Auth, helpers.ParseDuration(cfg.Auth.TokenCleanupInterval, time.Hour), lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository, revocations, lgr)

	svc := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(svc.Auth, lgr),
		User:         appControllers.NewUserController(svc.User, lgr),
		Child:        appControllers.NewChildController(svc.Child),
		Category:     appControllers.NewCategoryController(svc.Category),
		Newsletter:   appControllers.NewNewsletterController(svc.Newsletter, lgr),
		Announcement: appControllers.NewAnnouncementController(svc.Announcement),
		Event:        appControllers.NewEventController(svc.Event),
		Subscription: appControllers.NewSubscriptionController(svc.Subscription),
		Health:       appControllers.NewHealthController(checks),
		Feed:         websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.Metrics(deps.Metrics))
	router.Use(appMiddleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Server.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	}

	appRoutes.SetupSwagger(router)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, appRoutes.Options{
		StoragePath: cfg.Server.StoragePath,
		MetricsPath: metricsPath,
		Metrics:     deps.Metrics,
	})

	return router
}
