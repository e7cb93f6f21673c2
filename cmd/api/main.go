package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/naass/lead-api/internal/config"
	"github.com/naass/lead-api/internal/entity"
	"github.com/naass/lead-api/internal/infra/database"
	"github.com/naass/lead-api/internal/infra/geo"
	"github.com/naass/lead-api/internal/infra/http/handlers"
	"github.com/naass/lead-api/internal/infra/http/middleware"
	"github.com/naass/lead-api/internal/infra/mail"
	"github.com/naass/lead-api/internal/infra/memstore"
	"github.com/naass/lead-api/internal/infra/queue"
	"github.com/naass/lead-api/internal/infra/worker"
	"github.com/naass/lead-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := setupLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	// 1. Storage
	var (
		db     *sql.DB
		drafts entity.DraftRepository
		leads  entity.LeadRepositoryInterface
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		drafts = memstore.NewDraftStore()
		leads = memstore.NewLeadStore()
		logger.Warn().Msg("using in-memory store, data is lost on restart")
	default:
		db, err = database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := database.EnsureSchema(ctx, db); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
		drafts = database.NewDraftRepository(db, cfg.DBTimeout)
		leads = database.NewLeadRepository(db, cfg.DBTimeout)
		logger.Info().Msg("database connection established")
	}

	// 2. Adapters
	var locator usecase.Locator
	if cfg.GeoLookupEnabled {
		locator = geo.NewClient(geo.Options{
			Timeout: cfg.GeoTimeout,
			OnError: middleware.RecordIntegrationError,
		}, logger)
	}

	var (
		rdb        *redis.Client
		limitStore middleware.Store
	)
	if cfg.EnableRedisCache {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr()).Msg("redis unreachable, rate limiting fails open")
		}
		limitStore = middleware.NewRedisStore(rdb)
	} else {
		mem := middleware.NewMemoryStore()
		go mem.Cleanup(ctx, time.Minute)
		limitStore = mem
	}

	mailSender := mail.NewEmailSender(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.AdminEmail,
	)

	// 3. Notifications and workers
	var (
		rabbitMQ *queue.RabbitMQ
		notifier usecase.LeadNotifier
	)
	switch {
	case cfg.RabbitMQURL != "":
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer rabbitMQ.Close()

		notifier = queue.NewProducer(rabbitMQ.Ch)
		leadWorker := queue.NewWorker(rabbitMQ.Ch, mailSender, logger)
		go func() {
			if err := leadWorker.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("lead worker stopped")
			}
		}()
	case mailSender.Enabled():
		notifier = mailSender
	default:
		logger.Warn().Msg("SMTP not configured, lead notifications disabled")
	}

	expiration := worker.NewDraftExpirationWorker(drafts, cfg.DraftSweepInterval, middleware.DraftsExpired, logger)
	go expiration.Start(ctx)

	// 4. Use cases
	draftService := usecase.NewDraftService(drafts, locator, logger)
	leadService := usecase.NewLeadService(leads)
	submitContact := usecase.NewSubmitContactUseCase(leads, drafts, locator, notifier, logger)
	authService := usecase.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.TokenTTL)
	if cfg.IsProduction() && cfg.AdminPassword == "" {
		logger.Warn().Msg("ADMIN_PASSWORD not set, admin login is disabled")
	}

	// 5. Handlers
	router := handlers.NewRouter(handlers.RouterConfig{
		Drafts:      handlers.NewDraftHandler(draftService),
		Leads:       handlers.NewLeadHandler(leadService),
		Contact:     handlers.NewContactHandler(submitContact),
		Auth:        handlers.NewAuthHandler(authService),
		Health:      handlers.NewHealthHandler(db, rdb, rabbitMQ, cfg.Environment),
		Verifier:    authService,
		LimitStore:  limitStore,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	// 6. Server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr()).Str("env", cfg.Environment).Str("store", cfg.StoreDriver).Msg("lead api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server exited")
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log.Logger.With().Str("service", "lead-api").Logger()
}
