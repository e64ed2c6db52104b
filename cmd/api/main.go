package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/fresher-training-api/internal/config"
	"github.com/noah-isme/fresher-training-api/internal/database"
	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/handler"
	"github.com/noah-isme/fresher-training-api/internal/middleware"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
	"github.com/noah-isme/fresher-training-api/internal/repository"
	"github.com/noah-isme/fresher-training-api/internal/router"
	"github.com/noah-isme/fresher-training-api/internal/service"
	cloud "github.com/noah-isme/fresher-training-api/pkg/cloudinary"
)

const quizResultsQueue = "quiz-results"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger()
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured; caching and redis fan-out disabled")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	bank, err := quiz.LoadBank(cfg.Quiz.BankFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Quiz.BankFile).Msg("failed to load question bank")
	}
	logger.Info().Int("questions", bank.Size()).Msg("question bank loaded")

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Configured() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary credentials missing; avatar uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	fresherRepo := repository.NewFresherRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	queueRepo := repository.NewSystemQueueRepository(db)

	activityService := service.NewActivityService(activityRepo, validate, logger)
	queueService := service.NewSystemQueueService(queueRepo, validate, logger)
	dashboardService := service.NewFresherDashboardService(fresherRepo, attemptRepo, redisClient, cfg.DashboardCacheTTL, logger)
	analyticsService := service.NewAdminAnalyticsService(fresherRepo, attemptRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	fresherService := service.NewAdminFresherService(fresherRepo, attemptRepo, activityService, storage, redisClient, validate, cfg.FresherEmailDomain, logger)
	seedService := service.NewSeedService(fresherRepo, cfg.SeedEnabled, cfg.SeedToken, cfg.FresherEmailDomain, logger)

	eventBus := service.NewQuizEventBus(redisClient, cfg.RealtimeChannel, natsConn, logger)
	eventBus.Subscribe(func(ctx context.Context, event dto.QuizCompletedEvent) {
		if !eventBus.IsLocal(event) {
			return
		}
		if err := queueService.RecordProcessed(ctx, quizResultsQueue, false); err != nil {
			logger.Warn().Err(err).Uint("fresher_id", event.FresherID).Msg("failed to record quiz result processing")
		}
	})

	busCtx, cancelBus := context.WithCancel(context.Background())
	defer cancelBus()
	if err := eventBus.Start(busCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start quiz event bus")
	}

	quizService := service.NewQuizSessionService(bank, attemptRepo, activityService, redisClient, eventBus, service.QuizSettings{
		QuestionCount:          cfg.Quiz.QuestionCount,
		DurationSeconds:        cfg.Quiz.Duration,
		TickInterval:           cfg.Quiz.TickInterval,
		AllowUnansweredAdvance: cfg.Quiz.AllowUnansweredAdvance,
		PassRatio:              cfg.Quiz.PassRatio,
		SessionRetention:       cfg.Quiz.SessionRetention,
	}, logger)
	defer quizService.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:          &logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		SlowRequest:     cfg.SlowRequestThreshold,
		AccessLog:       cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		QuizHandler:             handler.NewQuizHandler(quizService, dashboardService, validate, logger),
		FresherDashboardHandler: handler.NewFresherDashboardHandler(dashboardService, logger),
		AdminFresherHandler:     handler.NewAdminFresherHandler(fresherService, logger),
		AdminAnalyticsHandler:   handler.NewAdminAnalyticsHandler(analyticsService, logger),
		AdminActivityHandler:    handler.NewAdminActivityHandler(activityService, logger),
		AdminQueueHandler:       handler.NewAdminSystemQueueHandler(queueService, logger),
		SeedHandler:             handler.NewSeedHandler(seedService, validate, logger),
		HealthProbes:            healthProbes(db, redisClient, natsConn),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) []handler.HealthProbe {
	probes := []handler.HealthProbe{{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}

	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	if natsConn != nil {
		probes = append(probes, handler.HealthProbe{
			Name: "nats",
			Check: func(context.Context) error {
				if !natsConn.IsConnected() {
					return errors.New(natsConn.Status().String())
				}
				return nil
			},
		})
	}

	return probes
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
