package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/puttlog/puttlog/internal/adapters/achievementfile"
	"github.com/puttlog/puttlog/internal/adapters/cache"
	"github.com/puttlog/puttlog/internal/adapters/database"
	"github.com/puttlog/puttlog/internal/adapters/notifier"
	"github.com/puttlog/puttlog/internal/adapters/playerrepository"
	"github.com/puttlog/puttlog/internal/app"
	"github.com/puttlog/puttlog/internal/config"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/ports"
	"github.com/puttlog/puttlog/internal/reporting"
	"github.com/puttlog/puttlog/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	// Embedded CA roots for the webhook client in images without a system trust store
	_ "golang.org/x/crypto/x509roots/fallback"
)

// TODO: Put in config
const PROD_DOMAIN_SUFFIX = "puttlog.app"
const STAGING_DOMAIN_SUFFIX = "puttlog-web.pages.dev"

func main() {
	ctx := context.Background()

	instanceID := uuid.New().String()

	config, err := config.ConfigFromEnv()

	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	if err == nil && config.GCPProject() != "" {
		logHandler = logging.NewCloudTraceLogHandler(logHandler, config.GCPProject())
	}
	logger := slog.New(logHandler).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	shutdownTelemetry, err := telemetry.SetupOTelSDK(ctx, "puttlog")
	if err != nil {
		fail("Failed to set up OpenTelemetry", "error", err.Error())
	}
	defer func() {
		err := shutdownTelemetry(context.Background())
		if err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()
	logger.Info("Initialized OpenTelemetry")

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	logger.Info("Initializing database connection")
	db, err := database.NewCloudsqlPostgresDatabase(config)
	if err != nil {
		fail("Failed to initialize database connection", "error", err.Error())
	}
	logger.Info("Initialized database connection")

	repositorySchemaName := database.GetSchemaName(!config.IsProduction())

	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, repositorySchemaName)
	if err != nil {
		fail("Failed to migrate database", "error", err.Error())
	}

	playerRepo := playerrepository.NewPostgres(db, repositorySchemaName, time.Now)
	logger.Info("Initialized PlayerRepository")

	definitions := domain.DefaultAchievementDefinitions()
	if config.AchievementsFile() != "" {
		definitions, err = achievementfile.Load(config.AchievementsFile())
		if err != nil {
			fail("Failed to load achievements file", "error", err.Error(), "path", config.AchievementsFile())
		}
		logger.Info("Loaded achievements file", "path", config.AchievementsFile(), "count", len(definitions))
	}

	catalog, err := app.BuildAchievementCatalog(logging.AddToContext(ctx, logger), definitions)
	if err != nil {
		fail("Failed to build achievement catalog", "error", err.Error())
	}
	logger.Info("Built achievement catalog", "count", catalog.Len())

	webhookClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	unlockNotifier := notifier.NewNotifierFromConfig(config, webhookClient)

	leaderboardCache := cache.NewTTLCache[[]domain.LeaderboardEntry](1 * time.Minute)

	allowedOrigins, err := ports.NewDomainSuffixes(PROD_DOMAIN_SUFFIX, STAGING_DOMAIN_SUFFIX)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	scoringConfig := domain.DefaultScoringConfig()

	computePoints := app.BuildComputePoints(scoringConfig)
	logSession := app.BuildLogSession(playerRepo, scoringConfig, catalog, unlockNotifier, time.Now)
	getPlayerStats := app.BuildGetPlayerStats(playerRepo, time.Now)
	getPlayerAchievements := app.BuildGetPlayerAchievements(playerRepo, catalog)
	checkAchievements := app.BuildCheckAchievements(playerRepo, catalog, unlockNotifier, time.Now)
	addFriend := app.BuildAddFriend(playerRepo, catalog, unlockNotifier, time.Now)
	completeChallenge := app.BuildCompleteChallenge(playerRepo, catalog, unlockNotifier, time.Now)
	getLeaderboard := app.BuildGetLeaderboardWithCache(leaderboardCache, playerRepo)

	listAchievementsHandler, err := ports.MakeListAchievementsHandler(
		catalog,
		allowedOrigins,
		logger.With("port", "list_achievements"),
		sentryMiddleware,
	)
	if err != nil {
		fail("Failed to build achievement catalog handler", "error", err.Error())
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/ping"))

	corsHandler := ports.BuildCORSHandler(allowedOrigins)

	router.Options("/v1/points", corsHandler)
	router.Post("/v1/points", ports.MakeComputePointsHandler(
		computePoints,
		allowedOrigins,
		logger.With("port", "compute_points"),
		sentryMiddleware,
	))

	router.Options("/v1/achievements", corsHandler)
	router.Get("/v1/achievements", listAchievementsHandler)

	router.Options("/v1/leaderboard", corsHandler)
	router.Get("/v1/leaderboard", ports.MakeGetLeaderboardHandler(
		getLeaderboard,
		allowedOrigins,
		logger.With("port", "get_leaderboard"),
		sentryMiddleware,
	))

	router.Route("/v1/players/{playerID}", func(r chi.Router) {
		r.Options("/*", corsHandler)

		r.Post("/sessions", ports.MakeLogSessionHandler(
			logSession,
			allowedOrigins,
			logger.With("port", "log_session"),
			sentryMiddleware,
		))
		r.Get("/stats", ports.MakeGetPlayerStatsHandler(
			getPlayerStats,
			allowedOrigins,
			logger.With("port", "get_player_stats"),
			sentryMiddleware,
		))
		r.Get("/achievements", ports.MakeGetPlayerAchievementsHandler(
			getPlayerAchievements,
			allowedOrigins,
			logger.With("port", "get_player_achievements"),
			sentryMiddleware,
		))
		r.Post("/achievements/check", ports.MakeCheckAchievementsHandler(
			checkAchievements,
			allowedOrigins,
			logger.With("port", "check_achievements"),
			sentryMiddleware,
		))
		r.Post("/friends", ports.MakeAddFriendHandler(
			addFriend,
			allowedOrigins,
			logger.With("port", "add_friend"),
			sentryMiddleware,
		))
		r.Post("/challenges", ports.MakeCompleteChallengeHandler(
			completeChallenge,
			allowedOrigins,
			logger.With("port", "complete_challenge"),
			sentryMiddleware,
		))
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port()),
		Handler:           otelhttp.NewHandler(router, "puttlog"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Init complete")
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
