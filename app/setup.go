package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/coldenflo/ICeducation/api"
	"github.com/coldenflo/ICeducation/config"
	"github.com/coldenflo/ICeducation/router"
	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/services/cron"
	"github.com/coldenflo/ICeducation/utils"
	"github.com/coldenflo/ICeducation/utils/auth"
	"github.com/coldenflo/ICeducation/utils/cache"
	"github.com/coldenflo/ICeducation/utils/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(getEnv.GO_ENV)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	catalogue, err := OpenCatalogue(getEnv, logger)
	if err != nil {
		return err
	}
	defer catalogue.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogue.Store.Initialize(ctx)

	jwtSecret := getEnv.JWT_SECRET
	if jwtSecret == "" {
		// sessions will not survive a restart
		logger.Warn("JWT_SECRET not set, using a random secret")
		jwtSecret = uuid.New().String()
	}
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: getEnv.SESSION_TTL,
		Issuer: getEnv.JWT_ISSUER,
	})
	sessions := services.NewSessionService(catalogue.KV, jwtManager, logger)

	notifier := services.NewTelegramNotifier(services.TelegramConfig{
		BotToken: getEnv.TELEGRAM_BOT_TOKEN,
		ChatID:   getEnv.TELEGRAM_CHAT_ID,
		BaseURL:  getEnv.TELEGRAM_API_URL,
	})
	notify := services.NewNotifyService(notifier, logger)
	if !notify.Configured() {
		logger.Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID missing, /api/notify will fail")
	}

	// Redis is optional; without it logins are not throttled
	var bruteForce *middleware.BruteForceProtection
	redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
	if err != nil {
		logger.Warn("redis unavailable, brute force protection disabled", zap.Error(err))
	} else {
		defer redisCache.Close()
		bruteForce = middleware.NewBruteForceProtection(redisCache, logger)
	}

	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(sessions, catalogue.Store, logger)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			logger.Warn("failed to start cron jobs", zap.Error(err))
			cronManager = nil
		}
	}
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), logger)

	router.SetupRoutes(server.GetEngine(), router.Dependencies{
		KV:         catalogue.KV,
		Seed:       catalogue.Seed,
		Catalogue:  catalogue.Store,
		Sessions:   sessions,
		Notify:     notify,
		BruteForce: bruteForce,
		Logger:     logger,
		Security: middleware.SecurityConfig{
			AllowedOrigins:    getEnv.Origins(),
			RateLimitRequests: getEnv.RATE_LIMIT_REQUESTS,
			AccessLog:         !getEnv.IsProduction(),
		},
	})

	return server.Run(ctx)
}
