package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promo-platform/internal/config"
	"promo-platform/internal/domain/ports/adapter"
	fraudAdapters "promo-platform/internal/infra/adapters/fraud"
	pg "promo-platform/internal/infra/db/postgres"
	httpapi "promo-platform/internal/infra/http"
	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"
	red "promo-platform/internal/infra/redis"
	"promo-platform/internal/infra/web"
	"promo-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (allow-all fraud oracle)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Fraud oracle ----
	var oracle adapter.FraudOracle
	if cfg.Fraud.Address != "" {
		oracle, err = fraudAdapters.NewHTTPOracle(cfg.Fraud.Address, cfg.Fraud.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("fraud oracle")
		}
	} else {
		logger.Warn().Msg("no fraud oracle configured, allowing all activations")
		oracle = fraudAdapters.NewNoopOracle()
	}
	fraudCache := red.NewFraudVerdictCache(redisClient, oracle, logger)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	promoRepo := pg.NewPostgresPromoRepo(pool)
	activationRepo := pg.NewPostgresActivationRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	companyRepo := pg.NewPostgresCompanyRepo(pool)
	commentRepo := pg.NewPostgresCommentRepo(pool)
	likeRepo := pg.NewPostgresLikeRepo(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, logger)
	companyUC := usecase.NewCompanyUseCase(companyRepo, logger)
	promoUC := usecase.NewPromoUseCase(promoRepo, activationRepo, userRepo, commentRepo, likeRepo, logger)
	engagementUC := usecase.NewEngagementUseCase(promoRepo, commentRepo, likeRepo, logger)
	redemptionUC := usecase.NewRedemptionUseCase(promoRepo, activationRepo, userRepo, fraudCache, tm, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	api := web.NewServer(userUC, companyUC, promoUC, engagementUC, redemptionUC, auth, rateLimiter, cfg.RateLimit.ActivationsPerMinute, logger)
	srv := httpapi.NewServer(cfg.HTTP.Port, api.Router(), logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
