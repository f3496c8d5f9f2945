package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu-games-subscription/internal/config"
	"edu-games-subscription/internal/domain/ports/adapter"
	pg "edu-games-subscription/internal/infra/db/postgres"
	"edu-games-subscription/internal/infra/logging"
	pay "edu-games-subscription/internal/infra/payment"
	red "edu-games-subscription/internal/infra/redis"
	"edu-games-subscription/internal/infra/sched"
	"edu-games-subscription/internal/infra/web"
	"edu-games-subscription/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop payment gateway)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional: rate limiting only) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; payment rate limiting disabled")
	}

	// ---- Repositories ----
	subRepo := pg.NewSubscriptionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	progressRepo := pg.NewProgressRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = pay.NewNoopGateway()
		logger.Warn().Msg("payment gateway: noop (signatures not verified)")
	} else {
		gateway, err = pay.NewRazorpayGateway(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret)
		if err != nil {
			logger.Fatal().Err(err).Msg("razorpay gateway")
		}
	}

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(subRepo, nil, logger)
	reconcileUC := usecase.NewReconcileUseCase(subRepo, logger)
	entitlementUC := usecase.NewEntitlementUseCase(subRepo, reconcileUC, nil, logger)
	purchaseUC := usecase.NewPurchaseUseCase(subRepo, payRepo, progressRepo, pricingUC, gateway, txManager, nil, logger)
	adminUC := usecase.NewSubscriptionAdminUseCase(subRepo, nil, logger)

	// ---- Expiry worker ----
	worker, err := sched.NewExpiryWorker(reconcileUC, cfg.Scheduler.FireAt, cfg.Scheduler.PollInterval, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("expiry worker")
	}
	worker.Start(ctx)
	defer worker.Stop()

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Admin.SessionSecret, cfg.Admin.APIKey, cfg.Admin.SessionTTL)
	server := web.NewServer(
		entitlementUC, purchaseUC, pricingUC, adminUC,
		worker, auth, limiter,
		cfg.Payment.RateLimit, cfg.Payment.RateLimitWindow,
		logger,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.Server.Port) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
