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

	"qrdine-billing/internal/config"
	"qrdine-billing/internal/domain/ports/repository"
	pg "qrdine-billing/internal/infra/db/postgres"
	httpapi "qrdine-billing/internal/infra/http"
	"qrdine-billing/internal/infra/logging"
	"qrdine-billing/internal/infra/metrics"
	pay "qrdine-billing/internal/infra/payment"
	red "qrdine-billing/internal/infra/redis"
	"qrdine-billing/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional: cache + rate limiting degrade without it) ----
	var limiter *red.RateLimiter
	var redisClient red.RedisClient
	if cfg.Redis.URL != "" {
		c, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, running without cache and rate limits")
		} else {
			redisClient = c
			limiter = red.NewRateLimiter(c)
			defer c.Close()
		}
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	var plans repository.PlanRepository = pg.NewPlanRepo(pool)
	if redisClient != nil {
		plans = pg.NewPlanRepoCacheDecorator(plans, redisClient)
	}
	couponRepo := pg.NewCouponRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	billingRepo := pg.NewBillingConfigRepo(pool, cfg.Payment.SetupFee)
	tm := pg.NewTxManager(pool)

	// ---- Gateway ----
	gateway := pay.NewRazorpayGateway(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret, cfg.Payment.Razorpay.BaseURL)

	// ---- Use cases ----
	couponUC := usecase.NewCouponUseCase(couponRepo, logger)
	orderUC := usecase.NewOrderUseCase(userRepo, plans, billingRepo, couponUC, gateway, cfg.Payment.Currency, logger)
	reconcileUC := usecase.NewReconcileUseCase(paymentRepo, plans, userRepo, subRepo, tm, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo)

	// ---- HTTP ----
	auth := httpapi.NewAuthManager(cfg.Auth.JWTSecret)
	srv := httpapi.NewServer(cfg, orderUC, reconcileUC, couponUC, subUC, plans, gateway, auth, limiter, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
