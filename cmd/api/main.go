package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/config"
	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/catalog"
	"github.com/earnzy/earnzy-api/internal/domain/fraud"
	"github.com/earnzy/earnzy-api/internal/domain/quota"
	"github.com/earnzy/earnzy-api/internal/domain/referral"
	"github.com/earnzy/earnzy-api/internal/domain/settlement"
	"github.com/earnzy/earnzy-api/internal/domain/subscription"
	"github.com/earnzy/earnzy-api/internal/domain/withdrawal"
	"github.com/earnzy/earnzy-api/internal/middleware"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
	"github.com/earnzy/earnzy-api/internal/pkg/database"
	"github.com/earnzy/earnzy-api/internal/pkg/jwt"
	"github.com/earnzy/earnzy-api/internal/pkg/logger"
	"github.com/earnzy/earnzy-api/internal/pkg/replay"
	"github.com/earnzy/earnzy-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "earnzy-api",
	})

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	clk := clock.New(cfg.Timezone)
	guard := replay.NewGuard(rdb, 48*time.Hour)
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// Repositories
	accountRepo := account.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	referralRepo := referral.NewRepository(db)
	subscriptionRepo := subscription.NewRepository(db)
	withdrawalRepo := withdrawal.NewRepository(db)
	fraudRepo := fraud.NewRepository(db)
	resetter := quota.NewResetter(db)

	// Services
	limits := quota.Limits{EnforceSoftCaps: cfg.EnforceSoftCaps}
	monitor := fraud.NewMonitor(accountRepo, fraudRepo, clk, cfg.FraudBalanceJump, cfg.MaxKnownDevices)
	accountSvc := account.NewService(accountRepo, clk, cfg.SignupBonus, monitor)
	catalogSvc := catalog.NewService(catalogRepo)
	referralSvc := referral.NewService(referralRepo, accountRepo, clk, cfg.ReferralBonus, monitor)
	subscriptionSvc := subscription.NewService(subscriptionRepo, accountRepo, guard, clk, monitor)
	withdrawalSvc := withdrawal.NewService(withdrawalRepo, accountRepo, guard, clk, monitor)
	settlementSvc := settlement.NewService(accountRepo, catalogSvc, monitor, limits, clk, nil)

	// Handlers
	accountHandler := account.NewHandler(accountSvc, referralSvc)
	catalogHandler := catalog.NewHandler(catalogSvc)
	referralHandler := referral.NewHandler(referralSvc)
	subscriptionHandler := subscription.NewHandler(subscriptionSvc)
	withdrawalHandler := withdrawal.NewHandler(withdrawalSvc)
	settlementHandler := settlement.NewHandler(settlementSvc)
	fraudHandler := fraud.NewHandler(fraudRepo)
	quotaHandler := quota.NewHandler(resetter)

	auth := middleware.Auth(jwtService)
	admin := middleware.AdminKey(cfg.AdminAPIKey)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/accounts", accountHandler.Routes(auth))
		r.With(auth).Mount("/", catalogHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes(auth))
		r.With(admin).Mount("/settlements/referrals", referralHandler.SettleRoutes())
		r.Mount("/referrals", referralHandler.Routes(auth))
		r.Route("/withdrawals", func(r chi.Router) {
			r.With(auth).Post("/", withdrawalHandler.Create)
			r.With(auth).Get("/", withdrawalHandler.ListMine)
			r.With(admin).Post("/{id}/complete", withdrawalHandler.Complete)
		})
		r.Mount("/subscriptions", subscriptionHandler.Routes(auth))
		r.With(admin).Mount("/fraud", fraudHandler.Routes())
		r.With(admin).Mount("/admin", quotaHandler.AdminRoutes())
	})
	r.Mount("/webhooks", subscriptionHandler.WebhookRoutes())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
