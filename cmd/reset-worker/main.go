// The reset worker zeroes the per-day activity counters at midnight in the
// ledger's calendar zone. It runs as its own binary so a stuck API deploy
// never skips the rollover.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/config"
	"github.com/earnzy/earnzy-api/internal/domain/quota"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
	"github.com/earnzy/earnzy-api/internal/pkg/database"
	"github.com/earnzy/earnzy-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "earnzy-reset-worker",
	})

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn().Str("timezone", cfg.Timezone).Err(err).Msg("unknown timezone, falling back to default")
		loc, _ = time.LoadLocation(clock.DefaultTimezone)
	}

	resetter := quota.NewResetter(db)

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.ResetCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		res, err := resetter.ResetDaily(ctx)
		if err != nil {
			log.Error().Err(err).Msg("daily reset run failed")
			return
		}
		if len(res.FailedIDs) > 0 {
			log.Error().Int("failed", len(res.FailedIDs)).Msg("daily reset left accounts unreset")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.ResetCron).Msg("invalid reset schedule")
	}

	c.Start()
	log.Info().Str("cron", cfg.ResetCron).Str("timezone", loc.String()).Msg("reset worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	<-c.Stop().Done()
	log.Info().Msg("reset worker stopped")
}
