package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/gyu5/Linkwallet/internal/config"
	"github.com/gyu5/Linkwallet/internal/repository"
	"github.com/gyu5/Linkwallet/internal/service"
	"github.com/gyu5/Linkwallet/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level)
	slog.Info("starting savings scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// No redis here: the scheduler writes through the repositories and
	// the server's cached snapshots expire on their own TTL.
	savingsService := service.NewSavingsService(groupRepo, membershipRepo, notificationRepo, userRepo, nil, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		slog.Error("invalid scheduler timezone", "timezone", cfg.Scheduler.Timezone, "error", err)
		os.Exit(1)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Fires on month starts so collection lines up with the planner's
	// month-boundary counting.
	_, err = c.AddFunc(cfg.Scheduler.RegularCollectSpec, func() {
		slog.Info("running regular contribution collection")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := savingsService.CollectRegularContributions(ctx); err != nil {
			slog.Error("regular contribution collection failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("failed to schedule regular contribution job", "error", err)
		os.Exit(1)
	}

	c.Start()
	slog.Info("scheduler started", "spec", cfg.Scheduler.RegularCollectSpec, "timezone", cfg.Scheduler.Timezone)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down scheduler")
	c.Stop()
	slog.Info("scheduler stopped")
}
