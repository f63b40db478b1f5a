package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"listify/internal/bot"
	"listify/internal/config"
	"listify/internal/logging"
	"listify/internal/repository"
	"listify/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateBot(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	scheduler := service.NewSchedulerService(time.Local)
	services := bot.Services{
		Tasks:      service.NewTaskService(taskRepo, log.Named("tasks")),
		Categories: service.NewCategoryService(categoryRepo, service.NewCategoryHistory(), log.Named("categories")),
		Board:      service.NewBoard(taskRepo, log.Named("board")),
		Stats:      service.NewStatsService(taskRepo),
		Scheduler:  scheduler,
	}

	telegramBot, err := bot.New(cfg.TelegramToken, services, cfg, log.Named("bot"))
	if err != nil {
		log.Fatal("bot", zap.Error(err))
	}

	scheduler.Start()
	defer scheduler.Stop()

	log.Info("listify bot started",
		zap.String("env", cfg.Env),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Duration("live_view_ttl", cfg.LiveViewTTL),
	)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped with error", zap.Error(err))
		return
	}
	log.Info("shutdown complete")
}
