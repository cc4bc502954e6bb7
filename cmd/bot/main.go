package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/ai"
	"github.com/wlin7245/remindly/internal/alarm"
	"github.com/wlin7245/remindly/internal/alert"
	"github.com/wlin7245/remindly/internal/bot"
	"github.com/wlin7245/remindly/internal/config"
	"github.com/wlin7245/remindly/internal/database"
	"github.com/wlin7245/remindly/internal/email"
	"github.com/wlin7245/remindly/internal/logging"
	"github.com/wlin7245/remindly/internal/repository"
	"github.com/wlin7245/remindly/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup("remindly", cfg.LogLevel)

	if cfg.DatabaseURI == "" {
		log.Fatal().Msg("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to database")

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	repo := repository.NewReminderRepository(db)

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Info().Str("model", cfg.AIModel).Msg("AI extraction enabled")
	} else {
		log.Info().Msg("AI extraction not configured, rule-based parser only")
	}

	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram client")
	}

	// The alarm service needs a handler before the dispatcher exists, and
	// the dispatcher needs the scheduler built on the alarm service. The
	// closure breaks the cycle; dispatcher is assigned before anything can
	// fire.
	var dispatcher *alert.Dispatcher
	alarms := alarm.New(func(p alarm.Payload) { dispatcher.HandleAlarm(p) },
		alarm.WithExactAlarms(cfg.ExactAlarms),
		alarm.WithExactBudget(cfg.MaxExactAlarms),
	)
	sched := scheduler.New(alarms, repo)

	device := alert.NewLogDevice()
	opts := []alert.DispatcherOption{alert.WithSeries(sched, repo)}
	if cfg.EmailEnabled() {
		registry := email.NewRegistry(email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}), email.NewLogSender())
		if cfg.EmailPreferred != "" {
			registry.Remember(cfg.EmailPreferred)
		}
		opts = append(opts, alert.WithEmail(email.NewService(registry, email.StaticRecipient(cfg.EmailTo))))
		log.Info().Str("host", cfg.SMTPHost).Msg("email fan-out enabled")
	}
	dispatcher = alert.NewDispatcher(
		alert.NewTelegramNotifier(api, repo),
		device, device, device,
		opts...,
	)

	go alarms.Start(ctx)
	go sched.Start(ctx)

	b := bot.New(api, repo, sched, aiClient)
	log.Info().Msg("starting bot")
	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("shutdown complete")
}
