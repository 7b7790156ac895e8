package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/example/zeus-tips-bot/internal/app"
	"github.com/example/zeus-tips-bot/internal/app/cmdHandlers"
	"github.com/example/zeus-tips-bot/internal/config"
	"github.com/example/zeus-tips-bot/internal/repository"
	"github.com/example/zeus-tips-bot/internal/service"
	"github.com/example/zeus-tips-bot/pkg/apifootball"
	"github.com/example/zeus-tips-bot/pkg/mercadopago"
	"github.com/example/zeus-tips-bot/pkg/openai"
	"github.com/example/zeus-tips-bot/pkg/telegram"
)

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := repository.Open(cfg.DBConnString)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	subs := repository.NewPostgresSubscriberRepository(db)
	preds := repository.NewPostgresPredictionRepository(db)
	settings := repository.NewPostgresSettingsRepository(db)

	tgClient := telegram.NewClient(cfg.TelegramToken)
	aiClient := openai.NewClient(cfg.OpenAIToken, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	football := apifootball.NewClient(cfg.APIFootballKey)
	payments := mercadopago.NewClient(cfg.MercadoPagoToken, cfg.NotificationURL)

	subscriptions := service.NewSubscriptionService(subs)
	channel := service.NewChannelService(settings, cfg.VIPChannelFallback)
	enrollment := service.NewEnrollmentService(subscriptions, channel, tgClient, logger)

	jobs := app.NewJobs(logger, cfg.AdminUserID, subs, preds, subscriptions, channel, football, aiClient, tgClient)
	scheduler := app.NewScheduler(jobs, logger, cfg.Schedules)
	webhook := app.NewWebhookServer(cfg.WebhookAddr, payments, enrollment, cfg.Plans, logger)

	handler := cmdHandlers.NewCmdHandler(
		logger, cfg.AdminUserID, cfg.Plans, tgClient,
		subs, preds, channel, enrollment, payments, jobs, football,
	)

	application := app.New(logger, tgClient, handler, scheduler, webhook)
	if err := application.Run(context.Background()); err != nil {
		logger.Error("run", "error", err)
		os.Exit(1)
	}
}
