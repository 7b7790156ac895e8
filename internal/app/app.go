package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/zeus-tips-bot/internal/app/cmdHandlers"
	"github.com/example/zeus-tips-bot/pkg/telegram"
)

// App ties together the update loop, the job scheduler and the payment
// webhook server.
type App struct {
	logger    *slog.Logger
	tgClient  *telegram.Client
	handler   *cmdHandlers.CmdHandler
	scheduler *Scheduler
	webhook   *WebhookServer
}

func New(logger *slog.Logger, tgClient *telegram.Client, handler *cmdHandlers.CmdHandler, scheduler *Scheduler, webhook *WebhookServer) *App {
	return &App{
		logger:    logger,
		tgClient:  tgClient,
		handler:   handler,
		scheduler: scheduler,
		webhook:   webhook,
	}
}

// Run blocks until the context is canceled or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.setCommands(ctx)
	a.scheduler.Start()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.handleUpdates(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.webhook.Run(ctx); err != nil {
			a.logger.Error("webhook server", "error", err)
		}
	}()

	<-ctx.Done()
	<-a.scheduler.Stop().Done()
	wg.Wait()
	return nil
}

func (a *App) handleUpdates(ctx context.Context) {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		updates, err := a.tgClient.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.logger.Error("get updates", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			switch {
			case u.CallbackQuery != nil:
				a.handler.HandleCallback(ctx, u.CallbackQuery)
			case u.Message != nil:
				a.handler.HandleMessage(ctx, u.Message)
			}
		}
	}
}

func (a *App) setCommands(ctx context.Context) {
	if err := a.tgClient.SetCommands(ctx, cmdHandlers.Commands()); err != nil {
		a.logger.Error("set commands", "error", err)
	}
}
