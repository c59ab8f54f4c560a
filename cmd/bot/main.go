package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/design-sidekick/sidekick-bot/config"
	"github.com/design-sidekick/sidekick-bot/internal/bootstrap"
)

// Long-polling entry point. For webhook delivery see cmd/webhook.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] operation=load_config error=%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("[error] operation=bootstrap error=%v", err)
	}
	defer app.Close()

	// A leftover webhook blocks getUpdates.
	if _, err := app.Telegram.API().Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		log.Printf("[warn] operation=delete_webhook error=%v", err)
	}

	if err := app.Scheduler.Start(); err != nil {
		log.Fatalf("[error] operation=start_scheduler error=%v", err)
	}
	defer app.Scheduler.Stop()

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := app.Telegram.API().GetUpdatesChan(updateCfg)

	log.Printf("[info] operation=startup mode=polling version=%s", cfg.App.Version)

	var wg sync.WaitGroup
loop:
	for {
		select {
		case <-ctx.Done():
			app.Telegram.API().StopReceivingUpdates()
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				hctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()
				app.Dispatcher.HandleUpdate(hctx, u)
			}(update)
		}
	}

	wg.Wait()
	log.Printf("[info] operation=shutdown message=bot stopped")
}
