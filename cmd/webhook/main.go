package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/design-sidekick/sidekick-bot/config"
	"github.com/design-sidekick/sidekick-bot/internal/bootstrap"
)

// Webhook entry point: Telegram pushes updates over HTTPS instead of the bot
// polling for them. Requires PUBLIC_BASE_URL.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] operation=load_config error=%v", err)
	}
	if cfg.Telegram.PublicBaseURL == "" {
		log.Fatalf("[error] operation=load_config error=PUBLIC_BASE_URL is required in webhook mode")
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("[error] operation=bootstrap error=%v", err)
	}
	defer app.Close()

	webhookURL := cfg.Telegram.PublicBaseURL + "/webhook/" + cfg.Telegram.BotToken
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		log.Fatalf("[error] operation=set_webhook error=%v", err)
	}
	if _, err := app.Telegram.API().Request(wh); err != nil {
		log.Fatalf("[error] operation=set_webhook error=%v", err)
	}

	if err := app.Scheduler.Start(); err != nil {
		log.Fatalf("[error] operation=start_scheduler error=%v", err)
	}
	defer app.Scheduler.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "sidekick-bot",
		Version:     cfg.App.Version,
		BotToken:    cfg.Telegram.BotToken,
		DB:          app.DB,
		Dispatcher:  app.Dispatcher,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("[info] operation=startup mode=webhook port=%s version=%s", cfg.Server.Port, cfg.App.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[error] operation=listen error=%v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[error] operation=shutdown error=%v", err)
	}
	log.Printf("[info] operation=shutdown message=webhook server stopped")
}
