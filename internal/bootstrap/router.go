package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/design-sidekick/sidekick-bot/internal/chat"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	BotToken    string
	DB          *sql.DB
	Dispatcher  *chat.Dispatcher
}

// BuildRouter assembles the webhook-mode HTTP surface: a health endpoint and
// the update receiver. The bot token doubles as the webhook path secret.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := dep.DB.PingContext(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": dep.ServiceName,
			"version": dep.Version,
		})
	})

	r.POST("/webhook/:token", func(c *gin.Context) {
		if c.Param("token") != dep.BotToken {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			log.Printf("[warn] operation=webhook_decode error=%v", err)
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		// Telegram retries on slow responses; the update is acknowledged
		// immediately and handled off the request goroutine.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			dep.Dispatcher.HandleUpdate(ctx, update)
		}()

		c.Status(http.StatusOK)
	})

	return r
}
