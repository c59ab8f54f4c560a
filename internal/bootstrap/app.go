package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/design-sidekick/sidekick-bot/config"
	"github.com/design-sidekick/sidekick-bot/internal/chat"
	"github.com/design-sidekick/sidekick-bot/internal/llm"
	"github.com/design-sidekick/sidekick-bot/internal/moodboard"
	"github.com/design-sidekick/sidekick-bot/internal/pdf"
	projrepo "github.com/design-sidekick/sidekick-bot/internal/projects/repository"
	"github.com/design-sidekick/sidekick-bot/internal/scheduler"
	"github.com/design-sidekick/sidekick-bot/internal/storage/postgres"
	"github.com/design-sidekick/sidekick-bot/internal/telegram"
	tplrepo "github.com/design-sidekick/sidekick-bot/internal/templates/repository"
	"github.com/design-sidekick/sidekick-bot/internal/wizard"
	"github.com/design-sidekick/sidekick-bot/internal/workspace"
)

// App holds every wired component shared by the polling and webhook binaries.
type App struct {
	Config     *config.Config
	DB         *sql.DB
	Redis      *redis.Client
	Telegram   *telegram.Client
	Dispatcher *chat.Dispatcher
	Scheduler  *scheduler.Scheduler
}

// NewApp wires the full application from configuration: storage, transport,
// external clients, the dispatcher and the scheduler.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	projectRepo := projrepo.NewProjectRepository(db)
	assetRepo := projrepo.NewAssetRepository(db)
	templateRepo := tplrepo.NewTemplateRepository(db)

	// Redis is optional; without it wizard state lives in process memory and
	// is lost on restart.
	var redisClient *redis.Client
	var states wizard.Store = wizard.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisClient, err = OpenRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			db.Close()
			return nil, err
		}
		states = wizard.NewRedisStore(redisClient)
	} else {
		log.Printf("[warn] operation=bootstrap message=REDIS_ADDR not set, wizard state is in-memory only")
	}

	tg, err := telegram.NewClient(cfg.Telegram.BotToken)
	if err != nil {
		db.Close()
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, err
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		db.Close()
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("llm client: %w", err)
	}

	wsClient := workspace.NewClient(cfg.Workspace.APIKey, cfg.Workspace.DatabaseID, cfg.Workspace.TitleProp, cfg.Workspace.StatusProp)
	syncer := workspace.NewSyncer(wsClient, projectRepo)

	dispatcher := chat.NewDispatcher(chat.Deps{
		Sender:    tg,
		Projects:  projectRepo,
		Assets:    assetRepo,
		Templates: templateRepo,
		States:    states,
		Workspace: syncer,
		LLM:       llmClient,
		Moodboard: moodboard.NewClient(cfg.Moodboard.BaseURL, cfg.Moodboard.Model, llmClient),
		PDF:       pdf.NewRenderer(),
		AdminID:   cfg.Telegram.AdminID,
	})

	sched := scheduler.NewScheduler(projectRepo, tg, syncer, cfg.Telegram.AdminID)

	return &App{
		Config:     cfg,
		DB:         db,
		Redis:      redisClient,
		Telegram:   tg,
		Dispatcher: dispatcher,
		Scheduler:  sched,
	}, nil
}

// Close releases the app's long-lived resources.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}
