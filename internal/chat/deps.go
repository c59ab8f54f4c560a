package chat

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	projdomain "github.com/design-sidekick/sidekick-bot/internal/projects/domain"
	tpldomain "github.com/design-sidekick/sidekick-bot/internal/templates/domain"
	"github.com/design-sidekick/sidekick-bot/internal/wizard"
)

// Sender is the outbound side of the chat transport. The dispatcher only
// needs this narrow surface, which keeps handlers testable with a fake.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	SendMediaGroupURLs(ctx context.Context, chatID int64, urls []string, caption string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	DownloadFile(ctx context.Context, fileID, destPath string) error
	ReadFileText(ctx context.Context, fileID string) (string, error)
}

type projectStore interface {
	CreateIdea(ctx context.Context, name string, description *string) (*projdomain.Project, error)
	GetByID(ctx context.Context, id int64) (*projdomain.Project, error)
	ListByStatus(ctx context.Context, status projdomain.Status) ([]projdomain.Project, error)
	UpdateStatus(ctx context.Context, id int64, status projdomain.Status) (*projdomain.Project, error)
	Activate(ctx context.Context, id int64, intervalDays int) (*projdomain.Project, error)
	UpdateFields(ctx context.Context, id int64, name, description *string) (*projdomain.Project, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type assetStore interface {
	Add(ctx context.Context, projectID int64, assetType projdomain.AssetType, fileID string, textContent *string) (*projdomain.ProjectAsset, error)
	ListByProject(ctx context.Context, projectID int64) ([]projdomain.ProjectAsset, error)
}

type templateStore interface {
	Add(ctx context.Context, name, htmlBody string, cssBody *string) (*tpldomain.PdfTemplate, error)
	GetByID(ctx context.Context, id int64) (*tpldomain.PdfTemplate, error)
	ListAll(ctx context.Context) ([]tpldomain.PdfTemplate, error)
}

// workspaceSyncer mirrors project mutations to the external workspace. All
// methods degrade gracefully; none of them blocks a wizard from finishing.
type workspaceSyncer interface {
	SyncCreate(ctx context.Context, p *projdomain.Project) (string, bool)
	SyncStatus(ctx context.Context, p *projdomain.Project)
	SyncFields(ctx context.Context, p *projdomain.Project, name, description *string)
	Archive(ctx context.Context, p *projdomain.Project)
}

type textGenerator interface {
	Generate(ctx context.Context, promptTemplate, draft string) (string, error)
}

type moodboardGenerator interface {
	Generate(ctx context.Context, description string) ([]string, error)
}

type pdfRenderer interface {
	Render(name, description string, imagePaths []string, htmlBody string, cssBody *string) ([]byte, error)
}

// Deps carries everything the dispatcher needs, injected once at startup.
type Deps struct {
	Sender    Sender
	Projects  projectStore
	Assets    assetStore
	Templates templateStore
	States    wizard.Store
	Workspace workspaceSyncer
	LLM       textGenerator
	Moodboard moodboardGenerator
	PDF       pdfRenderer

	AdminID int64
	// TempDir receives downloaded images during content generation.
	TempDir string
	// GenTimeout bounds one content-generation run end to end.
	GenTimeout time.Duration
}
