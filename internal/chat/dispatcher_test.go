package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projdomain "github.com/design-sidekick/sidekick-bot/internal/projects/domain"
	tpldomain "github.com/design-sidekick/sidekick-bot/internal/templates/domain"
	"github.com/design-sidekick/sidekick-bot/internal/wizard"
)

const adminID int64 = 1000

// --- fakes ---

type sentMessage struct {
	op   string
	text string
}

type fakeSender struct {
	mu            sync.Mutex
	calls         []sentMessage
	downloadDelay time.Duration
	inFlight      int
	maxParallel   int
}

func (f *fakeSender) record(op, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentMessage{op: op, text: text})
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.record("send", text)
	return nil
}

func (f *fakeSender) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.record("edit", text)
	return nil
}

func (f *fakeSender) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	f.record("answer", text)
	return nil
}

func (f *fakeSender) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.record("photo", caption)
	return nil
}

func (f *fakeSender) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	f.record("document", name)
	return nil
}

func (f *fakeSender) SendMediaGroupURLs(ctx context.Context, chatID int64, urls []string, caption string) error {
	f.record("media_group", caption)
	return nil
}

func (f *fakeSender) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.record("delete", "")
	return nil
}

func (f *fakeSender) DownloadFile(ctx context.Context, fileID, destPath string) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxParallel {
		f.maxParallel = f.inFlight
	}
	delay := f.downloadDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	f.record("download", destPath)
	return os.WriteFile(destPath, []byte("img"), 0o644)
}

func (f *fakeSender) ReadFileText(ctx context.Context, fileID string) (string, error) {
	f.record("read_file", fileID)
	return "<html></html>", nil
}

func (f *fakeSender) ops() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op)
	}
	return out
}

type fakeProjects struct {
	calls       int
	byID        map[int64]*projdomain.Project
	byStatus    map[projdomain.Status][]projdomain.Project
	created     []string
	activateErr error
}

func (f *fakeProjects) CreateIdea(ctx context.Context, name string, description *string) (*projdomain.Project, error) {
	f.calls++
	f.created = append(f.created, name)
	return &projdomain.Project{ID: 1, Name: name, Description: description, Status: projdomain.StatusIdea}, nil
}

func (f *fakeProjects) GetByID(ctx context.Context, id int64) (*projdomain.Project, error) {
	f.calls++
	return f.byID[id], nil
}

func (f *fakeProjects) ListByStatus(ctx context.Context, status projdomain.Status) ([]projdomain.Project, error) {
	f.calls++
	return f.byStatus[status], nil
}

func (f *fakeProjects) UpdateStatus(ctx context.Context, id int64, status projdomain.Status) (*projdomain.Project, error) {
	f.calls++
	p := f.byID[id]
	if p != nil {
		p.Status = status
	}
	return p, nil
}

func (f *fakeProjects) Activate(ctx context.Context, id int64, intervalDays int) (*projdomain.Project, error) {
	f.calls++
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	p := f.byID[id]
	if p != nil {
		p.Status = projdomain.StatusActive
		if intervalDays > 0 {
			p.ReminderIntervalDays = &intervalDays
		}
	}
	return p, nil
}

func (f *fakeProjects) UpdateFields(ctx context.Context, id int64, name, description *string) (*projdomain.Project, error) {
	f.calls++
	p := f.byID[id]
	if p != nil && name != nil {
		p.Name = *name
	}
	if p != nil && description != nil {
		p.Description = description
	}
	return p, nil
}

func (f *fakeProjects) Delete(ctx context.Context, id int64) (bool, error) {
	f.calls++
	_, ok := f.byID[id]
	delete(f.byID, id)
	return ok, nil
}

type fakeAssets struct {
	added []projdomain.ProjectAsset
}

func (f *fakeAssets) Add(ctx context.Context, projectID int64, assetType projdomain.AssetType, fileID string, textContent *string) (*projdomain.ProjectAsset, error) {
	a := projdomain.ProjectAsset{ProjectID: projectID, AssetType: assetType, FileID: fileID, TextContent: textContent}
	f.added = append(f.added, a)
	return &a, nil
}

func (f *fakeAssets) ListByProject(ctx context.Context, projectID int64) ([]projdomain.ProjectAsset, error) {
	return f.added, nil
}

type fakeTemplates struct {
	byID map[int64]*tpldomain.PdfTemplate
	list []tpldomain.PdfTemplate
	err  error
}

func (f *fakeTemplates) Add(ctx context.Context, name, htmlBody string, cssBody *string) (*tpldomain.PdfTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tpldomain.PdfTemplate{ID: 1, Name: name, HTMLBody: htmlBody, CSSBody: cssBody}, nil
}

func (f *fakeTemplates) GetByID(ctx context.Context, id int64) (*tpldomain.PdfTemplate, error) {
	return f.byID[id], nil
}

func (f *fakeTemplates) ListAll(ctx context.Context) ([]tpldomain.PdfTemplate, error) {
	return f.list, nil
}

type fakeWorkspace struct{}

func (fakeWorkspace) SyncCreate(ctx context.Context, p *projdomain.Project) (string, bool) {
	return "https://www.notion.so/abc", true
}
func (fakeWorkspace) SyncStatus(ctx context.Context, p *projdomain.Project)               {}
func (fakeWorkspace) SyncFields(ctx context.Context, p *projdomain.Project, n, d *string) {}
func (fakeWorkspace) Archive(ctx context.Context, p *projdomain.Project)                  {}

type fakeLLM struct {
	err error
}

func (f *fakeLLM) Generate(ctx context.Context, promptTemplate, draft string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "generated text", nil
}

type fakeMoodboard struct{}

func (fakeMoodboard) Generate(ctx context.Context, description string) ([]string, error) {
	return []string{"https://img.example/1.jpg"}, nil
}

type fakePDF struct {
	err error
}

func (f *fakePDF) Render(name, description string, imagePaths []string, htmlBody string, cssBody *string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF"), nil
}

type fixture struct {
	dispatcher *Dispatcher
	sender     *fakeSender
	projects   *fakeProjects
	assets     *fakeAssets
	templates  *fakeTemplates
	llm        *fakeLLM
	pdf        *fakePDF
	states     wizard.Store
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		sender:    &fakeSender{},
		projects:  &fakeProjects{byID: map[int64]*projdomain.Project{}, byStatus: map[projdomain.Status][]projdomain.Project{}},
		assets:    &fakeAssets{},
		templates: &fakeTemplates{byID: map[int64]*tpldomain.PdfTemplate{}},
		llm:       &fakeLLM{},
		pdf:       &fakePDF{},
		states:    wizard.NewMemoryStore(),
	}
	f.dispatcher = NewDispatcher(Deps{
		Sender:     f.sender,
		Projects:   f.projects,
		Assets:     f.assets,
		Templates:  f.templates,
		States:     f.states,
		Workspace:  fakeWorkspace{},
		LLM:        f.llm,
		Moodboard:  fakeMoodboard{},
		PDF:        f.pdf,
		AdminID:    adminID,
		TempDir:    t.TempDir(),
		GenTimeout: 5 * time.Second,
	})
	return f
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func commandUpdate(userID int64, command string) tgbotapi.Update {
	u := textUpdate(userID, command)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return u
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: userID},
		},
		Data: data,
	}}
}

// --- tests ---

func TestAccessFilter_DropsForeignUpdatesWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dispatcher.HandleUpdate(ctx, textUpdate(555, "hello"))
	f.dispatcher.HandleUpdate(ctx, commandUpdate(555, "/start"))
	f.dispatcher.HandleUpdate(ctx, callbackUpdate(555, "delete_project_1"))
	f.dispatcher.HandleUpdate(ctx, tgbotapi.Update{})

	assert.Empty(t, f.sender.calls)
	assert.Zero(t, f.projects.calls)

	st, err := f.states.Get(ctx, 555)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestStartCommand_SendsWelcome(t *testing.T) {
	f := newFixture(t)

	f.dispatcher.HandleUpdate(context.Background(), commandUpdate(adminID, "/start"))

	require.Len(t, f.sender.calls, 1)
	assert.Equal(t, "send", f.sender.calls[0].op)
	assert.Contains(t, f.sender.calls[0].text, "design sidekick")
}

func TestAddIdeaWizard_NameThenDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "add_project_idea"))

	st, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, wizard.StepIdeaName, st.Step)

	f.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "Desk lamp"))
	f.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "A lamp with a modular arm"))

	st, err = f.states.Get(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, wizard.StepIdeaPhoto, st.Step)
	assert.Equal(t, "Desk lamp", st.Get("name"))
	assert.Equal(t, "A lamp with a modular arm", st.Get("description"))
}

func TestFinishAddIdea_PersistsAndClearsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st := wizard.NewState(wizard.StepIdeaMoodboard)
	st.Set("name", "Desk lamp")
	st.Set("description", "A lamp")
	st.Set("photo_file_id", "file-123")
	require.NoError(t, f.states.Set(ctx, adminID, st))

	f.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "moodboard_no"))

	assert.Equal(t, []string{"Desk lamp"}, f.projects.created)
	require.Len(t, f.assets.added, 1)
	assert.Equal(t, projdomain.AssetImageReference, f.assets.added[0].AssetType)
	assert.Equal(t, "file-123", f.assets.added[0].FileID)

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateUpload_WrongExtensionKeepsStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st := wizard.NewState(wizard.StepTemplateHTML)
	st.Set("name", "clean")
	require.NoError(t, f.states.Set(ctx, adminID, st))

	u := textUpdate(adminID, "")
	u.Message.Document = &tgbotapi.Document{FileID: "doc-1", FileName: "layout.pdf"}
	f.dispatcher.HandleUpdate(ctx, u)

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wizard.StepTemplateHTML, got.Step)

	// The file is never downloaded.
	for _, c := range f.sender.calls {
		assert.NotEqual(t, "read_file", c.op)
	}
}

func TestTemplateUpload_HTMLAdvancesToCSS(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st := wizard.NewState(wizard.StepTemplateHTML)
	st.Set("name", "clean")
	require.NoError(t, f.states.Set(ctx, adminID, st))

	u := textUpdate(adminID, "")
	u.Message.Document = &tgbotapi.Document{FileID: "doc-1", FileName: "Layout.HTML"}
	f.dispatcher.HandleUpdate(ctx, u)

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wizard.StepTemplateCSS, got.Step)
	assert.Equal(t, "<html></html>", got.Get("html"))
}

func TestGeneration_NoTemplatesLeavesChoiceScreen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.states.Set(ctx, adminID, wizard.NewState(wizard.StepGenProject)))

	f.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "gen_project_1"))

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wizard.StepGenProject, got.Step)

	// The press is answered with an alert, nothing is edited.
	require.NotEmpty(t, f.sender.calls)
	assert.Equal(t, "answer", f.sender.calls[0].op)
	assert.Contains(t, f.sender.calls[0].text, "templates")
}

func TestGeneration_FailureCleansTempFilesAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desc := "archived project"
	f.projects.byID[1] = &projdomain.Project{ID: 1, Name: "Lamp", Description: &desc, Status: projdomain.StatusArchived}
	f.templates.byID[2] = &tpldomain.PdfTemplate{ID: 2, Name: "clean", HTMLBody: "<html></html>"}
	f.llm.err = errors.New("model overloaded")

	tempFile := filepath.Join(t.TempDir(), "render.jpg")
	require.NoError(t, os.WriteFile(tempFile, []byte("img"), 0o644))

	st := wizard.NewState(wizard.StepGenDraft)
	st.SetInt64("project_id", 1)
	st.SetInt64("template_id", 2)
	st.Images = []string{tempFile}
	require.NoError(t, f.states.Set(ctx, adminID, st))

	f.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "built from oak and steel"))

	_, err := os.Stat(tempFile)
	assert.True(t, os.IsNotExist(err), "temp image should be removed")

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// No document went out.
	for _, c := range f.sender.calls {
		assert.NotEqual(t, "document", c.op)
	}
}

func TestGeneration_SuccessSendsPDFAndSocialText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desc := "archived project"
	f.projects.byID[1] = &projdomain.Project{ID: 1, Name: "Desk lamp", Description: &desc, Status: projdomain.StatusArchived}
	f.templates.byID[2] = &tpldomain.PdfTemplate{ID: 2, Name: "clean", HTMLBody: "<html></html>"}

	st := wizard.NewState(wizard.StepGenDraft)
	st.SetInt64("project_id", 1)
	st.SetInt64("template_id", 2)
	require.NoError(t, f.states.Set(ctx, adminID, st))

	f.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "built from oak and steel"))

	assert.Contains(t, f.sender.ops(), "document")

	var types []projdomain.AssetType
	for _, a := range f.assets.added {
		types = append(types, a.AssetType)
	}
	assert.Contains(t, types, projdomain.AssetGeneratedPDF)
	assert.Contains(t, types, projdomain.AssetSocialText)

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGeneration_MediaGroupPhotosAllTrackedInState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A media group arrives as separate, near-simultaneous photo updates.
	f.sender.downloadDelay = 30 * time.Millisecond

	st := wizard.NewState(wizard.StepGenImages)
	st.SetInt64("project_id", 1)
	st.SetInt64("template_id", 2)
	require.NoError(t, f.states.Set(ctx, adminID, st))

	photoUpdate := func(fileID string) tgbotapi.Update {
		u := textUpdate(adminID, "")
		u.Message.Photo = []tgbotapi.PhotoSize{{FileID: fileID}}
		return u
	}

	var wg sync.WaitGroup
	for _, fileID := range []string{"render-1", "render-2"} {
		wg.Add(1)
		go func(fileID string) {
			defer wg.Done()
			f.dispatcher.HandleUpdate(ctx, photoUpdate(fileID))
		}(fileID)
	}
	wg.Wait()

	assert.Equal(t, 1, f.sender.maxParallel, "updates for one chat are handled one at a time")

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Images, 2, "every downloaded render is tracked for cleanup")
	for _, path := range got.Images {
		_, err := os.Stat(path)
		assert.NoError(t, err, "tracked file exists on disk")
	}
}

func TestActivation_RepositoryErrorKeepsReminderStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.projects.activateErr = errors.New("connection reset")

	st := wizard.NewState(wizard.StepActivateReminder)
	st.SetInt64("project_id", 1)
	require.NoError(t, f.states.Set(ctx, adminID, st))

	f.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "remind_7"))

	require.NotEmpty(t, f.sender.calls)
	assert.Equal(t, "answer", f.sender.calls[0].op)
	assert.Contains(t, f.sender.calls[0].text, "try again")

	got, err := f.states.Get(ctx, adminID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wizard.StepActivateReminder, got.Step)
}

func TestStateGatedCallback_IgnoredOutsideItsStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// remind_7 without an activation in flight must not touch any project.
	f.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "remind_7"))

	assert.Zero(t, f.projects.calls)
	require.Len(t, f.sender.calls, 1)
	assert.Equal(t, "answer", f.sender.calls[0].op)
}
