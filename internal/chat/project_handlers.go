package chat

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	projdomain "github.com/design-sidekick/sidekick-bot/internal/projects/domain"
	"github.com/design-sidekick/sidekick-bot/internal/wizard"
)

func statusLabel(status projdomain.Status) string {
	switch status {
	case projdomain.StatusIdea:
		return "💡 Idea"
	case projdomain.StatusActive:
		return "⚡️ Active"
	case projdomain.StatusArchived:
		return "🗄 Archived"
	}
	return string(status)
}

// --- Add Idea wizard ---

func (d *Dispatcher) startAddIdea(ctx context.Context, chatID int64, messageID int) {
	d.setState(ctx, chatID, wizard.NewState(wizard.StepIdeaName))
	d.show(ctx, chatID, messageID, "💡 What's the idea called? Send me a short name.", nil)
}

func (d *Dispatcher) ideaName(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		d.reply(ctx, chatID, "I need a text name for the idea. Try again?", nil)
		return
	}

	st.Set("name", name)
	st.Step = wizard.StepIdeaDescription
	d.setState(ctx, chatID, st)
	d.reply(ctx, chatID, "Nice. Now describe the idea in a couple of sentences.", nil)
}

func (d *Dispatcher) ideaDescription(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	desc := strings.TrimSpace(msg.Text)
	if desc == "" {
		d.reply(ctx, chatID, "Send the description as text, please.", nil)
		return
	}

	st.Set("description", desc)
	st.Step = wizard.StepIdeaPhoto
	d.setState(ctx, chatID, st)
	d.reply(ctx, chatID, "Got it. Send a reference photo if you have one.", SkipPhotoKeyboard())
}

func (d *Dispatcher) ideaPhoto(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	if len(msg.Photo) == 0 {
		d.reply(ctx, chatID, "That doesn't look like a photo. Send one, or skip the step.", SkipPhotoKeyboard())
		return
	}

	// Largest size is last.
	st.Set("photo_file_id", msg.Photo[len(msg.Photo)-1].FileID)
	st.Step = wizard.StepIdeaMoodboard
	d.setState(ctx, chatID, st)
	d.reply(ctx, chatID, "📸 Reference saved. Want me to build a mood board for this idea?", MoodboardChoiceKeyboard())
}

func (d *Dispatcher) skipIdeaPhoto(ctx context.Context, cb *tgbotapi.CallbackQuery, st *wizard.State) {
	chatID := cb.Message.Chat.ID
	d.answer(ctx, cb.ID, "", false)

	st.Step = wizard.StepIdeaMoodboard
	d.setState(ctx, chatID, st)
	d.show(ctx, chatID, cb.Message.MessageID, "Want me to build a mood board for this idea?", MoodboardChoiceKeyboard())
}

func (d *Dispatcher) finishAddIdea(ctx context.Context, cb *tgbotapi.CallbackQuery, st *wizard.State, withMoodboard bool) {
	chatID := cb.Message.Chat.ID
	logger := NewLogger(chatID)
	d.answer(ctx, cb.ID, "", false)

	name := st.Get("name")
	desc := st.Get("description")

	var moodboardURLs []string
	if withMoodboard {
		d.show(ctx, chatID, cb.Message.MessageID, "🎨 Building a mood board, this can take a minute...", nil)

		urls, err := d.deps.Moodboard.Generate(ctx, desc)
		if err != nil {
			logger.LogError("moodboard_generate", err)
			d.reply(ctx, chatID, "😕 Couldn't build a mood board this time, saving the idea without one.", nil)
		} else {
			moodboardURLs = urls
			if err := d.deps.Sender.SendMediaGroupURLs(ctx, chatID, urls, "Here are a few visual directions ✨"); err != nil {
				logger.LogError("moodboard_send", err)
			}
		}
	}

	var descPtr *string
	if desc != "" {
		descPtr = &desc
	}
	project, err := d.deps.Projects.CreateIdea(ctx, name, descPtr)
	if err != nil {
		logger.LogError("create_idea", err)
		d.reply(ctx, chatID, "😕 Something went wrong while saving the idea. Try again later.", ProjectManagerKeyboard())
		d.clearState(ctx, chatID)
		return
	}

	if fileID := st.Get("photo_file_id"); fileID != "" {
		if _, err := d.deps.Assets.Add(ctx, project.ID, projdomain.AssetImageReference, fileID, nil); err != nil {
			logger.LogError("save_reference_asset", err)
		}
	}
	for _, url := range moodboardURLs {
		if _, err := d.deps.Assets.Add(ctx, project.ID, projdomain.AssetMoodboardImage, url, nil); err != nil {
			logger.LogError("save_moodboard_asset", err)
		}
	}

	text := fmt.Sprintf("✅ Idea <b>%s</b> saved!", html.EscapeString(name))
	if pageURL, ok := d.deps.Workspace.SyncCreate(ctx, project); ok {
		text += "\n\n📄 Notion page: " + pageURL
	} else {
		text += "\n\n⚠️ Couldn't sync it to Notion just yet, I'll retry in the background."
	}

	d.reply(ctx, chatID, text, ProjectManagerKeyboard())
	d.clearState(ctx, chatID)
}

// --- Lists and the project card ---

func (d *Dispatcher) listProjects(ctx context.Context, chatID int64, messageID int, action Action) {
	logger := NewLogger(chatID)

	var status projdomain.Status
	var title, empty string
	switch action {
	case ActionListIdeas:
		status, title = projdomain.StatusIdea, "💡 <b>Your ideas:</b>"
		empty = "The idea list is empty. Add something!"
	case ActionListActive:
		status, title = projdomain.StatusActive, "⚡️ <b>Active projects:</b>"
		empty = "No active projects right now."
	case ActionListArchived:
		status, title = projdomain.StatusArchived, "🗄 <b>Archive:</b>"
		empty = "The archive is empty so far."
	}

	projects, err := d.deps.Projects.ListByStatus(ctx, status)
	if err != nil {
		logger.LogError("list_projects", err)
		d.show(ctx, chatID, messageID, "😕 Couldn't load the list, try again later.", ProjectManagerKeyboard())
		return
	}

	if len(projects) == 0 {
		d.show(ctx, chatID, messageID, empty, ProjectManagerKeyboard())
		return
	}
	d.show(ctx, chatID, messageID, title, ProjectListKeyboard(projects))
}

// ProjectCardText renders the card body shown for a single project.
func ProjectCardText(p *projdomain.Project) string {
	return fmt.Sprintf("🗂 <b>%s</b>\n\nStatus: %s\n\n<b>Description:</b>\n<i>%s</i>",
		html.EscapeString(p.Name),
		statusLabel(p.Status),
		html.EscapeString(p.DescriptionOrEmpty()))
}

func (d *Dispatcher) showProjectCard(ctx context.Context, chatID int64, messageID int, projectID int64) {
	logger := NewLogger(chatID)

	p, err := d.deps.Projects.GetByID(ctx, projectID)
	if err != nil {
		logger.LogError("load_project", err)
		d.show(ctx, chatID, messageID, "😕 Couldn't load the project, try again later.", ProjectManagerKeyboard())
		return
	}
	if p == nil {
		d.show(ctx, chatID, messageID, "This project no longer exists.", ProjectManagerKeyboard())
		return
	}

	var referenceFileID string
	assets, err := d.deps.Assets.ListByProject(ctx, projectID)
	if err != nil {
		logger.LogError("load_assets", err)
	} else {
		for _, a := range assets {
			if a.AssetType == projdomain.AssetImageReference {
				referenceFileID = a.FileID
			}
		}
	}

	text := ProjectCardText(p)
	kb := ProjectCardKeyboard(p.ID, p.Status, p.NotionURL())

	if referenceFileID == "" {
		d.show(ctx, chatID, messageID, text, kb)
		return
	}

	// A photo caption cannot be edited into a text message, so the old menu
	// message is dropped first.
	if messageID != 0 {
		if err := d.deps.Sender.DeleteMessage(ctx, chatID, messageID); err != nil {
			logger.LogError("delete_menu_message", err)
		}
	}
	if err := d.deps.Sender.SendPhoto(ctx, chatID, referenceFileID, text, kb); err != nil {
		logger.LogError("send_project_card", err)
		d.reply(ctx, chatID, text, kb)
	}
}

// --- Activation ---

func (d *Dispatcher) startActivation(ctx context.Context, chatID int64, messageID int, projectID int64) {
	st := wizard.NewState(wizard.StepActivateReminder)
	st.SetInt64("project_id", projectID)
	d.setState(ctx, chatID, st)
	d.show(ctx, chatID, messageID, "🚀 How often should I remind you about this project?", ReminderKeyboard())
}

func (d *Dispatcher) finishActivation(ctx context.Context, cb *tgbotapi.CallbackQuery, st *wizard.State, intervalDays int) {
	chatID := cb.Message.Chat.ID
	logger := NewLogger(chatID)
	projectID := st.GetInt64("project_id")

	p, err := d.deps.Projects.Activate(ctx, projectID, intervalDays)
	if err != nil {
		logger.LogError("activate_project", err)
		d.answer(ctx, cb.ID, "😕 Couldn't activate the project, try again later.", true)
		// State stays on the reminder step so the same button press can be
		// retried.
		return
	}
	if p == nil {
		d.answer(ctx, cb.ID, "This project no longer exists.", true)
		d.clearState(ctx, chatID)
		return
	}

	d.deps.Workspace.SyncStatus(ctx, p)
	d.answer(ctx, cb.ID, "", false)

	text := fmt.Sprintf("🚀 <b>%s</b> is now active!", html.EscapeString(p.Name))
	if intervalDays > 0 {
		text += fmt.Sprintf("\n\nI'll nudge you about it every %d day(s).", intervalDays)
	} else {
		text += "\n\nNo reminders for this one."
	}
	d.show(ctx, chatID, cb.Message.MessageID, text, ProjectManagerKeyboard())
	d.clearState(ctx, chatID)
}

// --- Editing ---

func (d *Dispatcher) startEdit(ctx context.Context, chatID int64, messageID int, projectID int64) {
	d.show(ctx, chatID, messageID, "✏️ What would you like to change?", EditProjectKeyboard(projectID))
}

func (d *Dispatcher) startEditField(ctx context.Context, chatID int64, messageID int, projectID int64, step wizard.Step) {
	st := wizard.NewState(step)
	st.SetInt64("project_id", projectID)
	d.setState(ctx, chatID, st)

	prompt := "Send the new name."
	if step == wizard.StepEditDescription {
		prompt = "Send the new description."
	}
	d.show(ctx, chatID, messageID, prompt, nil)
}

func (d *Dispatcher) editField(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	logger := NewLogger(chatID)

	value := strings.TrimSpace(msg.Text)
	if value == "" {
		d.reply(ctx, chatID, "I need plain text here. Try again?", nil)
		return
	}

	projectID := st.GetInt64("project_id")
	var name, desc *string
	if st.Step == wizard.StepEditName {
		name = &value
	} else {
		desc = &value
	}

	p, err := d.deps.Projects.UpdateFields(ctx, projectID, name, desc)
	if err != nil {
		logger.LogError("update_project", err)
		d.reply(ctx, chatID, "😕 Couldn't save the change, try again later.", ProjectManagerKeyboard())
		d.clearState(ctx, chatID)
		return
	}
	if p == nil {
		d.reply(ctx, chatID, "This project no longer exists.", ProjectManagerKeyboard())
		d.clearState(ctx, chatID)
		return
	}

	d.deps.Workspace.SyncFields(ctx, p, name, desc)
	d.clearState(ctx, chatID)
	d.reply(ctx, chatID, "✅ Saved.", nil)
	d.showProjectCard(ctx, chatID, 0, p.ID)
}

// --- Archiving and deletion ---

func (d *Dispatcher) archiveProject(ctx context.Context, cb *tgbotapi.CallbackQuery, cmd Command) {
	chatID := cb.Message.Chat.ID
	logger := NewLogger(chatID)

	p, err := d.deps.Projects.UpdateStatus(ctx, cmd.ID, projdomain.StatusArchived)
	if err != nil {
		logger.LogError("archive_project", err)
		d.answer(ctx, cb.ID, "😕 Couldn't update the project, try again later.", true)
		return
	}
	if p == nil {
		d.answer(ctx, cb.ID, "This project no longer exists.", true)
		return
	}

	d.deps.Workspace.SyncStatus(ctx, p)

	note := "✅ Project completed and moved to the archive."
	if cmd.Action == ActionCancelProject {
		note = "❌ Project cancelled and moved to the archive."
	}
	d.answer(ctx, cb.ID, note, true)
	d.showProjectManager(ctx, chatID, cb.Message.MessageID)
}

func (d *Dispatcher) deleteProject(ctx context.Context, cb *tgbotapi.CallbackQuery, projectID int64) {
	chatID := cb.Message.Chat.ID
	logger := NewLogger(chatID)

	p, err := d.deps.Projects.GetByID(ctx, projectID)
	if err != nil {
		logger.LogError("load_project", err)
		d.answer(ctx, cb.ID, "😕 Couldn't delete the idea, try again later.", true)
		return
	}
	if p != nil && p.NotionPageID != nil {
		d.deps.Workspace.Archive(ctx, p)
	}

	deleted, err := d.deps.Projects.Delete(ctx, projectID)
	if err != nil {
		logger.LogError("delete_project", err)
		d.answer(ctx, cb.ID, "😕 Couldn't delete the idea, try again later.", true)
		return
	}
	if !deleted {
		d.answer(ctx, cb.ID, "This idea no longer exists.", true)
		return
	}

	d.answer(ctx, cb.ID, "🗑 Idea deleted.", true)
	d.showProjectManager(ctx, chatID, cb.Message.MessageID)
}

// reply sends a plain outbound message, logging failures.
func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if err := d.deps.Sender.SendMessage(ctx, chatID, text, kb); err != nil {
		NewLogger(chatID).LogError("send_message", err)
	}
}
