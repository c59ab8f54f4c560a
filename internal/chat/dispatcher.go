package chat

import (
	"context"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/design-sidekick/sidekick-bot/internal/wizard"
)

// Dispatcher routes inbound updates through the access filter to menu and
// wizard handlers. Updates for the same chat are handled strictly one at a
// time: a media group arrives as near-simultaneous updates, and the wizard
// state is a read-modify-write cycle per update.
type Dispatcher struct {
	deps  Deps
	locks sync.Map // chat ID -> *sync.Mutex
}

// NewDispatcher wires a dispatcher from its dependencies.
func NewDispatcher(deps Deps) *Dispatcher {
	if deps.TempDir == "" {
		deps.TempDir = "temp_images"
	}
	if deps.GenTimeout == 0 {
		deps.GenTimeout = 3 * time.Minute
	}
	return &Dispatcher{deps: deps}
}

// HandleUpdate processes one inbound update end to end.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	user := update.SentFrom()
	if user == nil || user.ID != d.deps.AdminID {
		// Silent toward the sender; the audit line is the only trace.
		var id int64
		if user != nil {
			id = user.ID
		}
		log.Printf("[warn] operation=access_filter dropped update from user_id=%d", id)
		return
	}

	if chat := update.FromChat(); chat != nil {
		mu, _ := d.locks.LoadOrStore(chat.ID, &sync.Mutex{})
		mu.(*sync.Mutex).Lock()
		defer mu.(*sync.Mutex).Unlock()
	}

	switch {
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	}
}

func (d *Dispatcher) state(ctx context.Context, chatID int64) *wizard.State {
	st, err := d.deps.States.Get(ctx, chatID)
	if err != nil {
		NewLogger(chatID).LogError("load_state", err)
		return nil
	}
	return st
}

func (d *Dispatcher) setState(ctx context.Context, chatID int64, st *wizard.State) {
	if err := d.deps.States.Set(ctx, chatID, st); err != nil {
		NewLogger(chatID).LogError("save_state", err)
	}
}

func (d *Dispatcher) clearState(ctx context.Context, chatID int64) {
	if err := d.deps.States.Clear(ctx, chatID); err != nil {
		NewLogger(chatID).LogError("clear_state", err)
	}
}

func (d *Dispatcher) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := d.deps.Sender.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		log.Printf("[warn] operation=answer_callback error=%v", err)
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	logger := NewLogger(chatID)

	cmd, err := ParseCallback(cb.Data)
	if err != nil {
		logger.LogError("parse_callback", err)
		d.answer(ctx, cb.ID, "", false)
		return
	}

	st := d.state(ctx, chatID)
	step := wizard.StepNone
	if st != nil {
		step = st.Step
	}

	switch cmd.Action {
	// Stateless menus and project management.
	case ActionMainMenu:
		d.answer(ctx, cb.ID, "", false)
		d.showMainMenu(ctx, chatID, cb.Message.MessageID)
	case ActionProjectManager:
		d.answer(ctx, cb.ID, "", false)
		d.showProjectManager(ctx, chatID, cb.Message.MessageID)
	case ActionAutomations:
		d.answer(ctx, cb.ID, "", false)
		d.showAutomations(ctx, chatID, cb.Message.MessageID)
	case ActionManageTemplates:
		d.answer(ctx, cb.ID, "", false)
		d.showTemplateManager(ctx, chatID, cb.Message.MessageID)
	case ActionListTemplates:
		d.answer(ctx, cb.ID, "", false)
		d.listTemplates(ctx, chatID, cb.Message.MessageID)
	case ActionListIdeas, ActionListActive, ActionListArchived:
		d.answer(ctx, cb.ID, "", false)
		d.listProjects(ctx, chatID, cb.Message.MessageID, cmd.Action)
	case ActionShowProject:
		d.answer(ctx, cb.ID, "", false)
		d.showProjectCard(ctx, chatID, cb.Message.MessageID, cmd.ID)
	case ActionCompleteProject, ActionCancelProject:
		d.archiveProject(ctx, cb, cmd)
	case ActionDeleteProject:
		d.deleteProject(ctx, cb, cmd.ID)
	case ActionEditProject:
		d.answer(ctx, cb.ID, "", false)
		d.startEdit(ctx, chatID, cb.Message.MessageID, cmd.ID)
	case ActionEditName:
		d.answer(ctx, cb.ID, "", false)
		d.startEditField(ctx, chatID, cb.Message.MessageID, cmd.ID, wizard.StepEditName)
	case ActionEditDesc:
		d.answer(ctx, cb.ID, "", false)
		d.startEditField(ctx, chatID, cb.Message.MessageID, cmd.ID, wizard.StepEditDescription)

	// Wizard entry points. Starting a wizard overwrites any previous state.
	case ActionAddIdea:
		d.answer(ctx, cb.ID, "", false)
		d.startAddIdea(ctx, chatID, cb.Message.MessageID)
	case ActionActivateProject:
		d.answer(ctx, cb.ID, "", false)
		d.startActivation(ctx, chatID, cb.Message.MessageID, cmd.ID)
	case ActionAddTemplate:
		d.answer(ctx, cb.ID, "", false)
		d.startAddTemplate(ctx, chatID, cb.Message.MessageID)
	case ActionGenerateContent:
		d.answer(ctx, cb.ID, "", false)
		d.startGeneration(ctx, chatID, cb.Message.MessageID)

	// State-gated wizard transitions. A press arriving outside its step is
	// acknowledged and dropped without touching state.
	case ActionSkipPhoto:
		if step != wizard.StepIdeaPhoto {
			d.answer(ctx, cb.ID, "", false)
			return
		}
		d.skipIdeaPhoto(ctx, cb, st)
	case ActionMoodboardYes, ActionMoodboardNo:
		if step != wizard.StepIdeaMoodboard {
			d.answer(ctx, cb.ID, "", false)
			return
		}
		d.finishAddIdea(ctx, cb, st, cmd.Action == ActionMoodboardYes)
	case ActionRemind:
		if step != wizard.StepActivateReminder {
			d.answer(ctx, cb.ID, "", false)
			return
		}
		d.finishActivation(ctx, cb, st, int(cmd.ID))
	case ActionSkipCSS:
		if step != wizard.StepTemplateCSS {
			d.answer(ctx, cb.ID, "", false)
			return
		}
		d.answer(ctx, cb.ID, "", false)
		d.saveTemplate(ctx, chatID, st)
	case ActionGenProject:
		if step != wizard.StepGenProject {
			d.answer(ctx, cb.ID, "", false)
			return
		}
		d.chooseGenProject(ctx, cb, st, cmd.ID)
	case ActionGenTemplate:
		if step != wizard.StepGenTemplate {
			d.answer(ctx, cb.ID, "", false)
			return
		}
		d.chooseGenTemplate(ctx, cb, st, cmd.ID)

	case ActionGenManual:
		d.answer(ctx, cb.ID, "Manual entry is not available yet.", true)
	case ActionRemindTomorrow:
		d.answer(ctx, cb.ID, "Got it, I'll check in with you tomorrow 👌", false)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		if msg.Command() == "start" {
			d.sendWelcome(ctx, chatID)
		}
		return
	}

	st := d.state(ctx, chatID)
	if st == nil {
		// Free text outside a wizard has no meaning.
		return
	}

	switch st.Step {
	case wizard.StepIdeaName:
		d.ideaName(ctx, msg, st)
	case wizard.StepIdeaDescription:
		d.ideaDescription(ctx, msg, st)
	case wizard.StepIdeaPhoto:
		d.ideaPhoto(ctx, msg, st)
	case wizard.StepEditName, wizard.StepEditDescription:
		d.editField(ctx, msg, st)
	case wizard.StepTemplateName:
		d.templateName(ctx, msg, st)
	case wizard.StepTemplateHTML:
		d.templateHTML(ctx, msg, st)
	case wizard.StepTemplateCSS:
		d.templateCSS(ctx, msg, st)
	case wizard.StepGenImages:
		d.genImageOrDraft(ctx, msg, st)
	case wizard.StepGenDraft:
		d.genDraft(ctx, msg, st)
	}
}
