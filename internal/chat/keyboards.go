package chat

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	projdomain "github.com/design-sidekick/sidekick-bot/internal/projects/domain"
	tpldomain "github.com/design-sidekick/sidekick-bot/internal/templates/domain"
)

func btn(text string, action Action, id int64) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, CallbackData(action, id))
}

func markup(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// MainMenuKeyboard is the top-level menu.
func MainMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(
		tgbotapi.NewInlineKeyboardRow(btn("🗂 Project Manager", ActionProjectManager, 0)),
		tgbotapi.NewInlineKeyboardRow(btn("✨ Automations", ActionAutomations, 0)),
	)
}

// ProjectManagerKeyboard lists the project-manager entry points.
func ProjectManagerKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(
		tgbotapi.NewInlineKeyboardRow(btn("📥 Add an idea", ActionAddIdea, 0)),
		tgbotapi.NewInlineKeyboardRow(btn("💡 Idea list", ActionListIdeas, 0)),
		tgbotapi.NewInlineKeyboardRow(
			btn("⚡️ Active projects", ActionListActive, 0),
			btn("🗄 Archive", ActionListArchived, 0),
		),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionMainMenu, 0)),
	)
}

// ProjectCardKeyboard builds the status-dependent action row for a project
// card.
func ProjectCardKeyboard(projectID int64, status projdomain.Status, notionURL string) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	switch status {
	case projdomain.StatusIdea:
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(btn("🚀 Activate", ActionActivateProject, projectID)),
			tgbotapi.NewInlineKeyboardRow(btn("🗑 Delete", ActionDeleteProject, projectID)),
		)
	case projdomain.StatusActive:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("✅ Complete", ActionCompleteProject, projectID),
			btn("❌ Cancel", ActionCancelProject, projectID),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("✏️ Edit", ActionEditProject, projectID)))

	if notionURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📄 Open in Notion", notionURL),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionProjectManager, 0)))
	return markup(rows...)
}

// ReminderKeyboard offers the reminder interval choices.
func ReminderKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(
		tgbotapi.NewInlineKeyboardRow(
			btn("Once a day", ActionRemind, 1),
			btn("Once a week", ActionRemind, 7),
		),
		tgbotapi.NewInlineKeyboardRow(
			btn("Every 2 weeks", ActionRemind, 14),
			btn("Once a month", ActionRemind, 30),
		),
		tgbotapi.NewInlineKeyboardRow(btn("No reminders", ActionRemind, 0)),
	)
}

// MoodboardChoiceKeyboard asks whether to generate a mood board.
func MoodboardChoiceKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(tgbotapi.NewInlineKeyboardRow(
		btn("Yes, build a mood board ✨", ActionMoodboardYes, 0),
		btn("Skip ➡️", ActionMoodboardNo, 0),
	))
}

// SkipPhotoKeyboard lets the user skip the reference-photo step.
func SkipPhotoKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(tgbotapi.NewInlineKeyboardRow(btn("Skip this step ➡️", ActionSkipPhoto, 0)))
}

// EditProjectKeyboard offers the two edit branches.
func EditProjectKeyboard(projectID int64) *tgbotapi.InlineKeyboardMarkup {
	return markup(
		tgbotapi.NewInlineKeyboardRow(
			btn("✏️ Name", ActionEditName, projectID),
			btn("📝 Description", ActionEditDesc, projectID),
		),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionShowProject, projectID)),
	)
}

// AutomationsMenuKeyboard is the automations sub-menu.
func AutomationsMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(
		tgbotapi.NewInlineKeyboardRow(btn("📄 Content generator", ActionGenerateContent, 0)),
		tgbotapi.NewInlineKeyboardRow(btn("🎨 Manage templates", ActionManageTemplates, 0)),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionMainMenu, 0)),
	)
}

// TemplateManagerKeyboard is the template-manager sub-menu.
func TemplateManagerKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(
		tgbotapi.NewInlineKeyboardRow(btn("➕ Add a template", ActionAddTemplate, 0)),
		tgbotapi.NewInlineKeyboardRow(btn("📋 Template list", ActionListTemplates, 0)),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionAutomations, 0)),
	)
}

// SkipCSSKeyboard lets the user skip the CSS upload.
func SkipCSSKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return markup(tgbotapi.NewInlineKeyboardRow(btn("Skip (CSS inside HTML)", ActionSkipCSS, 0)))
}

// ProjectChoiceKeyboard lists archived projects for content generation.
func ProjectChoiceKeyboard(projects []projdomain.Project) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range projects {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("✅ "+p.Name, ActionGenProject, p.ID)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("✍️ Enter manually", ActionGenManual, 0)),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionAutomations, 0)),
	)
	return markup(rows...)
}

// TemplateChoiceKeyboard lists PDF templates for content generation.
func TemplateChoiceKeyboard(templates []tpldomain.PdfTemplate) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range templates {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🎨 "+t.Name, ActionGenTemplate, t.ID)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionAutomations, 0)))
	return markup(rows...)
}

// ProjectListKeyboard lists projects of one status with a back button.
func ProjectListKeyboard(projects []projdomain.Project) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range projects {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(p.Name, ActionShowProject, p.ID)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", ActionProjectManager, 0)))
	return markup(rows...)
}

// DigestKeyboard is attached to the weekly digest message. withIdeas selects
// between the "look at your list" and "add something new" variants.
func DigestKeyboard(withIdeas bool) *tgbotapi.InlineKeyboardMarkup {
	first := btn("💡 Add an idea!", ActionAddIdea, 0)
	if withIdeas {
		first = btn("👀 See the idea list", ActionListIdeas, 0)
	}
	return markup(
		tgbotapi.NewInlineKeyboardRow(first),
		tgbotapi.NewInlineKeyboardRow(btn("Remind me tomorrow", ActionRemindTomorrow, 0)),
	)
}
