package chat

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = "👋 Hi! I'm your design sidekick.\n\n" +
	"I keep track of your project ideas, remind you about the active ones and " +
	"turn finished work into presentation material. Pick a section to get started."

func (d *Dispatcher) sendWelcome(ctx context.Context, chatID int64) {
	if err := d.deps.Sender.SendMessage(ctx, chatID, welcomeText, MainMenuKeyboard()); err != nil {
		NewLogger(chatID).LogError("send_welcome", err)
	}
}

// show replaces the current menu message in place, falling back to a fresh
// message when the original can no longer be edited.
func (d *Dispatcher) show(ctx context.Context, chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if messageID != 0 {
		if err := d.deps.Sender.EditMessage(ctx, chatID, messageID, text, kb); err == nil {
			return
		}
	}
	if err := d.deps.Sender.SendMessage(ctx, chatID, text, kb); err != nil {
		NewLogger(chatID).LogError("send_menu", err)
	}
}

func (d *Dispatcher) showMainMenu(ctx context.Context, chatID int64, messageID int) {
	d.show(ctx, chatID, messageID, "What are we working on today?", MainMenuKeyboard())
}

func (d *Dispatcher) showProjectManager(ctx context.Context, chatID int64, messageID int) {
	d.show(ctx, chatID, messageID, "🗂 <b>Project Manager</b>\n\nYour ideas and projects live here.", ProjectManagerKeyboard())
}

func (d *Dispatcher) showAutomations(ctx context.Context, chatID int64, messageID int) {
	d.show(ctx, chatID, messageID, "✨ <b>Automations</b>\n\nGenerate presentation material from finished projects.", AutomationsMenuKeyboard())
}

func (d *Dispatcher) showTemplateManager(ctx context.Context, chatID int64, messageID int) {
	d.show(ctx, chatID, messageID, "🎨 <b>Template Manager</b>\n\nPDF card layouts used by the content generator.", TemplateManagerKeyboard())
}

func (d *Dispatcher) listTemplates(ctx context.Context, chatID int64, messageID int) {
	logger := NewLogger(chatID)

	templates, err := d.deps.Templates.ListAll(ctx)
	if err != nil {
		logger.LogError("list_templates", err)
		d.show(ctx, chatID, messageID, "😕 Couldn't load the template list, try again later.", TemplateManagerKeyboard())
		return
	}

	if len(templates) == 0 {
		d.show(ctx, chatID, messageID, "You don't have any templates yet. Add one first!", TemplateManagerKeyboard())
		return
	}

	var b strings.Builder
	b.WriteString("📋 <b>Your templates:</b>\n\n")
	for _, t := range templates {
		fmt.Fprintf(&b, "▪️ <code>%s</code>\n", t.Name)
	}
	d.show(ctx, chatID, messageID, b.String(), TemplateManagerKeyboard())
}
