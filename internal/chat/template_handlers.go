package chat

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	tpldomain "github.com/design-sidekick/sidekick-bot/internal/templates/domain"
	"github.com/design-sidekick/sidekick-bot/internal/wizard"
)

func (d *Dispatcher) startAddTemplate(ctx context.Context, chatID int64, messageID int) {
	d.setState(ctx, chatID, wizard.NewState(wizard.StepTemplateName))
	d.show(ctx, chatID, messageID, "🎨 Enter a unique name for the new template.", nil)
}

func (d *Dispatcher) templateName(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		d.reply(ctx, chatID, "The template name has to be text. Try again?", nil)
		return
	}

	st.Set("name", name)
	st.Step = wizard.StepTemplateHTML
	d.setState(ctx, chatID, st)
	d.reply(ctx, chatID, "Now send me the HTML layout as a <code>.html</code> file.", nil)
}

// hasExtension checks a document's file name case-insensitively.
func hasExtension(doc *tgbotapi.Document, exts ...string) bool {
	if doc == nil {
		return false
	}
	name := strings.ToLower(doc.FileName)
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) templateHTML(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	logger := NewLogger(chatID)

	// A wrong upload re-prompts without advancing the wizard.
	if !hasExtension(msg.Document, ".html", ".htm") {
		d.reply(ctx, chatID, "That's not an HTML file. Send a <code>.html</code> or <code>.htm</code> file, please.", nil)
		return
	}

	body, err := d.deps.Sender.ReadFileText(ctx, msg.Document.FileID)
	if err != nil {
		logger.LogError("download_template_html", err)
		d.reply(ctx, chatID, "😕 Couldn't download the file, send it again?", nil)
		return
	}

	st.Set("html", body)
	st.Step = wizard.StepTemplateCSS
	d.setState(ctx, chatID, st)
	d.reply(ctx, chatID, "Got the layout. Now send the CSS as a <code>.css</code> file, or skip if the styles live inside the HTML.", SkipCSSKeyboard())
}

func (d *Dispatcher) templateCSS(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	logger := NewLogger(chatID)

	if !hasExtension(msg.Document, ".css") {
		d.reply(ctx, chatID, "That's not a CSS file. Send a <code>.css</code> file, or use the skip button.", SkipCSSKeyboard())
		return
	}

	body, err := d.deps.Sender.ReadFileText(ctx, msg.Document.FileID)
	if err != nil {
		logger.LogError("download_template_css", err)
		d.reply(ctx, chatID, "😕 Couldn't download the file, send it again?", SkipCSSKeyboard())
		return
	}

	st.Set("css", body)
	d.saveTemplate(ctx, chatID, st)
}

func (d *Dispatcher) saveTemplate(ctx context.Context, chatID int64, st *wizard.State) {
	logger := NewLogger(chatID)

	name := st.Get("name")
	var cssPtr *string
	if css := st.Get("css"); css != "" {
		cssPtr = &css
	}

	_, err := d.deps.Templates.Add(ctx, name, st.Get("html"), cssPtr)
	switch {
	case errors.Is(err, tpldomain.ErrDuplicateName):
		d.reply(ctx, chatID, fmt.Sprintf("❌ The name <b>%s</b> is already taken. Pick another one and start over.", html.EscapeString(name)), TemplateManagerKeyboard())
	case err != nil:
		logger.LogError("save_template", err)
		d.reply(ctx, chatID, "😕 Couldn't save the template, try again later.", TemplateManagerKeyboard())
	default:
		d.reply(ctx, chatID, fmt.Sprintf("✅ Template <b>%s</b> saved!", html.EscapeString(name)), TemplateManagerKeyboard())
	}
	d.clearState(ctx, chatID)
}
