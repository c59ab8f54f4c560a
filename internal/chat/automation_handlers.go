package chat

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/design-sidekick/sidekick-bot/internal/llm"
	projdomain "github.com/design-sidekick/sidekick-bot/internal/projects/domain"
	"github.com/design-sidekick/sidekick-bot/internal/wizard"
)

// maxGenImages caps the final renders accepted for one card.
const maxGenImages = 5

func (d *Dispatcher) startGeneration(ctx context.Context, chatID int64, messageID int) {
	logger := NewLogger(chatID)

	projects, err := d.deps.Projects.ListByStatus(ctx, projdomain.StatusArchived)
	if err != nil {
		logger.LogError("list_archived", err)
		d.show(ctx, chatID, messageID, "😕 Couldn't load the archive, try again later.", AutomationsMenuKeyboard())
		return
	}
	if len(projects) == 0 {
		d.show(ctx, chatID, messageID, "The archive is empty. Finish a project first, then come back for its presentation card.", AutomationsMenuKeyboard())
		return
	}

	d.setState(ctx, chatID, wizard.NewState(wizard.StepGenProject))
	d.show(ctx, chatID, messageID, "📄 Which finished project should I turn into a card?", ProjectChoiceKeyboard(projects))
}

func (d *Dispatcher) chooseGenProject(ctx context.Context, cb *tgbotapi.CallbackQuery, st *wizard.State, projectID int64) {
	chatID := cb.Message.Chat.ID
	logger := NewLogger(chatID)

	templates, err := d.deps.Templates.ListAll(ctx)
	if err != nil {
		logger.LogError("list_templates", err)
		d.answer(ctx, cb.ID, "😕 Couldn't load the templates, try again later.", true)
		return
	}
	// Without templates the wizard cannot continue; the choice screen stays
	// put so the press can be retried after adding one.
	if len(templates) == 0 {
		d.answer(ctx, cb.ID, "❌ You don't have any PDF templates yet. Add one under Manage templates first.", true)
		return
	}

	d.answer(ctx, cb.ID, "", false)
	st.SetInt64("project_id", projectID)
	st.Step = wizard.StepGenTemplate
	d.setState(ctx, chatID, st)
	d.show(ctx, chatID, cb.Message.MessageID, "Which template should I use?", TemplateChoiceKeyboard(templates))
}

func (d *Dispatcher) chooseGenTemplate(ctx context.Context, cb *tgbotapi.CallbackQuery, st *wizard.State, templateID int64) {
	chatID := cb.Message.Chat.ID
	d.answer(ctx, cb.ID, "", false)

	st.SetInt64("template_id", templateID)
	st.Step = wizard.StepGenImages
	d.setState(ctx, chatID, st)
	d.show(ctx, chatID, cb.Message.MessageID,
		fmt.Sprintf("Great! Now send me the final renders, up to %d photos. When you're done, send the implementation details as text.", maxGenImages), nil)
}

// genImageOrDraft accepts either another render or the draft text that closes
// the upload phase.
func (d *Dispatcher) genImageOrDraft(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	logger := NewLogger(chatID)

	if len(msg.Photo) > 0 {
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		dest := filepath.Join(d.deps.TempDir, uuid.NewString()+".jpg")
		if err := d.deps.Sender.DownloadFile(ctx, fileID, dest); err != nil {
			logger.LogError("download_render", err)
			d.reply(ctx, chatID, "😕 Couldn't download that photo, send it again?", nil)
			return
		}

		st.Images = append(st.Images, dest)
		if len(st.Images) >= maxGenImages {
			st.Step = wizard.StepGenDraft
			d.setState(ctx, chatID, st)
			d.reply(ctx, chatID, fmt.Sprintf("Photo %d/%d received, that's the limit. Now send the implementation details as text.", len(st.Images), maxGenImages), nil)
			return
		}
		d.setState(ctx, chatID, st)
		d.reply(ctx, chatID, fmt.Sprintf("Photo %d/%d received. Send more, or the implementation details text when you're done.", len(st.Images), maxGenImages), nil)
		return
	}

	d.genDraft(ctx, msg, st)
}

func (d *Dispatcher) genDraft(ctx context.Context, msg *tgbotapi.Message, st *wizard.State) {
	chatID := msg.Chat.ID
	draft := strings.TrimSpace(msg.Text)
	if draft == "" {
		d.reply(ctx, chatID, "I need the implementation details as text to finish the card.", nil)
		return
	}
	d.runGeneration(ctx, chatID, st, draft)
}

func (d *Dispatcher) runGeneration(ctx context.Context, chatID int64, st *wizard.State, draft string) {
	logger := NewLogger(chatID)

	// Temp files and the wizard state go away on every exit path.
	defer func() {
		for _, path := range st.Images {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.LogWarnf("cleanup_temp_image", "path=%s error=%v", path, err)
			}
		}
		d.clearState(ctx, chatID)
	}()

	d.reply(ctx, chatID, "⚙️ Got it! Generating the card, this can take a minute...", nil)

	project, err := d.deps.Projects.GetByID(ctx, st.GetInt64("project_id"))
	if err != nil || project == nil {
		logger.LogError("load_gen_project", err)
		d.reply(ctx, chatID, "😕 Couldn't load the project for generation. Start over from Automations.", AutomationsMenuKeyboard())
		return
	}
	tpl, err := d.deps.Templates.GetByID(ctx, st.GetInt64("template_id"))
	if err != nil || tpl == nil {
		logger.LogError("load_gen_template", err)
		d.reply(ctx, chatID, "😕 Couldn't load the template for generation. Start over from Automations.", AutomationsMenuKeyboard())
		return
	}

	fullDraft := fmt.Sprintf("Initial Idea: %s\n\nImplementation Details: %s", project.DescriptionOrEmpty(), draft)

	gctx, cancel := context.WithTimeout(ctx, d.deps.GenTimeout)
	defer cancel()

	var cardText, socialText string
	g, gc := errgroup.WithContext(gctx)
	g.Go(func() error {
		var err error
		cardText, err = d.deps.LLM.Generate(gc, llm.CardPrompt, fullDraft)
		return err
	})
	g.Go(func() error {
		var err error
		socialText, err = d.deps.LLM.Generate(gc, llm.SocialPrompt, fullDraft)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.LogError("generate_texts", err)
		d.reply(ctx, chatID, "❌ Text generation failed, try again a bit later.", AutomationsMenuKeyboard())
		return
	}

	d.reply(ctx, chatID, "✍️ Texts are ready. Rendering the PDF...", nil)

	pdfBytes, err := d.deps.PDF.Render(project.Name, cardText, st.Images, tpl.HTMLBody, tpl.CSSBody)
	if err != nil {
		logger.LogError("render_pdf", err)
		d.reply(ctx, chatID, "❌ PDF rendering failed, try again a bit later.", AutomationsMenuKeyboard())
		return
	}

	fileName := strings.ReplaceAll(project.Name, " ", "_") + "_Card.pdf"
	if err := d.deps.Sender.SendDocument(ctx, chatID, fileName, pdfBytes, "✅ Done! Here's your presentation card."); err != nil {
		logger.LogError("send_pdf", err)
	}
	d.reply(ctx, chatID, "📣 And the social media text:\n\n<pre>"+html.EscapeString(socialText)+"</pre>", AutomationsMenuKeyboard())

	if _, err := d.deps.Assets.Add(ctx, project.ID, projdomain.AssetGeneratedPDF, fileName, nil); err != nil {
		logger.LogError("save_pdf_asset", err)
	}
	if _, err := d.deps.Assets.Add(ctx, project.ID, projdomain.AssetSocialText, "", &socialText); err != nil {
		logger.LogError("save_social_asset", err)
	}
}
