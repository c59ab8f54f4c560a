package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"github.com/design-sidekick/sidekick-bot/internal/chat"
	projdomain "github.com/design-sidekick/sidekick-bot/internal/projects/domain"
)

const jobTimeout = 2 * time.Minute

type projectStore interface {
	ListActiveWithReminders(ctx context.Context) ([]projdomain.Project, error)
	TouchReminded(ctx context.Context, id int64, at time.Time) error
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

type sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error
}

type resyncer interface {
	Resync(ctx context.Context) int
}

// Scheduler runs the periodic jobs: project reminders, the weekly idea digest
// and the workspace resync sweep. All messages go to the single admin chat.
type Scheduler struct {
	cron      *cron.Cron
	projects  projectStore
	sender    sender
	workspace resyncer
	adminID   int64
}

// NewScheduler creates a scheduler; call Start to begin execution.
func NewScheduler(projects projectStore, sender sender, workspace resyncer, adminID int64) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		projects:  projects,
		sender:    sender,
		workspace: workspace,
		adminID:   adminID,
	}
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start() error {
	// Reminder sweep every six hours.
	if _, err := s.cron.AddFunc("0 0 */6 * * *", s.runReminders); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	// Weekly digest on Monday mornings.
	if _, err := s.cron.AddFunc("0 0 10 * * 1", s.runDigest); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	// Hourly retry of failed workspace syncs.
	if _, err := s.cron.AddFunc("0 0 * * * *", s.runResync); err != nil {
		return fmt.Errorf("schedule resync: %w", err)
	}

	s.cron.Start()
	log.Printf("[info] operation=scheduler_start jobs=3")
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Printf("[info] operation=scheduler_stop message=scheduler stopped")
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	projects, err := s.projects.ListActiveWithReminders(ctx)
	if err != nil {
		log.Printf("[error] operation=reminder_sweep error=%v", err)
		return
	}

	now := time.Now()
	sent := 0
	for i := range projects {
		p := &projects[i]
		if !p.ReminderDue(now) {
			continue
		}

		text := "⏰ Time to check in on this project!\n\n" + chat.ProjectCardText(p)
		kb := chat.ProjectCardKeyboard(p.ID, p.Status, p.NotionURL())
		if err := s.sender.SendMessage(ctx, s.adminID, text, kb); err != nil {
			log.Printf("[error] operation=send_reminder project_id=%d error=%v", p.ID, err)
			continue
		}
		// The clock only advances on a delivered reminder.
		if err := s.projects.TouchReminded(ctx, p.ID, now); err != nil {
			log.Printf("[error] operation=touch_reminded project_id=%d error=%v", p.ID, err)
		}
		sent++
	}
	log.Printf("[info] operation=reminder_sweep candidates=%d sent=%d", len(projects), sent)
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	count, err := s.projects.CountCreatedSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		log.Printf("[error] operation=weekly_digest error=%v", err)
		return
	}

	text, kb := DigestMessage(count)
	if err := s.sender.SendMessage(ctx, s.adminID, text, kb); err != nil {
		log.Printf("[error] operation=weekly_digest error=%v", err)
		return
	}
	log.Printf("[info] operation=weekly_digest new_ideas=%d", count)
}

// DigestMessage picks the weekly digest variant for the trailing-week idea
// count.
func DigestMessage(count int) (string, *tgbotapi.InlineKeyboardMarkup) {
	if count == 0 {
		return "☀️ Weekly digest!\n\nNo new ideas this week. Maybe today is a good day to jot one down?",
			chat.DigestKeyboard(false)
	}
	return fmt.Sprintf("☀️ Weekly digest!\n\nYou've added %d new idea(s) over the last week. Keep the momentum going!", count),
		chat.DigestKeyboard(true)
}

func (s *Scheduler) runResync() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if n := s.workspace.Resync(ctx); n > 0 {
		log.Printf("[info] operation=workspace_resync retried=%d", n)
	}
}
