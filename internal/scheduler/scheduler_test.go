package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projdomain "github.com/design-sidekick/sidekick-bot/internal/projects/domain"
)

type stubProjects struct {
	active  []projdomain.Project
	count   int
	touched []int64
}

func (s *stubProjects) ListActiveWithReminders(ctx context.Context) ([]projdomain.Project, error) {
	return s.active, nil
}

func (s *stubProjects) TouchReminded(ctx context.Context, id int64, at time.Time) error {
	s.touched = append(s.touched, id)
	return nil
}

func (s *stubProjects) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return s.count, nil
}

type stubSender struct {
	texts []string
	err   error
}

func (s *stubSender) SendMessage(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	return nil
}

type stubResyncer struct {
	retried int
}

func (s *stubResyncer) Resync(ctx context.Context) int {
	s.retried++
	return 1
}

func activeProject(id int64, name string, intervalDays int, createdDaysAgo int) projdomain.Project {
	return projdomain.Project{
		ID:                   id,
		Name:                 name,
		Status:               projdomain.StatusActive,
		ReminderIntervalDays: &intervalDays,
		CreatedAt:            time.Now().AddDate(0, 0, -createdDaysAgo),
	}
}

func newTestScheduler(projects *stubProjects, sender *stubSender) *Scheduler {
	return NewScheduler(projects, sender, &stubResyncer{}, 1000)
}

func TestRunReminders_SendsOnlyDueProjects(t *testing.T) {
	projects := &stubProjects{active: []projdomain.Project{
		activeProject(1, "Lamp", 7, 10),
		activeProject(2, "Chair", 7, 2),
	}}
	sender := &stubSender{}

	newTestScheduler(projects, sender).runReminders()

	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "Lamp")
	assert.Equal(t, []int64{1}, projects.touched)
}

func TestRunReminders_FailedSendDoesNotAdvanceClock(t *testing.T) {
	projects := &stubProjects{active: []projdomain.Project{
		activeProject(1, "Lamp", 7, 10),
	}}
	sender := &stubSender{err: errors.New("telegram unavailable")}

	newTestScheduler(projects, sender).runReminders()

	assert.Empty(t, projects.touched)
}

func TestRunDigest_CountsTrailingWeek(t *testing.T) {
	projects := &stubProjects{count: 3}
	sender := &stubSender{}

	newTestScheduler(projects, sender).runDigest()

	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "3 new idea")
}

func TestDigestMessage_Variants(t *testing.T) {
	t.Run("with ideas points at the list", func(t *testing.T) {
		text, kb := DigestMessage(2)
		assert.Contains(t, text, "2 new idea")
		require.NotNil(t, kb)
		assert.Contains(t, kb.InlineKeyboard[0][0].Text, "See the idea list")
	})

	t.Run("without ideas encourages adding one", func(t *testing.T) {
		text, kb := DigestMessage(0)
		assert.Contains(t, text, "No new ideas")
		require.NotNil(t, kb)
		assert.Contains(t, kb.InlineKeyboard[0][0].Text, "Add an idea")
	})
}

func TestRunResync_InvokesWorkspaceRetry(t *testing.T) {
	resync := &stubResyncer{}
	s := NewScheduler(&stubProjects{}, &stubSender{}, resync, 1000)

	s.runResync()

	assert.Equal(t, 1, resync.retried)
}

func TestStart_RegistersJobsAndStops(t *testing.T) {
	s := newTestScheduler(&stubProjects{}, &stubSender{})

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 3)
	s.Stop()
}
