package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/design-sidekick/sidekick-bot/internal/projects/domain"
)

const projectColumns = `id, name, description, status, notion_page_id,
reminder_interval_days, last_reminded_at, sync_state, created_at`

// ProjectRepository provides persistence operations for projects. Every
// method is its own transaction; callers compose sequential calls.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.NotionPageID,
		&p.ReminderIntervalDays, &p.LastRemindedAt, &p.SyncState, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIdea inserts a new project in the idea status.
func (r *ProjectRepository) CreateIdea(ctx context.Context, name string, description *string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	const q = `
INSERT INTO projects (name, description, status, sync_state)
VALUES ($1, $2, 'idea', 'pending')
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, name, description))
	if err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}
	return p, nil
}

// GetByID returns a project or (nil, nil) when it does not exist.
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByStatus returns projects in the given status, newest first.
func (r *ProjectRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE status = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProjects(rows)
}

// UpdateStatus moves a project to a new status. Leaving the active status
// clears the reminder interval so it never outlives activation. Returns
// (nil, nil) when the project does not exist.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Project, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	const q = `
UPDATE projects
SET status = $2,
    reminder_interval_days = CASE WHEN $2 = 'active' THEN reminder_interval_days ELSE NULL END,
    sync_state = 'pending'
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, status))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Activate moves a project to active and sets its reminder interval in one
// statement. An interval of zero means no reminders.
func (r *ProjectRepository) Activate(ctx context.Context, id int64, intervalDays int) (*domain.Project, error) {
	const q = `
UPDATE projects
SET status = 'active',
    reminder_interval_days = NULLIF($2, 0),
    sync_state = 'pending'
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, intervalDays))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateFields changes the name and/or description. Nil arguments leave the
// column untouched. Returns (nil, nil) when the project does not exist.
func (r *ProjectRepository) UpdateFields(ctx context.Context, id int64, name, description *string) (*domain.Project, error) {
	const q = `
UPDATE projects
SET name = COALESCE($2, name),
    description = COALESCE($3, description),
    sync_state = 'pending'
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, name, description))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetNotionPage records the external workspace page backing this project.
func (r *ProjectRepository) SetNotionPage(ctx context.Context, id int64, pageID string) error {
	const q = `UPDATE projects SET notion_page_id = $2 WHERE id = $1;`

	_, err := r.db.ExecContext(ctx, q, id, pageID)
	return err
}

// SetSyncState records the outcome of a workspace sync attempt.
func (r *ProjectRepository) SetSyncState(ctx context.Context, id int64, state domain.SyncState) error {
	const q = `UPDATE projects SET sync_state = $2 WHERE id = $1;`

	_, err := r.db.ExecContext(ctx, q, id, state)
	return err
}

// ListUnsynced returns projects whose workspace mirror is pending or failed.
func (r *ProjectRepository) ListUnsynced(ctx context.Context) ([]domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE sync_state <> 'synced'
ORDER BY created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProjects(rows)
}

// ListActiveWithReminders returns active projects that have a reminder
// interval configured.
func (r *ProjectRepository) ListActiveWithReminders(ctx context.Context) ([]domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE status = 'active' AND reminder_interval_days IS NOT NULL
ORDER BY created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProjects(rows)
}

// TouchReminded stamps the last reminder time.
func (r *ProjectRepository) TouchReminded(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE projects SET last_reminded_at = $2 WHERE id = $1;`

	_, err := r.db.ExecContext(ctx, q, id, at)
	return err
}

// CountCreatedSince counts projects created at or after the given time.
func (r *ProjectRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM projects WHERE created_at >= $1;`

	var n int
	if err := r.db.QueryRowContext(ctx, q, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes a project; owned assets go with it via the FK cascade.
// Returns false when the project did not exist.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM projects WHERE id = $1;`

	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func collectProjects(rows *sql.Rows) ([]domain.Project, error) {
	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
