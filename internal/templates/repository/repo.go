package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/design-sidekick/sidekick-bot/internal/templates/domain"
)

// TemplateRepository persists PDF templates.
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Add stores a new template. A name collision surfaces as ErrDuplicateName
// and leaves the existing template untouched.
func (r *TemplateRepository) Add(ctx context.Context, name, htmlBody string, cssBody *string) (*domain.PdfTemplate, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	const q = `
INSERT INTO pdf_templates (name, html_template, css_template)
VALUES ($1, $2, $3)
RETURNING id, name, html_template, css_template, created_at;
`
	var t domain.PdfTemplate
	err := r.db.QueryRowContext(ctx, q, name, htmlBody, cssBody).
		Scan(&t.ID, &t.Name, &t.HTMLBody, &t.CSSBody, &t.CreatedAt)
	if err != nil {
		// unique violation on name
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.ErrDuplicateName
		}
		return nil, fmt.Errorf("add template: %w", err)
	}
	return &t, nil
}

// GetByID returns a template or (nil, nil) when it does not exist.
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*domain.PdfTemplate, error) {
	const q = `
SELECT id, name, html_template, css_template, created_at
FROM pdf_templates
WHERE id = $1;
`
	var t domain.PdfTemplate
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.Name, &t.HTMLBody, &t.CSSBody, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListAll returns every stored template ordered by name.
func (r *TemplateRepository) ListAll(ctx context.Context) ([]domain.PdfTemplate, error) {
	const q = `
SELECT id, name, html_template, css_template, created_at
FROM pdf_templates
ORDER BY name ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PdfTemplate, 0, 8)
	for rows.Next() {
		var t domain.PdfTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.HTMLBody, &t.CSSBody, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
