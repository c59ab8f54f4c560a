package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creation on startup keeps a fresh deployment usable without running
// the external migration tooling first. Statements are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'idea' CHECK (status IN ('idea', 'active', 'archived')),
		notion_page_id TEXT,
		reminder_interval_days INT,
		last_reminded_at TIMESTAMPTZ,
		sync_state TEXT NOT NULL DEFAULT 'pending' CHECK (sync_state IN ('pending', 'synced', 'failed')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS project_assets (
		id BIGSERIAL PRIMARY KEY,
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		asset_type TEXT NOT NULL CHECK (asset_type IN
			('image_reference', 'final_render', 'moodboard_image', 'generated_pdf', 'social_text')),
		file_id TEXT NOT NULL DEFAULT '',
		text_content TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pdf_templates (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		html_template TEXT NOT NULL,
		css_template TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
	`CREATE INDEX IF NOT EXISTS idx_project_assets_project_id ON project_assets(project_id)`,
}

// EnsureSchema creates the bot's tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
