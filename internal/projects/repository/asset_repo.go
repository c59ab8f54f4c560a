package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/design-sidekick/sidekick-bot/internal/projects/domain"
)

// AssetRepository persists project assets. Assets are append-only; they are
// removed only through the owning project's delete cascade.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Add stores one asset for a project. fileID holds the platform media handle;
// textContent carries free text for text-typed assets.
func (r *AssetRepository) Add(ctx context.Context, projectID int64, assetType domain.AssetType, fileID string, textContent *string) (*domain.ProjectAsset, error) {
	const q = `
INSERT INTO project_assets (project_id, asset_type, file_id, text_content)
VALUES ($1, $2, $3, $4)
RETURNING id, project_id, asset_type, file_id, text_content, created_at;
`
	var a domain.ProjectAsset
	err := r.db.QueryRowContext(ctx, q, projectID, assetType, fileID, textContent).
		Scan(&a.ID, &a.ProjectID, &a.AssetType, &a.FileID, &a.TextContent, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add asset: %w", err)
	}
	return &a, nil
}

// ListByProject returns all assets owned by a project, oldest first.
func (r *AssetRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.ProjectAsset, error) {
	const q = `
SELECT id, project_id, asset_type, file_id, text_content, created_at
FROM project_assets
WHERE project_id = $1
ORDER BY created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectAsset, 0, 8)
	for rows.Next() {
		var a domain.ProjectAsset
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.AssetType, &a.FileID, &a.TextContent, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
