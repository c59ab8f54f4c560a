package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/design-sidekick/sidekick-bot/internal/templates/domain"
)

var templateCols = []string{"id", "name", "html_template", "css_template", "created_at"}

func setupTemplateRepo(t *testing.T) (*TemplateRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewTemplateRepository(db), mock, db
}

func TestTemplateRepository_Add(t *testing.T) {
	repo, mock, db := setupTemplateRepo(t)
	defer db.Close()

	t.Run("stores a template", func(t *testing.T) {
		rows := sqlmock.NewRows(templateCols).
			AddRow(1, "minimal", "<html></html>", nil, time.Now())

		mock.ExpectQuery(`INSERT INTO pdf_templates`).
			WithArgs("minimal", "<html></html>", nil).
			WillReturnRows(rows)

		tpl, err := repo.Add(context.Background(), "minimal", "<html></html>", nil)
		require.NoError(t, err)
		assert.Equal(t, "minimal", tpl.Name)
		assert.Nil(t, tpl.CSSBody)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to ErrDuplicateName", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO pdf_templates`).
			WithArgs("minimal", "<html></html>", nil).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Add(context.Background(), "minimal", "<html></html>", nil)
		assert.ErrorIs(t, err, domain.ErrDuplicateName)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := repo.Add(context.Background(), "", "<html></html>", nil)
		assert.Error(t, err)
	})
}

func TestTemplateRepository_GetByID(t *testing.T) {
	repo, mock, db := setupTemplateRepo(t)
	defer db.Close()

	t.Run("returns nil, nil when missing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM pdf_templates`).
			WithArgs(int64(42)).
			WillReturnError(sql.ErrNoRows)

		tpl, err := repo.GetByID(context.Background(), 42)
		require.NoError(t, err)
		assert.Nil(t, tpl)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTemplateRepository_ListAll(t *testing.T) {
	repo, mock, db := setupTemplateRepo(t)
	defer db.Close()

	css := "body { margin: 0 }"
	rows := sqlmock.NewRows(templateCols).
		AddRow(1, "clean", "<html></html>", &css, time.Now()).
		AddRow(2, "minimal", "<html></html>", nil, time.Now())

	mock.ExpectQuery(`SELECT .+ FROM pdf_templates`).
		WillReturnRows(rows)

	templates, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "clean", templates[0].Name)
	require.NotNil(t, templates[0].CSSBody)

	require.NoError(t, mock.ExpectationsWereMet())
}
