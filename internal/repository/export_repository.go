package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const exportColumns = `id, kind, format, file_name, row_count, created_by, created_at, expires_at`

// ExportRepository persists export file metadata.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs the repository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts an export row with generated defaults.
func (r *ExportRepository) Create(ctx context.Context, record *models.ExportRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exports (id, kind, format, file_name, row_count, created_by, created_at, expires_at)
VALUES (:id, :kind, :format, :file_name, :row_count, :created_by, :created_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	return nil
}

// GetByID returns an export row by its identifier.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*models.ExportRecord, error) {
	var record models.ExportRecord
	if err := r.db.GetContext(ctx, &record, `SELECT `+exportColumns+` FROM exports WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get export: %w", err)
	}
	return &record, nil
}

// ListExpired returns exports that expired before cutoff, oldest first.
func (r *ExportRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + exportColumns + ` FROM exports WHERE expires_at < $1 ORDER BY expires_at ASC LIMIT $2`
	var records []models.ExportRecord
	if err := r.db.SelectContext(ctx, &records, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list expired exports: %w", err)
	}
	return records, nil
}

// Delete removes an export row.
func (r *ExportRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM exports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete export: %w", err)
	}
	return nil
}
