package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxolab/fluxo-api/internal/models"
)

// UploadRepository records statement ingest attempts for the upload history
// view. Failed parses are recorded too, with the failure message.
type UploadRepository struct {
	pool *pgxpool.Pool
}

// NewUploadRepository creates the repository.
func NewUploadRepository(pool *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{pool: pool}
}

// Record inserts one ingest audit row.
func (r *UploadRepository) Record(ctx context.Context, u models.Upload) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO uploads (id, user_id, file_name, file_type, status, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), u.UserID, u.FileName, u.FileType, u.Status, u.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// History returns a user's most recent ingest attempts, newest first.
func (r *UploadRepository) History(ctx context.Context, userID string, limit int) ([]models.Upload, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, file_name, file_type, status, error, created_at
		 FROM uploads WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	uploads := []models.Upload{}
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.UserID, &u.FileName, &u.FileType, &u.Status, &u.Error, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}
