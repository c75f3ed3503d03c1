package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"snippethub-backend/internal/domains/upload/model"
)

const uploadColumns = `
	id, user_id, object_key, url, file_name, content_type, size_bytes,
	checksum, status, created_at, updated_at
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, upload *model.Upload) error {
	query := `
		INSERT INTO uploads (user_id, object_key, url, file_name, content_type, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		upload.UserID, upload.ObjectKey, upload.URL, upload.FileName,
		upload.ContentType, upload.SizeBytes, upload.Status,
	).Scan(&upload.ID, &upload.CreatedAt, &upload.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Upload, error) {
	query := fmt.Sprintf(`SELECT %s FROM uploads WHERE id = $1`, uploadColumns)
	return r.scanRow(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Upload, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM uploads WHERE user_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count uploads: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM uploads
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, uploadColumns)

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []model.Upload{}
	for rows.Next() {
		upload, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		uploads = append(uploads, *upload)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return uploads, total, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, checksum *string) error {
	query := `
		UPDATE uploads
		SET status = $2, checksum = COALESCE($3, checksum), updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, status, checksum)
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) scanRow(row pgx.Row) (*model.Upload, error) {
	var u model.Upload
	err := row.Scan(
		&u.ID, &u.UserID, &u.ObjectKey, &u.URL, &u.FileName, &u.ContentType,
		&u.SizeBytes, &u.Checksum, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
