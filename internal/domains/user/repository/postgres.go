package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"snippethub-backend/internal/domains/user/model"
)

const userColumns = `
	id, external_id, email, name, role, subscription, billing_customer_id,
	metadata, email_verified, image_url, last_login_at, deleted_at,
	created_at, updated_at
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND deleted_at IS NULL`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE external_id = $1 AND deleted_at IS NULL`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, externalID))
}

func (r *postgresRepository) GetByBillingCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE billing_customer_id = $1 AND deleted_at IS NULL`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, customerID))
}

func (r *postgresRepository) UpsertByExternalID(ctx context.Context, user *model.User) (bool, error) {
	metadata := user.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("marshal user metadata: %w", err)
	}

	// The partial unique index on external_id only covers active rows, so
	// ON CONFLICT must name it explicitly.
	query := fmt.Sprintf(`
		INSERT INTO users (external_id, email, name, role, subscription, metadata, email_verified, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) WHERE deleted_at IS NULL
		DO UPDATE SET
			email = EXCLUDED.email,
			name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE users.name END,
			email_verified = EXCLUDED.email_verified,
			image_url = COALESCE(EXCLUDED.image_url, users.image_url),
			updated_at = NOW()
		RETURNING %s, (xmax = 0) AS inserted
	`, userColumns)

	role := user.Role
	if role == "" {
		role = model.RoleUser
	}
	tier := user.Subscription
	if tier == "" {
		tier = model.SubscriptionFree
	}

	row := r.pool.QueryRow(ctx, query,
		user.ExternalID, user.Email, user.Name, role, tier,
		metadataJSON, user.EmailVerified, user.ImageURL,
	)

	var metadataOut []byte
	var created bool
	err = row.Scan(
		&user.ID, &user.ExternalID, &user.Email, &user.Name, &user.Role,
		&user.Subscription, &user.BillingCustomerID, &metadataOut,
		&user.EmailVerified, &user.ImageURL, &user.LastLoginAt, &user.DeletedAt,
		&user.CreatedAt, &user.UpdatedAt, &created,
	)
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}
	if err := json.Unmarshal(metadataOut, &user.Metadata); err != nil {
		return false, fmt.Errorf("unmarshal user metadata: %w", err)
	}

	return created, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	metadataJSON, err := json.Marshal(user.Metadata)
	if err != nil {
		return fmt.Errorf("marshal user metadata: %w", err)
	}

	query := `
		UPDATE users
		SET name = $2, image_url = $3, metadata = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err = r.pool.QueryRow(ctx, query, user.ID, user.Name, user.ImageURL, metadataJSON).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, externalID string, at time.Time) error {
	query := `
		UPDATE users
		SET last_login_at = $2, updated_at = NOW()
		WHERE external_id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, externalID, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) SetBillingCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	query := `
		UPDATE users
		SET billing_customer_id = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, customerID)
	if err != nil {
		return fmt.Errorf("set billing customer id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) SetSubscription(ctx context.Context, id uuid.UUID, tier string) error {
	query := `
		UPDATE users
		SET subscription = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, tier)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) SoftDeleteByExternalID(ctx context.Context, externalID string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE external_id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, externalID)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.User, int, error) {
	where := "deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if filter.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", argIndex)
		args = append(args, filter.Role)
		argIndex++
	}
	if filter.Subscription != "" {
		where += fmt.Sprintf(" AND subscription = $%d", argIndex)
		args = append(args, filter.Subscription)
		argIndex++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (email ILIKE $%d OR name ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, filter.Limit)
	for rows.Next() {
		user, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return users, total, nil
}

func (r *postgresRepository) scanOne(row pgx.Row) (*model.User, error) {
	user, err := r.scanRow(row)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresRepository) scanRow(row pgx.Row) (*model.User, error) {
	var user model.User
	var metadata []byte

	err := row.Scan(
		&user.ID, &user.ExternalID, &user.Email, &user.Name, &user.Role,
		&user.Subscription, &user.BillingCustomerID, &metadata,
		&user.EmailVerified, &user.ImageURL, &user.LastLoginAt, &user.DeletedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal user metadata: %w", err)
	}
	return &user, nil
}
