package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"snippethub-backend/internal/domains/audit/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, entry *model.Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	var changes []byte
	if entry.Changes != nil {
		var err error
		changes, err = json.Marshal(entry.Changes)
		if err != nil {
			return fmt.Errorf("marshal audit changes: %w", err)
		}
	}

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			id, actor_id, actor_email, action, resource_type, resource_id,
			changes, metadata, ip_address, user_agent, request_id,
			status_code, duration_ms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorEmail,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		changes,
		metadataJSON,
		nullIfEmpty(entry.IPAddress),
		nullIfEmpty(entry.UserAgent),
		nullIfEmpty(entry.RequestID),
		entry.StatusCode,
		entry.DurationMS,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}

	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.Entry, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.ActorID != uuid.Nil {
		where += fmt.Sprintf(" AND actor_id = $%d", argIndex)
		args = append(args, filter.ActorID)
		argIndex++
	}
	if filter.ResourceType != "" {
		where += fmt.Sprintf(" AND resource_type = $%d", argIndex)
		args = append(args, filter.ResourceType)
		argIndex++
	}
	if filter.ResourceID != "" {
		where += fmt.Sprintf(" AND resource_id = $%d", argIndex)
		args = append(args, filter.ResourceID)
		argIndex++
	}
	if filter.Action != "" {
		where += fmt.Sprintf(" AND action = $%d", argIndex)
		args = append(args, filter.Action)
		argIndex++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, actor_id, actor_email, action, resource_type, resource_id,
		       changes, metadata, ip_address, user_agent, request_id,
		       status_code, duration_ms, created_at
		FROM audit_logs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0, filter.Limit)
	for rows.Next() {
		var e model.Entry
		var changes, metadata []byte
		var ip, ua, reqID *string
		var statusCode, durationMS *int

		err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorEmail, &e.Action, &e.ResourceType, &e.ResourceID,
			&changes, &metadata, &ip, &ua, &reqID,
			&statusCode, &durationMS, &e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}

		if changes != nil {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, 0, fmt.Errorf("unmarshal audit changes: %w", err)
			}
		}
		if metadata != nil {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, 0, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		if ip != nil {
			e.IPAddress = *ip
		}
		if ua != nil {
			e.UserAgent = *ua
		}
		if reqID != nil {
			e.RequestID = *reqID
		}
		if statusCode != nil {
			e.StatusCode = *statusCode
		}
		if durationMS != nil {
			e.DurationMS = *durationMS
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return entries, total, nil
}

// DeleteOlderThan prunes expired rows. Retention is the only path that
// removes audit data.
func (r *postgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
