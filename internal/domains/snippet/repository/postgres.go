package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"snippethub-backend/internal/domains/snippet/model"
)

const snippetColumns = `
	id, user_id, name, description, status, tags, metadata, is_public,
	published_at, view_count, deleted_at, created_at, updated_at
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, snippet *model.Snippet) error {
	metadataJSON, err := marshalMetadata(snippet.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO snippets (user_id, name, description, status, tags, metadata, is_public, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, view_count, created_at, updated_at
	`
	err = r.pool.QueryRow(ctx, query,
		snippet.UserID, snippet.Name, snippet.Description, snippet.Status,
		snippet.Tags, metadataJSON, snippet.IsPublic, snippet.PublishedAt,
	).Scan(&snippet.ID, &snippet.ViewCount, &snippet.CreatedAt, &snippet.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create snippet: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Snippet, error) {
	query := fmt.Sprintf(`SELECT %s FROM snippets WHERE id = $1 AND deleted_at IS NULL`, snippetColumns)
	return r.scanRow(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*model.Snippet, error) {
	query := fmt.Sprintf(`SELECT %s FROM snippets WHERE id = $1`, snippetColumns)
	return r.scanRow(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Snippet, int, error) {
	where := "user_id = $1 AND deleted_at IS NULL"
	args := []interface{}{userID}
	argIndex := 2

	if opts.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, opts.Status)
		argIndex++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM snippets WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user snippets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM snippets
		WHERE %s
		%s
		LIMIT $%d OFFSET $%d
	`, snippetColumns, where, orderClause(opts.SortBy, opts.Order), argIndex, argIndex+1)
	args = append(args, opts.Limit, opts.Offset)

	return r.queryMany(ctx, query, total, args...)
}

// orderClause maps a whitelisted sort field to SQL. Only names present in
// model.SortableColumns are ever interpolated.
func orderClause(sortBy, order string) string {
	if _, ok := model.SortableColumns[sortBy]; !ok {
		sortBy = "created_at"
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", sortBy, dir)
}

// List applies the validated filter set over the visibility scope: public
// rows plus, when RequesterID is set, the requester's own rows.
func (r *postgresRepository) List(ctx context.Context, q model.ListQuery) ([]model.Snippet, int, error) {
	where := "deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	var ownerID uuid.UUID
	for _, f := range q.Filters {
		switch f.Kind {
		case model.FilterStatus:
			where += fmt.Sprintf(" AND status = $%d", argIndex)
			args = append(args, f.Status)
			argIndex++
		case model.FilterTag:
			// Array overlap: a row matches when its tag set intersects
			// the requested tags.
			where += fmt.Sprintf(" AND tags && $%d::text[]", argIndex)
			args = append(args, pq.StringArray(f.Tags))
			argIndex++
		case model.FilterDateRange:
			if !f.From.IsZero() {
				where += fmt.Sprintf(" AND created_at >= $%d", argIndex)
				args = append(args, f.From)
				argIndex++
			}
			if !f.To.IsZero() {
				where += fmt.Sprintf(" AND created_at <= $%d", argIndex)
				args = append(args, f.To)
				argIndex++
			}
		case model.FilterOwner:
			where += fmt.Sprintf(" AND user_id = $%d", argIndex)
			args = append(args, f.OwnerID)
			argIndex++
			ownerID = f.OwnerID
		case model.FilterSearch:
			// Search has its own query path; the service routes it there.
			return nil, 0, fmt.Errorf("search filter not supported by List")
		}
	}

	// Visibility: public rows union the requester's own rows. Filtering by
	// one's own id skips the public-only clause.
	if ownerID != q.RequesterID || ownerID == uuid.Nil {
		if q.RequesterID != uuid.Nil {
			where += fmt.Sprintf(" AND (is_public OR user_id = $%d)", argIndex)
			args = append(args, q.RequesterID)
			argIndex++
		} else {
			where += " AND is_public"
		}
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM snippets WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snippets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM snippets
		WHERE %s
		%s
		LIMIT $%d OFFSET $%d
	`, snippetColumns, where, orderClause(q.SortBy, q.Order), argIndex, argIndex+1)
	args = append(args, q.Limit, q.Offset)

	return r.queryMany(ctx, query, total, args...)
}

// Search ranks full-text matches over the visibility scope.
func (r *postgresRepository) Search(ctx context.Context, term string, requesterID uuid.UUID, limit, offset int) ([]model.Snippet, int, error) {
	visibility := "is_public"
	args := []interface{}{term}
	argIndex := 2
	if requesterID != uuid.Nil {
		visibility = fmt.Sprintf("(is_public OR user_id = $%d)", argIndex)
		args = append(args, requesterID)
		argIndex++
	}

	where := fmt.Sprintf(
		`deleted_at IS NULL AND %s AND search_vector @@ plainto_tsquery('simple', $1)`,
		visibility,
	)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM snippets WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM snippets
		WHERE %s
		ORDER BY ts_rank_cd(search_vector, plainto_tsquery('simple', $1)) DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, snippetColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	return r.queryMany(ctx, query, total, args...)
}

func (r *postgresRepository) GetPopular(ctx context.Context, limit int) ([]model.Snippet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM snippets
		WHERE deleted_at IS NULL AND is_public AND status = 'published'
		ORDER BY view_count DESC, published_at DESC
		LIMIT $1
	`, snippetColumns)

	snippets, _, err := r.queryMany(ctx, query, 0, limit)
	return snippets, err
}

func (r *postgresRepository) ListAllIncludingDeleted(ctx context.Context, limit, offset int) ([]model.Snippet, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM snippets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count all snippets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM snippets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, snippetColumns)

	return r.queryMany(ctx, query, total, limit, offset)
}

func (r *postgresRepository) NameExists(ctx context.Context, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM snippets
			WHERE user_id = $1 AND lower(name) = lower($2) AND id <> $3 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check name exists: %w", err)
	}
	return exists, nil
}

// IncrementViewCount is a single atomic UPDATE; concurrent views never lose
// increments.
func (r *postgresRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE snippets
		SET view_count = view_count + 1
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, snippet *model.Snippet) error {
	metadataJSON, err := marshalMetadata(snippet.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE snippets
		SET name = $2, description = $3, status = $4, tags = $5, metadata = $6,
		    is_public = $7, published_at = $8, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err = r.pool.QueryRow(ctx, query,
		snippet.ID, snippet.Name, snippet.Description, snippet.Status,
		snippet.Tags, metadataJSON, snippet.IsPublic, snippet.PublishedAt,
	).Scan(&snippet.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update snippet: %w", err)
	}
	return nil
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE snippets
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete snippet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Restore clears deleted_at. Restores can hit the active-name unique index
// when the owner re-created the name; callers map 23505 to Conflict.
func (r *postgresRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE snippets
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("restore snippet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) GetUserStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'archived'),
			COALESCE(SUM(view_count), 0)
		FROM snippets
		WHERE user_id = $1 AND deleted_at IS NULL
	`

	stats := &model.UserStats{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalSnippets, &stats.DraftCount, &stats.PublishedCount,
		&stats.ArchivedCount, &stats.TotalViews,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate user stats: %w", err)
	}

	if stats.TotalViews > 0 {
		topQuery := fmt.Sprintf(`
			SELECT %s FROM snippets
			WHERE user_id = $1 AND deleted_at IS NULL AND view_count > 0
			ORDER BY view_count DESC, created_at DESC
			LIMIT 1
		`, snippetColumns)

		top, err := r.scanRow(r.pool.QueryRow(ctx, topQuery, userID))
		if err != nil && err != pgx.ErrNoRows {
			return nil, err
		}
		stats.MostViewed = top
	}

	return stats, nil
}

func (r *postgresRepository) queryMany(ctx context.Context, query string, total int, args ...interface{}) ([]model.Snippet, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query snippets: %w", err)
	}
	defer rows.Close()

	snippets := []model.Snippet{}
	for rows.Next() {
		snippet, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		snippets = append(snippets, *snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return snippets, total, nil
}

func (r *postgresRepository) scanRow(row pgx.Row) (*model.Snippet, error) {
	var s model.Snippet
	var metadata []byte

	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.Description, &s.Status, &s.Tags,
		&metadata, &s.IsPublic, &s.PublishedAt, &s.ViewCount, &s.DeletedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metadata, &s.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal snippet metadata: %w", err)
	}
	return &s, nil
}

func marshalMetadata(metadata map[string]interface{}) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal snippet metadata: %w", err)
	}
	return data, nil
}
