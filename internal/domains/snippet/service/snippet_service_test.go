package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmodel "snippethub-backend/internal/domains/audit/model"
	"snippethub-backend/internal/domains/snippet/model"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
)

// fakeRepository is an in-memory RepositoryInterface with the same
// visibility semantics as the Postgres implementation.
type fakeRepository struct {
	rows map[uuid.UUID]*model.Snippet
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[uuid.UUID]*model.Snippet)}
}

func (f *fakeRepository) Create(_ context.Context, s *model.Snippet) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	clone := *s
	f.rows[s.ID] = &clone
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Snippet, error) {
	s, ok := f.rows[id]
	if !ok || s.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeRepository) GetByIDIncludingDeleted(_ context.Context, id uuid.UUID) (*model.Snippet, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeRepository) ListByUser(_ context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Snippet, int, error) {
	var out []model.Snippet
	for _, s := range f.rows {
		if s.UserID != userID || s.DeletedAt != nil {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeRepository) List(_ context.Context, q model.ListQuery) ([]model.Snippet, int, error) {
	var out []model.Snippet
	for _, s := range f.rows {
		if s.DeletedAt != nil {
			continue
		}
		visible := s.IsPublic || s.UserID == q.RequesterID
		if !visible {
			continue
		}
		if !matchesFilters(s, q.Filters) {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func matchesFilters(s *model.Snippet, filters []model.Filter) bool {
	for _, fl := range filters {
		switch fl.Kind {
		case model.FilterStatus:
			if s.Status != fl.Status {
				return false
			}
		case model.FilterTag:
			overlap := false
			for _, tag := range s.Tags {
				for _, want := range fl.Tags {
					if tag == want {
						overlap = true
					}
				}
			}
			if !overlap {
				return false
			}
		case model.FilterOwner:
			if s.UserID != fl.OwnerID {
				return false
			}
		}
	}
	return true
}

func (f *fakeRepository) Search(_ context.Context, term string, requesterID uuid.UUID, limit, offset int) ([]model.Snippet, int, error) {
	var out []model.Snippet
	for _, s := range f.rows {
		if s.DeletedAt != nil {
			continue
		}
		visible := s.IsPublic || s.UserID == requesterID
		if visible && strings.Contains(strings.ToLower(s.Name), strings.ToLower(term)) {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) GetPopular(_ context.Context, limit int) ([]model.Snippet, error) {
	var out []model.Snippet
	for _, s := range f.rows {
		if s.DeletedAt == nil && s.IsPublic && s.Status == model.StatusPublished {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListAllIncludingDeleted(_ context.Context, limit, offset int) ([]model.Snippet, int, error) {
	var out []model.Snippet
	for _, s := range f.rows {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeRepository) NameExists(_ context.Context, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	for _, s := range f.rows {
		if s.UserID == userID && s.DeletedAt == nil && s.ID != excludeID &&
			strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) IncrementViewCount(_ context.Context, id uuid.UUID) error {
	s, ok := f.rows[id]
	if !ok || s.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	s.ViewCount++
	return nil
}

func (f *fakeRepository) Update(_ context.Context, s *model.Snippet) error {
	existing, ok := f.rows[s.ID]
	if !ok || existing.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	s.UpdatedAt = time.Now()
	clone := *s
	f.rows[s.ID] = &clone
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id uuid.UUID) error {
	s, ok := f.rows[id]
	if !ok || s.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

func (f *fakeRepository) Restore(_ context.Context, id uuid.UUID) error {
	s, ok := f.rows[id]
	if !ok || s.DeletedAt == nil {
		return pgx.ErrNoRows
	}
	s.DeletedAt = nil
	return nil
}

func (f *fakeRepository) GetUserStats(_ context.Context, userID uuid.UUID) (*model.UserStats, error) {
	stats := &model.UserStats{}
	for _, s := range f.rows {
		if s.UserID != userID || s.DeletedAt != nil {
			continue
		}
		stats.TotalSnippets++
		stats.TotalViews += s.ViewCount
		switch s.Status {
		case model.StatusDraft:
			stats.DraftCount++
		case model.StatusPublished:
			stats.PublishedCount++
		case model.StatusArchived:
			stats.ArchivedCount++
		}
	}
	return stats, nil
}

// fakeAudit records entries so tests can assert on the trail.
type fakeAudit struct {
	entries []auditmodel.Entry
}

func (f *fakeAudit) Record(_ context.Context, e *auditmodel.Entry) {
	f.entries = append(f.entries, *e)
}

func (f *fakeAudit) List(context.Context, auditmodel.ListFilter) ([]auditmodel.Entry, int, error) {
	return f.entries, len(f.entries), nil
}

func (f *fakeAudit) Prune(context.Context, int) (int64, error) { return 0, nil }

func (f *fakeAudit) lastAction() auditmodel.Action {
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}

func newTestService() (ServiceInterface, *fakeRepository, *fakeAudit) {
	repo := newFakeRepository()
	audit := &fakeAudit{}
	return NewSnippetService(repo, audit, nil, nil), repo, audit
}

func kindOf(t *testing.T, err error) apperror.Kind {
	t.Helper()
	appErr := apperror.From(err)
	return appErr.Kind
}

var testMeta = shared.RequestMeta{RequestID: "req-1"}

func TestCreateSnippet(t *testing.T) {
	svc, _, audit := newTestService()
	owner := uuid.New()

	snippet, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{
		Name: "pgx pool",
		Tags: []string{" Go ", "PGX", "go"},
	}, testMeta)

	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, snippet.Status)
	assert.Equal(t, []string{"go", "pgx"}, []string(snippet.Tags))
	assert.Equal(t, auditmodel.ActionCreate, audit.lastAction())
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	_, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "dup"}, testMeta)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "DUP"}, testMeta)
	assert.Equal(t, apperror.KindConflict, kindOf(t, err), "names are case-insensitively unique per owner")

	// A different owner may reuse the name.
	_, err = svc.Create(context.Background(), uuid.New(), model.CreateSnippetRequest{Name: "dup"}, testMeta)
	assert.NoError(t, err)
}

func TestGetByIDVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()
	other := uuid.New()

	private, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "private"}, testMeta)
	require.NoError(t, err)

	// Owner sees their private draft.
	_, err = svc.GetByID(context.Background(), private.ID, owner, false)
	assert.NoError(t, err)

	// A private row is Forbidden to outsiders; only a missing or deleted
	// one is NotFound.
	_, err = svc.GetByID(context.Background(), private.ID, other, false)
	assert.Equal(t, apperror.KindForbidden, kindOf(t, err))

	_, err = svc.GetByID(context.Background(), uuid.New(), other, false)
	assert.Equal(t, apperror.KindNotFound, kindOf(t, err))
}

func TestViewCounting(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()
	visitor := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "public", IsPublic: true}, testMeta)
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), created.ID, owner, model.PublishRequest{MakePublic: true}, testMeta)
	require.NoError(t, err)

	// Owner views never count.
	_, err = svc.GetByID(context.Background(), created.ID, owner, true)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.rows[created.ID].ViewCount)

	// Visitor views count when requested.
	got, err := svc.GetByID(context.Background(), created.ID, visitor, true)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
	assert.Equal(t, 1, repo.rows[created.ID].ViewCount)

	// Without the flag nothing moves.
	_, err = svc.GetByID(context.Background(), created.ID, visitor, false)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.rows[created.ID].ViewCount)
}

func TestUpdateRecordsOnlyChangedFields(t *testing.T) {
	svc, _, audit := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "before"}, testMeta)
	require.NoError(t, err)

	newName := "after"

	updated, err := svc.Update(context.Background(), created.ID, owner, model.UpdateSnippetRequest{Name: &newName}, testMeta)
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Name)

	last := audit.entries[len(audit.entries)-1]
	require.Contains(t, last.Changes, "name")
	assert.Equal(t, "before", last.Changes["name"].Before)
	assert.Equal(t, "after", last.Changes["name"].After)
	assert.NotContains(t, last.Changes, "description")
}

func TestUpdateNoopWritesNoAudit(t *testing.T) {
	svc, _, audit := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "stable"}, testMeta)
	require.NoError(t, err)

	entriesBefore := len(audit.entries)
	same := "stable"
	_, err = svc.Update(context.Background(), created.ID, owner, model.UpdateSnippetRequest{Name: &same}, testMeta)
	require.NoError(t, err)
	assert.Len(t, audit.entries, entriesBefore, "unchanged fields produce no audit entry")
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "mine"}, testMeta)
	require.NoError(t, err)

	name := "stolen"
	_, err = svc.Update(context.Background(), created.ID, uuid.New(), model.UpdateSnippetRequest{Name: &name}, testMeta)
	assert.Equal(t, apperror.KindForbidden, kindOf(t, err))
}

func TestPublishLifecycle(t *testing.T) {
	svc, _, audit := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "lifecycle"}, testMeta)
	require.NoError(t, err)

	published, err := svc.Publish(context.Background(), created.ID, owner, model.PublishRequest{MakePublic: true}, testMeta)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.Status)
	assert.True(t, published.IsPublic)
	assert.NotNil(t, published.PublishedAt)
	assert.Equal(t, auditmodel.ActionPublish, audit.lastAction())

	// Publishing again conflicts.
	_, err = svc.Publish(context.Background(), created.ID, owner, model.PublishRequest{}, testMeta)
	assert.Equal(t, apperror.KindConflict, kindOf(t, err))

	archived, err := svc.Archive(context.Background(), created.ID, owner, testMeta)
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, archived.Status)
	assert.False(t, archived.IsPublic)

	// Archived is terminal: no republish, no re-archive.
	_, err = svc.Publish(context.Background(), created.ID, owner, model.PublishRequest{}, testMeta)
	assert.Equal(t, apperror.KindConflict, kindOf(t, err))
	_, err = svc.Archive(context.Background(), created.ID, owner, testMeta)
	assert.Equal(t, apperror.KindConflict, kindOf(t, err))
}

func TestDeleteHidesFromReads(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "gone"}, testMeta)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID, owner, testMeta))

	_, err = svc.GetByID(context.Background(), created.ID, owner, false)
	assert.Equal(t, apperror.KindNotFound, kindOf(t, err))

	stats, err := svc.GetUserStats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSnippets, "deleted rows are excluded from stats")

	// But the admin scope still sees it.
	all, _, err := svc.ListAllIncludingDeleted(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRestore(t *testing.T) {
	svc, _, audit := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "phoenix"}, testMeta)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID, owner, testMeta))

	restored, err := svc.Restore(context.Background(), created.ID, testMeta)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
	assert.Equal(t, auditmodel.ActionRestore, audit.lastAction())

	// Restoring an active row conflicts.
	_, err = svc.Restore(context.Background(), created.ID, testMeta)
	assert.Equal(t, apperror.KindConflict, kindOf(t, err))

	_, err = svc.GetByID(context.Background(), created.ID, owner, false)
	assert.NoError(t, err)
}

func TestBulkDeletePartialFailure(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()
	other := uuid.New()

	mine, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "mine"}, testMeta)
	require.NoError(t, err)
	theirs, err := svc.Create(context.Background(), other, model.CreateSnippetRequest{Name: "theirs"}, testMeta)
	require.NoError(t, err)

	result, err := svc.BulkDelete(context.Background(), owner, model.BulkDeleteRequest{
		IDs: []string{mine.ID.String(), theirs.ID.String(), uuid.New().String()},
	}, testMeta)
	require.NoError(t, err, "partial failure is not an error")

	assert.Equal(t, []uuid.UUID{mine.ID}, result.Deleted)
	require.Len(t, result.Failed, 2)

	// The other user's snippet survives.
	_, err = svc.GetByID(context.Background(), theirs.ID, other, false)
	assert.NoError(t, err)
}

func TestListScopesVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()
	stranger := uuid.New()

	pub, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "shared", Tags: []string{"go"}}, testMeta)
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), pub.ID, owner, model.PublishRequest{MakePublic: true}, testMeta)
	require.NoError(t, err)

	// A public draft is part of the public scope even before publishing.
	_, err = svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "public draft", IsPublic: true, Tags: []string{"redis"}}, testMeta)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "secret draft"}, testMeta)
	require.NoError(t, err)

	// Anonymous: all public rows, regardless of status.
	_, total, err := svc.List(context.Background(), model.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// Owner: public union own private rows.
	_, total, err = svc.List(context.Background(), model.ListQuery{RequesterID: owner})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	// Stranger: same view as anonymous.
	_, total, err = svc.List(context.Background(), model.ListQuery{RequesterID: stranger})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// Tag filter composes with status.
	_, total, err = svc.List(context.Background(), model.ListQuery{
		Filters:     []model.Filter{model.TagFilter("go"), model.StatusFilter(model.StatusPublished)},
		RequesterID: owner,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// Multi-tag filters match by intersection with the row's tag set.
	_, total, err = svc.List(context.Background(), model.ListQuery{
		Filters:     []model.Filter{model.TagFilter("go", "redis")},
		RequesterID: stranger,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestListMineFiltersByStatus(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	d, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "draft"}, testMeta)
	require.NoError(t, err)
	p, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "pub"}, testMeta)
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), p.ID, owner, model.PublishRequest{}, testMeta)
	require.NoError(t, err)

	rows, total, err := svc.ListMine(context.Background(), owner, model.ListOptions{Status: model.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, d.ID, rows[0].ID)

	_, total, err = svc.ListMine(context.Background(), owner, model.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = svc.ListMine(context.Background(), owner, model.ListOptions{SortBy: "user_id"})
	assert.Equal(t, apperror.KindValidation, kindOf(t, err), "sort fields are whitelisted")
}

func TestListRejectsSearchCombinedWithFilters(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.List(context.Background(), model.ListQuery{
		Filters: []model.Filter{
			model.SearchFilter("redis"),
			model.StatusFilter(model.StatusPublished),
		},
	})
	assert.Equal(t, apperror.KindValidation, kindOf(t, err))
}

func TestListInvalidFilterRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.List(context.Background(), model.ListQuery{
		Filters: []model.Filter{model.StatusFilter(model.Status("bogus"))},
	})
	assert.Equal(t, apperror.KindValidation, kindOf(t, err))
}

func TestSearchPath(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "redis caching recipe"}, testMeta)
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), created.ID, owner, model.PublishRequest{MakePublic: true}, testMeta)
	require.NoError(t, err)

	rows, total, err := svc.List(context.Background(), model.ListQuery{
		Filters: []model.Filter{model.SearchFilter("redis")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, created.ID, rows[0].ID)
}

func TestGetUserStats(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()

	_, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "draft"}, testMeta)
	require.NoError(t, err)
	p, err := svc.Create(context.Background(), owner, model.CreateSnippetRequest{Name: "pub"}, testMeta)
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), p.ID, owner, model.PublishRequest{MakePublic: true}, testMeta)
	require.NoError(t, err)

	repo.rows[p.ID].ViewCount = 7

	stats, err := svc.GetUserStats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSnippets)
	assert.Equal(t, 1, stats.DraftCount)
	assert.Equal(t, 1, stats.PublishedCount)
	assert.Equal(t, 7, stats.TotalViews)
}
