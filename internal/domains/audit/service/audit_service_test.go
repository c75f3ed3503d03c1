package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippethub-backend/internal/domains/audit/model"
	"snippethub-backend/internal/shared/apperror"
)

type stubRepo struct {
	created   []model.Entry
	createErr error

	listFilter model.ListFilter
	deleted    int64
	cutoff     time.Time
}

func (s *stubRepo) Create(_ context.Context, entry *model.Entry) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *entry)
	return nil
}

func (s *stubRepo) List(_ context.Context, filter model.ListFilter) ([]model.Entry, int, error) {
	s.listFilter = filter
	return nil, 0, nil
}

func (s *stubRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, nil
}

func TestRecordWritesValidEntry(t *testing.T) {
	repo := &stubRepo{}
	svc := NewAuditService(repo)

	svc.Record(context.Background(), &model.Entry{
		Action:       model.ActionCreate,
		ResourceType: "snippet",
	})

	require.Len(t, repo.created, 1)
	assert.Equal(t, model.ActionCreate, repo.created[0].Action)
}

func TestRecordDropsUnknownAction(t *testing.T) {
	repo := &stubRepo{}
	svc := NewAuditService(repo)

	svc.Record(context.Background(), &model.Entry{Action: model.Action("explode")})

	assert.Empty(t, repo.created)
}

func TestRecordSwallowsRepositoryError(t *testing.T) {
	repo := &stubRepo{createErr: errors.New("connection refused")}
	svc := NewAuditService(repo)

	// Must not panic or surface the failure to the caller.
	svc.Record(context.Background(), &model.Entry{Action: model.ActionDelete, ResourceType: "snippet"})
}

func TestRecordSurvivesCancelledContext(t *testing.T) {
	repo := &stubRepo{}
	svc := NewAuditService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Record(ctx, &model.Entry{Action: model.ActionUpdate, ResourceType: "snippet"})

	assert.Len(t, repo.created, 1, "write is detached from the request context")
}

func TestListClampsPagination(t *testing.T) {
	repo := &stubRepo{}
	svc := NewAuditService(repo)

	_, _, err := svc.List(context.Background(), model.ListFilter{Limit: 0, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.listFilter.Limit)
	assert.Equal(t, 0, repo.listFilter.Offset)

	_, _, err = svc.List(context.Background(), model.ListFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.listFilter.Limit)
}

func TestListRejectsUnknownActionFilter(t *testing.T) {
	svc := NewAuditService(&stubRepo{})

	_, _, err := svc.List(context.Background(), model.ListFilter{Action: model.Action("nope")})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.From(err).Kind)
}

func TestPruneDefaultsRetention(t *testing.T) {
	repo := &stubRepo{deleted: 42}
	svc := NewAuditService(repo)

	deleted, err := svc.Prune(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), deleted)

	wantCutoff := time.Now().AddDate(0, 0, -90)
	assert.WithinDuration(t, wantCutoff, repo.cutoff, time.Minute)
}

func TestPruneCustomRetention(t *testing.T) {
	repo := &stubRepo{}
	svc := NewAuditService(repo)

	_, err := svc.Prune(context.Background(), 7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), repo.cutoff, time.Minute)
}
