package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        PaginationQuery
		wantPage  int
		wantLimit int
	}{
		{"zero values get defaults", PaginationQuery{}, 1, 20},
		{"negative page", PaginationQuery{Page: -3, Limit: 10}, 1, 10},
		{"limit capped at 100", PaginationQuery{Page: 2, Limit: 500}, 2, 100},
		{"valid passes through", PaginationQuery{Page: 4, Limit: 50}, 4, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.Normalize()
			assert.Equal(t, tc.wantPage, tc.in.Page)
			assert.Equal(t, tc.wantLimit, tc.in.Limit)
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := PaginationQuery{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())

	p = PaginationQuery{Page: 1, Limit: 20}
	assert.Equal(t, 0, p.Offset())
}

func TestPaginationValidate(t *testing.T) {
	assert.NoError(t, PaginationQuery{Page: 1, Limit: 20}.Validate())
	assert.Error(t, PaginationQuery{Page: 1, Limit: 500}.Validate())
}

func TestUUIDRule(t *testing.T) {
	require.NoError(t, UUIDRule.Validate("550e8400-e29b-41d4-a716-446655440000"))
	require.NoError(t, UUIDRule.Validate("")) // empty defers to Required
	require.Error(t, UUIDRule.Validate("not-a-uuid"))
	require.Error(t, UUIDRule.Validate("550e8400e29b41d4a716446655440000")) // canonical form only
}

func TestSortQueryValidateAgainst(t *testing.T) {
	ok := SortQuery{SortBy: "created_at", Order: "desc"}
	assert.NoError(t, ok.ValidateAgainst("created_at", "view_count"))

	badField := SortQuery{SortBy: "password", Order: "asc"}
	assert.Error(t, badField.ValidateAgainst("created_at", "view_count"))

	badOrder := SortQuery{SortBy: "created_at", Order: "sideways"}
	assert.Error(t, badOrder.ValidateAgainst("created_at"))
}

func TestDateRangeQuery(t *testing.T) {
	now := time.Now()

	assert.NoError(t, DateRangeQuery{}.Validate())
	assert.NoError(t, DateRangeQuery{From: now, To: now.Add(time.Hour)}.Validate())
	assert.Error(t, DateRangeQuery{From: now, To: now.Add(-time.Hour)}.Validate())

	assert.True(t, DateRangeQuery{}.IsZero())
	assert.False(t, DateRangeQuery{From: now}.IsZero())
}

func TestSearchQueryLength(t *testing.T) {
	assert.NoError(t, SearchQuery{Search: "redis cache"}.Validate())

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, SearchQuery{Search: string(long)}.Validate())
}
