package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMeta(t *testing.T) {
	cases := []struct {
		name       string
		total      int
		page       int
		limit      int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"empty result", 0, 1, 20, 0, false, false},
		{"single partial page", 5, 1, 20, 1, false, false},
		{"exact page boundary", 40, 1, 20, 2, true, false},
		{"middle page", 100, 3, 20, 5, true, true},
		{"last page", 41, 3, 20, 3, false, true},
		{"page past the end", 10, 5, 20, 1, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := NewMeta(tc.total, tc.page, tc.limit)
			assert.Equal(t, tc.total, meta.Total)
			assert.Equal(t, tc.totalPages, meta.TotalPages)
			assert.Equal(t, tc.hasNext, meta.HasNext, "hasNext")
			assert.Equal(t, tc.hasPrev, meta.HasPrev, "hasPrev")
		})
	}
}
