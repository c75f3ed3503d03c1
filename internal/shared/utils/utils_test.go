package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	assert.Nil(t, NormalizeTags(nil))
	assert.Nil(t, NormalizeTags([]string{}))

	got := NormalizeTags([]string{" Go ", "redis", "GO", "", "Redis", "pgx"})
	assert.Equal(t, []string{"go", "redis", "pgx"}, got)
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, SplitCSV(""))
	assert.Equal(t, []string{"a", "b", "c"}, SplitCSV("a, b ,c"))
	assert.Equal(t, []string{"a"}, SplitCSV("a,,"))
}

func TestParseStringToUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, ParseStringToUUID(id.String()))
	assert.Equal(t, uuid.Nil, ParseStringToUUID("garbage"))
	assert.Equal(t, uuid.Nil, ParseStringToUUID(""))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID(uuid.New().String()))
	assert.False(t, IsValidUUID("550e8400e29b41d4a716446655440000")) // no dashes
	assert.False(t, IsValidUUID("nope"))
}
