package model

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestCreateSnippetRequestValidate(t *testing.T) {
	valid := CreateSnippetRequest{
		Name: "pgx pool setup",
		Tags: []string{"go", "pgx"},
	}
	assert.NoError(t, valid.Validate())

	assert.Error(t, CreateSnippetRequest{}.Validate(), "name is required")

	longName := CreateSnippetRequest{Name: strings.Repeat("x", 101)}
	assert.Error(t, longName.Validate())

	longDesc := CreateSnippetRequest{
		Name:        "ok",
		Description: strptr(strings.Repeat("x", 501)),
	}
	assert.Error(t, longDesc.Validate())

	tooManyTags := CreateSnippetRequest{
		Name: "ok",
		Tags: make([]string, 11),
	}
	assert.Error(t, tooManyTags.Validate())

	badTag := CreateSnippetRequest{
		Name: "ok",
		Tags: []string{"Has Spaces"},
	}
	assert.Error(t, badTag.Validate())
}

func TestUpdateSnippetRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateSnippetRequest{Name: strptr("renamed")}.Validate())
	assert.Error(t, UpdateSnippetRequest{Name: strptr("")}.Validate())

	tags := []string{"go", "redis"}
	assert.NoError(t, UpdateSnippetRequest{Tags: &tags}.Validate())

	bad := []string{"UPPER"}
	assert.Error(t, UpdateSnippetRequest{Tags: &bad}.Validate())
}

func TestUpdateSnippetRequestIsEmpty(t *testing.T) {
	assert.True(t, UpdateSnippetRequest{}.IsEmpty())
	assert.False(t, UpdateSnippetRequest{Name: strptr("x")}.IsEmpty())

	public := true
	assert.False(t, UpdateSnippetRequest{IsPublic: &public}.IsEmpty())
}

func TestBulkDeleteRequestValidate(t *testing.T) {
	assert.Error(t, BulkDeleteRequest{}.Validate(), "ids are required")

	valid := BulkDeleteRequest{IDs: []string{uuid.New().String()}}
	assert.NoError(t, valid.Validate())

	invalid := BulkDeleteRequest{IDs: []string{"not-a-uuid"}}
	assert.Error(t, invalid.Validate())

	tooMany := BulkDeleteRequest{IDs: make([]string, 51)}
	for i := range tooMany.IDs {
		tooMany.IDs[i] = uuid.New().String()
	}
	assert.Error(t, tooMany.Validate())
}
