package model

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"snippethub-backend/internal/shared/validator"
)

const maxTags = 10

var tagPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

var tagRule = validation.Each(
	validation.Length(1, 50),
	validation.Match(tagPattern).Error("tags may contain lowercase letters, digits and hyphens"),
)

// CreateSnippetRequest creates a new draft.
type CreateSnippetRequest struct {
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	Tags        []string               `json:"tags"`
	Metadata    map[string]interface{} `json:"metadata"`
	IsPublic    bool                   `json:"is_public"`
}

func (r CreateSnippetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.Tags, validation.Length(0, maxTags), tagRule),
	)
}

// UpdateSnippetRequest carries partial updates; nil means "leave unchanged".
type UpdateSnippetRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Tags        *[]string              `json:"tags"`
	Metadata    map[string]interface{} `json:"metadata"`
	IsPublic    *bool                  `json:"is_public"`
}

func (r UpdateSnippetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.Tags, validation.By(func(value interface{}) error {
			tags, _ := value.(*[]string)
			if tags == nil {
				return nil
			}
			return validation.Validate(*tags, validation.Length(0, maxTags), tagRule)
		})),
	)
}

func (r UpdateSnippetRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Tags == nil &&
		r.Metadata == nil && r.IsPublic == nil
}

// PublishRequest optionally flips visibility at publish time.
type PublishRequest struct {
	MakePublic bool `json:"make_public"`
}

// BulkDeleteRequest deletes up to 50 snippets in one call.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (r BulkDeleteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 50),
			validation.Each(validator.UUIDRule)),
	)
}

// BulkDeleteResult reports per-id outcomes; the call succeeds even when
// some ids fail.
type BulkDeleteResult struct {
	Deleted []uuid.UUID       `json:"deleted"`
	Failed  []BulkDeleteError `json:"failed"`
}

type BulkDeleteError struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ListSnippetsQuery is the HTTP-boundary shape of listing parameters; the
// handler turns it into a validated ListQuery.
type ListSnippetsQuery struct {
	validator.PaginationQuery
	validator.SortQuery
	validator.DateRangeQuery
	validator.SearchQuery

	Status string `form:"status"`
	Tags   string `form:"tags"` // comma-separated, matches by set intersection
	UserID string `form:"user_id"`
}

// ListMineQuery is the HTTP-boundary shape for the owner-scoped listing.
type ListMineQuery struct {
	validator.PaginationQuery
	validator.SortQuery

	Status string `form:"status"`
}

// UserStats aggregates a user's snippet footprint.
type UserStats struct {
	TotalSnippets  int      `json:"total_snippets"`
	DraftCount     int      `json:"draft_count"`
	PublishedCount int      `json:"published_count"`
	ArchivedCount  int      `json:"archived_count"`
	TotalViews     int      `json:"total_views"`
	MostViewed     *Snippet `json:"most_viewed,omitempty"`
}
