package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snippethub-backend/internal/domains/snippet/model"
	"snippethub-backend/internal/domains/snippet/service"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/internal/shared/response"
	"snippethub-backend/internal/shared/utils"
	"snippethub-backend/internal/shared/validator"
)

// sortFields mirrors model.SortableColumns for ozzo's In rule.
var sortFields = []interface{}{"created_at", "updated_at", "published_at", "view_count", "name"}

type SnippetHandler struct {
	service service.ServiceInterface
}

func NewSnippetHandler(service service.ServiceInterface) *SnippetHandler {
	return &SnippetHandler{service: service}
}

// List handles GET /api/v1/snippets. Anonymous callers see public snippets;
// authenticated callers additionally see their own.
func (h *SnippetHandler) List(c *gin.Context) {
	var q model.ListSnippetsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.Validation("invalid query parameters", nil))
		return
	}
	q.Normalize()

	if err := q.SortQuery.ValidateAgainst(sortFields...); err != nil {
		c.Error(apperror.From(err))
		return
	}

	filters, appErr := buildFilters(q)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	query := model.ListQuery{
		Filters:     filters,
		RequesterID: middleware.UserIDFromGin(c),
		SortBy:      q.SortBy,
		Order:       q.Order,
		Limit:       q.Limit,
		Offset:      q.Offset(),
	}

	snippets, total, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		c.Error(err)
		return
	}

	meta := response.NewMeta(total, q.Page, q.Limit)
	response.SuccessWithMeta(c, http.StatusOK, snippets, meta)
}

// GetPopular handles GET /api/v1/snippets/popular.
func (h *SnippetHandler) GetPopular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	snippets, err := h.service.GetPopular(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, snippets)
}

// GetByID handles GET /api/v1/snippets/:id. ?view=true counts a view for
// non-owners.
func (h *SnippetHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	countView := c.Query("view") == "true"
	snippet, err := h.service.GetByID(c.Request.Context(), id, middleware.UserIDFromGin(c), countView)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, snippet)
}

// ListMine handles GET /api/v1/snippets/mine.
func (h *SnippetHandler) ListMine(c *gin.Context) {
	var q model.ListMineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.Validation("invalid query parameters", nil))
		return
	}
	q.Normalize()

	if err := q.SortQuery.ValidateAgainst(sortFields...); err != nil {
		c.Error(apperror.From(err))
		return
	}

	opts := model.ListOptions{
		Status: model.Status(q.Status),
		SortBy: q.SortBy,
		Order:  q.Order,
		Limit:  q.Limit,
		Offset: q.Offset(),
	}

	snippets, total, err := h.service.ListMine(c.Request.Context(), middleware.UserIDFromGin(c), opts)
	if err != nil {
		c.Error(err)
		return
	}

	meta := response.NewMeta(total, q.Page, q.Limit)
	response.SuccessWithMeta(c, http.StatusOK, snippets, meta)
}

// GetStats handles GET /api/v1/snippets/stats.
func (h *SnippetHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetUserStats(c.Request.Context(), middleware.UserIDFromGin(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// Create handles POST /api/v1/snippets.
func (h *SnippetHandler) Create(c *gin.Context) {
	var req model.CreateSnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("invalid request body", nil))
		return
	}

	snippet, err := h.service.Create(c.Request.Context(), middleware.UserIDFromGin(c), req, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, snippet)
}

// Update handles PUT /api/v1/snippets/:id.
func (h *SnippetHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateSnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("invalid request body", nil))
		return
	}

	snippet, err := h.service.Update(c.Request.Context(), id, middleware.UserIDFromGin(c), req, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, snippet)
}

// Delete handles DELETE /api/v1/snippets/:id.
func (h *SnippetHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.UserIDFromGin(c), requestMeta(c)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Publish handles POST /api/v1/snippets/:id/publish.
func (h *SnippetHandler) Publish(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.Validation("invalid request body", nil))
			return
		}
	}

	snippet, err := h.service.Publish(c.Request.Context(), id, middleware.UserIDFromGin(c), req, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, snippet)
}

// Archive handles POST /api/v1/snippets/:id/archive.
func (h *SnippetHandler) Archive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	snippet, err := h.service.Archive(c.Request.Context(), id, middleware.UserIDFromGin(c), requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, snippet)
}

// BulkDelete handles POST /api/v1/snippets/bulk-delete.
func (h *SnippetHandler) BulkDelete(c *gin.Context) {
	var req model.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("invalid request body", nil))
		return
	}

	result, err := h.service.BulkDelete(c.Request.Context(), middleware.UserIDFromGin(c), req, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListAll handles GET /api/v1/snippets/admin/all (admin; includes deleted).
func (h *SnippetHandler) ListAll(c *gin.Context) {
	var pagination validator.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.Error(apperror.Validation("invalid pagination parameters", nil))
		return
	}
	pagination.Normalize()

	snippets, total, err := h.service.ListAllIncludingDeleted(c.Request.Context(), pagination.Limit, pagination.Offset())
	if err != nil {
		c.Error(err)
		return
	}

	meta := response.NewMeta(total, pagination.Page, pagination.Limit)
	response.SuccessWithMeta(c, http.StatusOK, snippets, meta)
}

// Restore handles POST /api/v1/snippets/admin/:id/restore (admin).
func (h *SnippetHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	snippet, err := h.service.Restore(c.Request.Context(), id, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, snippet)
}

func buildFilters(q model.ListSnippetsQuery) ([]model.Filter, *apperror.Error) {
	var filters []model.Filter

	if q.Status != "" {
		status := model.Status(q.Status)
		if !status.IsValid() {
			return nil, apperror.Validation("invalid status filter", []apperror.FieldError{
				{Field: "status", Message: "must be draft, published or archived", Code: "invalid"},
			})
		}
		filters = append(filters, model.StatusFilter(status))
	}
	if q.Tags != "" {
		tags := utils.NormalizeTags(utils.SplitCSV(q.Tags))
		if len(tags) == 0 {
			return nil, apperror.Validation("invalid tags filter", []apperror.FieldError{
				{Field: "tags", Message: "must be a comma-separated list of tags", Code: "invalid"},
			})
		}
		filters = append(filters, model.TagFilter(tags...))
	}
	if !q.DateRangeQuery.IsZero() {
		if err := q.DateRangeQuery.Validate(); err != nil {
			return nil, apperror.From(err)
		}
		filters = append(filters, model.DateRangeFilter(q.From, q.To))
	}
	if q.Search != "" {
		if err := q.SearchQuery.Validate(); err != nil {
			return nil, apperror.From(err)
		}
		filters = append(filters, model.SearchFilter(q.Search))
	}
	if q.UserID != "" {
		ownerID, err := uuid.Parse(q.UserID)
		if err != nil {
			return nil, apperror.Validation("invalid user_id filter", []apperror.FieldError{
				{Field: "user_id", Message: "must be a valid UUID", Code: "invalid"},
			})
		}
		filters = append(filters, model.OwnerFilter(ownerID))
	}

	return filters, nil
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.Validation("invalid snippet id", []apperror.FieldError{
			{Field: "id", Message: "must be a valid UUID", Code: "invalid"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

func requestMeta(c *gin.Context) shared.RequestMeta {
	return shared.RequestMeta{
		ActorID:    middleware.UserIDFromGin(c),
		ActorEmail: c.GetString("userEmail"),
		IPAddress:  middleware.ClientIPFromContext(c.Request.Context()),
		UserAgent:  c.Request.UserAgent(),
		RequestID:  c.GetString("request_id"),
	}
}
