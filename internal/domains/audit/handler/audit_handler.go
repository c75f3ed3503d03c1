package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snippethub-backend/internal/domains/audit/model"
	"snippethub-backend/internal/domains/audit/service"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/response"
	"snippethub-backend/internal/shared/validator"
)

type AuditHandler struct {
	service service.ServiceInterface
}

func NewAuditHandler(service service.ServiceInterface) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /api/v1/audit-logs (admin only).
func (h *AuditHandler) List(c *gin.Context) {
	var pagination validator.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.Error(apperror.Validation("invalid pagination parameters", nil))
		return
	}
	pagination.Normalize()

	filter := model.ListFilter{
		ResourceType: c.Query("resource_type"),
		ResourceID:   c.Query("resource_id"),
		Action:       model.Action(c.Query("action")),
		Limit:        pagination.Limit,
		Offset:       pagination.Offset(),
	}

	if actorID := c.Query("actor_id"); actorID != "" {
		id, err := uuid.Parse(actorID)
		if err != nil {
			c.Error(apperror.Validation("invalid actor_id", []apperror.FieldError{
				{Field: "actor_id", Message: "must be a valid UUID", Code: "invalid"},
			}))
			return
		}
		filter.ActorID = id
	}

	entries, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	meta := response.NewMeta(total, pagination.Page, pagination.Limit)
	response.SuccessWithMeta(c, http.StatusOK, entries, meta)
}
