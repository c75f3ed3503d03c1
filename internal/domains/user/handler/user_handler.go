package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"snippethub-backend/internal/domains/user/model"
	"snippethub-backend/internal/domains/user/service"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/internal/shared/response"
	"snippethub-backend/internal/shared/validator"
)

type UserHandler struct {
	service service.ServiceInterface
}

func NewUserHandler(service service.ServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe handles GET /api/v1/users/me.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := middleware.UserIDFromGin(c)

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := middleware.UserIDFromGin(c)

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("invalid request body", nil))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// List handles GET /api/v1/users (admin only).
func (h *UserHandler) List(c *gin.Context) {
	var pagination validator.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.Error(apperror.Validation("invalid pagination parameters", nil))
		return
	}
	pagination.Normalize()

	filter := model.ListFilter{
		Role:         c.Query("role"),
		Subscription: c.Query("subscription"),
		Search:       c.Query("search"),
		Limit:        pagination.Limit,
		Offset:       pagination.Offset(),
	}

	users, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	meta := response.NewMeta(total, pagination.Page, pagination.Limit)
	response.SuccessWithMeta(c, http.StatusOK, users, meta)
}

// ProviderWebhook handles POST /api/v1/webhooks/auth. The signature is
// verified by middleware before this runs.
func (h *UserHandler) ProviderWebhook(c *gin.Context) {
	var req model.ProviderWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("invalid webhook payload", nil))
		return
	}

	if err := h.service.HandleProviderWebhook(c.Request.Context(), req); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
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
