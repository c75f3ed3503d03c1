package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"snippethub-backend/internal/domains/billing/service"
	"snippethub-backend/internal/infrastructure/billing"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/internal/shared/response"
)

type BillingHandler struct {
	service service.ServiceInterface
}

func NewBillingHandler(service service.ServiceInterface) *BillingHandler {
	return &BillingHandler{service: service}
}

// Checkout handles POST /api/v1/billing/checkout.
func (h *BillingHandler) Checkout(c *gin.Context) {
	var req struct {
		Tier string `json:"tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("invalid request body", nil))
		return
	}

	meta := shared.RequestMeta{
		ActorID:   middleware.UserIDFromGin(c),
		IPAddress: middleware.ClientIPFromContext(c.Request.Context()),
		RequestID: c.GetString("request_id"),
	}

	session, err := h.service.CreateCheckout(c.Request.Context(), middleware.UserIDFromGin(c), req.Tier, meta)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, session)
}

// Portal handles POST /api/v1/billing/portal.
func (h *BillingHandler) Portal(c *gin.Context) {
	session, err := h.service.CreatePortal(c.Request.Context(), middleware.UserIDFromGin(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, session)
}

// Webhook handles POST /api/v1/webhooks/billing. Signature verification runs
// as middleware before this.
func (h *BillingHandler) Webhook(c *gin.Context) {
	var event billing.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.Error(apperror.Validation("invalid webhook payload", nil))
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), event); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
}
