package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snippethub-backend/internal/domains/upload/service"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/internal/shared/response"
	"snippethub-backend/internal/shared/validator"
)

type UploadHandler struct {
	service service.ServiceInterface
}

func NewUploadHandler(service service.ServiceInterface) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload handles POST /api/v1/uploads (multipart form, field "file").
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.Validation("missing file field", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Validation("unreadable file", nil))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(apperror.Validation("unreadable file", nil))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	upload, err := h.service.Upload(
		c.Request.Context(),
		middleware.UserIDFromGin(c),
		fileHeader.Filename,
		contentType,
		data,
		requestMeta(c),
	)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, upload)
}

// GetByID handles GET /api/v1/uploads/:id.
func (h *UploadHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.Validation("invalid upload id", nil))
		return
	}

	upload, err := h.service.GetByID(c.Request.Context(), id, middleware.UserIDFromGin(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, upload)
}

// ListMine handles GET /api/v1/uploads.
func (h *UploadHandler) ListMine(c *gin.Context) {
	var pagination validator.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.Error(apperror.Validation("invalid pagination parameters", nil))
		return
	}
	pagination.Normalize()

	uploads, total, err := h.service.ListMine(c.Request.Context(), middleware.UserIDFromGin(c), pagination.Limit, pagination.Offset())
	if err != nil {
		c.Error(err)
		return
	}

	meta := response.NewMeta(total, pagination.Page, pagination.Limit)
	response.SuccessWithMeta(c, http.StatusOK, uploads, meta)
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
