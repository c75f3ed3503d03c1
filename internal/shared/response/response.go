package response

import (
	"github.com/gin-gonic/gin"

	"snippethub-backend/internal/shared/apperror"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Error struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
	Stack     string      `json:"stack,omitempty"`
}

type Meta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewMeta builds list metadata from a total count and page parameters.
func NewMeta(total, page, limit int) *Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Meta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

// Success responses

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error responses

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:      code,
			Message:   message,
			RequestID: c.GetString("request_id"),
		},
	})
}

// FromAppError renders a taxonomy error with the standard envelope.
// stack is included only when the caller decides to expose it (development).
func FromAppError(c *gin.Context, appErr *apperror.Error, stack string) {
	c.JSON(appErr.Kind.Status(), Response{
		Success: false,
		Error: &Error{
			Code:      appErr.Kind.Code(),
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: c.GetString("request_id"),
			Stack:     stack,
		},
	})
}
