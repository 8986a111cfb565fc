package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/autoreconcile/internal/api/dto"
	"github.com/eshaffer321/autoreconcile/internal/application/service"
	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
)

// Base provides shared functionality for all handlers.
type Base struct {
	svc *service.ReconcileService
}

// NewBase creates a new base handler with the given service.
func NewBase(svc *service.ReconcileService) *Base {
	return &Base{svc: svc}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(c *gin.Context, status int, err dto.APIError) {
	c.AbortWithStatusJSON(status, err)
}

// WriteServiceError maps a service error onto an HTTP response.
func (b *Base) WriteServiceError(c *gin.Context, err error) {
	var verr *reconciler.ValidationError
	switch {
	case errors.As(err, &verr):
		b.WriteError(c, http.StatusUnprocessableEntity, dto.ValidationError(verr.Error(), verr.Kind, verr.RecordID, verr.Field))
	case errors.Is(err, service.ErrInvalidRequest):
		b.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
	case errors.Is(err, service.ErrRunNotFound):
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError("run"))
	case errors.Is(err, service.ErrNoStorage):
		b.WriteError(c, http.StatusServiceUnavailable, dto.NewAPIError(dto.ErrCodeUnavailable, err.Error()))
	default:
		_ = c.Error(err)
		b.WriteError(c, http.StatusInternalServerError, dto.InternalError())
	}
}
