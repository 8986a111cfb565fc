package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/autoreconcile/internal/application/service"
)

// StatsHandler handles statistics requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc *service.ReconcileService) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(svc),
	}
}

// Get handles GET /api/stats - returns aggregate run statistics.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	h.WriteJSON(c, http.StatusOK, stats)
}
