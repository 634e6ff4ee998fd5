package handler

import (
	"net/http"

	"github.com/mcoot/wallwars-go/internal/api/response"
	"github.com/mcoot/wallwars-go/internal/availability"
)

// HealthHandler reports process liveness and the store's connection state
type HealthHandler struct {
	avail availability.Checker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(avail availability.Checker) *HealthHandler {
	return &HealthHandler{avail: avail}
}

// Get handles GET /api/v1/health.
// The process is healthy while the store is still connecting or has failed; reads simply come back empty.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status: "ok",
		Store:  h.avail.State().String(),
	})
}
