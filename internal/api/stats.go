package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carbonmarket/ledger-backend/internal/stats"
)

// StatsHandler serves marketplace analytics.
type StatsHandler struct {
	service stats.Service
}

func NewStatsHandler(service stats.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *StatsHandler) TopBuyers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	buyers, err := h.service.TopBuyers(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load top buyers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buyers": buyers})
}
