package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbonmarket/ledger-backend/internal/audit"
	"carbonmarket/ledger-backend/internal/auth"
	"carbonmarket/ledger-backend/internal/core"
)

// AdminHandler serves the pause switch, admin grants and the audit log.
type AdminHandler struct {
	engine *core.Engine
	audit  *audit.Log
}

func NewAdminHandler(engine *core.Engine, auditLog *audit.Log) *AdminHandler {
	return &AdminHandler{engine: engine, audit: auditLog}
}

type addAdminRequest struct {
	Admin uuid.UUID `json:"admin" binding:"required"`
}

func (h *AdminHandler) AddAdmin(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.AddAdmin(auth.Principal(c), req.Admin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": req.Admin})
}

func (h *AdminHandler) Pause(c *gin.Context) {
	if err := h.engine.Pause(auth.Principal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (h *AdminHandler) Unpause(c *gin.Context) {
	if err := h.engine.Unpause(auth.Principal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

// RecentAudit serves the latest audit entries, newest first.
func (h *AdminHandler) RecentAudit(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ProjectAudit serves every audit entry touching one project.
func (h *AdminHandler) ProjectAudit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	entries, err := h.audit.ByProject(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
