package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/auth"
	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/telemetry"
)

// ProjectHandler serves project registration, browsing and sensor ingest.
type ProjectHandler struct {
	engine    *core.Engine
	repo      archive.Repository
	telemetry telemetry.Store
}

func NewProjectHandler(engine *core.Engine, repo archive.Repository, store telemetry.Store) *ProjectHandler {
	return &ProjectHandler{engine: engine, repo: repo, telemetry: store}
}

func (h *ProjectHandler) Register(c *gin.Context) {
	var req core.RegisterProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.engine.RegisterProject(auth.Principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project_id": id})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	project, err := h.engine.GetProject(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// List serves the archived project catalogue with pagination.
func (h *ProjectHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var owner *uuid.UUID
	if raw := c.Query("owner"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner"})
			return
		}
		owner = &id
	}

	rows, err := h.repo.ListProjects(c.Request.Context(), owner, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": rows})
}

func (h *ProjectHandler) GetVerification(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	record, err := h.engine.GetProjectVerification(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *ProjectHandler) SetActive(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.SetProjectActive(auth.Principal(c), id, *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "active": *req.Active})
}

type sensorReadingRequest struct {
	SensorID    string `json:"sensor_id" binding:"required"`
	CO2Grams    uint64 `json:"co2_grams"`
	Temperature int32  `json:"temperature"`
	Humidity    uint32 `json:"humidity"`
	DataHash    string `json:"data_hash"`
}

func (h *ProjectHandler) SubmitReading(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req sensorReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.SubmitSensorReading(req.SensorID, id, req.CO2Grams, req.Temperature, req.Humidity, req.DataHash); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// SensorHistory serves the hot store, newest first.
func (h *ProjectHandler) SensorHistory(c *gin.Context) {
	sensorID := c.Param("sensor_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	readings, err := h.telemetry.ListSensorReadings(c.Request.Context(), sensorID, int32(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load readings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"readings": readings})
}

var errInvalidID = errors.New("invalid id")

func parseID(c *gin.Context, param string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, errInvalidID
	}
	return id, nil
}
