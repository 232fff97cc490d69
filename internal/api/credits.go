package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/auth"
	"carbonmarket/ledger-backend/internal/certificates"
	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/reports"
)

// CreditHandler serves issuance, retirement, transfers and portfolio views.
type CreditHandler struct {
	engine       *core.Engine
	repo         archive.Repository
	reports      reports.Service
	certificates certificates.Service
}

func NewCreditHandler(engine *core.Engine, repo archive.Repository, reports reports.Service, certs certificates.Service) *CreditHandler {
	return &CreditHandler{engine: engine, repo: repo, reports: reports, certificates: certs}
}

type issueCreditRequest struct {
	ProjectID uint64 `json:"project_id" binding:"required"`
	Amount    uint64 `json:"amount"`
}

func (h *CreditHandler) Issue(c *gin.Context) {
	var req issueCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.engine.IssueCredit(auth.Principal(c), req.ProjectID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	credit, err := h.engine.GetCredit(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, credit)
}

func (h *CreditHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	credit, err := h.engine.GetCredit(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credit)
}

type retireCreditRequest struct {
	Amount uint64 `json:"amount"`
}

func (h *CreditHandler) Retire(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req retireCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.RetireCredit(auth.Principal(c), id, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit_id": id, "retired_amount": req.Amount})
}

type transferRequest struct {
	Recipient uuid.UUID `json:"recipient" binding:"required"`
	Amount    uint64    `json:"amount"`
}

func (h *CreditHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := auth.Principal(c)
	if err := h.engine.TransferCredits(caller, caller, req.Recipient, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient": req.Recipient, "amount": req.Amount})
}

// Portfolio serves the caller's balance plus their archived credits.
func (h *CreditHandler) Portfolio(c *gin.Context) {
	principal := auth.Principal(c)
	credits, err := h.repo.ListCreditsByOwner(c.Request.Context(), principal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load portfolio"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance": h.engine.BalanceOf(principal),
		"credits": credits,
	})
}

// ExportPortfolio streams the caller's portfolio workbook.
func (h *CreditHandler) ExportPortfolio(c *gin.Context) {
	principal := auth.Principal(c)
	filename := fmt.Sprintf("portfolio-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.reports.ExportPortfolio(c.Request.Context(), principal, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export portfolio"})
		return
	}
}

// GetCertificate looks up a retirement certificate by its number.
func (h *CreditHandler) GetCertificate(c *gin.Context) {
	number := c.Param("number")
	cert, url, err := h.certificates.Lookup(c.Request.Context(), number)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "certificate not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate": cert, "download_url": url})
}
