package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/auth"
	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/notifications/websocket"
	"carbonmarket/ledger-backend/internal/search"
)

// MarketHandler serves listings, trading, search and the live feed.
type MarketHandler struct {
	engine *core.Engine
	repo   archive.Repository
	search *search.Index
	hub    *websocket.Hub
}

func NewMarketHandler(engine *core.Engine, repo archive.Repository, index *search.Index, hub *websocket.Hub) *MarketHandler {
	return &MarketHandler{engine: engine, repo: repo, search: index, hub: hub}
}

type createListingRequest struct {
	CreditID    uint64 `json:"credit_id" binding:"required"`
	PricePerTon uint64 `json:"price_per_ton"`
	Amount      uint64 `json:"amount"`
}

func (h *MarketHandler) Create(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.engine.CreateListing(auth.Principal(c), req.CreditID, req.PricePerTon, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	listing, err := h.engine.GetListing(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *MarketHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	listing, err := h.engine.GetListing(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// List serves the archived active listings with pagination.
func (h *MarketHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := h.repo.ListActiveListings(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": rows})
}

func (h *MarketHandler) Cancel(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	if err := h.engine.CancelListing(auth.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing_id": id, "active": false})
}

type purchaseRequest struct {
	Amount uint64 `json:"amount"`
}

func (h *MarketHandler) Purchase(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.PurchaseListing(auth.Principal(c), id, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing_id": id, "amount": req.Amount})
}

// Search queries the listing index by project category and location.
func (h *MarketHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "25"))
	if size <= 0 || size > 100 {
		size = 25
	}

	docs, err := h.search.SearchListings(c.Request.Context(), query, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": docs})
}

// Feed upgrades to a websocket subscribed to the live market feed.
func (h *MarketHandler) Feed(c *gin.Context) {
	if _, err := h.hub.HandleConnection(c.Writer, c.Request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to upgrade connection"})
		return
	}
}

// GetESG serves a company's ESG record, zeroed when unknown.
func (h *MarketHandler) GetESG(c *gin.Context) {
	company, err := uuid.Parse(c.Param("company"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company"})
		return
	}
	c.JSON(http.StatusOK, h.engine.GetCorporateESG(company))
}

// Trades serves the caller's archived trade history.
func (h *MarketHandler) Trades(c *gin.Context) {
	trades, err := h.repo.ListTradesByCompany(c.Request.Context(), auth.Principal(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trades"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}
