package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbonmarket/ledger-backend/internal/auth"
)

// Handlers bundles every feature handler mounted on the router.
type Handlers struct {
	Auth     *auth.Handler
	Projects *ProjectHandler
	Credits  *CreditHandler
	Market   *MarketHandler
	Admin    *AdminHandler
	Stats    *StatsHandler
}

// NewRouter mounts the full HTTP surface.
func NewRouter(logger *zap.Logger, authService *auth.Service, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API alive!"})
	})

	auth.RegisterRoutes(r, h.Auth)

	// Public browse surface.
	r.GET("/projects", h.Projects.List)
	r.GET("/projects/:id", h.Projects.Get)
	r.GET("/projects/:id/verification", h.Projects.GetVerification)
	r.GET("/listings", h.Market.List)
	r.GET("/listings/:id", h.Market.Get)
	r.GET("/market/search", h.Market.Search)
	r.GET("/market/feed", h.Market.Feed)
	r.GET("/esg/:company", h.Market.GetESG)
	r.GET("/stats", h.Stats.Overview)
	r.GET("/stats/top-buyers", h.Stats.TopBuyers)
	r.GET("/certificates/:number", h.Credits.GetCertificate)

	// Sensor ingest authenticates the device gateway like any other caller.
	authed := r.Group("", auth.RequireAuth(authService))
	{
		authed.POST("/projects", h.Projects.Register)
		authed.PATCH("/projects/:id/active", h.Projects.SetActive)
		authed.POST("/projects/:id/readings", h.Projects.SubmitReading)
		authed.GET("/sensors/:sensor_id/readings", h.Projects.SensorHistory)

		authed.POST("/credits", h.Credits.Issue)
		authed.GET("/credits/:id", h.Credits.Get)
		authed.POST("/credits/:id/retire", h.Credits.Retire)
		authed.POST("/credits/transfer", h.Credits.Transfer)
		authed.GET("/portfolio", h.Credits.Portfolio)
		authed.GET("/portfolio/export", h.Credits.ExportPortfolio)
		authed.GET("/trades", h.Market.Trades)

		authed.POST("/listings", h.Market.Create)
		authed.DELETE("/listings/:id", h.Market.Cancel)
		authed.POST("/listings/:id/purchase", h.Market.Purchase)
	}

	// Deployer/admin gating is enforced again inside the engine.
	admin := r.Group("/admin", auth.RequireAuth(authService), auth.RequireAdmin())
	{
		admin.POST("/admins", h.Admin.AddAdmin)
		admin.POST("/pause", h.Admin.Pause)
		admin.POST("/unpause", h.Admin.Unpause)
		admin.GET("/audit", h.Admin.RecentAudit)
		admin.GET("/audit/projects/:id", h.Admin.ProjectAudit)
	}

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
