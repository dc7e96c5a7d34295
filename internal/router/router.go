package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gstreco/internal/config"
	"gstreco/internal/handler"
	"gstreco/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Reco   *handler.RecoHandler
	Offset *handler.OffsetHandler
	Runs   *handler.RunHandler
	Health *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, log logrus.FieldLogger, verifier middleware.TokenVerifier, h Handlers) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.S3.MaxFileSizeMB << 20

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(verifier, cfg.JWT.Enabled))

	reco := v1.Group("/reco/gstr2b")
	reco.POST("/odoo", h.Reco.ReconcileOdoo)
	reco.POST("/zoho", h.Reco.ReconcileZoho)

	v1.POST("/offset", h.Offset.Calculate)

	runs := v1.Group("/runs")
	runs.GET("", h.Runs.List)
	runs.GET("/:id", h.Runs.GetByID)
	runs.GET("/:id/download", h.Runs.Download)

	return r
}
