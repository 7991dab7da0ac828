package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ticketdrift/backend/internal/anomaly"
	"github.com/ticketdrift/backend/internal/config"
	"github.com/ticketdrift/backend/internal/db"
	"github.com/ticketdrift/backend/internal/http/handlers"
	"github.com/ticketdrift/backend/internal/http/middleware"
	"github.com/ticketdrift/backend/internal/service"

	_ "github.com/ticketdrift/backend/docs"
)

func Router(cfg config.Config, store *db.Store, analysis *service.AnalysisService, ingest *service.IngestService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	defaults := anomaly.DefaultOptions()
	defaults.WindowSize = cfg.WindowSize
	defaults.MinBaselineWindows = cfg.MinBaselineWindows
	defaults.MaxWindows = cfg.MaxWindows

	h := &handlers.Handler{
		Store:     store,
		Analysis:  analysis,
		Ingest:    ingest,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
		Defaults:  defaults,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/tickets", h.TicketsList)
		api.GET("/anomaly/stats", h.AnomalyStats)
		api.GET("/anomaly/detect", h.AnomalyDetect)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/import", h.Import)
		admin.POST("/anomaly/analyze", h.AnomalyAnalyze)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
