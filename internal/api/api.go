// internal/api/api.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/api/handlers"
	"github.com/budprat/stock-sense/backend-go/internal/api/middleware"
	"github.com/budprat/stock-sense/backend-go/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports dependency health. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Spoilage handlers.SpoilageService
	Metrics  *metrics.Recorder
	DB       Pinger
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if services != nil && services.Metrics != nil {
		router.Use(middleware.Metrics(services.Metrics))
	}
	router.Use(cors.New(corsConfig(allowedOrigins)))

	var db Pinger
	if services != nil {
		db = services.DB
	}
	router.GET("/health", healthHandler(db))

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(services.Metrics.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	if services.Spoilage != nil {
		spoilageHandler := handlers.NewSpoilageHandler(services.Spoilage)
		spoilageGroup := apiGroup.Group("/owners/:owner_id/spoilage")
		{
			spoilageGroup.GET("/risks", spoilageHandler.GetRisks)
			spoilageGroup.GET("/predictions", spoilageHandler.GetPredictions)
			spoilageGroup.GET("/alerts", spoilageHandler.GetCriticalAlerts)
			spoilageGroup.GET("/products/:product_id/risk", spoilageHandler.GetProductRisk)

			jobsGroup := spoilageGroup.Group("/jobs/predictions")
			{
				jobsGroup.POST("", spoilageHandler.RunPredictionJob)
				jobsGroup.GET("/latest", spoilageHandler.GetLatestPredictionJob)
				jobsGroup.GET("/exports", spoilageHandler.ListPredictionExports)
				jobsGroup.GET("/:job_id", spoilageHandler.GetPredictionJob)
			}
		}
	}

	return router
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "details": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
