// Package routes собирает gin роутер сервиса: middleware, Swagger UI и
// маршруты API загрузок и отчетов.
package routes

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"raisserver/internal/api/handlers"
	"raisserver/internal/api/middleware"
	"raisserver/internal/config"
)

// Handlers обработчики, которыми комплектуется роутер
type Handlers struct {
	Upload *handlers.UploadHandler
	Report *handlers.ReportHandler
	System *handlers.SystemHandler
}

// BuildRouter собирает gin.Engine со всеми middleware и маршрутами API
func BuildRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	// Release режим по умолчанию; переопределяется переменной окружения GIN_MODE
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.GzipMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(gin.Recovery())

	handlers.RegisterSwaggerRoutes(router, cfg.Port)

	router.GET("/health", h.System.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	uploadLimiter := middleware.NewUploadRateLimiter(cfg.UploadRatePerMinute)
	uploadAPI := api.Group("/upload")
	{
		uploadAPI.POST("", uploadLimiter.Middleware(), h.Upload.HandleUpload)
		uploadAPI.GET("/status/:id", h.Upload.HandleStatus)
		uploadAPI.GET("/history", h.Upload.HandleHistory)
		uploadAPI.GET("/stats", h.Upload.HandleStats)
		uploadAPI.POST("/cancel/:id", h.Upload.HandleCancel)
		uploadAPI.GET("/:id/data", h.Upload.HandleUploadData)
	}
	log.Printf("[Routes] ✓ Upload API routes registered")

	summaryAPI := api.Group("/summary")
	{
		summaryAPI.GET("/production", h.Report.HandleProductionSummaries)
		summaryAPI.GET("/stages", h.Report.HandleStageSummaries)
	}

	defectsAPI := api.Group("/defects")
	{
		defectsAPI.GET("", h.Report.HandleDefects)
		defectsAPI.GET("/top", h.Report.HandleTopDefects)
		defectsAPI.GET("/codes", h.Report.HandleDefectCodes)
	}

	rollupAPI := api.Group("/rollup")
	{
		rollupAPI.GET("/defects", h.Report.HandleDefectRollup)
		rollupAPI.GET("/stages", h.Report.HandleStageRollup)
	}
	log.Printf("[Routes] ✓ Report API routes registered")

	api.POST("/reset", h.System.HandleReset)

	router.NoRoute(func(c *gin.Context) {
		handlers.SendJSONError(c, http.StatusNotFound, "маршрут не найден")
	})

	return router
}
