package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/report-accident/internal/config"
	"github.com/ignatzorin/report-accident/internal/http/handlers"
	"github.com/ignatzorin/report-accident/internal/http/middleware"
)

// SetupRouter собирает маршруты API отчётов о происшествиях.
func SetupRouter(
	cfg *config.Config,
	auth middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	directoryHandler *handlers.DirectoryHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Env != "test" {
		r.Use(gin.Logger())
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.Static("/storage", cfg.MediaStoragePath)

	api := r.Group("/api")

	// Регистрация, вход и отправка отчёта ограничены по частоте.
	limited := api.Group("/")
	limited.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		limited.POST("/login", authHandler.Login)
		limited.POST("/register", authHandler.Register)
		limited.POST("/reports/new", middleware.OptionalAuthMiddleware(auth), reportHandler.Submit)
	}

	api.GET("/reports/all", reportHandler.ListAll)
	api.GET("/reports/:userID", middleware.AuthMiddleware(auth), reportHandler.ListForUser)
	api.PUT("/reports/solved/:uuid", middleware.UUIDValidator("uuid"), reportHandler.MarkSolved)
	api.DELETE("/reports/delete/:uuid", middleware.UUIDValidator("uuid"), reportHandler.Delete)

	api.GET("/companies/all", directoryHandler.Companies)
	api.GET("/breakdowns/all", directoryHandler.Breakdowns)

	api.GET("/ws", wsHandler.Handle)

	return r
}
