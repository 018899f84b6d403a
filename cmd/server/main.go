package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/report-accident/internal/config"
	"github.com/ignatzorin/report-accident/internal/db"
	"github.com/ignatzorin/report-accident/internal/goroutine"
	httpHandlers "github.com/ignatzorin/report-accident/internal/http/handlers"
	httpRouter "github.com/ignatzorin/report-accident/internal/http/router"
	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/repository"
	"github.com/ignatzorin/report-accident/internal/service"
	"github.com/ignatzorin/report-accident/internal/storage"
	"github.com/ignatzorin/report-accident/internal/ws"
)

// directoryTTL время жизни кэша справочников.
const directoryTTL = 5 * time.Minute

// store набор операций хранилища, который нужен сервисам.
type store interface {
	service.AuthRepository
	service.ReportRepository
	service.ProviderRepository
	httpHandlers.Pinger
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}
	logger.Setup(cfg.Env, cfg.LogLevel)

	var st store
	if cfg.DatabaseURL != "" {
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPool)
		if err != nil {
			logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if _, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
			logger.Log.Fatalf("main: ошибка миграций: %v", err)
		}
		st = repository.NewPostgresStore(dbConn)
	} else {
		logger.Log.Warn("main: DATABASE_URL не задан, данные хранятся в памяти")
		st = repository.NewMemoryStore()
	}

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(st, tokenManager)
	reportService := service.NewReportService(st, photoStorage, hub, cfg.ReportStaleAfter)
	cache := service.NewCacheService()
	directoryService := service.NewDirectoryService(st, cache, directoryTTL)

	janitor, err := service.NewJanitor(reportService, cache, cfg.JanitorSchedule)
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}
	janitor.Start()
	defer janitor.Stop()

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authService,
		httpHandlers.NewAuthHandler(authService),
		httpHandlers.NewReportHandler(reportService, photoStorage.MaxUploadBytes()),
		httpHandlers.NewDirectoryHandler(directoryService),
		httpHandlers.NewWSHandler(hub, authService),
		httpHandlers.NewHealthHandler(st),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	})

	logger.Log.WithField("base_url", cfg.PublicBaseURL).Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
