// Package container собирает компоненты сервиса в порядке зависимостей:
// база, репозитории, архив, сервисы, воркеры, обработчики HTTP.
package container

import (
	"context"
	"fmt"
	"log"
	"sync"

	"raisserver/database"
	"raisserver/internal/api/handlers"
	"raisserver/internal/api/routes"
	"raisserver/internal/application/ingestion"
	"raisserver/internal/application/reporting"
	"raisserver/internal/config"
	"raisserver/internal/domain/repositories"
	"raisserver/internal/infrastructure/archive"
	"raisserver/internal/infrastructure/monitoring"
	"raisserver/internal/infrastructure/persistence"
	"raisserver/internal/infrastructure/workers"
)

// Container контейнер зависимостей сервиса приема отчетов
type Container struct {
	mu sync.RWMutex

	// Конфигурация
	Config *config.Config

	// База данных
	DB *database.RaisDB

	// Репозитории
	Sessions  repositories.UploadSessionRepository
	Uploads   repositories.UploadLogRepository
	Summaries repositories.SummaryRepository
	Defects   repositories.DefectRepository
	Rollups   repositories.RollupRepository

	// Архив исходных файлов
	Archive archive.BlobStore

	// Метрики конвейера
	Metrics *monitoring.PipelineMetrics

	// Сервисы
	Ingest  *ingestion.Service
	Reports *reporting.Service

	// Фоновая обработка
	Pool    *workers.Pool
	Sweeper *workers.Sweeper

	// Обработчики HTTP API
	Handlers *routes.Handlers

	// Контекст жизненного цикла фоновых задач
	ctx    context.Context
	cancel context.CancelFunc

	initialized bool
}

// NewContainer создает контейнер с переданной конфигурацией
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Initialize инициализирует все компоненты контейнера
func (c *Container) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return fmt.Errorf("container already initialized")
	}

	log.Println("[Container] Initializing container...")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	c.initRepositories()

	if err := c.initArchive(); err != nil {
		return fmt.Errorf("failed to initialize archive: %w", err)
	}

	c.initMetrics()

	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := c.initWorkers(); err != nil {
		return fmt.Errorf("failed to initialize workers: %w", err)
	}

	c.initHandlers()

	c.initialized = true
	log.Println("[Container] Container initialized successfully")
	return nil
}

// initDatabase открывает базу приемника с настройками пула соединений
func (c *Container) initDatabase() error {
	db, err := database.NewRaisDBWithConfig(c.Config.DatabasePath, database.DBConfig{
		MaxOpenConns:    c.Config.MaxOpenConns,
		MaxIdleConns:    c.Config.MaxIdleConns,
		ConnMaxLifetime: c.Config.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	c.DB = db

	log.Printf("[Container] Database opened: %s", c.Config.DatabasePath)
	return nil
}

// initRepositories создает репозитории поверх открытой базы
func (c *Container) initRepositories() {
	c.Sessions = persistence.NewUploadSessionRepository(c.DB)
	c.Uploads = persistence.NewUploadLogRepository(c.DB)
	c.Summaries = persistence.NewSummaryRepository(c.DB)
	c.Defects = persistence.NewDefectRepository(c.DB)
	c.Rollups = persistence.NewRollupRepository(c.DB)
}

// initArchive открывает хранилище исходных файлов согласно конфигурации
func (c *Container) initArchive() error {
	store, err := archive.Open(c.ctx, archive.Config{
		Backend:           archive.Backend(c.Config.ArchiveBackend),
		Dir:               c.Config.ArchiveDir,
		S3Bucket:          c.Config.S3Bucket,
		S3Region:          c.Config.S3Region,
		S3Endpoint:        c.Config.S3Endpoint,
		S3AccessKeyID:     c.Config.S3AccessKeyID,
		S3SecretAccessKey: c.Config.S3SecretAccessKey,
		S3PathStyle:       c.Config.S3PathStyle,
	})
	if err != nil {
		return err
	}
	c.Archive = store

	log.Printf("[Container] Archive backend: %s", c.Config.ArchiveBackend)
	return nil
}

// initMetrics подключает метрики конвейера
func (c *Container) initMetrics() {
	c.Metrics = monitoring.Pipeline()
}

// initServices создает сервисы приема и отчетности
func (c *Container) initServices() error {
	ingest, err := ingestion.NewService(
		c.Config,
		c.Sessions,
		c.Uploads,
		c.Summaries,
		c.Defects,
		c.Rollups,
		c.Archive,
		c.Metrics,
	)
	if err != nil {
		return err
	}
	c.Ingest = ingest

	c.Reports = reporting.NewService(c.Summaries, c.Defects, c.Rollups)
	return nil
}

// initWorkers запускает пул обработки и уборщик зависших сессий
func (c *Container) initWorkers() error {
	c.Pool = workers.NewPool(c.Ingest, c.Config.IngestWorkers, c.Config.IngestQueueSize)
	c.Pool.Start(c.ctx)

	sweeper, err := workers.NewSweeper(
		c.Sessions,
		c.Rollups,
		c.Config.SweepInterval,
		c.Config.StaleProcessingAge,
	)
	if err != nil {
		return err
	}
	c.Sweeper = sweeper
	c.Sweeper.Start()
	return nil
}

// initHandlers создает обработчики HTTP API
func (c *Container) initHandlers() {
	c.Handlers = &routes.Handlers{
		Upload: handlers.NewUploadHandler(c.Ingest, c.Pool, c.Config),
		Report: handlers.NewReportHandler(c.Reports),
		System: handlers.NewSystemHandler(c.DB, c.Ingest, c.Pool, c.Config),
	}
}

// Shutdown останавливает фоновую обработку и закрывает соединения.
// Очередь закрывается сразу, взятые задания дорабатывают; по истечении
// ctx оставшиеся задания принудительно прерываются
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Println("[Container] Shutting down container...")

	stopped := make(chan struct{})
	go func() {
		if c.Sweeper != nil {
			c.Sweeper.Stop()
		}
		if c.Pool != nil {
			c.Pool.Stop()
		}
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		log.Printf("[Container] Forcing worker shutdown: %v", ctx.Err())
		c.cancel()
		<-stopped
	}

	c.cancel()

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("[Container] Error closing database: %v", err)
		}
	}

	c.initialized = false
	log.Println("[Container] Container shutdown completed")
	return nil
}

// GetContext возвращает контекст жизненного цикла контейнера
func (c *Container) GetContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx
}

// IsInitialized проверяет что контейнер инициализирован
func (c *Container) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}
