// @title RAIS Ingest Server API
// @version 1.0
// @description Сервис приема и нормализации производственных отчетов контроля качества

// @contact.name API Support
// @contact.email support@example.com

// @host localhost:8080
// @BasePath /
// @schemes http

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"raisserver/internal/api/routes"
	"raisserver/internal/config"
	"raisserver/internal/container"
)

// shutdownTimeout бюджет на остановку HTTP сервера и доработку заданий
const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("═══════════════════════════════════════════════════════")
	log.Println("🚀 Запуск RAIS Ingest Server...")

	// .env необязателен, уже выставленные переменные окружения имеют приоритет
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Ошибка загрузки конфигурации: %v", err)
	}

	// Создаем каталог загрузок если его нет
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Printf("⚠ Не удалось создать каталог загрузок %s: %v", cfg.UploadsDir, err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("✗ Ошибка создания контейнера: %v", err)
	}
	if err := c.Initialize(); err != nil {
		log.Fatalf("✗ Ошибка инициализации контейнера: %v", err)
	}

	router := routes.BuildRouter(cfg, c.Handlers)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("✗ КРИТИЧЕСКАЯ ОШИБКА: Ошибка запуска сервера: %v", err)
		}
	}()

	log.Println("═══════════════════════════════════════════════════════")
	log.Printf("✓ Сервер успешно запущен на порту %s", cfg.Port)
	log.Printf("✓ API доступно: http://localhost:%s", cfg.Port)
	log.Printf("✓ Swagger UI: http://localhost:%s/swagger/index.html", cfg.Port)
	log.Printf("✓ База данных: %s", cfg.DatabasePath)
	log.Printf("✓ Архив исходных файлов: %s", cfg.ArchiveBackend)
	log.Println("  Для остановки нажмите Ctrl+C")
	log.Println("═══════════════════════════════════════════════════════")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("═══════════════════════════════════════════════════════")
	log.Println("⏹  Получен сигнал завершения, останавливаю сервер...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("✗ Ошибка при остановке HTTP сервера: %v", err)
	}
	if err := c.Shutdown(ctx); err != nil {
		log.Printf("✗ Ошибка при остановке контейнера: %v", err)
	}

	log.Println("✓ Сервер успешно остановлен")
}
