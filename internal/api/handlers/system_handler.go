package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"raisserver/database"
	"raisserver/internal/application/ingestion"
	"raisserver/internal/config"
	"raisserver/internal/infrastructure/workers"
)

// SystemHandler служебные обработчики: живость сервиса и сброс данных
type SystemHandler struct {
	db        *database.RaisDB
	ingest    *ingestion.Service
	pool      *workers.Pool
	cfg       *config.Config
	startedAt time.Time
}

// NewSystemHandler создает служебный обработчик
func NewSystemHandler(db *database.RaisDB, ingest *ingestion.Service, pool *workers.Pool, cfg *config.Config) *SystemHandler {
	return &SystemHandler{
		db:        db,
		ingest:    ingest,
		pool:      pool,
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

// HandleHealth обработчик проверки живости сервиса
// @Summary Проверка живости
// @Description Возвращает состояние сервиса и базы данных; 503 при недоступной базе
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Сервис работает"
// @Failure 503 {object} map[string]interface{} "База данных недоступна"
// @Router /health [get]
func (h *SystemHandler) HandleHealth(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbState := "ok"
	if err := h.db.Ping(); err != nil {
		status = http.StatusServiceUnavailable
		overall = "degraded"
		dbState = "unavailable"
	}

	c.JSON(status, gin.H{
		"status":      overall,
		"service":     "rais-ingest",
		"database":    dbState,
		"queue_depth": h.pool.QueueDepth(),
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"time":        time.Now().Format(time.RFC3339),
	})
}

// HandleReset обработчик полной очистки данных загрузок
// @Summary Очистить данные
// @Description Удаляет все нормализованные записи, журнал загрузок и своды. Доступно только при RESET_ENABLED=true
// @Tags system
// @Produce json
// @Success 200 {object} Response "Данные очищены"
// @Failure 403 {object} ErrorResponse "Сброс отключен конфигурацией"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/reset [post]
func (h *SystemHandler) HandleReset(c *gin.Context) {
	if !h.cfg.ResetEnabled {
		SendJSONError(c, http.StatusForbidden, "сброс данных отключен конфигурацией")
		return
	}

	if err := h.ingest.Reset(c.Request.Context()); err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось очистить данные загрузок")
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{"message": "данные загрузок очищены"})
}
