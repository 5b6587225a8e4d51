// Package handlers содержит HTTP обработчики API загрузок и отчетов.
package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"raisserver/internal/api/middleware"
	"raisserver/internal/apperrors"
)

// Response стандартная обертка JSON ответа
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse структура ошибки для документации API
type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"описание ошибки"`
	Timestamp string `json:"timestamp" example:"2025-01-10T12:00:00Z"`
}

// SendJSONResponse отправляет данные в стандартной обертке
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// SendJSONError отправляет ошибку в стандартной обертке и логирует ее
func SendJSONError(c *gin.Context, statusCode int, message string) {
	reqID := middleware.GetRequestIDFromGin(c)
	log.Printf("[API] %s %s -> %d: %s [RequestID: %s]",
		c.Request.Method, c.Request.URL.Path, statusCode, message, reqID)

	c.JSON(statusCode, Response{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// SendAppError отправляет AppError с его HTTP статусом; контекст уходит в лог
func SendAppError(c *gin.Context, appErr *apperrors.AppError) {
	if ctxLine := appErr.GetContext(); ctxLine != "" {
		log.Printf("[API] Error context: %s", ctxLine)
	}
	SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
}

// SendJSONPaginated отправляет страницу списка со счетчиком всех записей
func SendJSONPaginated(c *gin.Context, items interface{}, total int64, limit, offset int) {
	page := map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}
	if limit > 0 {
		page["pages"] = (total + int64(limit) - 1) / int64(limit)
	}

	SendJSONResponse(c, http.StatusOK, page)
}
