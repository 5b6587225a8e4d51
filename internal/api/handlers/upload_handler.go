package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"raisserver/internal/apperrors"
	"raisserver/internal/application/ingestion"
	"raisserver/internal/config"
	"raisserver/internal/domain/repositories"
	"raisserver/internal/infrastructure/workers"
)

// Количество последних сессий в сводке статистики
const recentSessionsLimit = 10

// UploadHandler обработчики приема файлов и журнала загрузок
type UploadHandler struct {
	ingest *ingestion.Service
	pool   *workers.Pool
	cfg    *config.Config
}

// NewUploadHandler создает обработчик загрузок
func NewUploadHandler(ingest *ingestion.Service, pool *workers.Pool, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		ingest: ingest,
		pool:   pool,
		cfg:    cfg,
	}
}

// UploadStatsResponse сводка журнала загрузок и последние сессии
type UploadStatsResponse struct {
	Statistics     *repositories.UploadStatistics `json:"statistics"`
	RecentSessions []repositories.UploadSession   `json:"recent_sessions"`
}

// HandleUpload обработчик приема пакета файлов отчетов
// @Summary Загрузить файлы отчетов
// @Description Принимает от 1 до 6 файлов .xlsx или .xls, отсекает повторную загрузку того же содержимого и ставит сессию в очередь фоновой обработки
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Файлы отчетов (поле можно повторять)"
// @Success 202 {object} Response{data=ingestion.SessionReceipt} "Сессия принята в обработку"
// @Success 200 {object} Response{data=ingestion.SessionReceipt} "Все файлы уже были загружены ранее"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 409 {object} ErrorResponse "Конфликт повторной загрузки"
// @Failure 429 {object} ErrorResponse "Превышен лимит загрузок"
// @Failure 503 {object} ErrorResponse "Очередь обработки заполнена"
// @Router /api/upload [post]
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		SendJSONError(c, http.StatusBadRequest, "не удалось разобрать multipart форму")
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		SendJSONError(c, http.StatusBadRequest, "запрос не содержит файлов")
		return
	}
	if len(fileHeaders) > h.cfg.MaxUploadFiles {
		SendJSONError(c, http.StatusBadRequest,
			fmt.Sprintf("слишком много файлов: %d (лимит %d)", len(fileHeaders), h.cfg.MaxUploadFiles))
		return
	}

	inputs := make([]ingestion.FileInput, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		fileName := filepath.Base(fh.Filename)

		// Размер проверяется до чтения, чтобы не буферизовать лишнее
		if fh.Size > h.cfg.MaxFileSizeBytes {
			SendJSONError(c, http.StatusBadRequest,
				fmt.Sprintf("файл %s превышает лимит размера %d байт", fileName, h.cfg.MaxFileSizeBytes))
			return
		}

		src, err := fh.Open()
		if err != nil {
			SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("не удалось прочитать файл %s", fileName))
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("не удалось прочитать файл %s", fileName))
			return
		}

		inputs = append(inputs, ingestion.FileInput{Name: fileName, Data: data})
	}

	receipt, job, err := h.ingest.CreateSession(c.Request.Context(), inputs)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			SendAppError(c, appErr)
			return
		}
		SendJSONError(c, http.StatusInternalServerError, "не удалось принять файлы")
		return
	}

	// Все файлы оказались дубликатами: обрабатывать нечего, сессия уже завершена
	if job == nil {
		SendJSONResponse(c, http.StatusOK, receipt)
		return
	}

	if err := h.pool.Enqueue(job); err != nil {
		h.ingest.AbortSession(c.Request.Context(), job, "ingest queue is full")
		appErr := apperrors.NewServiceUnavailableError("очередь обработки заполнена, повторите попытку позже", err)
		SendAppError(c, appErr)
		return
	}

	SendJSONResponse(c, http.StatusAccepted, receipt)
}

// HandleStatus обработчик запроса состояния сессии загрузки
// @Summary Состояние сессии загрузки
// @Description Возвращает статус сессии, прогресс обработки и журнальные записи всех ее файлов
// @Tags upload
// @Produce json
// @Param id path string true "UUID сессии загрузки"
// @Success 200 {object} Response{data=ingestion.SessionStatus} "Состояние сессии"
// @Failure 404 {object} ErrorResponse "Сессия не найдена"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/upload/status/{id} [get]
func (h *UploadHandler) HandleStatus(c *gin.Context) {
	status, err := h.ingest.GetSessionStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			SendAppError(c, appErr)
			return
		}
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить состояние сессии")
		return
	}

	SendJSONResponse(c, http.StatusOK, status)
}

// HandleHistory обработчик журнала загрузок
// @Summary Журнал загрузок
// @Description Возвращает страницу журнала загрузок с фильтрами по статусу, типу файла и датам
// @Tags upload
// @Produce json
// @Param status query string false "Статусы через запятую (pending,processing,completed,partial,failed)"
// @Param file_type query string false "Обнаруженный тип файла"
// @Param session_uuid query string false "UUID сессии загрузки"
// @Param date_from query string false "Начало периода (YYYY-MM-DD)"
// @Param date_to query string false "Конец периода (YYYY-MM-DD)"
// @Param limit query int false "Размер страницы (по умолчанию 50, максимум 500)"
// @Param offset query int false "Смещение страницы"
// @Success 200 {object} Response "Страница журнала загрузок"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/upload/history [get]
func (h *UploadHandler) HandleHistory(c *gin.Context) {
	limit, appErr := parseIntQuery(c, "limit", defaultPageLimit)
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}
	offset, appErr := parseIntQuery(c, "offset", 0)
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}
	limit, offset = clampPage(limit, offset)

	dateFrom, appErr := parseDateQuery(c, "date_from")
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}
	dateTo, appErr := parseDateQuery(c, "date_to")
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}

	filter := repositories.UploadLogFilter{
		Status:      parseListQuery(c, "status"),
		FileType:    c.Query("file_type"),
		SessionUUID: c.Query("session_uuid"),
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		Limit:       limit,
		Offset:      offset,
	}

	logs, total, err := h.ingest.History(c.Request.Context(), filter)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить журнал загрузок")
		return
	}

	SendJSONPaginated(c, logs, total, limit, offset)
}

// HandleStats обработчик сводной статистики загрузок
// @Summary Статистика загрузок
// @Description Возвращает агрегированную статистику журнала и последние сессии загрузки
// @Tags upload
// @Produce json
// @Success 200 {object} Response{data=UploadStatsResponse} "Статистика загрузок"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/upload/stats [get]
func (h *UploadHandler) HandleStats(c *gin.Context) {
	stats, err := h.ingest.GetStatistics(c.Request.Context())
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить статистику загрузок")
		return
	}

	recent, err := h.ingest.GetRecentSessions(c.Request.Context(), recentSessionsLimit)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить последние сессии")
		return
	}

	SendJSONResponse(c, http.StatusOK, UploadStatsResponse{
		Statistics:     stats,
		RecentSessions: recent,
	})
}

// HandleCancel обработчик запроса отмены сессии
// @Summary Отменить сессию загрузки
// @Description Взводит флаг отмены; конвейер прерывает обработку на границе следующей стадии
// @Tags upload
// @Produce json
// @Param id path string true "UUID сессии загрузки"
// @Success 200 {object} Response "Отмена запрошена"
// @Failure 404 {object} ErrorResponse "Сессия не найдена"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/upload/cancel/{id} [post]
func (h *UploadHandler) HandleCancel(c *gin.Context) {
	sessionUUID := c.Param("id")
	if err := h.ingest.Cancel(c.Request.Context(), sessionUUID); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			SendAppError(c, appErr)
			return
		}
		SendJSONError(c, http.StatusInternalServerError, "не удалось запросить отмену")
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"message":      "отмена запрошена",
		"session_uuid": sessionUUID,
	})
}

// HandleUploadData обработчик выдачи нормализованных данных одной загрузки
// @Summary Данные одной загрузки
// @Description Возвращает журнальную запись файла, полученные из него сводки, факты дефектов и замечания конвейера
// @Tags upload
// @Produce json
// @Param id path string true "UUID загрузки"
// @Success 200 {object} Response{data=ingestion.UploadData} "Данные загрузки"
// @Failure 404 {object} ErrorResponse "Загрузка не найдена"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/upload/{id}/data [get]
func (h *UploadHandler) HandleUploadData(c *gin.Context) {
	data, err := h.ingest.GetUploadData(c.Request.Context(), c.Param("id"))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			SendAppError(c, appErr)
			return
		}
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить данные загрузки")
		return
	}

	SendJSONResponse(c, http.StatusOK, data)
}
