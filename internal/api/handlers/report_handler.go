package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"raisserver/internal/application/reporting"
	"raisserver/internal/domain/mapping"
	"raisserver/internal/domain/repositories"
)

// ReportHandler обработчики отчетов по нормализованным данным
type ReportHandler struct {
	reports *reporting.Service
}

// NewReportHandler создает обработчик отчетов
func NewReportHandler(reports *reporting.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// summaryFilterFromQuery собирает фильтр сводок из параметров запроса.
// При ошибке разбора сам отправляет ответ и возвращает false
func summaryFilterFromQuery(c *gin.Context) (repositories.SummaryFilter, bool) {
	var filter repositories.SummaryFilter

	dateFrom, appErr := parseDateQuery(c, "date_from")
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	dateTo, appErr := parseDateQuery(c, "date_to")
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	limit, appErr := parseIntQuery(c, "limit", defaultPageLimit)
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	offset, appErr := parseIntQuery(c, "offset", 0)
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	limit, offset = clampPage(limit, offset)

	filter = repositories.SummaryFilter{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Product:  c.Query("product"),
		Stage:    c.Query("stage"),
		Limit:    limit,
		Offset:   offset,
	}
	return filter, true
}

// HandleProductionSummaries обработчик сводок производства
// @Summary Сводки производства
// @Description Возвращает сводки произведенного и отгруженного количества за период
// @Tags reports
// @Produce json
// @Param date_from query string false "Начало периода (YYYY-MM-DD)"
// @Param date_to query string false "Конец периода (YYYY-MM-DD)"
// @Param product query string false "Фильтр по продукту"
// @Param limit query int false "Размер страницы (по умолчанию 50)"
// @Param offset query int false "Смещение страницы"
// @Success 200 {object} Response{data=[]repositories.ProductionSummary} "Сводки производства"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/summary/production [get]
func (h *ReportHandler) HandleProductionSummaries(c *gin.Context) {
	filter, ok := summaryFilterFromQuery(c)
	if !ok {
		return
	}

	summaries, err := h.reports.ProductionSummaries(c.Request.Context(), filter)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить сводки производства")
		return
	}

	SendJSONResponse(c, http.StatusOK, summaries)
}

// HandleStageSummaries обработчик сводок инспекций этапов
// @Summary Сводки инспекций этапов
// @Description Возвращает сводки инспекций по этапам контроля за период
// @Tags reports
// @Produce json
// @Param date_from query string false "Начало периода (YYYY-MM-DD)"
// @Param date_to query string false "Конец периода (YYYY-MM-DD)"
// @Param stage query string false "Этап контроля (SHOPFLOOR, ASSEMBLY, VISUAL, INTEGRITY)"
// @Param limit query int false "Размер страницы (по умолчанию 50)"
// @Param offset query int false "Смещение страницы"
// @Success 200 {object} Response{data=[]repositories.StageInspectionSummary} "Сводки инспекций"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/summary/stages [get]
func (h *ReportHandler) HandleStageSummaries(c *gin.Context) {
	filter, ok := summaryFilterFromQuery(c)
	if !ok {
		return
	}

	summaries, err := h.reports.StageInspectionSummaries(c.Request.Context(), filter)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить сводки инспекций")
		return
	}

	SendJSONResponse(c, http.StatusOK, summaries)
}

// defectFilterFromQuery собирает фильтр дефектов из параметров запроса
func defectFilterFromQuery(c *gin.Context) (repositories.DefectFilter, bool) {
	var filter repositories.DefectFilter

	dateFrom, appErr := parseDateQuery(c, "date_from")
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	dateTo, appErr := parseDateQuery(c, "date_to")
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	limit, appErr := parseIntQuery(c, "limit", defaultPageLimit)
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	offset, appErr := parseIntQuery(c, "offset", 0)
	if appErr != nil {
		SendAppError(c, appErr)
		return filter, false
	}
	limit, offset = clampPage(limit, offset)

	filter = repositories.DefectFilter{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Stage:    c.Query("stage"),
		Codes:    parseListQuery(c, "codes"),
		Limit:    limit,
		Offset:   offset,
	}
	return filter, true
}

// HandleDefects обработчик фактов дефектов
// @Summary Факты дефектов
// @Description Возвращает страницу фактов дефектов с фильтрами по периоду, этапу и кодам
// @Tags reports
// @Produce json
// @Param date_from query string false "Начало периода (YYYY-MM-DD)"
// @Param date_to query string false "Конец периода (YYYY-MM-DD)"
// @Param stage query string false "Этап контроля"
// @Param codes query string false "Коды дефектов через запятую (COAG,RAISED_WIRE)"
// @Param limit query int false "Размер страницы (по умолчанию 50, максимум 500)"
// @Param offset query int false "Смещение страницы"
// @Success 200 {object} Response "Страница фактов дефектов"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/defects [get]
func (h *ReportHandler) HandleDefects(c *gin.Context) {
	filter, ok := defectFilterFromQuery(c)
	if !ok {
		return
	}

	occurrences, total, err := h.reports.DefectOccurrences(c.Request.Context(), filter)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить факты дефектов")
		return
	}

	SendJSONPaginated(c, occurrences, total, filter.Limit, filter.Offset)
}

// HandleTopDefects обработчик топа кодов дефектов
// @Summary Топ кодов дефектов
// @Description Возвращает коды дефектов с наибольшим суммарным количеством за период
// @Tags reports
// @Produce json
// @Param date_from query string false "Начало периода (YYYY-MM-DD)"
// @Param date_to query string false "Конец периода (YYYY-MM-DD)"
// @Param stage query string false "Этап контроля"
// @Param limit query int false "Количество кодов (по умолчанию 10, максимум 100)"
// @Success 200 {object} Response{data=[]repositories.DefectTotal} "Топ кодов дефектов"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/defects/top [get]
func (h *ReportHandler) HandleTopDefects(c *gin.Context) {
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
	limit, appErr := parseIntQuery(c, "limit", 0)
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}

	filter := repositories.DefectFilter{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Stage:    c.Query("stage"),
	}

	totals, err := h.reports.TopDefectCodes(c.Request.Context(), filter, limit)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить топ дефектов")
		return
	}

	SendJSONResponse(c, http.StatusOK, totals)
}

// HandleDefectCodes обработчик справочника кодов дефектов
// @Summary Справочник кодов дефектов
// @Description Возвращает известные канонические коды дефектов в порядке приоритета распознавания
// @Tags reports
// @Produce json
// @Success 200 {object} Response "Коды дефектов"
// @Router /api/defects/codes [get]
func (h *ReportHandler) HandleDefectCodes(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, gin.H{
		"codes": mapping.KnownDefectCodes(),
	})
}

// HandleDefectRollup обработчик месячного свода дефектов
// @Summary Месячный свод дефектов
// @Description Возвращает материализованный свод дефектов по месяцам, этапам и кодам
// @Tags reports
// @Produce json
// @Param month_from query string false "Первый месяц (YYYY-MM)"
// @Param month_to query string false "Последний месяц (YYYY-MM)"
// @Success 200 {object} Response{data=[]repositories.MonthlyDefectRollup} "Свод дефектов"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/rollup/defects [get]
func (h *ReportHandler) HandleDefectRollup(c *gin.Context) {
	monthFrom, appErr := parseMonthQuery(c, "month_from")
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}
	monthTo, appErr := parseMonthQuery(c, "month_to")
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}

	rollup, err := h.reports.DefectRollup(c.Request.Context(), monthFrom, monthTo)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить свод дефектов")
		return
	}

	SendJSONResponse(c, http.StatusOK, rollup)
}

// HandleStageRollup обработчик месячного свода инспекций
// @Summary Месячный свод инспекций
// @Description Возвращает материализованный свод инспекций по месяцам и этапам с долей брака
// @Tags reports
// @Produce json
// @Param month_from query string false "Первый месяц (YYYY-MM)"
// @Param month_to query string false "Последний месяц (YYYY-MM)"
// @Success 200 {object} Response{data=[]repositories.MonthlyStageRollup} "Свод инспекций"
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/rollup/stages [get]
func (h *ReportHandler) HandleStageRollup(c *gin.Context) {
	monthFrom, appErr := parseMonthQuery(c, "month_from")
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}
	monthTo, appErr := parseMonthQuery(c, "month_to")
	if appErr != nil {
		SendAppError(c, appErr)
		return
	}

	rollup, err := h.reports.StageRollup(c.Request.Context(), monthFrom, monthTo)
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "не удалось получить свод инспекций")
		return
	}

	SendJSONResponse(c, http.StatusOK, rollup)
}
