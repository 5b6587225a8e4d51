// Package monitoring собирает метрики конвейера загрузки для Prometheus.
package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics метрики конвейера обработки файлов
type PipelineMetrics struct {
	uploadsTotal           *prometheus.CounterVec
	filesProcessedTotal    *prometheus.CounterVec
	rowsAcceptedTotal      prometheus.Counter
	rowsRejectedTotal      prometheus.Counter
	defectOccurrencesTotal prometheus.Counter
	fileProcessingSeconds  *prometheus.HistogramVec
	uploadsInFlight        prometheus.Gauge
	errorsTotal            *prometheus.CounterVec
}

var (
	pipelineMetricsOnce sync.Once
	pipelineMetrics     *PipelineMetrics
)

// Pipeline возвращает общий экземпляр метрик, регистрируя его при первом вызове
func Pipeline() *PipelineMetrics {
	pipelineMetricsOnce.Do(func() {
		pipelineMetrics = NewPipelineMetrics(prometheus.DefaultRegisterer)
	})
	return pipelineMetrics
}

// ResetPipelineMetricsForTest сбрасывает синглтон между тестами
func ResetPipelineMetricsForTest() {
	pipelineMetricsOnce = sync.Once{}
	pipelineMetrics = nil
}

// NewPipelineMetrics создает и регистрирует метрики в переданном реестре
func NewPipelineMetrics(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rais_uploads_total",
			Help: "Total upload sessions by terminal status.",
		},
		[]string{"status"},
	)

	filesProcessedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rais_files_processed_total",
			Help: "Total files processed by detected type and terminal status.",
		},
		[]string{"file_type", "status"},
	)

	rowsAcceptedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rais_rows_accepted_total",
			Help: "Total normalized records accepted by validation.",
		},
	)

	rowsRejectedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rais_rows_rejected_total",
			Help: "Total normalized records rejected by validation.",
		},
	)

	defectOccurrencesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rais_defect_occurrences_total",
			Help: "Total defect occurrences persisted.",
		},
	)

	fileProcessingSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rais_file_processing_seconds",
			Help:    "Wall time spent in each pipeline stage per file.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	uploadsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rais_uploads_in_flight",
			Help: "Upload sessions currently being processed.",
		},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rais_errors_total",
			Help: "Total application errors by type, HTTP code and endpoint.",
		},
		[]string{"type", "code", "endpoint"},
	)

	registerer.MustRegister(
		uploadsTotal,
		filesProcessedTotal,
		rowsAcceptedTotal,
		rowsRejectedTotal,
		defectOccurrencesTotal,
		fileProcessingSeconds,
		uploadsInFlight,
		errorsTotal,
	)

	return &PipelineMetrics{
		uploadsTotal:           uploadsTotal,
		filesProcessedTotal:    filesProcessedTotal,
		rowsAcceptedTotal:      rowsAcceptedTotal,
		rowsRejectedTotal:      rowsRejectedTotal,
		defectOccurrencesTotal: defectOccurrencesTotal,
		fileProcessingSeconds:  fileProcessingSeconds,
		uploadsInFlight:        uploadsInFlight,
		errorsTotal:            errorsTotal,
	}
}

// IncUpload учитывает завершенную сессию загрузки
func (m *PipelineMetrics) IncUpload(status string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
}

// IncFileProcessed учитывает обработанный файл
func (m *PipelineMetrics) IncFileProcessed(fileType, status string) {
	if m == nil {
		return
	}
	if fileType == "" {
		fileType = "unknown"
	}
	m.filesProcessedTotal.WithLabelValues(fileType, status).Inc()
}

// AddRowsAccepted учитывает принятые валидацией записи
func (m *PipelineMetrics) AddRowsAccepted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsAcceptedTotal.Add(float64(n))
}

// AddRowsRejected учитывает отклоненные валидацией записи
func (m *PipelineMetrics) AddRowsRejected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsRejectedTotal.Add(float64(n))
}

// AddDefectOccurrences учитывает сохраненные факты дефектов
func (m *PipelineMetrics) AddDefectOccurrences(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.defectOccurrencesTotal.Add(float64(n))
}

// ObserveStageDuration фиксирует длительность стадии конвейера для файла
func (m *PipelineMetrics) ObserveStageDuration(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.fileProcessingSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// UploadStarted увеличивает счетчик обрабатываемых сессий
func (m *PipelineMetrics) UploadStarted() {
	if m == nil {
		return
	}
	m.uploadsInFlight.Inc()
}

// UploadFinished уменьшает счетчик обрабатываемых сессий
func (m *PipelineMetrics) UploadFinished() {
	if m == nil {
		return
	}
	m.uploadsInFlight.Dec()
}

// IncError учитывает ошибку приложения
func (m *PipelineMetrics) IncError(errType string, code int, endpoint string) {
	if m == nil {
		return
	}
	if errType == "" {
		errType = "UnknownError"
	}
	m.errorsTotal.WithLabelValues(errType, strconv.Itoa(code), endpoint).Inc()
}
