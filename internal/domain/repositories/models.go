package repositories

import (
	"time"
)

// ============================================================================
// Upload Session Models
// ============================================================================

// Статусы сессий загрузки и журнальных записей файлов
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusPartial    = "partial"
	StatusFailed     = "failed"
)

// UploadSession представляет одну сессию загрузки (до 6 файлов за запрос)
type UploadSession struct {
	ID            int64      `json:"id"`
	UUID          string     `json:"uuid"`
	Status        string     `json:"status"`
	FilesTotal    int        `json:"files_total"`
	FilesDone     int        `json:"files_done"`
	Progress      float64    `json:"progress"`
	CurrentStage  string     `json:"current_stage,omitempty"`
	CurrentFile   string     `json:"current_file,omitempty"`
	CancelFlag    bool       `json:"cancel_requested"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	LastActivity  time.Time  `json:"last_activity_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ============================================================================
// Upload Log Models (журнал файлов, append-only)
// ============================================================================

// UploadLog — журнальная запись одного файла; записи никогда не удаляются
type UploadLog struct {
	ID             int64      `json:"id"`
	UUID           string     `json:"uuid"`
	SessionUUID    string     `json:"session_uuid"`
	FileName       string     `json:"file_name"`
	FileSizeBytes  int64      `json:"file_size_bytes"`
	FileHash       string     `json:"file_hash"`
	DetectedType   string     `json:"detected_file_type"`
	Confidence     float64    `json:"classification_confidence"`
	Status         string     `json:"status"`
	RowsTotal      int        `json:"rows_total"`
	RecordsValid   int        `json:"records_valid"`
	RecordsInvalid int        `json:"records_invalid"`
	DefectCount    int        `json:"defect_count"`
	FindingsJSON   string     `json:"-"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// UploadLogFilter фильтр для поиска по журналу загрузок
type UploadLogFilter struct {
	Status         []string
	FileType       string
	SessionUUID    string
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
	OrderBy        string
	OrderDirection string
}

// UploadStatistics агрегированная статистика журнала загрузок
type UploadStatistics struct {
	TotalFiles     int64   `json:"total_files"`
	CompletedFiles int64   `json:"completed_files"`
	PartialFiles   int64   `json:"partial_files"`
	FailedFiles    int64   `json:"failed_files"`
	RecordsValid   int64   `json:"records_valid"`
	RecordsInvalid int64   `json:"records_invalid"`
	AverageRows    float64 `json:"average_rows"`
}

// ============================================================================
// Normalized Data Models
// ============================================================================

// Гранулярность даты итоговой записи
const (
	GranularityDay   = "day"
	GranularityMonth = "month"
)

// Этапы контроля качества
const (
	StageShopfloor = "SHOPFLOOR"
	StageAssembly  = "ASSEMBLY"
	StageVisual    = "VISUAL"
	StageIntegrity = "INTEGRITY"
)

// ProductionSummary сводка производства за дату (или месяц) и продукт.
// Естественный ключ (summary_date, product); повторная загрузка обновляет строку.
type ProductionSummary struct {
	ID            int64     `json:"id"`
	SummaryDate   time.Time `json:"summary_date"`
	Granularity   string    `json:"granularity"`
	Product       string    `json:"product,omitempty"`
	ProducedQty   float64   `json:"produced_quantity"`
	DispatchedQty float64   `json:"dispatched_quantity"`
	SourceFile    string    `json:"source_file"`
	SourceSheet   string    `json:"source_sheet"`
	SourceRows    []int     `json:"source_row_numbers"`
	UploadUUID    string    `json:"upload_uuid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StageInspectionSummary сводка инспекции этапа за дату.
// Естественный ключ (summary_date, stage). Инвариант: inspected >= accepted + rejected + hold.
type StageInspectionSummary struct {
	ID           int64     `json:"id"`
	SummaryDate  time.Time `json:"summary_date"`
	Granularity  string    `json:"granularity"`
	Stage        string    `json:"stage"`
	ReceivedQty  float64   `json:"received_quantity"`
	InspectedQty float64   `json:"inspected_quantity"`
	AcceptedQty  float64   `json:"accepted_quantity"`
	RejectedQty  float64   `json:"rejected_quantity"`
	HoldQty      float64   `json:"hold_quantity"`
	SourceFile   string    `json:"source_file"`
	SourceSheet  string    `json:"source_sheet"`
	SourceRows   []int     `json:"source_row_numbers"`
	UploadUUID   string    `json:"upload_uuid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefectOccurrence факт дефекта; записи только добавляются, с полной провенансией
type DefectOccurrence struct {
	ID           int64     `json:"id"`
	OccurredOn   time.Time `json:"occurred_on"`
	Granularity  string    `json:"granularity"`
	Stage        string    `json:"stage"`
	DefectCode   string    `json:"defect_code"`
	Quantity     float64   `json:"quantity"`
	UploadUUID   string    `json:"upload_uuid"`
	SourceFile   string    `json:"source_file"`
	SourceSheet  string    `json:"source_sheet"`
	SourceRow    int       `json:"source_row"`
	SourceColumn string    `json:"source_column"`
	CreatedAt    time.Time `json:"created_at"`
}

// SummaryFilter фильтр выборки сводок
type SummaryFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Product  string
	Stage    string
	Limit    int
	Offset   int
}

// DefectFilter фильтр выборки фактов дефектов
type DefectFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Stage    string
	Codes    []string
	Limit    int
	Offset   int
}

// DefectTotal суммарное количество по коду дефекта
type DefectTotal struct {
	DefectCode string  `json:"defect_code"`
	Quantity   float64 `json:"quantity"`
	Count      int64   `json:"count"`
}

// ============================================================================
// Finding Models (замечания конвейера, хранятся в журнале файлов как JSON)
// ============================================================================

// Серьезность замечания: error блокирует запись, warning нет
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding замечание конвейера с привязкой к источнику
type Finding struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Sheet    string `json:"sheet,omitempty"`
	Row      int    `json:"row,omitempty"`
	Column   string `json:"column,omitempty"`
}

// ============================================================================
// Monthly Rollup Models (материализованные своды)
// ============================================================================

// MonthlyDefectRollup строка месячного свода дефектов
type MonthlyDefectRollup struct {
	Month       string    `json:"month"` // YYYY-MM
	Stage       string    `json:"stage"`
	DefectCode  string    `json:"defect_code"`
	Quantity    float64   `json:"quantity"`
	Occurrences int64     `json:"occurrences"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// MonthlyStageRollup строка месячного свода инспекций
type MonthlyStageRollup struct {
	Month         string    `json:"month"` // YYYY-MM
	Stage         string    `json:"stage"`
	ReceivedQty   float64   `json:"received_quantity"`
	InspectedQty  float64   `json:"inspected_quantity"`
	AcceptedQty   float64   `json:"accepted_quantity"`
	RejectedQty   float64   `json:"rejected_quantity"`
	HoldQty       float64   `json:"hold_quantity"`
	RejectionRate float64   `json:"rejection_rate"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}
