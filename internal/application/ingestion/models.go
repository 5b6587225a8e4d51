package ingestion

import (
	"raisserver/internal/domain/repositories"
)

// FileInput файл из multipart запроса, уже прочитанный в память
type FileInput struct {
	Name string
	Data []byte
}

// FileReceipt результат приема одного файла.
// Для уже известного содержимого Exists=true и UploadID первой загрузки
type FileReceipt struct {
	FileName string `json:"file_name"`
	UploadID string `json:"upload_id"`
	Exists   bool   `json:"exists"`
}

// SessionReceipt квитанция приема пакета файлов
type SessionReceipt struct {
	SessionUUID string        `json:"session_uuid"`
	Files       []FileReceipt `json:"files"`
}

// Job задание на фоновую обработку сессии.
// Байты файлов живут в памяти до завершения; архив хранит копию
type Job struct {
	SessionUUID string
	Files       []FileJob
}

// FileJob один файл задания
type FileJob struct {
	LogUUID  string
	FileName string
	Hash     string
	Data     []byte
}

// SessionStatus состояние сессии и журналы ее файлов для API статуса
type SessionStatus struct {
	Session *repositories.UploadSession `json:"session"`
	Files   []repositories.UploadLog    `json:"files"`
}

// UploadData нормализованные записи, произведенные одной загрузкой
type UploadData struct {
	Upload      *repositories.UploadLog               `json:"upload"`
	Production  []repositories.ProductionSummary      `json:"production_summaries"`
	Inspections []repositories.StageInspectionSummary `json:"stage_inspection_summaries"`
	Defects     []repositories.DefectOccurrence       `json:"defect_occurrences"`
	Findings    []repositories.Finding                `json:"findings"`
}
