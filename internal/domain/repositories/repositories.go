package repositories

import (
	"context"
	"time"
)

// UploadSessionRepository интерфейс для работы с сессиями загрузки
type UploadSessionRepository interface {
	// Основные операции
	Create(ctx context.Context, session *UploadSession) error
	GetByUUID(ctx context.Context, uuid string) (*UploadSession, error)
	Update(ctx context.Context, session *UploadSession) error

	// Прогресс и жизненный цикл
	UpdateProgress(ctx context.Context, uuid string, progress float64, stage, file string) error
	MarkStatus(ctx context.Context, uuid string, status string, errorMessage string) error
	RequestCancel(ctx context.Context, uuid string) error
	IsCancelRequested(ctx context.Context, uuid string) (bool, error)

	// Обслуживание
	MarkStaleFailed(ctx context.Context, olderThan time.Time) (int64, error)
	GetRecent(ctx context.Context, limit int) ([]UploadSession, error)
	DeleteAll(ctx context.Context) error
}

// UploadLogRepository интерфейс журнала файлов; записи не удаляются (кроме reset)
type UploadLogRepository interface {
	Create(ctx context.Context, upload *UploadLog) error
	GetByUUID(ctx context.Context, uuid string) (*UploadLog, error)
	GetByHash(ctx context.Context, hash string) (*UploadLog, error)
	Update(ctx context.Context, upload *UploadLog) error

	// Поиск и статистика
	List(ctx context.Context, filter UploadLogFilter) ([]UploadLog, int64, error)
	GetBySession(ctx context.Context, sessionUUID string) ([]UploadLog, error)
	GetStatistics(ctx context.Context) (*UploadStatistics, error)

	DeleteAll(ctx context.Context) error
}

// SummaryRepository интерфейс нормализованных сводок (upsert по естественному ключу)
type SummaryRepository interface {
	UpsertProduction(ctx context.Context, summary *ProductionSummary) error
	UpsertStageInspection(ctx context.Context, summary *StageInspectionSummary) error

	ListProduction(ctx context.Context, filter SummaryFilter) ([]ProductionSummary, error)
	ListStageInspections(ctx context.Context, filter SummaryFilter) ([]StageInspectionSummary, error)
	GetByUpload(ctx context.Context, uploadUUID string) ([]ProductionSummary, []StageInspectionSummary, error)

	DeleteAll(ctx context.Context) error
}

// DefectRepository интерфейс фактов дефектов (append-only)
type DefectRepository interface {
	BatchInsert(ctx context.Context, occurrences []DefectOccurrence) error

	List(ctx context.Context, filter DefectFilter) ([]DefectOccurrence, int64, error)
	GetByUpload(ctx context.Context, uploadUUID string) ([]DefectOccurrence, error)
	TopCodes(ctx context.Context, filter DefectFilter, limit int) ([]DefectTotal, error)

	DeleteAll(ctx context.Context) error
}

// RollupRepository интерфейс месячных сводов (обновление отложенное, не критичное)
type RollupRepository interface {
	// MarkDirty помечает месяцы к пересчету после коммита загрузки
	MarkDirty(ctx context.Context, months []string) error
	// RefreshDirty пересчитывает все помеченные месяцы; возвращает число обновленных
	RefreshDirty(ctx context.Context) (int, error)

	ListDefectRollup(ctx context.Context, monthFrom, monthTo string) ([]MonthlyDefectRollup, error)
	ListStageRollup(ctx context.Context, monthFrom, monthTo string) ([]MonthlyStageRollup, error)

	DeleteAll(ctx context.Context) error
}
