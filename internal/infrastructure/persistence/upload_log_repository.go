package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"raisserver/database"
	"raisserver/internal/domain/repositories"
)

// uploadLogRepository реализация журнала загрузок
// Записи журнала никогда не удаляются обычным путем: это аудиторский след
type uploadLogRepository struct {
	db *database.RaisDB
}

// NewUploadLogRepository создает новый репозиторий журнала загрузок
func NewUploadLogRepository(db *database.RaisDB) repositories.UploadLogRepository {
	return &uploadLogRepository{
		db: db,
	}
}

const uploadLogColumns = `id, uuid, session_uuid, file_name, file_size_bytes, file_hash,
	detected_type, confidence, status, rows_total, records_valid, records_invalid,
	defect_count, findings, error_message, started_at, completed_at, created_at, updated_at`

// Create создает журнальную запись файла.
// Уникальность file_hash отсекает повторную загрузку тех же байт на уровне БД
func (r *uploadLogRepository) Create(ctx context.Context, upload *repositories.UploadLog) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO upload_logs (uuid, session_uuid, file_name, file_size_bytes, file_hash,
			detected_type, confidence, status, rows_total, records_valid, records_invalid,
			defect_count, findings, error_message, started_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.GetDB().ExecContext(ctx, query,
		upload.UUID,
		upload.SessionUUID,
		upload.FileName,
		upload.FileSizeBytes,
		upload.FileHash,
		upload.DetectedType,
		upload.Confidence,
		upload.Status,
		upload.RowsTotal,
		upload.RecordsValid,
		upload.RecordsInvalid,
		upload.DefectCount,
		upload.FindingsJSON,
		upload.ErrorMessage,
		upload.StartedAt,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload log: %w", err)
	}

	id, err := res.LastInsertId()
	if err == nil {
		upload.ID = id
	}
	upload.CreatedAt = now
	upload.UpdatedAt = now

	return nil
}

// GetByUUID возвращает журнальную запись по UUID
func (r *uploadLogRepository) GetByUUID(ctx context.Context, uuid string) (*repositories.UploadLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM upload_logs WHERE uuid = ?`, uploadLogColumns)

	upload, err := scanUploadLog(r.db.GetDB().QueryRowContext(ctx, query, uuid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("upload %s: %w", uuid, repositories.ErrUploadNotFound)
		}
		return nil, fmt.Errorf("failed to get upload log: %w", err)
	}

	return upload, nil
}

// GetByHash возвращает журнальную запись по хешу содержимого файла.
// Используется дедупликацией до разбора файла
func (r *uploadLogRepository) GetByHash(ctx context.Context, hash string) (*repositories.UploadLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM upload_logs WHERE file_hash = ? ORDER BY id LIMIT 1`, uploadLogColumns)

	upload, err := scanUploadLog(r.db.GetDB().QueryRowContext(ctx, query, hash))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get upload log by hash: %w", err)
	}

	return upload, nil
}

// Update обновляет изменяемые поля журнальной записи
func (r *uploadLogRepository) Update(ctx context.Context, upload *repositories.UploadLog) error {
	query := `
		UPDATE upload_logs
		SET detected_type = ?,
		    confidence = ?,
		    status = ?,
		    rows_total = ?,
		    records_valid = ?,
		    records_invalid = ?,
		    defect_count = ?,
		    findings = ?,
		    error_message = ?,
		    completed_at = ?,
		    updated_at = ?
		WHERE uuid = ?
	`

	var completedAt interface{}
	if upload.CompletedAt != nil {
		completedAt = *upload.CompletedAt
	}

	_, err := r.db.GetDB().ExecContext(ctx, query,
		upload.DetectedType,
		upload.Confidence,
		upload.Status,
		upload.RowsTotal,
		upload.RecordsValid,
		upload.RecordsInvalid,
		upload.DefectCount,
		upload.FindingsJSON,
		upload.ErrorMessage,
		completedAt,
		time.Now().UTC(),
		upload.UUID,
	)
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}

	return nil
}

// List возвращает журнальные записи с фильтрацией и пагинацией
func (r *uploadLogRepository) List(ctx context.Context, filter repositories.UploadLogFilter) ([]repositories.UploadLog, int64, error) {
	where, args := buildUploadLogWhere(filter)

	countQuery := `SELECT COUNT(*) FROM upload_logs` + where
	var total int64
	if err := r.db.GetDB().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count upload logs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM upload_logs%s%s`, uploadLogColumns, where, buildUploadLogOrder(filter))

	listArgs := args
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		listArgs = append(append([]interface{}{}, args...), filter.Limit, offset)
	}

	rows, err := r.db.GetDB().QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list upload logs: %w", err)
	}
	defer rows.Close()

	uploads := make([]repositories.UploadLog, 0)
	for rows.Next() {
		upload, err := scanUploadLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan upload log: %w", err)
		}
		uploads = append(uploads, *upload)
	}

	return uploads, total, rows.Err()
}

// GetBySession возвращает журнальные записи одной сессии загрузки
func (r *uploadLogRepository) GetBySession(ctx context.Context, sessionUUID string) ([]repositories.UploadLog, error) {
	uploads, _, err := r.List(ctx, repositories.UploadLogFilter{SessionUUID: sessionUUID})
	return uploads, err
}

// GetStatistics возвращает агрегированную статистику журнала
func (r *uploadLogRepository) GetStatistics(ctx context.Context) (*repositories.UploadStatistics, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(records_valid), 0),
		       COALESCE(SUM(records_invalid), 0),
		       COALESCE(AVG(rows_total), 0)
		FROM upload_logs
	`

	stats := &repositories.UploadStatistics{}
	err := r.db.GetDB().QueryRowContext(ctx, query,
		repositories.StatusCompleted, repositories.StatusPartial, repositories.StatusFailed,
	).Scan(
		&stats.TotalFiles,
		&stats.CompletedFiles,
		&stats.PartialFiles,
		&stats.FailedFiles,
		&stats.RecordsValid,
		&stats.RecordsInvalid,
		&stats.AverageRows,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload statistics: %w", err)
	}

	return stats, nil
}

// DeleteAll удаляет журнал целиком (используется только полным сбросом данных)
func (r *uploadLogRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM upload_logs`); err != nil {
		return fmt.Errorf("failed to delete upload logs: %w", err)
	}
	return nil
}

// Вспомогательные методы

func buildUploadLogWhere(filter repositories.UploadLogFilter) (string, []interface{}) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if len(filter.Status) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Status)), ",")
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", placeholders))
		for _, status := range filter.Status {
			args = append(args, status)
		}
	}
	if filter.FileType != "" {
		conditions = append(conditions, "detected_type = ?")
		args = append(args, filter.FileType)
	}
	if filter.SessionUUID != "" {
		conditions = append(conditions, "session_uuid = ?")
		args = append(args, filter.SessionUUID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *filter.DateTo)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func buildUploadLogOrder(filter repositories.UploadLogFilter) string {
	column := "created_at"
	switch filter.OrderBy {
	case "file_name", "status", "detected_type", "rows_total":
		column = filter.OrderBy
	}

	direction := "DESC"
	if strings.EqualFold(filter.OrderDirection, "asc") {
		direction = "ASC"
	}

	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
}

func scanUploadLog(row rowScanner) (*repositories.UploadLog, error) {
	var u repositories.UploadLog
	var sessionUUID, detectedType, findings, errorMessage sql.NullString
	var startedAt, createdAt, updatedAt, completedAt sql.NullTime

	err := row.Scan(
		&u.ID, &u.UUID, &sessionUUID, &u.FileName, &u.FileSizeBytes, &u.FileHash,
		&detectedType, &u.Confidence, &u.Status, &u.RowsTotal, &u.RecordsValid, &u.RecordsInvalid,
		&u.DefectCount, &findings, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.SessionUUID = sessionUUID.String
	u.DetectedType = detectedType.String
	u.FindingsJSON = findings.String
	u.ErrorMessage = errorMessage.String
	u.StartedAt = startedAt.Time
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	if completedAt.Valid {
		t := completedAt.Time
		u.CompletedAt = &t
	}

	return &u, nil
}
