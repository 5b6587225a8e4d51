package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"raisserver/database"
	"raisserver/internal/domain/repositories"
)

// sessionRepository реализация репозитория сессий загрузки
// Адаптер между domain интерфейсом и infrastructure (database.RaisDB)
type sessionRepository struct {
	db *database.RaisDB
}

// NewUploadSessionRepository создает новый репозиторий сессий загрузки
func NewUploadSessionRepository(db *database.RaisDB) repositories.UploadSessionRepository {
	return &sessionRepository{
		db: db,
	}
}

// Create создает новую сессию загрузки
func (r *sessionRepository) Create(ctx context.Context, session *repositories.UploadSession) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO upload_sessions (uuid, status, files_total, files_done, progress,
			current_stage, current_file, cancel_requested, error_message,
			started_at, last_activity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.GetDB().ExecContext(ctx, query,
		session.UUID,
		session.Status,
		session.FilesTotal,
		session.FilesDone,
		session.Progress,
		session.CurrentStage,
		session.CurrentFile,
		boolToInt(session.CancelFlag),
		session.ErrorMessage,
		session.StartedAt,
		now,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload session: %w", err)
	}

	id, err := res.LastInsertId()
	if err == nil {
		session.ID = id
	}
	session.CreatedAt = now
	session.UpdatedAt = now

	return nil
}

// GetByUUID возвращает сессию по UUID
func (r *sessionRepository) GetByUUID(ctx context.Context, uuid string) (*repositories.UploadSession, error) {
	query := `
		SELECT id, uuid, status, files_total, files_done, progress,
			current_stage, current_file, cancel_requested, error_message,
			started_at, completed_at, last_activity, created_at, updated_at
		FROM upload_sessions
		WHERE uuid = ?
	`

	session, err := scanSession(r.db.GetDB().QueryRowContext(ctx, query, uuid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s: %w", uuid, repositories.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to get upload session: %w", err)
	}

	return session, nil
}

// Update обновляет все изменяемые поля сессии
func (r *sessionRepository) Update(ctx context.Context, session *repositories.UploadSession) error {
	query := `
		UPDATE upload_sessions
		SET status = ?,
		    files_total = ?,
		    files_done = ?,
		    progress = ?,
		    current_stage = ?,
		    current_file = ?,
		    error_message = ?,
		    completed_at = ?,
		    last_activity = ?,
		    updated_at = ?
		WHERE uuid = ?
	`

	var completedAt interface{}
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	now := time.Now().UTC()
	_, err := r.db.GetDB().ExecContext(ctx, query,
		session.Status,
		session.FilesTotal,
		session.FilesDone,
		session.Progress,
		session.CurrentStage,
		session.CurrentFile,
		session.ErrorMessage,
		completedAt,
		now,
		now,
		session.UUID,
	)
	if err != nil {
		return fmt.Errorf("failed to update upload session: %w", err)
	}

	return nil
}

// UpdateProgress обновляет прогресс и текущую позицию конвейера
func (r *sessionRepository) UpdateProgress(ctx context.Context, uuid string, progress float64, stage, file string) error {
	query := `
		UPDATE upload_sessions
		SET progress = ?,
		    current_stage = ?,
		    current_file = ?,
		    last_activity = ?,
		    updated_at = ?
		WHERE uuid = ?
	`

	now := time.Now().UTC()
	_, err := r.db.GetDB().ExecContext(ctx, query, progress, stage, file, now, now, uuid)
	if err != nil {
		return fmt.Errorf("failed to update session progress: %w", err)
	}

	return nil
}

// MarkStatus переводит сессию в конечный или промежуточный статус.
// Для конечных статусов также проставляется completed_at
func (r *sessionRepository) MarkStatus(ctx context.Context, uuid string, status string, errorMessage string) error {
	now := time.Now().UTC()

	var completedAt interface{}
	switch status {
	case repositories.StatusCompleted, repositories.StatusPartial, repositories.StatusFailed:
		completedAt = now
	}

	query := `
		UPDATE upload_sessions
		SET status = ?,
		    error_message = ?,
		    completed_at = COALESCE(?, completed_at),
		    last_activity = ?,
		    updated_at = ?
		WHERE uuid = ?
	`

	_, err := r.db.GetDB().ExecContext(ctx, query, status, errorMessage, completedAt, now, now, uuid)
	if err != nil {
		return fmt.Errorf("failed to mark session status: %w", err)
	}

	return nil
}

// RequestCancel взводит флаг отмены; обработчик проверяет его между стадиями
func (r *sessionRepository) RequestCancel(ctx context.Context, uuid string) error {
	query := `
		UPDATE upload_sessions
		SET cancel_requested = 1,
		    last_activity = ?,
		    updated_at = ?
		WHERE uuid = ?
	`

	now := time.Now().UTC()
	res, err := r.db.GetDB().ExecContext(ctx, query, now, now, uuid)
	if err != nil {
		return fmt.Errorf("failed to request session cancel: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("session %s: %w", uuid, repositories.ErrSessionNotFound)
	}

	return nil
}

// IsCancelRequested читает флаг отмены сессии
func (r *sessionRepository) IsCancelRequested(ctx context.Context, uuid string) (bool, error) {
	var flag int
	query := `SELECT cancel_requested FROM upload_sessions WHERE uuid = ?`
	err := r.db.GetDB().QueryRowContext(ctx, query, uuid).Scan(&flag)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("session %s: %w", uuid, repositories.ErrSessionNotFound)
		}
		return false, fmt.Errorf("failed to read cancel flag: %w", err)
	}

	return flag != 0, nil
}

// MarkStaleFailed закрывает зависшие сессии, не подававшие признаков жизни.
// Возвращает число закрытых сессий
func (r *sessionRepository) MarkStaleFailed(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE upload_sessions
		SET status = ?,
		    error_message = 'processing timed out',
		    completed_at = ?,
		    updated_at = ?
		WHERE status = ? AND last_activity < ?
	`

	now := time.Now().UTC()
	res, err := r.db.GetDB().ExecContext(ctx, query,
		repositories.StatusFailed, now, now, repositories.StatusProcessing, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale sessions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count stale sessions: %w", err)
	}

	return affected, nil
}

// GetRecent возвращает последние сессии по времени создания
func (r *sessionRepository) GetRecent(ctx context.Context, limit int) ([]repositories.UploadSession, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, uuid, status, files_total, files_done, progress,
			current_stage, current_file, cancel_requested, error_message,
			started_at, completed_at, last_activity, created_at, updated_at
		FROM upload_sessions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.GetDB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]repositories.UploadSession, 0, limit)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

// DeleteAll удаляет все сессии (используется только полным сбросом данных)
func (r *sessionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM upload_sessions`); err != nil {
		return fmt.Errorf("failed to delete upload sessions: %w", err)
	}
	return nil
}

// Вспомогательные методы

// rowScanner объединяет sql.Row и sql.Rows для общих сканеров
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*repositories.UploadSession, error) {
	var s repositories.UploadSession
	var currentStage, currentFile, errorMessage sql.NullString
	var cancelFlag int
	var startedAt, lastActivity, createdAt, updatedAt sql.NullTime
	var completedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.UUID, &s.Status, &s.FilesTotal, &s.FilesDone, &s.Progress,
		&currentStage, &currentFile, &cancelFlag, &errorMessage,
		&startedAt, &completedAt, &lastActivity, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CurrentStage = currentStage.String
	s.CurrentFile = currentFile.String
	s.CancelFlag = cancelFlag != 0
	s.ErrorMessage = errorMessage.String
	s.StartedAt = startedAt.Time
	s.LastActivity = lastActivity.Time
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}

	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
