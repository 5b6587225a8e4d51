package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raisserver/internal/apperrors"
	"raisserver/internal/domain/repositories"
)

// GetSessionStatus возвращает сессию загрузки и журнальные записи ее файлов
func (s *Service) GetSessionStatus(ctx context.Context, sessionUUID string) (*SessionStatus, error) {
	session, err := s.sessions.GetByUUID(ctx, sessionUUID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, apperrors.NewNotFoundError("сессия загрузки не найдена", err)
		}
		return nil, apperrors.NewInternalError("failed to load upload session", err)
	}

	files, err := s.uploads.GetBySession(ctx, sessionUUID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load session files", err)
	}

	return &SessionStatus{Session: session, Files: files}, nil
}

// Cancel взводит флаг отмены сессии; конвейер проверяет его между стадиями
func (s *Service) Cancel(ctx context.Context, sessionUUID string) error {
	if err := s.sessions.RequestCancel(ctx, sessionUUID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return apperrors.NewNotFoundError("сессия загрузки не найдена", err)
		}
		return apperrors.NewInternalError("failed to request cancellation", err)
	}
	return nil
}

// History возвращает страницу журнала загрузок по фильтру
func (s *Service) History(ctx context.Context, filter repositories.UploadLogFilter) ([]repositories.UploadLog, int64, error) {
	logs, total, err := s.uploads.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list upload history: %w", err)
	}
	return logs, total, nil
}

// GetUploadData возвращает журнальную запись файла вместе со всеми записями,
// которые из него были получены
func (s *Service) GetUploadData(ctx context.Context, uploadUUID string) (*UploadData, error) {
	logEntry, err := s.uploads.GetByUUID(ctx, uploadUUID)
	if err != nil {
		if errors.Is(err, repositories.ErrUploadNotFound) {
			return nil, apperrors.NewNotFoundError("загрузка не найдена", err)
		}
		return nil, apperrors.NewInternalError("failed to load upload", err)
	}

	production, inspections, err := s.summaries.GetByUpload(ctx, uploadUUID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load upload summaries", err)
	}

	defects, err := s.defects.GetByUpload(ctx, uploadUUID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load upload defects", err)
	}

	return &UploadData{
		Upload:      logEntry,
		Production:  production,
		Inspections: inspections,
		Defects:     defects,
		Findings:    unmarshalFindings(logEntry.FindingsJSON),
	}, nil
}

// GetStatistics возвращает агрегированную статистику журнала загрузок
func (s *Service) GetStatistics(ctx context.Context) (*repositories.UploadStatistics, error) {
	stats, err := s.uploads.GetStatistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload statistics: %w", err)
	}
	return stats, nil
}

// GetRecentSessions возвращает последние сессии загрузки
func (s *Service) GetRecentSessions(ctx context.Context, limit int) ([]repositories.UploadSession, error) {
	sessions, err := s.sessions.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	return sessions, nil
}

// Reset очищает все данные загрузок; порядок удаления учитывает внешние ключи
func (s *Service) Reset(ctx context.Context) error {
	if err := s.rollups.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear rollups: %w", err)
	}
	if err := s.defects.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear defect occurrences: %w", err)
	}
	if err := s.summaries.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear summaries: %w", err)
	}
	if err := s.uploads.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear upload logs: %w", err)
	}
	if err := s.sessions.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear upload sessions: %w", err)
	}
	return nil
}

// SweepStale помечает зависшие сессии failed и повторяет обновление сводов
func (s *Service) SweepStale(ctx context.Context, olderThan time.Time) (int64, error) {
	n, err := s.sessions.MarkStaleFailed(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale sessions: %w", err)
	}
	return n, nil
}
