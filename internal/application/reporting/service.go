// Package reporting отдает нормализованные данные конвейера: сводки
// производства и инспекций, факты дефектов и месячные своды.
package reporting

import (
	"context"
	"fmt"

	"raisserver/internal/domain/repositories"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Service читающая сторона хранилища; записи остаются за конвейером загрузки
type Service struct {
	summaries repositories.SummaryRepository
	defects   repositories.DefectRepository
	rollups   repositories.RollupRepository
}

// NewService создает сервис отчетов
func NewService(
	summaries repositories.SummaryRepository,
	defects repositories.DefectRepository,
	rollups repositories.RollupRepository,
) *Service {
	return &Service{
		summaries: summaries,
		defects:   defects,
		rollups:   rollups,
	}
}

// ProductionSummaries возвращает сводки производства по фильтру
func (s *Service) ProductionSummaries(ctx context.Context, filter repositories.SummaryFilter) ([]repositories.ProductionSummary, error) {
	summaries, err := s.summaries.ListProduction(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list production summaries: %w", err)
	}
	return summaries, nil
}

// StageInspectionSummaries возвращает сводки инспекций этапов по фильтру
func (s *Service) StageInspectionSummaries(ctx context.Context, filter repositories.SummaryFilter) ([]repositories.StageInspectionSummary, error) {
	summaries, err := s.summaries.ListStageInspections(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage inspection summaries: %w", err)
	}
	return summaries, nil
}

// DefectOccurrences возвращает страницу фактов дефектов по фильтру
func (s *Service) DefectOccurrences(ctx context.Context, filter repositories.DefectFilter) ([]repositories.DefectOccurrence, int64, error) {
	occurrences, total, err := s.defects.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list defect occurrences: %w", err)
	}
	return occurrences, total, nil
}

// TopDefectCodes возвращает топ кодов дефектов по количеству за период.
// Лимит вне диапазона приводится к значению по умолчанию
func (s *Service) TopDefectCodes(ctx context.Context, filter repositories.DefectFilter, limit int) ([]repositories.DefectTotal, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	totals, err := s.defects.TopCodes(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top defect codes: %w", err)
	}
	return totals, nil
}

// DefectRollup возвращает месячный свод дефектов за диапазон месяцев YYYY-MM
func (s *Service) DefectRollup(ctx context.Context, monthFrom, monthTo string) ([]repositories.MonthlyDefectRollup, error) {
	rollup, err := s.rollups.ListDefectRollup(ctx, monthFrom, monthTo)
	if err != nil {
		return nil, fmt.Errorf("failed to list defect rollup: %w", err)
	}
	return rollup, nil
}

// StageRollup возвращает месячный свод инспекций за диапазон месяцев YYYY-MM
func (s *Service) StageRollup(ctx context.Context, monthFrom, monthTo string) ([]repositories.MonthlyStageRollup, error) {
	rollup, err := s.rollups.ListStageRollup(ctx, monthFrom, monthTo)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage rollup: %w", err)
	}
	return rollup, nil
}
