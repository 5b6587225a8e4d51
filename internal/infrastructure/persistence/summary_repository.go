package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"raisserver/database"
	"raisserver/internal/domain/repositories"
)

// dateLayout формат хранения дат сводок: лексикографический порядок совпадает с календарным
const dateLayout = "2006-01-02"

// summaryRepository реализация репозитория нормализованных сводок.
// Записи upsert-ятся по естественному ключу: повторная загрузка исправленного
// файла за тот же период обновляет строки, а не дублирует их
type summaryRepository struct {
	db *database.RaisDB
}

// NewSummaryRepository создает новый репозиторий сводок
func NewSummaryRepository(db *database.RaisDB) repositories.SummaryRepository {
	return &summaryRepository{
		db: db,
	}
}

// UpsertProduction записывает сводку производства по ключу (дата, гранулярность, продукт)
func (r *summaryRepository) UpsertProduction(ctx context.Context, summary *repositories.ProductionSummary) error {
	sourceRows, err := json.Marshal(summary.SourceRows)
	if err != nil {
		return fmt.Errorf("failed to encode source rows: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO production_summaries (summary_date, granularity, product,
			produced_qty, dispatched_qty, source_file, source_sheet, source_rows,
			upload_uuid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(summary_date, granularity, product) DO UPDATE SET
			produced_qty = excluded.produced_qty,
			dispatched_qty = excluded.dispatched_qty,
			source_file = excluded.source_file,
			source_sheet = excluded.source_sheet,
			source_rows = excluded.source_rows,
			upload_uuid = excluded.upload_uuid,
			updated_at = excluded.updated_at
	`

	_, err = r.db.GetDB().ExecContext(ctx, query,
		summary.SummaryDate.Format(dateLayout),
		summary.Granularity,
		summary.Product,
		summary.ProducedQty,
		summary.DispatchedQty,
		summary.SourceFile,
		summary.SourceSheet,
		string(sourceRows),
		summary.UploadUUID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert production summary: %w", err)
	}

	return nil
}

// UpsertStageInspection записывает сводку инспекции по ключу (дата, гранулярность, этап)
func (r *summaryRepository) UpsertStageInspection(ctx context.Context, summary *repositories.StageInspectionSummary) error {
	sourceRows, err := json.Marshal(summary.SourceRows)
	if err != nil {
		return fmt.Errorf("failed to encode source rows: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO stage_inspection_summaries (summary_date, granularity, stage,
			received_qty, inspected_qty, accepted_qty, rejected_qty, hold_qty,
			source_file, source_sheet, source_rows, upload_uuid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(summary_date, granularity, stage) DO UPDATE SET
			received_qty = excluded.received_qty,
			inspected_qty = excluded.inspected_qty,
			accepted_qty = excluded.accepted_qty,
			rejected_qty = excluded.rejected_qty,
			hold_qty = excluded.hold_qty,
			source_file = excluded.source_file,
			source_sheet = excluded.source_sheet,
			source_rows = excluded.source_rows,
			upload_uuid = excluded.upload_uuid,
			updated_at = excluded.updated_at
	`

	_, err = r.db.GetDB().ExecContext(ctx, query,
		summary.SummaryDate.Format(dateLayout),
		summary.Granularity,
		summary.Stage,
		summary.ReceivedQty,
		summary.InspectedQty,
		summary.AcceptedQty,
		summary.RejectedQty,
		summary.HoldQty,
		summary.SourceFile,
		summary.SourceSheet,
		string(sourceRows),
		summary.UploadUUID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stage inspection summary: %w", err)
	}

	return nil
}

// ListProduction возвращает сводки производства за период
func (r *summaryRepository) ListProduction(ctx context.Context, filter repositories.SummaryFilter) ([]repositories.ProductionSummary, error) {
	conditions, args := buildSummaryWhere(filter, "")
	query := `
		SELECT id, summary_date, granularity, product, produced_qty, dispatched_qty,
			source_file, source_sheet, source_rows, upload_uuid, created_at, updated_at
		FROM production_summaries` + conditions + `
		ORDER BY summary_date, granularity, product`
	query += buildSummaryLimit(filter)

	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list production summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]repositories.ProductionSummary, 0)
	for rows.Next() {
		s, err := scanProduction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan production summary: %w", err)
		}
		summaries = append(summaries, *s)
	}

	return summaries, rows.Err()
}

// ListStageInspections возвращает сводки инспекций за период
func (r *summaryRepository) ListStageInspections(ctx context.Context, filter repositories.SummaryFilter) ([]repositories.StageInspectionSummary, error) {
	conditions, args := buildSummaryWhere(filter, filter.Stage)
	query := `
		SELECT id, summary_date, granularity, stage, received_qty, inspected_qty,
			accepted_qty, rejected_qty, hold_qty, source_file, source_sheet,
			source_rows, upload_uuid, created_at, updated_at
		FROM stage_inspection_summaries` + conditions + `
		ORDER BY summary_date, granularity, stage`
	query += buildSummaryLimit(filter)

	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage inspection summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]repositories.StageInspectionSummary, 0)
	for rows.Next() {
		s, err := scanStageInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage inspection summary: %w", err)
		}
		summaries = append(summaries, *s)
	}

	return summaries, rows.Err()
}

// GetByUpload возвращает сводки, записанные конкретной загрузкой
func (r *summaryRepository) GetByUpload(ctx context.Context, uploadUUID string) ([]repositories.ProductionSummary, []repositories.StageInspectionSummary, error) {
	production := make([]repositories.ProductionSummary, 0)

	query := `
		SELECT id, summary_date, granularity, product, produced_qty, dispatched_qty,
			source_file, source_sheet, source_rows, upload_uuid, created_at, updated_at
		FROM production_summaries
		WHERE upload_uuid = ?
		ORDER BY summary_date, granularity, product
	`
	rows, err := r.db.GetDB().QueryContext(ctx, query, uploadUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get production summaries by upload: %w", err)
	}
	for rows.Next() {
		s, err := scanProduction(rows)
		if err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan production summary: %w", err)
		}
		production = append(production, *s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, err
	}
	rows.Close()

	inspections := make([]repositories.StageInspectionSummary, 0)

	query = `
		SELECT id, summary_date, granularity, stage, received_qty, inspected_qty,
			accepted_qty, rejected_qty, hold_qty, source_file, source_sheet,
			source_rows, upload_uuid, created_at, updated_at
		FROM stage_inspection_summaries
		WHERE upload_uuid = ?
		ORDER BY summary_date, granularity, stage
	`
	rows, err = r.db.GetDB().QueryContext(ctx, query, uploadUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get stage inspection summaries by upload: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanStageInspection(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan stage inspection summary: %w", err)
		}
		inspections = append(inspections, *s)
	}

	return production, inspections, rows.Err()
}

// DeleteAll удаляет все сводки (используется только полным сбросом данных)
func (r *summaryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM production_summaries`); err != nil {
		return fmt.Errorf("failed to delete production summaries: %w", err)
	}
	if _, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM stage_inspection_summaries`); err != nil {
		return fmt.Errorf("failed to delete stage inspection summaries: %w", err)
	}
	return nil
}

// Вспомогательные методы

func buildSummaryWhere(filter repositories.SummaryFilter, stage string) (string, []interface{}) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.DateFrom != nil {
		conditions = append(conditions, "summary_date >= ?")
		args = append(args, filter.DateFrom.Format(dateLayout))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "summary_date <= ?")
		args = append(args, filter.DateTo.Format(dateLayout))
	}
	if filter.Product != "" {
		conditions = append(conditions, "product = ?")
		args = append(args, filter.Product)
	}
	if stage != "" {
		conditions = append(conditions, "stage = ?")
		args = append(args, stage)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func buildSummaryLimit(filter repositories.SummaryFilter) string {
	if filter.Limit <= 0 {
		return ""
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
}

func scanProduction(row rowScanner) (*repositories.ProductionSummary, error) {
	var s repositories.ProductionSummary
	var sourceRows string

	err := row.Scan(&s.ID, &s.SummaryDate, &s.Granularity, &s.Product, &s.ProducedQty, &s.DispatchedQty,
		&s.SourceFile, &s.SourceSheet, &sourceRows, &s.UploadUUID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.SourceRows = decodeSourceRows(sourceRows)
	return &s, nil
}

func scanStageInspection(row rowScanner) (*repositories.StageInspectionSummary, error) {
	var s repositories.StageInspectionSummary
	var sourceRows string

	err := row.Scan(&s.ID, &s.SummaryDate, &s.Granularity, &s.Stage, &s.ReceivedQty, &s.InspectedQty,
		&s.AcceptedQty, &s.RejectedQty, &s.HoldQty, &s.SourceFile, &s.SourceSheet,
		&sourceRows, &s.UploadUUID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.SourceRows = decodeSourceRows(sourceRows)
	return &s, nil
}

func decodeSourceRows(value string) []int {
	if value == "" {
		return nil
	}
	var rows []int
	if err := json.Unmarshal([]byte(value), &rows); err != nil {
		return nil
	}
	return rows
}
