package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"raisserver/database"
	"raisserver/internal/domain/repositories"
)

// defectRepository реализация репозитория фактов дефектов.
// Факты только добавляются: провенансия до исходной ячейки делает каждую
// запись уникальной, обновлений по содержимому нет
type defectRepository struct {
	db *database.RaisDB
}

// NewDefectRepository создает новый репозиторий фактов дефектов
func NewDefectRepository(db *database.RaisDB) repositories.DefectRepository {
	return &defectRepository{
		db: db,
	}
}

// BatchInsert добавляет пакет фактов одной транзакцией
func (r *defectRepository) BatchInsert(ctx context.Context, occurrences []repositories.DefectOccurrence) error {
	if len(occurrences) == 0 {
		return nil
	}

	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin defect batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO defect_occurrences (occurred_on, granularity, stage, defect_code,
			quantity, upload_uuid, source_file, source_sheet, source_row, source_column, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare defect insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range occurrences {
		o := &occurrences[i]
		_, err := stmt.ExecContext(ctx,
			o.OccurredOn.Format(dateLayout),
			o.Granularity,
			o.Stage,
			o.DefectCode,
			o.Quantity,
			o.UploadUUID,
			o.SourceFile,
			o.SourceSheet,
			o.SourceRow,
			o.SourceColumn,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert defect occurrence %s/%s: %w", o.DefectCode, o.OccurredOn.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit defect batch: %w", err)
	}

	return nil
}

// List возвращает факты дефектов с фильтрацией и пагинацией
func (r *defectRepository) List(ctx context.Context, filter repositories.DefectFilter) ([]repositories.DefectOccurrence, int64, error) {
	where, args := buildDefectWhere(filter)

	var total int64
	if err := r.db.GetDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM defect_occurrences`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count defect occurrences: %w", err)
	}

	query := `
		SELECT id, occurred_on, granularity, stage, defect_code, quantity,
			upload_uuid, source_file, source_sheet, source_row, source_column, created_at
		FROM defect_occurrences` + where + `
		ORDER BY occurred_on, stage, defect_code, id`

	listArgs := args
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += ` LIMIT ? OFFSET ?`
		listArgs = append(append([]interface{}{}, args...), filter.Limit, offset)
	}

	rows, err := r.db.GetDB().QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list defect occurrences: %w", err)
	}
	defer rows.Close()

	occurrences := make([]repositories.DefectOccurrence, 0)
	for rows.Next() {
		var o repositories.DefectOccurrence
		err := rows.Scan(&o.ID, &o.OccurredOn, &o.Granularity, &o.Stage, &o.DefectCode, &o.Quantity,
			&o.UploadUUID, &o.SourceFile, &o.SourceSheet, &o.SourceRow, &o.SourceColumn, &o.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan defect occurrence: %w", err)
		}
		occurrences = append(occurrences, o)
	}

	return occurrences, total, rows.Err()
}

// GetByUpload возвращает факты дефектов одной загрузки
func (r *defectRepository) GetByUpload(ctx context.Context, uploadUUID string) ([]repositories.DefectOccurrence, error) {
	query := `
		SELECT id, occurred_on, granularity, stage, defect_code, quantity,
			upload_uuid, source_file, source_sheet, source_row, source_column, created_at
		FROM defect_occurrences
		WHERE upload_uuid = ?
		ORDER BY occurred_on, stage, defect_code, id
	`

	rows, err := r.db.GetDB().QueryContext(ctx, query, uploadUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get defect occurrences by upload: %w", err)
	}
	defer rows.Close()

	occurrences := make([]repositories.DefectOccurrence, 0)
	for rows.Next() {
		var o repositories.DefectOccurrence
		err := rows.Scan(&o.ID, &o.OccurredOn, &o.Granularity, &o.Stage, &o.DefectCode, &o.Quantity,
			&o.UploadUUID, &o.SourceFile, &o.SourceSheet, &o.SourceRow, &o.SourceColumn, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan defect occurrence: %w", err)
		}
		occurrences = append(occurrences, o)
	}

	return occurrences, rows.Err()
}

// TopCodes возвращает коды дефектов с наибольшим суммарным количеством
func (r *defectRepository) TopCodes(ctx context.Context, filter repositories.DefectFilter, limit int) ([]repositories.DefectTotal, error) {
	if limit <= 0 {
		limit = 10
	}

	where, args := buildDefectWhere(filter)
	query := `
		SELECT defect_code, COALESCE(SUM(quantity), 0), COUNT(*)
		FROM defect_occurrences` + where + `
		GROUP BY defect_code
		ORDER BY SUM(quantity) DESC, defect_code
		LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top defect codes: %w", err)
	}
	defer rows.Close()

	totals := make([]repositories.DefectTotal, 0, limit)
	for rows.Next() {
		var t repositories.DefectTotal
		if err := rows.Scan(&t.DefectCode, &t.Quantity, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan defect total: %w", err)
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// DeleteAll удаляет все факты дефектов (используется только полным сбросом данных)
func (r *defectRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM defect_occurrences`); err != nil {
		return fmt.Errorf("failed to delete defect occurrences: %w", err)
	}
	return nil
}

// Вспомогательные методы

func buildDefectWhere(filter repositories.DefectFilter) (string, []interface{}) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.DateFrom != nil {
		conditions = append(conditions, "occurred_on >= ?")
		args = append(args, filter.DateFrom.Format(dateLayout))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "occurred_on <= ?")
		args = append(args, filter.DateTo.Format(dateLayout))
	}
	if filter.Stage != "" {
		conditions = append(conditions, "stage = ?")
		args = append(args, filter.Stage)
	}
	if len(filter.Codes) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Codes)), ",")
		conditions = append(conditions, fmt.Sprintf("defect_code IN (%s)", placeholders))
		for _, code := range filter.Codes {
			args = append(args, code)
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
