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

// rollupRepository реализация репозитория месячных сверток.
// Свертки пересчитываются целиком по помеченным месяцам: при наличии дневных
// строк за месяц месячные строки той же стадии игнорируются, чтобы данные из
// дневных и сводных файлов не складывались дважды
type rollupRepository struct {
	db *database.RaisDB
}

// NewRollupRepository создает новый репозиторий месячных сверток
func NewRollupRepository(db *database.RaisDB) repositories.RollupRepository {
	return &rollupRepository{
		db: db,
	}
}

// MarkDirty помечает месяцы к пересчету
func (r *rollupRepository) MarkDirty(ctx context.Context, months []string) error {
	if len(months) == 0 {
		return nil
	}

	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin dirty months update: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, month := range months {
		if month == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dirty_months (month, marked_at) VALUES (?, ?)
			ON CONFLICT(month) DO UPDATE SET marked_at = excluded.marked_at
		`, month, now)
		if err != nil {
			return fmt.Errorf("failed to mark month %s dirty: %w", month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dirty months: %w", err)
	}

	return nil
}

// RefreshDirty пересчитывает свертки всех помеченных месяцев.
// Каждый месяц обновляется отдельной транзакцией, поэтому сбой на одном
// месяце не откатывает уже пересчитанные
func (r *rollupRepository) RefreshDirty(ctx context.Context) (int, error) {
	rows, err := r.db.GetDB().QueryContext(ctx, `SELECT month FROM dirty_months ORDER BY month`)
	if err != nil {
		return 0, fmt.Errorf("failed to read dirty months: %w", err)
	}

	months := make([]string, 0)
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan dirty month: %w", err)
		}
		months = append(months, month)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	refreshed := 0
	for _, month := range months {
		if err := r.refreshMonth(ctx, month); err != nil {
			return refreshed, fmt.Errorf("failed to refresh rollup for %s: %w", month, err)
		}
		refreshed++
	}

	return refreshed, nil
}

// refreshMonth пересчитывает обе свертки одного месяца и снимает отметку
func (r *rollupRepository) refreshMonth(ctx context.Context, month string) error {
	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin refresh: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if err := r.rebuildDefectRollup(ctx, tx, month, now); err != nil {
		return err
	}
	if err := r.rebuildStageRollup(ctx, tx, month, now); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dirty_months WHERE month = ?`, month); err != nil {
		return fmt.Errorf("failed to clear dirty mark: %w", err)
	}

	return tx.Commit()
}

func (r *rollupRepository) rebuildDefectRollup(ctx context.Context, tx *sql.Tx, month string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_defect_rollup WHERE month = ?`, month); err != nil {
		return fmt.Errorf("failed to clear defect rollup: %w", err)
	}

	// Дневные факты месяца
	_, err := tx.ExecContext(ctx, `
		INSERT INTO monthly_defect_rollup (month, stage, defect_code, total_quantity, occurrences, refreshed_at)
		SELECT ?, stage, defect_code, SUM(quantity), COUNT(*), ?
		FROM defect_occurrences
		WHERE substr(occurred_on, 1, 7) = ? AND granularity = 'day'
		GROUP BY stage, defect_code
	`, month, now, month)
	if err != nil {
		return fmt.Errorf("failed to rebuild defect rollup from daily rows: %w", err)
	}

	// Месячные факты только для стадий без дневных строк
	_, err = tx.ExecContext(ctx, `
		INSERT INTO monthly_defect_rollup (month, stage, defect_code, total_quantity, occurrences, refreshed_at)
		SELECT ?, stage, defect_code, SUM(quantity), COUNT(*), ?
		FROM defect_occurrences
		WHERE substr(occurred_on, 1, 7) = ? AND granularity = 'month'
			AND stage NOT IN (SELECT stage FROM monthly_defect_rollup WHERE month = ?)
		GROUP BY stage, defect_code
	`, month, now, month, month)
	if err != nil {
		return fmt.Errorf("failed to rebuild defect rollup from monthly rows: %w", err)
	}

	return nil
}

func (r *rollupRepository) rebuildStageRollup(ctx context.Context, tx *sql.Tx, month string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_stage_rollup WHERE month = ?`, month); err != nil {
		return fmt.Errorf("failed to clear stage rollup: %w", err)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO monthly_stage_rollup (month, stage, received_qty, inspected_qty, accepted_qty, rejected_qty, hold_qty, rejection_rate, refreshed_at)
		SELECT ?, stage, SUM(received_qty), SUM(inspected_qty), SUM(accepted_qty), SUM(rejected_qty), SUM(hold_qty), 0, ?
		FROM stage_inspection_summaries
		WHERE substr(summary_date, 1, 7) = ? AND granularity = 'day'
		GROUP BY stage
	`, month, now, month)
	if err != nil {
		return fmt.Errorf("failed to rebuild stage rollup from daily rows: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO monthly_stage_rollup (month, stage, received_qty, inspected_qty, accepted_qty, rejected_qty, hold_qty, rejection_rate, refreshed_at)
		SELECT ?, stage, SUM(received_qty), SUM(inspected_qty), SUM(accepted_qty), SUM(rejected_qty), SUM(hold_qty), 0, ?
		FROM stage_inspection_summaries
		WHERE substr(summary_date, 1, 7) = ? AND granularity = 'month'
			AND stage NOT IN (SELECT stage FROM monthly_stage_rollup WHERE month = ?)
		GROUP BY stage
	`, month, now, month, month)
	if err != nil {
		return fmt.Errorf("failed to rebuild stage rollup from monthly rows: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE monthly_stage_rollup
		SET rejection_rate = CASE WHEN inspected_qty > 0 THEN rejected_qty / inspected_qty ELSE 0 END
		WHERE month = ?
	`, month)
	if err != nil {
		return fmt.Errorf("failed to compute rejection rates: %w", err)
	}

	return nil
}

// ListDefectRollup возвращает строки свертки дефектов за диапазон месяцев
func (r *rollupRepository) ListDefectRollup(ctx context.Context, monthFrom, monthTo string) ([]repositories.MonthlyDefectRollup, error) {
	where, args := buildMonthRange(monthFrom, monthTo)
	query := `
		SELECT month, stage, defect_code, total_quantity, occurrences, refreshed_at
		FROM monthly_defect_rollup` + where + `
		ORDER BY month, stage, defect_code`

	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list defect rollup: %w", err)
	}
	defer rows.Close()

	rollups := make([]repositories.MonthlyDefectRollup, 0)
	for rows.Next() {
		var m repositories.MonthlyDefectRollup
		if err := rows.Scan(&m.Month, &m.Stage, &m.DefectCode, &m.Quantity, &m.Occurrences, &m.RefreshedAt); err != nil {
			return nil, fmt.Errorf("failed to scan defect rollup: %w", err)
		}
		rollups = append(rollups, m)
	}

	return rollups, rows.Err()
}

// ListStageRollup возвращает строки свертки инспекций за диапазон месяцев
func (r *rollupRepository) ListStageRollup(ctx context.Context, monthFrom, monthTo string) ([]repositories.MonthlyStageRollup, error) {
	where, args := buildMonthRange(monthFrom, monthTo)
	query := `
		SELECT month, stage, received_qty, inspected_qty, accepted_qty, rejected_qty, hold_qty, rejection_rate, refreshed_at
		FROM monthly_stage_rollup` + where + `
		ORDER BY month, stage`

	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage rollup: %w", err)
	}
	defer rows.Close()

	rollups := make([]repositories.MonthlyStageRollup, 0)
	for rows.Next() {
		var m repositories.MonthlyStageRollup
		err := rows.Scan(&m.Month, &m.Stage, &m.ReceivedQty, &m.InspectedQty, &m.AcceptedQty,
			&m.RejectedQty, &m.HoldQty, &m.RejectionRate, &m.RefreshedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage rollup: %w", err)
		}
		rollups = append(rollups, m)
	}

	return rollups, rows.Err()
}

// DeleteAll удаляет свертки и отметки пересчета
func (r *rollupRepository) DeleteAll(ctx context.Context) error {
	for _, table := range []string{"monthly_defect_rollup", "monthly_stage_rollup", "dirty_months"} {
		if _, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}
	return nil
}

// Вспомогательные методы

func buildMonthRange(monthFrom, monthTo string) (string, []interface{}) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if monthFrom != "" {
		conditions = append(conditions, "month >= ?")
		args = append(args, monthFrom)
	}
	if monthTo != "" {
		conditions = append(conditions, "month <= ?")
		args = append(args, monthTo)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
