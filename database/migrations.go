package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"
)

const raisMigrationsTable = "schema_migrations"

// InitRaisSchema создает все таблицы конвейера загрузки.
// Каждая миграция применяется ровно один раз и отмечается в schema_migrations.
func InitRaisSchema(db *sql.DB) error {
	migrations := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"create_upload_tables", CreateUploadTables},
		{"create_summary_tables", CreateSummaryTables},
		{"create_defect_tables", CreateDefectTables},
		{"create_rollup_tables", CreateRollupTables},
		{"extend_upload_logs_session_columns", ExtendUploadLogsSessionColumns},
	}

	for _, m := range migrations {
		if err := applyMigrationOnce(db, m.name, m.fn); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

// ensureRaisMigrationTable создает таблицу schema_migrations при необходимости
func ensureRaisMigrationTable(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, raisMigrationsTable)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// applyMigrationOnce выполняет миграцию только один раз
func applyMigrationOnce(db *sql.DB, name string, migration func(*sql.DB) error) error {
	if err := ensureRaisMigrationTable(db); err != nil {
		return err
	}

	var appliedAt sql.NullTime
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, raisMigrationsTable)
	err := db.QueryRow(query, name).Scan(&appliedAt)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	if appliedAt.Valid {
		log.Printf("[Migrations] Skipping %s - already applied", name)
		return nil
	}

	if err := migration(db); err != nil {
		return err
	}

	mark := fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, raisMigrationsTable)
	if _, err := db.Exec(mark, name, time.Now()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", name, err)
	}

	log.Printf("[Migrations] %s applied successfully", name)
	return nil
}

// CreateUploadTables создает таблицы сессий и журнала загрузок.
// Журнал загрузок никогда не очищается обычным путем: это аудиторский след,
// хеш содержимого файла уникален и служит ключом дедупликации.
func CreateUploadTables(db *sql.DB) error {
	createSQL := `
		CREATE TABLE IF NOT EXISTS upload_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'pending',
			files_total INTEGER DEFAULT 0,
			files_done INTEGER DEFAULT 0,
			progress REAL DEFAULT 0,
			current_stage TEXT,
			current_file TEXT,
			cancel_requested INTEGER DEFAULT 0,
			error_message TEXT,
			started_at TIMESTAMP,
			completed_at TIMESTAMP,
			last_activity TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS upload_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			file_name TEXT NOT NULL,
			file_hash TEXT NOT NULL UNIQUE,
			detected_type TEXT,
			confidence REAL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			rows_total INTEGER DEFAULT 0,
			records_valid INTEGER DEFAULT 0,
			records_invalid INTEGER DEFAULT 0,
			findings TEXT,
			error_message TEXT,
			started_at TIMESTAMP,
			completed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := db.Exec(createSQL); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_upload_sessions_status ON upload_sessions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_upload_sessions_activity ON upload_sessions(last_activity)`,
		`CREATE INDEX IF NOT EXISTS idx_upload_logs_status ON upload_logs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_upload_logs_type ON upload_logs(detected_type)`,
		`CREATE INDEX IF NOT EXISTS idx_upload_logs_created ON upload_logs(created_at)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	log.Println("[Migrations] upload tables and indexes created")
	return nil
}

// CreateSummaryTables создает таблицы агрегатов производства и инспекций.
// Естественный ключ включает гранулярность: дневные и месячные записи
// одной даты не затирают друг друга.
func CreateSummaryTables(db *sql.DB) error {
	createSQL := `
		CREATE TABLE IF NOT EXISTS production_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			summary_date DATE NOT NULL,
			granularity TEXT NOT NULL DEFAULT 'day',
			product TEXT NOT NULL DEFAULT '',
			produced_qty REAL DEFAULT 0,
			dispatched_qty REAL DEFAULT 0,
			source_file TEXT,
			source_sheet TEXT,
			source_rows TEXT,
			upload_uuid TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(summary_date, granularity, product)
		);

		CREATE TABLE IF NOT EXISTS stage_inspection_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			summary_date DATE NOT NULL,
			granularity TEXT NOT NULL DEFAULT 'day',
			stage TEXT NOT NULL,
			received_qty REAL DEFAULT 0,
			inspected_qty REAL DEFAULT 0,
			accepted_qty REAL DEFAULT 0,
			rejected_qty REAL DEFAULT 0,
			hold_qty REAL DEFAULT 0,
			source_file TEXT,
			source_sheet TEXT,
			source_rows TEXT,
			upload_uuid TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(summary_date, granularity, stage)
		);
	`

	if _, err := db.Exec(createSQL); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_production_date ON production_summaries(summary_date)`,
		`CREATE INDEX IF NOT EXISTS idx_production_upload ON production_summaries(upload_uuid)`,
		`CREATE INDEX IF NOT EXISTS idx_inspection_date ON stage_inspection_summaries(summary_date)`,
		`CREATE INDEX IF NOT EXISTS idx_inspection_stage ON stage_inspection_summaries(stage)`,
		`CREATE INDEX IF NOT EXISTS idx_inspection_upload ON stage_inspection_summaries(upload_uuid)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	log.Println("[Migrations] summary tables and indexes created")
	return nil
}

// CreateDefectTables создает таблицу фактов дефектов.
// Записи только добавляются: провенансия до ячейки делает каждую уникальной,
// уникального ключа по содержимому нет намеренно.
func CreateDefectTables(db *sql.DB) error {
	createSQL := `
		CREATE TABLE IF NOT EXISTS defect_occurrences (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			occurred_on DATE NOT NULL,
			granularity TEXT NOT NULL DEFAULT 'day',
			stage TEXT NOT NULL,
			defect_code TEXT NOT NULL,
			quantity REAL NOT NULL,
			upload_uuid TEXT,
			source_file TEXT,
			source_sheet TEXT,
			source_row INTEGER,
			source_column TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := db.Exec(createSQL); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_defects_date ON defect_occurrences(occurred_on)`,
		`CREATE INDEX IF NOT EXISTS idx_defects_stage ON defect_occurrences(stage)`,
		`CREATE INDEX IF NOT EXISTS idx_defects_code ON defect_occurrences(defect_code)`,
		`CREATE INDEX IF NOT EXISTS idx_defects_upload ON defect_occurrences(upload_uuid)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	log.Println("[Migrations] defect tables and indexes created")
	return nil
}

// CreateRollupTables создает месячные свертки и таблицу грязных месяцев.
// Свертки пересчитываются фоновым обновлением по отметкам в dirty_months.
func CreateRollupTables(db *sql.DB) error {
	createSQL := `
		CREATE TABLE IF NOT EXISTS monthly_defect_rollup (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			month TEXT NOT NULL,
			stage TEXT NOT NULL,
			defect_code TEXT NOT NULL,
			total_quantity REAL DEFAULT 0,
			occurrences INTEGER DEFAULT 0,
			refreshed_at TIMESTAMP,
			UNIQUE(month, stage, defect_code)
		);

		CREATE TABLE IF NOT EXISTS monthly_stage_rollup (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			month TEXT NOT NULL,
			stage TEXT NOT NULL,
			received_qty REAL DEFAULT 0,
			inspected_qty REAL DEFAULT 0,
			accepted_qty REAL DEFAULT 0,
			rejected_qty REAL DEFAULT 0,
			hold_qty REAL DEFAULT 0,
			rejection_rate REAL DEFAULT 0,
			refreshed_at TIMESTAMP,
			UNIQUE(month, stage)
		);

		CREATE TABLE IF NOT EXISTS dirty_months (
			month TEXT PRIMARY KEY,
			marked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := db.Exec(createSQL); err != nil {
		return err
	}

	log.Println("[Migrations] rollup tables created")
	return nil
}

// ExtendUploadLogsSessionColumns добавляет связь журнала с сессией загрузки
// и счетчики, появившиеся после первой версии схемы
func ExtendUploadLogsSessionColumns(db *sql.DB) error {
	alters := []string{
		`ALTER TABLE upload_logs ADD COLUMN session_uuid TEXT`,
		`ALTER TABLE upload_logs ADD COLUMN file_size_bytes INTEGER DEFAULT 0`,
		`ALTER TABLE upload_logs ADD COLUMN defect_count INTEGER DEFAULT 0`,
	}

	successCount := 0
	skipCount := 0

	for _, alter := range alters {
		if _, err := db.Exec(alter); err != nil {
			errStr := strings.ToLower(err.Error())
			// Игнорируем ошибки о существующих колонках
			if strings.Contains(errStr, "duplicate column") ||
				strings.Contains(errStr, "already exists") {
				skipCount++
				continue
			}
			return err
		}
		successCount++
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_upload_logs_session ON upload_logs(session_uuid)`); err != nil {
		return err
	}

	log.Printf("[Migrations] upload_logs extended: %d columns added, %d already present", successCount, skipCount)
	return nil
}
