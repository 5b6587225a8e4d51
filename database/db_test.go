package database

import (
	"testing"
)

// TestNewRaisDB_InMemory проверяет создание in-memory БД со всеми таблицами схемы
func TestNewRaisDB_InMemory(t *testing.T) {
	db, err := NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	tables := []string{
		"upload_sessions",
		"upload_logs",
		"production_summaries",
		"stage_inspection_summaries",
		"defect_occurrences",
		"monthly_defect_rollup",
		"monthly_stage_rollup",
		"schema_migrations",
	}

	for _, table := range tables {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found after schema init: %v", table, err)
		}
	}
}

// TestInitRaisSchema_Idempotent проверяет, что повторный запуск миграций безопасен
// Все миграции уже отмечены в schema_migrations и должны быть пропущены
func TestInitRaisSchema_Idempotent(t *testing.T) {
	db, err := NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	var before int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&before); err != nil {
		t.Fatalf("Failed to count applied migrations: %v", err)
	}
	if before != 5 {
		t.Errorf("Expected 5 applied migrations, got %d", before)
	}

	if err := InitRaisSchema(db.GetDB()); err != nil {
		t.Fatalf("Second InitRaisSchema run failed: %v", err)
	}

	var after int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&after); err != nil {
		t.Fatalf("Failed to count applied migrations: %v", err)
	}
	if after != before {
		t.Errorf("Migration count changed after rerun: %d -> %d", before, after)
	}
}

// TestExtendUploadLogsSessionColumns_Rerun проверяет устойчивость ALTER-миграции
// к уже существующим колонкам
func TestExtendUploadLogsSessionColumns_Rerun(t *testing.T) {
	db, err := NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	// Колонки уже добавлены при инициализации схемы
	if err := ExtendUploadLogsSessionColumns(db.GetDB()); err != nil {
		t.Fatalf("Rerun of column extension failed: %v", err)
	}

	for _, column := range []string{"session_uuid", "file_size_bytes", "defect_count"} {
		var count int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM pragma_table_info('upload_logs') WHERE name = ?`, column,
		).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to inspect upload_logs columns: %v", err)
		}
		if count != 1 {
			t.Errorf("Column %s missing from upload_logs", column)
		}
	}
}

// TestIsInMemoryDB проверяет распознавание in-memory путей SQLite
func TestIsInMemoryDB(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"classic memory path", ":memory:", true},
		{"shared cache memory", "file:raisdb?mode=memory&cache=shared", true},
		{"file URI with memory mode param", "file:test.db?_journal=WAL&mode=memory", true},
		{"regular file path", "./data/rais.db", false},
		{"file URI on disk", "file:./data/rais.db?_journal=WAL", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isInMemoryDB(tt.path); got != tt.expected {
				t.Errorf("isInMemoryDB(%q) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}
}

// TestRaisDB_SingleConnectionForMemory проверяет, что in-memory БД видна между запросами
// При нескольких соединениях каждое получило бы собственную пустую БД
func TestRaisDB_SingleConnectionForMemory(t *testing.T) {
	db, err := NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(
		`INSERT INTO upload_sessions (uuid, status, files_total) VALUES (?, ?, ?)`,
		"test-session-uuid", "pending", 3,
	)
	if err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}

	var status string
	err = db.QueryRow(
		`SELECT status FROM upload_sessions WHERE uuid = ?`, "test-session-uuid",
	).Scan(&status)
	if err != nil {
		t.Fatalf("Failed to read session back: %v", err)
	}
	if status != "pending" {
		t.Errorf("Expected status pending, got %s", status)
	}
}
