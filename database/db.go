package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RaisDB обертка для работы с базой данных результатов контроля качества
type RaisDB struct {
	conn *sql.DB
}

// NewRaisDB создает новое подключение к базе данных
func NewRaisDB(dbPath string) (*RaisDB, error) {
	config := DBConfig{}

	// Для in-memory SQLite требуется использовать ровно одно соединение,
	// иначе каждое новое соединение будет получать пустую БД без таблиц/миграций.
	if isInMemoryDB(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	return NewRaisDBWithConfig(dbPath, config)
}

// isInMemoryDB определяет, что путь относится к in-memory SQLite
func isInMemoryDB(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}

	// Формат file:memdb?_mode=memory&cache=shared также хранит БД в памяти
	if strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory") {
		return true
	}

	return false
}

// NewRaisDBWithConfig создает новое подключение к базе данных с конфигурацией
func NewRaisDBWithConfig(dbPath string, config DBConfig) (*RaisDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка connection pooling
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		// SQLite плохо справляется с большим количеством одновременных соединений
		// Ограничиваем до 10 для предотвращения блокировок
		conn.SetMaxOpenConns(10)
	}

	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		// Уменьшаем количество idle соединений для SQLite
		conn.SetMaxIdleConns(3)
	}

	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	// Проверяем подключение
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Включаем поддержку FOREIGN KEY constraints в SQLite
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Включаем WAL режим для улучшения конкурентности чтения
	// WAL позволяет множественным читателям работать одновременно без блокировок
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		// Логируем, но не прерываем инициализацию, так как это не критично
		log.Printf("[RaisDB] Warning: Failed to enable WAL mode: %v", err)
	}

	// Даем записям шанс дождаться освобождения блокировки вместо немедленного SQLITE_BUSY
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Printf("[RaisDB] Warning: Failed to set busy timeout: %v", err)
	}

	db := &RaisDB{conn: conn}

	// Инициализируем схему БД
	if err := InitRaisSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close закрывает подключение к базе данных
func (db *RaisDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *RaisDB) Ping() error {
	return db.conn.Ping()
}

// GetDB возвращает указатель на sql.DB для прямого доступа
func (db *RaisDB) GetDB() *sql.DB {
	return db.conn
}

// QueryRow выполняет запрос и возвращает одну строку
func (db *RaisDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// Query выполняет запрос и возвращает несколько строк
func (db *RaisDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// Exec выполняет запрос без возврата строк
func (db *RaisDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}
