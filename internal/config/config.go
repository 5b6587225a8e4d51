package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация приложения
type Config struct {
	// Сервер
	Port string `json:"port"`

	// База данных
	DatabasePath    string        `json:"database_path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Загрузка файлов
	UploadsDir       string `json:"uploads_dir"`
	MaxUploadFiles   int    `json:"max_upload_files"`
	MaxFileSizeBytes int64  `json:"max_file_size_bytes"`
	MaxRowsPerFile   int    `json:"max_rows_per_file"`

	// Разбор и классификация
	HeaderScanRows        int     `json:"header_scan_rows"`
	HeaderScoreFloor      int     `json:"header_score_floor"`
	ClassificationFloor   float64 `json:"classification_floor"`
	SignatureRegistryPath string  `json:"signature_registry_path,omitempty"`

	// Обработка
	ProcessingTimeout  time.Duration `json:"processing_timeout"`
	IngestWorkers      int           `json:"ingest_workers"`
	IngestQueueSize    int           `json:"ingest_queue_size"`
	SweepInterval      time.Duration `json:"sweep_interval"`
	StaleProcessingAge time.Duration `json:"stale_processing_age"`

	// Ограничение частоты запросов
	UploadRatePerMinute int `json:"upload_rate_per_minute"`

	// Сервисные операции
	ResetEnabled bool `json:"reset_enabled"`

	// Архив исходных файлов
	ArchiveBackend    string `json:"archive_backend"`
	ArchiveDir        string `json:"archive_dir"`
	S3Bucket          string `json:"s3_bucket,omitempty"`
	S3Region          string `json:"s3_region,omitempty"`
	S3Endpoint        string `json:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `json:"-"`
	S3SecretAccessKey string `json:"-"`
	S3PathStyle       bool   `json:"s3_path_style,omitempty"`

	// Логирование
	LogLevel string `json:"log_level"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		// Сервер
		Port: getEnv("SERVER_PORT", "8080"),

		// База данных
		DatabasePath:    getEnv("DATABASE_PATH", "rais.db"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		// Загрузка файлов
		UploadsDir:       getEnv("UPLOADS_DIR", "./uploads"),
		MaxUploadFiles:   getEnvInt("MAX_UPLOAD_FILES", 6),
		MaxFileSizeBytes: getEnvInt64("MAX_FILE_SIZE_BYTES", 10*1024*1024),
		MaxRowsPerFile:   getEnvInt("MAX_ROWS_PER_FILE", 50000),

		// Разбор и классификация
		HeaderScanRows:        getEnvInt("HEADER_SCAN_ROWS", 20),
		HeaderScoreFloor:      getEnvInt("HEADER_SCORE_FLOOR", 20),
		ClassificationFloor:   getEnvFloat("CLASSIFICATION_FLOOR", 0.3),
		SignatureRegistryPath: os.Getenv("SIGNATURE_REGISTRY_PATH"),

		// Обработка
		ProcessingTimeout:  getEnvDuration("PROCESSING_TIMEOUT", 5*time.Minute),
		IngestWorkers:      getEnvInt("INGEST_WORKERS", 2),
		IngestQueueSize:    getEnvInt("INGEST_QUEUE_SIZE", 32),
		SweepInterval:      getEnvDuration("SWEEP_INTERVAL", time.Minute),
		StaleProcessingAge: getEnvDuration("STALE_PROCESSING_AGE", 10*time.Minute),

		// Ограничение частоты запросов
		UploadRatePerMinute: getEnvInt("UPLOAD_RATE_PER_MINUTE", 30),

		// Сервисные операции
		ResetEnabled: getEnv("RESET_ENABLED", "false") == "true",

		// Архив исходных файлов
		ArchiveBackend:    getEnv("ARCHIVE_BACKEND", "dir"),
		ArchiveDir:        getEnv("ARCHIVE_DIR", "./archive"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PathStyle:       getEnv("S3_PATH_STYLE", "false") == "true",

		// Логирование
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	// Валидация
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 получает переменную окружения как int64 или возвращает значение по умолчанию
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
