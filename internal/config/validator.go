package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	// Валидация путей
	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}
	if c.UploadsDir == "" {
		errors = append(errors, "uploads dir is required")
	}

	// Валидация connection pooling
	if c.MaxOpenConns < 1 {
		errors = append(errors, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		errors = append(errors, "max idle connections must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errors = append(errors, "max idle connections cannot be greater than max open connections")
	}
	if c.ConnMaxLifetime < time.Second {
		errors = append(errors, "connection max lifetime must be at least 1 second")
	}

	// Валидация лимитов загрузки
	if c.MaxUploadFiles < 1 {
		errors = append(errors, "max upload files must be at least 1")
	}
	if c.MaxFileSizeBytes < 1 {
		errors = append(errors, "max file size must be at least 1 byte")
	}
	if c.MaxRowsPerFile < 1 {
		errors = append(errors, "max rows per file must be at least 1")
	}

	// Валидация параметров разбора
	if c.HeaderScanRows < 1 {
		errors = append(errors, "header scan rows must be at least 1")
	}
	if c.HeaderScoreFloor < 0 {
		errors = append(errors, "header score floor cannot be negative")
	}
	if c.ClassificationFloor < 0 || c.ClassificationFloor > 1 {
		errors = append(errors, "classification floor must be between 0 and 1")
	}

	// Валидация параметров обработки
	if c.ProcessingTimeout < time.Second {
		errors = append(errors, "processing timeout must be at least 1 second")
	}
	if c.IngestWorkers < 1 {
		errors = append(errors, "ingest workers must be at least 1")
	}
	if c.IngestQueueSize < 1 {
		errors = append(errors, "ingest queue size must be at least 1")
	}
	if c.SweepInterval < time.Second {
		errors = append(errors, "sweep interval must be at least 1 second")
	}
	if c.StaleProcessingAge < time.Second {
		errors = append(errors, "stale processing age must be at least 1 second")
	}
	if c.UploadRatePerMinute < 1 {
		errors = append(errors, "upload rate per minute must be at least 1")
	}

	// Валидация архива
	validBackends := []string{"dir", "memory", "s3"}
	backendValid := false
	for _, backend := range validBackends {
		if c.ArchiveBackend == backend {
			backendValid = true
			break
		}
	}
	if !backendValid {
		errors = append(errors, fmt.Sprintf("invalid archive backend: %s (valid: %s)",
			c.ArchiveBackend, strings.Join(validBackends, ", ")))
	}
	if c.ArchiveBackend == "dir" && c.ArchiveDir == "" {
		errors = append(errors, "archive dir is required for dir backend")
	}
	if c.ArchiveBackend == "s3" && c.S3Bucket == "" {
		errors = append(errors, "s3 bucket is required for s3 backend")
	}

	// Валидация уровня логирования
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if c.LogLevel != "" {
		valid := false
		logLevelUpper := strings.ToUpper(c.LogLevel)
		for _, level := range validLogLevels {
			if logLevelUpper == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetDefaults возвращает конфигурацию со значениями по умолчанию
func GetDefaults() *Config {
	return &Config{
		Port:                "8080",
		DatabasePath:        "rais.db",
		MaxOpenConns:        25,
		MaxIdleConns:        5,
		ConnMaxLifetime:     5 * time.Minute,
		UploadsDir:          "./uploads",
		MaxUploadFiles:      6,
		MaxFileSizeBytes:    10 * 1024 * 1024,
		MaxRowsPerFile:      50000,
		HeaderScanRows:      20,
		HeaderScoreFloor:    20,
		ClassificationFloor: 0.3,
		ProcessingTimeout:   5 * time.Minute,
		IngestWorkers:       2,
		IngestQueueSize:     32,
		SweepInterval:       time.Minute,
		StaleProcessingAge:  10 * time.Minute,
		UploadRatePerMinute: 30,
		ArchiveBackend:      "dir",
		ArchiveDir:          "./archive",
		S3Region:            "us-east-1",
		LogLevel:            "INFO",
	}
}
