// Package archive хранит исходные байты принятых файлов.
// Ключом служит хеш содержимого, поэтому повторное сохранение того же
// файла идемпотентно и возвращает уже существующую запись.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Backend идентификатор реализации хранилища
type Backend string

const (
	// BackendDir локальный каталог (по умолчанию)
	BackendDir Backend = "dir"
	// BackendMemory хранение в памяти процесса (тесты)
	BackendMemory Backend = "memory"
	// BackendS3 S3-совместимое хранилище (AWS S3 или MinIO)
	BackendS3 Backend = "s3"
)

// ErrNotFound файл с таким ключом отсутствует в архиве
var ErrNotFound = errors.New("archive: file not found")

// SaveOptions атрибуты сохраняемого файла
type SaveOptions struct {
	ContentType string
	FileName    string // исходное имя файла до переименования по хешу
}

// FileInfo описание сохраненного файла
type FileInfo struct {
	Key         string    `json:"key"`
	FileName    string    `json:"file_name,omitempty"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

// BlobStore хранилище исходных файлов загрузок
type BlobStore interface {
	// Save сохраняет содержимое под ключом; существующий ключ не перезаписывается
	Save(ctx context.Context, key string, r io.Reader, opts SaveOptions) (FileInfo, error)
	// Open возвращает описание и поток содержимого
	Open(ctx context.Context, key string) (FileInfo, io.ReadCloser, error)
	// Stat возвращает только описание
	Stat(ctx context.Context, key string) (FileInfo, error)
	// Delete удаляет файл; возвращает true, если он существовал
	Delete(ctx context.Context, key string) (bool, error)
	// List возвращает описания файлов с заданным префиксом ключа
	List(ctx context.Context, prefix string) ([]FileInfo, error)
	Backend() Backend
}

// Config параметры выбора и настройки хранилища
type Config struct {
	Backend           Backend
	Dir               string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PathStyle       bool
}

// Open создает хранилище по конфигурации
func Open(ctx context.Context, cfg Config) (BlobStore, error) {
	switch cfg.Backend {
	case "", BackendDir:
		return NewDirStore(cfg.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}
