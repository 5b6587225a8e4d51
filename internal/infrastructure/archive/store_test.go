package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// TestStoreRoundTrip проверяет сохранение и чтение файла в каждой реализации
func TestStoreRoundTrip(t *testing.T) {
	backends := map[string]func(t *testing.T) BlobStore{
		"dir": func(t *testing.T) BlobStore {
			store, err := NewDirStore(t.TempDir())
			if err != nil {
				t.Fatalf("Failed to create dir store: %v", err)
			}
			return store
		},
		"memory": func(t *testing.T) BlobStore {
			return NewMemoryStore()
		},
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			content := "PK\x03\x04 workbook bytes"
			key := "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4"

			info, err := store.Save(ctx, key, strings.NewReader(content), SaveOptions{
				ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				FileName:    "visual.xlsx",
			})
			if err != nil {
				t.Fatalf("Failed to save file: %v", err)
			}
			if info.Size != int64(len(content)) {
				t.Errorf("Expected size %d, got %d", len(content), info.Size)
			}
			if info.FileName != "visual.xlsx" {
				t.Errorf("Expected original file name to be kept, got %q", info.FileName)
			}
			if info.ETag == "" {
				t.Error("Expected content hash etag to be set")
			}

			got, rc, err := store.Open(ctx, key)
			if err != nil {
				t.Fatalf("Failed to open file: %v", err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("Failed to read file: %v", err)
			}
			if string(data) != content {
				t.Errorf("Expected content round trip, got %q", string(data))
			}
			if got.ETag != info.ETag {
				t.Errorf("Expected stable etag, got %s vs %s", got.ETag, info.ETag)
			}

			infos, err := store.List(ctx, key[:2])
			if err != nil {
				t.Fatalf("Failed to list files: %v", err)
			}
			if len(infos) != 1 || infos[0].Key != key {
				t.Errorf("Expected 1 listed file with key %s, got %+v", key, infos)
			}
		})
	}
}

// TestStoreSaveIdempotent проверяет, что повтор того же ключа не перезаписывает файл
func TestStoreSaveIdempotent(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create dir store: %v", err)
	}
	ctx := context.Background()
	key := "feedfacefeedfacefeedfacefeedface"

	first, err := store.Save(ctx, key, strings.NewReader("original"), SaveOptions{FileName: "first.xlsx"})
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	// Тот же хеш означает те же байты, второй вызов возвращает первую запись
	second, err := store.Save(ctx, key, strings.NewReader("ignored"), SaveOptions{FileName: "second.xlsx"})
	if err != nil {
		t.Fatalf("Failed to re-save file: %v", err)
	}
	if second.ETag != first.ETag || second.FileName != first.FileName {
		t.Errorf("Expected first record to win, got %+v", second)
	}

	_, rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "original" {
		t.Errorf("Expected original bytes to survive, got %q", string(data))
	}
}

// TestStoreMissingAndDelete проверяет поведение на отсутствующем ключе
func TestStoreMissingAndDelete(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create dir store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Stat(ctx, "0000aaaa0000aaaa"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing key, got %v", err)
	}

	deleted, err := store.Delete(ctx, "0000aaaa0000aaaa")
	if err != nil {
		t.Fatalf("Failed to delete missing key: %v", err)
	}
	if deleted {
		t.Error("Expected false for deleting missing key")
	}

	if _, err := store.Save(ctx, "../escape", strings.NewReader("x"), SaveOptions{}); err == nil {
		t.Error("Expected error for path traversal key, got nil")
	}

	key := "d00dd00dd00dd00d"
	if _, err := store.Save(ctx, key, strings.NewReader("x"), SaveOptions{}); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	deleted, err = store.Delete(ctx, key)
	if err != nil {
		t.Fatalf("Failed to delete file: %v", err)
	}
	if !deleted {
		t.Error("Expected true for deleting existing key")
	}
	if _, err := store.Stat(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
