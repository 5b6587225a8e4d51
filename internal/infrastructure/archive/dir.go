package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// dirStore хранит файлы в локальном каталоге. Ключ отображается в путь
// с разбивкой по первым двум символам, рядом с данными лежит сайдкар
// <ключ>.meta с атрибутами файла
type dirStore struct {
	root string
}

// NewDirStore создает хранилище в каталоге root, при необходимости создавая его
func NewDirStore(root string) (BlobStore, error) {
	if root == "" {
		root = "./archive"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}
	return &dirStore{root: root}, nil
}

func (s *dirStore) Backend() Backend { return BackendDir }

type dirMeta struct {
	FileName    string    `json:"file_name,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag"`
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"stored_at"`
}

// sanitizeKey запрещает выход за пределы корня и абсолютные пути
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty archive key")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid archive key: %s", key)
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid archive key: %s", key)
	}
	return clean, nil
}

func (s *dirStore) pathFor(key string) (dataPath, metaPath string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	shard := k
	if len(k) > 2 && !strings.Contains(k, "/") {
		shard = filepath.Join(k[:2], k)
	}
	dataPath = filepath.Join(s.root, shard)
	metaPath = dataPath + ".meta"
	return dataPath, metaPath, nil
}

func (s *dirStore) Save(ctx context.Context, key string, r io.Reader, opts SaveOptions) (FileInfo, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return FileInfo{}, err
	}

	// Ключ - хеш содержимого, повтор означает те же байты
	if _, err := os.Stat(dataPath); err == nil {
		return s.Stat(ctx, key)
	}

	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return FileInfo{}, fmt.Errorf("failed to create archive shard: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		tmp.Close()
		return FileInfo{}, fmt.Errorf("failed to write archive data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return FileInfo{}, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return FileInfo{}, fmt.Errorf("failed to place archive file: %w", err)
	}

	now := time.Now().UTC()
	meta := dirMeta{
		FileName:    opts.FileName,
		ContentType: opts.ContentType,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		Size:        size,
		StoredAt:    now,
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return FileInfo{}, err
	}

	return fileInfoFromMeta(key, meta), nil
}

func (s *dirStore) Open(ctx context.Context, key string) (FileInfo, io.ReadCloser, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return FileInfo{}, nil, err
	}

	file, err := os.Open(dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileInfo{}, nil, ErrNotFound
		}
		return FileInfo{}, nil, fmt.Errorf("failed to open archive file: %w", err)
	}

	meta, err := readMeta(metaPath)
	if err != nil {
		file.Close()
		return FileInfo{}, nil, err
	}

	return fileInfoFromMeta(key, meta), file, nil
}

func (s *dirStore) Stat(ctx context.Context, key string) (FileInfo, error) {
	_, metaPath, err := s.pathFor(key)
	if err != nil {
		return FileInfo{}, err
	}

	meta, err := readMeta(metaPath)
	if err != nil {
		return FileInfo{}, err
	}

	return fileInfoFromMeta(key, meta), nil
}

func (s *dirStore) Delete(ctx context.Context, key string) (bool, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(dataPath); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.Remove(dataPath); err != nil {
		return false, fmt.Errorf("failed to delete archive file: %w", err)
	}
	os.Remove(metaPath)

	return true, nil
}

func (s *dirStore) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	infos := make([]FileInfo, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".meta") {
			return nil
		}

		meta, err := readMeta(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, strings.TrimSuffix(path, ".meta"))
		if err != nil {
			return err
		}
		key := unshardKey(filepath.ToSlash(rel))
		if prefix == "" || strings.HasPrefix(key, prefix) {
			infos = append(infos, fileInfoFromMeta(key, meta))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// unshardKey восстанавливает ключ из относительного пути с шардированием
func unshardKey(rel string) string {
	parts := strings.SplitN(rel, "/", 2)
	if len(parts) == 2 && len(parts[0]) == 2 && strings.HasPrefix(parts[1], parts[0]) && !strings.Contains(parts[1], "/") {
		return parts[1]
	}
	return rel
}

func fileInfoFromMeta(key string, meta dirMeta) FileInfo {
	return FileInfo{
		Key:         key,
		FileName:    meta.FileName,
		Size:        meta.Size,
		ContentType: meta.ContentType,
		ETag:        meta.ETag,
		StoredAt:    meta.StoredAt,
	}
}

func writeMeta(path string, meta dirMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode archive meta: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive meta: %w", err)
	}
	return nil
}

func readMeta(path string) (dirMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dirMeta{}, ErrNotFound
		}
		return dirMeta{}, fmt.Errorf("failed to read archive meta: %w", err)
	}
	var meta dirMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return dirMeta{}, fmt.Errorf("failed to decode archive meta: %w", err)
	}
	return meta, nil
}
