package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryStore хранит файлы в памяти процесса, используется тестами
type memoryStore struct {
	mu    sync.RWMutex
	files map[string]memoryEntry
}

type memoryEntry struct {
	info FileInfo
	data []byte
}

// NewMemoryStore создает хранилище в памяти
func NewMemoryStore() BlobStore {
	return &memoryStore{files: make(map[string]memoryEntry)}
}

func (s *memoryStore) Backend() Backend { return BackendMemory }

func (s *memoryStore) Save(ctx context.Context, key string, r io.Reader, opts SaveOptions) (FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.files[key]; ok {
		return existing.info, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return FileInfo{}, err
	}

	sum := sha256.Sum256(data)
	info := FileInfo{
		Key:         key,
		FileName:    opts.FileName,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		ETag:        hex.EncodeToString(sum[:]),
		StoredAt:    time.Now().UTC(),
	}
	s.files[key] = memoryEntry{info: info, data: data}

	return info, nil
}

func (s *memoryStore) Open(ctx context.Context, key string) (FileInfo, io.ReadCloser, error) {
	s.mu.RLock()
	entry, ok := s.files[key]
	s.mu.RUnlock()
	if !ok {
		return FileInfo{}, nil, ErrNotFound
	}

	data := make([]byte, len(entry.data))
	copy(data, entry.data)

	return entry.info, io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Stat(ctx context.Context, key string) (FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.files[key]
	if !ok {
		return FileInfo{}, ErrNotFound
	}
	return entry.info, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.files[key]
	if ok {
		delete(s.files, key)
	}
	return ok, nil
}

func (s *memoryStore) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]FileInfo, 0, len(s.files))
	for key, entry := range s.files {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			infos = append(infos, entry.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	return infos, nil
}
