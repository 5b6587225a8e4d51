package persistence

import (
	"context"
	"testing"
	"time"

	"raisserver/database"
	"raisserver/internal/domain/repositories"
)

func newUploadLog(uuid, sessionUUID, fileName, hash, status string, rowsTotal, valid, invalid int) *repositories.UploadLog {
	return &repositories.UploadLog{
		UUID:           uuid,
		SessionUUID:    sessionUUID,
		FileName:       fileName,
		FileSizeBytes:  2048,
		FileHash:       hash,
		DetectedType:   "visual_inspection",
		Confidence:     0.9,
		Status:         status,
		RowsTotal:      rowsTotal,
		RecordsValid:   valid,
		RecordsInvalid: invalid,
		StartedAt:      time.Now().UTC(),
	}
}

// TestUploadLogHashDedup проверяет поиск по хешу содержимого до разбора файла
func TestUploadLogHashDedup(t *testing.T) {
	db, err := database.NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	repo := NewUploadLogRepository(db)
	ctx := context.Background()

	log := newUploadLog("log-0001", "sess-0001", "visual.xlsx", "hash-aaa", repositories.StatusCompleted, 120, 118, 2)
	if err := repo.Create(ctx, log); err != nil {
		t.Fatalf("Failed to create upload log: %v", err)
	}

	existing, err := repo.GetByHash(ctx, "hash-aaa")
	if err != nil {
		t.Fatalf("Failed to get upload log by hash: %v", err)
	}
	if existing == nil {
		t.Fatal("Expected existing upload log for known hash, got nil")
	}
	if existing.UUID != log.UUID {
		t.Errorf("Expected upload UUID %s, got %s", log.UUID, existing.UUID)
	}

	// Неизвестный хеш означает новый файл, это не ошибка
	missing, err := repo.GetByHash(ctx, "hash-zzz")
	if err != nil {
		t.Fatalf("Expected no error for unknown hash, got %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown hash, got %+v", missing)
	}
}

// TestUploadLogUpdate проверяет обновление результатов обработки файла
func TestUploadLogUpdate(t *testing.T) {
	db, err := database.NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	repo := NewUploadLogRepository(db)
	ctx := context.Background()

	log := newUploadLog("log-0002", "sess-0001", "daily.xlsx", "hash-bbb", repositories.StatusProcessing, 0, 0, 0)
	if err := repo.Create(ctx, log); err != nil {
		t.Fatalf("Failed to create upload log: %v", err)
	}

	completedAt := time.Now().UTC()
	log.Status = repositories.StatusPartial
	log.RowsTotal = 50
	log.RecordsValid = 45
	log.RecordsInvalid = 5
	log.DefectCount = 12
	log.FindingsJSON = `[{"severity":"error","code":"NEGATIVE_QUANTITY","message":"rejected is negative"}]`
	log.CompletedAt = &completedAt

	if err := repo.Update(ctx, log); err != nil {
		t.Fatalf("Failed to update upload log: %v", err)
	}

	got, err := repo.GetByUUID(ctx, log.UUID)
	if err != nil {
		t.Fatalf("Failed to get upload log: %v", err)
	}
	if got.Status != repositories.StatusPartial {
		t.Errorf("Expected status %s, got %s", repositories.StatusPartial, got.Status)
	}
	if got.RecordsValid != 45 || got.RecordsInvalid != 5 {
		t.Errorf("Expected 45/5 records, got %d/%d", got.RecordsValid, got.RecordsInvalid)
	}
	if got.DefectCount != 12 {
		t.Errorf("Expected 12 defects, got %d", got.DefectCount)
	}
	if got.FindingsJSON == "" {
		t.Error("Expected findings JSON to be stored")
	}
	if got.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}
}

// TestUploadLogListAndStatistics проверяет фильтрацию журнала и сводную статистику
func TestUploadLogListAndStatistics(t *testing.T) {
	db, err := database.NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	repo := NewUploadLogRepository(db)
	ctx := context.Background()

	logs := []*repositories.UploadLog{
		newUploadLog("log-a", "sess-1", "a.xlsx", "hash-a", repositories.StatusCompleted, 10, 8, 2),
		newUploadLog("log-b", "sess-1", "b.xlsx", "hash-b", repositories.StatusPartial, 20, 15, 5),
		newUploadLog("log-c", "sess-2", "c.xlsx", "hash-c", repositories.StatusFailed, 30, 0, 0),
	}
	for _, log := range logs {
		if err := repo.Create(ctx, log); err != nil {
			t.Fatalf("Failed to create upload log %s: %v", log.UUID, err)
		}
	}

	// Фильтр по статусам
	filtered, total, err := repo.List(ctx, repositories.UploadLogFilter{
		Status: []string{repositories.StatusCompleted, repositories.StatusPartial},
	})
	if err != nil {
		t.Fatalf("Failed to list upload logs: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected total 2 for status filter, got %d", total)
	}
	if len(filtered) != 2 {
		t.Errorf("Expected 2 rows for status filter, got %d", len(filtered))
	}

	// Пагинация не меняет полный счетчик
	page, total, err := repo.List(ctx, repositories.UploadLogFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Failed to list upload logs with limit: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3 without filter, got %d", total)
	}
	if len(page) != 1 {
		t.Errorf("Expected 1 row per page, got %d", len(page))
	}

	bySession, err := repo.GetBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Failed to get logs by session: %v", err)
	}
	if len(bySession) != 2 {
		t.Errorf("Expected 2 logs for session, got %d", len(bySession))
	}

	stats, err := repo.GetStatistics(ctx)
	if err != nil {
		t.Fatalf("Failed to get statistics: %v", err)
	}
	if stats.TotalFiles != 3 {
		t.Errorf("Expected 3 total files, got %d", stats.TotalFiles)
	}
	if stats.CompletedFiles != 1 || stats.PartialFiles != 1 || stats.FailedFiles != 1 {
		t.Errorf("Expected 1/1/1 by status, got %d/%d/%d", stats.CompletedFiles, stats.PartialFiles, stats.FailedFiles)
	}
	if stats.RecordsValid != 23 || stats.RecordsInvalid != 7 {
		t.Errorf("Expected 23/7 record totals, got %d/%d", stats.RecordsValid, stats.RecordsInvalid)
	}
	if stats.AverageRows != 20 {
		t.Errorf("Expected average 20 rows, got %f", stats.AverageRows)
	}
}
