package persistence

import (
	"context"
	"testing"
	"time"

	"raisserver/database"
	"raisserver/internal/domain/repositories"
)

func defectOccurrence(date time.Time, stage, code string, quantity float64, uploadUUID string) repositories.DefectOccurrence {
	return repositories.DefectOccurrence{
		OccurredOn:   date,
		Granularity:  repositories.GranularityDay,
		Stage:        stage,
		DefectCode:   code,
		Quantity:     quantity,
		UploadUUID:   uploadUUID,
		SourceFile:   "daily.xlsx",
		SourceSheet:  "Sheet1",
		SourceRow:    2,
		SourceColumn: code,
	}
}

// TestDefectBatchInsertAndList проверяет пакетную запись фактов и выборку с фильтрами
func TestDefectBatchInsertAndList(t *testing.T) {
	db, err := database.NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	repo := NewDefectRepository(db)
	ctx := context.Background()

	jan10 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	jan11 := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	feb05 := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

	occurrences := []repositories.DefectOccurrence{
		defectOccurrence(jan10, repositories.StageVisual, "COAG", 3, "upload-1"),
		defectOccurrence(jan10, repositories.StageVisual, "RAISED_WIRE", 2, "upload-1"),
		defectOccurrence(jan11, repositories.StageVisual, "COAG", 1, "upload-1"),
		defectOccurrence(feb05, repositories.StageAssembly, "BUBBLE", 7, "upload-1"),
	}
	if err := repo.BatchInsert(ctx, occurrences); err != nil {
		t.Fatalf("Failed to batch insert defects: %v", err)
	}

	all, total, err := repo.List(ctx, repositories.DefectFilter{})
	if err != nil {
		t.Fatalf("Failed to list defects: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Fatalf("Expected 4 defect occurrences, got %d (total %d)", len(all), total)
	}
	if !all[0].OccurredOn.Equal(jan10) || all[0].DefectCode != "COAG" {
		t.Errorf("Expected first row COAG on %v, got %s on %v", jan10, all[0].DefectCode, all[0].OccurredOn)
	}

	byCode, total, err := repo.List(ctx, repositories.DefectFilter{Codes: []string{"COAG"}})
	if err != nil {
		t.Fatalf("Failed to list by code: %v", err)
	}
	if total != 2 || len(byCode) != 2 {
		t.Errorf("Expected 2 COAG occurrences, got %d (total %d)", len(byCode), total)
	}

	byStage, _, err := repo.List(ctx, repositories.DefectFilter{Stage: repositories.StageAssembly})
	if err != nil {
		t.Fatalf("Failed to list by stage: %v", err)
	}
	if len(byStage) != 1 || byStage[0].DefectCode != "BUBBLE" {
		t.Errorf("Expected 1 assembly occurrence BUBBLE, got %d", len(byStage))
	}

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	january, _, err := repo.List(ctx, repositories.DefectFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("Failed to list by date range: %v", err)
	}
	if len(january) != 3 {
		t.Errorf("Expected 3 January occurrences, got %d", len(january))
	}
}

// TestDefectTopCodes проверяет рейтинг кодов по суммарному количеству
func TestDefectTopCodes(t *testing.T) {
	db, err := database.NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	repo := NewDefectRepository(db)
	ctx := context.Background()

	jan10 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	jan11 := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	occurrences := []repositories.DefectOccurrence{
		defectOccurrence(jan10, repositories.StageVisual, "COAG", 3, "upload-1"),
		defectOccurrence(jan11, repositories.StageVisual, "COAG", 1, "upload-1"),
		defectOccurrence(jan10, repositories.StageVisual, "RAISED_WIRE", 2, "upload-1"),
		defectOccurrence(jan11, repositories.StageAssembly, "BUBBLE", 7, "upload-1"),
	}
	if err := repo.BatchInsert(ctx, occurrences); err != nil {
		t.Fatalf("Failed to batch insert defects: %v", err)
	}

	top, err := repo.TopCodes(ctx, repositories.DefectFilter{}, 2)
	if err != nil {
		t.Fatalf("Failed to get top codes: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 top codes, got %d", len(top))
	}
	if top[0].DefectCode != "BUBBLE" || top[0].Quantity != 7 || top[0].Count != 1 {
		t.Errorf("Expected BUBBLE 7/1 first, got %s %f/%d", top[0].DefectCode, top[0].Quantity, top[0].Count)
	}
	if top[1].DefectCode != "COAG" || top[1].Quantity != 4 || top[1].Count != 2 {
		t.Errorf("Expected COAG 4/2 second, got %s %f/%d", top[1].DefectCode, top[1].Quantity, top[1].Count)
	}

	// Фильтр сужает рейтинг до одной стадии
	topVisual, err := repo.TopCodes(ctx, repositories.DefectFilter{Stage: repositories.StageVisual}, 5)
	if err != nil {
		t.Fatalf("Failed to get top visual codes: %v", err)
	}
	if len(topVisual) != 2 || topVisual[0].DefectCode != "COAG" {
		t.Errorf("Expected COAG to lead visual stage, got %+v", topVisual)
	}
}

// TestDefectGetByUpload проверяет выборку фактов одной загрузки
func TestDefectGetByUpload(t *testing.T) {
	db, err := database.NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	defer db.Close()

	repo := NewDefectRepository(db)
	ctx := context.Background()

	jan10 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	occurrences := []repositories.DefectOccurrence{
		defectOccurrence(jan10, repositories.StageVisual, "COAG", 3, "upload-1"),
		defectOccurrence(jan10, repositories.StageVisual, "BUBBLE", 2, "upload-2"),
	}
	if err := repo.BatchInsert(ctx, occurrences); err != nil {
		t.Fatalf("Failed to batch insert defects: %v", err)
	}

	mine, err := repo.GetByUpload(ctx, "upload-1")
	if err != nil {
		t.Fatalf("Failed to get defects by upload: %v", err)
	}
	if len(mine) != 1 || mine[0].DefectCode != "COAG" {
		t.Errorf("Expected 1 COAG occurrence for upload-1, got %d", len(mine))
	}

	// Пустой пакет не является ошибкой
	if err := repo.BatchInsert(ctx, nil); err != nil {
		t.Errorf("Expected nil error for empty batch, got %v", err)
	}
}
