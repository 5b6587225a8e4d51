package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"raisserver/database"
	"raisserver/internal/apperrors"
	"raisserver/internal/config"
	"raisserver/internal/domain/repositories"
	"raisserver/internal/infrastructure/archive"
	"raisserver/internal/infrastructure/persistence"
)

type testEnv struct {
	svc       *Service
	sessions  repositories.UploadSessionRepository
	uploads   repositories.UploadLogRepository
	summaries repositories.SummaryRepository
	defects   repositories.DefectRepository
	rollups   repositories.RollupRepository
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	db, err := database.NewRaisDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create RaisDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if cfg == nil {
		cfg = config.GetDefaults()
	}

	env := &testEnv{
		sessions:  persistence.NewUploadSessionRepository(db),
		uploads:   persistence.NewUploadLogRepository(db),
		summaries: persistence.NewSummaryRepository(db),
		defects:   persistence.NewDefectRepository(db),
		rollups:   persistence.NewRollupRepository(db),
	}

	svc, err := NewService(cfg, env.sessions, env.uploads, env.summaries, env.defects, env.rollups,
		archive.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("Failed to create ingestion service: %v", err)
	}
	env.svc = svc
	return env
}

// buildWorkbook собирает xlsx в памяти для тестов конвейера
func buildWorkbook(t *testing.T, fill func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	fill(f)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func buildVisualWorkbook(t *testing.T) []byte {
	return buildWorkbook(t, func(f *excelize.File) {
		sheet := f.GetSheetName(0)
		f.SetCellValue(sheet, "A1", "Date")
		f.SetCellValue(sheet, "B1", "Visual Qty")
		f.SetCellValue(sheet, "C1", "Coag")
		f.SetCellValue(sheet, "D1", "Raised Wire")
		f.SetCellValue(sheet, "A2", "2025-01-10")
		f.SetCellValue(sheet, "B2", 100)
		f.SetCellValue(sheet, "C2", 3)
		f.SetCellValue(sheet, "D2", 2)
	})
}

// TestCreateSessionValidation проверяет отклонение запросов до создания сессии
func TestCreateSessionValidation(t *testing.T) {
	cfg := config.GetDefaults()
	cfg.MaxUploadFiles = 2
	cfg.MaxFileSizeBytes = 64
	env := newTestEnv(t, cfg)
	ctx := context.Background()

	small := []byte{1, 2, 3}
	big := make([]byte, 100)

	tests := []struct {
		name  string
		files []FileInput
	}{
		{"Пустой запрос", nil},
		{"Слишком много файлов", []FileInput{
			{Name: "a.xlsx", Data: small},
			{Name: "b.xlsx", Data: small},
			{Name: "c.xlsx", Data: small},
		}},
		{"Недопустимое расширение", []FileInput{{Name: "report.csv", Data: small}}},
		{"Пустой файл", []FileInput{{Name: "empty.xlsx", Data: nil}}},
		{"Превышение размера", []FileInput{{Name: "big.xlsx", Data: big}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.svc.CreateSession(ctx, tt.files)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected AppError, got %T: %v", err, err)
			}
			if appErr.StatusCode() != 400 {
				t.Errorf("Expected status 400, got %d", appErr.StatusCode())
			}
		})
	}
}

// TestCreateSessionDeduplicatesAcrossRequests проверяет дедупликацию по хешу
// содержимого: повторная загрузка тех же байт не создает новой записи
func TestCreateSessionDeduplicatesAcrossRequests(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	data := buildVisualWorkbook(t)

	receipt1, job1, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: data},
	})
	if err != nil {
		t.Fatalf("First CreateSession failed: %v", err)
	}
	if job1 == nil || len(job1.Files) != 1 {
		t.Fatalf("Expected job with 1 file, got %+v", job1)
	}
	if receipt1.Files[0].Exists {
		t.Error("First upload must not be marked as existing")
	}

	// Те же байты под другим именем: квитанция указывает на первую загрузку
	receipt2, job2, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan copy.xlsx", Data: data},
	})
	if err != nil {
		t.Fatalf("Second CreateSession failed: %v", err)
	}
	if job2 != nil {
		t.Error("Duplicate-only session must not produce a job")
	}
	if !receipt2.Files[0].Exists {
		t.Error("Expected duplicate receipt to be marked existing")
	}
	if receipt2.Files[0].UploadID != receipt1.Files[0].UploadID {
		t.Errorf("Expected upload ID %s, got %s", receipt1.Files[0].UploadID, receipt2.Files[0].UploadID)
	}

	// Сессия без новых файлов завершается сразу
	session, err := env.sessions.GetByUUID(ctx, receipt2.SessionUUID)
	if err != nil {
		t.Fatalf("Failed to get duplicate-only session: %v", err)
	}
	if session.Status != repositories.StatusCompleted {
		t.Errorf("Expected session status %s, got %s", repositories.StatusCompleted, session.Status)
	}
	if session.FilesTotal != 0 {
		t.Errorf("Expected 0 files total, got %d", session.FilesTotal)
	}

	// Журнал содержит одну запись на уникальные байты
	logs, total, err := env.uploads.List(ctx, repositories.UploadLogFilter{})
	if err != nil {
		t.Fatalf("Failed to list uploads: %v", err)
	}
	if total != 1 || len(logs) != 1 {
		t.Errorf("Expected exactly 1 upload log, got %d", total)
	}
}

// TestCreateSessionDeduplicatesWithinRequest проверяет дедупликацию внутри запроса
func TestCreateSessionDeduplicatesWithinRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	data := buildVisualWorkbook(t)

	receipt, job, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: data},
		{Name: "Visual Inspection Report Jan copy.xlsx", Data: data},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if len(receipt.Files) != 2 {
		t.Fatalf("Expected 2 receipts, got %d", len(receipt.Files))
	}
	if receipt.Files[0].Exists {
		t.Error("First occurrence must not be marked existing")
	}
	if !receipt.Files[1].Exists {
		t.Error("Second occurrence of same bytes must be marked existing")
	}
	if receipt.Files[1].UploadID != receipt.Files[0].UploadID {
		t.Error("Duplicate within request must reference the first upload")
	}
	if job == nil || len(job.Files) != 1 {
		t.Fatalf("Expected job with 1 file, got %+v", job)
	}

	session, err := env.sessions.GetByUUID(ctx, receipt.SessionUUID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if session.FilesTotal != 1 {
		t.Errorf("Expected 1 file total, got %d", session.FilesTotal)
	}
}

// TestProcessSessionVisualInspection прогоняет отчет визуальной инспекции
// через весь конвейер: строка с Visual Qty 100, Coag 3 и Raised Wire 2 дает
// сводку inspected 100 / rejected 5 и два факта дефектов
func TestProcessSessionVisualInspection(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	receipt, job, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	env.svc.ProcessSession(ctx, job)

	session, err := env.sessions.GetByUUID(ctx, receipt.SessionUUID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if session.Status != repositories.StatusCompleted {
		t.Errorf("Expected session status %s, got %s (%s)",
			repositories.StatusCompleted, session.Status, session.ErrorMessage)
	}
	if session.FilesDone != 1 {
		t.Errorf("Expected 1 file done, got %d", session.FilesDone)
	}
	if session.Progress != 1.0 {
		t.Errorf("Expected progress 1.0, got %f", session.Progress)
	}

	uploadID := receipt.Files[0].UploadID
	logEntry, err := env.uploads.GetByUUID(ctx, uploadID)
	if err != nil {
		t.Fatalf("Failed to get upload log: %v", err)
	}
	if logEntry.Status != repositories.StatusCompleted {
		t.Errorf("Expected upload status %s, got %s (%s)",
			repositories.StatusCompleted, logEntry.Status, logEntry.ErrorMessage)
	}
	if logEntry.DetectedType != "visual_inspection" {
		t.Errorf("Expected detected type visual_inspection, got %s", logEntry.DetectedType)
	}
	if logEntry.Confidence <= 0 {
		t.Errorf("Expected positive confidence, got %f", logEntry.Confidence)
	}
	// Сводка инспекции и два факта дефектов
	if logEntry.RecordsValid != 3 {
		t.Errorf("Expected 3 valid records, got %d", logEntry.RecordsValid)
	}
	if logEntry.RecordsInvalid != 0 {
		t.Errorf("Expected 0 invalid records, got %d", logEntry.RecordsInvalid)
	}
	if logEntry.DefectCount != 2 {
		t.Errorf("Expected 2 defect occurrences, got %d", logEntry.DefectCount)
	}
	if logEntry.RowsTotal != 1 {
		t.Errorf("Expected 1 row total, got %d", logEntry.RowsTotal)
	}
	if logEntry.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}

	production, inspections, err := env.summaries.GetByUpload(ctx, uploadID)
	if err != nil {
		t.Fatalf("Failed to get summaries: %v", err)
	}
	if len(production) != 0 {
		t.Errorf("Expected no production summaries, got %d", len(production))
	}
	if len(inspections) != 1 {
		t.Fatalf("Expected 1 inspection summary, got %d", len(inspections))
	}
	ins := inspections[0]
	if ins.Stage != repositories.StageVisual {
		t.Errorf("Expected stage %s, got %s", repositories.StageVisual, ins.Stage)
	}
	if ins.Granularity != repositories.GranularityDay {
		t.Errorf("Expected granularity %s, got %s", repositories.GranularityDay, ins.Granularity)
	}
	if ins.InspectedQty != 100 {
		t.Errorf("Expected inspected 100, got %g", ins.InspectedQty)
	}
	// Явной колонки rejected нет: отбраковка выводится из суммы дефектов
	if ins.RejectedQty != 5 {
		t.Errorf("Expected rejected 5, got %g", ins.RejectedQty)
	}

	occurrences, err := env.defects.GetByUpload(ctx, uploadID)
	if err != nil {
		t.Fatalf("Failed to get defects: %v", err)
	}
	if len(occurrences) != 2 {
		t.Fatalf("Expected 2 defect occurrences, got %d", len(occurrences))
	}
	byCode := make(map[string]float64)
	for _, d := range occurrences {
		byCode[d.DefectCode] = d.Quantity
	}
	if byCode["COAG"] != 3 {
		t.Errorf("Expected COAG quantity 3, got %g", byCode["COAG"])
	}
	if byCode["RAISED_WIRE"] != 2 {
		t.Errorf("Expected RAISED_WIRE quantity 2, got %g", byCode["RAISED_WIRE"])
	}

	// Своды пересчитаны после сессии
	rollup, err := env.rollups.ListDefectRollup(ctx, "2025-01", "2025-01")
	if err != nil {
		t.Fatalf("Failed to list defect rollup: %v", err)
	}
	if len(rollup) != 2 {
		t.Errorf("Expected 2 defect rollup rows, got %d", len(rollup))
	}
}

// TestProcessSessionUnrecognizedFile проверяет отказ классификации:
// файл фиксируется failed, сессия без валидных записей тоже failed
func TestProcessSessionUnrecognizedFile(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	data := buildWorkbook(t, func(f *excelize.File) {
		sheet := f.GetSheetName(0)
		f.SetCellValue(sheet, "A1", "Alpha")
		f.SetCellValue(sheet, "B1", "Beta")
		f.SetCellValue(sheet, "A2", 1)
		f.SetCellValue(sheet, "B2", 2)
	})

	receipt, job, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "random data.xlsx", Data: data},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	env.svc.ProcessSession(ctx, job)

	logEntry, err := env.uploads.GetByUUID(ctx, receipt.Files[0].UploadID)
	if err != nil {
		t.Fatalf("Failed to get upload log: %v", err)
	}
	if logEntry.Status != repositories.StatusFailed {
		t.Errorf("Expected upload status %s, got %s", repositories.StatusFailed, logEntry.Status)
	}
	if logEntry.DetectedType != "unknown" {
		t.Errorf("Expected detected type unknown, got %s", logEntry.DetectedType)
	}
	if logEntry.ErrorMessage == "" {
		t.Error("Expected error message on classification failure")
	}

	session, err := env.sessions.GetByUUID(ctx, receipt.SessionUUID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if session.Status != repositories.StatusFailed {
		t.Errorf("Expected session status %s, got %s", repositories.StatusFailed, session.Status)
	}
}

// TestProcessSessionCancelledBeforeStart проверяет отмену до начала обработки
func TestProcessSessionCancelledBeforeStart(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	receipt, job, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := env.svc.Cancel(ctx, receipt.SessionUUID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	env.svc.ProcessSession(ctx, job)

	session, err := env.sessions.GetByUUID(ctx, receipt.SessionUUID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if session.Status != repositories.StatusFailed {
		t.Errorf("Expected session status %s, got %s", repositories.StatusFailed, session.Status)
	}

	logEntry, err := env.uploads.GetByUUID(ctx, receipt.Files[0].UploadID)
	if err != nil {
		t.Fatalf("Failed to get upload log: %v", err)
	}
	if logEntry.Status != repositories.StatusFailed {
		t.Errorf("Expected upload status %s, got %s", repositories.StatusFailed, logEntry.Status)
	}

	// Записи не создавались: конвейер не стартовал
	_, inspections, err := env.summaries.GetByUpload(ctx, receipt.Files[0].UploadID)
	if err != nil {
		t.Fatalf("Failed to get summaries: %v", err)
	}
	if len(inspections) != 0 {
		t.Errorf("Expected no inspection summaries after cancellation, got %d", len(inspections))
	}
}

// TestProcessSessionFileTimeout проверяет срабатывание таймаута файла
func TestProcessSessionFileTimeout(t *testing.T) {
	cfg := config.GetDefaults()
	cfg.ProcessingTimeout = time.Nanosecond
	env := newTestEnv(t, cfg)
	ctx := context.Background()

	receipt, job, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	env.svc.ProcessSession(ctx, job)

	logEntry, err := env.uploads.GetByUUID(ctx, receipt.Files[0].UploadID)
	if err != nil {
		t.Fatalf("Failed to get upload log: %v", err)
	}
	if logEntry.Status != repositories.StatusFailed {
		t.Errorf("Expected upload status %s, got %s", repositories.StatusFailed, logEntry.Status)
	}
	if logEntry.ErrorMessage != "processing timed out" {
		t.Errorf("Expected timeout message, got %q", logEntry.ErrorMessage)
	}
}

// TestGetSessionStatusAndUploadData проверяет запросы состояния и данных загрузки
func TestGetSessionStatusAndUploadData(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	receipt, job, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	env.svc.ProcessSession(ctx, job)

	status, err := env.svc.GetSessionStatus(ctx, receipt.SessionUUID)
	if err != nil {
		t.Fatalf("GetSessionStatus failed: %v", err)
	}
	if status.Session.Status != repositories.StatusCompleted {
		t.Errorf("Expected completed session, got %s", status.Session.Status)
	}
	if len(status.Files) != 1 {
		t.Errorf("Expected 1 file in session status, got %d", len(status.Files))
	}

	data, err := env.svc.GetUploadData(ctx, receipt.Files[0].UploadID)
	if err != nil {
		t.Fatalf("GetUploadData failed: %v", err)
	}
	if len(data.Inspections) != 1 {
		t.Errorf("Expected 1 inspection summary, got %d", len(data.Inspections))
	}
	if len(data.Defects) != 2 {
		t.Errorf("Expected 2 defect occurrences, got %d", len(data.Defects))
	}
	// Расхождение inspected и accepted+rejected остается замечанием-предупреждением
	foundGap := false
	for _, f := range data.Findings {
		if f.Code == "ACCOUNTING_GAP" {
			foundGap = true
		}
	}
	if !foundGap {
		t.Error("Expected ACCOUNTING_GAP finding in upload data")
	}

	// Неизвестные идентификаторы дают 404
	if _, err := env.svc.GetSessionStatus(ctx, "no-such-session"); err == nil {
		t.Error("Expected error for unknown session")
	} else {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.StatusCode() != 404 {
			t.Errorf("Expected 404 AppError, got %v", err)
		}
	}
	if _, err := env.svc.GetUploadData(ctx, "no-such-upload"); err == nil {
		t.Error("Expected error for unknown upload")
	} else {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.StatusCode() != 404 {
			t.Errorf("Expected 404 AppError, got %v", err)
		}
	}
}

// TestCancelNotFound проверяет отмену несуществующей сессии
func TestCancelNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	err := env.svc.Cancel(context.Background(), "no-such-session")
	if err == nil {
		t.Fatal("Expected error for unknown session")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.StatusCode() != 404 {
		t.Errorf("Expected 404 AppError, got %v", err)
	}
}

// TestReset проверяет полную очистку данных загрузок
func TestReset(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, job, err := env.svc.CreateSession(ctx, []FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	env.svc.ProcessSession(ctx, job)

	if err := env.svc.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	logs, total, err := env.svc.History(ctx, repositories.UploadLogFilter{})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if total != 0 || len(logs) != 0 {
		t.Errorf("Expected empty history after reset, got %d", total)
	}

	recent, err := env.svc.GetRecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentSessions failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Expected no sessions after reset, got %d", len(recent))
	}
}
