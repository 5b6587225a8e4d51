package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"raisserver/internal/api/handlers"
	"raisserver/internal/application/ingestion"
	"raisserver/internal/config"
	"raisserver/internal/domain/repositories"
)

// uploadPage страница журнала загрузок из ответа history
type uploadPage struct {
	Items  []repositories.UploadLog `json:"items"`
	Total  int64                    `json:"total"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
	Pages  int64                    `json:"pages"`
}

// TestUploadEndpointAcceptsBatch проверяет прием файла: 202, квитанция
// с идентификаторами и задание в очереди
func TestUploadEndpointAcceptsBatch(t *testing.T) {
	s := newTestStack(t, nil)

	w := doRequest(t, s.router, uploadRequest(t, []ingestion.FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t, 100)},
	}))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("Expected success envelope")
	}

	var receipt ingestion.SessionReceipt
	if err := json.Unmarshal(env.Data, &receipt); err != nil {
		t.Fatalf("Failed to decode receipt: %v", err)
	}
	if receipt.SessionUUID == "" {
		t.Error("Expected session UUID in receipt")
	}
	if len(receipt.Files) != 1 {
		t.Fatalf("Expected 1 file receipt, got %d", len(receipt.Files))
	}
	if receipt.Files[0].Exists || receipt.Files[0].UploadID == "" {
		t.Errorf("Expected fresh file receipt, got %+v", receipt.Files[0])
	}
	if s.pool.QueueDepth() != 1 {
		t.Errorf("Expected 1 queued job, got %d", s.pool.QueueDepth())
	}

	// Статус сессии доступен сразу после приема
	w = doRequest(t, s.router, httptest.NewRequest("GET", "/api/upload/status/"+receipt.SessionUUID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var status ingestion.SessionStatus
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &status); err != nil {
		t.Fatalf("Failed to decode session status: %v", err)
	}
	if status.Session.Status != repositories.StatusPending {
		t.Errorf("Expected pending session, got %s", status.Session.Status)
	}
	if len(status.Files) != 1 {
		t.Errorf("Expected 1 file in session status, got %d", len(status.Files))
	}
}

// emptyFormRequest собирает multipart форму без единого файла
func emptyFormRequest(t *testing.T) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("comment", "no files here"); err != nil {
		t.Fatalf("Failed to write form field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// TestUploadEndpointRejectsBadRequests проверяет отклонение некорректных запросов
func TestUploadEndpointRejectsBadRequests(t *testing.T) {
	s := newTestStack(t, func(cfg *config.Config) {
		cfg.MaxUploadFiles = 2
		cfg.MaxFileSizeBytes = 1024
	})
	small := []byte{1, 2, 3}

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"Не multipart", httptest.NewRequest("POST", "/api/upload", strings.NewReader("plain text"))},
		{"Без файлов", emptyFormRequest(t)},
		{"Слишком много файлов", uploadRequest(t, []ingestion.FileInput{
			{Name: "a.xlsx", Data: small},
			{Name: "b.xlsx", Data: small},
			{Name: "c.xlsx", Data: small},
		})},
		{"Превышение размера", uploadRequest(t, []ingestion.FileInput{
			{Name: "big.xlsx", Data: make([]byte, 2048)},
		})},
		{"Недопустимое расширение", uploadRequest(t, []ingestion.FileInput{
			{Name: "report.csv", Data: small},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s.router, tt.req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			env := decodeEnvelope(t, w)
			if env.Success || env.Error == "" {
				t.Errorf("Expected error envelope, got %+v", env)
			}
		})
	}

	// Ни один из отклоненных запросов не оставил задания в очереди
	if s.pool.QueueDepth() != 0 {
		t.Errorf("Expected empty queue, got %d", s.pool.QueueDepth())
	}
}

// TestUploadEndpointDeduplicates проверяет повторную загрузку тех же байт:
// ответ 200 вместо 202, квитанция указывает на первую загрузку
func TestUploadEndpointDeduplicates(t *testing.T) {
	s := newTestStack(t, nil)
	data := buildVisualWorkbook(t, 100)

	w := doRequest(t, s.router, uploadRequest(t, []ingestion.FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: data},
	}))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	var first ingestion.SessionReceipt
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &first); err != nil {
		t.Fatalf("Failed to decode first receipt: %v", err)
	}

	w = doRequest(t, s.router, uploadRequest(t, []ingestion.FileInput{
		{Name: "Visual Inspection Report Jan copy.xlsx", Data: data},
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for duplicate-only upload, got %d: %s", w.Code, w.Body.String())
	}
	var second ingestion.SessionReceipt
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &second); err != nil {
		t.Fatalf("Failed to decode second receipt: %v", err)
	}
	if len(second.Files) != 1 || !second.Files[0].Exists {
		t.Errorf("Expected duplicate receipt marked existing, got %+v", second.Files)
	}
	if second.Files[0].UploadID != first.Files[0].UploadID {
		t.Errorf("Expected duplicate to reference upload %s, got %s",
			first.Files[0].UploadID, second.Files[0].UploadID)
	}

	// Повторная загрузка не добавляет второго задания
	if s.pool.QueueDepth() != 1 {
		t.Errorf("Expected 1 queued job, got %d", s.pool.QueueDepth())
	}
}

// TestUploadEndpointQueueFull проверяет переполнение очереди: 503 и закрытая
// failed сессия вместо зависшей pending
func TestUploadEndpointQueueFull(t *testing.T) {
	s := newTestStack(t, func(cfg *config.Config) {
		cfg.IngestQueueSize = 1
	})

	w := doRequest(t, s.router, uploadRequest(t, []ingestion.FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t, 100)},
	}))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	// Воркеры не запущены: единственное место очереди занято первым заданием
	w = doRequest(t, s.router, uploadRequest(t, []ingestion.FileInput{
		{Name: "Visual Inspection Report Feb.xlsx", Data: buildVisualWorkbook(t, 200)},
	}))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d: %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Error == "" {
		t.Errorf("Expected error envelope, got %+v", env)
	}

	recent, err := s.sessions.GetRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	failed := 0
	for _, sess := range recent {
		if sess.Status == repositories.StatusFailed {
			failed++
			if sess.ErrorMessage != "ingest queue is full" {
				t.Errorf("Expected queue-full reason, got %q", sess.ErrorMessage)
			}
		}
	}
	if failed != 1 {
		t.Errorf("Expected exactly 1 failed session, got %d of %d", failed, len(recent))
	}
}

// TestUploadStatusNotFound проверяет запрос состояния несуществующей сессии
func TestUploadStatusNotFound(t *testing.T) {
	s := newTestStack(t, nil)

	w := doRequest(t, s.router, httptest.NewRequest("GET", "/api/upload/status/no-such-session", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Error == "" {
		t.Errorf("Expected error envelope, got %+v", env)
	}
}

// TestUploadHistoryEndpoint проверяет журнал загрузок: страница, фильтры
// и отклонение неверных параметров
func TestUploadHistoryEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	_, uploadUUID := seedProcessedUpload(t, s)

	w := doRequest(t, s.router, httptest.NewRequest("GET", "/api/upload/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var page uploadPage
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &page); err != nil {
		t.Fatalf("Failed to decode history page: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("Expected 1 history entry, got total %d", page.Total)
	}
	if page.Items[0].UUID != uploadUUID {
		t.Errorf("Expected upload %s in history, got %s", uploadUUID, page.Items[0].UUID)
	}
	if page.Limit != 50 || page.Pages != 1 {
		t.Errorf("Expected default page limit 50 with 1 page, got limit %d pages %d", page.Limit, page.Pages)
	}

	// Фильтр по статусу отсекает завершенную загрузку
	w = doRequest(t, s.router, httptest.NewRequest("GET", "/api/upload/history?status=failed", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &page); err != nil {
		t.Fatalf("Failed to decode filtered page: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("Expected empty page for failed filter, got total %d", page.Total)
	}

	// Неверные параметры отклоняются
	for _, target := range []string{
		"/api/upload/history?limit=abc",
		"/api/upload/history?date_from=10-01-2025",
	} {
		w = doRequest(t, s.router, httptest.NewRequest("GET", target, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", target, w.Code)
		}
	}
}

// TestUploadStatsEndpoint проверяет сводную статистику загрузок
func TestUploadStatsEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	seedProcessedUpload(t, s)

	w := doRequest(t, s.router, httptest.NewRequest("GET", "/api/upload/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats handlers.UploadStatsResponse
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.Statistics == nil {
		t.Fatal("Expected statistics in response")
	}
	if stats.Statistics.TotalFiles != 1 || stats.Statistics.CompletedFiles != 1 {
		t.Errorf("Expected 1 completed file, got %+v", stats.Statistics)
	}
	if len(stats.RecentSessions) != 1 {
		t.Errorf("Expected 1 recent session, got %d", len(stats.RecentSessions))
	}
}

// TestCancelEndpoint проверяет запрос отмены сессии
func TestCancelEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	ctx := context.Background()

	receipt, _, err := s.ingest.CreateSession(ctx, []ingestion.FileInput{
		{Name: "Visual Inspection Report Jan.xlsx", Data: buildVisualWorkbook(t, 100)},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	w := doRequest(t, s.router, httptest.NewRequest("POST", "/api/upload/cancel/"+receipt.SessionUUID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !decodeEnvelope(t, w).Success {
		t.Error("Expected success envelope")
	}

	session, err := s.sessions.GetByUUID(ctx, receipt.SessionUUID)
	if err != nil {
		t.Fatalf("GetByUUID failed: %v", err)
	}
	if !session.CancelFlag {
		t.Error("Expected cancel flag to be set")
	}

	w = doRequest(t, s.router, httptest.NewRequest("POST", "/api/upload/cancel/no-such-session", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown session, got %d", w.Code)
	}
}

// TestUploadDataEndpoint проверяет выдачу нормализованных данных загрузки
func TestUploadDataEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	_, uploadUUID := seedProcessedUpload(t, s)

	w := doRequest(t, s.router, httptest.NewRequest("GET", "/api/upload/"+uploadUUID+"/data", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var data ingestion.UploadData
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("Failed to decode upload data: %v", err)
	}
	if data.Upload == nil || data.Upload.UUID != uploadUUID {
		t.Errorf("Expected upload %s in data, got %+v", uploadUUID, data.Upload)
	}
	if len(data.Inspections) != 1 {
		t.Errorf("Expected 1 inspection summary, got %d", len(data.Inspections))
	}
	if len(data.Defects) != 2 {
		t.Errorf("Expected 2 defect occurrences, got %d", len(data.Defects))
	}

	w = doRequest(t, s.router, httptest.NewRequest("GET", "/api/upload/no-such-upload/data", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown upload, got %d", w.Code)
	}
}
