package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestPipelineMetricsCounters проверяет регистрацию и инкременты счетчиков
func TestPipelineMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPipelineMetrics(registry)

	m.IncUpload("completed")
	m.IncUpload("completed")
	m.IncUpload("failed")
	m.IncFileProcessed("visual_inspection", "completed")
	m.IncFileProcessed("", "failed")
	m.AddRowsAccepted(5)
	m.AddRowsRejected(2)
	m.AddDefectOccurrences(7)
	m.UploadStarted()
	m.ObserveStageDuration("parse", 120*time.Millisecond)
	m.IncError("ValidationError", 400, "/api/upload")

	if got := testutil.ToFloat64(m.uploadsTotal.WithLabelValues("completed")); got != 2 {
		t.Errorf("Expected 2 completed uploads, got %f", got)
	}
	if got := testutil.ToFloat64(m.filesProcessedTotal.WithLabelValues("unknown", "failed")); got != 1 {
		t.Errorf("Expected empty file type to count as unknown, got %f", got)
	}
	if got := testutil.ToFloat64(m.rowsAcceptedTotal); got != 5 {
		t.Errorf("Expected 5 accepted rows, got %f", got)
	}
	if got := testutil.ToFloat64(m.uploadsInFlight); got != 1 {
		t.Errorf("Expected 1 upload in flight, got %f", got)
	}

	m.UploadFinished()
	if got := testutil.ToFloat64(m.uploadsInFlight); got != 0 {
		t.Errorf("Expected 0 uploads in flight, got %f", got)
	}

	// Отрицательные и нулевые приращения игнорируются
	m.AddRowsAccepted(0)
	m.AddRowsAccepted(-3)
	if got := testutil.ToFloat64(m.rowsAcceptedTotal); got != 5 {
		t.Errorf("Expected accepted rows to stay 5, got %f", got)
	}
}

// TestPipelineMetricsNilSafe проверяет, что нулевой экземпляр не паникует
func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	m.IncUpload("completed")
	m.AddRowsAccepted(1)
	m.ObserveStageDuration("parse", time.Second)
	m.UploadStarted()
	m.UploadFinished()
	m.IncError("InternalError", 500, "/api/upload")
}
