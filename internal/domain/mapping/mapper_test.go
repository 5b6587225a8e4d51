package mapping

import (
	"testing"

	"raisserver/internal/domain/sheet"
)

func mapHeaders(t *testing.T, headers []string) *ColumnMapping {
	t.Helper()
	rs := &sheet.RawSheet{
		WorkbookName: "test.xlsx",
		SheetName:    "Sheet1",
		Headers:      headers,
	}
	cm, _ := NewMapper().MapSheet(rs)
	return cm
}

// TestMapSheetCanonicalAndPivot проверяет разбиение колонок: канонические против pivot
func TestMapSheetCanonicalAndPivot(t *testing.T) {
	cm := mapHeaders(t, []string{"Date", "Visual Qty", "Coag", "Raised Wire"})

	if got := cm.Column(FieldDate); got != 0 {
		t.Errorf("date column = %d, want 0", got)
	}
	if got := cm.Column(FieldInspectedQty); got != 1 {
		t.Errorf("inspected column = %d, want 1", got)
	}
	if len(cm.Pivot) != 2 {
		t.Fatalf("pivot columns = %d, want 2", len(cm.Pivot))
	}
	if cm.Pivot[0].DefectCode != "COAG" || cm.Pivot[0].Index != 2 {
		t.Errorf("pivot[0] = %+v", cm.Pivot[0])
	}
	if cm.Pivot[1].DefectCode != "RAISED_WIRE" || cm.Pivot[1].Index != 3 {
		t.Errorf("pivot[1] = %+v", cm.Pivot[1])
	}
}

// TestMapSheetSynonyms проверяет таблицу синонимов и нечувствительность к регистру
func TestMapSheetSynonyms(t *testing.T) {
	cm := mapHeaders(t, []string{"NG", "Lot", "Despatch", "RECD QTY", "Passed"})

	cases := map[string]int{
		FieldRejectedQty: 0,
		FieldBatch:       1,
		FieldDispatchQty: 2,
		FieldReceivedQty: 3,
		FieldAcceptedQty: 4,
	}
	for field, want := range cases {
		if got := cm.Column(field); got != want {
			t.Errorf("%s column = %d, want %d", field, got, want)
		}
	}
	if len(cm.Pivot) != 0 {
		t.Errorf("pivot = %+v, want empty", cm.Pivot)
	}
}

// TestMapSheetStemming проверяет совпадение по стеммам токенов
func TestMapSheetStemming(t *testing.T) {
	cm := mapHeaders(t, []string{"Rejections", "Inspections Qty"})

	if got := cm.Column(FieldRejectedQty); got != 0 {
		t.Errorf("rejected column = %d, want 0", got)
	}
	if got := cm.Column(FieldInspectedQty); got != 1 {
		t.Errorf("inspected column = %d, want 1", got)
	}
}

// TestMapSheetDuplicateColumns проверяет, что первый из дублей побеждает
func TestMapSheetDuplicateColumns(t *testing.T) {
	rs := &sheet.RawSheet{
		WorkbookName: "test.xlsx",
		SheetName:    "Sheet1",
		Headers:      []string{"Rejected", "Scrap Qty"},
	}
	cm, findings := NewMapper().MapSheet(rs)

	if got := cm.Column(FieldRejectedQty); got != 0 {
		t.Errorf("rejected column = %d, want 0", got)
	}
	if len(findings) != 1 || findings[0].Code != "DUPLICATE_COLUMN" {
		t.Fatalf("findings = %+v, want one DUPLICATE_COLUMN", findings)
	}
	if len(cm.Ignored) != 1 || cm.Ignored[0] != "Scrap Qty" {
		t.Errorf("ignored = %v", cm.Ignored)
	}
}

// TestMapSheetIgnoresUnknown проверяет игнор прочих колонок и плейсхолдеров
func TestMapSheetIgnoresUnknown(t *testing.T) {
	cm := mapHeaders(t, []string{"S.No", "Date", "COL_3", "Shift Supervisor"})

	if got := cm.Column(FieldDate); got != 1 {
		t.Errorf("date column = %d, want 1", got)
	}
	if len(cm.Pivot) != 0 {
		t.Errorf("pivot = %+v, want empty", cm.Pivot)
	}
	if len(cm.Ignored) != 3 {
		t.Errorf("ignored = %v, want 3 entries", cm.Ignored)
	}
}
