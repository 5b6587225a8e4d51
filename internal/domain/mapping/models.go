package mapping

// Канонические поля нормализованной схемы
const (
	FieldDate         = "date"
	FieldMonth        = "month"
	FieldYear         = "year"
	FieldProduct      = "product"
	FieldBatch        = "batch"
	FieldProducedQty  = "produced_quantity"
	FieldDispatchQty  = "dispatched_quantity"
	FieldReceivedQty  = "received_quantity"
	FieldInspectedQty = "inspected_quantity"
	FieldAcceptedQty  = "accepted_quantity"
	FieldRejectedQty  = "rejected_quantity"
	FieldHoldQty      = "hold_quantity"
	FieldRemarks      = "remarks"
)

// PivotColumn колонка дефекта, не попавшая в каноническую схему
type PivotColumn struct {
	Index      int    `json:"index"`
	Header     string `json:"header"`
	DefectCode string `json:"defect_code"`
}

// ColumnMapping неизменяемое сопоставление колонок одного листа.
// Колонка либо каноническая, либо pivot, либо игнорируется.
type ColumnMapping struct {
	Canonical map[string]int `json:"canonical"` // поле -> индекс колонки
	Pivot     []PivotColumn  `json:"pivot"`     // упорядочены по индексу
	Ignored   []string       `json:"ignored,omitempty"`
}

// Column возвращает индекс колонки канонического поля или -1
func (m *ColumnMapping) Column(field string) int {
	if idx, ok := m.Canonical[field]; ok {
		return idx
	}
	return -1
}

// HasField истинно, когда каноническое поле сопоставлено
func (m *ColumnMapping) HasField(field string) bool {
	_, ok := m.Canonical[field]
	return ok
}
