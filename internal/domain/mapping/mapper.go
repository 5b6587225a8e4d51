package mapping

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball"

	"raisserver/internal/domain/repositories"
	"raisserver/internal/domain/sheet"
)

// canonicalFieldOrder фиксированный порядок полей для детерминированного разрешения конфликтов
var canonicalFieldOrder = []string{
	FieldDate,
	FieldMonth,
	FieldYear,
	FieldProduct,
	FieldBatch,
	FieldProducedQty,
	FieldDispatchQty,
	FieldReceivedQty,
	FieldInspectedQty,
	FieldAcceptedQty,
	FieldRejectedQty,
	FieldHoldQty,
	FieldRemarks,
}

// canonicalSynonyms синонимы заголовков по каноническим полям
var canonicalSynonyms = map[string][]string{
	FieldDate:         {"date", "inspection date", "prod date", "date of inspection"},
	FieldMonth:        {"month"},
	FieldYear:         {"year"},
	FieldProduct:      {"product", "product name", "item", "item name", "sku"},
	FieldBatch:        {"batch", "batch no", "batch number", "lot", "lot no"},
	FieldProducedQty:  {"production", "produced", "production qty", "prod qty", "total production"},
	FieldDispatchQty:  {"dispatch", "dispatched", "dispatch qty", "despatch", "despatched"},
	FieldReceivedQty:  {"received", "received qty", "recd", "recd qty"},
	FieldInspectedQty: {"inspected", "inspected qty", "inspection qty", "checked", "tested", "visual qty", "total inspected"},
	FieldAcceptedQty:  {"accepted", "accepted qty", "passed", "ok qty", "good"},
	FieldRejectedQty:  {"rejected", "reject", "ng", "scrap qty", "fail qty", "rejected qty", "total rejected"},
	FieldHoldQty:      {"hold", "on hold", "hold qty", "quarantine"},
	FieldRemarks:      {"remarks", "remark", "comments", "note", "notes", "result"},
}

// Mapper сопоставляет заголовки листа каноническим полям.
// Сначала точное совпадение нормализованного текста, затем по стеммам токенов.
type Mapper struct {
	exact   map[string]string
	stemmed map[string]string
}

// NewMapper строит индексы синонимов; порядок полей фиксирован
func NewMapper() *Mapper {
	m := &Mapper{
		exact:   make(map[string]string),
		stemmed: make(map[string]string),
	}
	for _, field := range canonicalFieldOrder {
		m.add(field, strings.ReplaceAll(field, "_", " "))
		for _, syn := range canonicalSynonyms[field] {
			m.add(field, syn)
		}
	}
	return m
}

func (m *Mapper) add(field, phrase string) {
	normalized := sheet.NormalizeHeader(phrase)
	if normalized == "" {
		return
	}
	if _, ok := m.exact[normalized]; !ok {
		m.exact[normalized] = field
	}
	st := stemPhrase(normalized)
	if _, ok := m.stemmed[st]; !ok {
		m.stemmed[st] = field
	}
}

// stemPhrase стеммирует каждый токен фразы, сохраняя порядок
func stemPhrase(phrase string) string {
	tokens := strings.Fields(phrase)
	for i, tok := range tokens {
		if st, err := snowball.Stem(tok, "english", true); err == nil && st != "" {
			tokens[i] = st
		}
	}
	return strings.Join(tokens, " ")
}

// lookup возвращает каноническое поле для нормализованного заголовка
func (m *Mapper) lookup(normalized string) (string, bool) {
	if field, ok := m.exact[normalized]; ok {
		return field, true
	}
	if field, ok := m.stemmed[stemPhrase(normalized)]; ok {
		return field, true
	}
	return "", false
}

// MapSheet строит неизменяемое сопоставление колонок листа.
// Сопоставленная колонка исключается из pivot-набора; несопоставленные заголовки,
// похожие на имена дефектов, образуют pivot-набор.
func (m *Mapper) MapSheet(rs *sheet.RawSheet) (*ColumnMapping, []repositories.Finding) {
	cm := &ColumnMapping{Canonical: make(map[string]int)}
	var findings []repositories.Finding

	for idx, header := range rs.Headers {
		normalized := sheet.NormalizeHeader(header)
		if normalized == "" {
			continue
		}

		if field, ok := m.lookup(normalized); ok {
			if _, taken := cm.Canonical[field]; taken {
				findings = append(findings, repositories.Finding{
					Severity: repositories.SeverityWarning,
					Code:     "DUPLICATE_COLUMN",
					Message:  fmt.Sprintf("column %q also maps to %s, first match kept", header, field),
					File:     rs.WorkbookName,
					Sheet:    rs.SheetName,
					Column:   header,
				})
				cm.Ignored = append(cm.Ignored, header)
				continue
			}
			cm.Canonical[field] = idx
			continue
		}

		if code, ok := DefectCodeFor(header); ok {
			cm.Pivot = append(cm.Pivot, PivotColumn{Index: idx, Header: header, DefectCode: code})
			continue
		}

		cm.Ignored = append(cm.Ignored, header)
	}

	return cm, findings
}
