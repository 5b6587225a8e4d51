package transform

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"raisserver/internal/domain/mapping"
	"raisserver/internal/domain/repositories"
	"raisserver/internal/domain/schema"
	"raisserver/internal/domain/sheet"
)

// yearRe ищет четырехзначный год в имени листа или файла
var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

const conservationTolerance = 1e-9

// Aggregator накапливает нормализованные записи файла по естественным ключам.
// Повторные строки одной даты складываются в одну запись до записи в хранилище.
type Aggregator struct {
	classification *schema.ClassificationResult
	production     map[string]*repositories.ProductionSummary
	inspections    map[string]*repositories.StageInspectionSummary
	defects        map[string]*repositories.DefectOccurrence
	rowsProcessed  int
	rowsSkipped    int
}

// NewAggregator создает аккумулятор для одного классифицированного файла
func NewAggregator(classification *schema.ClassificationResult) *Aggregator {
	return &Aggregator{
		classification: classification,
		production:     make(map[string]*repositories.ProductionSummary),
		inspections:    make(map[string]*repositories.StageInspectionSummary),
		defects:        make(map[string]*repositories.DefectOccurrence),
	}
}

// AddSheet перерабатывает строки листа согласно сопоставлению колонок.
// Строки без пригодной даты пропускаются с замечанием и никогда не датируются сегодняшним днем.
func (a *Aggregator) AddSheet(rs *sheet.RawSheet, cm *mapping.ColumnMapping) []repositories.Finding {
	var findings []repositories.Finding

	sheetMonth, sheetMonthOK := ParseSheetMonth(rs.SheetName)
	contextYear := yearFromContext(rs.SheetName, rs.WorkbookName)

	for i := range rs.Rows {
		srcRow := rs.SourceRows[i]

		date, granularity, ok := a.resolveRowDate(rs, cm, i, sheetMonth, sheetMonthOK, contextYear)
		if !ok {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityWarning,
				Code:     "DATELESS_ROW",
				Message:  "row skipped: no usable date in row, sheet name or file name",
				File:     rs.WorkbookName,
				Sheet:    rs.SheetName,
				Row:      srcRow,
			})
			a.rowsSkipped++
			continue
		}

		switch a.classification.Kind {
		case schema.KindProduction:
			findings = append(findings, a.addProductionRow(rs, cm, i, srcRow, date, granularity)...)
		case schema.KindInspection:
			findings = append(findings, a.addInspectionRow(rs, cm, i, srcRow, date, granularity)...)
		}
		a.rowsProcessed++
	}

	return findings
}

// resolveRowDate определяет дату строки: колонка даты, месяц+год, имя листа
func (a *Aggregator) resolveRowDate(rs *sheet.RawSheet, cm *mapping.ColumnMapping, row int, sheetMonth time.Time, sheetMonthOK bool, contextYear int) (time.Time, string, bool) {
	if idx := cm.Column(mapping.FieldDate); idx >= 0 {
		if t, g, ok := ParseDate(rs.Cell(row, idx)); ok {
			return t, g, true
		}
	}

	if idx := cm.Column(mapping.FieldMonth); idx >= 0 {
		cell := rs.Cell(row, idx)
		if t, ok := parseMonthYear(cell); ok {
			return t, repositories.GranularityMonth, true
		}
		if month, ok := parseBareMonth(cell); ok {
			year := 0
			if yidx := cm.Column(mapping.FieldYear); yidx >= 0 {
				if y, err := strconv.Atoi(strings.TrimSpace(rs.Cell(row, yidx))); err == nil && y >= 1990 && y <= 2100 {
					year = y
				}
			}
			if year == 0 {
				year = contextYear
			}
			if year != 0 {
				return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), repositories.GranularityMonth, true
			}
		}
	}

	if sheetMonthOK {
		return sheetMonth, repositories.GranularityMonth, true
	}
	return time.Time{}, "", false
}

// quantityAt читает числовую ячейку канонического поля с замечанием на мусор
func (a *Aggregator) quantityAt(rs *sheet.RawSheet, cm *mapping.ColumnMapping, row int, field string, srcRow int, findings *[]repositories.Finding) float64 {
	idx := cm.Column(field)
	if idx < 0 {
		return 0
	}
	v, ok := ParseQuantity(rs.Cell(row, idx))
	if !ok {
		*findings = append(*findings, repositories.Finding{
			Severity: repositories.SeverityWarning,
			Code:     "BAD_NUMERIC",
			Message:  fmt.Sprintf("unparseable numeric %q treated as 0", rs.Cell(row, idx)),
			File:     rs.WorkbookName,
			Sheet:    rs.SheetName,
			Row:      srcRow,
			Column:   rs.Headers[idx],
		})
	}
	return v
}

func (a *Aggregator) addProductionRow(rs *sheet.RawSheet, cm *mapping.ColumnMapping, row, srcRow int, date time.Time, granularity string) []repositories.Finding {
	var findings []repositories.Finding

	produced := a.quantityAt(rs, cm, row, mapping.FieldProducedQty, srcRow, &findings)
	dispatched := a.quantityAt(rs, cm, row, mapping.FieldDispatchQty, srcRow, &findings)

	product := ""
	if idx := cm.Column(mapping.FieldProduct); idx >= 0 {
		product = strings.TrimSpace(rs.Cell(row, idx))
	}

	key := granularity + "|" + date.Format("2006-01-02") + "|" + product
	s, ok := a.production[key]
	if !ok {
		s = &repositories.ProductionSummary{
			SummaryDate: date,
			Granularity: granularity,
			Product:     product,
			SourceFile:  rs.WorkbookName,
			SourceSheet: rs.SheetName,
		}
		a.production[key] = s
	}
	s.ProducedQty += produced
	s.DispatchedQty += dispatched
	s.SourceRows = append(s.SourceRows, srcRow)

	return findings
}

func (a *Aggregator) addInspectionRow(rs *sheet.RawSheet, cm *mapping.ColumnMapping, row, srcRow int, date time.Time, granularity string) []repositories.Finding {
	var findings []repositories.Finding

	received := a.quantityAt(rs, cm, row, mapping.FieldReceivedQty, srcRow, &findings)
	inspected := a.quantityAt(rs, cm, row, mapping.FieldInspectedQty, srcRow, &findings)
	accepted := a.quantityAt(rs, cm, row, mapping.FieldAcceptedQty, srcRow, &findings)
	hold := a.quantityAt(rs, cm, row, mapping.FieldHoldQty, srcRow, &findings)

	// Pivot-колонки: каждая положительная ячейка дает факт дефекта,
	// отрицательная блокируется с ошибкой, соседние ячейки обрабатываются дальше
	pivotSum := 0.0
	for _, pc := range cm.Pivot {
		raw := rs.Cell(row, pc.Index)
		v, ok := ParseQuantity(raw)
		if !ok {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityWarning,
				Code:     "BAD_NUMERIC",
				Message:  fmt.Sprintf("unparseable numeric %q treated as 0", raw),
				File:     rs.WorkbookName,
				Sheet:    rs.SheetName,
				Row:      srcRow,
				Column:   pc.Header,
			})
			continue
		}
		if v < 0 {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityError,
				Code:     "NEGATIVE_QUANTITY",
				Message:  fmt.Sprintf("negative defect quantity %g", v),
				File:     rs.WorkbookName,
				Sheet:    rs.SheetName,
				Row:      srcRow,
				Column:   pc.Header,
			})
			continue
		}
		if v == 0 {
			continue
		}
		pivotSum += v
		a.addDefect(rs, pc, srcRow, date, granularity, v)
	}

	// Явная колонка rejected главнее; сумма pivot только запасной источник
	rejected := pivotSum
	if idx := cm.Column(mapping.FieldRejectedQty); idx >= 0 {
		explicit := a.quantityAt(rs, cm, row, mapping.FieldRejectedQty, srcRow, &findings)
		if pivotSum > 0 && math.Abs(explicit-pivotSum) > conservationTolerance {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityWarning,
				Code:     "PIVOT_DIVERGENCE",
				Message:  fmt.Sprintf("explicit rejected %g differs from defect sum %g, explicit value kept", explicit, pivotSum),
				File:     rs.WorkbookName,
				Sheet:    rs.SheetName,
				Row:      srcRow,
				Column:   rs.Headers[idx],
			})
		}
		rejected = explicit
	}

	stage := a.classification.Stage
	key := granularity + "|" + date.Format("2006-01-02") + "|" + stage
	s, ok := a.inspections[key]
	if !ok {
		s = &repositories.StageInspectionSummary{
			SummaryDate: date,
			Granularity: granularity,
			Stage:       stage,
			SourceFile:  rs.WorkbookName,
			SourceSheet: rs.SheetName,
		}
		a.inspections[key] = s
	}
	s.ReceivedQty += received
	s.InspectedQty += inspected
	s.AcceptedQty += accepted
	s.RejectedQty += rejected
	s.HoldQty += hold
	s.SourceRows = append(s.SourceRows, srcRow)

	return findings
}

// addDefect накапливает факт дефекта по ключу (дата, этап, код);
// провенансия первой внесшей вклад ячейки сохраняется
func (a *Aggregator) addDefect(rs *sheet.RawSheet, pc mapping.PivotColumn, srcRow int, date time.Time, granularity string, qty float64) {
	stage := a.classification.Stage
	key := granularity + "|" + date.Format("2006-01-02") + "|" + stage + "|" + pc.DefectCode
	d, ok := a.defects[key]
	if !ok {
		d = &repositories.DefectOccurrence{
			OccurredOn:   date,
			Granularity:  granularity,
			Stage:        stage,
			DefectCode:   pc.DefectCode,
			SourceFile:   rs.WorkbookName,
			SourceSheet:  rs.SheetName,
			SourceRow:    srcRow,
			SourceColumn: pc.Header,
		}
		a.defects[key] = d
	}
	d.Quantity += qty
}

// Finalize выпускает отсортированный пакет и применяет инвариант inspected
// как нижнюю границу: inspected поднимается до accepted+rejected+hold с замечанием
func (a *Aggregator) Finalize() (*Batch, []repositories.Finding) {
	var findings []repositories.Finding

	batch := &Batch{
		FileType:      a.classification.FileType,
		Kind:          a.classification.Kind,
		Stage:         a.classification.Stage,
		RowsProcessed: a.rowsProcessed,
		RowsSkipped:   a.rowsSkipped,
	}

	for _, p := range a.production {
		batch.Production = append(batch.Production, *p)
	}
	sort.Slice(batch.Production, func(i, j int) bool {
		pi, pj := batch.Production[i], batch.Production[j]
		if !pi.SummaryDate.Equal(pj.SummaryDate) {
			return pi.SummaryDate.Before(pj.SummaryDate)
		}
		if pi.Granularity != pj.Granularity {
			return pi.Granularity < pj.Granularity
		}
		return pi.Product < pj.Product
	})

	for _, s := range a.inspections {
		floor := s.AcceptedQty + s.RejectedQty + s.HoldQty
		if s.InspectedQty < floor {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityWarning,
				Code:     "INSPECTED_RAISED",
				Message: fmt.Sprintf("inspected %g below accepted+rejected+hold %g on %s, raised to the sum",
					s.InspectedQty, floor, s.SummaryDate.Format("2006-01-02")),
				File:  s.SourceFile,
				Sheet: s.SourceSheet,
			})
			s.InspectedQty = floor
		}
		batch.Inspections = append(batch.Inspections, *s)
	}
	sort.Slice(batch.Inspections, func(i, j int) bool {
		si, sj := batch.Inspections[i], batch.Inspections[j]
		if !si.SummaryDate.Equal(sj.SummaryDate) {
			return si.SummaryDate.Before(sj.SummaryDate)
		}
		if si.Granularity != sj.Granularity {
			return si.Granularity < sj.Granularity
		}
		return si.Stage < sj.Stage
	})

	for _, d := range a.defects {
		batch.Defects = append(batch.Defects, *d)
	}
	sort.Slice(batch.Defects, func(i, j int) bool {
		di, dj := batch.Defects[i], batch.Defects[j]
		if !di.OccurredOn.Equal(dj.OccurredOn) {
			return di.OccurredOn.Before(dj.OccurredOn)
		}
		if di.Stage != dj.Stage {
			return di.Stage < dj.Stage
		}
		if di.DefectCode != dj.DefectCode {
			return di.DefectCode < dj.DefectCode
		}
		return di.Granularity < dj.Granularity
	})

	return batch, findings
}

// yearFromContext извлекает год из имени листа, затем из имени файла
func yearFromContext(sheetName, workbookName string) int {
	for _, s := range []string{sheetName, workbookName} {
		if m := yearRe.FindString(s); m != "" {
			if y, err := strconv.Atoi(m); err == nil {
				return y
			}
		}
	}
	return 0
}
