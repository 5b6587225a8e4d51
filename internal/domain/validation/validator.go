package validation

import (
	"fmt"
	"sort"

	"raisserver/internal/domain/repositories"
	"raisserver/internal/domain/transform"
)

const (
	// maxFindings ограничивает детализацию замечаний на один файл
	maxFindings = 100

	// accountingTolerance допуск расхождения inspected и accepted+rejected+hold
	accountingTolerance = 1.0

	// reconcileTolerance относительный допуск межфайловой сверки
	reconcileTolerance = 0.01

	monthKeyLayout = "2006-01"
)

// Validator проверяет нормализованные записи перед записью в хранилище.
// Записи не изменяются: проверка только аннотирует и отбирает.
// Запись принимается тогда и только тогда, когда по ней нет замечаний уровня error.
type Validator struct {
	limit int
}

// NewValidator создает валидатор со стандартным лимитом замечаний
func NewValidator() *Validator {
	return &Validator{limit: maxFindings}
}

// ValidateBatch проверяет пакет одного файла и отбирает принятые записи.
// Контекст сессии пополняется итогами принятых записей для последующей сверки.
func (v *Validator) ValidateBatch(batch *transform.Batch, ctx *Context) *Result {
	res := &Result{}
	suppressed := 0

	add := func(f repositories.Finding) {
		if len(res.Findings) >= v.limit {
			suppressed++
			res.Truncated = true
			return
		}
		res.Findings = append(res.Findings, f)
	}

	productionByKey := make(map[string]float64, len(batch.Production))

	for _, p := range batch.Production {
		findings := v.checkProduction(&p)
		for _, f := range findings {
			add(f)
		}
		if hasError(findings) {
			res.RecordsInvalid++
			continue
		}
		res.RecordsValid++
		res.Production = append(res.Production, p)
		productionByKey[p.Granularity+"|"+p.SummaryDate.Format("2006-01-02")] = p.ProducedQty
		if ctx != nil {
			ctx.addProduction(p.SummaryDate.Format(monthKeyLayout), p.ProducedQty, p.DispatchedQty)
		}
	}

	for _, s := range batch.Inspections {
		findings := v.checkInspection(&s, productionByKey)
		for _, f := range findings {
			add(f)
		}
		if hasError(findings) {
			res.RecordsInvalid++
			continue
		}
		res.RecordsValid++
		res.Inspections = append(res.Inspections, s)
		if ctx != nil {
			ctx.addStageRejection(s.Stage, s.SummaryDate.Format(monthKeyLayout), s.RejectedQty)
		}
	}

	for _, d := range batch.Defects {
		findings := v.checkDefect(&d)
		for _, f := range findings {
			add(f)
		}
		if hasError(findings) {
			res.RecordsInvalid++
			continue
		}
		res.RecordsValid++
		res.Defects = append(res.Defects, d)
	}

	if suppressed > 0 {
		res.Findings = append(res.Findings, repositories.Finding{
			Severity: repositories.SeverityWarning,
			Code:     "SYSTEMATIC_ISSUE",
			Message:  fmt.Sprintf("finding limit %d reached, %d further findings suppressed", v.limit, suppressed),
		})
	}

	return res
}

// checkProduction правила производственной сводки
func (v *Validator) checkProduction(p *repositories.ProductionSummary) []repositories.Finding {
	var findings []repositories.Finding

	if p.SummaryDate.IsZero() {
		findings = append(findings, finding(repositories.SeverityError, "MISSING_DATE",
			"production summary has no date", p.SourceFile, p.SourceSheet, firstRow(p.SourceRows), ""))
	}
	if p.ProducedQty < 0 {
		findings = append(findings, finding(repositories.SeverityError, "NEGATIVE_QUANTITY",
			fmt.Sprintf("negative produced quantity %g", p.ProducedQty),
			p.SourceFile, p.SourceSheet, firstRow(p.SourceRows), ""))
	}
	if p.DispatchedQty < 0 {
		findings = append(findings, finding(repositories.SeverityError, "NEGATIVE_QUANTITY",
			fmt.Sprintf("negative dispatched quantity %g", p.DispatchedQty),
			p.SourceFile, p.SourceSheet, firstRow(p.SourceRows), ""))
	}

	return findings
}

// checkInspection правила сводки инспекции этапа
func (v *Validator) checkInspection(s *repositories.StageInspectionSummary, productionByKey map[string]float64) []repositories.Finding {
	var findings []repositories.Finding
	row := firstRow(s.SourceRows)

	if s.SummaryDate.IsZero() {
		findings = append(findings, finding(repositories.SeverityError, "MISSING_DATE",
			"stage inspection summary has no date", s.SourceFile, s.SourceSheet, row, ""))
	}
	if s.Stage == "" {
		findings = append(findings, finding(repositories.SeverityError, "MISSING_STAGE",
			"stage inspection summary has no stage", s.SourceFile, s.SourceSheet, row, ""))
	}

	for _, q := range []struct {
		name  string
		value float64
	}{
		{"received", s.ReceivedQty},
		{"inspected", s.InspectedQty},
		{"accepted", s.AcceptedQty},
		{"rejected", s.RejectedQty},
		{"hold", s.HoldQty},
	} {
		if q.value < 0 {
			findings = append(findings, finding(repositories.SeverityError, "NEGATIVE_QUANTITY",
				fmt.Sprintf("negative %s quantity %g", q.name, q.value),
				s.SourceFile, s.SourceSheet, row, ""))
		}
	}

	// Допуск в одну единицу на округления в исходных отчетах
	if s.InspectedQty > 0 {
		accounted := s.AcceptedQty + s.RejectedQty + s.HoldQty
		if diff := s.InspectedQty - accounted; diff > accountingTolerance {
			findings = append(findings, finding(repositories.SeverityWarning, "ACCOUNTING_GAP",
				fmt.Sprintf("accepted %g + rejected %g + hold %g = %g does not match inspected %g",
					s.AcceptedQty, s.RejectedQty, s.HoldQty, accounted, s.InspectedQty),
				s.SourceFile, s.SourceSheet, row, ""))
		}
	}

	if s.ReceivedQty > 0 && s.RejectedQty > s.ReceivedQty {
		findings = append(findings, finding(repositories.SeverityError, "REJECTED_EXCEEDS_RECEIVED",
			fmt.Sprintf("rejected %g exceeds received %g", s.RejectedQty, s.ReceivedQty),
			s.SourceFile, s.SourceSheet, row, ""))
	}

	key := s.Granularity + "|" + s.SummaryDate.Format("2006-01-02")
	if produced, ok := productionByKey[key]; ok && produced > 0 && s.RejectedQty > produced {
		findings = append(findings, finding(repositories.SeverityError, "REJECTED_EXCEEDS_PRODUCTION",
			fmt.Sprintf("rejected %g exceeds production %g for the same date", s.RejectedQty, produced),
			s.SourceFile, s.SourceSheet, row, ""))
	}

	return findings
}

// checkDefect правила факта дефекта
func (v *Validator) checkDefect(d *repositories.DefectOccurrence) []repositories.Finding {
	var findings []repositories.Finding

	if d.OccurredOn.IsZero() {
		findings = append(findings, finding(repositories.SeverityError, "MISSING_DATE",
			"defect occurrence has no date", d.SourceFile, d.SourceSheet, d.SourceRow, d.SourceColumn))
	}
	if d.Stage == "" {
		findings = append(findings, finding(repositories.SeverityError, "MISSING_STAGE",
			"defect occurrence has no stage", d.SourceFile, d.SourceSheet, d.SourceRow, d.SourceColumn))
	}
	if d.DefectCode == "" {
		findings = append(findings, finding(repositories.SeverityError, "MISSING_DEFECT_CODE",
			"defect occurrence has no defect code", d.SourceFile, d.SourceSheet, d.SourceRow, d.SourceColumn))
	}
	if d.Quantity <= 0 {
		findings = append(findings, finding(repositories.SeverityError, "NEGATIVE_QUANTITY",
			fmt.Sprintf("defect quantity %g is not positive", d.Quantity),
			d.SourceFile, d.SourceSheet, d.SourceRow, d.SourceColumn))
	}

	return findings
}

// Reconcile сверяет межфайловые итоги сессии после проверки всех пакетов.
// Суммарная отбраковка этапов за месяц не должна превышать производство
// этого месяца сверх относительного допуска.
func (c *Context) Reconcile() []repositories.Finding {
	var findings []repositories.Finding

	months := make([]string, 0, len(c.ProductionTotals))
	for month := range c.ProductionTotals {
		months = append(months, month)
	}
	sort.Strings(months)

	stages := make([]string, 0, len(c.StageRejections))
	for stage := range c.StageRejections {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	for _, month := range months {
		produced := c.ProductionTotals[month]
		if produced <= 0 {
			continue
		}
		totalRejected := 0.0
		for _, stage := range stages {
			totalRejected += c.StageRejections[stage][month]
		}
		if totalRejected > produced*(1+reconcileTolerance) {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityWarning,
				Code:     "CROSS_FILE_MISMATCH",
				Message: fmt.Sprintf("total stage rejections %g exceed production %g for month %s",
					totalRejected, produced, month),
			})
		}
	}

	return findings
}

func hasError(findings []repositories.Finding) bool {
	for _, f := range findings {
		if f.Severity == repositories.SeverityError {
			return true
		}
	}
	return false
}

func finding(severity, code, message, file, sheet string, row int, column string) repositories.Finding {
	return repositories.Finding{
		Severity: severity,
		Code:     code,
		Message:  message,
		File:     file,
		Sheet:    sheet,
		Row:      row,
		Column:   column,
	}
}

func firstRow(rows []int) int {
	if len(rows) == 0 {
		return 0
	}
	return rows[0]
}
