package transform

import (
	"sort"

	"raisserver/internal/domain/repositories"
)

// Batch детерминированный результат нормализации одного файла.
// Записи отсортированы по естественным ключам, порядок не зависит от карт.
type Batch struct {
	FileType      string
	Kind          string
	Stage         string
	Production    []repositories.ProductionSummary
	Inspections   []repositories.StageInspectionSummary
	Defects       []repositories.DefectOccurrence
	RowsProcessed int
	RowsSkipped   int
}

// IsEmpty истинно, когда нормализация не дала ни одной записи
func (b *Batch) IsEmpty() bool {
	return len(b.Production) == 0 && len(b.Inspections) == 0 && len(b.Defects) == 0
}

// Months возвращает отсортированный список месяцев YYYY-MM, затронутых пакетом
func (b *Batch) Months() []string {
	seen := make(map[string]struct{})
	add := func(key string) {
		seen[key] = struct{}{}
	}
	for _, p := range b.Production {
		add(p.SummaryDate.Format("2006-01"))
	}
	for _, s := range b.Inspections {
		add(s.SummaryDate.Format("2006-01"))
	}
	for _, d := range b.Defects {
		add(d.OccurredOn.Format("2006-01"))
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}
