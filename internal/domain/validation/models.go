package validation

import (
	"raisserver/internal/domain/repositories"
)

// Result итог проверки одного нормализованного пакета.
// Принятые записи скопированы из входа, входной пакет не изменяется.
type Result struct {
	Production  []repositories.ProductionSummary
	Inspections []repositories.StageInspectionSummary
	Defects     []repositories.DefectOccurrence

	Findings       []repositories.Finding
	RecordsValid   int
	RecordsInvalid int
	Truncated      bool
}

// Accepted истинно, когда хотя бы одна запись прошла проверку
func (r *Result) Accepted() bool {
	return r.RecordsValid > 0
}

// ErrorCount возвращает число замечаний уровня error
func (r *Result) ErrorCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == repositories.SeverityError {
			n++
		}
	}
	return n
}

// Context межфайловые итоги одной сессии загрузки.
// Накапливается по мере проверки пакетов и сверяется после всех файлов.
type Context struct {
	ProductionTotals map[string]float64            // месяц YYYY-MM -> произведено
	DispatchTotals   map[string]float64            // месяц YYYY-MM -> отгружено
	StageRejections  map[string]map[string]float64 // этап -> месяц -> отбраковано
}

// NewContext создает пустой контекст сессии
func NewContext() *Context {
	return &Context{
		ProductionTotals: make(map[string]float64),
		DispatchTotals:   make(map[string]float64),
		StageRejections:  make(map[string]map[string]float64),
	}
}

func (c *Context) addProduction(month string, produced, dispatched float64) {
	c.ProductionTotals[month] += produced
	c.DispatchTotals[month] += dispatched
}

func (c *Context) addStageRejection(stage, month string, rejected float64) {
	byMonth, ok := c.StageRejections[stage]
	if !ok {
		byMonth = make(map[string]float64)
		c.StageRejections[stage] = byMonth
	}
	byMonth[month] += rejected
}
