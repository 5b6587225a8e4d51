package mapping

import (
	"strings"

	"raisserver/internal/domain/sheet"
)

// defectPatterns канонические имена дефектов производственных отчетов.
// Порядок определяет приоритет при совпадении нескольких шаблонов.
var defectPatterns = []string{
	"COAG",
	"RAISED WIRE",
	"SURFACE",
	"OVERLAPING",
	"BLACK MARK",
	"WEBBING",
	"MISSING",
	"LEAKAGE",
	"BUBBLE",
	"THIN",
	"DIRTY",
	"STICKY",
	"WEAK",
	"WRONG COLOR",
	"PIN HOLE",
	"STRIPPING",
	"BALLOON",
	"VALVE",
	"OTHER",
}

// DefectCodeFor возвращает канонический код дефекта для заголовка колонки.
// Код строится из совпавшего шаблона заменой пробелов на подчеркивания.
func DefectCodeFor(header string) (string, bool) {
	upper := strings.ToUpper(sheet.NormalizeHeader(header))
	if upper == "" {
		return "", false
	}
	for _, pattern := range defectPatterns {
		if strings.Contains(upper, pattern) {
			return strings.ReplaceAll(pattern, " ", "_"), true
		}
	}
	return "", false
}

// IsDefectHeader истинно для заголовков, похожих на имена дефектов
func IsDefectHeader(header string) bool {
	_, ok := DefectCodeFor(header)
	return ok
}

// DefectPatterns возвращает копию списка канонических шаблонов
func DefectPatterns() []string {
	out := make([]string, len(defectPatterns))
	copy(out, defectPatterns)
	return out
}

// KnownDefectCodes возвращает канонические коды дефектов в порядке приоритета
func KnownDefectCodes() []string {
	out := make([]string, len(defectPatterns))
	for i, pattern := range defectPatterns {
		out[i] = strings.ReplaceAll(pattern, " ", "_")
	}
	return out
}
