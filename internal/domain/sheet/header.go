package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// headerKeywords ключевые слова заголовков производственных отчетов
var headerKeywords = []string{
	"s.no", "sno", "date", "month", "year", "production", "dispatch",
	"received", "inspected", "accepted", "rejected", "qty", "quantity",
	"total", "percentage", "%", "defect", "batch", "lot", "item",
	"product", "code", "remarks", "result",
}

const (
	headerScanLimit   = 20
	shortHeaderRunes  = 24
	keywordCellScore  = 10
	shortAlphaScore   = 2
	digitCellPenalty  = 5
	keywordBonusAt3   = 15
	keywordBonusAt5   = 20
	minNonBlankCells  = 2
)

// NormalizeHeader приводит текст заголовка к каноническому виду:
// NFKC, нижний регистр, пунктуация в пробелы, схлопнутые пробелы
func NormalizeHeader(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '/' || r == '\\' || r == ',' || r == ':' || r == ';' || r == '(' || r == ')':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsHeaderKeyword проверяет наличие ключевого слова в нормализованной ячейке
func containsHeaderKeyword(normalized string) bool {
	if normalized == "" {
		return false
	}
	for _, kw := range headerKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// isDigitDominant истинно, когда больше половины непробельных рун — цифры
func isDigitDominant(s string) bool {
	digits, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return total > 0 && digits*2 > total
}

// isAlphabetic истинно для ячеек из букв и пробелов
func isAlphabetic(s string) bool {
	seen := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '.' || r == '%' {
			continue
		}
		if !unicode.IsLetter(r) {
			return false
		}
		seen = true
	}
	return seen
}

// scoreHeaderRow оценивает строку как кандидата на заголовок.
// Строки с менее чем двумя непустыми ячейками дисквалифицируются (score -1).
func scoreHeaderRow(row []string) int {
	nonBlank := 0
	keywords := 0
	score := 0
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonBlank++
		normalized := NormalizeHeader(cell)
		switch {
		case containsHeaderKeyword(normalized):
			keywords++
			score += keywordCellScore
		case isDigitDominant(cell):
			score -= digitCellPenalty
		case isAlphabetic(cell) && len([]rune(cell)) <= shortHeaderRunes:
			score += shortAlphaScore
		}
	}
	if nonBlank < minNonBlankCells {
		return -1
	}
	if keywords >= 5 {
		score += keywordBonusAt5
	} else if keywords >= 3 {
		score += keywordBonusAt3
	}
	return score
}

// findHeaderRow ищет строку заголовка в первых headerScanLimit строках листа.
// Возвращает индекс лучшей строки и ее счет; при равенстве побеждает более ранняя.
func findHeaderRow(rows [][]string, scanLimit int) (int, int) {
	if scanLimit <= 0 {
		scanLimit = headerScanLimit
	}
	bestIdx, bestScore := -1, -1
	for i := 0; i < len(rows) && i < scanLimit; i++ {
		score := scoreHeaderRow(rows[i])
		if score < 0 {
			continue
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx, bestScore
}
