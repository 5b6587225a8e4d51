package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// excelEpoch начало отсчета серийных дат Excel
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Диапазон правдоподобных серийных дат: от 1900-03-01 до 9999-12-31
const (
	minExcelSerial = 61
	maxExcelSerial = 2958465
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// monthYearRe ищет пары "месяц год" в значениях и именах листов: JAN 2025, February-25
var monthYearRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[\s_.\-]*(\d{2,4})`)

// bareMonthRe распознает одиночное имя месяца
var bareMonthRe = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*$`)

// dayLayouts форматы полных дат в порядке испытания после ISO и серийных
var dayLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006/01/02",
}

// ParseDate разбирает значение ячейки в дату.
// Порядок: ISO, серийная дата Excel, день-первый, "месяц год".
// Возвращает дату, гранулярность (day или month) и признак успеха.
func ParseDate(value string) (time.Time, string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, "", false
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), "day", true
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= minExcelSerial && serial <= maxExcelSerial {
			return excelEpoch.AddDate(0, 0, int(serial)), "day", true
		}
		return time.Time{}, "", false
	}

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), "day", true
		}
	}

	if t, ok := parseMonthYear(value); ok {
		return t, "month", true
	}

	return time.Time{}, "", false
}

// parseMonthYear ищет пару "месяц год" и возвращает первое число месяца
func parseMonthYear(s string) (time.Time, bool) {
	m := monthYearRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month := monthNumbers[strings.ToLower(m[1])]
	year, ok := normalizeYear(m[2])
	if !ok {
		return time.Time{}, false
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}

// ParseSheetMonth извлекает месяц из имени листа (JAN 2025, February-25)
func ParseSheetMonth(sheetName string) (time.Time, bool) {
	return parseMonthYear(sheetName)
}

// parseBareMonth распознает одиночное имя месяца без года
func parseBareMonth(s string) (time.Month, bool) {
	m := bareMonthRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	return monthNumbers[strings.ToLower(m[1])], true
}

// normalizeYear приводит 2- и 4-значные годы к полному виду
func normalizeYear(s string) (int, bool) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch {
	case len(s) == 2:
		year += 2000
	case len(s) != 4:
		return 0, false
	}
	if year < 1990 || year > 2100 {
		return 0, false
	}
	return year, true
}
