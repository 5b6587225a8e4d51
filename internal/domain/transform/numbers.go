package transform

import (
	"strconv"
	"strings"
)

// ParseQuantity разбирает числовую ячейку. Пустые значения считаются нулем;
// непустой мусор дает (0, false) и фиксируется замечанием у вызывающего.
// Знак сохраняется: отрицательные количества отбраковывает валидатор.
func ParseQuantity(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, true
	}
	value = strings.ReplaceAll(value, ",", "")
	value = strings.TrimSuffix(value, "%")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
