package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"raisserver/internal/apperrors"
)

// Пределы страниц списков
const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// parseDateQuery разбирает необязательный параметр даты YYYY-MM-DD
func parseDateQuery(c *gin.Context, name string) (*time.Time, *apperrors.AppError) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("неверный формат %s, ожидается YYYY-MM-DD", name), err)
	}
	return &t, nil
}

// parseMonthQuery разбирает необязательный параметр месяца YYYY-MM
func parseMonthQuery(c *gin.Context, name string) (string, *apperrors.AppError) {
	raw := c.Query(name)
	if raw == "" {
		return "", nil
	}

	if _, err := time.Parse("2006-01", raw); err != nil {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("неверный формат %s, ожидается YYYY-MM", name), err)
	}
	return raw, nil
}

// parseIntQuery разбирает необязательный целочисленный параметр
func parseIntQuery(c *gin.Context, name string, defaultValue int) (int, *apperrors.AppError) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("неверный формат %s", name), err)
	}
	return v, nil
}

// parseListQuery разбирает параметр-перечисление, разделенное запятыми
func parseListQuery(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// clampPage приводит лимит и смещение страницы к допустимым значениям
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
