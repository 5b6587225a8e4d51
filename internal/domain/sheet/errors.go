package sheet

import "errors"

// Domain-specific errors для чтения книг
var (
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	ErrNoUsableSheets    = errors.New("no usable sheets in workbook")
	ErrEmptyFile         = errors.New("file is empty")
)
