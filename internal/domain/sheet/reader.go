package sheet

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"raisserver/internal/domain/repositories"
)

// Форматы книг
const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

// Артефакты ошибок Excel, очищаются в пустые значения
var errorArtifacts = map[string]struct{}{
	"#DIV/0!": {},
	"#N/A":    {},
	"#VALUE!": {},
	"#REF!":   {},
	"#NAME?":  {},
}

// Листы с такими подстроками в имени пропускаются
var skipSheetMarkers = []string{"chart", "graph", "summary"}

const consecutiveEmptyLimit = 10

// ReaderConfig параметры чтения книг
type ReaderConfig struct {
	MaxRowsPerFile   int
	HeaderScanRows   int
	HeaderScoreFloor int
}

// Reader читает книги .xlsx и .xls в промежуточное представление RawSheet
type Reader struct {
	cfg ReaderConfig
}

// NewReader создает Reader с заполнением значений по умолчанию
func NewReader(cfg ReaderConfig) *Reader {
	if cfg.MaxRowsPerFile <= 0 {
		cfg.MaxRowsPerFile = 50000
	}
	if cfg.HeaderScanRows <= 0 {
		cfg.HeaderScanRows = headerScanLimit
	}
	if cfg.HeaderScoreFloor <= 0 {
		cfg.HeaderScoreFloor = 20
	}
	return &Reader{cfg: cfg}
}

type sheetGrid struct {
	name string
	rows [][]string
}

// ReadWorkbook декодирует книгу из памяти и возвращает пригодные листы.
// Формат определяется по сигнатуре содержимого, расширение — запасной вариант.
func (r *Reader) ReadWorkbook(fileName string, data []byte) (*Workbook, []repositories.Finding, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyFile
	}

	format := sniffFormat(fileName, data)

	var (
		grids []sheetGrid
		err   error
	)
	switch format {
	case FormatXLSX:
		grids, err = readXLSX(data)
	case FormatXLS:
		grids, err = readXLS(data)
	default:
		return nil, nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s workbook: %w", format, err)
	}

	wb := &Workbook{FileName: fileName, Format: format}
	var findings []repositories.Finding
	rowBudget := r.cfg.MaxRowsPerFile

	for _, grid := range grids {
		if shouldSkipSheet(grid.name) {
			log.Printf("[Reader] Пропуск листа %q в %s (служебный лист)", grid.name, fileName)
			continue
		}
		rs, fs := r.buildRawSheet(fileName, grid.name, grid.rows, &rowBudget)
		findings = append(findings, fs...)
		if rs != nil {
			wb.Sheets = append(wb.Sheets, rs)
		}
	}

	if len(wb.Sheets) == 0 {
		return nil, findings, ErrNoUsableSheets
	}
	return wb, findings, nil
}

// sniffFormat определяет формат по magic-байтам, затем по расширению
func sniffFormat(fileName string, data []byte) string {
	if len(data) >= 4 && bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}) {
		return FormatXLSX
	}
	if len(data) >= 8 && bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}) {
		return FormatXLS
	}
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return FormatXLSX
	case strings.HasSuffix(lower, ".xls"):
		return FormatXLS
	}
	return ""
}

// readXLSX читает книгу через excelize с сырыми значениями ячеек,
// затем разливает значения объединенных областей в каждую накрытую ячейку
func readXLSX(data []byte) ([]sheetGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var grids []sheetGrid
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to get rows of sheet %q: %w", name, err)
		}
		fillMergedRegions(f, name, rows)
		grids = append(grids, sheetGrid{name: name, rows: rows})
	}
	return grids, nil
}

// fillMergedRegions копирует значение объединенной области во все ее ячейки
func fillMergedRegions(f *excelize.File, sheetName string, rows [][]string) {
	merges, err := f.GetMergeCells(sheetName)
	if err != nil {
		return
	}
	for _, mg := range merges {
		startCol, startRow, err1 := excelize.CellNameToCoordinates(mg.GetStartAxis())
		endCol, endRow, err2 := excelize.CellNameToCoordinates(mg.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		value := mg.GetCellValue()
		if value == "" {
			continue
		}
		for ri := startRow; ri <= endRow && ri <= len(rows); ri++ {
			row := rows[ri-1]
			for len(row) < endCol {
				row = append(row, "")
			}
			for ci := startCol; ci <= endCol; ci++ {
				row[ci-1] = value
			}
			rows[ri-1] = row
		}
	}
}

// readXLS читает устаревший бинарный формат через xlsReader
func readXLS(data []byte) ([]sheetGrid, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}

	var grids []sheetGrid
	for i := 0; i < wb.GetNumberSheets(); i++ {
		s, err := wb.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("failed to get sheet %d: %w", i, err)
		}
		var rows [][]string
		for ri := 0; ri < s.GetNumberRows(); ri++ {
			row, err := s.GetRow(ri)
			if err != nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			rows = append(rows, cells)
		}
		grids = append(grids, sheetGrid{name: s.GetName(), rows: rows})
	}
	return grids, nil
}

// shouldSkipSheet отсекает листы диаграмм и сводок по имени
func shouldSkipSheet(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range skipSheetMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// cleanCellValue убирает артефакты ошибок Excel и крайние пробелы
func cleanCellValue(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := errorArtifacts[strings.ToUpper(s)]; ok {
		return ""
	}
	return s
}

// isEmptyRow истинно, когда в строке нет непустых ячеек
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// buildRawSheet находит заголовок, выравнивает ширину строк и собирает данные листа.
// Чтение данных останавливается после 10 подряд пустых строк или исчерпания бюджета строк.
func (r *Reader) buildRawSheet(workbookName, sheetName string, rows [][]string, rowBudget *int) (*RawSheet, []repositories.Finding) {
	for ri := range rows {
		for ci := range rows[ri] {
			rows[ri][ci] = cleanCellValue(rows[ri][ci])
		}
	}

	headerIdx, score := findHeaderRow(rows, r.cfg.HeaderScanRows)
	if headerIdx < 0 {
		log.Printf("[Reader] Лист %q в %s: строка заголовка не найдена, лист пропущен", sheetName, workbookName)
		return nil, nil
	}

	var findings []repositories.Finding
	lowConfidence := score < r.cfg.HeaderScoreFloor
	if lowConfidence {
		findings = append(findings, repositories.Finding{
			Severity: repositories.SeverityWarning,
			Code:     "LOW_CONFIDENCE_HEADER",
			Message:  fmt.Sprintf("header row %d scored %d, below floor %d", headerIdx+1, score, r.cfg.HeaderScoreFloor),
			File:     workbookName,
			Sheet:    sheetName,
			Row:      headerIdx + 1,
		})
	}

	width := len(rows[headerIdx])
	for i := headerIdx + 1; i < len(rows); i++ {
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}

	headers := make([]string, width)
	placeholder := make([]bool, width)
	for i := 0; i < width; i++ {
		if i < len(rows[headerIdx]) && rows[headerIdx][i] != "" {
			headers[i] = rows[headerIdx][i]
		} else {
			headers[i] = fmt.Sprintf("COL_%d", i+1)
			placeholder[i] = true
		}
	}

	rs := &RawSheet{
		WorkbookName:  workbookName,
		SheetName:     sheetName,
		HeaderRowIdx:  headerIdx,
		HeaderScore:   score,
		LowConfidence: lowConfidence,
	}

	emptyStreak := 0
	for i := headerIdx + 1; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			emptyStreak++
			if emptyStreak >= consecutiveEmptyLimit {
				break
			}
			continue
		}
		emptyStreak = 0

		if *rowBudget <= 0 {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityWarning,
				Code:     "ROW_LIMIT_REACHED",
				Message:  "row limit per file reached, remaining rows ignored",
				File:     workbookName,
				Sheet:    sheetName,
				Row:      i + 1,
			})
			break
		}
		*rowBudget--

		row := make([]string, width)
		copy(row, rows[i])
		rs.Rows = append(rs.Rows, row)
		rs.SourceRows = append(rs.SourceRows, i+1)
	}

	trimTrailingColumns(rs, headers, placeholder)

	if len(rs.Rows) == 0 {
		log.Printf("[Reader] Лист %q в %s: нет строк данных после заголовка", sheetName, workbookName)
		return nil, findings
	}
	return rs, findings
}

// trimTrailingColumns отбрасывает хвостовые колонки без заголовка и без данных
func trimTrailingColumns(rs *RawSheet, headers []string, placeholder []bool) {
	width := len(headers)
	for width > 0 {
		col := width - 1
		if !placeholder[col] {
			break
		}
		hasData := false
		for _, row := range rs.Rows {
			if col < len(row) && row[col] != "" {
				hasData = true
				break
			}
		}
		if hasData {
			break
		}
		width--
	}
	rs.Headers = headers[:width]
	for i, row := range rs.Rows {
		if len(row) > width {
			rs.Rows[i] = row[:width]
		}
	}
}
