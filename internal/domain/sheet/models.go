package sheet

// Workbook прочитанная книга: имя файла и пригодные листы в сыром виде
type Workbook struct {
	FileName string
	Format   string // xlsx | xls
	Sheets   []*RawSheet
}

// RawSheet лист книги после чтения; все значения строковые, типизация дальше по конвейеру
type RawSheet struct {
	WorkbookName  string
	SheetName     string
	HeaderRowIdx  int // 0-based индекс строки заголовка в листе
	HeaderScore   int
	LowConfidence bool
	Headers       []string
	Rows          [][]string
	SourceRows    []int // 1-based номера строк листа для каждой строки данных
}

// RowCount возвращает число строк данных листа
func (s *RawSheet) RowCount() int {
	return len(s.Rows)
}

// Cell возвращает значение ячейки строки данных или пустую строку вне диапазона
func (s *RawSheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
