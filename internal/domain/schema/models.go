package schema

// Известные типы файлов отчетов
const (
	TypeProductionCumulative = "production_cumulative"
	TypeCumulative           = "cumulative"
	TypeAssemblyRejection    = "assembly_rejection"
	TypeVisualInspection     = "visual_inspection"
	TypeIntegrityInspection  = "integrity_inspection"
	TypeShopfloorRejection   = "shopfloor_rejection"
	TypeUnknown              = "unknown"
)

// Виды отчетов: производственная сводка или инспекция этапа
const (
	KindProduction = "production"
	KindInspection = "inspection"
)

// Источник вердикта классификации
const (
	MatchedByFilename = "filename"
	MatchedByColumns  = "columns"
)

// Signature дескриптор известной формы отчета из реестра
type Signature struct {
	Type                  string   `yaml:"type" validate:"required"`
	Kind                  string   `yaml:"kind" validate:"required,oneof=production inspection"`
	Stage                 string   `yaml:"stage" validate:"omitempty,oneof=SHOPFLOOR ASSEMBLY VISUAL INTEGRITY"`
	FilenamePatterns      []string `yaml:"filename_patterns" validate:"min=1,dive,required"`
	RequiredFragments     []string `yaml:"required_fragments"`
	OptionalFragments     []string `yaml:"optional_fragments"`
	DefectColumnsExpected bool     `yaml:"defect_columns_expected"`
}

// ClassificationStep шаг классификации для диагностики
type ClassificationStep struct {
	Step       string  `json:"step"`
	Detail     string  `json:"detail"`
	Confidence float64 `json:"confidence"`
	DurationMs int64   `json:"duration_ms"`
}

// ClassificationResult итог классификации файла
type ClassificationResult struct {
	FileType   string               `json:"file_type"`
	Kind       string               `json:"kind"`
	Stage      string               `json:"stage,omitempty"`
	Confidence float64              `json:"confidence"`
	MatchedBy  string               `json:"matched_by"`
	Steps      []ClassificationStep `json:"steps"`
}

// IsUnknown истинно для нераспознанных файлов
func (r *ClassificationResult) IsUnknown() bool {
	return r == nil || r.FileType == TypeUnknown
}
