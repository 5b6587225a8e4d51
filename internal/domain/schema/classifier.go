package schema

import (
	"fmt"
	"log"
	"strings"
	"time"

	"raisserver/internal/domain/mapping"
	"raisserver/internal/domain/repositories"
	"raisserver/internal/domain/sheet"
)

const (
	requiredFragmentScore = 10
	optionalFragmentScore = 3
	defectColumnScore     = 5
	defectColumnsCap      = 3
	filenameMatchBonus    = 25
)

// ClassifierConfig параметры классификатора
type ClassifierConfig struct {
	ConfidenceFloor float64
}

// Classifier определяет тип файла отчета по имени и по колонкам.
// Имя файла предпочтительный сигнал; колонки служат перекрестной проверкой.
type Classifier struct {
	registry *Registry
	floor    float64
}

// NewClassifier создает классификатор над реестром сигнатур
func NewClassifier(registry *Registry, cfg ClassifierConfig) *Classifier {
	floor := cfg.ConfidenceFloor
	if floor <= 0 {
		floor = 0.3
	}
	return &Classifier{registry: registry, floor: floor}
}

// Classify классифицирует книгу. При расхождении сигналов вердикт по имени файла
// сохраняется, а расхождение фиксируется замечанием.
func (c *Classifier) Classify(fileName string, sheets []*sheet.RawSheet) (*ClassificationResult, []repositories.Finding, error) {
	result := &ClassificationResult{FileType: TypeUnknown}
	var findings []repositories.Finding

	headers := collectNormalizedHeaders(sheets)

	// Шаг 1: по имени файла
	stepStart := time.Now()
	byName := c.registry.MatchFilename(fileName)
	detail := "no filename pattern matched"
	if byName != nil {
		detail = fmt.Sprintf("filename matched %s", byName.Type)
	}
	log.Printf("[Classifier] [Step 1/3] %s: %s", fileName, detail)
	result.Steps = append(result.Steps, ClassificationStep{
		Step:       "filename",
		Detail:     detail,
		DurationMs: time.Since(stepStart).Milliseconds(),
	})

	// Шаг 2: по колонкам
	stepStart = time.Now()
	bestSig, bestConf := c.bestByColumns(headers)
	detail = "no column evidence"
	if bestSig != nil {
		detail = fmt.Sprintf("columns favor %s (%.2f)", bestSig.Type, bestConf)
	}
	log.Printf("[Classifier] [Step 2/3] %s: %s", fileName, detail)
	result.Steps = append(result.Steps, ClassificationStep{
		Step:       "columns",
		Detail:     detail,
		Confidence: bestConf,
		DurationMs: time.Since(stepStart).Milliseconds(),
	})

	// Шаг 3: сведение сигналов
	stepStart = time.Now()
	if byName != nil {
		score, max := c.scoreColumns(byName, headers)
		conf := clampConfidence(float64(score+filenameMatchBonus) / float64(max+filenameMatchBonus))
		result.FileType = byName.Type
		result.Kind = byName.Kind
		result.Stage = byName.Stage
		result.Confidence = conf
		result.MatchedBy = MatchedByFilename

		if bestSig != nil && bestSig.Type != byName.Type && bestConf >= c.floor {
			findings = append(findings, repositories.Finding{
				Severity: repositories.SeverityWarning,
				Code:     "CLASSIFICATION_MISMATCH",
				Message: fmt.Sprintf("filename suggests %s but columns favor %s (%.2f)",
					byName.Type, bestSig.Type, bestConf),
				File: fileName,
			})
		}
		result.Steps = append(result.Steps, ClassificationStep{
			Step:       "verdict",
			Detail:     fmt.Sprintf("%s by filename", result.FileType),
			Confidence: conf,
			DurationMs: time.Since(stepStart).Milliseconds(),
		})
		log.Printf("[Classifier] [Step 3/3] %s: %s (confidence %.2f)", fileName, result.FileType, conf)
		return result, findings, nil
	}

	if bestSig != nil && bestConf >= c.floor {
		result.FileType = bestSig.Type
		result.Kind = bestSig.Kind
		result.Stage = bestSig.Stage
		result.Confidence = bestConf
		result.MatchedBy = MatchedByColumns
		result.Steps = append(result.Steps, ClassificationStep{
			Step:       "verdict",
			Detail:     fmt.Sprintf("%s by columns", result.FileType),
			Confidence: bestConf,
			DurationMs: time.Since(stepStart).Milliseconds(),
		})
		log.Printf("[Classifier] [Step 3/3] %s: %s (confidence %.2f)", fileName, result.FileType, bestConf)
		return result, findings, nil
	}

	result.Confidence = bestConf
	result.Steps = append(result.Steps, ClassificationStep{
		Step:       "verdict",
		Detail:     "unknown: confidence below floor",
		Confidence: bestConf,
		DurationMs: time.Since(stepStart).Milliseconds(),
	})
	log.Printf("[Classifier] [Step 3/3] %s: unknown (best %.2f, floor %.2f)", fileName, bestConf, c.floor)
	return result, findings, ErrUnknownFileType
}

// bestByColumns выбирает сигнатуру с лучшей уверенностью по колонкам
func (c *Classifier) bestByColumns(headers []string) (*Signature, float64) {
	var best *Signature
	bestConf := 0.0
	for i := range c.registry.signatures {
		sig := &c.registry.signatures[i]
		score, max := c.scoreColumns(sig, headers)
		if max == 0 {
			continue
		}
		conf := clampConfidence(float64(score) / float64(max))
		if conf > bestConf {
			best, bestConf = sig, conf
		}
	}
	return best, bestConf
}

// scoreColumns оценивает сигнатуру по заголовкам: обязательный фрагмент 10,
// необязательный 3, колонка дефекта 5 (не более defectColumnsCap)
func (c *Classifier) scoreColumns(sig *Signature, headers []string) (score, max int) {
	max = requiredFragmentScore*len(sig.RequiredFragments) + optionalFragmentScore*len(sig.OptionalFragments)
	if sig.DefectColumnsExpected {
		max += defectColumnScore * defectColumnsCap
	}

	for _, frag := range sig.RequiredFragments {
		if anyHeaderContains(headers, frag) {
			score += requiredFragmentScore
		}
	}
	for _, frag := range sig.OptionalFragments {
		if anyHeaderContains(headers, frag) {
			score += optionalFragmentScore
		}
	}
	if sig.DefectColumnsExpected {
		defects := 0
		for _, h := range headers {
			if mapping.IsDefectHeader(h) {
				defects++
			}
		}
		if defects > defectColumnsCap {
			defects = defectColumnsCap
		}
		score += defectColumnScore * defects
	}
	return score, max
}

// collectNormalizedHeaders собирает нормализованные заголовки всех листов без повторов
func collectNormalizedHeaders(sheets []*sheet.RawSheet) []string {
	seen := make(map[string]struct{})
	var headers []string
	for _, s := range sheets {
		for _, h := range s.Headers {
			n := sheet.NormalizeHeader(h)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			headers = append(headers, n)
		}
	}
	return headers
}

func anyHeaderContains(headers []string, fragment string) bool {
	fragment = strings.ToLower(fragment)
	for _, h := range headers {
		if strings.Contains(h, fragment) {
			return true
		}
	}
	return false
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
