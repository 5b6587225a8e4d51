package schema

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed signatures.yaml
var embeddedRegistry []byte

// Registry реестр сигнатур с предкомпилированными шаблонами имен файлов.
// Порядок дескрипторов в документе определяет приоритет совпадения.
type Registry struct {
	signatures []Signature
	patterns   [][]*regexp.Regexp
}

type registryDoc struct {
	Signatures []Signature `yaml:"signatures"`
}

// LoadRegistry загружает реестр из файла; при пустом пути берется встроенная копия
func LoadRegistry(path string) (*Registry, error) {
	data := embeddedRegistry
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read signature registry: %w", err)
		}
		data = b
	}
	return parseRegistry(data)
}

func parseRegistry(data []byte) (*Registry, error) {
	var doc registryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse signature registry: %w", err)
	}
	if len(doc.Signatures) == 0 {
		return nil, ErrEmptyRegistry
	}

	validate := validator.New()
	reg := &Registry{}
	seen := make(map[string]struct{})

	for i := range doc.Signatures {
		sig := doc.Signatures[i]
		if err := validate.Struct(sig); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSignature, sig.Type, err)
		}
		if _, ok := seen[sig.Type]; ok {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrInvalidSignature, sig.Type)
		}
		seen[sig.Type] = struct{}{}

		compiled := make([]*regexp.Regexp, 0, len(sig.FilenamePatterns))
		for _, p := range sig.FilenamePatterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: bad pattern %q: %v", ErrInvalidSignature, sig.Type, p, err)
			}
			compiled = append(compiled, re)
		}

		reg.signatures = append(reg.signatures, sig)
		reg.patterns = append(reg.patterns, compiled)
	}
	return reg, nil
}

// Signatures возвращает дескрипторы в порядке реестра
func (r *Registry) Signatures() []Signature {
	return r.signatures
}

// Get возвращает дескриптор по типу файла
func (r *Registry) Get(fileType string) *Signature {
	for i := range r.signatures {
		if r.signatures[i].Type == fileType {
			return &r.signatures[i]
		}
	}
	return nil
}

// MatchFilename возвращает первую сигнатуру, чей шаблон совпал с именем файла
func (r *Registry) MatchFilename(fileName string) *Signature {
	for i := range r.signatures {
		for _, re := range r.patterns[i] {
			if re.MatchString(fileName) {
				return &r.signatures[i]
			}
		}
	}
	return nil
}
