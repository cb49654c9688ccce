package complete

import (
	_ "embed"
	"strings"

	"github.com/queryforce/soqlkit/pkg/token"
	"gopkg.in/yaml.v3"
)

//go:embed annotations.yaml
var annotationsYAML []byte

// Annotations loaded from YAML.
var annotations struct {
	Keywords     map[string]annotationEntry `yaml:"keywords"`
	Functions    map[string]annotationEntry `yaml:"functions"`
	DateLiterals map[string]annotationEntry `yaml:"dateLiterals"`
	Scopes       []literalEntry             `yaml:"scopes"`
}

type annotationEntry struct {
	Detail        string `yaml:"detail"`
	Documentation string `yaml:"documentation"`
	InsertText    string `yaml:"insertText"`
	Priority      int    `yaml:"priority"`
}

type literalEntry struct {
	Label      string `yaml:"label"`
	Detail     string `yaml:"detail"`
	InsertText string `yaml:"insertText"`
	Priority   int    `yaml:"priority"`
}

// Prototype suggestion lists built once at init from pkg/token's name sets
// plus the embedded annotations. Generators copy prototypes into fresh
// slices and stamp replace ranges; the prototypes themselves are never
// handed out.
var (
	functionSuggestions    []Suggestion
	dateLiteralSuggestions []Suggestion
	scopeSuggestions       []Suggestion
)

func init() {
	if err := yaml.Unmarshal(annotationsYAML, &annotations); err != nil {
		panic("complete: failed to parse annotations.yaml: " + err.Error())
	}

	buildFunctionList()
	buildDateLiteralList()
	buildScopeList()
}

func buildFunctionList() {
	for _, name := range token.Functions() {
		item := Suggestion{
			Label:        name + "()",
			Kind:         KindFunction,
			InsertText:   name + "()",
			SortPriority: 50,
		}
		if ann, ok := annotations.Functions[name]; ok {
			item.Detail = ann.Detail
			item.Documentation = ann.Documentation
			if ann.InsertText != "" {
				item.InsertText = ann.InsertText
			}
			if ann.Priority > 0 {
				item.SortPriority = ann.Priority
			}
		} else {
			item.Detail = "SOQL function"
		}
		functionSuggestions = append(functionSuggestions, item)
	}
}

func buildDateLiteralList() {
	for _, name := range token.DateLiterals() {
		item := Suggestion{
			Label:        name,
			Kind:         KindDateLiteral,
			SortPriority: 65,
		}
		if ann, ok := annotations.DateLiterals[name]; ok {
			item.Detail = ann.Detail
			item.Documentation = ann.Documentation
			item.InsertText = ann.InsertText
			if ann.Priority > 0 {
				item.SortPriority = ann.Priority
			}
		} else {
			item.Detail = "Date literal"
		}
		// Parameterized literals take a :n suffix.
		if item.InsertText == "" && (strings.Contains(name, "_N_") || strings.HasSuffix(name, "_AGO")) {
			item.InsertText = name + ":"
		}
		dateLiteralSuggestions = append(dateLiteralSuggestions, item)
	}
}

func buildScopeList() {
	for _, s := range annotations.Scopes {
		item := Suggestion{
			Label:        s.Label,
			Kind:         KindKeyword,
			Detail:       s.Detail,
			InsertText:   s.InsertText,
			SortPriority: s.Priority,
		}
		scopeSuggestions = append(scopeSuggestions, item)
	}
}

// makeKeyword builds a keyword suggestion, decorated from annotations when
// an entry exists.
func makeKeyword(label string) Suggestion {
	item := Suggestion{
		Label:        label,
		Kind:         KindKeyword,
		SortPriority: 50,
	}
	if ann, ok := annotations.Keywords[label]; ok {
		item.Detail = ann.Detail
		item.Documentation = ann.Documentation
		item.InsertText = ann.InsertText
		if ann.Priority > 0 {
			item.SortPriority = ann.Priority
		}
	}
	return item
}
