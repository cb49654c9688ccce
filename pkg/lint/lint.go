// Package lint is the thin syntax-check surface over the parser, for
// callers that only need pass/fail and positioned errors.
package lint

import (
	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/soqltypes"
)

// Check validates a SOQL query and returns any errors found.
func Check(input string) soqltypes.Errors {
	result := parse.Parse(input)
	return result.Errors
}

// IsValid returns true if the input is syntactically valid SOQL.
func IsValid(input string) bool {
	return !Check(input).HasErrors()
}

// Result contains detailed lint results for a query.
type Result struct {
	Input   string           `json:"input"`
	Errors  soqltypes.Errors `json:"errors,omitempty"`
	IsValid bool             `json:"isValid"`

	// Depth is the subquery nesting depth, zero for a flat query and -1
	// when no query was recognized at all.
	Depth int `json:"depth"`
}

// Analyze performs detailed syntax analysis on a query.
func Analyze(input string) *Result {
	parseResult := parse.Parse(input)
	r := &Result{
		Input:   input,
		Errors:  parseResult.Errors,
		IsValid: parseResult.IsValid(),
		Depth:   -1,
	}
	if parseResult.AST != nil {
		r.Depth = parseResult.AST.Depth()
	}
	return r
}
