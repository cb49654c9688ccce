// Package analyze provides metadata-aware analysis of SOQL queries.
// It extracts the objects, fields, and functions a query references,
// validates them against org metadata, and flags cost and correctness
// risks like unfiltered scans and non-selective LIKE patterns.
package analyze

import (
	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/soqltypes"
)

// Result contains the result of analyzing a SOQL query.
type Result struct {
	// Query is the original query text.
	Query string `json:"query"`

	// IsValid is true if the query is syntactically valid. Schema errors
	// and warnings do not affect it.
	IsValid bool `json:"isValid"`

	// SyntaxErrors contains tokenize and parse errors.
	SyntaxErrors soqltypes.Errors `json:"syntaxErrors,omitempty"`

	// References describes the objects, fields, and functions the query
	// touches. Populated whenever a parse produced an AST, even a partial
	// one.
	References *References `json:"references,omitempty"`

	// SchemaErrors contains findings from validating References against
	// org metadata (unknown objects, fields, relationships, bad arity).
	SchemaErrors []*SchemaError `json:"schemaErrors,omitempty"`

	// Warnings contains non-fatal findings (missing WHERE, large OFFSET,
	// leading-wildcard LIKE, and so on).
	Warnings []*Warning `json:"warnings,omitempty"`
}

// References describes what one query level reads: its FROM target, the
// field paths used per clause, and the function calls made. Relationship
// subqueries and semi-joins get their own nested References.
type References struct {
	// SObject is the FROM target. At level zero this is an object API
	// name; in a relationship subquery it is the child relationship name.
	SObject string `json:"sobject,omitempty"`

	// Alias is the FROM alias when one was declared.
	Alias string `json:"alias,omitempty"`

	// Level is the nesting depth, zero for the outermost query.
	Level int `json:"level"`

	// Field paths per clause, in source order, as written. Parent
	// traversals keep their dotted form (Account.Owner.Name). A path used
	// in two clauses appears in both slices.
	SelectFields  []string `json:"selectFields,omitempty"`
	WhereFields   []string `json:"whereFields,omitempty"`
	GroupByFields []string `json:"groupByFields,omitempty"`
	HavingFields  []string `json:"havingFields,omitempty"`
	OrderByFields []string `json:"orderByFields,omitempty"`

	// Fields is the union of the per-clause slices, deduplicated
	// case-insensitively in first-appearance order.
	Fields []string `json:"fields,omitempty"`

	// Functions lists distinct function names in lowercase.
	Functions []string `json:"functions,omitempty"`

	// FunctionCalls contains detailed info about each call site.
	FunctionCalls []*FunctionCall `json:"functionCalls,omitempty"`

	// BindVariables lists Apex bind variable names, without the leading
	// colon, in first-appearance order.
	BindVariables []string `json:"bindVariables,omitempty"`

	// Limit is the LIMIT value if present, -1 otherwise.
	Limit int `json:"limit"`

	// Offset is the OFFSET value if present, -1 otherwise.
	Offset int `json:"offset"`

	// Subqueries holds one References per relationship subquery in the
	// SELECT list, with Level one deeper than this query.
	Subqueries []*References `json:"subqueries,omitempty"`

	// SemiJoins holds one References per IN (SELECT ...) subquery in the
	// WHERE clause. Each is a root query in its own right: its SObject is
	// an API name and its fields resolve against that object, not the
	// outer scope.
	SemiJoins []*References `json:"semiJoins,omitempty"`
}

// FunctionCall represents a function call in a query with argument details.
type FunctionCall struct {
	// Name is the function name in lowercase.
	Name string `json:"name"`

	// ArgCount is the number of top-level arguments passed.
	ArgCount int `json:"argCount"`

	// Args is the raw text between the parentheses.
	Args string `json:"args,omitempty"`

	// Position is the location of the function name in the query.
	Position *Position `json:"position,omitempty"`
}

// SchemaError represents an error from metadata validation.
type SchemaError struct {
	Type       SchemaErrorType `json:"type"`
	Message    string          `json:"message"`
	Suggestion string          `json:"suggestion,omitempty"`
	Object     string          `json:"object,omitempty"` // the name that failed to resolve
	Position   *Position       `json:"position,omitempty"`
}

// SchemaErrorType identifies the kind of schema error.
type SchemaErrorType string

const (
	ErrUnknownSObject      SchemaErrorType = "unknown_sobject"
	ErrUnknownField        SchemaErrorType = "unknown_field"
	ErrUnknownRelationship SchemaErrorType = "unknown_relationship"
	ErrUnknownFunction     SchemaErrorType = "unknown_function"
	ErrFunctionArgCount    SchemaErrorType = "function_arg_count"
	ErrMetadataUnavailable SchemaErrorType = "metadata_unavailable"
)

// Warning represents a non-fatal issue with the query.
type Warning struct {
	Type       WarningType `json:"type"`
	Severity   Severity    `json:"severity"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Position   *Position   `json:"position,omitempty"`
}

// WarningType identifies the kind of warning.
type WarningType string

const (
	WarnNoWhereClause   WarningType = "no_where_clause"
	WarnNoLimit         WarningType = "no_limit"
	WarnLargeLimit      WarningType = "large_limit"
	WarnLargeOffset     WarningType = "large_offset"
	WarnLeadingWildcard WarningType = "leading_wildcard"
	WarnFieldsAll       WarningType = "fields_all"
)

// Severity indicates how serious a warning is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Position represents a location in the query. Line is 1-based and Column
// 0-based, matching the error type's editor conventions.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"` // 0-based byte offset
}

// HasSchemaErrors returns true if there are any metadata validation errors.
func (r *Result) HasSchemaErrors() bool {
	return len(r.SchemaErrors) > 0
}

// HasWarnings returns true if there are any warnings.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasErrors returns true if there are any errors (syntax or schema).
func (r *Result) HasErrors() bool {
	return len(r.SyntaxErrors) > 0 || len(r.SchemaErrors) > 0
}

// AllErrors returns all errors (syntax + schema) as a combined list.
func (r *Result) AllErrors() []string {
	var errs []string
	for _, e := range r.SyntaxErrors {
		errs = append(errs, e.Error())
	}
	for _, e := range r.SchemaErrors {
		errs = append(errs, e.Message)
	}
	return errs
}

// WarningsOfType returns all warnings of a specific type.
func (r *Result) WarningsOfType(t WarningType) []*Warning {
	var result []*Warning
	for _, w := range r.Warnings {
		if w.Type == t {
			result = append(result, w)
		}
	}
	return result
}

// ErrorsOfType returns all schema errors of a specific type.
func (r *Result) ErrorsOfType(t SchemaErrorType) []*SchemaError {
	var result []*SchemaError
	for _, e := range r.SchemaErrors {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// NewReferences creates a new empty References.
func NewReferences() *References {
	return &References{
		SelectFields:  make([]string, 0),
		WhereFields:   make([]string, 0),
		GroupByFields: make([]string, 0),
		HavingFields:  make([]string, 0),
		OrderByFields: make([]string, 0),
		Fields:        make([]string, 0),
		Functions:     make([]string, 0),
		FunctionCalls: make([]*FunctionCall, 0),
		Limit:         -1,
		Offset:        -1,
	}
}

// HasLimit reports whether this query level declared a LIMIT.
func (r *References) HasLimit() bool {
	return r.Limit >= 0
}

// HasOffset reports whether this query level declared an OFFSET.
func (r *References) HasOffset() bool {
	return r.Offset >= 0
}

// AnalyzeOptions configures analysis behavior.
type AnalyzeOptions struct {
	// Provider supplies org metadata to validate against (optional).
	Provider metadata.Provider

	// WarnOnNoLimit warns about queries without a LIMIT clause.
	WarnOnNoLimit bool

	// WarnOnFieldsAll warns when FIELDS(ALL) or FIELDS(STANDARD) pulls
	// every field of the object.
	WarnOnFieldsAll bool

	// LargeLimitThreshold triggers a warning when LIMIT exceeds this
	// value (0 = disabled).
	LargeLimitThreshold int
}

// DefaultOptions returns default analysis options.
func DefaultOptions() *AnalyzeOptions {
	return &AnalyzeOptions{
		WarnOnNoLimit:       false,
		WarnOnFieldsAll:     false,
		LargeLimitThreshold: 0,
	}
}
