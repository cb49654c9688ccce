// Package soqlkit provides SOQL parsing, analysis, completion, and formatting
// for the Salesforce Object Query Language.
//
// This is a convenience package that re-exports the main types and functions
// from the sub-packages. For more control, import the sub-packages directly:
//
//   - github.com/queryforce/soqlkit/pkg/parse     - Parsing SOQL queries
//   - github.com/queryforce/soqlkit/pkg/format    - Formatting SOQL queries
//   - github.com/queryforce/soqlkit/pkg/lint      - Syntax checking
//   - github.com/queryforce/soqlkit/pkg/soqltypes - Common types (Error, positions)
//   - github.com/queryforce/soqlkit/pkg/metadata  - Org metadata catalogs and providers
//   - github.com/queryforce/soqlkit/pkg/complete  - Auto-completion
//   - github.com/queryforce/soqlkit/pkg/hover     - Hover information
//   - github.com/queryforce/soqlkit/pkg/analyze   - Metadata-aware query analysis
//   - github.com/queryforce/soqlkit/pkg/splice    - Drag-and-drop query editing
//   - github.com/queryforce/soqlkit/pkg/token     - Tokenization and highlighting
package soqlkit

import (
	"context"
	"log/slog"

	"github.com/queryforce/soqlkit/pkg/analyze"
	"github.com/queryforce/soqlkit/pkg/complete"
	"github.com/queryforce/soqlkit/pkg/format"
	"github.com/queryforce/soqlkit/pkg/hover"
	"github.com/queryforce/soqlkit/pkg/lint"
	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/soqltypes"
	"github.com/queryforce/soqlkit/pkg/splice"
	"github.com/queryforce/soqlkit/pkg/token"
)

// Re-export types
type (
	// Error represents a parsing or validation error with position information
	Error = soqltypes.Error

	// Errors is a collection of Error pointers
	Errors = soqltypes.Errors

	// ErrorKind classifies an Error
	ErrorKind = soqltypes.ErrorKind

	// ParseResult contains the result of parsing a SOQL query
	ParseResult = parse.Result

	// Query is the parsed AST of a SOQL query
	Query = parse.Query

	// LintResult contains detailed lint results for a query
	LintResult = lint.Result

	// FormatStyle defines the formatting style for SOQL output
	FormatStyle = format.Style

	// FormatOptions configures the formatter behavior
	FormatOptions = format.Options

	// Provider supplies org metadata (SObjects, fields, relationships)
	Provider = metadata.Provider

	// Catalog is an in-memory metadata catalog implementing Provider
	Catalog = metadata.Catalog

	// SObject describes one Salesforce object in a catalog
	SObject = metadata.SObject

	// FieldDescriptor describes a single field of an SObject
	FieldDescriptor = metadata.FieldDescriptor

	// RelationshipDescriptor describes a child relationship of an SObject
	RelationshipDescriptor = metadata.RelationshipDescriptor

	// Cache memoizes describe calls against a slow Provider
	Cache = metadata.Cache

	// Watcher serves a catalog file and reloads it on change
	Watcher = metadata.Watcher

	// Suggestion represents a single completion suggestion
	Suggestion = complete.Suggestion

	// SuggestionKind identifies the type of completion suggestion
	SuggestionKind = complete.SuggestionKind

	// CursorContext describes what the cursor position expects
	CursorContext = complete.CursorContext

	// ContextKind identifies the kind of cursor context
	ContextKind = complete.ContextKind

	// CompletionRequest carries the text and cursor offset to complete
	CompletionRequest = complete.Request

	// CompletionOptions configures suggestion generation
	CompletionOptions = complete.Options

	// Session serializes completion requests with last-request-wins semantics
	Session = complete.Session

	// HoverInfo contains information about a token at a position
	HoverInfo = hover.HoverInfo

	// HoverContext provides context for hover resolution
	HoverContext = hover.HoverContext

	// HoverKind identifies the type of hover target
	HoverKind = hover.HoverKind

	// AnalyzeResult contains the result of analyzing a SOQL query
	AnalyzeResult = analyze.Result

	// AnalyzeOptions configures analysis behavior
	AnalyzeOptions = analyze.AnalyzeOptions

	// References lists everything a query touches, per nesting level
	References = analyze.References

	// SchemaError represents an error from metadata validation
	SchemaError = analyze.SchemaError

	// FunctionCall represents a function call in a query with argument details
	FunctionCall = analyze.FunctionCall

	// Warning is a non-fatal finding about query shape or cost
	Warning = analyze.Warning

	// WarningType identifies the type of analysis warning
	WarningType = analyze.WarningType

	// Severity indicates how serious a warning is
	Severity = analyze.Severity

	// Token represents a single raw token
	Token = token.Token

	// TokenKind identifies the lexical class of a token
	TokenKind = token.Kind

	// HighlightToken represents a token with semantic classification
	HighlightToken = token.HighlightToken

	// Semantic identifies the semantic type of a highlight token
	Semantic = token.Semantic

	// TokenContext provides org metadata for enhanced highlighting
	TokenContext = token.Context
)

// Re-export error kind constants
const (
	TokenizeError       = soqltypes.TokenizeError
	ParseError          = soqltypes.ParseError
	MaxNestingExceeded  = soqltypes.MaxNestingExceeded
	MetadataUnavailable = soqltypes.MetadataUnavailable
	AmbiguousScope      = soqltypes.AmbiguousScope
)

// Re-export format style constants
const (
	FormatCompact = format.Compact
	FormatPretty  = format.Pretty
)

// Re-export cursor context kind constants
const (
	ContextUnknown      = complete.ContextUnknown
	ContextKeyword      = complete.ContextKeyword
	ContextField        = complete.ContextField
	ContextSObject      = complete.ContextSObject
	ContextRelationship = complete.ContextRelationship
	ContextSubquery     = complete.ContextSubquery
)

// Re-export suggestion kind constants
const (
	KindKeyword      = complete.KindKeyword
	KindField        = complete.KindField
	KindSObject      = complete.KindSObject
	KindRelationship = complete.KindRelationship
	KindFunction     = complete.KindFunction
	KindDateLiteral  = complete.KindDateLiteral
	KindError        = complete.KindError
)

// Re-export hover kind constants
const (
	HoverKeyword      = hover.HoverKeyword
	HoverFunction     = hover.HoverFunction
	HoverDateLiteral  = hover.HoverDateLiteral
	HoverSObject      = hover.HoverSObject
	HoverField        = hover.HoverField
	HoverRelationship = hover.HoverRelationship
)

// Re-export schema error type constants
const (
	ErrUnknownSObject      = analyze.ErrUnknownSObject
	ErrUnknownField        = analyze.ErrUnknownField
	ErrUnknownRelationship = analyze.ErrUnknownRelationship
	ErrUnknownFunction     = analyze.ErrUnknownFunction
	ErrFunctionArgCount    = analyze.ErrFunctionArgCount
	ErrMetadataUnavailable = analyze.ErrMetadataUnavailable
)

// Re-export warning type and severity constants
const (
	WarnNoWhereClause   = analyze.WarnNoWhereClause
	WarnNoLimit         = analyze.WarnNoLimit
	WarnLargeLimit      = analyze.WarnLargeLimit
	WarnLargeOffset     = analyze.WarnLargeOffset
	WarnLeadingWildcard = analyze.WarnLeadingWildcard
	WarnFieldsAll       = analyze.WarnFieldsAll

	SeverityError   = analyze.SeverityError
	SeverityWarning = analyze.SeverityWarning
	SeverityInfo    = analyze.SeverityInfo
)

// Parse parses a single SOQL query
func Parse(input string) *ParseResult {
	return parse.Parse(input)
}

// IsValid returns true if the SOQL input is syntactically valid
func IsValid(input string) bool {
	return parse.IsValid(input)
}

// Lint validates SOQL and returns any errors found
func Lint(input string) Errors {
	return lint.Check(input)
}

// Analyze performs syntax analysis on a SOQL query
func Analyze(input string) *LintResult {
	return lint.Analyze(input)
}

// Format formats a parsed SOQL query according to the given options
func Format(result *ParseResult, opts FormatOptions) string {
	return format.Format(result, opts)
}

// FormatSource parses and formats a SOQL string
func FormatSource(input string, opts FormatOptions) string {
	return format.Source(input, opts)
}

// Pretty is a convenience function for pretty formatting
func Pretty(input string) string {
	return format.PrettyString(input)
}

// Compact is a convenience function for compact formatting
func Compact(input string) string {
	return format.CompactString(input)
}

// DefaultFormatOptions returns sensible defaults for formatting
func DefaultFormatOptions() FormatOptions {
	return format.DefaultOptions()
}

// CompactFormatOptions returns options for compact formatting
func CompactFormatOptions() FormatOptions {
	return format.CompactOptions()
}

// NewCatalog creates an empty metadata catalog
func NewCatalog() *Catalog {
	return metadata.NewCatalog()
}

// LoadCatalog reads a catalog from a JSON or YAML file
func LoadCatalog(path string) (*Catalog, error) {
	return metadata.Load(path)
}

// NewCache wraps a Provider with a memoizing describe cache
func NewCache(upstream Provider) *Cache {
	return metadata.NewCache(upstream)
}

// NewWatcher serves a catalog file and reloads it when the file changes
func NewWatcher(path string, logger *slog.Logger, onReload func(*Catalog)) (*Watcher, error) {
	return metadata.NewWatcher(path, logger, onReload)
}

// Suggest returns completion suggestions for the given request
func Suggest(ctx context.Context, provider Provider, req CompletionRequest) ([]Suggestion, error) {
	return complete.Suggest(ctx, provider, req)
}

// NewSession creates a completion session with last-request-wins semantics
func NewSession(provider Provider, logger *slog.Logger) *Session {
	return complete.NewSession(provider, logger)
}

// ApplySuggestion inserts a suggestion into the text it was generated for
func ApplySuggestion(text string, s Suggestion) string {
	return complete.Apply(text, s)
}

// GetHoverInfo returns hover information for the token at the given position
func GetHoverInfo(ctx *HoverContext) *HoverInfo {
	return hover.GetHoverInfo(ctx)
}

// AnalyzeWithMetadata performs full analysis of a SOQL query including
// metadata validation and function argument validation. This is the
// comprehensive analysis function.
func AnalyzeWithMetadata(ctx context.Context, soql string, opts *AnalyzeOptions) (*AnalyzeResult, error) {
	return analyze.Analyze(ctx, soql, opts)
}

// DefaultAnalyzeOptions returns default analysis options
func DefaultAnalyzeOptions() *AnalyzeOptions {
	return analyze.DefaultOptions()
}

// ExtractReferences lists every object, field, and function a query touches
func ExtractReferences(soql string) (*References, Errors) {
	return analyze.ExtractReferences(soql)
}

// SpliceField appends a dropped field to the query's SELECT list
func SpliceField(queryText string, field *FieldDescriptor) (string, error) {
	return splice.Field(queryText, field)
}

// SpliceFieldInto appends a dropped field to the SELECT list of the named scope
func SpliceFieldInto(queryText, scope string, field *FieldDescriptor) (string, error) {
	return splice.FieldInto(queryText, scope, field)
}

// SpliceRelationship inserts a child-relationship subquery into the SELECT list
func SpliceRelationship(queryText string, rel *RelationshipDescriptor) (string, error) {
	return splice.Relationship(queryText, rel)
}

// SpliceRelationshipInto inserts a child-relationship subquery into the named scope
func SpliceRelationshipInto(queryText, scope string, rel *RelationshipDescriptor) (string, error) {
	return splice.RelationshipInto(queryText, scope, rel)
}

// GetTokens returns all tokens from a SOQL string with semantic classification.
// The optional context provides org metadata for enhanced highlighting
// (e.g., distinguishing fields from relationship names).
func GetTokens(input string, ctx *TokenContext) []HighlightToken {
	return token.Highlight(input, ctx)
}

// Scan returns the raw lexical tokens of a SOQL string
func Scan(input string) []Token {
	return token.Scan(input)
}
