// Package complete provides cursor-aware SOQL auto-completion.
//
// A completion request carries the document text and a 0-based cursor
// offset. ResolveContext maps the offset onto the parsed query to decide
// what the position expects (an SObject name, a field, a child
// relationship, a keyword); Suggest turns that context plus a
// metadata.Provider into ranked suggestions. Session adds the
// last-request-wins policy editors need when requests overlap.
package complete

import "github.com/queryforce/soqlkit/pkg/parse"

// ContextKind classifies what the cursor position expects next.
type ContextKind string

const (
	ContextUnknown      ContextKind = "unknown"
	ContextKeyword      ContextKind = "keyword"      // clause or statement keyword
	ContextField        ContextKind = "field"        // field name within the current scope
	ContextSObject      ContextKind = "sobject"      // outer FROM target
	ContextRelationship ContextKind = "relationship" // subquery FROM target
	ContextSubquery     ContextKind = "subquery"     // inside ( ... ) before SELECT is typed
)

// CursorContext describes the grammatical position of a cursor offset.
// It is derived per request and never cached.
type CursorContext struct {
	Kind ContextKind `json:"kind"`

	// Query is the innermost query enclosing the cursor. Never nil on a
	// non-nil context.
	Query *parse.Query `json:"-"`

	// Partial is the token fragment typed so far, "" when the cursor sits
	// after whitespace or punctuation.
	Partial string `json:"partial"`

	// Start and End delimit the half-open replace range [Start,End) that a
	// suggestion's insert text substitutes. End is always the cursor offset.
	Start int `json:"start"`
	End   int `json:"end"`

	// SObject is the syntactically resolved object scope. Empty for
	// subqueries and relationship paths, whose scope needs metadata.
	SObject string `json:"sobject,omitempty"`

	// RelationshipPath holds the dotted parent-path segments typed before
	// the partial (Account, Owner for "Account.Owner.Na").
	RelationshipPath []string `json:"relationshipPath,omitempty"`

	// InSubquery reports whether the enclosing query is nested.
	InSubquery bool `json:"inSubquery"`
}

// SuggestionKind identifies the type of a suggestion.
type SuggestionKind string

const (
	KindKeyword      SuggestionKind = "keyword"
	KindField        SuggestionKind = "field"
	KindSObject      SuggestionKind = "sobject"
	KindRelationship SuggestionKind = "relationship"
	KindFunction     SuggestionKind = "function"
	KindDateLiteral  SuggestionKind = "date_literal"
	KindError        SuggestionKind = "error"
)

// Suggestion is a single completion candidate. Error suggestions carry a
// "⚠️ " label prefix and empty insert text; they surface scope problems in
// the completion list instead of an empty popup that reads as "no matches".
type Suggestion struct {
	// Label is the display text shown in the completion list.
	Label string `json:"label"`

	// InsertText is the text to insert (defaults to Label when empty).
	InsertText string `json:"insertText,omitempty"`

	// Kind identifies the type of suggestion.
	Kind SuggestionKind `json:"kind"`

	// Detail provides additional info (field type, child SObject, ...).
	Detail string `json:"detail,omitempty"`

	// Documentation provides extended documentation.
	Documentation string `json:"documentation,omitempty"`

	// SortPriority controls ordering (lower = higher priority).
	SortPriority int `json:"sortPriority,omitempty"`

	// ReplaceStart and ReplaceEnd are the half-open byte range of the
	// partial token this suggestion replaces.
	ReplaceStart int `json:"replaceStart"`
	ReplaceEnd   int `json:"replaceEnd"`
}

// GetInsertText returns the text to insert, defaulting to Label.
func (s *Suggestion) GetInsertText() string {
	if s.InsertText != "" {
		return s.InsertText
	}
	return s.Label
}

// IsError reports whether the suggestion is a ⚠️ sentinel rather than an
// insertable candidate.
func (s *Suggestion) IsError() bool {
	return s.Kind == KindError
}

// Apply splices the suggestion's insert text into text over its replace
// range and returns the resulting document. Error sentinels and
// out-of-range suggestions leave the text unchanged.
func Apply(text string, s Suggestion) string {
	if s.IsError() {
		return text
	}
	if s.ReplaceStart < 0 || s.ReplaceEnd > len(text) || s.ReplaceStart > s.ReplaceEnd {
		return text
	}
	return text[:s.ReplaceStart] + s.GetInsertText() + text[s.ReplaceEnd:]
}

// Request is one completion request against a document state.
type Request struct {
	// Text is the full query text.
	Text string

	// Offset is the 0-based byte offset of the cursor.
	Offset int

	// Options tunes generation; nil means DefaultOptions.
	Options *Options
}

// Options configures suggestion generation.
type Options struct {
	// MaxItems limits the number of returned suggestions (0 = unlimited).
	MaxItems int

	// IncludeKeywords includes clause and statement keywords.
	IncludeKeywords bool

	// IncludeFunctions includes aggregate and date functions in SELECT
	// list and HAVING positions.
	IncludeFunctions bool

	// IncludeDateLiterals includes named date literals (TODAY, LAST_N_DAYS)
	// in WHERE and HAVING positions.
	IncludeDateLiterals bool

	// IncludeSubqueries includes child-relationship subquery candidates in
	// SELECT list positions.
	IncludeSubqueries bool
}

// DefaultOptions returns the default completion options.
func DefaultOptions() *Options {
	return &Options{
		MaxItems:            50,
		IncludeKeywords:     true,
		IncludeFunctions:    true,
		IncludeDateLiterals: true,
		IncludeSubqueries:   true,
	}
}
