// Package hover provides documentation popups for SOQL tokens at cursor
// positions: keyword and function reference text, date literal semantics,
// and metadata-backed field/object/relationship details.
package hover

import "github.com/queryforce/soqlkit/pkg/metadata"

// HoverKind identifies the type of hover target.
type HoverKind string

const (
	HoverKeyword      HoverKind = "keyword"
	HoverFunction     HoverKind = "function"
	HoverDateLiteral  HoverKind = "dateLiteral"
	HoverSObject      HoverKind = "sobject"
	HoverField        HoverKind = "field"
	HoverRelationship HoverKind = "relationship"
)

// Range represents a text range in the query.
type Range struct {
	// Start is the starting offset (inclusive)
	Start int `json:"start"`

	// End is the ending offset (exclusive)
	End int `json:"end"`
}

// HoverInfo contains information about a token at a position.
type HoverInfo struct {
	// Content is the hover text (supports markdown)
	Content string `json:"content"`

	// Range is the text range this hover applies to
	Range *Range `json:"range,omitempty"`

	// Kind identifies the type of token
	Kind HoverKind `json:"kind"`

	// Name is the resolved name (field API name, keyword, function name)
	Name string `json:"name"`
}

// HoverContext provides context for hover resolution.
type HoverContext struct {
	// Query is the full SOQL query text
	Query string

	// Position is the cursor offset in the query
	Position int

	// Catalog optionally supplies org metadata for field/object hovers.
	// Keyword, function, and date literal hovers work without it.
	Catalog *metadata.Catalog
}

// Token represents a lexical token found at a position.
type Token struct {
	// Text is the token text
	Text string

	// Start is the starting offset
	Start int

	// End is the ending offset
	End int

	// Type indicates the token type
	Type TokenType
}

// TokenType identifies the type of token for hover purposes.
type TokenType string

const (
	TokenUnknown     TokenType = "unknown"
	TokenIdentifier  TokenType = "identifier"
	TokenKeyword     TokenType = "keyword"
	TokenFunction    TokenType = "function"
	TokenDateLiteral TokenType = "dateLiteral"
	TokenLiteral     TokenType = "literal"
	TokenPunctuation TokenType = "punctuation"
)
