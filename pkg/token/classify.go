package token

import "strings"

// Semantic identifies the semantic type of a token for syntax highlighting.
type Semantic string

const (
	SemanticKeyword      Semantic = "keyword"
	SemanticFunction     Semantic = "function"
	SemanticSObject      Semantic = "sobject"
	SemanticField        Semantic = "field"
	SemanticRelationship Semantic = "relationship"
	SemanticDate         Semantic = "date"
	SemanticString       Semantic = "string"
	SemanticNumber       Semantic = "number"
	SemanticComment      Semantic = "comment"
	SemanticOperator     Semantic = "operator"
	SemanticPunctuation  Semantic = "punctuation"
	SemanticIdentifier   Semantic = "identifier"
	SemanticInvalid      Semantic = "invalid"
)

// HighlightToken is a classified token for syntax highlighting.
type HighlightToken struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Text  string   `json:"text"`
	Type  Semantic `json:"type"`
}

// Context provides semantic information for enhanced highlighting.
// All name matching is case-insensitive.
type Context struct {
	SObjects      []string
	Fields        []string
	Relationships []string
}

// Highlight returns all non-whitespace tokens of src with semantic
// classification. ctx may be nil, in which case identifiers that are not
// functions or date literals stay plain identifiers.
func Highlight(src string, ctx *Context) []HighlightToken {
	tokens := Scan(src)
	if len(tokens) == 0 {
		return nil
	}

	var sobjectSet, fieldSet, relationshipSet map[string]bool
	if ctx != nil {
		sobjectSet = makeSet(ctx.SObjects)
		fieldSet = makeSet(ctx.Fields)
		relationshipSet = makeSet(ctx.Relationships)
	}

	result := make([]HighlightToken, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == Whitespace {
			continue
		}
		result = append(result, HighlightToken{
			Start: t.Start,
			End:   t.End,
			Text:  t.Text,
			Type:  classify(t, src, sobjectSet, fieldSet, relationshipSet),
		})
	}
	return result
}

// classify determines the semantic type of a single token.
func classify(t Token, src string, sobjects, fields, relationships map[string]bool) Semantic {
	switch t.Kind {
	case String:
		return SemanticString
	case Number:
		if len(t.Text) >= 10 && t.Text[4] == '-' {
			return SemanticDate
		}
		return SemanticNumber
	case Comment:
		return SemanticComment
	case Invalid:
		return SemanticInvalid
	case Punctuation:
		switch t.Text {
		case "=", "!=", "<", ">", "<=", ">=", "<>", "+", "-", "*", "/":
			return SemanticOperator
		}
		return SemanticPunctuation
	case Keyword:
		return SemanticKeyword
	}

	lower := strings.ToLower(t.Text)

	// A name followed by an opening parenthesis reads as a call even when
	// it is not in the builtin table.
	after := strings.TrimLeft(src[t.End:], " \t\r\n")
	if strings.HasPrefix(after, "(") {
		return SemanticFunction
	}

	if IsDateLiteral(lower) {
		return SemanticDate
	}
	if relationships != nil && relationships[lower] {
		return SemanticRelationship
	}
	if fields != nil && fields[lower] {
		return SemanticField
	}
	if sobjects != nil && sobjects[lower] {
		return SemanticSObject
	}
	return SemanticIdentifier
}

// makeSet creates a case-insensitive lookup set from a slice of strings.
func makeSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[strings.ToLower(item)] = true
	}
	return m
}
