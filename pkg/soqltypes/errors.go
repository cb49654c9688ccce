// Package soqltypes holds the error taxonomy shared by the SOQL tooling
// packages.
package soqltypes

import (
	"fmt"
	"strings"
)

// ErrorKind classifies what went wrong.
type ErrorKind string

const (
	// TokenizeError marks an invalid character or unterminated literal.
	// Recorded, never thrown: the scanner still covers the full input.
	TokenizeError ErrorKind = "tokenize_error"

	// ParseError marks a structural grammar violation (missing FROM,
	// unmatched parenthesis, unexpected token).
	ParseError ErrorKind = "parse_error"

	// MaxNestingExceeded marks a relationship subquery nested deeper than
	// the supported four levels.
	MaxNestingExceeded ErrorKind = "max_nesting_exceeded"

	// MetadataUnavailable marks a failed or timed-out metadata provider call.
	MetadataUnavailable ErrorKind = "metadata_unavailable"

	// AmbiguousScope marks a cursor context that cannot determine a single
	// SObject to complete against.
	AmbiguousScope ErrorKind = "ambiguous_scope"
)

// Error represents a tokenize, parse, or validation error with position
// information. Start/End are byte offsets into the original query text;
// Line is 1-based and Column 0-based, matching editor conventions.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Line       int       `json:"line"`
	Column     int       `json:"column"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// New builds an Error for the [start,end) span of src, filling in the
// line/column of start.
func New(kind ErrorKind, src string, start, end int, message string) *Error {
	line, col := Position(src, start)
	return &Error{
		Kind:    kind,
		Message: message,
		Start:   start,
		End:     end,
		Line:    line,
		Column:  col,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("line %d:%d: %s (did you mean %s?)", e.Line, e.Column, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}

// PositionString returns a compact line:column representation.
func (e *Error) PositionString() string {
	return fmt.Sprintf("%d:%d", e.Line, e.Column)
}

// Errors is a collection of Error pointers.
type Errors []*Error

// Error implements the error interface for the collection.
func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:\n", len(e))
	for i, err := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// HasErrors returns true if there are any errors.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// First returns the first error or nil if empty.
func (e Errors) First() *Error {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}

// ByKind returns all errors of a given kind.
func (e Errors) ByKind(kind ErrorKind) Errors {
	var result Errors
	for _, err := range e {
		if err.Kind == kind {
			result = append(result, err)
		}
	}
	return result
}

// ByLine returns all errors at a specific line.
func (e Errors) ByLine(line int) Errors {
	var result Errors
	for _, err := range e {
		if err.Line == line {
			result = append(result, err)
		}
	}
	return result
}

// Position converts a byte offset into a 1-based line and 0-based column.
// Offsets past the end of src map to the position just after the last byte.
func Position(src string, offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart
}
