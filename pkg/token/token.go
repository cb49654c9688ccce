// Package token provides SOQL tokenization for parsing and syntax highlighting.
package token

import (
	"unicode"
	"unicode/utf8"
)

// Kind identifies the lexical class of a token.
type Kind string

const (
	Keyword     Kind = "keyword"
	Identifier  Kind = "identifier"
	Punctuation Kind = "punctuation"
	String      Kind = "string"
	Number      Kind = "number"
	Whitespace  Kind = "whitespace"
	Comment     Kind = "comment"
	Invalid     Kind = "invalid"
)

// Token represents a single lexical token with byte offsets into the source.
type Token struct {
	Start int    `json:"start"` // inclusive
	End   int    `json:"end"`   // exclusive
	Text  string `json:"text"`
	Kind  Kind   `json:"kind"`
}

// Scan tokenizes src. It never fails: every byte of src belongs to exactly
// one token, in source order, and characters that cannot start any token
// become Invalid tokens. Editors rely on this to highlight broken input
// while it is being typed.
func Scan(src string) []Token {
	if src == "" {
		return nil
	}

	tokens := make([]Token, 0, len(src)/4+1)
	i := 0
	for i < len(src) {
		start := i
		c := src[i]
		switch {
		case isSpace(c):
			for i < len(src) && isSpace(src[i]) {
				i++
			}
			tokens = append(tokens, tok(src, start, i, Whitespace))

		case c == '\'':
			end, terminated := scanString(src, i)
			i = end
			if terminated {
				tokens = append(tokens, tok(src, start, i, String))
			} else {
				tokens = append(tokens, tok(src, start, i, Invalid))
			}

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			tokens = append(tokens, tok(src, start, i, Comment))

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i = scanBlockComment(src, i)
			tokens = append(tokens, tok(src, start, i, Comment))

		case c >= '0' && c <= '9':
			i = scanNumber(src, i)
			tokens = append(tokens, tok(src, start, i, Number))

		case isIdentStart(c):
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			kind := Identifier
			if IsKeyword(src[start:i]) {
				kind = Keyword
			}
			tokens = append(tokens, tok(src, start, i, kind))

		case isPunct(c):
			i = scanPunct(src, i)
			tokens = append(tokens, tok(src, start, i, Punctuation))

		case c == '!':
			if i+1 < len(src) && src[i+1] == '=' {
				i += 2
				tokens = append(tokens, tok(src, start, i, Punctuation))
			} else {
				i++
				tokens = append(tokens, tok(src, start, i, Invalid))
			}

		default:
			r, size := utf8.DecodeRuneInString(src[i:])
			i += size
			if unicode.IsLetter(r) {
				for i < len(src) {
					r, size := utf8.DecodeRuneInString(src[i:])
					if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
						break
					}
					i += size
				}
				tokens = append(tokens, tok(src, start, i, Identifier))
			} else {
				tokens = append(tokens, tok(src, start, i, Invalid))
			}
		}
	}
	return tokens
}

func tok(src string, start, end int, kind Kind) Token {
	return Token{Start: start, End: end, Text: src[start:end], Kind: kind}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isPunct(c byte) bool {
	switch c {
	case '(', ')', ',', '.', ':', ';', '=', '<', '>', '+', '-', '*', '/':
		return true
	}
	return false
}

// scanString consumes a single-quoted string literal starting at the opening
// quote. Backslash escapes the next character (\' \\ \n \t are the forms
// SOQL accepts, but the scanner does not validate the escape itself).
func scanString(src string, i int) (end int, terminated bool) {
	i++ // opening quote
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			if i > len(src) {
				i = len(src)
			}
		case '\'':
			return i + 1, true
		default:
			i++
		}
	}
	return i, false
}

// scanBlockComment consumes /* ... */ including the terminator; an
// unterminated comment runs to end of input.
func scanBlockComment(src string, i int) int {
	i += 2
	for i < len(src) {
		if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return i
}

// scanNumber consumes an integer, decimal, or ISO date/datetime literal
// (2024-01-31, 2024-01-31T23:59:59Z, 2024-01-31T23:59:59+02:00). Dates are
// lexed as a single Number token so WHERE clauses round-trip intact.
func scanNumber(src string, i int) int {
	if end := dateEnd(src, i); end > 0 {
		return end
	}
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
	}
	if i+1 < len(src) && src[i] == '.' && src[i+1] >= '0' && src[i+1] <= '9' {
		i++
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
		}
	}
	return i
}

// dateEnd returns the exclusive end of a date or datetime literal starting
// at i, or -1 if src[i:] does not start with one.
func dateEnd(src string, i int) int {
	if !digits(src, i, 4) || !at(src, i+4, '-') || !digits(src, i+5, 2) || !at(src, i+7, '-') || !digits(src, i+8, 2) {
		return -1
	}
	end := i + 10
	if !at(src, end, 'T') {
		return end
	}
	if !digits(src, end+1, 2) || !at(src, end+3, ':') || !digits(src, end+4, 2) || !at(src, end+6, ':') || !digits(src, end+7, 2) {
		return end
	}
	end += 9
	switch {
	case at(src, end, 'Z'):
		return end + 1
	case at(src, end, '+') || at(src, end, '-'):
		if digits(src, end+1, 2) && at(src, end+3, ':') && digits(src, end+4, 2) {
			return end + 6
		}
	}
	return end
}

func at(src string, i int, c byte) bool { return i < len(src) && src[i] == c }

func digits(src string, i, n int) bool {
	if i+n > len(src) {
		return false
	}
	for k := i; k < i+n; k++ {
		if src[k] < '0' || src[k] > '9' {
			return false
		}
	}
	return true
}

// scanPunct consumes one punctuation or operator token, merging the
// two-character comparison operators.
func scanPunct(src string, i int) int {
	c := src[i]
	if (c == '<' || c == '>') && i+1 < len(src) && src[i+1] == '=' {
		return i + 2
	}
	if c == '<' && i+1 < len(src) && src[i+1] == '>' {
		return i + 2
	}
	return i + 1
}
