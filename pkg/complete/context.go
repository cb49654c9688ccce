package complete

import (
	"strings"

	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/token"
)

// ResolveContext maps a cursor offset onto the parse result and returns the
// grammatical context at that position. The innermost query whose span
// contains the offset wins, with ties broken toward the most deeply nested
// subquery. Returns nil when parsing failed before any query was recognized;
// callers must then show zero suggestions rather than guess.
//
// Boundary offsets prefer the "next token to be typed" reading: a cursor
// just past "SELECT " resolves to the field list, not the keyword.
func ResolveContext(res *parse.Result, offset int) *CursorContext {
	if res == nil || res.AST == nil {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(res.Input) {
		offset = len(res.Input)
	}

	q := enclosingQuery(res.AST, offset)
	if q == nil {
		q = res.AST
	}

	cctx := &CursorContext{
		Kind:       ContextUnknown,
		Query:      q,
		End:        offset,
		InSubquery: q.Level > 0,
	}

	start, partial, kind := partialAt(res.Input, res.Tokens, offset)
	cctx.Start, cctx.Partial = start, partial

	if opaqueAt(res.Tokens, offset) {
		return cctx
	}

	classify(res.Input, q, cctx, kind)
	return cctx
}

// classify decides the context kind from the anchor position, the start of
// the token being typed. Using the anchor instead of the raw offset keeps a
// cursor in the middle of a word in the same region as the word itself.
func classify(src string, q *parse.Query, cctx *CursorContext, partialKind token.Kind) {
	anchor := cctx.Start

	switch {
	case anchor <= q.SelectKeyword.Start || anchor < q.SelectKeyword.End:
		// At or inside the SELECT keyword itself.
		cctx.Kind = ContextKeyword

	case partialKind == token.Keyword:
		// Typing a keyword: FROM, WHERE, LIKE, ASC, ... The candidate set
		// is position-dependent, the kind is not.
		cctx.Kind = ContextKeyword

	case q.From != nil && q.From.Span.Covers(anchor):
		cctx.Kind = fromKind(q)

	case q.From != nil && q.From.AliasSpan.Len() > 0 && q.From.AliasSpan.Covers(anchor):
		// An identifier here parses as the alias, but mid-typing it is far
		// more often the start of a clause keyword.
		cctx.Kind = ContextKeyword

	case q.ListSpan.Covers(anchor):
		classifySelectList(src, q, cctx)

	case q.From == nil && q.FromKeyword.Len() > 0 && anchor >= q.FromKeyword.End && clauseAt(q, anchor) == nil:
		// "... FROM |" with nothing typed yet.
		cctx.Kind = fromKind(q)

	default:
		if c := clauseAt(q, anchor); c != nil {
			classifyClause(src, q, c, cctx)
		} else if q.From != nil && anchor > q.From.Span.End {
			// Gap after the FROM target with no clause yet.
			cctx.Kind = ContextKeyword
		}
	}

	if cctx.Kind == ContextField && q.Level == 0 {
		cctx.SObject = q.SObject()
	}
}

func fromKind(q *parse.Query) ContextKind {
	if q.Level > 0 {
		return ContextRelationship
	}
	return ContextSObject
}

// classifySelectList handles anchors inside the region between SELECT and
// FROM: field expressions, subquery parens, raw TYPEOF blocks, and the
// empty slots between commas.
func classifySelectList(src string, q *parse.Query, cctx *CursorContext) {
	anchor := cctx.Start

	for i := range q.Select {
		item := &q.Select[i]
		if !item.Span.Covers(anchor) {
			continue
		}
		switch {
		case item.Subquery != nil:
			// The inner query's own span was checked first by
			// enclosingQuery; landing here means the parens themselves.
			cctx.Kind = ContextSubquery
			return
		case item.Raw != "" && strings.HasPrefix(item.Raw, "("):
			// An opened group whose SELECT hasn't been typed yet.
			cctx.Kind = ContextSubquery
			return
		case item.Raw != "":
			// TYPEOF ... END passes through unmodeled.
			cctx.Kind = ContextUnknown
			return
		case item.Field != nil:
			classifyFieldExpr(src, item.Field, cctx)
			return
		}
	}

	// No item covers the anchor: an empty slot after SELECT or a comma.
	cctx.Kind = ContextField
	cctx.RelationshipPath = pathBefore(src, anchor)
}

func classifyFieldExpr(src string, f *parse.FieldExpr, cctx *CursorContext) {
	anchor := cctx.Start

	if f.IsCall() {
		if f.ArgsSpan.Covers(anchor) && anchor >= f.ArgsSpan.Start {
			// Function arguments are field references.
			cctx.Kind = ContextField
			cctx.RelationshipPath = pathBefore(src, anchor)
			return
		}
		if anchor <= f.Span.Start+len(f.Func) {
			// Typing the function name; functions rank among fields.
			cctx.Kind = ContextField
			return
		}
		// Alias position after the closing paren.
		cctx.Kind = ContextUnknown
		return
	}

	cctx.Kind = ContextField
	cctx.RelationshipPath = pathBefore(src, anchor)
}

// classifyClause maps a position inside (or trailing) a clause to a kind.
// WHERE/HAVING/GROUP BY/ORDER BY bodies reference fields; the rest expect
// fixed keywords or literals.
func classifyClause(src string, q *parse.Query, c *parse.Clause, cctx *CursorContext) {
	if cctx.Start < c.Body.Start {
		// Inside the clause keyword region (e.g. between GROUP and BY).
		cctx.Kind = ContextKeyword
		return
	}

	switch c.Keyword {
	case "WHERE", "HAVING", "GROUP BY", "ORDER BY":
		cctx.Kind = ContextField
		cctx.RelationshipPath = pathBefore(src, cctx.Start)
	default:
		// WITH, USING SCOPE, LIMIT, OFFSET, FOR, UPDATE.
		cctx.Kind = ContextKeyword
	}
}

// enclosingQuery returns the deepest query whose span covers offset.
func enclosingQuery(q *parse.Query, offset int) *parse.Query {
	if q == nil || !q.Span.Covers(offset) {
		return nil
	}
	for _, sub := range q.Subqueries() {
		if inner := enclosingQuery(sub, offset); inner != nil {
			return inner
		}
	}
	return q
}

// queryPath returns the chain of queries from root down to target,
// inclusive. Nil when target is not reachable from root.
func queryPath(root, target *parse.Query) []*parse.Query {
	if root == nil {
		return nil
	}
	if root == target {
		return []*parse.Query{root}
	}
	for _, sub := range root.Subqueries() {
		if p := queryPath(sub, target); p != nil {
			return append([]*parse.Query{root}, p...)
		}
	}
	return nil
}

// clauseAt returns the clause owning offset: either the clause whose span
// covers it, or the last clause before it when the offset sits in the
// trailing gap at the end of the query.
func clauseAt(q *parse.Query, offset int) *parse.Clause {
	var last *parse.Clause
	for _, c := range q.Clauses() {
		if c.Span.Covers(offset) {
			return c
		}
		if c.Span.End <= offset && (last == nil || c.Span.End > last.Span.End) {
			last = c
		}
	}
	if last != nil && offset <= q.Span.End {
		return last
	}
	return nil
}

// partialAt returns the start, text, and token kind of the fragment being
// typed at offset. The fragment is empty when the cursor follows
// whitespace or punctuation, or sits at the very start of a token: the
// replace range is then the zero-width span at the cursor.
func partialAt(src string, toks []token.Token, offset int) (int, string, token.Kind) {
	for _, t := range toks {
		if offset <= t.Start {
			break
		}
		if offset <= t.End {
			switch t.Kind {
			case token.Identifier, token.Keyword, token.Number:
				return t.Start, src[t.Start:offset], t.Kind
			}
			return offset, "", ""
		}
	}
	return offset, "", ""
}

// opaqueAt reports whether offset falls inside a string literal or comment,
// where no suggestion makes sense. Unterminated strings cover their end
// position too, since the cursor there is still logically inside the
// literal.
func opaqueAt(toks []token.Token, offset int) bool {
	for _, t := range toks {
		if offset <= t.Start {
			break
		}
		switch t.Kind {
		case token.String, token.Comment:
			if offset < t.End {
				return true
			}
		case token.Invalid:
			if strings.HasPrefix(t.Text, "'") && offset <= t.End {
				return true
			}
		}
	}
	return false
}

// pathBefore extracts the dotted identifier chain immediately preceding
// start: for "Account.Owner." it yields [Account, Owner]. It reads the raw
// source so it works in clause bodies the parser keeps opaque.
func pathBefore(src string, start int) []string {
	if start > len(src) {
		start = len(src)
	}
	var segs []string
	i := start
	for i > 0 && src[i-1] == '.' {
		j := i - 1
		k := j
		for k > 0 && isIdentChar(src[k-1]) {
			k--
		}
		if k == j {
			break
		}
		segs = append([]string{src[k:j]}, segs...)
		i = k
	}
	return segs
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
