// Package parse builds span-annotated ASTs from SOQL text using recursive
// descent. Parsing never fails outright on user input: structural problems
// are collected as errors alongside a best-effort partial AST so editors can
// keep resolving cursor context while a query is mid-edit.
package parse

import (
	"fmt"
	"strings"

	"github.com/queryforce/soqlkit/pkg/soqltypes"
	"github.com/queryforce/soqlkit/pkg/token"
)

// MaxNestingLevel is the deepest relationship-subquery level the parser
// models. The outer query is level 0; a subquery opening at level 5 is
// recorded as a MaxNestingExceeded error and kept as raw text.
const MaxNestingLevel = 4

// Result contains the outcome of parsing a SOQL query.
type Result struct {
	// Input is the original query text, unmodified. All spans index into it.
	Input string

	// AST is the root query, or nil when parsing failed before a SELECT was
	// recognized. A non-nil AST with errors is a best-effort partial tree.
	AST *Query

	// Errors contains tokenize and parse errors in source order.
	Errors soqltypes.Errors

	// Tokens is the full token stream including whitespace and comments.
	Tokens []token.Token
}

// HasErrors returns true if there were any tokenize or parse errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// IsValid returns true if parsing produced a complete AST without errors.
func (r *Result) IsValid() bool {
	return r.AST != nil && !r.HasErrors()
}

// Parse tokenizes and parses a single SOQL query.
func Parse(input string) *Result {
	result := &Result{
		Input:  input,
		Tokens: token.Scan(input),
	}

	p := &parser{src: input}
	for _, t := range result.Tokens {
		switch t.Kind {
		case token.Whitespace, token.Comment:
			// trivia
		case token.Invalid:
			msg := fmt.Sprintf("invalid token %q", t.Text)
			if strings.HasPrefix(t.Text, "'") {
				msg = "unterminated string literal"
			}
			p.errorAt(soqltypes.TokenizeError, t.Start, t.End, msg)
		default:
			p.toks = append(p.toks, t)
		}
	}

	if len(p.toks) == 0 {
		result.Errors = p.errors
		return result
	}

	if !p.atKeyword("SELECT") {
		t := p.cur()
		e := p.errorAt(soqltypes.ParseError, t.Start, t.End, fmt.Sprintf("expected SELECT, found %q", t.Text))
		e.Suggestion = SuggestKeyword(t.Text)
		result.Errors = p.errors
		return result
	}

	result.AST = p.parseQuery(0)

	if !p.eof() {
		t := p.cur()
		if t.Kind == token.Punctuation && t.Text == ")" {
			p.errorAt(soqltypes.ParseError, t.Start, t.End, "unmatched ')'")
		} else {
			p.errorAt(soqltypes.ParseError, t.Start, t.End, fmt.Sprintf("unexpected trailing input starting at %q", t.Text))
		}
	}

	result.Errors = p.errors
	return result
}

// IsValid returns true if the SOQL input is syntactically valid.
func IsValid(input string) bool {
	return Parse(input).IsValid()
}

// parser walks the significant (non-trivia) token stream.
type parser struct {
	src    string
	toks   []token.Token
	pos    int
	last   int // byte offset just past the most recently consumed token
	errors soqltypes.Errors
}

func (p *parser) eof() bool { return p.pos >= len(p.toks) }

// cur returns the current token, or a synthetic zero-width token at the end
// of the source so boundary math stays uniform at EOF.
func (p *parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Start: len(p.src), End: len(p.src), Kind: token.Whitespace}
}

func (p *parser) peek(n int) token.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return token.Token{Start: len(p.src), End: len(p.src), Kind: token.Whitespace}
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
		p.last = t.End
	}
	return t
}

func (p *parser) atKeyword(words ...string) bool {
	t := p.cur()
	if t.Kind != token.Keyword {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(t.Text, w) {
			return true
		}
	}
	return false
}

func (p *parser) atPunct(text string) bool {
	t := p.cur()
	return t.Kind == token.Punctuation && t.Text == text
}

func (p *parser) atIdent() bool {
	return p.cur().Kind == token.Identifier
}

// clauseOpeners are the keywords that can start a trailing clause after the
// FROM target.
var clauseOpeners = map[string]bool{
	"WHERE": true, "WITH": true, "GROUP": true, "HAVING": true,
	"ORDER": true, "LIMIT": true, "OFFSET": true, "USING": true,
	"FOR": true, "UPDATE": true,
}

func (p *parser) atClauseKeyword() bool {
	t := p.cur()
	return t.Kind == token.Keyword && clauseOpeners[strings.ToUpper(t.Text)]
}

func (p *parser) errorAt(kind soqltypes.ErrorKind, start, end int, msg string) *soqltypes.Error {
	e := soqltypes.New(kind, p.src, start, end, msg)
	p.errors = append(p.errors, e)
	return e
}

// parseQuery parses SELECT ... FROM ... plus trailing clauses. The caller
// has verified the current token is the SELECT keyword.
func (p *parser) parseQuery(level int) *Query {
	sel := p.advance()
	q := &Query{
		Level:         level,
		Span:          Span{Start: sel.Start, End: sel.End},
		SelectKeyword: Span{Start: sel.Start, End: sel.End},
	}

	q.ListSpan = Span{Start: sel.End, End: sel.End}
	p.parseSelectList(q)
	q.ListSpan.End = p.cur().Start

	switch {
	case p.atKeyword("FROM"):
		from := p.advance()
		q.FromKeyword = Span{Start: from.Start, End: from.End}
		q.From = p.parseObjectRef()
		if q.From == nil {
			p.errorAt(soqltypes.ParseError, from.End, from.End, "missing SObject name after FROM")
		}
	case p.atIdent() && levenshteinDistance(strings.ToUpper(p.cur().Text), "FROM") <= 2 && p.peek(1).Kind == token.Identifier:
		// FORM, FRM and friends: recover so completion keeps working.
		t := p.cur()
		e := p.errorAt(soqltypes.ParseError, t.Start, t.End, fmt.Sprintf("expected FROM, found %q", t.Text))
		e.Suggestion = "FROM"
		from := p.advance()
		q.FromKeyword = Span{Start: from.Start, End: from.End}
		q.From = p.parseObjectRef()
	default:
		t := p.cur()
		p.errorAt(soqltypes.ParseError, t.Start, t.Start, "missing FROM clause")
	}

	if level > 0 && q.From != nil {
		q.Relationship = q.From.Name
	}

	p.parseClauses(q)

	if p.last > q.Span.End {
		q.Span.End = p.last
	}
	// Extend over the trailing gap up to the token that ended this query
	// (the closing parenthesis or end of input) so the cursor resolver can
	// classify positions where nothing has been typed yet.
	if end := p.cur().Start; end > q.Span.End {
		q.Span.End = end
	}
	if q.ListSpan.End > q.Span.End {
		q.Span.End = q.ListSpan.End
	}
	return q
}

func (p *parser) parseSelectList(q *Query) {
	for {
		if p.eof() || p.atPunct(")") || p.atKeyword("FROM") || p.atClauseKeyword() {
			break
		}
		if item := p.parseSelectItem(q.Level); item != nil {
			q.Select = append(q.Select, *item)
		}
		if !p.atPunct(",") {
			break
		}
		comma := p.advance()
		if p.eof() || p.atPunct(")") || p.atKeyword("FROM") || p.atClauseKeyword() {
			p.errorAt(soqltypes.ParseError, comma.End, comma.End, "expected field after ','")
			break
		}
	}
	if len(q.Select) == 0 {
		p.errorAt(soqltypes.ParseError, q.SelectKeyword.End, q.SelectKeyword.End, "empty SELECT list")
	}
}

func (p *parser) parseSelectItem(level int) *SelectItem {
	switch {
	case p.atPunct("("):
		return p.parseParenItem(level)
	case p.atKeyword("TYPEOF"):
		return p.parseTypeofItem()
	case p.atIdent():
		f := p.parseFieldExpr()
		return &SelectItem{Span: f.Span, Field: f}
	default:
		t := p.advance()
		p.errorAt(soqltypes.ParseError, t.Start, t.End, fmt.Sprintf("unexpected %q in SELECT list", t.Text))
		return nil
	}
}

// parseParenItem handles a parenthesized group in a SELECT list. Presence of
// an inner SELECT makes it a relationship subquery; anything else is kept as
// a flagged raw span.
func (p *parser) parseParenItem(level int) *SelectItem {
	open := p.cur()

	if !(p.peek(1).Kind == token.Keyword && strings.EqualFold(p.peek(1).Text, "SELECT")) {
		end := p.skipBalanced()
		p.errorAt(soqltypes.ParseError, open.Start, end, "expected SELECT after '(' in SELECT list")
		return &SelectItem{Span: Span{Start: open.Start, End: end}, Raw: p.src[open.Start:end]}
	}

	if level+1 > MaxNestingLevel {
		end := p.skipBalanced()
		p.errorAt(soqltypes.MaxNestingExceeded, open.Start, end,
			fmt.Sprintf("subquery nesting exceeds %d levels", MaxNestingLevel))
		return &SelectItem{Span: Span{Start: open.Start, End: end}, Raw: p.src[open.Start:end]}
	}

	p.advance() // '('
	sub := p.parseQuery(level + 1)

	if p.atPunct(")") {
		closing := p.advance()
		return &SelectItem{Span: Span{Start: open.Start, End: closing.End}, Subquery: sub}
	}
	p.errorAt(soqltypes.ParseError, open.Start, sub.Span.End, "unmatched '(' around subquery")
	return &SelectItem{Span: Span{Start: open.Start, End: sub.Span.End}, Subquery: sub}
}

// parseTypeofItem captures a TYPEOF ... END polymorphic field block as an
// opaque raw span. The block is passed through rather than modeled.
func (p *parser) parseTypeofItem() *SelectItem {
	start := p.cur().Start
	end := start
	terminated := false
	for !p.eof() {
		if p.atKeyword("FROM") || p.atPunct(")") {
			break
		}
		t := p.advance()
		end = t.End
		if t.Kind == token.Keyword && strings.EqualFold(t.Text, "END") {
			terminated = true
			break
		}
	}
	if !terminated {
		p.errorAt(soqltypes.ParseError, start, end, "TYPEOF without closing END")
	}
	return &SelectItem{Span: Span{Start: start, End: end}, Raw: p.src[start:end]}
}

// parseFieldExpr parses a dotted field path or a function call, plus the
// optional alias SOQL allows after aggregate expressions.
func (p *parser) parseFieldExpr() *FieldExpr {
	first := p.advance()
	f := &FieldExpr{Span: Span{Start: first.Start, End: first.End}}

	if p.atPunct("(") {
		f.Func = first.Text
		open := p.cur()
		end := p.skipBalanced()
		argsEnd := end
		if argsEnd > open.End && p.src[argsEnd-1] == ')' {
			argsEnd--
		} else {
			p.errorAt(soqltypes.ParseError, open.Start, end, fmt.Sprintf("unmatched '(' in %s()", first.Text))
		}
		f.ArgsSpan = Span{Start: open.End, End: argsEnd}
		f.Args = strings.TrimSpace(f.ArgsSpan.Text(p.src))
		f.Span.End = end

		// aggregate alias: COUNT(Id) total
		if p.atIdent() {
			alias := p.advance()
			f.Alias = alias.Text
			f.Span.End = alias.End
		}
		return f
	}

	f.Segments = append(f.Segments, Segment{Text: first.Text, Span: Span{Start: first.Start, End: first.End}})
	for p.atPunct(".") {
		dot := p.advance()
		f.Span.End = dot.End
		if !p.atIdent() {
			// Mid-edit dangling dot: record the empty slot so the resolver
			// can classify the position after it.
			p.errorAt(soqltypes.ParseError, dot.Start, dot.End, "expected field name after '.'")
			f.Segments = append(f.Segments, Segment{Text: "", Span: Span{Start: dot.End, End: dot.End}})
			break
		}
		seg := p.advance()
		f.Segments = append(f.Segments, Segment{Text: seg.Text, Span: Span{Start: seg.Start, End: seg.End}})
		f.Span.End = seg.End
	}
	return f
}

// parseObjectRef parses the FROM target and its optional alias.
func (p *parser) parseObjectRef() *ObjectRef {
	if !p.atIdent() {
		return nil
	}
	name := p.advance()
	ref := &ObjectRef{Span: Span{Start: name.Start, End: name.End}, Name: name.Text}
	for p.atPunct(".") {
		p.advance()
		if !p.atIdent() {
			break
		}
		seg := p.advance()
		ref.Name += "." + seg.Text
		ref.Span.End = seg.End
	}
	if p.atIdent() {
		alias := p.advance()
		ref.Alias = alias.Text
		ref.AliasSpan = Span{Start: alias.Start, End: alias.End}
	}
	return ref
}

func (p *parser) parseClauses(q *Query) {
	for !p.eof() && !p.atPunct(")") && !p.atKeyword("FROM") {
		switch {
		case p.atKeyword("WHERE"):
			p.setClause(&q.Where, p.parseClause())
		case p.atKeyword("WITH"):
			p.setClause(&q.With, p.parseClause())
		case p.atKeyword("GROUP"):
			p.setClause(&q.GroupBy, p.parseClause())
		case p.atKeyword("HAVING"):
			p.setClause(&q.Having, p.parseClause())
		case p.atKeyword("ORDER"):
			p.setClause(&q.OrderBy, p.parseClause())
		case p.atKeyword("LIMIT"):
			p.setClause(&q.Limit, p.parseClause())
		case p.atKeyword("OFFSET"):
			p.setClause(&q.Offset, p.parseClause())
		case p.atKeyword("USING"):
			p.setClause(&q.Using, p.parseClause())
		case p.atKeyword("FOR"):
			p.setClause(&q.For, p.parseClause())
		case p.atKeyword("UPDATE"):
			p.setClause(&q.Update, p.parseClause())
		case p.atPunct(";"):
			t := p.advance()
			p.errorAt(soqltypes.ParseError, t.Start, t.End, "unexpected ';' (SOQL has no statement terminator)")
		default:
			t := p.advance()
			e := p.errorAt(soqltypes.ParseError, t.Start, t.End, fmt.Sprintf("unexpected %q after FROM clause", t.Text))
			e.Suggestion = SuggestKeyword(t.Text)
		}
	}
}

func (p *parser) setClause(dst **Clause, c *Clause) {
	if *dst != nil {
		p.errorAt(soqltypes.ParseError, c.Span.Start, c.Span.End, fmt.Sprintf("duplicate %s clause", c.Keyword))
		return
	}
	*dst = c
}

// parseClause consumes the clause keyword(s) at the cursor plus the raw body
// that follows, stopping before the next clause keyword, a closing
// parenthesis, or end of input. Parenthesized groups inside the body
// (semi-join subqueries, function calls) are skipped whole so their inner
// keywords cannot end the clause early.
func (p *parser) parseClause() *Clause {
	kw := p.advance()
	c := &Clause{
		Span:    Span{Start: kw.Start, End: kw.End},
		Keyword: strings.ToUpper(kw.Text),
	}

	switch c.Keyword {
	case "GROUP", "ORDER":
		if p.atKeyword("BY") {
			by := p.advance()
			c.Span.End = by.End
		} else {
			p.errorAt(soqltypes.ParseError, kw.Start, kw.End, fmt.Sprintf("expected BY after %s", c.Keyword))
		}
		c.Keyword += " BY"
	case "USING":
		if p.atKeyword("SCOPE") {
			sc := p.advance()
			c.Keyword = "USING SCOPE"
			c.Span.End = sc.End
		}
	}

	c.Body = Span{Start: c.Span.End, End: c.Span.End}

	// FOR takes a fixed set of lock/tracking modes; UPDATE would otherwise
	// read as the start of an UPDATE TRACKING clause.
	if c.Keyword == "FOR" {
		for p.atKeyword("UPDATE", "VIEW", "REFERENCE") || p.atPunct(",") {
			t := p.advance()
			c.Span.End = t.End
			c.Body.End = t.End
		}
		return c
	}

	depth := 0
	for !p.eof() {
		if depth == 0 && (p.atClauseKeyword() || p.atPunct(")") || p.atPunct(";") || p.atKeyword("FROM")) {
			break
		}
		t := p.advance()
		if t.Kind == token.Punctuation {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
		c.Span.End = t.End
		c.Body.End = t.End
	}
	return c
}

// skipBalanced consumes a parenthesized token group starting at the current
// '(' and returns the byte offset just past the matching ')'. An unmatched
// group runs to end of input.
func (p *parser) skipBalanced() int {
	depth := 0
	end := p.cur().End
	for !p.eof() {
		t := p.advance()
		end = t.End
		if t.Kind == token.Punctuation {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					return end
				}
			}
		}
	}
	return end
}
