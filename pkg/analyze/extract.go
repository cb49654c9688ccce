package analyze

import (
	"strconv"
	"strings"

	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/soqltypes"
	"github.com/queryforce/soqlkit/pkg/token"
)

// ExtractReferences parses a SOQL query and extracts everything it
// references: the FROM target, field paths per clause, function calls,
// bind variables, and nested queries. A best-effort References is
// returned even when the parse reported errors, as long as an AST was
// produced. TYPEOF branches are not modeled and contribute nothing.
func ExtractReferences(soql string) (*References, soqltypes.Errors) {
	result := parse.Parse(soql)
	if result.AST == nil {
		return NewReferences(), result.Errors
	}

	x := &extractor{src: result.Input}
	return x.query(result.AST), result.Errors
}

// extractor walks a parsed query and its raw clause bodies. Clause bodies
// are opaque spans in the AST, so field paths inside them are recovered by
// rescanning the body text.
type extractor struct {
	src string
}

func (x *extractor) query(q *parse.Query) *References {
	refs := NewReferences()
	refs.SObject = q.SObject()
	refs.Level = q.Level
	if q.From != nil {
		refs.Alias = q.From.Alias
	}

	for i := range q.Select {
		item := &q.Select[i]
		switch {
		case item.Subquery != nil:
			refs.Subqueries = append(refs.Subqueries, x.query(item.Subquery))
		case item.Field != nil:
			x.selectField(refs, item.Field)
		}
	}

	if q.Where != nil {
		x.clauseFields(refs, q.Where.Body, &refs.WhereFields)
	}
	if q.GroupBy != nil {
		x.clauseFields(refs, q.GroupBy.Body, &refs.GroupByFields)
	}
	if q.Having != nil {
		x.clauseFields(refs, q.Having.Body, &refs.HavingFields)
	}
	if q.OrderBy != nil {
		x.clauseFields(refs, q.OrderBy.Body, &refs.OrderByFields)
	}
	if q.Limit != nil {
		if v, err := strconv.Atoi(strings.TrimSpace(q.Limit.BodyText(x.src))); err == nil {
			refs.Limit = v
		}
	}
	if q.Offset != nil {
		if v, err := strconv.Atoi(strings.TrimSpace(q.Offset.BodyText(x.src))); err == nil {
			refs.Offset = v
		}
	}

	return refs
}

func (x *extractor) selectField(refs *References, f *parse.FieldExpr) {
	if f.IsCall() {
		x.recordCall(refs, f.Func, f.Args, f.Span.Start)
		if !strings.EqualFold(f.Func, "FIELDS") {
			// Walk the raw span, not f.Args: trimming would shift the
			// positions of nested calls.
			x.walk(refs, f.ArgsSpan.Text(x.src), f.ArgsSpan.Start, &refs.SelectFields)
		}
		return
	}

	name := strings.Join(f.Path(), ".")
	if name == "" {
		return
	}
	refs.SelectFields = append(refs.SelectFields, name)
	refs.addField(name)
}

func (x *extractor) clauseFields(refs *References, body parse.Span, bucket *[]string) {
	if body.Len() <= 0 {
		return
	}
	x.walk(refs, body.Text(x.src), body.Start, bucket)
}

// walk scans raw query text for field paths, function calls, bind
// variables, and semi-join subqueries. base is the offset of text within
// the extractor's source, used for absolute positions.
func (x *extractor) walk(refs *References, text string, base int, bucket *[]string) {
	toks := token.Scan(text)
	i := 0
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case token.Identifier:
			if token.IsDateLiteral(t.Text) {
				i++
				continue
			}
			path, next := readPath(toks, i)
			if len(path) == 1 {
				if open := nextSig(toks, next); open >= 0 && toks[open].Text == "(" {
					i = x.call(refs, toks, text, base, i, open, bucket)
					continue
				}
			}
			name := strings.Join(path, ".")
			*bucket = append(*bucket, name)
			refs.addField(name)
			i = next
		case token.Punctuation:
			switch {
			case t.Text == "(" && selectFollows(toks, i+1):
				i = x.semiJoin(refs, toks, text, i)
			case t.Text == ":" && bindFollows(toks, i):
				id := nextSig(toks, i+1)
				refs.addBind(toks[id].Text)
				i = id + 1
			default:
				i++
			}
		default:
			i++
		}
	}
}

// call records a function call and walks its argument text for nested
// references. It returns the token index after the closing parenthesis.
func (x *extractor) call(refs *References, toks []token.Token, text string, base, nameIdx, openIdx int, bucket *[]string) int {
	name := toks[nameIdx].Text
	closeIdx := matchParen(toks, openIdx)
	innerEnd := len(text)
	next := len(toks)
	if closeIdx >= 0 {
		innerEnd = toks[closeIdx].Start
		next = closeIdx + 1
	}

	args := text[toks[openIdx].End:innerEnd]
	x.recordCall(refs, name, args, base+toks[nameIdx].Start)
	if !strings.EqualFold(name, "FIELDS") {
		x.walk(refs, args, base+toks[openIdx].End, bucket)
	}
	return next
}

// semiJoin parses an IN (SELECT ...) subquery as a standalone root query.
// It returns the token index after the closing parenthesis.
func (x *extractor) semiJoin(refs *References, toks []token.Token, text string, openIdx int) int {
	closeIdx := matchParen(toks, openIdx)
	innerEnd := len(text)
	next := len(toks)
	if closeIdx >= 0 {
		innerEnd = toks[closeIdx].Start
		next = closeIdx + 1
	}

	inner := text[toks[openIdx].End:innerEnd]
	if res := parse.Parse(inner); res.AST != nil {
		sub := &extractor{src: res.Input}
		refs.SemiJoins = append(refs.SemiJoins, sub.query(res.AST))
	}
	return next
}

func (x *extractor) recordCall(refs *References, name, args string, offset int) {
	lower := strings.ToLower(name)
	if !containsFold(refs.Functions, lower) {
		refs.Functions = append(refs.Functions, lower)
	}

	line, column := soqltypes.Position(x.src, offset)
	refs.FunctionCalls = append(refs.FunctionCalls, &FunctionCall{
		Name:     lower,
		ArgCount: countArgs(args),
		Args:     strings.TrimSpace(args),
		Position: &Position{Line: line, Column: column, Offset: offset},
	})
}

func (r *References) addField(name string) {
	if name == "" || containsFold(r.Fields, name) {
		return
	}
	r.Fields = append(r.Fields, name)
}

func (r *References) addBind(name string) {
	if name == "" || containsFold(r.BindVariables, name) {
		return
	}
	r.BindVariables = append(r.BindVariables, name)
}

// readPath collects a dotted identifier path starting at index i. It
// returns the segments and the index of the first token past the path.
func readPath(toks []token.Token, i int) ([]string, int) {
	path := []string{toks[i].Text}
	j := i + 1
	for {
		dot := nextSig(toks, j)
		if dot < 0 || toks[dot].Text != "." {
			break
		}
		id := nextSig(toks, dot+1)
		if id < 0 || toks[id].Kind != token.Identifier {
			break
		}
		path = append(path, toks[id].Text)
		j = id + 1
	}
	return path, j
}

// selectFollows reports whether the next significant token at or after
// index i is the SELECT keyword, marking a semi-join subquery.
func selectFollows(toks []token.Token, i int) bool {
	k := nextSig(toks, i)
	return k >= 0 && toks[k].Kind == token.Keyword && strings.EqualFold(toks[k].Text, "SELECT")
}

// bindFollows reports whether the colon at index i introduces an Apex bind
// variable. A colon directly after an identifier or number is a date
// literal parameter (LAST_N_DAYS:30), not a bind.
func bindFollows(toks []token.Token, i int) bool {
	id := nextSig(toks, i+1)
	if id < 0 || toks[id].Kind != token.Identifier {
		return false
	}
	prev := prevSig(toks, i)
	if prev >= 0 && (toks[prev].Kind == token.Identifier || toks[prev].Kind == token.Number) {
		return false
	}
	return true
}

// matchParen returns the index of the parenthesis closing the one at
// openIdx, or -1 when the text ends first.
func matchParen(toks []token.Token, openIdx int) int {
	depth := 0
	for k := openIdx; k < len(toks); k++ {
		if toks[k].Kind != token.Punctuation {
			continue
		}
		switch toks[k].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return -1
}

func nextSig(toks []token.Token, i int) int {
	for ; i < len(toks); i++ {
		if toks[i].Kind != token.Whitespace && toks[i].Kind != token.Comment {
			return i
		}
	}
	return -1
}

func prevSig(toks []token.Token, i int) int {
	for i--; i >= 0; i-- {
		if toks[i].Kind != token.Whitespace && toks[i].Kind != token.Comment {
			return i
		}
	}
	return -1
}

// countArgs counts top-level comma separated arguments. Commas inside
// nested parentheses and string literals do not split.
func countArgs(args string) int {
	if strings.TrimSpace(args) == "" {
		return 0
	}
	count := 1
	depth := 0
	for _, t := range token.Scan(args) {
		if t.Kind != token.Punctuation {
			continue
		}
		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
		case ",":
			if depth == 0 {
				count++
			}
		}
	}
	return count
}

func containsFold(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
