// Package format renders parsed SOQL back to canonical text. Formatting is
// pure and deterministic, and reaches a fixed point after one pass: feeding
// the output back in reproduces it byte for byte. Input that does not parse
// cleanly is returned unchanged so a formatter invocation can never corrupt
// a query mid-edit.
package format

import (
	"strings"

	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/token"
)

// Style selects the overall output shape.
type Style int

const (
	// Compact produces single-line, minimal whitespace output.
	Compact Style = iota

	// Pretty produces multi-line output with one clause keyword per line.
	Pretty
)

// Options configures the formatter behavior.
type Options struct {
	Style             Style
	IndentString      string // Default: "    " (4 spaces)
	UppercaseKeywords bool   // Default: true (canonical SOQL style)
	MaxLineWidth      int    // Pretty only; <= 0 disables wrapping
}

// DefaultOptions returns canonical Salesforce-style pretty formatting.
func DefaultOptions() Options {
	return Options{
		Style:             Pretty,
		IndentString:      "    ",
		UppercaseKeywords: true,
		MaxLineWidth:      80,
	}
}

// CompactOptions returns options for single-line formatting.
func CompactOptions() Options {
	return Options{
		Style:             Compact,
		UppercaseKeywords: true,
	}
}

// Source parses and formats a SOQL string. Unparseable input comes back
// unchanged; the caller never has to distinguish the two outcomes.
func Source(input string, opts Options) string {
	return Format(parse.Parse(input), opts)
}

// PrettyString formats input with DefaultOptions.
func PrettyString(input string) string {
	return Source(input, DefaultOptions())
}

// CompactString formats input with CompactOptions.
func CompactString(input string) string {
	return Source(input, CompactOptions())
}

// Format renders an already-parsed query. A result with errors (or no AST)
// yields the original input text; comments also force passthrough, since
// SOQL proper has no comment syntax and re-laying out a commented query
// would have to drop or misplace the comment text.
//
// Clauses are always emitted in canonical SOQL order (WHERE before LIMIT and
// so on) regardless of the order they were typed in.
func Format(result *parse.Result, opts Options) string {
	if result == nil {
		return ""
	}
	if !result.IsValid() {
		return result.Input
	}
	for _, t := range result.Tokens {
		if t.Kind == token.Comment {
			return result.Input
		}
	}
	if opts.IndentString == "" {
		opts.IndentString = "    "
	}

	f := &formatter{opts: opts, src: result.Input}
	f.query(result.AST, 0)
	return f.out.String()
}

// formatter walks the AST accumulating output. col tracks the width of the
// current line for wrap decisions.
type formatter struct {
	opts Options
	src  string
	out  strings.Builder
	col  int
}

func (f *formatter) write(s string) {
	f.out.WriteString(s)
	f.col += len(s)
}

func (f *formatter) newline(indent int) {
	pad := strings.Repeat(f.opts.IndentString, indent)
	f.out.WriteString("\n")
	f.out.WriteString(pad)
	f.col = len(pad)
}

// keyword applies the configured casing. Only reserved words pass through
// here; identifiers and function names keep the user's casing.
func (f *formatter) keyword(s string) string {
	if f.opts.UppercaseKeywords {
		return strings.ToUpper(s)
	}
	return strings.ToLower(s)
}

// query renders one SELECT statement at the given indent level. Subqueries
// recurse with indent+1 so their clause keywords line up one level deeper
// than the parent's field list.
func (f *formatter) query(q *parse.Query, indent int) {
	if f.opts.Style == Compact {
		f.compactQuery(q)
		return
	}

	f.write(f.keyword("SELECT"))
	f.selectList(q, indent)

	if q.From != nil {
		f.newline(indent)
		f.write(f.keyword("FROM"))
		f.write(" ")
		f.write(f.objectRef(q.From))
	}

	for _, c := range q.Clauses() {
		f.newline(indent)
		f.clause(c)
	}
}

// selectList writes the comma-separated field list. Plain items share lines
// until MaxLineWidth would be exceeded, then continue one indent level in;
// subquery items always get their own line, and whatever follows a subquery
// starts fresh on the next one.
func (f *formatter) selectList(q *parse.Query, indent int) {
	last := len(q.Select) - 1
	afterSubquery := false

	for i := range q.Select {
		item := &q.Select[i]

		if item.Subquery != nil {
			f.newline(indent + 1)
			f.write("(")
			f.query(item.Subquery, indent+1)
			f.write(")")
			if i != last {
				f.write(",")
			}
			afterSubquery = true
			continue
		}

		text := f.itemText(item)
		switch {
		case i == 0:
			f.write(" ")
		case afterSubquery:
			f.newline(indent + 1)
		case f.wouldOverflow(text):
			f.newline(indent + 1)
		default:
			f.write(" ")
		}
		f.write(text)
		if i != last {
			f.write(",")
		}
		afterSubquery = false
	}
}

// wouldOverflow reports whether appending text (plus its separator and the
// comma that may follow) pushes the current line past MaxLineWidth.
func (f *formatter) wouldOverflow(text string) bool {
	if f.opts.MaxLineWidth <= 0 {
		return false
	}
	return f.col+len(text)+2 > f.opts.MaxLineWidth
}

// compactQuery renders the whole statement on a single line.
func (f *formatter) compactQuery(q *parse.Query) {
	f.write(f.keyword("SELECT"))
	f.write(" ")
	for i := range q.Select {
		if i > 0 {
			f.write(", ")
		}
		item := &q.Select[i]
		if item.Subquery != nil {
			f.write("(")
			f.compactQuery(item.Subquery)
			f.write(")")
			continue
		}
		f.write(f.itemText(item))
	}
	if q.From != nil {
		f.write(" ")
		f.write(f.keyword("FROM"))
		f.write(" ")
		f.write(f.objectRef(q.From))
	}
	for _, c := range q.Clauses() {
		f.write(" ")
		f.clause(c)
	}
}

func (f *formatter) objectRef(ref *parse.ObjectRef) string {
	if ref.Alias != "" {
		return ref.Name + " " + ref.Alias
	}
	return ref.Name
}

// itemText renders a non-subquery SELECT item: a field path, a function
// call with optional alias, or an opaque raw construct (TYPEOF blocks),
// normalized onto one line.
func (f *formatter) itemText(item *parse.SelectItem) string {
	if item.Field != nil {
		return f.fieldText(item.Field)
	}
	return f.joinTokens(item.Raw)
}

func (f *formatter) fieldText(fe *parse.FieldExpr) string {
	var b strings.Builder
	if fe.IsCall() {
		b.WriteString(fe.Func)
		b.WriteString("(")
		b.WriteString(f.joinTokens(fe.Args))
		b.WriteString(")")
	} else {
		b.WriteString(strings.Join(fe.Path(), "."))
	}
	if fe.Alias != "" {
		b.WriteString(" ")
		b.WriteString(fe.Alias)
	}
	return b.String()
}

// clause writes the clause keyword plus its body. Bodies are lightly
// structured raw spans, so they are re-joined token by token with canonical
// spacing rather than re-laid-out; a semi-join subquery inside a WHERE body
// therefore stays inline on the clause line.
func (f *formatter) clause(c *parse.Clause) {
	f.write(f.keyword(c.Keyword))
	if body := f.joinTokens(c.BodyText(f.src)); body != "" {
		f.write(" ")
		f.write(body)
	}
}

// joinTokens rescans a raw text fragment and rejoins its significant tokens
// with canonical spacing and keyword casing. Because scanning the joined
// output yields the same token texts again, the join is a fixed point.
func (f *formatter) joinTokens(text string) string {
	var b strings.Builder
	var prev token.Token
	for _, t := range token.Scan(text) {
		switch t.Kind {
		case token.Whitespace, token.Comment:
			continue
		}
		if prev.Text != "" && needsSpaceBetween(prev, t) {
			b.WriteString(" ")
		}
		if t.Kind == token.Keyword {
			b.WriteString(f.keyword(t.Text))
		} else {
			b.WriteString(t.Text)
		}
		prev = t
	}
	return b.String()
}

// needsSpaceBetween decides token spacing in rejoined raw fragments.
// Comparison operators read with surrounding spaces; dots, commas, and the
// date-literal colon (LAST_N_DAYS:30) bind tight; a minus sign binds to the
// literal after it since SOQL has no arithmetic. An opening parenthesis
// attaches to a preceding function name but keeps a space after set
// operators like IN and NOT.
func needsSpaceBetween(prev, curr token.Token) bool {
	switch prev.Text {
	case "(", ".", "-", ":":
		return false
	}
	switch curr.Text {
	case ")", ",", ".":
		return false
	case ":":
		return prev.Kind != token.Identifier
	case "(":
		switch strings.ToUpper(prev.Text) {
		case "IN", "NOT", "AND", "OR", "INCLUDES", "EXCLUDES":
			return true
		}
		return prev.Kind == token.Punctuation
	}
	return true
}
