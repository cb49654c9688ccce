package parse

import "strings"

// Span is a half-open [Start,End) byte range into the original query text.
// Every AST node carries one so a cursor offset can be mapped back to the
// innermost enclosing node.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether offset falls strictly inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Covers reports whether offset touches the span, including the position
// just past the last byte. Cursor logic uses this because an editor caret
// commonly sits at the end of the text it belongs to.
func (s Span) Covers(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Len returns the span width in bytes.
func (s Span) Len() int { return s.End - s.Start }

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool { return s.Start == 0 && s.End == 0 }

// Text slices the span out of src.
func (s Span) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

// Query is one SELECT statement. The outer query is level 0; nested
// relationship subqueries are levels 1 through 4.
type Query struct {
	Span  Span `json:"span"`
	Level int  `json:"level"`

	// Relationship is the child relationship name that introduced this
	// subquery (its FROM target). Empty for the outer query.
	Relationship string `json:"relationship,omitempty"`

	// SelectKeyword is the span of the SELECT keyword itself; ListSpan is
	// the field-list region between SELECT and FROM (or to the end of the
	// query when FROM is missing). The cursor resolver needs both to
	// classify positions where no token exists yet.
	SelectKeyword Span `json:"select_keyword"`
	ListSpan      Span `json:"list_span"`

	Select []SelectItem `json:"select"`

	// FromKeyword is zero when the query has no FROM clause yet.
	FromKeyword Span       `json:"from_keyword"`
	From        *ObjectRef `json:"from,omitempty"`

	Where   *Clause `json:"where,omitempty"`
	With    *Clause `json:"with,omitempty"`
	GroupBy *Clause `json:"group_by,omitempty"`
	Having  *Clause `json:"having,omitempty"`
	OrderBy *Clause `json:"order_by,omitempty"`
	Limit   *Clause `json:"limit,omitempty"`
	Offset  *Clause `json:"offset,omitempty"`
	Using   *Clause `json:"using,omitempty"`
	For     *Clause `json:"for,omitempty"`
	Update  *Clause `json:"update,omitempty"`
}

// Subqueries returns the nested child queries in SELECT-list order.
func (q *Query) Subqueries() []*Query {
	if q == nil {
		return nil
	}
	var subs []*Query
	for i := range q.Select {
		if q.Select[i].Subquery != nil {
			subs = append(subs, q.Select[i].Subquery)
		}
	}
	return subs
}

// Depth returns the deepest nesting level reachable from this query.
func (q *Query) Depth() int {
	if q == nil {
		return 0
	}
	depth := q.Level
	for _, sub := range q.Subqueries() {
		if d := sub.Depth(); d > depth {
			depth = d
		}
	}
	return depth
}

// SObject returns the FROM target name, or "" when absent.
func (q *Query) SObject() string {
	if q == nil || q.From == nil {
		return ""
	}
	return q.From.Name
}

// Clauses returns the present clauses in canonical SOQL order.
func (q *Query) Clauses() []*Clause {
	if q == nil {
		return nil
	}
	var out []*Clause
	for _, c := range []*Clause{q.Using, q.Where, q.With, q.GroupBy, q.Having, q.OrderBy, q.Limit, q.Offset, q.For, q.Update} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// SelectItem is one entry in a SELECT list: a field expression, a nested
// relationship subquery, or an opaque raw span for constructs the grammar
// does not model (TYPEOF ... END).
type SelectItem struct {
	Span     Span       `json:"span"`
	Field    *FieldExpr `json:"field,omitempty"`
	Subquery *Query     `json:"subquery,omitempty"`
	Raw      string     `json:"raw,omitempty"`
}

// Segment is one identifier in a dotted relationship path, with its span.
type Segment struct {
	Text string `json:"text"`
	Span Span   `json:"span"`
}

// FieldExpr is a field reference: a bare name, a dotted relationship path
// like Account.Owner.Name, or a function call like COUNT(Id), optionally
// followed by an alias.
type FieldExpr struct {
	Span     Span      `json:"span"`
	Segments []Segment `json:"segments,omitempty"`
	Func     string    `json:"func,omitempty"`
	Args     string    `json:"args,omitempty"`
	ArgsSpan Span      `json:"args_span"`
	Alias    string    `json:"alias,omitempty"`
}

// Path returns the dotted path segments as plain strings.
func (f *FieldExpr) Path() []string {
	if f == nil || len(f.Segments) == 0 {
		return nil
	}
	path := make([]string, len(f.Segments))
	for i, seg := range f.Segments {
		path[i] = seg.Text
	}
	return path
}

// Name returns the canonical source form of the expression, without alias.
func (f *FieldExpr) Name() string {
	if f == nil {
		return ""
	}
	if f.Func != "" {
		return f.Func + "(" + f.Args + ")"
	}
	return strings.Join(f.Path(), ".")
}

// IsCall reports whether the expression is a function call.
func (f *FieldExpr) IsCall() bool { return f != nil && f.Func != "" }

// ObjectRef is a FROM target: an SObject name (outer query) or a child
// relationship name (subquery), plus an optional alias. Span covers the
// name only; AliasSpan is zero when there is no alias.
type ObjectRef struct {
	Span      Span   `json:"span"`
	Name      string `json:"name"`
	Alias     string `json:"alias,omitempty"`
	AliasSpan Span   `json:"alias_span"`
}

// Clause is a lightly-structured trailing clause: the canonical keyword
// that opens it plus the raw token span of its body. Bodies are kept as
// raw spans so unmodeled constructs pass through formatting untouched.
type Clause struct {
	Span    Span   `json:"span"`
	Keyword string `json:"keyword"`
	Body    Span   `json:"body"`
}

// BodyText slices the clause body out of src.
func (c *Clause) BodyText(src string) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Body.Text(src))
}
