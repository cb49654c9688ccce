package hover

import (
	"fmt"
	"strings"

	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/token"
)

// GetHoverInfo returns hover information for the token at the given position.
func GetHoverInfo(ctx *HoverContext) *HoverInfo {
	if ctx == nil || ctx.Query == "" {
		return nil
	}

	tok := FindTokenAtPosition(ctx.Query, ctx.Position)
	if tok == nil || tok.Text == "" {
		return nil
	}

	return resolveHoverInfo(tok, ctx)
}

// FindTokenAtPosition finds the token at the given cursor position. Positions
// past the end of the query clamp to the last token, matching how an editor
// caret at end-of-line still belongs to the final word. Whitespace and
// comments carry no hover.
func FindTokenAtPosition(query string, position int) *Token {
	if query == "" {
		return nil
	}
	if position < 0 {
		position = 0
	}
	if position >= len(query) {
		position = len(query) - 1
	}

	for _, t := range token.Scan(query) {
		if position < t.Start || position >= t.End {
			continue
		}
		if t.Kind == token.Whitespace || t.Kind == token.Comment {
			return nil
		}
		return &Token{
			Text:  t.Text,
			Start: t.Start,
			End:   t.End,
			Type:  classifyToken(t, query),
		}
	}
	return nil
}

// classifyToken maps a lexer token to a hover token type. Function calls are
// told apart from plain identifiers by looking ahead for an opening paren,
// since the lexer itself does not distinguish them.
func classifyToken(t token.Token, query string) TokenType {
	switch t.Kind {
	case token.Keyword:
		return TokenKeyword
	case token.Number, token.String:
		return TokenLiteral
	case token.Punctuation:
		return TokenPunctuation
	case token.Identifier:
		if token.IsDateLiteral(t.Text) {
			return TokenDateLiteral
		}
		if nextSignificantByte(query, t.End) == '(' {
			return TokenFunction
		}
		return TokenIdentifier
	default:
		return TokenUnknown
	}
}

// nextSignificantByte returns the first non-space byte at or after i, or 0.
func nextSignificantByte(query string, i int) byte {
	for ; i < len(query); i++ {
		switch query[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return query[i]
		}
	}
	return 0
}

// resolveHoverInfo generates hover content based on the token.
func resolveHoverInfo(tok *Token, ctx *HoverContext) *HoverInfo {
	switch tok.Type {
	case TokenKeyword:
		return resolveKeywordHover(tok)
	case TokenFunction:
		return resolveFunctionHover(tok)
	case TokenDateLiteral:
		return resolveDateLiteralHover(tok)
	case TokenIdentifier:
		return resolveIdentifierHover(tok, ctx)
	default:
		return nil
	}
}

// resolveKeywordHover generates hover for a keyword.
func resolveKeywordHover(tok *Token) *HoverInfo {
	info := GetKeywordInfo(tok.Text)
	if info == nil {
		return nil
	}
	return &HoverInfo{
		Content: formatKeywordHover(info),
		Range:   &Range{Start: tok.Start, End: tok.End},
		Kind:    HoverKeyword,
		Name:    info.Name,
	}
}

// resolveFunctionHover generates hover for a function. Unknown names followed
// by a paren still read as calls, so they get a minimal fallback.
func resolveFunctionHover(tok *Token) *HoverInfo {
	info := GetFunctionInfo(tok.Text)
	if info == nil {
		return &HoverInfo{
			Content: fmt.Sprintf("**%s**\n\nFunction", tok.Text),
			Range:   &Range{Start: tok.Start, End: tok.End},
			Kind:    HoverFunction,
			Name:    tok.Text,
		}
	}
	return &HoverInfo{
		Content: formatFunctionHover(info),
		Range:   &Range{Start: tok.Start, End: tok.End},
		Kind:    HoverFunction,
		Name:    info.Name,
	}
}

// resolveDateLiteralHover generates hover for a named date literal.
func resolveDateLiteralHover(tok *Token) *HoverInfo {
	info := GetDateLiteralInfo(tok.Text)
	if info == nil {
		return nil
	}
	return &HoverInfo{
		Content: formatDateLiteralHover(info),
		Range:   &Range{Start: tok.Start, End: tok.End},
		Kind:    HoverDateLiteral,
		Name:    info.Name,
	}
}

// resolveIdentifierHover generates hover for an identifier: an SObject,
// a child relationship, or a field, resolved against the catalog through
// the parsed query the cursor sits in.
func resolveIdentifierHover(tok *Token, ctx *HoverContext) *HoverInfo {
	c := ctx.Catalog
	if c == nil {
		return nil
	}

	res := parse.Parse(ctx.Query)
	q := enclosingQuery(res.AST, tok.Start)

	if q != nil && q.From != nil {
		if q.From.Span.Covers(tok.Start) {
			return resolveFromHover(tok, c, res.AST, q)
		}
		// The alias declaration hovers as the object it stands for.
		if q.From.AliasSpan.Len() > 0 && q.From.AliasSpan.Covers(tok.Start) {
			if obj := c.SObject(queryScope(c, queryPath(res.AST, q))); obj != nil {
				return sobjectHover(tok, obj)
			}
			return nil
		}
	}

	if q != nil {
		if h := resolveFieldHover(tok, ctx.Query, c, res.AST, q); h != nil {
			return h
		}
	}

	// Last resort: the bare name matches a catalog object.
	if obj := c.SObject(tok.Text); obj != nil {
		return sobjectHover(tok, obj)
	}
	return nil
}

// resolveFromHover handles a token inside a FROM target: the queried SObject
// at the outer level, a child relationship inside a subquery.
func resolveFromHover(tok *Token, c *metadata.Catalog, root, q *parse.Query) *HoverInfo {
	if q.Level == 0 {
		if obj := c.SObject(q.From.Name); obj != nil {
			return sobjectHover(tok, obj)
		}
		return nil
	}

	path := queryPath(root, q)
	parent := queryScope(c, path[:len(path)-1])
	rel := c.SObject(parent).Relationship(q.From.Name)
	if rel == nil {
		return nil
	}
	return &HoverInfo{
		Content: formatRelationshipHover(rel, parent),
		Range:   &Range{Start: tok.Start, End: tok.End},
		Kind:    HoverRelationship,
		Name:    rel.Name,
	}
}

// resolveFieldHover resolves a field reference in the enclosing query's
// scope, walking any dotted parent path typed before the token. A leading
// segment repeating the FROM object or its alias is skipped, since SOQL
// accepts both "Account.Name" and "a.Name" inside FROM Account a.
func resolveFieldHover(tok *Token, src string, c *metadata.Catalog, root, q *parse.Query) *HoverInfo {
	scope := queryScope(c, queryPath(root, q))
	if scope == "" {
		return nil
	}

	segs := pathBefore(src, tok.Start)
	if len(segs) > 0 && q.From != nil {
		if (q.From.Alias != "" && strings.EqualFold(segs[0], q.From.Alias)) || strings.EqualFold(segs[0], q.From.Name) {
			segs = segs[1:]
		}
	}

	obj := c.SObject(scope)
	for _, seg := range segs {
		f := obj.ReferenceField(seg)
		if f == nil || len(f.ReferenceTo) == 0 {
			return nil
		}
		obj = c.SObject(f.ReferenceTo[0])
	}
	if obj == nil {
		return nil
	}

	f := obj.Field(tok.Text)
	if f == nil {
		// Mid-path segments name the relationship, not the field:
		// Owner in Owner.Name resolves to OwnerId.
		f = obj.ReferenceField(tok.Text)
	}
	if f == nil {
		return nil
	}
	return &HoverInfo{
		Content: formatFieldHover(f, obj.Name),
		Range:   &Range{Start: tok.Start, End: tok.End},
		Kind:    HoverField,
		Name:    f.Name,
	}
}

func sobjectHover(tok *Token, obj *metadata.SObject) *HoverInfo {
	return &HoverInfo{
		Content: formatSObjectHover(obj),
		Range:   &Range{Start: tok.Start, End: tok.End},
		Kind:    HoverSObject,
		Name:    obj.Name,
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

// queryPath returns the chain of queries from root down to target, inclusive.
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

// queryScope resolves the SObject whose fields are in scope for the last
// query in path, hopping one child relationship per nesting level.
func queryScope(c *metadata.Catalog, path []*parse.Query) string {
	if len(path) == 0 {
		return ""
	}
	scope := path[0].SObject()
	for _, q := range path[1:] {
		scope = c.ChildSObject(scope, q.Relationship)
		if scope == "" {
			return ""
		}
	}
	return scope
}

// pathBefore extracts the dotted identifier chain immediately preceding
// start: for the Name token in "Account.Owner.Name" it yields
// [Account, Owner]. It reads the raw source so it works in clause bodies
// the parser keeps opaque.
func pathBefore(src string, start int) []string {
	if start > len(src) {
		start = len(src)
	}
	var segs []string
	i := start
	for i > 0 && src[i-1] == '.' {
		j := i - 1
		k := j
		for k > 0 && isIdentByte(src[k-1]) {
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

func isIdentByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// formatKeywordHover formats hover content for a keyword.
func formatKeywordHover(info *KeywordInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**\n\n", info.Name))
	sb.WriteString(info.Description)
	if info.Syntax != "" {
		sb.WriteString("\n\n```soql\n")
		sb.WriteString(info.Syntax)
		sb.WriteString("\n```")
	}
	return sb.String()
}

// formatFunctionHover formats hover content for a function.
func formatFunctionHover(info *FunctionInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s** → `%s`\n\n", info.Signature, info.ReturnType))
	sb.WriteString(info.Description)
	return sb.String()
}

// formatDateLiteralHover formats hover content for a named date literal.
func formatDateLiteralHover(info *DateLiteralInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**\n\n", info.Name))
	sb.WriteString(info.Description)
	if info.Example != "" {
		sb.WriteString("\n\n```soql\n")
		sb.WriteString(info.Example)
		sb.WriteString("\n```")
	}
	return sb.String()
}

// formatSObjectHover formats hover content for an SObject.
func formatSObjectHover(obj *metadata.SObject) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**", obj.Name))
	if obj.Custom {
		sb.WriteString(" *(custom)*")
	}
	sb.WriteString("\n\n")
	if obj.Label != "" {
		sb.WriteString(obj.Label)
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("%d field(s)", len(obj.AllFields())))
	if n := len(obj.AllRelationships()); n > 0 {
		sb.WriteString(fmt.Sprintf(", %d child relationship(s)", n))
	}
	return sb.String()
}

// formatFieldHover formats hover content for a field.
func formatFieldHover(f *metadata.FieldDescriptor, sobject string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**: `%s`\n\n", f.Name, f.Type))

	if f.Label != "" {
		sb.WriteString(f.Label)
		sb.WriteString("\n\n")
	}

	var notes []string
	if f.Custom {
		notes = append(notes, "custom")
	}
	if f.IsReference() && len(f.ReferenceTo) > 0 {
		notes = append(notes, fmt.Sprintf("reference (%s) → %s", f.RelationshipName, strings.Join(f.ReferenceTo, ", ")))
	}
	if len(notes) > 0 {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", strings.Join(notes, ", ")))
	}

	sb.WriteString(fmt.Sprintf("SObject: %s", sobject))
	return sb.String()
}

// formatRelationshipHover formats hover content for a child relationship.
func formatRelationshipHover(rel *metadata.RelationshipDescriptor, parent string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**\n\n", rel.Name))
	sb.WriteString(fmt.Sprintf("Child relationship on %s → %s", parent, rel.ChildSObject))
	if rel.Field != "" {
		sb.WriteString(fmt.Sprintf("\n\nForeign key: %s.%s", rel.ChildSObject, rel.Field))
	}
	return sb.String()
}
