package complete

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/parse"
)

// Suggest computes suggestions for a single completion request. It is
// stateless: every call parses the text fresh and returns a fresh slice,
// never reusing or mutating a previous result, so suggestions cannot leak
// between keystrokes.
//
// Provider failures and unresolvable scopes degrade to ⚠️ error
// suggestions; the returned error is non-nil only when ctx is done.
func Suggest(ctx context.Context, provider metadata.Provider, req Request) ([]Suggestion, error) {
	opts := req.Options
	if opts == nil {
		opts = DefaultOptions()
	}

	res := parse.Parse(req.Text)
	cctx := ResolveContext(res, req.Offset)
	if cctx == nil {
		// Unparseable input: zero suggestions, never a guess.
		return nil, nil
	}

	g := &generator{provider: provider, res: res, cctx: cctx, opts: opts}
	items, err := g.run(ctx)
	if err != nil {
		return nil, err
	}

	items = dedupe(items)
	items = filterByPartial(items, cctx.Partial)
	sortSuggestions(items)
	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}
	return items, nil
}

// generator builds the suggestion list for one resolved cursor context.
type generator struct {
	provider metadata.Provider
	res      *parse.Result
	cctx     *CursorContext
	opts     *Options
}

func (g *generator) run(ctx context.Context) ([]Suggestion, error) {
	switch g.cctx.Kind {
	case ContextSObject:
		return g.sobjects(ctx)
	case ContextField:
		return g.fields(ctx)
	case ContextRelationship:
		return g.relationships(ctx)
	case ContextKeyword:
		return g.keywords(), nil
	case ContextSubquery:
		return []Suggestion{g.stamp(makeKeyword("SELECT"))}, nil
	default:
		return nil, nil
	}
}

// stamp sets the replace range on a suggestion: always the span of the
// partial token being typed.
func (g *generator) stamp(s Suggestion) Suggestion {
	s.ReplaceStart = g.cctx.Start
	s.ReplaceEnd = g.cctx.End
	return s
}

// errorSuggestion builds the ⚠️ sentinel shown when a scope cannot be
// resolved or a provider call fails. It is a real list entry so the editor
// shows the reason instead of an empty popup that reads as "no matches".
func (g *generator) errorSuggestion(msg string) Suggestion {
	return g.stamp(Suggestion{
		Label: "⚠️ " + msg,
		Kind:  KindError,
	})
}

func (g *generator) sobjects(ctx context.Context) ([]Suggestion, error) {
	if g.provider == nil {
		return []Suggestion{g.errorSuggestion("no metadata provider configured")}, nil
	}
	names, err := g.provider.SObjectNames(ctx, g.cctx.Partial)
	if err != nil {
		if ctxDone(err) {
			return nil, err
		}
		return []Suggestion{g.errorSuggestion("SObject names unavailable: " + err.Error())}, nil
	}
	items := make([]Suggestion, 0, len(names))
	for _, name := range names {
		items = append(items, g.stamp(Suggestion{
			Label:        name,
			Kind:         KindSObject,
			Detail:       "SObject",
			SortPriority: 10,
		}))
	}
	return items, nil
}

func (g *generator) fields(ctx context.Context) ([]Suggestion, error) {
	if g.provider == nil {
		return []Suggestion{g.errorSuggestion("no metadata provider configured")}, nil
	}
	scope, errSug, err := g.resolveScope(ctx)
	if err != nil {
		return nil, err
	}
	if errSug != nil {
		return []Suggestion{*errSug}, nil
	}

	// Fields and child relationships are fetched in parallel. A failure on
	// one side degrades to a scoped error suggestion without discarding the
	// other side's results.
	var (
		fields    []*metadata.FieldDescriptor
		rels      []*metadata.RelationshipDescriptor
		fieldsErr error
		relsErr   error
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		fields, fieldsErr = g.provider.Fields(gctx, scope)
		if ctxDone(fieldsErr) {
			return fieldsErr
		}
		return nil
	})
	eg.Go(func() error {
		rels, relsErr = g.provider.Relationships(gctx, scope)
		if ctxDone(relsErr) {
			return relsErr
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if fieldsErr != nil && relsErr != nil {
		if errors.Is(fieldsErr, metadata.ErrNotFound) {
			return []Suggestion{g.errorSuggestion("unknown SObject " + scope)}, nil
		}
		return []Suggestion{g.errorSuggestion(fmt.Sprintf("metadata unavailable for %s: %v", scope, fieldsErr))}, nil
	}

	var items []Suggestion
	if fieldsErr != nil {
		items = append(items, g.errorSuggestion(fmt.Sprintf("fields unavailable for %s: %v", scope, fieldsErr)))
	}
	if relsErr != nil {
		items = append(items, g.errorSuggestion(fmt.Sprintf("relationships unavailable for %s: %v", scope, relsErr)))
	}

	for _, fd := range fields {
		items = append(items, g.stamp(fieldSuggestion(fd)))
		if fd.IsReference() {
			items = append(items, g.stamp(referenceSuggestion(fd)))
		}
	}

	items = append(items, g.fieldExtras(rels, relsErr == nil)...)
	return items, nil
}

// fieldExtras adds the position-dependent candidates that accompany plain
// fields: child subqueries and functions in the SELECT list, date literals
// in filters, and whatever keywords fit the slot.
func (g *generator) fieldExtras(rels []*metadata.RelationshipDescriptor, relsOK bool) []Suggestion {
	if len(g.cctx.RelationshipPath) > 0 {
		// Mid-path positions take fields of the resolved parent only.
		return nil
	}

	q := g.cctx.Query
	anchor := g.cctx.Start
	if insideCallArgs(q, anchor) {
		// Function arguments take fields only.
		return nil
	}
	c := clauseAt(q, anchor)
	inList := c == nil && q.ListSpan.Covers(anchor)

	var items []Suggestion

	if inList {
		if g.opts.IncludeSubqueries && relsOK && q.Level < parse.MaxNestingLevel {
			for _, rd := range rels {
				items = append(items, g.stamp(subquerySuggestion(rd)))
			}
		}
		if g.opts.IncludeFunctions {
			for _, s := range functionSuggestions {
				items = append(items, g.stamp(s))
			}
		}
	}

	if c != nil {
		switch c.Keyword {
		case "HAVING", "GROUP BY", "ORDER BY":
			if g.opts.IncludeFunctions {
				for _, s := range functionSuggestions {
					items = append(items, g.stamp(s))
				}
			}
		}
		switch c.Keyword {
		case "WHERE", "HAVING":
			if g.opts.IncludeDateLiterals {
				for _, s := range dateLiteralSuggestions {
					items = append(items, g.stamp(s))
				}
			}
		}
	}

	if g.opts.IncludeKeywords {
		for _, label := range keywordCandidatesAt(q, anchor) {
			items = append(items, g.stamp(makeKeyword(label)))
		}
	}
	return items
}

func (g *generator) relationships(ctx context.Context) ([]Suggestion, error) {
	if g.provider == nil {
		return []Suggestion{g.errorSuggestion("no metadata provider configured")}, nil
	}

	// The scope for a subquery FROM is the parent query's SObject, walked
	// down through any intermediate subquery levels.
	root := g.res.AST
	scope := root.SObject()
	if scope == "" {
		return []Suggestion{g.errorSuggestion("cannot determine the SObject: the query has no FROM clause yet")}, nil
	}
	path := queryPath(root, g.cctx.Query)
	if len(path) < 2 {
		return []Suggestion{g.errorSuggestion("cannot determine the parent scope")}, nil
	}
	for _, q := range path[1 : len(path)-1] {
		child, errSug, err := g.childSObject(ctx, scope, q.Relationship)
		if err != nil {
			return nil, err
		}
		if errSug != nil {
			return []Suggestion{*errSug}, nil
		}
		scope = child
	}

	rels, err := g.provider.Relationships(ctx, scope)
	if err != nil {
		if ctxDone(err) {
			return nil, err
		}
		return []Suggestion{g.errorSuggestion(fmt.Sprintf("relationships unavailable for %s: %v", scope, err))}, nil
	}

	items := make([]Suggestion, 0, len(rels))
	for _, rd := range rels {
		items = append(items, g.stamp(Suggestion{
			Label:        rd.Name,
			Kind:         KindRelationship,
			Detail:       "Child relationship → " + rd.ChildSObject,
			SortPriority: 15,
		}))
	}
	return items, nil
}

func (g *generator) keywords() []Suggestion {
	if !g.opts.IncludeKeywords {
		return nil
	}
	q := g.cctx.Query
	anchor := g.cctx.Start

	var items []Suggestion
	for _, label := range keywordCandidatesAt(q, anchor) {
		items = append(items, g.stamp(makeKeyword(label)))
	}
	if isScopeBody(q, anchor) {
		for _, s := range scopeSuggestions {
			items = append(items, g.stamp(s))
		}
	}
	return items
}

// resolveScope resolves the SObject scope at the cursor by walking one
// child relationship per subquery level, then one reference field per
// dotted path segment. A nil error with a non-nil suggestion means the
// scope is ambiguous and the caller should return that sentinel.
func (g *generator) resolveScope(ctx context.Context) (string, *Suggestion, error) {
	root := g.res.AST
	scope := root.SObject()
	if scope == "" {
		s := g.errorSuggestion("cannot determine the SObject: the query has no FROM clause yet")
		return "", &s, nil
	}

	for _, q := range queryPath(root, g.cctx.Query)[1:] {
		if q.Relationship == "" {
			s := g.errorSuggestion("cannot determine the subquery scope: its FROM clause is incomplete")
			return "", &s, nil
		}
		child, errSug, err := g.childSObject(ctx, scope, q.Relationship)
		if err != nil || errSug != nil {
			return "", errSug, err
		}
		scope = child
	}

	for _, seg := range g.cctx.RelationshipPath {
		next, errSug, err := g.referenceTarget(ctx, scope, seg)
		if err != nil || errSug != nil {
			return "", errSug, err
		}
		scope = next
	}
	return scope, nil, nil
}

func (g *generator) childSObject(ctx context.Context, parent, rel string) (string, *Suggestion, error) {
	rels, err := g.provider.Relationships(ctx, parent)
	if err != nil {
		if ctxDone(err) {
			return "", nil, err
		}
		s := g.errorSuggestion(fmt.Sprintf("relationships unavailable for %s: %v", parent, err))
		return "", &s, nil
	}
	for _, rd := range rels {
		if strings.EqualFold(rd.Name, rel) {
			return rd.ChildSObject, nil, nil
		}
	}
	s := g.errorSuggestion(fmt.Sprintf("unknown child relationship %s on %s", rel, parent))
	return "", &s, nil
}

func (g *generator) referenceTarget(ctx context.Context, scope, seg string) (string, *Suggestion, error) {
	fields, err := g.provider.Fields(ctx, scope)
	if err != nil {
		if ctxDone(err) {
			return "", nil, err
		}
		s := g.errorSuggestion(fmt.Sprintf("fields unavailable for %s: %v", scope, err))
		return "", &s, nil
	}
	for _, fd := range fields {
		if fd.IsReference() && strings.EqualFold(fd.RelationshipName, seg) && len(fd.ReferenceTo) > 0 {
			return fd.ReferenceTo[0], nil, nil
		}
	}
	s := g.errorSuggestion(fmt.Sprintf("cannot resolve relationship %s on %s", seg, scope))
	return "", &s, nil
}

func fieldSuggestion(fd *metadata.FieldDescriptor) Suggestion {
	detail := fd.Type
	if fd.Custom {
		detail += " (custom)"
	}
	return Suggestion{
		Label:         fd.Name,
		Kind:          KindField,
		Detail:        detail,
		Documentation: fd.Label,
		SortPriority:  20,
	}
}

// referenceSuggestion offers the parent traversal of a reference field:
// OwnerId also completes as "Owner." so typing can continue into the
// parent object.
func referenceSuggestion(fd *metadata.FieldDescriptor) Suggestion {
	detail := "Reference"
	if len(fd.ReferenceTo) > 0 {
		detail = "Reference → " + strings.Join(fd.ReferenceTo, ", ")
	}
	return Suggestion{
		Label:        fd.RelationshipName,
		InsertText:   fd.RelationshipName + ".",
		Kind:         KindRelationship,
		Detail:       detail,
		SortPriority: 30,
	}
}

func subquerySuggestion(rd *metadata.RelationshipDescriptor) Suggestion {
	return Suggestion{
		Label:        rd.Name,
		InsertText:   "(SELECT Id FROM " + rd.Name + ")",
		Kind:         KindRelationship,
		Detail:       "Child relationship subquery → " + rd.ChildSObject,
		SortPriority: 40,
	}
}

// insideCallArgs reports whether the anchor sits inside the argument
// parentheses of a SELECT-list function call.
func insideCallArgs(q *parse.Query, anchor int) bool {
	for i := range q.Select {
		f := q.Select[i].Field
		if f != nil && f.IsCall() && f.ArgsSpan.Covers(anchor) && anchor >= f.ArgsSpan.Start {
			return true
		}
	}
	return false
}

// dedupe removes suggestions whose (Label, InsertText) pair repeats. Two
// candidates sharing a label but inserting different text both survive.
func dedupe(items []Suggestion) []Suggestion {
	type key struct{ label, insert string }
	seen := make(map[key]bool, len(items))
	out := make([]Suggestion, 0, len(items))
	for _, s := range items {
		k := key{s.Label, s.InsertText}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

// filterByPartial keeps suggestions whose label matches the typed fragment
// case-insensitively. Error sentinels always survive.
func filterByPartial(items []Suggestion, partial string) []Suggestion {
	if partial == "" {
		return items
	}
	p := strings.ToLower(partial)
	out := make([]Suggestion, 0, len(items))
	for _, s := range items {
		if s.IsError() || strings.HasPrefix(strings.ToLower(s.Label), p) {
			out = append(out, s)
		}
	}
	return out
}

// sortSuggestions orders by priority, then alphabetically.
func sortSuggestions(items []Suggestion) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortPriority != items[j].SortPriority {
			return items[i].SortPriority < items[j].SortPriority
		}
		return strings.ToLower(items[i].Label) < strings.ToLower(items[j].Label)
	})
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
