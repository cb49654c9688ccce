package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/soqltypes"
	"github.com/queryforce/soqlkit/pkg/token"
)

// MaxOffsetRows is the largest OFFSET value the platform accepts.
const MaxOffsetRows = 2000

// Analyze performs full analysis of a SOQL query with optional metadata
// validation. Query problems are reported on the Result; the returned
// error is non-nil only when ctx was canceled mid-validation.
func Analyze(ctx context.Context, soql string, opts *AnalyzeOptions) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	result := &Result{
		Query:        soql,
		SchemaErrors: make([]*SchemaError, 0),
		Warnings:     make([]*Warning, 0),
	}

	refs, syntaxErrors := ExtractReferences(soql)
	result.References = refs
	result.SyntaxErrors = syntaxErrors
	result.IsValid = len(syntaxErrors) == 0

	// References extracted from a broken parse are unreliable, stop here.
	if !result.IsValid {
		return result, nil
	}

	if opts.Provider != nil && refs.SObject != "" {
		v := newValidator(opts.Provider)
		if err := v.root(ctx, result, refs); err != nil {
			return nil, err
		}
	}

	// Function arity never needs metadata.
	if calls := collectCalls(refs); len(calls) > 0 {
		result.SchemaErrors = append(result.SchemaErrors, ValidateFunctionCalls(calls)...)
	}

	generateWarnings(result, opts)

	return result, nil
}

// collectCalls gathers function calls from every nesting level.
func collectCalls(refs *References) []*FunctionCall {
	if refs == nil {
		return nil
	}
	calls := append([]*FunctionCall(nil), refs.FunctionCalls...)
	for _, sub := range refs.Subqueries {
		calls = append(calls, collectCalls(sub)...)
	}
	for _, sj := range refs.SemiJoins {
		calls = append(calls, collectCalls(sj)...)
	}
	return calls
}

// validator resolves references against a metadata provider. Describe
// results are cached so a parent traversal chain hits each object once.
type validator struct {
	provider    metadata.Provider
	names       []string
	namesLoaded bool
	fields      map[string][]*metadata.FieldDescriptor
	rels        map[string][]*metadata.RelationshipDescriptor
	unavailSeen map[string]bool
}

func newValidator(p metadata.Provider) *validator {
	return &validator{
		provider:    p,
		fields:      make(map[string][]*metadata.FieldDescriptor),
		rels:        make(map[string][]*metadata.RelationshipDescriptor),
		unavailSeen: make(map[string]bool),
	}
}

// unavailable records a provider failure once per object. A dotted path
// can hit the same broken describe several times; one finding is enough.
func (v *validator) unavailable(result *Result, object string, err error) {
	key := strings.ToLower(object)
	if v.unavailSeen[key] {
		return
	}
	v.unavailSeen[key] = true
	result.SchemaErrors = append(result.SchemaErrors, metadataUnavailable(object, err))
}

// root validates a query whose SObject is an API name: the outermost
// query and each semi-join.
func (v *validator) root(ctx context.Context, result *Result, refs *References) error {
	if refs.SObject == "" {
		return nil
	}

	if !v.namesLoaded {
		names, err := v.provider.SObjectNames(ctx, "")
		if err != nil {
			if ctxDone(err) {
				return err
			}
			v.unavailable(result, refs.SObject, err)
			return nil
		}
		v.names = names
		v.namesLoaded = true
	}

	if !containsFold(v.names, refs.SObject) {
		result.SchemaErrors = append(result.SchemaErrors, v.unknownSObject(refs.SObject))
		return nil
	}

	return v.scope(ctx, result, refs, refs.SObject)
}

// scope validates one query level against its resolved SObject, then
// recurses into relationship subqueries and semi-joins.
func (v *validator) scope(ctx context.Context, result *Result, refs *References, sobject string) error {
	for _, path := range refs.Fields {
		if err := v.fieldPath(ctx, result, refs, sobject, path); err != nil {
			return err
		}
	}

	if len(refs.Subqueries) > 0 {
		rels, err := v.relationshipsOf(ctx, sobject)
		if err != nil {
			if ctxDone(err) {
				return err
			}
			v.unavailable(result, sobject, err)
		} else {
			for _, sub := range refs.Subqueries {
				rd := findRelationship(rels, sub.SObject)
				if rd == nil {
					e := &SchemaError{
						Type:    ErrUnknownRelationship,
						Message: fmt.Sprintf("Child relationship '%s' not found on SObject '%s'", sub.SObject, sobject),
						Object:  sub.SObject,
					}
					if match := parse.ClosestMatch(sub.SObject, relationshipNames(rels), 2); match != "" {
						e.Suggestion = didYouMean(match)
					}
					result.SchemaErrors = append(result.SchemaErrors, e)
					continue
				}
				if err := v.scope(ctx, result, sub, rd.ChildSObject); err != nil {
					return err
				}
			}
		}
	}

	for _, sj := range refs.SemiJoins {
		if err := v.root(ctx, result, sj); err != nil {
			return err
		}
	}

	return nil
}

// fieldPath validates one dotted field path against the query scope,
// hopping reference fields segment by segment.
func (v *validator) fieldPath(ctx context.Context, result *Result, refs *References, sobject, path string) error {
	segs := strings.Split(path, ".")
	if len(segs) > 1 {
		head := segs[0]
		if (refs.Alias != "" && strings.EqualFold(head, refs.Alias)) || strings.EqualFold(head, sobject) {
			segs = segs[1:]
		}
	}

	cur := sobject
	for i, seg := range segs {
		flds, err := v.fieldsOf(ctx, cur)
		if err != nil {
			if ctxDone(err) {
				return err
			}
			if errors.Is(err, metadata.ErrNotFound) {
				result.SchemaErrors = append(result.SchemaErrors, v.unknownSObject(cur))
			} else {
				v.unavailable(result, cur, err)
			}
			return nil
		}

		if i == len(segs)-1 {
			if findField(flds, seg) == nil {
				e := &SchemaError{
					Type:    ErrUnknownField,
					Message: fmt.Sprintf("Field '%s' not found on SObject '%s'", seg, cur),
					Object:  path,
				}
				if match := parse.ClosestMatch(seg, fieldCandidates(flds), 2); match != "" {
					e.Suggestion = didYouMean(match)
				}
				result.SchemaErrors = append(result.SchemaErrors, e)
			}
			return nil
		}

		fd := findReference(flds, seg)
		if fd == nil {
			e := &SchemaError{
				Type:    ErrUnknownRelationship,
				Message: fmt.Sprintf("Parent relationship '%s' not found on SObject '%s'", seg, cur),
				Object:  path,
			}
			if match := parse.ClosestMatch(seg, referenceCandidates(flds), 2); match != "" {
				e.Suggestion = didYouMean(match)
			}
			result.SchemaErrors = append(result.SchemaErrors, e)
			return nil
		}
		cur = fd.ReferenceTo[0]
	}

	return nil
}

func (v *validator) fieldsOf(ctx context.Context, sobject string) ([]*metadata.FieldDescriptor, error) {
	key := strings.ToLower(sobject)
	if flds, ok := v.fields[key]; ok {
		return flds, nil
	}
	flds, err := v.provider.Fields(ctx, sobject)
	if err != nil {
		return nil, err
	}
	v.fields[key] = flds
	return flds, nil
}

func (v *validator) relationshipsOf(ctx context.Context, sobject string) ([]*metadata.RelationshipDescriptor, error) {
	key := strings.ToLower(sobject)
	if rels, ok := v.rels[key]; ok {
		return rels, nil
	}
	rels, err := v.provider.Relationships(ctx, sobject)
	if err != nil {
		return nil, err
	}
	v.rels[key] = rels
	return rels, nil
}

func (v *validator) unknownSObject(name string) *SchemaError {
	e := &SchemaError{
		Type:    ErrUnknownSObject,
		Message: fmt.Sprintf("SObject '%s' does not exist", name),
		Object:  name,
	}
	if match := parse.ClosestMatch(name, v.names, 2); match != "" {
		e.Suggestion = didYouMean(match)
	}
	return e
}

func metadataUnavailable(object string, err error) *SchemaError {
	return &SchemaError{
		Type:    ErrMetadataUnavailable,
		Message: fmt.Sprintf("Metadata unavailable for '%s': %v", object, err),
		Object:  object,
	}
}

// Lookup helpers. All matching is case-insensitive, like the platform.

func findField(flds []*metadata.FieldDescriptor, name string) *metadata.FieldDescriptor {
	for _, f := range flds {
		if strings.EqualFold(f.Name, name) {
			return f
		}
		if f.RelationshipName != "" && strings.EqualFold(f.RelationshipName, name) {
			return f
		}
	}
	return nil
}

func findReference(flds []*metadata.FieldDescriptor, name string) *metadata.FieldDescriptor {
	for _, f := range flds {
		if f.RelationshipName != "" && strings.EqualFold(f.RelationshipName, name) && len(f.ReferenceTo) > 0 {
			return f
		}
	}
	return nil
}

func findRelationship(rels []*metadata.RelationshipDescriptor, name string) *metadata.RelationshipDescriptor {
	for _, rd := range rels {
		if strings.EqualFold(rd.Name, name) {
			return rd
		}
	}
	return nil
}

func fieldCandidates(flds []*metadata.FieldDescriptor) []string {
	names := make([]string, 0, len(flds))
	for _, f := range flds {
		names = append(names, f.Name)
		if f.RelationshipName != "" {
			names = append(names, f.RelationshipName)
		}
	}
	return names
}

func referenceCandidates(flds []*metadata.FieldDescriptor) []string {
	var names []string
	for _, f := range flds {
		if f.RelationshipName != "" && len(f.ReferenceTo) > 0 {
			names = append(names, f.RelationshipName)
		}
	}
	return names
}

func relationshipNames(rels []*metadata.RelationshipDescriptor) []string {
	names := make([]string, 0, len(rels))
	for _, rd := range rels {
		names = append(names, rd.Name)
	}
	return names
}

func didYouMean(match string) string {
	return fmt.Sprintf("Did you mean '%s'?", match)
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// generateWarnings generates advisory findings from query characteristics.
// None of them require metadata.
func generateWarnings(result *Result, opts *AnalyzeOptions) {
	refs := result.References

	if len(refs.WhereFields) == 0 {
		result.Warnings = append(result.Warnings, &Warning{
			Type:       WarnNoWhereClause,
			Severity:   SeverityInfo,
			Message:    "Query has no WHERE clause and scans every record",
			Suggestion: "Add a WHERE filter to reduce the result set",
		})
	}

	if opts.WarnOnNoLimit && !refs.HasLimit() {
		result.Warnings = append(result.Warnings, &Warning{
			Type:       WarnNoLimit,
			Severity:   SeverityInfo,
			Message:    "Query has no LIMIT clause",
			Suggestion: "Consider adding LIMIT to cap the result set",
		})
	}

	if opts.LargeLimitThreshold > 0 && refs.Limit > opts.LargeLimitThreshold {
		result.Warnings = append(result.Warnings, &Warning{
			Type:       WarnLargeLimit,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("LIMIT %d may return too many rows", refs.Limit),
			Suggestion: fmt.Sprintf("Consider using a smaller limit (threshold: %d)", opts.LargeLimitThreshold),
		})
	}

	if refs.Offset > MaxOffsetRows {
		result.Warnings = append(result.Warnings, &Warning{
			Type:       WarnLargeOffset,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("OFFSET %d exceeds the platform maximum of %d", refs.Offset, MaxOffsetRows),
			Suggestion: "Page with a WHERE filter on the last seen Id instead of a large offset",
		})
	}

	if opts.WarnOnFieldsAll {
		for _, call := range collectCalls(refs) {
			if call.Name == "fields" {
				result.Warnings = append(result.Warnings, &Warning{
					Type:       WarnFieldsAll,
					Severity:   SeverityInfo,
					Message:    fmt.Sprintf("FIELDS(%s) retrieves every matching field", strings.ToUpper(call.Args)),
					Suggestion: "List only the fields the caller reads",
					Position:   call.Position,
				})
			}
		}
	}

	warnLeadingWildcards(result)
}

// warnLeadingWildcards flags LIKE patterns that start with a wildcard.
// Such filters match from any position and cannot use an index.
func warnLeadingWildcards(result *Result) {
	toks := token.Scan(result.Query)
	for i, t := range toks {
		if t.Kind != token.Keyword || !strings.EqualFold(t.Text, "LIKE") {
			continue
		}
		j := nextSig(toks, i+1)
		if j < 0 || toks[j].Kind != token.String {
			continue
		}
		if strings.HasPrefix(toks[j].Text, "'%") {
			line, column := soqltypes.Position(result.Query, toks[j].Start)
			result.Warnings = append(result.Warnings, &Warning{
				Type:       WarnLeadingWildcard,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("LIKE pattern %s starts with a wildcard and cannot use an index", toks[j].Text),
				Suggestion: "Anchor the pattern or use SOSL for contains searches",
				Position:   &Position{Line: line, Column: column, Offset: toks[j].Start},
			})
		}
	}
}
