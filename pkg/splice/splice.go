// Package splice performs drag-and-drop text surgery on SOQL queries:
// appending a dropped field to the right SELECT list, or synthesizing a
// nested relationship subquery when none exists yet. Edits are byte-range
// insertions into the original text, so untouched parts of the query keep
// their exact formatting.
package splice

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/parse"
)

var (
	// ErrUnparseable means the query text has syntax errors. The splicer
	// refuses rather than guessing at an insertion point that could corrupt
	// the text.
	ErrUnparseable = errors.New("query does not parse")

	// ErrNoTarget means no SELECT list matched the requested scope.
	ErrNoTarget = errors.New("no matching SELECT list")

	// ErrInvalidName means a descriptor name is not a plain API name. Names
	// are validated before insertion instead of being escaped, so nothing
	// that is not an identifier ever reaches the query text.
	ErrInvalidName = errors.New("descriptor name is not a valid API name")

	// ErrNestingLimit means adding a subquery would exceed the supported
	// relationship nesting depth.
	ErrNestingLimit = errors.New("subquery would exceed the nesting limit")
)

// fieldNamePattern accepts a field API name or a dotted parent path
// (Name, Owner.Name, Invoice__r.Total__c).
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)

// relationshipNamePattern accepts a single child relationship API name.
var relationshipNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Field appends the dropped field to the outer query's SELECT list.
//
//	Field("SELECT Id FROM Account", name)   =>  "SELECT Id, Name FROM Account"
//
// Dropping a field the list already contains returns the text unchanged.
func Field(queryText string, field *metadata.FieldDescriptor) (string, error) {
	return FieldInto(queryText, "", field)
}

// FieldInto appends the dropped field to the SELECT list identified by
// scope: the FROM object name, its alias, or a child relationship name for
// a nested subquery, matched case-insensitively. An empty scope targets the
// outer query.
func FieldInto(queryText, scope string, field *metadata.FieldDescriptor) (string, error) {
	if field == nil || !fieldNamePattern.MatchString(field.Name) {
		return "", fmt.Errorf("splice field %q: %w", descriptorName(field), ErrInvalidName)
	}

	q, err := targetQuery(queryText, scope)
	if err != nil {
		return "", err
	}
	if hasField(q, field.Name) {
		return queryText, nil
	}
	return insertIntoList(queryText, q, field.Name), nil
}

// Relationship splices a child-relationship subquery into the outer query's
// SELECT list, synthesizing a minimal one when the relationship is not
// queried yet.
//
//	Relationship("SELECT Id FROM Account", contacts)
//	  =>  "SELECT Id, (SELECT Id FROM Contacts) FROM Account"
//
// Dropping a relationship whose subquery already exists returns the text
// unchanged.
func Relationship(queryText string, rel *metadata.RelationshipDescriptor) (string, error) {
	return RelationshipInto(queryText, "", rel)
}

// RelationshipInto splices a child-relationship subquery into the SELECT
// list identified by scope, using the same scope matching as FieldInto.
func RelationshipInto(queryText, scope string, rel *metadata.RelationshipDescriptor) (string, error) {
	if rel == nil || !relationshipNamePattern.MatchString(rel.Name) {
		name := ""
		if rel != nil {
			name = rel.Name
		}
		return "", fmt.Errorf("splice relationship %q: %w", name, ErrInvalidName)
	}

	q, err := targetQuery(queryText, scope)
	if err != nil {
		return "", err
	}
	if hasSubquery(q, rel.Name) {
		return queryText, nil
	}
	if q.Level+1 > parse.MaxNestingLevel {
		return "", fmt.Errorf("splice relationship %q at level %d: %w", rel.Name, q.Level+1, ErrNestingLimit)
	}
	return insertIntoList(queryText, q, "(SELECT Id FROM "+rel.Name+")"), nil
}

// targetQuery parses the text and locates the query whose SELECT list the
// drop lands in.
func targetQuery(queryText, scope string) (*parse.Query, error) {
	res := parse.Parse(queryText)
	if !res.IsValid() {
		if res.HasErrors() {
			return nil, fmt.Errorf("%w: %s", ErrUnparseable, res.Errors.First().Message)
		}
		return nil, ErrUnparseable
	}
	if scope == "" {
		return res.AST, nil
	}
	if q := findScope(res.AST, scope); q != nil {
		return q, nil
	}
	return nil, fmt.Errorf("scope %q: %w", scope, ErrNoTarget)
}

// findScope walks the query tree in document order and returns the first
// query whose FROM name, alias, or relationship name matches.
func findScope(q *parse.Query, scope string) *parse.Query {
	if q == nil {
		return nil
	}
	if q.From != nil && (strings.EqualFold(q.From.Name, scope) || strings.EqualFold(q.From.Alias, scope)) {
		return q
	}
	if strings.EqualFold(q.Relationship, scope) {
		return q
	}
	for _, sub := range q.Subqueries() {
		if found := findScope(sub, scope); found != nil {
			return found
		}
	}
	return nil
}

// hasField reports whether the SELECT list already contains the field,
// compared by full dotted name.
func hasField(q *parse.Query, name string) bool {
	for i := range q.Select {
		if f := q.Select[i].Field; f != nil && strings.EqualFold(f.Name(), name) {
			return true
		}
	}
	return false
}

// hasSubquery reports whether the SELECT list already contains a subquery
// over the given child relationship.
func hasSubquery(q *parse.Query, relationship string) bool {
	for _, sub := range q.Subqueries() {
		if strings.EqualFold(sub.Relationship, relationship) {
			return true
		}
	}
	return false
}

// insertIntoList splices ", text" after the last SELECT item, leaving every
// other byte of the query untouched.
func insertIntoList(src string, q *parse.Query, text string) string {
	at := q.SelectKeyword.End
	ins := " " + text
	if n := len(q.Select); n > 0 {
		at = q.Select[n-1].Span.End
		ins = ", " + text
	}
	return src[:at] + ins + src[at:]
}

func descriptorName(field *metadata.FieldDescriptor) string {
	if field == nil {
		return ""
	}
	return field.Name
}
