package complete

import (
	"context"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/parse"
)

// FixtureField represents a field in the fixture schema
type FixtureField struct {
	Name             string   `yaml:"name"`
	Type             string   `yaml:"type"`
	Label            string   `yaml:"label,omitempty"`
	RelationshipName string   `yaml:"relationshipName,omitempty"`
	ReferenceTo      []string `yaml:"referenceTo,omitempty"`
}

// FixtureRelationship represents a child relationship in the fixture schema
type FixtureRelationship struct {
	Name         string `yaml:"name"`
	ChildSObject string `yaml:"childSObject"`
	Field        string `yaml:"field"`
}

// FixtureSObject represents an SObject in the fixture schema
type FixtureSObject struct {
	Name          string                `yaml:"name"`
	Fields        []FixtureField        `yaml:"fields"`
	Relationships []FixtureRelationship `yaml:"relationships,omitempty"`
}

// FixtureSchema represents the schema in a fixture
type FixtureSchema struct {
	SObjects []FixtureSObject `yaml:"sobjects"`
}

// CompleteFixture represents a single test case
type CompleteFixture struct {
	Name   string `yaml:"name"`
	Query  string `yaml:"query"`
	Offset int    `yaml:"offset,omitempty"`

	SchemaRef string `yaml:"schemaRef,omitempty"`

	// Context resolution expectations
	ExpectContext string `yaml:"expectContext,omitempty"`
	ExpectPartial string `yaml:"expectPartial,omitempty"`
	ExpectSObject string `yaml:"expectSObject,omitempty"`

	// Suggestion expectations
	ExpectLabels  []string `yaml:"expectLabels,omitempty"`
	ExpectKinds   []string `yaml:"expectKinds,omitempty"`
	ExpectMissing []string `yaml:"expectMissing,omitempty"`
	ExpectFirst   []string `yaml:"expectFirst,omitempty"`
}

// FixtureFile represents the entire fixture file structure
type FixtureFile struct {
	Schemas map[string]FixtureSchema `yaml:"schemas"`
	Tests   []CompleteFixture        `yaml:"tests"`
}

func loadFixtures(t *testing.T) (*FixtureFile, error) {
	data, err := os.ReadFile("testdata/complete_fixtures.yaml")
	if err != nil {
		return nil, err
	}

	var ff FixtureFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, err
	}

	return &ff, nil
}

func buildCatalog(fs *FixtureSchema) *metadata.Catalog {
	if fs == nil {
		return nil
	}

	c := metadata.NewCatalog()
	for _, fo := range fs.SObjects {
		o := c.AddSObject(fo.Name)

		for _, ff := range fo.Fields {
			switch {
			case ff.RelationshipName != "":
				o.AddReferenceField(ff.Name, ff.RelationshipName, ff.ReferenceTo...)
			case ff.Label != "":
				o.AddLabeledField(ff.Name, ff.Type, ff.Label)
			default:
				o.AddField(ff.Name, ff.Type)
			}
		}

		for _, fr := range fo.Relationships {
			o.AddRelationship(fr.Name, fr.ChildSObject, fr.Field)
		}
	}
	return c
}

// cursorOffset extracts the | cursor marker from a fixture query, returning
// the cleaned text and the marker's byte offset. Queries without a marker
// keep the explicit offset.
func cursorOffset(query string, offset int) (string, int) {
	if i := strings.Index(query, "|"); i >= 0 {
		return query[:i] + query[i+1:], i
	}
	return query, offset
}

func hasLabel(items []Suggestion, label string) bool {
	for _, s := range items {
		if s.Label == label {
			return true
		}
	}
	return false
}

func TestCompleteFixtures(t *testing.T) {
	ff, err := loadFixtures(t)
	if err != nil {
		t.Fatalf("Failed to load fixtures: %v", err)
	}

	for _, f := range ff.Tests {
		t.Run(f.Name, func(t *testing.T) {
			text, offset := cursorOffset(f.Query, f.Offset)

			// Build catalog if referenced
			var provider metadata.Provider
			if f.SchemaRef != "" {
				fs, ok := ff.Schemas[f.SchemaRef]
				if !ok {
					t.Fatalf("Schema reference %q not found", f.SchemaRef)
				}
				provider = buildCatalog(&fs)
			}

			// Test context resolution
			if f.ExpectContext != "" {
				cctx := ResolveContext(parse.Parse(text), offset)

				if f.ExpectContext == "none" {
					if cctx != nil {
						t.Errorf("Context = %q, want none", cctx.Kind)
					}
					items, err := Suggest(context.Background(), provider, Request{Text: text, Offset: offset})
					if err != nil {
						t.Fatalf("Suggest: %v", err)
					}
					if len(items) != 0 {
						t.Errorf("Got %d suggestions for unresolvable input, want 0", len(items))
					}
					return
				}

				if cctx == nil {
					t.Fatalf("No context resolved for %q (offset %d)", text, offset)
				}

				t.Logf("Query: %q (offset %d)", text, offset)
				t.Logf("Resolved context: %s, partial: %q", cctx.Kind, cctx.Partial)

				if string(cctx.Kind) != f.ExpectContext {
					t.Errorf("Context = %q, want %q", cctx.Kind, f.ExpectContext)
				}
				if f.ExpectPartial != "" || cctx.Partial != "" {
					if cctx.Partial != f.ExpectPartial {
						t.Errorf("Partial = %q, want %q", cctx.Partial, f.ExpectPartial)
					}
				}
				if f.ExpectSObject != "" && cctx.SObject != f.ExpectSObject {
					t.Errorf("SObject = %q, want %q", cctx.SObject, f.ExpectSObject)
				}
			}

			// Test suggestion generation
			if len(f.ExpectLabels) > 0 || len(f.ExpectKinds) > 0 ||
				len(f.ExpectMissing) > 0 || len(f.ExpectFirst) > 0 {

				items, err := Suggest(context.Background(), provider, Request{Text: text, Offset: offset})
				if err != nil {
					t.Fatalf("Suggest: %v", err)
				}

				t.Logf("Got %d suggestions", len(items))
				if len(items) > 0 && len(items) <= 12 {
					for _, s := range items {
						t.Logf("  - %s (%s)", s.Label, s.Kind)
					}
				}

				for _, want := range f.ExpectLabels {
					if !hasLabel(items, want) {
						t.Errorf("Expected suggestion %q not found", want)
					}
				}

				for _, wantKind := range f.ExpectKinds {
					found := false
					for _, s := range items {
						if string(s.Kind) == wantKind {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("Expected suggestion kind %q not found", wantKind)
					}
				}

				for _, missing := range f.ExpectMissing {
					if hasLabel(items, missing) {
						t.Errorf("Label %q should not be suggested", missing)
					}
				}

				for i, want := range f.ExpectFirst {
					if i >= len(items) {
						t.Errorf("Not enough suggestions, wanted %q at position %d", want, i)
						continue
					}
					if items[i].Label != want {
						t.Errorf("Suggestion[%d] = %q, want %q", i, items[i].Label, want)
					}
				}
			}
		})
	}
}

// TestContextResolution tests cursor classification in isolation
func TestContextResolution(t *testing.T) {
	tests := []struct {
		name        string
		query       string // | marks the cursor
		wantKind    ContextKind
		wantPartial string
	}{
		{"select keyword", "SELE|CT Id FROM Account", ContextKeyword, "SELE"},
		{"field list", "SELECT I|d FROM Account", ContextField, "I"},
		{"from target", "SELECT Id FROM Acco|unt", ContextSObject, "Acco"},
		{"clause slot", "SELECT Id FROM Account |", ContextKeyword, ""},
		{"where body", "SELECT Id FROM Account WHERE Na|", ContextField, "Na"},
		{"subquery from", "SELECT Id, (SELECT Id FROM Op|) FROM Account", ContextRelationship, "Op"},
		{"string literal", "SELECT Id FROM Account WHERE Name = 'Ac|me'", ContextUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, offset := cursorOffset(tt.query, 0)
			cctx := ResolveContext(parse.Parse(text), offset)
			if cctx == nil {
				t.Fatalf("No context resolved for %q", text)
			}
			if cctx.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", cctx.Kind, tt.wantKind)
			}
			if cctx.Partial != tt.wantPartial {
				t.Errorf("Partial = %q, want %q", cctx.Partial, tt.wantPartial)
			}
		})
	}
}

// TestReplaceRange tests that applying a suggestion replaces exactly the
// partial token
func TestReplaceRange(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name  string
		query string // | marks the cursor
		pick  string
		want  string
	}{
		{
			name:  "replace partial field",
			query: "SELECT Na| FROM Account",
			pick:  "Name",
			want:  "SELECT Name FROM Account",
		},
		{
			name:  "insert at empty slot",
			query: "SELECT Id FROM |",
			pick:  "Account",
			want:  "SELECT Id FROM Account",
		},
		{
			name:  "replace partial object name",
			query: "SELECT Id FROM Acc|",
			pick:  "Account",
			want:  "SELECT Id FROM Account",
		},
		{
			name:  "replace only up to the cursor",
			query: "SELECT Na|me FROM Account",
			pick:  "Name",
			want:  "SELECT Nameme FROM Account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, offset := cursorOffset(tt.query, 0)
			items, err := Suggest(context.Background(), cat, Request{Text: text, Offset: offset})
			if err != nil {
				t.Fatalf("Suggest: %v", err)
			}

			var picked *Suggestion
			for i := range items {
				if items[i].Label == tt.pick {
					picked = &items[i]
					break
				}
			}
			if picked == nil {
				t.Fatalf("Suggestion %q not offered", tt.pick)
			}

			got := Apply(text, *picked)
			if got != tt.want {
				t.Errorf("Apply = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestReplaceRangeAtEveryOffset sweeps the cursor across a corpus of
// well-formed, half-typed, and broken queries. At every byte offset the
// resolved partial must equal text[Start:End] with End at the cursor, and
// every suggestion must carry exactly that replace range.
func TestReplaceRangeAtEveryOffset(t *testing.T) {
	cat := testCatalog()

	corpus := []string{
		"SELECT Id, Name FROM Account WHERE Industry = 'Tech' ORDER BY Name LIMIT 5",
		"SELECT Id, (SELECT LastName FROM Contacts) FROM Account",
		"SELECT Owner.Na FROM Account",
		"SELECT COUNT(Id) total FROM Account GROUP BY Industry HAVING COUNT(Id) > 1",
		"SELECT Id FROM Account USING SCOPE mine FOR UPDATE",
		"SELECT Id, FROM Account",
		"SELECT Id FROM ",
		"SELECT Na",
		"SELEC FRO Account",
	}

	for _, text := range corpus {
		res := parse.Parse(text)
		for offset := 0; offset <= len(text); offset++ {
			cctx := ResolveContext(res, offset)

			items, err := Suggest(context.Background(), cat, Request{Text: text, Offset: offset})
			if err != nil {
				t.Fatalf("%q offset %d: Suggest: %v", text, offset, err)
			}

			if cctx == nil {
				if len(items) != 0 {
					t.Errorf("%q offset %d: %d suggestions without a context", text, offset, len(items))
				}
				continue
			}

			if cctx.End != offset {
				t.Errorf("%q offset %d: End = %d", text, offset, cctx.End)
			}
			if cctx.Start < 0 || cctx.Start > cctx.End {
				t.Errorf("%q offset %d: Start = %d out of range", text, offset, cctx.Start)
				continue
			}
			if got := text[cctx.Start:cctx.End]; got != cctx.Partial {
				t.Errorf("%q offset %d: Partial = %q, range text = %q", text, offset, cctx.Partial, got)
			}

			for _, s := range items {
				if s.ReplaceStart != cctx.Start || s.ReplaceEnd != offset {
					t.Errorf("%q offset %d: %q replace range [%d,%d), want [%d,%d)",
						text, offset, s.Label, s.ReplaceStart, s.ReplaceEnd, cctx.Start, offset)
				}
			}
		}
	}
}

// TestFilterByPartial tests prefix filtering
func TestFilterByPartial(t *testing.T) {
	items := []Suggestion{
		{Label: "Name", Kind: KindField},
		{Label: "NumberOfEmployees", Kind: KindField},
		{Label: "Industry", Kind: KindField},
		{Label: "⚠️ metadata unavailable", Kind: KindError},
	}

	filtered := filterByPartial(items, "N")
	if len(filtered) != 3 {
		t.Errorf("Got %d items, want 3 (two fields plus the sentinel)", len(filtered))
	}

	filtered = filterByPartial(items, "na")
	if len(filtered) != 2 {
		t.Errorf("Got %d items, want 2 (case-insensitive match plus the sentinel)", len(filtered))
	}

	filtered = filterByPartial(items, "")
	if len(filtered) != 4 {
		t.Errorf("Got %d items, want all 4 for empty partial", len(filtered))
	}
}

func TestDedupe(t *testing.T) {
	items := []Suggestion{
		{Label: "Name", InsertText: ""},
		{Label: "Name", InsertText: ""},
		{Label: "Owner", InsertText: "Owner."},
		{Label: "Owner", InsertText: "(SELECT Id FROM Owner)"},
	}

	out := dedupe(items)
	if len(out) != 3 {
		t.Fatalf("Got %d items, want 3", len(out))
	}
	// Same label with different insert text both survive.
	if out[1].Label != "Owner" || out[2].Label != "Owner" {
		t.Errorf("Distinct inserts for one label were collapsed: %+v", out)
	}
}

func TestSortSuggestions(t *testing.T) {
	items := []Suggestion{
		{Label: "Industry", SortPriority: 20},
		{Label: "WHERE", SortPriority: 10},
		{Label: "annualRevenue", SortPriority: 20},
		{Label: "⚠️ boom", SortPriority: 0},
	}

	sortSuggestions(items)

	want := []string{"⚠️ boom", "WHERE", "annualRevenue", "Industry"}
	for i, label := range want {
		if items[i].Label != label {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Label, label)
		}
	}
}
