package analyze

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/queryforce/soqlkit/pkg/metadata"
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

// FixtureOptions represents analyzer options in a fixture
type FixtureOptions struct {
	WarnOnNoLimit       bool `yaml:"warnOnNoLimit"`
	WarnOnFieldsAll     bool `yaml:"warnOnFieldsAll"`
	LargeLimitThreshold int  `yaml:"largeLimitThreshold"`
}

// AnalyzeFixture represents a single test case
type AnalyzeFixture struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`

	SchemaRef string          `yaml:"schemaRef,omitempty"`
	Options   *FixtureOptions `yaml:"options,omitempty"`

	// Reference extraction expectations
	ExpectSObject       string   `yaml:"expectSObject,omitempty"`
	ExpectAlias         string   `yaml:"expectAlias,omitempty"`
	ExpectFields        []string `yaml:"expectFields,omitempty"`
	ExpectSelectFields  []string `yaml:"expectSelectFields,omitempty"`
	ExpectWhereFields   []string `yaml:"expectWhereFields,omitempty"`
	ExpectGroupByFields []string `yaml:"expectGroupByFields,omitempty"`
	ExpectHavingFields  []string `yaml:"expectHavingFields,omitempty"`
	ExpectOrderByFields []string `yaml:"expectOrderByFields,omitempty"`
	ExpectFunctions     []string `yaml:"expectFunctions,omitempty"`
	ExpectBindVars      []string `yaml:"expectBindVars,omitempty"`
	ExpectMissingFields []string `yaml:"expectMissingFields,omitempty"`
	ExpectLimit         *int     `yaml:"expectLimit,omitempty"`
	ExpectOffset        *int     `yaml:"expectOffset,omitempty"`

	// Nested query expectations (checked against the first entry)
	ExpectSubqueryCount   *int     `yaml:"expectSubqueryCount,omitempty"`
	ExpectSubquerySObject string   `yaml:"expectSubquerySObject,omitempty"`
	ExpectSubqueryFields  []string `yaml:"expectSubqueryFields,omitempty"`
	ExpectSemiJoinCount   *int     `yaml:"expectSemiJoinCount,omitempty"`
	ExpectSemiJoinSObject string   `yaml:"expectSemiJoinSObject,omitempty"`

	// Validation expectations
	ExpectValid               *bool  `yaml:"expectValid,omitempty"`
	ExpectSyntaxError         bool   `yaml:"expectSyntaxError,omitempty"`
	ExpectSchemaErrorCount    *int   `yaml:"expectSchemaErrorCount,omitempty"`
	ExpectSchemaErrorType     string `yaml:"expectSchemaErrorType,omitempty"`
	ExpectSchemaErrorContains string `yaml:"expectSchemaErrorContains,omitempty"`
	ExpectSuggestionContains  string `yaml:"expectSuggestionContains,omitempty"`

	// Warning expectations
	ExpectWarningCount    *int   `yaml:"expectWarningCount,omitempty"`
	ExpectWarningType     string `yaml:"expectWarningType,omitempty"`
	ExpectWarningSeverity string `yaml:"expectWarningSeverity,omitempty"`
	ExpectWarningContains string `yaml:"expectWarningContains,omitempty"`
}

// FixtureFile represents the entire fixture file structure
type FixtureFile struct {
	Schemas map[string]FixtureSchema `yaml:"schemas"`
	Tests   []AnalyzeFixture         `yaml:"tests"`
}

func loadFixtures(t *testing.T) (*FixtureFile, error) {
	data, err := os.ReadFile("testdata/analyze_fixtures.yaml")
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

func TestAnalyzeFixtures(t *testing.T) {
	ff, err := loadFixtures(t)
	if err != nil {
		t.Fatalf("Failed to load fixtures: %v", err)
	}

	for _, f := range ff.Tests {
		t.Run(f.Name, func(t *testing.T) {
			opts := DefaultOptions()
			if f.SchemaRef != "" {
				fs, ok := ff.Schemas[f.SchemaRef]
				if !ok {
					t.Fatalf("Schema reference %q not found", f.SchemaRef)
				}
				opts.Provider = buildCatalog(&fs)
			}
			if f.Options != nil {
				opts.WarnOnNoLimit = f.Options.WarnOnNoLimit
				opts.WarnOnFieldsAll = f.Options.WarnOnFieldsAll
				opts.LargeLimitThreshold = f.Options.LargeLimitThreshold
			}

			result, err := Analyze(context.Background(), f.Query, opts)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			t.Logf("Query: %s", f.Query)
			refs := result.References
			t.Logf("Refs: sobject=%q alias=%q fields=%v functions=%v", refs.SObject, refs.Alias, refs.Fields, refs.Functions)
			if len(result.SyntaxErrors) > 0 {
				t.Logf("Syntax errors: %d", len(result.SyntaxErrors))
			}
			for _, e := range result.SchemaErrors {
				t.Logf("  schema error %s: %s (suggestion: %s)", e.Type, e.Message, e.Suggestion)
			}
			for _, w := range result.Warnings {
				t.Logf("  warning %s [%s]: %s", w.Type, w.Severity, w.Message)
			}

			if f.ExpectSyntaxError && len(result.SyntaxErrors) == 0 {
				t.Error("Expected syntax error but got none")
			}

			if f.ExpectValid != nil && result.IsValid != *f.ExpectValid {
				t.Errorf("IsValid = %v, want %v", result.IsValid, *f.ExpectValid)
			}

			if f.ExpectSObject != "" && refs.SObject != f.ExpectSObject {
				t.Errorf("SObject = %q, want %q", refs.SObject, f.ExpectSObject)
			}

			if f.ExpectAlias != "" && refs.Alias != f.ExpectAlias {
				t.Errorf("Alias = %q, want %q", refs.Alias, f.ExpectAlias)
			}

			if len(f.ExpectFields) > 0 {
				checkStringSlice(t, "Fields", refs.Fields, f.ExpectFields)
			}
			if len(f.ExpectSelectFields) > 0 {
				checkStringSlice(t, "SelectFields", refs.SelectFields, f.ExpectSelectFields)
			}
			if len(f.ExpectWhereFields) > 0 {
				checkStringSlice(t, "WhereFields", refs.WhereFields, f.ExpectWhereFields)
			}
			if len(f.ExpectGroupByFields) > 0 {
				checkStringSlice(t, "GroupByFields", refs.GroupByFields, f.ExpectGroupByFields)
			}
			if len(f.ExpectHavingFields) > 0 {
				checkStringSlice(t, "HavingFields", refs.HavingFields, f.ExpectHavingFields)
			}
			if len(f.ExpectOrderByFields) > 0 {
				checkStringSlice(t, "OrderByFields", refs.OrderByFields, f.ExpectOrderByFields)
			}
			if len(f.ExpectFunctions) > 0 {
				checkStringSlice(t, "Functions", refs.Functions, f.ExpectFunctions)
			}
			if len(f.ExpectBindVars) > 0 {
				checkStringSlice(t, "BindVariables", refs.BindVariables, f.ExpectBindVars)
			}
			if len(f.ExpectMissingFields) > 0 {
				checkMissing(t, "Fields", refs.Fields, f.ExpectMissingFields)
			}

			if f.ExpectLimit != nil && refs.Limit != *f.ExpectLimit {
				t.Errorf("Limit = %d, want %d", refs.Limit, *f.ExpectLimit)
			}
			if f.ExpectOffset != nil && refs.Offset != *f.ExpectOffset {
				t.Errorf("Offset = %d, want %d", refs.Offset, *f.ExpectOffset)
			}

			if f.ExpectSubqueryCount != nil && len(refs.Subqueries) != *f.ExpectSubqueryCount {
				t.Errorf("Subquery count = %d, want %d", len(refs.Subqueries), *f.ExpectSubqueryCount)
			}
			if f.ExpectSubquerySObject != "" {
				if len(refs.Subqueries) == 0 {
					t.Error("Expected a subquery but got none")
				} else {
					sub := refs.Subqueries[0]
					if sub.SObject != f.ExpectSubquerySObject {
						t.Errorf("Subquery SObject = %q, want %q", sub.SObject, f.ExpectSubquerySObject)
					}
					if sub.Level != refs.Level+1 {
						t.Errorf("Subquery Level = %d, want %d", sub.Level, refs.Level+1)
					}
					if len(f.ExpectSubqueryFields) > 0 {
						checkStringSlice(t, "Subquery fields", sub.Fields, f.ExpectSubqueryFields)
					}
				}
			}
			if f.ExpectSemiJoinCount != nil && len(refs.SemiJoins) != *f.ExpectSemiJoinCount {
				t.Errorf("Semi-join count = %d, want %d", len(refs.SemiJoins), *f.ExpectSemiJoinCount)
			}
			if f.ExpectSemiJoinSObject != "" {
				if len(refs.SemiJoins) == 0 {
					t.Error("Expected a semi-join but got none")
				} else if refs.SemiJoins[0].SObject != f.ExpectSemiJoinSObject {
					t.Errorf("Semi-join SObject = %q, want %q", refs.SemiJoins[0].SObject, f.ExpectSemiJoinSObject)
				}
			}

			if f.ExpectSchemaErrorCount != nil && len(result.SchemaErrors) != *f.ExpectSchemaErrorCount {
				t.Errorf("SchemaError count = %d, want %d", len(result.SchemaErrors), *f.ExpectSchemaErrorCount)
			}

			if f.ExpectSchemaErrorType != "" {
				found := false
				for _, e := range result.SchemaErrors {
					if string(e.Type) != f.ExpectSchemaErrorType {
						continue
					}
					found = true
					if f.ExpectSchemaErrorContains != "" && !strings.Contains(e.Message, f.ExpectSchemaErrorContains) {
						t.Errorf("Schema error message %q does not contain %q", e.Message, f.ExpectSchemaErrorContains)
					}
					if f.ExpectSuggestionContains != "" && !strings.Contains(e.Suggestion, f.ExpectSuggestionContains) {
						t.Errorf("Suggestion %q does not contain %q", e.Suggestion, f.ExpectSuggestionContains)
					}
					break
				}
				if !found {
					t.Errorf("Expected schema error of type %q but not found", f.ExpectSchemaErrorType)
				}
			}

			if f.ExpectWarningCount != nil && len(result.Warnings) != *f.ExpectWarningCount {
				t.Errorf("Warning count = %d, want %d", len(result.Warnings), *f.ExpectWarningCount)
			}

			if f.ExpectWarningType != "" {
				found := false
				for _, w := range result.Warnings {
					if string(w.Type) != f.ExpectWarningType {
						continue
					}
					found = true
					if f.ExpectWarningSeverity != "" && string(w.Severity) != f.ExpectWarningSeverity {
						t.Errorf("Warning severity = %q, want %q", w.Severity, f.ExpectWarningSeverity)
					}
					if f.ExpectWarningContains != "" && !strings.Contains(w.Message, f.ExpectWarningContains) {
						t.Errorf("Warning message %q does not contain %q", w.Message, f.ExpectWarningContains)
					}
					break
				}
				if !found {
					t.Errorf("Expected warning of type %q but not found", f.ExpectWarningType)
				}
			}
		})
	}
}

func checkStringSlice(t *testing.T, name string, got, want []string) {
	t.Helper()

	// All expected items must be present; order does not matter.
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s missing expected item %q, got %v", name, w, got)
		}
	}
}

func checkMissing(t *testing.T, name string, got, missing []string) {
	t.Helper()

	for _, m := range missing {
		for _, g := range got {
			if strings.EqualFold(g, m) {
				t.Errorf("%s unexpectedly contains %q", name, m)
			}
		}
	}
}

func TestExtractReferencesShape(t *testing.T) {
	refs, errs := ExtractReferences("SELECT Name, COUNT(Id) FROM Opportunity WHERE Amount > :floor GROUP BY Name HAVING COUNT(Id) > 2 ORDER BY Name LIMIT 10 OFFSET 20")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	equalStrings(t, "SelectFields", refs.SelectFields, []string{"Name", "Id"})
	equalStrings(t, "WhereFields", refs.WhereFields, []string{"Amount"})
	equalStrings(t, "GroupByFields", refs.GroupByFields, []string{"Name"})
	equalStrings(t, "HavingFields", refs.HavingFields, []string{"Id"})
	equalStrings(t, "OrderByFields", refs.OrderByFields, []string{"Name"})
	equalStrings(t, "Fields", refs.Fields, []string{"Name", "Id", "Amount"})
	equalStrings(t, "Functions", refs.Functions, []string{"count"})
	equalStrings(t, "BindVariables", refs.BindVariables, []string{"floor"})

	if refs.Limit != 10 {
		t.Errorf("Limit = %d, want 10", refs.Limit)
	}
	if refs.Offset != 20 {
		t.Errorf("Offset = %d, want 20", refs.Offset)
	}
	if len(refs.FunctionCalls) != 2 {
		t.Errorf("FunctionCalls = %d, want 2", len(refs.FunctionCalls))
	}
}

func TestFunctionCallPositions(t *testing.T) {
	query := "SELECT Id FROM Account ORDER BY DISTANCE(BillingAddress, GEOLOCATION(37.7, -122.4), 'mi')"
	refs, errs := ExtractReferences(query)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(refs.FunctionCalls) != 2 {
		t.Fatalf("FunctionCalls = %d, want 2", len(refs.FunctionCalls))
	}

	distance := refs.FunctionCalls[0]
	if distance.Name != "distance" || distance.ArgCount != 3 {
		t.Errorf("first call = %s/%d, want distance/3", distance.Name, distance.ArgCount)
	}
	if want := strings.Index(query, "DISTANCE"); distance.Position.Offset != want {
		t.Errorf("distance offset = %d, want %d", distance.Position.Offset, want)
	}

	geo := refs.FunctionCalls[1]
	if geo.Name != "geolocation" || geo.ArgCount != 2 {
		t.Errorf("second call = %s/%d, want geolocation/2", geo.Name, geo.ArgCount)
	}
	if want := strings.Index(query, "GEOLOCATION"); geo.Position.Offset != want {
		t.Errorf("geolocation offset = %d, want %d", geo.Position.Offset, want)
	}

	equalStrings(t, "OrderByFields", refs.OrderByFields, []string{"BillingAddress"})
}

func equalStrings(t *testing.T, name string, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Errorf("%s = %v, want %v", name, got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

func TestValidateFunctionCallsDirect(t *testing.T) {
	tests := []struct {
		name     string
		call     *FunctionCall
		wantType SchemaErrorType
	}{
		{"count with no args", &FunctionCall{Name: "count", ArgCount: 0}, ""},
		{"count with one arg", &FunctionCall{Name: "count", ArgCount: 1}, ""},
		{"count with two args", &FunctionCall{Name: "count", ArgCount: 2}, ErrFunctionArgCount},
		{"sum needs an arg", &FunctionCall{Name: "sum", ArgCount: 0}, ErrFunctionArgCount},
		{"geolocation exact", &FunctionCall{Name: "geolocation", ArgCount: 2}, ""},
		{"unknown function", &FunctionCall{Name: "median", ArgCount: 1}, ErrUnknownFunction},
		{"fields bad group", &FunctionCall{Name: "fields", ArgCount: 1, Args: "Everything"}, ErrFunctionArgCount},
		{"fields standard ok", &FunctionCall{Name: "fields", ArgCount: 1, Args: "STANDARD"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateFunctionCalls([]*FunctionCall{tt.call})
			if tt.wantType == "" {
				if len(errs) != 0 {
					t.Errorf("got error %v, want none", errs[0].Message)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Type != tt.wantType {
				t.Errorf("error type = %q, want %q", errs[0].Type, tt.wantType)
			}
		})
	}
}

func TestGetFunctionSignature(t *testing.T) {
	sig := GetFunctionSignature("COUNT")
	if sig == nil {
		t.Fatal("GetFunctionSignature(COUNT) = nil")
	}
	if sig.MinArgs != 0 || sig.MaxArgs != 1 {
		t.Errorf("count arity = %d-%d, want 0-1", sig.MinArgs, sig.MaxArgs)
	}
	if GetFunctionSignature("nope") != nil {
		t.Error("GetFunctionSignature(nope) should be nil")
	}
}

// failingProvider resolves names but cannot describe objects.
type failingProvider struct{}

func (failingProvider) SObjectNames(ctx context.Context, partial string) ([]string, error) {
	return []string{"Account"}, nil
}

func (failingProvider) Fields(ctx context.Context, sobject string) ([]*metadata.FieldDescriptor, error) {
	return nil, errors.New("describe timeout")
}

func (failingProvider) Relationships(ctx context.Context, sobject string) ([]*metadata.RelationshipDescriptor, error) {
	return nil, errors.New("describe timeout")
}

func TestProviderFailureReportedOnce(t *testing.T) {
	result, err := Analyze(context.Background(), "SELECT Id, Name FROM Account", &AnalyzeOptions{Provider: failingProvider{}})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	unavailable := result.ErrorsOfType(ErrMetadataUnavailable)
	if len(unavailable) != 1 {
		t.Fatalf("unavailable errors = %d, want 1", len(unavailable))
	}
	if !strings.Contains(unavailable[0].Message, "describe timeout") {
		t.Errorf("message %q should mention the provider error", unavailable[0].Message)
	}
}

// canceledProvider surfaces the context error like a network client would.
type canceledProvider struct{}

func (canceledProvider) SObjectNames(ctx context.Context, partial string) ([]string, error) {
	return nil, ctx.Err()
}

func (canceledProvider) Fields(ctx context.Context, sobject string) ([]*metadata.FieldDescriptor, error) {
	return nil, ctx.Err()
}

func (canceledProvider) Relationships(ctx context.Context, sobject string) ([]*metadata.RelationshipDescriptor, error) {
	return nil, ctx.Err()
}

func TestAnalyzeContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, "SELECT Id FROM Account", &AnalyzeOptions{Provider: canceledProvider{}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzeNilOptions(t *testing.T) {
	result, err := Analyze(context.Background(), "SELECT Id FROM Account", nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !result.IsValid {
		t.Error("query should be valid")
	}
	if result.HasSchemaErrors() {
		t.Errorf("unexpected schema errors: %v", result.AllErrors())
	}
	if len(result.WarningsOfType(WarnNoWhereClause)) != 1 {
		t.Error("expected the unfiltered scan warning")
	}
}
