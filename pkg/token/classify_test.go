package token

import "testing"

func TestHighlight(t *testing.T) {
	ctx := &Context{
		SObjects:      []string{"Account", "Contact"},
		Fields:        []string{"Id", "Name", "AnnualRevenue"},
		Relationships: []string{"Contacts", "Owner"},
	}

	tests := []struct {
		name  string
		input string
		ctx   *Context
		want  map[string]Semantic // token text -> expected type
	}{
		{
			name:  "keywords and names",
			input: "SELECT Id, Name FROM Account",
			ctx:   ctx,
			want: map[string]Semantic{
				"SELECT":  SemanticKeyword,
				"Id":      SemanticField,
				"Name":    SemanticField,
				"FROM":    SemanticKeyword,
				"Account": SemanticSObject,
				",":       SemanticPunctuation,
			},
		},
		{
			name:  "function call",
			input: "SELECT COUNT(Id) FROM Account",
			ctx:   ctx,
			want: map[string]Semantic{
				"COUNT": SemanticFunction,
				"Id":    SemanticField,
			},
		},
		{
			name:  "relationship in subquery",
			input: "SELECT Id, (SELECT Id FROM Contacts) FROM Account",
			ctx:   ctx,
			want: map[string]Semantic{
				"Contacts": SemanticRelationship,
			},
		},
		{
			name:  "operators and literals",
			input: "WHERE AnnualRevenue >= 100.5 AND Name != 'Acme'",
			ctx:   ctx,
			want: map[string]Semantic{
				">=":     SemanticOperator,
				"!=":     SemanticOperator,
				"100.5":  SemanticNumber,
				"'Acme'": SemanticString,
				"AND":    SemanticKeyword,
			},
		},
		{
			name:  "date literal keyword",
			input: "WHERE CreatedDate = TODAY",
			ctx:   nil,
			want: map[string]Semantic{
				"TODAY": SemanticDate,
			},
		},
		{
			name:  "iso date",
			input: "WHERE CreatedDate >= 2024-01-31",
			ctx:   nil,
			want: map[string]Semantic{
				"2024-01-31": SemanticDate,
			},
		},
		{
			name:  "no context falls back to identifier",
			input: "SELECT Id FROM Account",
			ctx:   nil,
			want: map[string]Semantic{
				"Id":      SemanticIdentifier,
				"Account": SemanticIdentifier,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.input, tt.ctx)
			byText := make(map[string]Semantic, len(got))
			for _, ht := range got {
				byText[ht.Text] = ht.Type
			}
			for text, want := range tt.want {
				if byText[text] != want {
					t.Errorf("%q classified as %v, want %v", text, byText[text], want)
				}
			}
		})
	}
}

func TestHighlightSkipsWhitespace(t *testing.T) {
	got := Highlight("SELECT  Id", nil)
	for _, ht := range got {
		if ht.Text == "  " {
			t.Errorf("whitespace token %q should be skipped", ht.Text)
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d tokens, want 2", len(got))
	}
}

func TestHighlightEmpty(t *testing.T) {
	if got := Highlight("", nil); got != nil {
		t.Errorf("Highlight(\"\") = %v, want nil", got)
	}
}
