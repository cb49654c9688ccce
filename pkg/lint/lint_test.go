package lint

import (
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErrors bool
	}{
		{
			name:       "valid query",
			input:      "SELECT Id, Name FROM Account",
			wantErrors: false,
		},
		{
			name:       "typo in keyword",
			input:      "SELEC Id FROM Account",
			wantErrors: true,
		},
		{
			name:       "missing from target",
			input:      "SELECT Id FROM",
			wantErrors: true,
		},
		{
			name:       "statement terminator",
			input:      "SELECT Id FROM Account;",
			wantErrors: true,
		},
		{
			name:       "nested subquery",
			input:      "SELECT Id, (SELECT LastName FROM Contacts) FROM Account",
			wantErrors: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := Check(tt.input)
			if errors.HasErrors() != tt.wantErrors {
				t.Errorf("HasErrors() = %v, want %v", errors.HasErrors(), tt.wantErrors)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("SELECT Id FROM Account WHERE Name = 'Acme'") {
		t.Error("valid query should return true")
	}

	if IsValid("INVALID QUERY") {
		t.Error("invalid query should return false")
	}
}

func TestAnalyze(t *testing.T) {
	result := Analyze("SELECT Id FROM Account WHERE Id = '001000000000001'")

	if !result.IsValid {
		t.Error("Expected valid result")
	}

	if result.Errors.HasErrors() {
		t.Error("Expected no errors")
	}

	if result.Depth != 0 {
		t.Errorf("Depth = %d, want 0", result.Depth)
	}
}

func TestAnalyzeSubqueryDepth(t *testing.T) {
	result := Analyze("SELECT Id, (SELECT LastName FROM Contacts) FROM Account")

	if !result.IsValid {
		t.Error("Expected valid result")
	}

	if result.Depth != 1 {
		t.Errorf("Depth = %d, want 1", result.Depth)
	}
}

func TestAnalyzeInvalid(t *testing.T) {
	result := Analyze("SELEC Id FROM Account")

	if result.IsValid {
		t.Error("Expected invalid result")
	}

	if !result.Errors.HasErrors() {
		t.Error("Expected errors")
	}

	// Check that error has position
	err := result.Errors.First()
	if err.Line != 1 {
		t.Errorf("Line = %d, want 1", err.Line)
	}
}

func TestAnalyzeNoQuery(t *testing.T) {
	result := Analyze("LIMIT 5")

	if result.IsValid {
		t.Error("Expected invalid result")
	}

	if result.Depth != -1 {
		t.Errorf("Depth = %d, want -1", result.Depth)
	}
}
