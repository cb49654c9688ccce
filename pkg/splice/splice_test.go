package splice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/queryforce/soqlkit/pkg/metadata"
)

func field(name string) *metadata.FieldDescriptor {
	return &metadata.FieldDescriptor{Name: name, Type: "string"}
}

func relationship(name string) *metadata.RelationshipDescriptor {
	return &metadata.RelationshipDescriptor{Name: name, ChildSObject: name, Field: "ParentId"}
}

func TestFieldAppend(t *testing.T) {
	got, err := Field("SELECT Id FROM Account", field("Name"))
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	want := "SELECT Id, Name FROM Account"
	if got != want {
		t.Errorf("Got %q, want %q", got, want)
	}
}

func TestRelationshipCreatesSubquery(t *testing.T) {
	got, err := Relationship("SELECT Id FROM Account", relationship("Contacts"))
	if err != nil {
		t.Fatalf("Relationship: %v", err)
	}
	want := "SELECT Id, (SELECT Id FROM Contacts) FROM Account"
	if got != want {
		t.Errorf("Got %q, want %q", got, want)
	}
}

func TestFieldInto(t *testing.T) {
	tests := []struct {
		name  string
		query string
		scope string
		field string
		want  string
	}{
		{
			name:  "outer list by object name",
			query: "SELECT Id FROM Account",
			scope: "Account",
			field: "Name",
			want:  "SELECT Id, Name FROM Account",
		},
		{
			name:  "outer list by alias",
			query: "SELECT Id FROM Account a",
			scope: "a",
			field: "Name",
			want:  "SELECT Id, Name FROM Account a",
		},
		{
			name:  "subquery list by relationship name",
			query: "SELECT Id, (SELECT Id FROM Contacts) FROM Account",
			scope: "Contacts",
			field: "Email",
			want:  "SELECT Id, (SELECT Id, Email FROM Contacts) FROM Account",
		},
		{
			name:  "dotted parent path",
			query: "SELECT Id FROM Contact",
			scope: "",
			field: "Account.Name",
			want:  "SELECT Id, Account.Name FROM Contact",
		},
		{
			name:  "surrounding text untouched",
			query: "SELECT  Id ,  Name   FROM  Account",
			scope: "",
			field: "Industry",
			want:  "SELECT  Id ,  Name, Industry   FROM  Account",
		},
		{
			name:  "trailing clauses untouched",
			query: "SELECT Id FROM Account WHERE Industry != null LIMIT 10",
			scope: "",
			field: "Name",
			want:  "SELECT Id, Name FROM Account WHERE Industry != null LIMIT 10",
		},
		{
			name:  "appends after a subquery item",
			query: "SELECT Id, (SELECT Id FROM Contacts) FROM Account",
			scope: "",
			field: "Name",
			want:  "SELECT Id, (SELECT Id FROM Contacts), Name FROM Account",
		},
		{
			name:  "already present leaves text unchanged",
			query: "SELECT Id, Name FROM Account",
			scope: "",
			field: "Name",
			want:  "SELECT Id, Name FROM Account",
		},
		{
			name:  "already present matches case-insensitively",
			query: "SELECT id, name FROM account",
			scope: "",
			field: "Name",
			want:  "SELECT id, name FROM account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FieldInto(tt.query, tt.scope, field(tt.field))
			if err != nil {
				t.Fatalf("FieldInto: %v", err)
			}
			if got != tt.want {
				t.Errorf("Got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestRelationshipInto(t *testing.T) {
	tests := []struct {
		name  string
		query string
		scope string
		rel   string
		want  string
	}{
		{
			name:  "nested subquery inside existing subquery",
			query: "SELECT Id, (SELECT Id FROM Contacts) FROM Account",
			scope: "Contacts",
			rel:   "Cases",
			want:  "SELECT Id, (SELECT Id, (SELECT Id FROM Cases) FROM Contacts) FROM Account",
		},
		{
			name:  "existing subquery leaves text unchanged",
			query: "SELECT Id, (SELECT Id FROM Contacts) FROM Account",
			scope: "",
			rel:   "Contacts",
			want:  "SELECT Id, (SELECT Id FROM Contacts) FROM Account",
		},
		{
			name:  "existing subquery matches case-insensitively",
			query: "SELECT Id, (SELECT Id FROM contacts) FROM Account",
			scope: "",
			rel:   "Contacts",
			want:  "SELECT Id, (SELECT Id FROM contacts) FROM Account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RelationshipInto(tt.query, tt.scope, relationship(tt.rel))
			if err != nil {
				t.Fatalf("RelationshipInto: %v", err)
			}
			if got != tt.want {
				t.Errorf("Got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestSpliceRefusals(t *testing.T) {
	tests := []struct {
		name    string
		run     func() (string, error)
		wantErr error
	}{
		{
			name: "unparseable query",
			run: func() (string, error) {
				return Field("SELEC FRO Account", field("Name"))
			},
			wantErr: ErrUnparseable,
		},
		{
			name: "mid-edit query",
			run: func() (string, error) {
				return Field("SELECT Id, FROM Account", field("Name"))
			},
			wantErr: ErrUnparseable,
		},
		{
			name: "unknown scope",
			run: func() (string, error) {
				return FieldInto("SELECT Id FROM Account", "Opportunity", field("Name"))
			},
			wantErr: ErrNoTarget,
		},
		{
			name: "field name with injection payload",
			run: func() (string, error) {
				return Field("SELECT Id FROM Account", field("Name) FROM Account--"))
			},
			wantErr: ErrInvalidName,
		},
		{
			name: "nil field descriptor",
			run: func() (string, error) {
				return Field("SELECT Id FROM Account", nil)
			},
			wantErr: ErrInvalidName,
		},
		{
			name: "relationship name with whitespace",
			run: func() (string, error) {
				return Relationship("SELECT Id FROM Account", relationship("Contacts WHERE"))
			},
			wantErr: ErrInvalidName,
		},
		{
			name: "nil relationship descriptor",
			run: func() (string, error) {
				return Relationship("SELECT Id FROM Account", nil)
			},
			wantErr: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Error = %v, want %v", err, tt.wantErr)
			}
			if got != "" {
				t.Errorf("Got %q, want empty result on refusal", got)
			}
		})
	}
}

func TestRelationshipNestingLimit(t *testing.T) {
	query := "SELECT Id, (SELECT Id, (SELECT Id, (SELECT Id, (SELECT Id FROM L4) FROM L3) FROM L2) FROM L1) FROM Account"

	if _, err := RelationshipInto(query, "L4", relationship("L5")); !errors.Is(err, ErrNestingLimit) {
		t.Fatalf("Error = %v, want %v", err, ErrNestingLimit)
	}

	// One level up there is still room.
	got, err := RelationshipInto(query, "L3", relationship("Siblings"))
	if err != nil {
		t.Fatalf("RelationshipInto: %v", err)
	}
	want := "SELECT Id, (SELECT Id, (SELECT Id, (SELECT Id, (SELECT Id FROM L4), (SELECT Id FROM Siblings) FROM L3) FROM L2) FROM L1) FROM Account"
	if got != want {
		t.Errorf("Got  %q\nwant %q", got, want)
	}
}

func ExampleField() {
	out, _ := Field("SELECT Id FROM Account", &metadata.FieldDescriptor{Name: "Name", Type: "string"})
	fmt.Println(out)
	// Output: SELECT Id, Name FROM Account
}

func ExampleRelationship() {
	out, _ := Relationship("SELECT Id FROM Account", &metadata.RelationshipDescriptor{
		Name:         "Contacts",
		ChildSObject: "Contact",
		Field:        "AccountId",
	})
	fmt.Println(out)
	// Output: SELECT Id, (SELECT Id FROM Contacts) FROM Account
}
