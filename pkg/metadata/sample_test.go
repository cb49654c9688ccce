package metadata

import (
	"context"
	"testing"
)

func TestSampleCatalog(t *testing.T) {
	c := SampleCatalog()
	ctx := context.Background()

	names, err := c.SObjectNames(ctx, "")
	if err != nil {
		t.Fatalf("SObjectNames() error = %v", err)
	}
	for _, want := range []string{"Account", "Contact", "Opportunity", "Lead", "Case", "User"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("SObjectNames() missing %q", want)
		}
	}

	// Case-insensitive lookup through the Provider interface.
	fields, err := c.Fields(ctx, "account")
	if err != nil {
		t.Fatalf("Fields(account) error = %v", err)
	}
	if len(fields) == 0 {
		t.Fatal("Fields(account) is empty")
	}

	owner := c.SObject("Account").Field("OwnerId")
	if owner == nil || !owner.IsReference() {
		t.Fatalf("Account.OwnerId = %+v, want reference field", owner)
	}
	if owner.RelationshipName != "Owner" || len(owner.ReferenceTo) == 0 || owner.ReferenceTo[0] != "User" {
		t.Errorf("Account.OwnerId relationship = %q -> %v, want Owner -> [User]", owner.RelationshipName, owner.ReferenceTo)
	}

	if got := c.ChildSObject("Account", "Contacts"); got != "Contact" {
		t.Errorf("ChildSObject(Account, Contacts) = %q, want %q", got, "Contact")
	}

	// Every relationship's child object and foreign key must exist, so the
	// catalog never sends completions down a dead end.
	for _, name := range c.Names() {
		o := c.SObject(name)
		for _, r := range o.AllRelationships() {
			child := c.SObject(r.ChildSObject)
			if child == nil {
				t.Errorf("%s.%s points at unknown SObject %q", name, r.Name, r.ChildSObject)
				continue
			}
			if r.Field != "" && child.Field(r.Field) == nil {
				t.Errorf("%s.%s foreign key %s.%s does not exist", name, r.Name, r.ChildSObject, r.Field)
			}
		}
	}
}
