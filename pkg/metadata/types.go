// Package metadata provides Salesforce org metadata for query completion and
// validation. The descriptor types can be populated from various sources
// (live describe calls, JSON, YAML) and are consumed through the Provider
// interface so the completion engine never depends on where they came from.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by catalog lookups for unknown SObjects.
var ErrNotFound = errors.New("sobject not found")

// Provider supplies org metadata. Implementations are typically
// network-backed, cacheable, and fallible; callers treat results as
// possibly stale and every call as possibly slow.
type Provider interface {
	// SObjectNames returns queryable SObject API names matching the given
	// prefix. An empty partial returns all names.
	SObjectNames(ctx context.Context, partial string) ([]string, error)

	// Fields returns the field descriptors of an SObject.
	Fields(ctx context.Context, sobject string) ([]*FieldDescriptor, error)

	// Relationships returns the child relationships of an SObject.
	Relationships(ctx context.Context, sobject string) ([]*RelationshipDescriptor, error)
}

// FieldDescriptor describes one queryable field on an SObject.
type FieldDescriptor struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Type   string `json:"type" yaml:"type"` // id, string, reference, currency, ...
	Custom bool   `json:"custom,omitempty" yaml:"custom,omitempty"`

	// RelationshipName is the parent-traversal name for reference fields
	// (Owner for OwnerId, Account__r for Account__c). Empty for plain fields.
	RelationshipName string `json:"relationshipName,omitempty" yaml:"relationshipName,omitempty"`

	// ReferenceTo lists the SObject types a reference field points at.
	ReferenceTo []string `json:"referenceTo,omitempty" yaml:"referenceTo,omitempty"`
}

// IsReference reports whether the field is a parent relationship field.
func (f *FieldDescriptor) IsReference() bool {
	return f != nil && f.RelationshipName != ""
}

// RelationshipDescriptor describes one child relationship usable as a
// nested subquery target.
type RelationshipDescriptor struct {
	// Name is the child relationship name used after FROM in a subquery
	// (Contacts, Opportunities, Invoices__r).
	Name string `json:"name" yaml:"name"`

	// ChildSObject is the SObject type of the child records.
	ChildSObject string `json:"childSObject" yaml:"childSObject"`

	// Field is the foreign-key field on the child pointing back at the
	// parent (AccountId on Contact).
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
}

// SObject describes one Salesforce object with its fields and child
// relationships. Map keys are lowercased API names; the order slices
// preserve definition order.
type SObject struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Custom bool   `json:"custom,omitempty" yaml:"custom,omitempty"`

	Fields     map[string]*FieldDescriptor `json:"fields" yaml:"fields"`
	FieldOrder []string                    `json:"fieldOrder,omitempty" yaml:"fieldOrder,omitempty"`

	Relationships     map[string]*RelationshipDescriptor `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	RelationshipOrder []string                           `json:"relationshipOrder,omitempty" yaml:"relationshipOrder,omitempty"`
}

// Catalog is an in-memory metadata source. It implements Provider and is
// the backing store for file-based and test setups.
type Catalog struct {
	SObjects map[string]*SObject `json:"sobjects" yaml:"sobjects"`
}

// Lookup methods. All matching is case-insensitive, mirroring how
// Salesforce resolves API names.

// SObject returns an object by API name, or nil if not found.
func (c *Catalog) SObject(name string) *SObject {
	if c == nil || c.SObjects == nil {
		return nil
	}
	return c.SObjects[strings.ToLower(name)]
}

// Names returns all SObject API names sorted alphabetically.
func (c *Catalog) Names() []string {
	if c == nil || c.SObjects == nil {
		return nil
	}
	names := make([]string, 0, len(c.SObjects))
	for _, o := range c.SObjects {
		names = append(names, o.Name)
	}
	sort.Strings(names)
	return names
}

// Field returns a field by API name, or nil if not found.
func (o *SObject) Field(name string) *FieldDescriptor {
	if o == nil || o.Fields == nil {
		return nil
	}
	return o.Fields[strings.ToLower(name)]
}

// Relationship returns a child relationship by name, or nil if not found.
func (o *SObject) Relationship(name string) *RelationshipDescriptor {
	if o == nil || o.Relationships == nil {
		return nil
	}
	return o.Relationships[strings.ToLower(name)]
}

// ReferenceField returns the reference field whose relationship name
// matches (Owner resolves to OwnerId), or nil if not found.
func (o *SObject) ReferenceField(relationshipName string) *FieldDescriptor {
	if o == nil {
		return nil
	}
	for _, name := range o.FieldOrder {
		f := o.Field(name)
		if f != nil && strings.EqualFold(f.RelationshipName, relationshipName) {
			return f
		}
	}
	return nil
}

// AllFields returns the fields in definition order.
func (o *SObject) AllFields() []*FieldDescriptor {
	if o == nil {
		return nil
	}
	fields := make([]*FieldDescriptor, 0, len(o.FieldOrder))
	for _, name := range o.FieldOrder {
		if f := o.Field(name); f != nil {
			fields = append(fields, f)
		}
	}
	return fields
}

// AllRelationships returns the child relationships in definition order.
func (o *SObject) AllRelationships() []*RelationshipDescriptor {
	if o == nil {
		return nil
	}
	rels := make([]*RelationshipDescriptor, 0, len(o.RelationshipOrder))
	for _, name := range o.RelationshipOrder {
		if r := o.Relationship(name); r != nil {
			rels = append(rels, r)
		}
	}
	return rels
}

// FieldNames returns the field API names in definition order.
func (o *SObject) FieldNames() []string {
	if o == nil {
		return nil
	}
	names := make([]string, 0, len(o.FieldOrder))
	for _, f := range o.AllFields() {
		names = append(names, f.Name)
	}
	return names
}

// Provider implementation.

// SObjectNames returns catalog object names with the given prefix.
func (c *Catalog) SObjectNames(_ context.Context, partial string) ([]string, error) {
	prefix := strings.ToLower(partial)
	var names []string
	for _, name := range c.Names() {
		if prefix == "" || strings.HasPrefix(strings.ToLower(name), prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// Fields returns the fields of the named SObject.
func (c *Catalog) Fields(_ context.Context, sobject string) ([]*FieldDescriptor, error) {
	o := c.SObject(sobject)
	if o == nil {
		return nil, fmt.Errorf("%q: %w", sobject, ErrNotFound)
	}
	return o.AllFields(), nil
}

// Relationships returns the child relationships of the named SObject.
func (c *Catalog) Relationships(_ context.Context, sobject string) ([]*RelationshipDescriptor, error) {
	o := c.SObject(sobject)
	if o == nil {
		return nil, fmt.Errorf("%q: %w", sobject, ErrNotFound)
	}
	return o.AllRelationships(), nil
}

// ChildSObject resolves a child relationship name on a parent to the child
// SObject type, or "" if the relationship is unknown.
func (c *Catalog) ChildSObject(parent, relationship string) string {
	if r := c.SObject(parent).Relationship(relationship); r != nil {
		return r.ChildSObject
	}
	return ""
}
