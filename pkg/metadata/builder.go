package metadata

import (
	"sort"
	"strings"
)

func sortCaseInsensitive(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}

// NewCatalog creates a new empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		SObjects: make(map[string]*SObject),
	}
}

// AddSObject adds a new object to the catalog and returns it.
// If an object with the same name already exists, it returns the existing one.
func (c *Catalog) AddSObject(name string) *SObject {
	if c.SObjects == nil {
		c.SObjects = make(map[string]*SObject)
	}
	key := strings.ToLower(name)
	if o, exists := c.SObjects[key]; exists {
		return o
	}
	o := &SObject{
		Name:          name,
		Custom:        strings.HasSuffix(key, "__c"),
		Fields:        make(map[string]*FieldDescriptor),
		Relationships: make(map[string]*RelationshipDescriptor),
	}
	c.SObjects[key] = o
	return o
}

// WithLabel sets the object label.
func (o *SObject) WithLabel(label string) *SObject {
	o.Label = label
	return o
}

// AddField adds a field to the object and returns the object for chaining.
func (o *SObject) AddField(name, fieldType string) *SObject {
	o.addField(&FieldDescriptor{
		Name:   name,
		Type:   fieldType,
		Custom: strings.HasSuffix(strings.ToLower(name), "__c"),
	})
	return o
}

// AddLabeledField adds a field with a display label.
func (o *SObject) AddLabeledField(name, fieldType, label string) *SObject {
	o.addField(&FieldDescriptor{
		Name:   name,
		Type:   fieldType,
		Label:  label,
		Custom: strings.HasSuffix(strings.ToLower(name), "__c"),
	})
	return o
}

// AddReferenceField adds a lookup field with its parent-traversal
// relationship name (OwnerId with relationship Owner referencing User).
func (o *SObject) AddReferenceField(name, relationshipName string, referenceTo ...string) *SObject {
	o.addField(&FieldDescriptor{
		Name:             name,
		Type:             "reference",
		Custom:           strings.HasSuffix(strings.ToLower(name), "__c"),
		RelationshipName: relationshipName,
		ReferenceTo:      referenceTo,
	})
	return o
}

func (o *SObject) addField(f *FieldDescriptor) {
	if o.Fields == nil {
		o.Fields = make(map[string]*FieldDescriptor)
	}
	key := strings.ToLower(f.Name)
	if _, exists := o.Fields[key]; !exists {
		o.FieldOrder = append(o.FieldOrder, f.Name)
	}
	o.Fields[key] = f
}

// AddRelationship adds a child relationship (Contacts on Account, with
// Contact.AccountId as the foreign key) and returns the object for chaining.
func (o *SObject) AddRelationship(name, childSObject, field string) *SObject {
	if o.Relationships == nil {
		o.Relationships = make(map[string]*RelationshipDescriptor)
	}
	key := strings.ToLower(name)
	if _, exists := o.Relationships[key]; !exists {
		o.RelationshipOrder = append(o.RelationshipOrder, name)
	}
	o.Relationships[key] = &RelationshipDescriptor{
		Name:         name,
		ChildSObject: childSObject,
		Field:        field,
	}
	return o
}

// normalize rebuilds lookup keys and order slices after decoding from a
// file, tolerating hand-written catalogs that use canonical-case keys or
// omit the order slices.
func (c *Catalog) normalize() {
	if c == nil || c.SObjects == nil {
		return
	}
	objects := c.SObjects
	c.SObjects = make(map[string]*SObject, len(objects))
	for key, o := range objects {
		if o == nil {
			continue
		}
		if o.Name == "" {
			o.Name = key
		}
		o.normalize()
		c.SObjects[strings.ToLower(o.Name)] = o
	}
}

func (o *SObject) normalize() {
	fields := o.Fields
	o.Fields = make(map[string]*FieldDescriptor, len(fields))
	keepOrder := len(o.FieldOrder) == len(fields)
	if !keepOrder {
		o.FieldOrder = nil
	}
	for key, f := range fields {
		if f == nil {
			continue
		}
		if f.Name == "" {
			f.Name = key
		}
		if !keepOrder {
			o.FieldOrder = append(o.FieldOrder, f.Name)
		}
		o.Fields[strings.ToLower(f.Name)] = f
	}
	if !keepOrder {
		sortCaseInsensitive(o.FieldOrder)
	}

	rels := o.Relationships
	o.Relationships = make(map[string]*RelationshipDescriptor, len(rels))
	keepOrder = len(o.RelationshipOrder) == len(rels)
	if !keepOrder {
		o.RelationshipOrder = nil
	}
	for key, r := range rels {
		if r == nil {
			continue
		}
		if r.Name == "" {
			r.Name = key
		}
		if !keepOrder {
			o.RelationshipOrder = append(o.RelationshipOrder, r.Name)
		}
		o.Relationships[strings.ToLower(r.Name)] = r
	}
	if !keepOrder {
		sortCaseInsensitive(o.RelationshipOrder)
	}
}
