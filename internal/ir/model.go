package ir

import "slices"

// FieldKind distinguishes plain attributes from the two relation kinds.
type FieldKind string

const (
	// FieldAttribute is a scalar value stored on the object itself.
	FieldAttribute FieldKind = "attribute"

	// FieldReference is a single-valued relation to another class.
	FieldReference FieldKind = "reference"

	// FieldCollection is a multi-valued relation to another class.
	FieldCollection FieldKind = "collection"
)

// FieldDescriptor describes one declared field of a class.
type FieldDescriptor struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
	// Type is the scalar type name for attributes and the target class
	// name for references and collections.
	Type string `json:"type"`
}

// IsReference reports whether the field is a single-valued relation.
func (f FieldDescriptor) IsReference() bool { return f.Kind == FieldReference }

// IsCollection reports whether the field is a multi-valued relation.
func (f FieldDescriptor) IsCollection() bool { return f.Kind == FieldCollection }

// IsRelation reports whether the field links to another class.
func (f FieldDescriptor) IsRelation() bool { return f.IsReference() || f.IsCollection() }

// ClassDescriptor describes a class of the domain model.
type ClassDescriptor struct {
	Name    string            `json:"name"`
	Extends []string          `json:"extends,omitempty"`
	Fields  []FieldDescriptor `json:"fields"` // declaration order
}

// Field returns a field declared directly on this class (not inherited).
func (c *ClassDescriptor) Field(name string) (FieldDescriptor, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Model is a read-only, pre-loaded domain model.
//
// Classes keep their declaration order; that order is "model order" for
// every listing the model produces (subclasses, class names).
type Model struct {
	Name    string            `json:"name"`
	Classes []ClassDescriptor `json:"classes"`

	index map[string]int
}

// NewModel builds a model from classes in declaration order.
// The classes slice is copied.
func NewModel(name string, classes []ClassDescriptor) *Model {
	m := &Model{
		Name:    name,
		Classes: slices.Clone(classes),
		index:   make(map[string]int, len(classes)),
	}
	for i, c := range m.Classes {
		if _, dup := m.index[c.Name]; !dup {
			m.index[c.Name] = i
		}
	}
	return m
}

// Class returns the descriptor for an unqualified class name.
func (m *Model) Class(name string) (*ClassDescriptor, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return &m.Classes[i], true
}

// HasClass reports whether the model declares the class.
func (m *Model) HasClass(name string) bool {
	_, ok := m.index[name]
	return ok
}

// ClassNames returns every class name in model order.
func (m *Model) ClassNames() []string {
	names := make([]string, len(m.Classes))
	for i, c := range m.Classes {
		names[i] = c.Name
	}
	return names
}

// Superclasses returns every direct and indirect superclass of name,
// nearest first. Unknown names and inheritance cycles are tolerated.
func (m *Model) Superclasses(name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cld, ok := m.Class(cur)
		if !ok {
			continue
		}
		for _, sup := range cld.Extends {
			if seen[sup] {
				continue
			}
			seen[sup] = true
			out = append(out, sup)
			queue = append(queue, sup)
		}
	}
	return out
}

// Subclasses returns every direct and indirect subclass of name in model
// order. The class itself is never included.
func (m *Model) Subclasses(name string) []string {
	var out []string
	for _, c := range m.Classes {
		if c.Name == name {
			continue
		}
		if slices.Contains(m.Superclasses(c.Name), name) {
			out = append(out, c.Name)
		}
	}
	return out
}

// Field looks a field up on class, falling back to inherited fields.
func (m *Model) Field(class, field string) (FieldDescriptor, bool) {
	cld, ok := m.Class(class)
	if !ok {
		return FieldDescriptor{}, false
	}
	if fd, ok := cld.Field(field); ok {
		return fd, true
	}
	for _, sup := range m.Superclasses(class) {
		if supCld, ok := m.Class(sup); ok {
			if fd, ok := supCld.Field(field); ok {
				return fd, true
			}
		}
	}
	return FieldDescriptor{}, false
}
