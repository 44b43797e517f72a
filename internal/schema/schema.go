package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// FieldType is the data type of a template field.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeURL      FieldType = "url"
	TypeList     FieldType = "list"
	TypeImage    FieldType = "image"
)

// validTypes contains all known field types
var validTypes = map[FieldType]bool{
	TypeText:     true,
	TypeTextarea: true,
	TypeNumber:   true,
	TypeURL:      true,
	TypeList:     true,
	TypeImage:    true,
}

// namePattern: lowercase snake_case identifiers
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// FieldDef is one entry in a template's content structure.
// Name is the stable identifier mappings refer to; renaming a field
// invalidates any mapping entry that references the old name.
type FieldDef struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	MaxLength   int       `json:"max_length,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Schema is the ordered list of fields a content template declares.
type Schema []FieldDef

// Parse decodes a schema from its persisted JSON form and validates it.
func Parse(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks field names, types and length constraints.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for i, f := range s {
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if !namePattern.MatchString(f.Name) {
			return fmt.Errorf("field %q: name must be lowercase snake_case", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q: duplicate name", f.Name)
		}
		seen[f.Name] = true

		if !validTypes[f.Type] {
			return fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if f.MaxLength < 0 {
			return fmt.Errorf("field %q: max_length must be positive", f.Name)
		}
	}
	return nil
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Has reports whether a field with the given name exists.
func (s Schema) Has(name string) bool {
	for _, f := range s {
		if f.Name == name {
			return true
		}
	}
	return false
}
