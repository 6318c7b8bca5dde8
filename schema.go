package formstate

import (
	"fmt"
	"strings"
)

// FieldType enumerates the supported field kinds.
type FieldType string

const (
	FieldIdentity FieldType = "identity"
	FieldText     FieldType = "text"
	FieldInteger  FieldType = "integer"
	FieldCheckbox FieldType = "checkbox"
	FieldDropdown FieldType = "dropdown"
	FieldSubform  FieldType = "subform"
)

// Cardinality of a subform relation.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Choice is one dropdown entry.
type Choice struct {
	Key   Key
	Label string
}

// FieldDefinition declares one form field.
type FieldDefinition struct {
	Name          string
	Type          FieldType
	Default       any
	Validator     string
	ValidatorArgs map[string]any
	CSSClass      string

	// Subform only.
	Cardinality Cardinality
	Target      *Class

	// Dropdown only.
	Options []Choice
}

// FieldOption configures a FieldDefinition on construction.
type FieldOption func(*FieldDefinition)

// WithDefault overrides the type default value.
func WithDefault(value any) FieldOption {
	return func(def *FieldDefinition) {
		def.Default = value
	}
}

// WithValidator attaches a registered validator name and its arguments. The
// args map is copied.
func WithValidator(name string, args map[string]any) FieldOption {
	return func(def *FieldDefinition) {
		def.Validator = name
		def.ValidatorArgs = copyMetadata(args)
	}
}

// WithCSSClass sets the rendering hint copied into FieldState.CSSClass.
func WithCSSClass(class string) FieldOption {
	return func(def *FieldDefinition) {
		def.CSSClass = class
	}
}

func newField(name string, typ FieldType, def any, opts []FieldOption) FieldDefinition {
	field := FieldDefinition{Name: name, Type: typ, Default: def}
	for _, opt := range opts {
		if opt != nil {
			opt(&field)
		}
	}
	return field
}

func IdentityField(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldIdentity, nil, opts)
}

func TextField(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldText, "", opts)
}

func IntegerField(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldInteger, 0, opts)
}

func CheckboxField(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldCheckbox, false, opts)
}

// DropdownField declares a dropdown whose default is the first choice key.
func DropdownField(name string, choices []Choice, opts ...FieldOption) FieldDefinition {
	var def any
	if len(choices) > 0 {
		def = choices[0].Key
	}
	field := newField(name, FieldDropdown, def, opts)
	field.Options = append([]Choice(nil), choices...)
	return field
}

// SubformField declares a nested form relation to target.
func SubformField(name string, target *Class, cardinality Cardinality, opts ...FieldOption) FieldDefinition {
	var def any
	if cardinality == Many {
		def = []Ident{}
	}
	field := newField(name, FieldSubform, def, opts)
	field.Target = target
	field.Cardinality = cardinality
	return field
}

// FormSchema is an ordered list of field definitions for one class.
type FormSchema struct {
	fields []FieldDefinition
	byName map[string]int
}

// NewFormSchema validates field names and builds the name index.
func NewFormSchema(fields ...FieldDefinition) (*FormSchema, error) {
	schema := &FormSchema{
		fields: make([]FieldDefinition, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		if strings.TrimSpace(field.Name) == "" {
			return nil, fmt.Errorf("formstate: field name must not be empty")
		}
		if field.Name == FormKey {
			return nil, fmt.Errorf("formstate: field name %q is reserved", FormKey)
		}
		if _, exists := schema.byName[field.Name]; exists {
			return nil, fmt.Errorf("formstate: duplicate field %q", field.Name)
		}
		if err := checkFieldType(field); err != nil {
			return nil, err
		}
		schema.byName[field.Name] = len(schema.fields)
		schema.fields = append(schema.fields, field)
	}
	return schema, nil
}

// MustFormSchema is NewFormSchema that panics on error.
func MustFormSchema(fields ...FieldDefinition) *FormSchema {
	schema, err := NewFormSchema(fields...)
	if err != nil {
		panic(err)
	}
	return schema
}

func checkFieldType(field FieldDefinition) error {
	switch field.Type {
	case FieldIdentity, FieldText, FieldInteger, FieldCheckbox, FieldDropdown:
		return nil
	case FieldSubform:
		if field.Cardinality != One && field.Cardinality != Many {
			return fmt.Errorf("formstate: subform %q has invalid cardinality %q", field.Name, field.Cardinality)
		}
		return nil
	default:
		return fmt.Errorf("formstate: field %q has unknown type %q", field.Name, field.Type)
	}
}

// Fields returns a copy of the ordered definitions.
func (s *FormSchema) Fields() []FieldDefinition {
	if s == nil {
		return nil
	}
	return append([]FieldDefinition(nil), s.fields...)
}

// Field looks up a definition by name.
func (s *FormSchema) Field(name string) (FieldDefinition, bool) {
	if s == nil {
		return FieldDefinition{}, false
	}
	idx, ok := s.byName[name]
	if !ok {
		return FieldDefinition{}, false
	}
	return s.fields[idx], true
}

// IdentityField returns the first identity-typed field, if any.
func (s *FormSchema) IdentityField() (FieldDefinition, bool) {
	if s == nil {
		return FieldDefinition{}, false
	}
	for _, field := range s.fields {
		if field.Type == FieldIdentity {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// IdentFunc produces the store location of an entity.
type IdentFunc func(Entity) (Ident, bool)

// Class is the capability descriptor of an entity shape. A class takes part
// in nested form traversal only when it declares all three capabilities: an
// IdentFunc, a FormSchema, and its joins (see Capable).
type Class struct {
	Name  string
	Ident IdentFunc
	Form  *FormSchema

	joins         []string
	joinsDeclared bool
}

// ClassOption configures a Class on creation.
type ClassOption func(*Class)

// WithIdentFunc overrides the default identity-field based IdentFunc.
func WithIdentFunc(fn IdentFunc) ClassOption {
	return func(c *Class) {
		c.Ident = fn
	}
}

// WithJoins declares which relation fields join to other classes. Calling it
// with no names declares a leaf class.
func WithJoins(fields ...string) ClassOption {
	return func(c *Class) {
		c.joins = append([]string{}, fields...)
		c.joinsDeclared = true
	}
}

// WithForm sets the class form schema.
func WithForm(schema *FormSchema) ClassOption {
	return func(c *Class) {
		c.Form = schema
	}
}

// NewClass builds a class descriptor. Unless overridden, the IdentFunc maps
// an entity to Ident{name, entity[identity field]}, falling back to the
// overlay identity value for entities not yet persisted.
func NewClass(name string, opts ...ClassOption) *Class {
	c := &Class{Name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.Ident == nil {
		c.Ident = c.identityIdent
	}
	return c
}

// Joins returns the declared join fields.
func (c *Class) Joins() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.joins...)
}

// Capable reports whether c exposes the three capabilities required of a
// subform target.
func (c *Class) Capable() bool {
	return c != nil && c.Ident != nil && c.Form != nil && c.joinsDeclared
}

// IdentFor computes the ident of entity.
func (c *Class) IdentFor(entity Entity) (Ident, bool) {
	if c == nil || c.Ident == nil {
		return Ident{}, false
	}
	return c.Ident(entity)
}

func (c *Class) identityIdent(entity Entity) (Ident, bool) {
	if c.Form == nil {
		return Ident{}, false
	}
	field, ok := c.Form.IdentityField()
	if !ok {
		return Ident{}, false
	}
	if id, ok := entity[field.Name]; ok && id != nil {
		return Ident{Class: c.Name, ID: id}, true
	}
	if overlay, ok := entity.Overlay(); ok {
		if state, ok := overlay.Fields[field.Name]; ok && state.Value != nil {
			return Ident{Class: c.Name, ID: state.Value}, true
		}
	}
	return Ident{}, false
}

// FieldDescriptor describes a field path in a class tree and its type.
type FieldDescriptor struct {
	Path string
	Type string
}

// Describe flattens the class tree into field descriptors. Subform targets
// are expanded once per path; a class already on the current path is listed
// but not expanded.
func Describe(class *Class) []FieldDescriptor {
	if class == nil || class.Form == nil {
		return []FieldDescriptor{}
	}
	descriptors := []FieldDescriptor{}
	describeClass(class, "", map[*Class]bool{}, &descriptors)
	return descriptors
}

func describeClass(class *Class, prefix string, onPath map[*Class]bool, out *[]FieldDescriptor) {
	onPath[class] = true
	defer delete(onPath, class)
	for _, field := range class.Form.fields {
		path := joinPath(prefix, field.Name)
		typ := string(field.Type)
		if field.Type == FieldSubform && field.Target != nil {
			typ = fmt.Sprintf("subform(%s,%s)", field.Target.Name, field.Cardinality)
		}
		*out = append(*out, FieldDescriptor{Path: path, Type: typ})
		if field.Type != FieldSubform || !field.Target.Capable() || onPath[field.Target] {
			continue
		}
		describeClass(field.Target, path, onPath, out)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}

func copyMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
