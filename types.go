package formstate

import (
	"fmt"
	"sort"

	"github.com/mitchellh/copystructure"
)

// Ident locates one entity in the graph store. Class is the entity table and
// ID must hold a comparable value (string, integer, TempID, ...).
type Ident struct {
	Class string
	ID    any
}

// NewIdent builds an Ident for class and id.
func NewIdent(class string, id any) Ident {
	return Ident{Class: class, ID: id}
}

// IsZero reports whether the ident is unset.
func (i Ident) IsZero() bool {
	return i.Class == "" && i.ID == nil
}

func (i Ident) String() string {
	return fmt.Sprintf("[%s %v]", i.Class, i.ID)
}

// Key is a symbolic token, used for dropdown selections.
type Key string

// Entity is one normalized record in the graph store. Values may be scalars,
// an Ident (to-one reference) or []Ident (to-many reference). The overlay is
// attached under FormKey.
type Entity map[string]any

// FormKey is the reserved entity key holding the attached Overlay.
const FormKey = "formstate/form"

// Clone returns a shallow copy of the entity.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// DeepClone returns a copy of e sharing no maps, slices or pointers with it.
// Unexported struct fields are not copied.
func (e Entity) DeepClone() (Entity, error) {
	if e == nil {
		return nil, nil
	}
	copied, err := copystructure.Copy(e)
	if err != nil {
		return nil, fmt.Errorf("formstate: deep clone: %w", err)
	}
	out, ok := copied.(Entity)
	if !ok {
		return nil, fmt.Errorf("formstate: deep clone returned %T", copied)
	}
	return out, nil
}

// With returns a copy of e with key set to value.
func (e Entity) With(key string, value any) Entity {
	out := e.Clone()
	if out == nil {
		out = Entity{}
	}
	out[key] = value
	return out
}

// Overlay returns the attached overlay, if any.
func (e Entity) Overlay() (Overlay, bool) {
	if e == nil {
		return Overlay{}, false
	}
	overlay, ok := e[FormKey].(Overlay)
	return overlay, ok
}

// WithOverlay returns a copy of e carrying overlay.
func (e Entity) WithOverlay(overlay Overlay) Entity {
	return e.With(FormKey, overlay)
}

// Fields returns the entity keys excluding the reserved overlay key, sorted.
func (e Entity) Fields() []string {
	names := make([]string, 0, len(e))
	for key := range e {
		if key == FormKey {
			continue
		}
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Validity is the per-field validation state.
type Validity string

const (
	Unchecked Validity = "unchecked"
	Valid     Validity = "valid"
	Invalid   Validity = "invalid"
)

// FieldState is the editable state of one field inside an Overlay.
type FieldState struct {
	Value    any
	Validity Validity
	CSSClass string
}

// Overlay is the editable, validated form state layered on one entity.
type Overlay struct {
	Ident  Ident
	Class  *Class
	Fields map[string]FieldState
}

// Field returns the state of name.
func (o Overlay) Field(name string) (FieldState, bool) {
	state, ok := o.Fields[name]
	return state, ok
}

// FieldNames returns the overlay field names in schema declaration order.
func (o Overlay) FieldNames() []string {
	if o.Class != nil && o.Class.Form != nil {
		names := make([]string, 0, len(o.Fields))
		for _, def := range o.Class.Form.Fields() {
			if _, ok := o.Fields[def.Name]; ok {
				names = append(names, def.Name)
			}
		}
		return names
	}
	names := make([]string, 0, len(o.Fields))
	for name := range o.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the field definition backing name.
func (o Overlay) Definition(name string) (FieldDefinition, bool) {
	if o.Class == nil || o.Class.Form == nil {
		return FieldDefinition{}, false
	}
	return o.Class.Form.Field(name)
}

// withField returns a copy of o with name set to state. The receiver is not
// modified.
func (o Overlay) withField(name string, state FieldState) Overlay {
	fields := make(map[string]FieldState, len(o.Fields)+1)
	for k, v := range o.Fields {
		fields[k] = v
	}
	fields[name] = state
	o.Fields = fields
	return o
}

// FormSpec is one node of a nested form tree as returned by GetForms.
type FormSpec struct {
	Ident  Ident
	Class  *Class
	Entity Entity
}

// Echo describes a write that should be mirrored by a server-side
// collaborator.
type Echo struct {
	Ident Ident
	Value Entity
}
