package formstate

import "fmt"

// BuildForm returns entity augmented with a freshly built Overlay. Identity
// fields default to a new placeholder id and start valid; every other field
// defaults to its declared default and starts unchecked. Values present on
// the entity then replace the defaults (validity is kept). Entity keys
// unknown to the schema are left untouched.
func (e *Engine) BuildForm(class *Class, entity Entity) Entity {
	fields := make(map[string]FieldState)
	if class != nil && class.Form != nil {
		for _, def := range class.Form.fields {
			state := FieldState{Value: def.Default, Validity: Unchecked, CSSClass: def.CSSClass}
			if def.Type == FieldIdentity {
				state.Value = e.cfg.placeholders.Next()
				state.Validity = Valid
			}
			if value, ok := entity[def.Name]; ok {
				state.Value = value
			}
			fields[def.Name] = state
		}
	}

	overlay := Overlay{Class: class, Fields: fields}
	built := entity.WithOverlay(overlay)
	if ident, ok := class.IdentFor(built); ok {
		overlay.Ident = ident
		built = entity.WithOverlay(overlay)
	}
	return built
}

// AddForm builds a form for entity and writes it at the overlay ident.
func (e *Engine) AddForm(store Store, class *Class, entity Entity) (Store, Ident, error) {
	built := e.BuildForm(class, entity)
	overlay, _ := built.Overlay()
	if overlay.Ident.IsZero() {
		return store, Ident{}, fmt.Errorf("formstate: cannot compute ident for class %q", className(class))
	}
	e.cfg.logger.Log(LogEvent{Op: "add-form", Ident: overlay.Ident})
	return store.Set(overlay.Ident, built), overlay.Ident, nil
}

func className(class *Class) string {
	if class == nil {
		return "<nil>"
	}
	return class.Name
}
