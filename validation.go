package formstate

import (
	"fmt"
	"time"
)

// UpdateValidation recomputes the validity of one overlay field. A field
// without a validator becomes valid. A validator name missing from the
// registry, or a validator that cannot evaluate, returns an error and leaves
// the overlay unchanged.
func (e *Engine) UpdateValidation(overlay Overlay, field string) (Overlay, error) {
	state, ok := overlay.Fields[field]
	if !ok {
		return overlay, fmt.Errorf("%w: %q on %s", ErrUnknownField, field, overlay.Ident)
	}
	def, ok := overlay.Definition(field)
	if !ok {
		return overlay, fmt.Errorf("%w: %q has no definition on %s", ErrUnknownField, field, overlay.Ident)
	}
	if def.Validator == "" {
		state.Validity = Valid
		return overlay.withField(field, state), nil
	}

	fn, err := e.cfg.validators.Lookup(def.Validator)
	if err != nil {
		e.cfg.logger.Log(LogEvent{Op: "validate", Ident: overlay.Ident, Field: field, Validator: def.Validator, Err: err})
		return overlay, fmt.Errorf("formstate: %s field %q: %w", overlay.Ident, field, err)
	}
	entry, _ := e.cfg.validators.entry(def.Validator)
	start := time.Now()
	ok, err = fn(state.Value, def.ValidatorArgs)
	e.cfg.logger.Log(LogEvent{
		Op:        "validate",
		Ident:     overlay.Ident,
		Field:     field,
		Validator: def.Validator,
		Engine:    entry.engine,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return overlay, fmt.Errorf("formstate: %s field %q: %w", overlay.Ident, field, err)
	}
	if ok {
		state.Validity = Valid
	} else {
		state.Validity = Invalid
	}
	return overlay.withField(field, state), nil
}

// ValidateFields runs UpdateValidation over every overlay field and returns
// the new overlay. The input is not modified.
func (e *Engine) ValidateFields(overlay Overlay) (Overlay, error) {
	out := overlay
	for _, name := range overlay.FieldNames() {
		next, err := e.UpdateValidation(out, name)
		if err != nil {
			return overlay, err
		}
		out = next
	}
	return out, nil
}

// ValidateEntity is ValidateFields applied to the overlay attached to
// entity. Entities without an overlay are returned as is.
func (e *Engine) ValidateEntity(entity Entity) (Entity, error) {
	overlay, ok := entity.Overlay()
	if !ok {
		return entity, nil
	}
	validated, err := e.ValidateFields(overlay)
	if err != nil {
		return entity, err
	}
	return entity.WithOverlay(validated), nil
}

// ValidateForm validates every form of the nested tree rooted at ident in one
// pass. When the entity carries no overlay, the store is returned unchanged
// and an ErrFormNotBuilt diagnostic is reported.
func (e *Engine) ValidateForm(store Store, ident Ident) (Store, error) {
	overlay, ok := e.overlayAt(store, OpValidateForm, ident)
	if !ok {
		return store, nil
	}
	if overlay.Class == nil {
		e.report(Diagnostic{Op: OpValidateForm, Ident: ident, Err: ErrFormNotBuilt, Message: "overlay has no class"})
		return store, nil
	}
	out, err := UpdateForms(store, overlay.Class, ident, func(form FormSpec) (Entity, error) {
		return e.ValidateEntity(form.Entity)
	})
	e.cfg.logger.Log(LogEvent{Op: OpValidateForm, Ident: ident, Err: err})
	if err != nil {
		return store, err
	}
	return out, nil
}

// IsValid reports whether every field of the form is valid. Unchecked fields
// make the form not valid; run ValidateFields first for a trustworthy answer.
func IsValid(overlay Overlay) bool {
	for _, state := range overlay.Fields {
		if state.Validity != Valid {
			return false
		}
	}
	return true
}

// IsInvalid reports whether at least one field is invalid. Unchecked fields
// are not counted.
func IsInvalid(overlay Overlay) bool {
	for _, state := range overlay.Fields {
		if state.Validity == Invalid {
			return true
		}
	}
	return false
}

// overlayAt loads the overlay stored at ident, reporting a diagnostic for op
// when the entity or its overlay is missing.
func (e *Engine) overlayAt(store Store, op string, ident Ident) (Overlay, bool) {
	entity, ok := store.Get(ident)
	if !ok {
		e.report(Diagnostic{Op: op, Ident: ident, Err: ErrEntityNotFound, Message: "no entity at ident"})
		return Overlay{}, false
	}
	overlay, ok := entity.Overlay()
	if !ok {
		e.report(Diagnostic{Op: op, Ident: ident, Err: ErrFormNotBuilt, Message: "form was never initialized via BuildForm"})
		return Overlay{}, false
	}
	return overlay, true
}
