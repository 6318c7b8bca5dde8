package formstate

import "strings"

// OptionMarker prefixes raw dropdown values coming from the rendering layer.
// SelectOption strips exactly one leading marker; raw values without it are
// stored unchanged rather than losing their first character.
const OptionMarker = ":"

// Operation names, as used in logs, diagnostics and activity events.
const (
	OpUpdateField     = "update-field"
	OpToggleField     = "toggle-field"
	OpSelectOption    = "select-option"
	OpValidate        = "validate"
	OpValidateForm    = "validate-form"
	OpCommitToEntity  = "commit-to-entity"
	OpResetFromEntity = "reset-from-entity"
)

// Mutation is one named state transition applied by a transaction executor.
// Apply must not modify the input store. A non-nil Echo asks the executor to
// mirror the write on the server-side collaborator.
type Mutation interface {
	Name() string
	Target() Ident
	Apply(e *Engine, store Store) (Store, *Echo, error)
}

// UpdateField sets the overlay value of field. No validation is performed.
func (e *Engine) UpdateField(store Store, ident Ident, field string, value any) Store {
	return e.editField(store, OpUpdateField, ident, field, func(FieldState) (any, bool) {
		return value, true
	})
}

// ToggleField negates a boolean overlay value. A nil value toggles to true;
// any other non-boolean value is reported and left alone.
func (e *Engine) ToggleField(store Store, ident Ident, field string) Store {
	return e.editField(store, OpToggleField, ident, field, func(state FieldState) (any, bool) {
		switch current := state.Value.(type) {
		case nil:
			return true, true
		case bool:
			return !current, true
		default:
			e.report(Diagnostic{Op: OpToggleField, Ident: ident, Field: field, Err: ErrNotBoolean})
			return nil, false
		}
	})
}

// SelectOption strips one leading OptionMarker from raw, when present, and
// stores the rest as a Key.
func (e *Engine) SelectOption(store Store, ident Ident, field string, raw string) Store {
	return e.editField(store, OpSelectOption, ident, field, func(FieldState) (any, bool) {
		return Key(strings.TrimPrefix(raw, OptionMarker)), true
	})
}

func (e *Engine) editField(store Store, op string, ident Ident, field string, next func(FieldState) (any, bool)) Store {
	entity, overlay, state, ok := e.fieldAt(store, op, ident, field)
	if !ok {
		return store
	}
	value, ok := next(state)
	if !ok {
		return store
	}
	state.Value = value
	e.cfg.logger.Log(LogEvent{Op: op, Ident: ident, Field: field})
	return store.Set(ident, entity.WithOverlay(overlay.withField(field, state)))
}

// Validate recomputes the validity of one field.
func (e *Engine) Validate(store Store, ident Ident, field string) (Store, error) {
	entity, overlay, _, ok := e.fieldAt(store, OpValidate, ident, field)
	if !ok {
		return store, nil
	}
	updated, err := e.UpdateValidation(overlay, field)
	if err != nil {
		return store, err
	}
	return store.Set(ident, entity.WithOverlay(updated)), nil
}

// CommitToEntity copies every overlay value onto the entity at ident,
// regardless of validity. Callers that must refuse invalid forms go through
// Transactor.CommitToEntity. When remote is set the returned Echo carries the
// updated entity, without its overlay, for the server-side collaborator.
func (e *Engine) CommitToEntity(store Store, ident Ident, remote bool) (Store, *Echo) {
	entity, ok := store.Get(ident)
	if !ok {
		e.report(Diagnostic{Op: OpCommitToEntity, Ident: ident, Err: ErrEntityNotFound})
		return store, nil
	}
	overlay, ok := entity.Overlay()
	if !ok {
		e.report(Diagnostic{Op: OpCommitToEntity, Ident: ident, Err: ErrFormNotBuilt})
		return store, nil
	}
	updated := entity.Clone()
	for name, state := range overlay.Fields {
		updated[name] = state.Value
	}
	e.cfg.logger.Log(LogEvent{Op: OpCommitToEntity, Ident: ident})
	out := store.Set(ident, updated)
	if !remote {
		return out, nil
	}
	payload := updated.Clone()
	delete(payload, FormKey)
	detached, err := payload.DeepClone()
	if err != nil {
		e.report(Diagnostic{Op: OpCommitToEntity, Ident: ident, Message: "echo payload not detached", Err: err})
		return out, nil
	}
	return out, &Echo{Ident: ident, Value: detached}
}

// ResetFromEntity copies the entity's current field values back onto the
// overlay, discarding unsaved edits. Fields absent from the entity keep
// their overlay value. Validity is not recomputed.
func (e *Engine) ResetFromEntity(store Store, ident Ident) Store {
	entity, ok := store.Get(ident)
	if !ok {
		e.report(Diagnostic{Op: OpResetFromEntity, Ident: ident, Err: ErrEntityNotFound})
		return store
	}
	overlay, ok := entity.Overlay()
	if !ok {
		e.report(Diagnostic{Op: OpResetFromEntity, Ident: ident, Err: ErrFormNotBuilt})
		return store
	}
	fields := make(map[string]FieldState, len(overlay.Fields))
	for name, state := range overlay.Fields {
		if value, ok := entity[name]; ok {
			state.Value = value
		}
		fields[name] = state
	}
	overlay.Fields = fields
	e.cfg.logger.Log(LogEvent{Op: OpResetFromEntity, Ident: ident})
	return store.Set(ident, entity.WithOverlay(overlay))
}

func (e *Engine) fieldAt(store Store, op string, ident Ident, field string) (Entity, Overlay, FieldState, bool) {
	overlay, ok := e.overlayAt(store, op, ident)
	if !ok {
		return nil, Overlay{}, FieldState{}, false
	}
	state, ok := overlay.Fields[field]
	if !ok {
		e.report(Diagnostic{Op: op, Ident: ident, Field: field, Err: ErrUnknownField})
		return nil, Overlay{}, FieldState{}, false
	}
	entity, _ := store.Get(ident)
	return entity, overlay, state, true
}

// UpdateFieldOp is the Mutation form of Engine.UpdateField.
type UpdateFieldOp struct {
	Form  Ident
	Field string
	Value any
}

func (m UpdateFieldOp) Name() string  { return OpUpdateField }
func (m UpdateFieldOp) Target() Ident { return m.Form }
func (m UpdateFieldOp) Apply(e *Engine, store Store) (Store, *Echo, error) {
	return e.UpdateField(store, m.Form, m.Field, m.Value), nil, nil
}

// ToggleFieldOp is the Mutation form of Engine.ToggleField.
type ToggleFieldOp struct {
	Form  Ident
	Field string
}

func (m ToggleFieldOp) Name() string  { return OpToggleField }
func (m ToggleFieldOp) Target() Ident { return m.Form }
func (m ToggleFieldOp) Apply(e *Engine, store Store) (Store, *Echo, error) {
	return e.ToggleField(store, m.Form, m.Field), nil, nil
}

// SelectOptionOp is the Mutation form of Engine.SelectOption.
type SelectOptionOp struct {
	Form  Ident
	Field string
	Raw   string
}

func (m SelectOptionOp) Name() string  { return OpSelectOption }
func (m SelectOptionOp) Target() Ident { return m.Form }
func (m SelectOptionOp) Apply(e *Engine, store Store) (Store, *Echo, error) {
	return e.SelectOption(store, m.Form, m.Field, m.Raw), nil, nil
}

// ValidateOp is the Mutation form of Engine.Validate.
type ValidateOp struct {
	Form  Ident
	Field string
}

func (m ValidateOp) Name() string  { return OpValidate }
func (m ValidateOp) Target() Ident { return m.Form }
func (m ValidateOp) Apply(e *Engine, store Store) (Store, *Echo, error) {
	out, err := e.Validate(store, m.Form, m.Field)
	return out, nil, err
}

// ValidateFormOp is the Mutation form of Engine.ValidateForm.
type ValidateFormOp struct {
	Form Ident
}

func (m ValidateFormOp) Name() string  { return OpValidateForm }
func (m ValidateFormOp) Target() Ident { return m.Form }
func (m ValidateFormOp) Apply(e *Engine, store Store) (Store, *Echo, error) {
	out, err := e.ValidateForm(store, m.Form)
	return out, nil, err
}

// CommitOp is the Mutation form of Engine.CommitToEntity.
type CommitOp struct {
	Form   Ident
	Remote bool
}

func (m CommitOp) Name() string  { return OpCommitToEntity }
func (m CommitOp) Target() Ident { return m.Form }
func (m CommitOp) Apply(e *Engine, store Store) (Store, *Echo, error) {
	out, echo := e.CommitToEntity(store, m.Form, m.Remote)
	return out, echo, nil
}

// ResetOp is the Mutation form of Engine.ResetFromEntity.
type ResetOp struct {
	Form Ident
}

func (m ResetOp) Name() string  { return OpResetFromEntity }
func (m ResetOp) Target() Ident { return m.Form }
func (m ResetOp) Apply(e *Engine, store Store) (Store, *Echo, error) {
	return e.ResetFromEntity(store, m.Form), nil, nil
}
