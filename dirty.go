package formstate

import "reflect"

// DirtyFields lists, in declaration order, the fields whose overlay value is
// an unresolved placeholder or differs from the value on the entity.
func DirtyFields(entity Entity) []string {
	overlay, ok := entity.Overlay()
	if !ok {
		return nil
	}
	var dirty []string
	for _, name := range overlay.FieldNames() {
		state := overlay.Fields[name]
		if IsPlaceholder(state.Value) || !reflect.DeepEqual(state.Value, entity[name]) {
			dirty = append(dirty, name)
		}
	}
	return dirty
}

// IsDirty reports whether any field of the form is dirty.
func IsDirty(entity Entity) bool {
	return len(DirtyFields(entity)) > 0
}

// FormDirty reports whether any form of the nested tree rooted at ident is
// dirty.
func FormDirty(store Store, root *Class, ident Ident) bool {
	return ReduceForms(store, root, ident, false, func(dirty bool, form FormSpec) bool {
		return dirty || IsDirty(form.Entity)
	})
}
