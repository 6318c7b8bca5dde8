package formstate

import "fmt"

// SubformPath is one nested form discovered from a root class: the field
// names leading to it and the class found there.
type SubformPath struct {
	Path  []string
	Class *Class
}

// DiscoverSubformPaths walks the subform fields of root depth first and
// returns a path to every capable nested class. Targets lacking any of the
// three capabilities are skipped. A class already on the current path is
// reported once more but not descended into, so mutually referencing classes
// terminate.
func DiscoverSubformPaths(root *Class) []SubformPath {
	if root == nil || root.Form == nil {
		return nil
	}
	var out []SubformPath
	onPath := map[*Class]bool{root: true}
	var walk func(class *Class, prefix []string)
	walk = func(class *Class, prefix []string) {
		for _, field := range class.Form.fields {
			if field.Type != FieldSubform || !field.Target.Capable() {
				continue
			}
			path := append(append([]string{}, prefix...), field.Name)
			out = append(out, SubformPath{Path: path, Class: field.Target})
			if onPath[field.Target] {
				continue
			}
			onPath[field.Target] = true
			walk(field.Target, path)
			delete(onPath, field.Target)
		}
	}
	walk(root, nil)
	return out
}

// ResolvePathToIdents follows path through the stored data starting at the
// entity at root. A single Ident continues to-one; a sequence of Idents
// branches to-many, resolving the rest of the path under each element in
// order. Missing or non-reference values contribute nothing.
func ResolvePathToIdents(store Store, root Ident, path []string) []Ident {
	if len(path) == 0 {
		return nil
	}
	entity, ok := store.Get(root)
	if !ok {
		return nil
	}
	return resolveFrom(store, entity, path)
}

func resolveFrom(store Store, entity Entity, path []string) []Ident {
	value, ok := entity[path[0]]
	if !ok {
		return nil
	}
	rest := path[1:]
	var out []Ident
	for _, ident := range asIdents(value) {
		if len(rest) == 0 {
			out = append(out, ident)
			continue
		}
		next, ok := store.Get(ident)
		if !ok {
			continue
		}
		out = append(out, resolveFrom(store, next, rest)...)
	}
	return out
}

// asIdents normalizes a to-one or to-many reference value. Anything else
// yields nil.
func asIdents(value any) []Ident {
	switch typed := value.(type) {
	case Ident:
		return []Ident{typed}
	case *Ident:
		if typed == nil {
			return nil
		}
		return []Ident{*typed}
	case []Ident:
		return typed
	case []any:
		out := make([]Ident, 0, len(typed))
		for _, item := range typed {
			ident, ok := item.(Ident)
			if !ok {
				return nil
			}
			out = append(out, ident)
		}
		return out
	default:
		return nil
	}
}

// GetForms returns the root form followed by every nested form reachable
// through subform fields, in discovery order. References whose target is
// absent from the store are dropped; a missing root yields nil.
func GetForms(store Store, root *Class, rootIdent Ident) []FormSpec {
	entity, ok := store.Get(rootIdent)
	if !ok {
		return nil
	}
	forms := []FormSpec{{Ident: rootIdent, Class: root, Entity: entity}}
	for _, sub := range DiscoverSubformPaths(root) {
		for _, ident := range ResolvePathToIdents(store, rootIdent, sub.Path) {
			nested, ok := store.Get(ident)
			if !ok {
				continue
			}
			forms = append(forms, FormSpec{Ident: ident, Class: sub.Class, Entity: nested})
		}
	}
	return forms
}

// UpdateForms applies fn to every form of the tree rooted at rootIdent and
// writes each result back at its ident. If fn fails the original store is
// returned with the error.
func UpdateForms(store Store, root *Class, rootIdent Ident, fn func(FormSpec) (Entity, error)) (Store, error) {
	out := store
	for _, form := range GetForms(store, root, rootIdent) {
		updated, err := fn(form)
		if err != nil {
			return store, fmt.Errorf("formstate: update %s: %w", form.Ident, err)
		}
		out = out.Set(form.Ident, updated)
	}
	return out, nil
}

// ReduceForms folds fn over the forms of the tree rooted at rootIdent.
func ReduceForms[A any](store Store, root *Class, rootIdent Ident, initial A, fn func(A, FormSpec) A) A {
	acc := initial
	for _, form := range GetForms(store, root, rootIdent) {
		acc = fn(acc, form)
	}
	return acc
}
