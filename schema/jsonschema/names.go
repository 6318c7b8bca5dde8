package jsonschema

import (
	"fmt"
	"regexp"

	formstate "github.com/goliatone/go-formstate"
)

// defRegistry assigns one $defs name per distinct class. Two classes sharing
// a name get numeric suffixes.
type defRegistry struct {
	names     map[*formstate.Class]string
	usedNames map[string]struct{}
	defs      map[string]any
}

func newDefRegistry() *defRegistry {
	return &defRegistry{
		names:     map[*formstate.Class]string{},
		usedNames: map[string]struct{}{},
		defs:      map[string]any{},
	}
}

// name returns the def name for class and whether it was newly assigned.
func (r *defRegistry) name(class *formstate.Class) (string, bool) {
	if name, ok := r.names[class]; ok {
		return name, false
	}
	name := r.uniqueName(class.Name)
	r.names[class] = name
	return name, true
}

func (r *defRegistry) uniqueName(name string) string {
	safe := sanitizeDefName(name)
	if safe == "" {
		safe = "Form"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	suffix := 1
	for {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
		suffix++
	}
}

func ref(name string) string {
	return "#/$defs/" + name
}

var defNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeDefName(name string) string {
	name = defNameRegexp.ReplaceAllString(name, "_")
	start, end := 0, len(name)
	for start < end && name[start] == '_' {
		start++
	}
	for end > start && name[end-1] == '_' {
		end--
	}
	return name[start:end]
}
