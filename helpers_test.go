package formstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

func testClasses() (person, address *Class) {
	address = NewClass("address", WithJoins(), WithForm(MustFormSchema(
		IdentityField("id"),
		TextField("street", WithValidator(ValidatorRequired, nil)),
	)))
	person = NewClass("person", WithJoins("addresses"), WithForm(MustFormSchema(
		IdentityField("id"),
		TextField("name"),
		IntegerField("age", WithValidator(ValidatorInRange, map[string]any{"min": 0, "max": 120})),
		CheckboxField("active"),
		DropdownField("color", []Choice{{Key: "red", Label: "Red"}, {Key: "blue", Label: "Blue"}}),
		SubformField("addresses", address, Many),
	)))
	return person, address
}

// sequentialPlaceholders yields t1, t2, ... so built forms are deterministic.
func sequentialPlaceholders() PlaceholderGenerator {
	var mu sync.Mutex
	n := 0
	return PlaceholderFunc(func() TempID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return TempID{ID: fmt.Sprintf("t%d", n)}
	})
}

type diagnosticSink struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (s *diagnosticSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

func (s *diagnosticSink) all() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.items...)
}

func newTestEngine(opts ...Option) (*Engine, *diagnosticSink) {
	sink := &diagnosticSink{}
	base := []Option{WithPlaceholderGenerator(sequentialPlaceholders()), WithReporter(sink)}
	return New(append(base, opts...)...), sink
}

// personStore holds person 1 with addresses a1 and a2, both with built forms.
func personStore(t *testing.T, e *Engine) (Store, *Class, Ident) {
	t.Helper()
	person, address := testClasses()
	a1 := NewIdent("address", "a1")
	a2 := NewIdent("address", "a2")
	store := NewStore(nil)
	var err error
	store, _, err = e.AddForm(store, address, Entity{"id": "a1", "street": "Main"})
	if err != nil {
		t.Fatalf("add address a1: %v", err)
	}
	store, _, err = e.AddForm(store, address, Entity{"id": "a2", "street": "High"})
	if err != nil {
		t.Fatalf("add address a2: %v", err)
	}
	store, ident, err := e.AddForm(store, person, Entity{
		"id":        1,
		"name":      "Amy",
		"age":       30,
		"active":    false,
		"color":     Key("red"),
		"addresses": []Ident{a1, a2},
	})
	if err != nil {
		t.Fatalf("add person: %v", err)
	}
	return store, person, ident
}

func overlayOf(t *testing.T, store Store, ident Ident) Overlay {
	t.Helper()
	entity, ok := store.Get(ident)
	if !ok {
		t.Fatalf("no entity at %s", ident)
	}
	overlay, ok := entity.Overlay()
	if !ok {
		t.Fatalf("no overlay at %s", ident)
	}
	return overlay
}

func testdataPath(t *testing.T, name string) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to locate fixture directory")
	}
	return filepath.Join(filepath.Dir(filename), "testdata", name)
}

func loadRaw(t *testing.T, name string) []byte {
	t.Helper()
	path := testdataPath(t, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	return raw
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(loadRaw(t, name), &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", name, err)
	}
	return out
}
