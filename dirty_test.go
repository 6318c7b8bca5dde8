package formstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirtyTruthTable(t *testing.T) {
	e, _ := newTestEngine()
	store, person, ident := personStore(t, e)
	root, _ := store.Get(ident)

	require.False(t, IsDirty(root), "freshly built form agrees with its entity")
	require.Empty(t, DirtyFields(root))

	edited := e.UpdateField(store, ident, "age", 31)
	root, _ = edited.Get(ident)
	require.True(t, IsDirty(root))
	require.Equal(t, []string{"age"}, DirtyFields(root))

	reverted := e.UpdateField(edited, ident, "age", 30)
	root, _ = reverted.Get(ident)
	require.False(t, IsDirty(root), "same value again is clean")

	fresh := e.BuildForm(person, Entity{"name": "", "age": 0, "active": false, "color": Key("red"), "addresses": []Ident{}})
	require.Equal(t, []string{"id"}, DirtyFields(fresh), "placeholder identity is dirty")

	require.False(t, IsDirty(Entity{"age": 1}), "no overlay, nothing dirty")
}

func TestFormDirtyAcrossTree(t *testing.T) {
	e, _ := newTestEngine()
	store, person, ident := personStore(t, e)
	require.False(t, FormDirty(store, person, ident))

	nested := e.UpdateField(store, NewIdent("address", "a1"), "street", "Elm")
	require.True(t, FormDirty(nested, person, ident))
	root, _ := nested.Get(ident)
	require.False(t, IsDirty(root))
}
