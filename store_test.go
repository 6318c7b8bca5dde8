package formstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreWritesReturnNewValues(t *testing.T) {
	ident := NewIdent("person", 1)
	original := NewStore(map[Ident]Entity{ident: {"name": "Amy"}})

	updated := original.Set(ident, Entity{"name": "Bob"})

	before, _ := original.Get(ident)
	after, _ := updated.Get(ident)
	require.Equal(t, "Amy", before["name"])
	require.Equal(t, "Bob", after["name"])

	removed := updated.Delete(ident)
	require.Equal(t, 0, removed.Len())
	require.Equal(t, 1, updated.Len())
}

func TestStoreGetInAndSetIn(t *testing.T) {
	ident := NewIdent("person", 1)
	store := NewStore(map[Ident]Entity{ident: {"profile": map[string]any{"city": "Oslo"}}})

	city, ok := store.GetIn(ident, "profile", "city")
	require.True(t, ok)
	require.Equal(t, "Oslo", city)

	_, ok = store.GetIn(ident, "profile", "zip")
	require.False(t, ok)
	_, ok = store.GetIn(NewIdent("person", 2), "profile")
	require.False(t, ok)

	next, err := store.SetIn(ident, []string{"settings", "theme"}, "dark")
	require.NoError(t, err)
	theme, ok := next.GetIn(ident, "settings", "theme")
	require.True(t, ok)
	require.Equal(t, "dark", theme)

	_, ok = store.GetIn(ident, "settings")
	require.False(t, ok, "original store must be untouched")

	created, err := store.SetIn(NewIdent("person", 3), []string{"name"}, "Cy")
	require.NoError(t, err)
	name, _ := created.GetIn(NewIdent("person", 3), "name")
	require.Equal(t, "Cy", name)
}

func TestStoreSetInErrors(t *testing.T) {
	ident := NewIdent("person", 1)
	store := NewStore(map[Ident]Entity{ident: {"name": "Amy"}})

	_, err := store.SetIn(ident, nil, "not an entity")
	require.Error(t, err)

	_, err = store.SetIn(ident, []string{"name", "first"}, "A")
	require.Error(t, err)

	replaced, err := store.SetIn(ident, nil, map[string]any{"name": "Zed"})
	require.NoError(t, err)
	entity, _ := replaced.Get(ident)
	require.Equal(t, "Zed", entity["name"])
}

func TestStoreIdentsSorted(t *testing.T) {
	store := NewStore(nil).
		Set(NewIdent("person", 2), Entity{}).
		Set(NewIdent("address", "b"), Entity{}).
		Set(NewIdent("person", 1), Entity{}).
		Set(NewIdent("address", "a"), Entity{})

	require.Equal(t, []Ident{
		NewIdent("address", "a"),
		NewIdent("address", "b"),
		NewIdent("person", 1),
		NewIdent("person", 2),
	}, store.Idents())
}

func TestEntityDeepClone(t *testing.T) {
	src := Entity{
		"tags":    []string{"a", "b"},
		"profile": map[string]any{"langs": []any{"en", "no"}},
		"partner": NewIdent("person", 2),
		"id":      TempID{ID: "t1"},
	}

	got, err := src.DeepClone()
	require.NoError(t, err)
	require.Equal(t, src, got)

	got["tags"].([]string)[0] = "changed"
	got["profile"].(map[string]any)["langs"].([]any)[0] = "de"
	require.Equal(t, "a", src["tags"].([]string)[0])
	require.Equal(t, "en", src["profile"].(map[string]any)["langs"].([]any)[0])

	var empty Entity
	cloned, err := empty.DeepClone()
	require.NoError(t, err)
	require.Nil(t, cloned)
}

func TestZeroStoreIsEmpty(t *testing.T) {
	var store Store
	require.Equal(t, 0, store.Len())
	_, ok := store.Get(NewIdent("person", 1))
	require.False(t, ok)
	require.Empty(t, store.Idents())
	require.Equal(t, 0, store.Delete(NewIdent("person", 1)).Len())

	next := store.Set(NewIdent("person", 1), Entity{"name": "Amy"})
	require.Equal(t, 1, next.Len())
	require.Equal(t, 0, store.Len())
}

func TestStoreIdentKeys(t *testing.T) {
	store := NewStore(nil).
		Set(NewIdent("person", 1), Entity{"kind": "int"}).
		Set(NewIdent("person", "1"), Entity{"kind": "string"}).
		Set(NewIdent("person", TempID{ID: "1"}), Entity{"kind": "temp"})
	require.Equal(t, 3, store.Len())

	got, ok := store.Get(NewIdent("person", "1"))
	require.True(t, ok)
	require.Equal(t, "string", got["kind"])
	got, ok = store.Get(NewIdent("person", TempID{ID: "1"}))
	require.True(t, ok)
	require.Equal(t, "temp", got["kind"])
}

func TestStoreVersionsAreIndependent(t *testing.T) {
	versions := []Store{NewStore(nil)}
	for i := 0; i < 200; i++ {
		last := versions[len(versions)-1]
		versions = append(versions, last.Set(NewIdent("row", i), Entity{"n": i}))
	}
	for i, version := range versions {
		require.Equal(t, i, version.Len())
	}
	_, ok := versions[100].Get(NewIdent("row", 150))
	require.False(t, ok)
	row, ok := versions[200].Get(NewIdent("row", 150))
	require.True(t, ok)
	require.Equal(t, 150, row["n"])
}
