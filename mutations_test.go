package formstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectOptionStripsMarker(t *testing.T) {
	e, _ := newTestEngine()
	store, _, ident := personStore(t, e)

	store = e.SelectOption(store, ident, "color", ":blue")
	require.Equal(t, Key("blue"), overlayOf(t, store, ident).Fields["color"].Value)

	store = e.SelectOption(store, ident, "color", "red")
	require.Equal(t, Key("red"), overlayOf(t, store, ident).Fields["color"].Value)

	store = e.SelectOption(store, ident, "color", "::red")
	require.Equal(t, Key(":red"), overlayOf(t, store, ident).Fields["color"].Value)
}

func TestToggleField(t *testing.T) {
	e, sink := newTestEngine()
	store, _, ident := personStore(t, e)

	store = e.ToggleField(store, ident, "active")
	require.Equal(t, true, overlayOf(t, store, ident).Fields["active"].Value)
	store = e.ToggleField(store, ident, "active")
	require.Equal(t, false, overlayOf(t, store, ident).Fields["active"].Value)

	cleared := e.UpdateField(store, ident, "active", nil)
	cleared = e.ToggleField(cleared, ident, "active")
	require.Equal(t, true, overlayOf(t, cleared, ident).Fields["active"].Value)

	unchanged := e.ToggleField(store, ident, "name")
	require.Equal(t, "Amy", overlayOf(t, unchanged, ident).Fields["name"].Value)
	diagnostics := sink.all()
	require.Len(t, diagnostics, 1)
	require.ErrorIs(t, diagnostics[0].Err, ErrNotBoolean)
}

func TestUpdateFieldMisuseIsNoOp(t *testing.T) {
	e, sink := newTestEngine()
	store, _, ident := personStore(t, e)

	require.Equal(t, store, e.UpdateField(store, ident, "nickname", "A"))
	require.Equal(t, store, e.UpdateField(store, NewIdent("person", 99), "name", "A"))

	bare := NewIdent("person", 5)
	plain := store.Set(bare, Entity{"id": 5})
	require.Equal(t, plain, e.UpdateField(plain, bare, "name", "A"))

	diagnostics := sink.all()
	require.Len(t, diagnostics, 3)
	require.ErrorIs(t, diagnostics[0].Err, ErrUnknownField)
	require.ErrorIs(t, diagnostics[1].Err, ErrEntityNotFound)
	require.ErrorIs(t, diagnostics[2].Err, ErrFormNotBuilt)
}

func TestUpdateFieldDoesNotValidate(t *testing.T) {
	e, _ := newTestEngine()
	store, _, ident := personStore(t, e)

	store = e.UpdateField(store, ident, "age", 500)
	state := overlayOf(t, store, ident).Fields["age"]
	require.Equal(t, 500, state.Value)
	require.Equal(t, Unchecked, state.Validity)

	store, err := e.Validate(store, ident, "age")
	require.NoError(t, err)
	require.Equal(t, Invalid, overlayOf(t, store, ident).Fields["age"].Validity)
}

func TestCommitToEntityCopiesOverlayUnconditionally(t *testing.T) {
	e, _ := newTestEngine()
	store, _, ident := personStore(t, e)
	store = e.UpdateField(store, ident, "age", 500)

	committed, echo := e.CommitToEntity(store, ident, false)
	require.Nil(t, echo)
	entity, _ := committed.Get(ident)
	require.Equal(t, 500, entity["age"], "commit does not check validity")

	original, _ := store.Get(ident)
	require.Equal(t, 30, original["age"])
}

func TestCommitToEntityRemoteEcho(t *testing.T) {
	e, _ := newTestEngine()
	store, _, ident := personStore(t, e)
	store = e.UpdateField(store, ident, "name", "Ann")

	_, echo := e.CommitToEntity(store, ident, true)
	require.NotNil(t, echo)
	require.Equal(t, ident, echo.Ident)
	require.Equal(t, "Ann", echo.Value["name"])
	_, hasOverlay := echo.Value[FormKey]
	require.False(t, hasOverlay)
}

func TestCommitToEntityEchoIsDetached(t *testing.T) {
	e, _ := newTestEngine()
	store, _, ident := personStore(t, e)
	home := NewIdent("address", "home")
	store = e.UpdateField(store, ident, "addresses", []Ident{home})

	committed, echo := e.CommitToEntity(store, ident, true)
	require.NotNil(t, echo)
	echo.Value["addresses"].([]Ident)[0] = NewIdent("address", "work")

	entity, _ := committed.Get(ident)
	require.Equal(t, []Ident{home}, entity["addresses"])
	require.Equal(t, []Ident{home}, overlayOf(t, committed, ident).Fields["addresses"].Value)
}

func TestResetFromEntityDiscardsEdits(t *testing.T) {
	e, _ := newTestEngine()
	store, _, ident := personStore(t, e)
	store, err := e.Validate(store, ident, "age")
	require.NoError(t, err)
	store = e.UpdateField(store, ident, "age", 99)

	reset := e.ResetFromEntity(store, ident)
	state := overlayOf(t, reset, ident).Fields["age"]
	require.Equal(t, 30, state.Value)
	require.Equal(t, Valid, state.Validity, "reset does not revalidate")
}

func TestCommitResetRoundTrip(t *testing.T) {
	e, _ := newTestEngine()
	store, person, ident := personStore(t, e)
	store = e.UpdateField(store, ident, "name", "Ann")
	store = e.SelectOption(store, ident, "color", ":blue")

	committed, _ := e.CommitToEntity(store, ident, false)
	reset := e.ResetFromEntity(committed, ident)

	entity, _ := committed.Get(ident)
	rebuilt, _ := e.BuildForm(person, entity).Overlay()
	got := overlayOf(t, reset, ident)
	for _, name := range got.FieldNames() {
		require.Equal(t, rebuilt.Fields[name].Value, got.Fields[name].Value, name)
	}
	require.Equal(t, rebuilt.Ident, got.Ident)
}

func TestMutationOpsMatchEngineMethods(t *testing.T) {
	e, _ := newTestEngine()
	store, _, ident := personStore(t, e)

	cases := []struct {
		op   Mutation
		want func(Store) Store
	}{
		{UpdateFieldOp{Form: ident, Field: "name", Value: "Zoe"}, func(s Store) Store { return e.UpdateField(s, ident, "name", "Zoe") }},
		{ToggleFieldOp{Form: ident, Field: "active"}, func(s Store) Store { return e.ToggleField(s, ident, "active") }},
		{SelectOptionOp{Form: ident, Field: "color", Raw: ":blue"}, func(s Store) Store { return e.SelectOption(s, ident, "color", ":blue") }},
		{ResetOp{Form: ident}, func(s Store) Store { return e.ResetFromEntity(s, ident) }},
	}
	for _, tc := range cases {
		t.Run(tc.op.Name(), func(t *testing.T) {
			got, echo, err := tc.op.Apply(e, store)
			require.NoError(t, err)
			require.Nil(t, echo)
			require.Equal(t, ident, tc.op.Target())
			require.Equal(t, tc.want(store), got)
		})
	}

	_, echo, err := CommitOp{Form: ident, Remote: true}.Apply(e, store)
	require.NoError(t, err)
	require.NotNil(t, echo)
}
