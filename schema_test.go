package formstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	person, _ := testClasses()
	require.Equal(t, []FieldDescriptor{
		{Path: "id", Type: "identity"},
		{Path: "name", Type: "text"},
		{Path: "age", Type: "integer"},
		{Path: "active", Type: "checkbox"},
		{Path: "color", Type: "dropdown"},
		{Path: "addresses", Type: "subform(address,many)"},
		{Path: "addresses.id", Type: "identity"},
		{Path: "addresses.street", Type: "text"},
	}, Describe(person))

	require.Empty(t, Describe(nil))
}

func TestDescribeStopsOnRecursion(t *testing.T) {
	node := NewClass("node", WithJoins("parent"))
	node.Form = MustFormSchema(IdentityField("id"), SubformField("parent", node, One))
	require.Equal(t, []FieldDescriptor{
		{Path: "id", Type: "identity"},
		{Path: "parent", Type: "subform(node,one)"},
	}, Describe(node))
}

func TestCheckClassRequiresCapabilities(t *testing.T) {
	e := New()
	person, _ := testClasses()
	require.NoError(t, e.CheckClass(person))
	require.ErrorIs(t, e.CheckClass(NewClass("bare")), ErrNotCapable)
}

func TestIdentString(t *testing.T) {
	require.Equal(t, "[person 1]", NewIdent("person", 1).String())
	require.True(t, Ident{}.IsZero())
	require.Equal(t, "#tempid[x]", TempID{ID: "x"}.String())
	require.True(t, IsPlaceholder(&TempID{ID: "x"}))
	require.False(t, IsPlaceholder("x"))
}
