package canopy

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type team struct {
	captain *Cell[*player]
}

func chainRegistry() *Registry {
	catalog := testCatalog().Register(Define[*team]("Team",
		SourceAccessor[*team, *player]("captain", func(t *team) *Cell[*player] { return t.captain }),
	))
	return NewRegistry(catalog, nil)
}

func TestSplitPath(t *testing.T) {
	assert.Nil(t, SplitPath(""))
	assert.Equal(t, []string{"captain", "name"}, SplitPath("captain/name"))
	assert.Equal(t, []string{"a", "", "b"}, SplitPath("a//b"))
}

func TestCompileChain(t *testing.T) {
	reg := chainRegistry()

	c, err := CompileChain(reg, reflect.TypeFor[*team](), []string{"captain", "name"})
	require.NoError(t, err)
	assert.Equal(t, "captain/name", c.Path())
	assert.Equal(t, reflect.TypeFor[*team](), c.In())
	assert.Equal(t, reflect.TypeFor[string](), c.Out())
	assert.Equal(t, 2, c.Hops())

	c, err = CompileChain(reg, reflect.TypeFor[*player](), []string{"level"})
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[int](), c.Out())
}

func TestCompileChainFailures(t *testing.T) {
	reg := chainRegistry()

	_, err := CompileChain(reg, reflect.TypeFor[*player](), []string{"nickname"})
	assert.ErrorIs(t, err, ErrUnknownAccessor)
	assert.Contains(t, err.Error(), `"nickname"`)

	_, err = CompileChain(reg, reflect.TypeFor[*player](), []string{"level", "digits"})
	assert.ErrorIs(t, err, ErrUnknownAccessor, "int declares no accessors")
}

func TestChainPlainHop(t *testing.T) {
	reg := chainRegistry()
	c, err := CompileChain(reg, reflect.TypeFor[*player](), []string{"level"})
	require.NoError(t, err)

	current := NewCell[*player]()
	var got []any
	unsub := c.Bind(NewCapability[*player]("player", current), func(v any) { got = append(got, v) })
	defer unsub()

	current.Set(newPlayer("ann", 3))
	current.Set(newPlayer("bob", 7))

	assert.Equal(t, []any{3, 7}, got)
}

func TestChainSwitchesSourceHop(t *testing.T) {
	reg := chainRegistry()
	c, err := CompileChain(reg, reflect.TypeFor[*player](), []string{"name"})
	require.NoError(t, err)

	ann, bob := newPlayer("ann", 1), newPlayer("bob", 2)
	current := CellOf(ann)

	var got []any
	unsub := c.Bind(NewCapability[*player]("player", current), func(v any) { got = append(got, v) })

	require.Equal(t, []any{"ann"}, got)
	require.Equal(t, 1, ann.name.Listeners())

	current.Set(bob)
	assert.Equal(t, 0, ann.name.Listeners(), "old subscription torn down")
	assert.Equal(t, 1, bob.name.Listeners(), "exactly one new subscription")
	assert.Equal(t, []any{"ann", "bob"}, got)

	ann.name.Set("stale")
	bob.name.Set("robert")
	assert.Equal(t, []any{"ann", "bob", "robert"}, got)

	unsub()
	unsub()
	assert.Equal(t, 0, bob.name.Listeners())
	assert.Equal(t, 0, current.Listeners())
}

func TestChainMultiHopSwitch(t *testing.T) {
	reg := chainRegistry()
	c, err := CompileChain(reg, reflect.TypeFor[*team](), []string{"captain", "name"})
	require.NoError(t, err)

	ann, bob, cid := newPlayer("ann", 1), newPlayer("bob", 2), newPlayer("cid", 3)
	red := &team{captain: CellOf(ann)}
	blue := &team{captain: CellOf(cid)}
	current := CellOf(red)

	var got []any
	unsub := c.Bind(NewCapability[*team]("team", current), func(v any) { got = append(got, v) })
	defer unsub()
	require.Equal(t, []any{"ann"}, got)

	red.captain.Set(bob)
	assert.Equal(t, 0, ann.name.Listeners())
	assert.Equal(t, 1, bob.name.Listeners())

	current.Set(blue)
	assert.Equal(t, 0, red.captain.Listeners(), "switching the root drops every downstream hop")
	assert.Equal(t, 0, bob.name.Listeners())
	assert.Equal(t, 1, blue.captain.Listeners())
	assert.Equal(t, 1, cid.name.Listeners())

	red.captain.Set(ann)
	bob.name.Set("stale")

	assert.Equal(t, []any{"ann", "bob", "cid"}, got)
}

func TestChainSuspendsOnNil(t *testing.T) {
	reg := chainRegistry()
	c, err := CompileChain(reg, reflect.TypeFor[*player](), []string{"name"})
	require.NoError(t, err)

	ann := newPlayer("ann", 1)
	current := NewCell[*player]()

	var got []any
	unsub := c.Bind(NewCapability[*player]("player", current), func(v any) { got = append(got, v) })
	defer unsub()

	current.Set(nil)
	assert.Empty(t, got)

	current.Set(ann)
	current.Set(nil)
	assert.Equal(t, 0, ann.name.Listeners())

	ann.name.Set("hidden")
	assert.Equal(t, []any{"ann"}, got)

	current.Set(ann)
	assert.Equal(t, []any{"ann", "hidden"}, got)
}

func TestChainSwitchDuringReplay(t *testing.T) {
	reg := chainRegistry()
	c, err := CompileChain(reg, reflect.TypeFor[*player](), []string{"name"})
	require.NoError(t, err)

	ann, bob := newPlayer("ann", 1), newPlayer("bob", 2)
	current := NewCell[*player]()

	var got []any
	unsub := c.Bind(NewCapability[*player]("player", current), func(v any) {
		got = append(got, v)
		if v == "ann" {
			current.Set(bob)
		}
	})
	defer unsub()

	current.Set(ann)

	assert.Equal(t, []any{"ann", "bob"}, got)
	assert.Equal(t, 0, ann.name.Listeners())
	assert.Equal(t, 1, bob.name.Listeners())
}
