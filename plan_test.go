package canopy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCacheReturnsSamePlan(t *testing.T) {
	cache := NewPlanCache(NewRegistry(testCatalog(), nil), nil)
	typ := reflect.TypeFor[*nameLabel]()

	a, err := cache.Build(typ, Config{{Receiver: "OnName", Type: "Player", Path: "name"}})
	require.NoError(t, err)
	b, err := cache.Build(typ, Config{{Receiver: "OnName", Type: "Player", Path: "name"}})
	require.NoError(t, err)

	assert.Same(t, a, b, "structurally equal configurations share a plan")
	assert.Equal(t, 1, cache.Compiled())

	c, err := cache.Build(typ, nil)
	require.NoError(t, err)
	d, err := cache.Build(typ, Config{})
	require.NoError(t, err)

	assert.NotSame(t, a, c)
	assert.Same(t, c, d, "nil and empty configurations are the same configuration")
	assert.Equal(t, 2, cache.Compiled())
}

func TestPlanCacheKeysByNodeType(t *testing.T) {
	cache := NewPlanCache(NewRegistry(testCatalog(), nil), nil)

	a, err := cache.Build(reflect.TypeFor[*scoreView](), nil)
	require.NoError(t, err)
	b, err := cache.Build(reflect.TypeFor[*relay](), nil)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, reflect.TypeFor[*relay](), b.NodeType())
}

func TestPlanDefaultInstructions(t *testing.T) {
	cache := NewPlanCache(NewRegistry(testCatalog(), nil), nil)

	plan, err := cache.Build(reflect.TypeFor[*nameLabel](), nil)
	require.NoError(t, err)

	instrs := plan.Instructions()
	require.Len(t, instrs, 2)
	assert.Equal(t, "OnName", instrs[0].Receiver)
	assert.Equal(t, reflect.TypeFor[string](), instrs[0].Type)
	assert.Equal(t, "", instrs[0].Path())
	assert.Equal(t, "OnLevel", instrs[1].Receiver)
}

func TestPlanConfiguredInstructions(t *testing.T) {
	cache := NewPlanCache(NewRegistry(testCatalog(), nil), nil)

	plan, err := cache.Build(reflect.TypeFor[*nameLabel](), Config{
		{Receiver: "OnLevel", Type: "Player", Path: "level"},
		{Receiver: "OnName", Type: IgnoreReceiver},
	})
	require.NoError(t, err)

	instrs := plan.Instructions()
	require.Len(t, instrs, 1, "ignored receivers produce no instruction")
	assert.Equal(t, "OnLevel", instrs[0].Receiver)
	assert.Equal(t, reflect.TypeFor[*player](), instrs[0].Type)
	assert.Equal(t, reflect.TypeFor[int](), instrs[0].Param)
	assert.Equal(t, "level", instrs[0].Path())
}

func TestPlanConstructionFailures(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		cause error
	}{
		{"unknown accessor", Config{{Receiver: "OnName", Type: "Player", Path: "nickname"}}, ErrUnknownAccessor},
		{"unknown type", Config{{Receiver: "OnName", Type: "Referee"}}, ErrUnknownType},
		{"override not assignable", Config{{Receiver: "OnName", Type: "Player"}}, ErrTypeMismatch},
		{"path result not assignable", Config{{Receiver: "OnName", Type: "Player", Path: "level"}}, ErrTypeMismatch},
		{"unknown receiver", Config{{Receiver: "OnColour", Type: "Player"}}, ErrUnknownReceiver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs bindErrors
			cache := NewPlanCache(NewRegistry(testCatalog(), nil), errs.report)

			plan, err := cache.Build(reflect.TypeFor[*nameLabel](), tt.cfg)
			require.NoError(t, err, "construction failures are not fatal")

			require.Len(t, errs, 1)
			assert.Equal(t, KindBindingConstruction, errs[0].Kind)
			assert.Equal(t, "NameLabel", errs[0].NodeType)
			assert.True(t, errors.Is(errs[0], tt.cause), "got %v", errs[0])
			assert.Equal(t, tt.cfg[0].Path, errs[0].Path)

			for _, instr := range plan.Instructions() {
				assert.NotEqual(t, tt.cfg[0].Receiver, instr.Receiver)
			}

			// Failures are reported once per compiled plan.
			_, err = cache.Build(reflect.TypeFor[*nameLabel](), tt.cfg)
			require.NoError(t, err)
			assert.Len(t, errs, 1)
		})
	}
}

func TestPlanMalformedConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty receiver", Config{{Receiver: ""}}},
		{"duplicate receiver", Config{{Receiver: "OnName"}, {Receiver: "OnName", Type: "-"}}},
		{"empty path segment", Config{{Receiver: "OnName", Type: "Player", Path: "name//first"}}},
		{"trailing separator", Config{{Receiver: "OnName", Type: "Player", Path: "name/"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewPlanCache(NewRegistry(testCatalog(), nil), nil)

			plan, err := cache.Build(reflect.TypeFor[*nameLabel](), tt.cfg)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, ErrMalformedConfig)
			assert.Equal(t, 0, cache.Compiled(), "malformed configurations are never cached")
		})
	}
}

func TestConfigKeyAndFingerprint(t *testing.T) {
	a := Config{{Receiver: "OnName", Type: "Player", Path: "name"}}
	b := Config{{Receiver: "OnName", Type: "Player", Path: "name"}}
	c := Config{{Receiver: "OnName", Type: "Player,", Path: "name"}}

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	swapped := Config{{Receiver: "B"}, {Receiver: "A"}}
	ordered := Config{{Receiver: "A"}, {Receiver: "B"}}
	assert.NotEqual(t, swapped.Key(), ordered.Key(), "record order is significant")
}

func TestPlanApplyReportsResolutionFailure(t *testing.T) {
	var errs bindErrors
	reg := NewRegistry(testCatalog(), nil)
	cache := NewPlanCache(reg, nil)

	v := &scoreView{}
	res := NewResolver(NewHierarchy().Add(v, nil), reg)

	plan, err := cache.Build(reflect.TypeOf(v), nil)
	require.NoError(t, err)

	bindings := plan.Apply(res, v, errs.report)
	assert.Empty(t, bindings)
	require.Len(t, errs, 1)
	assert.Equal(t, KindResolutionFailure, errs[0].Kind)
	assert.Equal(t, "OnScore", errs[0].Member)
	assert.Same(t, v, errs[0].Node)
	assert.ErrorIs(t, errs[0], ErrNotFound)
}
