// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/puzzle"
)

func target(x, z float64) *geom.Vec3 {
	v := geom.V(x, 0, z)
	return &v
}

func threePrisms(p2Rotation int) *puzzle.State {
	return puzzle.NewState(
		puzzle.NewPrism("p1", geom.V(0, 0, 0), 90, puzzle.PrismNormal, false),
		puzzle.NewPrism("p2", geom.V(2, 0, 0), p2Rotation, puzzle.PrismNormal, false),
		puzzle.NewPrism("p3", geom.V(4, 0, 0), 90, puzzle.PrismNormal, false),
		puzzle.NewRune("rune", geom.V(6, 0, 0)),
	)
}

func TestValidate_AllAligned(t *testing.T) {
	v := NewValidator(0, nil)
	res := v.Validate([]string{"p1", "p2", "p3"}, threePrisms(90), target(6, 0), nil)

	assert.True(t, res.Valid)
	assert.Equal(t, -1, res.BrokenAt)
	require.Len(t, res.Links, 3)
	assert.Equal(t, TargetID, res.Links[2].To)
	assert.InDelta(t, 90, res.Links[0].Required, 1e-9)
	assert.Equal(t, map[string]bool{"p1": true, "p2": true, "p3": true}, res.Powered)
}

func TestValidate_EarlyBreakUnpowersDownstream(t *testing.T) {
	v := NewValidator(0, nil)
	state := threePrisms(0)
	chain := []string{"p1", "p2", "p3"}

	res := v.Validate(chain, state, target(6, 0), nil)
	assert.False(t, res.Valid)
	assert.False(t, v.IsChainValid(chain, state, target(6, 0), nil))
	assert.Equal(t, 1, res.BrokenAt)

	assert.True(t, res.Links[0].Satisfied)
	assert.Equal(t, FaultMisaligned, res.Links[1].Fault)
	assert.True(t, res.Links[2].Satisfied, "p3 itself is aimed at the target")

	assert.True(t, res.Powered["p1"])
	assert.True(t, res.Powered["p2"])
	assert.False(t, res.Powered["p3"], "nothing past a broken link is powered")
}

func TestValidate_Tolerance(t *testing.T) {
	state := puzzle.NewState(puzzle.NewPrism("p1", geom.V(0, 0, 0), 90, puzzle.PrismNormal, false))

	// Required heading atan2(1, 2) is about 63.4 degrees, 26.6 from 90.
	assert.False(t, NewValidator(0, nil).IsChainValid([]string{"p1"}, state, target(2, 1), nil))
	assert.True(t, NewValidator(30, nil).IsChainValid([]string{"p1"}, state, target(2, 1), nil))
	// atan2(9, 1) is about 83.7 degrees.
	assert.True(t, NewValidator(0, nil).IsChainValid([]string{"p1"}, state, target(9, 1), nil))
}

func TestValidate_Faults(t *testing.T) {
	state := puzzle.NewState(
		puzzle.NewPrism("p1", geom.V(0, 0, 0), 90, puzzle.PrismNormal, false),
		puzzle.NewPrism("twin", geom.V(0, 1, 0), 90, puzzle.PrismNormal, false),
		puzzle.NewBlock("b1", geom.V(3, 0, 3)),
	)
	v := NewValidator(0, nil)

	tests := []struct {
		name  string
		chain []string
		final *geom.Vec3
		fault Fault
	}{
		{"missing element", []string{"p1", "ghost"}, target(4, 0), FaultMissing},
		{"non-prism element", []string{"p1", "b1"}, target(4, 0), FaultNotPrism},
		{"stacked prisms", []string{"p1", "twin"}, target(4, 0), FaultDegenerate},
		{"no target", []string{"p1"}, nil, FaultNoTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.chain, state, tt.final, nil)
			assert.False(t, res.Valid)
			require.GreaterOrEqual(t, res.BrokenAt, 0)
			assert.Equal(t, tt.fault, res.Links[res.BrokenAt].Fault)
		})
	}
}

func TestValidate_MissingFirstElement(t *testing.T) {
	res := NewValidator(0, nil).Validate([]string{"ghost", "p1"},
		puzzle.NewState(puzzle.NewPrism("p1", geom.V(0, 0, 0), 90, puzzle.PrismNormal, false)),
		target(4, 0), nil)
	assert.False(t, res.Valid)
	assert.Equal(t, 0, res.BrokenAt)
	assert.Empty(t, res.Powered)
}

func TestValidate_Occlusion(t *testing.T) {
	els := []puzzle.Element{
		puzzle.NewPrism("p1", geom.V(0, 0, 0), 90, puzzle.PrismNormal, false),
		puzzle.NewPrism("p2", geom.V(4, 0, 0), 90, puzzle.PrismNormal, false),
	}
	chain := []string{"p1", "p2"}
	v := NewValidator(0, nil)

	t.Run("declared pillar", func(t *testing.T) {
		state := puzzle.NewState(els...)
		pillar := puzzle.NewObstacle("pillar", puzzle.ObstaclePillar, geom.V(2, 0, 0.2), 0)
		res := v.Validate(chain, state, target(8, 0), state.Occluders(pillar))
		assert.False(t, res.Valid)
		assert.Equal(t, FaultOccluded, res.Links[0].Fault)
		assert.Equal(t, "pillar", res.Links[0].Blocker)
		assert.False(t, res.Powered["p2"])
	})

	t.Run("block element", func(t *testing.T) {
		state := puzzle.NewState(append(els, puzzle.NewBlock("b1", geom.V(6, 0, 0)))...)
		res := v.Validate(chain, state, target(8, 0), state.Occluders())
		assert.False(t, res.Valid)
		assert.Equal(t, 1, res.BrokenAt)
		assert.Equal(t, "b1", res.Links[1].Blocker)
		assert.True(t, res.Powered["p2"])
	})

	t.Run("clear of the segment", func(t *testing.T) {
		state := puzzle.NewState(els...)
		far := puzzle.NewObstacle("far", puzzle.ObstacleCrystal, geom.V(2, 0, 2), 0)
		assert.True(t, v.IsChainValid(chain, state, target(8, 0), state.Occluders(far)))
	})
}

func TestValidateAll(t *testing.T) {
	state := threePrisms(90)
	v := NewValidator(0, nil)

	results := v.ValidateAll([][]string{{"p1", "p2", "p3"}, {"p2", "p1"}}, state, target(6, 0), nil)
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.Equal(t, 1, CountValid(results))

	union := PoweredUnion(results)
	assert.True(t, union["p1"])
	assert.True(t, union["p3"])
}

func TestValidate_EmptyChain(t *testing.T) {
	res := NewValidator(0, nil).Validate(nil, threePrisms(90), target(6, 0), nil)
	assert.False(t, res.Valid)
	assert.Empty(t, res.Links)
}
