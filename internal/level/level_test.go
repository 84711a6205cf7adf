// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package level

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/scoring"
	"github.com/holomush/lightwell/pkg/errutil"
)

const minimalPack = `
format: "1.2.0"
name: Test Pack
levels:
  - id: 1
    name: Straight
    mode: beam
    max_moves: 4
    light_sources:
      - {position: [-3, 0, 0], direction: 90}
    target: [3, 0, 0]
    elements:
      - {id: p1, type: prism, position: [0, 0, 0], rotation: 0}
`

func TestParsePack_Minimal(t *testing.T) {
	p, err := ParsePack([]byte(minimalPack))
	require.NoError(t, err)
	require.Len(t, p.Levels, 1)

	l := p.Levels[0]
	assert.Equal(t, "Straight", l.Name)
	assert.Equal(t, ModeBeam, l.Mode)
	require.Len(t, l.LightSources, 1)
	assert.InDelta(t, 90, l.LightSources[0].Direction.Degrees, 1e-9)

	target, ok := l.Target()
	require.True(t, ok)
	assert.Equal(t, geom.V(3, 0, 0), target)
}

func TestParsePack_Empty(t *testing.T) {
	_, err := ParsePack(nil)
	errutil.AssertErrorCode(t, err, "PACK_PARSE_FAILED")
}

func TestParsePack_SchemaRejectsUnknownField(t *testing.T) {
	data := minimalPack + "    colour: blue\n"
	_, err := ParsePack([]byte(data))
	errutil.AssertErrorCode(t, err, "SCHEMA_INVALID")
}

func TestParsePack_SchemaRejectsBadRotation(t *testing.T) {
	data := `
format: "1.0.0"
name: Bad
levels:
  - id: 1
    name: Crooked
    mode: chain
    max_moves: 4
    chain: [p1]
    elements:
      - {id: p1, type: prism, position: [0, 0, 0], rotation: 30}
      - {id: r1, type: rune, position: [3, 0, 0]}
`
	_, err := ParsePack([]byte(data))
	errutil.AssertErrorCode(t, err, "SCHEMA_INVALID")
}

func TestParsePack_FormatGate(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"major too new", "2.0.0"},
		{"too old", "0.9.0"},
		{"not semver", "latest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFormat(tt.format)
			errutil.AssertErrorCode(t, err, "PACK_FORMAT_UNSUPPORTED")
		})
	}
	assert.NoError(t, CheckFormat("1.9.3"))
}

func TestParsePack_SemanticErrorsJoined(t *testing.T) {
	data := `
format: "1.0.0"
name: Broken
levels:
  - id: 7
    name: Dangling
    mode: chain
    max_moves: 3
    chain: [p1, ghost, r1]
    solution: {p1: 90, nobody: 45}
    star_thresholds: {gold: 3, silver: 2}
    elements:
      - {id: p1, type: prism, position: [0, 0, 0]}
      - {id: p1, type: prism, position: [1, 0, 0]}
      - {id: r1, type: rune, position: [3, 0, 0]}
`
	_, err := ParsePack([]byte(data))
	errutil.AssertErrorCode(t, err, "LEVEL_INVALID")

	problems := ValidationErrors(err)
	fields := make([]string, 0, len(problems))
	for _, p := range problems {
		fields = append(fields, p.Field)
	}
	assert.Contains(t, fields, "elements[1].id")
	assert.Contains(t, fields, "chain[1]")
	assert.Contains(t, fields, "chain[2]")
	assert.Contains(t, fields, "star_thresholds")
	assert.Contains(t, fields, "solution.nobody")
}

func TestLevelValidate(t *testing.T) {
	base := func() *Level {
		return &Level{
			ID:       1,
			Name:     "ok",
			Mode:     ModeBeam,
			MaxMoves: 5,
			LightSources: []LightSource{
				{Position: Point{-3, 0, 0}, Direction: Heading{Degrees: 90}},
			},
			TargetPoint: &Point{3, 0, 0},
			Elements: []ElementSpec{
				{ID: "p1", Type: puzzle.KindPrism, Position: Point{0, 0, 0}},
				{ID: "b1", Type: puzzle.KindBlock, Position: Point{1, 0, 0}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Level)
		field  string
	}{
		{"zero id", func(l *Level) { l.ID = 0 }, "id"},
		{"no name", func(l *Level) { l.Name = "" }, "name"},
		{"no moves", func(l *Level) { l.MaxMoves = 0 }, "max_moves"},
		{"unknown mode", func(l *Level) { l.Mode = "maze" }, "mode"},
		{"no sources", func(l *Level) { l.LightSources = nil }, "light_sources"},
		{"degenerate source", func(l *Level) { l.LightSources[0].Direction = Heading{Degenerate: true} }, "light_sources[0].direction"},
		{"no target", func(l *Level) { l.TargetPoint = nil }, "target"},
		{"too many beams", func(l *Level) { l.RequiredBeams = 2 }, "required_beams"},
		{"bad rotation", func(l *Level) { l.Elements[0].Rotation = 50 }, "elements[0].rotation"},
		{"bad prism kind", func(l *Level) { l.Elements[0].PrismKind = "lens" }, "elements[0].prism_kind"},
		{"bad type", func(l *Level) { l.Elements[1].Type = "lamp" }, "elements[1].type"},
		{"bad obstacle", func(l *Level) { l.Obstacles = []ObstacleSpec{{Kind: "tree"}} }, "obstacles[0].kind"},
		{"solution on block", func(l *Level) { l.Solution = map[string]int{"b1": 90} }, "solution.b1"},
		{"position on prism", func(l *Level) { l.SolutionPositions = map[string]Point{"p1": {0, 0, 1}} }, "solution_positions.p1"},
		{"bronze above max", func(l *Level) {
			l.StarThresholds = &scoring.Thresholds{Gold: 1, Silver: 2, Bronze: 9}
		}, "star_thresholds"},
	}

	require.NoError(t, base().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base()
			tt.mutate(l)
			err := l.Validate()
			errutil.AssertErrorCode(t, err, "LEVEL_INVALID")
			errutil.AssertErrorContext(t, err, "level_id", l.ID)

			var fields []string
			for _, p := range ValidationErrors(err) {
				fields = append(fields, p.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLevelValidate_ChainMode(t *testing.T) {
	l := &Level{
		ID:              2,
		Name:            "chain",
		Mode:            ModeChain,
		MaxMoves:        5,
		Chain:           []string{"p1", "r1"},
		SecondaryChains: [][]string{{"p2"}},
		RequiredChains:  3,
		Elements: []ElementSpec{
			{ID: "p1", Type: puzzle.KindPrism},
			{ID: "p2", Type: puzzle.KindPrism},
			{ID: "r1", Type: puzzle.KindRune, Position: Point{3, 0, 0}},
		},
	}
	err := l.Validate()
	require.Error(t, err)

	var fields []string
	for _, p := range ValidationErrors(err) {
		fields = append(fields, p.Field)
	}
	assert.Equal(t, []string{"chain[1]", "required_chains"}, fields)
}

func TestHeading_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		in         string
		want       float64
		degenerate bool
	}{
		{"90", 90, false},
		{"-90", 270, false},
		{"[1, 0, 0]", 90, false},
		{"[0, 0, -2]", 180, false},
		{"[-1, 1]", 315, false},
		{"[0, 1, 0]", 0, true},
	}
	for _, tt := range tests {
		var h Heading
		require.NoError(t, yaml.Unmarshal([]byte(tt.in), &h), tt.in)
		assert.InDelta(t, tt.want, h.Degrees, 1e-9, tt.in)
		assert.Equal(t, tt.degenerate, h.Degenerate, tt.in)
	}

	var h Heading
	err := yaml.Unmarshal([]byte("[1, 2, 3, 4]"), &h)
	errutil.AssertErrorCode(t, err, "PACK_PARSE_FAILED")
	err = yaml.Unmarshal([]byte("{x: 1}"), &h)
	errutil.AssertErrorCode(t, err, "PACK_PARSE_FAILED")
}

func TestLevel_Helpers(t *testing.T) {
	yes := true
	l := &Level{
		ID:              3,
		Mode:            ModeChain,
		MaxMoves:        10,
		RequireFacing:   &yes,
		Chain:           []string{"a", "b"},
		SecondaryChains: [][]string{{"c", "b"}, {}},
		Obstacles:       []ObstacleSpec{{Kind: puzzle.ObstacleWall, Position: Point{1, 0, 1}}},
		Elements: []ElementSpec{
			{ID: "r", Type: puzzle.KindRune, Position: Point{5, 0, 5}},
		},
	}

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "b"}}, l.Chains())
	assert.Equal(t, 2, l.Required(2), "zero means all")
	l.RequiredChains = 1
	assert.Equal(t, 1, l.Required(2))
	assert.True(t, l.RequiresFacing(false))
	assert.Equal(t, 10, l.Par())

	target, ok := l.Target()
	require.True(t, ok)
	assert.Equal(t, geom.V(5, 0, 5), target, "falls back to the rune")

	obs := l.DeclaredObstacles()
	require.Len(t, obs, 1)
	assert.Equal(t, "obstacle-1", obs[0].ID())
	assert.InDelta(t, 1.0, obs[0].Radius(), 1e-9)

	c := l.Clone()
	c.Chain[0] = "zzz"
	*c.RequireFacing = false
	assert.Equal(t, "a", l.Chain[0])
	assert.True(t, *l.RequireFacing)
}

func TestLevel_NewState(t *testing.T) {
	l := &Level{
		Elements: []ElementSpec{
			{ID: "p", Type: puzzle.KindPrism, Rotation: 90, PrismKind: puzzle.PrismMirror, Locked: true},
			{ID: "o", Type: puzzle.KindObstacle, Position: Point{1, 0, 1}},
			{ID: "j", Type: puzzle.KindJewel, Activated: true},
		},
	}
	s, err := l.NewState()
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	el, _ := s.Get("p")
	p := el.(*puzzle.Prism)
	assert.Equal(t, 90, p.Rotation())
	assert.Equal(t, puzzle.PrismMirror, p.PrismKind())
	assert.True(t, p.Locked())

	el, _ = s.Get("o")
	assert.Equal(t, puzzle.ObstaclePillar, el.(*puzzle.Obstacle).ObstacleKind(), "defaults to pillar")

	el, _ = s.Get("j")
	assert.True(t, el.(puzzle.Activatable).Activated())

	bad := &Level{ID: 9, Elements: []ElementSpec{{ID: "x", Type: "lamp"}}}
	_, err = bad.NewState()
	errutil.AssertErrorCode(t, err, "LEVEL_INVALID")
}

func TestLevel_SolvedState(t *testing.T) {
	l := &Level{
		ID:                3,
		Solution:          map[string]int{"p": 135, "fixed": 0},
		SolutionPositions: map[string]Point{"b": {2, 0, 1}},
		Elements: []ElementSpec{
			{ID: "p", Type: puzzle.KindPrism, Rotation: 0},
			{ID: "fixed", Type: puzzle.KindPrism, Rotation: 90, Locked: true},
			{ID: "b", Type: puzzle.KindBlock, Position: Point{1, 0, 1}},
		},
	}
	s, err := l.SolvedState()
	require.NoError(t, err)

	el, _ := s.Get("p")
	assert.Equal(t, 135, el.(puzzle.Rotatable).Rotation())
	el, _ = s.Get("fixed")
	assert.Equal(t, 90, el.(puzzle.Rotatable).Rotation(), "locked prisms keep their rotation")
	el, _ = s.Get("b")
	assert.Equal(t, Point{2, 0, 1}.Vec(), el.Position())

	fresh, err := l.NewState()
	require.NoError(t, err)
	el, _ = fresh.Get("p")
	assert.Equal(t, 0, el.(puzzle.Rotatable).Rotation(), "solving does not touch new states")

	l.Solution = map[string]int{"b": 45}
	_, err = l.SolvedState()
	errutil.AssertErrorCode(t, err, "LEVEL_INVALID")

	l.Solution = nil
	l.SolutionPositions = map[string]Point{"ghost": {0, 0, 0}}
	_, err = l.SolvedState()
	errutil.AssertErrorCode(t, err, "LEVEL_INVALID")
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, SchemaID, doc["$id"])
	assert.Equal(t, "Lightwell Level Pack", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "format")
	assert.Contains(t, props, "levels")
}

func TestCatalog(t *testing.T) {
	a := &Pack{Name: "a", Levels: []*Level{{ID: 2, Name: "Beta"}, {ID: 1, Name: "Alpha Light"}}}
	b := &Pack{Name: "b", Levels: []*Level{{ID: 5, Name: "Gamma Light"}}}
	c, err := NewCatalog(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, 1, first)

	next, ok := c.Next(2)
	require.True(t, ok)
	assert.Equal(t, 5, next)
	_, ok = c.Next(5)
	assert.False(t, ok)

	l, err := c.Get(2)
	require.NoError(t, err)
	l.Name = "changed"
	again, _ := c.Get(2)
	assert.Equal(t, "Beta", again.Name, "Get returns a copy")

	_, err = c.Get(99)
	errutil.AssertErrorCode(t, err, "LEVEL_NOT_FOUND")
	errutil.AssertErrorContext(t, err, "level_id", 99)

	got, err := c.Filter("*light")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 5, got[1].ID)

	got, err = c.Filter("2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Beta", got[0].Name)

	_, err = c.Filter("[")
	errutil.AssertErrorCode(t, err, "LEVEL_FILTER_INVALID")

	_, err = NewCatalog(a, &Pack{Name: "dup", Levels: []*Level{{ID: 1}}})
	errutil.AssertErrorCode(t, err, "CATALOG_DUPLICATE_LEVEL")
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 12, c.Len())

	for _, l := range c.All() {
		assert.NotEmpty(t, l.Solution, "level %d has a solution", l.ID)
	}

	ripple, err := c.Get(6)
	require.NoError(t, err)
	assert.True(t, ripple.Ripple)
	assert.Equal(t, ModeBeam, ripple.Mode)

	cross, err := c.Get(8)
	require.NoError(t, err)
	assert.InDelta(t, 90, cross.LightSources[0].Direction.Degrees, 1e-9, "vector direction")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.yaml"), []byte(minimalPack), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	c, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.yml"), []byte("format: [\n"), 0o600))
	_, err = LoadDir(dir)
	errutil.AssertErrorCode(t, err, "PACK_PARSE_FAILED")

	_, err = LoadPackFile(filepath.Join(dir, "missing.yaml"))
	errutil.AssertErrorCode(t, err, "PACK_PARSE_FAILED")
}
