// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/lightwell/pkg/errutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		check func(t *testing.T, l *Line)
	}{
		{"rotate default", "rotate prism1", "rotate", func(t *testing.T, l *Line) {
			assert.Equal(t, "prism1", l.Rotate.ID)
			assert.Empty(t, l.Rotate.Dir)
		}},
		{"rotate ccw shorthand", "r prism-2 CCW", "rotate", func(t *testing.T, l *Line) {
			assert.Equal(t, "prism-2", l.Rotate.ID)
			assert.Equal(t, "CCW", l.Rotate.Dir)
		}},
		{"move", "move block1 -z", "move", func(t *testing.T, l *Line) {
			assert.Equal(t, "block1", l.Move.ID)
			assert.Equal(t, "-z", l.Move.Axis)
		}},
		{"activate", "  step plate1  ", "activate", func(t *testing.T, l *Line) {
			assert.Equal(t, "plate1", l.Activate.ID)
		}},
		{"load", "load 12", "load", func(t *testing.T, l *Line) {
			assert.Equal(t, 12, l.Load.ID)
		}},
		{"help topic", "help rotate", "help", func(t *testing.T, l *Line) {
			assert.Equal(t, "rotate", l.Help.Topic)
		}},
		{"bare help", "?", "help", nil},
		{"undo alias", "u", "undo", nil},
		{"case folded verb", "RESTART", "restart", nil},
		{"look alias", "look", "show", nil},
		{"exit alias", "exit", "quit", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Parse(tt.input)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Equal(t, tt.want, l.Name())
			if tt.check != nil {
				tt.check(t, l)
			}
		})
	}
}

func TestParse_Blank(t *testing.T) {
	l, err := Parse("   \t")
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{
		"dance",
		"rotate",
		"move block1 +y",
		"move block1",
		"load one",
		"undo now",
		"rotate p1 sideways",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, CodeParseFailed)
			assert.Contains(t, PlayerMessage(err), "help")
		})
	}
}
