// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/lightwell/pkg/errutil"
)

func TestTrace(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "chain level as authored",
			args:     []string{"trace", "--level", "1"},
			contains: []string{"Level 1: First Light [chain, initial]", "Chain 0: broken", "not complete"},
		},
		{
			name:     "chain level solved",
			args:     []string{"trace", "--level", "1", "--solved"},
			contains: []string{"[chain, solved]", "Chain 0: valid", "prism1 -> prism2", ": complete"},
		},
		{
			name:     "beam level solved",
			args:     []string{"trace", "--level", "6", "--solved"},
			contains: []string{"Beam 0 from", "reaches the target", ": complete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, nil, "", tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestTrace_RequiresLevel(t *testing.T) {
	_, _, err := execute(t, nil, "", "trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level")
}

func TestTrace_UnknownLevel(t *testing.T) {
	_, _, err := execute(t, nil, "", "trace", "--level", "999")
	errutil.AssertErrorCode(t, err, "LEVEL_NOT_FOUND")
}
