// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/lightwell/pkg/errutil"
)

func TestNewULID(t *testing.T) {
	id1 := NewULID()
	id2 := NewULID()

	assert.NotEqual(t, id1.String(), id2.String())
	assert.Less(t, id1.String(), id2.String(), "monotonic ids sort in creation order")
}

func TestParseULID(t *testing.T) {
	original := NewULID()
	parsed, err := ParseULID(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	_, err = ParseULID("invalid")
	errutil.AssertErrorCode(t, err, "INVALID_ULID")
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := NewSession(nil, DefaultConfig())
	b := NewSession(nil, DefaultConfig())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "session:"+a.ID().String(), a.Stream())
}
