// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/holomush/lightwell/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("LEVEL_INVALID").Errorf("test error")
	errutil.AssertErrorCode(t, err, "LEVEL_INVALID")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("level_id", 3).Errorf("test error")
	errutil.AssertErrorContext(t, err, "level_id", 3)
}

func TestAssertErrorHint_MatchingHint(t *testing.T) {
	err := oops.Code("PROGRESS_SCHEMA_MISSING").Hint("run `lightwell migrate up`").Errorf("test error")
	errutil.AssertErrorHint(t, err, "migrate up")
}
