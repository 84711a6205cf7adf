// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/lightwell/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("PROGRESS_SCHEMA_MISSING").
		With("level_id", 4).
		Hint("run migrations").
		Errorf("relation does not exist")

	errutil.LogError(logger, "progress save failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "progress save failed", logEntry["msg"])
	assert.Equal(t, "PROGRESS_SCHEMA_MISSING", logEntry["code"])
	assert.Equal(t, "run migrations", logEntry["hint"])
	assert.Contains(t, logEntry, "context")
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
	assert.NotContains(t, logEntry, "code")
}

func TestCodeAndHint(t *testing.T) {
	err := oops.Code("LEVEL_NOT_FOUND").Hint("try levels").Errorf("level 9 not found")
	assert.Equal(t, "LEVEL_NOT_FOUND", errutil.Code(err))
	assert.Equal(t, "try levels", errutil.Hint(err))

	wrapped := oops.With("operation", "load").Wrap(err)
	assert.Equal(t, "LEVEL_NOT_FOUND", errutil.Code(wrapped), "code survives wrapping")

	assert.Empty(t, errutil.Code(errors.New("plain")))
	assert.Empty(t, errutil.Hint(errors.New("plain")))
}
