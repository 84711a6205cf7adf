// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"github.com/samber/oops"
)

// Error codes for command failures.
const (
	CodeParseFailed = "COMMAND_PARSE_FAILED"
	CodeNilSession  = "NIL_SESSION"
	CodeNoLevel     = "NO_LEVEL"
)

// ErrNilSession is returned when a dispatcher is built without a session.
var ErrNilSession = oops.Code(CodeNilSession).Errorf("session is required")

// ErrNoLevel creates an error for commands that need a loaded level.
func ErrNoLevel(cmd string) error {
	return oops.Code(CodeNoLevel).
		With("command", cmd).
		Errorf("no level loaded")
}

// PlayerMessage extracts a player-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	switch oopsErr.Code() {
	case CodeParseFailed:
		if msg, ok := oopsErr.Context()["message"].(string); ok && msg != "" {
			return "I don't understand that (" + msg + "). Try 'help'."
		}
		return "I don't understand that. Try 'help'."
	case CodeNoLevel:
		return "No level is loaded. Try 'load 1' or 'next'."
	case "LEVEL_NOT_FOUND":
		return "There is no such level. Try 'levels'."
	default:
		return "Something went wrong. Try again."
	}
}
