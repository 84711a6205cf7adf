// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

var replLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Axis", Pattern: `[+-][xXzZ]\b`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][\w-]*`},
	{Name: "Punct", Pattern: `\?`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Line is one parsed REPL input. Exactly one field is set.
type Line struct {
	Pos      lexer.Position `parser:""`
	Rotate   *Rotate        `parser:"  @@"`
	Move     *Move          `parser:"| @@"`
	Activate *Activate      `parser:"| @@"`
	Load     *Load          `parser:"| @@"`
	Help     *Help          `parser:"| @@"`
	Verb     string         `parser:"| @('undo' | 'u' | 'restart' | 'next' | 'show' | 'look' | 'beams' | 'levels' | 'quit' | 'exit')"`
}

// Rotate turns a prism one click. Dir is "cw", "ccw" or empty for cw.
type Rotate struct {
	ID  string `parser:"('rotate' | 'r') @Ident"`
	Dir string `parser:"@('cw' | 'ccw')?"`
}

// Move slides a block one unit along an axis such as "+x".
type Move struct {
	ID   string `parser:"('move' | 'm') @Ident"`
	Axis string `parser:"@Axis"`
}

// Activate collects a plate or jewel.
type Activate struct {
	ID string `parser:"('activate' | 'a' | 'step') @Ident"`
}

// Load switches to a level by id.
type Load struct {
	ID int `parser:"('load' | 'level') @Int"`
}

// Help lists commands, or describes one.
type Help struct {
	Topic string `parser:"('help' | '?') @Ident?"`
}

var lineParser = participle.MustBuild[Line](
	participle.Lexer(replLexer),
	participle.CaseInsensitive("Ident"),
)

// Parse parses one REPL line. Blank input yields a nil Line and no error.
func Parse(input string) (*Line, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}
	line, err := lineParser.ParseString("", trimmed)
	if err != nil {
		return nil, oops.Code(CodeParseFailed).
			With("input", trimmed).
			With("message", parseMessage(err)).
			Wrap(err)
	}
	return line, nil
}

// Name is the canonical command name, used for metrics and help.
func (l *Line) Name() string {
	switch {
	case l.Rotate != nil:
		return "rotate"
	case l.Move != nil:
		return "move"
	case l.Activate != nil:
		return "activate"
	case l.Load != nil:
		return "load"
	case l.Help != nil:
		return "help"
	}
	switch v := strings.ToLower(l.Verb); v {
	case "u":
		return "undo"
	case "look":
		return "show"
	case "exit":
		return "quit"
	default:
		return v
	}
}

func parseMessage(err error) string {
	var perr participle.Error
	if errors.As(err, &perr) {
		return fmt.Sprintf("column %d: %s", perr.Position().Column, perr.Message())
	}
	return err.Error()
}
