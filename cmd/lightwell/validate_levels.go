// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/lightwell/internal/audit"
	"github.com/holomush/lightwell/internal/level"
)

type validateLevelsConfig struct {
	dir string
}

// newValidateLevelsCmd creates the validate-levels subcommand.
func newValidateLevelsCmd(a *app) *cobra.Command {
	cfg := &validateLevelsConfig{}

	cmd := &cobra.Command{
		Use:   "validate-levels",
		Short: "Validate level packs without playing them",
		Long: `Checks every level pack against the schema and the level rules, then
applies each declared solution and verifies it solves the level within its
move budget. Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch authoring errors early:
  lightwell validate-levels --dir ./levels`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidateLevels(cmd.OutOrStdout(), a, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.dir, "dir", "", "directory of level packs (default: levels.dir or the built-in levels)")

	return cmd
}

func runValidateLevels(out io.Writer, a *app, cfg *validateLevelsConfig) error {
	dir := cfg.dir
	if dir == "" {
		dir = a.cfg.Levels.Dir
	}

	var (
		packs   []*level.Pack
		loadErr error
	)
	if dir == "" {
		fmt.Fprintln(out, "Validating built-in levels")
		packs, loadErr = level.BuiltinPacks()
	} else {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return oops.Code("PACK_PARSE_FAILED").With("dir", dir).Wrap(err)
		}
		fmt.Fprintf(out, "Validating levels in %s\n", abs)
		packs, loadErr = level.LoadFS(os.DirFS(abs), ".")
	}

	problems := 0
	for _, err := range leafErrors(loadErr) {
		fmt.Fprintf(out, "error: %s\n", describeLoadError(err))
		problems++
	}

	catalog, err := level.NewCatalog(packs...)
	if err != nil {
		fmt.Fprintf(out, "error: %s\n", describeLoadError(err))
		return validationFailed(problems + 1)
	}

	reports := audit.New(a.cfg.EngineConfig().Evaluator, a.logger).Catalog(catalog)
	for _, rep := range reports {
		verdict := "ok"
		if !rep.OK() {
			verdict = "FAIL"
			problems += len(rep.Errors())
		}
		fmt.Fprintf(out, "Level %d %s: %s (clicks %d, block steps %d)\n", rep.LevelID, rep.Name, verdict, rep.Clicks, rep.BlockSteps)
		for _, f := range rep.Findings {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}

	if problems > 0 {
		return validationFailed(problems)
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No levels found")
		return nil
	}
	fmt.Fprintf(out, "All %d levels valid\n", len(reports))
	return nil
}

func validationFailed(problems int) error {
	return oops.Code("LEVEL_VALIDATION_FAILED").
		With("problems", problems).
		Errorf("validation failed: %d problems", problems)
}

// leafErrors flattens joined errors. A nil err yields nothing.
func leafErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, leafErrors(e)...)
		}
		return out
	}
	return []error{err}
}

// describeLoadError prefixes the message with the pack file when known.
func describeLoadError(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if path, ok := oopsErr.Context()["path"].(string); ok && path != "" {
			return fmt.Sprintf("%s: %s", path, err.Error())
		}
	}
	return err.Error()
}
