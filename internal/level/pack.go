// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package level

import (
	"bytes"
	"errors"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// SupportedFormat is the range of pack format versions this build reads.
const SupportedFormat = ">= 1.0.0, < 2.0.0"

// supportedFormat is parsed once; a bad constant is a programming error.
var supportedFormat = func() *semver.Constraints {
	c, err := semver.NewConstraint(SupportedFormat)
	if err != nil {
		panic(err)
	}
	return c
}()

// Pack is a YAML file holding an ordered set of levels.
type Pack struct {
	Format string   `yaml:"format" json:"format" jsonschema:"required,minLength=1"`
	Name   string   `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Levels []*Level `yaml:"levels" json:"levels" jsonschema:"required,minItems=1"`
}

// ParsePack validates data against the pack schema, decodes it strictly,
// checks the format version and validates every level.
func ParsePack(data []byte) (*Pack, error) {
	if len(data) == 0 {
		return nil, oops.Code("PACK_PARSE_FAILED").Errorf("pack data is empty")
	}

	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p Pack
	if err := dec.Decode(&p); err != nil {
		return nil, oops.Code("PACK_PARSE_FAILED").Wrap(err)
	}

	if err := CheckFormat(p.Format); err != nil {
		return nil, oops.With("pack", p.Name).Wrap(err)
	}

	var errs []error
	for _, l := range p.Levels {
		if err := l.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, oops.Code("LEVEL_INVALID").
			With("pack", p.Name).
			Wrap(errors.Join(errs...))
	}

	return &p, nil
}

// CheckFormat reports whether a pack format version can be read.
func CheckFormat(format string) error {
	v, err := semver.NewVersion(format)
	if err != nil {
		return oops.Code("PACK_FORMAT_UNSUPPORTED").
			With("format", format).
			Wrapf(err, "invalid pack format version")
	}
	if !supportedFormat.Check(v) {
		return oops.Code("PACK_FORMAT_UNSUPPORTED").
			With("format", format).
			With("supported", SupportedFormat).
			Errorf("pack format %s is not supported", v)
	}
	return nil
}

// LoadPackFile reads and parses a pack from disk.
func LoadPackFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code("PACK_PARSE_FAILED").With("path", path).Wrap(err)
	}
	p, err := ParsePack(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return p, nil
}
