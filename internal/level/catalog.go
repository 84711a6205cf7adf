// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package level

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

//go:embed packs/*.yaml
var builtinPacks embed.FS

// Catalog is an immutable, id-ordered set of levels.
type Catalog struct {
	levels []*Level
	byID   map[int]*Level
}

// NewCatalog merges packs into a catalog. Level ids must be unique across
// all packs.
func NewCatalog(packs ...*Pack) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]*Level)}
	for _, p := range packs {
		if p == nil {
			continue
		}
		for _, l := range p.Levels {
			if _, dup := c.byID[l.ID]; dup {
				return nil, oops.Code("CATALOG_DUPLICATE_LEVEL").
					With("level_id", l.ID).
					With("pack", p.Name).
					Errorf("level %d is defined more than once", l.ID)
			}
			c.byID[l.ID] = l
			c.levels = append(c.levels, l)
		}
	}
	sort.Slice(c.levels, func(i, j int) bool { return c.levels[i].ID < c.levels[j].ID })
	return c, nil
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	return len(c.levels)
}

// Get returns a copy of the level with id.
func (c *Catalog) Get(id int) (*Level, error) {
	l, ok := c.byID[id]
	if !ok {
		return nil, oops.Code("LEVEL_NOT_FOUND").
			With("level_id", id).
			Errorf("level %d not found", id)
	}
	return l.Clone(), nil
}

// Next returns the id of the level following id, if any.
func (c *Catalog) Next(id int) (int, bool) {
	for _, l := range c.levels {
		if l.ID > id {
			return l.ID, true
		}
	}
	return 0, false
}

// First returns the lowest level id.
func (c *Catalog) First() (int, bool) {
	if len(c.levels) == 0 {
		return 0, false
	}
	return c.levels[0].ID, true
}

// All returns copies of every level in id order.
func (c *Catalog) All() []*Level {
	out := make([]*Level, len(c.levels))
	for i, l := range c.levels {
		out[i] = l.Clone()
	}
	return out
}

// Filter returns the levels whose name or id matches the glob pattern.
// Matching is case-insensitive. An empty pattern matches everything.
func (c *Catalog) Filter(pattern string) ([]*Level, error) {
	if pattern == "" {
		return c.All(), nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, oops.Code("LEVEL_FILTER_INVALID").
			With("pattern", pattern).
			Wrap(err)
	}
	var out []*Level
	for _, l := range c.levels {
		if g.Match(strings.ToLower(l.Name)) || g.Match(strconv.Itoa(l.ID)) {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

// LoadFS parses every *.yaml file under dir in fsys. Files are read in
// lexical order; all failures are reported together.
func LoadFS(fsys fs.FS, dir string) ([]*Pack, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, oops.Code("PACK_PARSE_FAILED").With("dir", dir).Wrap(err)
	}
	var (
		packs []*Pack
		errs  []error
	)
	for _, e := range entries {
		if e.IsDir() || !isPackFile(e.Name()) {
			continue
		}
		name := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = append(errs, oops.Code("PACK_PARSE_FAILED").With("path", name).Wrap(err))
			continue
		}
		p, err := ParsePack(data)
		if err != nil {
			errs = append(errs, oops.With("path", name).Wrap(err))
			continue
		}
		packs = append(packs, p)
	}
	if len(errs) > 0 {
		return packs, errors.Join(errs...)
	}
	return packs, nil
}

// LoadDir loads packs from a directory on disk and builds a catalog.
func LoadDir(dir string) (*Catalog, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, oops.Code("PACK_PARSE_FAILED").With("dir", dir).Wrap(err)
	}
	packs, err := LoadFS(os.DirFS(abs), ".")
	if err != nil {
		return nil, err
	}
	return NewCatalog(packs...)
}

// BuiltinPacks returns the packs embedded in the binary.
func BuiltinPacks() ([]*Pack, error) {
	return LoadFS(builtinPacks, "packs")
}

// Default returns the catalog of built-in levels.
func Default() (*Catalog, error) {
	packs, err := BuiltinPacks()
	if err != nil {
		return nil, err
	}
	return NewCatalog(packs...)
}

func isPackFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
