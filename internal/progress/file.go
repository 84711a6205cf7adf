// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package progress

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/lightwell/internal/scoring"
	"github.com/holomush/lightwell/internal/xdg"
)

const fileVersion = 1

// fileDoc is the on-disk layout of a FileStore.
type fileDoc struct {
	Version int              `yaml:"version"`
	Records []scoring.Record `yaml:"records"`
}

// FileStore keeps records in a YAML file. The file is rewritten atomically
// on every Put.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store at path. An empty path uses the XDG data
// directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := xdg.ProgressFile()
		if err != nil {
			return nil, oops.Code("PROGRESS_LOAD_FAILED").Wrap(err)
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, levelID int) (scoring.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return scoring.Record{}, false, err
	}
	for _, r := range doc.Records {
		if r.LevelID == levelID {
			return r, true, nil
		}
	}
	return scoring.Record{}, false, nil
}

// Put implements Store.
func (s *FileStore) Put(_ context.Context, rec scoring.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	replaced := false
	for i, r := range doc.Records {
		if r.LevelID == rec.LevelID {
			doc.Records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Records = append(doc.Records, rec)
	}
	scoring.SortByLevel(doc.Records)
	return s.write(doc)
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]scoring.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	scoring.SortByLevel(doc.Records)
	return doc.Records, nil
}

func (s *FileStore) read() (fileDoc, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileDoc{Version: fileVersion}, nil
	}
	if err != nil {
		return fileDoc{}, oops.Code("PROGRESS_LOAD_FAILED").With("path", s.path).Wrap(err)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fileDoc{}, oops.Code("PROGRESS_LOAD_FAILED").With("path", s.path).Wrap(err)
	}
	if doc.Version > fileVersion {
		return fileDoc{}, oops.Code("PROGRESS_LOAD_FAILED").
			With("path", s.path).
			With("version", doc.Version).
			Errorf("progress file version %d is newer than supported version %d", doc.Version, fileVersion)
	}
	doc.Version = fileVersion
	return doc, nil
}

func (s *FileStore) write(doc fileDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return oops.Code("PROGRESS_SAVE_FAILED").With("path", s.path).Wrap(err)
	}
	dir := filepath.Dir(s.path)
	if err := xdg.EnsureDir(dir); err != nil {
		return oops.Code("PROGRESS_SAVE_FAILED").With("path", s.path).Wrap(err)
	}
	tmp, err := os.CreateTemp(dir, ".progress-*.yaml")
	if err != nil {
		return oops.Code("PROGRESS_SAVE_FAILED").With("path", s.path).Wrap(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck // write error takes precedence
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return oops.Code("PROGRESS_SAVE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return oops.Code("PROGRESS_SAVE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return oops.Code("PROGRESS_SAVE_FAILED").With("path", s.path).Wrap(err)
	}
	return nil
}
