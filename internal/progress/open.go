// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package progress

import (
	"context"
	"io"

	"github.com/samber/oops"
)

// Backend names.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Options selects and configures a Store.
type Options struct {
	Backend string
	// Path is the file backend location. Empty uses the XDG data directory.
	Path string
	// DSN is the postgres connection string.
	DSN string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type funcCloser func()

func (f funcCloser) Close() error {
	f()
	return nil
}

// Open returns the store named by opts.Backend and a closer for it.
// BackendNone keeps progress in memory only.
func Open(ctx context.Context, opts Options) (Store, io.Closer, error) {
	switch opts.Backend {
	case BackendFile, "":
		s, err := NewFileStore(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, nil, oops.Code("CONFIG_INVALID").Errorf("progress.database_url is required for the postgres backend")
		}
		s, err := Connect(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, funcCloser(s.Close), nil
	case BackendNone:
		return NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, oops.Code("CONFIG_INVALID").
			With("backend", opts.Backend).
			Errorf("unknown progress backend %q", opts.Backend)
	}
}
