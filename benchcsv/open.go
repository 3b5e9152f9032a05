// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcsv

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// An Opener acquires the input named by a path or URL.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// A FileOpener opens local files.
type FileOpener struct {
	// Dir, if non-empty, is prepended to relative names.
	Dir string

	// AllowStdin indicates that the name "-" is standard input.
	AllowStdin bool
}

func (o FileOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if o.AllowStdin && name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	if o.Dir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(o.Dir, name)
	}
	return os.Open(name)
}

// A MuxOpener dispatches on the URL scheme of a name, such as "gs" in
// "gs://bucket/log.csv". Names without a scheme go to Default.
type MuxOpener struct {
	Default Opener
	Schemes map[string]Opener
}

func (m *MuxOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if i := strings.Index(name, "://"); i > 0 {
		scheme := name[:i]
		if o, ok := m.Schemes[scheme]; ok {
			return o.Open(ctx, name)
		}
		return nil, fmt.Errorf("no opener for scheme %q", scheme)
	}
	if m.Default == nil {
		return nil, fmt.Errorf("no opener for %q", name)
	}
	return m.Default.Open(ctx, name)
}

// Join resolves name against dir, which may be a local directory or a
// URL prefix such as "gs://bucket/logs". Absolute names and names with
// a scheme are returned unchanged.
func Join(dir, name string) string {
	if dir == "" || name == "-" || filepath.IsAbs(name) || strings.Contains(name, "://") {
		return name
	}
	if strings.Contains(dir, "://") {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}
