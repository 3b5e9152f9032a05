// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchgroup

import (
	"strconv"
	"strings"

	"golang.org/x/fpbench/benchschema"
)

// A Key is an immutable tuple of categorical column values whose
// structure is given by a Projection. Two Keys are == if they come from
// the same Projection and have identical values, so Keys can be used
// as map keys.
type Key struct {
	k *keyNode
}

// keyNode is the internal heap-allocated object backing a Key.
type keyNode struct {
	proj *Projection
	vals []string
}

// IsZero reports whether k is a zeroed Key with no projection.
func (k Key) IsZero() bool {
	return k.k == nil
}

// Projection returns the Projection describing k.
func (k Key) Projection() *Projection {
	if k.IsZero() {
		return nil
	}
	return k.k.proj
}

// Get returns the value of the named column in k.
//
// It panics if the column is not part of k's Projection.
func (k Key) Get(column string) string {
	if k.IsZero() {
		panic("zero Key has no fields")
	}
	i := k.k.proj.index(column)
	if i < 0 {
		panic("column " + column + " is not part of this Key")
	}
	return k.k.vals[i]
}

// Float returns the named column of k as a number.
func (k Key) Float(column string) (float64, error) {
	return strconv.ParseFloat(k.Get(column), 64)
}

// Values returns a copy of the values of k in projection order.
func (k Key) Values() []string {
	if k.IsZero() {
		return nil
	}
	return append([]string(nil), k.k.vals...)
}

// String returns k as a space-separated sequence of column:value
// pairs.
func (k Key) String() string {
	return k.string(true, false)
}

// StringValues returns k as a space-separated sequence of values.
func (k Key) StringValues() string {
	return k.string(false, false)
}

// Label is like StringValues, but names the values of columns that
// have levels, for example "naive" instead of "0".
func (k Key) Label() string {
	return k.string(false, true)
}

func (k Key) string(keys, levels bool) string {
	if k.IsZero() {
		return "<zero>"
	}
	buf := new(strings.Builder)
	for i, c := range k.k.proj.cols {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if keys {
			buf.WriteString(c.Name)
			buf.WriteByte(':')
		}
		v := k.k.vals[i]
		if levels {
			v = c.Level(v)
		}
		buf.WriteString(v)
	}
	return buf.String()
}

// A Projection extracts Keys from rows by a fixed list of categorical
// columns.
type Projection struct {
	cols []*benchschema.Column
	idx  []int // schema positions of cols

	intern map[string]*keyNode
}

func newProjection(s *benchschema.Schema, file string, columns []string) (*Projection, error) {
	p := &Projection{intern: make(map[string]*keyNode)}
	fail := func(msg string) error {
		return &benchschema.SchemaError{Experiment: s.Name, File: file, Msg: msg}
	}
	for _, name := range columns {
		i := s.Index(name)
		if i < 0 {
			return nil, fail("no column " + strconv.Quote(name))
		}
		c := &s.Columns[i]
		if c.Role != benchschema.Categorical {
			return nil, fail("column " + strconv.Quote(name) + " is not categorical")
		}
		for _, j := range p.idx {
			if j == i {
				return nil, fail("column " + strconv.Quote(name) + " is grouped twice")
			}
		}
		p.cols = append(p.cols, c)
		p.idx = append(p.idx, i)
	}
	return p, nil
}

// Columns returns the names of the columns of p.
func (p *Projection) Columns() []string {
	names := make([]string, len(p.cols))
	for i, c := range p.cols {
		names[i] = c.Name
	}
	return names
}

func (p *Projection) index(column string) int {
	for i, c := range p.cols {
		if c.Name == column {
			return i
		}
	}
	return -1
}

// key returns the interned Key of vals.
func (p *Projection) key(vals []string) Key {
	id := strings.Join(vals, "\x00")
	n, ok := p.intern[id]
	if !ok {
		n = &keyNode{p, vals}
		p.intern[id] = n
	}
	return Key{n}
}
