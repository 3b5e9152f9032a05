// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcsv

import (
	"context"
	"fmt"

	"golang.org/x/fpbench/benchschema"
)

// A Row is one parsed record. It has exactly one Value per column of
// its schema and is never modified after parsing.
type Row struct {
	schema *benchschema.Schema
	vals   []Value

	fileName string
	line     int
}

// NewRow returns a Row of schema s holding vals. It is intended for
// building datasets in memory; it panics if vals does not match s.
func NewRow(s *benchschema.Schema, vals ...Value) *Row {
	if len(vals) != len(s.Columns) {
		panic(fmt.Sprintf("NewRow: %d values for %d columns", len(vals), len(s.Columns)))
	}
	for i, v := range vals {
		if v.kind != s.Columns[i].Kind {
			panic(fmt.Sprintf("NewRow: column %s is %v, value is %v", s.Columns[i].Name, s.Columns[i].Kind, v.kind))
		}
	}
	return &Row{schema: s, vals: append([]Value(nil), vals...)}
}

func (r *Row) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// Schema returns the schema r was parsed under.
func (r *Row) Schema() *benchschema.Schema { return r.schema }

// Len returns the number of fields of r.
func (r *Row) Len() int { return len(r.vals) }

// At returns the i'th field of r.
func (r *Row) At(i int) Value { return r.vals[i] }

// Get returns the named field of r. ok is false if the schema has no
// such column.
func (r *Row) Get(name string) (v Value, ok bool) {
	i := r.schema.Index(name)
	if i < 0 {
		return Value{}, false
	}
	return r.vals[i], true
}

// Float returns the named numeric field of r.
func (r *Row) Float(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// A Dataset is the result of loading one log.
type Dataset struct {
	Schema *benchschema.Schema

	// File is the name the log was loaded from.
	File string

	// Rows holds the parsed records in source order.
	Rows []*Row

	// Reference is the first-line scalar, if the schema declares one
	// and it parsed.
	Reference *Reference

	// Skipped lists the lines that could not be parsed, in source
	// order.
	Skipped []*MalformedRowError
}

// NewDataset returns an in-memory Dataset of schema s.
func NewDataset(s *benchschema.Schema, file string, rows ...*Row) *Dataset {
	return &Dataset{Schema: s, File: file, Rows: rows}
}

// Where returns the subset of d whose named column formats to value.
// The result shares d's schema, file and reference and keeps source
// order. It has no skipped rows of its own.
func (d *Dataset) Where(column, value string) (*Dataset, error) {
	i := d.Schema.Index(column)
	if i < 0 {
		return nil, &benchschema.SchemaError{Experiment: d.Schema.Name, File: d.File, Msg: fmt.Sprintf("no column %q", column)}
	}
	sub := &Dataset{Schema: d.Schema, File: d.File, Reference: d.Reference}
	for _, r := range d.Rows {
		if r.vals[i].String() == value {
			sub.Rows = append(sub.Rows, r)
		}
	}
	return sub, nil
}

// Read reads every record from r into a Dataset. It returns the
// Reader's I/O error, if any, and no Dataset.
func Read(r *Reader) (*Dataset, error) {
	d := &Dataset{Schema: r.schema, File: r.fileName}
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Row:
			d.Rows = append(d.Rows, rec)
		case *Reference:
			d.Reference = rec
		case *MalformedRowError:
			d.Skipped = append(d.Skipped, rec)
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load opens name with o and reads it under schema s.
//
// Load either returns a complete Dataset or an error. The error is a
// *benchschema.SchemaError if s is invalid or the input cannot be
// opened or read; malformed lines never fail a load.
func Load(ctx context.Context, o Opener, name string, s *benchschema.Schema) (*Dataset, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rc, err := o.Open(ctx, name)
	if err != nil {
		return nil, &benchschema.SchemaError{Experiment: s.Name, File: name, Msg: "cannot open", Err: err}
	}
	defer rc.Close()

	d, err := Read(NewReader(rc, name, s))
	if err != nil {
		return nil, &benchschema.SchemaError{Experiment: s.Name, File: name, Msg: "cannot read", Err: err}
	}
	return d, nil
}
