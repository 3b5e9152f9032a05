// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchcsv reads benchmark CSV logs into typed datasets.
//
// Loading is fault tolerant: a line that does not match the schema is
// recorded as a *MalformedRowError and skipped, and the rest of the
// file is still read. Only an invalid schema or an unreadable input
// stops a load.
package benchcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/fpbench/benchschema"
)

// A Record is a single record read from a benchmark log. It is a *Row,
// a *Reference, or a *MalformedRowError.
type Record interface {
	// Pos returns the file name and the 1-based line number of
	// this record.
	Pos() (fileName string, line int)
}

var _ Record = (*Row)(nil)
var _ Record = (*Reference)(nil)
var _ Record = (*MalformedRowError)(nil)

// A MalformedRowError reports a line that could not be parsed under
// the schema. It is recoverable: the line is skipped.
type MalformedRowError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *MalformedRowError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noResult = &MalformedRowError{"", 0, "Reader.Scan has not been called"}

// A Reference is the standalone scalar some experiments write on the
// first line of their log.
type Reference struct {
	Name  string
	Value float64

	fileName string
	line     int
}

func (r *Reference) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// A Reader reads records of one schema from a CSV log.
//
// Its API is modeled on bufio.Scanner. Unlike a bufio.Scanner, every
// *Row it returns is freshly allocated and may be retained.
type Reader struct {
	cr       *csv.Reader
	schema   *benchschema.Schema
	fileName string

	rec     Record
	err     error
	started bool // a record line has been seen
}

// NewReader returns a Reader that parses r under schema s. fileName is
// used in error messages; it is purely diagnostic.
//
// s must have been validated.
func NewReader(r io.Reader, fileName string, s *benchschema.Schema) *Reader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &Reader{cr: cr, schema: s, fileName: fileName}
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Result method to get the
// record. If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for
// errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	fields, err := r.cr.Read()
	if err == io.EOF {
		return false
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		// The csv package reports field count mismatches
		// itself only when FieldsPerRecord > 0, so anything
		// here is a quoting problem on this line.
		r.started = true
		r.rec = &MalformedRowError{r.fileName, pe.Line, pe.Err.Error()}
		return true
	}
	if err != nil {
		r.err = fmt.Errorf("%s: %w", r.fileName, err)
		return false
	}
	line, _ := r.cr.FieldPos(0)

	if !r.started {
		r.started = true
		if ref := r.schema.Reference; ref != nil {
			r.rec = r.parseReference(ref, fields, line)
			return true
		}
	}
	r.rec = r.parseRow(fields, line)
	return true
}

func (r *Reader) parseReference(ref *benchschema.Column, fields []string, line int) Record {
	if len(fields) != 1 {
		return &MalformedRowError{r.fileName, line, fmt.Sprintf("reference line has %d fields, want 1", len(fields))}
	}
	v, err := parseValue(ref.Kind, fields[0])
	if err != nil {
		return &MalformedRowError{r.fileName, line, fmt.Sprintf("reference %s: %v", ref.Name, err)}
	}
	f, _ := v.Float()
	return &Reference{Name: ref.Name, Value: f, fileName: r.fileName, line: line}
}

func (r *Reader) parseRow(fields []string, line int) Record {
	cols := r.schema.Columns
	if len(fields) != len(cols) {
		return &MalformedRowError{r.fileName, line, fmt.Sprintf("got %d fields, want %d", len(fields), len(cols))}
	}
	vals := make([]Value, len(cols))
	for i, c := range cols {
		v, err := parseValue(c.Kind, fields[i])
		if err != nil {
			return &MalformedRowError{r.fileName, line, fmt.Sprintf("column %s: %v", c.Name, err)}
		}
		vals[i] = v
	}
	return &Row{schema: r.schema, vals: vals, fileName: r.fileName, line: line}
}

// Result returns the record that was just read by Scan.
//
// A *MalformedRowError is non-fatal, so the caller can continue to
// call Scan.
func (r *Reader) Result() Record {
	if r.rec == nil {
		return noResult
	}
	return r.rec
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}
