// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchschema describes the column layouts of benchmark CSV
// logs.
//
// Every experiment writes a fixed, ordered list of typed columns. A
// column is either categorical, meaning its value decides which group
// a row belongs to, or a measurement, meaning it holds a number that is
// averaged and normalized. Some experiments additionally write a
// single reference scalar on the first line of the file; a Schema
// describes that with its Reference column.
package benchschema

import (
	"fmt"
	"strconv"
	"sync"
)

// A Kind is the type of the values in a column.
type Kind int

const (
	// Int columns hold base-10 integers.
	Int Kind = iota
	// Float columns hold floating-point numbers.
	Float
	// String columns hold arbitrary text.
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Numeric reports whether values of kind k can be aggregated.
func (k Kind) Numeric() bool {
	return k == Int || k == Float
}

// A Role says how the pipeline uses a column.
type Role int

const (
	// Measurement columns are aggregated and normalized.
	Measurement Role = iota
	// Categorical columns are group keys.
	Categorical
)

func (r Role) String() string {
	switch r {
	case Measurement:
		return "measurement"
	case Categorical:
		return "categorical"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// A Column is one field of a benchmark log line.
type Column struct {
	Name string
	Kind Kind
	Role Role

	// Levels optionally names the values of an Int categorical
	// column: value i is displayed as Levels[i].
	Levels []string
}

// Level returns the display name of the value v of column c. If c has
// no name for v, Level returns v unchanged.
func (c *Column) Level(v string) string {
	if len(c.Levels) == 0 {
		return v
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 || i >= len(c.Levels) {
		return v
	}
	return c.Levels[i]
}

// A Schema is the layout of the CSV log of one experiment.
type Schema struct {
	// Name identifies the experiment.
	Name string

	// Doc is a one line description of the experiment.
	Doc string

	// Columns are the fields of each record, in file order.
	Columns []Column

	// Reference, if non-nil, describes a standalone scalar on the
	// first line of the file. That line is not a record.
	Reference *Column

	indexOnce sync.Once
	index     map[string]int
}

// Index returns the position of the named column in s, or -1. If two
// columns share a name, Index returns the first.
//
// The first call to Index fixes the column positions, so Columns must
// not change afterwards. Index is safe for concurrent use.
func (s *Schema) Index(name string) int {
	s.indexOnce.Do(func() {
		s.index = make(map[string]int, len(s.Columns))
		for i, c := range s.Columns {
			if _, ok := s.index[c.Name]; !ok {
				s.index[c.Name] = i
			}
		}
	})
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Column returns the named column, or nil if s has no such column.
func (s *Schema) Column(name string) *Column {
	if i := s.Index(name); i >= 0 {
		return &s.Columns[i]
	}
	return nil
}

// Len returns the number of fields in a record of s.
func (s *Schema) Len() int {
	return len(s.Columns)
}

// Names returns the names of the columns of s with role r, in file
// order.
func (s *Schema) Names(r Role) []string {
	var names []string
	for _, c := range s.Columns {
		if c.Role == r {
			names = append(names, c.Name)
		}
	}
	return names
}

// Validate checks that s is a usable schema. It returns a *SchemaError
// describing the first problem found. Validate does not modify s, so
// a registered schema may be validated by several loads at once.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return &SchemaError{Msg: "schema has no name"}
	}
	if len(s.Columns) == 0 {
		return &SchemaError{Experiment: s.Name, Msg: "schema has no columns"}
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		if c.Name == "" {
			return &SchemaError{Experiment: s.Name, Msg: fmt.Sprintf("column %d has no name", i)}
		}
		if seen[c.Name] {
			return &SchemaError{Experiment: s.Name, Msg: fmt.Sprintf("duplicate column %q", c.Name)}
		}
		switch c.Kind {
		case Int, Float, String:
		default:
			return &SchemaError{Experiment: s.Name, Msg: fmt.Sprintf("column %q has unknown kind %v", c.Name, c.Kind)}
		}
		switch c.Role {
		case Categorical:
		case Measurement:
			if !c.Kind.Numeric() {
				return &SchemaError{Experiment: s.Name, Msg: fmt.Sprintf("measurement column %q is not numeric", c.Name)}
			}
		default:
			return &SchemaError{Experiment: s.Name, Msg: fmt.Sprintf("column %q has unknown role %v", c.Name, c.Role)}
		}
		if len(c.Levels) > 0 && (c.Kind != Int || c.Role != Categorical) {
			return &SchemaError{Experiment: s.Name, Msg: fmt.Sprintf("column %q has levels but is not an int categorical column", c.Name)}
		}
		seen[c.Name] = true
	}
	if r := s.Reference; r != nil && !r.Kind.Numeric() {
		return &SchemaError{Experiment: s.Name, Msg: fmt.Sprintf("reference %q is not numeric", r.Name)}
	}
	return nil
}

// Cat returns an Int categorical column.
func Cat(name string, levels ...string) Column {
	return Column{Name: name, Kind: Int, Role: Categorical, Levels: levels}
}

// Label returns a String categorical column.
func Label(name string) Column {
	return Column{Name: name, Kind: String, Role: Categorical}
}

// Measure returns a Float measurement column.
func Measure(name string) Column {
	return Column{Name: name, Kind: Float, Role: Measurement}
}

// Measures returns a Float measurement column for each name.
func Measures(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Measure(n)
	}
	return cols
}
