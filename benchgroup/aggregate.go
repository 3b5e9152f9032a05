// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchgroup

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"golang.org/x/fpbench/benchschema"
)

// An EmptyGroupError reports a group that has no usable values of a
// measurement, so its mean is undefined.
type EmptyGroupError struct {
	File   string
	Key    Key
	Column string
}

func (e *EmptyGroupError) Error() string {
	key := "<all rows>"
	if !e.Key.IsZero() && len(e.Key.k.vals) > 0 {
		key = e.Key.String()
	}
	return fmt.Sprintf("%s: group %s has no values of %s", e.File, key, e.Column)
}

// An AggregatedGroup is the mean of each measurement over one Group.
type AggregatedGroup struct {
	Key Key

	// N is the number of rows in the group.
	N int

	// Means[i] is the mean of the Aggregation's Columns[i].
	Means []float64
}

// An Aggregation is the result of Grouping.Aggregate.
type Aggregation struct {
	File      string
	Reference *float64 // the dataset reference scalar, if any
	Keys      []string // the grouping columns
	Columns   []string // the averaged columns
	Groups    []*AggregatedGroup
}

// Aggregate computes, for each group of g, the arithmetic mean of each
// of columns. Columns must be numeric. NaN values are treated as
// missing. If a group has no values of some column, Aggregate returns
// an *EmptyGroupError.
//
// The values of each group are sorted before they are summed, so the
// result does not depend on the order of the input rows.
func (g *Grouping) Aggregate(columns []string) (*Aggregation, error) {
	s := g.Dataset.Schema
	idx := make([]int, len(columns))
	for i, name := range columns {
		j := s.Index(name)
		if j < 0 {
			return nil, &benchschema.SchemaError{Experiment: s.Name, File: g.Dataset.File, Msg: fmt.Sprintf("no column %q", name)}
		}
		if !s.Columns[j].Kind.Numeric() {
			return nil, &benchschema.SchemaError{Experiment: s.Name, File: g.Dataset.File, Msg: fmt.Sprintf("column %q is not numeric", name)}
		}
		idx[i] = j
	}

	a := &Aggregation{
		File:    g.Dataset.File,
		Keys:    append([]string(nil), g.Columns...),
		Columns: append([]string(nil), columns...),
	}
	if ref := g.Dataset.Reference; ref != nil {
		v := ref.Value
		a.Reference = &v
	}
	var xs []float64
	for _, grp := range g.Groups {
		ag := &AggregatedGroup{Key: grp.Key, N: len(grp.Rows), Means: make([]float64, len(columns))}
		for i, col := range idx {
			xs = xs[:0]
			for _, r := range grp.Rows {
				if f, ok := r.At(col).Float(); ok && !math.IsNaN(f) {
					xs = append(xs, f)
				}
			}
			if len(xs) == 0 {
				return nil, &EmptyGroupError{File: g.Dataset.File, Key: grp.Key, Column: columns[i]}
			}
			sort.Float64s(xs)
			ag.Means[i] = stats.Mean(xs)
		}
		a.Groups = append(a.Groups, ag)
	}
	return a, nil
}

// Mean returns the mean of the named column in ag, which must be one
// of a's Columns.
func (a *Aggregation) Mean(ag *AggregatedGroup, column string) (float64, bool) {
	for i, c := range a.Columns {
		if c == column {
			return ag.Means[i], true
		}
	}
	return 0, false
}

// Lookup returns the group with the given key values, in the order of
// a's Keys.
func (a *Aggregation) Lookup(vals ...string) *AggregatedGroup {
	for _, ag := range a.Groups {
		if equal(ag.Key.k.vals, vals) {
			return ag
		}
	}
	return nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
