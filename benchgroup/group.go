// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchgroup partitions benchmark datasets by categorical
// columns and averages their measurements.
//
// GroupBy splits a *benchcsv.Dataset into Groups, one per distinct
// tuple of values of the chosen categorical columns. Every row belongs
// to exactly one Group. Aggregate then reduces each Group to the
// arithmetic mean of each requested measurement.
package benchgroup

import (
	"fmt"
	"strings"

	"golang.org/x/fpbench/benchcsv"
)

// An Order is the order in which GroupBy returns groups.
type Order int

const (
	// FirstSeen orders groups by the position of their first row.
	FirstSeen Order = iota
	// Sorted orders groups by Key.Less.
	Sorted
)

func (o Order) String() string {
	switch o {
	case FirstSeen:
		return "first"
	case Sorted:
		return "sorted"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder parses the name of an Order. The empty string is
// FirstSeen.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", "first":
		return FirstSeen, nil
	case "sorted", "sort":
		return Sorted, nil
	}
	return 0, fmt.Errorf("unknown key order %q", s)
}

// A Group is the set of rows that share one Key.
type Group struct {
	Key  Key
	Rows []*benchcsv.Row
}

// A Grouping is a partition of a Dataset.
type Grouping struct {
	Dataset *benchcsv.Dataset

	// Columns are the categorical columns the rows are keyed by.
	Columns []string

	// Groups are non-empty and disjoint, and together hold every
	// row of Dataset.
	Groups []*Group
}

// GroupBy partitions the rows of d by the values of columns, which
// must all be categorical columns of d's schema. With no columns, the
// result is a single group holding every row, or no groups if d is
// empty.
func GroupBy(d *benchcsv.Dataset, columns []string, order Order) (*Grouping, error) {
	proj, err := newProjection(d.Schema, d.File, columns)
	if err != nil {
		return nil, err
	}

	g := &Grouping{Dataset: d, Columns: proj.Columns()}
	byKey := make(map[Key]*Group)
	for _, r := range d.Rows {
		vals := make([]string, len(proj.idx))
		for i, col := range proj.idx {
			vals[i] = r.At(col).String()
		}
		k := proj.key(vals)
		grp, ok := byKey[k]
		if !ok {
			grp = &Group{Key: k}
			byKey[k] = grp
			g.Groups = append(g.Groups, grp)
		}
		grp.Rows = append(grp.Rows, r)
	}

	if order == Sorted {
		keys := g.Keys()
		SortKeys(keys)
		for i, k := range keys {
			g.Groups[i] = byKey[k]
		}
	}
	return g, nil
}

// Keys returns the keys of g's groups, in group order.
func (g *Grouping) Keys() []Key {
	keys := make([]Key, len(g.Groups))
	for i, grp := range g.Groups {
		keys[i] = grp.Key
	}
	return keys
}

// Len returns the total number of rows in g.
func (g *Grouping) Len() int {
	n := 0
	for _, grp := range g.Groups {
		n += len(grp.Rows)
	}
	return n
}
