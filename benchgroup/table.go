// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchgroup

import (
	"io"

	"github.com/aclements/go-gg/table"
)

// Table returns a as a table with one row per group. It has a string
// column for each key column, an int column "n" with the group sizes,
// and a float64 column for each averaged column.
func (a *Aggregation) Table() *table.Table {
	b := new(table.Builder)
	for i, name := range a.Keys {
		col := make([]string, len(a.Groups))
		for j, ag := range a.Groups {
			col[j] = ag.Key.k.proj.cols[i].Level(ag.Key.k.vals[i])
		}
		b.Add(name, col)
	}
	ns := make([]int, len(a.Groups))
	for j, ag := range a.Groups {
		ns[j] = ag.N
	}
	b.Add("n", ns)
	for i, name := range a.Columns {
		col := make([]float64, len(a.Groups))
		for j, ag := range a.Groups {
			col[j] = ag.Means[i]
		}
		b.Add(name, col)
	}
	return b.Done()
}

// Fprint writes a as an aligned text table to w.
func (a *Aggregation) Fprint(w io.Writer) error {
	formats := make([]string, 0, len(a.Keys)+1+len(a.Columns))
	for range a.Keys {
		formats = append(formats, "%v")
	}
	formats = append(formats, "%d")
	for range a.Columns {
		formats = append(formats, "%.6g")
	}
	return table.Fprint(w, a.Table(), formats...)
}
