// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"math"
	"sort"
	"strconv"
)

// A Sheet is the spreadsheet view of a Figure: one row per x position
// or category, and one column per series.
type Sheet struct {
	// Header[0] names the row column; Header[1:] parallel Cells.
	Header []string
	Rows   []SheetRow
}

// A SheetRow is one row of a Sheet. Absent values are NaN.
type SheetRow struct {
	Name  string
	Cells []float64
}

// Sheet returns the spreadsheet view of f. If raw is set, each series
// gets a second column with its values before normalization.
func (f *Figure) Sheet(raw bool) *Sheet {
	corner := f.Axis.XLabel
	if corner == "" {
		corner = f.Name
	}
	sh := &Sheet{Header: []string{corner}}
	for _, l := range f.Labels() {
		sh.Header = append(sh.Header, l)
		if raw {
			sh.Header = append(sh.Header, l+" (raw)")
		}
	}
	width := 1
	if raw {
		width = 2
	}

	if len(f.Bars) > 0 {
		for j, c := range f.Axis.Categories {
			row := SheetRow{Name: c, Cells: make([]float64, 0, width*len(f.Bars))}
			for _, s := range f.Bars {
				row.Cells = append(row.Cells, s.Bars[j].Value)
				if raw {
					row.Cells = append(row.Cells, s.Bars[j].Raw)
				}
			}
			sh.Rows = append(sh.Rows, row)
		}
		return sh
	}

	// The union of the x positions of all curves.
	seen := make(map[float64]bool)
	var xs []float64
	for _, c := range f.Curves {
		for _, p := range c.Points {
			if !seen[p.X] {
				seen[p.X] = true
				xs = append(xs, p.X)
			}
		}
	}
	sort.Float64s(xs)
	for _, x := range xs {
		row := SheetRow{Name: strconv.FormatFloat(x, 'g', -1, 64), Cells: make([]float64, 0, width*len(f.Curves))}
		for _, c := range f.Curves {
			p, ok := c.At(x)
			if !ok {
				p = Point{Y: math.NaN(), Raw: math.NaN()}
			}
			row.Cells = append(row.Cells, p.Y)
			if raw {
				row.Cells = append(row.Cells, p.Raw)
			}
		}
		sh.Rows = append(sh.Rows, row)
	}
	return sh
}

func strof(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
