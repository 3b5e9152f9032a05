// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchseries assembles normalized measurements into chartable
// series and hands finished figures to rendering sinks.
//
// A Figure holds either Curves, which are lines over a numeric x axis,
// or BarSeries, which are clustered bars over named categories. A Sink
// consumes Figures; this package provides sinks that draw charts,
// write CSV, and fill spreadsheet workbooks.
package benchseries

import (
	"fmt"
	"math"
	"sort"
)

// A Point is one point of a Curve.
type Point struct {
	X, Y float64

	// Raw is the value of Y before normalization.
	Raw float64
}

// A DuplicateKeyError reports two points of one Curve at the same x
// position.
type DuplicateKeyError struct {
	Label string
	X     float64
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("series %q has more than one point at x=%v", e.Label, e.X)
}

// A Curve is a labeled line. Its points have distinct X and are
// sorted by X.
type Curve struct {
	Label  string
	Points []Point
}

// NewCurve returns a Curve of points sorted by X. It returns a
// *DuplicateKeyError if two points have the same X.
func NewCurve(label string, points []Point) (*Curve, error) {
	ps := append([]Point(nil), points...)
	for _, p := range ps {
		if math.IsNaN(p.X) {
			return nil, fmt.Errorf("series %q has a point at x=NaN", label)
		}
	}
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].X < ps[j].X
	})
	for i := 1; i < len(ps); i++ {
		if ps[i].X == ps[i-1].X {
			return nil, &DuplicateKeyError{Label: label, X: ps[i].X}
		}
	}
	return &Curve{Label: label, Points: ps}, nil
}

// Len returns the number of points in c.
func (c *Curve) Len() int {
	return len(c.Points)
}

// XY returns the coordinates of the i'th point of c.
func (c *Curve) XY(i int) (x, y float64) {
	return c.Points[i].X, c.Points[i].Y
}

// At returns the point of c at x.
func (c *Curve) At(x float64) (Point, bool) {
	i := sort.Search(len(c.Points), func(i int) bool {
		return c.Points[i].X >= x
	})
	if i < len(c.Points) && c.Points[i].X == x {
		return c.Points[i], true
	}
	return Point{}, false
}

// A Bar is the value of one series in one category.
type Bar struct {
	Category string
	Value    float64
	Raw      float64 // Value before normalization
}

// A BarSeries is one series of a clustered bar chart. Bar j of the
// series is drawn at x = j + Offset, so that the series of a chart sit
// side by side within each category.
type BarSeries struct {
	Label  string
	Index  int
	Offset float64
	Width  float64
	Bars   []Bar
}

// Position returns the x position of bar j of s.
func (s *BarSeries) Position(j int) float64 {
	return float64(j) + s.Offset
}

// NewBarSeries lays out one BarSeries per label. values[i][j] is the
// value of series i in category j, and raw, if non-nil, holds the same
// values before normalization.
//
// Each bar is width wide, in units of the category spacing, and series
// i is offset from the category center by (i - (n-1)/2) * width. So
// that bars of neighboring categories do not overlap, n*width must be
// at most 1.
func NewBarSeries(width float64, labels, categories []string, values, raw [][]float64) ([]*BarSeries, error) {
	n := len(labels)
	if !(width > 0) {
		return nil, fmt.Errorf("bar width %v is not positive", width)
	}
	if float64(n)*width > 1+1e-9 {
		return nil, fmt.Errorf("%d series of width %v overflow a category", n, width)
	}
	if len(values) != n || (raw != nil && len(raw) != n) {
		return nil, fmt.Errorf("have values for %d series, want %d", len(values), n)
	}
	if err := distinct("series", labels); err != nil {
		return nil, err
	}
	if err := distinct("category", categories); err != nil {
		return nil, err
	}

	out := make([]*BarSeries, n)
	for i, label := range labels {
		if len(values[i]) != len(categories) || (raw != nil && len(raw[i]) != len(categories)) {
			return nil, fmt.Errorf("series %q has %d values, want one per category (%d)", label, len(values[i]), len(categories))
		}
		s := &BarSeries{
			Label:  label,
			Index:  i,
			Offset: (float64(i) - float64(n-1)/2) * width,
			Width:  width,
		}
		for j, c := range categories {
			b := Bar{Category: c, Value: values[i][j], Raw: values[i][j]}
			if raw != nil {
				b.Raw = raw[i][j]
			}
			s.Bars = append(s.Bars, b)
		}
		out[i] = s
	}
	return out, nil
}

func distinct(what string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, s := range names {
		if seen[s] {
			return fmt.Errorf("duplicate %s %q", what, s)
		}
		seen[s] = true
	}
	return nil
}
