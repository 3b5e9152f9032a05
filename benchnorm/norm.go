// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchnorm divides aggregated measurements by a baseline.
//
// A baseline is a fixed scalar, the mean of another column of the same
// group, the reference scalar of the dataset, or the matching point of
// a second, independently aggregated series. Every normalized value is
// a Ratio that keeps its original value and baseline, so the
// normalization can always be undone.
package benchnorm

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/fpbench/benchgroup"
)

// A Ratio is a value normalized by a baseline.
type Ratio struct {
	Value    float64 // the aggregated value before normalization
	Baseline float64
	Ratio    float64

	// Inverted indicates that Ratio is Baseline/Value rather than
	// Value/Baseline.
	Inverted bool
}

// Denormalize recovers the original value from r.Ratio and
// r.Baseline.
func (r Ratio) Denormalize() float64 {
	if r.Inverted {
		return r.Baseline / r.Ratio
	}
	return r.Ratio * r.Baseline
}

// Options control normalization.
type Options struct {
	// Invert computes baseline/value instead of value/baseline, so
	// that larger is better for running times.
	Invert bool
}

func (o Options) ratio(value, base float64) Ratio {
	r := Ratio{Value: value, Baseline: base, Inverted: o.Invert}
	if o.Invert {
		r.Ratio = base / value
	} else {
		r.Ratio = value / base
	}
	return r
}

// A DivisionByZeroError reports a zero baseline, or with Options.Invert
// a zero value, which would be the denominator.
type DivisionByZeroError struct {
	Key    string // group key, may be ""
	Column string // the column whose value is the denominator, may be ""
}

func (e *DivisionByZeroError) Error() string {
	switch {
	case e.Key != "" && e.Column != "":
		return fmt.Sprintf("group %s: %s is zero, cannot normalize", e.Key, e.Column)
	case e.Column != "":
		return fmt.Sprintf("%s is zero, cannot normalize", e.Column)
	case e.Key != "":
		return fmt.Sprintf("group %s: baseline is zero, cannot normalize", e.Key)
	}
	return "baseline is zero, cannot normalize"
}

func (o Options) normalize(value, base float64, key, baseCol, valueCol string) (Ratio, error) {
	if base == 0 {
		return Ratio{}, &DivisionByZeroError{Key: key, Column: baseCol}
	}
	if value == 0 && o.Invert {
		return Ratio{}, &DivisionByZeroError{Key: key, Column: valueCol}
	}
	return o.ratio(value, base), nil
}

// Scalar divides each of values by base.
func Scalar(base float64, values []float64, opts Options) ([]Ratio, error) {
	out := make([]Ratio, len(values))
	for i, v := range values {
		r, err := opts.normalize(v, base, "", "", "")
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// A Row is the normalized measurements of one aggregated group.
type Row struct {
	Key    benchgroup.Key
	Ratios []Ratio // parallel to the Table's Columns
}

// A Table is a normalized Aggregation.
type Table struct {
	Columns []string
	Rows    []*Row
}

// Ratio returns the ratio of the named column in r.
func (t *Table) Ratio(r *Row, column string) (Ratio, bool) {
	for i, c := range t.Columns {
		if c == column {
			return r.Ratios[i], true
		}
	}
	return Ratio{}, false
}

func checkColumns(a *benchgroup.Aggregation, columns []string) ([]int, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = -1
		for j, ac := range a.Columns {
			if ac == c {
				idx[i] = j
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("%s: column %q was not aggregated", a.File, c)
		}
	}
	return idx, nil
}

func keyString(k benchgroup.Key) string {
	if k.IsZero() || len(k.Values()) == 0 {
		return ""
	}
	return k.String()
}

// ByColumn normalizes columns of each group of a by the mean of the
// baseline column of the same group. The baseline column itself may be
// among columns, in which case its ratio is 1.
func ByColumn(a *benchgroup.Aggregation, baseline string, columns []string, opts Options) (*Table, error) {
	bi, err := checkColumns(a, []string{baseline})
	if err != nil {
		return nil, err
	}
	idx, err := checkColumns(a, columns)
	if err != nil {
		return nil, err
	}
	t := &Table{Columns: append([]string(nil), columns...)}
	for _, ag := range a.Groups {
		base := ag.Means[bi[0]]
		row := &Row{Key: ag.Key, Ratios: make([]Ratio, len(idx))}
		for i, j := range idx {
			row.Ratios[i], err = opts.normalize(ag.Means[j], base, keyString(ag.Key), baseline, columns[i])
			if err != nil {
				return nil, err
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ByReference normalizes columns of each group of a by ref, usually
// the reference scalar of the dataset a was aggregated from.
func ByReference(a *benchgroup.Aggregation, ref float64, columns []string, opts Options) (*Table, error) {
	return byScalar(a, ref, "reference", columns, opts)
}

// ByScalar normalizes columns of each group of a by the fixed value
// base.
func ByScalar(a *benchgroup.Aggregation, base float64, columns []string, opts Options) (*Table, error) {
	return byScalar(a, base, "baseline", columns, opts)
}

// Identity returns columns of a unnormalized, that is, with a baseline
// of 1.
func Identity(a *benchgroup.Aggregation, columns []string) (*Table, error) {
	return byScalar(a, 1, "", columns, Options{})
}

func byScalar(a *benchgroup.Aggregation, base float64, baseName string, columns []string, opts Options) (*Table, error) {
	idx, err := checkColumns(a, columns)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(base) {
		return nil, fmt.Errorf("%s: %s is NaN", a.File, baseName)
	}
	t := &Table{Columns: append([]string(nil), columns...)}
	vals := make([]float64, len(idx))
	for _, ag := range a.Groups {
		for i, j := range idx {
			vals[i] = ag.Means[j]
		}
		rs, err := Scalar(base, vals, opts)
		if err != nil {
			var dz *DivisionByZeroError
			if errors.As(err, &dz) {
				dz.Key = keyString(ag.Key)
				dz.Column = baseName
				if opts.Invert && base != 0 {
					for i, v := range vals {
						if v == 0 {
							dz.Column = columns[i]
							break
						}
					}
				}
			}
			return nil, err
		}
		t.Rows = append(t.Rows, &Row{Key: ag.Key, Ratios: rs})
	}
	return t, nil
}

// A DuplicatePointError reports two points of one side of a pairwise
// normalization at the same x position.
type DuplicatePointError struct {
	Side string // "numerator" or "denominator"
	X    float64
}

func (e *DuplicatePointError) Error() string {
	return fmt.Sprintf("%s has more than one point at x=%v", e.Side, e.X)
}

// A Point is one aggregated measurement at a position on the x axis.
type Point struct {
	X float64
	Y float64
}

// A PointRatio is a Ratio at a position on the x axis.
type PointRatio struct {
	X float64
	Ratio
}

// Pairwise normalizes num by den, two independently aggregated series
// over the same x axis. Only points whose X appears in both are
// normalized; the rest are returned in unmatched, in the order they
// appear in num and then den. The result follows the order of num.
//
// Neither series may contain the same X twice, which is reported as a
// *DuplicatePointError, nor a NaN X.
func Pairwise(num, den []Point, opts Options) (ratios []PointRatio, unmatched []float64, err error) {
	for _, side := range []struct {
		name   string
		points []Point
	}{{"numerator", num}, {"denominator", den}} {
		for _, p := range side.points {
			if math.IsNaN(p.X) {
				return nil, nil, fmt.Errorf("%s has a point at x=NaN", side.name)
			}
		}
	}
	denAt := make(map[float64]float64, len(den))
	for _, p := range den {
		if _, ok := denAt[p.X]; ok {
			return nil, nil, &DuplicatePointError{Side: "denominator", X: p.X}
		}
		denAt[p.X] = p.Y
	}
	used := make(map[float64]bool, len(num))
	for _, p := range num {
		if used[p.X] {
			return nil, nil, &DuplicatePointError{Side: "numerator", X: p.X}
		}
		used[p.X] = true
		d, ok := denAt[p.X]
		if !ok {
			unmatched = append(unmatched, p.X)
			continue
		}
		r, err := opts.normalize(p.Y, d, fmt.Sprintf("x=%v", p.X), "denominator", "numerator")
		if err != nil {
			return nil, nil, err
		}
		ratios = append(ratios, PointRatio{p.X, r})
	}
	for _, p := range den {
		if !used[p.X] {
			unmatched = append(unmatched, p.X)
		}
	}
	return ratios, unmatched, nil
}
