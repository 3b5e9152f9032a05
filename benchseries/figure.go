// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"errors"
	"fmt"
	"strings"
)

// A Scale is the scale of an axis.
type Scale int

const (
	Linear Scale = iota
	Log
)

func (s Scale) String() string {
	switch s {
	case Linear:
		return "linear"
	case Log:
		return "log"
	}
	return fmt.Sprintf("Scale(%d)", int(s))
}

// ParseScale parses "linear" or "log". The empty string is Linear.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(s) {
	case "", "linear":
		return Linear, nil
	case "log":
		return Log, nil
	}
	return 0, fmt.Errorf("unknown axis scale %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Scale) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scale) UnmarshalText(text []byte) error {
	v, err := ParseScale(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Limits are the bounds of an axis.
type Limits struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Axis holds the presentation options of a figure.
type Axis struct {
	Title  string
	XLabel string
	YLabel string
	XScale Scale

	// XLimits and YLimits, if non-nil, fix the bounds of the axes.
	XLimits *Limits
	YLimits *Limits

	// Legend, if non-empty, names the series of the figure in
	// order, replacing their labels.
	Legend []string

	// Categories names the x positions of a bar chart.
	Categories []string

	// RatioTicks places y grid lines at round distances from 1.
	RatioTicks bool
}

// A Figure is a finished chart: either curves or bar series, and the
// axis options to draw them with.
type Figure struct {
	Name   string
	Axis   Axis
	Curves []*Curve
	Bars   []*BarSeries
}

// Len returns the number of series in f.
func (f *Figure) Len() int {
	return len(f.Curves) + len(f.Bars)
}

// Labels returns the legend labels of f's series, in series order.
func (f *Figure) Labels() []string {
	if len(f.Axis.Legend) > 0 {
		return f.Axis.Legend
	}
	var labels []string
	for _, c := range f.Curves {
		labels = append(labels, c.Label)
	}
	for _, b := range f.Bars {
		labels = append(labels, b.Label)
	}
	return labels
}

// Validate checks that f can be rendered.
func (f *Figure) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("figure %s: %s", f.Name, fmt.Sprintf(format, args...))
	}
	if f.Name == "" {
		return errors.New("figure has no name")
	}
	if len(f.Curves) > 0 && len(f.Bars) > 0 {
		return fail("has both curves and bars")
	}
	if f.Len() == 0 {
		return fail("has no series")
	}
	if l := f.Axis.Legend; len(l) > 0 && len(l) != f.Len() {
		return fail("has %d legend labels for %d series", len(l), f.Len())
	}
	for _, lim := range []*Limits{f.Axis.XLimits, f.Axis.YLimits} {
		if lim != nil && !(lim.Min < lim.Max) {
			return fail("axis limits [%v, %v] are empty", lim.Min, lim.Max)
		}
	}
	for _, c := range f.Curves {
		for j, p := range c.Points {
			if j > 0 && !(c.Points[j-1].X < p.X) {
				return fail("series %q is not sorted by x", c.Label)
			}
			if f.Axis.XScale == Log && !(p.X > 0) {
				return fail("series %q has x=%v on a log axis", c.Label, p.X)
			}
		}
	}
	if len(f.Bars) > 0 {
		if len(f.Axis.Categories) == 0 {
			return fail("bar chart has no categories")
		}
		for i, b := range f.Bars {
			if b.Index != i {
				return fail("series %q has index %d at position %d", b.Label, b.Index, i)
			}
			if len(b.Bars) != len(f.Axis.Categories) {
				return fail("series %q has %d bars for %d categories", b.Label, len(b.Bars), len(f.Axis.Categories))
			}
			for j, bar := range b.Bars {
				if bar.Category != f.Axis.Categories[j] {
					return fail("series %q bar %d is %q, want %q", b.Label, j, bar.Category, f.Axis.Categories[j])
				}
			}
		}
	}
	return nil
}

// A Sink consumes finished figures.
type Sink interface {
	Render(f *Figure) error
}

// MultiSink renders each figure to every sink in turn. It stops at
// the first error.
type MultiSink []Sink

func (m MultiSink) Render(f *Figure) error {
	for _, s := range m {
		if err := s.Render(f); err != nil {
			return err
		}
	}
	return nil
}
