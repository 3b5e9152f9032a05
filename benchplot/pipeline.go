// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchplot turns benchmark logs into figures according to a
// declarative configuration.
//
// Each FigureConfig names an experiment and its log. A Pipeline loads
// the log with the experiment's schema, filters it, groups and averages
// it, normalizes the means and assembles the result into curves or
// clustered bars, which it hands to a benchseries.Sink.
package benchplot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/fpbench/benchcsv"
	"golang.org/x/fpbench/benchgroup"
	"golang.org/x/fpbench/benchnorm"
	"golang.org/x/fpbench/benchschema"
	"golang.org/x/fpbench/benchseries"
	"golang.org/x/sync/errgroup"
)

// A Pipeline builds figures from benchmark logs.
//
// A Pipeline loads each log at most once, and Run loads the logs of
// its figures concurrently. Otherwise a Pipeline is not safe for
// concurrent use.
type Pipeline struct {
	// Registry resolves experiment names. If nil, benchschema.Default
	// is used.
	Registry *benchschema.Registry

	// Opener reads logs. If nil, logs are local files.
	Opener benchcsv.Opener

	// Dir is the directory or URL prefix log names are relative to.
	Dir string

	// Sink receives the figures of Run. If nil, figures are built and
	// discarded.
	Sink benchseries.Sink

	// Warn, if non-nil, is called for each skipped log line and each
	// point that has no partner in a pairwise normalization.
	Warn func(format string, args ...interface{})

	// Table, if non-nil, receives a text table of every aggregation
	// before it is normalized.
	Table io.Writer

	// Parallel bounds the number of logs Run loads at once. If zero,
	// it defaults to 4.
	Parallel int

	mu       sync.Mutex
	datasets map[string]*loaded
}

// loaded is the outcome of loading one log. d, err and aborted are set
// before done is closed.
type loaded struct {
	done    chan struct{}
	d       *benchcsv.Dataset
	err     error
	aborted bool
	warned  bool
}

func (p *Pipeline) warn(format string, args ...interface{}) {
	if p.Warn != nil {
		p.Warn(format, args...)
	}
}

func (p *Pipeline) schema(fc *FigureConfig) (*benchschema.Schema, error) {
	reg := p.Registry
	if reg == nil {
		reg = benchschema.Default
	}
	return reg.Lookup(fc.Experiment)
}

// fetch loads the log of fc, or waits for and returns the outcome of
// another load of the same log. It is safe to call concurrently.
func (p *Pipeline) fetch(ctx context.Context, fc *FigureConfig) (*loaded, error) {
	s, err := p.schema(fc)
	if err != nil {
		return nil, err
	}
	name := benchcsv.Join(p.Dir, fc.input())
	key := s.Name + "\x00" + name

	p.mu.Lock()
	if l, ok := p.datasets[key]; ok {
		p.mu.Unlock()
		select {
		case <-l.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if l.aborted {
			// The load that owned l was cut short.
			return p.fetch(ctx, fc)
		}
		return l, nil
	}
	if p.datasets == nil {
		p.datasets = make(map[string]*loaded)
	}
	l := &loaded{done: make(chan struct{})}
	p.datasets[key] = l
	p.mu.Unlock()

	o := p.Opener
	if o == nil {
		o = benchcsv.FileOpener{}
	}
	l.d, l.err = benchcsv.Load(ctx, o, name, s)
	if ctx.Err() != nil {
		// Do not remember a load that was cut short.
		p.mu.Lock()
		delete(p.datasets, key)
		p.mu.Unlock()
		l.aborted = true
		close(l.done)
		return nil, ctx.Err()
	}
	close(l.done)
	return l, nil
}

func (p *Pipeline) load(ctx context.Context, fc *FigureConfig) (*benchcsv.Dataset, error) {
	l, err := p.fetch(ctx, fc)
	if err != nil {
		return nil, err
	}
	if l.err != nil {
		return nil, l.err
	}
	if !l.warned {
		l.warned = true
		for _, e := range l.d.Skipped {
			p.warn("skipping %v", e)
		}
	}
	return l.d, nil
}

// prefetch loads the logs of figs concurrently. Load errors are kept
// for Build to report.
func (p *Pipeline) prefetch(ctx context.Context, figs []*FigureConfig) error {
	n := p.Parallel
	if n <= 0 {
		n = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for _, fc := range figs {
		fc := fc
		g.Go(func() error {
			// Unknown experiments and load errors are reported by Build.
			p.fetch(ctx, fc)
			return ctx.Err()
		})
	}
	return g.Wait()
}

// levelValue returns the stored value of v in column col, translating
// a level name such as "naive" to its index.
func levelValue(col *benchschema.Column, v string) string {
	if col == nil {
		return v
	}
	for i, l := range col.Levels {
		if l == v {
			return strconv.Itoa(i)
		}
	}
	return v
}

func where(d *benchcsv.Dataset, filters map[string]string) (*benchcsv.Dataset, error) {
	cols := make([]string, 0, len(filters))
	for c := range filters {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		var err error
		d, err = d.Where(c, levelValue(d.Schema.Column(c), filters[c]))
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Build builds the figures of fc: one figure, or one per level of the
// facet column.
func (p *Pipeline) Build(ctx context.Context, fc *FigureConfig) ([]*benchseries.Figure, error) {
	if err := fc.check(); err != nil {
		return nil, err
	}
	d, err := p.load(ctx, fc)
	if err != nil {
		return nil, err
	}
	if d, err = where(d, fc.Where); err != nil {
		return nil, err
	}
	if fc.Facet == "" {
		f, err := p.figure(fc, d, fc.Name, fc.Axis.Title)
		if err != nil {
			return nil, err
		}
		return []*benchseries.Figure{f}, nil
	}

	g, err := benchgroup.GroupBy(d, []string{fc.Facet}, benchgroup.Sorted)
	if err != nil {
		return nil, err
	}
	if len(g.Groups) == 0 {
		return nil, fmt.Errorf("figure %s: %s has no rows to plot", fc.Name, d.File)
	}
	var figs []*benchseries.Figure
	for _, grp := range g.Groups {
		level := grp.Key.Label()
		sub := &benchcsv.Dataset{Schema: d.Schema, File: d.File, Rows: grp.Rows, Reference: d.Reference}
		title := strings.ReplaceAll(fc.Axis.Title, "{facet}", level)
		f, err := p.figure(fc, sub, fc.Name+"-"+level, title)
		if err != nil {
			return nil, err
		}
		figs = append(figs, f)
	}
	return figs, nil
}

func (p *Pipeline) figure(fc *FigureConfig, d *benchcsv.Dataset, name, title string) (*benchseries.Figure, error) {
	if len(d.Rows) == 0 {
		return nil, fmt.Errorf("figure %s: %s has no rows to plot", name, d.File)
	}
	f := &benchseries.Figure{
		Name: name,
		Axis: benchseries.Axis{
			Title:      title,
			XLabel:     fc.Axis.XLabel,
			YLabel:     fc.Axis.YLabel,
			XScale:     fc.Axis.XScale,
			XLimits:    fc.Axis.XLimits,
			YLimits:    fc.Axis.YLimits,
			Categories: fc.Categories,
			RatioTicks: fc.Axis.RatioTicks,
		},
	}
	var err error
	switch {
	case fc.Kind == KindBar:
		f.Bars, err = p.bars(fc, d, name)
	case fc.mode() == ModePairwise:
		f.Curves, err = p.pairwise(fc, d, name)
	default:
		f.Curves, err = p.curves(fc, d, name)
	}
	if err != nil {
		return nil, fmt.Errorf("figure %s: %w", name, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *Pipeline) aggregate(fc *FigureConfig, d *benchcsv.Dataset, title string, groupBy []string) (*benchgroup.Aggregation, error) {
	g, err := benchgroup.GroupBy(d, groupBy, fc.order())
	if err != nil {
		return nil, err
	}
	a, err := g.Aggregate(fc.columns())
	if err != nil {
		return nil, err
	}
	if p.Table != nil {
		fmt.Fprintf(p.Table, "# %s\n", title)
		if err := a.Fprint(p.Table); err != nil {
			return nil, err
		}
		fmt.Fprintln(p.Table)
	}
	return a, nil
}

func normalize(fc *FigureConfig, a *benchgroup.Aggregation) (*benchnorm.Table, error) {
	cols := fc.columns()
	opts := benchnorm.Options{Invert: fc.Normalize.Invert}
	switch fc.mode() {
	case ModeColumn:
		return benchnorm.ByColumn(a, fc.Normalize.Baseline, cols, opts)
	case ModeReference:
		if a.Reference == nil {
			return nil, fmt.Errorf("%s has no reference line", a.File)
		}
		return benchnorm.ByReference(a, *a.Reference, cols, opts)
	case ModeScalar:
		return benchnorm.ByScalar(a, fc.Normalize.Value, cols, opts)
	}
	return benchnorm.Identity(a, cols)
}

func (p *Pipeline) curves(fc *FigureConfig, d *benchcsv.Dataset, name string) ([]*benchseries.Curve, error) {
	a, err := p.aggregate(fc, d, name, fc.groupBy())
	if err != nil {
		return nil, err
	}
	t, err := normalize(fc, a)
	if err != nil {
		return nil, err
	}
	var curves []*benchseries.Curve
	for _, s := range fc.Series {
		var pts []benchseries.Point
		for _, row := range t.Rows {
			x, err := row.Key.Float(fc.X)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", row.Key, err)
			}
			r, _ := t.Ratio(row, s.Column)
			pts = append(pts, benchseries.Point{X: x, Y: r.Ratio, Raw: r.Value})
		}
		c, err := benchseries.NewCurve(s.Label, pts)
		if err != nil {
			return nil, err
		}
		curves = append(curves, c)
	}
	return curves, nil
}

// points returns the means of column in a, positioned by the x column
// of each group's key.
func points(a *benchgroup.Aggregation, x, column string) ([]benchnorm.Point, error) {
	var pts []benchnorm.Point
	for _, ag := range a.Groups {
		xv, err := ag.Key.Float(x)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", ag.Key, err)
		}
		y, _ := a.Mean(ag, column)
		pts = append(pts, benchnorm.Point{X: xv, Y: y})
	}
	return pts, nil
}

func (p *Pipeline) pairwise(fc *FigureConfig, d *benchcsv.Dataset, name string) ([]*benchseries.Curve, error) {
	n := fc.Normalize
	col := d.Schema.Column(n.Split)
	subset := func(v string) (*benchgroup.Aggregation, error) {
		sub, err := d.Where(n.Split, levelValue(col, v))
		if err != nil {
			return nil, err
		}
		if len(sub.Rows) == 0 {
			return nil, fmt.Errorf("no rows with %s = %s", n.Split, v)
		}
		return p.aggregate(fc, sub, name+" "+n.Split+"="+v, fc.groupBy())
	}
	num, err := subset(n.Numerator)
	if err != nil {
		return nil, err
	}
	den, err := subset(n.Denominator)
	if err != nil {
		return nil, err
	}

	opts := benchnorm.Options{Invert: n.Invert}
	var curves []*benchseries.Curve
	for _, s := range fc.Series {
		np, err := points(num, fc.X, s.Column)
		if err != nil {
			return nil, err
		}
		dp, err := points(den, fc.X, s.Column)
		if err != nil {
			return nil, err
		}
		rs, unmatched, err := benchnorm.Pairwise(np, dp, opts)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		for _, x := range unmatched {
			p.warn("figure %s: series %q has no pair at %s=%v", name, s.Label, fc.X, x)
		}
		pts := make([]benchseries.Point, len(rs))
		for i, r := range rs {
			pts[i] = benchseries.Point{X: r.X, Y: r.Ratio.Ratio, Raw: r.Value}
		}
		c, err := benchseries.NewCurve(s.Label, pts)
		if err != nil {
			return nil, err
		}
		curves = append(curves, c)
	}
	return curves, nil
}

func (p *Pipeline) bars(fc *FigureConfig, d *benchcsv.Dataset, name string) ([]*benchseries.BarSeries, error) {
	a, err := p.aggregate(fc, d, name, fc.GroupBy)
	if err != nil {
		return nil, err
	}
	if len(a.Groups) != 1 {
		return nil, fmt.Errorf("bar chart needs exactly one group, have %d", len(a.Groups))
	}
	t, err := normalize(fc, a)
	if err != nil {
		return nil, err
	}
	row := t.Rows[0]
	labels := make([]string, len(fc.Series))
	values := make([][]float64, len(fc.Series))
	raw := make([][]float64, len(fc.Series))
	for i, s := range fc.Series {
		labels[i] = s.Label
		for _, c := range s.Columns {
			r, _ := t.Ratio(row, c)
			values[i] = append(values[i], r.Ratio)
			raw[i] = append(raw[i], r.Value)
		}
	}
	width := fc.BarWidth
	if width == 0 {
		width = 0.8 / float64(len(fc.Series))
	}
	return benchseries.NewBarSeries(width, labels, fc.Categories, values, raw)
}

// Run builds the named figures of cfg, or all of them if names is
// empty, and renders each to p.Sink. A figure that cannot be built does
// not stop the others; Run returns the errors of all of them. A sink
// error stops Run.
//
// Run returns the number of figures rendered.
func (p *Pipeline) Run(ctx context.Context, cfg *Config, names ...string) (int, error) {
	figs := cfg.Figures
	if len(names) > 0 {
		figs = nil
		for _, name := range names {
			fc := cfg.Figure(name)
			if fc == nil {
				return 0, fmt.Errorf("no figure %s", name)
			}
			figs = append(figs, fc)
		}
	}

	if err := p.prefetch(ctx, figs); err != nil {
		return 0, err
	}

	n := 0
	var errs []error
	for _, fc := range figs {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		fs, err := p.Build(ctx, fc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, f := range fs {
			if p.Sink != nil {
				if err := p.Sink.Render(f); err != nil {
					return n, err
				}
			}
			n++
		}
	}
	return n, errors.Join(errs...)
}
