// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// A Charter draws figures with gonum/plot and saves them as image
// files named after the figure, in one directory per format.
type Charter struct {
	PNGDir, SVGDir, PDFDir string

	// Width and Height are the size of each chart. They default to
	// 16cm by 10cm.
	Width, Height vg.Length
}

func (c *Charter) Render(f *Figure) error {
	if err := f.Validate(); err != nil {
		return err
	}
	pl, err := Plot(f)
	if err != nil {
		return err
	}
	w, h := c.Width, c.Height
	if w == 0 {
		w = 16 * vg.Centimeter
	}
	if h == 0 {
		h = 10 * vg.Centimeter
	}
	for _, out := range []struct{ dir, sfx string }{
		{c.PNGDir, "png"},
		{c.SVGDir, "svg"},
		{c.PDFDir, "pdf"},
	} {
		if out.dir == "" {
			continue
		}
		if err := os.MkdirAll(out.dir, 0777); err != nil {
			return err
		}
		file := filepath.Join(out.dir, FileName(f.Name)+"."+out.sfx)
		if err := pl.Save(w, h, file); err != nil {
			return fmt.Errorf("figure %s: %w", f.Name, err)
		}
	}
	return nil
}

// FileName returns name with path separators and spaces replaced, for
// use as a file name.
func FileName(name string) string {
	name = strings.ReplaceAll(name, "/", "-per-")
	return strings.Join(strings.Fields(name), "_")
}

// Plot lays out f as a gonum plot.
func Plot(f *Figure) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = f.Axis.Title
	pl.X.Label.Text = f.Axis.XLabel
	pl.Y.Label.Text = f.Axis.YLabel
	pl.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	if f.Axis.XScale == Log {
		pl.X.Scale = plot.LogScale{}
		pl.X.Tick.Marker = plot.LogTicks{}
	}

	labels := f.Labels()
	var ys []float64
	for i, c := range f.Curves {
		l, s, err := plotter.NewLinePoints(c)
		if err != nil {
			return nil, fmt.Errorf("figure %s: series %q: %w", f.Name, c.Label, err)
		}
		l.Color = plotutil.Color(i)
		s.Color = plotutil.Color(i)
		s.Shape = plotutil.Shape(i)
		pl.Add(l, s)
		pl.Legend.Add(labels[i], l, s)
		for _, p := range c.Points {
			ys = append(ys, p.Y)
		}
	}
	for i, b := range f.Bars {
		bp := &barPlotter{
			series: b,
			color:  plotutil.Color(i),
			line:   draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)},
		}
		pl.Add(bp)
		pl.Legend.Add(labels[i], bp)
		for _, bar := range b.Bars {
			ys = append(ys, bar.Value)
		}
	}
	if len(f.Bars) > 0 {
		pl.NominalX(f.Axis.Categories...)
	}

	if f.Axis.RatioTicks {
		ratioTicks(pl, ys)
	}
	if lim := f.Axis.XLimits; lim != nil {
		pl.X.Min, pl.X.Max = lim.Min, lim.Max
	}
	if lim := f.Axis.YLimits; lim != nil {
		pl.Y.Min, pl.Y.Max = lim.Min, lim.Max
	}
	return pl, nil
}

// ratioTicks places the y grid lines of pl at round distances from 1,
// spaced to suit most of ys.
func ratioTicks(pl *plot.Plot, ys []float64) {
	var vals []float64
	for _, y := range ys {
		if !math.IsNaN(y) && !math.IsInf(y, 0) {
			vals = append(vals, y)
		}
	}
	if len(vals) == 0 {
		return
	}
	sort.Float64s(vals)
	sample := stats.Sample{Xs: vals, Sorted: true}

	// Want lines that grab most of the data; it's outliers we worry
	// about.
	low, high := sample.Quantile(0.04), sample.Quantile(0.96)
	min, max := vals[0], vals[len(vals)-1]
	if lines, ok := ratioLines(low, high, min, max); ok {
		pl.Y.Tick.Marker = lines
	}

	// Force the unit ratio onto the graph to ensure there is a scale.
	if pl.Y.Min > 1 {
		pl.Y.Min = 1
	}
	if pl.Y.Max < 1 {
		pl.Y.Max = 1
	}
}

// barPlotter draws one BarSeries with bars whose position and width
// are in data units, so that series stay inside their category
// whatever the size of the canvas.
type barPlotter struct {
	series *BarSeries
	color  color.Color
	line   draw.LineStyle
}

func (b *barPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	half := b.series.Width / 2
	for j, bar := range b.series.Bars {
		if math.IsNaN(bar.Value) {
			continue
		}
		x := b.series.Position(j)
		x0, x1 := trX(x-half), trX(x+half)
		y0, y1 := trY(0), trY(bar.Value)
		pts := []vg.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}}
		c.FillPolygon(b.color, c.ClipPolygonY(pts))
		c.StrokeLines(b.line, c.ClipLinesY(append(pts, pts[0]))...)
	}
}

func (b *barPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	n := len(b.series.Bars)
	half := b.series.Width / 2
	xmin, xmax = b.series.Position(0)-half, b.series.Position(n-1)+half
	for _, bar := range b.series.Bars {
		if math.IsNaN(bar.Value) {
			continue
		}
		ymin = math.Min(ymin, bar.Value)
		ymax = math.Max(ymax, bar.Value)
	}
	return
}

// Thumbnail draws the legend entry of b.
func (b *barPlotter) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(b.color, c.ClipPolygonY(pts))
	c.StrokeLines(b.line, c.ClipLinesY(append(pts, pts[0]))...)
}

// maxRatioTicks bounds the number of grid lines ratioLines places.
const maxRatioTicks = 40

// Lines is a plot.Ticker with a fixed set of ticks.
type Lines struct {
	ticks []plot.Tick
}

func (u Lines) Ticks(min, max float64) []plot.Tick {
	return u.ticks
}

// roundish finds a roundish fraction less than x, and the number of digits for formatting.
// x is distance from 1.0, so 1 +/- roundish(x) gives a good location for a grid line.
func roundish(x float64) (float64, int) {
	if !(x > 0) { // catch NaN also.
		panic(fmt.Sprintf("roundish(%.9g <= 0)", x))
	}
	if x >= 1 {
		return math.Trunc(x), 0
	}
	if x >= 0.5 {
		return 0.5, 1
	}
	if x >= 0.25 {
		return 0.25, 2
	}
	if x >= 0.2 {
		return 0.2, 1
	}
	if x >= 0.1 {
		return 0.1, 1
	}
	x, n := roundish(x * 10)
	return x / 10, n + 1
}

func reverseTicks(ticks []plot.Tick) []plot.Tick {
	l := len(ticks)
	for i := 0; i < l/2; i++ {
		ticks[i], ticks[l-i-1] = ticks[l-i-1], ticks[i]
	}
	return ticks
}

// ratioLines returns grid lines at multiples of a round step from 1.
// low and high bound most of the data and min and max bound all of
// it. ok is false if the lines would be too dense to be useful.
func ratioLines(low, high, min, max float64) (lines Lines, ok bool) {
	tooMany := func(span, step float64) bool {
		return span/step > maxRatioTicks
	}
	if high <= 1 {
		if low == 1 {
			return Lines{ticks: []plot.Tick{one}}, true
		}
		step, k := roundish(1 - low)
		if tooMany(1-min, step) {
			return Lines{}, false
		}
		var ticks []plot.Tick
		for t := 1.0; t > min; t -= step {
			ticks = append(ticks, tick(t, k))
		}
		return Lines{ticks: reverseTicks(ticks)}, true
	} else if low >= 1 {
		step, k := roundish(high - 1)
		if tooMany(max-1, step) {
			return Lines{}, false
		}
		k++ // for 1.frac
		var ticks []plot.Tick
		for t := 1.0; t < max; t += step {
			ticks = append(ticks, tick(t, k))
		}
		return Lines{ticks: ticks}, true
	}
	rmin, kmin := roundish(1 - low)
	rmax, k := roundish(high - 1)
	if rmax < rmin {
		rmax = rmin
		k = kmin
	}
	k++ // for 1.frac

	step := rmax
	if tooMany(max-min, step) {
		return Lines{}, false
	}
	var ticks []plot.Tick
	for t := 1.0; t > min; t -= step {
		ticks = append(ticks, tick(t, k))
	}
	ticks = reverseTicks(ticks)
	for t := 1.0 + step; t < max; t += step {
		ticks = append(ticks, tick(t, k))
	}
	return Lines{ticks: ticks}, true
}

func tick(x float64, k int) plot.Tick {
	return plot.Tick{Value: x, Label: fmt.Sprintf("%.[2]*[1]g", x, k)}
}

var one = plot.Tick{
	Value: 1.0, Label: "1.0",
}
