// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchplot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/fpbench/benchcsv"
	"golang.org/x/fpbench/benchschema"
	"golang.org/x/fpbench/benchseries"
)

var cmpApprox = cmpopts.EquateApprox(0, 1e-9)

// recorder is a Sink that keeps every figure.
type recorder struct {
	figs []*benchseries.Figure
}

func (r *recorder) Render(f *benchseries.Figure) error {
	r.figs = append(r.figs, f)
	return nil
}

func (r *recorder) names() []string {
	var names []string
	for _, f := range r.figs {
		names = append(names, f.Name)
	}
	return names
}

type warnings []string

func (w *warnings) warn(format string, args ...interface{}) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func testPipeline() (*Pipeline, *warnings) {
	w := new(warnings)
	return &Pipeline{Dir: "testdata", Warn: w.warn}, w
}

// xy returns the points of each curve of f, keyed by label.
func xy(f *benchseries.Figure) map[string][][2]float64 {
	m := make(map[string][][2]float64)
	for _, c := range f.Curves {
		for _, p := range c.Points {
			m[c.Label] = append(m[c.Label], [2]float64{p.X, p.Y})
		}
	}
	return m
}

func build(t *testing.T, p *Pipeline, fc *FigureConfig) []*benchseries.Figure {
	t.Helper()
	figs, err := p.Build(context.Background(), fc)
	if err != nil {
		t.Fatal(err)
	}
	return figs
}

func defaultFigure(t *testing.T, name string) *FigureConfig {
	t.Helper()
	fc := Default().Figure(name)
	if fc == nil {
		t.Fatalf("no default figure %s", name)
	}
	return fc
}

func TestCurves(t *testing.T) {
	p, w := testPipeline()
	figs := build(t, p, defaultFigure(t, "bellman_ford"))
	if len(figs) != 1 {
		t.Fatalf("got %d figures, want 1", len(figs))
	}
	got := xy(figs[0])
	if diff := cmp.Diff([][2]float64{{10, 2}, {20, 4}}, got["Doubles"]); diff != "" {
		t.Errorf("Doubles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]float64{{10, 6}, {20, 12}}, got["Lazy mpfr, total time"]); diff != "" {
		t.Errorf("total mismatch (-want +got):\n%s", diff)
	}
	if len(*w) != 1 || !strings.Contains((*w)[0], "bellman_ford.csv:4") {
		t.Errorf("warnings = %q, want one for line 4", *w)
	}
	if figs[0].Axis.XLabel != "Number of vertices" {
		t.Errorf("x label = %q", figs[0].Axis.XLabel)
	}
}

func TestDuplicateKey(t *testing.T) {
	p, _ := testPipeline()
	fc := &FigureConfig{
		Name:       "mts",
		Experiment: "m_test_mts",
		Kind:       KindCurve,
		GroupBy:    []string{"size2", "initmode"},
		X:          "size2",
		Series:     []SeriesConfig{{Label: "fpe2", Column: "fpe2"}},
	}
	_, err := p.Build(context.Background(), fc)
	var de *benchseries.DuplicateKeyError
	if !errors.As(err, &de) {
		t.Fatalf("Build error = %v, want *DuplicateKeyError", err)
	}
	if de.Label != "fpe2" || de.X != 10 {
		t.Errorf("DuplicateKeyError = %+v", de)
	}
}

func TestWhereLevel(t *testing.T) {
	p, _ := testPipeline()
	fc := &FigureConfig{
		Name:       "ill",
		Experiment: "m_test_mts",
		Kind:       KindCurve,
		Where:      map[string]string{"initmode": "ill conditioned"},
		X:          "size2",
		Series:     []SeriesConfig{{Label: "superacc", Column: "superacc"}},
	}
	got := xy(build(t, p, fc)[0])["superacc"]
	if diff := cmp.Diff([][2]float64{{10, 3}, {20, 4}, {30, 5}}, got); diff != "" {
		t.Errorf("superacc mismatch (-want +got):\n%s", diff)
	}

	fc.Where = map[string]string{"initmode": "fpuniform"}
	if _, err := p.Build(context.Background(), fc); err == nil || !strings.Contains(err.Error(), "no rows") {
		t.Errorf("Build with no matching rows error = %v", err)
	}
}

func TestFacet(t *testing.T) {
	p, _ := testPipeline()
	figs := build(t, p, defaultFigure(t, "m_test_mts"))
	var names, titles []string
	for _, f := range figs {
		names = append(names, f.Name)
		titles = append(titles, f.Axis.Title)
	}
	if diff := cmp.Diff([]string{"m_test_mts-naive", "m_test_mts-ill conditioned"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Data: naive", "Data: ill conditioned"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]float64{{10, 1}, {20, 2}}, xy(figs[0])["superacc"]); diff != "" {
		t.Errorf("naive superacc mismatch (-want +got):\n%s", diff)
	}
}

func TestReference(t *testing.T) {
	p, _ := testPipeline()
	got := xy(build(t, p, defaultFigure(t, "mss_hybrid"))[0])
	want := map[string][][2]float64{
		"Lazy computation": {{1, 1.5}, {2, 0.5}},
		"Hybrid reduction": {{1, 3}, {2, 1}},
	}
	if diff := cmp.Diff(want, got, cmpApprox); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	fc := *defaultFigure(t, "mss_hybrid")
	fc.Input = "mss_hybrid_noref.csv"
	_, err := p.Build(context.Background(), &fc)
	if err == nil || !strings.Contains(err.Error(), "no reference line") {
		t.Errorf("Build without a reference error = %v", err)
	}
}

func TestInverted(t *testing.T) {
	p, _ := testPipeline()
	f := build(t, p, defaultFigure(t, "steep_hybrid"))[0]
	want := map[string][][2]float64{
		"Double Parallel Reduce":        {{1000, 4}, {2000, 4}},
		"Interval Arithmetic Filtering": {{1000, 2}, {2000, 2}},
		"Sequential Implementation":     {{1000, 1}, {2000, 1}},
	}
	if diff := cmp.Diff(want, xy(f), cmpApprox); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if p := f.Curves[0].Points[0]; p.Raw != 2 {
		t.Errorf("raw value = %v, want 2", p.Raw)
	}
	if f.Axis.XScale != benchseries.Log || f.Axis.YLimits.Max != 4 {
		t.Errorf("axis = %+v", f.Axis)
	}
}

func TestScalarMode(t *testing.T) {
	p, _ := testPipeline()
	fc := *defaultFigure(t, "bellman_ford")
	fc.Normalize = NormalizeConfig{Mode: ModeScalar, Value: 2}
	got := xy(build(t, p, &fc)[0])["Doubles"]
	if diff := cmp.Diff([][2]float64{{10, 1}, {20, 2}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPairwiseMode(t *testing.T) {
	p, w := testPipeline()
	f := build(t, p, defaultFigure(t, "m_test_mts_conditioning"))[0]
	got := xy(f)
	if diff := cmp.Diff([][2]float64{{10, 3}, {20, 2}}, got["superacc"], cmpApprox); diff != "" {
		t.Errorf("superacc mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]float64{{10, 2}, {20, 2}}, got["fpe2"], cmpApprox); diff != "" {
		t.Errorf("fpe2 mismatch (-want +got):\n%s", diff)
	}
	// size2 30 has no naive rows; each of the six series reports it.
	if len(*w) != 6 || !strings.Contains((*w)[0], "size2=30") {
		t.Errorf("warnings = %q", *w)
	}
}

func TestBars(t *testing.T) {
	p, _ := testPipeline()
	f := build(t, p, defaultFigure(t, "hist_bellman_ford"))[0]
	var values []float64
	for _, s := range f.Bars {
		values = append(values, s.Bars[0].Value)
	}
	if diff := cmp.Diff([]float64{1, 1.5, 0.5, 1, 3}, values, cmpApprox); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if f.Bars[0].Width != 0.15 {
		t.Errorf("width = %v, want 0.15", f.Bars[0].Width)
	}

	f = build(t, p, defaultFigure(t, "hist_viterbi"))[0]
	values = values[:0]
	for _, s := range f.Bars {
		values = append(values, s.Bars[0].Value)
	}
	if diff := cmp.Diff([]float64{1, 2.0 / 3, 2, 3, 4}, values, cmpApprox); diff != "" {
		t.Errorf("viterbi values mismatch (-want +got):\n%s", diff)
	}

	fc := *defaultFigure(t, "hist_bellman_ford")
	fc.GroupBy = []string{"vertices"}
	if _, err := p.Build(context.Background(), &fc); err == nil || !strings.Contains(err.Error(), "exactly one group") {
		t.Errorf("Build of bars over two groups error = %v", err)
	}
}

func TestTable(t *testing.T) {
	var buf strings.Builder
	p, _ := testPipeline()
	p.Table = &buf
	build(t, p, defaultFigure(t, "bellman_ford"))
	out := buf.String()
	if !strings.HasPrefix(out, "# bellman_ford\n") || !strings.Contains(out, "lazy_total") {
		t.Errorf("table output:\n%s", out)
	}
}

func TestRun(t *testing.T) {
	p, _ := testPipeline()
	rec := new(recorder)
	p.Sink = rec
	n, err := p.Run(context.Background(), Default(), "bellman_ford", "hist_bellman_ford", "m_test_mts")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bellman_ford", "hist_bellman_ford", "m_test_mts-naive", "m_test_mts-ill conditioned"}
	if diff := cmp.Diff(want, rec.names()); diff != "" || n != len(want) {
		t.Errorf("Run rendered %d figures, names mismatch (-want +got):\n%s", n, diff)
	}

	if _, err := p.Run(context.Background(), Default(), "nope"); err == nil {
		t.Errorf("Run of an unknown figure succeeded")
	}

	// The test data lacks most logs; Run keeps going past them.
	rec.figs = nil
	n, err = p.Run(context.Background(), Default())
	if err == nil {
		t.Errorf("Run of every figure succeeded without their logs")
	}
	var se *benchschema.SchemaError
	if !errors.As(err, &se) {
		t.Errorf("Run error = %v, want a *SchemaError for a missing log", err)
	}
	if n != len(rec.figs) || n < len(want) {
		t.Errorf("Run rendered %d figures, recorded %d", n, len(rec.figs))
	}
}

// countingOpener counts the opens of each log. Each open takes delay.
type countingOpener struct {
	delay  time.Duration
	mu     sync.Mutex
	opened map[string]int
}

func (o *countingOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	o.mu.Lock()
	o.opened[name]++
	o.mu.Unlock()
	time.Sleep(o.delay)
	return benchcsv.FileOpener{}.Open(ctx, name)
}

func TestRunLoadsOnce(t *testing.T) {
	p, w := testPipeline()
	o := &countingOpener{opened: make(map[string]int)}
	p.Opener = o
	p.Parallel = 2
	n, err := p.Run(context.Background(), Default(), "bellman_ford", "hist_bellman_ford", "reductions", "steep_hybrid")
	if err == nil || !strings.Contains(err.Error(), "reductions") {
		t.Errorf("Run error = %v, want one for the reductions log", err)
	}
	if n != 3 {
		t.Errorf("Run rendered %d figures, want 3", n)
	}
	for name, c := range o.opened {
		if c != 1 {
			t.Errorf("%s opened %d times", name, c)
		}
	}
	if len(o.opened) != 3 {
		t.Errorf("opened %v, want three logs", o.opened)
	}
	// The malformed line is reported once though two figures read the log.
	if len(*w) != 1 {
		t.Errorf("warnings = %q", *w)
	}
}

func TestRunSharedLog(t *testing.T) {
	// Both figures read bellman_ford.csv; the slow open keeps the first
	// load in flight while the second figure asks for the same log.
	p, w := testPipeline()
	o := &countingOpener{delay: 50 * time.Millisecond, opened: make(map[string]int)}
	p.Opener = o
	p.Parallel = 2
	n, err := p.Run(context.Background(), Default(), "bellman_ford", "hist_bellman_ford")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Run rendered %d figures, want 2", n)
	}
	if diff := cmp.Diff(map[string]int{"testdata/bellman_ford.csv": 1}, o.opened); diff != "" {
		t.Errorf("opens mismatch (-want +got):\n%s", diff)
	}
	if len(*w) != 1 {
		t.Errorf("warnings = %q", *w)
	}
}

func TestRunCancel(t *testing.T) {
	p, _ := testPipeline()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, Default()); !errors.Is(err, context.Canceled) {
		t.Errorf("Run with a canceled context error = %v", err)
	}
}

func TestUnknownExperiment(t *testing.T) {
	p, _ := testPipeline()
	fc := &FigureConfig{Name: "f", Experiment: "fft", Kind: KindCurve, X: "n", Series: []SeriesConfig{{Label: "a", Column: "a"}}}
	_, err := p.Build(context.Background(), fc)
	var ue *benchschema.UnknownExperimentError
	if !errors.As(err, &ue) {
		t.Errorf("Build error = %v, want *UnknownExperimentError", err)
	}
}
