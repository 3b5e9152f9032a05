// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcsv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/fpbench/benchschema"
)

var testSchema = mustSchema(&benchschema.Schema{
	Name: "test",
	Columns: append([]benchschema.Column{benchschema.Cat("size"), benchschema.Cat("mode")},
		benchschema.Measures("a", "b", "c")...),
})

var refSchema = mustSchema(&benchschema.Schema{
	Name:      "ref",
	Columns:   append([]benchschema.Column{benchschema.Cat("depth")}, benchschema.Measures("lazy", "hybrid")...),
	Reference: &benchschema.Column{Name: "sequential", Kind: benchschema.Float},
})

func mustSchema(s *benchschema.Schema) *benchschema.Schema {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// printRecords formats every record of data for comparison.
func printRecords(t *testing.T, data string, s *benchschema.Schema) []string {
	t.Helper()
	r := NewReader(strings.NewReader(data), "test", s)
	var out []string
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Row:
			var vals []string
			for i := 0; i < rec.Len(); i++ {
				vals = append(vals, rec.At(i).String())
			}
			_, line := rec.Pos()
			out = append(out, fmt.Sprintf("%d: row %s", line, strings.Join(vals, " ")))
		case *Reference:
			_, line := rec.Pos()
			out = append(out, fmt.Sprintf("%d: ref %s=%v", line, rec.Name, rec.Value))
		case *MalformedRowError:
			out = append(out, "error "+rec.Error())
		default:
			t.Fatalf("unexpected record type %T", rec)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal("parsing failed: ", err)
	}
	return out
}

func TestReader(t *testing.T) {
	for _, test := range []struct {
		name   string
		schema *benchschema.Schema
		input  string
		want   []string
	}{
		{
			"basic", testSchema,
			"100,0,1.0,0.9,0.5\n100,0,2.0,1.1,0.6\n200,1,3.0,1.0,0.4\n",
			[]string{
				"1: row 100 0 1 0.9 0.5",
				"2: row 100 0 2 1.1 0.6",
				"3: row 200 1 3 1 0.4",
			},
		},
		{
			"skip bad rows", testSchema,
			"100,0,1.0,0.9,0.5\n100,0,x,1.1,0.6\n100,0,1\n1.5,1,3.0,1.0,0.4\n200,1,3.0,1.0,0.4\n",
			[]string{
				"1: row 100 0 1 0.9 0.5",
				`error test:2: column a: cannot parse "x" as float`,
				"error test:3: got 3 fields, want 5",
				`error test:4: column size: cannot parse "1.5" as int`,
				"5: row 200 1 3 1 0.4",
			},
		},
		{
			"float ints and spaces", testSchema,
			"1e+06, 2.0, 1, 2, NaN\n",
			[]string{"1: row 1000000 2 1 2 NaN"},
		},
		{
			"blank lines and comments", testSchema,
			"# size,mode,a,b,c\n\n100,0,1,2,3\n",
			[]string{"3: row 100 0 1 2 3"},
		},
		{
			"bare quote", testSchema,
			"100,0,1\"x,2,3\n100,0,1,2,3\n",
			[]string{
				`error test:1: bare " in non-quoted-field`,
				"2: row 100 0 1 2 3",
			},
		},
		{
			"reference", refSchema,
			"12.5\n1,2.0,3.0\n2,4.0,5.0\n",
			[]string{
				"1: ref sequential=12.5",
				"2: row 1 2 3",
				"3: row 2 4 5",
			},
		},
		{
			"bad reference", refSchema,
			"1,2.0,3.0\n2,4.0,5.0\n",
			[]string{
				"error test:1: reference line has 3 fields, want 1",
				"2: row 2 4 5",
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := printRecords(t, test.input, test.schema)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReaderNoScan(t *testing.T) {
	r := NewReader(strings.NewReader(""), "", testSchema)
	if _, ok := r.Result().(*MalformedRowError); !ok {
		t.Errorf("Result before Scan = %T, want *MalformedRowError", r.Result())
	}
	if r.Scan() {
		t.Errorf("Scan on empty input returned true")
	}
}

func TestRowAccess(t *testing.T) {
	d, err := Read(NewReader(strings.NewReader("100,2,1.5,0.9,0.5\n"), "test", testSchema))
	if err != nil {
		t.Fatal(err)
	}
	r := d.Rows[0]
	if v, ok := r.Get("mode"); !ok || v.Int() != 2 || v.Kind() != benchschema.Int {
		t.Errorf("Get(mode) = %v, %v", v, ok)
	}
	if f, ok := r.Float("a"); !ok || f != 1.5 {
		t.Errorf("Float(a) = %v, %v", f, ok)
	}
	if f, ok := r.Float("size"); !ok || f != 100 {
		t.Errorf("Float(size) = %v, %v", f, ok)
	}
	if _, ok := r.Get("nope"); ok {
		t.Errorf("Get(nope) succeeded")
	}
	if f, ok := StringValue("x").Float(); ok || !math.IsNaN(f) {
		t.Errorf("string Float() = %v, %v", f, ok)
	}
}

type mapOpener map[string]string

type trackingCloser struct {
	io.Reader
	closed *bool
}

func (c trackingCloser) Close() error {
	*c.closed = true
	return nil
}

func (m mapOpener) open(closed *bool) Opener {
	return openerFunc(func(ctx context.Context, name string) (io.ReadCloser, error) {
		data, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("%s: no such file", name)
		}
		return trackingCloser{strings.NewReader(data), closed}, nil
	})
}

type openerFunc func(ctx context.Context, name string) (io.ReadCloser, error)

func (f openerFunc) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return f(ctx, name)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	files := mapOpener{
		"hybrid.csv": "7.0\n1,2.0,3.0\nbogus\n2,4.0,5.0\n",
	}
	var closed bool
	o := files.open(&closed)

	d, err := Load(ctx, o, "hybrid.csv", refSchema)
	if err != nil {
		t.Fatal(err)
	}
	if !closed {
		t.Errorf("input was not closed")
	}
	if d.Reference == nil || d.Reference.Value != 7 {
		t.Errorf("Reference = %+v, want 7", d.Reference)
	}
	if len(d.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(d.Rows))
	}
	for _, r := range d.Rows {
		if r.Len() != refSchema.Len() {
			t.Errorf("row has %d fields, want %d", r.Len(), refSchema.Len())
		}
	}
	if len(d.Skipped) != 1 || d.Skipped[0].Line != 3 {
		t.Errorf("Skipped = %v, want one error on line 3", d.Skipped)
	}

	_, err = Load(ctx, o, "missing.csv", refSchema)
	var se *benchschema.SchemaError
	if !errors.As(err, &se) || se.File != "missing.csv" {
		t.Errorf("Load(missing) error = %v, want *SchemaError for missing.csv", err)
	}

	_, err = Load(ctx, o, "hybrid.csv", &benchschema.Schema{Name: "empty"})
	if !errors.As(err, &se) {
		t.Errorf("Load with invalid schema error = %v, want *SchemaError", err)
	}
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n == 0 {
		r.n++
		return copy(p, "100,0,1,2,3\n"), nil
	}
	return 0, errors.New("disk on fire")
}

func TestLoadIOError(t *testing.T) {
	var closed bool
	o := openerFunc(func(ctx context.Context, name string) (io.ReadCloser, error) {
		return trackingCloser{&failingReader{}, &closed}, nil
	})
	d, err := Load(context.Background(), o, "x.csv", testSchema)
	if err == nil || d != nil {
		t.Fatalf("Load = %v, %v; want no dataset and an error", d, err)
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("error %q does not mention the cause", err)
	}
	if !closed {
		t.Errorf("input was not closed after a read error")
	}
}

func TestWhere(t *testing.T) {
	d, err := Read(NewReader(strings.NewReader("100,0,1,1,1\n100,1,2,2,2\n200,0,3,3,3\n"), "t", testSchema))
	if err != nil {
		t.Fatal(err)
	}
	sub, err := d.Where("mode", "0")
	if err != nil {
		t.Fatal(err)
	}
	var got []float64
	for _, r := range sub.Rows {
		f, _ := r.Float("a")
		got = append(got, f)
	}
	if diff := cmp.Diff([]float64{1, 3}, got); diff != "" {
		t.Errorf("Where mismatch (-want +got):\n%s", diff)
	}
	if _, err := d.Where("nope", "0"); err == nil {
		t.Errorf("Where on unknown column succeeded")
	}
}

func TestJoinAndGCSName(t *testing.T) {
	for _, test := range []struct{ dir, name, want string }{
		{"", "a.csv", "a.csv"},
		{"logs", "a.csv", "logs/a.csv"},
		{"gs://b/logs/", "a.csv", "gs://b/logs/a.csv"},
		{"logs", "gs://b/a.csv", "gs://b/a.csv"},
		{"logs", "-", "-"},
	} {
		if got := Join(test.dir, test.name); got != test.want {
			t.Errorf("Join(%q, %q) = %q, want %q", test.dir, test.name, got, test.want)
		}
	}
	b, o, err := ParseGCSName("gs://bucket/dir/a.csv")
	if err != nil || b != "bucket" || o != "dir/a.csv" {
		t.Errorf("ParseGCSName = %q, %q, %v", b, o, err)
	}
	for _, bad := range []string{"bucket/a.csv", "gs://bucket", "gs:///a.csv"} {
		if _, _, err := ParseGCSName(bad); err == nil {
			t.Errorf("ParseGCSName(%q) succeeded", bad)
		}
	}
}

func TestMuxOpener(t *testing.T) {
	var closed bool
	m := &MuxOpener{
		Default: mapOpener{"a.csv": "x"}.open(&closed),
		Schemes: map[string]Opener{"mem": mapOpener{"mem://b/c": "y"}.open(&closed)},
	}
	ctx := context.Background()
	for name, want := range map[string]string{"a.csv": "x", "mem://b/c": "y"} {
		rc, err := m.Open(ctx, name)
		if err != nil {
			t.Fatalf("Open(%q): %v", name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != want {
			t.Errorf("Open(%q) read %q, want %q", name, data, want)
		}
	}
	if _, err := m.Open(ctx, "s3://b/c"); err == nil {
		t.Errorf("Open with unknown scheme succeeded")
	}
}
