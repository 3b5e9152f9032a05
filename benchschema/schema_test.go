// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchschema

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		schema *Schema
		err    string // substring, "" for success
	}{
		{"ok", &Schema{Name: "x", Columns: []Column{Cat("n"), Measure("t")}}, ""},
		{"no name", &Schema{Columns: []Column{Measure("t")}}, "no name"},
		{"no columns", &Schema{Name: "x"}, "no columns"},
		{"empty column", &Schema{Name: "x", Columns: []Column{{Kind: Float}}}, "column 0 has no name"},
		{"duplicate", &Schema{Name: "x", Columns: []Column{Measure("t"), Measure("t")}}, `duplicate column "t"`},
		{"string measure", &Schema{Name: "x", Columns: []Column{{Name: "s", Kind: String, Role: Measurement}}}, "not numeric"},
		{"bad kind", &Schema{Name: "x", Columns: []Column{{Name: "s", Kind: Kind(9)}}}, "unknown kind Kind(9)"},
		{"float levels", &Schema{Name: "x", Columns: []Column{{Name: "f", Kind: Float, Role: Categorical, Levels: []string{"a"}}}}, "has levels"},
		{"string reference", &Schema{Name: "x", Columns: []Column{Measure("t")}, Reference: &Column{Name: "r", Kind: String}}, `reference "r"`},
	} {
		t.Run(test.name, func(t *testing.T) {
			err := test.schema.Validate()
			if test.err == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("got %v (%T), want *SchemaError", err, err)
			}
			if !strings.Contains(err.Error(), test.err) {
				t.Errorf("error %q does not contain %q", err, test.err)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	s := &Schema{Name: "x", Columns: []Column{Cat("size2"), Cat("initmode"), Measure("superacc")}}
	// Index works both before and after validation.
	for _, validate := range []bool{false, true} {
		if validate {
			if err := s.Validate(); err != nil {
				t.Fatal(err)
			}
		}
		if got := s.Index("initmode"); got != 1 {
			t.Errorf("Index(initmode) = %d, want 1", got)
		}
		if got := s.Index("missing"); got != -1 {
			t.Errorf("Index(missing) = %d, want -1", got)
		}
	}
	if diff := cmp.Diff([]string{"size2", "initmode"}, s.Names(Categorical)); diff != "" {
		t.Errorf("Names(Categorical) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"superacc"}, s.Names(Measurement)); diff != "" {
		t.Errorf("Names(Measurement) mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentUse(t *testing.T) {
	s := &Schema{Name: "x", Columns: []Column{Cat("size2"), Cat("initmode"), Measure("superacc")}}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Validate(); err != nil {
				t.Error(err)
			}
			if got := s.Index("superacc"); got != 2 {
				t.Errorf("Index(superacc) = %d, want 2", got)
			}
		}()
	}
	wg.Wait()
}

func TestLevel(t *testing.T) {
	c := Cat("initmode", "naive", "fpuniform", "ill conditioned")
	for v, want := range map[string]string{"0": "naive", "2": "ill conditioned", "3": "3", "x": "x"} {
		if got := c.Level(v); got != want {
			t.Errorf("Level(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	s, err := Default.Lookup("m_test_mts")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 8 {
		t.Errorf("m_test_mts has %d columns, want 8", s.Len())
	}
	if c := s.Column("initmode"); c == nil || c.Kind != Int || c.Role != Categorical {
		t.Errorf("initmode = %+v, want int categorical", c)
	}
	if c := s.Column("fpe4"); c == nil || c.Kind != Float || c.Role != Measurement {
		t.Errorf("fpe4 = %+v, want float measurement", c)
	}

	_, err = Default.Lookup("nope")
	var ue *UnknownExperimentError
	if !errors.As(err, &ue) || ue.Name != "nope" {
		t.Fatalf("Lookup(nope) error = %v, want *UnknownExperimentError", err)
	}
	if !errors.Is(err, &SchemaError{}) {
		t.Errorf("unknown experiment does not match *SchemaError")
	}

	var r Registry
	if err := r.Register(&Schema{Name: "bad"}); err == nil {
		t.Errorf("registering an invalid schema succeeded")
	}
	if len(r.Names()) != 0 {
		t.Errorf("invalid schema was registered: %v", r.Names())
	}
}
