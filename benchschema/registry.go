// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchschema

import "sort"

// A Registry maps experiment names to their schemas.
//
// The zero Registry is empty and ready to use.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry returns a Registry holding the given schemas. It returns
// the first validation error, if any.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := new(Registry)
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates s and adds it to r, replacing any schema with the
// same name.
func (r *Registry) Register(s *Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if r.schemas == nil {
		r.schemas = make(map[string]*Schema)
	}
	r.schemas[s.Name] = s
	return nil
}

// Lookup returns the schema of the named experiment. It returns an
// *UnknownExperimentError if r has no such schema.
func (r *Registry) Lookup(name string) (*Schema, error) {
	if s, ok := r.schemas[name]; ok {
		return s, nil
	}
	return nil, &UnknownExperimentError{Name: name}
}

// Names returns the registered experiment names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default holds the layouts of the floating-point precision
// experiments. Each layout is the exact column list the corresponding
// benchmark driver writes.
var Default = mustRegistry(
	&Schema{
		Name: "m_test_mts",
		Doc:  "maximum tail sum with superaccumulators and floating-point expansions",
		Columns: append([]Column{
			Cat("size2"),
			Cat("initmode", "naive", "fpuniform", "ill conditioned"),
		}, Measures("superacc", "fpe2", "fpe4", "fpe4ee", "fpe6ee", "fpe8ee")...),
	},
	&Schema{
		Name: "bellman_ford",
		Doc:  "Bellman-Ford shortest paths by graph size",
		Columns: append([]Column{Cat("vertices")},
			Measures("doubles", "mpfr", "lazy_exact", "lazy_interval", "lazy_reverse", "lazy_total")...),
	},
	&Schema{
		Name:    "reductions",
		Doc:     "TBB parallel_reduce against a hand-written reduction",
		Columns: append([]Column{Cat("grain")}, Measures("tbb", "homemade")...),
	},
	&Schema{
		Name: "mps_dynamic_range",
		Doc:  "maximum prefix sum by dynamic range, sequential and parallel",
		Columns: append([]Column{Cat("range")},
			Measures("doubles", "par_doubles", "superacc", "lazy_superacc", "mpfr", "lazy_mpfr")...),
	},
	&Schema{
		Name: "mps_sequential",
		Doc:  "sequential maximum prefix sum by dynamic range",
		Columns: append([]Column{Cat("range")},
			Measures("doubles", "sum_superacc", "mps_superacc", "lazy_superacc", "lazy_superacc_opt")...),
	},
	&Schema{
		Name: "mps_sequential_alt",
		Doc:  "sequential maximum prefix sum, guarantees on the sum and on the position",
		Columns: append([]Column{Cat("range")}, Measures(
			"doubles", "sum_superacc", "mps_superacc", "mps_mpfr",
			"interval", "reverse_mps", "reverse_pos",
			"exact_mps_superacc", "exact_pos_superacc", "exact_mps_mpfr", "exact_pos_mpfr",
			"lazy_mps_superacc", "lazy_pos_superacc", "lazy_mps_mpfr", "lazy_pos_mpfr",
			"exact_step_mps", "exact_step_pos")...),
	},
	&Schema{
		Name: "parallel_mss",
		Doc:  "parallel maximum segment sum by dynamic range",
		Columns: append([]Column{Cat("range")},
			Measures("seq_doubles", "par_doubles", "lazy")...),
	},
	&Schema{
		Name:    "viterbi",
		Doc:     "Viterbi decoding",
		Columns: Measures("doubles", "mpfr", "interval", "reverse", "exact", "total"),
	},
	&Schema{
		Name:      "mss_hybrid",
		Doc:       "parallel maximum segment sum by depth threshold",
		Columns:   append([]Column{Cat("depth")}, Measures("lazy", "hybrid")...),
		Reference: &Column{Name: "sequential", Kind: Float, Role: Measurement},
	},
	&Schema{
		Name: "steep_hybrid",
		Doc:  "parallel steepest descent by array size",
		Columns: append([]Column{Cat("size")},
			Measures("par_doubles", "interval", "interval_sched", "sequential")...),
	},
	&Schema{
		Name: "mss_hybrid_final",
		Doc:  "parallel maximum segment sum by array size",
		Columns: append([]Column{Cat("size")},
			Measures("par_doubles", "interval", "interval_sched", "sequential")...),
	},
	&Schema{
		Name:      "optimal_depth",
		Doc:       "optimal depth threshold by array size",
		Columns:   []Column{Cat("size"), {Name: "depth", Kind: Int, Role: Measurement}},
		Reference: &Column{Name: "calibration", Kind: Float, Role: Measurement},
	},
)

func mustRegistry(schemas ...*Schema) *Registry {
	r, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return r
}
