// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchgroup

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/fpbench/benchschema"
)

// Less reports whether k comes before o in the sorted order of their
// projection. Numeric columns compare numerically and string columns
// compare lexically. It panics if k and o have different Projections.
func (k Key) Less(o Key) bool {
	if k.k.proj != o.k.proj {
		panic("cannot compare Keys from different Projections")
	}
	return less(k.k.proj.cols, k.k.vals, o.k.vals)
}

func less(cols []*benchschema.Column, a, b []string) bool {
	for i, c := range cols {
		aa, bb := a[i], b[i]
		if aa == bb {
			continue
		}
		cmp := strings.Compare(aa, bb)
		if c.Kind.Numeric() {
			if n := compareNum(aa, bb); n != 0 {
				cmp = n
			}
		}
		// Keys are only == if their values are ==, so fall back
		// to a string comparison for numerically equal values
		// such as "1" and "1.0".
		return cmp < 0
	}
	return false
}

// compareNum orders a and b numerically, putting NaNs and unparsable
// values after other values.
func compareNum(a, b string) int {
	aa, erra := strconv.ParseFloat(a, 64)
	bb, errb := strconv.ParseFloat(b, 64)
	if erra == nil && errb == nil {
		if aa < bb || (!math.IsNaN(aa) && math.IsNaN(bb)) {
			return -1
		}
		if aa > bb || (math.IsNaN(aa) && !math.IsNaN(bb)) {
			return 1
		}
		return 0
	}
	if erra != nil && errb != nil {
		return 0
	}
	if erra == nil {
		return -1
	}
	return 1
}

// SortKeys sorts a slice of Keys using Key.Less.
// All Keys must have the same Projection.
func SortKeys(keys []Key) {
	if len(keys) == 0 {
		return
	}
	p := keys[0].k.proj
	for _, k := range keys[1:] {
		if k.k.proj != p {
			panic("cannot sort Keys from different Projections")
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return less(p.cols, keys[i].k.vals, keys[j].k.vals)
	})
}
