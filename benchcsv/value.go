// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcsv

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/fpbench/benchschema"
)

// A Value is one typed field of a Row.
type Value struct {
	kind benchschema.Kind
	i    int64
	f    float64
	s    string
}

// IntValue returns an Int Value.
func IntValue(v int64) Value { return Value{kind: benchschema.Int, i: v} }

// FloatValue returns a Float Value.
func FloatValue(v float64) Value { return Value{kind: benchschema.Float, f: v} }

// StringValue returns a String Value.
func StringValue(v string) Value { return Value{kind: benchschema.String, s: v} }

// Kind returns the kind of v.
func (v Value) Kind() benchschema.Kind { return v.kind }

// Int returns the value of an Int Value.
func (v Value) Int() int64 { return v.i }

// Float returns v as a float64. ok is false for String values.
func (v Value) Float() (f float64, ok bool) {
	switch v.kind {
	case benchschema.Int:
		return float64(v.i), true
	case benchschema.Float:
		return v.f, true
	}
	return math.NaN(), false
}

// String formats v. Int values format in base 10 and Float values in
// the shortest representation that round-trips.
func (v Value) String() string {
	switch v.kind {
	case benchschema.Int:
		return strconv.FormatInt(v.i, 10)
	case benchschema.Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return v.s
}

// parseValue coerces field to kind.
func parseValue(kind benchschema.Kind, field string) (Value, error) {
	field = strings.TrimSpace(field)
	switch kind {
	case benchschema.Int:
		if i, err := strconv.ParseInt(field, 10, 64); err == nil {
			return IntValue(i), nil
		}
		// Drivers that print through a double stream write
		// integers as "100.0" or "1e+06".
		f, err := strconv.ParseFloat(field, 64)
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
			return Value{}, fmt.Errorf("cannot parse %q as int", field)
		}
		return IntValue(int64(f)), nil
	case benchschema.Float:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as float", field)
		}
		return FloatValue(f), nil
	case benchschema.String:
		return StringValue(field), nil
	}
	return Value{}, fmt.Errorf("unknown kind %v", kind)
}
