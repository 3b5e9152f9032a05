// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchschema

import "fmt"

// A SchemaError reports an invalid schema or an input that cannot be
// read under its schema. It is always fatal for the load in progress.
type SchemaError struct {
	Experiment string // may be ""
	File       string // may be ""
	Msg        string
	Err        error // underlying cause, may be nil
}

func (e *SchemaError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	switch {
	case e.File != "" && e.Experiment != "":
		return fmt.Sprintf("%s (%s): %s", e.File, e.Experiment, msg)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, msg)
	case e.Experiment != "":
		return fmt.Sprintf("schema %s: %s", e.Experiment, msg)
	}
	return "schema: " + msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// An UnknownExperimentError is returned when a Registry has no schema
// for the requested experiment.
type UnknownExperimentError struct {
	Name string
}

func (e *UnknownExperimentError) Error() string {
	return fmt.Sprintf("unknown experiment %q", e.Name)
}

// Is reports *SchemaError targets as matching, so callers can treat
// an unknown experiment as a schema failure.
func (e *UnknownExperimentError) Is(target error) bool {
	_, ok := target.(*SchemaError)
	return ok
}
