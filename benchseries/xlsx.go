// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
)

// An XLSXSink collects figures into a workbook with one sheet per
// figure. The workbook is written by Close.
type XLSXSink struct {
	Path string

	// Raw adds a column of unnormalized values after each series.
	Raw bool

	file   *excelize.File
	sheets map[string]bool
}

// NewXLSXSink returns an XLSXSink that writes to path.
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{Path: path, file: excelize.NewFile(), sheets: make(map[string]bool)}
}

func (s *XLSXSink) Render(f *Figure) error {
	if err := f.Validate(); err != nil {
		return err
	}
	name := sheetName(f.Name)
	if s.sheets[name] {
		return fmt.Errorf("figure %s: workbook already has a sheet %q", f.Name, name)
	}
	if _, err := s.file.NewSheet(name); err != nil {
		return fmt.Errorf("figure %s: %w", f.Name, err)
	}
	s.sheets[name] = true

	set := func(col, row int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return s.file.SetCellValue(name, cell, v)
	}
	sh := f.Sheet(s.Raw)
	for j, h := range sh.Header {
		if err := set(j+1, 1, h); err != nil {
			return err
		}
	}
	for i, r := range sh.Rows {
		if err := set(1, i+2, r.Name); err != nil {
			return err
		}
		for j, v := range r.Cells {
			if math.IsNaN(v) {
				continue
			}
			if err := set(j+2, i+2, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close writes the workbook to s.Path and releases it. A sink that
// rendered no figures writes nothing.
func (s *XLSXSink) Close() error {
	if len(s.sheets) == 0 {
		return s.file.Close()
	}
	var err error
	if !s.sheets["Sheet1"] {
		err = s.file.DeleteSheet("Sheet1")
	}
	if err == nil {
		if err = s.file.SaveAs(s.Path); err != nil {
			err = fmt.Errorf("writing %s: %w", s.Path, err)
		}
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Empty reports whether s has no figures to write.
func (s *XLSXSink) Empty() bool {
	return len(s.sheets) == 0
}

// sheetName returns name shortened to the 31 characters a sheet name
// may have, with the characters Excel forbids replaced.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
