// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"encoding/csv"
	"io"
)

// A CSVSink writes the spreadsheet view of each figure to W. Figures
// are separated by an empty line.
type CSVSink struct {
	W io.Writer

	// Raw adds a column of unnormalized values after each series.
	Raw bool

	n int
}

func (s *CSVSink) Render(f *Figure) error {
	if err := f.Validate(); err != nil {
		return err
	}
	sh := f.Sheet(s.Raw)
	tab := make([][]string, 0, 1+len(sh.Rows))
	if s.n > 0 {
		tab = append(tab, []string{})
	}
	s.n++
	tab = append(tab, sh.Header)
	for _, r := range sh.Rows {
		row := []string{r.Name}
		for _, v := range r.Cells {
			row = append(row, strof(v))
		}
		tab = append(tab, row)
	}
	csvw := csv.NewWriter(s.W)
	return csvw.WriteAll(tab)
}
