// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mdtab lays out Markdown tables for reports.
package mdtab

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// A Table is a Markdown table under construction.
type Table struct {
	header []string
	right  []bool
	rows   [][]string
}

// New returns a table with the given column headings.
func New(header ...string) *Table {
	return &Table{header: header, right: make([]bool, len(header))}
}

// Right right-aligns the named columns. Unknown names are ignored.
func (t *Table) Right(cols ...string) *Table {
	for _, c := range cols {
		for i, h := range t.header {
			if h == c {
				t.right[i] = true
			}
		}
	}
	return t
}

// Row appends a row. Missing trailing cells are left blank and extra
// cells are dropped.
func (t *Table) Row(cells ...string) *Table {
	row := make([]string, len(t.header))
	copy(row, cells)
	for i, c := range row {
		// A bare | would split the cell.
		row[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	t.rows = append(t.rows, row)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Format appends the table to buf.
func (t *Table) Format(buf *bytes.Buffer) {
	max := make([]int, len(t.header))
	for i, h := range t.header {
		max[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, s := range row {
			if n := utf8.RuneCountInString(s); max[i] < n {
				max[i] = n
			}
		}
	}
	for i := range max {
		// The alignment row needs room for "--:".
		if max[i] < 3 {
			max[i] = 3
		}
	}

	line := func(cols []string, right []bool) {
		buf.WriteString("|")
		for i, s := range cols {
			pad := max[i] - utf8.RuneCountInString(s)
			if right != nil && right[i] {
				fmt.Fprintf(buf, " %s%s |", strings.Repeat(" ", pad), s)
			} else {
				fmt.Fprintf(buf, " %s%s |", s, strings.Repeat(" ", pad))
			}
		}
		buf.WriteString("\n")
	}

	line(t.header, nil)
	buf.WriteString("|")
	for i := range t.header {
		if t.right[i] {
			fmt.Fprintf(buf, "%s:|", strings.Repeat("-", max[i]+1))
		} else {
			fmt.Fprintf(buf, "%s|", strings.Repeat("-", max[i]+2))
		}
	}
	buf.WriteString("\n")
	for _, row := range t.rows {
		line(row, t.right)
	}
}

// WriteTo writes the table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	t.Format(&buf)
	return buf.WriteTo(w)
}
