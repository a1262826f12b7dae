// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mdtab

import (
	"bytes"
	"testing"
)

func TestFormat(t *testing.T) {
	check := func(tab *Table, want string) {
		t.Helper()
		var buf bytes.Buffer
		tab.Format(&buf)
		if got := buf.String(); got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	}

	check(New("kernel", "GFLOP/s").Right("GFLOP/s").
		Row("saxpy", "2.5").
		Row("stencil3", "11.25"),
		`| kernel   | GFLOP/s |
|----------|--------:|
| saxpy    |     2.5 |
| stencil3 |   11.25 |
`)

	// Short columns are padded to fit the alignment row, short
	// rows are padded with blanks and pipes are escaped.
	check(New("a", "b").Row("x|y").Row(),
		`| a    | b   |
|------|-----|
| x\|y |     |
`+"|      |     |\n")
}

func TestLen(t *testing.T) {
	tab := New("x")
	if tab.Len() != 0 {
		t.Errorf("new table has %d rows", tab.Len())
	}
	tab.Row("1").Row("2", "extra")
	if tab.Len() != 2 {
		t.Errorf("got %d rows, want 2", tab.Len())
	}
}
