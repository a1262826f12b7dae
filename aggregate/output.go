// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aggregate

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"

	"golang.org/x/microperf/record"
)

// Header returns the column names written by WriteCSV: the group-by
// fields, then mean_<t> and std_<t> for each target t, then count.
// The count is that of the first target, as returned by Count.
func Header(groupBy, targets []string) []string {
	h := append([]string(nil), groupBy...)
	for _, t := range targets {
		h = append(h, "mean_"+t, "std_"+t)
	}
	return append(h, "count")
}

// Row returns the cells of st in Header order. Missing values are
// empty cells.
func (st *Stat) Row(targets []string) []string {
	row := make([]string, 0, len(st.Key.Values)+2*len(targets)+1)
	for _, v := range st.Key.Values {
		row = append(row, v.String())
	}
	for _, t := range targets {
		s := st.Values[t]
		row = append(row, s.Mean.String(), s.StdDev.String())
	}
	return append(row, strconv.Itoa(st.Count(targets)))
}

// Count returns the number of valid values of the first target, or the
// number of records in the group if there are no targets. A group's
// first target may be missing from some of its records.
func (st *Stat) Count(targets []string) int {
	if len(targets) == 0 {
		return st.N
	}
	return st.Values[targets[0]].Count
}

// WriteCSV writes stats to w as CSV with a Header row.
func WriteCSV(w io.Writer, stats []Stat, groupBy, targets []string) error {
	cw := csv.NewWriter(w)
	cw.Write(Header(groupBy, targets))
	for i := range stats {
		cw.Write(stats[i].Row(targets))
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes stats to w as a JSON array with one object per
// group, using the same field names as WriteCSV. Missing values are
// null.
func WriteJSON(w io.Writer, stats []Stat, groupBy, targets []string) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range stats {
		obj, err := stats[i].json(targets)
		if err != nil {
			return err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(obj)
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func (st *Stat) json(targets []string) ([]byte, error) {
	obj := []byte("{}")
	var err error
	set := func(name string, v any) {
		if err == nil {
			obj, err = sjson.SetBytes(obj, escapePath(name), v)
		}
	}
	num := func(n record.Num) any {
		if !n.Valid {
			return nil
		}
		return n.Value
	}
	for i, name := range st.Key.Names {
		v := st.Key.Values[i]
		if v.IsNum {
			set(name, num(v.Num))
		} else {
			set(name, v.Str)
		}
	}
	for _, t := range targets {
		s := st.Values[t]
		set("mean_"+t, num(s.Mean))
		set("std_"+t, num(s.StdDev))
	}
	set("count", st.Count(targets))
	return obj, err
}

// escapePath quotes the characters sjson treats as path syntax, so
// field names like "lat_p99.9_us" are set literally.
func escapePath(name string) string {
	if !strings.ContainsAny(name, `.*?\`) {
		return name
	}
	var b strings.Builder
	for _, c := range name {
		if strings.ContainsRune(`.*?\`, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
