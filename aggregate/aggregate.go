// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aggregate reduces repeated trials of a microbenchmark to
// summary statistics, grouping them by the tuple of experiment
// parameters that distinguish one configuration from another.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/microperf/benchmath"
	"golang.org/x/microperf/record"
)

// A Key is the tuple of group-by values shared by a group of records.
type Key struct {
	Names  []string
	Values []record.Value
}

// Get returns the value of group-by field name, or the zero Value if
// name is not part of k.
func (k Key) Get(name string) record.Value {
	for i, n := range k.Names {
		if n == name {
			return k.Values[i]
		}
	}
	return record.Value{}
}

// String returns k as a space-separated sequence of name:value pairs.
func (k Key) String() string {
	var buf strings.Builder
	for i, n := range k.Names {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(n)
		buf.WriteByte(':')
		buf.WriteString(k.Values[i].String())
	}
	return buf.String()
}

// compare orders keys lexicographically by value.
func (k Key) compare(o Key) int {
	for i := range k.Values {
		if c := record.Compare(k.Values[i], o.Values[i]); c != 0 {
			return c
		}
	}
	return 0
}

// A Summary holds the statistics of one target field within a group.
type Summary struct {
	Mean record.Num

	// StdDev is the sample standard deviation. It is Missing if
	// Count < 2, which is distinct from a measured spread of zero.
	StdDev record.Num

	Median record.Num

	// Count is the number of valid values. Missing values are not
	// counted.
	Count int
}

// A Stat is the aggregated result of one group.
type Stat struct {
	Key Key

	// N is the number of records in the group.
	N int

	// Values maps each target field to its summary.
	Values map[string]Summary
}

// A MissingFieldError reports a group-by field that no record has.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("group-by field %q is not present in any record", e.Field)
}

// Aggregate groups rows by exact equality of their groupBy fields and
// summarizes each target field within each group. Groups are returned
// sorted by key, comparing numbers numerically and categories
// lexically.
//
// A record is left out if any of its groupBy fields is missing, or if
// all of its target fields are missing. Missing target values are
// excluded from the statistics.
//
// Empty input yields no groups and no error. It is an error if rows is
// non-empty but some groupBy field is present in none of them.
func Aggregate(rows []record.Fields, groupBy, targets []string) ([]Stat, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	for _, name := range groupBy {
		found := false
		for _, r := range rows {
			if r[name].Valid() {
				found = true
				break
			}
		}
		if !found {
			return nil, &MissingFieldError{name}
		}
	}

	type group struct {
		key  Key
		n    int
		vals map[string][]float64
	}
	groups := make(map[string]*group)
	var order []*group
	var id strings.Builder
next:
	for _, r := range rows {
		vals := make([]record.Value, len(groupBy))
		id.Reset()
		for i, name := range groupBy {
			v := r[name]
			if !v.Valid() {
				continue next
			}
			vals[i] = v
			writeID(&id, v)
		}
		hasTarget := false
		for _, t := range targets {
			if r.Num(t).Valid {
				hasTarget = true
				break
			}
		}
		if !hasTarget {
			continue
		}

		g := groups[id.String()]
		if g == nil {
			g = &group{key: Key{groupBy, vals}, vals: make(map[string][]float64)}
			groups[id.String()] = g
			order = append(order, g)
		}
		g.n++
		for _, t := range targets {
			if n := r.Num(t); n.Valid {
				g.vals[t] = append(g.vals[t], n.Value)
			}
		}
	}

	stats := make([]Stat, 0, len(order))
	for _, g := range order {
		st := Stat{Key: g.key, N: g.n, Values: make(map[string]Summary, len(targets))}
		for _, t := range targets {
			st.Values[t] = summarize(g.vals[t])
		}
		stats = append(stats, st)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Key.compare(stats[j].Key) < 0
	})
	return stats, nil
}

// writeID writes an encoding of v to b that distinguishes numbers from
// categories, so that 16 and "16" fall in different groups.
func writeID(b *strings.Builder, v record.Value) {
	if v.IsNum {
		b.WriteString("n")
		b.WriteString(strconv.FormatFloat(v.Num.Value, 'g', -1, 64))
	} else {
		b.WriteString("s")
		b.WriteString(strconv.Quote(v.Str))
	}
	b.WriteByte(0)
}

func summarize(xs []float64) Summary {
	st := benchmath.Summarize(xs)
	return Summary{
		Mean:   record.Some(st.Mean),
		StdDev: record.Some(st.StdDev),
		Median: record.Some(st.Median),
		Count:  st.Count,
	}
}
