// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aggregate

import "golang.org/x/microperf/record"

// A Cond is a predicate over normalized records.
type Cond func(record.Fields) bool

// Eq matches records whose field equals v. Numbers and categories
// never compare equal.
func Eq(field string, v record.Value) Cond {
	return func(f record.Fields) bool {
		got, ok := f[field]
		return ok && got.Valid() && got.IsNum == v.IsNum && record.Compare(got, v) == 0
	}
}

// EqNum is shorthand for Eq with a numeric value.
func EqNum(field string, x float64) Cond {
	return Eq(field, record.NumValue(record.Some(x)))
}

// EqStr is shorthand for Eq with a categorical value.
func EqStr(field, s string) Cond {
	return Eq(field, record.StrValue(s))
}

// Any matches records that match at least one of conds.
func Any(conds ...Cond) Cond {
	return func(f record.Fields) bool {
		for _, c := range conds {
			if c(f) {
				return true
			}
		}
		return false
	}
}

// Filter returns the rows matching all conds. If no row matches, it
// returns record.ErrEmpty, which callers that need data should treat
// as fatal.
func Filter(rows []record.Fields, conds ...Cond) ([]record.Fields, error) {
	var out []record.Fields
next:
	for _, r := range rows {
		for _, c := range conds {
			if !c(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, record.ErrEmpty
	}
	return out, nil
}
