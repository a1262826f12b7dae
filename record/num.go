// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package record defines the normalized form of microbenchmark
// records and converts raw records into it.
//
// Normalization happens once, at this boundary: every field a schema
// declares numeric becomes a Num, which is either a finite number or
// explicitly missing. Later stages never see residual "label=" strings
// and never substitute zero for a value they could not compute.
package record

import (
	"errors"
	"math"
	"strconv"
)

// A Num is a numeric field value that may be missing. The zero Num is
// missing.
//
// Missing values arise from unparseable input, absent fields,
// undefined derived quantities (such as a rate over zero time), absent
// percentiles and undefined statistics. Consumers exclude missing
// values from aggregation rather than treating them as zero.
type Num struct {
	Value float64
	Valid bool // Valid is true if Value is a finite number
}

// Missing is the missing Num.
var Missing = Num{}

// Some returns a valid Num holding v, or Missing if v is NaN or
// infinite.
func Some(v float64) Num {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Num{v, true}
}

// Float returns n's value, or NaN if n is missing.
func (n Num) Float() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

// Int returns n's value truncated to an integer and whether n is
// valid and integral.
func (n Num) Int() (int64, bool) {
	if !n.Valid || n.Value != math.Trunc(n.Value) {
		return 0, false
	}
	return int64(n.Value), true
}

// Or returns n's value, or def if n is missing.
func (n Num) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// String returns the shortest representation of n, or "" if n is
// missing.
func (n Num) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Div returns n/d, or Missing if either is missing or d is zero.
func (n Num) Div(d Num) Num {
	if !n.Valid || !d.Valid || d.Value == 0 {
		return Missing
	}
	return Some(n.Value / d.Value)
}

// Scale returns n*f, or Missing if n is missing.
func (n Num) Scale(f float64) Num {
	if !n.Valid {
		return Missing
	}
	return Some(n.Value * f)
}

// ErrEmpty is returned when filtering or grouping leaves no records
// where at least one was required.
var ErrEmpty = errors.New("no matching records")
