// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fio

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/microperf/record"
)

// A PercentileEntry is one entry of a latency percentile table, such
// as fio's clat_ns.percentile object.
type PercentileEntry struct {
	// Label is the percentile as written by the producer, such as
	// "99.000000".
	Label string
	Value float64
}

// Percentiles is a latency percentile table in input order.
type Percentiles []PercentileEntry

// DefaultTolerance is the absolute tolerance used to match percentile
// labels against a requested percentile.
const DefaultTolerance = 1e-6

// An Extractor looks up percentiles by numeric closeness, since
// producers format labels inconsistently ("99.000000", "99", "99.0").
//
// The zero Extractor uses DefaultTolerance.
type Extractor struct {
	// Tolerance is the absolute difference below which a label
	// matches the requested percentile.
	Tolerance float64
}

func (e Extractor) tolerance() float64 {
	if e.Tolerance > 0 {
		return e.Tolerance
	}
	return DefaultTolerance
}

// Extract returns the value whose label is within e's tolerance of
// target. If several labels match, the first in input order wins.
// Labels that are not numbers are skipped. The result is Missing if no
// label matches.
func (e Extractor) Extract(p Percentiles, target float64) record.Num {
	tol := e.tolerance()
	for _, ent := range p {
		k, err := strconv.ParseFloat(strings.TrimSpace(ent.Label), 64)
		if err != nil {
			continue
		}
		if math.Abs(k-target) < tol {
			return record.Some(ent.Value)
		}
	}
	return record.Missing
}

// Extract is shorthand for the zero Extractor's Extract.
func Extract(p Percentiles, target float64) record.Num {
	return Extractor{}.Extract(p, target)
}

// Lookup returns the value of percentile target using
// DefaultTolerance and whether it was found.
func (p Percentiles) Lookup(target float64) (float64, bool) {
	n := Extract(p, target)
	return n.Value, n.Valid
}
