// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import "sync"

type tidyEntry struct {
	tidied string
	factor float64
}

var tidyCache sync.Map // unit string -> *tidyEntry

// timeUnits maps pre-scaled time tokens to seconds.
var timeUnits = map[string]float64{
	"ns": 1e-9,
	"us": 1e-6,
	"µs": 1e-6,
	"ms": 1e-3,
}

// flopUnits maps pre-scaled floating-point operation counts to FLOPs.
var flopUnits = map[string]float64{
	"MFLOP": 1e6,
	"GFLOP": 1e9,
	"TFLOP": 1e12,
}

// Tidy normalizes a value with a (possibly pre-scaled) unit into base
// units. Times become "sec", byte counts become "B" and operation
// counts become "FLOP", in the numerator only. For example, 4 in
// "GiB/s" is 4<<30 in "B/s", and 512 in "us" is 0.000512 in "sec".
// fio's "KiB/s" bandwidths and "ns" latencies tidy the same way.
func Tidy(value float64, unit string) (tidiedValue float64, tidiedUnit string) {
	newUnit, factor := tidyUnit(unit)
	return value * factor, newUnit
}

func tidyUnit(unit string) (tidied string, factor float64) {
	// Fast path for units that are already tidy.
	switch unit {
	case "", "B", "sec", "B/s", "FLOP/s":
		return unit, 1
	}
	if tc, ok := tidyCache.Load(unit); ok {
		tc := tc.(*tidyEntry)
		return tc.tidied, tc.factor
	}
	tidied, factor = tidyUnitUncached(unit)
	tidyCache.Store(unit, &tidyEntry{tidied, factor})
	return
}

func tidyUnitUncached(unit string) (tidied string, factor float64) {
	type edit struct {
		pos, len int
		replace  string
	}

	factor = 1
	p := newParser(unit)
	var edits []edit
	for p.next() {
		if p.denom {
			// Rates keep their denominator as written.
			continue
		}
		if f, ok := timeUnits[p.tok]; ok {
			edits = append(edits, edit{p.pos, len(p.tok), "sec"})
			factor *= f
		} else if f, ok := byteUnits[p.tok]; ok && p.tok != "B" {
			edits = append(edits, edit{p.pos, len(p.tok), "B"})
			factor *= f
		} else if f, ok := flopUnits[p.tok]; ok {
			edits = append(edits, edit{p.pos, len(p.tok), "FLOP"})
			factor *= f
		}
	}
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		unit = unit[:e.pos] + e.replace + unit[e.pos+e.len:]
	}
	return unit, factor
}
