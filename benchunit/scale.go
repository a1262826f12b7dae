// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"fmt"
	"math"
	"strconv"
)

// A Scaler represents a scaling factor for a number and
// its scientific representation.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Unscaled value of 1 Prefix (e.g., 1 Ki => 1024)
	Prefix string  // Unit prefix ("k", "Gi", "µ", etc)
}

// Format formats val and appends the unit prefix according to the
// given scale. Values should be tidied first (see Tidy), otherwise
// a value in "ns" scaled by "k" would read as kilo-nanoseconds.
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	buf = append(buf, s.Prefix...)
	return string(buf)
}

// NoOpScaler formats numbers with the fewest digits that represent
// the exact value and no prefix. It is used for machine-readable
// output such as CSV.
var NoOpScaler = Scaler{-1, 1, ""}

type prefix struct {
	factor float64
	name   string
}

var siPrefixes = []prefix{
	{1e12, "T"}, {1e9, "G"}, {1e6, "M"}, {1e3, "k"},
	{1, ""}, {1e-3, "m"}, {1e-6, "µ"}, {1e-9, "n"},
}

// IEC prefixes have no fractional forms, so binary values below 1
// are printed with more digits instead.
var iecPrefixes = []prefix{
	{1 << 40, "Ti"}, {1 << 30, "Gi"}, {1 << 20, "Mi"}, {1 << 10, "Ki"},
	{1, ""},
}

// Scale formats val using at least three significant digits,
// appending an SI or binary prefix. See Scaler.Format for details.
func Scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

// CommonScale returns a common Scaler to apply to all values in vals
// so that every value shows at least three significant digits.
func CommonScale(vals []float64, cls Class) Scaler {
	// The common scale is determined by the non-zero,
	// finite value closest to zero.
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && !math.IsInf(v, 0) && !math.IsNaN(v) && (min == 0 || v < min) {
			min = v
		}
	}
	if min == 0 {
		return Scaler{0, 1, ""}
	}

	var prefixes []prefix
	switch cls {
	default:
		panic(fmt.Sprintf("bad Class %v", cls))
	case Decimal:
		prefixes = siPrefixes
	case Binary:
		prefixes = iecPrefixes
	}

	for _, p := range prefixes {
		if min < p.factor {
			continue
		}
		scaled := min / p.factor
		switch {
		case scaled < 10:
			return Scaler{2, p.factor, p.name}
		case scaled < 100:
			return Scaler{1, p.factor, p.name}
		}
		return Scaler{0, p.factor, p.name}
	}

	// Smaller than the smallest prefix. Add digits until three
	// are significant.
	last := prefixes[len(prefixes)-1]
	prec := 2
	for scaled := min / last.factor; scaled < 1 && prec < 10; scaled *= 10 {
		prec++
	}
	return Scaler{prec, last.factor, last.name}
}
