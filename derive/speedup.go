// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"sort"

	"golang.org/x/microperf/benchmath"
	"golang.org/x/microperf/record"
)

// Variants compared by Speedup.
const (
	Scalar = "scalar"
	SIMD   = "simd"
)

// A SpeedupPoint is the SIMD speedup of one kernel at one problem
// size.
type SpeedupPoint struct {
	N float64

	// ScalarMs and SIMDMs are the median run times of each variant.
	ScalarMs, SIMDMs float64

	// Speedup is ScalarMs / SIMDMs. It is Missing if the SIMD median
	// is zero.
	Speedup record.Num

	// ScalarCI and SIMDCI are the 95% confidence intervals of the
	// mean run time of each variant.
	ScalarCI, SIMDCI benchmath.Summary

	// Comparison tests whether the two variants' times differ. It is
	// nil unless both variants have at least two runs.
	Comparison *benchmath.Comparison
}

// Speedup returns the SIMD speedup of kernel over elements of dtype at
// each problem size, sorted by size. Sizes at which either the scalar
// or the SIMD variant was not measured are skipped. Runs without a
// valid size or time are ignored.
func Speedup(recs []record.Kernel, kernel, dtype string) []SpeedupPoint {
	type times struct{ scalar, simd []float64 }
	byN := make(map[float64]*times)
	for _, k := range recs {
		if k.Kernel != kernel || k.DType != dtype || !k.N.Valid || !k.TimeMs.Valid {
			continue
		}
		t := byN[k.N.Value]
		if t == nil {
			t = new(times)
			byN[k.N.Value] = t
		}
		switch k.Variant {
		case Scalar:
			t.scalar = append(t.scalar, k.TimeMs.Value)
		case SIMD:
			t.simd = append(t.simd, k.TimeMs.Value)
		}
	}

	var pts []SpeedupPoint
	for n, t := range byN {
		if len(t.scalar) == 0 || len(t.simd) == 0 {
			continue
		}
		s1 := benchmath.NewSample(t.scalar, &benchmath.DefaultThresholds)
		s2 := benchmath.NewSample(t.simd, &benchmath.DefaultThresholds)
		pt := SpeedupPoint{N: n, ScalarMs: s1.Median(), SIMDMs: s2.Median()}
		pt.Speedup = record.Some(pt.ScalarMs).Div(record.Some(pt.SIMDMs))
		pt.ScalarCI = benchmath.AssumeNormal.Summary(s1, 0.95)
		pt.SIMDCI = benchmath.AssumeNormal.Summary(s2, 0.95)
		if s1.Count() >= 2 && s2.Count() >= 2 {
			c := benchmath.AssumeNormal.Compare(s1, s2)
			pt.Comparison = &c
		}
		pts = append(pts, pt)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].N < pts[j].N })
	return pts
}

// A Config identifies one measured kernel configuration.
type Config struct {
	Kernel, DType, Variant string
}

// Configs returns the distinct configurations in recs, sorted.
func Configs(recs []record.Kernel) []Config {
	seen := make(map[Config]bool)
	var out []Config
	for _, k := range recs {
		c := Config{k.Kernel, k.DType, k.Variant}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kernel != b.Kernel {
			return a.Kernel < b.Kernel
		}
		if a.DType != b.DType {
			return a.DType < b.DType
		}
		return a.Variant < b.Variant
	})
	return out
}

// A SeriesPoint is the median of a metric at one problem size.
type SeriesPoint struct {
	N      float64
	Median float64
	Count  int
}

// MedianSeries returns the median of metric at each problem size over
// the runs of c, sorted by size. Runs where metric is Missing do not
// contribute, and sizes with no valid runs are omitted.
func MedianSeries(recs []record.Kernel, c Config, metric func(record.Kernel) record.Num) []SeriesPoint {
	byN := make(map[float64][]float64)
	for _, k := range recs {
		if (Config{k.Kernel, k.DType, k.Variant}) != c || !k.N.Valid {
			continue
		}
		if v := metric(k); v.Valid {
			byN[k.N.Value] = append(byN[k.N.Value], v.Value)
		}
	}
	pts := make([]SeriesPoint, 0, len(byN))
	for n, vs := range byN {
		st := benchmath.Summarize(vs)
		pts = append(pts, SeriesPoint{N: n, Median: st.Median, Count: st.Count})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].N < pts[j].N })
	return pts
}

// GFLOPsSeries returns the median reported GFLOP/s of c by size.
func GFLOPsSeries(recs []record.Kernel, c Config) []SeriesPoint {
	return MedianSeries(recs, c, func(k record.Kernel) record.Num { return k.GFLOPs })
}

// CPESeries returns the median cycles per element of c by size. Only
// runs that measured cycles per element contribute.
func CPESeries(recs []record.Kernel, c Config) []SeriesPoint {
	return MedianSeries(recs, c, func(k record.Kernel) record.Num { return k.CPE })
}
