// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"golang.org/x/microperf/record"
)

func near(x, y float64) bool {
	return math.Abs(x-y) <= 1e-9*math.Max(1, math.Abs(y))
}

func TestArithmeticIntensity(t *testing.T) {
	check := func(kernel string, want32 float64) {
		t.Helper()
		ai32, err := ArithmeticIntensity(kernel, F32)
		if err != nil {
			t.Fatal(err)
		}
		ai64, err := ArithmeticIntensity(kernel, F64)
		if err != nil {
			t.Fatal(err)
		}
		if !near(ai32, want32) {
			t.Errorf("%s f32: got %v, want %v", kernel, ai32, want32)
		}
		if ai32 <= 0 || ai64 <= 0 {
			t.Errorf("%s: non-positive intensity %v %v", kernel, ai32, ai64)
		}
		if ai64 != ai32/2 {
			t.Errorf("%s: f64 intensity %v is not half of f32 %v", kernel, ai64, ai32)
		}
		if again, _ := ArithmeticIntensity(kernel, F32); again != ai32 {
			t.Errorf("%s: unstable intensity %v != %v", kernel, again, ai32)
		}
	}
	check("saxpy", 2.0/12)
	check("dot", 2.0/8)
	check("mul", 1.0/12)
	check("stencil3", 5.0/16)

	_, err := ArithmeticIntensity("triad", F32)
	var uk *UnknownKernelError
	if !errors.As(err, &uk) || uk.Kernel != "triad" {
		t.Errorf("got error %v, want UnknownKernelError", err)
	}
	if _, err := ArithmeticIntensity("dot", DType(2)); err == nil {
		t.Errorf("expected error for 2-byte elements")
	}
	if got := Kernels(); !reflect.DeepEqual(got, []string{"dot", "mul", "saxpy", "stencil3"}) {
		t.Errorf("Kernels() = %v", got)
	}
}

func TestParseDType(t *testing.T) {
	for _, s := range []string{"f32", "f64"} {
		d, err := ParseDType(s)
		if err != nil || d.String() != s {
			t.Errorf("ParseDType(%q) = %v, %v", s, d, err)
		}
	}
	if _, err := ParseDType("bf16"); err == nil {
		t.Errorf("ParseDType(bf16) succeeded")
	}
}

func TestThroughputRoundTrip(t *testing.T) {
	clk := DefaultClock
	for _, c := range []record.Cache{
		{Cycles: record.Some(3e6), Bytes: record.Some(1 << 20)},
		{Cycles: record.Some(123456789), Bytes: record.Some(64 << 20)},
		{Cycles: record.Some(17), Bytes: record.Some(3)},
	} {
		m := Cache(c, clk)
		back := m.ThroughputGiBps.Value * m.TimeS.Value * GiB
		if !m.ThroughputGiBps.Valid || !near(back, c.Bytes.Value) {
			t.Errorf("%+v: throughput %v round-trips to %v bytes", c, m.ThroughputGiBps, back)
		}
		if !near(m.NsPerByte.Value, m.TimeS.Value/c.Bytes.Value*1e9) {
			t.Errorf("%+v: ns/byte = %v", c, m.NsPerByte)
		}
	}

	m := Cache(record.Cache{Cycles: record.Some(3e9), Bytes: record.Some(GiB)}, clk)
	if m.TimeS != record.Some(1) || m.ThroughputGiBps != record.Some(1) || m.NsPerByte != record.Some(1.0/GiB*1e9) {
		t.Errorf("got %+v", m)
	}
}

func TestUndefinedRates(t *testing.T) {
	check := func(name string, got record.Num) {
		t.Helper()
		if got.Valid {
			t.Errorf("%s = %v, want missing", name, got)
		}
	}
	zero, one := record.Some(0), record.Some(1)
	check("throughput zero time", Throughput(one, zero))
	check("throughput zero bytes", Throughput(zero, one))
	check("throughput missing", Throughput(record.Missing, one))
	check("ns/byte zero time", NsPerByte(one, zero))
	check("ns/byte zero bytes", NsPerByte(zero, one))
	check("ns/byte missing", NsPerByte(one, record.Missing))
	check("zero clock", Clock{}.Seconds(one))

	m := Cache(record.Cache{Cycles: zero, Bytes: one}, DefaultClock)
	if m.TimeS != zero {
		t.Errorf("zero cycles time = %v, want 0", m.TimeS)
	}
	check("zero cycles throughput", m.ThroughputGiBps)

	f := record.Fields{}
	m.Apply(f)
	if _, ok := f[FieldThroughput]; ok {
		t.Errorf("Apply wrote missing throughput")
	}
	if f.Num(FieldTimeS) != zero {
		t.Errorf("Apply time_s = %v", f.Num(FieldTimeS))
	}
}

func TestKernelMetrics(t *testing.T) {
	k := record.Kernel{
		Kernel: "saxpy", Variant: SIMD, DType: "f32",
		N: record.Some(1 << 20), TimeMs: record.Some(0.5),
	}
	m, err := Kernel(k)
	if err != nil {
		t.Fatal(err)
	}
	// 2 FLOPs per element over 2^20 elements in 0.5ms.
	if want := 2.0 * (1 << 20) / 0.5e-3 / 1e9; !near(m.GFLOPs.Value, want) {
		t.Errorf("GFLOPs = %v, want %v", m.GFLOPs, want)
	}
	if !near(m.AI.Value, 2.0/12) {
		t.Errorf("AI = %v", m.AI)
	}
	if want := 12.0 * (1 << 20) / 0.5e-3 / GiB; !near(m.ThroughputGiBps.Value, want) {
		t.Errorf("throughput = %v, want %v", m.ThroughputGiBps, want)
	}
	if g, _ := GFLOPs("saxpy", k.N, m.TimeS); g != m.GFLOPs {
		t.Errorf("GFLOPs() = %v, want %v", g, m.GFLOPs)
	}

	k.Kernel = "triad"
	if _, err := Kernel(k); err == nil {
		t.Errorf("expected unknown kernel error")
	}
}

func run(variant string, n, ms float64) record.Kernel {
	return record.Kernel{Kernel: "dot", Variant: variant, DType: "f64", N: record.Some(n), TimeMs: record.Some(ms)}
}

func TestSpeedup(t *testing.T) {
	recs := []record.Kernel{
		run(Scalar, 4096, 8), run(Scalar, 4096, 10), run(Scalar, 4096, 9),
		run(SIMD, 4096, 2), run(SIMD, 4096, 3), run(SIMD, 4096, 2.5),
		run(Scalar, 1024, 4), run(SIMD, 1024, 1),
		// Only one variant at this size.
		run(Scalar, 16384, 40),
		// Other dtype and bad times are ignored.
		{Kernel: "dot", Variant: SIMD, DType: "f32", N: record.Some(16384), TimeMs: record.Some(1)},
		{Kernel: "dot", Variant: SIMD, DType: "f64", N: record.Some(16384), TimeMs: record.Missing},
	}
	pts := Speedup(recs, "dot", "f64")
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2: %+v", len(pts), pts)
	}
	if pts[0].N != 1024 || pts[0].Speedup != record.Some(4) || pts[0].Comparison != nil {
		t.Errorf("point 0 = %+v", pts[0])
	}
	if pts[1].N != 4096 || pts[1].ScalarMs != 9 || pts[1].SIMDMs != 2.5 || pts[1].Speedup != record.Some(3.6) {
		t.Errorf("point 1 = %+v", pts[1])
	}
	if ci := pts[0].SIMDCI; ci.PctRangeString() != "∞" {
		t.Errorf("single-run interval = %+v", ci)
	}
	if ci := pts[1].SIMDCI; ci.Center != 2.5 || !(ci.Lo < 2.5 && ci.Hi > 2.5) {
		t.Errorf("point 1 SIMD interval = %+v", ci)
	}
	if c := pts[1].Comparison; c == nil || !c.Significant() {
		t.Errorf("point 1 comparison = %+v, want significant", c)
	}

	if pts := Speedup(recs, "mul", "f64"); len(pts) != 0 {
		t.Errorf("got %v for unmeasured kernel", pts)
	}
}

func TestSeries(t *testing.T) {
	cpe := func(n, v float64, ok bool) record.Kernel {
		k := run(SIMD, n, 1)
		k.GFLOPs = record.Some(v * 10)
		if ok {
			k.CPE = record.Some(v)
		}
		return k
	}
	recs := []record.Kernel{
		cpe(64, 1, true), cpe(64, 3, true), cpe(64, 100, false),
		cpe(32, 2, false),
		run(Scalar, 64, 5),
	}
	c := Config{"dot", "f64", SIMD}
	got := CPESeries(recs, c)
	want := []SeriesPoint{{N: 64, Median: 2, Count: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CPESeries = %+v, want %+v", got, want)
	}
	got = GFLOPsSeries(recs, c)
	want = []SeriesPoint{{N: 32, Median: 20, Count: 1}, {N: 64, Median: 30, Count: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GFLOPsSeries = %+v, want %+v", got, want)
	}

	cfgs := Configs(recs)
	if want := []Config{{"dot", "f64", Scalar}, {"dot", "f64", SIMD}}; !reflect.DeepEqual(cfgs, want) {
		t.Errorf("Configs = %v, want %v", cfgs, want)
	}
}
