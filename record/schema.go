// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package record

import (
	"errors"

	"golang.org/x/microperf/benchfmt"
)

// Numeric fields of each record schema.
var (
	// KernelNumeric lists the numeric fields of SIMD kernel results.
	KernelNumeric = []string{"N", "time_ms", "gflops", "cpe"}

	// SweepNumeric lists the numeric fields of memory sweep runs.
	SweepNumeric = []string{"N_bytes", "stride", "repeats", "read_pct", "threads", "time", "GiB/s"}

	// CacheNumeric lists the numeric fields of cycle-counted cache
	// and TLB sweeps.
	CacheNumeric = []string{"ws_KiB", "stride", "pattern", "repeats", "cycles", "bytes"}
)

var errMissingField = errors.New("missing required field")

// kernelCategories are the categorical fields of the Kernel schema.
var kernelCategories = []string{"kernel", "variant", "dtype"}

// extraFields returns the fields of f not named in any of schema, or
// nil if there are none.
func extraFields(f Fields, schema ...[]string) Fields {
	known := make(map[string]bool)
	for _, names := range schema {
		for _, name := range names {
			known[name] = true
		}
	}
	var extra Fields
	for name, v := range f {
		if known[name] {
			continue
		}
		if extra == nil {
			extra = Fields{}
		}
		extra[name] = v
	}
	return extra
}

// withExtra returns a copy of extra to which a schema's own fields can
// be added.
func withExtra(extra Fields) Fields {
	if extra == nil {
		return Fields{}
	}
	return extra.Clone()
}

// Kernel is a single timed run of a SIMD kernel.
type Kernel struct {
	Kernel  string // saxpy, dot, mul or stencil3
	Variant string // scalar or simd
	DType   string // f32 or f64

	N      Num // elements
	TimeMs Num
	GFLOPs Num
	CPE    Num // cycles per element, if the driver measured it

	// Extra holds the fields outside the schema, such as ".file"
	// or a driver's misalign column.
	Extra Fields
}

// KernelFrom extracts a Kernel from normalized fields.
func KernelFrom(f Fields) Kernel {
	return Kernel{
		Kernel:  f.Str("kernel"),
		Variant: f.Str("variant"),
		DType:   f.Str("dtype"),
		N:       f.Num("N"),
		TimeMs:  f.Num("time_ms"),
		GFLOPs:  f.Num("gflops"),
		CPE:     f.Num("cpe"),
		Extra:   extraFields(f, kernelCategories, KernelNumeric),
	}
}

// Fields returns k in normalized field form.
func (k Kernel) Fields() Fields {
	f := withExtra(k.Extra)
	f.SetStr("kernel", k.Kernel)
	f.SetStr("variant", k.Variant)
	f.SetStr("dtype", k.DType)
	f.SetNum("N", k.N)
	f.SetNum("time_ms", k.TimeMs)
	f.SetNum("gflops", k.GFLOPs)
	f.SetNum("cpe", k.CPE)
	return f
}

// ParseKernel normalizes a raw kernel result. The categorical fields
// kernel, variant and dtype are required; a record lacking one is
// still returned, with a warning.
func ParseKernel(r *benchfmt.Record) (Kernel, []error) {
	f, warnings := NormalizeRecord(r, KernelNumeric)
	file, line := r.Pos()
	for _, name := range kernelCategories {
		if !f[name].Valid() {
			warnings = append(warnings, &FieldError{file, line, name, nil, errMissingField})
		}
	}
	return KernelFrom(f), warnings
}

// Sweep is one run of the memory microbenchmark sweeping working set,
// stride, read/write mix and thread count.
type Sweep struct {
	NBytes  Num
	Stride  Num
	Repeats Num
	ReadPct Num
	Threads Num
	Time    Num // seconds
	GiBps   Num // bandwidth reported by the driver

	Extra Fields // fields outside the schema
}

// SweepFrom extracts a Sweep from normalized fields.
func SweepFrom(f Fields) Sweep {
	return Sweep{
		NBytes:  f.Num("N_bytes"),
		Stride:  f.Num("stride"),
		Repeats: f.Num("repeats"),
		ReadPct: f.Num("read_pct"),
		Threads: f.Num("threads"),
		Time:    f.Num("time"),
		GiBps:   f.Num("GiB/s"),
		Extra:   extraFields(f, SweepNumeric),
	}
}

// Fields returns s in normalized field form.
func (s Sweep) Fields() Fields {
	f := withExtra(s.Extra)
	f.SetNum("N_bytes", s.NBytes)
	f.SetNum("stride", s.Stride)
	f.SetNum("repeats", s.Repeats)
	f.SetNum("read_pct", s.ReadPct)
	f.SetNum("threads", s.Threads)
	f.SetNum("time", s.Time)
	f.SetNum("GiB/s", s.GiBps)
	return f
}

// ParseSweep normalizes a raw sweep run.
func ParseSweep(r *benchfmt.Record) (Sweep, []error) {
	f, warnings := NormalizeRecord(r, SweepNumeric)
	return SweepFrom(f), warnings
}

// Cache is one cycle-counted pass over a working set, used for
// cache-hierarchy and TLB sweeps.
type Cache struct {
	WSKiB   Num
	Stride  Num
	Pattern Num
	Repeats Num
	Cycles  Num
	Bytes   Num

	Extra Fields // fields outside the schema
}

// CacheFrom extracts a Cache from normalized fields.
func CacheFrom(f Fields) Cache {
	return Cache{
		WSKiB:   f.Num("ws_KiB"),
		Stride:  f.Num("stride"),
		Pattern: f.Num("pattern"),
		Repeats: f.Num("repeats"),
		Cycles:  f.Num("cycles"),
		Bytes:   f.Num("bytes"),
		Extra:   extraFields(f, CacheNumeric),
	}
}

// Fields returns c in normalized field form.
func (c Cache) Fields() Fields {
	f := withExtra(c.Extra)
	f.SetNum("ws_KiB", c.WSKiB)
	f.SetNum("stride", c.Stride)
	f.SetNum("pattern", c.Pattern)
	f.SetNum("repeats", c.Repeats)
	f.SetNum("cycles", c.Cycles)
	f.SetNum("bytes", c.Bytes)
	return f
}

// ParseCache normalizes a raw cache sweep record.
func ParseCache(r *benchfmt.Record) (Cache, []error) {
	f, warnings := NormalizeRecord(r, CacheNumeric)
	return CacheFrom(f), warnings
}
