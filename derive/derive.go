// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package derive computes physical quantities from normalized
// microbenchmark records: elapsed time, throughput, latency per byte,
// arithmetic intensity, GFLOP/s and SIMD speedup.
//
// Quantities that are undefined for a record, such as a rate over zero
// elapsed time, are returned as record.Missing rather than as zero or
// an error, so a single bad record never aborts a batch.
package derive

import (
	"fmt"

	"golang.org/x/microperf/record"
)

// GiB is the number of bytes in a gibibyte.
const GiB = 1 << 30

// A Clock converts cycle counts to elapsed time. Records from the
// cycle-counted sweeps carry only cycle counts, so the frequency must
// be supplied by the caller.
type Clock struct {
	GHz float64
}

// DefaultClock is the nominal frequency assumed when the real one is
// unknown.
var DefaultClock = Clock{GHz: 3.0}

// Seconds returns the elapsed time of cycles at c's frequency, or
// Missing if cycles is missing or the frequency is not positive.
func (c Clock) Seconds(cycles record.Num) record.Num {
	if !(c.GHz > 0) {
		return record.Missing
	}
	return cycles.Div(record.Some(c.GHz * 1e9))
}

func (c Clock) String() string {
	return fmt.Sprintf("%gGHz", c.GHz)
}

// Throughput returns bytes/seconds in GiB/s. It is Missing if either
// input is missing or zero.
func Throughput(bytes, seconds record.Num) record.Num {
	if bytes.Valid && bytes.Value == 0 {
		return record.Missing
	}
	return bytes.Div(seconds).Scale(1.0 / GiB)
}

// NsPerByte returns the latency per byte in nanoseconds. It is Missing
// if either input is missing or zero.
func NsPerByte(bytes, seconds record.Num) record.Num {
	if seconds.Valid && seconds.Value == 0 {
		return record.Missing
	}
	return seconds.Div(bytes).Scale(1e9)
}

// Metrics are the quantities derived from a single record. Fields that
// do not apply to the record's kind are Missing.
type Metrics struct {
	TimeS           record.Num
	ThroughputGiBps record.Num
	NsPerByte       record.Num
	GFLOPs          record.Num
	AI              record.Num // FLOPs per byte
}

// Names of the fields written by Metrics.Apply.
const (
	FieldTimeS      = "time_s"
	FieldThroughput = "throughput_GiBps"
	FieldNsPerByte  = "ns_per_byte"
	FieldGFLOPs     = "gflops_derived"
	FieldAI         = "ai"
)

// Cache derives the time and throughput of a cycle-counted cache or
// TLB sweep record.
func Cache(c record.Cache, clk Clock) Metrics {
	t := clk.Seconds(c.Cycles)
	return Metrics{
		TimeS:           t,
		ThroughputGiBps: Throughput(c.Bytes, t),
		NsPerByte:       NsPerByte(c.Bytes, t),
	}
}

// Kernel derives the time, GFLOP/s, arithmetic intensity and memory
// traffic of a SIMD kernel run. It fails only if the kernel or data
// type is unknown.
func Kernel(k record.Kernel) (Metrics, error) {
	dt, err := ParseDType(k.DType)
	if err != nil {
		return Metrics{}, err
	}
	cost, err := lookup(k.Kernel)
	if err != nil {
		return Metrics{}, err
	}
	t := k.TimeMs.Scale(1e-3)
	bytes := k.N.Scale(cost.words * float64(dt))
	return Metrics{
		TimeS:           t,
		ThroughputGiBps: Throughput(bytes, t),
		NsPerByte:       NsPerByte(bytes, t),
		GFLOPs:          k.N.Scale(cost.flops).Div(t).Scale(1e-9),
		AI:              record.Some(cost.flops / (cost.words * float64(dt))),
	}, nil
}

// Apply adds the valid metrics in m to f.
func (m Metrics) Apply(f record.Fields) {
	set := func(name string, n record.Num) {
		if n.Valid {
			f.SetNum(name, n)
		}
	}
	set(FieldTimeS, m.TimeS)
	set(FieldThroughput, m.ThroughputGiBps)
	set(FieldNsPerByte, m.NsPerByte)
	set(FieldGFLOPs, m.GFLOPs)
	set(FieldAI, m.AI)
}
