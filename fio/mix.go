// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fio

import (
	"math"

	"golang.org/x/microperf/record"
)

// A Stream is the measurements of one IO direction used for mixing.
// Latencies are in the units of the source, usually nanoseconds.
type Stream struct {
	BWBytes float64 // bytes/s
	IOPS    float64
	IOs     float64

	MeanLat record.Num
	P99Lat  record.Num
}

// Stream returns the mixing inputs of d. A direction that is absent or
// transferred no data yields the zero Stream: no bandwidth, no IOs and
// missing latencies.
func (e Extractor) Stream(d Direction) Stream {
	if !d.Active() {
		return Stream{}
	}
	return Stream{
		BWBytes: d.BWBytes,
		IOPS:    d.IOPS,
		IOs:     d.TotalIOs,
		MeanLat: d.MeanLatNs,
		P99Lat:  e.Extract(d.Percentiles, 99),
	}
}

// A MixResult combines the read and write streams of a mixed
// workload. The per-direction inputs are kept alongside the combined
// values.
type MixResult struct {
	Read, Write Stream

	TotalBW   float64 // bytes/s
	TotalIOPS float64
	TotalIOs  float64

	// WeightedMeanLat is the mean latency weighted by IO count. It is
	// 0 if neither direction issued any IO.
	WeightedMeanLat record.Num

	// TailLat is the larger of the two directions' 99th percentile
	// latencies. This overestimates the 99th percentile of the
	// combined distribution.
	TailLat record.Num
}

// Mix combines read and write.
//
// Directions whose mean latency is missing are left out of the
// weighted mean, which is then taken over the remaining IOs. The tail
// latency is the maximum of the valid 99th percentiles.
func Mix(read, write Stream) MixResult {
	m := MixResult{
		Read:      read,
		Write:     write,
		TotalBW:   read.BWBytes + write.BWBytes,
		TotalIOPS: read.IOPS + write.IOPS,
		TotalIOs:  read.IOs + write.IOs,
	}
	if m.TotalIOs == 0 {
		m.WeightedMeanLat = record.Some(0)
		m.TailLat = record.Some(0)
		return m
	}

	var sum, ios float64
	tail := math.Inf(-1)
	for _, s := range []Stream{read, write} {
		if s.IOs > 0 && s.MeanLat.Valid {
			sum += s.IOs * s.MeanLat.Value
			ios += s.IOs
		}
		if s.IOs > 0 && s.P99Lat.Valid {
			tail = math.Max(tail, s.P99Lat.Value)
		}
	}
	if ios > 0 {
		m.WeightedMeanLat = record.Some(sum / ios)
	}
	m.TailLat = record.Some(tail)
	return m
}

// MixJob mixes the read and write directions of j.
func (e Extractor) MixJob(j *Job) MixResult {
	return Mix(e.Stream(j.Read), e.Stream(j.Write))
}

// MixOrder is the conventional presentation order of read/write mix
// jobs, from read-only to evenly mixed.
var MixOrder = []string{"R100", "W100", "R70W30", "R50W50"}

// A NamedMix is the mix result of one job.
type NamedMix struct {
	Name string
	MixResult
}

// Mixes returns the mix results of the jobs in rep named in order, in
// that order. Jobs not named in order are skipped. If order is nil,
// MixOrder is used.
func (e Extractor) Mixes(rep *Report, order []string) []NamedMix {
	if order == nil {
		order = MixOrder
	}
	var out []NamedMix
	for _, name := range order {
		for i := range rep.Jobs {
			if j := &rep.Jobs[i]; j.Name == name {
				out = append(out, NamedMix{name, e.MixJob(j)})
			}
		}
	}
	return out
}
