// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fio

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/microperf/record"
)

// A Kind classifies a report by the experiment that produced it.
type Kind int

const (
	Other    Kind = iota
	Baseline      // queue depth 1 runs, named *_qd1*
	Sweep         // block size or pattern sweeps, named *_sweep*
)

func (k Kind) String() string {
	switch k {
	case Baseline:
		return "baseline"
	case Sweep:
		return "sweep"
	}
	return "other"
}

// KindOf classifies a report by its file name. "_qd1" must not be
// followed by another digit, so "x_qd16.json" is not a baseline.
func KindOf(fileName string) Kind {
	base := filepath.Base(fileName)
	for s := base; ; {
		i := strings.Index(s, "_qd1")
		if i < 0 {
			break
		}
		rest := s[i+len("_qd1"):]
		if rest == "" || rest[0] < '0' || rest[0] > '9' {
			return Baseline
		}
		s = rest
	}
	if strings.Contains(base, "_sweep") {
		return Sweep
	}
	return Other
}

// TailPercentiles are the percentiles reported in tail latency tables.
var TailPercentiles = [...]float64{50, 95, 99, 99.9}

// A Row is the flattened metrics of one job's primary direction.
// Latencies are in microseconds and bandwidth in MiB/s.
type Row struct {
	File string
	Job  string
	Kind Kind

	BS      string
	BSBytes record.Num
	QD      record.Num

	IOPS     float64
	BWMiBps  float64
	LatAvgUs record.Num

	// Tail holds the TailPercentiles, in order.
	Tail [len(TailPercentiles)]record.Num
}

// LatP99Us returns the 99th percentile latency.
func (r *Row) LatP99Us() record.Num { return r.Tail[2] }

// Rows flattens the jobs of rep, read from fileName. Unparseable block
// sizes and queue depths leave the field missing and are returned as
// warnings.
func (e Extractor) Rows(rep *Report, fileName string) ([]Row, []error) {
	var warnings []error
	kind := KindOf(fileName)
	rows := make([]Row, 0, len(rep.Jobs))
	for i := range rep.Jobs {
		j := &rep.Jobs[i]
		d := j.Primary()
		row := Row{
			File:     filepath.Base(fileName),
			Job:      j.Name,
			Kind:     kind,
			BS:       j.BlockSize,
			IOPS:     d.IOPS,
			BWMiBps:  d.BWBytes / (1 << 20),
			LatAvgUs: micros(d.MeanLatNs),
		}
		for k, p := range TailPercentiles {
			row.Tail[k] = micros(e.Extract(d.Percentiles, p))
		}
		if j.BlockSize != "" {
			if bs, err := j.BlockSizeBytes(); err != nil {
				warnings = append(warnings, err)
			} else {
				row.BSBytes = record.Some(float64(bs))
			}
		}
		if j.IODepth != "" {
			if qd, err := j.QueueDepth(); err != nil {
				warnings = append(warnings, err)
			} else {
				row.QD = record.Some(float64(qd))
			}
		}
		rows = append(rows, row)
	}
	return rows, warnings
}

// Fields returns r as normalized fields for aggregation and tables.
func (r *Row) Fields() record.Fields {
	f := record.Fields{}
	f.SetStr("file", r.File)
	f.SetStr("jobname", r.Job)
	f.SetStr("kind", r.Kind.String())
	f.SetStr("bs", r.BS)
	f.SetNum("bs_bytes", r.BSBytes)
	f.SetNum("qd", r.QD)
	f.SetNum("iops", record.Some(r.IOPS))
	f.SetNum("bw_MiBps", record.Some(r.BWMiBps))
	f.SetNum("lat_avg_us", r.LatAvgUs)
	f.SetNum("lat_p50_us", r.Tail[0])
	f.SetNum("lat_p95_us", r.Tail[1])
	f.SetNum("lat_p99_us", r.Tail[2])
	f.SetNum("lat_p99.9_us", r.Tail[3])
	return f
}

// SortByQueueDepth sorts rows by queue depth, with rows lacking one
// last. The sort is stable.
func SortByQueueDepth(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return lessNum(rows[i].QD, rows[j].QD) })
}

// SortByBlockSize sorts rows by file, then block size, with rows
// lacking a block size last within a file. The sort is stable.
func SortByBlockSize(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].File != rows[j].File {
			return rows[i].File < rows[j].File
		}
		return lessNum(rows[i].BSBytes, rows[j].BSBytes)
	})
}

func micros(ns record.Num) record.Num {
	return ns.Div(record.Some(1000))
}

func lessNum(a, b record.Num) bool {
	if a.Valid != b.Valid {
		return a.Valid
	}
	return a.Valid && a.Value < b.Value
}
