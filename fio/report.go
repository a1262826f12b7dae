// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fio decodes fio JSON reports and derives storage latency,
// bandwidth and IOPS metrics from them.
//
// A report holds a list of jobs. Each job has separate read and write
// sub-reports, each with its own bandwidth, IOPS, IO count and
// completion-latency distribution. Combining the two directions is the
// job of Mix.
package fio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"golang.org/x/microperf/benchunit"
	"golang.org/x/microperf/record"
)

// A Report is a decoded fio JSON report.
type Report struct {
	Version string
	Jobs    []Job
}

// A Job is one job of a report.
type Job struct {
	Name string

	// IODepth and BlockSize are the raw "job options" values. They
	// are empty if the job did not set them.
	IODepth   string
	BlockSize string

	Read, Write Direction
}

// A Direction is the read or write sub-report of a job.
type Direction struct {
	// Present is false if the job had no sub-report for this
	// direction.
	Present bool

	IOBytes  float64
	BW       float64 // KiB/s
	BWBytes  float64 // bytes/s
	IOPS     float64
	TotalIOs float64

	// MeanLatNs is the mean completion latency in nanoseconds. It is
	// Missing if the report did not include it.
	MeanLatNs record.Num

	// Percentiles are the completion-latency percentiles in
	// nanoseconds.
	Percentiles Percentiles
}

// Active reports whether d transferred any data.
func (d Direction) Active() bool {
	return d.Present && d.IOBytes > 0
}

var errNoJobs = errors.New("no jobs array")

// Decode parses a fio JSON report.
func Decode(data []byte) (*Report, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("fio report: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	jobs := root.Get("jobs")
	if !jobs.IsArray() {
		return nil, fmt.Errorf("fio report: %w", errNoJobs)
	}
	rep := &Report{Version: root.Get("fio version").String()}
	for _, j := range jobs.Array() {
		opts := j.Get("job options")
		rep.Jobs = append(rep.Jobs, Job{
			Name:      j.Get("jobname").String(),
			IODepth:   opts.Get("iodepth").String(),
			BlockSize: opts.Get("bs").String(),
			Read:      decodeDirection(j.Get("read")),
			Write:     decodeDirection(j.Get("write")),
		})
	}
	return rep, nil
}

func decodeDirection(v gjson.Result) Direction {
	if !v.IsObject() {
		return Direction{}
	}
	d := Direction{
		Present:  true,
		IOBytes:  v.Get("io_bytes").Float(),
		BW:       v.Get("bw").Float(),
		IOPS:     v.Get("iops").Float(),
		TotalIOs: v.Get("total_ios").Float(),
	}
	if bb := v.Get("bw_bytes"); bb.Exists() {
		d.BWBytes = bb.Float()
	} else {
		d.BWBytes = d.BW * 1024
	}
	clat := v.Get("clat_ns")
	if mean := clat.Get("mean"); mean.Exists() {
		d.MeanLatNs = record.Some(mean.Float())
	}
	clat.Get("percentile").ForEach(func(k, val gjson.Result) bool {
		d.Percentiles = append(d.Percentiles, PercentileEntry{k.String(), val.Float()})
		return true
	})
	return d
}

// Primary returns the direction that carries the job's workload: read
// if it transferred any data, otherwise write.
func (j *Job) Primary() Direction {
	if j.Read.IOBytes > 0 {
		return j.Read
	}
	return j.Write
}

// QueueDepth parses the job's iodepth option.
func (j *Job) QueueDepth() (int, error) {
	qd, err := strconv.Atoi(strings.TrimSpace(j.IODepth))
	if err != nil {
		return 0, fmt.Errorf("job %s: bad iodepth %q", j.Name, j.IODepth)
	}
	return qd, nil
}

// BlockSizeBytes parses the job's bs option.
func (j *Job) BlockSizeBytes() (int64, error) {
	n, err := benchunit.ParseSize(j.BlockSize)
	if err != nil {
		return 0, fmt.Errorf("job %s: %w", j.Name, err)
	}
	return n, nil
}
