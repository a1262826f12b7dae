// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchfmt reads raw microbenchmark records.
//
// A raw record is a bag of named fields exactly as a benchmark driver
// wrote them: flat CSV rows whose cells may carry embedded labels
// ("stride=16", "GiB/s=3.2"), or objects decoded from nested JSON
// reports. Records are not interpreted here; the record package
// validates them against a typed schema.
//
// This package is designed to be used with the higher-level packages
// benchunit, record, derive and aggregate.
package benchfmt

import "sort"

// A Record is a single raw benchmark record.
//
// Field values are strings for CSV input, and strings, float64s or
// nested values for decoded JSON. A Record is immutable once read:
// Reader allocates a fresh Record for each row, so callers may retain
// them.
type Record struct {
	// Fields maps field names to unnormalized values.
	Fields map[string]any

	// fileName and line record where this Record was read from.
	fileName string
	line     int
}

// NewRecord returns a Record holding fields, with no position.
func NewRecord(fields map[string]any) *Record {
	return &Record{Fields: fields}
}

// Pos returns the file name and line number of a Record that was read
// by a Reader. For Records that were not read from a file, it returns
// "", 0.
func (r *Record) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// Get returns the raw value of field key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Keys returns the field names of r in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone makes a shallow copy of r that shares no map with r.
func (r *Record) Clone() *Record {
	r2 := &Record{
		Fields:   make(map[string]any, len(r.Fields)),
		fileName: r.fileName,
		line:     r.line,
	}
	for k, v := range r.Fields {
		r2.Fields[k] = v
	}
	return r2
}
