// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package roofline

import (
	"fmt"

	"golang.org/x/microperf/derive"
	"golang.org/x/microperf/record"
)

// A Result is the roofline analysis of one kernel and data type.
type Result struct {
	Kernel string
	DType  string
	AI     float64

	// Points holds one classified point per problem size, ordered
	// by size. Each point's Achieved is the median GFLOP/s at that
	// size.
	Points []Point
	N      []float64
}

// Analyze classifies the SIMD runs of kernel over dtype elements in
// recs. Only runs with a valid reported GFLOP/s contribute. It returns
// an error wrapping record.ErrEmpty if no runs match.
func (c *Classifier) Analyze(recs []record.Kernel, kernel, dtype string) (*Result, error) {
	dt, err := derive.ParseDType(dtype)
	if err != nil {
		return nil, err
	}
	ai, err := derive.ArithmeticIntensity(kernel, dt)
	if err != nil {
		return nil, err
	}
	series := derive.GFLOPsSeries(recs, derive.Config{Kernel: kernel, DType: dtype, Variant: derive.SIMD})
	if len(series) == 0 {
		return nil, fmt.Errorf("%s %s %s runs: %w", kernel, dtype, derive.SIMD, record.ErrEmpty)
	}
	achieved := make([]float64, len(series))
	res := &Result{Kernel: kernel, DType: dtype, AI: ai, N: make([]float64, len(series))}
	for i, p := range series {
		achieved[i] = p.Median
		res.N[i] = p.N
	}
	res.Points, err = c.Classify(ai, achieved)
	if err != nil {
		return nil, err
	}
	return res, nil
}
