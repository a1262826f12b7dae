// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package roofline classifies achieved kernel throughput against a
// roofline model.
//
// A roofline bounds attainable throughput at arithmetic intensity AI
// by min(bandwidth × AI, peak). A point near the sloped memory roof is
// limited by memory bandwidth, a point near the flat compute roof is
// limited by arithmetic throughput, and a point well below both is
// inefficient for some other reason. Classification is advisory.
package roofline

import (
	"errors"
	"fmt"
	"math"
)

// A Bound is a machine's roofline.
type Bound struct {
	BandwidthBytesPerSec float64
	PeakFLOPsPerSec      float64
}

// GB returns the Bound with memory bandwidth in GB/s and peak compute
// in GFLOP/s.
func GB(bandwidthGBps, peakGFLOPs float64) Bound {
	return Bound{bandwidthGBps * 1e9, peakGFLOPs * 1e9}
}

// ErrNonPositive is returned for bounds that are not strictly
// positive.
var ErrNonPositive = errors.New("roofline bandwidth and peak must be positive")

// Validate checks that both limits of b are positive and finite.
func (b Bound) Validate() error {
	ok := func(x float64) bool { return x > 0 && !math.IsInf(x, 0) }
	if !ok(b.BandwidthBytesPerSec) || !ok(b.PeakFLOPsPerSec) {
		return fmt.Errorf("%w: got %g B/s, %g FLOP/s", ErrNonPositive, b.BandwidthBytesPerSec, b.PeakFLOPsPerSec)
	}
	return nil
}

// MemoryCeiling returns the bandwidth-limited throughput at ai, in
// GFLOP/s.
func (b Bound) MemoryCeiling(ai float64) float64 {
	return b.BandwidthBytesPerSec * ai / 1e9
}

// ComputeCeiling returns the peak throughput in GFLOP/s.
func (b Bound) ComputeCeiling() float64 {
	return b.PeakFLOPsPerSec / 1e9
}

// Ceiling returns the attainable throughput at ai, in GFLOP/s.
func (b Bound) Ceiling(ai float64) float64 {
	return math.Min(b.MemoryCeiling(ai), b.ComputeCeiling())
}

// Ridge returns the arithmetic intensity at which the two roofs meet.
// Kernels below it are memory bound at best.
func (b Bound) Ridge() float64 {
	return b.PeakFLOPsPerSec / b.BandwidthBytesPerSec
}

// A Class is the classification of an achieved point.
type Class int

const (
	Unclassified Class = iota
	MemoryBound
	ComputeBound
	SubRoofline
)

func (c Class) String() string {
	switch c {
	case MemoryBound:
		return "memory-bound-limited"
	case ComputeBound:
		return "compute-bound-limited"
	case SubRoofline:
		return "sub-roofline"
	}
	return "unclassified"
}

// DefaultMargin is the default relative classification margin.
const DefaultMargin = 0.1

// A Classifier classifies points against a Bound.
type Classifier struct {
	Bound

	// Margin is the relative distance below a ceiling within which
	// a point counts as reaching it. It must be in [0, 1).
	Margin float64
}

// NewClassifier returns a Classifier for b using DefaultMargin.
func NewClassifier(b Bound) *Classifier {
	return &Classifier{b, DefaultMargin}
}

// A Point is a classified achieved throughput.
type Point struct {
	AI       float64 // FLOPs per byte
	Achieved float64 // GFLOP/s

	MemoryCeiling  float64 // GFLOP/s at AI
	ComputeCeiling float64 // GFLOP/s

	Class Class
}

func (c *Classifier) validate() error {
	if err := c.Bound.Validate(); err != nil {
		return err
	}
	if !(c.Margin >= 0 && c.Margin < 1) {
		return fmt.Errorf("roofline margin %g not in [0, 1)", c.Margin)
	}
	return nil
}

// Classify classifies achieved throughputs in GFLOP/s, all measured at
// arithmetic intensity ai.
//
// A point is compute bound if it is within the margin of the compute
// ceiling, otherwise memory bound if it is within the margin of the
// memory ceiling, and otherwise sub-roofline. Points above a ceiling
// count as reaching it. Where the ceilings coincide, compute bound
// wins. Non-finite or negative achieved values are Unclassified.
func (c *Classifier) Classify(ai float64, achieved []float64) ([]Point, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if !(ai > 0) || math.IsInf(ai, 0) {
		return nil, fmt.Errorf("arithmetic intensity %g must be positive", ai)
	}
	mem, peak := c.MemoryCeiling(ai), c.ComputeCeiling()
	pts := make([]Point, len(achieved))
	for i, a := range achieved {
		pts[i] = Point{AI: ai, Achieved: a, MemoryCeiling: mem, ComputeCeiling: peak, Class: c.class(a, mem, peak)}
	}
	return pts, nil
}

func (c *Classifier) class(a, mem, peak float64) Class {
	switch {
	case math.IsNaN(a) || math.IsInf(a, 0) || a < 0:
		return Unclassified
	case a >= peak*(1-c.Margin):
		return ComputeBound
	case a >= mem*(1-c.Margin):
		return MemoryBound
	}
	return SubRoofline
}
