// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// AssumeNormal is an assumption that a sample is normally distributed.
// The summary statistic is the sample mean and comparisons are done
// using Welch's two-sample t-test, which does not assume equal
// variances. Timings of the scalar and SIMD variants of a kernel
// rarely have similar spread.
var AssumeNormal = assumeNormal{}

type assumeNormal struct{}

var _ Assumption = assumeNormal{}

func (assumeNormal) SummaryLabel() string {
	return "mean"
}

func (assumeNormal) Summary(s *Sample, confidence float64) Summary {
	if len(s.Values) < 2 {
		inf := math.Inf(1)
		return Summary{
			Center:     s.Mean(),
			Lo:         -inf,
			Hi:         inf,
			Confidence: 1,
			Warnings:   []error{fmt.Errorf("need >= 2 samples for confidence interval at level %v", confidence)},
		}
	}

	mean, lo, hi := s.sample().MeanCI(confidence)
	return Summary{
		Center:     mean,
		Lo:         lo,
		Hi:         hi,
		Confidence: confidence,
	}
}

func (assumeNormal) Compare(s1, s2 *Sample) Comparison {
	alpha := DefaultThresholds.CompareAlpha
	if s1.Thresholds != nil {
		alpha = s1.Thresholds.CompareAlpha
	}
	c := Comparison{P: 1, N1: len(s1.Values), N2: len(s2.Values), Alpha: alpha}
	if c.N1 < 2 || c.N2 < 2 {
		c.Warnings = []error{fmt.Errorf("need >= 2 samples per side to compare")}
		return c
	}
	t, err := stats.TwoSampleWelchTTest(s1.sample(), s2.sample(), stats.LocationDiffers)
	if err != nil {
		// The t-test failed. Report as if there's no
		// significant difference, along with the error.
		c.Warnings = []error{err}
		return c
	}
	c.P = t.P
	return c
}
