// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"fmt"
	"sort"

	"golang.org/x/microperf/record"
)

// A DType is a kernel element type, represented by its width in
// bytes.
type DType int

const (
	F32 DType = 4
	F64 DType = 8
)

// ParseDType parses "f32" or "f64".
func ParseDType(s string) (DType, error) {
	switch s {
	case "f32":
		return F32, nil
	case "f64":
		return F64, nil
	}
	return 0, fmt.Errorf("unknown dtype %q", s)
}

func (d DType) String() string {
	switch d {
	case F32:
		return "f32"
	case F64:
		return "f64"
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// kernelCost is the per-element cost of a streaming kernel. Bytes moved
// per element are words times the element width.
type kernelCost struct {
	flops float64
	words float64
}

// kernelCosts is closed: unknown kernels are a caller error.
var kernelCosts = map[string]kernelCost{
	"saxpy":    {2, 3}, // y = a*x + y: load x, y; store y
	"dot":      {2, 2}, // s += x*y: load x, y
	"mul":      {1, 3}, // z = x*y: load x, y; store z
	"stencil3": {5, 4}, // 3-point stencil: load 3 neighbors; store y
}

// An UnknownKernelError reports a kernel name outside the fixed cost
// table.
type UnknownKernelError struct {
	Kernel string
}

func (e *UnknownKernelError) Error() string {
	return fmt.Sprintf("unknown kernel %q (known: %v)", e.Kernel, Kernels())
}

func lookup(kernel string) (kernelCost, error) {
	c, ok := kernelCosts[kernel]
	if !ok {
		return kernelCost{}, &UnknownKernelError{kernel}
	}
	return c, nil
}

// Kernels returns the names of the known kernels in sorted order.
func Kernels() []string {
	names := make([]string, 0, len(kernelCosts))
	for k := range kernelCosts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FLOPsPerElem returns the floating-point operations kernel performs
// per element.
func FLOPsPerElem(kernel string) (float64, error) {
	c, err := lookup(kernel)
	return c.flops, err
}

// BytesPerElem returns the bytes kernel moves per element of type dt.
func BytesPerElem(kernel string, dt DType) (float64, error) {
	c, err := lookup(kernel)
	return c.words * float64(dt), err
}

// ArithmeticIntensity returns the FLOPs per byte moved of kernel over
// elements of type dt, assuming unit-stride streaming access.
func ArithmeticIntensity(kernel string, dt DType) (float64, error) {
	if dt != F32 && dt != F64 {
		return 0, fmt.Errorf("unsupported element width %d", int(dt))
	}
	c, err := lookup(kernel)
	if err != nil {
		return 0, err
	}
	return c.flops / (c.words * float64(dt)), nil
}

// GFLOPs returns the throughput of kernel over n elements in seconds,
// in GFLOP/s.
func GFLOPs(kernel string, n, seconds record.Num) (record.Num, error) {
	c, err := lookup(kernel)
	if err != nil {
		return record.Missing, err
	}
	return n.Scale(c.flops).Div(seconds).Scale(1e-9), nil
}
