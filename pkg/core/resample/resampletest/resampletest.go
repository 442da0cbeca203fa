// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package resampletest holds the table of reference cases used to validate linear resampling kernels:
// input shapes crossed with output sizes or scales, for 2D and 3D, with and without align corners.
//
// Each case generates a seeded random input, so a kernel under test can be fed exactly the same input,
// and its output compared to the reference output with ForwardTolerance.
package resampletest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/resample/pkg/core/resample"
	"github.com/gomlx/resample/pkg/core/tensors"
)

const (
	// Seed used to generate the random inputs of all cases.
	Seed = 313

	// ForwardTolerance is the absolute tolerance for the outputs of a kernel under test.
	ForwardTolerance = 1e-6

	// BackwardTolerance is the absolute tolerance for gradients of a kernel under test.
	// Gradients are not computed here, the value is kept so harnesses use a consistent setting.
	BackwardTolerance = 1e-2
)

// Case is one reference resampling: exactly one of OutputSize or Scale is set.
type Case struct {
	InputDims    []int
	OutputSize   []int
	Scale        []float64
	AlignCorners bool
}

// baseCases are crossed with AlignCorners in Cases.
var baseCases = []Case{
	// 2D
	{InputDims: []int{3, 3}, OutputSize: []int{8, 6}},
	{InputDims: []int{3, 3}, OutputSize: []int{2, 1}},
	{InputDims: []int{3, 3}, Scale: []float64{2.5, 1.0}},
	{InputDims: []int{3, 3}, Scale: []float64{0.5, 0.5}},
	{InputDims: []int{2, 3, 4, 4}, OutputSize: []int{8, 6}},
	{InputDims: []int{2, 3, 4, 4}, OutputSize: []int{2, 1}},
	{InputDims: []int{2, 3, 4, 4}, Scale: []float64{2.5, 1.0}},
	{InputDims: []int{2, 3, 4, 4}, Scale: []float64{0.5, 0.5}},

	// 3D
	{InputDims: []int{3, 3, 3}, OutputSize: []int{6, 8, 6}},
	{InputDims: []int{3, 3, 3}, OutputSize: []int{1, 2, 1}},
	{InputDims: []int{3, 3, 3}, Scale: []float64{1.5, 2.5, 1.0}},
	{InputDims: []int{3, 3, 3}, Scale: []float64{1.2, 0.5, 0.5}},
	{InputDims: []int{2, 2, 3, 4, 4}, OutputSize: []int{6, 8, 6}},
	{InputDims: []int{2, 2, 3, 4, 4}, OutputSize: []int{1, 2, 1}},
	{InputDims: []int{2, 2, 3, 4, 4}, Scale: []float64{1.5, 2.5, 1.0}},
	{InputDims: []int{2, 2, 3, 4, 4}, Scale: []float64{1.2, 0.5, 0.5}},
}

// Cases returns all the reference cases, each base case once without and once with align corners.
func Cases() []Case {
	cases := make([]Case, 0, 2*len(baseCases))
	for _, alignCorners := range []bool{false, true} {
		for _, c := range baseCases {
			c.AlignCorners = alignCorners
			cases = append(cases, c)
		}
	}
	return cases
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "x")
}

// Name returns a unique identifier of the case, usable as a file name.
func (c Case) Name() string {
	var b strings.Builder
	fmt.Fprintf(&b, "in%s", joinInts(c.InputDims))
	if len(c.OutputSize) > 0 {
		fmt.Fprintf(&b, "_size%s", joinInts(c.OutputSize))
	} else {
		parts := make([]string, len(c.Scale))
		for i, s := range c.Scale {
			parts[i] = strconv.FormatFloat(s, 'f', -1, 64)
		}
		fmt.Fprintf(&b, "_scale%s", strings.Join(parts, "x"))
	}
	if c.AlignCorners {
		b.WriteString("_align")
	}
	return b.String()
}

// Input returns the random input of the case, in the given dtype.
func (c Case) Input(dtype dtypes.DType) *tensors.Tensor {
	return tensors.RandomNormal(Seed, dtype, c.InputDims...)
}

// Run generates the input of the case in Float32 and computes its reference output.
func (c Case) Run() (input, output *tensors.Tensor, err error) {
	input = c.Input(dtypes.Float32)
	output, err = resample.Resample(input, c.Scale, c.OutputSize, c.AlignCorners)
	return
}
