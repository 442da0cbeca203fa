// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/resample/pkg/core/shapes"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/floats"
)

// IsFloat returns whether dtype is one of the float types a Tensor can hold: Float16, BFloat16, Float32 or Float64.
func IsFloat(dtype dtypes.DType) bool {
	switch dtype {
	case dtypes.Float16, dtypes.BFloat16, dtypes.Float32, dtypes.Float64:
		return true
	}
	return false
}

// Float64s returns a copy of the tensor's values converted to float64.
//
// It panics if the tensor is not of a float dtype (see IsFloat).
func (t *Tensor) Float64s() []float64 {
	values := make([]float64, t.Size())
	t.ConstFlatData(func(flat any) {
		switch flat := flat.(type) {
		case []float64:
			copy(values, flat)
		case []float32:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []float16.Float16:
			for ii, v := range flat {
				values[ii] = float64(v.Float32())
			}
		case []bfloat16.BFloat16:
			for ii, v := range flat {
				values[ii] = float64(v.Float32())
			}
		default:
			exceptions.Panicf("Float64s() not supported for dtype %s", t.DType())
		}
	})
	return values
}

// FromFloat64s creates a tensor of the given float dtype and dimensions, converting the values from float64.
//
// It panics if dtype is not a float (see IsFloat) or if the number of values doesn't match the dimensions.
func FromFloat64s(dtype dtypes.DType, values []float64, dimensions ...int) *Tensor {
	shape := shapes.Make(dtype, dimensions...)
	if len(values) != shape.Size() {
		exceptions.Panicf("FromFloat64s(%s): %d values given, but shape has size %d", shape, len(values), shape.Size())
	}
	t := FromShape(shape)
	t.MutableFlatData(func(flat any) {
		switch flat := flat.(type) {
		case []float64:
			copy(flat, values)
		case []float32:
			for ii, v := range values {
				flat[ii] = float32(v)
			}
		case []float16.Float16:
			for ii, v := range values {
				flat[ii] = float16.Fromfloat32(float32(v))
			}
		case []bfloat16.BFloat16:
			for ii, v := range values {
				flat[ii] = bfloat16.FromFloat32(float32(v))
			}
		default:
			exceptions.Panicf("FromFloat64s() not supported for dtype %s", dtype)
		}
	})
	return t
}

// MaxAbsDiff returns the largest absolute difference between corresponding elements of a and b.
//
// It panics if the dimensions of a and b differ, or if they are not float tensors.
// The dtypes may differ: values are compared as float64.
// If any of the values is NaN, the result is NaN.
func MaxAbsDiff(a, b *Tensor) float64 {
	if !a.Shape().EqualDimensions(b.Shape()) {
		exceptions.Panicf("MaxAbsDiff(): tensors have different dimensions: %s and %s", a.Shape(), b.Shape())
	}
	if a.Size() == 0 {
		return 0
	}
	return floats.Distance(a.Float64s(), b.Float64s(), math.Inf(1))
}

// AllClose returns whether a and b have the same dimensions and every element of a is within atol
// (absolute tolerance) of the corresponding element of b.
// It also returns the maximum absolute difference found, or +Inf if the dimensions don't match.
//
// NaN values are never considered close.
func AllClose(a, b *Tensor, atol float64) (ok bool, maxDiff float64) {
	if !a.Shape().EqualDimensions(b.Shape()) {
		return false, math.Inf(1)
	}
	aValues, bValues := a.Float64s(), b.Float64s()
	if floats.HasNaN(aValues) || floats.HasNaN(bValues) {
		return false, math.NaN()
	}
	if len(aValues) == 0 {
		return true, 0
	}
	maxDiff = floats.Distance(aValues, bValues, math.Inf(1))
	return maxDiff <= atol, maxDiff
}
