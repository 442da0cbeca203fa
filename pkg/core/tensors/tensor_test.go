// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/resample/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromShape(t *testing.T) {
	tensor := FromShape(shapes.Make(dtypes.Float32, 2, 3))
	require.True(t, tensor.Ok())
	require.Equal(t, dtypes.Float32, tensor.DType())
	require.Equal(t, 2, tensor.Rank())
	require.Equal(t, 6, tensor.Size())
	require.Equal(t, uintptr(24), tensor.Memory())
	require.Equal(t, make([]float32, 6), CopyFlatData[float32](tensor))

	require.Panics(t, func() { _ = FromShape(shapes.Invalid()) })

	var nilTensor *Tensor
	require.False(t, nilTensor.Ok())
	require.Panics(t, func() { nilTensor.AssertValid() })
}

func TestFromValue(t *testing.T) {
	tensor := FromValue([][]float32{{1, 2, 3}, {4, 5, 6}})
	require.True(t, tensor.Shape().Equal(shapes.Make(dtypes.Float32, 2, 3)))
	require.Equal(t, []float32{1, 2, 3, 4, 5, 6}, CopyFlatData[float32](tensor))
	require.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, tensor.Value())

	tensor = FromValue([][][]float64{{{1}, {2}}, {{3}, {4}}, {{5}, {6}}})
	require.Equal(t, []int{3, 2, 1}, tensor.Shape().Dimensions)
	require.Equal(t, [][][]float64{{{1}, {2}}, {{3}, {4}}, {{5}, {6}}}, tensor.Value())

	scalar := FromValue(float64(7))
	require.True(t, scalar.Shape().IsScalar())
	require.Equal(t, 7.0, scalar.Value())

	// Irregular shapes are not accepted.
	require.Panics(t, func() { _ = FromValue([][]float32{{1, 2}, {3}}) })
	require.Panics(t, func() { _ = FromValue([]float32{}) })
}

func TestFromFlatDataAndDimensions(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	tensor := FromFlatDataAndDimensions(data, 3, 2)
	require.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, tensor.Value())

	// The data is copied.
	data[0] = 100
	require.Equal(t, 1.0, CopyFlatData[float64](tensor)[0])

	require.Panics(t, func() { _ = FromFlatDataAndDimensions(data, 4, 2) })
	require.Panics(t, func() { _ = CopyFlatData[float32](tensor) })
}

func TestEqual(t *testing.T) {
	a := FromValue([][]float32{{1, 2}, {3, 4}})
	b := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2)
	c := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 4)
	d := FromFlatDataAndDimensions([]float32{1, 2, 3, 5}, 2, 2)
	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

func TestFloat64s(t *testing.T) {
	want := []float64{0.5, -1.25, 2}
	for _, dtype := range []dtypes.DType{dtypes.Float16, dtypes.BFloat16, dtypes.Float32, dtypes.Float64} {
		tensor := FromFloat64s(dtype, want, 3)
		require.Equal(t, dtype, tensor.DType())
		require.Equal(t, want, tensor.Float64s(), "dtype=%s", dtype)
	}
	require.Equal(t, []float16.Float16{float16.Fromfloat32(0.5), float16.Fromfloat32(-1.25), float16.Fromfloat32(2)},
		CopyFlatData[float16.Float16](FromFloat64s(dtypes.Float16, want, 3)))
	require.Equal(t, bfloat16.FromFloat32(-1.25),
		CopyFlatData[bfloat16.BFloat16](FromFloat64s(dtypes.BFloat16, want, 3))[1])

	require.True(t, IsFloat(dtypes.Float32))
	require.False(t, IsFloat(dtypes.Int32))
	require.Panics(t, func() { _ = FromFloat64s(dtypes.Int64, want, 3) })
}

func TestAllClose(t *testing.T) {
	a := FromValue([][]float32{{1, 2}, {3, 4}})
	b := FromValue([][]float64{{1, 2}, {3, 4.5}})

	ok, maxDiff := AllClose(a, b, 1e-6)
	require.False(t, ok)
	require.InDelta(t, 0.5, maxDiff, 1e-9)
	require.InDelta(t, 0.5, MaxAbsDiff(a, b), 1e-9)

	ok, _ = AllClose(a, b, 0.5)
	require.True(t, ok)

	ok, maxDiff = AllClose(a, FromValue([]float32{1, 2, 3, 4}), 1)
	require.False(t, ok)
	require.True(t, math.IsInf(maxDiff, 1))

	ok, _ = AllClose(FromValue([]float64{math.NaN()}), FromValue([]float64{math.NaN()}), 1)
	require.False(t, ok)

	require.Panics(t, func() { _ = MaxAbsDiff(a, FromValue([]float32{1})) })
}

func TestRandomNormal(t *testing.T) {
	a := RandomNormal(313, dtypes.Float32, 2, 3, 4, 4)
	b := RandomNormal(313, dtypes.Float32, 2, 3, 4, 4)
	c := RandomNormal(314, dtypes.Float32, 2, 3, 4, 4)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.Equal(t, []int{2, 3, 4, 4}, a.Shape().Dimensions)

	// Loose sanity check of the distribution.
	values := RandomNormal(1, dtypes.Float64, 10_000).Float64s()
	var sum float64
	for _, v := range values {
		sum += v
	}
	require.InDelta(t, 0.0, sum/float64(len(values)), 0.05)
}

func TestString(t *testing.T) {
	require.Equal(t, "(Float32)[2 2]: [[1 2] [3 4]]", FromValue([][]float32{{1, 2}, {3, 4}}).String())
	large := FromShape(shapes.Make(dtypes.Float32, 100))
	require.Contains(t, large.String(), "...")
}
