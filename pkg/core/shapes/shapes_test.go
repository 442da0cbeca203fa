// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	require.False(t, invalidShape.Ok())

	shape0 := Make(dtypes.Float64)
	require.True(t, shape0.Ok())
	require.True(t, shape0.IsScalar())
	require.Equal(t, 0, shape0.Rank())
	require.Len(t, shape0.Dimensions, 0)
	require.Equal(t, 1, shape0.Size())
	require.Equal(t, 8, int(shape0.Memory()))

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	require.True(t, shape1.Ok())
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.Len(t, shape1.Dimensions, 3)
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, 4*4*3*2, int(shape1.Memory()))
	require.Equal(t, "(Float32)[4 3 2]", shape1.String())

	require.Panics(t, func() { _ = Make(dtypes.Float32, 2, 0) })
}

func TestDim(t *testing.T) {
	shape := Make(dtypes.Float32, 4, 3, 2)
	require.Equal(t, 4, shape.Dim(0))
	require.Equal(t, 3, shape.Dim(1))
	require.Equal(t, 2, shape.Dim(2))
	require.Equal(t, 4, shape.Dim(-3))
	require.Equal(t, 3, shape.Dim(-2))
	require.Equal(t, 2, shape.Dim(-1))
	require.Panics(t, func() { _ = shape.Dim(3) })
	require.Panics(t, func() { _ = shape.Dim(-4) })
}

func TestStrides(t *testing.T) {
	require.Equal(t, []int{12, 4, 1}, Make(dtypes.Float32, 2, 3, 4).Strides())
	require.Equal(t, []int{1}, Make(dtypes.Float32, 5).Strides())
	require.Equal(t, []int{2, 2, 1}, Make(dtypes.Float32, 3, 1, 2).Strides())
	require.Empty(t, Make(dtypes.Float32).Strides())
}

func TestSplitAt(t *testing.T) {
	shape := Make(dtypes.Float32, 2, 3, 4, 5)
	outer, inner := shape.SplitAt(-2)
	if diff := cmp.Diff([]int{2, 3}, outer.Dimensions); diff != "" {
		t.Errorf("outer dimensions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 5}, inner.Dimensions); diff != "" {
		t.Errorf("inner dimensions mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, dtypes.Float32, outer.DType)
	require.Equal(t, dtypes.Float32, inner.DType)

	// Splitting at 0 leaves a scalar outer shape, whose size is 1.
	outer, inner = Make(dtypes.Float64, 3, 3).SplitAt(0)
	require.True(t, outer.IsScalar())
	require.Equal(t, 1, outer.Size())
	require.True(t, inner.Equal(Make(dtypes.Float64, 3, 3)))

	require.Panics(t, func() { _, _ = shape.SplitAt(5) })
	require.Panics(t, func() { _, _ = shape.SplitAt(-5) })
}

func TestConcatenateDimensions(t *testing.T) {
	s := ConcatenateDimensions(Make(dtypes.Float32, 2, 3), Make(dtypes.Float32, 4, 5))
	require.True(t, s.Equal(Make(dtypes.Float32, 2, 3, 4, 5)))
	s = ConcatenateDimensions(Make(dtypes.Float32), Make(dtypes.Float32, 4))
	require.True(t, s.Equal(Make(dtypes.Float32, 4)))
	require.False(t, ConcatenateDimensions(Make(dtypes.Float32, 2), Make(dtypes.Float64, 2)).Ok())
}
