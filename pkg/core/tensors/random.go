// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"github.com/gomlx/gopjrt/dtypes"
	"golang.org/x/exp/rand"
)

// RandomNormal returns a tensor of the given float dtype and dimensions filled with values drawn from
// the standard normal distribution (mean 0, standard deviation 1).
//
// The values are fully determined by seed: the same seed, dtype and dimensions always yield the same tensor.
//
// It panics if dtype is not a float (see IsFloat) or any dimension is <= 0.
func RandomNormal(seed uint64, dtype dtypes.DType, dimensions ...int) *Tensor {
	rng := rand.New(rand.NewSource(seed))
	size := 1
	for _, dim := range dimensions {
		size *= dim
	}
	values := make([]float64, max(size, 0))
	for ii := range values {
		values[ii] = rng.NormFloat64()
	}
	return FromFloat64s(dtype, values, dimensions...)
}
