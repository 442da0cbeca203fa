// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package resample

import (
	"math"

	"github.com/gomlx/exceptions"
)

// axisScale returns the factor that maps output coordinates to input coordinates along one axis.
//
// An output of size 1 always samples the start of the input, hence scale 0.
func axisScale(inputSize, outputSize int, alignCorners bool) float64 {
	if outputSize <= 1 {
		return 0
	}
	if alignCorners {
		return float64(inputSize-1) / float64(outputSize-1)
	}
	return float64(inputSize) / float64(outputSize)
}

// sourceCoordinate maps the output index to a (fractional) input coordinate.
//
// Without alignCorners it uses the half-pixel-center convention, clamped to 0 at the start.
func sourceCoordinate(scale float64, outputIdx int, alignCorners bool) float64 {
	if alignCorners {
		return scale * float64(outputIdx)
	}
	return max(0, scale*(float64(outputIdx)+0.5)-0.5)
}

// axisSampling holds, for each output index along one axis, the two neighbouring input indices
// and the weights of each of them.
type axisSampling struct {
	low, high             []int
	lowWeight, highWeight []float64
}

// newAxisSampling calculates the sampling of an axis resized from inputSize to outputSize.
//
// The high index is clamped to the last input element, so the last outputs replicate the boundary
// instead of extrapolating. The low index is in range by construction, and it panics if it is not.
func newAxisSampling(inputSize, outputSize int, alignCorners bool) axisSampling {
	s := axisSampling{
		low:        make([]int, outputSize),
		high:       make([]int, outputSize),
		lowWeight:  make([]float64, outputSize),
		highWeight: make([]float64, outputSize),
	}
	scale := axisScale(inputSize, outputSize, alignCorners)
	for outputIdx := range outputSize {
		src := sourceCoordinate(scale, outputIdx, alignCorners)
		low := int(math.Floor(src))
		if low < 0 || low >= inputSize {
			exceptions.Panicf("resample: source index %d (coordinate %g) for output index %d out of range [0, %d) "+
				"-- scale=%g, alignCorners=%v", low, src, outputIdx, inputSize, scale, alignCorners)
		}
		s.low[outputIdx] = low
		s.high[outputIdx] = min(low+1, inputSize-1)
		s.highWeight[outputIdx] = src - float64(low)
		s.lowWeight[outputIdx] = 1 - s.highWeight[outputIdx]
	}
	return s
}

// size returns the output size of the axis.
func (s axisSampling) size() int { return len(s.low) }
