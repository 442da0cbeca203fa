// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestAxisScale(t *testing.T) {
	assert.Equal(t, 0.0, axisScale(3, 1, false))
	assert.Equal(t, 0.0, axisScale(3, 1, true))
	assert.Equal(t, 1.5, axisScale(3, 2, false))
	assert.Equal(t, 2.0, axisScale(3, 2, true))
	assert.Equal(t, 0.5, axisScale(4, 8, false))
	assert.InDelta(t, 3.0/7.0, axisScale(4, 8, true), 1e-15)
}

func TestSourceCoordinate(t *testing.T) {
	// isize=3, osize=2 without align corners.
	assert.Equal(t, 0.25, sourceCoordinate(1.5, 0, false))
	assert.Equal(t, 1.75, sourceCoordinate(1.5, 1, false))
	// Clamped to 0.
	assert.Equal(t, 0.0, sourceCoordinate(0.5, 0, false))
	assert.Equal(t, 4.0, sourceCoordinate(2, 2, true))
}

func TestAxisSampling(t *testing.T) {
	s := newAxisSampling(3, 2, false)
	require.Equal(t, []int{0, 1}, s.low)
	require.Equal(t, []int{1, 2}, s.high)
	require.Equal(t, []float64{0.75, 0.25}, s.lowWeight)
	require.Equal(t, []float64{0.25, 0.75}, s.highWeight)

	// Degenerate output: always the first element, with no contribution from the high neighbour.
	s = newAxisSampling(5, 1, false)
	require.Equal(t, []int{0}, s.low)
	require.Equal(t, []int{1}, s.high)
	require.Equal(t, []float64{1}, s.lowWeight)
	require.Equal(t, []float64{0}, s.highWeight)
	s = newAxisSampling(1, 4, true)
	require.Equal(t, []int{0, 0, 0, 0}, s.low)
	require.Equal(t, []int{0, 0, 0, 0}, s.high)

	// Upsampling: the last output replicates the last input.
	s = newAxisSampling(3, 6, false)
	require.Equal(t, 2, s.low[5])
	require.Equal(t, 2, s.high[5])

	// Align corners with equal sizes is the identity.
	s = newAxisSampling(4, 4, true)
	require.Equal(t, []int{0, 1, 2, 3}, s.low)
	require.Equal(t, []float64{0, 0, 0, 0}, s.highWeight)
}

func TestAxisSamplingInvariants(t *testing.T) {
	for _, alignCorners := range []bool{false, true} {
		for inputSize := 1; inputSize <= 13; inputSize++ {
			for outputSize := 1; outputSize <= 29; outputSize++ {
				s := newAxisSampling(inputSize, outputSize, alignCorners)
				require.Equal(t, outputSize, s.size())
				for ii := range outputSize {
					require.GreaterOrEqual(t, s.low[ii], 0)
					require.Less(t, s.high[ii], inputSize)
					require.LessOrEqual(t, s.low[ii], s.high[ii])
					require.GreaterOrEqual(t, s.highWeight[ii], 0.0)
					require.Less(t, s.highWeight[ii], 1.0)
					require.InDelta(t, 1.0, s.lowWeight[ii]+s.highWeight[ii], 1e-12)
				}
				if alignCorners {
					// First and last outputs map exactly to the first and last inputs.
					require.Equal(t, 0, s.low[0])
					require.Equal(t, 0.0, s.highWeight[0])
					if outputSize > 1 {
						last := outputSize - 1
						require.InDelta(t, float64(inputSize-1),
							float64(s.low[last])+s.highWeight[last], 1e-9)
					}
				}
			}
		}
	}
}

// cornerWeights returns the weights of the 2^len(axes) corners used for the output at the given indices.
func cornerWeights(axes []axisSampling, indices []int) []float64 {
	weights := []float64{1}
	for axisIdx, axis := range axes {
		next := make([]float64, 0, 2*len(weights))
		for _, w := range weights {
			next = append(next, w*axis.lowWeight[indices[axisIdx]], w*axis.highWeight[indices[axisIdx]])
		}
		weights = next
	}
	return weights
}

func TestCornerWeightsSumToOne(t *testing.T) {
	for _, alignCorners := range []bool{false, true} {
		axes := []axisSampling{
			newAxisSampling(3, 7, alignCorners),
			newAxisSampling(4, 5, alignCorners),
			newAxisSampling(5, 2, alignCorners),
		}
		for z := range 7 {
			for y := range 5 {
				for x := range 2 {
					weights := cornerWeights(axes, []int{z, y, x})
					require.Len(t, weights, 8)
					require.InDelta(t, 1.0, floats.Sum(weights), 1e-12)
					weights2D := cornerWeights(axes[1:], []int{y, x})
					require.Len(t, weights2D, 4)
					require.InDelta(t, 1.0, floats.Sum(weights2D), 1e-12)
				}
			}
		}
	}
}
