// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package resample

import (
	"golang.org/x/exp/constraints"
)

// linear2D resamples the outer elements [outerStart, outerEnd) of input (shape [outer, inH, inW])
// into output (shape [outer, y.size(), x.size()]).
//
// The values are blended in float64: first along x within each of the two input rows, then along y.
func linear2D[T constraints.Float](input, output []T, outerStart, outerEnd int, inH, inW int, y, x axisSampling) {
	outH, outW := y.size(), x.size()
	inPlane, outPlane := inH*inW, outH*outW
	for outer := outerStart; outer < outerEnd; outer++ {
		in := input[outer*inPlane : (outer+1)*inPlane]
		out := output[outer*outPlane : (outer+1)*outPlane]
		outIdx := 0
		for oy := range outH {
			rowLow, rowHigh := in[y.low[oy]*inW:], in[y.high[oy]*inW:]
			wyLow, wyHigh := y.lowWeight[oy], y.highWeight[oy]
			for ox := range outW {
				ixLow, ixHigh := x.low[ox], x.high[ox]
				wxLow, wxHigh := x.lowWeight[ox], x.highWeight[ox]
				v0 := wxLow*float64(rowLow[ixLow]) + wxHigh*float64(rowLow[ixHigh])
				v1 := wxLow*float64(rowHigh[ixLow]) + wxHigh*float64(rowHigh[ixHigh])
				out[outIdx] = T(wyLow*v0 + wyHigh*v1)
				outIdx++
			}
		}
	}
}

// linear3D resamples the outer elements [outerStart, outerEnd) of input (shape [outer, inD, inH, inW])
// into output (shape [outer, z.size(), y.size(), x.size()]).
//
// The values are blended in float64: along x first, then y, then z.
func linear3D[T constraints.Float](input, output []T, outerStart, outerEnd int, inD, inH, inW int, z, y, x axisSampling) {
	outD, outH, outW := z.size(), y.size(), x.size()
	inVolume, outVolume := inD*inH*inW, outD*outH*outW
	inPlane := inH * inW
	for outer := outerStart; outer < outerEnd; outer++ {
		in := input[outer*inVolume : (outer+1)*inVolume]
		out := output[outer*outVolume : (outer+1)*outVolume]
		outIdx := 0
		for oz := range outD {
			planeLow, planeHigh := in[z.low[oz]*inPlane:], in[z.high[oz]*inPlane:]
			wzLow, wzHigh := z.lowWeight[oz], z.highWeight[oz]
			for oy := range outH {
				iyLow, iyHigh := y.low[oy]*inW, y.high[oy]*inW
				wyLow, wyHigh := y.lowWeight[oy], y.highWeight[oy]
				for ox := range outW {
					ixLow, ixHigh := x.low[ox], x.high[ox]
					wxLow, wxHigh := x.lowWeight[ox], x.highWeight[ox]

					v0 := wxLow*float64(planeLow[iyLow+ixLow]) + wxHigh*float64(planeLow[iyLow+ixHigh])
					v1 := wxLow*float64(planeLow[iyHigh+ixLow]) + wxHigh*float64(planeLow[iyHigh+ixHigh])
					v2 := wxLow*float64(planeHigh[iyLow+ixLow]) + wxHigh*float64(planeHigh[iyLow+ixHigh])
					v3 := wxLow*float64(planeHigh[iyHigh+ixLow]) + wxHigh*float64(planeHigh[iyHigh+ixHigh])

					vLow := wyLow*v0 + wyHigh*v1
					vHigh := wyLow*v2 + wyHigh*v3
					out[outIdx] = T(wzLow*vLow + wzHigh*vHigh)
					outIdx++
				}
			}
		}
	}
}
