// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package resample computes reference outputs of a linear-interpolation resize of the trailing 2 (height, width)
// or 3 (depth, height, width) spatial axes of a tensor.
//
// The leading axes (batch, channels, ...) form the "outer shape" and are preserved.
// 2D resizes are bilinear interpolations, and 3D resizes are trilinear interpolations.
//
// Example:
//
//	// images shaped [batch=2, channels=3, height=4, width=4]
//	output, err := resample.Linear(images).OutputSize(8, 6).AlignCorners(true).Done()
//	// output shaped [2, 3, 8, 6]
//
// Output coordinates are mapped to input coordinates in one of two ways:
//
//   - AlignCorners(false) (the default): half-pixel centers, output index d maps to
//     max(0, scale*(d+0.5)-0.5), with scale = inputSize/outputSize.
//   - AlignCorners(true): the first and last output samples map exactly to the first and last input samples,
//     d maps to scale*d, with scale = (inputSize-1)/(outputSize-1).
//
// An axis resized to 1 always samples the first input element along that axis.
package resample

import (
	"math"
	"runtime"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/resample/internal/workerspool"
	"github.com/gomlx/resample/pkg/core/shapes"
	"github.com/gomlx/resample/pkg/core/tensors"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"
)

// ErrInvalidArgument is wrapped by all errors caused by invalid parameters.
// Use errors.Is(err, ErrInvalidArgument) to check for it.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgumentf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// minOutputsPerTask is the minimum number of output elements computed by one parallel task.
const minOutputsPerTask = 16 * 1024

// Config for a linear resampling, created with Linear and executed with Done.
//
// Between its construction and execution one can set the various parameters of the resampling.
type Config struct {
	input        *tensors.Tensor
	scale        []float64
	outputSize   []int
	alignCorners bool
	parallelism  int
}

// Linear creates the configuration to resample the trailing spatial axes of input using linear interpolation.
//
// Either Config.Scale or Config.OutputSize must be set: their length (2 or 3) defines the number of spatial axes.
// Call Config.Done to compute the output.
func Linear(input *tensors.Tensor) *Config {
	return &Config{
		input:       input,
		parallelism: runtime.NumCPU(),
	}
}

// Scale sets the scale factor for each spatial axis: the output size of axis i is floor(scale[i] * inputSize[i]).
// It is only used if OutputSize is not set.
//
// It returns the Config passed, to allow cascaded method calls.
func (c *Config) Scale(scale ...float64) *Config {
	c.scale = slices.Clone(scale)
	return c
}

// OutputSize sets the output dimensions of the spatial axes. If set, it takes precedence over Scale.
//
// It returns the Config passed, to allow cascaded method calls.
func (c *Config) OutputSize(outputSize ...int) *Config {
	c.outputSize = slices.Clone(outputSize)
	return c
}

// AlignCorners configures how output coordinates are mapped to input coordinates: if true, the centers of the
// corner elements of the input and output are aligned, preserving the values at the corners.
// If false, half-pixel centers are used.
//
// Default is false.
//
// It returns the Config passed, to allow cascaded method calls.
func (c *Config) AlignCorners(alignCorners bool) *Config {
	c.alignCorners = alignCorners
	return c
}

// Parallelism sets the soft-limit of parallel workers used to compute the output.
// If 0 the output is computed in the calling goroutine, if negative there is no limit.
// The output is the same regardless of the parallelism.
//
// Default is runtime.NumCPU().
//
// It returns the Config passed, to allow cascaded method calls.
func (c *Config) Parallelism(parallelism int) *Config {
	c.parallelism = parallelism
	return c
}

// Resample is a shortcut to Linear(input).Scale(scale...).OutputSize(outputSize...).AlignCorners(alignCorners).Done().
//
// A nil (or empty) scale or outputSize means it is not given, and at least one of them must be.
func Resample(input *tensors.Tensor, scale []float64, outputSize []int, alignCorners bool) (*tensors.Tensor, error) {
	return Linear(input).Scale(scale...).OutputSize(outputSize...).AlignCorners(alignCorners).Done()
}

// OutputSize returns the dimensions of the spatial axes of the output for an input with the given shape.
//
// If outputSize is given it is validated and returned. Otherwise, it is derived from scale,
// as floor(scale[i] * inputSize[i]) for each spatial axis.
//
// Errors wrap ErrInvalidArgument.
func OutputSize(inputShape shapes.Shape, scale []float64, outputSize []int) ([]int, error) {
	if len(scale) == 0 && len(outputSize) == 0 {
		return nil, invalidArgumentf("resample: either scale or output size must be given")
	}
	if len(scale) > 0 && len(scale) != 2 && len(scale) != 3 {
		return nil, invalidArgumentf("resample: only 2D or 3D resampling supported, got scale %v", scale)
	}
	if len(outputSize) > 0 && len(outputSize) != 2 && len(outputSize) != 3 {
		return nil, invalidArgumentf("resample: only 2D or 3D resampling supported, got output size %v", outputSize)
	}
	if len(scale) > 0 && len(outputSize) > 0 && len(scale) != len(outputSize) {
		return nil, invalidArgumentf("resample: scale %v and output size %v have different ranks", scale, outputSize)
	}
	spatialRank := max(len(scale), len(outputSize))
	if inputShape.Rank() < spatialRank {
		return nil, invalidArgumentf("resample: input shape %s has rank smaller than the %d spatial axes",
			inputShape, spatialRank)
	}
	if len(outputSize) > 0 {
		for axis, size := range outputSize {
			if size < 1 {
				return nil, invalidArgumentf("resample: output size %v has invalid value %d for spatial axis %d",
					outputSize, size, axis)
			}
		}
		return slices.Clone(outputSize), nil
	}

	_, spatialShape := inputShape.SplitAt(-spatialRank)
	derived := make([]int, spatialRank)
	for axis, s := range scale {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, invalidArgumentf("resample: scale %v has invalid value %g for spatial axis %d", scale, s, axis)
		}
		size := math.Floor(s * float64(spatialShape.Dimensions[axis]))
		if size > math.MaxInt32 {
			return nil, invalidArgumentf("resample: scale %v applied to input shape %s yields output size %g for spatial axis %d, too large",
				scale, inputShape, size, axis)
		}
		derived[axis] = int(size)
		if derived[axis] < 1 {
			return nil, invalidArgumentf("resample: scale %v applied to input shape %s yields output size %d for spatial axis %d",
				scale, inputShape, derived[axis], axis)
		}
	}
	return derived, nil
}

// Done validates the configuration and computes the resampled tensor.
// The output has the same outer shape and dtype as the input, and the spatial dimensions given or derived
// by Config.OutputSize or Config.Scale.
//
// Errors wrap ErrInvalidArgument, and no output is created in that case.
func (c *Config) Done() (output *tensors.Tensor, err error) {
	if !c.input.Ok() {
		return nil, invalidArgumentf("resample: input tensor is nil or invalid")
	}
	inputShape := c.input.Shape()
	if !tensors.IsFloat(inputShape.DType) {
		return nil, invalidArgumentf("resample: input dtype %s is not supported, only float dtypes are", inputShape.DType)
	}
	outputSize, err := OutputSize(inputShape, c.scale, c.outputSize)
	if err != nil {
		return nil, err
	}
	outerShape, spatialShape := inputShape.SplitAt(-len(outputSize))
	outputShape := shapes.ConcatenateDimensions(outerShape, shapes.Make(inputShape.DType, outputSize...))
	klog.V(1).Infof("resample.Linear: %s -> %s, alignCorners=%v", inputShape, outputShape, c.alignCorners)

	err = exceptions.TryCatch[error](func() {
		r := &resampler{
			outerSize:   outerShape.Size(),
			inputDims:   spatialShape.Dimensions,
			pool:        workerspool.NewWithParallelism(c.parallelism),
			outputShape: outputShape,
		}
		for axis, inputDim := range spatialShape.Dimensions {
			r.axes = append(r.axes, newAxisSampling(inputDim, outputSize[axis], c.alignCorners))
		}
		output = r.run(c.input)
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "resample.Linear(%s -> %s)", inputShape, outputShape)
	}
	return output, nil
}

// resampler executes a validated resampling.
type resampler struct {
	outerSize   int
	inputDims   []int
	axes        []axisSampling
	outputShape shapes.Shape
	pool        *workerspool.Pool
}

// run dispatches on the dtype of the input. Float16 and BFloat16 are converted to float32 and back.
func (r *resampler) run(input *tensors.Tensor) *tensors.Tensor {
	switch input.DType() {
	case dtypes.Float32:
		output := tensors.FromShape(r.outputShape)
		tensors.ConstFlatData(input, func(in []float32) {
			tensors.MutableFlatData(output, func(out []float32) { resampleFlat(r, in, out) })
		})
		return output
	case dtypes.Float64:
		output := tensors.FromShape(r.outputShape)
		tensors.ConstFlatData(input, func(in []float64) {
			tensors.MutableFlatData(output, func(out []float64) { resampleFlat(r, in, out) })
		})
		return output
	case dtypes.Float16:
		var in []float32
		tensors.ConstFlatData(input, func(flat []float16.Float16) {
			in = make([]float32, len(flat))
			for ii, v := range flat {
				in[ii] = v.Float32()
			}
		})
		out := make([]float32, r.outputShape.Size())
		resampleFlat(r, in, out)
		output := tensors.FromShape(r.outputShape)
		tensors.MutableFlatData(output, func(flat []float16.Float16) {
			for ii, v := range out {
				flat[ii] = float16.Fromfloat32(v)
			}
		})
		return output
	case dtypes.BFloat16:
		var in []float32
		tensors.ConstFlatData(input, func(flat []bfloat16.BFloat16) {
			in = make([]float32, len(flat))
			for ii, v := range flat {
				in[ii] = v.Float32()
			}
		})
		out := make([]float32, r.outputShape.Size())
		resampleFlat(r, in, out)
		output := tensors.FromShape(r.outputShape)
		tensors.MutableFlatData(output, func(flat []bfloat16.BFloat16) {
			for ii, v := range out {
				flat[ii] = bfloat16.FromFloat32(v)
			}
		})
		return output
	}
	exceptions.Panicf("resample: dtype %s not supported", input.DType())
	return nil
}

// resampleFlat splits the outer elements among the workers, and runs the 2D or 3D kernel on each chunk.
func resampleFlat[T float32 | float64](r *resampler, in, out []T) {
	var kernel func(start, end int)
	switch len(r.axes) {
	case 2:
		kernel = func(start, end int) {
			linear2D(in, out, start, end, r.inputDims[0], r.inputDims[1], r.axes[0], r.axes[1])
		}
	case 3:
		kernel = func(start, end int) {
			linear3D(in, out, start, end, r.inputDims[0], r.inputDims[1], r.inputDims[2], r.axes[0], r.axes[1], r.axes[2])
		}
	default:
		exceptions.Panicf("resample: %d spatial axes not supported", len(r.axes))
	}
	outputVolume := 1
	for _, axis := range r.axes {
		outputVolume *= axis.size()
	}
	minOuterPerTask := (minOutputsPerTask + outputVolume - 1) / outputVolume
	r.pool.Split(r.outerSize, minOuterPerTask, kernel)
}
