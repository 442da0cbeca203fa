// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// resample computes the reference linear resampling of a tensor stored in a NumPy .npy file (or of a
// seeded random tensor), and optionally compares it to the output of a kernel under test.
//
// Usage:
//
//	resample -input=x.npy -size=8,6 -align_corners -output=y.npy
//	resample -random=2,3,4,4 -scale=2.5,1 -compare=kernel_output.npy -atol=1e-6
//	resample -golden_dir=/tmp/golden
//
// It exits with status 1 if the comparison fails.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/resample/pkg/core/resample"
	"github.com/gomlx/resample/pkg/core/resample/resampletest"
	"github.com/gomlx/resample/pkg/core/tensors"
	"github.com/gomlx/resample/pkg/core/tensors/numpy"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagInput  = flag.String("input", "", "NumPy .npy file with the tensor to resample. Float16, Float32 or Float64.")
	flagRandom = flag.String("random", "", "Comma-separated dimensions of a random normal Float32 input, used "+
		"instead of -input.")
	flagSeed   = flag.Uint64("seed", resampletest.Seed, "Seed for the -random input.")
	flagOutput = flag.String("output", "", "If set, the resampled tensor is saved to this NumPy .npy file.")

	flagScale = flag.String("scale", "", "Comma-separated scale factors of the 2 or 3 trailing spatial axes. "+
		"Only used if -size is not given.")
	flagSize = flag.String("size", "", "Comma-separated output dimensions of the 2 or 3 trailing spatial axes.")
	flagAlignCorners = flag.Bool("align_corners", false, "Align the corners of input and output, "+
		"instead of using half-pixel centers.")
	flagParallelism = flag.Int("parallelism", runtime.NumCPU(), "Number of parallel workers: 0 to disable "+
		"parallelism, -1 for no limit.")

	flagCompare = flag.String("compare", "", "NumPy .npy file with the output of a kernel under test, "+
		"compared to the resampled tensor with absolute tolerance -atol.")
	flagAtol = flag.Float64("atol", resampletest.ForwardTolerance, "Absolute tolerance used by -compare.")

	flagGoldenDir = flag.String("golden_dir", "", "If set, writes one .npz file (with arrays \"input\" and "+
		"\"output\") for each reference case to this directory, and exits.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagGoldenDir != "" {
		writeGoldenCases(*flagGoldenDir)
		return
	}
	ok, err := run()
	if err != nil {
		klog.Errorf("%+v", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

// run resamples the input, and returns false if the comparison with -compare failed.
// Errors are returned for invalid flags, unreadable files or invalid resampling arguments.
func run() (ok bool, err error) {
	input, err := loadInput()
	if err != nil {
		return false, errors.WithMessage(err, "failed to load input")
	}
	scale, err := parseFloats(*flagScale)
	if err != nil {
		return false, errors.WithMessage(err, "-scale")
	}
	outputSize, err := parseInts(*flagSize)
	if err != nil {
		return false, errors.WithMessage(err, "-size")
	}

	start := time.Now()
	output, err := resample.Linear(input).
		Scale(scale...).
		OutputSize(outputSize...).
		AlignCorners(*flagAlignCorners).
		Parallelism(*flagParallelism).
		Done()
	if err != nil {
		return false, errors.WithMessage(err, "failed to resample")
	}
	elapsed := time.Since(start)
	if *flagOutput != "" {
		if err = numpy.ToNpyFile(output, *flagOutput); err != nil {
			return false, err
		}
		klog.V(1).Infof("Saved output to %q", *flagOutput)
	}

	fmt.Println(titleStyle.Render("Linear Resample"))
	table := newResultsTable(false, lipgloss.Right, lipgloss.Left)
	table.Row(false, "input", input.Shape().String())
	table.Row(false, "input bytes", humanize.Bytes(uint64(input.Memory())))
	table.Row(false, "output", output.Shape().String())
	table.Row(false, "output bytes", humanize.Bytes(uint64(output.Memory())))
	table.Row(false, "# elements", humanize.Comma(int64(output.Size())))
	table.Row(false, "align_corners", strconv.FormatBool(*flagAlignCorners))
	table.Row(false, "elapsed", elapsed.String())

	ok = true
	if *flagCompare != "" {
		kernelOutput, err := numpy.FromNpyFile(*flagCompare)
		if err != nil {
			return false, errors.WithMessage(err, "-compare")
		}
		var maxDiff float64
		ok, maxDiff = tensors.AllClose(output, kernelOutput, *flagAtol)
		table.Row(!ok, "compare", *flagCompare)
		if !output.Shape().EqualDimensions(kernelOutput.Shape()) {
			table.Row(true, "compare shape", kernelOutput.Shape().String())
		}
		table.Row(!ok, "max |diff|", fmt.Sprintf("%g (atol=%g)", maxDiff, *flagAtol))
		if !ok {
			klog.Errorf("Output of %q differs from the reference: shapes %s and %s, max |diff|=%g > atol=%g",
				*flagCompare, output.Shape(), kernelOutput.Shape(), maxDiff, *flagAtol)
		}
	}
	fmt.Println(table.render())
	return ok, nil
}

// loadInput reads the input from -input or generates it from -random.
func loadInput() (*tensors.Tensor, error) {
	switch {
	case *flagInput != "" && *flagRandom != "":
		return nil, errors.New("only one of -input or -random can be set")
	case *flagInput != "":
		return numpy.FromNpyFile(*flagInput)
	case *flagRandom != "":
		dims, err := parseInts(*flagRandom)
		if err != nil {
			return nil, errors.WithMessage(err, "-random")
		}
		for _, dim := range dims {
			if dim <= 0 {
				return nil, errors.Errorf("-random=%q has invalid dimension %d", *flagRandom, dim)
			}
		}
		return tensors.RandomNormal(*flagSeed, dtypes.Float32, dims...), nil
	}
	return nil, errors.New("one of -input or -random must be set, see 'resample -help'")
}

// parseInts parses a comma-separated list of ints. An empty string returns nil.
func parseInts(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	values := make([]int, len(parts))
	for ii, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %q as a list of ints", value)
		}
		values[ii] = v
	}
	return values, nil
}

// parseFloats parses a comma-separated list of floats. An empty string returns nil.
func parseFloats(value string) ([]float64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	values := make([]float64, len(parts))
	for ii, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %q as a list of floats", value)
		}
		values[ii] = v
	}
	return values, nil
}
