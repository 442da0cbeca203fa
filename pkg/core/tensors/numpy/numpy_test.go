// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numpy

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/resample/pkg/core/tensors"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestNpyRoundTrip(t *testing.T) {
	for _, dtype := range []dtypes.DType{dtypes.Float16, dtypes.Float32, dtypes.Float64} {
		t.Run(dtype.String(), func(t *testing.T) {
			want := tensors.RandomNormal(313, dtype, 2, 3, 4)
			var buf bytes.Buffer
			require.NoError(t, ToNpyWriter(want, &buf))
			// Preamble and header are padded to a multiple of 16 bytes.
			require.Zero(t, (buf.Len()-int(want.Memory()))%16)
			got, err := FromNpyReader(&buf)
			require.NoError(t, err)
			require.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestNpyFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "x.npy")
	want := tensors.FromValue([]float32{1, 2, 3})
	require.NoError(t, ToNpyFile(want, filePath))
	got := must.M1(FromNpyFile(filePath))
	require.Equal(t, []float32{1, 2, 3}, got.Value())

	_, err := FromNpyFile(filepath.Join(t.TempDir(), "missing.npy"))
	require.Error(t, err)
}

func TestNpyScalar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToNpyWriter(tensors.FromValue(3.5), &buf))
	got := must.M1(FromNpyReader(&buf))
	require.True(t, got.Shape().IsScalar())
	require.Equal(t, 3.5, got.Value())
}

// npyBytes builds a version 1.0 .npy file with the given header dict and raw data.
func npyBytes(header string, data any) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	_ = binary.Write(&buf, binary.LittleEndian, data)
	return buf.Bytes()
}

func TestNpyFortranOrder(t *testing.T) {
	// Column-major layout of [[1, 2, 3], [4, 5, 6]].
	contents := npyBytes("{'descr': '<f8', 'fortran_order': True, 'shape': (2, 3), }\n",
		[]float64{1, 4, 2, 5, 3, 6})
	got := must.M1(FromNpyReader(bytes.NewReader(contents)))
	require.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, got.Value())
}

func TestNpyErrors(t *testing.T) {
	_, err := FromNpyReader(bytes.NewReader([]byte("not a npy file")))
	require.Error(t, err)

	contents := npyBytes("{'descr': '<i4', 'fortran_order': False, 'shape': (2,), }\n", []int32{1, 2})
	_, err = FromNpyReader(bytes.NewReader(contents))
	require.ErrorContains(t, err, "unsupported NumPy dtype")

	contents = npyBytes("{'descr': '>f4', 'fortran_order': False, 'shape': (2,), }\n", []float32{1, 2})
	_, err = FromNpyReader(bytes.NewReader(contents))
	require.ErrorContains(t, err, "big-endian")

	contents = npyBytes("{'descr': '<f4', 'fortran_order': False, 'shape': (4,), }\n", []float32{1, 2})
	_, err = FromNpyReader(bytes.NewReader(contents))
	require.Error(t, err)

	// Shapes whose number of elements overflows, or whose data is too large, are rejected before allocating.
	contents = npyBytes("{'descr': '<f4', 'fortran_order': False, 'shape': (4294967296, 4294967296), }\n", []float32{})
	_, err = FromNpyReader(bytes.NewReader(contents))
	require.ErrorContains(t, err, "overflows")
	contents = npyBytes("{'descr': '<f4', 'fortran_order': False, 'shape': (4611686018427387904,), }\n", []float32{})
	_, err = FromNpyReader(bytes.NewReader(contents))
	require.ErrorContains(t, err, "maximum")
	contents = npyBytes("{'descr': '<f8', 'fortran_order': False, 'shape': (65536, 65536), }\n", []float64{})
	_, err = FromNpyReader(bytes.NewReader(contents))
	require.ErrorContains(t, err, "maximum")

	bf16 := tensors.FromFloat64s(dtypes.BFloat16, []float64{1, 2}, 2)
	require.Error(t, ToNpyWriter(bf16, &bytes.Buffer{}))
}

func TestNpz(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "case.npz")
	input := tensors.RandomNormal(1, dtypes.Float32, 3, 3)
	output := tensors.RandomNormal(2, dtypes.Float32, 2, 1)
	require.NoError(t, ToNpzFile(map[string]*tensors.Tensor{"input": input, "output": output}, filePath))

	got := must.M1(FromNpzFile(filePath))
	require.Len(t, got, 2)
	require.True(t, input.Equal(got["input"]))
	require.True(t, output.Equal(got["output"]))
}
