// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package numpy allows one to read/write float tensors to Python's NumPy npy and npz file formats.
//
// Only the float dtypes NumPy knows about are supported: Float16 ('<f2'), Float32 ('<f4') and Float64 ('<f8').
// Data is always written little-endian in C (row-major) order. Fortran ordered files are accepted on read.
package numpy

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/resample/pkg/core/shapes"
	"github.com/gomlx/resample/pkg/core/tensors"
	"github.com/pkg/errors"
)

const magic = "\x93NUMPY"

// MaxDataBytes is the largest array data, in bytes, FromNpyReader accepts.
// Larger (or corrupt) shapes are reported as errors instead of attempting the allocation.
const MaxDataBytes = 1 << 34

// FromNpyFile reads a .npy file and returns a tensors.Tensor.
func FromNpyFile(filePath string) (*tensors.Tensor, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open .npy file %q", filePath)
	}
	defer func() { _ = file.Close() }()
	tensor, err := FromNpyReader(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "while reading %q", filePath)
	}
	return tensor, nil
}

// FromNpyReader reads a .npy file from an io.Reader and returns a tensors.Tensor.
func FromNpyReader(r io.Reader) (*tensors.Tensor, error) {
	preamble := make([]byte, len(magic)+2)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return nil, errors.Wrapf(err, "failed to read magic string")
	}
	if string(preamble[:len(magic)]) != magic {
		return nil, errors.Errorf("invalid .npy file format: magic string mismatch")
	}

	// Version 1.x uses a 2 bytes header length, later versions use 4 bytes.
	var headerLen int
	switch major := preamble[len(magic)]; {
	case major == 1:
		var l uint16
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, errors.Wrapf(err, "failed to read header length (v1.0)")
		}
		headerLen = int(l)
	case major >= 2:
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, errors.Wrapf(err, "failed to read header length (v2.0+)")
		}
		if l > 1<<20 {
			return nil, errors.Errorf("header length %d too large", l)
		}
		headerLen = int(l)
	default:
		return nil, errors.Errorf("unsupported .npy version: %d.%d", major, preamble[len(magic)+1])
	}

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, errors.Wrapf(err, "failed to read header")
	}
	dtypeStr, dims, fortranOrder, err := parseNpyHeader(string(headerBytes))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse .npy header")
	}
	if strings.HasPrefix(dtypeStr, ">") {
		return nil, errors.Errorf("big-endian .npy files (%q) are not supported", dtypeStr)
	}
	dtype, err := npyDTypeToDType(dtypeStr)
	if err != nil {
		return nil, err
	}
	size := 1
	for _, dim := range dims {
		if dim <= 0 {
			return nil, errors.Errorf("zero-sized .npy arrays (shape %v) are not supported", dims)
		}
		if size > math.MaxInt/dim {
			return nil, errors.Errorf(".npy shape %v overflows the number of elements", dims)
		}
		size *= dim
	}
	if uint64(size) > MaxDataBytes/uint64(dtype.Memory()) {
		return nil, errors.Errorf(".npy shape %v of %s needs more than the maximum of %d bytes", dims, dtype, uint64(MaxDataBytes))
	}

	tensor := tensors.FromShape(shapes.Make(dtype, dims...))
	tensor.MutableFlatData(func(flat any) {
		err = binary.Read(r, binary.LittleEndian, flat)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tensor data for %s", tensor.Shape())
	}
	if fortranOrder && len(dims) > 1 {
		tensor = fortranToCOrder(tensor)
	}
	return tensor, nil
}

// fortranToCOrder returns a new tensor with the data of t, read in column-major order, rearranged in row-major order.
func fortranToCOrder(t *tensors.Tensor) *tensors.Tensor {
	shape := t.Shape()
	fortranStrides := make([]int, shape.Rank())
	stride := 1
	for axis, dim := range shape.Dimensions {
		fortranStrides[axis] = stride
		stride *= dim
	}
	output := tensors.FromShape(shape)
	t.ConstFlatData(func(fortranFlat any) {
		output.MutableFlatData(func(cFlat any) {
			fortranV, cV := reflect.ValueOf(fortranFlat), reflect.ValueOf(cFlat)
			for cIdx, indices := range shape.Iter() {
				fortranIdx := 0
				for axis, idx := range indices {
					fortranIdx += idx * fortranStrides[axis]
				}
				cV.Index(cIdx).Set(fortranV.Index(fortranIdx))
			}
		})
	})
	return output
}

var (
	reDescr   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	reFortran = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	reShape   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// parseNpyHeader parses the Python dict literal in the header, e.g.:
// "{'descr': '<f4', 'fortran_order': False, 'shape': (1, 2, 3), }"
func parseNpyHeader(header string) (dtype string, dims []int, fortranOrder bool, err error) {
	m := reDescr.FindStringSubmatch(header)
	if len(m) < 2 {
		err = errors.Errorf("could not find 'descr' in header: %q", header)
		return
	}
	dtype = m[1]

	m = reFortran.FindStringSubmatch(header)
	if len(m) < 2 {
		err = errors.Errorf("could not find 'fortran_order' in header: %q", header)
		return
	}
	fortranOrder = m[1] == "True"

	m = reShape.FindStringSubmatch(header)
	if len(m) < 2 {
		err = errors.Errorf("could not find 'shape' in header: %q", header)
		return
	}
	dims = []int{}
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			// Trailing comma, as in "(10,)".
			continue
		}
		var dim int
		dim, err = strconv.Atoi(part)
		if err != nil {
			err = errors.Wrapf(err, "invalid shape value %q in header", part)
			return
		}
		dims = append(dims, dim)
	}
	return
}

// npyDTypeToDType converts a NumPy dtype string to a dtypes.DType.
func npyDTypeToDType(npyType string) (dtypes.DType, error) {
	switch strings.TrimLeft(npyType, "<=|") {
	case "f2":
		return dtypes.Float16, nil
	case "f4":
		return dtypes.Float32, nil
	case "f8":
		return dtypes.Float64, nil
	}
	return dtypes.InvalidDType, errors.Errorf("unsupported NumPy dtype %q: only float types are supported", npyType)
}

// dtypeToNpy converts a dtypes.DType to a little-endian NumPy dtype string.
func dtypeToNpy(dtype dtypes.DType) (string, error) {
	switch dtype {
	case dtypes.Float16:
		return "<f2", nil
	case dtypes.Float32:
		return "<f4", nil
	case dtypes.Float64:
		return "<f8", nil
	case dtypes.BFloat16:
		return "", errors.Errorf("NumPy has no standard dtype for %s", dtype)
	}
	return "", errors.Errorf("unsupported DType for .npy: %s", dtype)
}

// ToNpyWriter serializes a tensors.Tensor to an io.Writer in .npy format (version 1.0).
func ToNpyWriter(tensor *tensors.Tensor, w io.Writer) error {
	shape := tensor.Shape()
	npyDType, err := dtypeToNpy(shape.DType)
	if err != nil {
		return err
	}

	var shapeTuple string
	switch shape.Rank() {
	case 0:
		shapeTuple = "()"
	case 1:
		shapeTuple = fmt.Sprintf("(%d,)", shape.Dimensions[0])
	default:
		parts := make([]string, shape.Rank())
		for i, dim := range shape.Dimensions {
			parts[i] = strconv.Itoa(dim)
		}
		shapeTuple = fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	}

	// Magic (6) + version (2) + header length (2) + header must be a multiple of 16, ending with a newline.
	var header bytes.Buffer
	fmt.Fprintf(&header, "{'descr': '%s', 'fortran_order': False, 'shape': %s, }", npyDType, shapeTuple)
	for (len(magic)+4+header.Len()+1)%16 != 0 {
		header.WriteByte(' ')
	}
	header.WriteByte('\n')

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(header.Len()))
	buf.Write(header.Bytes())
	tensor.ConstFlatData(func(flat any) {
		err = binary.Write(&buf, binary.LittleEndian, flat)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to encode tensor data for %s", shape)
	}
	if _, err = w.Write(buf.Bytes()); err != nil {
		return errors.Wrapf(err, "failed to write .npy data")
	}
	return nil
}

// ToNpyFile serializes a tensors.Tensor to a .npy file.
func ToNpyFile(tensor *tensors.Tensor, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create .npy file %q", filePath)
	}
	if err = ToNpyWriter(tensor, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "failed to close .npy file %q", filePath)
}

// ToNpzFile serializes a map of tensors to a .npz file: a zip archive with one .npy file per tensor.
func ToNpzFile(tensorsMap map[string]*tensors.Tensor, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create .npz file %q", filePath)
	}
	if err = ToNpzWriter(tensorsMap, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "failed to close .npz file %q", filePath)
}

// ToNpzWriter serializes a map of tensors to an io.Writer as a .npz archive.
func ToNpzWriter(tensorsMap map[string]*tensors.Tensor, w io.Writer) error {
	zipWriter := zip.NewWriter(w)
	for name, tensor := range tensorsMap {
		npyName := name + ".npy"
		fileWriter, err := zipWriter.Create(npyName)
		if err != nil {
			return errors.Wrapf(err, "failed to create %q in .npz archive", npyName)
		}
		if err := ToNpyWriter(tensor, fileWriter); err != nil {
			return errors.WithMessagef(err, "failed to write tensor %q to .npz archive", name)
		}
	}
	return errors.Wrapf(zipWriter.Close(), "failed to close zip archive")
}

// FromNpzFile reads a .npz file and returns a map of tensor names to tensors.
func FromNpzFile(filePath string) (map[string]*tensors.Tensor, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open .npz file %q", filePath)
	}
	defer func() { _ = file.Close() }()
	info, err := file.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat .npz file %q", filePath)
	}
	return FromNpzReader(file, info.Size())
}

// FromNpzReader reads a .npz archive of the given size, returning a map of tensor names to tensors.
// Entries in the archive that are not .npy files are ignored.
func FromNpzReader(r io.ReaderAt, size int64) (map[string]*tensors.Tensor, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create zip reader for .npz")
	}
	results := make(map[string]*tensors.Tensor)
	for _, f := range zipReader.File {
		cleanPath := path.Clean(f.Name)
		if path.IsAbs(cleanPath) || strings.HasPrefix(cleanPath, "..") {
			return nil, errors.Errorf("invalid path in .npz archive: %q", f.Name)
		}
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %q within .npz", f.Name)
		}
		tensor, err := FromNpyReader(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to read tensor %q from .npz", f.Name)
		}
		results[strings.TrimSuffix(f.Name, ".npy")] = tensor
	}
	return results, nil
}
