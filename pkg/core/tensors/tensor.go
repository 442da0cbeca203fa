// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implements a host-only Tensor: a shape and the flat, row-major, data that goes with it.
//
// Tensors are the inputs and outputs of the resampling reference (see package resample), and they
// can be read from and written to NumPy files with the numpy sub-package.
//
// The flat data is stored as a Go slice of the type matching the tensor's DType:
// []float32, []float64, []float16.Float16 or []bfloat16.BFloat16 for the float types,
// and the usual Go types for the others.
package tensors

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/resample/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Tensor is a multidimensional array stored in host memory.
//
// Access to the data is synchronized, so a Tensor can be read concurrently, but the data handed to
// the access functions must not be retained after they return.
type Tensor struct {
	mu    sync.Mutex
	shape shapes.Shape

	// flat holds the array with actual data. Slice of the type for the dtype of the given shape.
	flat any
}

// FromShape returns a Tensor with the given shape, with the data initialized with zeros.
func FromShape(shape shapes.Shape) (t *Tensor) {
	if !shape.Ok() {
		panic(errors.New("invalid shape"))
	}
	goType := shape.DType.GoType()
	if goType == nil {
		exceptions.Panicf("tensors.FromShape(%s): dtype has no Go type", shape)
	}
	size := shape.Size()
	t = &Tensor{shape: shape.Clone()}
	t.flat = reflect.MakeSlice(reflect.SliceOf(goType), size, size).Interface()
	return
}

// Shape of the tensor.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType returns the DType of the tensor's shape.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Rank returns the rank of the tensor's shape.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// Size returns the number of elements in the tensor.
func (t *Tensor) Size() int { return t.shape.Size() }

// Memory returns the number of bytes used by the tensor's data.
func (t *Tensor) Memory() uintptr { return t.shape.Memory() }

// Ok returns whether the Tensor is valid: not nil and holding data.
func (t *Tensor) Ok() bool {
	return t != nil && t.shape.Ok() && t.flat != nil
}

// AssertValid panics if the tensor is nil or invalid.
func (t *Tensor) AssertValid() {
	if t == nil {
		exceptions.Panicf("tensor is nil")
	}
	if !t.shape.Ok() || t.flat == nil {
		exceptions.Panicf("tensor has an invalid shape or no data (shape=%s)", t.shape)
	}
}

// ConstFlatData calls accessFn with the flattened data as a slice of the Go type corresponding to the DType type.
// Even scalar values have a flattened data representation of one element.
// It locks the Tensor until accessFn returns.
//
// The data should not be changed, see Tensor.MutableFlatData for that.
func (t *Tensor) ConstFlatData(accessFn func(flat any)) {
	t.AssertValid()
	t.mu.Lock()
	defer t.mu.Unlock()
	accessFn(t.flat)
}

// MutableFlatData calls accessFn with the flattened data as a slice of the Go type corresponding to the DType type.
// It locks the Tensor until accessFn returns.
func (t *Tensor) MutableFlatData(accessFn func(flat any)) {
	t.AssertValid()
	t.mu.Lock()
	defer t.mu.Unlock()
	accessFn(t.flat)
}

// ConstFlatData is the "generics" version of Tensor.ConstFlatData.
//
// It panics if T doesn't match the tensor's DType.
func ConstFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	if t.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("ConstFlatData[%T] is incompatible with Tensor's dtype %s -- expected dtype %s",
			v, t.shape.DType, dtypes.FromGenericsType[T]())
	}
	t.ConstFlatData(func(anyFlat any) {
		accessFn(anyFlat.([]T))
	})
}

// MutableFlatData is the "generics" version of Tensor.MutableFlatData.
//
// It panics if T doesn't match the tensor's DType.
func MutableFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	if t.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("MutableFlatData[%T] is incompatible with Tensor's dtype %s -- expected dtype %s",
			v, t.shape.DType, dtypes.FromGenericsType[T]())
	}
	t.MutableFlatData(func(anyFlat any) {
		accessFn(anyFlat.([]T))
	})
}

// CopyFlatData returns a copy of the flat data of the Tensor.
//
// It will panic if the given generic type doesn't match the DType of the tensor.
func CopyFlatData[T dtypes.Supported](t *Tensor) []T {
	var flatCopy []T
	ConstFlatData(t, func(flat []T) {
		flatCopy = slices.Clone(flat)
	})
	return flatCopy
}

// FromFlatDataAndDimensions creates a tensor with the given dimensions, filled with the flattened values given in `data`.
// The data is copied to the Tensor.
// The `DType` is inferred from the `data` type.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) (t *Tensor) {
	dtype := dtypes.FromGenericsType[T]()
	shape := shapes.Make(dtype, dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("FromFlatDataAndDimensions(%s): data size is %d, but dimensions size is %d", shape, len(data), shape.Size())
	}
	t = FromShape(shape)
	MutableFlatData(t, func(flat []T) {
		copy(flat, data)
	})
	return
}

// MultiDimensionSlice lists the Go types a Tensor can be created from with FromValue.
// There are no recursions in generics' constraint definitions, so we enumerate up to 6 levels of slices.
type MultiDimensionSlice interface {
	float32 | float64 |
		[]float32 | []float64 |
		[][]float32 | [][]float64 |
		[][][]float32 | [][][]float64 |
		[][][][]float32 | [][][][]float64 |
		[][][][][]float32 | [][][][][]float64 |
		[][][][][][]float32 | [][][][][][]float64
}

// FromValue returns a tensor constructed from the given multi-dimension slice (or scalar).
// If the rank of the `value` is larger than 1, the shape of all sub-slices must be the same.
//
// It panics if the shape is not regular.
func FromValue[S MultiDimensionSlice](value S) *Tensor {
	return FromAnyValue(value)
}

// FromAnyValue is a non-generic version of FromValue.
// The input is expected to be either a scalar or a slice of slices with homogeneous dimensions.
// If the input is a tensor already, it is simply returned.
//
// It panics with an error if `value` type is unsupported or the shape is not regular.
func FromAnyValue(value any) (t *Tensor) {
	if valueT, ok := value.(*Tensor); ok {
		return valueT
	}
	shape, err := shapeForValue(value)
	if err != nil {
		panic(errors.Wrapf(err, "cannot create shape from %T", value))
	}
	t = FromShape(shape)
	t.MutableFlatData(func(flatAny any) {
		flatV := reflect.ValueOf(flatAny)
		if shape.IsScalar() {
			flatV.Index(0).Set(reflect.ValueOf(value))
			return
		}
		copySlicesRecursively(flatV, reflect.ValueOf(value), shape.Strides())
	})
	return
}

// copySlicesRecursively copy values on a multi-dimension slice to a flat data slice
// assuming the strides for each dimension.
func copySlicesRecursively(data reflect.Value, mdSlice reflect.Value, strides []int) {
	if len(strides) == 1 {
		reflect.Copy(data, mdSlice)
		return
	}
	subStrides := strides[1:]
	for ii := range mdSlice.Len() {
		subData := data.Slice(ii*strides[0], (ii+1)*strides[0])
		copySlicesRecursively(subData, mdSlice.Index(ii), subStrides)
	}
}

func shapeForValue(v any) (shape shapes.Shape, err error) {
	err = shapeForValueRecursive(&shape, reflect.ValueOf(v), reflect.TypeOf(v))
	return
}

func shapeForValueRecursive(shape *shapes.Shape, v reflect.Value, t reflect.Type) error {
	if t.Kind() != reflect.Slice {
		shape.DType = dtypes.FromGoType(t)
		if shape.DType == dtypes.InvalidDType {
			return errors.Errorf("cannot convert type %s to a tensor dtype", t)
		}
		return nil
	}

	t = t.Elem()
	if v.Len() == 0 {
		return errors.Errorf("value with empty slice not valid for Tensor conversion: %T", v.Interface())
	}
	shape.Dimensions = append(shape.Dimensions, v.Len())
	shapePrefix := shape.Clone()

	// The first element is the reference, the others must match it.
	if err := shapeForValueRecursive(shape, v.Index(0), t); err != nil {
		return err
	}
	for ii := 1; ii < v.Len(); ii++ {
		shapeTest := shapePrefix.Clone()
		if err := shapeForValueRecursive(&shapeTest, v.Index(ii), t); err != nil {
			return err
		}
		if !shape.Equal(shapeTest) {
			return errors.Errorf("sub-slices have irregular shapes, found shapes %q, and %q", shape, shapeTest)
		}
	}
	return nil
}

// Value returns a multidimensional slice (except if shape is a scalar) containing a copy of the values stored
// in the tensor.
// This is expensive, and usually only used for smaller tensors in tests and to print results.
func (t *Tensor) Value() any {
	var mdSlice any
	t.ConstFlatData(func(flat any) {
		flatV := reflect.ValueOf(flat)
		if t.shape.IsScalar() {
			mdSlice = flatV.Index(0).Interface()
			return
		}
		flatCopyV := reflect.MakeSlice(flatV.Type(), flatV.Len(), flatV.Len())
		reflect.Copy(flatCopyV, flatV)
		mdSlice = convertDataToSlices(flatCopyV, t.shape.Dimensions, t.shape.Strides()).Interface()
	})
	return mdSlice
}

// convertDataToSlices creates a multidimensional slice with the given dimensions that points to the given data.
func convertDataToSlices(data reflect.Value, dimensions, strides []int) reflect.Value {
	if len(dimensions) <= 1 {
		return data
	}
	resultT := data.Type()
	for range dimensions[1:] {
		resultT = reflect.SliceOf(resultT)
	}
	slice := reflect.MakeSlice(resultT, dimensions[0], dimensions[0])
	for ii := range dimensions[0] {
		subData := data.Slice(ii*strides[0], (ii+1)*strides[0])
		slice.Index(ii).Set(convertDataToSlices(subData, dimensions[1:], strides[1:]))
	}
	return slice
}

// Equal checks whether t == otherTensor: same shape and exactly the same values.
// If either are invalid (nil) it panics.
func (t *Tensor) Equal(otherTensor *Tensor) bool {
	t.AssertValid()
	otherTensor.AssertValid()
	if t == otherTensor {
		return true
	}
	if !t.shape.Equal(otherTensor.shape) {
		return false
	}
	equal := true
	t.ConstFlatData(func(flat0 any) {
		otherTensor.ConstFlatData(func(flat1 any) {
			equal = reflect.DeepEqual(flat0, flat1)
		})
	})
	return equal
}

// maxStringSize is the number of elements above which String only prints the shape and the first values.
const maxStringSize = 64

// String prints the shape and values of the tensor, or only the first few values for large tensors.
func (t *Tensor) String() string {
	if !t.Ok() {
		return "Tensor(invalid)"
	}
	if t.Size() <= maxStringSize {
		return fmt.Sprintf("%s: %v", t.shape, t.Value())
	}
	var prefix any
	t.ConstFlatData(func(flat any) {
		prefix = reflect.ValueOf(flat).Slice(0, maxStringSize).Interface()
	})
	return fmt.Sprintf("%s: %v ...", t.shape, prefix)
}
