// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comp

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// ShapeError is the panic value raised when values of the wrong shape
// are assigned to a Slot.  The shape of a slot is fixed when it is
// constructed, and violating it is a programming error.
type ShapeError struct {
	Slot string
	Want []int
	Got  []int
}

func (se *ShapeError) Error() string {
	return fmt.Sprintf("slot %s: cannot assign shape %v to slot of shape %v", se.Slot, se.Got, se.Want)
}

// Slot is a named compartment of state: a float32 tensor whose shape is
// fixed at construction, typically (batch, units) or, for windowed
// state, (window, batch, units).  Values are stored in row-major order.
type Slot struct {

	// name of the slot, unique within its unit
	Nm string

	// value restored by Reset
	Rest float32

	// the values
	Tsr *etensor.Float32
}

// NewSlot returns a new slot of given shape with all values at rest.
func NewSlot(name string, rest float32, shape ...int) *Slot {
	sl := &Slot{Nm: name, Rest: rest}
	sl.Tsr = etensor.NewFloat32(shape, nil, nil)
	sl.Reset()
	return sl
}

func (sl *Slot) Name() string { return sl.Nm }

// Shape returns the fixed shape of the slot.
func (sl *Slot) Shape() []int { return sl.Tsr.Shapes() }

// Len returns the total number of values.
func (sl *Slot) Len() int { return sl.Tsr.Len() }

// Values returns the underlying values.  Writes through this slice
// bypass the shape contract and are reserved for the owning unit.
func (sl *Slot) Values() []float32 { return sl.Tsr.Values }

// Value returns the value at given index, one int per dimension.
func (sl *Slot) Value(idx ...int) float32 { return sl.Tsr.Value(idx) }

// Reset sets all values to the rest value.
func (sl *Slot) Reset() {
	sl.Fill(sl.Rest)
}

// Fill sets all values to v.
func (sl *Slot) Fill(v float32) {
	vals := sl.Tsr.Values
	for i := range vals {
		vals[i] = v
	}
}

// Set copies vals, laid out with given shape, into the slot.
// Panics with a *ShapeError if shape differs from the slot shape
// or vals does not hold exactly that many values.
func (sl *Slot) Set(shape []int, vals []float32) {
	if !SameShape(shape, sl.Shape()) || len(vals) != sl.Len() {
		panic(&ShapeError{Slot: sl.Nm, Want: sl.Shape(), Got: shapeOf(shape, vals)})
	}
	copy(sl.Tsr.Values, vals)
}

// SetTensor copies the given tensor into the slot, enforcing shape.
func (sl *Slot) SetTensor(tsr *etensor.Float32) {
	sl.Set(tsr.Shapes(), tsr.Values)
}

// SetValues copies vals, assumed to be laid out in the slot's own shape.
// Panics with a *ShapeError if the number of values differs.
func (sl *Slot) SetValues(vals []float32) {
	if len(vals) != sl.Len() {
		panic(&ShapeError{Slot: sl.Nm, Want: sl.Shape(), Got: []int{len(vals)}})
	}
	copy(sl.Tsr.Values, vals)
}

// CopyValues returns a copy of the values.
func (sl *Slot) CopyValues() []float32 {
	cp := make([]float32, sl.Len())
	copy(cp, sl.Tsr.Values)
	return cp
}

// Bytes returns the memory used by the slot values.
func (sl *Slot) Bytes() int {
	return 4 * sl.Len()
}

// SameShape returns true if the two shapes are identical.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// shapeOf reports the offending shape, falling back on the flat length
// when the declared shape does not describe vals.
func shapeOf(shape []int, vals []float32) []int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(vals) {
		return []int{len(vals)}
	}
	return shape
}
