// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comp

import (
	"fmt"

	"github.com/emer/pcnet/randkey"
)

// Snapshot is the minimal persisted state of one unit: the slots that
// must survive across runs and, for stochastic units, their key.
type Snapshot struct {

	// name of the unit the snapshot was taken from
	Unit string `json:"unit"`

	// persisted slot values, by slot name
	Tensors map[string]*SnapTensor `json:"tensors,omitempty"`

	// pseudorandom key, if the unit persists one
	Key *randkey.Key `json:"key,omitempty"`
}

// SnapTensor is a shape plus values copied out of a Slot.
type SnapTensor struct {
	Shape  []int     `json:"shape"`
	Values []float32 `json:"values"`
}

// NewSnapshot returns an empty snapshot for given unit.
func NewSnapshot(unit string) *Snapshot {
	return &Snapshot{Unit: unit, Tensors: map[string]*SnapTensor{}}
}

// AddSlot copies the current values of the slot into the snapshot.
func (sn *Snapshot) AddSlot(sl *Slot) {
	shp := make([]int, len(sl.Shape()))
	copy(shp, sl.Shape())
	sn.Tensors[sl.Nm] = &SnapTensor{Shape: shp, Values: sl.CopyValues()}
}

// SetKey records the key in the snapshot.
func (sn *Snapshot) SetKey(k randkey.Key) {
	kc := k
	sn.Key = &kc
}

// RestoreSlot copies the snapshot values for the slot back into it.
// Snapshot data is external input, so a missing entry or a shape
// mismatch is returned as an error rather than raised.
func (sn *Snapshot) RestoreSlot(sl *Slot) error {
	st, ok := sn.Tensors[sl.Nm]
	if !ok {
		return fmt.Errorf("snapshot of %s: no values for slot %s", sn.Unit, sl.Nm)
	}
	if !SameShape(st.Shape, sl.Shape()) || len(st.Values) != sl.Len() {
		return fmt.Errorf("snapshot of %s: slot %s has shape %v, snapshot has %v", sn.Unit, sl.Nm, sl.Shape(), st.Shape)
	}
	sl.Set(st.Shape, st.Values)
	return nil
}
