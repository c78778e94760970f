// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package comp defines the state slots (compartments) and lifecycle shared by
all simulated units.

Every unit follows the same update convention: a pure Step function on the
unit's parameters maps the current slot values (a State value copy) plus
time, step size and, for stochastic units, a randkey.Key, to new values.
The unit then Commits those values into its slots.  Advance does both.
Reset restores the rest condition, and units with slower time-scale
adaptation also implement Evolver.
*/
package comp

import (
	"fmt"
	"log"

	"github.com/emer/pcnet/randkey"
)

// Unit is a simulated computational module that owns a fixed set of slots.
type Unit interface {
	// Name returns the unit's name, stable for its lifetime.
	Name() string

	// TypeName returns the kind of unit, e.g., LIF.  Used for params selection.
	TypeName() string

	// Class returns the space separated class tags, used for params selection.
	Class() string

	// Slots returns all of the unit's slots.
	Slots() []*Slot

	// SlotByName returns the named slot, or an error if there is none.
	SlotByName(name string) (*Slot, error)

	// Advance runs one simulation step at time tm.T with step tm.Dt,
	// committing the new values into the unit's slots.  The returned key
	// replaces the one passed in, which must not be used again.
	Advance(tm *Time, key randkey.Key) (randkey.Key, error)

	// Reset returns all slots to their rest values.
	Reset()
}

// Evolver is implemented by units with a slower time-scale update,
// typically invoked at episode boundaries.
type Evolver interface {
	Evolve(tm *Time) error
}

// Validator is implemented by units that can detect configurations that
// are valid to construct but will not behave as requested for a given
// step size.  It does not stop construction or simulation.
type Validator interface {
	Validate(dt float32) (bool, string)
}

// Persister is implemented by units that carry state across runs.
type Persister interface {
	Name() string
	Snapshot() *Snapshot
	Restore(sn *Snapshot) error
}

// Base provides the shared naming and slot bookkeeping for units.
type Base struct {

	// name of the unit
	Nm string

	// space separated class tags for params selection
	Cls string

	// number of units in the population
	NUnits int

	// batch size
	BatchSize int

	// all slots, in creation order
	SlotList []*Slot
}

// InitBase sets the name and population shape.
func (ub *Base) InitBase(name string, nUnits, batch int) {
	ub.Nm = name
	ub.NUnits = nUnits
	ub.BatchSize = batch
	ub.SlotList = nil
}

func (ub *Base) Name() string        { return ub.Nm }
func (ub *Base) Class() string       { return ub.Cls }
func (ub *Base) SetClass(cls string) { ub.Cls = cls }
func (ub *Base) Slots() []*Slot      { return ub.SlotList }
func (ub *Base) Shape() []int        { return []int{ub.BatchSize, ub.NUnits} }
func (ub *Base) Label() string       { return ub.Nm }
func (ub *Base) NValues() int        { return ub.BatchSize * ub.NUnits }

// AddSlot adds the slot to the unit.
func (ub *Base) AddSlot(sl *Slot) *Slot {
	ub.SlotList = append(ub.SlotList, sl)
	return sl
}

// NewSlot adds a new (batch, units) shaped slot with given rest value.
func (ub *Base) NewSlot(name string, rest float32) *Slot {
	return ub.AddSlot(NewSlot(name, rest, ub.BatchSize, ub.NUnits))
}

// SlotByName returns the named slot, emitting a log message
// and returning an error if not found.
func (ub *Base) SlotByName(name string) (*Slot, error) {
	for _, sl := range ub.SlotList {
		if sl.Nm == name {
			return sl, nil
		}
	}
	err := fmt.Errorf("Slot named: %v not found in unit: %v", name, ub.Nm)
	log.Println(err)
	return nil, err
}

// ResetSlots resets all slots to their rest values.
func (ub *Base) ResetSlots() {
	for _, sl := range ub.SlotList {
		sl.Reset()
	}
}

// UpdateTols updates a time-of-last-spike trace: elements that spiked
// are set to t, and all others keep their previous value.
// dst may be the same slice as tols.
func UpdateTols(t float32, s, tols, dst []float32) {
	for i, sv := range s {
		dst[i] = (1-sv)*tols[i] + sv*t
	}
}
