// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package bernoulli provides a stochastic spike encoder that converts input
intensities into binary spike trains, optionally under a maximum firing
rate constraint.
*/
package bernoulli

import (
	"fmt"
	"log"

	"github.com/emer/emergent/params"
	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
	"github.com/goki/mat32"
)

// EncodeParams control the conversion of intensities to spikes.
type EncodeParams struct {

	// maximum firing frequency in Hz: an input of 1 fires with probability (dt/1000)*TargetFreq per step.  0 = unconstrained, where input values are used directly as spike probabilities.
	TargetFreq float32 `def:"63.75" min:"0"`
}

func (ep *EncodeParams) Update() {
}

func (ep *EncodeParams) Defaults() {
	ep.TargetFreq = 63.75
	ep.Update()
}

// Constrained returns true if the firing rate is bounded by TargetFreq.
func (ep *EncodeParams) Constrained() bool {
	return ep.TargetFreq > 0
}

// MaxProb returns the per-step spike probability for a unit input at step dt (ms).
func (ep *EncodeParams) MaxProb(dt float32) float32 {
	return (dt / 1000) * ep.TargetFreq
}

// State is a value copy of the encoder slots, as seen by Step.
type State struct {
	Inputs  []float32
	Outputs []float32
	Tols    []float32
}

// Step computes spikes and time-of-last-spike for time t with step dt.
// The key is split before any draw; the returned key replaces it.
// Step does not modify cur.
func (ep *EncodeParams) Step(t, dt float32, key randkey.Key, cur *State) (State, randkey.Key) {
	key, sub := key.Split()
	n := len(cur.Inputs)
	nw := State{Inputs: cur.Inputs, Outputs: make([]float32, n), Tols: make([]float32, n)}
	p := make([]float32, n)
	if ep.Constrained() {
		mp := ep.MaxProb(dt)
		for i, in := range cur.Inputs {
			p[i] = mat32.Clamp(in, 0, 1) * mp
		}
	} else {
		copy(p, cur.Inputs)
	}
	sub.Bernoulli(p, nw.Outputs)
	comp.UpdateTols(t, nw.Outputs, cur.Tols, nw.Tols)
	return nw, key
}

// Cell is a population of Bernoulli spike encoders.
type Cell struct {
	comp.Base

	// encoding parameters
	Enc EncodeParams `view:"inline"`

	// input intensities, the only externally writable slot
	Inputs *comp.Slot

	// emitted spikes, 0 or 1
	Outputs *comp.Slot

	// time of last spike
	Tols *comp.Slot

	// most recent key returned by Advance, persisted with the cell
	Key randkey.Key

	// Key was restored and replaces the key passed to the next Advance
	restored bool
}

// New returns a new encoder with nUnits units and given batch size.
func New(name string, nUnits, batch int) *Cell {
	bc := &Cell{}
	bc.InitBase(name, nUnits, batch)
	bc.Enc.Defaults()
	bc.Inputs = bc.NewSlot("inputs", 0)
	bc.Outputs = bc.NewSlot("outputs", 0)
	bc.Tols = bc.NewSlot("tols", 0)
	return bc
}

func (bc *Cell) TypeName() string { return "Bernoulli" }

// SetInput sets the input intensities, laid out as (batch, units).
func (bc *Cell) SetInput(vals []float32) {
	bc.Inputs.Set(bc.Shape(), vals)
}

// State returns the current slot values.
func (bc *Cell) State() State {
	return State{Inputs: bc.Inputs.Values(), Outputs: bc.Outputs.Values(), Tols: bc.Tols.Values()}
}

// Commit writes the outputs of Step into the slots.
func (bc *Cell) Commit(st *State) {
	bc.Outputs.SetValues(st.Outputs)
	bc.Tols.SetValues(st.Tols)
}

// Advance steps the encoder at tm.T and commits the result.  After a
// Restore the restored key is used in place of key, so the returned
// key continues the saved stream.
func (bc *Cell) Advance(tm *comp.Time, key randkey.Key) (randkey.Key, error) {
	if bc.restored {
		key = bc.Key
		bc.restored = false
	}
	cur := bc.State()
	nw, key := bc.Enc.Step(tm.T, tm.Dt, key, &cur)
	bc.Commit(&nw)
	bc.Key = key
	return key, nil
}

// Reset sets inputs, outputs and tols to 0.  The key is not affected.
func (bc *Cell) Reset() {
	bc.ResetSlots()
}

// Validate reports whether TargetFreq can be honored at step size dt:
// a per-step spike probability above 1 saturates.
func (bc *Cell) Validate(dt float32) (bool, string) {
	if !bc.Enc.Constrained() {
		return true, ""
	}
	if mp := bc.Enc.MaxProb(dt); mp > 1 {
		msg := fmt.Sprintf("%s: TargetFreq %g Hz at dt %g ms gives spike probability %g > 1, rate will saturate at one spike per step", bc.Nm, bc.Enc.TargetFreq, dt, mp)
		log.Printf("warning: %s\n", msg)
		return false, msg
	}
	return true, ""
}

// Snapshot returns the persisted state: the key.
func (bc *Cell) Snapshot() *comp.Snapshot {
	sn := comp.NewSnapshot(bc.Nm)
	sn.SetKey(bc.Key)
	return sn
}

// Restore sets the key from the snapshot.  The next Advance draws from
// it instead of the key it is given.
func (bc *Cell) Restore(sn *comp.Snapshot) error {
	if sn.Key == nil {
		return fmt.Errorf("bernoulli %s: snapshot has no key", bc.Nm)
	}
	bc.Key = *sn.Key
	bc.restored = true
	return nil
}

// ApplyParams applies given parameter style Sheet to this cell.
// If setMsg is true, a message is printed for each parameter that is set.
func (bc *Cell) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(bc, setMsg)
	if app {
		bc.Enc.Update()
	}
	return app, err
}
