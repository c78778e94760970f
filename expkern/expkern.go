// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package expkern provides an exponential synaptic kernel: it records the
times of incoming spikes in a short sliding window and emits the summed
exponentially decaying postsynaptic potential of the spikes in it.

A recorded time of 0 means "no spike" in the window.  Consequently a
spike arriving at exactly t = 0 is indistinguishable from an empty
entry and never contributes.  Start the clock at t > 0 (comp.Time
increments before the first step in the usual loop) if that matters.
*/
package expkern

import (
	"fmt"

	"github.com/emer/emergent/params"
	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
	"github.com/goki/mat32"
)

// KernParams are the kernel time constants.
type KernParams struct {

	// decay time constant of the postsynaptic potential, in ms
	TauW float32 `def:"500" min:"1"`

	// window span in ms: spikes older than about Nu are dropped from the sum
	Nu float32 `def:"4" min:"0"`

	// number of slots in the spike time window, floor(Nu / dt) + 1, set by Build
	WinLen int `inactive:"+"`
}

func (kp *KernParams) Update() {
}

func (kp *KernParams) Defaults() {
	kp.TauW = 500
	kp.Nu = 4
	kp.Update()
}

// SetWinLen sets WinLen from Nu for step size dt.
func (kp *KernParams) SetWinLen(dt float32) {
	kp.WinLen = int(kp.Nu/dt) + 1
}

// State is a value copy of the kernel slots.  Tf is laid out as
// (window, batch*units) in row-major order, oldest row first.
type State struct {
	Inputs []float32
	EPSP   []float32
	Tf     []float32
}

// Step records the current input spikes at time t, shifts the window
// by one and computes the postsynaptic potential.
func (kp *KernParams) Step(t float32, cur *State) State {
	n := len(cur.Inputs)
	win := kp.WinLen
	nw := State{Inputs: cur.Inputs, EPSP: make([]float32, n), Tf: make([]float32, len(cur.Tf))}
	copy(nw.Tf, cur.Tf)
	last := (win - 1) * n
	for i, s := range cur.Inputs {
		nw.Tf[last+i] = s * t
	}
	// roll left by one row: the new entry moves to row win-2, the oldest
	// row wraps to the end and is excluded from the sum below.
	first := make([]float32, n)
	copy(first, nw.Tf[:n])
	copy(nw.Tf, nw.Tf[n:])
	copy(nw.Tf[last:], first)
	for w := 0; w < win-1; w++ {
		row := nw.Tf[w*n : (w+1)*n]
		for i, tf := range row {
			if tf > 0 {
				nw.EPSP[i] += mat32.Exp(-(t - tf) / kp.TauW)
			}
		}
	}
	return nw
}

// Cell is a population of exponential synaptic kernels.
type Cell struct {
	comp.Base

	// kernel parameters
	Kern KernParams `view:"inline"`

	// input spikes, the only externally writable slot
	Inputs *comp.Slot

	// summed postsynaptic potential
	EPSP *comp.Slot

	// spike time window, shape (WinLen, batch, units)
	Tf *comp.Slot
}

// New returns a new kernel population for step size dt (ms).
func New(name string, nUnits, batch int, dt float32) *Cell {
	kc := &Cell{}
	kc.InitBase(name, nUnits, batch)
	kc.Kern.Defaults()
	kc.Build(dt)
	return kc
}

// Build allocates the slots, sizing the window for step size dt.
// It must be called again if Nu is changed.
func (kc *Cell) Build(dt float32) {
	kc.SlotList = nil
	kc.Kern.SetWinLen(dt)
	kc.Inputs = kc.NewSlot("inputs", 0)
	kc.EPSP = kc.NewSlot("epsp", 0)
	kc.Tf = kc.AddSlot(comp.NewSlot("tf", 0, kc.Kern.WinLen, kc.BatchSize, kc.NUnits))
}

func (kc *Cell) TypeName() string { return "ExpKernel" }

// SetInput sets the input spikes, laid out as (batch, units).
func (kc *Cell) SetInput(vals []float32) {
	kc.Inputs.Set(kc.Shape(), vals)
}

// State returns the current slot values.
func (kc *Cell) State() State {
	return State{Inputs: kc.Inputs.Values(), EPSP: kc.EPSP.Values(), Tf: kc.Tf.Values()}
}

// Commit writes the outputs of Step into the slots.
func (kc *Cell) Commit(st *State) {
	kc.EPSP.SetValues(st.EPSP)
	kc.Tf.SetValues(st.Tf)
}

// Advance steps the kernel at tm.T.  The kernel is deterministic and
// returns the key unchanged.
func (kc *Cell) Advance(tm *comp.Time, key randkey.Key) (randkey.Key, error) {
	cur := kc.State()
	nw := kc.Kern.Step(tm.T, &cur)
	kc.Commit(&nw)
	return key, nil
}

// Reset zeroes all slots, including the spike time window.
func (kc *Cell) Reset() {
	kc.ResetSlots()
}

// Validate reports a window built for another step size, or one too
// short to hold any spike.
func (kc *Cell) Validate(dt float32) (bool, string) {
	if int(kc.Kern.Nu/dt)+1 != kc.Kern.WinLen {
		return false, fmt.Sprintf("%s: window built for a different dt or Nu, call Build(%g)", kc.Nm, dt)
	}
	if kc.Kern.WinLen < 2 {
		return false, fmt.Sprintf("%s: Nu %g at dt %g leaves no window, EPSP is always 0", kc.Nm, kc.Kern.Nu, dt)
	}
	return true, ""
}

// ApplyParams applies given parameter style Sheet to this cell.
// Changing Nu requires a subsequent Build.
func (kc *Cell) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(kc, setMsg)
	if app {
		kc.Kern.Update()
	}
	return app, err
}
