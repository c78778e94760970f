// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lif provides a leaky integrate-and-fire spiking neuron population
with an adaptive threshold, absolute refractory period and an optional
one-spike-per-step arbitration.
*/
package lif

import (
	"errors"
	"fmt"

	"github.com/emer/emergent/params"
	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
	"github.com/goki/mat32"
)

// ErrOneSpikeBatch is returned when OneSpike arbitration is requested
// for a batch size other than 1: the arbitration picks one winner over
// the whole population and is not defined per batch row.
var ErrOneSpikeBatch = errors.New("lif: OneSpike requires batch size 1")

// VmParams are membrane potential parameters, in mV and ms.
type VmParams struct {

	// membrane time constant in ms: larger = slower integration toward Rest
	TauM float32 `def:"100" min:"1"`

	// resting potential that the membrane leaks toward
	Rest float32 `def:"-65"`

	// potential the membrane is set to after a spike
	Reset float32 `def:"-60"`

	// rate = 1 / TauM
	Dt float32 `view:"-" json:"-" xml:"-" inactive:"+"`
}

func (vp *VmParams) Update() {
	vp.Dt = 1 / vp.TauM
}

func (vp *VmParams) Defaults() {
	vp.TauM = 100
	vp.Rest = -65
	vp.Reset = -60
	vp.Update()
}

// ThrParams are spiking threshold parameters, including the slow
// homeostatic adaptation of the threshold offset theta.
type ThrParams struct {

	// base spiking threshold in mV: the effective threshold is Thr + theta
	Thr float32 `def:"-52"`

	// time constant in ms of the theta decay: 0 disables theta dynamics entirely
	TauTheta float32 `def:"1e+07" min:"0"`

	// increment of theta on each spike
	ThetaPlus float32 `def:"0.05" min:"0"`
}

func (tp *ThrParams) Update() {
}

func (tp *ThrParams) Defaults() {
	tp.Thr = -52
	tp.TauTheta = 1e7
	tp.ThetaPlus = 0.05
	tp.Update()
}

// Adapts returns true if theta dynamics are enabled.
func (tp *ThrParams) Adapts() bool {
	return tp.TauTheta > 0
}

// ActParams contains all the LIF activation parameters.
type ActParams struct {

	// membrane potential
	Vm VmParams `view:"inline"`

	// threshold and adaptation
	Thr ThrParams `view:"inline"`

	// absolute refractory period in ms: input current is gated off until this much time has passed since the last spike
	RefractT float32 `def:"5" min:"0"`

	// if more than one unit spikes on a step, keep only one of them, chosen at random: batch size must be 1
	OneSpike bool
}

func (ac *ActParams) Update() {
	ac.Vm.Update()
	ac.Thr.Update()
}

func (ac *ActParams) Defaults() {
	ac.Vm.Defaults()
	ac.Thr.Defaults()
	ac.RefractT = 5
	ac.OneSpike = false
	ac.Update()
}

// State is a value copy of the LIF slots, as seen by Step.
type State struct {
	J     []float32
	V     []float32
	Rfr   []float32
	Theta []float32
	S     []float32
	SRaw  []float32
	Tols  []float32
}

func newState(n int) State {
	return State{
		V:     make([]float32, n),
		Rfr:   make([]float32, n),
		Theta: make([]float32, n),
		S:     make([]float32, n),
		SRaw:  make([]float32, n),
		Tols:  make([]float32, n),
	}
}

// Step integrates the membrane for one step of size dt at time t and
// returns the new state.  The key is only consumed when OneSpike
// arbitration is on.  Step does not modify cur.
func (ac *ActParams) Step(t, dt float32, key randkey.Key, cur *State) (State, randkey.Key) {
	n := len(cur.V)
	nw := newState(n)
	nw.J = cur.J
	for i := 0; i < n; i++ {
		mask := float32(0)
		if cur.Rfr[i] >= ac.RefractT {
			mask = 1
		}
		v := cur.V[i] + (ac.Vm.Rest-cur.V[i])*(dt*ac.Vm.Dt) + cur.J[i]*mask
		s := float32(0)
		if v > ac.Thr.Thr+cur.Theta[i] {
			s = 1
		}
		nw.Rfr[i] = (cur.Rfr[i] + dt) * (1 - s)
		nw.V[i] = v*(1-s) + s*ac.Vm.Reset
		nw.SRaw[i] = s
		nw.S[i] = s
	}
	if ac.OneSpike {
		var sub randkey.Key
		key, sub = key.Split()
		ac.ArbitrateSpikes(sub, nw.S)
	}
	if ac.Thr.Adapts() {
		decay := mat32.Exp(-dt / ac.Thr.TauTheta)
		for i, th := range cur.Theta {
			nw.Theta[i] = th*decay + nw.SRaw[i]*ac.Thr.ThetaPlus
		}
	} else {
		copy(nw.Theta, cur.Theta)
	}
	comp.UpdateTols(t, nw.S, cur.Tols, nw.Tols)
	return nw, key
}

// ArbitrateSpikes keeps exactly one of the spikes in s if more than one
// unit spiked, chosen uniformly among the spiking units using key.
func (ac *ActParams) ArbitrateSpikes(key randkey.Key, s []float32) {
	nspk := 0
	for _, sv := range s {
		if sv > 0 {
			nspk++
		}
	}
	if nspk <= 1 {
		return
	}
	win := key.Choice(s)
	for i := range s {
		if i != win {
			s[i] = 0
		}
	}
}

// Cell is a population of LIF neurons.
type Cell struct {
	comp.Base

	// activation parameters
	Act ActParams `view:"inline"`

	// input current (electrical), the only externally writable slot
	J *comp.Slot

	// membrane potential
	V *comp.Slot

	// time since last spike, counted toward RefractT
	Rfr *comp.Slot

	// adaptive threshold offset, persisted across runs
	Theta *comp.Slot

	// spikes emitted, after any OneSpike arbitration
	S *comp.Slot

	// spikes before arbitration, which drive theta adaptation
	SRaw *comp.Slot

	// time of last spike
	Tols *comp.Slot
}

// New returns a new LIF population with nUnits neurons and given batch size.
func New(name string, nUnits, batch int) *Cell {
	lc := &Cell{}
	lc.InitBase(name, nUnits, batch)
	lc.Act.Defaults()
	lc.J = lc.NewSlot("j", 0)
	lc.V = lc.NewSlot("v", lc.Act.Vm.Rest)
	lc.Rfr = lc.NewSlot("rfr", lc.Act.RefractT)
	lc.Theta = lc.NewSlot("thr_theta", 0)
	lc.S = lc.NewSlot("s", 0)
	lc.SRaw = lc.NewSlot("s_raw", 0)
	lc.Tols = lc.NewSlot("tols", 0)
	return lc
}

func (lc *Cell) TypeName() string { return "LIF" }

// SetInput sets the input current, laid out as (batch, units).
func (lc *Cell) SetInput(vals []float32) {
	lc.J.Set(lc.Shape(), vals)
}

// State returns the current slot values.
func (lc *Cell) State() State {
	return State{
		J:     lc.J.Values(),
		V:     lc.V.Values(),
		Rfr:   lc.Rfr.Values(),
		Theta: lc.Theta.Values(),
		S:     lc.S.Values(),
		SRaw:  lc.SRaw.Values(),
		Tols:  lc.Tols.Values(),
	}
}

// Commit writes the outputs of Step into the slots.
func (lc *Cell) Commit(st *State) {
	lc.V.SetValues(st.V)
	lc.Rfr.SetValues(st.Rfr)
	lc.Theta.SetValues(st.Theta)
	lc.S.SetValues(st.S)
	lc.SRaw.SetValues(st.SRaw)
	lc.Tols.SetValues(st.Tols)
}

// Advance steps the neurons at tm.T and commits the result.
func (lc *Cell) Advance(tm *comp.Time, key randkey.Key) (randkey.Key, error) {
	if lc.Act.OneSpike && lc.BatchSize != 1 {
		return key, fmt.Errorf("%s: %w", lc.Nm, ErrOneSpikeBatch)
	}
	cur := lc.State()
	nw, key := lc.Act.Step(tm.T, tm.Dt, key, &cur)
	lc.Commit(&nw)
	return key, nil
}

// Reset sets the membrane to rest and the refractory counter to
// RefractT, and clears current, spikes and tols.  Theta is kept.
func (lc *Cell) Reset() {
	lc.J.Fill(0)
	lc.V.Fill(lc.Act.Vm.Rest)
	lc.Rfr.Fill(lc.Act.RefractT)
	lc.S.Fill(0)
	lc.SRaw.Fill(0)
	lc.Tols.Fill(0)
}

// Validate reports parameter settings that cannot run.
func (lc *Cell) Validate(dt float32) (bool, string) {
	if lc.Act.OneSpike && lc.BatchSize != 1 {
		return false, fmt.Sprintf("%s: OneSpike with batch size %d", lc.Nm, lc.BatchSize)
	}
	return true, ""
}

// Snapshot returns the persisted state: theta.
func (lc *Cell) Snapshot() *comp.Snapshot {
	sn := comp.NewSnapshot(lc.Nm)
	sn.AddSlot(lc.Theta)
	return sn
}

// Restore sets theta from the snapshot.
func (lc *Cell) Restore(sn *comp.Snapshot) error {
	return sn.RestoreSlot(lc.Theta)
}

// ApplyParams applies given parameter style Sheet to this cell.
// The Rest and RefractT values of the V and Rfr slots follow the params.
func (lc *Cell) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(lc, setMsg)
	if app {
		lc.Act.Update()
		lc.V.Rest = lc.Act.Vm.Rest
		lc.Rfr.Rest = lc.Act.RefractT
	}
	return app, err
}
