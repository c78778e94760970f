// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package rpe provides a reward prediction error tracker: a running
exponential moving average expectation of reward, with the deviation of
the current reward from it, plus a slower per-episode update over the
mean accumulated reward.
*/
package rpe

import (
	"github.com/emer/emergent/params"
	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
)

// RPEParams are the expectation learning rates.
type RPEParams struct {

	// per-step moving average rate for the reward expectation
	Alpha float32 `def:"0.1" min:"0" max:"1"`

	// window length of the episode-level moving average: its rate is 1 / EMAWindowLen
	EMAWindowLen float32 `def:"10" min:"1"`
}

func (rp *RPEParams) Update() {
}

func (rp *RPEParams) Defaults() {
	rp.Alpha = 0.1
	rp.EMAWindowLen = 10
	rp.Update()
}

// State is a value copy of the tracker slots.  NEpSteps has one value
// per batch row.
type State struct {
	Reward      []float32
	Mu          []float32
	RPE         []float32
	AccumReward []float32
	NEpSteps    []float32
}

func newState(n, nb int) State {
	return State{
		Mu:          make([]float32, n),
		RPE:         make([]float32, n),
		AccumReward: make([]float32, n),
		NEpSteps:    make([]float32, nb),
	}
}

// Step updates the per-step expectation from the current reward.
func (rp *RPEParams) Step(cur *State) State {
	n := len(cur.Mu)
	nb := len(cur.NEpSteps)
	nw := newState(n, nb)
	nw.Reward = cur.Reward
	for i, r := range cur.Reward {
		mu := cur.Mu[i]
		nw.AccumReward[i] = cur.AccumReward[i] + r
		nw.RPE[i] = r - mu
		nw.Mu[i] = mu*(1-rp.Alpha) + r*rp.Alpha
	}
	for b, ns := range cur.NEpSteps {
		nw.NEpSteps[b] = ns + 1
	}
	return nw
}

// Evolve updates the expectation from the mean reward accumulated over
// the episode including the current reward.  The step count used for
// the mean is not carried into the returned state.
func (rp *RPEParams) Evolve(cur *State) State {
	n := len(cur.Mu)
	nb := len(cur.NEpSteps)
	nw := newState(n, nb)
	nw.Reward = cur.Reward
	copy(nw.NEpSteps, cur.NEpSteps)
	nu := n / nb
	ema := 1 / rp.EMAWindowLen
	for i, r := range cur.Reward {
		acc := cur.AccumReward[i] + r
		nsteps := cur.NEpSteps[i/nu] + 1
		mr := acc / nsteps
		mu := (1-ema)*cur.Mu[i] + ema*mr
		nw.AccumReward[i] = acc
		nw.Mu[i] = mu
		nw.RPE[i] = mr - mu
	}
	return nw
}

// Cell is a population of reward prediction error trackers.
type Cell struct {
	comp.Base

	// expectation parameters
	Exp RPEParams `view:"inline"`

	// current reward, the only externally writable slot
	Reward *comp.Slot

	// reward expectation
	Mu *comp.Slot

	// reward prediction error
	RPE *comp.Slot

	// reward accumulated over the episode
	AccumReward *comp.Slot

	// number of steps taken this episode, shape (batch, 1)
	NEpSteps *comp.Slot
}

// New returns a new tracker population with nUnits units and given batch size.
func New(name string, nUnits, batch int) *Cell {
	rc := &Cell{}
	rc.InitBase(name, nUnits, batch)
	rc.Exp.Defaults()
	rc.Reward = rc.NewSlot("reward", 0)
	rc.Mu = rc.NewSlot("mu", 0)
	rc.RPE = rc.NewSlot("rpe", 0)
	rc.AccumReward = rc.NewSlot("accum_reward", 0)
	rc.NEpSteps = rc.AddSlot(comp.NewSlot("n_ep_steps", 0, batch, 1))
	return rc
}

func (rc *Cell) TypeName() string { return "RPE" }

// SetInput sets the current reward, laid out as (batch, units).
func (rc *Cell) SetInput(vals []float32) {
	rc.Reward.Set(rc.Shape(), vals)
}

// State returns the current slot values.
func (rc *Cell) State() State {
	return State{
		Reward:      rc.Reward.Values(),
		Mu:          rc.Mu.Values(),
		RPE:         rc.RPE.Values(),
		AccumReward: rc.AccumReward.Values(),
		NEpSteps:    rc.NEpSteps.Values(),
	}
}

// Commit writes all computed slots.
func (rc *Cell) Commit(st *State) {
	rc.Mu.SetValues(st.Mu)
	rc.RPE.SetValues(st.RPE)
	rc.AccumReward.SetValues(st.AccumReward)
	rc.NEpSteps.SetValues(st.NEpSteps)
}

// Advance runs the per-step update.  The tracker is deterministic and
// returns the key unchanged.
func (rc *Cell) Advance(tm *comp.Time, key randkey.Key) (randkey.Key, error) {
	cur := rc.State()
	nw := rc.Exp.Step(&cur)
	rc.Commit(&nw)
	return key, nil
}

// Evolve runs the episode-level update, typically once at the end of
// an episode before Reset.
func (rc *Cell) Evolve(tm *comp.Time) error {
	cur := rc.State()
	nw := rc.Exp.Evolve(&cur)
	rc.Commit(&nw)
	return nil
}

// Reset zeroes all slots.
func (rc *Cell) Reset() {
	rc.ResetSlots()
}

// ApplyParams applies given parameter style Sheet to this cell.
func (rc *Cell) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(rc, setMsg)
	if app {
		rc.Exp.Update()
	}
	return app, err
}
