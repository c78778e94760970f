// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sched provides a minimal ordered step driver for units: it
advances them once per step in the order they were added, copies values
between their slots along wires, threads the pseudorandom key through
all of them, and runs the episode-level Evolve and Reset.
*/
package sched

import (
	"errors"
	"fmt"
	"log"

	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
)

// Wire copies the values of one slot into another, scaled, as a step.
type Wire struct {
	From  *comp.Slot
	To    *comp.Slot
	Scale float32
}

// Copy copies From into To.  Panics with a *comp.ShapeError if the
// slot shapes differ.
func (wr *Wire) Copy() {
	vals := wr.From.CopyValues()
	if wr.Scale != 1 {
		for i := range vals {
			vals[i] *= wr.Scale
		}
	}
	wr.To.Set(wr.From.Shape(), vals)
}

// Step is one named function run on every step, in order.
type Step struct {
	Name string
	Fun  func(tm *comp.Time, key randkey.Key) (randkey.Key, error)
}

// Func is a named function run at a given point.
type Func struct {
	Name string
	Fun  func(tm *comp.Time) error
}

// Schedule runs units and wires in a fixed order.
type Schedule struct {

	// simulation clock
	Time *comp.Time

	// current key, replaced on every stochastic step
	Key randkey.Key

	// steps run in order on every Step
	Steps []Step

	// functions run after all steps of each Step, e.g., logging
	OnStepEnd []Func

	// functions run at the end of each episode, after Evolve and before Reset
	OnEpisodeEnd []Func

	// all units added, in order
	Units []comp.Unit

	// all wires added, in order
	Wires []*Wire
}

// New returns a new schedule with a fresh clock of step dt and root key from seed.
func New(dt float32, seed uint64) *Schedule {
	tm := comp.NewTime()
	tm.Dt = dt
	return &Schedule{Time: tm, Key: randkey.New(seed)}
}

// AddUnit adds a step that advances the unit.
func (sc *Schedule) AddUnit(u comp.Unit) {
	sc.Units = append(sc.Units, u)
	sc.Steps = append(sc.Steps, Step{Name: u.Name(), Fun: u.Advance})
}

// AddWire adds a step that copies from into to, scaled.
func (sc *Schedule) AddWire(from, to *comp.Slot, scale float32) *Wire {
	wr := &Wire{From: from, To: to, Scale: scale}
	sc.Wires = append(sc.Wires, wr)
	sc.Steps = append(sc.Steps, Step{Name: from.Name() + "->" + to.Name(), Fun: func(tm *comp.Time, key randkey.Key) (randkey.Key, error) {
		wr.Copy()
		return key, nil
	}})
	return wr
}

// AddFunc adds a deterministic step.
func (sc *Schedule) AddFunc(name string, fun func(tm *comp.Time) error) {
	sc.Steps = append(sc.Steps, Step{Name: name, Fun: func(tm *comp.Time, key randkey.Key) (randkey.Key, error) {
		return key, fun(tm)
	}})
}

// Validate checks wire shapes, returning an error for any mismatch, and
// collects the warnings of units that implement comp.Validator, which
// are logged and returned but are not errors.
func (sc *Schedule) Validate() ([]string, error) {
	var errs []error
	for _, wr := range sc.Wires {
		if !comp.SameShape(wr.From.Shape(), wr.To.Shape()) {
			errs = append(errs, &comp.ShapeError{Slot: wr.To.Name(), Want: wr.To.Shape(), Got: wr.From.Shape()})
		}
	}
	var warns []string
	for _, u := range sc.Units {
		if vu, ok := u.(comp.Validator); ok {
			if ok, msg := vu.Validate(sc.Time.Dt); !ok {
				log.Printf("sched: unit %s: %s\n", u.Name(), msg)
				warns = append(warns, msg)
			}
		}
	}
	return warns, errors.Join(errs...)
}

// Step advances the clock and runs all steps at the new time.
// On error the remaining steps are not run.
func (sc *Schedule) Step() error {
	sc.Time.CycleInc()
	for _, st := range sc.Steps {
		key, err := st.Fun(sc.Time, sc.Key)
		if err != nil {
			return fmt.Errorf("step %s at t=%g: %w", st.Name, sc.Time.T, err)
		}
		sc.Key = key
	}
	for _, fn := range sc.OnStepEnd {
		if err := fn.Fun(sc.Time); err != nil {
			return fmt.Errorf("%s at t=%g: %w", fn.Name, sc.Time.T, err)
		}
	}
	return nil
}

// Run runs n steps.
func (sc *Schedule) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := sc.Step(); err != nil {
			return err
		}
	}
	return nil
}

// EndEpisode runs Evolve on all units that implement comp.Evolver, then
// the OnEpisodeEnd functions, then resets all units and starts a new
// episode on the clock.
func (sc *Schedule) EndEpisode() error {
	for _, u := range sc.Units {
		if ev, ok := u.(comp.Evolver); ok {
			if err := ev.Evolve(sc.Time); err != nil {
				return fmt.Errorf("evolve %s: %w", u.Name(), err)
			}
		}
	}
	for _, fn := range sc.OnEpisodeEnd {
		if err := fn.Fun(sc.Time); err != nil {
			return fmt.Errorf("%s: %w", fn.Name, err)
		}
	}
	for _, u := range sc.Units {
		u.Reset()
	}
	sc.Time.EpisodeInc()
	return nil
}

// Reset resets all units and the clock.  The key is not affected.
func (sc *Schedule) Reset() {
	for _, u := range sc.Units {
		u.Reset()
	}
	sc.Time.Reset()
}
