// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comp

// Time contains the timing state and step size for running a simulation
type Time struct {

	// current simulation time, in msec, passed to Advance as t
	T float32

	// integration step size in msec
	Dt float32 `def:"1"`

	// step counter within the current episode
	Cycle int

	// total step count since the last Reset
	CycleTot int

	// episode counter, incremented at episode boundaries
	Episode int
}

// NewTime returns a new Time struct with default parameters
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

// Defaults sets default values
func (tm *Time) Defaults() {
	tm.Dt = 1
}

// Reset resets the counters all back to zero
func (tm *Time) Reset() {
	tm.T = 0
	tm.Cycle = 0
	tm.CycleTot = 0
	tm.Episode = 0
	if tm.Dt == 0 {
		tm.Defaults()
	}
}

// CycleInc increments at the step level, advancing T by Dt
func (tm *Time) CycleInc() {
	tm.Cycle++
	tm.CycleTot++
	tm.T += tm.Dt
}

// EpisodeInc starts a new episode
func (tm *Time) EpisodeInc() {
	tm.Episode++
	tm.Cycle = 0
}
