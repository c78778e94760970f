// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpe

import (
	"testing"

	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-4)

func TestConverge(t *testing.T) {
	rc := New("rpe", 2, 1)
	rc.SetInput([]float32{1, 0.5})
	tm := comp.NewTime()
	key := randkey.New(1)
	for i := 0; i < 200; i++ {
		key, _ = rc.Advance(tm, key)
		tm.CycleInc()
	}
	cor := []float32{1, 0.5}
	for i, mu := range rc.Mu.Values() {
		if mat32.Abs(mu-cor[i]) > difTol {
			t.Errorf("mu[%d]: %v did not converge to %v", i, mu, cor[i])
		}
		if mat32.Abs(rc.RPE.Values()[i]) > difTol {
			t.Errorf("rpe[%d] not ~0: %v", i, rc.RPE.Values()[i])
		}
	}
	if rc.NEpSteps.Values()[0] != 200 {
		t.Errorf("n_ep_steps: %v", rc.NEpSteps.Values()[0])
	}
	if rc.AccumReward.Values()[0] != 200 {
		t.Errorf("accum: %v", rc.AccumReward.Values()[0])
	}
}

func TestStepValues(t *testing.T) {
	rc := New("rpe", 1, 1)
	rc.Exp.Alpha = 0.5
	rc.SetInput([]float32{2})
	rc.Advance(comp.NewTime(), randkey.New(1))
	if rc.RPE.Values()[0] != 2 || rc.Mu.Values()[0] != 1 {
		t.Errorf("first step: rpe %v mu %v", rc.RPE.Values()[0], rc.Mu.Values()[0])
	}
	rc.Advance(comp.NewTime(), randkey.New(1))
	if rc.RPE.Values()[0] != 1 || rc.Mu.Values()[0] != 1.5 {
		t.Errorf("second step: rpe %v mu %v", rc.RPE.Values()[0], rc.Mu.Values()[0])
	}
}

func TestEvolve(t *testing.T) {
	rc := New("rpe", 1, 2)
	rc.SetInput([]float32{1, 3})
	tm := comp.NewTime()
	for i := 0; i < 3; i++ {
		rc.Advance(tm, randkey.New(1))
	}
	mu := rc.Mu.CopyValues()
	if err := rc.Evolve(tm); err != nil {
		t.Fatal(err)
	}
	// accum 3+1 over 4 steps for row 0, 9+3 over 4 for row 1
	mr := []float32{1, 3}
	for i := range mr {
		cmu := 0.9*mu[i] + 0.1*mr[i]
		if mat32.Abs(rc.Mu.Values()[i]-cmu) > difTol {
			t.Errorf("evolved mu[%d]: %v != %v", i, rc.Mu.Values()[i], cmu)
		}
		if mat32.Abs(rc.RPE.Values()[i]-(mr[i]-cmu)) > difTol {
			t.Errorf("evolved rpe[%d]: %v", i, rc.RPE.Values()[i])
		}
	}
	if rc.NEpSteps.Values()[0] != 3 || rc.NEpSteps.Values()[1] != 3 {
		t.Errorf("evolve must not commit the step count: %v", rc.NEpSteps.Values())
	}
	if rc.AccumReward.Values()[1] != 12 {
		t.Errorf("evolved accum: %v", rc.AccumReward.Values()[1])
	}

	rc.Reset()
	for _, sl := range rc.Slots() {
		for _, v := range sl.Values() {
			if v != 0 {
				t.Errorf("slot %s not reset", sl.Name())
			}
		}
	}
}
