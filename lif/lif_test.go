// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

import (
	"errors"
	"testing"

	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-4)

func TestRest(t *testing.T) {
	lc := New("lif", 3, 2)
	tm := comp.NewTime()
	key := randkey.New(1)
	for i := 0; i < 100; i++ {
		tm.CycleInc()
		key, _ = lc.Advance(tm, key)
	}
	for _, v := range lc.V.Values() {
		if v != lc.Act.Vm.Rest {
			t.Errorf("v drifted from rest with no input: %v", v)
		}
	}
	for _, s := range lc.S.Values() {
		if s != 0 {
			t.Errorf("spike with no input")
		}
	}
}

func TestSpikeAndRefractory(t *testing.T) {
	lc := New("lif", 1, 1)
	lc.SetInput([]float32{20})
	tm := comp.NewTime()
	key := randkey.New(1)

	// -65 + 20 = -45 > -52: spikes on the first step
	tm.CycleInc()
	key, _ = lc.Advance(tm, key)
	if lc.S.Values()[0] != 1 {
		t.Fatalf("expected spike, v: %v", lc.V.Values()[0])
	}
	if lc.V.Values()[0] != lc.Act.Vm.Reset {
		t.Errorf("v not reset after spike: %v", lc.V.Values()[0])
	}
	if lc.Rfr.Values()[0] != 0 || lc.Tols.Values()[0] != 1 {
		t.Errorf("rfr: %v tols: %v", lc.Rfr.Values()[0], lc.Tols.Values()[0])
	}
	theta := lc.Theta.Values()[0]
	if mat32.Abs(theta-lc.Act.Thr.ThetaPlus) > difTol {
		t.Errorf("theta after one spike: %v", theta)
	}

	// input gated off during refractory period
	last := float32(1)
	for i := 0; i < 20; i++ {
		tm.CycleInc()
		key, _ = lc.Advance(tm, key)
		if lc.S.Values()[0] == 1 {
			if tm.T-last < lc.Act.RefractT {
				t.Errorf("spike at %v only %v ms after previous", tm.T, tm.T-last)
			}
			last = tm.T
		}
	}
	if last == 1 {
		t.Errorf("no spikes after refractory period under strong input")
	}
}

func TestLeak(t *testing.T) {
	lc := New("lif", 1, 1)
	lc.V.SetValues([]float32{-55})
	tm := comp.NewTime()
	tm.CycleInc()
	lc.Advance(tm, randkey.New(1))
	cor := float32(-55 + (-65+55)*(1.0/100))
	if dif := mat32.Abs(lc.V.Values()[0] - cor); dif > difTol {
		t.Errorf("leak: v: %v, cor: %v", lc.V.Values()[0], cor)
	}
}

func TestThetaDisabled(t *testing.T) {
	lc := New("lif", 1, 1)
	lc.Act.Thr.TauTheta = 0
	lc.Act.Update()
	lc.Theta.SetValues([]float32{0.3})
	lc.SetInput([]float32{30})
	tm := comp.NewTime()
	tm.CycleInc()
	lc.Advance(tm, randkey.New(1))
	if lc.S.Values()[0] != 1 || lc.Theta.Values()[0] != 0.3 {
		t.Errorf("theta should be frozen: %v", lc.Theta.Values()[0])
	}
}

func TestOneSpike(t *testing.T) {
	lc := New("lif", 8, 1)
	lc.Act.OneSpike = true
	lc.SetInput([]float32{30, 30, 30, 30, 30, 30, 30, 30})
	tm := comp.NewTime()
	tm.CycleInc()
	key := randkey.New(42)
	nk, err := lc.Advance(tm, key)
	if err != nil {
		t.Fatal(err)
	}
	if nk == key {
		t.Errorf("key not advanced by arbitration")
	}
	nspk := 0
	for i, s := range lc.S.Values() {
		nspk += int(s)
		if lc.SRaw.Values()[i] != 1 {
			t.Errorf("raw spike missing at %d", i)
		}
		// theta follows raw spikes
		if mat32.Abs(lc.Theta.Values()[i]-lc.Act.Thr.ThetaPlus) > difTol {
			t.Errorf("theta[%d]: %v", i, lc.Theta.Values()[i])
		}
	}
	if nspk != 1 {
		t.Errorf("OneSpike kept %d spikes", nspk)
	}
}

func TestOneSpikeBatch(t *testing.T) {
	lc := New("lif", 4, 2)
	lc.Act.OneSpike = true
	if ok, _ := lc.Validate(1); ok {
		t.Errorf("OneSpike with batch 2 should not validate")
	}
	_, err := lc.Advance(comp.NewTime(), randkey.New(1))
	if !errors.Is(err, ErrOneSpikeBatch) {
		t.Errorf("expected ErrOneSpikeBatch, got: %v", err)
	}
}

func TestResetKeepsTheta(t *testing.T) {
	lc := New("lif", 2, 1)
	lc.SetInput([]float32{30, 0})
	tm := comp.NewTime()
	tm.CycleInc()
	lc.Advance(tm, randkey.New(1))
	th := lc.Theta.CopyValues()
	lc.Reset()
	for i, v := range lc.Theta.Values() {
		if v != th[i] {
			t.Errorf("theta changed by reset")
		}
	}
	if lc.V.Values()[0] != -65 || lc.Rfr.Values()[0] != 5 || lc.J.Values()[0] != 0 {
		t.Errorf("reset state: v %v rfr %v j %v", lc.V.Values()[0], lc.Rfr.Values()[0], lc.J.Values()[0])
	}

	sn := lc.Snapshot()
	nc := New("lif", 2, 1)
	if err := nc.Restore(sn); err != nil {
		t.Fatal(err)
	}
	if nc.Theta.Values()[0] != th[0] {
		t.Errorf("theta not restored")
	}
}
