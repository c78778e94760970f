// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expkern

import (
	"testing"

	"github.com/emer/pcnet/comp"
	"github.com/emer/pcnet/randkey"
	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func TestWinLen(t *testing.T) {
	kc := New("kern", 2, 1, 1)
	if kc.Kern.WinLen != 5 {
		t.Errorf("WinLen at dt 1: %d", kc.Kern.WinLen)
	}
	shp := kc.Tf.Shape()
	if shp[0] != 5 || shp[1] != 1 || shp[2] != 2 {
		t.Errorf("tf shape: %v", shp)
	}
	kc = New("kern", 2, 1, 0.5)
	if kc.Kern.WinLen != 9 {
		t.Errorf("WinLen at dt 0.5: %d", kc.Kern.WinLen)
	}
	if ok, _ := kc.Validate(0.5); !ok {
		t.Errorf("should validate at build dt")
	}
	if ok, _ := kc.Validate(1); ok {
		t.Errorf("should not validate at other dt")
	}
}

func TestSingleSpike(t *testing.T) {
	kc := New("kern", 2, 1, 1)
	tm := comp.NewTime()
	key := randkey.New(1)
	var epsp []float32
	for i := 0; i < 8; i++ {
		tm.CycleInc()
		if tm.T == 1 {
			kc.SetInput([]float32{1, 0})
		} else {
			kc.SetInput([]float32{0, 0})
		}
		key, _ = kc.Advance(tm, key)
		epsp = append(epsp, kc.EPSP.Values()[0])
		if kc.EPSP.Values()[1] != 0 {
			t.Errorf("epsp without input: %v", kc.EPSP.Values()[1])
		}
	}
	// spike at t=1 contributes while in the window: t = 1..4
	for i, v := range epsp {
		tt := float32(i + 1)
		cor := float32(0)
		if tt <= 4 {
			cor = mat32.Exp(-(tt - 1) / 500)
		}
		if mat32.Abs(v-cor) > difTol {
			t.Errorf("t=%v: epsp %v, cor %v", tt, v, cor)
		}
	}
}

func TestSummedSpikes(t *testing.T) {
	kc := New("kern", 1, 1, 1)
	kc.Kern.TauW = 2
	tm := comp.NewTime()
	kc.SetInput([]float32{1})
	for i := 0; i < 3; i++ {
		tm.CycleInc()
		kc.Advance(tm, randkey.New(1))
	}
	cor := 1 + mat32.Exp(-0.5) + mat32.Exp(-1)
	if mat32.Abs(kc.EPSP.Values()[0]-cor) > difTol {
		t.Errorf("epsp of 3 spikes: %v, cor %v", kc.EPSP.Values()[0], cor)
	}
	kc.Reset()
	for _, v := range kc.Tf.Values() {
		if v != 0 {
			t.Errorf("window not cleared by reset")
		}
	}
}

// TestZeroTimeSpike documents that a spike at t = 0 is not recorded.
func TestZeroTimeSpike(t *testing.T) {
	kc := New("kern", 1, 1, 1)
	kc.SetInput([]float32{1})
	kc.Advance(comp.NewTime(), randkey.New(1))
	if kc.EPSP.Values()[0] != 0 {
		t.Errorf("spike at t=0 contributed: %v", kc.EPSP.Values()[0])
	}
}
