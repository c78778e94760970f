// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actfun

import (
	"testing"

	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-5)

func TestFx(t *testing.T) {
	tstx := []float32{-2, -0.5, 0, 0.5, 2}
	cory := map[ActFun][]float32{
		Identity: {-2, -0.5, 0, 0.5, 2},
		Tanh:     {-0.9640276, -0.46211717, 0, 0.46211717, 0.9640276},
		Sigmoid:  {0.11920292, 0.37754068, 0.5, 0.62245935, 0.8807971},
		ReLU:     {0, 0, 0, 0.5, 2},
		Softplus: {0.12692805, 0.47407699, 0.6931472, 0.974077, 2.126928},
		XX1:      {0, 0, 0, 0.33333334, 0.6666667},
	}
	for af := Identity; af < ActFunN; af++ {
		cy := cory[af]
		for i, x := range tstx {
			y := af.Fx(x)
			dif := mat32.Abs(y - cy[i])
			if dif > difTol {
				t.Errorf("%v err: x: %v, y: %v, cor y: %v, dif: %v", af, x, y, cy[i], dif)
			}
		}
	}
}

// TestDFx checks derivatives against central finite differences
func TestDFx(t *testing.T) {
	const h = 1.0e-2
	for af := Identity; af < ActFunN; af++ {
		for _, x := range []float32{-1.5, -0.3, 0.4, 1.7} {
			num := (af.Fx(x+h) - af.Fx(x-h)) / (2 * h)
			dfx := af.DFx(x)
			if dif := mat32.Abs(num - dfx); dif > 1.0e-3 {
				t.Errorf("%v deriv err: x: %v, dfx: %v, numeric: %v", af, x, dfx, num)
			}
		}
	}
}

func TestApply(t *testing.T) {
	vals := []float32{-1, 1}
	ReLU.Apply(vals, vals)
	if vals[0] != 0 || vals[1] != 1 {
		t.Errorf("in-place Apply: %v", vals)
	}
	var af ActFun
	if err := af.FromString("Sigmoid"); err != nil || af != Sigmoid {
		t.Errorf("FromString: %v %v", af, err)
	}
	if Softplus.String() != "Softplus" {
		t.Errorf("String: %v", Softplus.String())
	}
}
