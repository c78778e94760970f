// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package precis

import (
	"math"
	"testing"

	"github.com/emer/pcnet/randkey"
	"gonum.org/v1/gonum/mat"
)

const difTol = 1.0e-9

func checkInvariant(t *testing.T, pr *Precision, label string) {
	t.Helper()
	n := pr.N
	for i := 0; i < n; i++ {
		if pr.Sigma.At(i, i) < pr.Prm.VarFloor {
			t.Errorf("%s: diagonal %d below floor: %v", label, i, pr.Sigma.At(i, i))
		}
		for j := 0; j < n; j++ {
			if pr.Sigma.At(i, j) != pr.Sigma.At(j, i) {
				t.Errorf("%s: sigma not symmetric at %d,%d", label, i, j)
			}
		}
	}
	if _, linv, _ := pr.Conditioned(); linv == nil {
		t.Errorf("%s: conditioned sigma not Cholesky decomposable", label)
	}
}

func TestNew(t *testing.T) {
	pr, key, err := New(5, randkey.New(3))
	if err != nil {
		t.Fatal(err)
	}
	if key == randkey.New(3) {
		t.Errorf("key not advanced")
	}
	checkInvariant(t, pr, "new")
	for i := 0; i < 5; i++ {
		if pr.Sigma.At(i, i) != 1 {
			t.Errorf("initial diagonal: %v", pr.Sigma.At(i, i))
		}
	}
	// Prec^T Prec = (L L^T)^-1 = Sigma^-1 of the conditioned matrix
	c, _, _ := pr.Conditioned()
	cs := mat.NewDense(5, 5, nil)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			cs.Set(i, j, c.At(i, j)+pr.Prm.Eps)
		}
	}
	var pp, id mat.Dense
	pp.Mul(pr.Prec, pr.Prec.T())
	id.Mul(&pp, cs)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			cor := 0.0
			if i == j {
				cor = 1
			}
			if math.Abs(id.At(i, j)-cor) > 1.0e-6 {
				t.Errorf("Prec Prec^T Sigma != I at %d,%d: %v", i, j, id.At(i, j))
			}
		}
	}
}

func TestUpdates(t *testing.T) {
	n := 4
	pr, key, err := New(n, randkey.New(11))
	if err != nil {
		t.Fatal(err)
	}
	errs := map[string]func(vals []float32){
		"zero": func(vals []float32) {
			for i := range vals {
				vals[i] = 0
			}
		},
		"large": func(vals []float32) {
			for i := range vals {
				vals[i] *= 1000
			}
		},
		"collinear": func(vals []float32) {
			for i := range vals {
				vals[i] = vals[i-i%n]
			}
		},
	}
	for _, nm := range []string{"zero", "large", "collinear"} {
		for it := 0; it < 20; it++ {
			var sub randkey.Key
			key, sub = key.Split()
			vals := make([]float32, 3*n)
			sub.UniformRange(vals, -1, 1)
			errs[nm](vals)
			e := mat.NewDense(3, n, nil)
			for i, v := range vals {
				e.Set(i/n, i%n, float64(v))
			}
			dW := pr.CalcUpdate(e, 0, nil)
			if err := pr.ApplyDelta(dW, 0.5); err != nil {
				t.Fatalf("%s: %v", nm, err)
			}
			checkInvariant(t, pr, nm)
		}
	}
	// near singular: all off-diagonals forced well past the bound
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pr.Sigma.SetSym(i, j, 10)
		}
		pr.Sigma.SetSym(i, i, 0)
	}
	if err := pr.Compute(true); err != nil {
		t.Fatal(err)
	}
	checkInvariant(t, pr, "near singular")
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(pr.Sigma.At(i, j)) > pr.Prm.OffBound(n)+difTol {
				t.Errorf("near singular: off-diagonal %d,%d not bounded: %v", i, j, pr.Sigma.At(i, j))
			}
		}
	}
}

func TestComputeKeepsOffDiag(t *testing.T) {
	n := 3
	pr, _, err := New(n, randkey.New(2))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		pr.Sigma.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			pr.Sigma.SetSym(i, j, 0.5)
		}
	}
	if err := pr.Compute(true); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if pr.Sigma.At(i, j) != 0.5 {
				t.Errorf("off-diagonal %d,%d changed: %v", i, j, pr.Sigma.At(i, j))
			}
		}
	}
	// diagonal below the floor is raised, off-diagonals still kept
	pr.Sigma.SetSym(1, 1, 0.2)
	if err := pr.Compute(true); err != nil {
		t.Fatal(err)
	}
	if pr.Sigma.At(1, 1) != 1 || pr.Sigma.At(0, 1) != 0.5 {
		t.Errorf("floor: %v %v", pr.Sigma.At(1, 1), pr.Sigma.At(0, 1))
	}

	// large nodes keep their initial spread
	big, _, err := New(200, randkey.New(5))
	if err != nil {
		t.Fatal(err)
	}
	mx := 0.0
	for i := 0; i < 200; i++ {
		for j := i + 1; j < 200; j++ {
			mx = math.Max(mx, math.Abs(big.Sigma.At(i, j)))
		}
	}
	if mx <= big.Prm.OffBound(200) {
		t.Errorf("initial off-diagonals were bounded: max %v", mx)
	}
}

func TestCalcUpdate(t *testing.T) {
	pr, _, _ := New(2, randkey.New(1))
	e := mat.NewDense(1, 2, []float64{3, 4})
	dW := pr.CalcUpdate(e, 0, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			cor := -(e.At(0, i)*e.At(0, j) - pr.Prec.At(i, j)) / 2
			if math.Abs(dW.At(i, j)-cor) > difTol {
				t.Errorf("dW %d,%d: %v != %v", i, j, dW.At(i, j), cor)
			}
		}
	}
	dc := pr.CalcUpdate(e, 1, nil)
	if nrm := mat.Norm(dc, 2); math.Abs(nrm-1) > difTol {
		t.Errorf("clipped norm: %v", nrm)
	}
	mod := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	dm := pr.CalcUpdate(e, 0, mod)
	if dm.At(0, 1) != 0 || dm.At(0, 0) != dW.At(0, 0) {
		t.Errorf("modulated update: %v", mat.Formatted(dm))
	}
	if err := pr.ApplyDelta(mat.NewDense(3, 3, nil), 1); err == nil {
		t.Errorf("expected error for wrong delta shape")
	}
}
