// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package precis maintains the covariance matrix of an error node and the
precision (inverse covariance factor) derived from it.

The covariance is conditioned before every factorization: its diagonal is
floored and a small epsilon is added, keeping the off-diagonal entries.
Only if that matrix does not factor are the off-diagonal entries bounded,
which makes it strictly diagonally dominant and so Cholesky-decomposable
after any update.
*/
package precis

import (
	"errors"
	"fmt"

	"github.com/emer/pcnet/randkey"
	"gonum.org/v1/gonum/mat"
)

// ErrNotPD is returned when the conditioned covariance fails to factor.
var ErrNotPD = errors.New("precis: covariance is not positive definite")

// PrecParams are the conditioning parameters of the covariance.
type PrecParams struct {

	// added to every covariance entry before factorization
	Eps float64 `def:"0.00025" min:"0"`

	// minimum variance on the diagonal
	VarFloor float64 `def:"1" min:"0"`

	// when the floored covariance does not factor, off-diagonal entries are bounded to OffFrac / (n-1) - Eps in magnitude, so each row's off-diagonal sum is below OffFrac times the diagonal floor
	OffFrac float64 `def:"0.99" min:"0" max:"1"`

	// spread of the uniform off-diagonal noise at initialization
	InitSpread float64 `def:"0.01" min:"0"`
}

func (pp *PrecParams) Update() {
}

func (pp *PrecParams) Defaults() {
	pp.Eps = 0.00025
	pp.VarFloor = 1
	pp.OffFrac = 0.99
	pp.InitSpread = 0.01
	pp.Update()
}

// OffBound returns the maximum off-diagonal magnitude for dimension n.
func (pp *PrecParams) OffBound(n int) float64 {
	if n < 2 {
		return 0
	}
	b := pp.OffFrac/float64(n-1) - pp.Eps
	if b < 0 {
		return 0
	}
	return b
}

// Precision holds a covariance matrix and the precision derived from it.
type Precision struct {

	// conditioning parameters
	Prm PrecParams `view:"inline"`

	// dimension
	N int

	// covariance, symmetric
	Sigma *mat.SymDense

	// precision: the transposed inverse of the lower Cholesky factor of the conditioned Sigma
	Prec *mat.Dense

	// log determinant of the conditioned Sigma, from the last Compute
	LogDet float64
}

// New returns a precision of dimension n whose covariance is the
// identity plus symmetric uniform noise in (-InitSpread, InitSpread)
// off the diagonal, drawn with a key split from key.  The precision is
// computed before returning.
func New(n int, key randkey.Key) (*Precision, randkey.Key, error) {
	pr := &Precision{N: n}
	pr.Prm.Defaults()
	key, sub := key.Split()
	noise := make([]float32, n*n)
	sub.UniformRange(noise, -1, 1)
	pr.Sigma = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		pr.Sigma.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			v := pr.Prm.InitSpread * float64(noise[i*n+j]+noise[j*n+i]) / 2
			pr.Sigma.SetSym(i, j, v)
		}
	}
	pr.Prec = mat.NewDense(n, n, nil)
	return pr, key, pr.Compute(true)
}

// Floored returns a copy of Sigma with the diagonal floored at
// VarFloor.  Off-diagonal entries are kept.
func (pr *Precision) Floored() *mat.SymDense {
	n := pr.N
	c := mat.NewSymDense(n, nil)
	c.CopySym(pr.Sigma)
	for i := 0; i < n; i++ {
		if c.At(i, i) < pr.Prm.VarFloor {
			c.SetSym(i, i, pr.Prm.VarFloor)
		}
	}
	return c
}

// Bound clips the off-diagonal entries of c to OffBound in place.
func (pr *Precision) Bound(c *mat.SymDense) {
	n := pr.N
	bnd := pr.Prm.OffBound(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			o := c.At(i, j)
			switch {
			case o > bnd:
				c.SetSym(i, j, bnd)
			case o < -bnd:
				c.SetSym(i, j, -bnd)
			}
		}
	}
}

// Conditioned returns the floored Sigma, with off-diagonal entries
// bounded only if the floored matrix plus Eps does not factor into an
// invertible Cholesky factor.  The inverse of that factor is also
// returned, and is nil if even the bounded matrix fails.
func (pr *Precision) Conditioned() (*mat.SymDense, *mat.TriDense, float64) {
	c := pr.Floored()
	if linv, ld := pr.factor(c); linv != nil {
		return c, linv, ld
	}
	pr.Bound(c)
	linv, ld := pr.factor(c)
	return c, linv, ld
}

// factor returns the inverse lower Cholesky factor of c plus Eps in
// every entry, and its log determinant, or nil if c is not positive
// definite or the factor is too ill-conditioned to invert.
func (pr *Precision) factor(c *mat.SymDense) (*mat.TriDense, float64) {
	n := pr.N
	ce := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			ce.SetSym(i, j, c.At(i, j)+pr.Prm.Eps)
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(ce) {
		return nil, 0
	}
	var L, Linv mat.TriDense
	chol.LTo(&L)
	if err := Linv.InverseTri(&L); err != nil {
		return nil, 0
	}
	return &Linv, chol.LogDet()
}

// Compute derives Prec from Sigma.  If rebuild is true the conditioned
// covariance also replaces Sigma.  A failed factorization leaves Prec
// and Sigma unchanged and returns ErrNotPD.
func (pr *Precision) Compute(rebuild bool) error {
	c, linv, ld := pr.Conditioned()
	if linv == nil {
		return ErrNotPD
	}
	if rebuild {
		pr.Sigma.CopySym(c)
	}
	pr.Prec.CloneFrom(linv.T())
	pr.LogDet = ld
	return nil
}

// CalcUpdate returns the covariance update for errors e, shape
// (batch, N): the negated half difference between the error second
// moment e^T e and the precision.  If radius > 0 the Frobenius norm of
// the update is clipped to radius.  If mod is non-nil it multiplies
// the update elementwise.
func (pr *Precision) CalcUpdate(e *mat.Dense, radius float64, mod *mat.Dense) *mat.Dense {
	n := pr.N
	dW := mat.NewDense(n, n, nil)
	dW.Mul(e.T(), e)
	dW.Sub(dW, pr.Prec)
	dW.Scale(0.5, dW)
	if radius > 0 {
		if nrm := mat.Norm(dW, 2); nrm > radius {
			dW.Scale(radius/nrm, dW)
		}
	}
	if mod != nil {
		dW.MulElem(dW, mod)
	}
	dW.Scale(-1, dW)
	return dW
}

// ApplyDelta adds lr times the symmetric part of dW to Sigma and
// recomputes the precision with rebuilding.
func (pr *Precision) ApplyDelta(dW mat.Matrix, lr float64) error {
	r, c := dW.Dims()
	if r != pr.N || c != pr.N {
		return fmt.Errorf("precis: delta of shape (%d, %d) for dimension %d", r, c, pr.N)
	}
	for i := 0; i < pr.N; i++ {
		for j := i; j < pr.N; j++ {
			d := (dW.At(i, j) + dW.At(j, i)) / 2
			pr.Sigma.SetSym(i, j, pr.Sigma.At(i, j)+lr*d)
		}
	}
	return pr.Compute(true)
}

// Bytes returns the memory used by Sigma and Prec.
func (pr *Precision) Bytes() int {
	return 2 * 8 * pr.N * pr.N
}
