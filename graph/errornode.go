// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"fmt"

	"github.com/emer/pcnet/actfun"
	"github.com/emer/pcnet/precis"
	"github.com/emer/pcnet/randkey"
	"gonum.org/v1/gonum/mat"
)

// ErrParams are the error node parameters.
type ErrParams struct {

	// multiplier on the error units (but not on the loss)
	ExScale float32 `def:"1"`

	// output activation function
	Fun actfun.ActFun
}

func (ep *ErrParams) Update() {
}

func (ep *ErrParams) Defaults() {
	ep.ExScale = 1
	ep.Fun = actfun.Identity
	ep.Update()
}

// ErrorNode computes the mismatch between a prediction PredMu and a
// target PredTarg: Dz = PredTarg - PredMu, with the weighted, scaled
// and optionally precision-weighted error in Z, and the summed squared
// error in L.  It must receive exactly two edges, one into PredMu and
// one into PredTarg.
type ErrorNode struct {
	NodeBase

	// error parameters
	Err ErrParams `view:"inline"`

	// prediction
	PredMu []float32

	// target
	PredTarg []float32

	// elementwise mask on inputs and outputs, nil = none
	Mask []float32

	// per batch row weights on the error and loss, nil = none
	Weights []float32

	// if > 0, the error and loss are divided by this, typically the batch size
	AvgScalar float32

	// loss: sum over rows of the (weighted) squared error, from the last step
	L float32 `inactive:"+"`

	// precision weighting, nil = none
	Prec *precis.Precision

	// elementwise multiplier on the precision update, nil = none
	ModFactor *mat.Dense `view:"-"`
}

// NewErrorNode returns a new error node of given dimension and batch size.
func NewErrorNode(name string, dim, batch int) *ErrorNode {
	en := &ErrorNode{}
	en.InitBase(name, dim, batch)
	en.Err.Defaults()
	return en
}

func (en *ErrorNode) TypeName() string { return "ErrorNode" }

// UsePrecision turns on precision weighting, initializing the
// covariance with noise drawn from a key split from key.
func (en *ErrorNode) UsePrecision(key randkey.Key) (randkey.Key, error) {
	pr, key, err := precis.New(en.Dim, key)
	if err != nil {
		return key, fmt.Errorf("error node %s: %w", en.Nm, err)
	}
	en.Prec = pr
	return key, nil
}

func (en *ErrorNode) VarRef(v Vars) *[]float32 {
	switch v {
	case Z:
		return &en.Z
	case PhiZ:
		return &en.PhiZ
	case Dz:
		return &en.Dz
	case PredMu:
		return &en.PredMu
	case PredTarg:
		return &en.PredTarg
	case Mask:
		return &en.Mask
	}
	return nil
}

// CheckWiring requires exactly two incoming edges, into PredMu and PredTarg.
func (en *ErrorNode) CheckWiring() error {
	if len(en.Recv) != 2 {
		return &WiringError{Node: en.Nm, Msg: fmt.Sprintf("error node needs exactly 2 incoming edges, has %d", len(en.Recv))}
	}
	hasMu, hasTarg := false, false
	for _, ed := range en.Recv {
		switch ed.DstVar {
		case PredMu:
			hasMu = true
		case PredTarg:
			hasTarg = true
		default:
			return &WiringError{Node: en.Nm, Msg: fmt.Sprintf("edge %v targets %v, only PredMu and PredTarg allowed", ed, ed.DstVar)}
		}
	}
	if !hasMu || !hasTarg {
		return &WiringError{Node: en.Nm, Msg: "needs one edge into PredMu and one into PredTarg"}
	}
	return nil
}

// Step computes the error.  It returns a *MissingInputError, without
// changing any state, if PredMu or PredTarg has not been written
// during this step.
// Clamped nodes, or skipCore, keep Z as is and zero Dz.
func (en *ErrorNode) Step(skipCore bool) error {
	if !en.IsClamped() && !skipCore {
		if en.PredMu == nil || en.Ticks[PredMu] == 0 {
			return &MissingInputError{Node: en.Nm, Var: PredMu}
		}
		if en.PredTarg == nil || en.Ticks[PredTarg] == 0 {
			return &MissingInputError{Node: en.Nm, Var: PredTarg}
		}
		en.stepCore()
	} else {
		for i := range en.Dz {
			en.Dz[i] = 0
		}
	}
	en.Err.Fun.Apply(en.PhiZ, en.Z)
	if en.Mask != nil {
		for i, m := range en.Mask {
			en.Dz[i] *= m
			en.Z[i] *= m
			en.PhiZ[i] *= m
		}
	}
	return nil
}

func (en *ErrorNode) stepCore() {
	dim := en.Dim
	e := make([]float32, len(en.PredMu))
	for i, mu := range en.PredMu {
		targ := en.PredTarg[i]
		if en.Mask != nil {
			mu *= en.Mask[i]
			targ *= en.Mask[i]
		}
		e[i] = targ - mu
	}
	z := make([]float32, len(e))
	loss := float32(0)
	for b := 0; b < en.BatchSize; b++ {
		lb := float32(0)
		w := float32(1)
		if en.Weights != nil {
			w = en.Weights[b]
		}
		for i := b * dim; i < (b+1)*dim; i++ {
			lb += e[i] * e[i]
			z[i] = e[i] * w * en.Err.ExScale
		}
		loss += lb * w
	}
	if en.AvgScalar > 0 {
		loss /= en.AvgScalar
		for i := range z {
			z[i] /= en.AvgScalar
		}
	}
	if en.Prec != nil {
		zm := mat.NewDense(en.BatchSize, dim, toFloat64(z))
		var zp mat.Dense
		zp.Mul(zm, en.Prec.Prec)
		z = toFloat32(zp.RawMatrix().Data)
	}
	copy(en.Dz, e)
	copy(en.Z, z)
	en.L = loss
}

// SetWeights sets the per batch row weights.
func (en *ErrorNode) SetWeights(w []float32) error {
	if len(w) != en.BatchSize {
		return fmt.Errorf("error node %s: %d weights for batch size %d", en.Nm, len(w), en.BatchSize)
	}
	en.Weights = append(en.Weights[:0], w...)
	return nil
}

// CalcUpdate returns the covariance update computed from the current
// output PhiZ, or nil if the node has no precision.  If radius > 0 the
// update norm is clipped to it.
func (en *ErrorNode) CalcUpdate(radius float64) *mat.Dense {
	if en.Prec == nil {
		return nil
	}
	e := mat.NewDense(en.BatchSize, en.Dim, toFloat64(en.PhiZ))
	return en.Prec.CalcUpdate(e, radius, en.ModFactor)
}

// ApplyUpdate applies an update from CalcUpdate with learning rate lr
// and recomputes the precision.
func (en *ErrorNode) ApplyUpdate(dW *mat.Dense, lr float64) error {
	if en.Prec == nil || dW == nil {
		return nil
	}
	if err := en.Prec.ApplyDelta(dW, lr); err != nil {
		return fmt.Errorf("error node %s: %w", en.Nm, err)
	}
	return nil
}

// Clear zeroes the state and discards inputs, mask, weights and scalar.
// The precision is kept.
func (en *ErrorNode) Clear() {
	en.ClearBase()
	en.PredMu = nil
	en.PredTarg = nil
	en.Mask = nil
	en.Weights = nil
	en.AvgScalar = 0
	en.L = 0
}

func (en *ErrorNode) UpdateParams() {
	en.Err.Update()
	if en.Prec != nil {
		en.Prec.Prm.Update()
	}
}

func (en *ErrorNode) Bytes() int {
	n := en.bytesOf(en.Z, en.PhiZ, en.Dz, en.PredMu, en.PredTarg, en.Mask, en.Weights)
	if en.Prec != nil {
		n += en.Prec.Bytes()
	}
	return n
}
