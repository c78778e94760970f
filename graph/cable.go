// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"fmt"

	"github.com/emer/pcnet/randkey"
	"gonum.org/v1/gonum/mat"
)

// Cable transforms the values of a source variable into values for a
// destination variable.
type Cable interface {
	// Propagate returns the transformed values of in, which holds batch
	// rows.  in must not be modified.
	Propagate(in []float32, batch int) ([]float32, error)

	// InDim and OutDim return the row dimensions the cable accepts and
	// produces, or 0 if any dimension is accepted (and preserved).
	InDim() int
	OutDim() int
}

// SCable is a simple cable that scales its input by a coefficient.
type SCable struct {

	// multiplier
	Coeff float32 `def:"1"`
}

// NewSCable returns a new simple cable with given coefficient.
func NewSCable(coeff float32) *SCable {
	return &SCable{Coeff: coeff}
}

func (sc *SCable) InDim() int  { return 0 }
func (sc *SCable) OutDim() int { return 0 }

func (sc *SCable) Propagate(in []float32, batch int) ([]float32, error) {
	out := make([]float32, len(in))
	for i, x := range in {
		out[i] = x * sc.Coeff
	}
	return out, nil
}

// DCable is a dense cable: out = Coeff * in W, or in W^T if Trans is
// set, with W of shape (in, out).
type DCable struct {

	// weights, shape (in, out)
	W *mat.Dense

	// multiplier
	Coeff float32 `def:"1"`

	// use the transpose of W, mapping out back to in, as for feedback of errors
	Trans bool
}

// NewDCable returns a dense cable of shape (in, out) with weights
// drawn uniformly in [-scale, scale) with a key split from key.
func NewDCable(in, out int, scale float32, key randkey.Key) (*DCable, randkey.Key) {
	key, sub := key.Split()
	w := make([]float32, in*out)
	sub.UniformRange(w, -scale, scale)
	wd := make([]float64, in*out)
	for i, v := range w {
		wd[i] = float64(v)
	}
	return &DCable{W: mat.NewDense(in, out, wd), Coeff: 1}, key
}

// Transposed returns a cable sharing W that maps in the opposite direction.
func (dc *DCable) Transposed() *DCable {
	return &DCable{W: dc.W, Coeff: dc.Coeff, Trans: !dc.Trans}
}

func (dc *DCable) InDim() int {
	r, c := dc.W.Dims()
	if dc.Trans {
		return c
	}
	return r
}

func (dc *DCable) OutDim() int {
	r, c := dc.W.Dims()
	if dc.Trans {
		return r
	}
	return c
}

func (dc *DCable) Propagate(in []float32, batch int) ([]float32, error) {
	nin := dc.InDim()
	if batch <= 0 || len(in) != batch*nin {
		return nil, fmt.Errorf("graph: dense cable: %d input values for batch %d and dimension %d", len(in), batch, nin)
	}
	x := mat.NewDense(batch, nin, toFloat64(in))
	var y mat.Dense
	if dc.Trans {
		y.Mul(x, dc.W.T())
	} else {
		y.Mul(x, dc.W)
	}
	out := toFloat32(y.RawMatrix().Data)
	for i := range out {
		out[i] *= dc.Coeff
	}
	return out, nil
}

// Edge is a cable from a source node variable to a destination node variable.
type Edge struct {
	Src    Node
	SrcVar Vars
	Dst    Node
	DstVar Vars
	Cable  Cable
}

func (ed *Edge) String() string {
	return fmt.Sprintf("%s.%v -> %s.%v", ed.Src.Name(), ed.SrcVar, ed.Dst.Name(), ed.DstVar)
}

// Send propagates the current source values into the destination.
// A source variable that has not been written is not sent.
func (ed *Edge) Send() error {
	in := Extract(ed.Src, ed.SrcVar)
	if in == nil {
		return nil
	}
	out, err := ed.Cable.Propagate(in, ed.Src.AsBase().BatchSize)
	if err != nil {
		return fmt.Errorf("edge %v: %w", ed, err)
	}
	return Write(ed.Dst, ed.DstVar, out)
}

func toFloat64(v []float32) []float64 {
	d := make([]float64, len(v))
	for i, x := range v {
		d[i] = float64(x)
	}
	return d
}

func toFloat32(v []float64) []float32 {
	f := make([]float32, len(v))
	for i, x := range v {
		f[i] = float32(x)
	}
	return f
}
