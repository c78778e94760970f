// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"github.com/emer/pcnet/actfun"
)

// StateParams are the state integration parameters.
type StateParams struct {

	// integration rate of the change signal into the state
	Beta float32 `def:"0.1" min:"0"`

	// decay of the state toward 0, per step
	Leak float32 `def:"0" min:"0"`

	// retention factor of the state: 1 = perfect memory, 0 = state is reset to the drive every step
	Zeta float32 `def:"1" min:"0" max:"1"`

	// output activation function
	Fun actfun.ActFun

	// modulate the bottom-up drive by the derivative of Fun at the current state
	ModBU bool
}

func (sp *StateParams) Update() {
}

func (sp *StateParams) Defaults() {
	sp.Beta = 0.1
	sp.Leak = 0
	sp.Zeta = 1
	sp.Fun = actfun.Identity
	sp.ModBU = false
	sp.Update()
}

// StateNode is a plain state node, integrating top-down and bottom-up
// drives: z' = z*Zeta + dz*Beta - z*Leak, with dz = DzTD + DzBU.
type StateNode struct {
	NodeBase

	// integration parameters
	State StateParams `view:"inline"`

	// top-down drive
	DzTD []float32

	// bottom-up drive
	DzBU []float32
}

// NewStateNode returns a new state node of given dimension and batch size.
func NewStateNode(name string, dim, batch int) *StateNode {
	sn := &StateNode{}
	sn.InitBase(name, dim, batch)
	sn.State.Defaults()
	return sn
}

func (sn *StateNode) TypeName() string { return "StateNode" }

func (sn *StateNode) VarRef(v Vars) *[]float32 {
	switch v {
	case Z:
		return &sn.Z
	case PhiZ:
		return &sn.PhiZ
	case Dz:
		return &sn.Dz
	case DzTD:
		return &sn.DzTD
	case DzBU:
		return &sn.DzBU
	}
	return nil
}

// CheckWiring accepts any incoming edges to its variables.
func (sn *StateNode) CheckWiring() error {
	return nil
}

// Step integrates the drives into the state.  Clamped nodes, or
// skipCore, keep z as is.  PhiZ is always recomputed.
func (sn *StateNode) Step(skipCore bool) error {
	dz := sn.Dz
	for i := range dz {
		dz[i] = 0
	}
	if sn.DzTD != nil {
		for i, d := range sn.DzTD {
			dz[i] += d
		}
	}
	if sn.DzBU != nil {
		for i, d := range sn.DzBU {
			if sn.State.ModBU {
				d *= sn.State.Fun.DFx(sn.Z[i])
			}
			dz[i] += d
		}
	}
	if !sn.IsClamped() && !skipCore {
		st := &sn.State
		for i, z := range sn.Z {
			sn.Z[i] = z*st.Zeta + dz[i]*st.Beta - z*st.Leak
		}
	}
	sn.State.Fun.Apply(sn.PhiZ, sn.Z)
	return nil
}

// Clear zeroes the state and discards the drives.
func (sn *StateNode) Clear() {
	sn.ClearBase()
	sn.DzTD = nil
	sn.DzBU = nil
}

func (sn *StateNode) UpdateParams() {
	sn.State.Update()
}

func (sn *StateNode) Bytes() int {
	return sn.bytesOf(sn.Z, sn.PhiZ, sn.Dz, sn.DzTD, sn.DzBU)
}
