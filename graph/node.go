// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"errors"
	"fmt"

	"github.com/goki/ki/bitflag"
)

// ErrNotValidated is returned by Graph.Step when the graph has not
// been successfully validated since its wiring last changed.
var ErrNotValidated = errors.New("graph: Step called before a successful Validate")

// WiringError reports a structural wiring constraint violation.
type WiringError struct {
	Node string
	Msg  string
}

func (we *WiringError) Error() string {
	return fmt.Sprintf("graph: node %s mis-wired: %s", we.Node, we.Msg)
}

// MissingInputError reports a required input variable that has not
// been written since the node was last cleared.
type MissingInputError struct {
	Node string
	Var  Vars
}

func (me *MissingInputError) Error() string {
	return fmt.Sprintf("graph: node %s: input %v is missing", me.Node, me.Var)
}

// Node is a graph node.  Each node type holds a fixed set of variables
// as struct fields, exposed through VarRef.
type Node interface {
	// Name returns the node's name, unique within its graph.
	Name() string

	// TypeName returns the node type, for params selection.
	TypeName() string

	// Class returns the space separated class tags, for params selection.
	Class() string

	// AsBase returns the shared node state.
	AsBase() *NodeBase

	// VarRef returns a pointer to the values of v, or nil if the node
	// type does not have that variable.  Values are (batch, dim) in
	// row-major order, and are nil until first written.
	VarRef(v Vars) *[]float32

	// CheckWiring returns a *WiringError if the incoming edges violate
	// the constraints of the node type.
	CheckWiring() error

	// Step runs one update of the node from its current inputs.
	// If skipCore is true the core dynamics are skipped but the output
	// PhiZ is still recomputed.
	Step(skipCore bool) error

	// Clear returns the node to its initial state, discarding inputs.
	Clear()

	// UpdateParams updates derived parameters after params are set.
	UpdateParams()

	// Bytes returns the memory used by the node's values.
	Bytes() int
}

// NodeBase has the state shared by all node types.
type NodeBase struct {

	// name of the node
	Nm string

	// space separated class tags for params selection
	Cls string

	// dimension: number of units in the node
	Dim int

	// batch size
	BatchSize int

	// bit flags for binary state, see NodeFlags
	Flags int32

	// number of writes to each variable during the current step.  The first write assigns and later ones add.  Reset after every step.
	Ticks [VarsN]int `view:"-"`

	// incoming edges
	Recv []*Edge `view:"-"`

	// state
	Z []float32

	// output, fx(Z)
	PhiZ []float32

	// change signal from the last step
	Dz []float32
}

// InitBase sets the name and shape, and allocates Z, PhiZ and Dz.
func (nb *NodeBase) InitBase(name string, dim, batch int) {
	nb.Nm = name
	nb.Dim = dim
	nb.BatchSize = batch
	n := dim * batch
	nb.Z = make([]float32, n)
	nb.PhiZ = make([]float32, n)
	nb.Dz = make([]float32, n)
}

func (nb *NodeBase) Name() string        { return nb.Nm }
func (nb *NodeBase) Class() string       { return nb.Cls }
func (nb *NodeBase) SetClass(cls string) { nb.Cls = cls }
func (nb *NodeBase) Label() string       { return nb.Nm }
func (nb *NodeBase) AsBase() *NodeBase   { return nb }
func (nb *NodeBase) NValues() int        { return nb.Dim * nb.BatchSize }

// IsClamped returns true if the node state is held fixed.
func (nb *NodeBase) IsClamped() bool {
	return bitflag.Has32(nb.Flags, int(NodeClamped))
}

// SetClamped sets the clamped state of the node.
func (nb *NodeBase) SetClamped(on bool) {
	bitflag.SetState32(&nb.Flags, on, int(NodeClamped))
}

// ResetTicks zeroes all write counts.
func (nb *NodeBase) ResetTicks() {
	nb.Ticks = [VarsN]int{}
}

// ClearBase zeroes Z, PhiZ and Dz and resets ticks.
func (nb *NodeBase) ClearBase() {
	for i := range nb.Z {
		nb.Z[i] = 0
		nb.PhiZ[i] = 0
		nb.Dz[i] = 0
	}
	nb.ResetTicks()
}

func (nb *NodeBase) bytesOf(vals ...[]float32) int {
	n := 0
	for _, v := range vals {
		n += 4 * len(v)
	}
	return n
}

// Write writes vals into variable v of the node.  The first write to v
// within a step assigns, subsequent writes in the same step add.
func Write(nd Node, v Vars, vals []float32) error {
	nb := nd.AsBase()
	ref := nd.VarRef(v)
	if ref == nil {
		return &WiringError{Node: nb.Nm, Msg: fmt.Sprintf("%s has no variable %v", nd.TypeName(), v)}
	}
	n := nb.NValues()
	if len(vals) != n {
		return fmt.Errorf("graph: node %s: writing %d values to %v, want %d", nb.Nm, len(vals), v, n)
	}
	if nb.Ticks[v] == 0 || len(*ref) != n {
		if len(*ref) != n {
			*ref = make([]float32, n)
		}
		copy(*ref, vals)
	} else {
		cur := *ref
		for i, x := range vals {
			cur[i] += x
		}
	}
	nb.Ticks[v]++
	return nil
}

// Extract returns the current values of variable v, or nil if the
// node has no such variable or it has not been written.
func Extract(nd Node, v Vars) []float32 {
	ref := nd.VarRef(v)
	if ref == nil {
		return nil
	}
	return *ref
}
