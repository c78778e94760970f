// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"github.com/goki/ki/kit"
)

// Vars are the variables of graph nodes that cables can read from and
// write into.  Not every node type has every variable.
type Vars int32

//go:generate stringer -type=Vars

var KiT_Vars = kit.Enums.AddEnum(VarsN, kit.NotBitFlag, nil)

func (ev Vars) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Vars) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The node variables
const (
	// Z is the node state
	Z Vars = iota

	// PhiZ is the node output, the activation function of Z
	PhiZ

	// Dz is the total change signal computed on the last step
	Dz

	// DzTD is the top-down drive into a state node
	DzTD

	// DzBU is the bottom-up drive into a state node, typically error feedback
	DzBU

	// PredMu is the prediction input of an error node
	PredMu

	// PredTarg is the target input of an error node
	PredTarg

	// Mask multiplies the inputs and outputs of an error node, elementwise
	Mask

	VarsN
)

// NodeFlags are bit-flags encoding binary state of nodes
type NodeFlags int32

//go:generate stringer -type=NodeFlags

var KiT_NodeFlags = kit.Enums.AddEnum(NodeFlagsN, kit.BitFlag, nil)

func (ev NodeFlags) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NodeFlags) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The node flags
const (
	// NodeClamped means the node state Z is held fixed: its dynamics are
	// not applied, though PhiZ is still computed from it
	NodeClamped NodeFlags = iota

	NodeFlagsN
)
