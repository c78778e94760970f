// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package graph provides a propagation graph of state and error nodes
connected by cables, as used for predictive coding circuits.

Each call to Graph.Step visits the nodes in the order they were added,
which the caller arranges to be a topological order of the feedforward
dependencies.  Before a node steps, its incoming edges deliver the
current values of their source variables, transformed by their cables.
Within a step, the first write to a variable assigns and later writes
add (tick accumulation); write counts are reset after every node step.
Variables retain their values across steps until Clear.
*/
package graph

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/params"
	"gonum.org/v1/gonum/mat"
)

// Graph is a set of nodes and the edges between them.
type Graph struct {

	// name of the graph
	Nm string

	// nodes, in step order
	Nodes []Node

	// map of name to node
	NodeMap map[string]Node `view:"-"`

	// all edges, in creation order
	Edges []*Edge

	// true when Validate has succeeded since the last wiring change
	Validated bool `inactive:"+"`
}

// New returns a new empty graph.
func New(name string) *Graph {
	return &Graph{Nm: name, NodeMap: map[string]Node{}}
}

func (gr *Graph) Name() string  { return gr.Nm }
func (gr *Graph) Label() string { return gr.Nm }
func (gr *Graph) NNodes() int   { return len(gr.Nodes) }

// AddNode adds the node to the end of the step order.
// Node names must be unique.
func (gr *Graph) AddNode(nd Node) error {
	if _, has := gr.NodeMap[nd.Name()]; has {
		return fmt.Errorf("graph %s: node named %s already exists", gr.Nm, nd.Name())
	}
	gr.Nodes = append(gr.Nodes, nd)
	gr.NodeMap[nd.Name()] = nd
	gr.Validated = false
	return nil
}

// NodeByName returns the node of given name, or nil if not found.
func (gr *Graph) NodeByName(name string) Node {
	return gr.NodeMap[name]
}

// NodeByNameTry returns the node of given name, emitting a log error
// message if not found.
func (gr *Graph) NodeByNameTry(name string) (Node, error) {
	nd := gr.NodeByName(name)
	if nd == nil {
		err := fmt.Errorf("Node named: %v not found in Graph: %v", name, gr.Nm)
		log.Println(err)
		return nil, err
	}
	return nd, nil
}

// Connect adds an edge from variable srcVar of src to variable dstVar
// of dst through the cable.
func (gr *Graph) Connect(src Node, srcVar Vars, dst Node, dstVar Vars, cb Cable) *Edge {
	ed := &Edge{Src: src, SrcVar: srcVar, Dst: dst, DstVar: dstVar, Cable: cb}
	gr.Edges = append(gr.Edges, ed)
	db := dst.AsBase()
	db.Recv = append(db.Recv, ed)
	gr.Validated = false
	return ed
}

// ConnectNames is Connect with nodes looked up by name.
func (gr *Graph) ConnectNames(src string, srcVar Vars, dst string, dstVar Vars, cb Cable) (*Edge, error) {
	sn, err := gr.NodeByNameTry(src)
	if err != nil {
		return nil, err
	}
	dn, err := gr.NodeByNameTry(dst)
	if err != nil {
		return nil, err
	}
	return gr.Connect(sn, srcVar, dn, dstVar, cb), nil
}

// Validate checks the wiring of every node and edge, returning all
// problems found.  Step fails until Validate succeeds.
func (gr *Graph) Validate() error {
	var errs []error
	for _, ed := range gr.Edges {
		if _, has := gr.NodeMap[ed.Src.Name()]; !has {
			errs = append(errs, &WiringError{Node: ed.Dst.Name(), Msg: fmt.Sprintf("edge %v from node not in graph", ed)})
		}
		if ed.Src.VarRef(ed.SrcVar) == nil {
			errs = append(errs, &WiringError{Node: ed.Src.Name(), Msg: fmt.Sprintf("edge %v: %s has no variable %v", ed, ed.Src.TypeName(), ed.SrcVar)})
		}
		if ed.Dst.VarRef(ed.DstVar) == nil {
			errs = append(errs, &WiringError{Node: ed.Dst.Name(), Msg: fmt.Sprintf("edge %v: %s has no variable %v", ed, ed.Dst.TypeName(), ed.DstVar)})
		}
		sb := ed.Src.AsBase()
		db := ed.Dst.AsBase()
		if sb.BatchSize != db.BatchSize {
			errs = append(errs, &WiringError{Node: db.Nm, Msg: fmt.Sprintf("edge %v: batch size %d into %d", ed, sb.BatchSize, db.BatchSize)})
		}
		ind, outd := ed.Cable.InDim(), ed.Cable.OutDim()
		if ind == 0 {
			ind, outd = sb.Dim, sb.Dim
		}
		if ind != sb.Dim || outd != db.Dim {
			errs = append(errs, &WiringError{Node: db.Nm, Msg: fmt.Sprintf("edge %v: cable maps %d to %d, nodes are %d and %d", ed, ind, outd, sb.Dim, db.Dim)})
		}
	}
	for _, nd := range gr.Nodes {
		if err := nd.CheckWiring(); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	gr.Validated = err == nil
	return err
}

// Step runs one step over all nodes in order.  If a node fails, Step
// returns its error immediately: that node and the nodes after it are
// not advanced.
func (gr *Graph) Step(skipCore bool) error {
	if !gr.Validated {
		return ErrNotValidated
	}
	for _, nd := range gr.Nodes {
		if err := gr.StepNode(nd, skipCore); err != nil {
			return err
		}
	}
	return nil
}

// StepNode delivers the incoming edges of nd and steps it.  Write
// counts of nd are reset afterward, whether or not the step succeeded.
func (gr *Graph) StepNode(nd Node, skipCore bool) error {
	nb := nd.AsBase()
	defer nb.ResetTicks()
	for _, ed := range nb.Recv {
		if err := ed.Send(); err != nil {
			return fmt.Errorf("graph %s: %w", gr.Nm, err)
		}
	}
	if err := nd.Step(skipCore); err != nil {
		return fmt.Errorf("graph %s: %w", gr.Nm, err)
	}
	return nil
}

// Clear clears all nodes.
func (gr *Graph) Clear() {
	for _, nd := range gr.Nodes {
		nd.Clear()
	}
}

// SetClamped sets the clamped state of the named node.
func (gr *Graph) SetClamped(name string, on bool) error {
	nd, err := gr.NodeByNameTry(name)
	if err != nil {
		return err
	}
	nd.AsBase().SetClamped(on)
	return nil
}

// Loss returns the total loss L over all error nodes.
func (gr *Graph) Loss() float32 {
	l := float32(0)
	for _, nd := range gr.Nodes {
		if en, ok := nd.(*ErrorNode); ok {
			l += en.L
		}
	}
	return l
}

// CalcUpdates returns the precision updates of all error nodes that
// use precision, by node name.
func (gr *Graph) CalcUpdates(radius float64) map[string]*mat.Dense {
	dws := map[string]*mat.Dense{}
	for _, nd := range gr.Nodes {
		en, ok := nd.(*ErrorNode)
		if !ok {
			continue
		}
		if dW := en.CalcUpdate(radius); dW != nil {
			dws[en.Nm] = dW
		}
	}
	return dws
}

// ApplyUpdates applies updates from CalcUpdates with learning rate lr.
func (gr *Graph) ApplyUpdates(dws map[string]*mat.Dense, lr float64) error {
	for nm, dW := range dws {
		nd, err := gr.NodeByNameTry(nm)
		if err != nil {
			return err
		}
		en, ok := nd.(*ErrorNode)
		if !ok {
			return fmt.Errorf("graph %s: node %s is not an error node", gr.Nm, nm)
		}
		if err := en.ApplyUpdate(dW, lr); err != nil {
			return err
		}
	}
	return nil
}

// ApplyParams applies given parameter style Sheet to all nodes,
// calling UpdateParams on any that were set.
func (gr *Graph) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, nd := range gr.Nodes {
		app, err := pars.Apply(nd, setMsg)
		if app {
			nd.UpdateParams()
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// SizeReport returns a string reporting the size of each node and the
// number of edges it receives, and total memory footprint.
func (gr *Graph) SizeReport() string {
	var b strings.Builder
	mem := 0
	for _, nd := range gr.Nodes {
		nb := nd.AsBase()
		nm := nd.Bytes()
		mem += nm
		fmt.Fprintf(&b, "%14s:\t Type: %s\t Dim: %d\t Recv: %d\t Mem: %v\n", nb.Nm, nd.TypeName(), nb.Dim, len(nb.Recv), (datasize.ByteSize)(nm).HumanReadable())
	}
	fmt.Fprintf(&b, "\n%14s:\t Nodes: %d\t Edges: %d\t Mem: %v\n", gr.Nm, len(gr.Nodes), len(gr.Edges), (datasize.ByteSize)(mem).HumanReadable())
	return b.String()
}
