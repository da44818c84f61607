// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

import (
	"fmt"
	"log"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/tensor"
	"github.com/FigTop/eligibility-propagation/spikefn"
)

// Cell is one fully-connected recurrent layer of LIF neurons: the layer
// parameters together with the input and recurrent weight matrices it owns.
// Weights may be mutated externally (e.g., by an optimizer) between complete
// forward / backward passes only -- no step or backward computation mutates
// them, and none must observe a mutation made after its pass started.
type Cell struct {

	// number of input channels feeding the layer
	NIn int `min:"1" desc:"number of input channels feeding the layer"`

	// number of recurrent neurons in the layer
	NRec int `min:"1" desc:"number of recurrent neurons in the layer"`

	// membrane and discretization parameters
	Params Params `view:"inline" desc:"membrane time constant, threshold, time step, gradient-stopping flag"`

	// spike function parameters (surrogate gradient scale)
	Fun spikefn.Params `view:"inline" desc:"spike generation function parameters -- Heaviside forward, triangular pseudo-derivative backward"`

	// initial random weight distribution
	WtInit WtInitParams `view:"inline" desc:"initial random weight distribution -- Var is scaled by 1/sqrt(fan-in) in InitWeights"`

	// input weights, NIn x NRec
	WtIn *tensor.Float32 `view:"-" desc:"input weight matrix, NIn x NRec"`

	// recurrent weights, NRec x NRec -- diagonal reads as zero always
	WtRec *tensor.Float32 `view:"-" desc:"recurrent weight matrix, NRec x NRec -- the diagonal (autapses) reads as exactly zero on every access regardless of stored values"`
}

// NewCell returns a new cell with the given input and recurrent widths,
// with default parameters and randomly initialized weights.
func NewCell(nIn, nRec int) *Cell {
	cl := &Cell{NIn: nIn, NRec: nRec}
	cl.Defaults()
	cl.WtIn = tensor.NewFloat32([]int{nIn, nRec}, "In", "Neuron")
	cl.WtRec = tensor.NewFloat32([]int{nRec, nRec}, "Send", "Recv")
	cl.InitWeights()
	return cl
}

func (cl *Cell) Defaults() {
	cl.Params.Defaults()
	cl.Fun.Defaults()
	cl.WtInit.Defaults()
}

// UpdateParams updates all params given any changes that might have been
// made to individual values
func (cl *Cell) UpdateParams() {
	cl.Params.Update()
	cl.Fun.Update()
}

// InitWeights initializes the weight matrices from the WtInit random
// distribution, scaled by 1/sqrt of the sending fan-in.  The stored
// recurrent diagonal is set to zero, although it is excluded on read in
// any case.
func (cl *Cell) InitWeights() {
	wp := cl.WtInit
	wp.Var = float64(1 / math32.Sqrt(float32(cl.NIn)))
	for i := range cl.WtIn.Values {
		cl.WtIn.Values[i] = float32(wp.Gen(-1))
	}
	wp.Var = float64(1 / math32.Sqrt(float32(cl.NRec)))
	for si := 0; si < cl.NRec; si++ {
		for ri := 0; ri < cl.NRec; ri++ {
			if si == ri {
				cl.WtRec.Values[si*cl.NRec+ri] = 0
				continue
			}
			cl.WtRec.Values[si*cl.NRec+ri] = float32(wp.Gen(-1))
		}
	}
}

// RecWt returns the recurrent weight from sending neuron si to receiving
// neuron ri, which is exactly zero on the diagonal (no autapses) no matter
// what the underlying matrix stores there.
func (cl *Cell) RecWt(si, ri int) float32 {
	if si == ri {
		return 0
	}
	return cl.WtRec.Values[si*cl.NRec+ri]
}

// State is the full state of the layer for one batch of sequences: the
// membrane potential and spike output of each neuron per batch element.
// States are produced fresh by every step and never mutated in place.
type State struct {

	// membrane potential, batch x NRec
	V *tensor.Float32 `desc:"membrane potential, batch x NRec"`

	// spike output in rate units (1/Dt per spike), batch x NRec
	Z *tensor.Float32 `desc:"spike output in rate units (1/Dt per spike), batch x NRec"`
}

// Batch returns the batch size of the state.
func (st *State) Batch() int {
	return st.V.DimSize(0)
}

// ZeroState returns the all-zero initial state for the given batch size,
// used at the start of every sequence.
func (cl *Cell) ZeroState(batch int) *State {
	return &State{
		V: tensor.NewFloat32([]int{batch, cl.NRec}, "Batch", "Neuron"),
		Z: tensor.NewFloat32([]int{batch, cl.NRec}, "Batch", "Neuron"),
	}
}

// CheckStep verifies the shape preconditions for one step: in must be
// batch x NIn and st batch x NRec with matching batch sizes.  Returns and
// logs an error before any computation on violation.
func (cl *Cell) CheckStep(in *tensor.Float32, st *State) error {
	if in == nil || st == nil || st.V == nil || st.Z == nil {
		err := fmt.Errorf("lif.Cell: Step input or state is nil")
		log.Println(err)
		return err
	}
	if in.NumDims() != 2 || in.DimSize(1) != cl.NIn {
		err := fmt.Errorf("lif.Cell: input must be batch x NIn (%d), got dims %d x %d", cl.NIn, in.DimSize(0), in.DimSize(1))
		log.Println(err)
		return err
	}
	if st.V.NumDims() != 2 || st.V.DimSize(1) != cl.NRec || st.Z.NumDims() != 2 || st.Z.DimSize(1) != cl.NRec {
		err := fmt.Errorf("lif.Cell: state must be batch x NRec (%d)", cl.NRec)
		log.Println(err)
		return err
	}
	if in.DimSize(0) != st.V.DimSize(0) || st.Z.DimSize(0) != st.V.DimSize(0) {
		err := fmt.Errorf("lif.Cell: batch size mismatch: input %d, state %d / %d", in.DimSize(0), st.V.DimSize(0), st.Z.DimSize(0))
		log.Println(err)
		return err
	}
	return cl.Params.Validate()
}

// Step advances the layer by exactly one time step.  in is the batch x NIn
// input for this step and st the current state.  It returns the new spike
// output z (in rate units, 1/Dt per spike), the new membrane potential v,
// and the next state holding both -- st itself is not modified.
//
// The update is: drive = in·WtIn + z_prev·WtRec (recurrent diagonal
// excluded); reset = z_prev*Thr*Dt; v' = Decay*v + (1-Decay)*drive - reset;
// z' = Heaviside((v'-Thr)/Thr) / Dt.
func (cl *Cell) Step(in *tensor.Float32, st *State) (z, v *tensor.Float32, next *State, err error) {
	if err = cl.CheckStep(in, st); err != nil {
		return
	}
	batch := in.DimSize(0)
	nin := cl.NIn
	nrec := cl.NRec
	decay := cl.Params.Decay
	thr := cl.Params.Thr
	dt := cl.Params.Dt

	v = tensor.NewFloat32([]int{batch, nrec}, "Batch", "Neuron")
	z = tensor.NewFloat32([]int{batch, nrec}, "Batch", "Neuron")

	for bi := 0; bi < batch; bi++ {
		ins := in.Values[bi*nin : (bi+1)*nin]
		vs := st.V.Values[bi*nrec : (bi+1)*nrec]
		zs := st.Z.Values[bi*nrec : (bi+1)*nrec]
		for ri := 0; ri < nrec; ri++ {
			drive := float32(0)
			for ci := 0; ci < nin; ci++ {
				drive += ins[ci] * cl.WtIn.Values[ci*nrec+ri]
			}
			for si := 0; si < nrec; si++ {
				if si == ri { // no autapse
					continue
				}
				drive += zs[si] * cl.WtRec.Values[si*nrec+ri]
			}
			reset := zs[ri] * thr * dt
			nv := decay*vs[ri] + (1-decay)*drive - reset
			v.Values[bi*nrec+ri] = nv
			z.Values[bi*nrec+ri] = cl.Fun.Spike((nv-thr)/thr) / dt
		}
	}
	next = &State{V: v, Z: z}
	return
}

func errParams(name string, val float32) error {
	return fmt.Errorf("lif.Params: %s = %g is out of range -- must be positive", name, val)
}
