// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

import (
	"fmt"
	"log"

	"cogentcore.org/core/tensor"
)

// note: seq.go contains whole-sequence unrolling and the reverse-time
// backward pass; cell.go has the single-step forward.

// Grads holds gradients of a scalar objective with respect to the cell's
// weight matrices, in the same shapes as the weights themselves.  The
// recurrent diagonal is identically zero (autapse weights do not exist).
type Grads struct {

	// gradient for WtIn, NIn x NRec
	In *tensor.Float32 `desc:"gradient for the input weight matrix, NIn x NRec"`

	// gradient for WtRec, NRec x NRec, zero diagonal
	Rec *tensor.Float32 `desc:"gradient for the recurrent weight matrix, NRec x NRec, diagonal identically zero"`
}

// CheckSequence verifies that in is a batch x time x NIn sequence tensor
// with a batch size matching st0, with at least one time step.
func (cl *Cell) CheckSequence(in *tensor.Float32, st0 *State) error {
	if in == nil || st0 == nil || st0.V == nil || st0.Z == nil {
		err := fmt.Errorf("lif.Cell: sequence input or initial state is nil")
		log.Println(err)
		return err
	}
	if in.NumDims() != 3 || in.DimSize(2) != cl.NIn {
		err := fmt.Errorf("lif.Cell: sequence input must be batch x time x NIn (%d)", cl.NIn)
		log.Println(err)
		return err
	}
	if in.DimSize(1) < 1 {
		err := fmt.Errorf("lif.Cell: sequence input has no time steps")
		log.Println(err)
		return err
	}
	if in.DimSize(0) != st0.V.DimSize(0) {
		err := fmt.Errorf("lif.Cell: batch size mismatch: input %d, state %d", in.DimSize(0), st0.V.DimSize(0))
		log.Println(err)
		return err
	}
	return cl.Params.Validate()
}

// RunSequence unrolls Step over a whole batch x time x NIn input sequence,
// starting from state st0 (typically ZeroState), processing time indices in
// strictly increasing order.  It returns the spike and voltage sequences,
// each batch x time x NRec.  st0 is not modified.
func (cl *Cell) RunSequence(in *tensor.Float32, st0 *State) (spikes, volts *tensor.Float32, err error) {
	if err = cl.CheckSequence(in, st0); err != nil {
		return
	}
	batch := in.DimSize(0)
	seqLen := in.DimSize(1)
	nin := cl.NIn
	nrec := cl.NRec

	spikes = tensor.NewFloat32([]int{batch, seqLen, nrec}, "Batch", "Time", "Neuron")
	volts = tensor.NewFloat32([]int{batch, seqLen, nrec}, "Batch", "Time", "Neuron")

	xt := tensor.NewFloat32([]int{batch, nin}, "Batch", "In")
	st := st0
	for t := 0; t < seqLen; t++ {
		for bi := 0; bi < batch; bi++ {
			copy(xt.Values[bi*nin:(bi+1)*nin], in.Values[(bi*seqLen+t)*nin:(bi*seqLen+t+1)*nin])
		}
		z, v, next, serr := cl.Step(xt, st)
		if serr != nil {
			err = serr
			return
		}
		for bi := 0; bi < batch; bi++ {
			copy(spikes.Values[(bi*seqLen+t)*nrec:(bi*seqLen+t+1)*nrec], z.Values[bi*nrec:(bi+1)*nrec])
			copy(volts.Values[(bi*seqLen+t)*nrec:(bi*seqLen+t+1)*nrec], v.Values[bi*nrec:(bi+1)*nrec])
		}
		st = next
	}
	return
}

// Backward runs the manually chained backward pass over a sequence that was
// produced by RunSequence, in strictly decreasing time order.  in, spikes
// and volts are the forward sequence tensors; st0 the initial state the
// forward pass started from.  gradZ is the gradient of the objective with
// respect to the spike output at every step (batch x time x NRec), and
// gradV the same for the voltage output (may be nil for zero).
//
// Gradient flows through the spike nonlinearity via the spikefn
// pseudo-derivative, through the leak via Decay, and through the recurrent
// drive and subtractive reset into the previous step's spikes -- unless
// Params.StopZGrad is set, which severs both of those backward edges while
// leaving the forward values untouched.  Weight gradients are accumulated
// over batch and time; the recurrent diagonal stays zero.
func (cl *Cell) Backward(in, spikes, volts *tensor.Float32, st0 *State, gradZ, gradV *tensor.Float32) (*Grads, error) {
	if err := cl.CheckSequence(in, st0); err != nil {
		return nil, err
	}
	if err := cl.checkSeqOut("spikes", spikes, in); err != nil {
		return nil, err
	}
	if err := cl.checkSeqOut("volts", volts, in); err != nil {
		return nil, err
	}
	if err := cl.checkSeqOut("gradZ", gradZ, in); err != nil {
		return nil, err
	}
	if gradV != nil {
		if err := cl.checkSeqOut("gradV", gradV, in); err != nil {
			return nil, err
		}
	}

	batch := in.DimSize(0)
	seqLen := in.DimSize(1)
	nin := cl.NIn
	nrec := cl.NRec
	decay := cl.Params.Decay
	thr := cl.Params.Thr
	dt := cl.Params.Dt

	gr := &Grads{
		In:  tensor.NewFloat32([]int{nin, nrec}, "In", "Neuron"),
		Rec: tensor.NewFloat32([]int{nrec, nrec}, "Send", "Recv"),
	}

	gv := make([]float32, nrec)  // carried dL/dV(t) from step t+1
	gz := make([]float32, nrec)  // carried dL/dZ(t) from step t+1
	gvt := make([]float32, nrec) // total dL/dV at step t
	gi := make([]float32, nrec)  // dL/d(drive) at step t

	for bi := 0; bi < batch; bi++ {
		for ri := 0; ri < nrec; ri++ {
			gv[ri] = 0
			gz[ri] = 0
		}
		for t := seqLen - 1; t >= 0; t-- {
			toff := (bi*seqLen + t) * nrec
			for ri := 0; ri < nrec; ri++ {
				dz := gz[ri] + gradZ.Values[toff+ri]
				dv := gv[ri]
				if gradV != nil {
					dv += gradV.Values[toff+ri]
				}
				vsc := (volts.Values[toff+ri] - thr) / thr
				// z = Spike(vsc)/Dt with surrogate slope through vsc
				dv += cl.Fun.Grad(vsc, dz/dt) / thr
				gvt[ri] = dv
				gi[ri] = (1 - decay) * dv
			}
			zprev := st0.Z.Values[bi*nrec : (bi+1)*nrec]
			if t > 0 {
				zprev = spikes.Values[toff-nrec : toff]
			}
			xoff := (bi*seqLen + t) * nin
			for ri := 0; ri < nrec; ri++ {
				for ci := 0; ci < nin; ci++ {
					gr.In.Values[ci*nrec+ri] += in.Values[xoff+ci] * gi[ri]
				}
				for si := 0; si < nrec; si++ {
					if si == ri { // no autapse
						continue
					}
					gr.Rec.Values[si*nrec+ri] += zprev[si] * gi[ri]
				}
			}
			// carry into step t-1: leak through decay; spikes through the
			// recurrent drive and the reset, unless detached
			for si := 0; si < nrec; si++ {
				gv[si] = decay * gvt[si]
				if cl.Params.StopZGrad {
					gz[si] = 0
					continue
				}
				dz := -gvt[si] * thr * dt
				for ri := 0; ri < nrec; ri++ {
					if ri == si {
						continue
					}
					dz += cl.WtRec.Values[si*nrec+ri] * gi[ri]
				}
				gz[si] = dz
			}
		}
	}
	return gr, nil
}

// PseudoDerivs returns the surrogate spike-function slopes for every entry
// of a voltage sequence (batch x time x NRec), i.e.,
// PseudoDeriv((v-Thr)/Thr).  These are the per-step values a local
// eligibility-based learning rule needs; the rule itself is external.
func (cl *Cell) PseudoDerivs(volts *tensor.Float32) *tensor.Float32 {
	thr := cl.Params.Thr
	pd := tensor.NewFloat32(shapeOf(volts), "Batch", "Time", "Neuron")
	for i, v := range volts.Values {
		pd.Values[i] = cl.Fun.PseudoDeriv((v - thr) / thr)
	}
	return pd
}

// checkSeqOut verifies that a sequence output / gradient tensor matches the
// batch x time of the input with NRec features.
func (cl *Cell) checkSeqOut(name string, seq, in *tensor.Float32) error {
	if seq == nil || seq.NumDims() != 3 || seq.DimSize(0) != in.DimSize(0) ||
		seq.DimSize(1) != in.DimSize(1) || seq.DimSize(2) != cl.NRec {
		err := fmt.Errorf("lif.Cell: %s must be batch x time x NRec matching the input sequence", name)
		log.Println(err)
		return err
	}
	return nil
}

func shapeOf(tsr *tensor.Float32) []int {
	sh := make([]int, tsr.NumDims())
	for d := range sh {
		sh[d] = tsr.DimSize(d)
	}
	return sh
}
