// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package trace provides causal signal-shaping primitives over sequence
tensors shaped (batch, time, feature): the exponential trace filter (a
first-order IIR low-pass, i.e., causal exponential moving average) and the
one-step time shift used to build a previous-time-step view of a signal for
causal feedback composition.

All operations are self-contained whole-tensor transforms: no state is
retained between calls, output shape always equals input shape, and the
time axis is processed strictly in order (increasing for the filter,
decreasing for its adjoint) because each step depends on its immediate
neighbor's value.
*/
package trace

import (
	"fmt"
	"log"

	"cogentcore.org/core/tensor"
)

// ExpFilter filters seq (batch x time x feature) along the time axis with a
// causal exponential trace against a zero initial accumulator:
// out[0] = (1-decay)*seq[0], out[t] = decay*out[t-1] + (1-decay)*seq[t].
// decay must be in [0,1).  The output has exactly the shape of the input.
func ExpFilter(seq *tensor.Float32, decay float32) (*tensor.Float32, error) {
	if err := checkSeq("ExpFilter", seq); err != nil {
		return nil, err
	}
	if decay < 0 || decay >= 1 {
		err := fmt.Errorf("trace.ExpFilter: decay %g must be in [0,1)", decay)
		log.Println(err)
		return nil, err
	}
	batch := seq.DimSize(0)
	seqLen := seq.DimSize(1)
	nf := seq.DimSize(2)
	out := tensor.NewFloat32([]int{batch, seqLen, nf}, "Batch", "Time", "Feature")
	for bi := 0; bi < batch; bi++ {
		for fi := 0; fi < nf; fi++ {
			acc := float32(0)
			for t := 0; t < seqLen; t++ {
				off := (bi*seqLen+t)*nf + fi
				acc = decay*acc + (1-decay)*seq.Values[off]
				out.Values[off] = acc
			}
		}
	}
	return out, nil
}

// ExpFilterGrad computes the adjoint of ExpFilter: given the gradient of an
// objective with respect to the filtered sequence, it returns the gradient
// with respect to the raw input sequence.  This is the same scan run in
// reverse time order:
// out[T-1] = (1-decay)*grad[T-1], out[t] = decay*out[t+1] + (1-decay)*grad[t].
func ExpFilterGrad(grad *tensor.Float32, decay float32) (*tensor.Float32, error) {
	if err := checkSeq("ExpFilterGrad", grad); err != nil {
		return nil, err
	}
	if decay < 0 || decay >= 1 {
		err := fmt.Errorf("trace.ExpFilterGrad: decay %g must be in [0,1)", decay)
		log.Println(err)
		return nil, err
	}
	batch := grad.DimSize(0)
	seqLen := grad.DimSize(1)
	nf := grad.DimSize(2)
	out := tensor.NewFloat32([]int{batch, seqLen, nf}, "Batch", "Time", "Feature")
	for bi := 0; bi < batch; bi++ {
		for fi := 0; fi < nf; fi++ {
			acc := float32(0)
			for t := seqLen - 1; t >= 0; t-- {
				off := (bi*seqLen+t)*nf + fi
				acc = grad.Values[off] + decay*acc
				out.Values[off] = (1 - decay) * acc
			}
		}
	}
	return out, nil
}

func checkSeq(op string, seq *tensor.Float32) error {
	if seq == nil || seq.NumDims() != 3 {
		err := fmt.Errorf("trace.%s: sequence must be a non-nil batch x time x feature tensor", op)
		log.Println(err)
		return err
	}
	return nil
}
