// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trace

import (
	"fmt"
	"log"

	"cogentcore.org/core/tensor"
)

// ShiftOne shifts seq (batch x time x feature) one step forward along the
// time axis: out[0] = init and out[t] = seq[t-1] for t > 0, dropping the
// final original time slice.  init must be a batch x feature tensor shaped
// like one time slice, or nil for all zeros.  The output has exactly the
// shape of the input; seq is not modified.
func ShiftOne(seq, init *tensor.Float32) (*tensor.Float32, error) {
	if err := checkSeq("ShiftOne", seq); err != nil {
		return nil, err
	}
	batch := seq.DimSize(0)
	seqLen := seq.DimSize(1)
	nf := seq.DimSize(2)
	if init != nil {
		if init.NumDims() != 2 || init.DimSize(0) != batch || init.DimSize(1) != nf {
			err := fmt.Errorf("trace.ShiftOne: initializer must be batch x feature (%d x %d) matching one time slice", batch, nf)
			log.Println(err)
			return nil, err
		}
	}
	out := tensor.NewFloat32([]int{batch, seqLen, nf}, "Batch", "Time", "Feature")
	for bi := 0; bi < batch; bi++ {
		if init != nil {
			copy(out.Values[bi*seqLen*nf:bi*seqLen*nf+nf], init.Values[bi*nf:(bi+1)*nf])
		}
		if seqLen > 1 {
			copy(out.Values[bi*seqLen*nf+nf:(bi+1)*seqLen*nf], seq.Values[bi*seqLen*nf:(bi+1)*seqLen*nf-nf])
		}
	}
	return out, nil
}
