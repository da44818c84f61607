// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

import (
	"testing"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/tensor"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

// difTolWeak is for values accumulated over many operations
const difTolWeak = float32(1.0e-5)

func CmprFloats(got, trg []float32, msg string, t *testing.T) {
	t.Helper()
	for i := range got {
		dif := math32.Abs(got[i] - trg[i])
		if dif > difTol {
			t.Errorf("%v err: idx: %v, got: %v, trg: %v, dif: %v\n", msg, i, got[i], trg[i], dif)
		}
	}
}

func TestParamsDecay(t *testing.T) {
	pr := Params{}
	pr.Defaults()
	if dif := math32.Abs(pr.Decay - 0.95122945); dif > difTol {
		t.Errorf("Decay err: got %v, want exp(-1/20) = 0.95122945, dif: %v\n", pr.Decay, dif)
	}
	pr.Tau = 10
	pr.Update()
	if dif := math32.Abs(pr.Decay - math32.Exp(-0.1)); dif > difTol {
		t.Errorf("Decay err after Update: got %v\n", pr.Decay)
	}
}

func TestParamsValidate(t *testing.T) {
	pr := Params{}
	pr.Defaults()
	if err := pr.Validate(); err != nil {
		t.Error(err)
	}
	bad := []Params{
		{Tau: 0, Thr: 0.615, Dt: 1},
		{Tau: 20, Thr: 0, Dt: 1},
		{Tau: 20, Thr: 0.615, Dt: 0},
		{Tau: -20, Thr: 0.615, Dt: 1},
	}
	for i := range bad {
		if err := bad[i].Validate(); err == nil {
			t.Errorf("Validate err: params %v accepted %+v\n", i, bad[i])
		}
	}
}

// MakeTestCell returns the 2-input, 3-neuron cell with the fixed weights
// used by the closed-form single-step test.
func MakeTestCell(t *testing.T) *Cell {
	cl := NewCell(2, 3)
	copy(cl.WtIn.Values, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	for i := range cl.WtRec.Values {
		cl.WtRec.Values[i] = 0
	}
	return cl
}

// resting state is a fixed point: zero input and zero state stay zero
func TestZeroFixedPoint(t *testing.T) {
	cl := NewCell(2, 3)
	in := tensor.NewFloat32([]int{2, 2}, "Batch", "In")
	st := cl.ZeroState(2)
	for n := 0; n < 10; n++ {
		z, v, next, err := cl.Step(in, st)
		if err != nil {
			t.Fatal(err)
		}
		for i := range v.Values {
			if v.Values[i] != 0 || z.Values[i] != 0 {
				t.Fatalf("fixed point err: step %v, idx %v: v = %v, z = %v\n", n, i, v.Values[i], z.Values[i])
			}
		}
		st = next
	}
}

// closed-form single step: v = (1-decay) * (in · WtIn), no spikes below
// threshold.  target values computed independently from the update equation.
func TestStepVoltage(t *testing.T) {
	cl := MakeTestCell(t)
	in := tensor.NewFloat32([]int{1, 2}, "Batch", "In")
	in.Values[0] = 1
	in.Values[1] = 1
	st := cl.ZeroState(1)

	corv := []float32{0.024385273, 0.034139384, 0.043893494}

	z, v, _, err := cl.Step(in, st)
	if err != nil {
		t.Fatal(err)
	}
	CmprFloats(v.Values, corv, "single step voltage", t)
	for i := range z.Values {
		if z.Values[i] != 0 {
			t.Errorf("spike err: subthreshold voltage spiked at idx %v\n", i)
		}
	}
	// input state must be untouched
	for i := range st.V.Values {
		if st.V.Values[i] != 0 || st.Z.Values[i] != 0 {
			t.Errorf("state mutation err at idx %v\n", i)
		}
	}
	// determinism: identical inputs and weights, identical results
	z2, v2, _, err := cl.Step(in, st)
	if err != nil {
		t.Fatal(err)
	}
	for i := range v.Values {
		if v.Values[i] != v2.Values[i] || z.Values[i] != z2.Values[i] {
			t.Errorf("determinism err at idx %v\n", i)
		}
	}
}

// the recurrent diagonal reads as zero regardless of stored values
func TestAutapseRead(t *testing.T) {
	cl := MakeTestCell(t)
	in := tensor.NewFloat32([]int{1, 2}, "Batch", "In")
	in.Values[0] = 20
	in.Values[1] = 20
	st := cl.ZeroState(1)
	_, _, next, err := cl.Step(in, st)
	if err != nil {
		t.Fatal(err)
	}
	_, vclean, _, err := cl.Step(in, next)
	if err != nil {
		t.Fatal(err)
	}
	// poison the stored diagonal: reads and dynamics must be unaffected
	for ri := 0; ri < cl.NRec; ri++ {
		cl.WtRec.Values[ri*cl.NRec+ri] = 1.0e6
		if w := cl.RecWt(ri, ri); w != 0 {
			t.Errorf("RecWt err: diagonal %v reads as %v, want 0\n", ri, w)
		}
	}
	_, vpois, _, err := cl.Step(in, next)
	if err != nil {
		t.Fatal(err)
	}
	for i := range vclean.Values {
		if vclean.Values[i] != vpois.Values[i] {
			t.Errorf("autapse err: stored diagonal affected step at idx %v\n", i)
		}
	}
}

// spike output is scaled by 1/Dt, converting unit spikes to a rate
func TestSpikeRateScaling(t *testing.T) {
	cl := NewCell(1, 1)
	cl.Params.Dt = 0.5
	cl.Params.Update()
	cl.WtIn.Values[0] = 100
	in := tensor.NewFloat32([]int{1, 1}, "Batch", "In")
	in.Values[0] = 1
	z, v, _, err := cl.Step(in, cl.ZeroState(1))
	if err != nil {
		t.Fatal(err)
	}
	if v.Values[0] <= cl.Params.Thr {
		t.Fatalf("test setup err: voltage %v did not cross threshold %v\n", v.Values[0], cl.Params.Thr)
	}
	if z.Values[0] != 2 {
		t.Errorf("rate scaling err: z = %v, want 1/Dt = 2\n", z.Values[0])
	}
}

func TestStepShapeErrors(t *testing.T) {
	cl := NewCell(2, 3)
	st := cl.ZeroState(1)

	badIn := tensor.NewFloat32([]int{1, 3}, "Batch", "In")
	if _, _, _, err := cl.Step(badIn, st); err == nil {
		t.Errorf("shape err: wrong input width accepted\n")
	}
	in := tensor.NewFloat32([]int{2, 2}, "Batch", "In")
	if _, _, _, err := cl.Step(in, st); err == nil {
		t.Errorf("shape err: batch mismatch accepted\n")
	}
	if _, _, _, err := cl.Step(nil, st); err == nil {
		t.Errorf("shape err: nil input accepted\n")
	}
	cl.Params.Thr = 0
	in1 := tensor.NewFloat32([]int{1, 2}, "Batch", "In")
	if _, _, _, err := cl.Step(in1, st); err == nil {
		t.Errorf("param err: zero threshold accepted\n")
	}
}
