// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sines generates target waveforms as weighted sums of sinusoids,
used by demonstration drivers to give a recurrent network something
structured to reproduce.
*/
package sines

import (
	"math/rand"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/tensor"
)

// Params specify a weighted sum of sinusoids.  Any of Periods, Weights, or
// Phases left nil is drawn at random (uniform: periods in [100,1000),
// weights in [0.5,2), phases in [0,2pi)) for each of N components.
type Params struct {
	N         int       `def:"4" min:"1" desc:"number of sinusoids to combine"`
	Periods   []float32 `desc:"period of each sinusoid in time steps -- nil = uniform random in [100,1000)"`
	Weights   []float32 `desc:"weight of each sinusoid -- nil = uniform random in [0.5,2)"`
	Phases    []float32 `desc:"phase of each sinusoid in radians -- nil = uniform random in [0,2pi)"`
	Normalize bool      `def:"true" desc:"shift the sum to start at 0 and rescale into [-1,1]"`
}

func (sp *Params) Update() {
}

func (sp *Params) Defaults() {
	sp.N = 4
	sp.Periods = []float32{1000, 500, 333, 200}
	sp.Normalize = true
	sp.Update()
}

// Target generates a one-dimensional target waveform of seqLen time steps
// as the weighted sum of the configured sinusoids, drawing any unspecified
// components from rnd.  The same Params and seed always generate the same
// waveform.
func (sp *Params) Target(seqLen int, rnd *rand.Rand) *tensor.Float32 {
	periods := sp.Periods
	if periods == nil {
		periods = make([]float32, sp.N)
		for i := range periods {
			periods[i] = 100 + 900*rnd.Float32()
		}
	}
	weights := sp.Weights
	if weights == nil {
		weights = make([]float32, sp.N)
		for i := range weights {
			weights[i] = 0.5 + 1.5*rnd.Float32()
		}
	}
	phases := sp.Phases
	if phases == nil {
		phases = make([]float32, sp.N)
		for i := range phases {
			phases[i] = 2 * math32.Pi * rnd.Float32()
		}
	}

	out := tensor.NewFloat32([]int{seqLen}, "Time")
	for i := 0; i < sp.N; i++ {
		for t := 0; t < seqLen; t++ {
			arg := phases[i] + 2*math32.Pi*float32(t)/periods[i]
			out.Values[t] += weights[i] * math32.Sin(arg)
		}
	}
	if sp.Normalize {
		v0 := out.Values[0]
		scale := float32(0)
		for t := range out.Values {
			out.Values[t] -= v0
			av := math32.Abs(out.Values[t])
			if av > scale {
				scale = av
			}
		}
		scale = math32.Max(scale, 1.0e-6)
		for t := range out.Values {
			out.Values[t] /= scale
		}
	}
	return out
}
