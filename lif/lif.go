// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lif implements a single fully-connected recurrent layer of leaky
integrate-and-fire (LIF) spiking neurons, advanced in discrete time steps.

Each step integrates input and recurrent synaptic drive into the membrane
potential with exponential leak, applies a subtractive reset triggered by the
previous step's own spikes (no hard reset-to-baseline -- refractory-like
behavior emerges from the reset term alone), and emits spikes through the
Heaviside step in spikefn.  Spike output is scaled by 1/Dt so that finer time
discretization preserves physical spike rates.

The cell also provides whole-sequence unrolling and a manually chained
backward pass that propagates gradients in reverse time order using the
surrogate derivative, including the option to stop gradient flow through the
previous-step spikes (used to reproduce the equivalence between local
eligibility-based learning and full backpropagation through time).

Self-connections (autapses) are excluded by construction: the recurrent
weight matrix diagonal reads as exactly zero on every access, regardless of
what is stored there.
*/
package lif

import (
	"cogentcore.org/core/math32"
	"github.com/emer/emergent/v2/erand"
)

// Params are the time constants and firing parameters for a layer of LIF
// neurons.  Update must be called after any changes to recompute Decay.
type Params struct {
	Tau       float32 `def:"20" min:"1" desc:"membrane time constant in msec -- how slowly the voltage decays back to rest"`
	Thr       float32 `def:"0.615" desc:"firing threshold voltage -- must be non-zero as spiking is computed on voltage scaled relative to it"`
	Dt        float32 `def:"1" min:"0" desc:"simulation time step in msec -- spike output is scaled by 1/Dt and the subtractive reset by Thr*Dt"`
	StopZGrad bool    `desc:"block backward gradient flow through the previous-step spikes within each step (both the recurrent drive and the reset use) -- the forward computation is unchanged -- reproduces the mathematical equivalence between eligibility-based learning and full backprop through time"`

	Decay float32 `inactive:"+" view:"-" json:"-" xml:"-" desc:"voltage decay per time step = exp(-Dt/Tau) -- computed in Update"`
}

// Update must be called after any changes to parameters
func (pr *Params) Update() {
	pr.Decay = math32.Exp(-pr.Dt / pr.Tau)
}

func (pr *Params) Defaults() {
	pr.Tau = 20
	pr.Thr = 0.615
	pr.Dt = 1
	pr.StopZGrad = false
	pr.Update()
}

// Validate returns an error for parameter values that violate the
// preconditions of the state update: non-positive Tau or Dt, or a
// threshold of zero (voltage is scaled by 1/Thr).
func (pr *Params) Validate() error {
	if pr.Tau <= 0 {
		return errParams("Tau", pr.Tau)
	}
	if pr.Dt <= 0 {
		return errParams("Dt", pr.Dt)
	}
	if pr.Thr <= 0 {
		return errParams("Thr", pr.Thr)
	}
	return nil
}

// WtInitParams are weight initialization parameters -- the random
// distribution that initial input and recurrent weights are drawn from.
// Defaults follow the 1/sqrt(fan-in) gaussian convention; Var is set from
// the fan-in at initialization time by the cell.
type WtInitParams struct {
	erand.RndParams
}

func (wp *WtInitParams) Defaults() {
	wp.Mean = 0
	wp.Var = 1
	wp.Dist = erand.Gaussian
}
