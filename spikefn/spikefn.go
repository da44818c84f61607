// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spikefn provides the spike generation function for discrete-time
spiking neurons: an exact Heaviside step of the threshold-scaled membrane
potential in the forward direction, paired with a triangular pseudo-derivative
used in place of the true derivative (which is zero almost everywhere and
undefined at the threshold) for gradient-based learning.

The scaled voltage convention is v_scaled = (Vm - Thr) / Thr, so 0 at the
firing threshold and -1 at rest.  A spike requires strictly positive scaled
voltage.  The pseudo-derivative is a tent function centered on the threshold:
max(1 - |v_scaled|, 0) * Dampening, zero outside |v_scaled| < 1 and peaking
at Dampening on the threshold itself.  The dampening factor stabilizes
learning and is a non-trainable hyperparameter: its own gradient is defined
to be zero.
*/
package spikefn

import "github.com/chewxy/math32"

// Params are the spike function parameters.  The forward step function has
// none of its own -- Dampening only shapes the backward pseudo-derivative.
type Params struct {
	Dampening float32 `def:"0.3" min:"0" desc:"scale of the triangular pseudo-derivative used to propagate gradients through the spike step -- peak slope at the threshold -- lower values stabilize learning"`
}

func (sp *Params) Update() {
}

func (sp *Params) Defaults() {
	sp.Dampening = 0.3
	sp.Update()
}

// Spike computes the Heaviside step of the scaled voltage: 1 if
// vScaled > 0, else 0.  Exactly 0 does not spike.
func (sp *Params) Spike(vScaled float32) float32 {
	if vScaled > 0 {
		return 1
	}
	return 0
}

// PseudoDeriv computes the triangular surrogate slope
// max(1 - |vScaled|, 0) * Dampening, defined for all finite inputs.
func (sp *Params) PseudoDeriv(vScaled float32) float32 {
	return math32.Max(1-math32.Abs(vScaled), 0) * sp.Dampening
}

// Grad computes the backward rule for Spike: the incoming gradient dy
// multiplied by the pseudo-derivative at vScaled.  The gradient with
// respect to Dampening itself is zero and is not returned.
func (sp *Params) Grad(vScaled, dy float32) float32 {
	return dy * sp.PseudoDeriv(vScaled)
}
