// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package eprop is the overall repository for a recurrent layer of leaky
integrate-and-fire (LIF) spiking neurons with surrogate-gradient support,
implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* lif: the recurrent LIF cell itself -- per-layer weights and time constants,
the discrete-time membrane update with subtractive reset, whole-sequence
unrolling, and the manually chained backward pass that propagates gradients
through the spike nonlinearity using the surrogate derivative.

* spikefn: the spike generation function -- exact Heaviside step in the
forward direction, with a triangular pseudo-derivative used in place of the
true (zero almost everywhere) derivative going backward.

* trace: causal signal-shaping primitives applied to (batch, time, feature)
sequence tensors -- the exponential trace filter and the one-step time shift
used to build a previous-time-step view of a signal.

* gradcheck: elementwise comparison of two parallel gradient computations
with full per-parameter diagnostics, used to validate that a local learning
rule matches a reference backward pass.

* sines: sum-of-sinusoids target waveform generation for demonstration
drivers.

* examples: runnable programs -- examples/lifsines simulates the cell on
frozen Poisson input and exercises the backward pass and gradient checker.
*/
package eprop
