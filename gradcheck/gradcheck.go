// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gradcheck compares two parallel gradient computations elementwise --
typically one obtained from a local, eligibility-based learning rule and one
from a reference backward pass through time -- and reports, per named
parameter, whether they agree within an absolute-difference tolerance.

Exceeding the tolerance is an expected, reportable outcome rather than a
fault: every parameter is checked in full (no short-circuit on the first
mismatch, since the value of the check is in seeing every mismatch), each
failing entry is itemized with its index, both raw values, their difference
and their ratio, and the caller decides whether the aggregate failure is
fatal.
*/
package gradcheck

import (
	"fmt"
	"io"
	"log"

	"cogentcore.org/core/tensor"
)

// DefTol is the default absolute-difference tolerance for gradient
// agreement.
const DefTol = float32(1.0e-4)

// Mismatch is one gradient entry that differs beyond tolerance.
type Mismatch struct {

	// flat index of the entry within the gradient tensor
	Index int `desc:"flat index of the entry within the gradient tensor"`

	// multi-dimensional index location of the entry
	Loc []int `desc:"multi-dimensional index location of the entry"`

	// value from the gradient computation under test
	Got float32 `desc:"value from the gradient computation under test"`

	// value from the reference computation
	Want float32 `desc:"value from the reference computation"`

	// Got - Want
	Diff float32 `desc:"difference Got - Want"`

	// Got / Want (raw float32 division)
	Ratio float32 `desc:"ratio Got / Want, raw float32 division"`
}

// Result is the comparison outcome for one named parameter.
type Result struct {

	// parameter name
	Name string `desc:"parameter name"`

	// number of gradient entries compared
	N int `desc:"number of gradient entries compared"`

	// largest absolute difference over all entries
	MaxDiff float32 `desc:"largest absolute difference over all entries"`

	// entries exceeding tolerance -- empty means the parameter passed
	Mismatches []Mismatch `desc:"entries exceeding tolerance -- empty means the parameter passed"`
}

// OK returns true if the parameter passed (no mismatches).
func (rs *Result) OK() bool {
	return len(rs.Mismatches) == 0
}

// Results is the per-parameter outcome of one full check.
type Results []Result

// OK returns true only if every parameter passed.
func (rs Results) OK() bool {
	for ri := range rs {
		if !rs[ri].OK() {
			return false
		}
	}
	return true
}

// Check compares two index-aligned lists of gradient tensors elementwise
// with absolute tolerance tol (use DefTol for the standard 1e-4).  names
// identifies each parameter; all three lists must have equal length and
// each got/want pair must have identical shapes -- violations are errors,
// signaled before any comparison.  Every parameter and every entry is
// always checked; tolerance failures are reported in the Results, never as
// an error.
func Check(names []string, got, want []*tensor.Float32, tol float32) (Results, error) {
	if len(names) != len(got) || len(got) != len(want) {
		err := fmt.Errorf("gradcheck.Check: mismatched list lengths: %d names, %d got, %d want", len(names), len(got), len(want))
		log.Println(err)
		return nil, err
	}
	for li := range got {
		if got[li] == nil || want[li] == nil || !sameShape(got[li], want[li]) {
			err := fmt.Errorf("gradcheck.Check: parameter %s: gradient shapes differ", names[li])
			log.Println(err)
			return nil, err
		}
	}
	rs := make(Results, len(names))
	for li := range got {
		rl := &rs[li]
		rl.Name = names[li]
		rl.N = len(got[li].Values)
		for i, gv := range got[li].Values {
			wv := want[li].Values[i]
			diff := gv - wv
			adiff := diff
			if adiff < 0 {
				adiff = -adiff
			}
			if adiff > rl.MaxDiff {
				rl.MaxDiff = adiff
			}
			if adiff > tol {
				rl.Mismatches = append(rl.Mismatches, Mismatch{
					Index: i,
					Loc:   locOf(got[li], i),
					Got:   gv,
					Want:  wv,
					Diff:  diff,
					Ratio: gv / wv,
				})
			}
		}
	}
	return rs, nil
}

// Report writes a human-readable summary of the results to w, itemizing
// every mismatched entry for each failing parameter.
func (rs Results) Report(w io.Writer) {
	for ri := range rs {
		rl := &rs[ri]
		if rl.OK() {
			fmt.Fprintf(w, "%s: OK  (%d entries, max diff %g)\n", rl.Name, rl.N, rl.MaxDiff)
			continue
		}
		fmt.Fprintf(w, "%s: FAIL  (%d of %d entries, max diff %g)\n", rl.Name, len(rl.Mismatches), rl.N, rl.MaxDiff)
		for mi := range rl.Mismatches {
			mm := &rl.Mismatches[mi]
			fmt.Fprintf(w, "\tat %v: got: %g  want: %g  diff: %g  ratio: %g\n", mm.Loc, mm.Got, mm.Want, mm.Diff, mm.Ratio)
		}
	}
	if rs.OK() {
		fmt.Fprintf(w, "all %d parameters passed\n", len(rs))
	} else {
		fmt.Fprintf(w, "gradient check FAILED\n")
	}
}

func sameShape(a, b *tensor.Float32) bool {
	if a.NumDims() != b.NumDims() {
		return false
	}
	for d := 0; d < a.NumDims(); d++ {
		if a.DimSize(d) != b.DimSize(d) {
			return false
		}
	}
	return true
}

// locOf converts a flat index into per-dimension indices for the tensor.
func locOf(tsr *tensor.Float32, idx int) []int {
	nd := tsr.NumDims()
	loc := make([]int, nd)
	for d := nd - 1; d >= 0; d-- {
		sz := tsr.DimSize(d)
		loc[d] = idx % sz
		idx /= sz
	}
	return loc
}
