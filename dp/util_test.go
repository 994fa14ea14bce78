// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"math"
	"testing"
)

func TestMod3HandlesNegatives(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 2, 3: 0, -1: 2, -2: 1, -3: 0}
	for in, want := range cases {
		if got := mod3(in); got != want {
			t.Errorf("mod3(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestLogSumExpEmptyIsNegInf(t *testing.T) {
	if got := logSumExp(nil, math.Inf(-1)); !math.IsInf(got, -1) {
		t.Errorf("logSumExp(nil) = %v, want -Inf", got)
	}
}

func TestLogSumExpMatchesDirectSum(t *testing.T) {
	vals := []float64{0, -1, -2}
	got := logSumExp(vals, 0)
	want := math.Log(math.Exp(0) + math.Exp(-1) + math.Exp(-2))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("logSumExp = %v, want %v", got, want)
	}
}
