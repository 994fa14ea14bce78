// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import "math"

func mod3(v int) int {
	v %= 3
	if v < 0 {
		v += 3
	}
	return v
}

// logSumExp returns log(sum(exp(v-max))) + max, the stable log-domain sum
// used throughout spec §4.5/§4.6. max must be the maximum of vals, or
// -Inf if vals is empty.
func logSumExp(vals []float64, max float64) float64 {
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	var sum float64
	for _, v := range vals {
		sum += math.Exp(v - max)
	}
	return math.Log(sum) + max
}
