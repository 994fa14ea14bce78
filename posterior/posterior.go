// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package posterior computes per-feature posterior probabilities from a
// completed forward+backward sweep, and a calibration histogram (spec
// §4.8).
package posterior

import (
	"math"
	"sort"

	"github.com/kortschak/gaze/feature"
)

// Feature pairs a feature's index with its posterior probability.
type Feature struct {
	Index      int
	Posterior  float64
}

// Of computes posterior(f) = exp(f.forward + f.backward - END.backward)
// for every feature and returns those at or above threshold, sorted by
// descending posterior.
func Of(fs *feature.Set, threshold float64) []Feature {
	end := &fs.Features[len(fs.Features)-1]
	norm := end.BackwardScore

	var out []Feature
	for i := range fs.Features {
		f := &fs.Features[i]
		if f.Invalid {
			continue
		}
		p := math.Exp(f.ForwardScore + f.BackwardScore - norm)
		if p >= threshold {
			out = append(out, Feature{Index: i, Posterior: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Posterior > out[j].Posterior })
	return out
}

// Bucket is one row of a calibration Histogram: the fraction of features
// whose posterior fell in [Lo,Hi) that were flagged IsCorrect by the
// caller.
type Bucket struct {
	Lo, Hi   float64
	Count    int
	Correct  int
}

// Fraction returns Correct/Count, or 0 if Count is 0.
func (b Bucket) Fraction() float64 {
	if b.Count == 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Count)
}

// Histogram buckets posteriors into nBins equal-width bins over [0,1] and
// tallies how many features in each bin are correct, for calibration
// diagnostics (spec §4.8, "posterior-accuracy histogram").
func Histogram(fs *feature.Set, nBins int, isCorrect func(idx int) bool) []Bucket {
	end := &fs.Features[len(fs.Features)-1]
	norm := end.BackwardScore

	buckets := make([]Bucket, nBins)
	width := 1.0 / float64(nBins)
	for i := range buckets {
		buckets[i].Lo = float64(i) * width
		buckets[i].Hi = float64(i+1) * width
	}

	for i := range fs.Features {
		f := &fs.Features[i]
		if f.Invalid {
			continue
		}
		p := math.Exp(f.ForwardScore + f.BackwardScore - norm)
		bin := int(p / width)
		if bin >= nBins {
			bin = nBins - 1
		}
		if bin < 0 {
			bin = 0
		}
		buckets[bin].Count++
		if isCorrect(i) {
			buckets[bin].Correct++
		}
	}
	return buckets
}
