// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validate confirms a caller-supplied path is legal under a
// grammar and recomputes its score using the same edge scoring as the DP
// engine (spec §4.7).
package validate

import (
	"github.com/kortschak/gaze/dp"
	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/score"
)

// Path checks that every consecutive pair of indices in path is a legal
// edge under g, and returns the path's total score. On the first illegal
// pair it returns a *gazeerr.Error of kind InvalidPath naming the
// offending pair and reason.
func Path(g *grammar.Grammar, sc *score.Scorer, fs *feature.Set, path []int) (float64, error) {
	if len(path) < 2 {
		return 0, &gazeerr.Error{Kind: gazeerr.InvalidPath, Msg: "path too short"}
	}
	var total float64
	for i := 1; i < len(path); i++ {
		sIdx, tIdx := path[i-1], path[i]
		rel, dist, reason, ok := dp.Legal(g, fs.Features, sIdx, tIdx)
		if !ok {
			return 0, &gazeerr.Error{Kind: gazeerr.InvalidPath, Reason: reason, At: tIdx}
		}
		total += score.Weight(sc, &fs.Features[sIdx], &fs.Features[tIdx], rel, g, dist)
	}
	return total, nil
}
