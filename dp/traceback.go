// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"math"
	"math/rand/v2"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/score"
)

// MaxTraceback follows Trace pointers from the END feature back to BEGIN
// and returns the indices in ascending (BEGIN-first) order, along with
// the path's total score (spec §4.5 "Max traceback").
func MaxTraceback(fs *feature.Set) ([]int, float64, error) {
	n := len(fs.Features)
	end := &fs.Features[n-1]
	if end.Invalid || math.IsInf(end.PathScore, -1) {
		return nil, 0, &gazeerr.Error{Kind: gazeerr.NoLegalPath, At: n - 1}
	}

	var path []int
	for i := n - 1; i != -1; {
		path = append(path, i)
		if i == 0 {
			break
		}
		i = fs.Features[i].Trace
		if i < 0 {
			return nil, 0, &gazeerr.Error{Kind: gazeerr.MalformedInput, At: len(path) - 1, Msg: "broken trace pointer"}
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, end.PathScore, nil
}

// SampleTraceback draws a path from BEGIN to END proportional to its
// posterior probability, using only ForwardScore (spec §4.5 "Sample
// traceback"): Forward must already have been run over fs. rng defaults
// to the package-level generator when nil.
func (e *Engine) SampleTraceback(fs *feature.Set, rng *rand.Rand) ([]int, error) {
	g := e.g
	n := len(fs.Features)
	end := &fs.Features[n-1]
	if math.IsInf(end.ForwardScore, -1) {
		return nil, &gazeerr.Error{Kind: gazeerr.NoLegalPath, At: n - 1}
	}

	var cands []int
	var weights []float64

	current := n - 1
	path := []int{current}
	for current != 0 {
		C := &fs.Features[current]
		cands = cands[:0]
		weights = weights[:0]
		var total float64
		for srcType := 0; srcType < g.NTypes(); srcType++ {
			rel := g.Feats[C.Type].Sources[srcType]
			if rel == nil {
				continue
			}
			for s := current - 1; s >= 0; s-- {
				S := &fs.Features[s]
				if S.Type != srcType {
					continue
				}
				dist := distance(S, C)
				if rel.HasMaxDist && dist > rel.MaxDist {
					break
				}
				if rel.HasMinDist && dist < rel.MinDist {
					continue
				}
				if rel.HasPhase && mod3(dist) != rel.Phase {
					continue
				}
				if dnaKillerMatches(rel, S, C) {
					continue
				}
				w := score.Weight(e.scorer, S, C, rel, g, dist)
				p := math.Exp(S.ForwardScore + w - C.ForwardScore)
				cands = append(cands, s)
				weights = append(weights, p)
				total += p
			}
		}
		if len(cands) == 0 {
			return nil, &gazeerr.Error{Kind: gazeerr.NoLegalPath, At: current}
		}

		var draw float64
		if rng != nil {
			draw = rng.Float64()
		} else {
			draw = rand.Float64()
		}
		draw *= total
		choice := cands[len(cands)-1]
		var cum float64
		for i, p := range weights {
			cum += p
			if draw <= cum {
				choice = cands[i]
				break
			}
		}
		path = append(path, choice)
		current = choice
	}

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, nil
}
