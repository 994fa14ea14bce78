// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"math"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/score"
)

// fringeTable is F[tgt_type][src_type][frame] of spec §4.5: the minimum
// source index the engine promises to (re)consider for a given
// (target type, source type, frame) cell. Values only move forward.
type fringeTable [][][3]int

func newFringeTable(ntypes int) fringeTable {
	t := make(fringeTable, ntypes)
	for i := range t {
		t[i] = make([][3]int, ntypes)
	}
	return t
}

// Forward runs the forward sweep of spec §4.5 over fs, writing
// ForwardScore, PathScore, Trace and Invalid on every feature. It returns
// a *gazeerr.Error of kind NoLegalPath if the END feature ends up invalid.
func (e *Engine) Forward(fs *feature.Set) error {
	g := e.g
	n := len(fs.Features)
	ntypes := g.NTypes()
	feats := newFrameLists(ntypes)
	fringe := newFringeTable(ntypes)

	lastSelected := -1
	lastSelectedSpan := [2]int{-1, -1}

	var scratchF []float64
	var scratchIdx []int

	for i := 0; i < n; i++ {
		T := &fs.Features[i]

		if i > 0 {
			prev := &fs.Features[i-1]
			fr := mod3(prev.AdjStart)
			feats[prev.Type][fr] = append(feats[prev.Type][fr], i-1)
		}
		if i == 0 {
			// BEGIN: ForwardScore/PathScore already seeded to 0 by
			// feature.NewSet.
			continue
		}

		lastNecessary := max(lastSelected, 0)
		if !e.cfg.UseSelected {
			lastNecessary = 0
		}
		if b := globalKillerBound(feats, g.Feats[T.Type].KillFeatQualsUp, T, true); b > lastNecessary {
			lastNecessary = b
		}

		scratchF = scratchF[:0]
		scratchIdx = scratchIdx[:0]
		maxForward := math.Inf(-1)
		bestScore := math.Inf(-1)
		bestIdx := -1
		any := false

		for srcType := 0; srcType < ntypes; srcType++ {
			rel := g.Feats[T.Type].Sources[srcType]
			if rel == nil {
				continue
			}

			lowerBound := lastNecessary
			if g.Feats[T.Type].KillFeatQualsUp == nil {
				if b := relationKillerBound(feats, rel.FeatKillers, T, true); b > lowerBound {
					lowerBound = b
				}
			}
			tgtFrame := mod3(T.AdjStart)
			if e.cfg.Mode == PrunedSum {
				if fv := fringe[T.Type][srcType][tgtFrame]; fv > lowerBound {
					lowerBound = fv
				}
			}

			localFringe := lowerBound
			maxForPlusLen := math.Inf(-1)

			visit := func(sIdx int) (brk bool) {
				S := &fs.Features[sIdx]
				dist := distance(S, T)
				if rel.HasMaxDist && dist > rel.MaxDist {
					return true
				}
				if rel.HasMinDist && dist < rel.MinDist {
					return false
				}
				if rel.HasPhase && mod3(dist) != rel.Phase {
					return false
				}
				if dnaKillerMatches(rel, S, T) {
					return false
				}

				w := score.Weight(e.scorer, S, T, rel, g, dist)
				viterbi := S.PathScore + w
				forward := S.ForwardScore + w
				if math.IsInf(viterbi, -1) && math.IsInf(forward, -1) {
					return false
				}
				any = true
				if viterbi > bestScore {
					bestScore, bestIdx = viterbi, sIdx
				}
				scratchF = append(scratchF, forward)
				scratchIdx = append(scratchIdx, sIdx)
				if forward > maxForward {
					maxForward = forward
				}

				var lenPenalty float64
				if rel.HasLenFun {
					lenPenalty = g.LengthFuncs[rel.LenFun].Penalty(dist)
				}
				fwdPlusLen := forward + lenPenalty
				if fwdPlusLen > maxForPlusLen {
					maxForPlusLen = fwdPlusLen
				}
				dominated := maxForPlusLen-fwdPlusLen >= DominanceThreshold
				if !dominated && sIdx > localFringe {
					localFringe = sIdx
				}
				return false
			}

			if rel.HasPhase {
				frame := mod3(T.AdjEnd - rel.Phase + 1)
				lst := feats[srcType][frame]
				for k := len(lst) - 1; k >= 0; k-- {
					idx := lst[k]
					if idx < lowerBound {
						break
					}
					if visit(idx) {
						break
					}
				}
			} else {
				p := [3]int{len(feats[srcType][0]) - 1, len(feats[srcType][1]) - 1, len(feats[srcType][2]) - 1}
				for {
					best, bf := -1, -1
					for f := 0; f < 3; f++ {
						if p[f] < 0 {
							continue
						}
						idx := feats[srcType][f][p[f]]
						if idx > best {
							best, bf = idx, f
						}
					}
					if best < 0 || best < lowerBound {
						break
					}
					p[bf]--
					if visit(best) {
						break
					}
				}
			}

			structural := rel.HasPhase || len(rel.FeatKillers) > 0 || g.Feats[T.Type].KillFeatQualsUp != nil
			if structural {
				if localFringe > fringe[T.Type][srcType][tgtFrame] {
					fringe[T.Type][srcType][tgtFrame] = localFringe
				}
			} else {
				for f := 0; f < 3; f++ {
					if localFringe > fringe[T.Type][srcType][f] {
						fringe[T.Type][srcType][f] = localFringe
					}
				}
			}
		}

		if !any {
			T.Invalid = true
			T.ForwardScore = math.Inf(-1)
			T.PathScore = math.Inf(-1)
			T.Trace = -1
		} else {
			T.ForwardScore = logSumExp(scratchF, maxForward)
			T.PathScore = bestScore
			T.Trace = bestIdx
			if math.IsInf(maxForward, -1) {
				return &gazeerr.Error{Kind: gazeerr.NumericUnderflow, At: i}
			}
		}

		if T.Selected {
			sameBlock := lastSelectedSpan[0] == T.RealStart && lastSelectedSpan[1] == T.RealEnd
			lastSelectedSpan = [2]int{T.RealStart, T.RealEnd}
			if !sameBlock {
				lastSelected = i
			}
		}
	}

	if fs.Features[n-1].Invalid {
		return &gazeerr.Error{Kind: gazeerr.NoLegalPath, At: n - 1}
	}
	return nil
}
