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

// Backward runs the backward sweep of spec §4.6: structurally symmetric to
// Forward, walking descending, bucketing by AdjEnd mod 3, and bounding how
// far forward fringes permit scanning. It writes BackwardScore on every
// feature.
func (e *Engine) Backward(fs *feature.Set) error {
	g := e.g
	n := len(fs.Features)
	ntypes := g.NTypes()
	feats := newFrameLists(ntypes) // feats[type][frame] of already-processed (later) indices
	fringe := newFringeTable(ntypes)

	firstSelected := n
	firstSelectedSpan := [2]int{-1, -1}

	var scratchB []float64

	for i := n - 1; i >= 0; i-- {
		B := &fs.Features[i]

		if i < n-1 {
			next := &fs.Features[i+1]
			fr := mod3(next.AdjEnd)
			feats[next.Type][fr] = append(feats[next.Type][fr], i+1)
		}
		if i == n-1 {
			continue // END: BackwardScore already seeded to 0.
		}

		firstNecessary := min(firstSelected, n-1)
		if !e.cfg.UseSelected {
			firstNecessary = n - 1
		}
		if b := globalKillerBound(feats, g.Feats[B.Type].KillFeatQualsDown, B, false); b > 0 {
			if upper := n - 1 - b; upper < firstNecessary {
				firstNecessary = upper
			}
		}

		scratchB = scratchB[:0]
		maxBackward := math.Inf(-1)
		any := false

		for tgtType := 0; tgtType < ntypes; tgtType++ {
			rel := g.Feats[tgtType].Sources[B.Type]
			if rel == nil {
				continue
			}

			upperBound := firstNecessary
			if g.Feats[B.Type].KillFeatQualsDown == nil {
				// Per-relation fallback bound, expressed as an index
				// ceiling symmetric to the forward floor.
				if b := relationKillerBound(feats, rel.FeatKillers, B, false); b > 0 {
					if upper := n - 1 - b; upper < upperBound {
						upperBound = upper
					}
				}
			}
			srcFrame := mod3(B.AdjEnd)
			if e.cfg.Mode == PrunedSum {
				if fv := fringe[B.Type][tgtType][srcFrame]; fv > 0 && fv < upperBound {
					upperBound = fv
				}
			}

			localFringe := upperBound
			maxBwdPlusLen := math.Inf(-1)

			visit := func(tIdx int) (brk bool) {
				C := &fs.Features[tIdx]
				dist := distance(B, C)
				if rel.HasMaxDist && dist > rel.MaxDist {
					return true
				}
				if rel.HasMinDist && dist < rel.MinDist {
					return false
				}
				if rel.HasPhase && mod3(dist) != rel.Phase {
					return false
				}
				if dnaKillerMatches(rel, B, C) {
					return false
				}

				w := score.Weight(e.scorer, B, C, rel, g, dist)
				backward := C.BackwardScore + w
				if math.IsInf(backward, -1) {
					return false
				}
				any = true
				scratchB = append(scratchB, backward)
				if backward > maxBackward {
					maxBackward = backward
				}

				var lenPenalty float64
				if rel.HasLenFun {
					lenPenalty = g.LengthFuncs[rel.LenFun].Penalty(dist)
				}
				bwdPlusLen := backward + lenPenalty
				if bwdPlusLen > maxBwdPlusLen {
					maxBwdPlusLen = bwdPlusLen
				}
				dominated := maxBwdPlusLen-bwdPlusLen >= DominanceThreshold
				if !dominated && tIdx < localFringe {
					localFringe = tIdx
				}
				return false
			}

			if rel.HasPhase {
				// Backward buckets candidates by AdjEnd mod 3 (see the
				// append above), and distance = C.AdjEnd - B.AdjStart + 1
				// must be ≡ Phase, so C.AdjEnd ≡ B.AdjStart + Phase - 1.
				frame := mod3(B.AdjStart + rel.Phase - 1)
				lst := feats[tgtType][frame]
				for k := len(lst) - 1; k >= 0; k-- {
					idx := lst[k]
					if idx > upperBound {
						break
					}
					if visit(idx) {
						break
					}
				}
			} else {
				p := [3]int{len(feats[tgtType][0]) - 1, len(feats[tgtType][1]) - 1, len(feats[tgtType][2]) - 1}
				for {
					best, bf := math.MaxInt64, -1
					for f := 0; f < 3; f++ {
						if p[f] < 0 {
							continue
						}
						idx := feats[tgtType][f][p[f]]
						if idx < best {
							best, bf = idx, f
						}
					}
					if bf < 0 || best > upperBound {
						break
					}
					p[bf]--
					if visit(best) {
						break
					}
				}
			}

			structural := rel.HasPhase || len(rel.FeatKillers) > 0 || g.Feats[B.Type].KillFeatQualsDown != nil
			if structural {
				if fringe[B.Type][tgtType][srcFrame] == 0 || localFringe < fringe[B.Type][tgtType][srcFrame] {
					fringe[B.Type][tgtType][srcFrame] = localFringe
				}
			} else {
				for f := 0; f < 3; f++ {
					if fringe[B.Type][tgtType][f] == 0 || localFringe < fringe[B.Type][tgtType][f] {
						fringe[B.Type][tgtType][f] = localFringe
					}
				}
			}
		}

		if !any {
			B.Invalid = true
			B.BackwardScore = math.Inf(-1)
		} else {
			B.BackwardScore = logSumExp(scratchB, maxBackward)
		}

		if B.Selected {
			sameBlock := firstSelectedSpan[0] == B.RealStart && firstSelectedSpan[1] == B.RealEnd
			firstSelectedSpan = [2]int{B.RealStart, B.RealEnd}
			if !sameBlock {
				firstSelected = i
			}
		}
	}

	if fs.Features[0].Invalid {
		return &gazeerr.Error{Kind: gazeerr.NoLegalPath, At: 0}
	}
	return nil
}
