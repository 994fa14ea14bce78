// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package score computes the segment-score contribution of an edge (spec
// §4.1) and the edge's total weight (spec §4.3).
package score

import (
	"sort"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/segment"
)

// Boundary reports whether an edge's matched segments touch the edge's
// endpoints exactly, and whether they extend beyond the other endpoint.
// Used by pruning heuristics that need to know if a segment score is
// "locked in" regardless of how the edge is later extended.
type Boundary struct {
	HasExactAtSrc        bool
	ExactExtendsBeyondTgt bool
	HasExactAtTgt        bool
	ExactExtendsBeyondSrc bool
}

// Scorer computes segment contributions with allocation-free scratch
// buffers reused across calls (spec §4.1).
type Scorer struct {
	idx     *segment.Index
	scratch []segment.Segment // reused per-type-per-call scratch
}

// NewScorer returns a Scorer reading from idx.
func NewScorer(idx *segment.Index) *Scorer {
	return &Scorer{idx: idx}
}

// Edge computes the segment score contribution for the edge S->T under
// relation rel, and its boundary flags.
func (sc *Scorer) Edge(s, t *feature.Feature, rel *grammar.Relation) (float64, Boundary) {
	var total float64
	var b Boundary
	for _, q := range rel.SegQuals {
		contribution, qb := sc.qualifier(s, t, q)
		total += contribution
		b.HasExactAtSrc = b.HasExactAtSrc || qb.HasExactAtSrc
		b.ExactExtendsBeyondTgt = b.ExactExtendsBeyondTgt || qb.ExactExtendsBeyondTgt
		b.HasExactAtTgt = b.HasExactAtTgt || qb.HasExactAtTgt
		b.ExactExtendsBeyondSrc = b.ExactExtendsBeyondSrc || qb.ExactExtendsBeyondSrc
	}
	return total, b
}

func (sc *Scorer) qualifier(s, t *feature.Feature, q grammar.SegmentQualifier) (float64, Boundary) {
	var frame int
	switch q.Mode {
	case grammar.TargetPhase:
		frame = mod3(t.AdjEnd - q.Phase + 1)
	case grammar.SourcePhase:
		frame = mod3(s.AdjStart + q.Phase)
	default:
		frame = 3
	}

	var list []segment.Segment
	if q.UseProjected {
		list = sc.idx.Lists[q.SegType].Projected[frame]
	} else {
		list = sc.idx.Lists[q.SegType].Original[frame]
	}

	sc.scratch = sc.scratch[:0]
	// Binary search the rightmost segment with Start <= t.AdjEnd.
	n := sort.Search(len(list), func(i int) bool { return list[i].Start > t.AdjEnd })
	var b Boundary
	var best float64
	haveBest := false
	for i := n - 1; i >= 0; i-- {
		seg := list[i]
		if seg.MaxEndUp < s.AdjStart {
			break
		}
		low, high := seg.Start, s.AdjStart
		if seg.Start < s.AdjStart {
			low = s.AdjStart
		}
		high = seg.End
		if seg.End > t.AdjEnd {
			high = t.AdjEnd
		}
		if low > high {
			continue
		}

		if q.IsExactSrc && seg.Start != s.AdjStart {
			continue
		}
		if q.IsExactTgt && seg.End != t.AdjEnd {
			continue
		}
		if !q.Partial && !q.IsExactSrc && !q.IsExactTgt {
			if seg.Start < s.AdjStart || seg.End > t.AdjEnd {
				continue
			}
		}

		contribution := seg.Score * float64(high-low+1)
		sc.scratch = append(sc.scratch, seg)
		if q.ScoreSum {
			best += contribution
			haveBest = true
		} else if !haveBest || contribution > best {
			best = contribution
			haveBest = true
		}

		if q.IsExactSrc && seg.Start == s.AdjStart {
			b.HasExactAtSrc = true
			if seg.End > t.AdjEnd {
				b.ExactExtendsBeyondTgt = true
			}
		}
		if q.IsExactTgt && seg.End == t.AdjEnd {
			b.HasExactAtTgt = true
			if seg.Start < s.AdjStart {
				b.ExactExtendsBeyondSrc = true
			}
		}
	}
	if !haveBest {
		return 0, b
	}
	return best, b
}

func mod3(v int) int {
	v %= 3
	if v < 0 {
		v += 3
	}
	return v
}

// Weight computes the total edge weight of spec §4.3: segment score minus
// the length penalty plus the target's local score.
func Weight(sc *Scorer, s, t *feature.Feature, rel *grammar.Relation, g *grammar.Grammar, distance int) float64 {
	segScore, _ := sc.Edge(s, t, rel)
	var penalty float64
	if rel.HasLenFun {
		penalty = g.LengthFuncs[rel.LenFun].Penalty(distance)
	}
	return segScore - penalty + t.LocalScore
}
