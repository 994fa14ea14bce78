// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package segment holds the per-segment-type, per-frame original and
// projected segment lists of spec §3, and the max_end_up bookkeeping that
// lets the scorer prune its interval search in near-constant time.
package segment

import (
	"sort"

	"github.com/biogo/store/step"

	"github.com/kortschak/gaze/grammar"
)

// Segment is one scored interval, spec §3. MaxEndUp is the maximum End
// over all segments with equal or lesser Start in the sorted list it
// belongs to.
type Segment struct {
	Start, End int
	Score      float64
	MaxEndUp   int
}

// Covers reports whether the segment covers position p.
func (s Segment) Covers(p int) bool { return s.Start <= p && p <= s.End }

// frameless is the index of the frameless bucket; frames 0,1,2 are the
// residue-modulo-3 buckets.
const frameless = 3

// List holds the original and projected arrays for one segment type, one
// per frame plus the frameless bucket.
type List struct {
	Original  [4][]Segment
	Projected [4][]Segment
}

// Index is the per-segment-type collection of Lists, spec §3.
type Index struct {
	Grammar *grammar.Grammar
	Lists   []List // indexed by segment type id
}

// Raw is an externally supplied segment record before scaling/indexing.
type Raw struct {
	SegType    string
	Start, End int
	Score      float64
}

// NewIndex builds an Index from raw segments: it resolves segment type
// names, scales scores by sigma, assigns each segment to a frame bucket
// (Start mod 3) as well as the frameless bucket, sorts each bucket,
// recomputes MaxEndUp and builds the projected (overlap-merged) lists.
func NewIndex(g *grammar.Grammar, sigma float64, raw []Raw) (*Index, error) {
	idx := &Index{Grammar: g, Lists: make([]List, len(g.SegTypes))}
	for _, r := range raw {
		sti, ok := g.SegTypeIndex(r.SegType)
		if !ok {
			return nil, errUnknownSegType(r.SegType)
		}
		s := Segment{Start: r.Start, End: r.End, Score: r.Score * sigma}
		frame := ((r.Start % 3) + 3) % 3
		lst := &idx.Lists[sti]
		lst.Original[frame] = append(lst.Original[frame], s)
		lst.Original[frameless] = append(lst.Original[frameless], s)
	}
	for i := range idx.Lists {
		lst := &idx.Lists[i]
		for f := 0; f < 4; f++ {
			sortAndIndex(lst.Original[f])
			lst.Projected[f] = project(lst.Original[f])
			sortAndIndex(lst.Projected[f])
		}
	}
	return idx, nil
}

func sortAndIndex(segs []Segment) {
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	maxEnd := int(^uint(0) >> 1)
	maxEnd = -maxEnd - 1
	for i := range segs {
		if segs[i].End > maxEnd {
			maxEnd = segs[i].End
		}
		segs[i].MaxEndUp = maxEnd
	}
}

// project returns the overlap-merged, single-counting variant of segs:
// at each residue the highest-scoring covering segment wins, and adjacent
// residues sharing a score are coalesced into one Segment.
func project(segs []Segment) []Segment {
	if len(segs) == 0 {
		return nil
	}
	lo, hi := segs[0].Start, segs[0].End
	for _, s := range segs[1:] {
		if s.Start < lo {
			lo = s.Start
		}
		if s.End > hi {
			hi = s.End
		}
	}

	vec, err := step.New(lo, 1, cell{})
	if err != nil {
		panic(err)
	}
	vec.Relaxed = true
	for _, s := range segs {
		score := s.Score
		err := vec.ApplyRange(s.Start, s.End+1, func(e step.Equaler) step.Equaler {
			c := e.(cell)
			if !c.set || score > c.score {
				return cell{set: true, score: score}
			}
			return c
		})
		if err != nil {
			panic(err)
		}
	}

	var out []Segment
	vec.Do(func(start, end int, e step.Equaler) {
		c := e.(cell)
		if !c.set {
			return
		}
		out = append(out, Segment{Start: start, End: end - 1, Score: c.score})
	})
	_ = hi
	return out
}

type cell struct {
	set   bool
	score float64
}

func (c cell) Equal(e step.Equaler) bool {
	o := e.(cell)
	return c.set == o.set && c.score == o.score
}
