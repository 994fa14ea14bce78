// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package score

import (
	"testing"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/segment"
)

func buildScorer(t *testing.T, raw []segment.Raw) (*grammar.Grammar, *Scorer) {
	t.Helper()
	g, err := grammar.Build(&grammar.Doc{
		FeatureTypes: []string{"BEGIN", "S", "T", "END"},
		SegmentTypes: []string{"exon"},
		BeginType:    "BEGIN",
		EndType:      "END",
	})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := segment.NewIndex(g, 1, raw)
	if err != nil {
		t.Fatal(err)
	}
	return g, NewScorer(idx)
}

func feat(adjStart, adjEnd int) *feature.Feature {
	return &feature.Feature{AdjStart: adjStart, AdjEnd: adjEnd}
}

func TestEdgeFullyContainedSegmentScoresWholeLength(t *testing.T) {
	_, sc := buildScorer(t, []segment.Raw{{SegType: "exon", Start: 10, End: 20, Score: 2}})
	rel := &grammar.Relation{SegQuals: []grammar.SegmentQualifier{{SegType: 0}}}
	s, tg := feat(5, 9), feat(21, 30)
	total, _ := sc.Edge(s, tg, rel)
	if total != 2*11 {
		t.Fatalf("total = %v, want %v", total, 2*11)
	}
}

func TestEdgeNonContainedSegmentSkippedWithoutPartial(t *testing.T) {
	_, sc := buildScorer(t, []segment.Raw{{SegType: "exon", Start: 3, End: 15, Score: 2}})
	rel := &grammar.Relation{SegQuals: []grammar.SegmentQualifier{{SegType: 0}}}
	s, tg := feat(5, 9), feat(16, 30) // segment starts before s.AdjStart, not contained
	total, _ := sc.Edge(s, tg, rel)
	if total != 0 {
		t.Fatalf("total = %v, want 0 (segment spills outside [src,tgt])", total)
	}
}

func TestEdgePartialCountsOnlyOverlap(t *testing.T) {
	_, sc := buildScorer(t, []segment.Raw{{SegType: "exon", Start: 3, End: 15, Score: 2}})
	rel := &grammar.Relation{SegQuals: []grammar.SegmentQualifier{{SegType: 0, Partial: true}}}
	s, tg := feat(5, 9), feat(16, 30)
	total, _ := sc.Edge(s, tg, rel)
	// overlap is [5,15], 11 residues.
	if total != 2*11 {
		t.Fatalf("total = %v, want %v", total, 2*11)
	}
}

func TestWeightSubtractsPenaltyAndAddsLocalScore(t *testing.T) {
	g, sc := buildScorer(t, nil)
	g.LengthFuncs = []grammar.LengthFunction{{Table: []float64{1, 2, 3}}}
	rel := &grammar.Relation{HasLenFun: true, LenFun: 0}
	s := feat(0, 0)
	tg := feat(10, 10)
	tg.LocalScore = 5
	w := Weight(sc, s, tg, rel, g, 2)
	if w != 0-3+5 {
		t.Fatalf("Weight = %v, want %v", w, 0-3+5)
	}
}
