// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaze

import (
	"errors"
	"testing"

	"github.com/kortschak/gaze/dp"
	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/segment"
)

// minimalDoc builds the grammar used throughout spec §8: types {BEGIN, A,
// B, END}; BEGIN->A unconstrained, A->B phase 0 min 3 max 9, B->END
// unconstrained; no killers, no segments.
func minimalDoc(lenFun *grammar.LengthFunctionDoc) *grammar.Doc {
	phase0 := 0
	min3 := 3
	max9 := 9
	doc := &grammar.Doc{
		FeatureTypes: []string{"BEGIN", "A", "B", "END"},
		BeginType:    "BEGIN",
		EndType:      "END",
		Features: []grammar.FeatureTypeDoc{
			{Type: "BEGIN", Multiplier: 1},
			{
				Type:       "A",
				Multiplier: 1,
				Sources: []grammar.RelationDoc{
					{Source: "BEGIN"},
				},
			},
			{
				Type:       "B",
				Multiplier: 1,
				Sources: []grammar.RelationDoc{
					{Source: "A", Phase: &phase0, MinDist: &min3, MaxDist: &max9},
				},
			},
			{
				Type:       "END",
				Multiplier: 1,
				Sources: []grammar.RelationDoc{
					{Source: "B"},
				},
			},
		},
	}
	if lenFun != nil {
		doc.LengthFunctions = []grammar.LengthFunctionDoc{*lenFun}
		doc.Features[2].Sources[0].LengthFunction = lenFun.Name
	}
	return doc
}

func emptySegments(g *grammar.Grammar) *segment.Index {
	idx, err := segment.NewIndex(g, 1, nil)
	if err != nil {
		panic(err)
	}
	return idx
}

func mustSet(t *testing.T, g *grammar.Grammar, cands []feature.Candidate) *feature.Set {
	t.Helper()
	fs, err := feature.NewSet(g, 1, cands)
	if err != nil {
		t.Fatalf("feature.NewSet: %v", err)
	}
	return fs
}

func begin(pos int) feature.Candidate { return feature.Candidate{Type: "BEGIN", RealStart: pos, RealEnd: pos} }
func end(pos int) feature.Candidate   { return feature.Candidate{Type: "END", RealStart: pos, RealEnd: pos} }
func featAt(typ string, pos int, score float64) feature.Candidate {
	return feature.Candidate{Type: typ, RealStart: pos, RealEnd: pos, LocalScore: score}
}

// Scenario 1: distance A->B of 7 (mod 3 = 1) is illegal under phase 0;
// there is no other B, so no legal path exists.
func TestScenario1NoLegalPath(t *testing.T) {
	g, err := grammar.Build(minimalDoc(nil))
	if err != nil {
		t.Fatal(err)
	}
	fs := mustSet(t, g, []feature.Candidate{
		begin(1),
		featAt("A", 5, 2.0),
		featAt("B", 11, 3.0),
		end(20),
	})
	_, err = Predict(g, fs, emptySegments(g), dp.Config{Mode: dp.StandardSum}, Options{})
	var gerr *gazeerr.Error
	if !errors.As(err, &gerr) || gerr.Kind != gazeerr.NoLegalPath {
		t.Fatalf("want NoLegalPath, got %v", err)
	}
}

// Scenario 2: add B@13 (distance 9, mod 3 = 0). Expected score 6.0.
func TestScenario2SingleLegalPath(t *testing.T) {
	g, err := grammar.Build(minimalDoc(nil))
	if err != nil {
		t.Fatal(err)
	}
	fs := mustSet(t, g, []feature.Candidate{
		begin(1),
		featAt("A", 5, 2.0),
		featAt("B", 11, 3.0),
		featAt("B", 13, 4.0),
		end(20),
	})
	res, err := Predict(g, fs, emptySegments(g), dp.Config{Mode: dp.StandardSum}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 6.0 {
		t.Fatalf("want score 6.0, got %v", res.Score)
	}
}

// Scenario 3: add A@6 and B@14; BEGIN,A@6,B@14,END (6.5) beats
// BEGIN,A@5,B@13,END (6.0).
func TestScenario3BetterPathWins(t *testing.T) {
	g, err := grammar.Build(minimalDoc(nil))
	if err != nil {
		t.Fatal(err)
	}
	fs := mustSet(t, g, []feature.Candidate{
		begin(1),
		featAt("A", 5, 2.0),
		featAt("A", 6, 1.5),
		featAt("B", 13, 4.0),
		featAt("B", 14, 5.0),
		end(20),
	})
	res, err := Predict(g, fs, emptySegments(g), dp.Config{Mode: dp.StandardSum}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 6.5 {
		t.Fatalf("want score 6.5, got %v", res.Score)
	}
}

// Scenario 4: a length function penalising distance 9 by 0.5 still leaves
// path 3 (A@6,B@14) ahead of path 2 (A@5,B@13): 6.0 vs 5.5.
func TestScenario4LengthPenaltyStillPrefersPath3(t *testing.T) {
	doc := minimalDoc(&grammar.LengthFunctionDoc{
		Name:       "len9",
		Table:      []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0.5},
		Multiplier: 1,
	})
	g, err := grammar.Build(doc)
	if err != nil {
		t.Fatal(err)
	}
	fs := mustSet(t, g, []feature.Candidate{
		begin(1),
		featAt("A", 5, 2.0),
		featAt("A", 6, 1.5),
		featAt("B", 13, 4.0),
		featAt("B", 14, 5.0),
		end(20),
	})
	res, err := Predict(g, fs, emptySegments(g), dp.Config{Mode: dp.StandardSum}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 6.0 {
		t.Fatalf("want score 6.0, got %v", res.Score)
	}
}

// Scenario 5: marking A@5 selected makes the path that omits it illegal;
// the winner reverts to BEGIN,A@5,B@13,END (6.0).
func TestScenario5SelectedFeatureForcesWaypoint(t *testing.T) {
	g, err := grammar.Build(minimalDoc(nil))
	if err != nil {
		t.Fatal(err)
	}
	a5 := featAt("A", 5, 2.0)
	a5.Selected = true
	fs := mustSet(t, g, []feature.Candidate{
		begin(1),
		a5,
		featAt("A", 6, 1.5),
		featAt("B", 13, 4.0),
		featAt("B", 14, 5.0),
		end(20),
	})
	res, err := Predict(g, fs, emptySegments(g), dp.Config{Mode: dp.StandardSum, UseSelected: true}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 6.0 {
		t.Fatalf("want score 6.0, got %v", res.Score)
	}
}

// Scenario 6: a DNA killer on BEGIN->A for motif pair (1,1) makes A@5
// unreachable when A@5.src_dna=1 and BEGIN.tgt_dna=1; the winner goes via
// A@6 (src_dna=2).
func TestScenario6DNAKillerBlocksEdge(t *testing.T) {
	doc := minimalDoc(nil)
	doc.Motifs = []string{"m1", "m2"}
	doc.Features[0].Sources = nil // BEGIN has no sources
	doc.Features[1].Sources[0].DNAKillers = []grammar.DNAKillerDoc{
		{SrcMotif: "m1", TgtMotif: "m1"},
	}
	g, err := grammar.Build(doc)
	if err != nil {
		t.Fatal(err)
	}

	beginF := begin(1)
	beginF.TgtDNA = "m1"
	a5 := featAt("A", 5, 2.0)
	a5.SrcDNA = "m1"
	a6 := featAt("A", 6, 1.5)
	a6.SrcDNA = "m2"

	fs := mustSet(t, g, []feature.Candidate{
		beginF,
		a5,
		a6,
		featAt("B", 13, 4.0),
		featAt("B", 14, 5.0),
		end(20),
	})
	res, err := Predict(g, fs, emptySegments(g), dp.Config{Mode: dp.StandardSum}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// A@5 is unreachable, so only BEGIN,A@6,B@14,END (6.5) remains.
	if res.Score != 6.5 {
		t.Fatalf("want score 6.5, got %v", res.Score)
	}
}

// Pruning soundness: full and pruned modes must agree on the Viterbi path.
func TestPrunedModeMatchesFullMode(t *testing.T) {
	g, err := grammar.Build(minimalDoc(nil))
	if err != nil {
		t.Fatal(err)
	}
	cands := []feature.Candidate{
		begin(1),
		featAt("A", 5, 2.0),
		featAt("A", 6, 1.5),
		featAt("B", 13, 4.0),
		featAt("B", 14, 5.0),
		end(20),
	}
	fsFull := mustSet(t, g, cands)
	fsPruned := mustSet(t, g, cands)

	full, err := Predict(g, fsFull, emptySegments(g), dp.Config{Mode: dp.StandardSum}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	pruned, err := Predict(g, fsPruned, emptySegments(g), dp.Config{Mode: dp.PrunedSum}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if full.Score != pruned.Score {
		t.Fatalf("full=%v pruned=%v disagree", full.Score, pruned.Score)
	}
}
