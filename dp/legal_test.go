// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"testing"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
)

func buildLegalGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	phase0 := 0
	min3 := 3
	max9 := 9
	g, err := grammar.Build(&grammar.Doc{
		FeatureTypes: []string{"BEGIN", "A", "B", "END"},
		BeginType:    "BEGIN",
		EndType:      "END",
		Features: []grammar.FeatureTypeDoc{
			{Type: "BEGIN", Multiplier: 1},
			{Type: "A", Multiplier: 1, Sources: []grammar.RelationDoc{{Source: "BEGIN"}}},
			{Type: "B", Multiplier: 1, Sources: []grammar.RelationDoc{
				{Source: "A", Phase: &phase0, MinDist: &min3, MaxDist: &max9},
			}},
			{Type: "END", Multiplier: 1, Sources: []grammar.RelationDoc{{Source: "B"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestLegalUnknownPair(t *testing.T) {
	g := buildLegalGrammar(t)
	a, _ := g.TypeIndex("A")
	fs := []feature.Feature{{Type: a, AdjStart: 0, AdjEnd: 0}, {Type: a, AdjStart: 1, AdjEnd: 1}}
	_, _, reason, ok := Legal(g, fs, 0, 1)
	if ok || reason != gazeerr.UnknownPair {
		t.Fatalf("want UnknownPair, got ok=%v reason=%v", ok, reason)
	}
}

func TestLegalPhaseViolation(t *testing.T) {
	g := buildLegalGrammar(t)
	a, _ := g.TypeIndex("A")
	b, _ := g.TypeIndex("B")
	fs := []feature.Feature{
		{Type: a, AdjStart: 0, AdjEnd: 0},
		{Type: b, AdjStart: 6, AdjEnd: 6}, // distance 7, mod3 = 1 != 0
	}
	_, dist, reason, ok := Legal(g, fs, 0, 1)
	if ok || reason != gazeerr.PhaseViolation {
		t.Fatalf("want PhaseViolation, got ok=%v reason=%v dist=%d", ok, reason, dist)
	}
}

func TestLegalMinMaxDistViolations(t *testing.T) {
	g := buildLegalGrammar(t)
	a, _ := g.TypeIndex("A")
	b, _ := g.TypeIndex("B")

	tooClose := []feature.Feature{
		{Type: a, AdjStart: 0, AdjEnd: 0},
		{Type: b, AdjStart: -1, AdjEnd: -1}, // distance 0: phase 0 holds, but 0 < min 3
	}
	if _, _, reason, ok := Legal(g, tooClose, 0, 1); ok || reason != gazeerr.MinDistViolation {
		t.Fatalf("want MinDistViolation, got ok=%v reason=%v", ok, reason)
	}

	tooFar := []feature.Feature{
		{Type: a, AdjStart: 0, AdjEnd: 0},
		{Type: b, AdjStart: 11, AdjEnd: 11}, // distance 12 > max 9
	}
	if _, _, reason, ok := Legal(g, tooFar, 0, 1); ok || reason != gazeerr.MaxDistViolation {
		t.Fatalf("want MaxDistViolation, got ok=%v reason=%v", ok, reason)
	}
}

func TestLegalAcceptsValidEdge(t *testing.T) {
	g := buildLegalGrammar(t)
	a, _ := g.TypeIndex("A")
	b, _ := g.TypeIndex("B")
	fs := []feature.Feature{
		{Type: a, AdjStart: 0, AdjEnd: 0},
		{Type: b, AdjStart: 8, AdjEnd: 8}, // distance 9, mod3 = 0
	}
	rel, dist, _, ok := Legal(g, fs, 0, 1)
	if !ok || rel == nil || dist != 9 {
		t.Fatalf("want legal edge distance 9, got ok=%v dist=%d", ok, dist)
	}
}

func TestLegalDNAKiller(t *testing.T) {
	g, err := grammar.Build(&grammar.Doc{
		FeatureTypes: []string{"BEGIN", "A", "END"},
		Motifs:       []string{"m1"},
		BeginType:    "BEGIN",
		EndType:      "END",
		Features: []grammar.FeatureTypeDoc{
			{Type: "BEGIN", Multiplier: 1},
			{Type: "A", Multiplier: 1, Sources: []grammar.RelationDoc{
				{Source: "BEGIN", DNAKillers: []grammar.DNAKillerDoc{{SrcMotif: "m1", TgtMotif: "m1"}}},
			}},
			{Type: "END", Multiplier: 1, Sources: []grammar.RelationDoc{{Source: "A"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	begin, _ := g.TypeIndex("BEGIN")
	a, _ := g.TypeIndex("A")
	fs := []feature.Feature{
		{Type: begin, AdjStart: 0, AdjEnd: 0, TgtDNA: 0},
		{Type: a, AdjStart: 0, AdjEnd: 0, SrcDNA: 0},
	}
	if _, _, reason, ok := Legal(g, fs, 0, 1); ok || reason != gazeerr.DNAKillerViolation {
		t.Fatalf("want DNAKillerViolation, got ok=%v reason=%v", ok, reason)
	}
}

func TestLegalFeatureKillerInterveningFeature(t *testing.T) {
	g, err := grammar.Build(&grammar.Doc{
		FeatureTypes: []string{"BEGIN", "A", "K", "END"},
		BeginType:    "BEGIN",
		EndType:      "END",
		Features: []grammar.FeatureTypeDoc{
			{Type: "BEGIN", Multiplier: 1},
			{Type: "A", Multiplier: 1, Sources: []grammar.RelationDoc{
				{Source: "BEGIN", FeatureKillers: []grammar.KillerQualDoc{{Type: "K"}}},
			}},
			{Type: "K", Multiplier: 1},
			{Type: "END", Multiplier: 1, Sources: []grammar.RelationDoc{{Source: "A"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	begin, _ := g.TypeIndex("BEGIN")
	a, _ := g.TypeIndex("A")
	k, _ := g.TypeIndex("K")
	fs := []feature.Feature{
		{Type: begin, AdjStart: 0, AdjEnd: 0},
		{Type: k, AdjStart: 3, AdjEnd: 3},
		{Type: a, AdjStart: 6, AdjEnd: 6},
	}
	if _, _, reason, ok := Legal(g, fs, 0, 2); ok || reason != gazeerr.FeatureKillerViolation {
		t.Fatalf("want FeatureKillerViolation, got ok=%v reason=%v", ok, reason)
	}
}
