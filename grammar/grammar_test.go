// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import "testing"

func TestBuildResolvesRelationsAndLengthFunctions(t *testing.T) {
	phase := 1
	minD := 2
	doc := &Doc{
		FeatureTypes: []string{"BEGIN", "EXON", "END"},
		BeginType:    "BEGIN",
		EndType:      "END",
		LengthFunctions: []LengthFunctionDoc{
			{Name: "intron", Table: []float64{1, 2, 3}, Multiplier: 2},
		},
		Features: []FeatureTypeDoc{
			{Type: "BEGIN", Multiplier: 1},
			{
				Type:        "EXON",
				StartOffset: -1,
				EndOffset:   1,
				Multiplier:  3,
				Sources: []RelationDoc{
					{Source: "BEGIN", Phase: &phase, MinDist: &minD, LengthFunction: "intron"},
				},
			},
			{Type: "END", Multiplier: 1, Sources: []RelationDoc{{Source: "EXON"}}},
		},
	}

	g, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exon, ok := g.TypeIndex("EXON")
	if !ok {
		t.Fatal("EXON not indexed")
	}
	begin, _ := g.TypeIndex("BEGIN")
	rel := g.Relation(exon, begin)
	if rel == nil {
		t.Fatal("expected relation BEGIN->EXON")
	}
	if !rel.HasPhase || rel.Phase != 1 {
		t.Errorf("phase not resolved: %+v", rel)
	}
	if !rel.HasMinDist || rel.MinDist != 2 {
		t.Errorf("min_dist not resolved: %+v", rel)
	}
	if !rel.HasLenFun {
		t.Fatal("length function not resolved")
	}
	lf := g.LengthFuncs[rel.LenFun]
	want := []float64{2, 4, 6} // table * multiplier(2)
	for i, v := range want {
		if lf.Table[i] != v {
			t.Errorf("table[%d] = %v, want %v", i, lf.Table[i], v)
		}
	}

	as, ae := g.AdjustedSpan(exon, 10, 20)
	if as != 9 || ae != 21 {
		t.Errorf("AdjustedSpan = (%d,%d), want (9,21)", as, ae)
	}
}

func TestLengthFunctionExtrapolatesLastEntry(t *testing.T) {
	lf := LengthFunction{Table: []float64{1, 2, 3}, scaled: true}
	if p := lf.Penalty(100); p != 3 {
		t.Errorf("Penalty(100) = %v, want 3", p)
	}
	if p := lf.Penalty(0); p != 1 {
		t.Errorf("Penalty(0) = %v, want 1", p)
	}
}
