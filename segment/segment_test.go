// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"testing"

	"github.com/kortschak/gaze/grammar"
)

func testGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Build(&grammar.Doc{
		FeatureTypes: []string{"BEGIN", "END"},
		SegmentTypes: []string{"exon"},
		BeginType:    "BEGIN",
		EndType:      "END",
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewIndexBucketsByFrameAndFrameless(t *testing.T) {
	g := testGrammar(t)
	idx, err := NewIndex(g, 1, []Raw{
		{SegType: "exon", Start: 10, End: 20, Score: 1},
		{SegType: "exon", Start: 11, End: 15, Score: 2},
	})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	sti, _ := g.SegTypeIndex("exon")
	lst := idx.Lists[sti]
	if len(lst.Original[1]) != 1 || len(lst.Original[2]) != 1 {
		t.Fatalf("frame buckets = %d,%d, want 1,1", len(lst.Original[1]), len(lst.Original[2]))
	}
	if len(lst.Original[frameless]) != 2 {
		t.Fatalf("frameless bucket = %d, want 2", len(lst.Original[frameless]))
	}
}

func TestMaxEndUpIsRunningMaximum(t *testing.T) {
	segs := []Segment{{Start: 0, End: 5}, {Start: 1, End: 2}, {Start: 3, End: 10}}
	sortAndIndex(segs)
	want := []int{5, 5, 10}
	for i, w := range want {
		if segs[i].MaxEndUp != w {
			t.Errorf("segs[%d].MaxEndUp = %d, want %d", i, segs[i].MaxEndUp, w)
		}
	}
}

func TestProjectTakesMaxScoreAndMerges(t *testing.T) {
	segs := []Segment{
		{Start: 0, End: 4, Score: 1},
		{Start: 2, End: 6, Score: 3},
	}
	sortAndIndex(segs)
	out := project(segs)
	for _, s := range out {
		if s.Covers(2) || s.Covers(3) || s.Covers(4) {
			if s.Score != 3 {
				t.Errorf("overlap region score = %v, want 3", s.Score)
			}
		}
	}
	var total int
	for _, s := range out {
		total += s.End - s.Start + 1
	}
	if total != 7 {
		t.Errorf("projected coverage = %d residues, want 7", total)
	}
}

func TestNewIndexUnknownSegType(t *testing.T) {
	g := testGrammar(t)
	_, err := NewIndex(g, 1, []Raw{{SegType: "bogus", Start: 0, End: 1}})
	if err == nil {
		t.Fatal("expected error for unknown segment type")
	}
}
