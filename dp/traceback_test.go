// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/segment"
)

func linearGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Build(&grammar.Doc{
		FeatureTypes: []string{"BEGIN", "A", "END"},
		BeginType:    "BEGIN",
		EndType:      "END",
		Features: []grammar.FeatureTypeDoc{
			{Type: "BEGIN", Multiplier: 1},
			{Type: "A", Multiplier: 1, Sources: []grammar.RelationDoc{{Source: "BEGIN"}}},
			{Type: "END", Multiplier: 1, Sources: []grammar.RelationDoc{{Source: "A"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestMaxTracebackNoLegalPath(t *testing.T) {
	fs := &feature.Set{Features: []feature.Feature{
		{Trace: -1},
		{Invalid: true, PathScore: math.Inf(-1)},
	}}
	_, _, err := MaxTraceback(fs)
	var gerr *gazeerr.Error
	if !errors.As(err, &gerr) || gerr.Kind != gazeerr.NoLegalPath {
		t.Fatalf("want NoLegalPath, got %v", err)
	}
}

func TestSingleCandidatePathIsDeterministic(t *testing.T) {
	g := linearGrammar(t)
	segs, err := segment.NewIndex(g, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := feature.NewSet(g, 1, []feature.Candidate{
		{Type: "BEGIN", RealStart: 0, RealEnd: 0},
		{Type: "A", RealStart: 5, RealEnd: 5, LocalScore: 1},
		{Type: "END", RealStart: 10, RealEnd: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(g, segs, Config{Mode: StandardSum})
	if err := e.Forward(fs); err != nil {
		t.Fatal(err)
	}

	maxPath, _, err := MaxTraceback(fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(maxPath) != 3 || maxPath[0] != 0 || maxPath[2] != 2 {
		t.Fatalf("MaxTraceback path = %v, want [0 1 2]", maxPath)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	sampled, err := e.SampleTraceback(fs, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(sampled) != 3 || sampled[0] != 0 || sampled[2] != 2 {
		t.Fatalf("SampleTraceback path = %v, want [0 1 2]", sampled)
	}
}
