// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
)

func phaseGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Build(&grammar.Doc{
		FeatureTypes: []string{"BEGIN", "END", "exon", "splice", "splice0", "splice1", "splice2"},
		BeginType:    "BEGIN",
		EndType:      "END",
		Features: []grammar.FeatureTypeDoc{
			{Type: "splice", PhaseExpand: true},
		},
	})
	require.NoError(t, err)
	return g
}

func TestPhaseExpandExpandsMarkedTypes(t *testing.T) {
	g := phaseGrammar(t)
	cands := []feature.Candidate{
		{Type: "exon", RealStart: 0, RealEnd: 10},
		{Type: "splice", RealStart: 20, RealEnd: 21, LocalScore: 3},
	}
	out, err := PhaseExpand(g, cands)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, "exon", out[0].Type)
	assert.Equal(t, "splice0", out[1].Type)
	assert.Equal(t, "splice1", out[2].Type)
	assert.Equal(t, "splice2", out[3].Type)
	for _, c := range out[1:] {
		assert.Equal(t, 20, c.RealStart)
		assert.Equal(t, 21, c.RealEnd)
		assert.Equal(t, 3.0, c.LocalScore)
	}
}

func TestPhaseExpandRejectsUnknownType(t *testing.T) {
	g := phaseGrammar(t)
	_, err := PhaseExpand(g, []feature.Candidate{{Type: "bogus"}})
	require.Error(t, err)
	var gerr *gazeerr.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, gazeerr.MalformedInput, gerr.Kind)
}
