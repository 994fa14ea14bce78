// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"fmt"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
)

// PhaseExpand replaces every candidate whose type is marked PhaseExpand in
// g with three phase-tagged candidates of types Type+"0", Type+"1" and
// Type+"2", at the same position and score — the original gaze engine's
// treatment of a single splice-site record as three frame-specific
// feature instances. Candidates of other types pass through unchanged.
func PhaseExpand(g *grammar.Grammar, cands []feature.Candidate) ([]feature.Candidate, error) {
	out := make([]feature.Candidate, 0, len(cands))
	for i, c := range cands {
		ti, ok := g.TypeIndex(c.Type)
		if !ok {
			return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, At: i, Msg: "unknown feature type " + c.Type}
		}
		if !g.Feats[ti].PhaseExpand {
			out = append(out, c)
			continue
		}
		for phase := 0; phase < 3; phase++ {
			phased := c
			phased.Type = fmt.Sprintf("%s%d", c.Type, phase)
			if _, ok := g.TypeIndex(phased.Type); !ok {
				return nil, &gazeerr.Error{
					Kind: gazeerr.MalformedInput, At: i,
					Msg: "phase-expandable type " + c.Type + " missing phase variant " + phased.Type,
				}
			}
			out = append(out, phased)
		}
	}
	return out, nil
}
