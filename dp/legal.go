// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
)

// distance returns the spec §4.2 edge distance for S->T.
func distance(s, t *feature.Feature) int {
	return t.AdjEnd - s.AdjStart + 1
}

func dnaKillerMatches(rel *grammar.Relation, s, t *feature.Feature) bool {
	if s.SrcDNA < 0 || t.TgtDNA < 0 {
		return false
	}
	for _, k := range rel.DNAKillers {
		if k.SrcMotif == s.SrcDNA && k.TgtMotif == t.TgtDNA {
			return true
		}
	}
	return false
}

// killerQualifiers returns the feature-killer qualifiers that govern the
// edge S->T, honouring the precedence rule of spec §4.4: a global table
// (upstream-of-target, or downstream-of-source) takes precedence over the
// per-relation list for its own side; both sides' global tables, when
// present, apply simultaneously.
func killerQualifiers(g *grammar.Grammar, rel *grammar.Relation, srcType, tgtType int) []grammar.FeatureKillerQualifier {
	var out []grammar.FeatureKillerQualifier
	up := g.Feats[tgtType].KillFeatQualsUp
	if up != nil {
		for _, kq := range up {
			if kq != nil {
				out = append(out, *kq)
			}
		}
	} else if rel != nil {
		out = append(out, rel.FeatKillers...)
	}
	down := g.Feats[srcType].KillFeatQualsDown
	if down != nil {
		for _, kq := range down {
			if kq != nil {
				out = append(out, *kq)
			}
		}
	}
	return out
}

// killerPhaseMatches reports whether a killer feature K at the given
// qualifier's phase is considered "on the boundary" between s and t. This
// mirrors the frame derivation of spec §4.1/§4.4: without a phase any
// occurrence counts; with a phase, only a killer landing on the
// phase-derived frame (measured from the target, forward direction)
// counts.
func killerPhaseMatches(kq grammar.FeatureKillerQualifier, t *feature.Feature, k *feature.Feature) bool {
	if !kq.HasPhase {
		return true
	}
	frame := mod3(t.AdjEnd - kq.Phase + 1)
	return mod3(k.AdjStart) == frame
}

// Legal performs the full, unstructured edge-legality check of spec §4.2
// against an explicit feature sequence, used by package validate to
// re-check a caller-supplied path. It is not used by the sweep itself,
// which enforces killers structurally via fringe bounding (spec §4.4).
func Legal(g *grammar.Grammar, fs []feature.Feature, sIdx, tIdx int) (rel *grammar.Relation, dist int, reason gazeerr.InvalidPathReason, ok bool) {
	s, t := &fs[sIdx], &fs[tIdx]
	rel = g.Relation(t.Type, s.Type)
	if rel == nil {
		return nil, 0, gazeerr.UnknownPair, false
	}
	dist = distance(s, t)
	if rel.HasPhase && mod3(dist) != rel.Phase {
		return rel, dist, gazeerr.PhaseViolation, false
	}
	if rel.HasMinDist && dist < rel.MinDist {
		return rel, dist, gazeerr.MinDistViolation, false
	}
	if rel.HasMaxDist && dist > rel.MaxDist {
		return rel, dist, gazeerr.MaxDistViolation, false
	}
	if dnaKillerMatches(rel, s, t) {
		return rel, dist, gazeerr.DNAKillerViolation, false
	}
	for _, kq := range killerQualifiers(g, rel, s.Type, t.Type) {
		for i := sIdx + 1; i < tIdx; i++ {
			k := &fs[i]
			if k.Type != kq.Type {
				continue
			}
			if killerPhaseMatches(kq, t, k) {
				return rel, dist, gazeerr.FeatureKillerViolation, false
			}
		}
	}
	return rel, dist, 0, true
}
