// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feature holds the ordered sequence of candidate features that
// the DP engine walks, and the ingestion-time scaling/sorting/dedup logic
// of spec §3 and §6.
package feature

import (
	"math"
	"sort"

	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
)

// Candidate is the externally supplied, pre-scaling representation of a
// feature, as handed to the engine by the ingestion collaborator (spec
// §6).
type Candidate struct {
	Type           string
	RealStart, RealEnd int
	LocalScore     float64
	SrcDNA, TgtDNA string // "" means "no motif tag at this site"
	Selected       bool
}

// Feature is a candidate feature annotated with its adjusted span and the
// DP engine's scalar state (spec §3).
type Feature struct {
	Type int

	RealStart, RealEnd int
	AdjStart, AdjEnd   int

	LocalScore float64

	SrcDNA, TgtDNA int // -1 means absent

	Selected bool
	Invalid  bool

	ForwardScore  float64
	BackwardScore float64
	PathScore     float64
	Trace         int // index of predecessor in the owning Set, or -1
}

// Set is the ordered, deduplicated, scaled sequence of candidate features
// of spec §3.
type Set struct {
	Grammar  *grammar.Grammar
	Features []Feature
}

// NewSet builds a Set from candidates: it resolves type/motif names,
// computes adjusted spans, scales local scores by the type multiplier and
// sigma, sorts by adjusted start (ties by adjusted end, then type), and
// coalesces duplicates (same type, same real span).
func NewSet(g *grammar.Grammar, sigma float64, candidates []Candidate) (*Set, error) {
	feats := make([]Feature, 0, len(candidates))
	for _, c := range candidates {
		ti, ok := g.TypeIndex(c.Type)
		if !ok {
			return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "unknown feature type " + c.Type}
		}
		info := &g.Feats[ti]
		adjStart, adjEnd := g.AdjustedSpan(ti, c.RealStart, c.RealEnd)

		f := Feature{
			Type:       ti,
			RealStart:  c.RealStart,
			RealEnd:    c.RealEnd,
			AdjStart:   adjStart,
			AdjEnd:     adjEnd,
			LocalScore: c.LocalScore * info.Multiplier * sigma,
			Selected:   c.Selected,
			Trace:      -1,
			SrcDNA:     -1,
			TgtDNA:     -1,
		}
		if c.SrcDNA != "" {
			idx, ok := g.MotifIndex(c.SrcDNA)
			if !ok {
				return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "unknown motif " + c.SrcDNA}
			}
			f.SrcDNA = idx
		}
		if c.TgtDNA != "" {
			idx, ok := g.MotifIndex(c.TgtDNA)
			if !ok {
				return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "unknown motif " + c.TgtDNA}
			}
			f.TgtDNA = idx
		}
		if ti == g.BeginType || ti == g.EndType {
			f.LocalScore = 0
		}
		feats = append(feats, f)
	}

	sort.SliceStable(feats, func(i, j int) bool {
		a, b := feats[i], feats[j]
		if a.AdjStart != b.AdjStart {
			return a.AdjStart < b.AdjStart
		}
		if a.AdjEnd != b.AdjEnd {
			return a.AdjEnd < b.AdjEnd
		}
		return a.Type < b.Type
	})

	feats = dedup(feats)

	nBegin, nEnd := 0, 0
	for i := range feats {
		switch feats[i].Type {
		case g.BeginType:
			nBegin++
		case g.EndType:
			nEnd++
		}
	}
	if nBegin != 1 {
		return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "exactly one BEGIN feature required"}
	}
	if nEnd != 1 {
		return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "exactly one END feature required"}
	}
	if feats[0].Type != g.BeginType {
		return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "BEGIN must precede all other features"}
	}
	if feats[len(feats)-1].Type != g.EndType {
		return nil, &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "END must follow all other features"}
	}

	feats[0].ForwardScore = 0
	feats[len(feats)-1].BackwardScore = 0
	for i := 1; i < len(feats); i++ {
		feats[i].ForwardScore = math.Inf(-1)
	}
	for i := 0; i < len(feats)-1; i++ {
		feats[i].BackwardScore = math.Inf(-1)
	}
	for i := range feats {
		feats[i].PathScore = math.Inf(-1)
	}
	feats[0].PathScore = 0

	return &Set{Grammar: g, Features: feats}, nil
}

// dedup coalesces consecutive features (the slice must already be sorted)
// that share a type and real span.
func dedup(feats []Feature) []Feature {
	if len(feats) == 0 {
		return feats
	}
	out := feats[:1]
	for _, f := range feats[1:] {
		last := &out[len(out)-1]
		if last.Type == f.Type && last.RealStart == f.RealStart && last.RealEnd == f.RealEnd {
			continue
		}
		out = append(out, f)
	}
	return out
}
