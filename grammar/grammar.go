// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grammar holds the read-only catalogue of feature types, segment
// types, length functions and the dense relation table that describes
// admissible transitions between features. A Grammar is built once and is
// immutable thereafter.
package grammar

// PhaseMode selects how a SegmentQualifier picks its frame bucket.
type PhaseMode int

const (
	// FramelessPhase selects the frameless (bucket 3) segment list.
	FramelessPhase PhaseMode = iota
	// TargetPhase derives the frame from the target feature's adjusted end.
	TargetPhase
	// SourcePhase derives the frame from the source feature's adjusted start.
	SourcePhase
)

// typicalTypeCount is a nominal number of feature types for a grammar of
// modest size; nothing in the package reads it, so it has no behavioural
// effect.
const typicalTypeCount = 16

// Grammar is the immutable catalogue described in spec §3.
type Grammar struct {
	FeatTypes []string
	featIndex map[string]int

	SegTypes []string
	segIndex map[string]int

	Motifs     []string
	motifIndex map[string]int

	// Feats is dense, indexed by feature type id.
	Feats []FeatureTypeInfo

	// LengthFuncs is indexed by the LenFun field of a Relation.
	LengthFuncs []LengthFunction

	// BeginType and EndType are the feature type ids of the sentinel
	// BEGIN/END types (spec §3 invariants).
	BeginType, EndType int
}

// FeatureTypeInfo is feat_info[t] of spec §3.
type FeatureTypeInfo struct {
	StartOffset  int
	EndOffset    int
	Multiplier   float64
	IsKillerFeat bool

	// PhaseExpand marks a feature type whose ingested records stand for a
	// single splice site that must be expanded into three phase-tagged
	// candidates (spec's three-phase splice-site expansion) of types
	// named Type+"0", Type+"1", Type+"2" at ingestion time.
	PhaseExpand bool

	// Sources is dense, indexed by source type id. A nil entry means no
	// Relation exists for (this type, source type).
	Sources []*Relation

	// KillFeatQualsUp/KillFeatQualsDown are dense, indexed by the other
	// (killer) type id. A nil table (len==0) means "no global table
	// configured for this type" per spec §4.4.
	KillFeatQualsUp   []*FeatureKillerQualifier
	KillFeatQualsDown []*FeatureKillerQualifier
}

// Relation is R[tgt_type][src_type] of spec §3.
type Relation struct {
	HasPhase bool
	Phase    int

	HasMinDist bool
	MinDist    int

	HasMaxDist bool
	MaxDist    int

	HasLenFun bool
	LenFun    int

	SegQuals    []SegmentQualifier
	FeatKillers []FeatureKillerQualifier
	DNAKillers  []DNAKillerQualifier
}

// SegmentQualifier is one entry of R.segments, spec §4.1.
type SegmentQualifier struct {
	SegType   int
	Mode      PhaseMode
	Phase     int
	IsExactSrc bool
	IsExactTgt bool
	Partial   bool
	ScoreSum  bool
	UseProjected bool
}

// FeatureKillerQualifier is an intervening-feature killer, spec §4.4.
type FeatureKillerQualifier struct {
	Type     int
	HasPhase bool
	Phase    int
}

// DNAKillerQualifier is a motif pair that invalidates an edge, spec §4.2.
type DNAKillerQualifier struct {
	SrcMotif int
	TgtMotif int
}

// LengthFunction is the tabulated distance->penalty map of spec §3.
// Build multiplies Table by the document's multiplier and marks it scaled;
// the global sigma is not folded into tables built by Build.
type LengthFunction struct {
	Name   string
	Table  []float64
	scaled bool
}

// Penalty returns the length penalty for the given distance, extrapolating
// the last table entry for distances beyond the table's range.
func (lf *LengthFunction) Penalty(distance int) float64 {
	if len(lf.Table) == 0 {
		return 0
	}
	i := distance
	if i >= len(lf.Table) {
		i = len(lf.Table) - 1
	}
	if i < 0 {
		i = 0
	}
	return lf.Table[i]
}

// Scale folds multiplier and the global sigma into an unscaled table once,
// so that Penalty is a pure lookup at DP time. A table that is already
// marked scaled, as every table built by Build is, is left unchanged.
func (lf *LengthFunction) Scale(multiplier, sigma float64) {
	if lf.scaled {
		return
	}
	for i := range lf.Table {
		lf.Table[i] *= multiplier * sigma
	}
	lf.scaled = true
}

// TypeIndex returns the id of a feature type name, and false if unknown.
func (g *Grammar) TypeIndex(name string) (int, bool) {
	i, ok := g.featIndex[name]
	return i, ok
}

// SegTypeIndex returns the id of a segment type name, and false if unknown.
func (g *Grammar) SegTypeIndex(name string) (int, bool) {
	i, ok := g.segIndex[name]
	return i, ok
}

// MotifIndex returns the id of a motif name, and false if unknown.
func (g *Grammar) MotifIndex(name string) (int, bool) {
	i, ok := g.motifIndex[name]
	return i, ok
}

// Relation returns R[tgtType][srcType], or nil if no such relation exists.
func (g *Grammar) Relation(tgtType, srcType int) *Relation {
	sources := g.Feats[tgtType].Sources
	if srcType < 0 || srcType >= len(sources) {
		return nil
	}
	return sources[srcType]
}

// AdjustedSpan shifts a real span by the type's start/end offsets.
func (g *Grammar) AdjustedSpan(typ, start, end int) (adjStart, adjEnd int) {
	info := &g.Feats[typ]
	return start + info.StartOffset, end + info.EndOffset
}

// NTypes returns the number of feature types in the grammar.
func (g *Grammar) NTypes() int { return len(g.FeatTypes) }
