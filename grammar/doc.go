// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Doc is the structured document that a grammar source (spec §6) is
// expected to parse into, before Build turns it into a Grammar. Loading
// an XML grammar document is a collaborator's responsibility (spec §1
// Non-goals); Doc/Load cover the YAML form used by this repository's own
// tests and tools.
type Doc struct {
	FeatureTypes    []string            `yaml:"feature_types"`
	SegmentTypes    []string            `yaml:"segment_types"`
	Motifs          []string            `yaml:"motifs"`
	BeginType       string              `yaml:"begin_type"`
	EndType         string              `yaml:"end_type"`
	LengthFunctions []LengthFunctionDoc `yaml:"length_functions"`
	Features        []FeatureTypeDoc    `yaml:"features"`
}

type LengthFunctionDoc struct {
	Name       string    `yaml:"name"`
	Table      []float64 `yaml:"table"`
	Multiplier float64   `yaml:"multiplier"`
}

type FeatureTypeDoc struct {
	Type              string          `yaml:"type"`
	StartOffset       int             `yaml:"start_offset"`
	EndOffset         int             `yaml:"end_offset"`
	Multiplier        float64         `yaml:"multiplier"`
	IsKillerFeat      bool            `yaml:"is_killer_feat"`
	PhaseExpand       bool            `yaml:"phase_expand"`
	KillFeatQualsUp   []KillerQualDoc `yaml:"kill_feat_quals_up"`
	KillFeatQualsDown []KillerQualDoc `yaml:"kill_feat_quals_down"`
	Sources           []RelationDoc   `yaml:"sources"`
}

type KillerQualDoc struct {
	Type  string `yaml:"type"`
	Phase *int   `yaml:"phase"`
}

type RelationDoc struct {
	Source         string                `yaml:"source"`
	Phase          *int                  `yaml:"phase"`
	MinDist        *int                  `yaml:"min_dist"`
	MaxDist        *int                  `yaml:"max_dist"`
	LengthFunction string                `yaml:"length_function"`
	Segments       []SegmentQualifierDoc `yaml:"segments"`
	FeatureKillers []KillerQualDoc       `yaml:"feature_killers"`
	DNAKillers     []DNAKillerDoc        `yaml:"dna_killers"`
}

type SegmentQualifierDoc struct {
	SegmentType string `yaml:"segment_type"`
	TargetPhase *int   `yaml:"target_phase"`
	SourcePhase *int   `yaml:"source_phase"`
	ExactSrc    bool   `yaml:"exact_src"`
	ExactTgt    bool   `yaml:"exact_tgt"`
	Partial     bool   `yaml:"partial"`
	Sum         bool   `yaml:"sum"`
	Projected   bool   `yaml:"projected"`
}

type DNAKillerDoc struct {
	SrcMotif string `yaml:"src_motif"`
	TgtMotif string `yaml:"tgt_motif"`
}

// Load reads a Doc from a YAML grammar file and builds a Grammar.
func Load(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grammar: %w", err)
	}
	defer f.Close()

	var doc Doc
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("grammar: decoding %s: %w", path, err)
	}
	return Build(&doc)
}

// Build resolves a Doc's names into a dense, indexed Grammar.
func Build(doc *Doc) (*Grammar, error) {
	g := &Grammar{
		FeatTypes:  append([]string(nil), doc.FeatureTypes...),
		SegTypes:   append([]string(nil), doc.SegmentTypes...),
		Motifs:     append([]string(nil), doc.Motifs...),
		featIndex:  make(map[string]int, len(doc.FeatureTypes)),
		segIndex:   make(map[string]int, len(doc.SegmentTypes)),
		motifIndex: make(map[string]int, len(doc.Motifs)),
	}
	for i, n := range g.FeatTypes {
		g.featIndex[n] = i
	}
	for i, n := range g.SegTypes {
		g.segIndex[n] = i
	}
	for i, n := range g.Motifs {
		g.motifIndex[n] = i
	}

	var ok bool
	g.BeginType, ok = g.featIndex[doc.BeginType]
	if !ok {
		return nil, fmt.Errorf("grammar: unknown begin_type %q", doc.BeginType)
	}
	g.EndType, ok = g.featIndex[doc.EndType]
	if !ok {
		return nil, fmt.Errorf("grammar: unknown end_type %q", doc.EndType)
	}

	g.LengthFuncs = make([]LengthFunction, len(doc.LengthFunctions))
	lenFunIndex := make(map[string]int, len(doc.LengthFunctions))
	for i, lf := range doc.LengthFunctions {
		table := append([]float64(nil), lf.Table...)
		for j := range table {
			table[j] *= lf.Multiplier
		}
		g.LengthFuncs[i] = LengthFunction{Name: lf.Name, Table: table, scaled: true}
		lenFunIndex[lf.Name] = i
	}

	g.Feats = make([]FeatureTypeInfo, len(g.FeatTypes))
	for _, fd := range doc.Features {
		ti, ok := g.featIndex[fd.Type]
		if !ok {
			return nil, fmt.Errorf("grammar: unknown feature type %q", fd.Type)
		}
		info := FeatureTypeInfo{
			StartOffset:  fd.StartOffset,
			EndOffset:    fd.EndOffset,
			Multiplier:   fd.Multiplier,
			IsKillerFeat: fd.IsKillerFeat,
			PhaseExpand:  fd.PhaseExpand,
			Sources:      make([]*Relation, len(g.FeatTypes)),
		}
		if info.Multiplier == 0 {
			info.Multiplier = 1
		}

		if len(fd.KillFeatQualsUp) > 0 {
			info.KillFeatQualsUp = make([]*FeatureKillerQualifier, len(g.FeatTypes))
			for _, kq := range fd.KillFeatQualsUp {
				kt, ok := g.featIndex[kq.Type]
				if !ok {
					return nil, fmt.Errorf("grammar: unknown killer type %q", kq.Type)
				}
				info.KillFeatQualsUp[kt] = asKiller(kt, kq)
			}
		}
		if len(fd.KillFeatQualsDown) > 0 {
			info.KillFeatQualsDown = make([]*FeatureKillerQualifier, len(g.FeatTypes))
			for _, kq := range fd.KillFeatQualsDown {
				kt, ok := g.featIndex[kq.Type]
				if !ok {
					return nil, fmt.Errorf("grammar: unknown killer type %q", kq.Type)
				}
				info.KillFeatQualsDown[kt] = asKiller(kt, kq)
			}
		}

		for _, rd := range fd.Sources {
			si, ok := g.featIndex[rd.Source]
			if !ok {
				return nil, fmt.Errorf("grammar: unknown source type %q", rd.Source)
			}
			rel := &Relation{}
			if rd.Phase != nil {
				rel.HasPhase, rel.Phase = true, *rd.Phase
			}
			if rd.MinDist != nil {
				rel.HasMinDist, rel.MinDist = true, *rd.MinDist
			}
			if rd.MaxDist != nil {
				rel.HasMaxDist, rel.MaxDist = true, *rd.MaxDist
			}
			if rd.LengthFunction != "" {
				li, ok := lenFunIndex[rd.LengthFunction]
				if !ok {
					return nil, fmt.Errorf("grammar: unknown length function %q", rd.LengthFunction)
				}
				rel.HasLenFun, rel.LenFun = true, li
			}
			for _, sq := range rd.Segments {
				sti, ok := g.segIndex[sq.SegmentType]
				if !ok {
					return nil, fmt.Errorf("grammar: unknown segment type %q", sq.SegmentType)
				}
				q := SegmentQualifier{
					SegType:      sti,
					IsExactSrc:   sq.ExactSrc,
					IsExactTgt:   sq.ExactTgt,
					Partial:      sq.Partial,
					ScoreSum:     sq.Sum,
					UseProjected: sq.Projected,
				}
				switch {
				case sq.TargetPhase != nil:
					q.Mode, q.Phase = TargetPhase, *sq.TargetPhase
				case sq.SourcePhase != nil:
					q.Mode, q.Phase = SourcePhase, *sq.SourcePhase
				default:
					q.Mode = FramelessPhase
				}
				rel.SegQuals = append(rel.SegQuals, q)
			}
			for _, kq := range rd.FeatureKillers {
				kt, ok := g.featIndex[kq.Type]
				if !ok {
					return nil, fmt.Errorf("grammar: unknown killer type %q", kq.Type)
				}
				fk := FeatureKillerQualifier{Type: kt}
				if kq.Phase != nil {
					fk.HasPhase, fk.Phase = true, *kq.Phase
				}
				rel.FeatKillers = append(rel.FeatKillers, fk)
			}
			for _, dk := range rd.DNAKillers {
				sm, ok := g.motifIndex[dk.SrcMotif]
				if !ok {
					return nil, fmt.Errorf("grammar: unknown motif %q", dk.SrcMotif)
				}
				tm, ok := g.motifIndex[dk.TgtMotif]
				if !ok {
					return nil, fmt.Errorf("grammar: unknown motif %q", dk.TgtMotif)
				}
				rel.DNAKillers = append(rel.DNAKillers, DNAKillerQualifier{SrcMotif: sm, TgtMotif: tm})
			}
			info.Sources[si] = rel
		}
		g.Feats[ti] = info
	}

	return g, nil
}

func asKiller(typ int, kq KillerQualDoc) *FeatureKillerQualifier {
	fk := &FeatureKillerQualifier{Type: typ}
	if kq.Phase != nil {
		fk.HasPhase, fk.Phase = true, *kq.Phase
	}
	return fk
}
