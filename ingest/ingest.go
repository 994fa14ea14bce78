// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ingest adapts external GFF/FASTA inputs into the
// feature.Candidate and segment.Raw records the core engine consumes
// (spec §6's collaborator contract), plus the coordinate-window clipping
// and three-phase splice-site expansion the original gaze engine
// performed at load time.
package ingest

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/segment"
)

// Window restricts ingestion to a coordinate range, the Go form of the
// original gaze engine's -5s/-3s DNA window options. A nil Window imposes
// no restriction.
type Window struct {
	Start, End int
}

func (w *Window) contains(start, end int) bool {
	if w == nil {
		return true
	}
	return start >= w.Start && end <= w.End
}

// ReadFeatures scans GFF-formatted candidate features from r, converting
// each record into a feature.Candidate. A record whose span falls outside
// win is rejected with a MalformedInput error rather than silently
// dropped or clipped.
func ReadFeatures(r io.Reader, win *Window) ([]feature.Candidate, error) {
	sc := featio.NewScanner(gff.NewReader(r))
	var cands []feature.Candidate
	for sc.Next() {
		f := sc.Feat().(*gff.Feature)
		if !win.contains(f.FeatStart, f.FeatEnd) {
			return nil, &gazeerr.Error{
				Kind: gazeerr.MalformedInput, At: len(cands),
				Msg: fmt.Sprintf("feature %s:%d-%d outside ingestion window", f.Feature, f.FeatStart, f.FeatEnd),
			}
		}
		c := feature.Candidate{
			Type:      f.Feature,
			RealStart: f.FeatStart,
			RealEnd:   f.FeatEnd,
		}
		if f.FeatScore != nil {
			c.LocalScore = *f.FeatScore
		}
		for _, a := range f.FeatAttributes {
			switch a.Tag {
			case "SrcDNA":
				c.SrcDNA = a.Value
			case "TgtDNA":
				c.TgtDNA = a.Value
			case "Selected":
				c.Selected = a.Value == "true"
			}
		}
		cands = append(cands, c)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("ingest: reading features: %w", err)
	}
	return cands, nil
}

// ReadSegments scans GFF-formatted segment records from r, converting
// each record into a segment.Raw, subject to the same window restriction
// as ReadFeatures.
func ReadSegments(r io.Reader, win *Window) ([]segment.Raw, error) {
	sc := featio.NewScanner(gff.NewReader(r))
	var segs []segment.Raw
	for sc.Next() {
		f := sc.Feat().(*gff.Feature)
		if !win.contains(f.FeatStart, f.FeatEnd) {
			return nil, &gazeerr.Error{
				Kind: gazeerr.MalformedInput, At: len(segs),
				Msg: fmt.Sprintf("segment %s:%d-%d outside ingestion window", f.Feature, f.FeatStart, f.FeatEnd),
			}
		}
		s := segment.Raw{SegType: f.Feature, Start: f.FeatStart, End: f.FeatEnd}
		if f.FeatScore != nil {
			s.Score = *f.FeatScore
		}
		segs = append(segs, s)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("ingest: reading segments: %w", err)
	}
	return segs, nil
}
