// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gaze-cull is a preprocessing filter for candidate feature GFF files: it
// discards a candidate feature that is completely contained within an
// equal- or higher-scoring candidate of the same type, on the grounds that a
// dominated, fully nested candidate can never win a Viterbi traceback over
// the feature that contains it and only adds to the engine's fringe work.
//
// usage: gaze-cull < candidates.gff > candidates.gff
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/store/interval"
)

func main() {
	flag.Usage = func() {
		fmt.Println(`usage: gaze-cull < candidates.gff > candidates.gff`)
		os.Exit(0)
	}
	flag.Parse()

	r := gff.NewReader(os.Stdin)
	sc := featio.NewScanner(r)
	var feats []*gff.Feature
	for sc.Next() {
		feats = append(feats, sc.Feat().(*gff.Feature))
	}
	if err := sc.Error(); err != nil {
		log.Fatal(err)
	}

	w := gff.NewWriter(os.Stdout, 60, true)
	for _, f := range cullDominated(feats) {
		if _, err := w.Write(f); err != nil {
			log.Fatal(err)
		}
	}
}

// cullDominated returns feats with every candidate removed that is
// completely spanned by a same-type candidate of equal or higher score.
// Candidates without a score, and candidates of differing feature type,
// are never culled against each other — a grammar may legitimately need
// a low-scoring candidate of one type nested inside a high-scoring
// candidate of another.
func cullDominated(feats []*gff.Feature) []*gff.Feature {
	byType := make(map[string][]*gff.Feature)
	for _, f := range feats {
		byType[f.Feature] = append(byType[f.Feature], f)
	}

	dominated := make(map[*gff.Feature]bool)
	for _, group := range byType {
		var tree interval.IntTree
		for i, f := range group {
			if f.FeatScore == nil {
				continue
			}
			if err := tree.Insert(candidateInterval{uid: uintptr(i), Feature: f}, true); err != nil {
				log.Fatal(err)
			}
		}
		tree.AdjustRanges()
		for _, f := range group {
			if f.FeatScore == nil {
				continue
			}
			for _, o := range tree.Get(candidateInterval{Feature: f}) {
				h := o.(candidateInterval).Feature
				if h == f {
					continue
				}
				if *h.FeatScore >= *f.FeatScore {
					dominated[f] = true
					break
				}
			}
		}
	}

	var culled []*gff.Feature
	for _, f := range feats {
		if !dominated[f] {
			culled = append(culled, f)
		}
	}
	return culled
}

type candidateInterval struct {
	uid uintptr
	*gff.Feature
}

// Overlap reports whether b completely contains i.
func (i candidateInterval) Overlap(b interval.IntRange) bool {
	return b.Start <= i.FeatStart && i.FeatEnd <= b.End
}
func (i candidateInterval) ID() uintptr { return i.uid }
func (i candidateInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.FeatStart, End: i.FeatEnd}
}
