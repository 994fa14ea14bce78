// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/biogo/hts/fai"

	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/grammar"
)

// DNA is indexed, random-access FASTA sequence, used to resolve the
// src_dna/tgt_dna motif tags of spec §3 from the underlying genome when a
// candidate feature doesn't already carry them.
type DNA struct {
	file *fai.File
}

// OpenDNA indexes f (a FASTA file opened for reading) and returns a DNA
// backed by it, exactly as cmd/ins/main.go indexes its query sequence
// before resetting to the start of the file for later streaming reads.
func OpenDNA(f *os.File) (*DNA, error) {
	idx, err := fai.NewIndex(f)
	if err != nil {
		return nil, fmt.Errorf("ingest: indexing %s: %w", f.Name(), err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &DNA{file: fai.NewFile(f, idx)}, nil
}

// MotifAt returns the name of the motif in g matching the residues at
// [start,end) on seqName, or "" if none of g's declared motifs match.
func (d *DNA) MotifAt(g *grammar.Grammar, seqName string, start, end int) (string, error) {
	r, err := d.file.SeqRange(seqName, start, end)
	if err != nil {
		return "", fmt.Errorf("ingest: reading %s:%d-%d: %w", seqName, start, end, err)
	}
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return "", err
	}
	for _, m := range g.Motifs {
		if strings.EqualFold(m, string(b)) {
			return m, nil
		}
	}
	return "", nil
}

// TagMotifs resolves SrcDNA/TgtDNA for every candidate in cands that lacks
// one, reading a motifLen-residue window at the candidate's start (the
// source junction) and end (the target junction) on seqName.
func TagMotifs(d *DNA, g *grammar.Grammar, seqName string, motifLen int, cands []feature.Candidate) error {
	for i := range cands {
		c := &cands[i]
		if c.SrcDNA == "" {
			m, err := d.MotifAt(g, seqName, c.RealStart, c.RealStart+motifLen)
			if err != nil {
				return fmt.Errorf("ingest: resolving source motif for candidate %d: %w", i, err)
			}
			c.SrcDNA = m
		}
		if c.TgtDNA == "" {
			m, err := d.MotifAt(g, seqName, c.RealEnd-motifLen, c.RealEnd)
			if err != nil {
				return fmt.Errorf("ingest: resolving target motif for candidate %d: %w", i, err)
			}
			c.TgtDNA = m
		}
	}
	return nil
}
