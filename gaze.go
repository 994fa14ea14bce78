// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gaze wires the grammar, feature, segment, dp, posterior and
// validate packages into the end-to-end predictor of spec §1–§2: given a
// grammar, a candidate feature set and a segment index, it computes the
// highest-scoring legal path (or a posterior-weighted sample) through the
// feature DAG.
package gaze

import (
	"math/rand/v2"

	"github.com/kortschak/gaze/dp"
	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/posterior"
	"github.com/kortschak/gaze/segment"
	"github.com/kortschak/gaze/validate"
)

// Result is the output of a Predict call (spec §6 "Output").
type Result struct {
	// Path is the predicted (or sampled) path, as feature indices into
	// the Set passed to Predict, in ascending (BEGIN-first) order.
	Path []int
	// Score is the path's total score, recomputed via validate.Path.
	Score float64
	// Posteriors is non-nil only when WithPosteriors is set and the
	// backward sweep ran.
	Posteriors []posterior.Feature
}

// Options controls what Predict computes beyond the core traceback.
type Options struct {
	WithPosteriors     bool
	PostProbsThreshold float64
	Rand               *rand.Rand // used only when cfg.SampleGene is set
}

// Predict runs the forward sweep (and, if requested, the backward sweep)
// over fs under g and segs, then produces a traceback per cfg.SampleGene.
func Predict(g *grammar.Grammar, fs *feature.Set, segs *segment.Index, cfg dp.Config, opts Options) (*Result, error) {
	e := dp.NewEngine(g, segs, cfg)

	if err := e.Forward(fs); err != nil {
		return nil, err
	}

	var path []int
	var err error
	if cfg.SampleGene {
		path, err = e.SampleTraceback(fs, opts.Rand)
	} else {
		path, _, err = dp.MaxTraceback(fs)
	}
	if err != nil {
		return nil, err
	}

	total, err := validate.Path(g, e.Scorer(), fs, path)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: path, Score: total}

	if opts.WithPosteriors {
		if err := e.Backward(fs); err != nil {
			return nil, err
		}
		res.Posteriors = posterior.Of(fs, opts.PostProbsThreshold)
	}

	return res, nil
}
