// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/score"
	"github.com/kortschak/gaze/segment"
)

// Engine is a pure transformer from (grammar, features, segments) to path,
// scores and posteriors (spec §6 "Persisted state: none").
type Engine struct {
	g      *grammar.Grammar
	scorer *score.Scorer
	cfg    Config
}

// NewEngine builds an Engine reading segment contributions from segs under
// grammar g, configured by cfg.
func NewEngine(g *grammar.Grammar, segs *segment.Index, cfg Config) *Engine {
	return &Engine{g: g, scorer: score.NewScorer(segs), cfg: cfg}
}

// Grammar returns the engine's grammar.
func (e *Engine) Grammar() *grammar.Grammar { return e.g }

// Scorer returns the engine's segment scorer.
func (e *Engine) Scorer() *score.Scorer { return e.scorer }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }
