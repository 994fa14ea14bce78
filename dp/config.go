// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dp implements the forward, backward and traceback sweeps of
// spec §4: the Viterbi/Forward/Backward computation over the sparse,
// constraint-filtered feature DAG, with frame-indexed fringe pruning.
package dp

// Mode selects between the exact (full enumeration) and pruned sweep
// strategies. Both must produce identical Viterbi paths; pruned Forward
// scores may differ from full Forward scores by no more than the
// dominance threshold allows (spec §8 "Pruning soundness").
type Mode int

const (
	// StandardSum disables fringe-based pruning: every legal source is
	// examined for every target.
	StandardSum Mode = iota
	// PrunedSum enables fringe-based pruning (spec §4.5).
	PrunedSum
)

// DominanceThreshold is the natural-log-units margin beyond which a
// source's forward contribution is considered dominated and may be
// pruned from future fringe positions (spec §4.5). Implementations MAY
// expose it but MUST default to 25.0.
var DominanceThreshold = 25.0

// Config carries the configuration knobs of spec §6.
type Config struct {
	Sigma              float64
	Mode               Mode
	UseSelected        bool
	SampleGene         bool
	PostProbsThreshold float64
	TraceLevel         int
	Verbose            bool
}
