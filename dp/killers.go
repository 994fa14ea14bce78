// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dp

import (
	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/grammar"
)

// frameLists is the per-type, per-frame list of already-processed feature
// indices (feats[type][frame] of spec §4.5), append-only and kept in
// strict index order for the duration of one sweep.
type frameLists [][3][]int

func newFrameLists(ntypes int) frameLists {
	return make(frameLists, ntypes)
}

// mostRecent returns the most recently processed index of type kt that
// satisfies kq's optional phase relative to pivot, or -1 if none.
// forward selects the forward-sweep phase derivation of spec §4.4;
// backward selects the §4.6 derivation (frame+3-phase) mod 3.
func mostRecent(feats frameLists, kt int, kq *grammar.FeatureKillerQualifier, pivot *feature.Feature, forward bool) int {
	frames := []int{0, 1, 2}
	if kq.HasPhase {
		var frame int
		if forward {
			frame = mod3(pivot.AdjEnd - kq.Phase + 1)
		} else {
			frame = mod3(pivot.AdjStart + 3 - kq.Phase)
		}
		frames = []int{frame}
	}
	best := -1
	for _, f := range frames {
		lst := feats[kt][f]
		if len(lst) == 0 {
			continue
		}
		if idx := lst[len(lst)-1]; idx > best {
			best = idx
		}
	}
	return best
}

// globalKillerBound returns the minimal source index that may ever be
// considered for targets of type pivot.Type, imposed by table (the
// target's global upstream table in the forward sweep, or the source's
// global downstream table in the backward sweep).
func globalKillerBound(feats frameLists, table []*grammar.FeatureKillerQualifier, pivot *feature.Feature, forward bool) int {
	if table == nil {
		return 0
	}
	bound := 0
	for _, kq := range table {
		if kq == nil {
			continue
		}
		if idx := mostRecent(feats, kq.Type, kq, pivot, forward); idx+1 > bound {
			bound = idx + 1
		}
	}
	return bound
}

// relationKillerBound is the per-relation fallback of spec §4.4, used
// only when the corresponding global table is absent.
func relationKillerBound(feats frameLists, quals []grammar.FeatureKillerQualifier, pivot *feature.Feature, forward bool) int {
	bound := 0
	for i := range quals {
		kq := &quals[i]
		if idx := mostRecent(feats, kq.Type, kq, pivot, forward); idx+1 > bound {
			bound = idx + 1
		}
	}
	return bound
}
