// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gazeerr defines the error kinds produced by the gaze dynamic
// programming engine.
package gazeerr

import "fmt"

// Kind identifies a class of engine failure.
type Kind int

const (
	_ Kind = iota
	// InvalidPath indicates a caller-supplied path failed legality
	// checking.
	InvalidPath
	// NoLegalPath indicates the END feature was left invalid after the
	// forward sweep: the grammar admits no legal parse of the input.
	NoLegalPath
	// MalformedInput indicates the ingested features or segments violate
	// a structural precondition of the engine.
	MalformedInput
	// NumericUnderflow indicates a log-domain invariant was violated;
	// this should be unreachable under the log-sum-exp formulation.
	NumericUnderflow
)

func (k Kind) String() string {
	switch k {
	case InvalidPath:
		return "invalid path"
	case NoLegalPath:
		return "no legal path"
	case MalformedInput:
		return "malformed input"
	case NumericUnderflow:
		return "numeric underflow"
	default:
		return "unknown error kind"
	}
}

// InvalidPathReason identifies why a path was rejected by validate.Path.
type InvalidPathReason int

const (
	_ InvalidPathReason = iota
	// UnknownPair indicates no Relation exists for the consecutive pair.
	UnknownPair
	// PhaseViolation indicates the pair's distance does not satisfy the
	// relation's required phase.
	PhaseViolation
	// MinDistViolation indicates the pair's distance is below the
	// relation's minimum.
	MinDistViolation
	// MaxDistViolation indicates the pair's distance is above the
	// relation's maximum.
	MaxDistViolation
	// DNAKillerViolation indicates a DNA-killer qualifier matched the
	// pair's motif tags.
	DNAKillerViolation
	// FeatureKillerViolation indicates an intervening feature of a
	// killer type occurs between the pair.
	FeatureKillerViolation
)

func (r InvalidPathReason) String() string {
	switch r {
	case UnknownPair:
		return "unknown pair"
	case PhaseViolation:
		return "phase violation"
	case MinDistViolation:
		return "min-distance violation"
	case MaxDistViolation:
		return "max-distance violation"
	case DNAKillerViolation:
		return "DNA-killer violation"
	case FeatureKillerViolation:
		return "feature-killer violation"
	default:
		return "unknown reason"
	}
}

// Error is the error type returned by gaze components.
type Error struct {
	Kind Kind

	// Reason is set when Kind is InvalidPath.
	Reason InvalidPathReason

	// At is the index of the first offending element (the target index
	// of the offending pair for InvalidPath, the feature index for
	// MalformedInput/NumericUnderflow).
	At int

	// Msg is a human readable supplement.
	Msg string
}

func (e *Error) Error() string {
	if e.Kind == InvalidPath {
		return fmt.Sprintf("%s: %s at index %d: %s", e.Kind, e.Reason, e.At, e.Msg)
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s at index %d", e.Kind, e.At)
	}
	return fmt.Sprintf("%s at index %d: %s", e.Kind, e.At, e.Msg)
}

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, gazeerr.NoLegalPathError) style sentinels work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason != 0 && t.Reason != e.Reason {
		return false
	}
	return t.Kind == e.Kind
}

// NoLegalPathError is a sentinel matching any *Error of kind NoLegalPath.
var NoLegalPathError = &Error{Kind: NoLegalPath}

// NumericUnderflowError is a sentinel matching any *Error of kind
// NumericUnderflow.
var NumericUnderflowError = &Error{Kind: NumericUnderflow}
