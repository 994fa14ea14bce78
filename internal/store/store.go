// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store provides kv key encodings and compare functions for the
// diagnostics written by gaze -diagnostics-db and read back by
// gaze-audit-db: per-run calibration histograms
// (spec §4.8) and sampled-traceback feature tallies (spec §4.6's "sample"
// mode).
package store

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/kortschak/gaze/posterior"
)

var order = binary.BigEndian

// HistogramKey identifies one calibration histogram bucket from one named
// predictor run.
type HistogramKey struct {
	Run     string
	BinLo   float64
	BinHi   float64
	Count   int64
	Correct int64
}

// MarshalHistogramKey encodes the run name and bucket contents as a kv key.
// The bucket's count and correct tallies are folded into the key, not the
// value, since a histogram is small enough to read back entirely as keys
// under ByRunThenBin.
func MarshalHistogramKey(run string, b posterior.Bucket) []byte {
	var (
		buf bytes.Buffer
		n   [8]byte
	)
	order.PutUint64(n[:], uint64(len(run)))
	buf.Write(n[:])
	buf.WriteString(run)
	order.PutUint64(n[:], math.Float64bits(b.Lo))
	buf.Write(n[:])
	order.PutUint64(n[:], math.Float64bits(b.Hi))
	buf.Write(n[:])
	order.PutUint64(n[:], uint64(b.Count))
	buf.Write(n[:])
	order.PutUint64(n[:], uint64(b.Correct))
	buf.Write(n[:])
	return buf.Bytes()
}

func UnmarshalHistogramKey(data []byte) HistogramKey {
	var k HistogramKey
	n64 := binary.Size(uint64(0))
	n := order.Uint64(data[:n64])
	data = data[n64:]
	k.Run = string(data[:n])
	data = data[n:]
	k.BinLo = math.Float64frombits(order.Uint64(data[:n64]))
	data = data[n64:]
	k.BinHi = math.Float64frombits(order.Uint64(data[:n64]))
	data = data[n64:]
	k.Count = int64(order.Uint64(data[:n64]))
	data = data[n64:]
	k.Correct = int64(order.Uint64(data[:n64]))
	return k
}

// ByRunThenBin is a kv compare function ordering histogram records by run
// name, then ascending bin lower bound.
func ByRunThenBin(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}

	kx := UnmarshalHistogramKey(x)
	ky := UnmarshalHistogramKey(y)

	switch {
	case kx.Run < ky.Run:
		return -1
	case kx.Run > ky.Run:
		return 1
	}
	switch {
	case kx.BinLo < ky.BinLo:
		return -1
	case kx.BinLo > ky.BinLo:
		return 1
	}
	panic("unreachable")
}

// SampleTallyKey identifies one feature index's appearance count across a
// batch of sampled tracebacks, for diagnosing how concentrated the
// posterior-weighted sample draws are.
type SampleTallyKey struct {
	Run          string
	Count        int64
	FeatureIndex int64
}

// MarshalSampleTallyKey encodes run, tally count and feature index. Count
// is folded into the key, descending, so ByRunThenCountDesc surfaces the
// hottest features first on a forward scan.
func MarshalSampleTallyKey(run string, count int64, featureIndex int) []byte {
	var (
		buf bytes.Buffer
		n   [8]byte
	)
	order.PutUint64(n[:], uint64(len(run)))
	buf.Write(n[:])
	buf.WriteString(run)
	order.PutUint64(n[:], uint64(count))
	buf.Write(n[:])
	order.PutUint64(n[:], uint64(featureIndex))
	buf.Write(n[:])
	return buf.Bytes()
}

func UnmarshalSampleTallyKey(data []byte) SampleTallyKey {
	var k SampleTallyKey
	n64 := binary.Size(uint64(0))
	n := order.Uint64(data[:n64])
	data = data[n64:]
	k.Run = string(data[:n])
	data = data[n:]
	k.Count = int64(order.Uint64(data[:n64]))
	data = data[n64:]
	k.FeatureIndex = int64(order.Uint64(data[:n64]))
	return k
}

// ByRunThenCountDesc is a kv compare function ordering sample-tally
// records by run name then descending tally count, so the hottest
// features in a sampled population surface first in a forward scan.
func ByRunThenCountDesc(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}

	kx := UnmarshalSampleTallyKey(x)
	ky := UnmarshalSampleTallyKey(y)

	switch {
	case kx.Run < ky.Run:
		return -1
	case kx.Run > ky.Run:
		return 1
	}
	switch {
	case kx.Count > ky.Count:
		return -1
	case kx.Count < ky.Count:
		return 1
	}
	switch {
	case kx.FeatureIndex < ky.FeatureIndex:
		return -1
	case kx.FeatureIndex > ky.FeatureIndex:
		return 1
	}
	panic("unreachable")
}

// MarshalInt returns a slice encoding n as an int64.
func MarshalInt(n int) []byte {
	var buf [8]byte
	order.PutUint64(buf[:], uint64(n))
	return buf[:]
}

// UnmarshalInt decodes a slice produced by MarshalInt.
func UnmarshalInt(data []byte) int {
	return int(order.Uint64(data))
}
