// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The gaze-audit-db command allows the diagnostics kv stores written by
// gaze -diagnostics-db to be queried outside of a run. There are two kinds of
// store, distinguished by file name:
//   - histogram.db — one record per calibration histogram bucket
//     (spec §4.8), keyed by run name and bin.
//   - sampletally.db — one record per feature index, counting how many
//     sampled tracebacks (spec §4.6's "sample" mode) included it, keyed
//     by run name and descending tally count.
//
// Output from gaze-audit-db is a JSON stream on stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"modernc.org/kv"

	"github.com/kortschak/gaze/internal/store"
)

func main() {
	path := flag.String("db", "", "specify db file to audit (base must be 'histogram.db' or 'sampletally.db')")
	flag.Parse()

	base := filepath.Base(*path)
	var compare func(x, y []byte) int
	switch base {
	case "histogram.db":
		compare = store.ByRunThenBin
	case "sampletally.db":
		compare = store.ByRunThenCountDesc
	default:
		flag.Usage()
		os.Exit(2)
	}

	db, err := kv.Open(*path, &kv.Options{Compare: compare})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return
		}
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			log.Fatal(err)
		}
		switch base {
		case "histogram.db":
			hk := store.UnmarshalHistogramKey(k)
			err = enc.Encode(bucketRow{
				Run:      hk.Run,
				Lo:       hk.BinLo,
				Hi:       hk.BinHi,
				Count:    hk.Count,
				Correct:  hk.Correct,
				Fraction: fraction(hk.Correct, hk.Count),
			})
		case "sampletally.db":
			tk := store.UnmarshalSampleTallyKey(k)
			err = enc.Encode(tallyRow{
				Run:          tk.Run,
				FeatureIndex: tk.FeatureIndex,
				Count:        tk.Count,
			})
		default:
			panic("unreachable")
		}
		if err != nil {
			log.Fatal(err)
		}
		_ = v // the value is empty for both record kinds; every field lives in the key
	}
	fmt.Fprintln(os.Stderr, "done")
}

func fraction(correct, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(correct) / float64(count)
}

type bucketRow struct {
	Run      string
	Lo, Hi   float64
	Count    int64
	Correct  int64
	Fraction float64
}

type tallyRow struct {
	Run          string
	FeatureIndex int64
	Count        int64
}
