// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gaze-blast-import runs a BLAST nucleotide search of one or more query
// libraries against a subject sequence and converts the resulting hits
// into candidate features suitable for gaze: each HSP becomes a candidate
// of the given feature type, scored by BLAST bit score.
//
// usage: gaze-blast-import -lib <library.fa> [-lib <library.fa> ...] -subject <genome.fa> >candidates.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"

	"github.com/kortschak/gaze/blast"
	"github.com/kortschak/gaze/feature"
)

const tabFmt = 6

// searchModes are the BLAST parameters for each search stringency.
var searchModes = map[string]blast.Nucleic{
	"sensitive": {NumAlignments: 1e7, SearchSpace: 1e6, EValue: 3e-5, Threads: runtime.NumCPU(), Reward: 3, Penalty: -4, GapOpen: 30, GapExtend: 6, XdropUngap: 80, XdropGap: 130, XdropGapFinal: 150, WordSize: 9, ParseDeflines: true, OutFormat: tabFmt},
	"normal":    {NumAlignments: 1e7, SearchSpace: 1e6, EValue: 2e-5, Threads: runtime.NumCPU(), Reward: 3, Penalty: -4, GapOpen: 30, GapExtend: 6, XdropUngap: 80, XdropGap: 130, XdropGapFinal: 150, WordSize: 10, ParseDeflines: true, OutFormat: tabFmt},
	"rough":     {NumAlignments: 1e7, SearchSpace: 1e6, EValue: 1e-5, Threads: runtime.NumCPU(), Reward: 3, Penalty: -4, GapOpen: 30, GapExtend: 6, XdropUngap: 80, XdropGap: 130, XdropGapFinal: 150, WordSize: 11, ParseDeflines: true, OutFormat: tabFmt},
}

func main() {
	var libs sliceValue
	subject := flag.String("subject", "", "specify the subject sequence file (required)")
	flag.Var(&libs, "lib", "specify a query library file (required - may be given more than once)")
	mode := flag.String("mode", "normal", "specify search stringency")
	featType := flag.String("type", "hit", "specify the feature type to assign to each candidate")
	threads := flag.Int("cores", 0, "specify the maximum number of cores for the blast search (<=0 is use all cores)")
	verbose := flag.Bool("verbose", false, "specify verbose logging of the blast invocation")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s [options] -lib <library.fa> [-lib <library.fa> ...] -subject <genome.fa> >candidates.json

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *subject == "" || len(libs) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	search, ok := searchModes[*mode]
	if !ok {
		log.Fatalf("unknown search mode: %q", *mode)
	}
	if *threads > 0 && *threads < search.Threads {
		search.Threads = *threads
	}

	var logger io.Writer
	if *verbose {
		logger = os.Stderr
	}

	mkdb, err := blast.MakeDB{DBType: "nucl", In: *subject, Out: *subject}.BuildCommand()
	if err != nil {
		log.Fatal(err)
	}
	mkdb.Stdout = logger
	mkdb.Stderr = logger
	if err := mkdb.Run(); err != nil {
		log.Fatal(err)
	}

	search.Database = *subject

	var candidates []feature.Candidate
	for _, libName := range uniq(libs) {
		search.Query = libName
		blastn, err := search.BuildCommand()
		if err != nil {
			log.Fatal(err)
		}
		blastn.Stderr = logger
		stdout, err := blastn.StdoutPipe()
		if err != nil {
			log.Fatal(err)
		}
		if err := blastn.Start(); err != nil {
			log.Fatal(err)
		}

		hits, err := blast.ParseTabular(stdout, 0)
		if err != nil {
			log.Fatal(err)
		}
		if err := blastn.Wait(); err != nil {
			log.Fatal(err)
		}
		log.Printf("%s: %d hits", libName, len(hits))

		for _, h := range hits {
			candidates = append(candidates, h.Candidate(*featType))
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].RealStart < candidates[j].RealStart })

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(candidates); err != nil {
		log.Fatal(err)
	}
}

// sliceValue is a multi-value flag value.
type sliceValue []string

// Set adds the string to the sliceValue.
func (s *sliceValue) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// String satisfies the flag.Value interface.
func (s *sliceValue) String() string {
	return fmt.Sprintf("%q", []string(*s))
}

func uniq(s []string) []string {
	cp := append([]string(nil), s...)
	sort.Strings(cp)
	i := 0
	for _, v := range cp {
		if i == 0 || v != cp[i-1] {
			cp[i] = v
			i++
		}
	}
	return cp[:i]
}
