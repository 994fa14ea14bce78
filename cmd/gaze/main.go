// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gaze predicts the highest-scoring (or posterior-sampled) labelled path
// through a candidate feature set under a grammar, the way ins predicts
// repeat annotations under a BLAST library.
//
// usage: gaze -grammar g.yaml -features cands.gff [options] >predicted.gff
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/biogo/biogo/io/featio/gff"
	"modernc.org/kv"

	"github.com/kortschak/gaze"
	"github.com/kortschak/gaze/dp"
	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/gazeerr"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/ingest"
	"github.com/kortschak/gaze/internal/store"
	"github.com/kortschak/gaze/posterior"
	"github.com/kortschak/gaze/segment"
)

func main() {
	grammarPath := flag.String("grammar", "", "specify the grammar YAML file (required)")
	featuresPath := flag.String("features", "", "specify the candidate feature GFF file (required)")
	segmentsPath := flag.String("segments", "", "specify the segment GFF file")
	dnaPath := flag.String("dna", "", "specify the indexed FASTA file used to resolve motif tags")
	seqName := flag.String("seq", "", "specify the sequence name to use for motif resolution and output")
	motifLen := flag.Int("motif-len", 2, "specify the residue width of a motif window")
	dnaStart := flag.Int("dna-start", 0, "specify the start of the ingestion coordinate window")
	dnaEnd := flag.Int("dna-end", 0, "specify the end of the ingestion coordinate window (0 means unbounded)")

	sigma := flag.Float64("sigma", 1, "specify the global score scale factor")
	mode := flag.String("mode", "pruned", "specify the sweep strategy: standard or pruned")
	useSelected := flag.Bool("use-selected", false, "specify that paths may not skip a feature marked Selected; consecutive selected features sharing a span count as one block")
	sample := flag.Bool("sample", false, "specify to draw a posterior-weighted sample path instead of the Viterbi maximum")
	seed := flag.Uint64("seed", 1, "specify the sample traceback PRNG seed")

	withPosteriors := flag.Bool("posteriors", false, "specify to compute per-feature posterior probabilities")
	postThreshold := flag.Float64("post-threshold", 0, "specify the minimum posterior probability to report")
	postHistogram := flag.String("post-histogram", "", "specify a file to write the posterior calibration histogram to, as TSV")

	diagnosticsDB := flag.String("diagnostics-db", "", "specify a directory to write optional diagnostics kv stores to (histogram.db, sampletally.db)")
	runName := flag.String("run", "default", "specify the run name used to key diagnostics records")
	sampleCount := flag.Int("sample-count", 100, "specify how many extra samples to draw for the sampletally.db tally when -sample and -diagnostics-db are both set")

	traceLevel := flag.Int("trace-level", 0, "specify the DP trace verbosity")
	verbose := flag.Bool("verbose", false, "specify verbose logging")
	out := flag.String("out", "", "specify output path for the predicted path GFF (default: stdout)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s -grammar g.yaml -features cands.gff [options] >predicted.gff

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *grammarPath == "" || *featuresPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log.Println(os.Args)
	if *verbose {
		log.Println("verbose diagnostics enabled")
	}

	g, err := grammar.Load(*grammarPath)
	if err != nil {
		log.Fatal(err)
	}

	var win *ingest.Window
	if *dnaEnd != 0 || *dnaStart != 0 {
		end := *dnaEnd
		if end == 0 {
			end = math.MaxInt
		}
		win = &ingest.Window{Start: *dnaStart, End: end}
	}

	featuresFile, err := os.Open(*featuresPath)
	if err != nil {
		log.Fatal(err)
	}
	cands, err := ingest.ReadFeatures(featuresFile, win)
	if err != nil {
		log.Fatal(err)
	}
	featuresFile.Close()

	if *dnaPath != "" {
		if *seqName == "" {
			log.Fatal("-seq is required when -dna is given")
		}
		dnaFile, err := os.Open(*dnaPath)
		if err != nil {
			log.Fatal(err)
		}
		defer dnaFile.Close()
		dna, err := ingest.OpenDNA(dnaFile)
		if err != nil {
			log.Fatal(err)
		}
		if err := ingest.TagMotifs(dna, g, *seqName, *motifLen, cands); err != nil {
			log.Fatal(err)
		}
	}

	cands, err = ingest.PhaseExpand(g, cands)
	if err != nil {
		log.Fatal(err)
	}

	var segs []segment.Raw
	if *segmentsPath != "" {
		segmentsFile, err := os.Open(*segmentsPath)
		if err != nil {
			log.Fatal(err)
		}
		segs, err = ingest.ReadSegments(segmentsFile, win)
		if err != nil {
			log.Fatal(err)
		}
		segmentsFile.Close()
	}

	fs, err := feature.NewSet(g, *sigma, cands)
	if err != nil {
		log.Fatal(err)
	}
	segIdx, err := segment.NewIndex(g, *sigma, segs)
	if err != nil {
		log.Fatal(err)
	}

	var dpMode dp.Mode
	switch *mode {
	case "standard":
		dpMode = dp.StandardSum
	case "pruned":
		dpMode = dp.PrunedSum
	default:
		log.Fatalf("unknown mode: %q", *mode)
	}

	cfg := dp.Config{
		Sigma:              *sigma,
		Mode:               dpMode,
		UseSelected:        *useSelected,
		SampleGene:         *sample,
		PostProbsThreshold: *postThreshold,
		TraceLevel:         *traceLevel,
		Verbose:            *verbose,
	}
	opts := gaze.Options{
		WithPosteriors:     *withPosteriors || *postHistogram != "",
		PostProbsThreshold: *postThreshold,
		Rand:               rand.New(rand.NewPCG(*seed, *seed)),
	}

	res, err := gaze.Predict(g, fs, segIdx, cfg, opts)
	if err != nil {
		if gerr, ok := err.(*gazeerr.Error); ok && gerr.Kind == gazeerr.NoLegalPath {
			log.Fatalf("no legal path through the candidate feature set: %v", err)
		}
		log.Fatal(err)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}
	if err := writePath(w, g, fs, res, *seqName); err != nil {
		log.Fatal(err)
	}

	var buckets []posterior.Bucket
	if *postHistogram != "" || *diagnosticsDB != "" {
		buckets = posterior.Histogram(fs, 10, func(i int) bool { return fs.Features[i].Selected })
	}
	if *postHistogram != "" {
		if err := writeHistogram(*postHistogram, buckets); err != nil {
			log.Fatal(err)
		}
	}

	if *diagnosticsDB != "" {
		if err := os.MkdirAll(*diagnosticsDB, 0o755); err != nil {
			log.Fatal(err)
		}
		if err := writeHistogramDB(filepath.Join(*diagnosticsDB, "histogram.db"), *runName, buckets); err != nil {
			log.Fatal(err)
		}
		if *sample {
			tally, err := sampleTally(g, fs, segIdx, cfg, opts, *sampleCount)
			if err != nil {
				log.Fatal(err)
			}
			if err := writeSampleTallyDB(filepath.Join(*diagnosticsDB, "sampletally.db"), *runName, tally); err != nil {
				log.Fatal(err)
			}
		}
	}
}

// sampleTally draws n additional posterior-weighted sample tracebacks and
// counts how many of them include each feature index, the way gaze-audit-db
// reports the concentration of a sampled-path population.
func sampleTally(g *grammar.Grammar, fs *feature.Set, segs *segment.Index, cfg dp.Config, opts gaze.Options, n int) (map[int]int64, error) {
	tally := make(map[int]int64)
	for i := 0; i < n; i++ {
		res, err := gaze.Predict(g, fs, segs, cfg, gaze.Options{Rand: opts.Rand})
		if err != nil {
			return nil, err
		}
		for _, idx := range res.Path {
			tally[idx]++
		}
	}
	return tally, nil
}

// writeHistogramDB persists a calibration histogram as kv records keyed by
// run name and bin, queryable later with gaze-audit-db.
func writeHistogramDB(path, run string, buckets []posterior.Bucket) error {
	db, err := kv.Create(path, &kv.Options{Compare: store.ByRunThenBin})
	if err != nil {
		return err
	}
	defer db.Close()
	for _, b := range buckets {
		if err := db.Set(store.MarshalHistogramKey(run, b), nil); err != nil {
			return err
		}
	}
	return nil
}

// writeSampleTallyDB persists per-feature sample tallies as kv records
// ordered by descending count, queryable later with gaze-audit-db.
func writeSampleTallyDB(path, run string, tally map[int]int64) error {
	db, err := kv.Create(path, &kv.Options{Compare: store.ByRunThenCountDesc})
	if err != nil {
		return err
	}
	defer db.Close()
	for idx, count := range tally {
		if err := db.Set(store.MarshalSampleTallyKey(run, count, idx), nil); err != nil {
			return err
		}
	}
	return nil
}

// writePath writes the predicted path as GFF features annotated with
// their path score and, if computed, posterior probability.
func writePath(dst io.Writer, g *grammar.Grammar, fs *feature.Set, res *gaze.Result, seqName string) error {
	posteriorOf := make(map[int]float64, len(res.Posteriors))
	for _, p := range res.Posteriors {
		posteriorOf[p.Index] = p.Posterior
	}

	w := gff.NewWriter(dst, 60, true)
	for _, idx := range res.Path {
		f := &fs.Features[idx]
		score := f.LocalScore
		attrs := gff.Attributes{{Tag: "PathScore", Value: fmt.Sprintf("%.6g", res.Score)}}
		if p, ok := posteriorOf[idx]; ok {
			attrs = append(attrs, gff.Attribute{Tag: "Posterior", Value: fmt.Sprintf("%.6g", p)})
		}
		_, err := w.Write(&gff.Feature{
			SeqName:        seqName,
			Source:         "gaze",
			Feature:        g.FeatTypes[f.Type],
			FeatStart:      f.RealStart,
			FeatEnd:        f.RealEnd,
			FeatScore:      &score,
			FeatFrame:      gff.NoFrame,
			FeatAttributes: attrs,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeHistogram writes a calibration histogram as TSV, the gaze.c -pha
// option's Go equivalent (spec's posterior-accuracy histogram export).
func writeHistogram(path string, buckets []posterior.Bucket) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	fmt.Fprintln(buf, "lo\thi\tcount\tcorrect\tfraction")
	for _, b := range buckets {
		fmt.Fprintf(buf, "%.3f\t%.3f\t%d\t%d\t%.6g\n", b.Lo, b.Hi, b.Count, b.Correct, b.Fraction())
	}
	return buf.Flush()
}
