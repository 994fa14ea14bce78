// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gaze-graph renders the legal-edge graph of a candidate feature set under
// a grammar as a DOT graph, with the Viterbi traceback path highlighted.
// It takes a YAML grammar document and a JSON candidate list, runs the
// forward sweep, and writes the DOT source to stdout (or -out).
//
// usage: gaze-graph -grammar g.yaml -candidates c.json [-out graph.dot]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kortschak/gaze/dp"
	"github.com/kortschak/gaze/feature"
	"github.com/kortschak/gaze/grammar"
	"github.com/kortschak/gaze/score"
	"github.com/kortschak/gaze/segment"
)

func main() {
	grammarPath := flag.String("grammar", "", "specify the grammar YAML file (required)")
	candPath := flag.String("candidates", "", "specify the candidate feature JSON file (required)")
	out := flag.String("out", "", "specify output path (default: stdout)")
	sigma := flag.Float64("sigma", 1, "specify the global score scale factor")

	flag.Parse()
	if *grammarPath == "" || *candPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	g, err := grammar.Load(*grammarPath)
	if err != nil {
		log.Fatal(err)
	}

	b, err := ioutil.ReadFile(*candPath)
	if err != nil {
		log.Fatal(err)
	}
	var cands []feature.Candidate
	if err := json.Unmarshal(b, &cands); err != nil {
		log.Fatal(err)
	}

	fs, err := feature.NewSet(g, *sigma, cands)
	if err != nil {
		log.Fatal(err)
	}
	segs, err := segment.NewIndex(g, *sigma, nil)
	if err != nil {
		log.Fatal(err)
	}
	sc := score.NewScorer(segs)

	e := dp.NewEngine(g, segs, dp.Config{Mode: dp.StandardSum})
	// A NoLegalPath error still leaves every other feature's forward state
	// populated; the graph is worth rendering regardless.
	_ = e.Forward(fs)
	path, _, _ := dp.MaxTraceback(fs)
	onPath := make(map[[2]int]bool, len(path))
	for i := 1; i < len(path); i++ {
		onPath[[2]int{path[i-1], path[i]}] = true
	}

	dg := simple.NewWeightedDirectedGraph(0, 0)
	nodes := make([]node, len(fs.Features))
	for i, f := range fs.Features {
		n := node{id: int64(i), label: fmt.Sprintf("%s@%d-%d", g.FeatTypes[f.Type], f.RealStart, f.RealEnd)}
		nodes[i] = n
		dg.AddNode(n)
	}
	for i := range fs.Features {
		for j := i + 1; j < len(fs.Features); j++ {
			rel, dist, _, ok := dp.Legal(g, fs.Features, i, j)
			if !ok {
				continue
			}
			w := score.Weight(sc, &fs.Features[i], &fs.Features[j], rel, g, dist)
			dg.SetWeightedEdge(scoredEdge{
				f: nodes[i], t: nodes[j], w: w,
				highlight: onPath[[2]int{i, j}],
			})
		}
	}

	b, err = dot.Marshal(dg, "gaze", "", "\t")
	if err != nil {
		log.Fatal(err)
	}
	if *out == "" {
		fmt.Printf("%s", b)
		return
	}
	if err := ioutil.WriteFile(*out, b, 0o664); err != nil {
		log.Fatal(err)
	}
}

type node struct {
	id    int64
	label string
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.label }

type scoredEdge struct {
	f, t      graph.Node
	w         float64
	highlight bool
}

func (e scoredEdge) From() graph.Node         { return e.f }
func (e scoredEdge) To() graph.Node           { return e.t }
func (e scoredEdge) ReversedEdge() graph.Edge { return scoredEdge{f: e.t, t: e.f, w: e.w} }
func (e scoredEdge) Weight() float64          { return e.w }
func (e scoredEdge) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "weight", Value: fmt.Sprint(e.w)}}
	if e.highlight {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "red"}, encoding.Attribute{Key: "penwidth", Value: "2"})
	}
	return attrs
}
