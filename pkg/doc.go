// Package pkg provides the libraries behind the kmeans demonstration tool.
//
// # Overview
//
// kmeans generates a 2D Gaussian mixture, clusters it with Lloyd's algorithm
// and records every iteration as a scatter plot, then assembles the plots
// into a looping GIF. The pkg directory is organized by concern:
//
//  1. [kmeans] - The clustering engine (points, domain, step)
//  2. [dataset] - Mixture generation and CSV persistence
//  3. [frames] - The frame file naming contract
//  4. [render] - Scatter plot rendering of an engine's state
//  5. [animate] - GIF assembly from rendered frames
//  6. [pipeline] - Orchestration (generate → cluster → render → animate)
//
// # Architecture
//
// The typical data flow:
//
//	Seed (or CSV dataset)
//	         ↓
//	    [dataset] package (Gaussian mixture)
//	         ↓
//	    [kmeans] package (Load, then Step per iteration)
//	         ↓
//	    [render] package (one PNG frame per iteration)
//	         ↓
//	    [animate] package (looping GIF)
//
// # Quick Start
//
// Cluster a generated dataset step by step:
//
//	rng := kmeans.NewRand(42)
//	points, _ := dataset.Generate(3, 200, kmeans.DefaultDomain, rng)
//
//	eng, _ := kmeans.New(3, kmeans.WithRand(rng))
//	eng.Load(points)
//	for i := 0; i < 10; i++ {
//	    if err := eng.Step(); err != nil {
//	        return err
//	    }
//	}
//	fmt.Println(eng.Centroids(), eng.Inertia())
//
// Or run the whole pipeline:
//
//	result, err := pipeline.NewRunner(logger).Run(ctx, pipeline.Options{K: 3})
//
// # Supporting Packages
//
//   - [errors] - Coded errors shared by every package
//   - [observability] - Hooks for run, frame and animation events
//   - [buildinfo] - Version information set at build time
package pkg
