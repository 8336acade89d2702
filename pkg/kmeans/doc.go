// Package kmeans implements an externally driven K-means clustering engine over
// points in the plane.
//
// # Overview
//
// An [Engine] owns a set of k centroids and a dataset. Each call to
// [Engine.Step] performs exactly one assignment and update pass (one
// iteration). There is no convergence test: the caller decides how many steps
// to take and typically renders the engine state between steps.
//
//	eng, err := kmeans.New(3, kmeans.WithDomain(kmeans.Domain{Lo: -5, Hi: 5}), kmeans.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	eng.Load(points)
//	for i := 0; i < 10; i++ {
//	    if err := eng.Step(); err != nil {
//	        return err
//	    }
//	    draw(eng.Dataset(), eng.Labels(), eng.Centroids(), eng.Iteration())
//	}
//
// # Step Semantics
//
// A step assigns every point to its nearest centroid (ties go to the lowest
// index), replaces each centroid with the mean of its members, re-seeds empty
// clusters uniformly inside the configured [Domain], and finally relabels the
// points against the new centroids. The labels observed after a step therefore
// belong to the updated centroids, not to the ones that produced the update.
//
// # Randomness
//
// Initialization and re-seeding draw from a *rand.Rand (math/rand/v2) supplied
// with [WithRand] or [WithSeed]. Two engines built from identically seeded
// sources and fed the same data produce identical centroid and label sequences.
//
// An Engine is not safe for concurrent use.
package kmeans
