package klee

import "time"

// Stats accumulates counters for one Cache instance. Kept as a plain
// struct owned by the Cache rather than a package-level global, per the
// no-hidden-globals-in-hot-paths rule: a process hosting multiple solver
// instances gets one Stats per instance, never a shared counter block.
type Stats struct {
	QueryCount int // total Lookup calls

	QuickCacheHits   int
	PrevSolutionHits int
	SupersetHits     int
	SubsetHits       int
	TryAllHits       int
	GuessSplitHits   int
	SolverCalls      int

	SolverTime time.Duration
}

// scopedSolverTimer increments stats.SolverCalls and stats.SolverTime by
// the elapsed time between construction and the returned guard's call.
func scopedSolverTimer(stats *Stats) func() {
	start := time.Now()
	stats.SolverCalls++
	return func() {
		stats.SolverTime += time.Since(start)
	}
}
