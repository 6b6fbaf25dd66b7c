// Command klee is a small host-process driver that wires the cache's
// Config toggles to command-line flags and runs a fixed demonstration
// query against the Z3-backed solver, printing the resulting cache
// statistics. It exists to exercise the wiring end to end, not to
// parse any particular query file format (out of scope).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/holycrap872/klee"
	"github.com/holycrap872/klee/z3"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("klee", flag.ContinueOnError)
	simplifyInequalities := fs.Bool("simplify-inequalities", true, "no effect: the simplifier always narrows ranges")
	quickCache := fs.Bool("quick-cache", true, "enable the tier-1 hash cache")
	prevSolution := fs.Bool("prev-solution", true, "enable tier-2 previous-answer reuse")
	disableSuperSet := fs.Bool("disable-super-set", false, "skip the findSuperset probe")
	tryAll := fs.Bool("cex-cache-try-all", false, "scan every interned assignment on a total miss")
	exp := fs.Bool("cex-cache-exp", false, "enable additional speculative lookups")
	debugCheckBinding := fs.Bool("debug-cex-cache-check-binding", false, "assert every fresh assignment satisfies its key")
	timeout := fs.Duration("solver-timeout", 10*time.Second, "per-call timeout for the external solver")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := klee.Config{
		SimplifyInequalities: *simplifyInequalities,
		QuickCache:           *quickCache,
		PrevSolution:         *prevSolution,
		DisableSuperSet:      *disableSuperSet,
		TryAll:               *tryAll,
		Exp:                  *exp,
		DebugCheckBinding:    *debugCheckBinding,
	}

	solver := z3.NewSolver()
	defer solver.Close()

	facade := klee.NewSolverFacade(solver, cfg)
	facade.SetCoreSolverTimeout(*timeout)

	if err := demo(facade); err != nil {
		return err
	}

	stats := facade.Cache().Stats()
	fmt.Printf("queries=%d quick-hits=%d prev-hits=%d superset-hits=%d subset-hits=%d solver-calls=%d solver-time=%s\n",
		stats.QueryCount, stats.QuickCacheHits, stats.PrevSolutionHits, stats.SupersetHits, stats.SubsetHits, stats.SolverCalls, stats.SolverTime)
	return nil
}

// demo runs the exact-hit scenario: bound x to [1,9], then ask twice
// whether x <= 20 is valid. That bound doesn't fold the query on its
// own, so the first call resolves via the solver; the second must be
// served from the quick cache without a further invocation.
func demo(facade *klee.SolverFacade) error {
	x := klee.NewArray(1, 8)
	xExpr := x.Select(klee.NewConstantExpr64(0), klee.Width8, true)

	cm := klee.NewConstraintManager()
	cm.Append(klee.NewBinaryExpr(klee.ULE, klee.NewConstantExpr(1, klee.Width8), xExpr))
	cm.Append(klee.NewBinaryExpr(klee.ULE, xExpr, klee.NewConstantExpr(9, klee.Width8)))

	query := klee.NewBinaryExpr(klee.ULE, xExpr, klee.NewConstantExpr(20, klee.Width8))

	for i := 0; i < 2; i++ {
		ok, isValid := facade.ComputeTruth(cm, query)
		if !ok {
			return fmt.Errorf("computeTruth failed: status=%v", facade.OperationStatusCode())
		}
		fmt.Printf("call %d: valid=%t\n", i+1, isValid)
	}
	return nil
}
