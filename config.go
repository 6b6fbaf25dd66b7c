package klee

// Config holds the cache's feature toggles. Field names match the CLI
// flags cmd/klee wires them to, minus the dashes.
type Config struct {
	// SimplifyInequalities is set from the CLI flag of the same name. No
	// component reads it: the Simplifier always mines range bounds from
	// inequalities, whatever its value.
	SimplifyInequalities bool

	// QuickCache enables the tier-1 exact-hash cache.
	QuickCache bool

	// PrevSolution enables tier-2 previous-answer reuse.
	PrevSolution bool

	// DisableSuperSet skips the tier-3 findSuperset probe.
	DisableSuperSet bool

	// TryAll falls back to scanning every interned assignment on a
	// total miss, before invoking the external solver.
	TryAll bool

	// Exp enables the speculative guess-split tier in Cache.Lookup, which
	// every SolverFacade operation goes through.
	Exp bool

	// DebugCheckBinding asserts every fresh assignment satisfies its key.
	DebugCheckBinding bool
}

// DefaultConfig returns the default toggle configuration, matching the
// defaults table in the external-interfaces spec: everything on except
// the superset probe's disable switch, TryAll, Exp, and the debug check.
func DefaultConfig() Config {
	return Config{
		SimplifyInequalities: true,
		QuickCache:           true,
		PrevSolution:         true,
		DisableSuperSet:      false,
		TryAll:               false,
		Exp:                  false,
		DebugCheckBinding:    false,
	}
}
