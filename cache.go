package klee

import "log"

// Cache is the three-tier counterexample cache: an exact-hash QuickCache,
// a PrevSolution delta-reuse slot, and an upper-bound subset/superset
// trie (mapOfSets), all backed by one interning table of Assignments.
//
// A Cache is owned by exactly one solver instance and is not safe for
// concurrent use; callers hosting multiple solver instances construct
// one Cache per instance.
type Cache struct {
	quick map[uint64][]quickEntry
	prev  *prevSolution
	ub    *mapOfSets

	assignments *assignmentTable
	solver      Solver
	cfg         Config
	stats       *Stats
}

type quickEntry struct {
	key   CacheKey
	value CacheValue
}

type prevSolution struct {
	constraints CacheKey // the previous query's constraints, without its negated expr
	value       CacheValue
}

// NewCache returns a Cache that falls back to solver on a total miss.
func NewCache(solver Solver, cfg Config) *Cache {
	return &Cache{
		quick:       make(map[uint64][]quickEntry),
		ub:          newMapOfSets(),
		assignments: newAssignmentTable(),
		solver:      solver,
		cfg:         cfg,
		stats:       &Stats{},
	}
}

// Stats returns the cache's running counters.
func (c *Cache) Stats() *Stats { return c.stats }

// Lookup decides whether cm.Constraints() ∧ ¬expr is satisfiable,
// reusing a cached counterexample where possible and falling back to
// the external solver on a total miss. sat reports satisfiability of
// that set; when sat is true, the returned Assignment witnesses it.
func (c *Cache) Lookup(cm *ConstraintManager, expr Expr) (assignment *Assignment, sat bool, err error) {
	c.stats.QueryCount++

	expr = cm.Simplify(expr)
	negExpr := cm.Simplify(NewNotExpr(expr))
	curConstraints := NewCacheKey(cm.Constraints()...)

	if IsConstantFalse(negExpr) {
		// ¬expr can never hold; the query is trivially valid.
		value := CacheValue{}
		c.finish(curConstraints, value)
		return nil, false, nil
	}

	var members []Expr
	members = append(members, cm.Constraints()...)
	if !IsConstantTrue(negExpr) {
		members = append(members, negExpr)
	}
	key := NewCacheKey(members...)

	// hit backfills a value found by a later tier into the QuickCache under key.
	hit := func(v CacheValue) (*Assignment, bool, error) {
		if c.cfg.QuickCache {
			c.quickPut(key, v)
		}
		return c.finish(curConstraints, v)
	}

	if c.cfg.QuickCache {
		if v, ok := c.quickGet(key); ok {
			c.stats.QuickCacheHits++
			log.Printf("[cache] quick-cache hit: |K|=%d", key.Len())
			return c.finish(curConstraints, v)
		}
	}

	if c.cfg.PrevSolution && c.prev != nil && c.prev.constraints.IsSubsetOf(curConstraints) && curConstraints.Len() == c.prev.constraints.Len()+1 {
		if c.prev.value.IsUNSAT() {
			c.stats.PrevSolutionHits++
			log.Printf("[cache] prev-solution hit: superset of UNSAT")
			return hit(c.prev.value)
		}
		if c.prev.value.Assignment.Satisfies(key.Members()) {
			c.stats.PrevSolutionHits++
			log.Printf("[cache] prev-solution hit: reused assignment still satisfies")
			return hit(c.prev.value)
		}
	}

	if !c.cfg.DisableSuperSet {
		if v, ok := c.ub.FindSuperset(key, func(cv CacheValue) bool { return !cv.IsUNSAT() }); ok {
			c.stats.SupersetHits++
			log.Printf("[cache] superset hit: |K|=%d", key.Len())
			return hit(v)
		}
	}

	if v, ok := c.ub.FindSubset(key, func(cv CacheValue) bool {
		return cv.IsUNSAT() || cv.Assignment.Satisfies(key.Members())
	}); ok {
		c.stats.SubsetHits++
		log.Printf("[cache] subset hit: |K|=%d", key.Len())
		return hit(v)
	}

	if c.cfg.Exp && c.prev != nil && !c.prev.value.IsUNSAT() {
		if v, ok := c.guessSplit(cm, expr, negExpr, key); ok {
			c.stats.GuessSplitHits++
			log.Printf("[cache] guess-split hit: |K|=%d", key.Len())
			return hit(v)
		}
	}

	if c.cfg.TryAll {
		if v, ok := c.tryAll(key); ok {
			c.stats.TryAllHits++
			log.Printf("[cache] try-all hit: |K|=%d", key.Len())
			return hit(v)
		}
	}

	value, err := c.solve(key)
	if err != nil {
		return nil, false, err
	}
	c.install(key, value)
	log.Printf("[cache] total miss resolved via solver: |K|=%d sat=%t", key.Len(), !value.IsUNSAT())
	return c.finish(curConstraints, value)
}

// finish records value as the result for the current query (for the
// next PrevSolution check) and returns it in Lookup's result shape.
func (c *Cache) finish(curConstraints CacheKey, value CacheValue) (*Assignment, bool, error) {
	c.prev = &prevSolution{constraints: curConstraints, value: value}
	return value.Assignment, !value.IsUNSAT(), nil
}

// install records a solver-resolved (key, value) pair in the QuickCache
// and the subset/superset trie. Hits from the other tiers are backfilled
// into the QuickCache only (see Lookup).
func (c *Cache) install(key CacheKey, value CacheValue) {
	if c.cfg.QuickCache {
		c.quickPut(key, value)
	}
	c.ub.Insert(key, value)
}

func (c *Cache) quickGet(key CacheKey) (CacheValue, bool) {
	for _, e := range c.quick[key.Hash()] {
		if e.key.Equal(key) {
			return e.value, true
		}
	}
	return CacheValue{}, false
}

func (c *Cache) quickPut(key CacheKey, value CacheValue) {
	h := key.Hash()
	bucket := c.quick[h]
	for i, e := range bucket {
		if e.key.Equal(key) {
			bucket[i] = quickEntry{key: key, value: value}
			return
		}
	}
	c.quick[h] = append(bucket, quickEntry{key: key, value: value})
}

// solve invokes the external solver over the arrays referenced by key,
// interning a fresh Assignment on satisfiability.
func (c *Cache) solve(key CacheKey) (CacheValue, error) {
	arrays := arraysIn(key.Members())

	stop := scopedSolverTimer(c.stats)
	sat, values, err := c.solver.Solve(key.Members(), arrays)
	stop()
	if err != nil {
		return CacheValue{}, err
	}
	if !sat {
		return CacheValue{}, nil
	}

	bindings := make(map[*Array][]byte, len(arrays))
	for i, arr := range arrays {
		bindings[arr] = values[i]
	}
	a := NewAssignment(bindings)

	if c.cfg.DebugCheckBinding {
		assert(a.Satisfies(key.Members()), "[cache] fresh assignment fails to satisfy its own key")
	}

	a = c.assignments.Intern(a)
	return CacheValue{Assignment: a}, nil
}

// tryAll linearly scans every interned assignment for one that already
// satisfies key, avoiding a solver call.
func (c *Cache) tryAll(key CacheKey) (CacheValue, bool) {
	var found *Assignment
	c.assignments.Each(func(a *Assignment) {
		if found == nil && a.Satisfies(key.Members()) {
			found = a
		}
	})
	if found == nil {
		return CacheValue{}, false
	}
	return CacheValue{Assignment: found}, true
}

// guessSplit attempts a speculative optimistic-graft: it isolates the
// part of the new query that shares concrete-index
// footprint with negExpr, recursively resolves just that sub-query, and
// grafts the result into the previous assignment. The graft is only
// returned once verified against the full key; any failure along the
// way is treated as a miss for this tier, never an error.
func (c *Cache) guessSplit(cm *ConstraintManager, expr, negExpr Expr, key CacheKey) (CacheValue, bool) {
	closure, required := GetIndependentConstraintsUnsafe(cm, negExpr)

	// The split only pays for itself if it strips out at least one
	// constraint cm itself holds. Without this, required's recursive
	// Lookup rebuilds a ConstraintManager no smaller than cm, which
	// would recurse into this same tier indefinitely instead of
	// terminating at a normal cache lookup or solve.
	if len(required) >= len(cm.Constraints()) {
		return CacheValue{}, false
	}

	prevAssignment := c.prev.value.Assignment

	subCm := NewConstraintManager()
	for _, r := range required {
		subCm.Append(r)
	}

	subAssignment, subSat, err := c.Lookup(subCm, expr)
	if err != nil || !subSat || subAssignment == nil {
		return CacheValue{}, false
	}

	grafted := graftAssignment(prevAssignment, subAssignment, closure)
	if !grafted.Satisfies(key.Members()) {
		return CacheValue{}, false
	}

	grafted = c.assignments.Intern(grafted)
	return CacheValue{Assignment: grafted}, true
}

// graftAssignment copies base's bindings, then overlays the bytes
// identified by closure (the unsafe footprint of the new conjunct) from
// overlay. Whole-object arrays are copied wholesale since the unsafe
// analysis cannot say which of their indices matter.
func graftAssignment(base, overlay *Assignment, closure *IES) *Assignment {
	bindings := make(map[*Array][]byte, len(base.Bindings))
	for arr, data := range base.Bindings {
		cp := make([]byte, len(data))
		copy(cp, data)
		bindings[arr] = cp
	}

	for arr := range closure.WholeObjects {
		if data, ok := overlay.Bindings[arr]; ok {
			cp := make([]byte, len(data))
			copy(cp, data)
			bindings[arr] = cp
		}
	}

	for arr, idxs := range closure.Elements {
		dst, ok := bindings[arr]
		if !ok {
			dst = make([]byte, arr.Size)
			bindings[arr] = dst
		}
		idxs.Each(func(i uint64) {
			if i >= uint64(len(dst)) {
				return
			}
			v := overlay.Evaluate(arr, i, false).(*ConstantExpr)
			dst[i] = byte(v.Value)
		})
	}

	return NewAssignment(bindings)
}

// arraysIn returns the deduplicated set of arrays referenced by exprs.
func arraysIn(exprs []Expr) []*Array {
	return FindArrays(exprs...)
}
