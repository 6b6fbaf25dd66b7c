package klee

import (
	"fmt"
	"log"
	"strings"
)

// ConstraintManager holds a query's constraint set in insertion order and
// keeps a Simplifier in sync with it, so every newly appended constraint
// is narrowed against everything already known to hold.
type ConstraintManager struct {
	constraints []Expr
	simplifier  *Simplifier
}

// NewConstraintManager returns an empty ConstraintManager.
func NewConstraintManager() *ConstraintManager {
	return &ConstraintManager{simplifier: NewSimplifier()}
}

// Constraints returns the constraint list in insertion order. The
// returned slice must not be mutated by the caller.
func (cm *ConstraintManager) Constraints() []Expr {
	return cm.constraints
}

// Len returns the number of constraints currently held.
func (cm *ConstraintManager) Len() int {
	return len(cm.constraints)
}

// Append simplifies e against everything already known and inserts the
// result. A contradictory constant constraint is a fatal error: callers
// are expected to have already ruled out the negation via the solver
// before calling Append, so that the constraint set never accumulates a
// provable contradiction.
func (cm *ConstraintManager) Append(e Expr) {
	e = cm.simplifier.Simplify(e)

	if c, ok := e.(*ConstantExpr); ok {
		assert(c.IsTrue(), "[simplify] constraint folded to a contradiction")
		return
	}

	if bin, ok := e.(*BinaryExpr); ok && bin.Op == AND {
		cm.Append(bin.LHS)
		cm.Append(bin.RHS)
		return
	}

	if bin, ok := e.(*BinaryExpr); ok && bin.Op == EQ {
		if lc, ok := bin.LHS.(*ConstantExpr); ok {
			cm.rewriteExisting(bin.RHS, lc)
		}
	}

	cm.simplifier.AddConstraint(e)
	cm.constraints = append(cm.constraints, e)
}

// rewriteExisting substitutes x -> c through every constraint already
// held, replacing any that changed and re-adding it to the simplifier
// (splitting on AND, mirroring Append) so the equality/bound-mining
// dispatch runs again against the rewritten form. Without this re-add,
// the simplifier's equalities/leftBounded/rightBounded tables would
// stay keyed to the stale, pre-substitution text of the constraint and
// later Simplify/range-narrowing calls would miss facts the rewrite
// just established.
func (cm *ConstraintManager) rewriteExisting(x Expr, c *ConstantExpr) {
	key := exprKey(x)
	for i, existing := range cm.constraints {
		if !containsSubexpr(existing, key) {
			continue
		}
		tmp := NewSimplifier()
		tmp.equalities[key] = c
		rewritten := tmp.Simplify(existing)
		if exprKey(rewritten) == exprKey(existing) {
			continue
		}
		log.Printf("[simplify] rewrote existing constraint using new equality %s -> %s", x, c)
		cm.constraints[i] = rewritten

		if bin, ok := rewritten.(*BinaryExpr); ok && bin.Op == AND {
			cm.simplifier.AddConstraint(bin.LHS)
			cm.simplifier.AddConstraint(bin.RHS)
		} else {
			cm.simplifier.AddConstraint(rewritten)
		}
	}
}

// containsSubexpr reports whether e or any of its descendants has the
// given canonical key. Used only to decide whether rewriteExisting needs
// to touch a constraint at all; the simplifier's own substitution is
// what actually performs the rewrite.
func containsSubexpr(e Expr, key string) bool {
	if exprKey(e) == key {
		return true
	}
	switch e := e.(type) {
	case *BinaryExpr:
		return containsSubexpr(e.LHS, key) || containsSubexpr(e.RHS, key)
	case *CastExpr:
		return containsSubexpr(e.Src, key)
	case *ConcatExpr:
		return containsSubexpr(e.MSB, key) || containsSubexpr(e.LSB, key)
	case *ExtractExpr:
		return containsSubexpr(e.Expr, key)
	case *NotExpr:
		return containsSubexpr(e.Expr, key)
	case *NotOptimizedExpr:
		return containsSubexpr(e.Src, key)
	case *SelectExpr:
		return containsSubexpr(e.Index, key)
	default:
		return false
	}
}

// Clone returns a ConstraintManager with the same constraints. The
// simplifier is rebuilt from scratch by replaying each constraint, since
// it holds no state that isn't a pure function of the constraint list.
func (cm *ConstraintManager) Clone() *ConstraintManager {
	other := NewConstraintManager()
	for _, e := range cm.constraints {
		other.simplifier.AddConstraint(e)
		other.constraints = append(other.constraints, e)
	}
	return other
}

// Simplify exposes the underlying simplifier for ad hoc narrowing of an
// expression that is not itself being appended as a constraint (e.g. the
// query expression passed to the cache).
func (cm *ConstraintManager) Simplify(e Expr) Expr {
	return cm.simplifier.Simplify(e)
}

// String returns a human-readable dump of the constraint list, one
// constraint per line.
func (cm *ConstraintManager) String() string {
	var b strings.Builder
	for i, e := range cm.constraints {
		fmt.Fprintf(&b, "%d: %s\n", i, e)
	}
	return b.String()
}
