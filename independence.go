package klee

// GetIndependentConstraints partitions the constraints held by cm,
// returning the subset transitively relevant to expr (required) along
// with the combined footprint of expr and that subset (closure).
//
// The closure is grown by a worklist fixpoint: starting from expr's own
// footprint, every constraint whose footprint intersects the current
// closure is pulled in and its footprint merged, in the constraints'
// original insertion order, repeating until a full pass adds nothing.
func GetIndependentConstraints(cm *ConstraintManager, expr Expr) (*IES, []Expr) {
	return getIndependentConstraints(cm.Constraints(), expr, false)
}

// GetIndependentConstraintsUnsafe is like GetIndependentConstraints but
// tests footprint overlap with IES.IntersectsUnsafe, which ignores
// whole-object (symbolic-index) reads. It can under-approximate the
// required set, so callers (the GuessSplit speculative path) must
// verify any result it produces before relying on it.
func GetIndependentConstraintsUnsafe(cm *ConstraintManager, expr Expr) (*IES, []Expr) {
	return getIndependentConstraints(cm.Constraints(), expr, true)
}

func getIndependentConstraints(constraints []Expr, expr Expr, unsafe bool) (*IES, []Expr) {
	closure := NewIES(expr)
	included := make([]bool, len(constraints))
	var required []Expr

	for {
		changed := false
		for i, c := range constraints {
			if included[i] {
				continue
			}
			ies := NewIES(c)
			intersects := ies.Intersects(closure)
			if unsafe {
				intersects = ies.IntersectsUnsafe(closure)
			}
			if !intersects {
				continue
			}
			included[i] = true
			closure.Add(ies)
			required = append(required, c)
			changed = true
		}
		if !changed {
			break
		}
	}

	return closure, required
}

// GetAllFactors partitions every constraint in cm into maximal groups
// that share no array footprint with any other group — the connected
// components of the "touches the same array region" relation. It is
// used to split a query into independently solvable pieces rather than
// to answer a single expr's dependency set.
func GetAllFactors(cm *ConstraintManager) []*IES {
	var factors []*IES

	for _, c := range cm.Constraints() {
		ies := NewIES(c)

		var merged *IES
		var rest []*IES
		for _, f := range factors {
			if f.Intersects(ies) {
				if merged == nil {
					merged = f
					merged.Add(ies)
				} else {
					merged.Add(f)
				}
			} else {
				rest = append(rest, f)
			}
		}

		if merged == nil {
			rest = append(rest, ies)
		}
		factors = rest
		if merged != nil {
			factors = append(factors, merged)
		}
	}

	return factors
}
