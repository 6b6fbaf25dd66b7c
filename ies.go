package klee

// IES (IndependentElementSet) records the read footprint of a set of
// expressions: for each symbolic array touched, either the concrete byte
// offsets read from it, or a marker that it was read at a symbolic offset
// and must be treated as touched in its entirety ("whole object").
//
// Invariant: an array appears in exactly one of Elements or WholeObjects,
// never both, and once promoted to WholeObjects it never returns to
// Elements.
type IES struct {
	Elements     map[*Array]*IndexSet
	WholeObjects map[*Array]struct{}
	Exprs        []Expr
}

// NewIES returns the independent element set for the given expressions.
func NewIES(exprs ...Expr) *IES {
	ies := &IES{
		Elements:     make(map[*Array]*IndexSet),
		WholeObjects: make(map[*Array]struct{}),
		Exprs:        append([]Expr(nil), exprs...),
	}
	v := &iesExprVisitor{ies: ies}
	for _, expr := range exprs {
		WalkExpr(v, expr)
	}
	return ies
}

// iesExprVisitor collects SelectExpr reads into an IES.
type iesExprVisitor struct {
	ies *IES
}

func (v *iesExprVisitor) Visit(expr Expr) (Expr, ExprVisitor) {
	sel, ok := expr.(*SelectExpr)
	if !ok {
		return expr, v
	}
	v.ies.addRead(sel.Array, sel.Index)
	return expr, v
}

// addRead records a single-byte read of array at index.
func (ies *IES) addRead(array *Array, index Expr) {
	if array.Constant && array.Updates == nil {
		return // concrete, never-written array; cannot alias anything
	}
	if _, whole := ies.WholeObjects[array]; whole {
		return // already fully touched
	}

	c, ok := index.(*ConstantExpr)
	if !ok {
		delete(ies.Elements, array)
		ies.WholeObjects[array] = struct{}{}
		return
	}

	set, ok := ies.Elements[array]
	if !ok {
		set = NewIndexSet()
		ies.Elements[array] = set
	}
	set.Add(c.Value)
}

// Intersects returns true if ies and other share any part of their
// footprint. Sound: any whole-object overlap, or any shared concrete
// index, counts as an intersection.
func (ies *IES) Intersects(other *IES) bool {
	for array := range ies.WholeObjects {
		if _, ok := other.WholeObjects[array]; ok {
			return true
		}
		if _, ok := other.Elements[array]; ok {
			return true
		}
	}
	for array := range other.WholeObjects {
		if _, ok := ies.Elements[array]; ok {
			return true
		}
	}
	for array, set := range ies.Elements {
		if otherSet, ok := other.Elements[array]; ok && set.Intersects(otherSet) {
			return true
		}
	}
	return false
}

// IntersectsUnsafe is like Intersects but ignores WholeObjects entirely,
// testing only concrete-index overlap. It can miss real aliasing (a
// whole-object read on one side is invisible to it) and is only sound
// when the caller independently verifies any result it produces — see
// the GuessSplit path in cache.go.
func (ies *IES) IntersectsUnsafe(other *IES) bool {
	for array, set := range ies.Elements {
		if otherSet, ok := other.Elements[array]; ok && set.Intersects(otherSet) {
			return true
		}
	}
	return false
}

// Add merges other into ies, returning true if ies changed.
func (ies *IES) Add(other *IES) bool {
	changed := false

	for array := range other.WholeObjects {
		if _, ok := ies.WholeObjects[array]; !ok {
			delete(ies.Elements, array)
			ies.WholeObjects[array] = struct{}{}
			changed = true
		}
	}

	for array, set := range other.Elements {
		if _, whole := ies.WholeObjects[array]; whole {
			continue // already fully touched on this side
		}
		existing, ok := ies.Elements[array]
		if !ok {
			ies.Elements[array] = set.Clone()
			changed = true
			continue
		}
		if existing.Union(set) {
			changed = true
		}
	}

	ies.Exprs = append(ies.Exprs, other.Exprs...)
	return changed
}
