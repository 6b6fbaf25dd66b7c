package klee_test

import (
	"testing"

	"github.com/holycrap872/klee"
)

func TestIES(t *testing.T) {
	t.Run("ConcreteReadsTrackElements", func(t *testing.T) {
		a := klee.NewArray(1, 8)
		e := a.Select(klee.NewConstantExpr64(3), klee.Width8, true)
		ies := klee.NewIES(e)
		if _, whole := ies.WholeObjects[a]; whole {
			t.Fatal("concrete-index read must not be whole-object")
		}
		set, ok := ies.Elements[a]
		if !ok || !set.Contains(3) {
			t.Fatal("expected offset 3 recorded")
		}
	})

	t.Run("SymbolicReadPromotesToWholeObject", func(t *testing.T) {
		a := klee.NewArray(1, 8)
		idx := klee.NewArray(2, 8).Select(klee.NewConstantExpr64(0), klee.Width8, true)
		e := a.Select(idx, klee.Width8, true)
		ies := klee.NewIES(e)
		if _, whole := ies.WholeObjects[a]; !whole {
			t.Fatal("symbolic-index read must promote to whole-object")
		}
		if _, ok := ies.Elements[a]; ok {
			t.Fatal("whole-object array must not also appear in Elements")
		}
	})

	t.Run("ConstantArrayIgnored", func(t *testing.T) {
		a := klee.NewConstantArray(1, []byte{1, 2, 3})
		e := a.Select(klee.NewConstantExpr64(0), klee.Width8, true)
		ies := klee.NewIES(e)
		if len(ies.Elements) != 0 || len(ies.WholeObjects) != 0 {
			t.Fatal("a constant, never-written array cannot alias anything")
		}
	})

	t.Run("Intersects", func(t *testing.T) {
		a := klee.NewArray(1, 8)
		e1 := klee.NewIES(a.Select(klee.NewConstantExpr64(0), klee.Width8, true))
		e2 := klee.NewIES(a.Select(klee.NewConstantExpr64(0), klee.Width8, true))
		e3 := klee.NewIES(a.Select(klee.NewConstantExpr64(1), klee.Width8, true))
		if !e1.Intersects(e2) {
			t.Fatal("expected shared offset 0 to intersect")
		}
		if e1.Intersects(e3) {
			t.Fatal("disjoint offsets must not intersect")
		}
	})

	t.Run("IntersectsIgnoresWholeObjectsUnsafe", func(t *testing.T) {
		a := klee.NewArray(1, 8)
		idx := klee.NewArray(2, 8).Select(klee.NewConstantExpr64(0), klee.Width8, true)
		whole := klee.NewIES(a.Select(idx, klee.Width8, true))
		concrete := klee.NewIES(a.Select(klee.NewConstantExpr64(4), klee.Width8, true))

		if !whole.Intersects(concrete) {
			t.Fatal("sound Intersects must treat a whole-object read as overlapping")
		}
		if whole.IntersectsUnsafe(concrete) {
			t.Fatal("IntersectsUnsafe ignores WholeObjects entirely")
		}
	})

	t.Run("AddMergesAndPromotes", func(t *testing.T) {
		a := klee.NewArray(1, 8)
		ies := klee.NewIES(a.Select(klee.NewConstantExpr64(0), klee.Width8, true))

		idx := klee.NewArray(2, 8).Select(klee.NewConstantExpr64(0), klee.Width8, true)
		other := klee.NewIES(a.Select(idx, klee.Width8, true))

		if changed := ies.Add(other); !changed {
			t.Fatal("expected promotion to whole-object to register as a change")
		}
		if _, whole := ies.WholeObjects[a]; !whole {
			t.Fatal("merging in a whole-object read must promote the receiver")
		}
		if _, ok := ies.Elements[a]; ok {
			t.Fatal("promoted array must be dropped from Elements")
		}
	})
}
