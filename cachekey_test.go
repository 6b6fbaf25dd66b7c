package klee_test

import (
	"testing"

	"github.com/holycrap872/klee"
)

func TestCacheKey(t *testing.T) {
	x := klee.NewArray(1, 1).Select(klee.NewConstantExpr64(0), klee.Width8, true)
	e1 := klee.NewBinaryExpr(klee.ULE, x, klee.NewConstantExpr(5, klee.Width8))
	e2 := klee.NewBinaryExpr(klee.ULE, klee.NewConstantExpr(1, klee.Width8), x)

	t.Run("OrderIndependentEquality", func(t *testing.T) {
		a := klee.NewCacheKey(e1, e2)
		b := klee.NewCacheKey(e2, e1)
		if !a.Equal(b) {
			t.Fatal("expected keys built from the same members in different orders to be equal")
		}
		if a.Hash() != b.Hash() {
			t.Fatal("expected order-independent hash")
		}
	})

	t.Run("DedupesEqualMembers", func(t *testing.T) {
		dup := klee.NewBinaryExpr(klee.ULE, x, klee.NewConstantExpr(5, klee.Width8))
		k := klee.NewCacheKey(e1, dup)
		if k.Len() != 1 {
			t.Fatalf("expected duplicate structural members to collapse, got %d", k.Len())
		}
	})

	t.Run("Contains", func(t *testing.T) {
		k := klee.NewCacheKey(e1, e2)
		if !k.Contains(e1) || !k.Contains(e2) {
			t.Fatal("expected both members to be present")
		}
		other := klee.NewBinaryExpr(klee.ULE, x, klee.NewConstantExpr(9, klee.Width8))
		if k.Contains(other) {
			t.Fatal("did not expect an unrelated expression to be contained")
		}
	})

	t.Run("SubsetSuperset", func(t *testing.T) {
		small := klee.NewCacheKey(e1)
		big := klee.NewCacheKey(e1, e2)
		if !small.IsSubsetOf(big) {
			t.Fatal("expected small to be a subset of big")
		}
		if !big.IsSupersetOf(small) {
			t.Fatal("expected big to be a superset of small")
		}
		if big.IsSubsetOf(small) {
			t.Fatal("did not expect big to be a subset of small")
		}
	})

	t.Run("DifferentMembersHashDifferently", func(t *testing.T) {
		a := klee.NewCacheKey(e1)
		b := klee.NewCacheKey(e2)
		if a.Equal(b) {
			t.Fatal("distinct single-member keys must not be equal")
		}
	})
}
