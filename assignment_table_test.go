package klee

import (
	"strings"
	"testing"
)

func TestAssignmentTable(t *testing.T) {
	a := NewArray(1, 1)

	t.Run("InternDeduplicates", func(t *testing.T) {
		table := newAssignmentTable()
		a1 := table.Intern(NewAssignment(map[*Array][]byte{a: {1}}))
		a2 := table.Intern(NewAssignment(map[*Array][]byte{a: {1}}))
		if a1 != a2 {
			t.Fatal("expected two value-equal assignments to intern to the same pointer")
		}
		if table.Len() != 1 {
			t.Fatalf("expected one distinct assignment, got %d", table.Len())
		}
	})

	t.Run("InternKeepsDistinctValues", func(t *testing.T) {
		table := newAssignmentTable()
		table.Intern(NewAssignment(map[*Array][]byte{a: {1}}))
		table.Intern(NewAssignment(map[*Array][]byte{a: {2}}))
		if table.Len() != 2 {
			t.Fatalf("expected two distinct assignments, got %d", table.Len())
		}
	})

	t.Run("InternNil", func(t *testing.T) {
		table := newAssignmentTable()
		if got := table.Intern(nil); got != nil {
			t.Fatal("expected Intern(nil) to return nil")
		}
		if table.Len() != 0 {
			t.Fatal("interning nil must not grow the table")
		}
	})

	t.Run("Each", func(t *testing.T) {
		table := newAssignmentTable()
		table.Intern(NewAssignment(map[*Array][]byte{a: {2}}))
		table.Intern(NewAssignment(map[*Array][]byte{a: {1}}))

		var seen [][]byte
		table.Each(func(asn *Assignment) { seen = append(seen, asn.Bindings[a]) })
		if len(seen) != 2 || seen[0][0] != 1 || seen[1][0] != 2 {
			t.Fatalf("expected Each to visit in CompareAssignment order, got %v", seen)
		}
	})

	t.Run("Dump", func(t *testing.T) {
		table := newAssignmentTable()
		table.Intern(NewAssignment(map[*Array][]byte{a: {1}}))
		if out := table.Dump(); !strings.Contains(out, "Bindings") {
			t.Fatalf("expected Dump to render the assignment's fields, got:\n%s", out)
		}
	})
}
