package klee

import "sort"

// Assignment is an immutable mapping from array to concrete byte
// contents. Once constructed and handed to an assignmentTable for
// interning, an Assignment is never mutated again.
type Assignment struct {
	Bindings map[*Array][]byte
}

// NewAssignment returns a new Assignment over the given bindings. The
// caller must not mutate bindings afterward.
func NewAssignment(bindings map[*Array][]byte) *Assignment {
	return &Assignment{Bindings: bindings}
}

// Evaluate returns the byte at offset i in a under this assignment. If a
// is unbound or i falls outside the bound value, the result depends on
// allowFree: true yields a fresh symbolic read of a at i, false yields
// the constant zero.
func (a *Assignment) Evaluate(arr *Array, i uint64, allowFree bool) Expr {
	if data, ok := a.Bindings[arr]; ok && i < uint64(len(data)) {
		return NewConstantExpr(uint64(data[i]), Width8)
	}
	if allowFree {
		return NewSelectExpr(arr, NewConstantExpr64(i))
	}
	return NewConstantExpr(0, Width8)
}

// EvaluateExpr substitutes every array read in e with this assignment's
// bindings and constant-folds the result. Reads against arrays this
// assignment does not bind zero-fill rather than erroring, since a
// counterexample only needs to bind the arrays its query actually
// touched.
func (a *Assignment) EvaluateExpr(e Expr) Expr {
	arrays, values := a.arraysAndValues()
	result, err := NewFreeExprEvaluator(arrays, values).Evaluate(e)
	assert(err == nil, "klee.Assignment.EvaluateExpr: %v", err)
	return result
}

// Satisfies returns true if every expression in exprs evaluates to true
// under this assignment.
func (a *Assignment) Satisfies(exprs []Expr) bool {
	for _, e := range exprs {
		if !IsConstantTrue(a.EvaluateExpr(e)) {
			return false
		}
	}
	return true
}

// arraysAndValues flattens Bindings into parallel slices, sorted by
// array ID so repeated calls over the same Assignment are deterministic.
func (a *Assignment) arraysAndValues() ([]*Array, [][]byte) {
	arrays := make([]*Array, 0, len(a.Bindings))
	for arr := range a.Bindings {
		arrays = append(arrays, arr)
	}
	sort.Slice(arrays, func(i, j int) bool { return arrays[i].ID < arrays[j].ID })

	values := make([][]byte, len(arrays))
	for i, arr := range arrays {
		values[i] = a.Bindings[arr]
	}
	return arrays, values
}

// CompareAssignment returns an integer comparing two assignments.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
// Comparison is lexicographic over arrays sorted by ID, then byte
// contents — used to give the assignment-interning table a total,
// deterministic order (ground: Array's own CompareArray/CompareArrayUpdate).
func CompareAssignment(a, b *Assignment) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	aArrays, aValues := a.arraysAndValues()
	bArrays, bValues := b.arraysAndValues()

	if len(aArrays) < len(bArrays) {
		return -1
	} else if len(aArrays) > len(bArrays) {
		return 1
	}

	for i := range aArrays {
		if aArrays[i].ID < bArrays[i].ID {
			return -1
		} else if aArrays[i].ID > bArrays[i].ID {
			return 1
		}
		if cmp := compareBytes(aValues[i], bValues[i]); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] < b[i] {
			return -1
		} else if a[i] > b[i] {
			return 1
		}
	}
	if len(a) < len(b) {
		return -1
	} else if len(a) > len(b) {
		return 1
	}
	return 0
}
