package klee

import (
	"github.com/benbjohnson/immutable"
	"github.com/davecgh/go-spew/spew"
)

// assignmentTable interns Assignments: it guarantees that two
// value-equal Assignments are never both live at once, so pointer
// equality and value equality coincide for every Assignment handed out
// by a Cache.
//
// Backed by an immutable.SortedMap ordered by CompareAssignment.
type assignmentTable struct {
	m     *immutable.SortedMap
	count int
}

func newAssignmentTable() *assignmentTable {
	return &assignmentTable{m: immutable.NewSortedMap(&assignmentComparer{})}
}

// Intern returns the canonical pointer for an assignment equal to a,
// inserting a itself if no equal assignment exists yet.
func (t *assignmentTable) Intern(a *Assignment) *Assignment {
	if a == nil {
		return nil
	}
	if v, _ := t.m.Get(a); v != nil {
		return v.(*Assignment)
	}
	t.m = t.m.Set(a, a)
	t.count++
	return a
}

// Len returns the number of distinct interned assignments.
func (t *assignmentTable) Len() int { return t.count }

// Each invokes fn for every interned assignment, in CompareAssignment order.
func (t *assignmentTable) Each(fn func(*Assignment)) {
	itr := t.m.Iterator()
	for {
		k, _ := itr.Next()
		if k == nil {
			return
		}
		fn(k.(*Assignment))
	}
}

// Dump renders every interned assignment for debugging.
func (t *assignmentTable) Dump() string {
	var out string
	itr := t.m.Iterator()
	for {
		k, _ := itr.Next()
		if k == nil {
			return out
		}
		out += spew.Sdump(k.(*Assignment))
	}
}

// assignmentComparer orders Assignments by CompareAssignment. Implements
// immutable.Comparer.
type assignmentComparer struct{}

func (c *assignmentComparer) Compare(a, b interface{}) int {
	return CompareAssignment(a.(*Assignment), b.(*Assignment))
}
