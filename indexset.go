package klee

import "sort"

// IndexSet represents a finite set of concrete array byte offsets.
// Offsets are kept in ascending, deduplicated order so iteration is
// deterministic and intersection tests can use a merge rather than a
// map lookup.
type IndexSet struct {
	offsets []uint64
}

// NewIndexSet returns an empty IndexSet.
func NewIndexSet() *IndexSet {
	return &IndexSet{}
}

// Clone returns a copy of s.
func (s *IndexSet) Clone() *IndexSet {
	other := &IndexSet{offsets: make([]uint64, len(s.offsets))}
	copy(other.offsets, s.offsets)
	return other
}

// Len returns the number of offsets in the set.
func (s *IndexSet) Len() int {
	return len(s.offsets)
}

// Add inserts i into the set.
func (s *IndexSet) Add(i uint64) {
	pos := s.search(i)
	if pos < len(s.offsets) && s.offsets[pos] == i {
		return // already present
	}
	s.offsets = append(s.offsets, 0)
	copy(s.offsets[pos+1:], s.offsets[pos:])
	s.offsets[pos] = i
}

// AddRange inserts every offset in [lo,hi) into the set.
func (s *IndexSet) AddRange(lo, hi uint64) {
	for i := lo; i < hi; i++ {
		s.Add(i)
	}
}

// Contains returns true if i is a member of the set.
func (s *IndexSet) Contains(i uint64) bool {
	pos := s.search(i)
	return pos < len(s.offsets) && s.offsets[pos] == i
}

// search returns the insertion point for i via binary search.
func (s *IndexSet) search(i uint64) int {
	return sort.Search(len(s.offsets), func(n int) bool { return s.offsets[n] >= i })
}

// Union merges other into s, returning true if s changed.
func (s *IndexSet) Union(other *IndexSet) bool {
	if other == nil || other.Len() == 0 {
		return false
	}

	changed := false
	for _, i := range other.offsets {
		before := len(s.offsets)
		s.Add(i)
		if len(s.offsets) != before {
			changed = true
		}
	}
	return changed
}

// Intersects returns true if s and other share at least one offset.
// Runs in O(n+m) via a merge of the two sorted slices.
func (s *IndexSet) Intersects(other *IndexSet) bool {
	if s == nil || other == nil {
		return false
	}

	i, j := 0, 0
	for i < len(s.offsets) && j < len(other.offsets) {
		switch {
		case s.offsets[i] < other.offsets[j]:
			i++
		case s.offsets[i] > other.offsets[j]:
			j++
		default:
			return true
		}
	}
	return false
}

// Each invokes fn for every offset in ascending order.
func (s *IndexSet) Each(fn func(uint64)) {
	for _, i := range s.offsets {
		fn(i)
	}
}
