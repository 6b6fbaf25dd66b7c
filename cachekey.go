package klee

import (
	"hash/fnv"
	"sort"
	"strings"
)

// CacheKey is a structurally-hashed, order-independent set of
// expressions: a query's path constraints plus the negation of its
// candidate expression. Two CacheKeys with the same members, added in
// any order, compare and hash identically.
type CacheKey struct {
	members []Expr // sorted by CompareExpr, deduplicated
}

// NewCacheKey returns the CacheKey containing exprs (duplicates removed).
func NewCacheKey(exprs ...Expr) CacheKey {
	members := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		members = append(members, e)
	}
	sort.Slice(members, func(i, j int) bool { return CompareExpr(members[i], members[j]) < 0 })

	out := members[:0]
	for i, e := range members {
		if i > 0 && CompareExpr(out[len(out)-1], e) == 0 {
			continue
		}
		out = append(out, e)
	}
	return CacheKey{members: out}
}

// Len returns the number of members in the key.
func (k CacheKey) Len() int { return len(k.members) }

// Members returns the key's members in a deterministic (CompareExpr)
// order, suitable for descending a mapOfSets trie.
func (k CacheKey) Members() []Expr { return k.members }

// Contains returns true if e is a member of k.
func (k CacheKey) Contains(e Expr) bool {
	i := sort.Search(len(k.members), func(n int) bool { return CompareExpr(k.members[n], e) >= 0 })
	return i < len(k.members) && CompareExpr(k.members[i], e) == 0
}

// IsSubsetOf returns true if every member of k is also a member of other.
func (k CacheKey) IsSubsetOf(other CacheKey) bool {
	for _, e := range k.members {
		if !other.Contains(e) {
			return false
		}
	}
	return true
}

// IsSupersetOf returns true if every member of other is also a member of k.
func (k CacheKey) IsSupersetOf(other CacheKey) bool {
	return other.IsSubsetOf(k)
}

// Equal returns true if k and other contain exactly the same members.
func (k CacheKey) Equal(other CacheKey) bool {
	if len(k.members) != len(other.members) {
		return false
	}
	for i, e := range k.members {
		if CompareExpr(e, other.members[i]) != 0 {
			return false
		}
	}
	return true
}

// Hash returns the key's bucket hash: the XOR of each member's content
// hash, so membership order never affects the result (spec-mandated
// "hashed by xor/sum of member hashes").
func (k CacheKey) Hash() uint64 {
	var h uint64
	for _, e := range k.members {
		h ^= exprHash(e)
	}
	return h
}

// String returns a human-readable rendering of the key's members.
func (k CacheKey) String() string {
	parts := make([]string, len(k.members))
	for i, e := range k.members {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// exprHash returns a 64-bit content hash of e's canonical string form.
// Expr carries no hash-consing handle of its own (see DESIGN.md), so
// this is computed from the same canonical representation exprKey uses
// for structural-identity map keys.
func exprHash(e Expr) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.String()))
	return h.Sum64()
}
