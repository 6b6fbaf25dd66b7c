package klee

// Simplifier narrows a new candidate expression using equalities and
// single-value ranges mined from constraints already known to hold. It
// never performs SMT reasoning; every rewrite it makes is a direct
// consequence of a previously accepted constraint.
//
// Expr values in this module are not hash-consed (see DESIGN.md): two
// structurally identical expressions built independently are not
// guaranteed to be the same pointer. Simplifier therefore keys its maps
// by each expression's canonical String() form rather than by pointer
// identity; this gives equivalent expressions the same map identity
// without introducing a separate interning table.
type Simplifier struct {
	equalities   map[string]Expr
	leftBounded  map[string]simplifierBound
	rightBounded map[string]simplifierBound
}

type simplifierBound struct {
	value uint64
	width uint
}

// NewSimplifier returns an empty Simplifier.
func NewSimplifier() *Simplifier {
	return &Simplifier{
		equalities:   make(map[string]Expr),
		leftBounded:  make(map[string]simplifierBound),
		rightBounded: make(map[string]simplifierBound),
	}
}

// exprKey returns the canonical map key for an expression.
func exprKey(e Expr) string {
	return e.String()
}

// Simplify rewrites e using the equalities accumulated so far. Constants
// are returned unchanged (testable property #6).
func (s *Simplifier) Simplify(e Expr) Expr {
	if _, ok := e.(*ConstantExpr); ok {
		return e
	}

	if repl, ok := s.equalities[exprKey(e)]; ok {
		return repl
	}

	var rebuilt Expr
	switch e := e.(type) {
	case *BinaryExpr:
		rebuilt = NewBinaryExpr(e.Op, s.Simplify(e.LHS), s.Simplify(e.RHS))
	case *CastExpr:
		rebuilt = NewCastExpr(s.Simplify(e.Src), e.Width, e.Signed)
	case *ConcatExpr:
		rebuilt = NewConcatExpr(s.Simplify(e.MSB), s.Simplify(e.LSB))
	case *ExtractExpr:
		rebuilt = NewExtractExpr(s.Simplify(e.Expr), e.Offset, e.Width)
	case *NotExpr:
		rebuilt = NewNotExpr(s.Simplify(e.Expr))
	case *NotOptimizedExpr:
		rebuilt = NewNotOptimizedExpr(s.Simplify(e.Src))
	case *SelectExpr:
		rebuilt = NewSelectExpr(e.Array, s.Simplify(e.Index))
	default:
		return e
	}

	if repl, ok := s.equalities[exprKey(rebuilt)]; ok {
		return repl
	}
	return rebuilt
}

// AddConstraint mines equalities and range bounds from a constraint
// already known to hold. Callers are responsible for actually storing
// the constraint (see ConstraintManager.Append); AddConstraint only
// updates this Simplifier's internal tables.
func (s *Simplifier) AddConstraint(c Expr) {
	if ExprWidth(c) == WidthBool {
		s.equalities[exprKey(c)] = NewBoolConstantExpr(true)
	}

	bin, ok := c.(*BinaryExpr)
	if !ok {
		return
	}

	if bin.Op == EQ {
		if lc, ok := bin.LHS.(*ConstantExpr); ok {
			s.equalities[exprKey(bin.RHS)] = lc

			// Negated equality over a comparison: Eq(false, inner) means
			// "NOT inner" — mine inner's inequality with the top-negated flag.
			if lc.IsFalse() && ExprWidth(lc) == WidthBool {
				if inner, ok := bin.RHS.(*BinaryExpr); ok && isInequalityOp(inner.Op) {
					s.mineInequality(inner, true)
				}
			}
			return
		}
	}

	if isInequalityOp(bin.Op) {
		s.mineInequality(bin, false)
	}
}

func isInequalityOp(op BinaryOp) bool {
	switch op {
	case ULT, ULE, SLT, SLE:
		return true
	default:
		return false
	}
}

// mineInequality updates leftBounded/rightBounded from a single
// ULT/ULE/SLT/SLE constraint.
func (s *Simplifier) mineInequality(c *BinaryExpr, topNegated bool) {
	op, lhs, rhs := c.Op, c.LHS, c.RHS
	if topNegated {
		op = flipInequalityStrictness(op)
		lhs, rhs = rhs, lhs
	}

	var x Expr
	var k *ConstantExpr
	var constOnRight bool
	if lc, ok := lhs.(*ConstantExpr); ok {
		k, x, constOnRight = lc, rhs, false // "c op x"
	} else if rc, ok := rhs.(*ConstantExpr); ok {
		k, x, constOnRight = rc, lhs, true // "x op c"
	} else {
		return // no constant side, nothing to mine
	}

	width := ExprWidth(x)
	signed := op == SLT || op == SLE
	key := exprKey(x)

	if constOnRight {
		switch op {
		case ULT, SLT: // x < c  -->  x <= c-1
			if k.Value == 0 {
				return // c-1 underflows; relation unsatisfiable, not a valid bound
			}
			s.updateRightBounded(key, k.Value-1, width, signed)
		case ULE, SLE: // x <= c
			s.updateRightBounded(key, k.Value, width, signed)
		}
	} else {
		switch op {
		case ULT, SLT: // c < x  -->  c+1 <= x
			if k.Value == bitmask(width) {
				return // c+1 overflows; relation unsatisfiable, not a valid bound
			}
			s.updateLeftBounded(key, k.Value+1, width, signed)
		case ULE, SLE: // c <= x
			s.updateLeftBounded(key, k.Value, width, signed)
		}
	}

	if signed {
		// Unsigned comparisons additionally establish a natural floor.
	} else {
		s.updateLeftBounded(key, 0, width, false)
	}

	s.tryNarrow(key, x, width)
}

func flipInequalityStrictness(op BinaryOp) BinaryOp {
	switch op {
	case ULT:
		return ULE
	case ULE:
		return ULT
	case SLT:
		return SLE
	case SLE:
		return SLT
	default:
		panic("klee: flipInequalityStrictness: not an inequality op")
	}
}

// updateRightBounded narrows the upper bound on key to min(existing, value):
// a smaller upper bound is always the tighter one.
func (s *Simplifier) updateRightBounded(key string, value uint64, width uint, signed bool) {
	if existing, ok := s.rightBounded[key]; ok {
		if signed && signBit(existing.value, width) != signBit(value, width) {
			return // would straddle the signed-zero boundary; not worth representing
		}
		if boundCompare(value, existing.value, width, signed) >= 0 {
			return // existing bound is already tighter or equal
		}
	}
	s.rightBounded[key] = simplifierBound{value: value, width: width}
}

// updateLeftBounded narrows the lower bound on key to max(existing, value):
// a larger lower bound is always the tighter one.
func (s *Simplifier) updateLeftBounded(key string, value uint64, width uint, signed bool) {
	if existing, ok := s.leftBounded[key]; ok {
		if signed && signBit(existing.value, width) != signBit(value, width) {
			return // would straddle the signed-zero boundary; not worth representing
		}
		if boundCompare(value, existing.value, width, signed) <= 0 {
			return // existing bound is already tighter or equal
		}
	}
	s.leftBounded[key] = simplifierBound{value: value, width: width}
}

// tryNarrow adds x -> constant to equalities once its left and right
// bounds have converged to the same value.
func (s *Simplifier) tryNarrow(key string, x Expr, width uint) {
	l, lok := s.leftBounded[key]
	r, rok := s.rightBounded[key]
	if lok && rok && l.value == r.value {
		s.equalities[key] = NewConstantExpr(l.value, width)
	}
}

func signBit(v uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	return (v >> (width - 1)) & 1
}

// boundCompare compares a and b, interpreted as width-bit values, signed
// or unsigned. Returns -1, 0, or 1.
func boundCompare(a, b uint64, width uint, signed bool) int {
	if !signed {
		if a < b {
			return -1
		} else if a > b {
			return 1
		}
		return 0
	}
	sa, sb := signExtendTo64(a, width), signExtendTo64(b, width)
	if sa < sb {
		return -1
	} else if sa > sb {
		return 1
	}
	return 0
}

func signExtendTo64(v uint64, width uint) int64 {
	if width == 0 || width >= 64 {
		return int64(v)
	}
	shift := 64 - width
	return int64(v<<shift) >> shift
}
