package klee

import (
	"errors"
	"time"
)

// RunStatus reports the outcome of the most recent SolverFacade
// operation, mirroring the external SolverRunStatus enum consumed by
// the symbolic execution engine.
type RunStatus int

const (
	RunStatusSuccess RunStatus = iota
	RunStatusFailure
	RunStatusTimeout
)

// Validity is the three-valued result of ComputeValidity.
type Validity int

const (
	ValidityUnknown Validity = iota
	ValidityTrue
	ValidityFalse
)

// timeoutSetter is implemented by Solver collaborators that support a
// per-call timeout (e.g. z3.Solver). SolverFacade checks for it
// optionally rather than widening the Solver interface itself, since
// not every collaborator needs one.
type timeoutSetter interface {
	SetTimeout(time.Duration)
}

// SolverFacade orchestrates cache lookup, simplification, and SMT
// fallback behind the validity/truth/value/initial-values operations
// the symbolic execution engine actually calls. It is not to be
// confused with the Solver interface (the external SMT collaborator it
// ultimately falls back to through its Cache).
type SolverFacade struct {
	cache     *Cache
	timeout   time.Duration
	lastState RunStatus
}

// NewSolverFacade returns a SolverFacade backed by a fresh Cache over solver.
func NewSolverFacade(solver Solver, cfg Config) *SolverFacade {
	return &SolverFacade{cache: NewCache(solver, cfg)}
}

// Cache returns the underlying Cache, for callers that want direct
// access to its Stats or Config.
func (s *SolverFacade) Cache() *Cache { return s.cache }

// SetCoreSolverTimeout sets the per-call timeout applied to the
// underlying SMT collaborator, if it supports one.
func (s *SolverFacade) SetCoreSolverTimeout(d time.Duration) {
	s.timeout = d
	if ts, ok := s.cache.solver.(timeoutSetter); ok {
		ts.SetTimeout(d)
	}
}

// OperationStatusCode returns the RunStatus of the most recently
// completed operation.
func (s *SolverFacade) OperationStatusCode() RunStatus { return s.lastState }

func (s *SolverFacade) record(err error) bool {
	switch {
	case err == nil:
		s.lastState = RunStatusSuccess
		return true
	case errors.Is(err, ErrSolverTimeout):
		s.lastState = RunStatusTimeout
		return false
	default:
		s.lastState = RunStatusFailure
		return false
	}
}

// ComputeTruth reports whether expr is valid under cm's constraints:
// valid iff no counterexample (no assignment satisfying the negation)
// exists.
func (s *SolverFacade) ComputeTruth(cm *ConstraintManager, expr Expr) (ok bool, isValid bool) {
	_, sat, err := s.cache.Lookup(cm, expr)
	if ok = s.record(err); !ok {
		return false, false
	}
	return true, !sat
}

// ComputeValidity classifies expr under cm's constraints as definitely
// True, definitely False, or Unknown.
func (s *SolverFacade) ComputeValidity(cm *ConstraintManager, expr Expr) (ok bool, result Validity) {
	witness, sat, err := s.cache.Lookup(cm, NewBoolConstantExpr(false))
	if ok = s.record(err); !ok {
		return false, ValidityUnknown
	}
	if !sat {
		return true, ValidityTrue // constraints themselves are unsatisfiable; vacuously valid
	}

	if witness.Satisfies([]Expr{expr}) {
		ok, isValid := s.ComputeTruth(cm, expr)
		if !ok {
			return false, ValidityUnknown
		}
		if isValid {
			return true, ValidityTrue
		}
		return true, ValidityUnknown
	}

	ok, negValid := s.ComputeTruth(cm, NewNotExpr(expr))
	if !ok {
		return false, ValidityUnknown
	}
	if negValid {
		return true, ValidityFalse
	}
	return true, ValidityUnknown
}

// ComputeValue evaluates expr under any assignment satisfying cm's
// constraints.
func (s *SolverFacade) ComputeValue(cm *ConstraintManager, expr Expr) (ok bool, value Expr) {
	witness, sat, err := s.cache.Lookup(cm, NewBoolConstantExpr(false))
	if ok = s.record(err); !ok {
		return false, nil
	}
	if !sat {
		return false, nil // no model
	}
	return true, witness.EvaluateExpr(expr)
}

// ComputeInitialValues returns, for each array in objects, the binding
// from an assignment satisfying cm's constraints, or a zero vector of
// the array's declared size if the assignment leaves it unbound.
func (s *SolverFacade) ComputeInitialValues(cm *ConstraintManager, objects []*Array) (ok bool, hasSolution bool, values [][]byte) {
	witness, sat, err := s.cache.Lookup(cm, NewBoolConstantExpr(false))
	if ok = s.record(err); !ok {
		return false, false, nil
	}
	if !sat {
		return true, false, nil
	}

	values = make([][]byte, len(objects))
	for i, obj := range objects {
		if data, bound := witness.Bindings[obj]; bound {
			values[i] = data
			continue
		}
		values[i] = make([]byte, obj.Size)
	}
	return true, true, values
}
