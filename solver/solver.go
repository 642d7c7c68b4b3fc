package solver

import (
	"fmt"

	"github.com/notargets/gostokes/assembly"
	"github.com/notargets/gostokes/utils"
)

// Solver is the linear-solve boundary: it consumes the assembled block
// operator and right-hand side and returns the flat solution vector. The
// factorization behind it is an opaque, swappable backend; the only
// property the core depends on is that an attached null space is honored so
// a singular-up-to-null-space operator does not break the factorization.
type Solver interface {
	Solve(op *assembly.BlockOperator, rhs utils.Vector) (x utils.Vector, err error)
}

// BreakdownError propagates a factorization failure from the backend.
// Surfaced to the caller, never retried.
type BreakdownError struct {
	Reason string
	Err    error
}

func (e *BreakdownError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("linear solver breakdown: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("linear solver breakdown: %s", e.Reason)
}

func (e *BreakdownError) Unwrap() error { return e.Err }

// anchorDof picks the DOF pinned to remove an attached null-space direction
// from the system: the last DOF the basis vector touches. Pinning that row
// and column to an identity entry fixes the undetermined mode (here the
// additive pressure constant) without disturbing sparsity.
func anchorDof(op *assembly.BlockOperator) (anchor int, ok bool) {
	if len(op.NullSpace) == 0 {
		return 0, false
	}
	basis := op.NullSpace[0].Data()
	for i := len(basis) - 1; i >= 0; i-- {
		if basis[i] != 0 {
			return i, true
		}
	}
	return 0, false
}
