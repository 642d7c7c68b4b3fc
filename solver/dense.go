package solver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gostokes/assembly"
	"github.com/notargets/gostokes/utils"
)

// Dense materializes the operator into a dense matrix and solves with a
// gonum LU. Only practical for small systems; useful as a cross-check
// against the sparse backend.
type Dense struct{}

func NewDense() *Dense { return &Dense{} }

func (d *Dense) Solve(op *assembly.BlockOperator, rhs utils.Vector) (x utils.Vector, err error) {
	n := op.Dim()
	if rhs.Len() != n {
		return x, &BreakdownError{Reason: "rhs length does not match operator dimension"}
	}

	M := mat.NewDense(n, n, nil)
	anchor, pinned := anchorDof(op)
	op.DoNonZero(func(i, j int, v float64) {
		if pinned && (i == anchor || j == anchor) {
			return
		}
		M.Set(i, j, M.At(i, j)+v)
	})

	b := mat.NewVecDense(n, nil)
	b.CopyVec(rhs.V)
	if pinned {
		M.Set(anchor, anchor, op.DiagScale())
		b.SetVec(anchor, 0)
	}

	var lu mat.LU
	lu.Factorize(M)
	sol := mat.NewVecDense(n, nil)
	if err = lu.SolveVecTo(sol, false, b); err != nil {
		return x, &BreakdownError{Reason: "dense LU solve failed", Err: err}
	}
	x = utils.NewVector(n)
	x.V.CopyVec(sol)
	return x, nil
}
