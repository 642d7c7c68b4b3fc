package solver

import (
	sp "github.com/edp1096/sparse"

	"github.com/notargets/gostokes/assembly"
	"github.com/notargets/gostokes/utils"
)

// Direct factors the block operator with a sparse LU decomposition. When the
// operator carries a pressure null space the anchor DOF is pinned before
// factoring, which renders the matrix nonsingular; the solution then carries
// an arbitrary additive pressure constant the caller may shift at will.
type Direct struct {
	// DiagScale overrides the magnitude placed on the pinned anchor row.
	// Zero means use the operator's own diagonal scale.
	DiagScale float64
}

func NewDirect() *Direct { return &Direct{} }

func (d *Direct) Solve(op *assembly.BlockOperator, rhs utils.Vector) (x utils.Vector, err error) {
	n := op.Dim()
	if rhs.Len() != n {
		return x, &BreakdownError{Reason: "rhs length does not match operator dimension"}
	}

	config := &sp.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               true,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}
	A, err := sp.Create(int64(n), config)
	if err != nil {
		return x, &BreakdownError{Reason: "sparse matrix allocation failed", Err: err}
	}
	defer A.Destroy()
	A.Clear()

	anchor, pinned := anchorDof(op)
	scale := d.DiagScale
	if scale == 0 {
		scale = op.DiagScale()
	}

	// Matrix entries are 1-based on the backend side.
	op.DoNonZero(func(i, j int, v float64) {
		if pinned && (i == anchor || j == anchor) {
			return
		}
		A.GetElement(int64(i+1), int64(j+1)).Real += v
	})
	if pinned {
		A.GetElement(int64(anchor+1), int64(anchor+1)).Real += scale
	}

	if err = A.Factor(); err != nil {
		return x, &BreakdownError{Reason: "LU factorization failed", Err: err}
	}

	b := make([]float64, n+1)
	for i := 0; i < n; i++ {
		b[i+1] = rhs.V.AtVec(i)
	}
	if pinned {
		b[anchor+1] = 0
	}
	sol, err := A.Solve(b)
	if err != nil {
		return x, &BreakdownError{Reason: "triangular solve failed", Err: err}
	}

	x = utils.NewVector(n)
	for i := 0; i < n; i++ {
		x.V.SetVec(i, sol[i+1])
	}
	return x, nil
}
