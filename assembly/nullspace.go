package assembly

import (
	"math"

	"github.com/notargets/gostokes/space"
	"github.com/notargets/gostokes/utils"
)

// NullSpaceTol bounds the acceptable relative residual ‖A·n‖/‖A‖ of an
// attached near-null-space vector.
const NullSpaceTol = 1.e-10

// AttachPressureNullspace constructs the normalized constant-pressure mode
// (zero on the velocity block, uniform on the pressure block), verifies the
// operator annihilates it, and attaches it to the operator. A residual
// above tolerance means the assembly is inconsistent and is fatal.
func AttachPressureNullspace(op *BlockOperator, V, Q *space.FunctionSpace) (err error) {
	var (
		n      = utils.NewVector(op.Dim())
		nd     = n.Data()
		offset = op.Offset(1)
	)
	for i := offset; i < op.Dim(); i++ {
		nd[i] = 1.
	}
	n.Scale(1. / math.Sqrt(float64(op.Dim()-offset)))

	var (
		residual = op.MulVec(n).Norm()
		tol      = NullSpaceTol * math.Max(1., op.NormFrobenius())
	)
	if residual > tol {
		err = &NullSpaceVerificationError{Residual: residual, Tolerance: tol}
		return
	}
	op.NullSpace = append(op.NullSpace, n)
	return
}
