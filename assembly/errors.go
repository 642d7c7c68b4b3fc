package assembly

import "fmt"

// SingularFormError signals an internal inconsistency in quadrature or the
// DOF map during assembly. It indicates an implementation bug, never a user
// error, and must abort the run.
type SingularFormError struct {
	Cell   int
	Detail string
}

func (e *SingularFormError) Error() string {
	return fmt.Sprintf("inconsistent form on cell %d: %s", e.Cell, e.Detail)
}

// NullSpaceVerificationError signals that the constructed near-null-space
// vector is not annihilated by the operator within tolerance, which points
// at an assembly bug.
type NullSpaceVerificationError struct {
	Residual  float64
	Tolerance float64
}

func (e *NullSpaceVerificationError) Error() string {
	return fmt.Sprintf("null-space residual %.3e exceeds tolerance %.3e",
		e.Residual, e.Tolerance)
}
