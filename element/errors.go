package element

import "fmt"

// UnsupportedElementError is returned for a family/degree combination that
// has no registered DOF layout or basis. Fatal at construction time.
type UnsupportedElementError struct {
	Family Family
	Degree int
}

func (e *UnsupportedElementError) Error() string {
	return fmt.Sprintf("unsupported element: family %s, degree %d", e.Family, e.Degree)
}

// IncompatibleRankError is returned when an enrichment's value rank differs
// from its base element's.
type IncompatibleRankError struct {
	BaseRank, AdditionRank ValueRank
}

func (e *IncompatibleRankError) Error() string {
	return fmt.Sprintf("enrichment rank mismatch: base is %s, addition is %s",
		e.BaseRank, e.AdditionRank)
}
