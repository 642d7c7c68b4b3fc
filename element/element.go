package element

type Family uint8

const (
	Lagrange Family = iota
	Bubble
	NonconformingLinear
	DiscontinuousGalerkin
)

func (f Family) String() string {
	switch f {
	case Lagrange:
		return "Lagrange"
	case Bubble:
		return "Bubble"
	case NonconformingLinear:
		return "Crouzeix-Raviart"
	case DiscontinuousGalerkin:
		return "DG"
	default:
		return "unknown"
	}
}

type ValueRank uint8

const (
	Scalar ValueRank = iota
	Vector
)

func (r ValueRank) String() string {
	if r == Vector {
		return "vector"
	}
	return "scalar"
}

// Element describes a finite element on the reference triangle: family,
// polynomial degree, value rank and an optional enrichment. Pure value type.
type Element struct {
	Family     Family
	Degree     int
	Rank       ValueRank
	Enrichment *Element
}

// Describe validates the family/degree combination against the layout table
// and returns the descriptor. Unknown combinations are rejected here, not at
// assembly time.
func Describe(family Family, degree int, rank ValueRank) (el Element, err error) {
	el = Element{Family: family, Degree: degree, Rank: rank}
	if _, supported := layoutTable[layoutKey{family, degree}]; !supported {
		err = &UnsupportedElementError{Family: family, Degree: degree}
		return
	}
	return
}

// Enrich returns base extended by addition (e.g. P1 + B3 for the MINI
// velocity element). The two must agree on value rank, and the addition must
// be a bubble; anything else has no registered combined basis.
func Enrich(base, addition Element) (el Element, err error) {
	if base.Rank != addition.Rank {
		err = &IncompatibleRankError{BaseRank: base.Rank, AdditionRank: addition.Rank}
		return
	}
	if base.Family != Lagrange || addition.Family != Bubble {
		err = &UnsupportedElementError{Family: addition.Family, Degree: addition.Degree}
		return
	}
	add := addition
	el = Element{
		Family:     base.Family,
		Degree:     base.Degree,
		Rank:       base.Rank,
		Enrichment: &add,
	}
	return
}

// PolyDegree is the highest polynomial degree appearing in the basis,
// including the enrichment. Drives quadrature selection.
func (el Element) PolyDegree() (deg int) {
	deg = el.Degree
	if el.Enrichment != nil && el.Enrichment.Degree > deg {
		deg = el.Enrichment.Degree
	}
	return
}
