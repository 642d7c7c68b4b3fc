package element

// DofLayout gives the number of DOFs attached to each entity dimension of
// the reference triangle, in the format numEntityDofs[dim]: vertices, then
// facets (edges), then the cell interior.
type DofLayout struct {
	PerVertex int
	PerFacet  int
	PerCell   int
}

// NumDofs is the scalar DOF count per cell for this layout.
func (l DofLayout) NumDofs() int {
	return 3*l.PerVertex + 3*l.PerFacet + l.PerCell
}

type layoutKey struct {
	family Family
	degree int
}

// The closed table of supported family/degree combinations. Describe
// consults it so that unknown pairs fail at construction.
var layoutTable = map[layoutKey]DofLayout{
	{Lagrange, 1}:              {PerVertex: 1},
	{Lagrange, 2}:              {PerVertex: 1, PerFacet: 1},
	{Bubble, 3}:                {PerCell: 1},
	{NonconformingLinear, 1}:   {PerFacet: 1},
	{DiscontinuousGalerkin, 0}: {PerCell: 1},
}

// LayoutOf returns the scalar DOF layout of el, with the enrichment's
// entity counts folded in.
func LayoutOf(el Element) (l DofLayout, err error) {
	base, supported := layoutTable[layoutKey{el.Family, el.Degree}]
	if !supported {
		err = &UnsupportedElementError{Family: el.Family, Degree: el.Degree}
		return
	}
	l = base
	if el.Enrichment != nil {
		var add DofLayout
		if add, err = LayoutOf(*el.Enrichment); err != nil {
			return
		}
		l.PerVertex += add.PerVertex
		l.PerFacet += add.PerFacet
		l.PerCell += add.PerCell
	}
	return
}
