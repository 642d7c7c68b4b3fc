package element

// Reference triangle: vertices (0,0), (1,0), (0,1), coordinates (r,s).
// Barycentric coordinates L0 = 1-r-s, L1 = r, L2 = s with constant
// gradients gradL[k].
//
// Scalar DOF ordering within a cell: vertex DOFs (local vertices 0..2),
// then facet DOFs (facet k opposite vertex k), then interior DOFs.

var gradL = [3][2]float64{{-1, -1}, {1, 0}, {0, 1}}

// Basis evaluates the scalar shape functions of an element and their
// reference-coordinate gradients at a point of the reference triangle.
type Basis struct {
	Np   int
	eval func(r, s float64) (phi []float64, dphi [][2]float64)
}

func (b Basis) Eval(r, s float64) (phi []float64, dphi [][2]float64) {
	return b.eval(r, s)
}

// NewBasis dispatches on the closed family/degree table.
func NewBasis(el Element) (b Basis, err error) {
	layout, err := LayoutOf(el)
	if err != nil {
		return
	}
	b.Np = layout.NumDofs()
	switch {
	case el.Family == Lagrange && el.Degree == 1 && el.Enrichment == nil:
		b.eval = evalP1
	case el.Family == Lagrange && el.Degree == 1 && el.Enrichment != nil:
		b.eval = evalMini
	case el.Family == Lagrange && el.Degree == 2 && el.Enrichment == nil:
		b.eval = evalP2
	case el.Family == Bubble && el.Degree == 3:
		b.eval = evalBubble
	case el.Family == NonconformingLinear && el.Degree == 1:
		b.eval = evalCR
	case el.Family == DiscontinuousGalerkin && el.Degree == 0:
		b.eval = evalDG0
	default:
		err = &UnsupportedElementError{Family: el.Family, Degree: el.Degree}
	}
	return
}

func bary(r, s float64) [3]float64 {
	return [3]float64{1 - r - s, r, s}
}

func evalP1(r, s float64) (phi []float64, dphi [][2]float64) {
	L := bary(r, s)
	phi = []float64{L[0], L[1], L[2]}
	dphi = [][2]float64{gradL[0], gradL[1], gradL[2]}
	return
}

func evalP2(r, s float64) (phi []float64, dphi [][2]float64) {
	L := bary(r, s)
	phi = make([]float64, 6)
	dphi = make([][2]float64, 6)
	for k := 0; k < 3; k++ {
		phi[k] = L[k] * (2*L[k] - 1)
		for d := 0; d < 2; d++ {
			dphi[k][d] = (4*L[k] - 1) * gradL[k][d]
		}
	}
	// facet k carries the midpoint basis of its two end vertices
	for k := 0; k < 3; k++ {
		a, b := (k+1)%3, (k+2)%3
		phi[3+k] = 4 * L[a] * L[b]
		for d := 0; d < 2; d++ {
			dphi[3+k][d] = 4 * (L[a]*gradL[b][d] + L[b]*gradL[a][d])
		}
	}
	return
}

func evalBubble(r, s float64) (phi []float64, dphi [][2]float64) {
	L := bary(r, s)
	phi = []float64{27 * L[0] * L[1] * L[2]}
	dphi = make([][2]float64, 1)
	for d := 0; d < 2; d++ {
		dphi[0][d] = 27 * (L[1]*L[2]*gradL[0][d] +
			L[0]*L[2]*gradL[1][d] +
			L[0]*L[1]*gradL[2][d])
	}
	return
}

func evalMini(r, s float64) (phi []float64, dphi [][2]float64) {
	phi, dphi = evalP1(r, s)
	bphi, bdphi := evalBubble(r, s)
	phi = append(phi, bphi...)
	dphi = append(dphi, bdphi...)
	return
}

func evalCR(r, s float64) (phi []float64, dphi [][2]float64) {
	L := bary(r, s)
	phi = make([]float64, 3)
	dphi = make([][2]float64, 3)
	for k := 0; k < 3; k++ {
		phi[k] = 1 - 2*L[k]
		for d := 0; d < 2; d++ {
			dphi[k][d] = -2 * gradL[k][d]
		}
	}
	return
}

func evalDG0(r, s float64) (phi []float64, dphi [][2]float64) {
	phi = []float64{1}
	dphi = [][2]float64{{0, 0}}
	return
}
