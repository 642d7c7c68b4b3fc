package element

import (
	"fmt"

	"github.com/notargets/gostokes/utils"
)

// Cubature is a symmetric quadrature rule on the reference triangle. The
// weights include the reference area, so they sum to 1/2.
type Cubature struct {
	R, S, W utils.Vector
	Nq      int
}

// Quadrature returns the smallest tabulated rule integrating polynomials of
// the requested total degree exactly.
func Quadrature(degree int) (cb *Cubature, err error) {
	var data []float64
	switch {
	case degree < 0:
		err = fmt.Errorf("quadrature degree must be >= 0, have %d", degree)
		return
	case degree <= 1:
		data = cub2dDeg1
	case degree <= 2:
		data = cub2dDeg2
	case degree <= 4:
		data = cub2dDeg4
	case degree <= 6:
		data = cub2dDeg6
	default:
		err = fmt.Errorf("no tabulated cubature of degree %d (max 6)", degree)
		return
	}
	Nq := len(data) / 3
	cubMat := utils.NewMatrix(Nq, 3, data)
	cb = &Cubature{
		R:  cubMat.Col(0),
		S:  cubMat.Col(1),
		W:  cubMat.Col(2),
		Nq: Nq,
	}
	return
}

// Rules below are the symmetric (Dunavant) point sets, rows of (r, s, w).

var cub2dDeg1 = []float64{
	1. / 3., 1. / 3., 0.5,
}

var cub2dDeg2 = []float64{
	1. / 6., 1. / 6., 1. / 6.,
	2. / 3., 1. / 6., 1. / 6.,
	1. / 6., 2. / 3., 1. / 6.,
}

var cub2dDeg4 = []float64{
	0.445948490915965, 0.445948490915965, 0.111690794839006,
	0.108103018168070, 0.445948490915965, 0.111690794839006,
	0.445948490915965, 0.108103018168070, 0.111690794839006,
	0.091576213509771, 0.091576213509771, 0.054975871827661,
	0.816847572980459, 0.091576213509771, 0.054975871827661,
	0.091576213509771, 0.816847572980459, 0.054975871827661,
}

var cub2dDeg6 = []float64{
	0.249286745170910, 0.249286745170910, 0.058393137863190,
	0.501426509658179, 0.249286745170910, 0.058393137863190,
	0.249286745170910, 0.501426509658179, 0.058393137863190,
	0.063089014491502, 0.063089014491502, 0.025422453185104,
	0.873821971016996, 0.063089014491502, 0.025422453185104,
	0.063089014491502, 0.873821971016996, 0.025422453185104,
	0.310352451033784, 0.053145049844817, 0.041425537809187,
	0.053145049844817, 0.310352451033784, 0.041425537809187,
	0.636502499121399, 0.310352451033784, 0.041425537809187,
	0.310352451033784, 0.636502499121399, 0.041425537809187,
	0.636502499121399, 0.053145049844817, 0.041425537809187,
	0.053145049844817, 0.636502499121399, 0.041425537809187,
}

// FacetQuadrature is a two-point Gauss rule on the unit interval [0,1],
// exact for cubics, used for Neumann boundary terms. Rows of (t, w).
var facetCub = []float64{
	0.211324865405187, 0.5,
	0.788675134594813, 0.5,
}

func FacetQuadrature() (T, W []float64) {
	T = []float64{facetCub[0], facetCub[2]}
	W = []float64{facetCub[1], facetCub[3]}
	return
}
