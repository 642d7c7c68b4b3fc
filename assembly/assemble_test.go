package assembly

import (
	"math"
	"testing"

	"github.com/notargets/gostokes/bc"
	"github.com/notargets/gostokes/element"
	"github.com/notargets/gostokes/mesh"
	"github.com/notargets/gostokes/space"
	"github.com/notargets/gostokes/utils"
	"github.com/stretchr/testify/assert"
)

func buildPair(t *testing.T, nx, ny int, vFam element.Family, vDeg int, enrich bool,
	pFam element.Family, pDeg int) (*mesh.Mesh, *space.FunctionSpace, *space.FunctionSpace) {
	msh, err := mesh.Rectangle([2]float64{0, 0}, [2]float64{1, 1}, [2]int{nx, ny},
		mesh.Triangle, nil)
	assert.NoError(t, err)
	vel, err := element.Describe(vFam, vDeg, element.Vector)
	assert.NoError(t, err)
	if enrich {
		b3, _ := element.Describe(element.Bubble, 3, element.Vector)
		vel, err = element.Enrich(vel, b3)
		assert.NoError(t, err)
	}
	pres, err := element.Describe(pFam, pDeg, element.Scalar)
	assert.NoError(t, err)
	V, err := space.Build(msh, vel)
	assert.NoError(t, err)
	Q, err := space.Build(msh, pres)
	assert.NoError(t, err)
	return msh, V, Q
}

func wholeBoundary(x, y []float64) []bool {
	mask := make([]bool, len(x))
	for i := range mask {
		mask[i] = true
	}
	return mask
}

func TestBlockStructure(t *testing.T) {
	_, V, Q := buildPair(t, 2, 2, element.Lagrange, 2, false, element.Lagrange, 1)
	op, rhs, err := Assemble(V, Q, Options{})
	assert.NoError(t, err)
	assert.Equal(t, V.NumDofs()+Q.NumDofs(), op.Dim())
	assert.Equal(t, V.NumDofs()+Q.NumDofs(), rhs.Len())

	for _, key := range []BlockKey{{0, 0}, {0, 1}, {1, 0}} {
		_, present := op.Block(key.Row, key.Col)
		assert.True(t, present, "block (%d,%d)", key.Row, key.Col)
	}
	// the pressure-pressure block is structurally absent, not zero
	_, present := op.Block(1, 1)
	assert.False(t, present)
}

func TestOperatorSymmetry(t *testing.T) {
	_, V, Q := buildPair(t, 2, 2, element.Lagrange, 2, false, element.Lagrange, 1)
	op, _, err := Assemble(V, Q, Options{})
	assert.NoError(t, err)

	A, _ := op.Block(0, 0)
	A.DoNonZero(func(i, j int, v float64) {
		assert.InDelta(t, v, A.At(j, i), 1.e-12)
	})
	// the coupling blocks are transposes of one another by construction
	// from the weak form, though assembled independently
	B, _ := op.Block(0, 1)
	Bt, _ := op.Block(1, 0)
	B.DoNonZero(func(i, j int, v float64) {
		assert.InDelta(t, v, Bt.At(j, i), 1.e-12)
	})
}

func TestViscousBlockAnnihilatesConstants(t *testing.T) {
	// grad of a constant field is zero, so A times its interpolant vanishes
	for _, tc := range []struct {
		name   string
		family element.Family
		degree int
	}{
		{"TaylorHood", element.Lagrange, 2},
		{"CrouzeixRaviart", element.NonconformingLinear, 1},
	} {
		_, V, Q := buildPair(t, 2, 2, tc.family, tc.degree, false, element.Lagrange, 1)
		op, _, err := Assemble(V, Q, Options{})
		assert.NoError(t, err)
		A, _ := op.Block(0, 0)
		ones := make([]float64, V.NumDofs())
		for i := range ones {
			ones[i] = 1.
		}
		y := make([]float64, V.NumDofs())
		A.MulVecAdd(y, ones)
		for i, v := range y {
			assert.InDelta(t, 0., v, 1.e-11, "%s row %d", tc.name, i)
		}
	}
}

func TestContinuityOfConstantVelocity(t *testing.T) {
	// div of a constant velocity field is zero: Bt u = 0, including for the
	// MINI element when the bubble coefficients are zero
	_, V, Q := buildPair(t, 2, 2, element.Lagrange, 1, true, element.Lagrange, 1)
	op, _, err := Assemble(V, Q, Options{})
	assert.NoError(t, err)

	u := make([]float64, V.NumDofs())
	for n := 0; n < V.NumNodes; n++ {
		if V.NodeEntity[n].Dim == 0 { // vertex dofs carry the constant
			u[n*V.BlockSize] = 2.5
			u[n*V.BlockSize+1] = -1.
		}
	}
	Bt, _ := op.Block(1, 0)
	y := make([]float64, Q.NumDofs())
	Bt.MulVecAdd(y, u)
	for k, v := range y {
		assert.InDelta(t, 0., v, 1.e-11, "pressure row %d", k)
	}
}

func TestBodyForceLoad(t *testing.T) {
	// ∫ f·v with f = (1, 0): summing over all x-component rows integrates
	// the partition of unity, giving f_x * |Ω|
	_, V, Q := buildPair(t, 2, 2, element.Lagrange, 2, false, element.Lagrange, 1)
	f, _ := NewConstant([]float64{1, 0})
	_, rhs, err := Assemble(V, Q, Options{BodyForce: f})
	assert.NoError(t, err)
	var sumX, sumY float64
	for n := 0; n < V.NumNodes; n++ {
		sumX += rhs.AtVec(n * 2)
		sumY += rhs.AtVec(n*2 + 1)
	}
	assert.InDelta(t, 1., sumX, 1.e-12) // unit square area
	assert.InDelta(t, 0., sumY, 1.e-12)
}

func TestNeumannLoad(t *testing.T) {
	// ∮ g·v over the lid: x-component rows sum to g_x * lid length
	msh, V, Q := buildPair(t, 2, 2, element.Lagrange, 2, false, element.Lagrange, 1)
	lidFacets := bc.Locate(msh, func(x, y []float64) []bool {
		mask := make([]bool, len(x))
		for i := range x {
			mask[i] = mesh.IsClose(y[i], 1.)
		}
		return mask
	})
	g, _ := NewConstant([]float64{3, 0})
	_, rhs, err := Assemble(V, Q, Options{Neumann: &NeumannBC{Facets: lidFacets, Value: g}})
	assert.NoError(t, err)
	var sumX float64
	for n := 0; n < V.NumNodes; n++ {
		sumX += rhs.AtVec(n * 2)
	}
	assert.InDelta(t, 3., sumX, 1.e-12)
}

func TestDirichletElimination(t *testing.T) {
	msh, V, Q := buildPair(t, 2, 2, element.Lagrange, 2, false, element.Lagrange, 1)
	nodes := bc.DofsOn(V, bc.Locate(msh, wholeBoundary))
	lidVal := []float64{1, 0}
	bc0, err := bc.Constrain(V, nodes, lidVal)
	assert.NoError(t, err)

	op, rhs, err := Assemble(V, Q, Options{BCs: []*bc.DirichletBC{bc0}})
	assert.NoError(t, err)
	A, _ := op.Block(0, 0)
	B, _ := op.Block(0, 1)
	Bt, _ := op.Block(1, 0)

	// Every constrained row receives the same scaled identity entry, frozen
	// from the pre-elimination diagonal, and the RHS carries the prescribed
	// value at that scale so the solve returns it exactly.
	var scale float64
	for dof := range bc0.Values {
		scale = A.At(dof, dof)
		break
	}
	assert.Greater(t, scale, 0.)

	for dof, want := range bc0.Values {
		assert.InDelta(t, scale, A.At(dof, dof), 1.e-12)
		assert.InDelta(t, want, rhs.AtVec(dof)/A.At(dof, dof), 1.e-12)
		for j := 0; j < V.NumDofs(); j++ {
			if j == dof {
				assert.InDelta(t, scale, A.At(dof, j), 1.e-12)
			} else {
				assert.InDelta(t, 0., A.At(dof, j), 1.e-14)
				assert.InDelta(t, 0., A.At(j, dof), 1.e-14)
			}
		}
		for k := 0; k < Q.NumDofs(); k++ {
			assert.InDelta(t, 0., B.At(dof, k), 1.e-14)
			assert.InDelta(t, 0., Bt.At(k, dof), 1.e-14)
		}
	}
	// elimination keeps the operator symmetric
	A.DoNonZero(func(i, j int, v float64) {
		assert.InDelta(t, v, A.At(j, i), 1.e-12)
	})
}

func TestPressureNullspace(t *testing.T) {
	for _, tc := range []struct {
		name    string
		vFam    element.Family
		vDeg    int
		enrich  bool
		pFam    element.Family
		pDeg    int
	}{
		{"TaylorHood", element.Lagrange, 2, false, element.Lagrange, 1},
		{"MINI", element.Lagrange, 1, true, element.Lagrange, 1},
		{"CrouzeixRaviart", element.NonconformingLinear, 1, false, element.DiscontinuousGalerkin, 0},
	} {
		msh, V, Q := buildPair(t, 4, 4, tc.vFam, tc.vDeg, tc.enrich, tc.pFam, tc.pDeg)
		nodes := bc.DofsOn(V, bc.Locate(msh, wholeBoundary))
		bc0, _ := bc.Constrain(V, nodes, []float64{0, 0})
		op, _, err := Assemble(V, Q, Options{BCs: []*bc.DirichletBC{bc0}})
		assert.NoError(t, err, tc.name)

		err = AttachPressureNullspace(op, V, Q)
		assert.NoError(t, err, tc.name)
		assert.Len(t, op.NullSpace, 1)
		n := op.NullSpace[0]
		assert.InDelta(t, 1., n.Norm(), 1.e-12)
		assert.InDelta(t, 0., op.MulVec(n).Norm(), NullSpaceTol*op.NormFrobenius())

		// a corrupted coupling block must fail verification
		B, _ := op.Block(0, 1)
		B.Accumulate(0, 0, 0.5)
		op.NullSpace = nil
		err = AttachPressureNullspace(op, V, Q)
		var nsErr *NullSpaceVerificationError
		assert.ErrorAs(t, err, &nsErr, tc.name)
	}
}

func TestSingularFormOnBadMesh(t *testing.T) {
	msh, V, Q := buildPair(t, 2, 2, element.Lagrange, 2, false, element.Lagrange, 1)
	// flip one cell's orientation to force a negative Jacobian
	msh.EToV[0][1], msh.EToV[0][2] = msh.EToV[0][2], msh.EToV[0][1]
	_, _, err := Assemble(V, Q, Options{})
	var sfe *SingularFormError
	assert.ErrorAs(t, err, &sfe)
	assert.Equal(t, 0, sfe.Cell)
}

func TestDiagScaleAndNorms(t *testing.T) {
	op := NewBlockOperator(2, 1)
	A := op.NewBlock(0, 0)
	A.Set(0, 0, 2.)
	A.Set(1, 1, 4.)
	assert.InDelta(t, 3., op.DiagScale(), 1.e-14)
	assert.InDelta(t, math.Sqrt(20.), op.NormFrobenius(), 1.e-14)

	x := utils.NewVector(3, []float64{1, 1, 1})
	y := op.MulVec(x)
	assert.InDelta(t, 2., y.AtVec(0), 1.e-14)
	assert.InDelta(t, 4., y.AtVec(1), 1.e-14)
	assert.InDelta(t, 0., y.AtVec(2), 1.e-14)
}
