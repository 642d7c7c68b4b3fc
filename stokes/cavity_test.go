package stokes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gostokes/assembly"
	"github.com/notargets/gostokes/bc"
	"github.com/notargets/gostokes/mesh"
	"github.com/notargets/gostokes/solver"
	"github.com/notargets/gostokes/space"
	"github.com/notargets/gostokes/utils"
)

func spaceFor(msh *mesh.Mesh, pr Pair) (*space.FunctionSpace, error) {
	return space.Build(msh, pr.Velocity)
}

// solveVelocity runs the cavity pipeline and returns the scattered velocity
// coefficient function.
func solveVelocity(t *testing.T, msh *mesh.Mesh, pr Pair) *Function {
	V, err := space.Build(msh, pr.Velocity)
	assert.NoError(t, err)
	Q, err := space.Build(msh, pr.Pressure)
	assert.NoError(t, err)
	p0, p1 := extents(msh)
	bcs, err := cavityBCs(msh, V, p0, p1)
	assert.NoError(t, err)
	op, rhs, err := assembly.Assemble(V, Q, assembly.Options{BCs: bcs})
	assert.NoError(t, err)
	assert.NoError(t, assembly.AttachPressureNullspace(op, V, Q))
	x, err := solver.NewDirect().Solve(op, rhs)
	assert.NoError(t, err)
	u, _, err := Split(x, V, Q)
	assert.NoError(t, err)
	u.ScatterForward()
	return u
}

func TestWallMarkers(t *testing.T) {
	var (
		p0     = [2]float64{0, 0}
		p1     = [2]float64{1, 1}
		x      = []float64{0, 1, 0.5, 0.5, 0.5}
		y      = []float64{0.5, 0.5, 0, 1, 0.5}
		noslip = NoslipBoundary(p0, p1)(x, y)
		lid    = Lid(p0, p1)(x, y)
	)
	assert.Equal(t, []bool{true, true, true, false, false}, noslip)
	assert.Equal(t, []bool{false, false, false, true, false}, lid)
}

func TestMarkersPartitionBoundary(t *testing.T) {
	msh := unitSquare(t, 4, 4, nil)
	p0, p1 := extents(msh)
	assert.Equal(t, [2]float64{0, 0}, p0)
	assert.Equal(t, [2]float64{1, 1}, p1)

	var (
		noslip = NoslipBoundary(p0, p1)
		lid    = Lid(p0, p1)
		nNos   int
		nLid   int
	)
	for _, f := range msh.BoundaryFacets {
		cx, cy := msh.FacetCenter(f)
		onN := noslip([]float64{cx}, []float64{cy})[0]
		onL := lid([]float64{cx}, []float64{cy})[0]
		assert.True(t, onN != onL, "facet center (%g,%g) must be on exactly one wall", cx, cy)
		if onN {
			nNos++
		} else {
			nLid++
		}
	}
	assert.Equal(t, 12, nNos)
	assert.Equal(t, 4, nLid)
}

func TestPairConstructors(t *testing.T) {
	pairs, err := Pairs()
	assert.NoError(t, err)
	assert.Len(t, pairs, 3)
	assert.Equal(t, "TaylorHood", pairs[0].Name)
	assert.Equal(t, 2, pairs[0].Velocity.PolyDegree())
	assert.Equal(t, 3, pairs[1].Velocity.PolyDegree())
	assert.Equal(t, 0, pairs[2].Pressure.PolyDegree())

	_, err = PairByName("nonsense")
	assert.Error(t, err)
	for _, name := range []string{"th", "mini", "cr"} {
		_, err = PairByName(name)
		assert.NoError(t, err)
	}
}

func TestCavityAllPairs(t *testing.T) {
	msh := unitSquare(t, 8, 8, nil)
	pairs, err := Pairs()
	assert.NoError(t, err)
	for _, pr := range pairs {
		res, err := SolveCavity(msh, pr)
		assert.NoError(t, err, pr.Name)
		for _, nrm := range []float64{res.UCoeffNorm, res.UL2Norm, res.PCoeffNorm, res.PL2Norm} {
			assert.False(t, math.IsNaN(nrm) || math.IsInf(nrm, 0), pr.Name)
			assert.Greater(t, nrm, 0., pr.Name)
		}
		// The drive has unit velocity, so the field cannot exceed it by much
		// and the L2 norm is bounded by the cavity measure.
		assert.Less(t, res.UL2Norm, 1., pr.Name)
	}
}

func TestCavityLidValuesRecovered(t *testing.T) {
	msh := unitSquare(t, 8, 8, nil)
	pairs, err := Pairs()
	assert.NoError(t, err)
	for _, pr := range pairs {
		V, err := spaceFor(msh, pr)
		assert.NoError(t, err)
		u := solveVelocity(t, msh, pr)
		var checked int
		for n := 0; n < V.NumNodes; n++ {
			if !mesh.IsClose(V.NodeY[n], 1) {
				continue
			}
			onWall := mesh.IsClose(V.NodeX[n], 0) || mesh.IsClose(V.NodeX[n], 1)
			if onWall {
				continue // corner values depend on constraint order
			}
			assert.InDelta(t, 1., u.X.V.AtVec(n*2), 1.e-10, pr.Name)
			assert.InDelta(t, 0., u.X.V.AtVec(n*2+1), 1.e-10, pr.Name)
			checked++
		}
		assert.Greater(t, checked, 0, pr.Name)

		// No-slip walls carry zero velocity.
		for n := 0; n < V.NumNodes; n++ {
			if mesh.IsClose(V.NodeX[n], 0) && !mesh.IsClose(V.NodeY[n], 1) {
				assert.InDelta(t, 0., u.X.V.AtVec(n*2), 1.e-10, pr.Name)
				assert.InDelta(t, 0., u.X.V.AtVec(n*2+1), 1.e-10, pr.Name)
			}
		}
	}
}

func TestCavityRecirculation(t *testing.T) {
	msh := unitSquare(t, 16, 16, nil)
	pr, err := TaylorHood()
	assert.NoError(t, err)
	V, err := spaceFor(msh, pr)
	assert.NoError(t, err)
	u := solveVelocity(t, msh, pr)

	// Along the vertical centerline the x-velocity follows the lid near the
	// top and reverses below, the signature of the primary vortex.
	var top, bottom float64
	for n := 0; n < V.NumNodes; n++ {
		if !mesh.IsClose(V.NodeX[n], 0.5) {
			continue
		}
		ux := u.X.V.AtVec(n * 2)
		if V.NodeY[n] > 0.9 && V.NodeY[n] < 1 {
			top = math.Max(top, ux)
		}
		if V.NodeY[n] > 0.1 && V.NodeY[n] < 0.7 {
			bottom = math.Min(bottom, ux)
		}
	}
	assert.Greater(t, top, 0.)
	assert.Less(t, bottom, 0.)
}

func TestMomentumResidualWithNeumann(t *testing.T) {
	// Traction-driven variant: no-slip walls, unit tangential traction on
	// the top. The solved field must satisfy the discrete momentum and
	// continuity equations on every unconstrained row, which ties the
	// pressure gradient to the prescribed Neumann data.
	msh := unitSquare(t, 8, 8, nil)
	pr, err := TaylorHood()
	assert.NoError(t, err)
	V, err := space.Build(msh, pr.Velocity)
	assert.NoError(t, err)
	Q, err := space.Build(msh, pr.Pressure)
	assert.NoError(t, err)

	p0, p1 := extents(msh)
	noslip, err := bc.Constrain(V,
		bc.DofsOn(V, bc.Locate(msh, NoslipBoundary(p0, p1))), []float64{0, 0})
	assert.NoError(t, err)
	traction, err := assembly.NewConstant([]float64{1, 0})
	assert.NoError(t, err)

	op, rhs, err := assembly.Assemble(V, Q, assembly.Options{
		BCs: []*bc.DirichletBC{noslip},
		Neumann: &assembly.NeumannBC{
			Facets: bc.Locate(msh, Lid(p0, p1)),
			Value:  traction,
		},
	})
	assert.NoError(t, err)

	// The open top boundary fixes the pressure level, so the operator is
	// nonsingular and carries no null space.
	assert.Error(t, assembly.AttachPressureNullspace(op, V, Q))
	op.NullSpace = nil

	x, err := solver.NewDirect().Solve(op, rhs)
	assert.NoError(t, err)

	var (
		r      = op.MulVec(x)
		values = bc.Merge(noslip)
		scale  = op.NormFrobenius()
	)
	for i := 0; i < op.Dim(); i++ {
		if _, constrained := values[i]; constrained {
			continue
		}
		assert.InDelta(t, rhs.V.AtVec(i), r.V.AtVec(i), 1.e-10*scale)
	}
}

func TestCavityReproducible(t *testing.T) {
	msh := unitSquare(t, 8, 8, nil)
	pr, err := MINI()
	assert.NoError(t, err)
	a, err := SolveCavity(msh, pr)
	assert.NoError(t, err)
	b, err := SolveCavity(msh, pr)
	assert.NoError(t, err)
	assert.InDelta(t, a.UCoeffNorm, b.UCoeffNorm, 1.e-9*a.UCoeffNorm)
	assert.InDelta(t, a.PL2Norm, b.PL2Norm, 1.e-9*math.Max(a.PL2Norm, 1))
}

func TestRunScenario(t *testing.T) {
	sc := DefaultScenario()
	sc.Divisions = [2]int{4, 4}
	sc.Pairs = []string{"TaylorHood", "bogus"}
	results, errs, err := Run(sc, nil)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.Greater(t, results[0].UL2Norm, 0.)
}

func TestRunParallelMatchesSerial(t *testing.T) {
	sc := DefaultScenario()
	sc.Divisions = [2]int{6, 6}
	sc.Pairs = []string{"TaylorHood"}

	serial, errs, err := Run(sc, nil)
	assert.NoError(t, err)
	assert.NoError(t, errs[0])

	var (
		NP      = 2
		wg      = utils.NewWorkerGroup(NP)
		results = make([][]Result, NP)
	)
	wg.Run(func(myThread int) {
		comm := mesh.NewGroupComm(wg, myThread)
		res, _, rerr := Run(sc, comm)
		if rerr == nil {
			results[myThread] = res
		}
	})
	for rank := 0; rank < NP; rank++ {
		assert.Len(t, results[rank], 1)
		assert.InDelta(t, serial[0].UL2Norm, results[rank][0].UL2Norm, 1.e-9)
		assert.InDelta(t, serial[0].PCoeffNorm, results[rank][0].PCoeffNorm, 1.e-7)
	}
}
