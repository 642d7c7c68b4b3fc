package mesh

import (
	"testing"

	"github.com/notargets/gostokes/utils"
	"github.com/stretchr/testify/assert"
)

func TestRectangle(t *testing.T) {
	msh, err := Rectangle([2]float64{0, 0}, [2]float64{1, 1}, [2]int{4, 3}, Triangle, nil)
	assert.NoError(t, err)
	nx, ny := 4, 3
	assert.Equal(t, (nx+1)*(ny+1), msh.NumVerts())
	assert.Equal(t, 2*nx*ny, msh.NumCells())
	// horizontal + vertical + diagonal edges
	assert.Equal(t, nx*(ny+1)+ny*(nx+1)+nx*ny, msh.NumFacets())
	assert.Equal(t, 2*(nx+ny), len(msh.BoundaryFacets))

	// every cell is counter-clockwise
	for c := 0; c < msh.NumCells(); c++ {
		X, Y := msh.CellCoords(c)
		twiceArea := (X[1]-X[0])*(Y[2]-Y[0]) - (X[2]-X[0])*(Y[1]-Y[0])
		assert.Greater(t, twiceArea, 0.)
	}

	// interior facets have two distinct cells, boundary facets one
	nBoundary := 0
	for _, facet := range msh.Facets {
		if facet.Cells[1] == -1 {
			nBoundary++
		} else {
			assert.NotEqual(t, facet.Cells[0], facet.Cells[1])
		}
	}
	assert.Equal(t, len(msh.BoundaryFacets), nBoundary)

	// facet k is opposite local vertex k
	for c := 0; c < msh.NumCells(); c++ {
		for k := 0; k < 3; k++ {
			facet := msh.Facets[msh.CellFacets[c][k]]
			opp := msh.EToV[c][k]
			assert.NotEqual(t, opp, facet.V[0])
			assert.NotEqual(t, opp, facet.V[1])
		}
	}
}

func TestRectangleValidation(t *testing.T) {
	_, err := Rectangle([2]float64{0, 0}, [2]float64{1, 1}, [2]int{4, 3}, CellType("quad"), nil)
	assert.Error(t, err)
	_, err = Rectangle([2]float64{0, 0}, [2]float64{1, 1}, [2]int{0, 3}, Triangle, nil)
	assert.Error(t, err)
	_, err = Rectangle([2]float64{1, 1}, [2]float64{0, 0}, [2]int{4, 3}, Triangle, nil)
	assert.Error(t, err)
}

func TestPartitionAndGhosts(t *testing.T) {
	NP := 3
	wg := utils.NewWorkerGroup(NP)
	var mshs [3]*Mesh
	wg.Run(func(myThread int) {
		msh, err := Rectangle([2]float64{0, 0}, [2]float64{1, 1}, [2]int{4, 4},
			Triangle, NewGroupComm(wg, myThread))
		if err != nil {
			panic(err)
		}
		mshs[myThread] = msh
	})
	msh := mshs[0]

	total := 0
	for rank := 0; rank < NP; rank++ {
		owned := msh.OwnedCells(rank)
		total += len(owned)
		assert.NotEmpty(t, owned)
		ghosts := msh.GhostCells(rank)
		for _, g := range ghosts {
			assert.NotEqual(t, rank, msh.CellRank[g])
		}
	}
	assert.Equal(t, msh.NumCells(), total)

	// ghost layers are nonempty on a multi-rank partition
	assert.NotEmpty(t, msh.GhostCells(0))
}

func TestGroupCommReduction(t *testing.T) {
	NP := 4
	wg := utils.NewWorkerGroup(NP)
	results := make([]float64, NP)
	wg.Run(func(myThread int) {
		comm := NewGroupComm(wg, myThread)
		results[myThread] = comm.AllReduceSum(float64(myThread))
	})
	for _, r := range results {
		assert.InDelta(t, 6., r, 1.e-12)
	}
	assert.InDelta(t, 42., SelfComm{}.AllReduceSum(42.), 1.e-12)
}
