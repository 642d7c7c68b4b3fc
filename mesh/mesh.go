package mesh

import (
	"fmt"

	"github.com/notargets/gostokes/utils"
)

type CellType string

const (
	Triangle = CellType("triangle")
)

// Facet is a unique mesh edge. Cells[1] is -1 on the boundary.
type Facet struct {
	V     [2]int
	Cells [2]int
}

// Mesh is an immutable triangulation: cell/vertex/facet topology plus vertex
// coordinates, partitioned into contiguous cell strips across the ranks of
// the owning Comm. Shared read-only by everything downstream.
type Mesh struct {
	Dim            int
	VX, VY         []float64
	EToV           [][3]int
	Facets         []Facet
	CellFacets     [][3]int // facet k sits opposite local vertex k
	BoundaryFacets utils.Index
	CellRank       []int
	comm           Comm
}

// Rectangle meshes the axis-aligned box [p0, p1] with divisions[0] x
// divisions[1] quads, each split into two counter-clockwise triangles.
func Rectangle(p0, p1 [2]float64, divisions [2]int, ct CellType, comm Comm) (msh *Mesh, err error) {
	if ct != Triangle {
		err = fmt.Errorf("unsupported cell type %q, only %q is implemented", ct, Triangle)
		return
	}
	var (
		nx, ny = divisions[0], divisions[1]
	)
	if nx < 1 || ny < 1 {
		err = fmt.Errorf("divisions must be >= 1, have %dx%d", nx, ny)
		return
	}
	if p1[0] <= p0[0] || p1[1] <= p0[1] {
		err = fmt.Errorf("degenerate box [%v, %v]", p0, p1)
		return
	}
	if comm == nil {
		comm = SelfComm{}
	}
	var (
		nVerts = (nx + 1) * (ny + 1)
		hx     = (p1[0] - p0[0]) / float64(nx)
		hy     = (p1[1] - p0[1]) / float64(ny)
	)
	msh = &Mesh{
		Dim:  2,
		VX:   make([]float64, nVerts),
		VY:   make([]float64, nVerts),
		comm: comm,
	}
	vid := func(i, j int) int { return i + (nx+1)*j }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			msh.VX[vid(i, j)] = p0[0] + float64(i)*hx
			msh.VY[vid(i, j)] = p0[1] + float64(j)*hy
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00, v10 := vid(i, j), vid(i+1, j)
			v01, v11 := vid(i, j+1), vid(i+1, j+1)
			msh.EToV = append(msh.EToV, [3]int{v00, v10, v11})
			msh.EToV = append(msh.EToV, [3]int{v00, v11, v01})
		}
	}
	msh.buildFacets()
	msh.partition(comm.Size())
	return
}

func (msh *Mesh) buildFacets() {
	type edgeKey [2]int
	var (
		lookup = make(map[edgeKey]int)
	)
	msh.CellFacets = make([][3]int, len(msh.EToV))
	for c, verts := range msh.EToV {
		for k := 0; k < 3; k++ {
			// facet k connects the two vertices opposite local vertex k
			a, b := verts[(k+1)%3], verts[(k+2)%3]
			if a > b {
				a, b = b, a
			}
			key := edgeKey{a, b}
			f, exists := lookup[key]
			if !exists {
				f = len(msh.Facets)
				msh.Facets = append(msh.Facets, Facet{V: [2]int{a, b}, Cells: [2]int{c, -1}})
				lookup[key] = f
			} else {
				msh.Facets[f].Cells[1] = c
			}
			msh.CellFacets[c][k] = f
		}
	}
	for f, facet := range msh.Facets {
		if facet.Cells[1] == -1 {
			msh.BoundaryFacets = append(msh.BoundaryFacets, f)
		}
	}
}

func (msh *Mesh) partition(NP int) {
	var (
		K = len(msh.EToV)
	)
	msh.CellRank = make([]int, K)
	for c := 0; c < K; c++ {
		msh.CellRank[c] = c * NP / K
	}
}

func (msh *Mesh) Comm() Comm     { return msh.comm }
func (msh *Mesh) NumCells() int  { return len(msh.EToV) }
func (msh *Mesh) NumVerts() int  { return len(msh.VX) }
func (msh *Mesh) NumFacets() int { return len(msh.Facets) }

// CellCoords returns the physical coordinates of cell c's three vertices.
func (msh *Mesh) CellCoords(c int) (X, Y [3]float64) {
	for k, v := range msh.EToV[c] {
		X[k] = msh.VX[v]
		Y[k] = msh.VY[v]
	}
	return
}

func (msh *Mesh) FacetCenter(f int) (x, y float64) {
	var (
		facet = msh.Facets[f]
	)
	x = 0.5 * (msh.VX[facet.V[0]] + msh.VX[facet.V[1]])
	y = 0.5 * (msh.VY[facet.V[0]] + msh.VY[facet.V[1]])
	return
}

func (msh *Mesh) FacetLength(f int) float64 {
	var (
		facet = msh.Facets[f]
		dx    = msh.VX[facet.V[1]] - msh.VX[facet.V[0]]
		dy    = msh.VY[facet.V[1]] - msh.VY[facet.V[0]]
	)
	return hypot(dx, dy)
}

// OwnedCells lists the cells of the given rank's partition strip.
func (msh *Mesh) OwnedCells(rank int) (I utils.Index) {
	for c, r := range msh.CellRank {
		if r == rank {
			I = append(I, c)
		}
	}
	return
}

// GhostCells lists cells owned elsewhere that share a facet with the given
// rank's cells. They form the one-cell ghost layer of the partition.
func (msh *Mesh) GhostCells(rank int) (I utils.Index) {
	seen := make(map[int]struct{})
	for _, facet := range msh.Facets {
		c0, c1 := facet.Cells[0], facet.Cells[1]
		if c1 == -1 {
			continue
		}
		r0, r1 := msh.CellRank[c0], msh.CellRank[c1]
		if r0 == rank && r1 != rank {
			seen[c1] = struct{}{}
		}
		if r1 == rank && r0 != rank {
			seen[c0] = struct{}{}
		}
	}
	for c := range seen {
		I = append(I, c)
	}
	sortIndex(I)
	return
}
