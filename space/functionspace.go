package space

import (
	"fmt"
	"sort"

	"github.com/notargets/gostokes/element"
	"github.com/notargets/gostokes/mesh"
	"github.com/notargets/gostokes/utils"
)

// Entity locates the mesh entity a DOF node sits on: dim 0 = vertex,
// dim 1 = facet, dim 2 = cell interior.
type Entity struct {
	Dim   int
	Index int
}

// FunctionSpace binds an element descriptor to a mesh, producing the
// cell -> global DOF map, a gapless global node numbering, per-node physical
// coordinates and the owned/ghost split per partition rank. Immutable after
// Build.
type FunctionSpace struct {
	Mesh    *mesh.Mesh
	Element element.Element
	Layout  element.DofLayout
	Basis   element.Basis

	// BlockSize is the number of components per scalar node: 1 for scalar
	// spaces, the mesh dimension for vector spaces.
	BlockSize int

	NumNodes     int
	CellNodes    [][]int // scalar node indices per cell, basis ordering
	NodeEntity   []Entity
	NodeX, NodeY []float64
	NodeOwner    []int

	ownedNodes []int // per rank
}

// Build computes the DOF map for el on msh. Fails with
// UnsupportedElementError for family/degree combinations outside the layout
// table.
func Build(msh *mesh.Mesh, el element.Element) (fs *FunctionSpace, err error) {
	layout, err := element.LayoutOf(el)
	if err != nil {
		return
	}
	basis, err := element.NewBasis(el)
	if err != nil {
		return
	}
	fs = &FunctionSpace{
		Mesh:      msh,
		Element:   el,
		Layout:    layout,
		Basis:     basis,
		BlockSize: 1,
	}
	if el.Rank == element.Vector {
		fs.BlockSize = msh.Dim
	}
	if layout.PerVertex > 1 || layout.PerFacet > 1 || layout.PerCell > 1 {
		err = fmt.Errorf("per-entity DOF multiplicity > 1 not supported: %+v", layout)
		return
	}
	fs.number()
	fs.locateNodes()
	fs.assignOwners()
	return
}

// number lays out the gapless global node numbering: vertex nodes, then
// facet nodes, then cell-interior nodes.
func (fs *FunctionSpace) number() {
	var (
		msh         = fs.Mesh
		layout      = fs.Layout
		facetOffset = 0
		cellOffset  = 0
		numNodes    = 0
	)
	if layout.PerVertex == 1 {
		facetOffset = msh.NumVerts()
		numNodes += msh.NumVerts()
	}
	cellOffset = facetOffset
	if layout.PerFacet == 1 {
		cellOffset += msh.NumFacets()
		numNodes += msh.NumFacets()
	}
	if layout.PerCell == 1 {
		numNodes += msh.NumCells()
	}
	fs.NumNodes = numNodes
	fs.CellNodes = make([][]int, msh.NumCells())
	for c := 0; c < msh.NumCells(); c++ {
		nodes := make([]int, 0, layout.NumDofs())
		if layout.PerVertex == 1 {
			for k := 0; k < 3; k++ {
				nodes = append(nodes, msh.EToV[c][k])
			}
		}
		if layout.PerFacet == 1 {
			for k := 0; k < 3; k++ {
				nodes = append(nodes, facetOffset+msh.CellFacets[c][k])
			}
		}
		if layout.PerCell == 1 {
			nodes = append(nodes, cellOffset+c)
		}
		fs.CellNodes[c] = nodes
	}
}

func (fs *FunctionSpace) locateNodes() {
	var (
		msh    = fs.Mesh
		layout = fs.Layout
	)
	fs.NodeEntity = make([]Entity, fs.NumNodes)
	fs.NodeX = make([]float64, fs.NumNodes)
	fs.NodeY = make([]float64, fs.NumNodes)
	n := 0
	if layout.PerVertex == 1 {
		for v := 0; v < msh.NumVerts(); v++ {
			fs.NodeEntity[n] = Entity{Dim: 0, Index: v}
			fs.NodeX[n], fs.NodeY[n] = msh.VX[v], msh.VY[v]
			n++
		}
	}
	if layout.PerFacet == 1 {
		for f := 0; f < msh.NumFacets(); f++ {
			fs.NodeEntity[n] = Entity{Dim: 1, Index: f}
			fs.NodeX[n], fs.NodeY[n] = msh.FacetCenter(f)
			n++
		}
	}
	if layout.PerCell == 1 {
		for c := 0; c < msh.NumCells(); c++ {
			X, Y := msh.CellCoords(c)
			fs.NodeEntity[n] = Entity{Dim: 2, Index: c}
			fs.NodeX[n] = (X[0] + X[1] + X[2]) / 3.
			fs.NodeY[n] = (Y[0] + Y[1] + Y[2]) / 3.
			n++
		}
	}
}

// assignOwners gives each shared node to the lowest rank whose cells touch
// it; interior nodes go to their cell's rank.
func (fs *FunctionSpace) assignOwners() {
	var (
		msh = fs.Mesh
		NP  = msh.Comm().Size()
	)
	fs.NodeOwner = make([]int, fs.NumNodes)
	for n := range fs.NodeOwner {
		fs.NodeOwner[n] = NP
	}
	for c, nodes := range fs.CellNodes {
		rank := msh.CellRank[c]
		for _, n := range nodes {
			if rank < fs.NodeOwner[n] {
				fs.NodeOwner[n] = rank
			}
		}
	}
	fs.ownedNodes = make([]int, NP)
	for _, owner := range fs.NodeOwner {
		if owner == NP {
			panic(fmt.Errorf("node without an owning cell"))
		}
		fs.ownedNodes[owner]++
	}
}

// NumDofs is the global DOF count of the space.
func (fs *FunctionSpace) NumDofs() int { return fs.NumNodes * fs.BlockSize }

// LocalSize is the count of DOFs owned by rank.
func (fs *FunctionSpace) LocalSize(rank int) int {
	return fs.ownedNodes[rank] * fs.BlockSize
}

// GhostNodes lists nodes referenced by rank's owned cells but owned by a
// neighboring rank. Their values require a scatter after any mutation.
func (fs *FunctionSpace) GhostNodes(rank int) (I utils.Index) {
	seen := make(map[int]struct{})
	for c, nodes := range fs.CellNodes {
		if fs.Mesh.CellRank[c] != rank {
			continue
		}
		for _, n := range nodes {
			if fs.NodeOwner[n] != rank {
				seen[n] = struct{}{}
			}
		}
	}
	for n := range seen {
		I = append(I, n)
	}
	sort.Ints(I)
	return
}

// GhostSize is the count of ghost DOFs of rank.
func (fs *FunctionSpace) GhostSize(rank int) int {
	return len(fs.GhostNodes(rank)) * fs.BlockSize
}

// CellDofs expands cell c's scalar nodes into block DOF indices, components
// interleaved per node.
func (fs *FunctionSpace) CellDofs(c int) (I utils.Index) {
	var (
		bs = fs.BlockSize
	)
	I = make(utils.Index, 0, len(fs.CellNodes[c])*bs)
	for _, n := range fs.CellNodes[c] {
		for d := 0; d < bs; d++ {
			I = append(I, n*bs+d)
		}
	}
	return
}
