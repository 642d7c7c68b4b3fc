package bc

import (
	"fmt"

	"github.com/notargets/gostokes/mesh"
	"github.com/notargets/gostokes/space"
	"github.com/notargets/gostokes/utils"
)

// ValueFunc evaluates a prescribed field at a DOF's physical coordinate,
// returning one value per component.
type ValueFunc func(x, y float64) []float64

// DirichletBC maps constrained block DOF indices of one function space to
// prescribed values.
type DirichletBC struct {
	Space  *space.FunctionSpace
	Values map[int]float64
}

// Locate returns the boundary facets whose vertices all satisfy the marker.
// The marker is called once with the batch of endpoint coordinates.
func Locate(msh *mesh.Mesh, marker mesh.Marker) (facets utils.Index) {
	var (
		nb = len(msh.BoundaryFacets)
		x  = make([]float64, 2*nb)
		y  = make([]float64, 2*nb)
	)
	for i, f := range msh.BoundaryFacets {
		facet := msh.Facets[f]
		for k := 0; k < 2; k++ {
			x[2*i+k] = msh.VX[facet.V[k]]
			y[2*i+k] = msh.VY[facet.V[k]]
		}
	}
	mask := marker(x, y)
	for i, f := range msh.BoundaryFacets {
		if mask[2*i] && mask[2*i+1] {
			facets = append(facets, f)
		}
	}
	return
}

// DofsOn returns the scalar nodes of fs attached to the given facets or to
// their endpoint vertices (the topological closure of the facets).
func DofsOn(fs *space.FunctionSpace, facets utils.Index) (nodes utils.Index) {
	var (
		msh        = fs.Mesh
		wantFacet  = make(map[int]struct{}, len(facets))
		wantVertex = make(map[int]struct{}, 2*len(facets))
	)
	for _, f := range facets {
		wantFacet[f] = struct{}{}
		wantVertex[msh.Facets[f].V[0]] = struct{}{}
		wantVertex[msh.Facets[f].V[1]] = struct{}{}
	}
	for n, ent := range fs.NodeEntity {
		switch ent.Dim {
		case 0:
			if _, ok := wantVertex[ent.Index]; ok {
				nodes = append(nodes, n)
			}
		case 1:
			if _, ok := wantFacet[ent.Index]; ok {
				nodes = append(nodes, n)
			}
		}
	}
	return
}

// Constrain builds a constraint set fixing every component of the given
// nodes. A []float64 value is applied as a constant; a ValueFunc is
// evaluated at each node's physical coordinate (used for the lid velocity
// profile).
func Constrain(fs *space.FunctionSpace, nodes utils.Index, value interface{}) (b *DirichletBC, err error) {
	var (
		bs   = fs.BlockSize
		eval ValueFunc
	)
	switch val := value.(type) {
	case []float64:
		if len(val) != bs {
			err = fmt.Errorf("constraint value has %d components, space has block size %d",
				len(val), bs)
			return
		}
		eval = func(x, y float64) []float64 { return val }
	case ValueFunc:
		eval = val
	case func(x, y float64) []float64:
		eval = val
	default:
		err = fmt.Errorf("unsupported constraint value type %T", value)
		return
	}
	b = &DirichletBC{
		Space:  fs,
		Values: make(map[int]float64, len(nodes)*bs),
	}
	for _, n := range nodes {
		vals := eval(fs.NodeX[n], fs.NodeY[n])
		if len(vals) != bs {
			err = fmt.Errorf("constraint function returned %d components, space has block size %d",
				len(vals), bs)
			return
		}
		for d := 0; d < bs; d++ {
			b.Values[n*bs+d] = vals[d]
		}
	}
	return
}

// Merge unions constraint sets in call order. A DOF constrained more than
// once takes the value of the last set naming it: the policy is explicitly
// last-writer-wins, so callers control conflicts by ordering.
func Merge(bcs ...*DirichletBC) (values map[int]float64) {
	values = make(map[int]float64)
	for _, b := range bcs {
		if b == nil {
			continue
		}
		for dof, val := range b.Values {
			values[dof] = val
		}
	}
	return
}
