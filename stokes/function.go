package stokes

import (
	"fmt"
	"math"

	"github.com/notargets/gostokes/element"
	"github.com/notargets/gostokes/space"
	"github.com/notargets/gostokes/utils"
)

// Function is a coefficient function: a function space plus its DOF value
// array. After Split only the DOFs of nodes owned by the calling rank are
// populated; ScatterForward pulls the ghost-node values from the flat
// solution vector before any evaluation that walks owned cells.
type Function struct {
	Space *space.FunctionSpace
	X     utils.Vector

	src    utils.Vector // flat solution vector the coefficients came from
	offset int          // this field's offset into src
}

// NewFunction allocates a zero coefficient function on fs.
func NewFunction(fs *space.FunctionSpace) *Function {
	return &Function{Space: fs, X: utils.NewVector(fs.NumDofs())}
}

// Split carves the flat solution vector into the velocity and pressure
// coefficient functions. The split point is the velocity block size; each
// rank copies only the DOFs of its owned nodes.
func Split(x utils.Vector, V, Q *space.FunctionSpace) (u, p *Function, err error) {
	if x.Len() != V.NumDofs()+Q.NumDofs() {
		err = fmt.Errorf("solution length %d does not match %d velocity + %d pressure DOFs",
			x.Len(), V.NumDofs(), Q.NumDofs())
		return
	}
	u = extract(x, V, 0)
	p = extract(x, Q, V.NumDofs())
	return
}

func extract(x utils.Vector, fs *space.FunctionSpace, offset int) (f *Function) {
	f = NewFunction(fs)
	f.src = x
	f.offset = offset
	var (
		rank = fs.Mesh.Comm().Rank()
		bs   = fs.BlockSize
		xd   = x.Data()
		fd   = f.X.Data()
	)
	for n := 0; n < fs.NumNodes; n++ {
		if fs.NodeOwner[n] != rank {
			continue
		}
		for d := 0; d < bs; d++ {
			fd[n*bs+d] = xd[offset+n*bs+d]
		}
	}
	return
}

// ScatterForward fills the ghost-node coefficients from the source vector.
// Must run before L2Norm or any per-cell evaluation on a partitioned mesh.
func (f *Function) ScatterForward() {
	if f.src.V == nil {
		return
	}
	var (
		fs   = f.Space
		rank = fs.Mesh.Comm().Rank()
		bs   = fs.BlockSize
		xd   = f.src.Data()
		fd   = f.X.Data()
	)
	for _, n := range fs.GhostNodes(rank) {
		for d := 0; d < bs; d++ {
			fd[n*bs+d] = xd[f.offset+n*bs+d]
		}
	}
}

// Interpolate sets the coefficients from a constant slice or a pointwise
// value function, evaluated at the node coordinates.
func (f *Function) Interpolate(value func(x, y float64) []float64) error {
	var (
		fs = f.Space
		bs = fs.BlockSize
		fd = f.X.Data()
	)
	for n := 0; n < fs.NumNodes; n++ {
		v := value(fs.NodeX[n], fs.NodeY[n])
		if len(v) != bs {
			return fmt.Errorf("interpolant returned %d components, space has %d", len(v), bs)
		}
		for d := 0; d < bs; d++ {
			fd[n*bs+d] = v[d]
		}
	}
	return nil
}

// CoefficientNorm is the Euclidean norm of the global coefficient vector:
// each rank sums squares over its owned DOFs, the group reduces, every rank
// gets the same value back.
func (f *Function) CoefficientNorm() float64 {
	var (
		fs   = f.Space
		comm = fs.Mesh.Comm()
		rank = comm.Rank()
		bs   = fs.BlockSize
		fd   = f.X.Data()
		sum  float64
	)
	for n := 0; n < fs.NumNodes; n++ {
		if fs.NodeOwner[n] != rank {
			continue
		}
		for d := 0; d < bs; d++ {
			sum += fd[n*bs+d] * fd[n*bs+d]
		}
	}
	return math.Sqrt(comm.AllReduceSum(sum))
}

// L2Norm integrates |f|^2 over the rank's owned cells with a quadrature
// exact for the squared basis, reduces across the group and returns the
// square root. Requires ghost coefficients to be current.
func (f *Function) L2Norm() (nrm float64, err error) {
	var (
		fs   = f.Space
		msh  = fs.Mesh
		comm = msh.Comm()
		bs   = fs.BlockSize
		fd   = f.X.Data()
	)
	cb, err := element.Quadrature(2 * fs.Element.PolyDegree())
	if err != nil {
		return
	}
	// Basis values at the quadrature points, shared by all cells.
	phiQ := make([][]float64, cb.Nq)
	for q := 0; q < cb.Nq; q++ {
		phiQ[q], _ = fs.Basis.Eval(cb.R.V.AtVec(q), cb.S.V.AtVec(q))
	}

	var sum float64
	for _, c := range msh.OwnedCells(comm.Rank()) {
		X, Y := msh.CellCoords(c)
		detJ := (X[1]-X[0])*(Y[2]-Y[0]) - (X[2]-X[0])*(Y[1]-Y[0])
		if detJ <= 0 {
			err = fmt.Errorf("cell %d has non-positive Jacobian %g", c, detJ)
			return
		}
		nodes := fs.CellNodes[c]
		for q := 0; q < cb.Nq; q++ {
			var v2 float64
			for d := 0; d < bs; d++ {
				var v float64
				for a, n := range nodes {
					v += fd[n*bs+d] * phiQ[q][a]
				}
				v2 += v * v
			}
			sum += cb.W.V.AtVec(q) * detJ * v2
		}
	}
	nrm = math.Sqrt(comm.AllReduceSum(sum))
	return
}
