package assembly

import (
	"fmt"

	"github.com/notargets/gostokes/bc"
	"github.com/notargets/gostokes/element"
	"github.com/notargets/gostokes/space"
	"github.com/notargets/gostokes/utils"
)

// NeumannBC is the optional boundary-integral term of the linear form:
// Value is integrated against the velocity test functions over Facets.
type NeumannBC struct {
	Facets utils.Index
	Value  *Constant
}

type Options struct {
	BCs       []*bc.DirichletBC
	BodyForce *Constant // nil means zero
	Neumann   *NeumannBC
}

// Assemble evaluates the Stokes bilinear form over all mesh cells and
// builds the block operator and right-hand side:
//
//	[ ∫∇u·∇v   ∫p div v ] [u]   [∫f·v + ∮g·v]
//	[ ∫q div u     —    ] [p] = [     0     ]
//
// The pressure-pressure block is structurally absent. Dirichlet constraints
// are eliminated symmetrically: constrained rows and columns are zeroed,
// their coupling is lifted into the right-hand side, and each constrained
// DOF receives an identity row scaled with the operator diagonal.
func Assemble(V, Q *space.FunctionSpace, opts Options) (op *BlockOperator, rhs utils.Vector, err error) {
	var (
		msh = V.Mesh
		dim = msh.Dim
	)
	if Q.Mesh != msh {
		err = fmt.Errorf("velocity and pressure spaces live on different meshes")
		return
	}
	if V.BlockSize != dim || Q.BlockSize != 1 {
		err = fmt.Errorf("expected vector velocity and scalar pressure, have block sizes %d and %d",
			V.BlockSize, Q.BlockSize)
		return
	}
	var f []float64
	if opts.BodyForce != nil {
		f = opts.BodyForce.Value()
		if len(f) != dim {
			err = fmt.Errorf("body force has %d components, mesh dimension is %d", len(f), dim)
			return
		}
	}

	op = NewBlockOperator(V.NumDofs(), Q.NumDofs())
	var (
		A  = op.NewBlock(0, 0)
		B  = op.NewBlock(0, 1)
		Bt = op.NewBlock(1, 0)
	)
	rhs = utils.NewVector(op.Dim())

	// Exactness covers the highest product of basis degrees in the form.
	cb, err := element.Quadrature(2 * V.Element.PolyDegree())
	if err != nil {
		return
	}
	var (
		nv     = V.Basis.Np
		nq     = Q.Basis.Np
		vphi   = make([][]float64, cb.Nq)
		vdphi  = make([][][2]float64, cb.Nq)
		qphi   = make([][]float64, cb.Nq)
		rhsd   = rhs.Data()
		nVDofs = V.NumDofs()
		nQDofs = Q.NumDofs()
	)
	for q := 0; q < cb.Nq; q++ {
		vphi[q], vdphi[q] = V.Basis.Eval(cb.R.AtVec(q), cb.S.AtVec(q))
		qphi[q], _ = Q.Basis.Eval(cb.R.AtVec(q), cb.S.AtVec(q))
	}

	var (
		visc = make([]float64, nv*nv)
		divc = make([]float64, nv*dim*nq)
		load = make([]float64, nv)
		gx   = make([]float64, nv)
		gy   = make([]float64, nv)
	)
	for c := 0; c < msh.NumCells(); c++ {
		X, Y := msh.CellCoords(c)
		var (
			j00, j01 = X[1] - X[0], X[2] - X[0]
			j10, j11 = Y[1] - Y[0], Y[2] - Y[0]
			detJ     = j00*j11 - j01*j10
		)
		if detJ <= 0 {
			err = &SingularFormError{Cell: c, Detail: fmt.Sprintf("non-positive Jacobian %g", detJ)}
			return
		}
		oodet := 1. / detJ
		for i := range visc {
			visc[i] = 0
		}
		for i := range divc {
			divc[i] = 0
		}
		for i := range load {
			load[i] = 0
		}
		for q := 0; q < cb.Nq; q++ {
			w := cb.W.AtVec(q) * detJ
			for a := 0; a < nv; a++ {
				dr, ds := vdphi[q][a][0], vdphi[q][a][1]
				gx[a] = (j11*dr - j10*ds) * oodet
				gy[a] = (-j01*dr + j00*ds) * oodet
			}
			for a := 0; a < nv; a++ {
				for b := 0; b < nv; b++ {
					visc[a*nv+b] += w * (gx[a]*gx[b] + gy[a]*gy[b])
				}
				for k := 0; k < nq; k++ {
					divc[(a*dim+0)*nq+k] += w * gx[a] * qphi[q][k]
					divc[(a*dim+1)*nq+k] += w * gy[a] * qphi[q][k]
				}
				load[a] += w * vphi[q][a]
			}
		}
		var (
			vdofs = V.CellDofs(c)
			qdofs = Q.CellNodes[c]
		)
		for _, dof := range vdofs {
			if dof < 0 || dof >= nVDofs {
				err = &SingularFormError{Cell: c, Detail: fmt.Sprintf("velocity DOF %d out of range", dof)}
				return
			}
		}
		for _, dof := range qdofs {
			if dof < 0 || dof >= nQDofs {
				err = &SingularFormError{Cell: c, Detail: fmt.Sprintf("pressure DOF %d out of range", dof)}
				return
			}
		}
		for a := 0; a < nv; a++ {
			for d := 0; d < dim; d++ {
				row := vdofs[a*dim+d]
				for b := 0; b < nv; b++ {
					A.Accumulate(row, vdofs[b*dim+d], visc[a*nv+b])
				}
				for k := 0; k < nq; k++ {
					B.Accumulate(row, qdofs[k], divc[(a*dim+d)*nq+k])
					Bt.Accumulate(qdofs[k], row, divc[(a*dim+d)*nq+k])
				}
				if f != nil {
					rhsd[row] += load[a] * f[d]
				}
			}
		}
	}

	if opts.Neumann != nil {
		if err = addNeumann(V, opts.Neumann, rhsd); err != nil {
			return
		}
	}
	if err = eliminate(op, V, Q, opts.BCs, rhsd); err != nil {
		return
	}
	return
}

// addNeumann accumulates the ∮g·v boundary integral over the given facets
// into the velocity part of the right-hand side.
func addNeumann(V *space.FunctionSpace, nbc *NeumannBC, rhsd []float64) (err error) {
	var (
		msh = V.Mesh
		dim = msh.Dim
		g   = nbc.Value.Value()
	)
	if len(g) != dim {
		return fmt.Errorf("Neumann data has %d components, mesh dimension is %d", len(g), dim)
	}
	T, W := element.FacetQuadrature()
	for _, fidx := range nbc.Facets {
		var (
			facet  = msh.Facets[fidx]
			c      = facet.Cells[0]
			length = msh.FacetLength(fidx)
		)
		X, Y := msh.CellCoords(c)
		var (
			j00, j01 = X[1] - X[0], X[2] - X[0]
			j10, j11 = Y[1] - Y[0], Y[2] - Y[0]
			detJ     = j00*j11 - j01*j10
		)
		if detJ == 0 {
			return &SingularFormError{Cell: c, Detail: "degenerate cell on Neumann facet"}
		}
		oodet := 1. / detJ
		var (
			ax, ay = msh.VX[facet.V[0]], msh.VY[facet.V[0]]
			bx, by = msh.VX[facet.V[1]], msh.VY[facet.V[1]]
			vdofs  = V.CellDofs(c)
		)
		for q := range T {
			// physical quadrature point on the facet, pulled back to the
			// adjacent cell's reference coordinates
			px := ax + T[q]*(bx-ax)
			py := ay + T[q]*(by-ay)
			dx, dy := px-X[0], py-Y[0]
			r := (j11*dx - j01*dy) * oodet
			s := (-j10*dx + j00*dy) * oodet
			phi, _ := V.Basis.Eval(r, s)
			w := W[q] * length
			for a := range phi {
				for d := 0; d < dim; d++ {
					rhsd[vdofs[a*dim+d]] += w * g[d] * phi[a]
				}
			}
		}
	}
	return
}

// eliminate applies symmetric Dirichlet elimination over the assembled
// blocks. Constraint sets are processed in call order, later sets winning on
// conflicting DOFs.
func eliminate(op *BlockOperator, V, Q *space.FunctionSpace, bcs []*bc.DirichletBC, rhsd []float64) (err error) {
	if len(bcs) == 0 {
		return
	}
	constrained := make(map[int]float64)
	for _, b := range bcs {
		if b == nil {
			continue
		}
		var offset int
		switch b.Space {
		case V:
			offset = op.Offset(0)
		case Q:
			offset = op.Offset(1)
		default:
			return fmt.Errorf("constraint set belongs to neither the velocity nor the pressure space")
		}
		for dof, val := range b.Values {
			constrained[offset+dof] = val
		}
	}
	scale := op.DiagScale()

	// Lift constrained columns into the RHS of unconstrained rows, then
	// zero every entry in a constrained row or column.
	type entry struct {
		i, j int
	}
	var doomed []entry
	for bi := 0; bi < op.NumBlocks(); bi++ {
		for bj := 0; bj < op.NumBlocks(); bj++ {
			blk, present := op.Block(bi, bj)
			if !present {
				continue
			}
			var (
				ro = op.Offset(bi)
				co = op.Offset(bj)
			)
			blk.DoNonZero(func(i, j int, v float64) {
				_, rowC := constrained[ro+i]
				gj, colC := constrained[co+j]
				if !rowC && !colC {
					return
				}
				if colC && !rowC {
					rhsd[ro+i] -= v * gj
				}
				doomed = append(doomed, entry{i, j})
			})
			for _, e := range doomed {
				blk.Set(e.i, e.j, 0)
			}
			doomed = doomed[:0]
		}
	}
	for dof, val := range constrained {
		bi := 0
		for op.Offset(bi+1) <= dof {
			bi++
		}
		blk, present := op.Block(bi, bi)
		if !present {
			blk = op.NewBlock(bi, bi)
		}
		local := dof - op.Offset(bi)
		blk.Set(local, local, scale)
		rhsd[dof] = scale * val
	}
	return
}
