package stokes

import (
	"fmt"

	"github.com/notargets/gostokes/assembly"
	"github.com/notargets/gostokes/bc"
	"github.com/notargets/gostokes/element"
	"github.com/notargets/gostokes/mesh"
	"github.com/notargets/gostokes/solver"
	"github.com/notargets/gostokes/space"
)

// Pair is a stable mixed velocity/pressure element pair.
type Pair struct {
	Name     string
	Velocity element.Element
	Pressure element.Element
}

// TaylorHood is the P2/P1 pair.
func TaylorHood() (pr Pair, err error) {
	pr.Name = "TaylorHood"
	if pr.Velocity, err = element.Describe(element.Lagrange, 2, element.Vector); err != nil {
		return
	}
	pr.Pressure, err = element.Describe(element.Lagrange, 1, element.Scalar)
	return
}

// MINI is the bubble-enriched P1 velocity with P1 pressure.
func MINI() (pr Pair, err error) {
	pr.Name = "MINI"
	base, err := element.Describe(element.Lagrange, 1, element.Vector)
	if err != nil {
		return
	}
	bubble, err := element.Describe(element.Bubble, 3, element.Vector)
	if err != nil {
		return
	}
	if pr.Velocity, err = element.Enrich(base, bubble); err != nil {
		return
	}
	pr.Pressure, err = element.Describe(element.Lagrange, 1, element.Scalar)
	return
}

// CrouzeixRaviart is the nonconforming linear velocity with piecewise
// constant pressure.
func CrouzeixRaviart() (pr Pair, err error) {
	pr.Name = "CrouzeixRaviart"
	if pr.Velocity, err = element.Describe(element.NonconformingLinear, 1, element.Vector); err != nil {
		return
	}
	pr.Pressure, err = element.Describe(element.DiscontinuousGalerkin, 0, element.Scalar)
	return
}

// Pairs returns the three pairs the cavity driver exercises, in report
// order.
func Pairs() ([]Pair, error) {
	th, err := TaylorHood()
	if err != nil {
		return nil, err
	}
	mini, err := MINI()
	if err != nil {
		return nil, err
	}
	cr, err := CrouzeixRaviart()
	if err != nil {
		return nil, err
	}
	return []Pair{th, mini, cr}, nil
}

// PairByName resolves a pair from its configuration name.
func PairByName(name string) (Pair, error) {
	switch name {
	case "TaylorHood", "taylor-hood", "th":
		return TaylorHood()
	case "MINI", "mini":
		return MINI()
	case "CrouzeixRaviart", "crouzeix-raviart", "cr":
		return CrouzeixRaviart()
	}
	return Pair{}, fmt.Errorf("unknown element pair %q", name)
}

// NoslipBoundary marks the left, right and bottom walls of the cavity
// [p0, p1].
func NoslipBoundary(p0, p1 [2]float64) mesh.Marker {
	return func(x, y []float64) []bool {
		mask := make([]bool, len(x))
		for i := range mask {
			mask[i] = mesh.IsClose(x[i], p0[0]) ||
				mesh.IsClose(x[i], p1[0]) ||
				mesh.IsClose(y[i], p0[1])
		}
		return mask
	}
}

// Lid marks the top wall, where the driven velocity is imposed.
func Lid(p0, p1 [2]float64) mesh.Marker {
	return func(x, y []float64) []bool {
		mask := make([]bool, len(x))
		for i := range mask {
			mask[i] = mesh.IsClose(y[i], p1[1])
		}
		return mask
	}
}

// LidVelocity is the unit tangential drive along the lid.
func LidVelocity(x, y float64) []float64 { return []float64{1, 0} }

// Scenario configures a lid-driven cavity run.
type Scenario struct {
	P0        [2]float64 `json:"domain_min"`
	P1        [2]float64 `json:"domain_max"`
	Divisions [2]int     `json:"divisions"`
	Pairs     []string   `json:"pairs"`
}

// DefaultScenario is the unit cavity on a 16x16 grid with all three pairs.
func DefaultScenario() Scenario {
	return Scenario{
		P0:        [2]float64{0, 0},
		P1:        [2]float64{1, 1},
		Divisions: [2]int{16, 16},
		Pairs:     []string{"TaylorHood", "MINI", "CrouzeixRaviart"},
	}
}

// Result reports the solution norms of one pair on one mesh.
type Result struct {
	Pair                string
	VelocityDofs        int
	PressureDofs        int
	UCoeffNorm, UL2Norm float64
	PCoeffNorm, PL2Norm float64
}

func (r Result) String() string {
	return fmt.Sprintf("%-16s ndofs (%d, %d)  |u|=%.6e  |p|=%.6e  ||u||_L2=%.6e  ||p||_L2=%.6e",
		r.Pair, r.VelocityDofs, r.PressureDofs,
		r.UCoeffNorm, r.PCoeffNorm, r.UL2Norm, r.PL2Norm)
}

// SolveCavity assembles and solves the lid-driven cavity for one element
// pair on msh and evaluates the solution norms.
func SolveCavity(msh *mesh.Mesh, pr Pair) (res Result, err error) {
	res.Pair = pr.Name

	V, err := space.Build(msh, pr.Velocity)
	if err != nil {
		return
	}
	Q, err := space.Build(msh, pr.Pressure)
	if err != nil {
		return
	}
	res.VelocityDofs = V.NumDofs()
	res.PressureDofs = Q.NumDofs()

	p0, p1 := extents(msh)
	bcs, err := cavityBCs(msh, V, p0, p1)
	if err != nil {
		return
	}

	op, rhs, err := assembly.Assemble(V, Q, assembly.Options{BCs: bcs})
	if err != nil {
		return
	}
	if err = assembly.AttachPressureNullspace(op, V, Q); err != nil {
		return
	}

	x, err := solver.NewDirect().Solve(op, rhs)
	if err != nil {
		return
	}

	u, p, err := Split(x, V, Q)
	if err != nil {
		return
	}
	u.ScatterForward()
	p.ScatterForward()

	res.UCoeffNorm = u.CoefficientNorm()
	res.PCoeffNorm = p.CoefficientNorm()
	if res.UL2Norm, err = u.L2Norm(); err != nil {
		return
	}
	res.PL2Norm, err = p.L2Norm()
	return
}

// extents recovers the bounding box of the rectangle mesh for the wall
// markers.
func extents(msh *mesh.Mesh) (p0, p1 [2]float64) {
	p0 = [2]float64{msh.VX[0], msh.VY[0]}
	p1 = p0
	for i := range msh.VX {
		p0[0] = min(p0[0], msh.VX[i])
		p0[1] = min(p0[1], msh.VY[i])
		p1[0] = max(p1[0], msh.VX[i])
		p1[1] = max(p1[1], msh.VY[i])
	}
	return
}

// cavityBCs builds the no-slip and lid Dirichlet constraints on V.
func cavityBCs(msh *mesh.Mesh, V *space.FunctionSpace, p0, p1 [2]float64) (bcs []*bc.DirichletBC, err error) {
	noslipFacets := bc.Locate(msh, NoslipBoundary(p0, p1))
	lidFacets := bc.Locate(msh, Lid(p0, p1))

	noslip, err := bc.Constrain(V, bc.DofsOn(V, noslipFacets), []float64{0, 0})
	if err != nil {
		return
	}
	lid, err := bc.Constrain(V, bc.DofsOn(V, lidFacets), LidVelocity)
	if err != nil {
		return
	}
	bcs = []*bc.DirichletBC{noslip, lid}
	return
}

// Run solves the scenario for every configured pair on a shared mesh. A
// failed pair is reported in place and does not stop the remaining pairs.
func Run(sc Scenario, comm mesh.Comm) (results []Result, errs []error, err error) {
	msh, err := mesh.Rectangle(sc.P0, sc.P1, sc.Divisions, mesh.Triangle, comm)
	if err != nil {
		return
	}
	for _, name := range sc.Pairs {
		pr, perr := PairByName(name)
		if perr != nil {
			errs = append(errs, perr)
			results = append(results, Result{Pair: name})
			continue
		}
		res, serr := SolveCavity(msh, pr)
		errs = append(errs, serr)
		results = append(results, res)
	}
	return
}
