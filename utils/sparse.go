package utils

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// Accumulate adds val into entry (i,j). Cell-local contributions are
// additive, so this is the assembly primitive.
func (m DOK) Accumulate(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// DoNonZero visits every stored entry. Iteration order is unspecified.
func (m DOK) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

func (m DOK) NNZ() int { return m.M.NNZ() }

// MulVecAdd accumulates y += A*x without materializing a CSR.
func (m DOK) MulVecAdd(y []float64, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(y) != nr || len(x) != nc {
		panic(fmt.Errorf("MulVecAdd dimension mismatch: A is %dx%d, len(y) = %d, len(x) = %d",
			nr, nc, len(y), len(x)))
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
}

// NormFrobenius is the Frobenius norm over stored entries.
func (m DOK) NormFrobenius() (n float64) {
	m.M.DoNonZero(func(i, j int, v float64) {
		n += v * v
	})
	n = math.Sqrt(n)
	return
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

func (m CSR) NNZ() int { return m.M.NNZ() }

func (m CSR) MulVecAdd(y []float64, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(y) != nr || len(x) != nc {
		panic(fmt.Errorf("MulVecAdd dimension mismatch: A is %dx%d, len(y) = %d, len(x) = %d",
			nr, nc, len(y), len(x)))
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
}
