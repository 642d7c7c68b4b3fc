package assembly

import (
	"fmt"
	"math"

	"github.com/notargets/gostokes/utils"
)

type BlockKey struct {
	Row, Col int
}

// BlockOperator is a square sparse operator partitioned by physical field.
// Blocks are stored in a sparse map: a missing block is structurally absent,
// which is distinct from a block of zeros (the pressure-pressure block of
// the Stokes system is never created).
type BlockOperator struct {
	sizes   []int
	offsets []int
	blocks  map[BlockKey]utils.DOK

	// NullSpace holds the near-null-space basis attached after assembly,
	// normalized and verified. Solvers must honor it.
	NullSpace []utils.Vector
}

func NewBlockOperator(sizes ...int) (op *BlockOperator) {
	op = &BlockOperator{
		sizes:   sizes,
		offsets: make([]int, len(sizes)+1),
		blocks:  make(map[BlockKey]utils.DOK),
	}
	for i, size := range sizes {
		op.offsets[i+1] = op.offsets[i] + size
	}
	return
}

func (op *BlockOperator) NumBlocks() int   { return len(op.sizes) }
func (op *BlockOperator) Size(i int) int   { return op.sizes[i] }
func (op *BlockOperator) Offset(i int) int { return op.offsets[i] }

// Dim is the total dimension of the flat index space.
func (op *BlockOperator) Dim() int { return op.offsets[len(op.sizes)] }

// NewBlock creates and registers block (i, j).
func (op *BlockOperator) NewBlock(i, j int) utils.DOK {
	key := BlockKey{i, j}
	if _, exists := op.blocks[key]; exists {
		panic(fmt.Errorf("block (%d,%d) already present", i, j))
	}
	blk := utils.NewDOK(op.sizes[i], op.sizes[j])
	op.blocks[key] = blk
	return blk
}

// Block returns block (i, j) and whether it is structurally present.
func (op *BlockOperator) Block(i, j int) (blk utils.DOK, present bool) {
	blk, present = op.blocks[BlockKey{i, j}]
	return
}

// DoNonZero visits every stored entry across all present blocks using flat
// row/column indices.
func (op *BlockOperator) DoNonZero(fn func(i, j int, v float64)) {
	for key, blk := range op.blocks {
		var (
			ro = op.offsets[key.Row]
			co = op.offsets[key.Col]
		)
		blk.DoNonZero(func(i, j int, v float64) {
			fn(ro+i, co+j, v)
		})
	}
}

// MulVec computes y = A*x over the flat index space.
func (op *BlockOperator) MulVec(x utils.Vector) (y utils.Vector) {
	if x.Len() != op.Dim() {
		panic(fmt.Errorf("MulVec dimension mismatch: operator dim %d, len(x) = %d",
			op.Dim(), x.Len()))
	}
	y = utils.NewVector(op.Dim())
	var (
		yd = y.Data()
		xd = x.Data()
	)
	op.DoNonZero(func(i, j int, v float64) {
		yd[i] += v * xd[j]
	})
	return
}

// NormFrobenius is the Frobenius norm over all present blocks.
func (op *BlockOperator) NormFrobenius() (n float64) {
	op.DoNonZero(func(i, j int, v float64) {
		n += v * v
	})
	n = math.Sqrt(n)
	return
}

// DiagScale is the mean magnitude of stored diagonal entries, used to scale
// identity rows consistently with the operator. Falls back to 1 when the
// diagonal is empty.
func (op *BlockOperator) DiagScale() (scale float64) {
	var count int
	op.DoNonZero(func(i, j int, v float64) {
		if i == j {
			scale += math.Abs(v)
			count++
		}
	})
	if count == 0 {
		return 1.
	}
	scale /= float64(count)
	return
}
