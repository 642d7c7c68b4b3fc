package assembly

import "fmt"

// Constant is a small shape-checked value container for coefficients that
// are uniform over the mesh, such as the body force or Neumann data. The
// shape is fixed at construction: scalars have an empty shape, vectors shape
// [n], tensors shape [r, c].
type Constant struct {
	shape []int
	value []float64
}

// NewConstant accepts a float64, []float64 or [][]float64 value.
func NewConstant(value interface{}) (c *Constant, err error) {
	c = &Constant{}
	switch val := value.(type) {
	case float64:
		c.value = []float64{val}
	case []float64:
		if len(val) == 0 {
			err = fmt.Errorf("empty constant value")
			return
		}
		c.shape = []int{len(val)}
		c.value = append([]float64(nil), val...)
	case [][]float64:
		if len(val) == 0 || len(val[0]) == 0 {
			err = fmt.Errorf("empty constant value")
			return
		}
		nc := len(val[0])
		c.shape = []int{len(val), nc}
		for _, row := range val {
			if len(row) != nc {
				err = fmt.Errorf("ragged tensor constant: row of length %d, want %d", len(row), nc)
				return
			}
			c.value = append(c.value, row...)
		}
	default:
		err = fmt.Errorf("unsupported constant value type %T", value)
	}
	return
}

// Shape returns the value's shape: empty for scalars.
func (c *Constant) Shape() []int { return c.shape }

// Value returns the flat value array, row-major for tensors.
func (c *Constant) Value() []float64 { return c.value }

// Set replaces the value. The replacement must have the shape fixed at
// construction.
func (c *Constant) Set(value interface{}) (err error) {
	repl, err := NewConstant(value)
	if err != nil {
		return
	}
	if len(repl.shape) != len(c.shape) {
		return fmt.Errorf("constant shape is fixed: have rank %d, got rank %d",
			len(c.shape), len(repl.shape))
	}
	for i := range c.shape {
		if repl.shape[i] != c.shape[i] {
			return fmt.Errorf("constant shape is fixed: have %v, got %v", c.shape, repl.shape)
		}
	}
	copy(c.value, repl.value)
	return
}

// Float64 converts a scalar constant, failing for any other shape.
func (c *Constant) Float64() (val float64, err error) {
	if len(c.shape) != 0 {
		err = fmt.Errorf("constant of shape %v is not a scalar", c.shape)
		return
	}
	val = c.value[0]
	return
}
