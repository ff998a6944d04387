// Package heat tracks relative key press frequency across a keyboard matrix.
package heat

// safetyCeiling triggers an immediate decay when the running maximum gets this
// close to the top of the uint16 range. In practice the precision threshold in
// ShouldDecay fires long before this one, but both are kept: the ceiling is
// what actually guarantees a counter can never wrap.
const safetyCeiling = 1<<15 - 1

// Counter is a grid of per-key press counters with a running maximum.
//
// A Counter is owned by a single goroutine; it does no locking. Cell indices
// are the caller's contract and are not range-checked beyond the bounds check
// of the underlying slice.
type Counter struct {
	cells   []uint16
	rows    int
	cols    int
	highest uint16
	levels  int
}

// NewCounter creates a zeroed counter grid. levels is the number of gradient
// stops the heat values will be mapped onto; it drives the decay threshold.
func NewCounter(rows, cols, levels int) *Counter {
	return &Counter{
		cells:   make([]uint16, rows*cols),
		rows:    rows,
		cols:    cols,
		highest: 1, // never 0, cells are normalized by it
		levels:  levels,
	}
}

// Rows returns the number of rows in the grid.
func (c *Counter) Rows() int { return c.rows }

// Cols returns the number of columns in the grid.
func (c *Counter) Cols() int { return c.cols }

// Highest returns the running maximum over all cells. It is always at least 1.
func (c *Counter) Highest() uint16 { return c.highest }

// At returns the raw count for the given cell.
func (c *Counter) At(row, col int) uint16 {
	return c.cells[row*c.cols+col]
}

// Norm returns the cell's count relative to the running maximum, in [0, 1].
func (c *Counter) Norm(row, col int) float64 {
	return float64(c.At(row, col)) / float64(c.highest)
}

// Hit records one key press for the given cell. If the cell becomes the new
// maximum and sits at the safety ceiling, every counter is halved on the spot
// so that nothing can overflow.
func (c *Counter) Hit(row, col int) {
	i := row*c.cols + col
	c.cells[i]++

	if c.highest < c.cells[i] {
		c.highest = c.cells[i]

		if c.highest >= safetyCeiling {
			c.Decay()
		}
	}
}

// ShouldDecay reports whether the running maximum has outgrown the resolution
// the gradient needs. Halving at levels×512 keeps the maximum at or below
// levels×256 afterwards, which leaves 256 distinct heat values between
// adjacent gradient stops.
func (c *Counter) ShouldDecay() bool {
	return int(c.highest) > c.levels<<9
}

// Decay halves every cell and the running maximum. Relative ordering of hot
// and cold keys is preserved within one halving step.
func (c *Counter) Decay() {
	for i := range c.cells {
		c.cells[i] >>= 1
	}
	if c.highest >>= 1; c.highest == 0 {
		c.highest = 1 // keep the normalization divisor valid
	}
}

// SetLevels updates the gradient stop count the decay threshold scales with.
func (c *Counter) SetLevels(levels int) {
	c.levels = levels
}
