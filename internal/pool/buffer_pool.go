package pool

import (
	"sync"
)

// RowPool implements a pool of int slices used as edit-distance rows
type RowPool struct {
	pool sync.Pool
	size int
}

// NewRowPool creates a new row pool whose fresh rows have the given capacity
func NewRowPool(size int) *RowPool {
	return &RowPool{
		pool: sync.Pool{
			New: func() interface{} {
				row := make([]int, 0, size)
				return &row
			},
		},
		size: size,
	}
}

// Get retrieves a row of length n from the pool, growing it when the pooled
// capacity is too small. The contents are not zeroed.
func (rp *RowPool) Get(n int) *[]int {
	row := rp.pool.Get().(*[]int)
	if cap(*row) < n {
		*row = make([]int, n)
		return row
	}
	*row = (*row)[:n]
	return row
}

// Put returns a row to the pool for reuse
func (rp *RowPool) Put(row *[]int) {
	// Reset length but keep capacity
	*row = (*row)[:0]
	rp.pool.Put(row)
}

// Rows is the process-wide pool shared by all distance computations.
var Rows = NewRowPool(256)
