package storage

import "RMDB/internal/domain"

// cellSize is the on-disk accounting size of one cell (32-bit integer).
const cellSize = 4

// Policy fixes the block geometry and pool capacity for one engine.
// Carrying it on the engine instead of process-wide constants lets
// the geometry vary per engine instance.
type Policy struct {
	BlockSizeBytes int // block size; 1000 bytes per nominal KB
	BlockCount     int // buffer pool capacity in pages
	PrintCount     int // rows/columns shown by PRINT
}

var DefaultPolicy = Policy{
	BlockSizeBytes: 1000,
	BlockCount:     4,
	PrintCount:     20,
}

// CapacityCells is the number of cells one block can hold.
func (p Policy) CapacityCells() int {
	return p.BlockSizeBytes / cellSize
}

// MaxRowsPerBlock returns how many rows of the given width fit in a
// block. Zero means the block cannot hold a single row.
func (p Policy) MaxRowsPerBlock(columnCount int) int {
	if columnCount == 0 {
		return 0
	}
	return p.CapacityCells() / columnCount
}

// TileSide returns the largest m with m*m <= CapacityCells. Computed
// with an integer correction loop to avoid floating-point drift.
func (p Policy) TileSide() (int, error) {
	total := p.CapacityCells()
	c := 0
	for (c+1)*(c+1) <= total {
		c++
	}
	if c == 0 {
		return 0, domain.ErrCapacity
	}
	return c, nil
}

func (p Policy) Validate() error {
	if p.CapacityCells() < 1 {
		return domain.ErrCapacity
	}
	if p.BlockCount < 2 {
		// pair operations reserve two pages at once
		return domain.ErrCapacity
	}
	return nil
}
