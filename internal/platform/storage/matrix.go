package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"RMDB/internal/domain"
	"RMDB/internal/platform/utils"
)

// Matrix is a square integer matrix stored as a grid of m×m tiles,
// one block file per tile. The tile at linear index
// i*concurrentBlocks+j covers rows [i*m, (i+1)*m) and columns
// [j*m, (j+1)*m), clipped at the border.
type Matrix struct {
	eng *Engine

	name       string
	sourceFile string

	dimension        int
	m                int
	concurrentBlocks int
	blockCount       int
	dimsPerBlock     [][2]int // (rows, cols) per linear tile index

	symmetric *bool // nil until SYMMETRY has run
}

// NewMatrix prepares a matrix whose source is <data>/<name>.csv.
func (e *Engine) NewMatrix(name string) *Matrix {
	return &Matrix{
		eng:        e,
		name:       name,
		sourceFile: e.CSVPath(name),
	}
}

// newDerivedMatrix prepares an assignment result sharing the source
// matrix's geometry. Its blocks are written by the caller.
func (e *Engine) newDerivedMatrix(name string, src *Matrix) *Matrix {
	dims := make([][2]int, len(src.dimsPerBlock))
	copy(dims, src.dimsPerBlock)
	return &Matrix{
		eng:              e,
		name:             name,
		sourceFile:       e.TempCSVPath(name),
		dimension:        src.dimension,
		m:                src.m,
		concurrentBlocks: src.concurrentBlocks,
		blockCount:       src.blockCount,
		dimsPerBlock:     dims,
	}
}

func (mx *Matrix) Name() string              { return mx.name }
func (mx *Matrix) Kind() domain.RelationKind { return domain.KindMatrix }
func (mx *Matrix) Dimension() int            { return mx.dimension }
func (mx *Matrix) TileSide() int             { return mx.m }
func (mx *Matrix) ConcurrentBlocks() int     { return mx.concurrentBlocks }
func (mx *Matrix) BlockCount() int           { return mx.blockCount }

// TileDims returns the (rows, cols) of one tile.
func (mx *Matrix) TileDims(index int) (int, int) {
	d := mx.dimsPerBlock[index]
	return d[0], d[1]
}

// Load reads the source CSV and blockifies it into tiles. Every line
// is a data row; the dimension is the comma count of the first line
// plus one.
func (mx *Matrix) Load() error {
	if err := mx.extractDimension(); err != nil {
		return err
	}
	return mx.blockify()
}

func (mx *Matrix) extractDimension() error {
	f, err := os.Open(mx.sourceFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", mx.sourceFile, err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return domain.ErrEmptySource
	}
	mx.dimension = strings.Count(scanner.Text(), ",") + 1
	return nil
}

func (mx *Matrix) blockDimensions() error {
	side, err := mx.eng.policy.TileSide()
	if err != nil {
		return err
	}
	mx.m = side
	mx.concurrentBlocks = (mx.dimension + mx.m - 1) / mx.m
	return nil
}

// blockify distributes each CSV row across a stripe of
// concurrentBlocks working tiles: column c goes to tile c/m at local
// column c mod m. A full stripe (m rows, or fewer at EOF) flushes all
// of its tiles at once, completing one row-stripe per linear pass.
func (mx *Matrix) blockify() error {
	f, err := os.Open(mx.sourceFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", mx.sourceFile, err)
	}
	defer f.Close()
	if err := mx.blockDimensions(); err != nil {
		return err
	}

	grids := make([][][]int32, mx.concurrentBlocks)
	for i := range grids {
		grids[i] = make([][]int32, mx.m)
		for r := range grids[i] {
			grids[i][r] = make([]int32, mx.m)
		}
	}

	rowIndex, rowsRead := 0, 0
	flushStripe := func() {
		for i := 0; i < mx.concurrentBlocks; i++ {
			colSize := mx.m
			if i == mx.concurrentBlocks-1 && mx.dimension%mx.m != 0 {
				colSize = mx.dimension % mx.m
			}
			mx.eng.bm.WritePage(mx.name, mx.blockCount, grids[i], rowIndex, colSize)
			mx.dimsPerBlock = append(mx.dimsPerBlock, [2]int{rowIndex, colSize})
			mx.blockCount++
		}
		rowIndex = 0
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := utils.ParseRow(line)
		if err != nil {
			return err
		}
		if len(row) != mx.dimension {
			return fmt.Errorf("%w: expected %d cells, got %d", domain.ErrParse, mx.dimension, len(row))
		}
		for c, v := range row {
			grids[c/mx.m][rowIndex][c%mx.m] = v
		}
		rowIndex++
		rowsRead++
		if rowIndex == mx.m {
			flushStripe()
		}
	}
	if rowIndex > 0 {
		flushStripe()
	}
	if rowsRead == 0 {
		return domain.ErrEmptySource
	}
	return nil
}

func (mx *Matrix) tileIndex(i, j int) int {
	return i*mx.concurrentBlocks + j
}

func (mx *Matrix) getTile(i, j int) (*Page, error) {
	idx := mx.tileIndex(i, j)
	rows, cols := mx.TileDims(idx)
	return mx.eng.bm.GetPage(mx.name, idx, rows, cols)
}

// tilePair acquires the (i,j) and (j,i) tiles together. The first
// tile is re-acquired after the second: with pool capacity ≥ 2, FIFO
// cannot have evicted the second during that re-acquisition, so both
// pointers are resident on return.
func (mx *Matrix) tilePair(i, j int) (*Page, *Page, error) {
	if _, err := mx.getTile(i, j); err != nil {
		return nil, nil, err
	}
	b, err := mx.getTile(j, i)
	if err != nil {
		return nil, nil, err
	}
	a, err := mx.getTile(i, j)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Transpose flips the matrix in place, tile by tile: diagonal tiles
// transpose within themselves, off-diagonal pairs swap-and-transpose.
// Dirty tiles write back on eviction. A matrix known to be symmetric
// is its own transpose, so the walk is skipped.
func (mx *Matrix) Transpose() error {
	if mx.symmetric != nil && *mx.symmetric {
		return nil
	}
	for i := 0; i < mx.concurrentBlocks; i++ {
		tile, err := mx.getTile(i, i)
		if err != nil {
			return err
		}
		tile.Transpose()
		for j := i + 1; j < mx.concurrentBlocks; j++ {
			a, b, err := mx.tilePair(i, j)
			if err != nil {
				return err
			}
			a.TransposeWith(b)
		}
	}
	return nil
}

// Symmetry checks M == Mᵀ and caches the verdict. Diagonal tiles are
// compared against themselves above their diagonal; each off-diagonal
// pair is compared once over the full bounds of the (i,j) tile, which
// covers both triangles of the matrix. The first mismatch
// short-circuits.
func (mx *Matrix) Symmetry() (bool, error) {
	if mx.symmetric != nil {
		return *mx.symmetric, nil
	}
	result, err := mx.checkSymmetry()
	if err != nil {
		return false, err
	}
	mx.symmetric = &result
	return result, nil
}

func (mx *Matrix) checkSymmetry() (bool, error) {
	for i := 0; i < mx.concurrentBlocks; i++ {
		tile, err := mx.getTile(i, i)
		if err != nil {
			return false, err
		}
		for k := 0; k < tile.Rows(); k++ {
			for l := k + 1; l < tile.Cols(); l++ {
				if tile.Get(k, l) != tile.Get(l, k) {
					return false, nil
				}
			}
		}
		for j := i + 1; j < mx.concurrentBlocks; j++ {
			a, b, err := mx.tilePair(i, j)
			if err != nil {
				return false, err
			}
			for k := 0; k < a.Rows(); k++ {
				for l := 0; l < a.Cols(); l++ {
					if a.Get(k, l) != b.Get(l, k) {
						return false, nil
					}
				}
			}
		}
	}
	return true, nil
}

// Compute materializes target = M − Mᵀ as a fresh matrix. Every tile
// is copied, the subtraction applied to the copy, and the copy written
// under the target's name; the source matrix is untouched.
func (mx *Matrix) Compute(targetName string) (*Matrix, error) {
	target := mx.eng.newDerivedMatrix(targetName, mx)
	for i := 0; i < mx.concurrentBlocks; i++ {
		tile, err := mx.getTile(i, i)
		if err != nil {
			return nil, err
		}
		idx := mx.tileIndex(i, i)
		clone := NewPage(targetName, idx, tile.CloneCells(), tile.Rows(), tile.Cols(), "")
		clone.SubtractTranspose()
		mx.eng.bm.WritePage(targetName, idx, clone.cells, clone.rowCount, clone.colCount)
		for j := i + 1; j < mx.concurrentBlocks; j++ {
			a, b, err := mx.tilePair(i, j)
			if err != nil {
				return nil, err
			}
			aIdx, bIdx := mx.tileIndex(i, j), mx.tileIndex(j, i)
			cloneA := NewPage(targetName, aIdx, a.CloneCells(), a.Rows(), a.Cols(), "")
			cloneB := NewPage(targetName, bIdx, b.CloneCells(), b.Rows(), b.Cols(), "")
			cloneA.SubtractTransposeWith(cloneB)
			mx.eng.bm.WritePage(targetName, aIdx, cloneA.cells, cloneA.rowCount, cloneA.colCount)
			mx.eng.bm.WritePage(targetName, bIdx, cloneB.cells, cloneB.rowCount, cloneB.colCount)
		}
	}
	return target, nil
}

// assembleRow builds one logical matrix row from its stripe of tiles,
// clipped to width cols.
func (mx *Matrix) assembleRow(r, cols int) (domain.Row, error) {
	stripe := r / mx.m
	local := r % mx.m
	row := make(domain.Row, 0, cols)
	for j := 0; j*mx.m < cols; j++ {
		tile, err := mx.getTile(stripe, j)
		if err != nil {
			return nil, err
		}
		width := min(tile.Cols(), cols-j*mx.m)
		for l := 0; l < width; l++ {
			row = append(row, tile.Get(local, l))
		}
	}
	return row, nil
}

// Print writes a PRINT_COUNT×PRINT_COUNT window, space-separated, and
// a dimension trailer.
func (mx *Matrix) Print(w io.Writer) error {
	count := min(mx.eng.policy.PrintCount, mx.dimension)
	for r := 0; r < count; r++ {
		row, err := mx.assembleRow(r, count)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, utils.FormatRow(row, " "))
	}
	fmt.Fprintf(w, "\nRow Count: %d\n", mx.dimension)
	return nil
}

// GetCursor opens a tile cursor. Sequential iteration over a matrix
// is not row-coherent across tiles, so the cursor seeks explicitly.
func (mx *Matrix) GetCursor() (*Cursor, error) {
	return newCursor(mx.eng.bm, mx.name, mx.blockCount, func(i int) (int, int) {
		return mx.dimsPerBlock[i][0], mx.dimsPerBlock[i][1]
	}, false)
}

func (mx *Matrix) IsPermanent() bool {
	return mx.sourceFile == mx.eng.CSVPath(mx.name)
}

// MakePermanent exports the matrix to <data>/<name>.csv in the same
// comma form LOAD accepts, making that file the new source.
func (mx *Matrix) MakePermanent() error {
	if !mx.IsPermanent() {
		mx.eng.bm.DeleteFile(mx.sourceFile)
	}
	path := mx.eng.CSVPath(mx.name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for r := 0; r < mx.dimension; r++ {
		row, err := mx.assembleRow(r, mx.dimension)
		if err != nil {
			f.Close()
			return err
		}
		fmt.Fprintln(w, utils.FormatRow(row, ", "))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	mx.sourceFile = path
	return nil
}

// Rename moves every tile file and resident page to the new name.
func (mx *Matrix) Rename(newName string) error {
	for i := 0; i < mx.blockCount; i++ {
		mx.eng.bm.RenamePage(mx.name, newName, i)
	}
	mx.eng.bm.RenamePages(mx.name, newName)
	if !mx.IsPermanent() {
		newSource := mx.eng.TempCSVPath(newName)
		mx.eng.bm.RenameFile(mx.sourceFile, newSource)
		mx.sourceFile = newSource
	}
	mx.name = newName
	return nil
}

// Unload removes the matrix's tile files and temporary CSV, and drops
// its resident pages.
func (mx *Matrix) Unload() {
	mx.eng.bm.DropPages(mx.name)
	for i := 0; i < mx.blockCount; i++ {
		mx.eng.bm.DeletePage(mx.name, i)
	}
	if !mx.IsPermanent() {
		mx.eng.bm.DeleteFile(mx.sourceFile)
	}
}
