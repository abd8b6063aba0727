package storage

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"

	"RMDB/internal/domain"
)

// Page is one resident block: a rectangular grid of cells belonging to
// a named relation. The serialized form is plain text, one row per
// line, cells separated by single spaces.
type Page struct {
	owner    string
	index    int
	path     string
	rowCount int
	colCount int
	cells    [][]int32
	dirty    bool
}

// NewPage builds an in-memory page from a grid. Only the first
// rowCount rows and colCount cells of each row are considered part of
// the page; the grid is not copied.
func NewPage(owner string, index int, cells [][]int32, rowCount, colCount int, path string) *Page {
	return &Page{
		owner:    owner,
		index:    index,
		path:     path,
		rowCount: rowCount,
		colCount: colCount,
		cells:    cells,
	}
}

// ReadPage loads a block file. The dimensions come from the owner's
// metadata; the file itself carries no header.
func ReadPage(owner string, index int, rowCount, colCount int, path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", path, err)
	}
	defer f.Close()

	cells := make([][]int32, rowCount)
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for r := 0; r < rowCount; r++ {
		cells[r] = make([]int32, colCount)
		for c := 0; c < colCount; c++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("read page %s: truncated at cell (%d,%d)", path, r, c)
			}
			v, err := strconv.ParseInt(scanner.Text(), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("read page %s: %w", path, err)
			}
			cells[r][c] = int32(v)
		}
	}
	return NewPage(owner, index, cells, rowCount, colCount, path), nil
}

// Write serializes the page to its block file and clears the dirty
// flag.
func (p *Page) Write() error {
	f, err := os.Create(p.path)
	if err != nil {
		return fmt.Errorf("write page %s: %w", p.path, err)
	}
	w := bufio.NewWriter(f)
	for r := 0; r < p.rowCount; r++ {
		for c := 0; c < p.colCount; c++ {
			if c > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(strconv.FormatInt(int64(p.cells[r][c]), 10))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write page %s: %w", p.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write page %s: %w", p.path, err)
	}
	p.dirty = false
	return nil
}

func (p *Page) Owner() string { return p.owner }
func (p *Page) Index() int    { return p.index }
func (p *Page) Rows() int     { return p.rowCount }
func (p *Page) Cols() int     { return p.colCount }
func (p *Page) IsDirty() bool { return p.dirty }
func (p *Page) MarkDirty()    { p.dirty = true }

// Row returns a copy of one row.
func (p *Page) Row(r int) domain.Row {
	row := make(domain.Row, p.colCount)
	copy(row, p.cells[r][:p.colCount])
	return row
}

func (p *Page) Get(r, c int) int32 { return p.cells[r][c] }

func (p *Page) Set(r, c int, v int32) {
	p.cells[r][c] = v
	p.dirty = true
}

// CloneCells copies the valid region of the grid.
func (p *Page) CloneCells() [][]int32 {
	out := make([][]int32, p.rowCount)
	for r := 0; r < p.rowCount; r++ {
		out[r] = make([]int32, p.colCount)
		copy(out[r], p.cells[r][:p.colCount])
	}
	return out
}

// Sort orders the page's rows in place by the key vector.
func (p *Page) Sort(keys []domain.SortKey) {
	rows := p.cells[:p.rowCount]
	sort.SliceStable(rows, func(i, j int) bool {
		return domain.Compare(rows[i], rows[j], keys) < 0
	})
	p.dirty = true
}

// Transpose flips a square tile in place.
func (p *Page) Transpose() {
	for i := 0; i < p.rowCount; i++ {
		for j := i + 1; j < p.colCount; j++ {
			p.cells[i][j], p.cells[j][i] = p.cells[j][i], p.cells[i][j]
		}
	}
	p.dirty = true
}

// TransposeWith swaps-and-transposes an off-diagonal tile pair: p
// becomes otherᵀ and other becomes pᵀ, so the effect on the whole
// matrix is a single global transpose. Tile dimensions are unchanged
// because row and column stripes of a square matrix share widths.
func (p *Page) TransposeWith(other *Page) {
	for i := 0; i < p.rowCount; i++ {
		for j := 0; j < p.colCount; j++ {
			p.cells[i][j], other.cells[j][i] = other.cells[j][i], p.cells[i][j]
		}
	}
	p.dirty = true
	other.dirty = true
}

// SubtractTranspose computes A ← A − Aᵀ for a diagonal tile.
func (p *Page) SubtractTranspose() {
	for i := 0; i < p.rowCount; i++ {
		p.cells[i][i] = 0
		for j := i + 1; j < p.colCount; j++ {
			d := p.cells[i][j] - p.cells[j][i]
			p.cells[i][j] = d
			p.cells[j][i] = -d
		}
	}
	p.dirty = true
}

// SubtractTransposeWith computes (A,B) ← (A − Bᵀ, B − Aᵀ) for an
// off-diagonal tile pair.
func (p *Page) SubtractTransposeWith(other *Page) {
	for i := 0; i < p.rowCount; i++ {
		for j := 0; j < p.colCount; j++ {
			d := p.cells[i][j] - other.cells[j][i]
			p.cells[i][j] = d
			other.cells[j][i] = -d
		}
	}
	p.dirty = true
	other.dirty = true
}

func (p *Page) setOwner(owner, path string) {
	p.owner = owner
	p.path = path
}
