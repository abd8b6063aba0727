package storage

import "RMDB/internal/domain"

// Cursor is a forward row iterator over a relation's block sequence.
// Table cursors advance across blocks automatically; matrix cursors
// seek tiles explicitly because sequential tile order is not
// row-coherent.
//
// A cursor only reads, so it may keep its page across pool calls; the
// page memory stays valid even if the pool evicts it.
type Cursor struct {
	bm          *BufferManager
	owner       string
	blockCount  int
	dims        func(index int) (rows, cols int)
	autoAdvance bool

	pageIndex   int
	pagePointer int
	page        *Page
}

func newCursor(bm *BufferManager, owner string, blockCount int, dims func(int) (int, int), autoAdvance bool) (*Cursor, error) {
	c := &Cursor{
		bm:          bm,
		owner:       owner,
		blockCount:  blockCount,
		dims:        dims,
		autoAdvance: autoAdvance,
	}
	if err := c.NextPage(0); err != nil {
		return nil, err
	}
	return c, nil
}

// NextPage seeks the cursor to block k and rewinds its row pointer.
func (c *Cursor) NextPage(k int) error {
	rows, cols := c.dims(k)
	page, err := c.bm.GetPage(c.owner, k, rows, cols)
	if err != nil {
		return err
	}
	c.page = page
	c.pageIndex = k
	c.pagePointer = 0
	return nil
}

// Next returns the current row and advances. It returns nil when the
// block sequence is exhausted.
func (c *Cursor) Next() domain.Row {
	if c.page == nil || c.pagePointer >= c.page.Rows() {
		return nil
	}
	row := c.page.Row(c.pagePointer)
	c.pagePointer++
	if c.pagePointer == c.page.Rows() && c.autoAdvance && c.pageIndex < c.blockCount-1 {
		if err := c.NextPage(c.pageIndex + 1); err != nil {
			c.page = nil
		}
	}
	return row
}

// Get reads one cell of the current page. Used for tile access.
func (c *Cursor) Get(r, col int) int32 {
	return c.page.Get(r, col)
}

// PageRows is the row count of the current page.
func (c *Cursor) PageRows() int { return c.page.Rows() }
