package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"RMDB/internal/domain"
)

// Sort orders the table's rows in place by the key vector using a
// two-phase external merge: every block is sorted individually to form
// the initial runs, then ⌈log₂(blockCount)⌉ passes merge adjacent run
// pairs until one run remains. Merge output bypasses the pool through
// WritePage; at most two input pages are resident per merge step, so
// the pool bound holds for any capacity ≥ 2.
func (t *Table) Sort(keys []domain.SortKey) error {
	if err := t.sortingPhase(keys); err != nil {
		return err
	}
	if err := t.mergingPhase(keys); err != nil {
		return err
	}
	t.dropIndex()
	return nil
}

// SortKeysFor resolves column names and directions into a key vector.
func (t *Table) SortKeysFor(columns []string, directions []domain.SortDirection) ([]domain.SortKey, error) {
	if len(columns) != len(directions) {
		return nil, fmt.Errorf("%w: %d sort columns, %d directions", domain.ErrParse, len(columns), len(directions))
	}
	keys := make([]domain.SortKey, len(columns))
	for i, name := range columns {
		idx, err := t.ColumnIndexOf(name)
		if err != nil {
			return nil, err
		}
		keys[i] = domain.SortKey{Column: idx, Direction: directions[i]}
	}
	return keys, nil
}

// sortingPhase sorts each block in place, producing blockCount runs of
// one block each. Dirty pages write back on eviction.
func (t *Table) sortingPhase(keys []domain.SortKey) error {
	for b := 0; b < t.blockCount; b++ {
		page, err := t.eng.bm.GetPage(t.name, b, t.rowsPerBlock[b], t.columnCount)
		if err != nil {
			return err
		}
		page.Sort(keys)
	}
	return nil
}

// mergingPhase repeatedly merges adjacent run pairs, doubling the run
// size each pass. Each pass writes its output under a temporary name,
// then swaps the block files and drops the stale resident pages.
func (t *Table) mergingPhase(keys []domain.SortKey) error {
	for runSize := 1; runSize < t.blockCount; runSize *= 2 {
		tmpName := "sortrun_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		out := &runWriter{t: t, name: tmpName}
		for start := 0; start < t.blockCount; start += 2 * runSize {
			mid := min(start+runSize, t.blockCount)
			end := min(start+2*runSize, t.blockCount)
			if err := t.mergeRuns(keys, start, mid, end, out); err != nil {
				return err
			}
			out.finishRun()
		}
		t.swapBlocks(tmpName, out.rowsPerBlock)
	}
	return nil
}

// mergeRuns merges blocks [start,mid) with [mid,end). Ties take the
// left run, which keeps the sort stable across runs.
func (t *Table) mergeRuns(keys []domain.SortKey, start, mid, end int, out *runWriter) error {
	left := &runReader{t: t, next: start, end: mid}
	right := &runReader{t: t, next: mid, end: end}
	lrow, err := left.peek()
	if err != nil {
		return err
	}
	rrow, err := right.peek()
	if err != nil {
		return err
	}
	for lrow != nil || rrow != nil {
		takeLeft := rrow == nil || (lrow != nil && domain.Compare(lrow, rrow, keys) <= 0)
		if takeLeft {
			out.push(lrow)
			if lrow, err = left.advance(); err != nil {
				return err
			}
		} else {
			out.push(rrow)
			if rrow, err = right.advance(); err != nil {
				return err
			}
		}
	}
	return nil
}

// swapBlocks replaces the table's block files with the freshly merged
// ones. Stale resident pages are discarded first so no write-back can
// resurrect an old block.
func (t *Table) swapBlocks(tmpName string, rowsPerBlock []int) {
	t.eng.bm.DropPages(t.name)
	for b := 0; b < t.blockCount; b++ {
		t.eng.bm.DeletePage(t.name, b)
	}
	for b := 0; b < len(rowsPerBlock); b++ {
		t.eng.bm.RenamePage(tmpName, t.name, b)
	}
	t.blockCount = len(rowsPerBlock)
	t.rowsPerBlock = rowsPerBlock
}

// runReader streams rows from a contiguous block range, holding one
// page at a time.
type runReader struct {
	t      *Table
	next   int // next block to load
	end    int
	page   *Page
	rowIdx int
}

func (r *runReader) peek() (domain.Row, error) {
	for r.page == nil || r.rowIdx >= r.page.Rows() {
		if r.next >= r.end {
			return nil, nil
		}
		page, err := r.t.eng.bm.GetPage(r.t.name, r.next, r.t.rowsPerBlock[r.next], r.t.columnCount)
		if err != nil {
			return nil, err
		}
		r.page = page
		r.rowIdx = 0
		r.next++
	}
	return r.page.Row(r.rowIdx), nil
}

func (r *runReader) advance() (domain.Row, error) {
	r.rowIdx++
	return r.peek()
}

// runWriter packs merged rows into output blocks of maxRowsPerBlock
// and writes them through the pool-bypassing write path.
type runWriter struct {
	t            *Table
	name         string
	buf          [][]int32
	outIdx       int
	rowsPerBlock []int
}

func (w *runWriter) push(row domain.Row) {
	w.buf = append(w.buf, row)
	if len(w.buf) == w.t.maxRowsPerBlock {
		w.flush()
	}
}

// finishRun flushes the partial block at a run boundary so runs stay
// block-aligned for the next pass.
func (w *runWriter) finishRun() {
	if len(w.buf) > 0 {
		w.flush()
	}
}

func (w *runWriter) flush() {
	w.t.eng.bm.WritePage(w.name, w.outIdx, w.buf, len(w.buf), w.t.columnCount)
	w.rowsPerBlock = append(w.rowsPerBlock, len(w.buf))
	w.outIdx++
	w.buf = nil
}
