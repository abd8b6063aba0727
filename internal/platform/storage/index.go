package storage

import (
	"fmt"

	"github.com/google/btree"

	"RMDB/internal/domain"
)

// IndexStrategy selects the structure backing a column index.
type IndexStrategy int

const (
	IndexNothing IndexStrategy = iota
	IndexBTree
	IndexHash
)

func (s IndexStrategy) String() string {
	switch s {
	case IndexBTree:
		return "BTREE"
	case IndexHash:
		return "HASH"
	}
	return "NOTHING"
}

// ParseIndexStrategy maps the command token to a strategy.
func ParseIndexStrategy(word string) (IndexStrategy, error) {
	switch word {
	case "BTREE":
		return IndexBTree, nil
	case "HASH":
		return IndexHash, nil
	case "NOTHING":
		return IndexNothing, nil
	}
	return IndexNothing, fmt.Errorf("%w: unknown indexing strategy %q", domain.ErrParse, word)
}

// RowLocation addresses one row inside the owner's block sequence.
type RowLocation struct {
	Block int
	Row   int
}

// ColumnIndex maps a column value to the rows holding it.
type ColumnIndex interface {
	Insert(v int32, loc RowLocation)
	Lookup(v int32) []RowLocation
}

type btreeEntry struct {
	value int32
	locs  []RowLocation
}

type btreeIndex struct {
	tree *btree.BTreeG[*btreeEntry]
}

func newBTreeIndex() *btreeIndex {
	return &btreeIndex{
		tree: btree.NewG(32, func(a, b *btreeEntry) bool { return a.value < b.value }),
	}
}

func (ix *btreeIndex) Insert(v int32, loc RowLocation) {
	if entry, ok := ix.tree.Get(&btreeEntry{value: v}); ok {
		entry.locs = append(entry.locs, loc)
		return
	}
	ix.tree.ReplaceOrInsert(&btreeEntry{value: v, locs: []RowLocation{loc}})
}

func (ix *btreeIndex) Lookup(v int32) []RowLocation {
	if entry, ok := ix.tree.Get(&btreeEntry{value: v}); ok {
		return entry.locs
	}
	return nil
}

type hashIndex struct {
	buckets map[int32][]RowLocation
}

func newHashIndex() *hashIndex {
	return &hashIndex{buckets: make(map[int32][]RowLocation)}
}

func (ix *hashIndex) Insert(v int32, loc RowLocation) {
	ix.buckets[v] = append(ix.buckets[v], loc)
}

func (ix *hashIndex) Lookup(v int32) []RowLocation {
	return ix.buckets[v]
}

// BuildIndex scans the table once and indexes the named column with
// the chosen strategy. IndexNothing drops any existing index.
func (t *Table) BuildIndex(column string, strategy IndexStrategy) error {
	if strategy == IndexNothing {
		t.dropIndex()
		return nil
	}
	colIdx, err := t.ColumnIndexOf(column)
	if err != nil {
		return err
	}
	var index ColumnIndex
	if strategy == IndexBTree {
		index = newBTreeIndex()
	} else {
		index = newHashIndex()
	}
	for b := 0; b < t.blockCount; b++ {
		page, err := t.eng.bm.GetPage(t.name, b, t.rowsPerBlock[b], t.columnCount)
		if err != nil {
			return err
		}
		for r := 0; r < page.Rows(); r++ {
			index.Insert(page.Get(r, colIdx), RowLocation{Block: b, Row: r})
		}
	}
	t.indexed = true
	t.indexedColumn = column
	t.indexStrategy = strategy
	t.index = index
	return nil
}

// IndexedOn reports whether an equality probe on the column can use
// the index.
func (t *Table) IndexedOn(column string) bool {
	return t.indexed && t.indexedColumn == column
}

func (t *Table) IndexStrategy() IndexStrategy { return t.indexStrategy }
func (t *Table) IndexedColumn() string        { return t.indexedColumn }

// IndexLookup fetches the rows holding the value in the indexed
// column, in block order.
func (t *Table) IndexLookup(v int32) ([]domain.Row, error) {
	locs := t.index.Lookup(v)
	rows := make([]domain.Row, 0, len(locs))
	for _, loc := range locs {
		page, err := t.eng.bm.GetPage(t.name, loc.Block, t.rowsPerBlock[loc.Block], t.columnCount)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Row(loc.Row))
	}
	return rows, nil
}

// dropIndex invalidates the index after any row mutation.
func (t *Table) dropIndex() {
	t.indexed = false
	t.indexedColumn = ""
	t.indexStrategy = IndexNothing
	t.index = nil
}
