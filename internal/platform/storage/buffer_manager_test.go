package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, capacity int) *BufferManager {
	return NewBufferManager(t.TempDir(), capacity, testLogger())
}

// seedPages writes n one-cell blocks for the owner.
func seedPages(bm *BufferManager, owner string, n int) {
	for i := 0; i < n; i++ {
		bm.WritePage(owner, i, [][]int32{{int32(i)}}, 1, 1)
	}
}

func TestGetPage_CacheHitTouchesNoCounters(t *testing.T) {
	bm := newTestPool(t, 3)
	seedPages(bm, "T", 1)
	bm.ClearStats()

	_, err := bm.GetPage("T", 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, bm.BlocksRead())

	_, err = bm.GetPage("T", 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, bm.BlocksRead(), "hit must not count as a read")
	assert.Equal(t, 0, bm.BlocksWritten())
	assert.Equal(t, 1, bm.ResidentCount())
}

// Opening BLOCK_COUNT+2 distinct pages evicts exactly two, FIFO.
func TestGetPage_FIFOEviction(t *testing.T) {
	bm := newTestPool(t, 3)
	seedPages(bm, "T", 5)
	bm.ClearStats()

	for i := 0; i < 5; i++ {
		_, err := bm.GetPage("T", i, 1, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, bm.ResidentCount(), "pool never exceeds its capacity")
	assert.Equal(t, 5, bm.BlocksRead())
	assert.Equal(t, 0, bm.BlocksWritten(), "clean evictions write nothing")

	// pages 0 and 1 were evicted, the most recent were not
	_, err := bm.GetPage("T", 4, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, bm.BlocksRead(), "page 4 is still resident")

	_, err = bm.GetPage("T", 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, bm.BlocksRead(), "page 0 was evicted first")
}

func TestGetPage_DirtyEvictionWritesBack(t *testing.T) {
	bm := newTestPool(t, 2)
	seedPages(bm, "T", 3)
	bm.ClearStats()

	page, err := bm.GetPage("T", 0, 1, 1)
	require.NoError(t, err)
	page.Set(0, 0, 42)

	// fill the pool: page 0 is the oldest and goes first
	_, err = bm.GetPage("T", 1, 1, 1)
	require.NoError(t, err)
	_, err = bm.GetPage("T", 2, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, bm.BlocksWritten(), "dirty eviction writes back once")
	assert.Equal(t, "42\n", readFile(t, bm.PagePath("T", 0)))
}

func TestWritePage_BypassesPool(t *testing.T) {
	bm := newTestPool(t, 2)
	bm.WritePage("T", 0, [][]int32{{7, 8}}, 1, 2)

	assert.Equal(t, 0, bm.ResidentCount())
	assert.Equal(t, 1, bm.BlocksWritten())
	assert.Equal(t, "7 8\n", readFile(t, bm.PagePath("T", 0)))
}

// Regression: the rename must match on the owner field, not the full
// page path, so resident pages are found under the new name.
func TestRenamePages_MatchesOwnerField(t *testing.T) {
	bm := newTestPool(t, 3)
	seedPages(bm, "OLD", 2)
	bm.ClearStats()

	_, err := bm.GetPage("OLD", 0, 1, 1)
	require.NoError(t, err)
	_, err = bm.GetPage("OLD", 1, 1, 1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		bm.RenamePage("OLD", "NEW", i)
	}
	bm.RenamePages("OLD", "NEW")

	reads := bm.BlocksRead()
	page, err := bm.GetPage("NEW", 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, reads, bm.BlocksRead(), "renamed page must be a cache hit")
	assert.Equal(t, "NEW", page.Owner())

	// write-back after the rename goes to the new path
	page.Set(0, 0, 99)
	bm.FlushAll()
	assert.Equal(t, "99\n", readFile(t, bm.PagePath("NEW", 1)))
}

func TestDropPages_DiscardsWithoutWriteBack(t *testing.T) {
	bm := newTestPool(t, 3)
	seedPages(bm, "T", 2)
	bm.ClearStats()

	page, err := bm.GetPage("T", 0, 1, 1)
	require.NoError(t, err)
	page.Set(0, 0, 42)
	bm.DropPages("T")

	assert.Equal(t, 0, bm.ResidentCount())
	assert.Equal(t, 0, bm.BlocksWritten())
	assert.Equal(t, "0\n", readFile(t, bm.PagePath("T", 0)), "dropped page must not write back")
}

func TestFlushAll_WritesDirtyOnly(t *testing.T) {
	bm := newTestPool(t, 3)
	seedPages(bm, "T", 2)
	bm.ClearStats()

	page, err := bm.GetPage("T", 0, 1, 1)
	require.NoError(t, err)
	_, err = bm.GetPage("T", 1, 1, 1)
	require.NoError(t, err)
	page.Set(0, 0, 5)

	bm.FlushAll()
	assert.Equal(t, 1, bm.BlocksWritten())
	assert.False(t, page.IsDirty())
	assert.Equal(t, "5\n", readFile(t, bm.PagePath("T", 0)))
}

func TestReport_RendersAndResets(t *testing.T) {
	bm := newTestPool(t, 2)
	seedPages(bm, "T", 1)
	_, err := bm.GetPage("T", 0, 1, 1)
	require.NoError(t, err)

	report := bm.Report()
	assert.Contains(t, report, "Number of blocks read: 1")
	assert.Contains(t, report, "Number of blocks written: 1")
	assert.Contains(t, report, "Number of blocks accessed: 2")
	assert.Equal(t, 0, bm.BlocksRead())
	assert.Equal(t, 0, bm.BlocksWritten())
}
