package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// BufferManager is the only gate between logical relations and disk.
// It keeps at most capacity resident pages in insertion order and
// evicts FIFO: the oldest insertion goes first, written back when
// dirty. The replacement policy is deliberately FIFO, not LRU; the
// access-counter tests depend on it.
type BufferManager struct {
	log           *slog.Logger
	tempDir       string
	capacity      int
	pages         []*Page // oldest first
	blocksRead    int
	blocksWritten int
}

func NewBufferManager(tempDir string, capacity int, log *slog.Logger) *BufferManager {
	return &BufferManager{
		log:      log,
		tempDir:  tempDir,
		capacity: capacity,
	}
}

// PagePath is the on-disk location of a block: <temp>/<owner>_Page<index>.
func (bm *BufferManager) PagePath(owner string, index int) string {
	return filepath.Join(bm.tempDir, fmt.Sprintf("%s_Page%d", owner, index))
}

// GetPage returns the resident page for (owner, index), reading it
// from disk first if necessary. A cache hit touches no counters. A
// miss reads the block and may evict the oldest resident page,
// writing it back if dirty.
//
// The returned pointer stays valid for reading even after eviction;
// mutators must re-acquire after any later pool call.
func (bm *BufferManager) GetPage(owner string, index, rowCount, colCount int) (*Page, error) {
	for _, p := range bm.pages {
		if p.owner == owner && p.index == index {
			return p, nil
		}
	}
	bm.blocksRead++
	page, err := ReadPage(owner, index, rowCount, colCount, bm.PagePath(owner, index))
	if err != nil {
		return nil, err
	}
	if len(bm.pages) >= bm.capacity {
		bm.evictOldest()
	}
	bm.pages = append(bm.pages, page)
	return page, nil
}

func (bm *BufferManager) evictOldest() {
	oldest := bm.pages[0]
	if oldest.dirty {
		if err := oldest.Write(); err != nil {
			bm.log.Error("write-back on eviction failed", "page", oldest.path, "err", err)
		}
		bm.blocksWritten++
	}
	bm.pages = bm.pages[1:]
}

// WritePage constructs a transient page from the grid and writes it
// straight to disk, bypassing the pool. Used whenever a new relation
// materializes blocks (blockify, sort merge output, COMPUTE).
func (bm *BufferManager) WritePage(owner string, index int, cells [][]int32, rowCount, colCount int) {
	bm.blocksWritten++
	page := NewPage(owner, index, cells, rowCount, colCount, bm.PagePath(owner, index))
	if err := page.Write(); err != nil {
		bm.log.Error("write page failed", "page", page.path, "err", err)
	}
}

// FlushAll writes back every dirty resident page without evicting.
func (bm *BufferManager) FlushAll() {
	for _, p := range bm.pages {
		if p.dirty {
			if err := p.Write(); err != nil {
				bm.log.Error("flush failed", "page", p.path, "err", err)
			}
			bm.blocksWritten++
		}
	}
}

// DropPages discards every resident page of the owner without
// write-back. Called when the owner is unloaded or its blocks are
// replaced wholesale.
func (bm *BufferManager) DropPages(owner string) {
	kept := bm.pages[:0]
	for _, p := range bm.pages {
		if p.owner != owner {
			kept = append(kept, p)
		}
	}
	bm.pages = kept
}

// RenamePages rewrites the owner of every resident page that matches
// oldName. The comparison is on the owner field alone, never the full
// path, so renames take effect for all of the owner's resident pages.
func (bm *BufferManager) RenamePages(oldName, newName string) {
	for _, p := range bm.pages {
		if p.owner == oldName {
			p.setOwner(newName, bm.PagePath(newName, p.index))
		}
	}
}

// DeleteFile removes a file; failures are logged and swallowed.
func (bm *BufferManager) DeleteFile(path string) {
	if err := os.Remove(path); err != nil {
		bm.log.Debug("delete file", "path", path, "err", err)
	}
}

// DeletePage removes the block file for (owner, index).
func (bm *BufferManager) DeletePage(owner string, index int) {
	bm.DeleteFile(bm.PagePath(owner, index))
}

// RenameFile moves a file; failures are logged and swallowed.
func (bm *BufferManager) RenameFile(oldPath, newPath string) {
	if err := os.Rename(oldPath, newPath); err != nil {
		bm.log.Error("rename file", "from", oldPath, "to", newPath, "err", err)
	}
}

// RenamePage moves the block file for index from one owner to another.
func (bm *BufferManager) RenamePage(oldName, newName string, index int) {
	bm.RenameFile(bm.PagePath(oldName, index), bm.PagePath(newName, index))
}

func (bm *BufferManager) ResidentCount() int { return len(bm.pages) }
func (bm *BufferManager) BlocksRead() int    { return bm.blocksRead }
func (bm *BufferManager) BlocksWritten() int { return bm.blocksWritten }

func (bm *BufferManager) ClearStats() {
	bm.blocksRead = 0
	bm.blocksWritten = 0
}

// Report renders the access counters and resets them.
func (bm *BufferManager) Report() string {
	s := fmt.Sprintf("Number of blocks read: %d\nNumber of blocks written: %d\nNumber of blocks accessed: %d",
		bm.blocksRead, bm.blocksWritten, bm.blocksRead+bm.blocksWritten)
	bm.ClearStats()
	return s
}
