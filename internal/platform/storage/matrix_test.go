package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RMDB/internal/domain"
)

const threeByThreeCSV = "1,2,3\n4,5,6\n7,8,9\n"

// A 3×3 matrix under a 2×2 tile side splits into four tiles.
func TestMatrix_BlockifyTiles(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	assert.Equal(t, 3, m.Dimension())
	assert.Equal(t, 2, m.TileSide())
	assert.Equal(t, 2, m.ConcurrentBlocks())
	assert.Equal(t, 4, m.BlockCount())

	wantDims := [][2]int{{2, 2}, {2, 1}, {1, 2}, {1, 1}}
	for i, want := range wantDims {
		r, c := m.TileDims(i)
		assert.Equal(t, want, [2]int{r, c}, "tile %d", i)
	}

	// tile (0,1) holds the clipped right border column
	assert.Equal(t, "3\n6\n", readFile(t, eng.BufferManager().PagePath("M", 1)))
	assert.Equal(t, "7 8\n", readFile(t, eng.BufferManager().PagePath("M", 2)))
	assert.Equal(t, "9\n", readFile(t, eng.BufferManager().PagePath("M", 3)))
}

func TestMatrix_BlockCountIsTileGridSquared(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", "1,2,3,4,5\n6,7,8,9,10\n11,12,13,14,15\n16,17,18,19,20\n21,22,23,24,25\n")

	cb := (m.Dimension() + m.TileSide() - 1) / m.TileSide()
	assert.Equal(t, cb*cb, m.BlockCount())
}

func TestMatrix_LoadEmptyFile(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	writeCSV(t, eng, "M", "")
	m := eng.NewMatrix("M")
	assert.ErrorIs(t, m.Load(), domain.ErrEmptySource)
}

func TestMatrix_TransposeThenExport(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	require.NoError(t, m.Transpose())
	require.NoError(t, m.MakePermanent())
	assert.Equal(t, "1, 4, 7\n2, 5, 8\n3, 6, 9\n", readFile(t, eng.CSVPath("M")))
}

// Two transposes restore the original block files byte for byte.
func TestMatrix_DoubleTransposeRestores(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	before := make([]string, m.BlockCount())
	for i := range before {
		before[i] = readFile(t, eng.BufferManager().PagePath("M", i))
	}

	require.NoError(t, m.Transpose())
	require.NoError(t, m.Transpose())
	eng.BufferManager().FlushAll()

	for i := range before {
		assert.Equal(t, before[i], readFile(t, eng.BufferManager().PagePath("M", i)), "block %d", i)
	}
}

func TestMatrix_SymmetryTrue(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", "1,2\n2,1\n")

	symmetric, err := m.Symmetry()
	require.NoError(t, err)
	assert.True(t, symmetric)
}

func TestMatrix_SymmetryFalse(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", "1,2\n3,1\n")

	symmetric, err := m.Symmetry()
	require.NoError(t, err)
	assert.False(t, symmetric)
}

// The off-diagonal comparison covers cells below the tile diagonal:
// here the only asymmetry sits at (2,1)/(1,2), inside the clipped
// border pair.
func TestMatrix_SymmetryOffDiagonalCoversBothTriangles(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", "1,2,3\n2,5,7\n3,8,9\n")

	symmetric, err := m.Symmetry()
	require.NoError(t, err)
	assert.False(t, symmetric)
}

// SYMMETRY is true exactly when TRANSPOSE leaves the blocks
// untouched, and the verdict is cached.
func TestMatrix_SymmetricTransposeIsNoop(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", "1,2,3\n2,5,6\n3,6,9\n")

	symmetric, err := m.Symmetry()
	require.NoError(t, err)
	require.True(t, symmetric)

	reads := eng.BufferManager().BlocksRead()
	require.NoError(t, m.Transpose())
	assert.Equal(t, reads, eng.BufferManager().BlocksRead(), "transpose of a known-symmetric matrix touches nothing")
}

func TestMatrix_Compute(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", "1,2\n3,4\n")

	before := readFile(t, eng.BufferManager().PagePath("M", 0))
	result, err := m.Compute("N")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Dimension())
	assert.Equal(t, "0 -1\n1 0\n", readFile(t, eng.BufferManager().PagePath("N", 0)))
	assert.Equal(t, before, readFile(t, eng.BufferManager().PagePath("M", 0)), "source must be untouched")
}

func TestMatrix_ComputeBorderedTiles(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	result, err := m.Compute("N")
	require.NoError(t, err)
	require.NoError(t, result.MakePermanent())

	// N[i][j] = M[i][j] − M[j][i]
	assert.Equal(t, "0, -2, -4\n2, 0, -2\n4, 2, 0\n", readFile(t, eng.CSVPath("N")))
}

func TestMatrix_PrintWindow(t *testing.T) {
	policy := smallPolicy
	policy.PrintCount = 2
	eng := newTestEngine(t, policy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	var sb strings.Builder
	require.NoError(t, m.Print(&sb))
	assert.Equal(t, "1 2\n4 5\n\nRow Count: 3\n", sb.String())
}

func TestMatrix_ExportRoundtrip(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", "1, 2, 3\n4,5,6\n7, 8, 9\n")

	require.NoError(t, m.MakePermanent())
	assert.Equal(t, "1, 2, 3\n4, 5, 6\n7, 8, 9\n", readFile(t, eng.CSVPath("M")))

	reload := loadMatrix(t, eng, "M2", readFile(t, eng.CSVPath("M")))
	assert.Equal(t, m.Dimension(), reload.Dimension())
}

func TestMatrix_RenameMovesTiles(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	require.NoError(t, m.Rename("W"))
	assert.Equal(t, "W", m.Name())
	for i := 0; i < m.BlockCount(); i++ {
		assert.FileExists(t, eng.BufferManager().PagePath("W", i))
	}
}

// The tile cursor seeks explicitly and never crosses tiles on its
// own.
func TestMatrix_CursorSeeksTiles(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	cursor, err := m.GetCursor()
	require.NoError(t, err)
	assert.Equal(t, 2, cursor.PageRows())
	assert.Equal(t, int32(2), cursor.Get(0, 1))

	// seek to the bottom-left border tile
	require.NoError(t, cursor.NextPage(2))
	assert.Equal(t, 1, cursor.PageRows())
	assert.Equal(t, int32(8), cursor.Get(0, 1))

	// rows of the current tile only
	assert.Equal(t, domain.Row{7, 8}, cursor.Next())
	assert.Nil(t, cursor.Next(), "a matrix cursor stops at the tile boundary")
}

func TestMatrix_UnloadDeletesTiles(t *testing.T) {
	eng := newTestEngine(t, smallPolicy)
	m := loadMatrix(t, eng, "M", threeByThreeCSV)

	m.Unload()
	for i := 0; i < 4; i++ {
		assert.NoFileExists(t, eng.BufferManager().PagePath("M", i))
	}
}
