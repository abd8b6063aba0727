package storage

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// smallPolicy squeezes 6 cells into a block: 2 rows of a 3-column
// table, or a 2×2 matrix tile.
var smallPolicy = Policy{BlockSizeBytes: 24, BlockCount: 4, PrintCount: 20}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, policy Policy) *Engine {
	t.Helper()
	eng, err := NewEngine(t.TempDir(), policy, testLogger())
	require.NoError(t, err)
	return eng
}

func writeCSV(t *testing.T, eng *Engine, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(eng.CSVPath(name), []byte(content), 0o644))
}

func loadTable(t *testing.T, eng *Engine, name, content string) *Table {
	t.Helper()
	writeCSV(t, eng, name, content)
	table := eng.NewTable(name)
	require.NoError(t, table.Load())
	return table
}

func loadMatrix(t *testing.T, eng *Engine, name, content string) *Matrix {
	t.Helper()
	writeCSV(t, eng, name, content)
	m := eng.NewMatrix(name)
	require.NoError(t, m.Load())
	return m
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
