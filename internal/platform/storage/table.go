package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"RMDB/internal/domain"
	"RMDB/internal/platform/utils"
)

// Table is a row-oriented relation backed by a sequence of block
// files. It is created either by LOAD from a permanent CSV or by an
// assignment statement spilling rows into a temporary CSV; both paths
// end in blockify.
type Table struct {
	eng *Engine

	name       string
	sourceFile string

	columns         []string
	colNameToIdx    map[string]int
	columnCount     int
	rowCount        int64
	blockCount      int
	maxRowsPerBlock int
	rowsPerBlock    []int

	distinct       []map[int32]struct{}
	distinctCounts []int

	indexed       bool
	indexedColumn string
	indexStrategy IndexStrategy
	index         ColumnIndex
}

// NewTable prepares a table whose source is the permanent CSV
// <data>/<name>.csv. Load must be called next.
func (e *Engine) NewTable(name string) *Table {
	return &Table{
		eng:           e,
		name:          name,
		sourceFile:    e.CSVPath(name),
		indexStrategy: IndexNothing,
	}
}

// NewDerivedTable prepares an assignment result. The column header is
// written to a temporary CSV; rows are appended with AppendRows and
// the table is finalized with Load.
func (e *Engine) NewDerivedTable(name string, columns []string) (*Table, error) {
	t := &Table{
		eng:           e,
		name:          name,
		sourceFile:    e.TempCSVPath(name),
		indexStrategy: IndexNothing,
	}
	f, err := os.Create(t.sourceFile)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", t.sourceFile, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, utils.FormatHeader(columns, ", ")); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return t, nil
}

func (t *Table) Name() string              { return t.name }
func (t *Table) Kind() domain.RelationKind { return domain.KindTable }
func (t *Table) Columns() []string         { return t.columns }
func (t *Table) ColumnCount() int          { return t.columnCount }
func (t *Table) RowCount() int64           { return t.rowCount }
func (t *Table) BlockCount() int           { return t.blockCount }
func (t *Table) RowsPerBlock() []int       { return t.rowsPerBlock }
func (t *Table) MaxRowsPerBlock() int      { return t.maxRowsPerBlock }

// DistinctCount is the number of distinct values seen in a column.
func (t *Table) DistinctCount(col int) int { return t.distinctCounts[col] }

// IsColumn reports whether the table has the named column.
func (t *Table) IsColumn(name string) bool {
	_, ok := t.colNameToIdx[name]
	return ok
}

// ColumnIndexOf resolves a column name to its position.
func (t *Table) ColumnIndexOf(name string) (int, error) {
	idx, ok := t.colNameToIdx[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrColumnNotFound, name)
	}
	return idx, nil
}

// AppendRows spills rows to the table's source CSV. Valid only before
// Load.
func (t *Table) AppendRows(rows []domain.Row) error {
	f, err := os.OpenFile(t.sourceFile, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append %s: %w", t.sourceFile, err)
	}
	w := bufio.NewWriter(f)
	for _, row := range rows {
		fmt.Fprintln(w, utils.FormatRow(row, ", "))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", t.sourceFile, err)
	}
	return f.Close()
}

// Load reads the source CSV and partitions it into block files: the
// first line names the columns, every following line is a row. Rows
// are packed maxRowsPerBlock at a time; per-column distinct-value
// statistics accumulate as rows stream through.
func (t *Table) Load() error {
	f, err := os.Open(t.sourceFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", t.sourceFile, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return domain.ErrEmptySource
	}
	if err := t.extractColumnNames(scanner.Text()); err != nil {
		return err
	}

	t.maxRowsPerBlock = t.eng.policy.MaxRowsPerBlock(t.columnCount)
	if t.maxRowsPerBlock == 0 {
		return domain.ErrCapacity
	}

	buf := make([][]int32, 0, t.maxRowsPerBlock)
	flush := func() {
		t.eng.bm.WritePage(t.name, t.blockCount, buf, len(buf), t.columnCount)
		t.rowsPerBlock = append(t.rowsPerBlock, len(buf))
		t.blockCount++
		buf = buf[:0]
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := utils.ParseRow(line)
		if err != nil {
			return err
		}
		if len(row) != t.columnCount {
			return fmt.Errorf("%w: expected %d cells, got %d", domain.ErrParse, t.columnCount, len(row))
		}
		t.updateStatistics(row)
		buf = append(buf, row)
		if len(buf) == t.maxRowsPerBlock {
			flush()
		}
	}
	if len(buf) > 0 {
		flush()
	}
	if t.rowCount == 0 {
		return domain.ErrEmptySource
	}
	return nil
}

func (t *Table) extractColumnNames(firstLine string) error {
	names := utils.ParseHeader(firstLine)
	if len(names) == 0 || names[0] == "" {
		return fmt.Errorf("%w: empty header", domain.ErrParse)
	}
	t.columns = names
	t.columnCount = len(names)
	t.colNameToIdx = make(map[string]int, len(names))
	for i, name := range names {
		t.colNameToIdx[name] = i
	}
	t.distinct = make([]map[int32]struct{}, t.columnCount)
	t.distinctCounts = make([]int, t.columnCount)
	for i := range t.distinct {
		t.distinct[i] = make(map[int32]struct{})
	}
	return nil
}

func (t *Table) updateStatistics(row domain.Row) {
	t.rowCount++
	for i, v := range row {
		if _, seen := t.distinct[i][v]; !seen {
			t.distinct[i][v] = struct{}{}
			t.distinctCounts[i]++
		}
	}
}

// GetCursor opens a forward cursor over the table's rows.
func (t *Table) GetCursor() (*Cursor, error) {
	return newCursor(t.eng.bm, t.name, t.blockCount, func(i int) (int, int) {
		return t.rowsPerBlock[i], t.columnCount
	}, true)
}

// Print writes the first PRINT_COUNT rows and a row-count trailer.
func (t *Table) Print(w io.Writer) error {
	fmt.Fprintln(w, utils.FormatHeader(t.columns, ", "))
	count := t.rowCount
	if max := int64(t.eng.policy.PrintCount); count > max {
		count = max
	}
	cursor, err := t.GetCursor()
	if err != nil {
		return err
	}
	for i := int64(0); i < count; i++ {
		fmt.Fprintln(w, utils.FormatRow(cursor.Next(), ", "))
	}
	fmt.Fprintf(w, "\nRow Count: %d\n", t.rowCount)
	return nil
}

// IsPermanent reports whether the source CSV lives under <data>/ (not
// <data>/temp/).
func (t *Table) IsPermanent() bool {
	return filepath.Dir(t.sourceFile) == filepath.Clean(t.eng.dataDir)
}

// MakePermanent exports the table to <data>/<name>.csv, making that
// file the new source.
func (t *Table) MakePermanent() error {
	if !t.IsPermanent() {
		t.eng.bm.DeleteFile(t.sourceFile)
	}
	path := t.eng.CSVPath(t.name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, utils.FormatHeader(t.columns, ", "))
	cursor, err := t.GetCursor()
	if err != nil {
		f.Close()
		return err
	}
	for row := cursor.Next(); row != nil; row = cursor.Next() {
		fmt.Fprintln(w, utils.FormatRow(row, ", "))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	t.sourceFile = path
	return nil
}

// Rename moves every block file and resident page to the new name,
// then the source CSV when it is temporary.
func (t *Table) Rename(newName string) error {
	for i := 0; i < t.blockCount; i++ {
		t.eng.bm.RenamePage(t.name, newName, i)
	}
	t.eng.bm.RenamePages(t.name, newName)
	if !t.IsPermanent() {
		newSource := t.eng.TempCSVPath(newName)
		t.eng.bm.RenameFile(t.sourceFile, newSource)
		t.sourceFile = newSource
	}
	t.name = newName
	return nil
}

// RenameColumn changes one column's name.
func (t *Table) RenameColumn(from, to string) error {
	idx, err := t.ColumnIndexOf(from)
	if err != nil {
		return err
	}
	if t.IsColumn(to) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateColumn, to)
	}
	delete(t.colNameToIdx, from)
	t.columns[idx] = to
	t.colNameToIdx[to] = idx
	if t.indexed && t.indexedColumn == from {
		t.indexedColumn = to
	}
	return nil
}

// Unload removes the table's block files and its temporary CSV, and
// drops its resident pages.
func (t *Table) Unload() {
	t.eng.bm.DropPages(t.name)
	for i := 0; i < t.blockCount; i++ {
		t.eng.bm.DeletePage(t.name, i)
	}
	if !t.IsPermanent() {
		t.eng.bm.DeleteFile(t.sourceFile)
	}
}
