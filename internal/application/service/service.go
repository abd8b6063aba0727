// Package service holds one application service per command. Each
// service is a thin orchestration over the storage core: resolve
// operands in the catalog, drive cursors and the buffer manager, and
// register any result relation.
package service

import (
	"fmt"

	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

const appendBatchSize = 256

func tableFrom(catalog domain.CatalogRepository, name string) (*storage.Table, error) {
	r, ok := catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRelationNotFound, name)
	}
	t, ok := r.(*storage.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotATable, name)
	}
	return t, nil
}

func matrixFrom(catalog domain.CatalogRepository, name string) (*storage.Matrix, error) {
	r, ok := catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRelationNotFound, name)
	}
	m, ok := r.(*storage.Matrix)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotAMatrix, name)
	}
	return m, nil
}

func ensureUnused(catalog domain.CatalogRepository, name string) error {
	if _, exists := catalog.Get(name); exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateRelation, name)
	}
	return nil
}

// resultWriter batches rows into a derived table's spill file.
type resultWriter struct {
	table *storage.Table
	batch []domain.Row
}

func newResultWriter(eng *storage.Engine, name string, columns []string) (*resultWriter, error) {
	t, err := eng.NewDerivedTable(name, columns)
	if err != nil {
		return nil, err
	}
	return &resultWriter{table: t}, nil
}

func (w *resultWriter) push(row domain.Row) error {
	w.batch = append(w.batch, row)
	if len(w.batch) == appendBatchSize {
		return w.flush()
	}
	return nil
}

func (w *resultWriter) flush() error {
	if len(w.batch) == 0 {
		return nil
	}
	if err := w.table.AppendRows(w.batch); err != nil {
		return err
	}
	w.batch = w.batch[:0]
	return nil
}

// finish blockifies the spill. On any failure the half-built table is
// unloaded before the error is returned.
func (w *resultWriter) finish() (*storage.Table, error) {
	if err := w.flush(); err != nil {
		w.table.Unload()
		return nil, err
	}
	if err := w.table.Load(); err != nil {
		w.table.Unload()
		return nil, err
	}
	return w.table, nil
}

// materializeCopy builds a derived working copy of a table's rows
// under the given name.
func materializeCopy(eng *storage.Engine, t *storage.Table, name string, columns []string) (*storage.Table, error) {
	w, err := newResultWriter(eng, name, columns)
	if err != nil {
		return nil, err
	}
	cursor, err := t.GetCursor()
	if err != nil {
		w.table.Unload()
		return nil, err
	}
	for row := cursor.Next(); row != nil; row = cursor.Next() {
		if err := w.push(row); err != nil {
			w.table.Unload()
			return nil, err
		}
	}
	return w.finish()
}
