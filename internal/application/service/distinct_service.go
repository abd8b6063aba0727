package service

import (
	"strings"

	"github.com/google/uuid"

	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type DistinctService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewDistinctService(catalog domain.CatalogRepository, eng *storage.Engine) *DistinctService {
	return &DistinctService{catalog: catalog, eng: eng}
}

type DistinctCommand struct {
	Target string
	Table  string
}

// Execute eliminates duplicate rows: a working copy is sorted on
// every column, then one pass drops rows equal to their predecessor.
func (s *DistinctService) Execute(cmd DistinctCommand) (*storage.Table, error) {
	if err := ensureUnused(s.catalog, cmd.Target); err != nil {
		return nil, err
	}
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return nil, err
	}

	workName := "distinct_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	work, err := materializeCopy(s.eng, t, workName, t.Columns())
	if err != nil {
		return nil, err
	}
	defer work.Unload()

	keys := make([]domain.SortKey, work.ColumnCount())
	for i := range keys {
		keys[i] = domain.SortKey{Column: i, Direction: domain.Ascending}
	}
	if err := work.Sort(keys); err != nil {
		return nil, err
	}

	w, err := newResultWriter(s.eng, cmd.Target, t.Columns())
	if err != nil {
		return nil, err
	}
	cursor, err := work.GetCursor()
	if err != nil {
		w.table.Unload()
		return nil, err
	}
	var prev domain.Row
	for row := cursor.Next(); row != nil; row = cursor.Next() {
		if prev != nil && domain.Compare(prev, row, keys) == 0 {
			continue
		}
		if err := w.push(row); err != nil {
			w.table.Unload()
			return nil, err
		}
		prev = row
	}

	result, err := w.finish()
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Insert(result); err != nil {
		result.Unload()
		return nil, err
	}
	return result, nil
}
