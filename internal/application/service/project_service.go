package service

import (
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type ProjectService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewProjectService(catalog domain.CatalogRepository, eng *storage.Engine) *ProjectService {
	return &ProjectService{catalog: catalog, eng: eng}
}

type ProjectCommand struct {
	Target  string
	Table   string
	Columns []string
}

func (s *ProjectService) Execute(cmd ProjectCommand) (*storage.Table, error) {
	if err := ensureUnused(s.catalog, cmd.Target); err != nil {
		return nil, err
	}
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return nil, err
	}
	indices := make([]int, len(cmd.Columns))
	for i, name := range cmd.Columns {
		if indices[i], err = t.ColumnIndexOf(name); err != nil {
			return nil, err
		}
	}

	w, err := newResultWriter(s.eng, cmd.Target, cmd.Columns)
	if err != nil {
		return nil, err
	}
	cursor, err := t.GetCursor()
	if err != nil {
		w.table.Unload()
		return nil, err
	}
	for row := cursor.Next(); row != nil; row = cursor.Next() {
		projected := make(domain.Row, len(indices))
		for i, idx := range indices {
			projected[i] = row[idx]
		}
		if err := w.push(projected); err != nil {
			w.table.Unload()
			return nil, err
		}
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
