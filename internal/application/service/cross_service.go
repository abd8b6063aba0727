package service

import (
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type CrossService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewCrossService(catalog domain.CatalogRepository, eng *storage.Engine) *CrossService {
	return &CrossService{catalog: catalog, eng: eng}
}

type CrossCommand struct {
	Target string
	Left   string
	Right  string
}

// Execute materializes the cartesian product of the two tables.
func (s *CrossService) Execute(cmd CrossCommand) (*storage.Table, error) {
	if err := ensureUnused(s.catalog, cmd.Target); err != nil {
		return nil, err
	}
	left, err := tableFrom(s.catalog, cmd.Left)
	if err != nil {
		return nil, err
	}
	right, err := tableFrom(s.catalog, cmd.Right)
	if err != nil {
		return nil, err
	}

	w, err := newResultWriter(s.eng, cmd.Target, combinedColumns(left, right))
	if err != nil {
		return nil, err
	}
	err = nestedLoop(left, right, func(lrow, rrow domain.Row) error {
		return w.push(append(lrow.Clone(), rrow...))
	})
	if err != nil {
		w.table.Unload()
		return nil, err
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
