package service

import (
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type OrderByService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewOrderByService(catalog domain.CatalogRepository, eng *storage.Engine) *OrderByService {
	return &OrderByService{catalog: catalog, eng: eng}
}

type OrderByCommand struct {
	Target    string
	Table     string
	Column    string
	Direction domain.SortDirection
}

// Execute materializes a sorted copy of the table under the target
// name.
func (s *OrderByService) Execute(cmd OrderByCommand) (*storage.Table, error) {
	if err := ensureUnused(s.catalog, cmd.Target); err != nil {
		return nil, err
	}
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return nil, err
	}
	if _, err := t.ColumnIndexOf(cmd.Column); err != nil {
		return nil, err
	}

	result, err := materializeCopy(s.eng, t, cmd.Target, t.Columns())
	if err != nil {
		return nil, err
	}
	keys, err := result.SortKeysFor([]string{cmd.Column}, []domain.SortDirection{cmd.Direction})
	if err != nil {
		result.Unload()
		return nil, err
	}
	if err := result.Sort(keys); err != nil {
		result.Unload()
		return nil, err
	}
	if err := s.catalog.Insert(result); err != nil {
		result.Unload()
		return nil, err
	}
	return result, nil
}
