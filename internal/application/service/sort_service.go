package service

import (
	"RMDB/internal/domain"
)

type SortService struct {
	catalog domain.CatalogRepository
}

func NewSortService(catalog domain.CatalogRepository) *SortService {
	return &SortService{catalog: catalog}
}

type SortCommand struct {
	Table      string
	Columns    []string
	Directions []domain.SortDirection
}

// Execute sorts the table in place by the key vector.
func (s *SortService) Execute(cmd SortCommand) error {
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return err
	}
	keys, err := t.SortKeysFor(cmd.Columns, cmd.Directions)
	if err != nil {
		return err
	}
	return t.Sort(keys)
}
