package service

import (
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type IndexService struct {
	catalog domain.CatalogRepository
}

func NewIndexService(catalog domain.CatalogRepository) *IndexService {
	return &IndexService{catalog: catalog}
}

type IndexCommand struct {
	Table    string
	Column   string
	Strategy string
}

func (s *IndexService) Execute(cmd IndexCommand) error {
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return err
	}
	strategy, err := storage.ParseIndexStrategy(cmd.Strategy)
	if err != nil {
		return err
	}
	return t.BuildIndex(cmd.Column, strategy)
}
