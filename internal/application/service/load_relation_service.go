package service

import (
	"fmt"

	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type LoadRelationService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewLoadRelationService(catalog domain.CatalogRepository, eng *storage.Engine) *LoadRelationService {
	return &LoadRelationService{catalog: catalog, eng: eng}
}

type LoadRelationCommand struct {
	Name     string
	IsMatrix bool
}

type LoadRelationResult struct {
	Relation domain.Relation
	Summary  string
}

// Execute blockifies <data>/<name>.csv and registers the relation.
// Partially written blocks of a failed load are cleaned up by
// unloading the half-built relation.
func (s *LoadRelationService) Execute(cmd LoadRelationCommand) (LoadRelationResult, error) {
	if err := ensureUnused(s.catalog, cmd.Name); err != nil {
		return LoadRelationResult{}, err
	}
	if cmd.IsMatrix {
		m := s.eng.NewMatrix(cmd.Name)
		if err := m.Load(); err != nil {
			m.Unload()
			return LoadRelationResult{}, err
		}
		if err := s.catalog.Insert(m); err != nil {
			m.Unload()
			return LoadRelationResult{}, err
		}
		return LoadRelationResult{
			Relation: m,
			Summary:  fmt.Sprintf("Loaded Matrix. Dimension: %d", m.Dimension()),
		}, nil
	}
	t := s.eng.NewTable(cmd.Name)
	if err := t.Load(); err != nil {
		t.Unload()
		return LoadRelationResult{}, err
	}
	if err := s.catalog.Insert(t); err != nil {
		t.Unload()
		return LoadRelationResult{}, err
	}
	return LoadRelationResult{
		Relation: t,
		Summary:  fmt.Sprintf("Loaded Table. Column Count: %d Row Count: %d", t.ColumnCount(), t.RowCount()),
	}, nil
}
