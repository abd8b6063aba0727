package service

import (
	"fmt"
	"strings"

	"RMDB/internal/domain"
)

// ExportService makes a relation permanent under <data>/.
type ExportService struct {
	catalog domain.CatalogRepository
}

func NewExportService(catalog domain.CatalogRepository) *ExportService {
	return &ExportService{catalog: catalog}
}

type ExportCommand struct {
	Name     string
	IsMatrix bool
}

func (s *ExportService) Execute(cmd ExportCommand) error {
	r, ok := s.catalog.Get(cmd.Name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRelationNotFound, cmd.Name)
	}
	if cmd.IsMatrix != (r.Kind() == domain.KindMatrix) {
		if cmd.IsMatrix {
			return fmt.Errorf("%w: %s", domain.ErrNotAMatrix, cmd.Name)
		}
		return fmt.Errorf("%w: %s", domain.ErrNotATable, cmd.Name)
	}
	return r.MakePermanent()
}

// ClearService unloads a relation: catalog entry and block files go.
type ClearService struct {
	catalog domain.CatalogRepository
}

func NewClearService(catalog domain.CatalogRepository) *ClearService {
	return &ClearService{catalog: catalog}
}

func (s *ClearService) Execute(name string) error {
	r, ok := s.catalog.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRelationNotFound, name)
	}
	r.Unload()
	s.catalog.Remove(name)
	return nil
}

// ListService renders the catalog's names of one kind.
type ListService struct {
	catalog domain.CatalogRepository
}

func NewListService(catalog domain.CatalogRepository) *ListService {
	return &ListService{catalog: catalog}
}

func (s *ListService) Execute(kind domain.RelationKind) string {
	names := s.catalog.List(kind)
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, "\n")
}

// RenameService renames a relation or one of a table's columns.
type RenameService struct {
	catalog domain.CatalogRepository
}

func NewRenameService(catalog domain.CatalogRepository) *RenameService {
	return &RenameService{catalog: catalog}
}

type RenameRelationCommand struct {
	From     string
	To       string
	IsMatrix bool
}

func (s *RenameService) ExecuteRelation(cmd RenameRelationCommand) error {
	r, ok := s.catalog.Get(cmd.From)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRelationNotFound, cmd.From)
	}
	if cmd.IsMatrix != (r.Kind() == domain.KindMatrix) {
		if cmd.IsMatrix {
			return fmt.Errorf("%w: %s", domain.ErrNotAMatrix, cmd.From)
		}
		return fmt.Errorf("%w: %s", domain.ErrNotATable, cmd.From)
	}
	return s.catalog.Rename(cmd.From, cmd.To)
}

type RenameColumnCommand struct {
	Table string
	From  string
	To    string
}

func (s *RenameService) ExecuteColumn(cmd RenameColumnCommand) error {
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return err
	}
	return t.RenameColumn(cmd.From, cmd.To)
}
