package service

import (
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

// TransposeService flips a matrix in place, tile by tile.
type TransposeService struct {
	catalog domain.CatalogRepository
}

func NewTransposeService(catalog domain.CatalogRepository) *TransposeService {
	return &TransposeService{catalog: catalog}
}

func (s *TransposeService) Execute(name string) error {
	m, err := matrixFrom(s.catalog, name)
	if err != nil {
		return err
	}
	return m.Transpose()
}

// SymmetryService checks M == Mᵀ; the verdict is cached on the matrix.
type SymmetryService struct {
	catalog domain.CatalogRepository
}

func NewSymmetryService(catalog domain.CatalogRepository) *SymmetryService {
	return &SymmetryService{catalog: catalog}
}

func (s *SymmetryService) Execute(name string) (bool, error) {
	m, err := matrixFrom(s.catalog, name)
	if err != nil {
		return false, err
	}
	return m.Symmetry()
}

// ComputeService materializes target = M − Mᵀ as a new matrix.
type ComputeService struct {
	catalog domain.CatalogRepository
}

func NewComputeService(catalog domain.CatalogRepository) *ComputeService {
	return &ComputeService{catalog: catalog}
}

type ComputeCommand struct {
	Target string
	Matrix string
}

func (s *ComputeService) Execute(cmd ComputeCommand) (*storage.Matrix, error) {
	if err := ensureUnused(s.catalog, cmd.Target); err != nil {
		return nil, err
	}
	m, err := matrixFrom(s.catalog, cmd.Matrix)
	if err != nil {
		return nil, err
	}
	result, err := m.Compute(cmd.Target)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Insert(result); err != nil {
		result.Unload()
		return nil, err
	}
	return result, nil
}
