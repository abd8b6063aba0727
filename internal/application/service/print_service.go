package service

import (
	"strings"

	"RMDB/internal/domain"
)

type PrintService struct {
	catalog domain.CatalogRepository
}

func NewPrintService(catalog domain.CatalogRepository) *PrintService {
	return &PrintService{catalog: catalog}
}

type PrintCommand struct {
	Name     string
	IsMatrix bool
}

// Execute renders the first PRINT_COUNT rows (tables) or a
// PRINT_COUNT×PRINT_COUNT window (matrices).
func (s *PrintService) Execute(cmd PrintCommand) (string, error) {
	var sb strings.Builder
	if cmd.IsMatrix {
		m, err := matrixFrom(s.catalog, cmd.Name)
		if err != nil {
			return "", err
		}
		if err := m.Print(&sb); err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	t, err := tableFrom(s.catalog, cmd.Name)
	if err != nil {
		return "", err
	}
	if err := t.Print(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
