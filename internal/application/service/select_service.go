package service

import (
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type SelectService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewSelectService(catalog domain.CatalogRepository, eng *storage.Engine) *SelectService {
	return &SelectService{catalog: catalog, eng: eng}
}

type SelectCommand struct {
	Target          string
	Table           string
	FirstColumn     string
	Operator        domain.BinaryOperator
	Literal         int32
	SecondColumn    string
	CompareToColumn bool
}

// Execute filters the table's rows by the condition into a new table.
// An equality probe against a literal on the indexed column goes
// through the index instead of a full scan.
func (s *SelectService) Execute(cmd SelectCommand) (*storage.Table, error) {
	if err := ensureUnused(s.catalog, cmd.Target); err != nil {
		return nil, err
	}
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return nil, err
	}
	firstIdx, err := t.ColumnIndexOf(cmd.FirstColumn)
	if err != nil {
		return nil, err
	}
	secondIdx := -1
	if cmd.CompareToColumn {
		if secondIdx, err = t.ColumnIndexOf(cmd.SecondColumn); err != nil {
			return nil, err
		}
	}

	w, err := newResultWriter(s.eng, cmd.Target, t.Columns())
	if err != nil {
		return nil, err
	}

	if !cmd.CompareToColumn && cmd.Operator == domain.Equal && t.IndexedOn(cmd.FirstColumn) {
		rows, err := t.IndexLookup(cmd.Literal)
		if err != nil {
			w.table.Unload()
			return nil, err
		}
		for _, row := range rows {
			if err := w.push(row); err != nil {
				w.table.Unload()
				return nil, err
			}
		}
	} else {
		cursor, err := t.GetCursor()
		if err != nil {
			w.table.Unload()
			return nil, err
		}
		for row := cursor.Next(); row != nil; row = cursor.Next() {
			rhs := cmd.Literal
			if cmd.CompareToColumn {
				rhs = row[secondIdx]
			}
			if cmd.Operator.Eval(row[firstIdx], rhs) {
				if err := w.push(row); err != nil {
					w.table.Unload()
					return nil, err
				}
			}
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
