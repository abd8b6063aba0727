package service

import (
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type JoinService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewJoinService(catalog domain.CatalogRepository, eng *storage.Engine) *JoinService {
	return &JoinService{catalog: catalog, eng: eng}
}

type JoinCommand struct {
	Target      string
	Left        string
	Right       string
	LeftColumn  string
	Operator    domain.BinaryOperator
	RightColumn string
}

// Execute runs a nested-loop join. The inner table is re-scanned per
// outer row; the pool keeps the hot inner blocks resident, and at most
// one page per side is borrowed at a time.
func (s *JoinService) Execute(cmd JoinCommand) (*storage.Table, error) {
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
	leftIdx, err := left.ColumnIndexOf(cmd.LeftColumn)
	if err != nil {
		return nil, err
	}
	rightIdx, err := right.ColumnIndexOf(cmd.RightColumn)
	if err != nil {
		return nil, err
	}

	w, err := newResultWriter(s.eng, cmd.Target, combinedColumns(left, right))
	if err != nil {
		return nil, err
	}
	err = nestedLoop(left, right, func(lrow, rrow domain.Row) error {
		if cmd.Operator.Eval(lrow[leftIdx], rrow[rightIdx]) {
			return w.push(append(lrow.Clone(), rrow...))
		}
		return nil
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

// combinedColumns concatenates the two column lists, prefixing any
// name that appears in both tables with its table's name.
func combinedColumns(left, right *storage.Table) []string {
	out := make([]string, 0, left.ColumnCount()+right.ColumnCount())
	for _, name := range left.Columns() {
		if right.IsColumn(name) {
			out = append(out, left.Name()+"_"+name)
		} else {
			out = append(out, name)
		}
	}
	for _, name := range right.Columns() {
		if left.IsColumn(name) {
			out = append(out, right.Name()+"_"+name)
		} else {
			out = append(out, name)
		}
	}
	return out
}

// nestedLoop visits every row pair block by block.
func nestedLoop(left, right *storage.Table, visit func(lrow, rrow domain.Row) error) error {
	lcursor, err := left.GetCursor()
	if err != nil {
		return err
	}
	for lrow := lcursor.Next(); lrow != nil; lrow = lcursor.Next() {
		rcursor, err := right.GetCursor()
		if err != nil {
			return err
		}
		for rrow := rcursor.Next(); rrow != nil; rrow = rcursor.Next() {
			if err := visit(lrow, rrow); err != nil {
				return err
			}
		}
	}
	return nil
}
