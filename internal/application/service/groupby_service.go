package service

import (
	"strings"

	"github.com/google/uuid"

	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type GroupByService struct {
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewGroupByService(catalog domain.CatalogRepository, eng *storage.Engine) *GroupByService {
	return &GroupByService{catalog: catalog, eng: eng}
}

type GroupByCommand struct {
	Target       string
	Table        string
	GroupColumn  string
	HavingAgg    domain.Aggregate
	HavingColumn string
	HavingOp     domain.BinaryOperator
	HavingValue  int32
	ReturnAgg    domain.Aggregate
	ReturnColumn string
}

// aggState folds one aggregate incrementally.
type aggState struct {
	agg   domain.Aggregate
	max   int32
	min   int32
	sum   int64
	count int64
}

func newAggState(agg domain.Aggregate) *aggState {
	return &aggState{agg: agg}
}

func (a *aggState) add(v int32) {
	if a.count == 0 || v > a.max {
		a.max = v
	}
	if a.count == 0 || v < a.min {
		a.min = v
	}
	a.sum += int64(v)
	a.count++
}

func (a *aggState) value() int32 {
	switch a.agg {
	case domain.Max:
		return a.max
	case domain.Min:
		return a.min
	case domain.Sum:
		return int32(a.sum)
	case domain.Avg:
		return int32(a.sum / a.count)
	case domain.Count:
		return int32(a.count)
	}
	return 0
}

// Execute groups the table's rows on one column. The table is copied
// and sorted on the grouping column so each group arrives contiguous;
// groups passing the HAVING predicate emit one row of
// (group value, RETURN aggregate).
func (s *GroupByService) Execute(cmd GroupByCommand) (*storage.Table, error) {
	if err := ensureUnused(s.catalog, cmd.Target); err != nil {
		return nil, err
	}
	t, err := tableFrom(s.catalog, cmd.Table)
	if err != nil {
		return nil, err
	}
	groupIdx, err := t.ColumnIndexOf(cmd.GroupColumn)
	if err != nil {
		return nil, err
	}
	havingIdx, err := t.ColumnIndexOf(cmd.HavingColumn)
	if err != nil {
		return nil, err
	}
	returnIdx, err := t.ColumnIndexOf(cmd.ReturnColumn)
	if err != nil {
		return nil, err
	}

	workName := "groupby_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	work, err := materializeCopy(s.eng, t, workName, t.Columns())
	if err != nil {
		return nil, err
	}
	defer work.Unload()
	if err := work.Sort([]domain.SortKey{{Column: groupIdx, Direction: domain.Ascending}}); err != nil {
		return nil, err
	}

	resultColumns := []string{cmd.GroupColumn, cmd.ReturnAgg.String() + cmd.ReturnColumn}
	w, err := newResultWriter(s.eng, cmd.Target, resultColumns)
	if err != nil {
		return nil, err
	}
	cursor, err := work.GetCursor()
	if err != nil {
		w.table.Unload()
		return nil, err
	}

	var groupValue int32
	var having, ret *aggState
	emit := func() error {
		if having == nil {
			return nil
		}
		if !cmd.HavingOp.Eval(having.value(), cmd.HavingValue) {
			return nil
		}
		return w.push(domain.Row{groupValue, ret.value()})
	}
	for row := cursor.Next(); row != nil; row = cursor.Next() {
		if having == nil || row[groupIdx] != groupValue {
			if err := emit(); err != nil {
				w.table.Unload()
				return nil, err
			}
			groupValue = row[groupIdx]
			having = newAggState(cmd.HavingAgg)
			ret = newAggState(cmd.ReturnAgg)
		}
		having.add(row[havingIdx])
		ret.add(row[returnIdx])
	}
	if err := emit(); err != nil {
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
