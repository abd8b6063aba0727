package application

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"RMDB/internal/application/service"
	"RMDB/internal/domain"
	"RMDB/internal/platform/parser"
	"RMDB/internal/platform/storage"
)

// Executor parses one statement and dispatches it to its service.
// Command execution is strictly sequential: the REPL and the HTTP
// surface both funnel through Execute, which serializes them.
type Executor struct {
	mu sync.Mutex

	parser *parser.Parser
	eng    *storage.Engine

	load      *service.LoadRelationService
	print     *service.PrintService
	export    *service.ExportService
	clear     *service.ClearService
	list      *service.ListService
	rename    *service.RenameService
	index     *service.IndexService
	sort      *service.SortService
	sel       *service.SelectService
	project   *service.ProjectService
	cross     *service.CrossService
	join      *service.JoinService
	distinct  *service.DistinctService
	groupBy   *service.GroupByService
	orderBy   *service.OrderByService
	transpose *service.TransposeService
	symmetry  *service.SymmetryService
	compute   *service.ComputeService
}

func NewExecutor(
	p *parser.Parser,
	eng *storage.Engine,
	load *service.LoadRelationService,
	print *service.PrintService,
	export *service.ExportService,
	clear *service.ClearService,
	list *service.ListService,
	rename *service.RenameService,
	index *service.IndexService,
	sort *service.SortService,
	sel *service.SelectService,
	project *service.ProjectService,
	cross *service.CrossService,
	join *service.JoinService,
	distinct *service.DistinctService,
	groupBy *service.GroupByService,
	orderBy *service.OrderByService,
	transpose *service.TransposeService,
	symmetry *service.SymmetryService,
	compute *service.ComputeService,
) *Executor {
	return &Executor{
		parser:    p,
		eng:       eng,
		load:      load,
		print:     print,
		export:    export,
		clear:     clear,
		list:      list,
		rename:    rename,
		index:     index,
		sort:      sort,
		sel:       sel,
		project:   project,
		cross:     cross,
		join:      join,
		distinct:  distinct,
		groupBy:   groupBy,
		orderBy:   orderBy,
		transpose: transpose,
		symmetry:  symmetry,
		compute:   compute,
	}
}

// Execute runs one command line and returns its printable output.
func (e *Executor) Execute(line string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.execLine(line)
}

func (e *Executor) execLine(line string) (string, error) {
	stmt, err := e.parser.Parse(line)
	if err != nil {
		return "", err
	}
	if stmt == nil {
		return "", nil
	}
	return e.dispatch(stmt)
}

func (e *Executor) dispatch(stmt *parser.Statement) (string, error) {
	switch stmt.Kind {
	case parser.StmtLoad:
		res, err := e.load.Execute(service.LoadRelationCommand{Name: stmt.Relation, IsMatrix: stmt.IsMatrix})
		if err != nil {
			return "", err
		}
		return res.Summary, nil

	case parser.StmtPrint:
		return e.print.Execute(service.PrintCommand{Name: stmt.Relation, IsMatrix: stmt.IsMatrix})

	case parser.StmtExport:
		if err := e.export.Execute(service.ExportCommand{Name: stmt.Relation, IsMatrix: stmt.IsMatrix}); err != nil {
			return "", err
		}
		return "Exported " + stmt.Relation, nil

	case parser.StmtClear:
		if err := e.clear.Execute(stmt.Relation); err != nil {
			return "", err
		}
		return "Cleared " + stmt.Relation, nil

	case parser.StmtList:
		kind := domain.KindTable
		if stmt.IsMatrix {
			kind = domain.KindMatrix
		}
		return e.list.Execute(kind), nil

	case parser.StmtRenameRelation:
		if err := e.rename.ExecuteRelation(service.RenameRelationCommand{From: stmt.From, To: stmt.To, IsMatrix: stmt.IsMatrix}); err != nil {
			return "", err
		}
		return "Renamed " + stmt.From + " to " + stmt.To, nil

	case parser.StmtRenameColumn:
		if err := e.rename.ExecuteColumn(service.RenameColumnCommand{Table: stmt.Relation, From: stmt.From, To: stmt.To}); err != nil {
			return "", err
		}
		return "Renamed column " + stmt.From + " to " + stmt.To, nil

	case parser.StmtIndex:
		if err := e.index.Execute(service.IndexCommand{Table: stmt.Relation, Column: stmt.FirstColumn, Strategy: stmt.Strategy}); err != nil {
			return "", err
		}
		return "Indexed " + stmt.Relation + " on " + stmt.FirstColumn, nil

	case parser.StmtSort:
		if err := e.sort.Execute(service.SortCommand{Table: stmt.Relation, Columns: stmt.Columns, Directions: stmt.Directions}); err != nil {
			return "", err
		}
		return "Sorted " + stmt.Relation, nil

	case parser.StmtSelect:
		t, err := e.sel.Execute(service.SelectCommand{
			Target:          stmt.Assign,
			Table:           stmt.Relation,
			FirstColumn:     stmt.FirstColumn,
			Operator:        stmt.Operator,
			Literal:         stmt.Literal,
			SecondColumn:    stmt.SecondColumn,
			CompareToColumn: stmt.CompareToColumn,
		})
		if err != nil {
			return "", err
		}
		return assignedSummary(t), nil

	case parser.StmtProject:
		t, err := e.project.Execute(service.ProjectCommand{Target: stmt.Assign, Table: stmt.Relation, Columns: stmt.Columns})
		if err != nil {
			return "", err
		}
		return assignedSummary(t), nil

	case parser.StmtCross:
		t, err := e.cross.Execute(service.CrossCommand{Target: stmt.Assign, Left: stmt.Relation, Right: stmt.Second})
		if err != nil {
			return "", err
		}
		return assignedSummary(t), nil

	case parser.StmtJoin:
		t, err := e.join.Execute(service.JoinCommand{
			Target:      stmt.Assign,
			Left:        stmt.Relation,
			Right:       stmt.Second,
			LeftColumn:  stmt.FirstColumn,
			Operator:    stmt.Operator,
			RightColumn: stmt.SecondColumn,
		})
		if err != nil {
			return "", err
		}
		return assignedSummary(t), nil

	case parser.StmtDistinct:
		t, err := e.distinct.Execute(service.DistinctCommand{Target: stmt.Assign, Table: stmt.Relation})
		if err != nil {
			return "", err
		}
		return assignedSummary(t), nil

	case parser.StmtGroupBy:
		t, err := e.groupBy.Execute(service.GroupByCommand{
			Target:       stmt.Assign,
			Table:        stmt.Relation,
			GroupColumn:  stmt.GroupColumn,
			HavingAgg:    stmt.HavingAgg,
			HavingColumn: stmt.HavingColumn,
			HavingOp:     stmt.HavingOp,
			HavingValue:  stmt.HavingValue,
			ReturnAgg:    stmt.ReturnAgg,
			ReturnColumn: stmt.ReturnColumn,
		})
		if err != nil {
			return "", err
		}
		return assignedSummary(t), nil

	case parser.StmtOrderBy:
		t, err := e.orderBy.Execute(service.OrderByCommand{
			Target:    stmt.Assign,
			Table:     stmt.Relation,
			Column:    stmt.Columns[0],
			Direction: stmt.Directions[0],
		})
		if err != nil {
			return "", err
		}
		return assignedSummary(t), nil

	case parser.StmtTranspose:
		if err := e.transpose.Execute(stmt.Relation); err != nil {
			return "", err
		}
		return "Transposed " + stmt.Relation, nil

	case parser.StmtSymmetry:
		symmetric, err := e.symmetry.Execute(stmt.Relation)
		if err != nil {
			return "", err
		}
		if symmetric {
			return "TRUE", nil
		}
		return "FALSE", nil

	case parser.StmtCompute:
		m, err := e.compute.Execute(service.ComputeCommand{Target: stmt.Assign, Matrix: stmt.Relation})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Created Matrix %s. Dimension: %d", m.Name(), m.Dimension()), nil

	case parser.StmtSource:
		return e.runSource(stmt.Script)

	case parser.StmtStats:
		return e.eng.BufferManager().Report(), nil

	case parser.StmtQuit:
		return "", nil
	}
	return "", fmt.Errorf("%w: unhandled statement", domain.ErrParse)
}

func assignedSummary(t *storage.Table) string {
	return fmt.Sprintf("Created Table %s. Column Count: %d Row Count: %d", t.Name(), t.ColumnCount(), t.RowCount())
}

// runSource executes a script of statements from <data>/<name>.ra.
// The first failing line aborts the script.
func (e *Executor) runSource(name string) (string, error) {
	path := e.eng.ScriptPath(name)
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("source %s: %w", path, err)
	}
	defer f.Close()

	var out strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		res, err := e.execLine(line)
		if err != nil {
			return out.String(), fmt.Errorf("source %s: %q: %w", name, strings.TrimSpace(line), err)
		}
		if res != "" {
			out.WriteString(res)
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}
