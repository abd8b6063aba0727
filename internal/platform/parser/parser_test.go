package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RMDB/internal/domain"
)

func parse(t *testing.T, line string) *Statement {
	t.Helper()
	stmt, err := New().Parse(line)
	require.NoError(t, err)
	require.NotNil(t, stmt)
	return stmt
}

func TestParse_BlankAndComment(t *testing.T) {
	p := New()
	for _, line := range []string{"", "   ", "# a comment"} {
		stmt, err := p.Parse(line)
		assert.NoError(t, err)
		assert.Nil(t, stmt)
	}
}

func TestParse_Load(t *testing.T) {
	stmt := parse(t, "LOAD EMPLOYEE")
	assert.Equal(t, StmtLoad, stmt.Kind)
	assert.Equal(t, "EMPLOYEE", stmt.Relation)
	assert.False(t, stmt.IsMatrix)

	stmt = parse(t, "LOAD MATRIX A")
	assert.True(t, stmt.IsMatrix)
	assert.Equal(t, "A", stmt.Relation)
}

func TestParse_ListPrintExportClear(t *testing.T) {
	assert.Equal(t, StmtList, parse(t, "LIST TABLES").Kind)
	assert.True(t, parse(t, "LIST MATRICES").IsMatrix)
	assert.Equal(t, StmtPrint, parse(t, "PRINT T").Kind)
	assert.True(t, parse(t, "PRINT MATRIX M").IsMatrix)
	assert.Equal(t, StmtExport, parse(t, "EXPORT T").Kind)
	assert.Equal(t, StmtClear, parse(t, "CLEAR T").Kind)
}

func TestParse_Rename(t *testing.T) {
	stmt := parse(t, "RENAME TABLE A B")
	assert.Equal(t, StmtRenameRelation, stmt.Kind)
	assert.Equal(t, "A", stmt.From)
	assert.Equal(t, "B", stmt.To)

	stmt = parse(t, "RENAME MATRIX M N")
	assert.True(t, stmt.IsMatrix)

	stmt = parse(t, "RENAME sal TO salary FROM EMPLOYEE")
	assert.Equal(t, StmtRenameColumn, stmt.Kind)
	assert.Equal(t, "sal", stmt.From)
	assert.Equal(t, "salary", stmt.To)
	assert.Equal(t, "EMPLOYEE", stmt.Relation)
}

func TestParse_Index(t *testing.T) {
	stmt := parse(t, "INDEX ON dept FROM EMPLOYEE USING BTREE")
	assert.Equal(t, StmtIndex, stmt.Kind)
	assert.Equal(t, "dept", stmt.FirstColumn)
	assert.Equal(t, "EMPLOYEE", stmt.Relation)
	assert.Equal(t, "BTREE", stmt.Strategy)
}

func TestParse_Sort(t *testing.T) {
	stmt := parse(t, "SORT T BY B, A IN DESC, ASC")
	assert.Equal(t, StmtSort, stmt.Kind)
	assert.Equal(t, []string{"B", "A"}, stmt.Columns)
	assert.Equal(t, []domain.SortDirection{domain.Descending, domain.Ascending}, stmt.Directions)

	_, err := New().Parse("SORT T BY B IN SIDEWAYS")
	assert.ErrorIs(t, err, domain.ErrParse)
	_, err = New().Parse("SORT T BY A, B IN ASC")
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestParse_SelectLiteral(t *testing.T) {
	stmt := parse(t, "R = SELECT a >= 5 FROM T")
	assert.Equal(t, StmtSelect, stmt.Kind)
	assert.Equal(t, "R", stmt.Assign)
	assert.Equal(t, "a", stmt.FirstColumn)
	assert.Equal(t, domain.GreaterEqual, stmt.Operator)
	assert.Equal(t, int32(5), stmt.Literal)
	assert.False(t, stmt.CompareToColumn)
}

func TestParse_SelectColumn(t *testing.T) {
	stmt := parse(t, "R = SELECT a == b FROM T")
	assert.True(t, stmt.CompareToColumn)
	assert.Equal(t, "b", stmt.SecondColumn)
}

func TestParse_Project(t *testing.T) {
	stmt := parse(t, "R = PROJECT a, b, c FROM T")
	assert.Equal(t, StmtProject, stmt.Kind)
	assert.Equal(t, []string{"a", "b", "c"}, stmt.Columns)
	assert.Equal(t, "T", stmt.Relation)
}

func TestParse_CrossAndJoin(t *testing.T) {
	stmt := parse(t, "R = CROSS T1 T2")
	assert.Equal(t, StmtCross, stmt.Kind)
	assert.Equal(t, "T1", stmt.Relation)
	assert.Equal(t, "T2", stmt.Second)

	stmt = parse(t, "R = JOIN T1, T2 ON a == b")
	assert.Equal(t, StmtJoin, stmt.Kind)
	assert.Equal(t, "a", stmt.FirstColumn)
	assert.Equal(t, domain.Equal, stmt.Operator)
	assert.Equal(t, "b", stmt.SecondColumn)
}

func TestParse_Distinct(t *testing.T) {
	stmt := parse(t, "R = DISTINCT T")
	assert.Equal(t, StmtDistinct, stmt.Kind)
	assert.Equal(t, "T", stmt.Relation)
}

func TestParse_GroupBy(t *testing.T) {
	stmt := parse(t, "R = GROUPBY dept FROM EMP HAVING SUM(sal) > 100 RETURN AVG(sal)")
	assert.Equal(t, StmtGroupBy, stmt.Kind)
	assert.Equal(t, "dept", stmt.GroupColumn)
	assert.Equal(t, domain.Sum, stmt.HavingAgg)
	assert.Equal(t, "sal", stmt.HavingColumn)
	assert.Equal(t, domain.Greater, stmt.HavingOp)
	assert.Equal(t, int32(100), stmt.HavingValue)
	assert.Equal(t, domain.Avg, stmt.ReturnAgg)
	assert.Equal(t, "sal", stmt.ReturnColumn)
}

func TestParse_OrderBy(t *testing.T) {
	stmt := parse(t, "R = ORDERBY sal DESC ON EMP")
	assert.Equal(t, StmtOrderBy, stmt.Kind)
	assert.Equal(t, []string{"sal"}, stmt.Columns)
	assert.Equal(t, []domain.SortDirection{domain.Descending}, stmt.Directions)
	assert.Equal(t, "EMP", stmt.Relation)
}

func TestParse_MatrixCommands(t *testing.T) {
	assert.Equal(t, StmtSymmetry, parse(t, "SYMMETRY M").Kind)
	assert.Equal(t, StmtTranspose, parse(t, "TRANSPOSE MATRIX M").Kind)

	stmt := parse(t, "N = COMPUTE M")
	assert.Equal(t, StmtCompute, stmt.Kind)
	assert.Equal(t, "N", stmt.Assign)
	assert.Equal(t, "M", stmt.Relation)
}

func TestParse_SourceStatsQuit(t *testing.T) {
	stmt := parse(t, "SOURCE queries")
	assert.Equal(t, StmtSource, stmt.Kind)
	assert.Equal(t, "queries", stmt.Script)
	assert.Equal(t, StmtStats, parse(t, "STATS").Kind)
	assert.Equal(t, StmtQuit, parse(t, "QUIT").Kind)
	assert.Equal(t, StmtQuit, parse(t, "EXIT").Kind)
}

func TestParse_Errors(t *testing.T) {
	p := New()
	for _, line := range []string{
		"FROBNICATE T",
		"LOAD",
		"LIST EVERYTHING",
		"TRANSPOSE M",
		"R = SELECT a 5 FROM T",
		"R = GROUPBY dept FROM EMP HAVING SUM sal > 100 RETURN AVG(sal)",
		"R = FLYING T",
	} {
		_, err := p.Parse(line)
		assert.ErrorIs(t, err, domain.ErrParse, "line %q", line)
	}
}
