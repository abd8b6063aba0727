package parser

import (
	"fmt"
	"strconv"
	"strings"

	"RMDB/internal/domain"
)

// Parser turns one command line into a Statement. The language is
// line-oriented: tokens are separated by spaces, with commas and
// parentheses splitting words on their own.
type Parser struct{}

func New() *Parser { return &Parser{} }

// lex splits a line into tokens, emitting ',', '(' and ')' as
// standalone tokens.
func lex(line string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range line {
		switch r {
		case ' ', '\t':
			flush()
		case ',', '(', ')':
			flush()
			tokens = append(tokens, string(r))
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func errBadSyntax(form string) error {
	return fmt.Errorf("%w: expected %s", domain.ErrParse, form)
}

// Parse parses one statement. Blank lines and # comments yield nil.
func (p *Parser) Parse(line string) (*Statement, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}
	tokens := lex(trimmed)
	if len(tokens) >= 2 && tokens[1] == "=" {
		return p.parseAssignment(tokens[0], tokens[2:])
	}
	return p.parseCommand(tokens)
}

func (p *Parser) parseCommand(tokens []string) (*Statement, error) {
	switch tokens[0] {
	case "LOAD":
		return parseUnaryRelation(StmtLoad, tokens, "LOAD [MATRIX] <name>")
	case "PRINT":
		return parseUnaryRelation(StmtPrint, tokens, "PRINT [MATRIX] <name>")
	case "EXPORT":
		return parseUnaryRelation(StmtExport, tokens, "EXPORT [MATRIX] <name>")
	case "LIST":
		return parseList(tokens)
	case "RENAME":
		return parseRename(tokens)
	case "CLEAR":
		if len(tokens) != 2 {
			return nil, errBadSyntax("CLEAR <name>")
		}
		return &Statement{Kind: StmtClear, Relation: tokens[1]}, nil
	case "INDEX":
		return parseIndex(tokens)
	case "SORT":
		return parseSort(tokens)
	case "SYMMETRY":
		if len(tokens) != 2 {
			return nil, errBadSyntax("SYMMETRY <matrix>")
		}
		return &Statement{Kind: StmtSymmetry, IsMatrix: true, Relation: tokens[1]}, nil
	case "TRANSPOSE":
		if len(tokens) != 3 || tokens[1] != "MATRIX" {
			return nil, errBadSyntax("TRANSPOSE MATRIX <matrix>")
		}
		return &Statement{Kind: StmtTranspose, IsMatrix: true, Relation: tokens[2]}, nil
	case "SOURCE":
		if len(tokens) != 2 {
			return nil, errBadSyntax("SOURCE <script>")
		}
		return &Statement{Kind: StmtSource, Script: tokens[1]}, nil
	case "STATS":
		if len(tokens) != 1 {
			return nil, errBadSyntax("STATS")
		}
		return &Statement{Kind: StmtStats}, nil
	case "QUIT", "EXIT":
		return &Statement{Kind: StmtQuit}, nil
	}
	return nil, fmt.Errorf("%w: unknown command %q", domain.ErrParse, tokens[0])
}

func parseUnaryRelation(kind StatementKind, tokens []string, form string) (*Statement, error) {
	switch {
	case len(tokens) == 2:
		return &Statement{Kind: kind, Relation: tokens[1]}, nil
	case len(tokens) == 3 && tokens[1] == "MATRIX":
		return &Statement{Kind: kind, IsMatrix: true, Relation: tokens[2]}, nil
	}
	return nil, errBadSyntax(form)
}

func parseList(tokens []string) (*Statement, error) {
	if len(tokens) != 2 {
		return nil, errBadSyntax("LIST TABLES|MATRICES")
	}
	switch tokens[1] {
	case "TABLES":
		return &Statement{Kind: StmtList}, nil
	case "MATRICES":
		return &Statement{Kind: StmtList, IsMatrix: true}, nil
	}
	return nil, errBadSyntax("LIST TABLES|MATRICES")
}

func parseRename(tokens []string) (*Statement, error) {
	if len(tokens) == 4 && (tokens[1] == "TABLE" || tokens[1] == "MATRIX") {
		return &Statement{
			Kind:     StmtRenameRelation,
			IsMatrix: tokens[1] == "MATRIX",
			From:     tokens[2],
			To:       tokens[3],
		}, nil
	}
	if len(tokens) == 6 && tokens[2] == "TO" && tokens[4] == "FROM" {
		return &Statement{
			Kind:     StmtRenameColumn,
			From:     tokens[1],
			To:       tokens[3],
			Relation: tokens[5],
		}, nil
	}
	return nil, errBadSyntax("RENAME TABLE|MATRIX <old> <new> or RENAME <col> TO <col> FROM <table>")
}

func parseIndex(tokens []string) (*Statement, error) {
	if len(tokens) != 7 || tokens[1] != "ON" || tokens[3] != "FROM" || tokens[5] != "USING" {
		return nil, errBadSyntax("INDEX ON <column> FROM <table> USING BTREE|HASH|NOTHING")
	}
	return &Statement{
		Kind:        StmtIndex,
		FirstColumn: tokens[2],
		Relation:    tokens[4],
		Strategy:    tokens[6],
	}, nil
}

func parseSort(tokens []string) (*Statement, error) {
	form := "SORT <table> BY <col>,... IN ASC|DESC,..."
	if len(tokens) < 6 || tokens[2] != "BY" {
		return nil, errBadSyntax(form)
	}
	stmt := &Statement{Kind: StmtSort, Relation: tokens[1]}
	rest := tokens[3:]
	columns, rest, err := parseNameList(rest, "IN")
	if err != nil {
		return nil, errBadSyntax(form)
	}
	directions, rest, err := parseDirectionList(rest)
	if err != nil || len(rest) != 0 || len(columns) != len(directions) {
		return nil, errBadSyntax(form)
	}
	stmt.Columns = columns
	stmt.Directions = directions
	return stmt, nil
}

// parseNameList consumes "a , b , c" until the stop word, which is
// also consumed.
func parseNameList(tokens []string, stop string) ([]string, []string, error) {
	var names []string
	for i := 0; i < len(tokens); i++ {
		if tokens[i] == stop {
			if len(names) == 0 {
				return nil, nil, errBadSyntax("name list")
			}
			return names, tokens[i+1:], nil
		}
		if tokens[i] == "," {
			continue
		}
		names = append(names, tokens[i])
	}
	if stop == "" && len(names) > 0 {
		return names, nil, nil
	}
	return nil, nil, errBadSyntax("name list")
}

func parseDirectionList(tokens []string) ([]domain.SortDirection, []string, error) {
	var dirs []domain.SortDirection
	i := 0
	for ; i < len(tokens); i++ {
		if tokens[i] == "," {
			continue
		}
		d, err := parseDirection(tokens[i])
		if err != nil {
			break
		}
		dirs = append(dirs, d)
	}
	if len(dirs) == 0 {
		return nil, nil, errBadSyntax("direction list")
	}
	return dirs, tokens[i:], nil
}

func parseDirection(word string) (domain.SortDirection, error) {
	switch word {
	case "ASC":
		return domain.Ascending, nil
	case "DESC":
		return domain.Descending, nil
	}
	return domain.Ascending, fmt.Errorf("%w: expected ASC or DESC, got %q", domain.ErrParse, word)
}

func parseOperator(word string) (domain.BinaryOperator, error) {
	switch word {
	case "<":
		return domain.Less, nil
	case "<=":
		return domain.LessEqual, nil
	case ">":
		return domain.Greater, nil
	case ">=":
		return domain.GreaterEqual, nil
	case "==":
		return domain.Equal, nil
	case "!=":
		return domain.NotEqual, nil
	}
	return domain.Equal, fmt.Errorf("%w: unknown operator %q", domain.ErrParse, word)
}

func parseAggregate(word string) (domain.Aggregate, error) {
	switch word {
	case "MAX":
		return domain.Max, nil
	case "MIN":
		return domain.Min, nil
	case "SUM":
		return domain.Sum, nil
	case "AVG":
		return domain.Avg, nil
	case "COUNT":
		return domain.Count, nil
	}
	return domain.Max, fmt.Errorf("%w: unknown aggregate %q", domain.ErrParse, word)
}

func (p *Parser) parseAssignment(target string, tokens []string) (*Statement, error) {
	if len(tokens) == 0 {
		return nil, errBadSyntax("<name> = <operation>")
	}
	var stmt *Statement
	var err error
	switch tokens[0] {
	case "SELECT":
		stmt, err = parseSelect(tokens)
	case "PROJECT":
		stmt, err = parseProject(tokens)
	case "CROSS":
		stmt, err = parseCross(tokens)
	case "JOIN":
		stmt, err = parseJoin(tokens)
	case "DISTINCT":
		if len(tokens) != 2 {
			return nil, errBadSyntax("<name> = DISTINCT <table>")
		}
		stmt = &Statement{Kind: StmtDistinct, Relation: tokens[1]}
	case "GROUPBY":
		stmt, err = parseGroupBy(tokens)
	case "ORDERBY":
		stmt, err = parseOrderBy(tokens)
	case "COMPUTE":
		if len(tokens) != 2 {
			return nil, errBadSyntax("<name> = COMPUTE <matrix>")
		}
		stmt = &Statement{Kind: StmtCompute, IsMatrix: true, Relation: tokens[1]}
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", domain.ErrParse, tokens[0])
	}
	if err != nil {
		return nil, err
	}
	stmt.Assign = target
	return stmt, nil
}

func parseSelect(tokens []string) (*Statement, error) {
	form := "<name> = SELECT <col> <op> <value|col> FROM <table>"
	if len(tokens) != 6 || tokens[4] != "FROM" {
		return nil, errBadSyntax(form)
	}
	op, err := parseOperator(tokens[2])
	if err != nil {
		return nil, err
	}
	stmt := &Statement{
		Kind:        StmtSelect,
		FirstColumn: tokens[1],
		Operator:    op,
		Relation:    tokens[5],
	}
	if v, err := strconv.ParseInt(tokens[3], 10, 32); err == nil {
		stmt.Literal = int32(v)
	} else {
		stmt.CompareToColumn = true
		stmt.SecondColumn = tokens[3]
	}
	return stmt, nil
}

func parseProject(tokens []string) (*Statement, error) {
	form := "<name> = PROJECT <col>,... FROM <table>"
	columns, rest, err := parseNameList(tokens[1:], "FROM")
	if err != nil || len(rest) != 1 {
		return nil, errBadSyntax(form)
	}
	return &Statement{Kind: StmtProject, Columns: columns, Relation: rest[0]}, nil
}

func parseCross(tokens []string) (*Statement, error) {
	// the comma between operands is optional
	operands := make([]string, 0, 2)
	for _, tok := range tokens[1:] {
		if tok != "," {
			operands = append(operands, tok)
		}
	}
	if len(operands) != 2 {
		return nil, errBadSyntax("<name> = CROSS <table> <table>")
	}
	return &Statement{Kind: StmtCross, Relation: operands[0], Second: operands[1]}, nil
}

func parseJoin(tokens []string) (*Statement, error) {
	form := "<name> = JOIN <table>, <table> ON <col> <op> <col>"
	operands, rest, err := parseNameList(tokens[1:], "ON")
	if err != nil || len(operands) != 2 || len(rest) != 3 {
		return nil, errBadSyntax(form)
	}
	op, err := parseOperator(rest[1])
	if err != nil {
		return nil, err
	}
	return &Statement{
		Kind:         StmtJoin,
		Relation:     operands[0],
		Second:       operands[1],
		FirstColumn:  rest[0],
		Operator:     op,
		SecondColumn: rest[2],
	}, nil
}

// parseAggTerm consumes "AGG ( col )" and returns the remainder.
func parseAggTerm(tokens []string) (domain.Aggregate, string, []string, error) {
	if len(tokens) < 4 || tokens[1] != "(" || tokens[3] != ")" {
		return domain.Max, "", nil, errBadSyntax("<agg>(<col>)")
	}
	agg, err := parseAggregate(tokens[0])
	if err != nil {
		return domain.Max, "", nil, err
	}
	return agg, tokens[2], tokens[4:], nil
}

func parseGroupBy(tokens []string) (*Statement, error) {
	form := "<name> = GROUPBY <col> FROM <table> HAVING <agg>(<col>) <op> <value> RETURN <agg>(<col>)"
	if len(tokens) < 6 || tokens[2] != "FROM" || tokens[4] != "HAVING" {
		return nil, errBadSyntax(form)
	}
	stmt := &Statement{Kind: StmtGroupBy, GroupColumn: tokens[1], Relation: tokens[3]}
	havingAgg, havingCol, rest, err := parseAggTerm(tokens[5:])
	if err != nil {
		return nil, errBadSyntax(form)
	}
	if len(rest) < 3 || rest[2] != "RETURN" {
		return nil, errBadSyntax(form)
	}
	op, err := parseOperator(rest[0])
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseInt(rest[1], 10, 32)
	if err != nil {
		return nil, errBadSyntax(form)
	}
	returnAgg, returnCol, tail, err := parseAggTerm(rest[3:])
	if err != nil || len(tail) != 0 {
		return nil, errBadSyntax(form)
	}
	stmt.HavingAgg = havingAgg
	stmt.HavingColumn = havingCol
	stmt.HavingOp = op
	stmt.HavingValue = int32(v)
	stmt.ReturnAgg = returnAgg
	stmt.ReturnColumn = returnCol
	return stmt, nil
}

func parseOrderBy(tokens []string) (*Statement, error) {
	form := "<name> = ORDERBY <col> ASC|DESC ON <table>"
	if len(tokens) != 5 || tokens[3] != "ON" {
		return nil, errBadSyntax(form)
	}
	dir, err := parseDirection(tokens[2])
	if err != nil {
		return nil, err
	}
	return &Statement{
		Kind:       StmtOrderBy,
		Columns:    []string{tokens[1]},
		Directions: []domain.SortDirection{dir},
		Relation:   tokens[4],
	}, nil
}
