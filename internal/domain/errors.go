package domain

import "errors"

var (
	ErrRelationNotFound  = errors.New("no such table or matrix")
	ErrDuplicateRelation = errors.New("a table or matrix with this name already exists")
	ErrColumnNotFound    = errors.New("no such column")
	ErrDuplicateColumn   = errors.New("a column with this name already exists")
	ErrParse             = errors.New("syntax error")
	ErrCapacity          = errors.New("block size too small to hold a single cell")
	ErrEmptySource       = errors.New("source file is empty")
	ErrNotATable         = errors.New("relation is not a table")
	ErrNotAMatrix        = errors.New("relation is not a matrix")
)
