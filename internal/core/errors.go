package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error kinds reported by table operations. Each request fails on its own
// and leaves the session's table untouched.
var (
	ErrNoDataLoaded     = errors.New("no data loaded")
	ErrColumnNotFound   = errors.New("column not found")
	ErrInvalidIndices   = errors.New("one or more indices are invalid")
	ErrInvalidAction    = errors.New("invalid action")
	ErrUnsupportedInput = errors.New("unsupported file type")
	ErrSessionNotFound  = errors.New("session not found")
	ErrTooManyUploads   = errors.New("too many concurrent uploads, please try again later")
)

// ColumnNotFoundError names the column a request referenced.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in the dataset", e.Column)
}

func (e *ColumnNotFoundError) Unwrap() error { return ErrColumnNotFound }

// InvalidIndicesError lists the row positions that do not exist.
// An empty Indices slice means no rows were selected at all.
type InvalidIndicesError struct {
	Indices  []int
	RowCount int
}

func (e *InvalidIndicesError) Error() string {
	if len(e.Indices) == 0 {
		return "one or more indices are invalid: no rows selected"
	}
	parts := make([]string, len(e.Indices))
	for i, idx := range e.Indices {
		parts[i] = strconv.Itoa(idx)
	}
	return fmt.Sprintf("one or more indices are invalid: [%s] (table has %d rows)",
		strings.Join(parts, ", "), e.RowCount)
}

func (e *InvalidIndicesError) Unwrap() error { return ErrInvalidIndices }

// InvalidActionError carries the rejected action name.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q (expected merge or delete)", e.Action)
}

func (e *InvalidActionError) Unwrap() error { return ErrInvalidAction }

// UnsupportedInputError carries the rejected file name.
type UnsupportedInputError struct {
	FileName string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("unsupported file type: %q (expected .csv or .xlsx)", e.FileName)
}

func (e *UnsupportedInputError) Unwrap() error { return ErrUnsupportedInput }
