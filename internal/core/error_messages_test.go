package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"no data", ErrNoDataLoaded, "DATA001"},
		{"column not found", &ColumnNotFoundError{Column: "Email"}, "COL001"},
		{"wrapped column not found", fmt.Errorf("merge duplicates: %w", &ColumnNotFoundError{Column: "x"}), "COL001"},
		{"invalid indices", &InvalidIndicesError{Indices: []int{9}, RowCount: 3}, "ROW001"},
		{"invalid action", &InvalidActionError{Action: "purge"}, "ACT001"},
		{"unsupported file", &UnsupportedInputError{FileName: "a.pdf"}, "FILE002"},
		{"session expired", ErrSessionNotFound, "SES001"},
		{"too many uploads", ErrTooManyUploads, "UPL002"},
		{"body too large", errors.New("http: request body too large"), "FILE001"},
		{"bad csv", errors.New(`parse csv: record on line 3: wrong number of fields`), "FILE003"},
		{"bad workbook", errors.New("open workbook: zip: not a valid zip file"), "FILE003"},
		{"empty upload", errors.New("empty file: no header row"), "FILE003"},
		{"missing file", errors.New("no file provided"), "FILE004"},
		{"validation", errors.New("validation failed: column is required"), "REQ001"},
		{"rate limit", errors.New("Rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("something strange happened"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_SentinelBeatsPattern(t *testing.T) {
	// The text mentions a CSV but the wrapped sentinel decides.
	err := fmt.Errorf("parse csv header: %w", ErrColumnNotFound)
	if got := MapError(err).Code; got != "COL001" {
		t.Errorf("Code = %q, want COL001", got)
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrNoDataLoaded)
	want := "No data loaded (Code: DATA001). Upload a CSV or Excel file first"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrInvalidAction) {
		t.Error("ErrInvalidAction should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unmatched error should not be user facing")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ColumnNotFoundError{Column: "Phone"}, `column "Phone" not found in the dataset`},
		{&InvalidIndicesError{RowCount: 2}, "one or more indices are invalid: no rows selected"},
		{&InvalidIndicesError{Indices: []int{-1, 5}, RowCount: 2}, "one or more indices are invalid: [-1, 5] (table has 2 rows)"},
		{&InvalidActionError{Action: "x"}, `invalid action "x" (expected merge or delete)`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
