// Package dataset turns uploaded files into core tables and back.
//
// Supported formats are CSV (comma-separated, UTF-8, optional BOM) and Excel
// workbooks (.xlsx, first sheet). The first row is the header.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabclean/internal/core"
	"github.com/JonMunkholm/tabclean/internal/logging"
	"github.com/xuri/excelize/v2"
)

// Format is a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from a file name's extension.
func FormatOf(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", &core.UnsupportedInputError{FileName: fileName}
	}
}

// naTokens are read as missing values, matching the spellings spreadsheet
// and pandas exports use for empty cells.
var naTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// ParseCell types one raw cell. Missing-value tokens become null; text that
// formats back to exactly itself as a number becomes a number; everything
// else stays a string. "0532..." therefore keeps its leading zero.
func ParseCell(raw string) core.Value {
	if naTokens[raw] {
		return core.Null()
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil &&
		!math.IsInf(f, 0) && !math.IsNaN(f) && core.FormatNumber(f) == raw {
		return core.Number(f)
	}
	return core.String(raw)
}

// Decode reads a CSV or XLSX file into a table. The format comes from the
// file name. Column names are returned unique but not yet normalized.
func Decode(ctx context.Context, fileName string, r io.Reader) (*core.Table, error) {
	format, err := FormatOf(fileName)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatCSV:
		records, err = readCSV(ctx, r)
	case FormatXLSX:
		records, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty file: no header row")
	}

	t := buildTable(records)
	logging.FromContext(ctx).Debug("dataset decoded",
		"file", fileName,
		"format", format,
		"rows", t.Len(),
		"columns", len(t.Columns()),
	)
	return t, nil
}

func readCSV(ctx context.Context, r io.Reader) ([][]string, error) {
	src := cleanReader(r)
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	logging.FromContext(ctx).Debug("csv read", "bytes", src.n, "records", len(records))
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("empty file: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("open workbook: read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func buildTable(records [][]string) *core.Table {
	header := headerNames(records[0])
	rows := make([][]core.Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		row := make([]core.Value, len(header))
		for i := range header {
			if i < len(rec) {
				row[i] = ParseCell(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return core.NewTable(header, rows)
}

// headerNames fills blank header cells with "Unnamed: N" and suffixes
// repeated names with ".1", ".2", ...
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, n := range raw {
		if strings.TrimSpace(n) == "" {
			n = "Unnamed: " + strconv.Itoa(i)
		}
		name := n
		for k := 1; seen[name]; k++ {
			name = n + "." + strconv.Itoa(k)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
