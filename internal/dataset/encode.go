package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/JonMunkholm/tabclean/internal/core"
	"github.com/xuri/excelize/v2"
)

// ContentType returns the MIME type used when serving a file of format f.
func ContentType(f Format) string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Encode writes t in the given format.
func Encode(w io.Writer, f Format, t *core.Table) error {
	switch f {
	case FormatCSV:
		return EncodeCSV(w, t)
	case FormatXLSX:
		return EncodeXLSX(w, t)
	default:
		return &core.UnsupportedInputError{FileName: "." + string(f)}
	}
}

// EncodeCSV writes the header and every row; missing cells are empty.
func EncodeCSV(w io.Writer, t *core.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range t.Rows() {
		line := make([]string, len(rec.Values))
		for i, v := range rec.Values {
			line[i] = v.Text()
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// sheetName is the single sheet written by EncodeXLSX.
const sheetName = "Sheet1"

// EncodeXLSX writes a one-sheet workbook. Numbers are stored as numeric
// cells, strings as text and missing values as empty cells.
func EncodeXLSX(w io.Writer, t *core.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, rec := range t.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i, err)
		}
		line := make([]any, len(rec.Values))
		for j, v := range rec.Values {
			line[j] = xlsxCell(v)
		}
		if err := f.SetSheetRow(sheetName, cell, &line); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxCell(v core.Value) any {
	switch v.Kind() {
	case core.KindNumber:
		f, _ := v.Float()
		return f
	case core.KindString:
		return v.Text()
	default:
		return nil
	}
}
