package core

// table.go defines the in-memory dataset a session edits.
//
// A Table is an ordered list of column names and a list of rows. Rows are
// stored positionally (row[i] belongs to columns[i]) so that column order
// survives every edit and lookups by name go through a single index map.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant of the cell union a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a single table cell: null, a string, or a number.
// The zero Value is null. Values are comparable and usable as map keys;
// two Values are equal only when both kind and content match, so the
// number 1 and the string "1" are distinct.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null returns the missing-value cell.
func Null() Value { return Value{} }

// String returns a string cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric cell. NaN is treated as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the missing value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric content of v, if any.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the stringified cell: "" for null, the string itself, or the
// shortest decimal representation of a number (integers print without ".0").
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Text() }

// FormatNumber renders f the way cells are stringified everywhere.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON encodes null, string and number cells as their JSON counterparts.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(FormatNumber(v.num))
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, strings, numbers and booleans (stored as text).
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = String(x)
	case float64:
		*v = Number(x)
	case bool:
		*v = String(strconv.FormatBool(x))
	default:
		return fmt.Errorf("cell value must be a string, number or null, got %s", data)
	}
	return nil
}

// Table is the dataset owned by one session.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable builds a table from column names and positional rows.
// Rows shorter than the header are padded with nulls; longer rows are cut.
// Column names are used as given; callers normalize them through
// NormalizeColumns before exposing the table.
func NewTable(columns []string, rows [][]Value) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		rows:    make([][]Value, 0, len(rows)),
	}
	t.reindex()
	for _, r := range rows {
		t.rows = append(t.rows, fitRow(r, len(columns)))
	}
	return t
}

func fitRow(r []Value, width int) []Value {
	out := make([]Value, width)
	copy(out, r)
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether a column with exactly this name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the value at row i of the named column.
func (t *Table) Cell(i int, column string) (Value, bool) {
	c, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return Value{}, false
	}
	return t.rows[i][c], true
}

// Column returns a copy of every value in the named column.
func (t *Table) Column(name string) ([]Value, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Column: name}
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[c]
	}
	return out, nil
}

// Row returns row i as an ordered record.
func (t *Table) Row(i int) Record {
	return Record{
		Columns: t.Columns(),
		Values:  append([]Value(nil), t.rows[i]...),
	}
}

// Rows returns every row as a record, in order.
func (t *Table) Rows() []Record {
	out := make([]Record, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// SetColumn writes values into the named column, overwriting it in place if
// it exists and appending it as the last column otherwise. values must have
// one entry per row.
func (t *Table) SetColumn(name string, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("set column %q: got %d values for %d rows", name, len(values), len(t.rows))
	}
	c, ok := t.index[name]
	if !ok {
		t.columns = append(t.columns, name)
		c = len(t.columns) - 1
		t.index[name] = c
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], Value{})
		}
	}
	for i := range t.rows {
		t.rows[i][c] = values[i]
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	return NewTable(t.columns, t.rows)
}

// Record is one row paired with its column names. It marshals to a JSON
// object whose keys keep the table's column order.
type Record struct {
	Columns []string
	Values  []Value
}

// Get returns the value of the named column.
func (r Record) Get(column string) (Value, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return Value{}, false
}

// MarshalJSON writes the record as an ordered JSON object.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.Values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
