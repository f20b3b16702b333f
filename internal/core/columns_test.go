package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`  "First  Name" `, "First Name"},
		{"Phone\nNumber", "Phone Number"},
		{"a \tb", "a b"},
		{`a "" b`, "a b"},
		{"Email", "Email"},
		{`""`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeColumnName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeColumnName(got), "normalization must be idempotent")
		})
	}
}

func TestNormalizeColumns(t *testing.T) {
	table := tbl([]string{` "Name"`, "Name ", "Phone\nNumber", "Name.1"}, []string{"a", "b", "c", "d"})

	cols := NormalizeColumns(table)
	assert.Equal(t, []string{"Name", "Name.2", "Phone Number", "Name.1"}, cols)

	v, ok := table.Cell(0, "Name.2")
	assert.True(t, ok)
	assert.Equal(t, String("b"), v)

	assert.Equal(t, cols, NormalizeColumns(table))
}

func TestEditColumns(t *testing.T) {
	newTable := func() *Table {
		return tbl([]string{"Name", "Phone", "Email", "Notes"},
			[]string{"Ann", "555", "a@x", "n1"},
			[]string{"Bob", "666", "b@x", "n2"},
		)
	}

	t.Run("exclude and rename", func(t *testing.T) {
		table := newTable()
		cols := EditColumns(table, []ColumnEdit{
			{Name: "Notes", Include: false},
			{Name: " Phone ", Include: true, Rename: "Mobile  Phone"},
			{Name: "Email", Include: true},
		})
		assert.Equal(t, []string{"Name", "Mobile Phone", "Email"}, cols)

		v, ok := table.Cell(1, "Mobile Phone")
		assert.True(t, ok)
		assert.Equal(t, String("666"), v)
	})

	t.Run("unknown names are ignored", func(t *testing.T) {
		table := newTable()
		before := table.Rows()
		cols := EditColumns(table, []ColumnEdit{
			{Name: "Fax", Include: false},
			{Name: "Pager", Include: true, Rename: "Beeper"},
		})
		assert.Equal(t, []string{"Name", "Phone", "Email", "Notes"}, cols)
		assert.Equal(t, before, table.Rows())
	})

	t.Run("excluded column is not renamed", func(t *testing.T) {
		table := newTable()
		cols := EditColumns(table, []ColumnEdit{
			{Name: "Notes", Include: false, Rename: "Comments"},
		})
		assert.Equal(t, []string{"Name", "Phone", "Email"}, cols)
	})

	t.Run("colliding rename is skipped", func(t *testing.T) {
		table := newTable()
		cols := EditColumns(table, []ColumnEdit{
			{Name: "Phone", Include: true, Rename: "Email"},
		})
		assert.Equal(t, []string{"Name", "Phone", "Email", "Notes"}, cols)
	})

	t.Run("swap is allowed", func(t *testing.T) {
		table := newTable()
		cols := EditColumns(table, []ColumnEdit{
			{Name: "Phone", Include: true, Rename: "Email"},
			{Name: "Email", Include: true, Rename: "Phone"},
		})
		assert.Equal(t, []string{"Name", "Email", "Phone", "Notes"}, cols)
		v, _ := table.Cell(0, "Email")
		assert.Equal(t, String("555"), v)
	})

	t.Run("rename into a dropped name", func(t *testing.T) {
		table := newTable()
		cols := EditColumns(table, []ColumnEdit{
			{Name: "Notes", Include: false},
			{Name: "Email", Include: true, Rename: "Notes"},
		})
		assert.Equal(t, []string{"Name", "Phone", "Notes"}, cols)
	})

	t.Run("no directives", func(t *testing.T) {
		table := newTable()
		assert.Equal(t, []string{"Name", "Phone", "Email", "Notes"}, EditColumns(table, nil))
	})
}

func TestAddColumns(t *testing.T) {
	table := tbl([]string{"Name"}, []string{"Ann"}, []string{"Bob"})

	cols := AddColumns(table, []ColumnFill{
		{Name: "Source", Value: String("import")},
		{Name: "  ", Value: String("skipped")},
		{Name: "Name", Value: Null()},
	})
	assert.Equal(t, []string{"Name", "Source"}, cols)
	assert.Equal(t, []Value{Null(), String("import")}, table.Row(1).Values)
}
