package core

import (
	"strconv"
	"strings"
)

// NormalizeColumnName canonicalizes a column label: double quotes are
// removed, runs of whitespace (including newlines and non-breaking spaces)
// collapse to a single space, and the result is trimmed.
//
// Quotes are stripped before whitespace is collapsed so that a name like
// `a "" b` cannot leave a double space behind; this keeps the function
// idempotent.
func NormalizeColumnName(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeColumns rewrites the table's column names in place and returns
// the new list. Names that collide after normalization get ".1", ".2", ...
// suffixes in column order so lookups by name stay unambiguous.
func NormalizeColumns(t *Table) []string {
	for i, c := range t.columns {
		t.columns[i] = NormalizeColumnName(c)
	}
	t.columns = uniqueNames(t.columns)
	t.reindex()
	return t.Columns()
}

// uniqueNames keeps the first occurrence of every name and suffixes later
// repeats with the lowest free ".N".
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}

	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for i, n := range names {
		if !taken[n] {
			out[i] = n
			taken[n] = true
			continue
		}
		for k := 1; ; k++ {
			candidate := n + "." + strconv.Itoa(k)
			if !taken[candidate] && !seen[candidate] {
				out[i] = candidate
				taken[candidate] = true
				break
			}
		}
	}
	return out
}

// ColumnEdit is one include/exclude/rename decision for a column.
type ColumnEdit struct {
	Name    string `json:"name"`
	Include bool   `json:"include"`
	Rename  string `json:"rename"`
}

// EditColumns applies edits against the table's columns and returns the
// resulting column list.
//
// Directive names are normalized first. Every excluded column is dropped,
// then the remaining non-empty renames are applied. An excluded column is
// never renamed. Names that do not match a column are ignored without error.
// A rename whose target would collide with another column's final name is
// skipped and the column keeps its current name.
func EditColumns(t *Table, edits []ColumnEdit) []string {
	NormalizeColumns(t)

	drop := make(map[string]bool)
	rename := make(map[string]string)
	for _, e := range edits {
		name := NormalizeColumnName(e.Name)
		if !e.Include {
			drop[name] = true
			continue
		}
		if target := NormalizeColumnName(e.Rename); target != "" {
			rename[name] = target
		}
	}

	if len(drop) > 0 {
		t.dropColumns(drop)
	}
	if len(rename) > 0 {
		t.renameColumns(rename)
	}
	return t.Columns()
}

func (t *Table) dropColumns(drop map[string]bool) {
	keep := make([]int, 0, len(t.columns))
	for i, c := range t.columns {
		if !drop[c] {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.columns) {
		return
	}

	cols := make([]string, len(keep))
	for j, i := range keep {
		cols[j] = t.columns[i]
	}
	for r, row := range t.rows {
		next := make([]Value, len(keep))
		for j, i := range keep {
			next[j] = row[i]
		}
		t.rows[r] = next
	}
	t.columns = cols
	t.reindex()
}

func (t *Table) renameColumns(mapping map[string]string) {
	final := make([]string, len(t.columns))
	renamed := make([]bool, len(t.columns))
	for i, c := range t.columns {
		final[i] = c
		if to, ok := mapping[c]; ok && to != c {
			final[i] = to
			renamed[i] = true
		}
	}

	// Revert renames that collide until the name set is unique again.
	// Reverting only moves names back toward the original unique set, so
	// this terminates.
	for {
		counts := make(map[string]int, len(final))
		for _, n := range final {
			counts[n]++
		}
		changed := false
		for i := range final {
			if renamed[i] && counts[final[i]] > 1 {
				final[i] = t.columns[i]
				renamed[i] = false
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	t.columns = final
	t.reindex()
}

// ColumnFill assigns one constant value to every row of a column.
type ColumnFill struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// AddColumns creates or overwrites each named column with its constant
// value. Blank names are skipped. Returns the resulting column list.
func AddColumns(t *Table, fills []ColumnFill) []string {
	for _, f := range fills {
		name := NormalizeColumnName(f.Name)
		if name == "" {
			continue
		}
		values := make([]Value, t.Len())
		for i := range values {
			values[i] = f.Value
		}
		// Lengths always match here.
		_ = t.SetColumn(name, values)
	}
	return t.Columns()
}
