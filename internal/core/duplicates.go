package core

import (
	"cmp"
	"slices"
	"strings"
)

// Placeholder is the display sentinel for a missing cell. A literal
// "N/A" string in the target column is never treated as a duplicate value.
const Placeholder = "N/A"

// ColumnDuplicates is the duplicate count for one column.
type ColumnDuplicates struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// DuplicateSummary is the outcome of a duplicate scan. Counts lists only
// columns with at least one duplicate, in table column order.
type DuplicateSummary struct {
	Counts []ColumnDuplicates
}

// Found reports whether any column has duplicates. A false result is the
// explicit "no duplicates" outcome.
func (s DuplicateSummary) Found() bool { return len(s.Counts) > 0 }

// Map returns the counts keyed by column.
func (s DuplicateSummary) Map() map[string]int {
	m := make(map[string]int, len(s.Counts))
	for _, c := range s.Counts {
		m[c.Column] = c.Count
	}
	return m
}

// DetectDuplicates counts, per column, the non-null values that repeat an
// earlier value in the same column (the first occurrence is not counted).
// An empty column name scans every column; otherwise only that column is
// scanned and it must exist.
func DetectDuplicates(t *Table, column string) (DuplicateSummary, error) {
	var cols []int
	if column == "" {
		cols = make([]int, len(t.columns))
		for i := range cols {
			cols[i] = i
		}
	} else {
		c, ok := t.index[column]
		if !ok {
			return DuplicateSummary{}, &ColumnNotFoundError{Column: column}
		}
		cols = []int{c}
	}

	var summary DuplicateSummary
	for _, c := range cols {
		seen := make(map[Value]struct{})
		extra := 0
		for _, row := range t.rows {
			v := row[c]
			if v.IsNull() {
				continue
			}
			if _, dup := seen[v]; dup {
				extra++
				continue
			}
			seen[v] = struct{}{}
		}
		if extra > 0 {
			summary.Counts = append(summary.Counts, ColumnDuplicates{Column: t.columns[c], Count: extra})
		}
	}
	return summary, nil
}

// DuplicateQuery selects which duplicate group to list and how to order it.
type DuplicateQuery struct {
	Column     string // target column, required
	SortColumn string // defaults to Column
	Descending bool
}

// DuplicateRow is one row of a duplicate group together with its current
// position in the table.
type DuplicateRow struct {
	Index  int    `json:"index"`
	Values Record `json:"values"`
}

// DuplicateListing is the sorted, indexed duplicate group for a column.
type DuplicateListing struct {
	Column string         `json:"column"`
	Rows   []DuplicateRow `json:"duplicates"`
	Total  int            `json:"total"`
}

// Found reports whether any duplicate rows were listed.
func (l DuplicateListing) Found() bool { return l.Total > 0 }

// ListDuplicates returns every row whose target value is non-null, not the
// literal placeholder, and shared with at least one other row. Both the
// first and later occurrences are included. Rows are stably sorted by the
// sort column; missing cells always sort last and are rendered as the
// placeholder.
func ListDuplicates(t *Table, q DuplicateQuery) (DuplicateListing, error) {
	target, ok := t.index[q.Column]
	if !ok {
		return DuplicateListing{}, &ColumnNotFoundError{Column: q.Column}
	}
	sortName := q.SortColumn
	if sortName == "" {
		sortName = q.Column
	}
	sortCol, ok := t.index[sortName]
	if !ok {
		return DuplicateListing{}, &ColumnNotFoundError{Column: sortName}
	}

	counts := make(map[Value]int)
	for _, row := range t.rows {
		if v := row[target]; candidate(v) {
			counts[v]++
		}
	}

	var picked []int
	for i, row := range t.rows {
		if v := row[target]; candidate(v) && counts[v] > 1 {
			picked = append(picked, i)
		}
	}

	slices.SortStableFunc(picked, func(a, b int) int {
		return compareCells(t.rows[a][sortCol], t.rows[b][sortCol], q.Descending)
	})

	listing := DuplicateListing{Column: q.Column, Rows: make([]DuplicateRow, 0, len(picked))}
	for _, i := range picked {
		rec := t.Row(i)
		for j, v := range rec.Values {
			if v.IsNull() {
				rec.Values[j] = String(Placeholder)
			}
		}
		listing.Rows = append(listing.Rows, DuplicateRow{Index: i, Values: rec})
	}
	listing.Total = len(listing.Rows)
	return listing, nil
}

func candidate(v Value) bool {
	if v.IsNull() {
		return false
	}
	return !(v.Kind() == KindString && v.Text() == Placeholder)
}

// compareCells orders numbers before strings, numbers numerically and
// strings lexically. Nulls sort last in both directions.
func compareCells(a, b Value, desc bool) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return 1
	case b.IsNull():
		return -1
	}

	var c int
	if a.Kind() != b.Kind() {
		c = cmp.Compare(kindRank(a.Kind()), kindRank(b.Kind()))
	} else if a.Kind() == KindNumber {
		c = cmp.Compare(a.num, b.num)
	} else {
		c = strings.Compare(a.str, b.str)
	}
	if desc {
		return -c
	}
	return c
}

func kindRank(k Kind) int {
	if k == KindNumber {
		return 0
	}
	return 1
}

// Action is what to do with a selected set of duplicate rows.
type Action string

const (
	ActionMerge  Action = "merge"
	ActionDelete Action = "delete"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionMerge, ActionDelete:
		return a, nil
	default:
		return "", &InvalidActionError{Action: s}
	}
}

// Resolution reports the effect of a duplicate action.
type Resolution struct {
	Action   Action `json:"action"`
	Affected int    `json:"affected"`
	RowCount int    `json:"row_count"`
	Message  string `json:"message"`
}

// ResolveDuplicates merges or deletes the rows at the given positions.
//
// Positions refer to the table's current dense 0-based order. Every index
// is checked before anything changes: one bad index fails the whole call
// and the table is left as it was. Repeated indices are treated once.
//
// Merge collapses the selected rows into one row appended at the end; for
// each column it holds the distinct non-null stringified values in the
// order the rows were selected, joined by newlines (null if none).
func ResolveDuplicates(t *Table, action Action, indices []int, column string) (Resolution, error) {
	if _, ok := t.index[column]; !ok {
		return Resolution{}, &ColumnNotFoundError{Column: column}
	}
	if action != ActionMerge && action != ActionDelete {
		return Resolution{}, &InvalidActionError{Action: string(action)}
	}

	selected, err := t.checkIndices(indices)
	if err != nil {
		return Resolution{}, err
	}

	var merged []Value
	if action == ActionMerge {
		merged = t.mergeRows(selected)
	}

	t.removeRows(selected)
	if merged != nil {
		t.rows = append(t.rows, merged)
	}

	verb := "deleted"
	if action == ActionMerge {
		verb = "merged"
	}
	return Resolution{
		Action:   action,
		Affected: len(selected),
		RowCount: t.Len(),
		Message:  "Duplicates " + verb + " successfully.",
	}, nil
}

// checkIndices returns the distinct indices in first-seen order or an
// InvalidIndicesError naming every out-of-range entry.
func (t *Table) checkIndices(indices []int) ([]int, error) {
	if len(indices) == 0 {
		return nil, &InvalidIndicesError{RowCount: t.Len()}
	}

	var bad []int
	seen := make(map[int]bool, len(indices))
	selected := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= t.Len() {
			bad = append(bad, i)
			continue
		}
		if !seen[i] {
			seen[i] = true
			selected = append(selected, i)
		}
	}
	if len(bad) > 0 {
		return nil, &InvalidIndicesError{Indices: bad, RowCount: t.Len()}
	}
	return selected, nil
}

func (t *Table) mergeRows(selected []int) []Value {
	merged := make([]Value, len(t.columns))
	for c := range t.columns {
		var parts []string
		seen := make(map[string]bool)
		for _, i := range selected {
			v := t.rows[i][c]
			if v.IsNull() {
				continue
			}
			s := v.Text()
			if !seen[s] {
				seen[s] = true
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			merged[c] = String(strings.Join(parts, "\n"))
		}
	}
	return merged
}

// removeRows drops the given positions and keeps the rest densely packed.
func (t *Table) removeRows(selected []int) {
	drop := make(map[int]bool, len(selected))
	for _, i := range selected {
		drop[i] = true
	}
	kept := t.rows[:0]
	for i, row := range t.rows {
		if !drop[i] {
			kept = append(kept, row)
		}
	}
	// Clear the tail so dropped rows can be collected.
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
}
