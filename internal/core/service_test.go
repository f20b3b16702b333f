package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	svc := NewService(NewSessionStore(time.Hour, 10))
	id, cols, rows := svc.Load(context.Background(), "", "contacts.csv", tbl(
		[]string{" Name ", `"Phone"`, "Email"},
		[]string{"Ann", "05321112233", "a@x"},
		[]string{"Bob", "89161234567", "b@x"},
		[]string{"Ann", "123", "a@x"},
	))
	require.NotEmpty(t, id)
	require.Equal(t, []string{"Name", "Phone", "Email"}, cols)
	require.Equal(t, 3, rows)
	return svc, id
}

func TestServiceWithoutSession(t *testing.T) {
	svc := NewService(NewSessionStore(time.Hour, 10))
	ctx := context.Background()

	_, err := svc.Headers(ctx, "")
	assert.ErrorIs(t, err, ErrNoDataLoaded)

	_, err = svc.DetectDuplicates(ctx, "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = svc.Snapshot(ctx, "")
	assert.ErrorIs(t, err, ErrNoDataLoaded)
}

func TestServiceLoadReusesSession(t *testing.T) {
	svc, id := newTestService(t)
	ctx := context.Background()

	again, cols, rows := svc.Load(ctx, id, "other.csv", tbl([]string{"x"}, []string{"1"}))
	assert.Equal(t, id, again)
	assert.Equal(t, []string{"x"}, cols)
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, svc.Sessions().Len())

	_, source, err := svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", source)

	fresh, _, _ := svc.Load(ctx, "expired-or-unknown", "new.csv", tbl([]string{"y"}))
	assert.NotEqual(t, id, fresh)
}

func TestServiceDuplicateFlow(t *testing.T) {
	svc, id := newTestService(t)
	ctx := context.Background()

	summary, err := svc.DetectDuplicates(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Name": 1, "Email": 1}, summary.Map())

	listing, err := svc.ListDuplicates(ctx, id, DuplicateQuery{Column: "Name"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, indices(listing))

	res, err := svc.ResolveDuplicates(ctx, id, ActionMerge, []int{0, 2}, "Name")
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowCount)

	summary, err = svc.DetectDuplicates(ctx, id)
	require.NoError(t, err)
	assert.False(t, summary.Found())

	snap, _, err := svc.Snapshot(ctx, id)
	require.NoError(t, err)
	v, _ := snap.Cell(1, "Phone")
	assert.Equal(t, String("05321112233\n123"), v)
}

func TestServiceResolveWrapsErrors(t *testing.T) {
	svc, id := newTestService(t)

	_, err := svc.ResolveDuplicates(context.Background(), id, ActionDelete, []int{10}, "Name")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidIndices)
	assert.Contains(t, err.Error(), "delete duplicates")

	headers, err := svc.Headers(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, headers, 3)
}

func TestServiceColumnsAndPhones(t *testing.T) {
	svc, id := newTestService(t)
	ctx := context.Background()

	cols, err := svc.EditColumns(ctx, id, []ColumnEdit{
		{Name: "Email", Include: false},
		{Name: "Phone", Include: true, Rename: "Mobile"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Mobile"}, cols)

	cols, err = svc.AddColumns(ctx, id, []ColumnFill{{Name: "Source", Value: String("crm")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Mobile", "Source"}, cols)

	values, err := svc.PhoneColumn(ctx, id, "Mobile")
	require.NoError(t, err)
	assert.Len(t, values, 3)

	_, err = svc.PhoneColumn(ctx, id, "Phone")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	records, err := svc.NormalizePhones(ctx, id, "Mobile")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Turkey", records[0].Country)
	assert.Equal(t, "Russia", records[1].Country)
	assert.Equal(t, Placeholder, records[2].Country)

	headers, err := svc.Headers(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Mobile", "Source", CleanedPhoneColumn, CountryColumn}, headers)
}

func TestServiceSnapshotIsIsolated(t *testing.T) {
	svc, id := newTestService(t)
	ctx := context.Background()

	snap, _, err := svc.Snapshot(ctx, id)
	require.NoError(t, err)
	require.NoError(t, snap.SetColumn("Name", []Value{Null(), Null(), Null()}))

	listing, err := svc.ListDuplicates(ctx, id, DuplicateQuery{Column: "Name"})
	require.NoError(t, err)
	assert.Equal(t, 2, listing.Total)
}

func TestServiceDetectColumnDuplicates(t *testing.T) {
	svc, id := newTestService(t)
	ctx := context.Background()

	summary, err := svc.DetectColumnDuplicates(ctx, id, "Email")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Email": 1}, summary.Map())

	summary, err = svc.DetectColumnDuplicates(ctx, id, "Phone")
	require.NoError(t, err)
	assert.False(t, summary.Found())

	_, err = svc.DetectColumnDuplicates(ctx, id, "Fax")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestServiceConcurrentOperationsOnOneSession(t *testing.T) {
	svc, id := newTestService(t)
	ctx := context.Background()

	contacts := func() *Table {
		return tbl([]string{"Name", "Phone", "Email"},
			[]string{"Ann", "05321112233", "a@x"},
			[]string{"Ann", "89161234567", "a@x"},
			[]string{"Bob", "123", "b@x"},
			[]string{"Cy", "", "c@x"},
		)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			got, _, rows := svc.Load(ctx, id, "contacts.csv", contacts())
			assert.Equal(t, id, got)
			assert.Equal(t, 4, rows, "row count is taken before any other operation runs")
		}()
		go func() {
			defer wg.Done()
			// Fails with ROW001 once repeated merges leave a single row.
			_, _ = svc.ResolveDuplicates(ctx, id, ActionMerge, []int{0, 1}, "Email")
		}()
		go func() {
			defer wg.Done()
			_, err := svc.NormalizePhones(ctx, id, "Phone")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Headers(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, _, err := svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap.Len(), 1)
	assert.LessOrEqual(t, snap.Len(), 4)
	for _, col := range snap.Columns() {
		values, err := snap.Column(col)
		require.NoError(t, err)
		assert.Len(t, values, snap.Len(), "column %q", col)
	}

	_, _, rows := svc.Load(ctx, id, "contacts.csv", contacts())
	snap, _, err = svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rows, snap.Len())
}
