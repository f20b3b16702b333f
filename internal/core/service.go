package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/tabclean/internal/logging"
)

// Service exposes the table operations by session id. It is the entry point
// for the HTTP handlers and the CLI.
type Service struct {
	sessions *SessionStore
}

// NewService creates a Service over a session store.
func NewService(sessions *SessionStore) *Service {
	return &Service{sessions: sessions}
}

// Sessions returns the underlying store.
func (s *Service) Sessions() *SessionStore { return s.sessions }

// Load replaces the table of an existing session, or of a new session when
// sessionID is empty or no longer live. It returns the session id that now
// holds the table, its normalized columns and its row count. The caller must
// not use t afterwards.
func (s *Service) Load(ctx context.Context, sessionID, source string, t *Table) (id string, cols []string, rows int) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		sess = s.sessions.Create()
	}
	cols, rows = sess.Load(source, t)

	ctx = logging.WithSessionID(ctx, sess.ID)
	logging.FromContext(ctx).Info("dataset loaded",
		"source", source,
		"rows", rows,
		"columns", len(cols),
	)
	return sess.ID, cols, rows
}

// do resolves the session and runs fn under its lock.
func (s *Service) do(sessionID string, fn func(t *Table) error) error {
	if sessionID == "" {
		return ErrNoDataLoaded
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return sess.Do(fn)
}

// Headers returns the current column names.
func (s *Service) Headers(ctx context.Context, sessionID string) ([]string, error) {
	var cols []string
	err := s.do(sessionID, func(t *Table) error {
		cols = t.Columns()
		return nil
	})
	return cols, err
}

// EditColumns applies include/exclude/rename directives.
func (s *Service) EditColumns(ctx context.Context, sessionID string, edits []ColumnEdit) ([]string, error) {
	var cols []string
	err := s.do(sessionID, func(t *Table) error {
		before := len(t.columns)
		cols = EditColumns(t, edits)
		logging.FromContext(ctx).Info("columns updated",
			"directives", len(edits),
			"dropped", before-len(cols),
			"columns", len(cols),
		)
		return nil
	})
	return cols, err
}

// AddColumns fills new or existing columns with constant values.
func (s *Service) AddColumns(ctx context.Context, sessionID string, fills []ColumnFill) ([]string, error) {
	var cols []string
	err := s.do(sessionID, func(t *Table) error {
		cols = AddColumns(t, fills)
		logging.FromContext(ctx).Info("columns added", "count", len(fills))
		return nil
	})
	return cols, err
}

// DetectDuplicates scans every column for repeated values.
func (s *Service) DetectDuplicates(ctx context.Context, sessionID string) (DuplicateSummary, error) {
	var summary DuplicateSummary
	err := s.do(sessionID, func(t *Table) error {
		var err error
		summary, err = DetectDuplicates(t, "")
		return err
	})
	if err == nil {
		logging.FromContext(ctx).Debug("duplicates detected", "columns", len(summary.Counts))
	}
	return summary, err
}

// DetectColumnDuplicates is DetectDuplicates restricted to one column.
func (s *Service) DetectColumnDuplicates(ctx context.Context, sessionID, column string) (DuplicateSummary, error) {
	var summary DuplicateSummary
	err := s.do(sessionID, func(t *Table) error {
		var err error
		summary, err = DetectDuplicates(t, column)
		return err
	})
	return summary, err
}

// ListDuplicates returns the sorted duplicate group for a column.
func (s *Service) ListDuplicates(ctx context.Context, sessionID string, q DuplicateQuery) (DuplicateListing, error) {
	var listing DuplicateListing
	err := s.do(sessionID, func(t *Table) error {
		var err error
		listing, err = ListDuplicates(t, q)
		return err
	})
	if err == nil {
		logging.FromContext(ctx).Debug("duplicates listed", "column", q.Column, "rows", listing.Total)
	}
	return listing, err
}

// ResolveDuplicates merges or deletes the selected rows.
func (s *Service) ResolveDuplicates(ctx context.Context, sessionID string, action Action, indices []int, column string) (Resolution, error) {
	var res Resolution
	err := s.do(sessionID, func(t *Table) error {
		var err error
		res, err = ResolveDuplicates(t, action, indices, column)
		return err
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("%s duplicates: %w", action, err)
	}
	logging.FromContext(ctx).Info("duplicates resolved",
		"action", res.Action,
		"rows", res.Affected,
		"row_count", res.RowCount,
	)
	return res, nil
}

// PhoneColumn returns the raw values of the chosen phone column.
func (s *Service) PhoneColumn(ctx context.Context, sessionID, column string) ([]Value, error) {
	var values []Value
	err := s.do(sessionID, func(t *Table) error {
		var err error
		values, err = t.Column(column)
		return err
	})
	return values, err
}

// NormalizePhones classifies a phone column and writes the derived columns.
func (s *Service) NormalizePhones(ctx context.Context, sessionID, column string) ([]PhoneRecord, error) {
	var records []PhoneRecord
	err := s.do(sessionID, func(t *Table) error {
		var err error
		records, err = NormalizePhones(t, column)
		return err
	})
	if err != nil {
		return nil, err
	}

	matched := 0
	for _, r := range records {
		if r.Matched() {
			matched++
		}
	}
	logging.FromContext(ctx).Info("phone numbers normalized",
		"column", column,
		"rows", len(records),
		"matched", matched,
	)
	return records, nil
}

// Snapshot returns a copy of the session's table for export.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Table, string, error) {
	var (
		out    *Table
		source string
	)
	if sessionID == "" {
		return nil, "", ErrNoDataLoaded
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, "", err
	}
	err = sess.Do(func(t *Table) error {
		out = t.Clone()
		source = sess.source
		return nil
	})
	return out, source, err
}
