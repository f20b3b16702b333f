package web

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tabclean/internal/core"
	"github.com/JonMunkholm/tabclean/internal/dataset"
	"github.com/JonMunkholm/tabclean/internal/logging"
	tcmw "github.com/JonMunkholm/tabclean/internal/web/middleware"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

const msgNoDuplicates = "No duplicates found."

// sessionID returns the dataset session bound to the request, if any.
func sessionID(r *http.Request) string {
	return logging.SessionIDFromContext(r.Context())
}

// bindSession points the client's cookie at the dataset session id.
func (s *Server) bindSession(w http.ResponseWriter, r *http.Request, id string) error {
	// A cookie signed with an old key yields a fresh session and an error;
	// overwriting it is the intended recovery.
	sess, _ := s.cookies.Get(r, s.cfg.Session.CookieName)
	if sess == nil {
		return errors.New("session cookie unavailable")
	}
	sess.Values[tcmw.SessionValueKey] = id
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.Sessions().Len(),
		"uploads":  s.uploads.Active(),
	})
}

type uploadResponse struct {
	Message  string   `json:"message"`
	FileName string   `json:"file_name"`
	Headers  []string `json:"headers"`
	Rows     int      `json:"rows"`
}

// handleUpload decodes a CSV or XLSX file into the caller's session,
// creating the session when the request has none.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uploads.Acquire(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.uploads.Release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			err = errNoFile
		}
		s.respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	fileName := filepath.Base(header.Filename)
	table, err := dataset.Decode(ctx, fileName, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	id, cols, rows := s.service.Load(ctx, sessionID(r), fileName, table)
	if err := s.bindSession(w, r, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, uploadResponse{
		Message:  "File uploaded successfully.",
		FileName: fileName,
		Headers:  cols,
		Rows:     rows,
	})
}

func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	cols, err := s.service.Headers(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"headers": cols})
}

func (s *Server) handleUpdateColumns(w http.ResponseWriter, r *http.Request) {
	var req updateColumnsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	cols, err := s.service.EditColumns(r.Context(), sessionID(r), req.edits())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":         "Columns updated successfully.",
		"updated_headers": cols,
	})
}

func (s *Server) handleAddColumns(w http.ResponseWriter, r *http.Request) {
	var req addColumnsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	cols, err := s.service.AddColumns(r.Context(), sessionID(r), req.fills())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message": "New columns added successfully.",
		"headers": cols,
	})
}

// handleCheckDuplicates returns {column: count} for every column that has
// duplicates, or a message when none do.
func (s *Server) handleCheckDuplicates(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.DetectDuplicates(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !summary.Found() {
		writeJSON(w, r, http.StatusOK, map[string]any{"message": msgNoDuplicates})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"duplicates": summary.Counts,
		"counts":     summary.Map(),
	})
}

func (s *Server) handleShowDuplicates(w http.ResponseWriter, r *http.Request) {
	var req showDuplicatesRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	listing, err := s.service.ListDuplicates(r.Context(), sessionID(r), req.query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !listing.Found() {
		writeJSON(w, r, http.StatusOK, map[string]any{
			"message":    msgNoDuplicates,
			"duplicates": []core.DuplicateRow{},
		})
		return
	}
	writeJSON(w, r, http.StatusOK, listing)
}

func (s *Server) handleProcessDuplicates(w http.ResponseWriter, r *http.Request) {
	var req processDuplicatesRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	// An unknown action goes through as is: core rejects a missing column
	// before it looks at the action.
	action, err := core.ParseAction(req.Action)
	if err != nil {
		action = core.Action(req.Action)
	}

	res, err := s.service.ResolveDuplicates(r.Context(), sessionID(r), action, req.Rows, req.Column)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":   res.Message,
		"affected":  res.Affected,
		"row_count": res.RowCount,
	})
}

func (s *Server) handleSelectPhoneColumn(w http.ResponseWriter, r *http.Request) {
	var req selectPhoneRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	values, err := s.service.PhoneColumn(r.Context(), sessionID(r), req.PhoneColumn)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("Phone column '%s' selected successfully.", req.PhoneColumn),
		"column":        req.PhoneColumn,
		"phone_numbers": values,
	})
}

func (s *Server) handleProcessPhones(w http.ResponseWriter, r *http.Request) {
	var req processPhonesRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	records, err := s.service.NormalizePhones(r.Context(), sessionID(r), req.Column)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"phoneNumbers": records})
}

// handleDownload streams the session's table as CSV (default) or XLSX.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := dataset.FormatCSV
	if q := strings.ToLower(r.URL.Query().Get("format")); q != "" {
		f, err := dataset.FormatOf("export." + q)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		format = f
	}

	table, source, err := s.service.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if name == "" || name == "." {
		name = "dataset"
	}
	fileName := fmt.Sprintf("%s_cleaned.%s", name, format)

	w.Header().Set("Content-Type", dataset.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := dataset.Encode(w, format, table); err != nil {
		// Headers are sent; only the log sees this.
		logging.FromContext(r.Context()).Error("download encode error", "error", err, "format", format)
	}
}
