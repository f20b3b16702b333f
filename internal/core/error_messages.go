package core

// error_messages.go maps technical errors to user-facing messages.
//
// Every message carries a short code users can quote to support staff.
//
// # Data Errors (DATA, COL, ROW, ACT)
//
//	DATA001 - No data loaded: no dataset has been uploaded in this session
//	          Action: Upload a CSV or Excel file first
//	COL001  - Column not found: the referenced column does not exist
//	          Action: Refresh the column list and pick an existing column
//	ROW001  - Invalid rows: the row selection refers to rows that do not exist
//	          Action: Reload the duplicate list and select rows again
//	ACT001  - Invalid action: the duplicate action is not merge or delete
//	          Action: Choose merge or delete
//
// # File Errors (FILE001-FILE004)
//
//	FILE001 - File too large
//	FILE002 - Unsupported file type (only .csv and .xlsx)
//	FILE003 - Unreadable file (malformed CSV or workbook)
//	FILE004 - No file provided
//
// # Session and Request Errors
//
//	SES001  - Session expired or unknown
//	UPL002  - Too many uploads being processed
//	REQ001  - Request body failed validation
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the server log for the technical error.
//
// Sentinel errors are matched first with errors.Is; only then are the
// case-insensitive substring patterns consulted, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgNoData = UserMessage{
		Message: "No data loaded",
		Action:  "Upload a CSV or Excel file first",
		Code:    "DATA001",
	}
	msgColumnNotFound = UserMessage{
		Message: "Column not found in the dataset",
		Action:  "Refresh the column list and pick an existing column",
		Code:    "COL001",
	}
	msgInvalidIndices = UserMessage{
		Message: "One or more selected rows do not exist",
		Action:  "Reload the duplicate list and select rows again",
		Code:    "ROW001",
	}
	msgInvalidAction = UserMessage{
		Message: "Invalid action",
		Action:  "Choose merge or delete",
		Code:    "ACT001",
	}
	msgUnsupported = UserMessage{
		Message: "Unsupported file type",
		Action:  "Upload a .csv or .xlsx file",
		Code:    "FILE002",
	}
	msgSession = UserMessage{
		Message: "Your session has expired",
		Action:  "Upload the file again to start a new session",
		Code:    "SES001",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
)

// sentinelMessages is consulted before any substring pattern.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrNoDataLoaded, msgNoData},
	{ErrColumnNotFound, msgColumnNotFound},
	{ErrInvalidIndices, msgInvalidIndices},
	{ErrInvalidAction, msgInvalidAction},
	{ErrUnsupportedInput, msgUnsupported},
	{ErrSessionNotFound, msgSession},
	{ErrTooManyUploads, msgBusy},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers errors that arrive as plain text from collaborators
// (net/http, encoding/csv, excelize). Order matters.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused rows or columns and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused rows or columns and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Re-save the file as .xlsx and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "The request is missing or has invalid fields",
			Action:  "Check the request fields and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be read",
			Action:  "Send a JSON request body",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
