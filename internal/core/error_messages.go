package core

// # Error Codes Reference
//
// This file maps technical errors to user-facing messages with a code that
// users can quote when reporting a problem.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source not found: The attendance file could not be found
//	         Patterns: "source not found", "no such file"
//
//	SRC002 - Bad status: The attendance server answered with an error
//	         Patterns: "unexpected source status"
//
//	SRC003 - Too large: The attendance file exceeds the size limit
//	         Patterns: "source too large"
//
//	SRC004 - Unsupported: The configured location is not a file, URL or database
//	         Patterns: "unsupported source"
//
//	SRC005 - Unreachable: The attendance server or database could not be reached
//	         Patterns: "connection refused", "no such host"
//
//	SRC006 - Read failed: The source failed while sending data (e.g. COPY error)
//	         Patterns: "source read failed"
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Duplicate column: The header repeats a column name
//	         Patterns: "duplicate column"
//
//	CSV002 - Invalid CSV: The file is not valid CSV
//	         Patterns: "invalid csv"
//
//	CSV003 - Malformed rows: Some rows had the wrong number of fields
//	         Patterns: "malformed row"
//
//	CSV004 - Not attendance data: The header has none of the attendance columns
//	         Patterns: "not attendance csv"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Cancelled: The request was cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Timed out: The request took too long
//	         Patterns: "context deadline exceeded", "timeout"
//
//	REQ003 - Bad request: The request body could not be read
//	         Patterns: "invalid request"
//
//	REQ004 - Not found: No page at this address
//	         Patterns: "page not found"
//
//	REQ005 - Method not allowed
//	         Patterns: "method not allowed"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default (ERR000)
//
//	ERR000 - An unexpected error occurred
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Source errors. "source too large" precedes "invalid csv" because a
	// size cap hit mid-parse is wrapped by the parser.
	{
		pattern: "source too large",
		msg: UserMessage{
			Message: "The attendance file is larger than the configured limit",
			Action:  "Raise ATTENDANCE_MAX_BYTES or trim the file",
			Code:    "SRC003",
		},
	},
	{
		pattern: "source not found",
		msg: UserMessage{
			Message: "The attendance file could not be found",
			Action:  "Check ATTENDANCE_SOURCE points at an existing file",
			Code:    "SRC001",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The attendance file could not be found",
			Action:  "Check ATTENDANCE_SOURCE points at an existing file",
			Code:    "SRC001",
		},
	},
	{
		pattern: "unexpected source status",
		msg: UserMessage{
			Message: "The attendance server returned an error",
			Action:  "Verify the URL serves the CSV file",
			Code:    "SRC002",
		},
	},
	{
		pattern: "unsupported source",
		msg: UserMessage{
			Message: "The attendance location is not supported",
			Action:  "Use a file path, an http(s) URL or a postgres:// DSN",
			Code:    "SRC004",
		},
	},
	{
		pattern: "source read failed",
		msg: UserMessage{
			Message: "The attendance source failed while sending data",
			Action:  "Check ATTENDANCE_PG_TABLE exists and the database user can read it",
			Code:    "SRC006",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The attendance source could not be reached",
			Action:  "Please try again in a few moments",
			Code:    "SRC005",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "The attendance source could not be reached",
			Action:  "Check the host name in ATTENDANCE_SOURCE",
			Code:    "SRC005",
		},
	},

	// CSV errors
	{
		pattern: "duplicate column",
		msg: UserMessage{
			Message: "The CSV header repeats a column name",
			Action:  "Make every header name unique",
			Code:    "CSV001",
		},
	},
	{
		pattern: "not attendance csv",
		msg: UserMessage{
			Message: "The file does not look like attendance data",
			Action:  "Use a CSV whose first row names columns such as Rollno, Division and classroom",
			Code:    "CSV004",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The attendance file is not valid CSV",
			Action:  "Ensure the file is comma-separated with balanced quotes",
			Code:    "CSV002",
		},
	},
	{
		pattern: "malformed row",
		msg: UserMessage{
			Message: "Some rows had the wrong number of fields and were skipped",
			Action:  "Fix the listed lines in the CSV file",
			Code:    "CSV003",
		},
	},

	// Request errors
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again or check the attendance source",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again or check the attendance source",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a JSON body like {\"term\": \"FY\"}",
			Code:    "REQ003",
		},
	},
	{
		pattern: "page not found",
		msg: UserMessage{
			Message: "Page not found",
			Action:  "Go back to the dashboard at /",
			Code:    "REQ004",
		},
	},
	{
		pattern: "method not allowed",
		msg: UserMessage{
			Message: "This address does not accept that request method",
			Action:  "Use the dashboard search form or the documented API methods",
			Code:    "REQ005",
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
// It returns the first matching pattern, or ERR000 when none match.
//
// Example:
//
//	msg := MapError(&IngestionError{Source: "a.csv", Op: "fetch", Err: ErrSourceNotFound})
//	// msg.Code == "SRC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern (not ERR000).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
