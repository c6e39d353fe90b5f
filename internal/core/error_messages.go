package core

// error_messages.go defines diagnostic codes and user-friendly error messages.
//
// # Error Codes Reference
//
// Every ImportError and ImportWarning carries a code so users can quote it to
// support staff. Codes are grouped by category:
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Empty input: the file has no header row or no data rows
//	IMP002 - Unknown broker: the requested broker is not registered; detection was used
//	IMP003 - System busy: too many imports in progress
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL000 - Invalid value: the value was rejected for an unspecified reason
//	VAL001 - Invalid date: the value is not a recognised date
//	VAL002 - Invalid number: the value is not a recognised number
//	VAL003 - Required field missing: no column supplied a required field
//	VAL004 - Invalid symbol: symbols are 1-5 letters
//	VAL005 - Invalid option type: must be call or put
//	VAL006 - Expired: the expiry is not after the import date
//	VAL007 - Non-positive strike
//	VAL008 - Zero quantity
//	VAL009 - Negative entry price
//	VAL010 - Broker rule: a broker-specific validator rejected the value
//	VAL011 - Unknown field
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Row failure: the row could not be processed at all
//
// # Transform Warnings (TRN001-TRN099)
//
//	TRN001 - Transform failed: the raw value was kept
//	TRN002 - Unknown transform: the schema names a transform that is not registered
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE003 - Encoding error
//	FILE004 - No file provided
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs for the original technical error.

import (
	"fmt"
	"strings"
)

// Diagnostic codes.
const (
	CodeEmptyInput    = "IMP001"
	CodeUnknownBroker = "IMP002"
	CodeSystemBusy    = "IMP003"

	CodeInvalidValue      = "VAL000"
	CodeInvalidDate       = "VAL001"
	CodeInvalidNumber     = "VAL002"
	CodeRequiredMissing   = "VAL003"
	CodeInvalidSymbol     = "VAL004"
	CodeInvalidOptionType = "VAL005"
	CodeExpired           = "VAL006"
	CodeNonPositiveStrike = "VAL007"
	CodeZeroQuantity      = "VAL008"
	CodeNegativePrice     = "VAL009"
	CodeSchemaRule        = "VAL010"
	CodeUnknownField      = "VAL011"

	CodeRowFailure = "ROW001"

	CodeTransformFailed  = "TRN001"
	CodeUnknownTransform = "TRN002"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// codeMessages holds the guidance shown next to each diagnostic code.
var codeMessages = map[string]UserMessage{
	CodeEmptyInput: {
		Message: "The file has no data",
		Action:  "Export positions with a header row and at least one data row",
	},
	CodeUnknownBroker: {
		Message: "Unknown broker",
		Action:  "Choose a supported broker or let the importer detect it",
	},
	CodeSystemBusy: {
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
	},
	CodeInvalidValue: {
		Message: "Invalid value",
		Action:  "Check the value against the broker's export format",
	},
	CodeInvalidDate: {
		Message: "Invalid date format detected",
		Action:  "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2027",
	},
	CodeInvalidNumber: {
		Message: "Invalid number format detected",
		Action:  "Use a plain decimal number",
	},
	CodeRequiredMissing: {
		Message: "Required field is missing",
		Action:  "Ensure symbol, type, strike, expiry and quantity columns have values",
	},
	CodeInvalidSymbol: {
		Message: "Invalid underlying symbol",
		Action:  "Symbols must be 1 to 5 letters",
	},
	CodeInvalidOptionType: {
		Message: "Invalid option type",
		Action:  "Use call, put, C or P",
	},
	CodeExpired: {
		Message: "Option has already expired",
		Action:  "Remove expired positions from the export",
	},
	CodeNonPositiveStrike: {
		Message: "Strike must be greater than zero",
		Action:  "Check the strike column",
	},
	CodeZeroQuantity: {
		Message: "Quantity must be non-zero",
		Action:  "Remove closed positions from the export",
	},
	CodeNegativePrice: {
		Message: "Entry price cannot be negative",
		Action:  "Check the price column; shorts are expressed by a negative quantity",
	},
	CodeSchemaRule: {
		Message: "Value rejected by a broker-specific rule",
		Action:  "Review the broker's import restrictions",
	},
	CodeUnknownField: {
		Message: "Unknown field",
		Action:  "Check the schema definition",
	},
	CodeRowFailure: {
		Message: "Row could not be processed",
		Action:  "Check the row for malformed values or contact support",
	},
	CodeTransformFailed: {
		Message: "Value could not be normalised and was used as-is",
		Action:  "Verify the value in the imported position",
	},
	CodeUnknownTransform: {
		Message: "Schema references an unknown transform",
		Action:  "Check the schema file for typos",
	},
}

// Describe returns the guidance for a diagnostic code.
// Unknown codes yield the ERR000 fallback.
func Describe(code string) UserMessage {
	msg, ok := codeMessages[code]
	if !ok {
		return defaultMessage
	}
	msg.Code = code
	return msg
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "input too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Export fewer positions per file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid schema override",
		msg: UserMessage{
			Message: "The column mapping override could not be read",
			Action:  "Send the override as a JSON broker schema",
			Code:    "REQ003",
		},
	},
	{
		pattern: "invalid detect request",
		msg: UserMessage{
			Message: "The header list could not be read",
			Action:  `Send a JSON body like {"headers": ["Symbol", "Strike"]}`,
			Code:    "REQ004",
		},
	},
	{
		pattern: "unknown broker",
		msg:     Describe(CodeUnknownBroker),
	},
	{
		pattern: "too many concurrent imports",
		msg:     Describe(CodeSystemBusy),
	},
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
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
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
// It searches the known error patterns (case-insensitive) and returns
// the first match, or the ERR000 fallback.
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern, meaning the
// mapped message is more useful to a user than the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
