package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names a canonical attribute of an imported position.
type Field string

const (
	FieldSymbol     Field = "symbol"
	FieldOptionType Field = "type"
	FieldStrike     Field = "strike"
	FieldExpiry     Field = "expiry"
	FieldQuantity   Field = "quantity"
	FieldEntryPrice Field = "entryPrice"
	FieldEntryDate  Field = "entryDate"
	FieldNotes      Field = "notes"
	FieldAccountID  Field = "accountId"
)

// CanonicalFields lists every canonical field in resolution order.
var CanonicalFields = []Field{
	FieldSymbol,
	FieldOptionType,
	FieldStrike,
	FieldExpiry,
	FieldQuantity,
	FieldEntryPrice,
	FieldEntryDate,
	FieldNotes,
	FieldAccountID,
}

// RequiredFields are the fields every accepted position must carry.
var RequiredFields = []Field{
	FieldSymbol,
	FieldOptionType,
	FieldStrike,
	FieldExpiry,
	FieldQuantity,
}

// IsRequired reports whether f is one of the required canonical fields.
func (f Field) IsRequired() bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}

// OptionType is the right of an option contract.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// Severity grades an ImportError.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ContractMultiplier is the number of shares one option contract controls.
const ContractMultiplier = 100

// RawRow maps raw column names to raw cell values for one input row.
type RawRow map[string]string

// Clone returns a shallow copy of the row.
func (r RawRow) Clone() RawRow {
	out := make(RawRow, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// BrokerSchema describes how one broker's export columns map to canonical fields.
//
// Transforms and Validators reference functions registered by name with
// RegisterTransform and RegisterValidator, so a schema is plain data and can be
// loaded from a file.
type BrokerSchema struct {
	Key        string             `json:"key"`
	Name       string             `json:"name"`
	FieldMap   map[Field][]string `json:"fieldMap"`
	Transforms map[Field]string   `json:"transforms,omitempty"`
	Validators map[Field]string   `json:"validators,omitempty"`
}

// MappedFields returns the canonical fields present in the schema's FieldMap,
// in canonical order.
func (s BrokerSchema) MappedFields() []Field {
	var fields []Field
	for _, f := range CanonicalFields {
		if _, ok := s.FieldMap[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Merge overlays a partial schema on s. Every field the override sets wins;
// everything else is inherited. The receiver is not modified.
func (s BrokerSchema) Merge(override *BrokerSchema) BrokerSchema {
	out := BrokerSchema{
		Key:        s.Key,
		Name:       s.Name,
		FieldMap:   make(map[Field][]string, len(s.FieldMap)),
		Transforms: make(map[Field]string, len(s.Transforms)),
		Validators: make(map[Field]string, len(s.Validators)),
	}
	for f, cols := range s.FieldMap {
		out.FieldMap[f] = cols
	}
	for f, name := range s.Transforms {
		out.Transforms[f] = name
	}
	for f, name := range s.Validators {
		out.Validators[f] = name
	}

	if override == nil {
		return out
	}
	if override.Key != "" {
		out.Key = override.Key
	}
	if override.Name != "" {
		out.Name = override.Name
	}
	for f, cols := range override.FieldMap {
		out.FieldMap[f] = cols
	}
	for f, name := range override.Transforms {
		out.Transforms[f] = name
	}
	for f, name := range override.Validators {
		out.Validators[f] = name
	}
	return out
}

// ImportedPosition is one validated option position.
type ImportedPosition struct {
	Symbol       string     `json:"symbol"`
	Type         OptionType `json:"type"`
	Strike       float64    `json:"strike"`
	Expiry       time.Time  `json:"expiry"`
	Quantity     int        `json:"quantity"`
	EntryPrice   float64    `json:"entryPrice"`
	EntryDate    time.Time  `json:"entryDate"`
	Notes        string     `json:"notes,omitempty"`
	Broker       string     `json:"broker"`
	AccountID    string     `json:"accountId,omitempty"`
	OriginalData RawRow     `json:"originalData"`
}

// ImportError is a diagnostic attached to one row (row 0 for run-level problems).
// Error severity drops the row; warning severity is advisory.
type ImportError struct {
	Row      int      `json:"row"`
	Field    Field    `json:"field,omitempty"`
	Message  string   `json:"message"`
	Value    string   `json:"value,omitempty"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
}

// ImportWarning is a non-fatal annotation, e.g. a transform that failed.
type ImportWarning struct {
	Row            int    `json:"row"`
	Field          Field  `json:"field"`
	Message        string `json:"message"`
	SuggestedValue string `json:"suggestedValue,omitempty"`
	Code           string `json:"code"`
}

// TypeCounts tallies positions by option type.
type TypeCounts struct {
	Calls int `json:"calls"`
	Puts  int `json:"puts"`
}

// ImportSummary aggregates the accepted positions of one run.
type ImportSummary struct {
	TotalValue        decimal.Decimal `json:"totalValue"`
	PositionsByType   TypeCounts      `json:"positionsByType"`
	PositionsByExpiry map[string]int  `json:"positionsByExpiry"`
	UniqueSymbols     int             `json:"uniqueSymbols"`
	Brokers           []string        `json:"brokers"`
}

// CSVImportResult is the terminal value of one pipeline run.
type CSVImportResult struct {
	ImportID     string             `json:"importId"`
	Broker       string             `json:"broker"`
	Success      bool               `json:"success"`
	TotalRows    int                `json:"totalRows"`
	ImportedRows int                `json:"importedRows"`
	Errors       []ImportError      `json:"errors"`
	Warnings     []ImportWarning    `json:"warnings"`
	Positions    []ImportedPosition `json:"positions"`
	Summary      ImportSummary      `json:"summary"`
}

// ErrorCount returns the number of error-severity diagnostics.
func (r *CSVImportResult) ErrorCount() int {
	n := 0
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}
