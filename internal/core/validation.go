package core

// validation.go resolves and validates one canonical field of one row.
//
// Resolution happens in three steps:
//  1. Column lookup: the schema's candidate columns are tried in declared
//     order; the first present, non-empty cell wins.
//  2. Transform: the schema's named transform for the field, if any. A failing
//     (or panicking) transform is demoted to a warning and the raw value is kept.
//  3. Validation: the canonical validator for the field, identical for every
//     schema, followed by the schema's optional named validator.
//
// A validation failure on a required field is an error that drops the row; on
// an optional field it is a warning and the field is left to its default.

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// ValidationError represents a single validation failure for a field value.
type ValidationError struct {
	Code    string // Diagnostic code, see error_messages.go
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	return e.Message
}

func invalid(code, format string, args ...any) error {
	return ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

var symbolRegex = regexp.MustCompile(`^[A-Z]{1,5}$`)

// canonicalValidator checks one field value and returns its typed form.
type canonicalValidator func(value string, now time.Time) (any, error)

var canonicalValidators = map[Field]canonicalValidator{
	FieldSymbol:     validateSymbol,
	FieldOptionType: validateOptionType,
	FieldStrike:     validateStrike,
	FieldExpiry:     validateExpiry,
	FieldQuantity:   validateQuantity,
	FieldEntryPrice: validateEntryPrice,
	FieldEntryDate:  validateEntryDate,
	FieldNotes:      validateText,
	FieldAccountID:  validateText,
}

// ValidateField runs the canonical validator for field against value using now
// as the processing instant. The returned value is a string, OptionType,
// float64, int or time.Time depending on the field.
func ValidateField(field Field, value string, now time.Time) (any, error) {
	v, ok := canonicalValidators[field]
	if !ok {
		return nil, invalid(CodeUnknownField, "unknown field %q", field)
	}
	return v(value, now)
}

func validateSymbol(value string, _ time.Time) (any, error) {
	s := strings.ToUpper(CleanCell(value))
	if !symbolRegex.MatchString(s) {
		return nil, invalid(CodeInvalidSymbol, "invalid symbol format: must be 1-5 letters")
	}
	return s, nil
}

func validateOptionType(value string, _ time.Time) (any, error) {
	switch strings.ToLower(CleanCell(value)) {
	case "call", "c":
		return OptionCall, nil
	case "put", "p":
		return OptionPut, nil
	}
	return nil, invalid(CodeInvalidOptionType, "invalid option type: must be call or put")
}

func validateStrike(value string, _ time.Time) (any, error) {
	n, ok := ParseNumber(value)
	if !ok {
		return nil, invalid(CodeInvalidNumber, "invalid number format")
	}
	if n <= 0 {
		return nil, invalid(CodeNonPositiveStrike, "strike must be greater than zero")
	}
	return n, nil
}

func validateExpiry(value string, now time.Time) (any, error) {
	d := toPgDateAt(value, now)
	if !d.Valid {
		return nil, invalid(CodeInvalidDate, "invalid date format")
	}
	if !d.Time.After(now) {
		return nil, invalid(CodeExpired, "expiry date must be after the import date")
	}
	return d.Time, nil
}

func validateQuantity(value string, _ time.Time) (any, error) {
	n, ok := ParseNumber(value)
	if !ok {
		return nil, invalid(CodeInvalidNumber, "invalid number format")
	}
	q := math.Round(n)
	if q == 0 {
		return nil, invalid(CodeZeroQuantity, "quantity must be non-zero")
	}
	if math.Abs(q) > math.MaxInt32 {
		return nil, invalid(CodeInvalidNumber, "quantity out of range")
	}
	return int(q), nil
}

func validateEntryPrice(value string, _ time.Time) (any, error) {
	n, ok := ParseNumber(value)
	if !ok {
		return nil, invalid(CodeInvalidNumber, "invalid number format")
	}
	if n < 0 {
		return nil, invalid(CodeNegativePrice, "entry price must not be negative")
	}
	return n, nil
}

func validateEntryDate(value string, now time.Time) (any, error) {
	d := toPgDateAt(value, now)
	if !d.Valid {
		return nil, invalid(CodeInvalidDate, "invalid date format")
	}
	return d.Time, nil
}

func validateText(value string, _ time.Time) (any, error) {
	return strings.TrimSpace(value), nil
}

// ValidatorFunc is a schema-specific check that runs after the canonical
// validator has accepted a value. It receives the typed value.
type ValidatorFunc func(value any, now time.Time) error

var (
	validators   = make(map[string]ValidatorFunc)
	validatorsMu sync.RWMutex
)

// Built-in validator names.
const (
	ValidatorLongOnly      = "long_only"
	ValidatorWeekdayExpiry = "weekday_expiry"
)

func init() {
	RegisterValidator(ValidatorLongOnly, func(value any, _ time.Time) error {
		if q, ok := value.(int); ok && q < 0 {
			return invalid(CodeSchemaRule, "short positions are not accepted for this broker")
		}
		return nil
	})
	RegisterValidator(ValidatorWeekdayExpiry, func(value any, _ time.Time) error {
		if t, ok := value.(time.Time); ok {
			if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
				return invalid(CodeSchemaRule, "expiry falls on a weekend")
			}
		}
		return nil
	})
}

// RegisterValidator adds a named schema validator.
// Panics if the name is already taken.
func RegisterValidator(name string, fn ValidatorFunc) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()

	if _, exists := validators[name]; exists {
		panic(fmt.Sprintf("validator already registered: %s", name))
	}
	validators[name] = fn
}

// LookupValidator returns the validator registered under name.
func LookupValidator(name string) (ValidatorFunc, bool) {
	validatorsMu.RLock()
	defer validatorsMu.RUnlock()

	fn, ok := validators[name]
	return fn, ok
}

// ValidatorNames returns all registered validator names, sorted.
func ValidatorNames() []string {
	validatorsMu.RLock()
	defer validatorsMu.RUnlock()

	names := make([]string, 0, len(validators))
	for n := range validators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolution is the outcome of resolving one field of one row.
type Resolution struct {
	Value    any             // Typed value; nil when missing or invalid
	Raw      string          // Value handed to the validator
	Missing  bool            // No candidate column held a non-empty cell
	Errors   []ImportError   // Validation diagnostics (error or warning severity)
	Warnings []ImportWarning // Transform diagnostics
}

// OK reports whether the field resolved to a valid value.
func (r Resolution) OK() bool {
	return r.Value != nil
}

// FieldResolver resolves canonical fields against one schema.
type FieldResolver struct {
	schema BrokerSchema
	now    time.Time
}

// NewFieldResolver creates a resolver for schema with now as the processing instant.
func NewFieldResolver(schema BrokerSchema, now time.Time) *FieldResolver {
	return &FieldResolver{schema: schema, now: now}
}

// Lookup finds the first candidate column for field holding a non-empty cell.
// Exact column names are tried first, then a case-insensitive match.
func (r *FieldResolver) Lookup(field Field, row RawRow, idx HeaderIndex) (string, bool) {
	for _, col := range r.schema.FieldMap[field] {
		if v, ok := row[col]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		if raw, ok := idx[lowerClean(col)]; ok {
			if v := row[raw]; strings.TrimSpace(v) != "" {
				return v, true
			}
		}
	}
	return "", false
}

// Resolve locates, transforms and validates field for one row.
// rowNum is only used to label diagnostics.
func (r *FieldResolver) Resolve(field Field, row RawRow, idx HeaderIndex, rowNum int) Resolution {
	raw, found := r.Lookup(field, row, idx)
	if !found {
		return Resolution{Missing: true}
	}

	res := Resolution{Raw: raw}

	if name := r.schema.Transforms[field]; name != "" {
		transformed, warning := r.applyTransform(name, field, raw, row, rowNum)
		if warning != nil {
			res.Warnings = append(res.Warnings, *warning)
		} else {
			res.Raw = transformed
		}
	}

	value, err := ValidateField(field, res.Raw, r.now)
	if err == nil {
		err = r.applyValidator(field, value)
	}
	if err != nil {
		res.Errors = append(res.Errors, r.validationDiagnostic(field, res.Raw, rowNum, err))
		return res
	}

	res.Value = value
	return res
}

// applyTransform runs a named transform, converting failures and panics into
// a warning. The caller keeps the untransformed value when a warning is returned.
func (r *FieldResolver) applyTransform(name string, field Field, raw string, row RawRow, rowNum int) (out string, warning *ImportWarning) {
	t, ok := LookupTransform(name)
	if !ok {
		return raw, &ImportWarning{
			Row:            rowNum,
			Field:          field,
			Message:        fmt.Sprintf("unknown transform %q, using raw value", name),
			SuggestedValue: raw,
			Code:           CodeUnknownTransform,
		}
	}

	defer func() {
		if p := recover(); p != nil {
			out = raw
			warning = &ImportWarning{
				Row:            rowNum,
				Field:          field,
				Message:        fmt.Sprintf("transform %s failed: %v; using raw value", name, p),
				SuggestedValue: raw,
				Code:           CodeTransformFailed,
			}
		}
	}()

	transformed, err := t.Apply(raw, row)
	if err != nil {
		return raw, &ImportWarning{
			Row:            rowNum,
			Field:          field,
			Message:        fmt.Sprintf("transform %s failed: %v; using raw value", name, err),
			SuggestedValue: raw,
			Code:           CodeTransformFailed,
		}
	}
	return transformed, nil
}

func (r *FieldResolver) applyValidator(field Field, value any) error {
	name := r.schema.Validators[field]
	if name == "" {
		return nil
	}
	fn, ok := LookupValidator(name)
	if !ok {
		return invalid(CodeSchemaRule, "unknown validator %q", name)
	}
	return fn(value, r.now)
}

func (r *FieldResolver) validationDiagnostic(field Field, value string, rowNum int, err error) ImportError {
	code := CodeInvalidValue
	if ve, ok := err.(ValidationError); ok {
		code = ve.Code
	}

	severity := SeverityWarning
	if field.IsRequired() {
		severity = SeverityError
	}

	return ImportError{
		Row:      rowNum,
		Field:    field,
		Message:  err.Error(),
		Value:    value,
		Severity: severity,
		Code:     code,
	}
}

// unregisterValidator removes a validator. Test helper.
func unregisterValidator(name string) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	delete(validators, name)
}
