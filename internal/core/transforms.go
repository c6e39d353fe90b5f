package core

// transforms.go holds the catalog of named per-field transforms.
//
// A schema never embeds code: it names a transform registered here. This keeps
// schemas serialisable (see internal/schema) and limits what a schema loaded
// from a file can do to the functions compiled into the binary.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TransformFunc normalises one raw value. The full raw row is available for
// transforms that depend on a sibling column.
type TransformFunc func(value string, row RawRow) (string, error)

// Transform is a named normalisation step.
type Transform struct {
	// Apply converts the raw value into something the canonical validator accepts.
	Apply TransformFunc

	// Sample encodes field f of a position back into the raw form Apply
	// expects. Used by GenerateSampleCSV; nil means the canonical rendering.
	Sample func(p ImportedPosition, f Field) string
}

var (
	transforms   = make(map[string]Transform)
	transformsMu sync.RWMutex
)

// RegisterTransform adds a named transform.
// Panics if the name is already taken or Apply is nil.
func RegisterTransform(name string, t Transform) {
	transformsMu.Lock()
	defer transformsMu.Unlock()

	if t.Apply == nil {
		panic(fmt.Sprintf("transform %s has no Apply func", name))
	}
	if _, exists := transforms[name]; exists {
		panic(fmt.Sprintf("transform already registered: %s", name))
	}
	transforms[name] = t
}

// LookupTransform returns the transform registered under name.
func LookupTransform(name string) (Transform, bool) {
	transformsMu.RLock()
	defer transformsMu.RUnlock()

	t, ok := transforms[name]
	return t, ok
}

// TransformNames returns all registered transform names, sorted.
func TransformNames() []string {
	transformsMu.RLock()
	defer transformsMu.RUnlock()

	names := make([]string, 0, len(transforms))
	for n := range transforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Built-in transform names.
const (
	TransformOptionLetter  = "option_letter"
	TransformCompactDate   = "compact_date"
	TransformFirstToken    = "first_token"
	TransformDatePart      = "date_part"
	TransformSignedBySide  = "signed_by_side"
	TransformOCCUnderlying = "occ_underlying"
	TransformOCCType       = "occ_type"
	TransformOCCStrike     = "occ_strike"
	TransformOCCExpiry     = "occ_expiry"
)

func init() {
	RegisterTransform(TransformOptionLetter, Transform{Apply: optionLetter, Sample: sampleOptionLetter})
	RegisterTransform(TransformCompactDate, Transform{Apply: compactDate, Sample: sampleCompactDate})
	RegisterTransform(TransformFirstToken, Transform{Apply: firstToken, Sample: sampleFirstToken})
	RegisterTransform(TransformDatePart, Transform{Apply: datePart, Sample: sampleDateTime})
	RegisterTransform(TransformSignedBySide, Transform{Apply: signedBySide})
	RegisterTransform(TransformOCCUnderlying, Transform{Apply: occUnderlying, Sample: sampleOCC})
	RegisterTransform(TransformOCCType, Transform{Apply: occType, Sample: sampleOCC})
	RegisterTransform(TransformOCCStrike, Transform{Apply: occStrike, Sample: sampleOCC})
	RegisterTransform(TransformOCCExpiry, Transform{Apply: occExpiry, Sample: sampleOCC})
}

var errEmptyValue = errors.New("empty value")

func optionLetter(value string, _ RawRow) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "C", "CALL", "CALLS":
		return string(OptionCall), nil
	case "P", "PUT", "PUTS":
		return string(OptionPut), nil
	}
	return "", fmt.Errorf("unrecognised option type %q", value)
}

func sampleOptionLetter(p ImportedPosition, _ Field) string {
	if p.Type == OptionPut {
		return "P"
	}
	return "C"
}

// compactDate expands YYYYMMDD or YYMMDD digits into YYYY-MM-DD.
func compactDate(value string, _ RawRow) (string, error) {
	v := strings.TrimSpace(value)
	if !isDigits(v) {
		return "", fmt.Errorf("not a compact date: %q", value)
	}

	var layout string
	switch len(v) {
	case 8:
		layout = "20060102"
	case 6:
		layout = "060102"
	default:
		return "", fmt.Errorf("compact date must have 6 or 8 digits: %q", value)
	}

	t, err := time.Parse(layout, v)
	if err != nil {
		return "", fmt.Errorf("invalid compact date %q: %w", value, err)
	}
	return FormatDate(t), nil
}

func sampleCompactDate(p ImportedPosition, f Field) string {
	return sampleDate(p, f).Format("20060102")
}

// sampleDate picks the date a date-valued field of p holds.
func sampleDate(p ImportedPosition, f Field) time.Time {
	if f == FieldEntryDate {
		return p.EntryDate
	}
	return p.Expiry
}

func firstToken(value string, _ RawRow) (string, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return "", errEmptyValue
	}
	return fields[0], nil
}

func sampleFirstToken(p ImportedPosition, _ Field) string {
	return fmt.Sprintf("%s %s %s %s",
		p.Symbol,
		strings.ToUpper(p.Expiry.Format("02Jan06")),
		strconv.FormatFloat(p.Strike, 'f', -1, 64),
		sampleOptionLetter(p, FieldOptionType),
	)
}

// datePart keeps the date of a date-time cell such as "1/10/27 09:31:02" or
// "20270110;093102".
func datePart(value string, _ RawRow) (string, error) {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == ';' || r == 'T'
	})
	if len(parts) == 0 {
		return "", errEmptyValue
	}
	return parts[0], nil
}

func sampleDateTime(p ImportedPosition, f Field) string {
	return FormatDate(sampleDate(p, f)) + " 09:31:02"
}

// sideColumns are the columns consulted by signed_by_side, lower-cased.
var sideColumns = []string{"side", "action", "buy/sell", "direction", "quantity direction", "position"}

// signedBySide applies the sign implied by the row's side column to an
// unsigned quantity. Rows without a recognisable side keep their sign.
func signedBySide(value string, row RawRow) (string, error) {
	qty, ok := ParseNumber(value)
	if !ok {
		return "", fmt.Errorf("invalid number %q", value)
	}

	idx := HeaderIndexOf(row)
	for _, col := range sideColumns {
		raw, ok := idx[col]
		if !ok {
			continue
		}
		side := strings.ToLower(row[raw])
		switch {
		case strings.Contains(side, "sell"), strings.Contains(side, "short"):
			qty = -math.Abs(qty)
		case strings.Contains(side, "buy"), strings.Contains(side, "long"):
			qty = math.Abs(qty)
		default:
			continue
		}
		break
	}

	return strconv.FormatFloat(qty, 'f', -1, 64), nil
}

// occPattern matches OCC option symbols, padded ("AAPL  270115C00190000") or
// compact (".AAPL270115C190", "-AAPL270115C190.5").
var occPattern = regexp.MustCompile(`^[.\-]?([A-Z]{1,6})\s*(\d{6})([CP])(\d+(?:\.\d+)?)$`)

var plainTicker = regexp.MustCompile(`^[A-Za-z]{1,5}$`)

type occParts struct {
	root   string
	expiry time.Time
	right  OptionType
	strike float64
}

func parseOCC(value string) (occParts, error) {
	m := occPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(value)))
	if m == nil {
		return occParts{}, fmt.Errorf("not an OCC option symbol: %q", value)
	}

	expiry, err := time.Parse("060102", m[2])
	if err != nil {
		return occParts{}, fmt.Errorf("invalid OCC expiry in %q: %w", value, err)
	}

	strike, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return occParts{}, fmt.Errorf("invalid OCC strike in %q: %w", value, err)
	}
	// The padded form encodes the strike in thousandths on eight digits.
	if len(m[4]) == 8 && !strings.Contains(m[4], ".") {
		strike /= 1000
	}

	right := OptionCall
	if m[3] == "P" {
		right = OptionPut
	}

	return occParts{root: m[1], expiry: expiry, right: right, strike: strike}, nil
}

func occUnderlying(value string, _ RawRow) (string, error) {
	parts, err := parseOCC(value)
	if err != nil {
		if v := strings.TrimSpace(value); plainTicker.MatchString(v) {
			return v, nil
		}
		return "", err
	}
	return parts.root, nil
}

func occType(value string, _ RawRow) (string, error) {
	parts, err := parseOCC(value)
	if err != nil {
		return "", err
	}
	return string(parts.right), nil
}

func occStrike(value string, _ RawRow) (string, error) {
	parts, err := parseOCC(value)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(parts.strike, 'f', -1, 64), nil
}

func occExpiry(value string, _ RawRow) (string, error) {
	parts, err := parseOCC(value)
	if err != nil {
		return "", err
	}
	return FormatDate(parts.expiry), nil
}

func sampleOCC(p ImportedPosition, _ Field) string {
	return OCCSymbol(p)
}

// OCCSymbol renders the unpadded OCC symbol of a position, e.g.
// AAPL270115C00190000.
func OCCSymbol(p ImportedPosition) string {
	return fmt.Sprintf("%s%s%s%08d",
		p.Symbol,
		p.Expiry.Format("060102"),
		sampleOptionLetter(p, FieldOptionType),
		int64(math.Round(p.Strike*1000)),
	)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// unregisterTransform removes a transform. Test helper.
func unregisterTransform(name string) {
	transformsMu.Lock()
	defer transformsMu.Unlock()
	delete(transforms, name)
}
