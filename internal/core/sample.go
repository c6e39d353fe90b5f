package core

import (
	"strconv"
	"strings"
	"time"
)

// SamplePositions returns the positions GenerateSampleCSV writes for schema.
// Expiries fall on Fridays a few months after now; entry dates are today.
func SamplePositions(schema BrokerSchema, now time.Time) []ImportedPosition {
	today := truncateDay(now)
	short := -1
	if schema.Validators[FieldQuantity] == ValidatorLongOnly {
		short = 1
	}

	return []ImportedPosition{
		{
			Symbol: "AAPL", Type: OptionCall, Strike: 190, Expiry: nextFriday(today.AddDate(0, 3, 0)),
			Quantity: 2, EntryPrice: 5.25, EntryDate: today, Notes: "Sample position", AccountID: "SAMPLE-1",
		},
		{
			Symbol: "MSFT", Type: OptionPut, Strike: 400, Expiry: nextFriday(today.AddDate(0, 6, 0)),
			Quantity: short, EntryPrice: 7.5, EntryDate: today, AccountID: "SAMPLE-1",
		},
		{
			Symbol: "SPY", Type: OptionCall, Strike: 612.5, Expiry: nextFriday(today.AddDate(1, 0, 0)),
			Quantity: 10, EntryPrice: 12, EntryDate: today, AccountID: "SAMPLE-2",
		},
	}
}

func nextFriday(t time.Time) time.Time {
	for t.Weekday() != time.Friday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// GenerateSampleCSV renders an export in schema's format that imports cleanly
// with that schema. Each mapped field is written under its first candidate
// column; a column shared by several fields is written once, by the first
// field in canonical order.
func GenerateSampleCSV(schema BrokerSchema, now time.Time) string {
	type column struct {
		name   string
		encode func(ImportedPosition) string
	}

	var columns []column
	seen := make(map[string]bool)
	for _, f := range schema.MappedFields() {
		candidates := schema.FieldMap[f]
		if len(candidates) == 0 || seen[candidates[0]] {
			continue
		}
		seen[candidates[0]] = true
		columns = append(columns, column{name: candidates[0], encode: sampleEncoder(schema, f)})
	}

	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteCell(c.name))
	}
	b.WriteByte('\n')

	for _, p := range SamplePositions(schema, now) {
		for i, c := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteCell(c.encode(p)))
		}
		b.WriteByte('\n')
	}

	return b.String()
}

func sampleEncoder(schema BrokerSchema, f Field) func(ImportedPosition) string {
	if name := schema.Transforms[f]; name != "" {
		if t, ok := LookupTransform(name); ok && t.Sample != nil {
			return func(p ImportedPosition) string {
				return t.Sample(p, f)
			}
		}
	}
	return func(p ImportedPosition) string {
		return CanonicalValue(p, f)
	}
}

// CanonicalValue renders one field of p in the form the canonical validators accept.
func CanonicalValue(p ImportedPosition, f Field) string {
	switch f {
	case FieldSymbol:
		return p.Symbol
	case FieldOptionType:
		return string(p.Type)
	case FieldStrike:
		return strconv.FormatFloat(p.Strike, 'f', -1, 64)
	case FieldExpiry:
		return FormatDate(p.Expiry)
	case FieldQuantity:
		return strconv.Itoa(p.Quantity)
	case FieldEntryPrice:
		return strconv.FormatFloat(p.EntryPrice, 'f', 2, 64)
	case FieldEntryDate:
		return FormatDate(p.EntryDate)
	case FieldNotes:
		return p.Notes
	case FieldAccountID:
		return p.AccountID
	}
	return ""
}

// quoteCell wraps a cell in double quotes when it contains a separator or quote.
func quoteCell(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
