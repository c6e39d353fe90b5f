package core

import (
	"fmt"
	"time"
)

// RowResult is the outcome of processing one raw row.
// Position is nil when the row was rejected.
type RowResult struct {
	Row      int
	Position *ImportedPosition
	Errors   []ImportError
	Warnings []ImportWarning
}

// Rejected reports whether the row produced no position.
func (r RowResult) Rejected() bool {
	return r.Position == nil
}

// ProcessRow resolves every mapped field of row against schema and builds a
// position, or rejects the row. rowNum labels diagnostics; now is the
// processing instant used for expiry checks and defaults.
func ProcessRow(row RawRow, schema BrokerSchema, rowNum int, now time.Time) RowResult {
	return newRowProcessor(schema, now).process(row, rowNum)
}

type rowProcessor struct {
	schema   BrokerSchema
	fields   []Field
	resolver *FieldResolver
	now      time.Time
}

func newRowProcessor(schema BrokerSchema, now time.Time) *rowProcessor {
	return &rowProcessor{
		schema:   schema,
		fields:   schema.MappedFields(),
		resolver: NewFieldResolver(schema, now),
		now:      now,
	}
}

func (p *rowProcessor) process(row RawRow, rowNum int) RowResult {
	result := RowResult{Row: rowNum}
	idx := HeaderIndexOf(row)

	values := make(map[Field]any, len(p.fields))
	failed := make(map[Field]bool)

	for _, f := range p.fields {
		res := p.resolver.Resolve(f, row, idx, rowNum)
		result.Warnings = append(result.Warnings, res.Warnings...)
		for _, e := range res.Errors {
			if e.Severity == SeverityError {
				failed[f] = true
			}
			result.Errors = append(result.Errors, e)
		}
		if res.OK() {
			values[f] = res.Value
		}
	}

	// Catches both empty cells and schemas that never map a required field.
	for _, f := range RequiredFields {
		if _, ok := values[f]; ok || failed[f] {
			continue
		}
		failed[f] = true
		result.Errors = append(result.Errors, ImportError{
			Row:      rowNum,
			Field:    f,
			Message:  fmt.Sprintf("required field missing: %s", f),
			Severity: SeverityError,
			Code:     CodeRequiredMissing,
		})
	}

	if len(failed) > 0 {
		return result
	}

	result.Position = p.build(values, row)
	return result
}

func (p *rowProcessor) build(values map[Field]any, row RawRow) *ImportedPosition {
	pos := &ImportedPosition{
		Symbol:       values[FieldSymbol].(string),
		Type:         values[FieldOptionType].(OptionType),
		Strike:       values[FieldStrike].(float64),
		Expiry:       values[FieldExpiry].(time.Time),
		Quantity:     values[FieldQuantity].(int),
		EntryDate:    truncateDay(p.now),
		Broker:       p.schema.Name,
		OriginalData: row.Clone(),
	}

	if v, ok := values[FieldEntryPrice].(float64); ok {
		pos.EntryPrice = v
	}
	if v, ok := values[FieldEntryDate].(time.Time); ok {
		pos.EntryDate = v
	}
	if v, ok := values[FieldNotes].(string); ok {
		pos.Notes = v
	}
	if v, ok := values[FieldAccountID].(string); ok {
		pos.AccountID = v
	}
	return pos
}
