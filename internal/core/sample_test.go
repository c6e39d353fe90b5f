package core

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateSampleCSV_SharedColumnWrittenOnce(t *testing.T) {
	schema := BrokerSchema{
		Key:  "test_occ",
		Name: "OCC",
		FieldMap: map[Field][]string{
			FieldSymbol:     {"Contract"},
			FieldOptionType: {"Contract"},
			FieldStrike:     {"Contract"},
			FieldExpiry:     {"Contract"},
			FieldQuantity:   {"Qty"},
		},
		Transforms: map[Field]string{
			FieldSymbol:     TransformOCCUnderlying,
			FieldOptionType: TransformOCCType,
			FieldStrike:     TransformOCCStrike,
			FieldExpiry:     TransformOCCExpiry,
		},
	}

	text := GenerateSampleCSV(schema, testNow)
	lines := strings.Split(strings.TrimSpace(text), "\n")

	if lines[0] != "Contract,Qty" {
		t.Errorf("header = %q, want Contract,Qty", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want header plus 3 rows", len(lines))
	}

	rows := Tokenize(text, true)
	for _, row := range rows {
		res := ProcessRow(row, schema, 2, testNow)
		if res.Rejected() {
			t.Errorf("row %v rejected: %+v", row, res.Errors)
		}
	}
}

func TestSamplePositions_FutureFridays(t *testing.T) {
	for _, p := range SamplePositions(Generic(), testNow) {
		if !p.Expiry.After(testNow) {
			t.Errorf("%s expiry %v not after %v", p.Symbol, p.Expiry, testNow)
		}
		if p.Expiry.Weekday() != time.Friday {
			t.Errorf("%s expiry %v is a %s", p.Symbol, p.Expiry, p.Expiry.Weekday())
		}
	}
}

func TestSamplePositions_LongOnly(t *testing.T) {
	schema := Generic().Merge(&BrokerSchema{Validators: map[Field]string{FieldQuantity: ValidatorLongOnly}})

	for _, p := range SamplePositions(schema, testNow) {
		if p.Quantity <= 0 {
			t.Errorf("%s quantity = %d, want positive for long_only", p.Symbol, p.Quantity)
		}
	}
}

func TestQuoteCell(t *testing.T) {
	tests := map[string]string{
		"plain":        "plain",
		"a,b":          `"a,b"`,
		`say "hi"`:     `"say ""hi"""`,
		"AAPL 1/15/27": "AAPL 1/15/27",
	}
	for in, want := range tests {
		if got := quoteCell(in); got != want {
			t.Errorf("quoteCell(%q) = %q, want %q", in, got, want)
		}
		if want != in {
			if cells := TokenizeLine(want); len(cells) != 1 || cells[0] != in {
				t.Errorf("TokenizeLine(%q) = %q, want [%q]", want, cells, in)
			}
		}
	}
}
