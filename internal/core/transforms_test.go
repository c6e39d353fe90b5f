package core

import (
	"testing"
	"time"
)

func TestBuiltinTransforms(t *testing.T) {
	tests := []struct {
		transform string
		input     string
		row       RawRow
		want      string
		wantErr   bool
	}{
		{transform: TransformOptionLetter, input: "C", want: "call"},
		{transform: TransformOptionLetter, input: " puts ", want: "put"},
		{transform: TransformOptionLetter, input: "X", wantErr: true},

		{transform: TransformCompactDate, input: "20270115", want: "2027-01-15"},
		{transform: TransformCompactDate, input: "270115", want: "2027-01-15"},
		{transform: TransformCompactDate, input: "2027-01-15", wantErr: true},
		{transform: TransformCompactDate, input: "20271315", wantErr: true},

		{transform: TransformFirstToken, input: "AAPL  270115C00190000", want: "AAPL"},
		{transform: TransformFirstToken, input: "   ", wantErr: true},

		{transform: TransformDatePart, input: "2027-01-15 09:31:02", want: "2027-01-15"},
		{transform: TransformDatePart, input: "20270115;093102", want: "20270115"},
		{transform: TransformDatePart, input: "2027-01-15T09:31:02Z", want: "2027-01-15"},

		{transform: TransformSignedBySide, input: "3", row: RawRow{"Side": "Sell"}, want: "-3"},
		{transform: TransformSignedBySide, input: "-3", row: RawRow{"ACTION": "BUY_TO_OPEN"}, want: "3"},
		{transform: TransformSignedBySide, input: "2", row: RawRow{"Side": "?", "Position": "Short"}, want: "-2"},
		{transform: TransformSignedBySide, input: "-2", row: RawRow{}, want: "-2"},
		{transform: TransformSignedBySide, input: "two", wantErr: true},

		{transform: TransformOCCUnderlying, input: "AAPL  270115C00190000", want: "AAPL"},
		{transform: TransformOCCUnderlying, input: ".SPY270115P450", want: "SPY"},
		{transform: TransformOCCUnderlying, input: "msft", want: "msft"},
		{transform: TransformOCCUnderlying, input: "AAPL 2027", wantErr: true},
		{transform: TransformOCCType, input: "AAPL270115P00190000", want: "put"},
		{transform: TransformOCCStrike, input: "AAPL270115C00190500", want: "190.5"},
		{transform: TransformOCCStrike, input: "-AAPL270115C192.5", want: "192.5"},
		{transform: TransformOCCExpiry, input: "AAPL270115C00190000", want: "2027-01-15"},
		{transform: TransformOCCExpiry, input: "AAPL", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.transform+"/"+tt.input, func(t *testing.T) {
			tr, ok := LookupTransform(tt.transform)
			if !ok {
				t.Fatalf("transform %s not registered", tt.transform)
			}

			got, err := tr.Apply(tt.input, tt.row)
			if tt.wantErr {
				if err == nil {
					t.Errorf("%s(%q) = %q, want error", tt.transform, tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s(%q) error: %v", tt.transform, tt.input, err)
			}
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.transform, tt.input, got, tt.want)
			}
		})
	}
}

func TestOCCSymbol(t *testing.T) {
	p := ImportedPosition{
		Symbol: "SPY",
		Type:   OptionPut,
		Strike: 612.5,
		Expiry: time.Date(2027, 3, 19, 0, 0, 0, 0, time.UTC),
	}

	got := OCCSymbol(p)
	if got != "SPY270319P00612500" {
		t.Errorf("OCCSymbol() = %q, want SPY270319P00612500", got)
	}

	for _, name := range []string{TransformOCCUnderlying, TransformOCCType, TransformOCCStrike, TransformOCCExpiry} {
		tr, _ := LookupTransform(name)
		if _, err := tr.Apply(got, nil); err != nil {
			t.Errorf("%s(%q) error: %v", name, got, err)
		}
	}
}

func TestRegisterTransform_Panics(t *testing.T) {
	tests := []struct {
		name string
		t    Transform
	}{
		{name: TransformOptionLetter, t: Transform{Apply: optionLetter}},
		{name: "test_nil_apply", t: Transform{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("RegisterTransform(%s) did not panic", tt.name)
				}
			}()
			RegisterTransform(tt.name, tt.t)
		})
	}
}
