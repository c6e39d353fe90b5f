package core

import "testing"

func TestDetect(t *testing.T) {
	Register(BrokerSchema{
		Key: "test_acme",
		FieldMap: map[Field][]string{
			FieldSymbol:     {"Underlying"},
			FieldOptionType: {"Right"},
			FieldStrike:     {"Strike", "K"},
			FieldExpiry:     {"Exp"},
			FieldQuantity:   {"Qty"},
		},
	})
	defer unregister("test_acme")

	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{name: "generic headers", headers: []string{"symbol", "type", "strike", "expiry", "quantity"}, want: GenericKey},
		{name: "broker headers", headers: []string{"Underlying", "Right", "K", "Exp", "Qty"}, want: "test_acme"},
		{name: "case-insensitive", headers: []string{"UNDERLYING", "right", "exp"}, want: "test_acme"},
		{name: "tie goes to first registered", headers: []string{"strike", "qty"}, want: GenericKey},
		{name: "nothing matches", headers: []string{"foo", "bar"}, want: GenericKey},
		{name: "no headers", headers: nil, want: GenericKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.headers); got != tt.want {
				t.Errorf("Detect(%v) = %q, want %q", tt.headers, got, tt.want)
			}
		})
	}
}

func TestDetect_Deterministic(t *testing.T) {
	headers := []string{"Symbol", "Strike", "Expiration", "Qty"}
	first := Detect(headers)
	for i := 0; i < 50; i++ {
		if got := Detect(headers); got != first {
			t.Fatalf("Detect() = %q on call %d, want %q", got, i, first)
		}
	}
}

func TestDetectScores_OnePointPerField(t *testing.T) {
	// strike has two candidates present; it still scores once.
	scores := DetectScores([]string{"strike", "strike_price", "symbol"})

	if len(scores) == 0 || scores[0].Key != GenericKey {
		t.Fatalf("scores = %+v, want generic first", scores)
	}
	if scores[0].Score != 2 {
		t.Errorf("generic score = %d, want 2", scores[0].Score)
	}
}
