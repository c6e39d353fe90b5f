package brokers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/posimport/internal/core"
)

// Transforms that only make sense for one broker's format.
const (
	TransformRobinhoodType     = "rh_type"
	TransformRobinhoodStrike   = "rh_strike"
	TransformRobinhoodExpiry   = "rh_expiry"
	TransformRobinhoodQuantity = "rh_signed_quantity"
)

func registerTransforms() {
	core.RegisterTransform(TransformRobinhoodType, core.Transform{Apply: rhType, Sample: rhDescription})
	core.RegisterTransform(TransformRobinhoodStrike, core.Transform{Apply: rhStrike, Sample: rhDescription})
	core.RegisterTransform(TransformRobinhoodExpiry, core.Transform{Apply: rhExpiry, Sample: rhDescription})
	core.RegisterTransform(TransformRobinhoodQuantity, core.Transform{Apply: rhSignedQuantity})
}

// rhDescription renders the Description cell of a Robinhood activity row.
func rhDescription(p core.ImportedPosition, _ core.Field) string {
	right := "Call"
	if p.Type == core.OptionPut {
		right = "Put"
	}
	return fmt.Sprintf("%s %s %s $%.2f", p.Symbol, p.Expiry.Format("1/2/2006"), right, p.Strike)
}

func rhType(value string, _ core.RawRow) (string, error) {
	for _, tok := range strings.Fields(value) {
		switch strings.ToLower(tok) {
		case "call":
			return string(core.OptionCall), nil
		case "put":
			return string(core.OptionPut), nil
		}
	}
	return "", fmt.Errorf("no call/put in description %q", value)
}

func rhStrike(value string, _ core.RawRow) (string, error) {
	for _, tok := range strings.Fields(value) {
		if strings.HasPrefix(tok, "$") {
			if _, ok := core.ParseNumber(tok); ok {
				return strings.ReplaceAll(strings.TrimPrefix(tok, "$"), ",", ""), nil
			}
		}
	}
	return "", fmt.Errorf("no strike in description %q", value)
}

func rhExpiry(value string, _ core.RawRow) (string, error) {
	for _, tok := range strings.Fields(value) {
		if !strings.Contains(tok, "/") {
			continue
		}
		if t, err := time.Parse("1/2/2006", tok); err == nil {
			return core.FormatDate(t), nil
		}
	}
	return "", fmt.Errorf("no expiry in description %q", value)
}

// rhSignedQuantity makes sell-side trans codes (STO, STC) negative.
// Rows without a Trans Code keep their sign.
func rhSignedQuantity(value string, row core.RawRow) (string, error) {
	qty, ok := core.ParseNumber(value)
	if !ok {
		return "", fmt.Errorf("invalid number %q", value)
	}

	idx := core.HeaderIndexOf(row)
	if raw, ok := idx["trans code"]; ok {
		switch strings.ToUpper(strings.TrimSpace(row[raw])) {
		case "STO", "STC", "SELL":
			qty = -math.Abs(qty)
		case "BTO", "BTC", "BUY":
			qty = math.Abs(qty)
		}
	}

	return strconv.FormatFloat(qty, 'f', -1, 64), nil
}
