package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

var contractMultiplier = decimal.NewFromInt(ContractMultiplier)

// Summarize reduces positions into portfolio-level statistics.
// The result does not depend on the order of positions.
func Summarize(positions []ImportedPosition) ImportSummary {
	summary := ImportSummary{
		TotalValue:        decimal.Zero,
		PositionsByExpiry: make(map[string]int),
		Brokers:           []string{},
	}

	symbols := make(map[string]struct{})
	brokers := make(map[string]struct{})

	for _, p := range positions {
		notional := decimal.NewFromFloat(p.EntryPrice).
			Mul(decimal.NewFromInt(int64(p.Quantity))).
			Mul(contractMultiplier).
			Abs()
		summary.TotalValue = summary.TotalValue.Add(notional)

		switch p.Type {
		case OptionCall:
			summary.PositionsByType.Calls++
		case OptionPut:
			summary.PositionsByType.Puts++
		}

		summary.PositionsByExpiry[p.Expiry.Format("2006-01")]++
		symbols[p.Symbol] = struct{}{}
		if p.Broker != "" {
			brokers[p.Broker] = struct{}{}
		}
	}

	summary.UniqueSymbols = len(symbols)
	for b := range brokers {
		summary.Brokers = append(summary.Brokers, b)
	}
	sort.Strings(summary.Brokers)

	return summary
}
