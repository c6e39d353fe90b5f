package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/posimport/internal/core"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Report renders an import result as a markdown document: a summary table,
// the accepted positions, then errors and warnings in row order.
func Report(result *core.CSVImportResult) string {
	var b strings.Builder
	s := result.Summary

	b.WriteString("# Import report\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Import | `%s` |\n", result.ImportID)
	fmt.Fprintf(&b, "| Broker | %s |\n", mdEscape(result.Broker))
	fmt.Fprintf(&b, "| Rows imported | %d of %d |\n", result.ImportedRows, result.TotalRows)
	fmt.Fprintf(&b, "| Notional | %s |\n", usd(s.TotalValue))
	fmt.Fprintf(&b, "| Calls / puts | %d / %d |\n", s.PositionsByType.Calls, s.PositionsByType.Puts)
	fmt.Fprintf(&b, "| Symbols | %d |\n", s.UniqueSymbols)
	if len(s.Brokers) > 0 {
		fmt.Fprintf(&b, "| Brokers | %s |\n", mdEscape(strings.Join(s.Brokers, ", ")))
	}

	if len(result.Positions) > 0 {
		b.WriteString("\n## Positions\n\n")
		b.WriteString("| Symbol | Type | Strike | Expiry | Qty | Entry | Entry date | Account |\n")
		b.WriteString("|---|---|--:|---|--:|--:|---|---|\n")
		for _, p := range result.Positions {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s | %s | %s |\n",
				p.Symbol, p.Type,
				usd(decimal.NewFromFloat(p.Strike)),
				core.FormatDate(p.Expiry),
				p.Quantity,
				usd(decimal.NewFromFloat(p.EntryPrice)),
				core.FormatDate(p.EntryDate),
				mdEscape(p.AccountID),
			)
		}
	}

	if len(s.PositionsByExpiry) > 0 {
		months := make([]string, 0, len(s.PositionsByExpiry))
		for m := range s.PositionsByExpiry {
			months = append(months, m)
		}
		sort.Strings(months)

		b.WriteString("\n## Expiries\n\n| Month | Positions |\n|---|--:|\n")
		for _, m := range months {
			fmt.Fprintf(&b, "| %s | %d |\n", m, s.PositionsByExpiry[m])
		}
	}

	if len(result.Errors) > 0 {
		b.WriteString("\n## Errors\n\n| Row | Field | Code | Message | Value |\n|--:|---|---|---|---|\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				e.Row, e.Field, e.Code, mdEscape(e.Message), mdEscape(e.Value))
		}
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n| Row | Field | Code | Message |\n|--:|---|---|---|\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", w.Row, w.Field, w.Code, mdEscape(w.Message))
		}
	}

	return b.String()
}

// usd formats an amount in dollars, rounded to cents.
func usd(amount decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	cents := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// mdEscape keeps cell text from breaking a markdown table row.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
