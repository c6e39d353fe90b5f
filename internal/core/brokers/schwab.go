package brokers

import "github.com/JonMunkholm/posimport/internal/core"

// Schwab positions export. Prices carry "$" and losses use parentheses,
// both of which the canonical number parser accepts.
var schwab = core.BrokerSchema{
	Key:  KeySchwab,
	Name: "Charles Schwab",
	FieldMap: map[core.Field][]string{
		core.FieldSymbol:     {"Symbol"},
		core.FieldOptionType: {"Option Type", "Call/Put"},
		core.FieldStrike:     {"Strike Price"},
		core.FieldExpiry:     {"Expiration"},
		core.FieldQuantity:   {"Qty (Quantity)", "Quantity"},
		core.FieldEntryPrice: {"Cost/Share", "Price"},
		core.FieldEntryDate:  {"Date Acquired"},
		core.FieldNotes:      {"Description"},
		core.FieldAccountID:  {"Account"},
	},
	Transforms: map[core.Field]string{
		core.FieldSymbol: core.TransformFirstToken,
	},
}
