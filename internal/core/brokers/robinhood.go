package brokers

import "github.com/JonMunkholm/posimport/internal/core"

// Robinhood account activity. The option contract is only described in prose,
// e.g. "AAPL 1/15/2027 Call $190.00", and Trans Code (BTO, STO, BTC, STC)
// gives the side.
var robinhood = core.BrokerSchema{
	Key:  KeyRobinhood,
	Name: "Robinhood",
	FieldMap: map[core.Field][]string{
		core.FieldSymbol:     {"Instrument"},
		core.FieldOptionType: {"Description"},
		core.FieldStrike:     {"Description"},
		core.FieldExpiry:     {"Description"},
		core.FieldQuantity:   {"Quantity"},
		core.FieldEntryPrice: {"Price"},
		core.FieldEntryDate:  {"Activity Date"},
	},
	Transforms: map[core.Field]string{
		core.FieldOptionType: TransformRobinhoodType,
		core.FieldStrike:     TransformRobinhoodStrike,
		core.FieldExpiry:     TransformRobinhoodExpiry,
		core.FieldQuantity:   TransformRobinhoodQuantity,
	},
}
