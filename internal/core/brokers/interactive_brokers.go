package brokers

import "github.com/JonMunkholm/posimport/internal/core"

// Interactive Brokers Flex Query trade exports.
var interactiveBrokers = core.BrokerSchema{
	Key:  KeyInteractiveBrokers,
	Name: "Interactive Brokers",
	FieldMap: map[core.Field][]string{
		core.FieldSymbol:     {"UnderlyingSymbol", "Symbol"},
		core.FieldOptionType: {"Put/Call"},
		core.FieldStrike:     {"Strike"},
		core.FieldExpiry:     {"Expiry"},
		core.FieldQuantity:   {"Quantity"},
		core.FieldEntryPrice: {"TradePrice"},
		core.FieldEntryDate:  {"TradeDate"},
		core.FieldAccountID:  {"ClientAccountID"},
	},
	Transforms: map[core.Field]string{
		core.FieldSymbol:     core.TransformFirstToken,
		core.FieldOptionType: core.TransformOptionLetter,
		core.FieldExpiry:     core.TransformCompactDate,
		core.FieldEntryDate:  core.TransformCompactDate,
	},
}
