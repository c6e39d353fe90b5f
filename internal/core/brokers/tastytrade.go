package brokers

import "github.com/JonMunkholm/posimport/internal/core"

// tastytrade position exports carry unsigned quantities; the Action column
// (BUY_TO_OPEN, SELL_TO_OPEN) gives the side.
var tastytrade = core.BrokerSchema{
	Key:  KeyTastytrade,
	Name: "tastytrade",
	FieldMap: map[core.Field][]string{
		core.FieldSymbol:     {"Underlying Symbol", "Root Symbol"},
		core.FieldOptionType: {"Call or Put"},
		core.FieldStrike:     {"Strike Price"},
		core.FieldExpiry:     {"Expiration Date"},
		core.FieldQuantity:   {"Quantity"},
		core.FieldEntryPrice: {"Average Open Price", "Trade Price"},
		core.FieldEntryDate:  {"Open Date", "Date"},
		core.FieldAccountID:  {"Account Number"},
	},
	Transforms: map[core.Field]string{
		core.FieldQuantity: core.TransformSignedBySide,
	},
}
