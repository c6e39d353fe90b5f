package brokers

import "github.com/JonMunkholm/posimport/internal/core"

// Webull order history. One OCC symbol column carries the underlying, right,
// strike and expiry; Side gives the sign of the filled quantity.
var webull = core.BrokerSchema{
	Key:  KeyWebull,
	Name: "Webull",
	FieldMap: map[core.Field][]string{
		core.FieldSymbol:     {"Symbol"},
		core.FieldOptionType: {"Symbol"},
		core.FieldStrike:     {"Symbol"},
		core.FieldExpiry:     {"Symbol"},
		core.FieldQuantity:   {"Filled", "Total Qty"},
		core.FieldEntryPrice: {"Avg Price", "Price"},
		core.FieldEntryDate:  {"Filled Time", "Placed Time"},
	},
	Transforms: map[core.Field]string{
		core.FieldSymbol:     core.TransformOCCUnderlying,
		core.FieldOptionType: core.TransformOCCType,
		core.FieldStrike:     core.TransformOCCStrike,
		core.FieldExpiry:     core.TransformOCCExpiry,
		core.FieldQuantity:   core.TransformSignedBySide,
		core.FieldEntryDate:  core.TransformDatePart,
	},
}
