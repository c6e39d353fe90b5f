package brokers

import "github.com/JonMunkholm/posimport/internal/core"

// thinkorswim account statement trade history. Expiries are written as
// "15 JAN 27"; the symbol column may hold an OCC symbol.
var thinkorswim = core.BrokerSchema{
	Key:  KeyThinkorswim,
	Name: "thinkorswim",
	FieldMap: map[core.Field][]string{
		core.FieldSymbol:     {"Symbol"},
		core.FieldOptionType: {"Type"},
		core.FieldStrike:     {"Strike"},
		core.FieldExpiry:     {"Exp"},
		core.FieldQuantity:   {"Qty"},
		core.FieldEntryPrice: {"Trade Price", "Price"},
		core.FieldEntryDate:  {"Exec Time"},
	},
	Transforms: map[core.Field]string{
		core.FieldSymbol:     core.TransformOCCUnderlying,
		core.FieldOptionType: core.TransformOptionLetter,
		core.FieldEntryDate:  core.TransformDatePart,
	},
	Validators: map[core.Field]string{
		core.FieldExpiry: core.ValidatorWeekdayExpiry,
	},
}
