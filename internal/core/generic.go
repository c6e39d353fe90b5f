package core

// genericSchema accepts broadly common lower-case column names. It is the
// detector's fallback when no schema recognises any header.
var genericSchema = BrokerSchema{
	Key:  GenericKey,
	Name: "Generic CSV",
	FieldMap: map[Field][]string{
		FieldSymbol:     {"symbol", "ticker", "underlying"},
		FieldOptionType: {"type", "option_type", "put_call"},
		FieldStrike:     {"strike", "strike_price"},
		FieldExpiry:     {"expiry", "expiration", "expiration_date"},
		FieldQuantity:   {"quantity", "qty", "contracts"},
		FieldEntryPrice: {"price", "entry_price", "cost"},
		FieldEntryDate:  {"date", "entry_date", "open_date"},
		FieldNotes:      {"notes", "note"},
		FieldAccountID:  {"account", "account_id"},
	},
}

func init() {
	Register(genericSchema)
}
