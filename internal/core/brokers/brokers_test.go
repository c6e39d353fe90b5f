package brokers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/posimport/internal/core"
)

var fixedNow = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

func newImporter() *core.Importer {
	return core.NewImporter(core.WithClock(func() time.Time { return fixedNow }))
}

func TestCatalogOrder(t *testing.T) {
	want := []string{
		core.GenericKey,
		KeyTastytrade,
		KeyInteractiveBrokers,
		KeyThinkorswim,
		KeySchwab,
		KeyRobinhood,
		KeyWebull,
	}
	assert.Equal(t, want, core.Keys())
}

func TestDetect_TiesKeepGeneric(t *testing.T) {
	// Both schemas read all five columns; generic is registered first.
	assert.Equal(t, core.GenericKey, core.Detect([]string{"Symbol", "Type", "Strike", "Qty", "Price"}))

	// A broker-specific column breaks the tie.
	assert.Equal(t, KeyThinkorswim, core.Detect([]string{"Symbol", "Type", "Strike", "Exp", "Qty", "Price"}))
}

func TestSampleRoundTrip(t *testing.T) {
	for _, schema := range core.All() {
		t.Run(schema.Key, func(t *testing.T) {
			text := core.GenerateSampleCSV(schema, fixedNow)

			result := newImporter().Import(context.Background(), text, core.ImportOptions{Broker: schema.Key})

			require.Empty(t, result.Errors, "sample:\n%s", text)
			assert.True(t, result.Success)
			assert.Equal(t, result.TotalRows, result.ImportedRows)
			assert.Equal(t, 3, result.ImportedRows)

			want := core.SamplePositions(schema, fixedNow)
			for i, p := range result.Positions {
				assert.Equal(t, want[i].Symbol, p.Symbol)
				assert.Equal(t, want[i].Type, p.Type)
				assert.InDelta(t, want[i].Strike, p.Strike, 1e-9)
				assert.True(t, want[i].Expiry.Equal(p.Expiry), "expiry %v, want %v", p.Expiry, want[i].Expiry)
				assert.Equal(t, want[i].Quantity, p.Quantity)
				assert.Equal(t, schema.Name, p.Broker)
			}
		})
	}
}

func TestSampleDetection(t *testing.T) {
	for _, schema := range core.All() {
		t.Run(schema.Key, func(t *testing.T) {
			text := core.GenerateSampleCSV(schema, fixedNow)
			headers, _ := core.TokenizeWithHeaders(text)

			assert.Equal(t, schema.Key, core.Detect(headers))
		})
	}
}

func TestInteractiveBrokersExport(t *testing.T) {
	text := strings.Join([]string{
		"ClientAccountID,UnderlyingSymbol,Put/Call,Strike,Expiry,Quantity,TradePrice,TradeDate",
		"U1234567,AAPL,C,190,20270115,-2,5.10,20261001",
		"U1234567,MSFT,P,400,20270219,1,8.25,20261002",
	}, "\n")

	result := newImporter().Import(context.Background(), text, core.ImportOptions{})

	require.True(t, result.Success, "errors: %+v", result.Errors)
	assert.Equal(t, KeyInteractiveBrokers, result.Broker)
	require.Len(t, result.Positions, 2)

	p := result.Positions[0]
	assert.Equal(t, "AAPL", p.Symbol)
	assert.Equal(t, core.OptionCall, p.Type)
	assert.Equal(t, -2, p.Quantity)
	assert.Equal(t, "2027-01-15", core.FormatDate(p.Expiry))
	assert.Equal(t, "2026-10-01", core.FormatDate(p.EntryDate))
	assert.Equal(t, "U1234567", p.AccountID)
}

func TestTastytradeSignedQuantity(t *testing.T) {
	text := strings.Join([]string{
		"Account Number,Underlying Symbol,Call or Put,Strike Price,Expiration Date,Quantity,Action,Average Open Price",
		"5WT00001,SPY,PUT,550,2027-03-19,3,SELL_TO_OPEN,4.20",
		"5WT00001,QQQ,CALL,500,2027-03-19,1,BUY_TO_OPEN,9.00",
	}, "\n")

	result := newImporter().Import(context.Background(), text, core.ImportOptions{Broker: KeyTastytrade})

	require.True(t, result.Success, "errors: %+v", result.Errors)
	require.Len(t, result.Positions, 2)
	assert.Equal(t, -3, result.Positions[0].Quantity)
	assert.Equal(t, 1, result.Positions[1].Quantity)
	assert.Equal(t, core.OptionPut, result.Positions[0].Type)
}

func TestWebullOCCSymbol(t *testing.T) {
	text := strings.Join([]string{
		"Symbol,Side,Filled,Avg Price,Filled Time",
		"NVDA270115C00150000,Sell,2,12.40,01/05/2026 09:31:02 EST",
	}, "\n")

	result := newImporter().Import(context.Background(), text, core.ImportOptions{Broker: KeyWebull})

	require.True(t, result.Success, "errors: %+v", result.Errors)
	p := result.Positions[0]
	assert.Equal(t, "NVDA", p.Symbol)
	assert.Equal(t, core.OptionCall, p.Type)
	assert.InDelta(t, 150.0, p.Strike, 1e-9)
	assert.Equal(t, "2027-01-15", core.FormatDate(p.Expiry))
	assert.Equal(t, -2, p.Quantity)
	assert.Equal(t, "2026-01-05", core.FormatDate(p.EntryDate))
}

func TestRobinhoodDescription(t *testing.T) {
	text := strings.Join([]string{
		"Activity Date,Instrument,Description,Trans Code,Quantity,Price",
		`10/01/2026,TSLA,TSLA 3/19/2027 Put $250.00,STO,1,$18.35`,
		`10/02/2026,AMD,"AMD 6/18/2027 Call $1,200.00",BTO,4,$2.10`,
	}, "\n")

	result := newImporter().Import(context.Background(), text, core.ImportOptions{})

	require.True(t, result.Success, "errors: %+v", result.Errors)
	assert.Equal(t, KeyRobinhood, result.Broker)
	require.Len(t, result.Positions, 2)

	assert.Equal(t, core.OptionPut, result.Positions[0].Type)
	assert.InDelta(t, 250.0, result.Positions[0].Strike, 1e-9)
	assert.Equal(t, -1, result.Positions[0].Quantity)
	assert.InDelta(t, 18.35, result.Positions[0].EntryPrice, 1e-9)

	assert.InDelta(t, 1200.0, result.Positions[1].Strike, 1e-9)
	assert.Equal(t, 4, result.Positions[1].Quantity)
}

func TestRobinhoodBadDescriptionWarns(t *testing.T) {
	text := strings.Join([]string{
		"Activity Date,Instrument,Description,Trans Code,Quantity,Price",
		"10/01/2026,TSLA,Dividend,BTO,1,1.00",
	}, "\n")

	result := newImporter().Import(context.Background(), text, core.ImportOptions{Broker: KeyRobinhood})

	assert.False(t, result.Success)
	assert.Empty(t, result.Positions)

	codes := make(map[string]int)
	for _, w := range result.Warnings {
		codes[w.Code]++
	}
	assert.Equal(t, 3, codes[core.CodeTransformFailed])
}

func TestThinkorswimWeekendExpiry(t *testing.T) {
	text := strings.Join([]string{
		"Exec Time,Symbol,Exp,Strike,Type,Qty,Trade Price",
		"10/01/26 10:02:11,AAPL,15 JAN 27,190,CALL,+1,5.00",
		"10/01/26 10:02:11,AAPL,17 JAN 27,190,CALL,+1,5.00",
	}, "\n")

	result := newImporter().Import(context.Background(), text, core.ImportOptions{})

	assert.Equal(t, KeyThinkorswim, result.Broker)
	require.Len(t, result.Positions, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, core.FieldExpiry, result.Errors[0].Field)
	assert.Equal(t, core.CodeSchemaRule, result.Errors[0].Code)
}

func TestSchwabAccountingNumbers(t *testing.T) {
	text := strings.Join([]string{
		"Account,Symbol,Description,Option Type,Strike Price,Expiration,Quantity,Cost/Share,Date Acquired",
		`XXXX-1234,"GOOG 06/18/2027 180.00 C","ALPHABET INC",Call,"$180.00",06/18/2027,(2),"$1,005.50",09/30/2026`,
	}, "\n")

	result := newImporter().Import(context.Background(), text, core.ImportOptions{})

	require.True(t, result.Success, "errors: %+v", result.Errors)
	assert.Equal(t, KeySchwab, result.Broker)
	p := result.Positions[0]
	assert.Equal(t, "GOOG", p.Symbol)
	assert.Equal(t, -2, p.Quantity)
	assert.InDelta(t, 1005.5, p.EntryPrice, 1e-9)
	assert.Equal(t, "ALPHABET INC", p.Notes)
}
