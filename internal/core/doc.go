// Package core turns broker position exports into validated option positions.
//
// The package has no transport dependencies. Web handlers, the CLI and tests
// all drive the same [Importer].
//
// # Pipeline
//
// Data flows strictly downward:
//
//  1. [TokenizeWithHeaders] splits the text into rows of raw cells.
//  2. [Detect] scores every registered [BrokerSchema] against the header row.
//  3. The row processor resolves each mapped field through a [FieldResolver]:
//     column lookup, named transform, canonical validation.
//  4. Accepted positions and every diagnostic are folded into a
//     [CSVImportResult] in row order, and [Summarize] aggregates the positions.
//
// Errors are data: a bad row never aborts the run, it contributes an
// [ImportError] with a code from error_messages.go.
//
// # Schema Registry
//
// Schemas are registered at init time using [Register]. A schema is plain
// data; its transforms and validators are referenced by name:
//
//	core.Register(core.BrokerSchema{
//	    Key:  "acme",
//	    Name: "Acme Brokerage",
//	    FieldMap: map[core.Field][]string{
//	        core.FieldSymbol: {"Underlying"},
//	        core.FieldExpiry: {"Exp"},
//	    },
//	    Transforms: map[core.Field]string{
//	        core.FieldExpiry: core.TransformCompactDate,
//	    },
//	})
//
// Registration order is the detector's tie-break order. The generic schema is
// always registered first.
//
// # Concurrency
//
// An [Importer] configured with [WithWorkers] fans rows of large inputs out to
// a bounded errgroup and folds the results back in row order. [ImportLimiter]
// bounds how many imports a server runs at once.
package core
