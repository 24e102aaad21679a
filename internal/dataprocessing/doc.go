// Package dataprocessing turns raw trade shipment rows into a cleaned,
// classified batch. It covers the whole per-record lifecycle between the
// spreadsheet and the output sinks.
//
// # Architecture
//
// The package is organized into small stages, each a plain function over a
// slice of domain.ShipmentRecord:
//
// 1. Parser: reads the shipment sheet of an .xlsx export (WorkbookReader, ParseFile)
// 2. Cleaning: DeriveDates and NormalizeUnits fill the calendar and unit columns
// 3. Filtering: DropIncomplete removes rows without total value, duty or quantity
// 4. Classification: ClassifyRecords applies the ordered keyword rules
// 5. Features: DeriveFeatures computes grand total, landed cost and duty percentage
// 6. Summary: Summarize reports counts, date range and value totals
//
// # Data Flow
//
//	Excel File → Parser → dates + units → DropIncomplete → ClassifyRecords → DeriveFeatures → Summarize
//
// # Usage
//
//	records, err := dataprocessing.ParseFile("data/raw/Sample Data 2.xlsx", "")
//	if err != nil {
//	    return err
//	}
//	dataprocessing.DeriveDates(records)
//	dataprocessing.NormalizeUnits(records)
//	records = dataprocessing.DropIncomplete(records)
//	dataprocessing.ClassifyRecords(records)
//	dataprocessing.DeriveFeatures(records)
//	summary := dataprocessing.Summarize(records)
//
// # Error Handling
//
// Only the parser returns errors. Unparseable dates, unknown units and
// missing numerics are data conditions, not failures: they produce nil
// derived values, a pass-through unit, or a dropped row respectively.
package dataprocessing
