// Package exporter writes cleaned shipment data to CSV.
//
// CSVWriter is the low-level writer: it resolves relative paths against a
// config.Paths base directory, creates parent directories, optionally writes
// a UTF-8 BOM for Excel and always truncates the target file.
//
// ShipmentExporter renders domain.ShipmentRecord values in a fixed column
// order. Missing values become empty cells, derived dates use YYYY-MM-DD and
// floats use their shortest round-trip representation.
//
// Example usage:
//
//	exp := exporter.NewShipmentExporter(paths, false)
//	path, err := exp.WriteShipments(ctx, "data/processed/trade_cleaned.csv", records)
package exporter
