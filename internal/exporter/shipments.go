package exporter

import (
	"context"
	"log/slog"

	"tradecli/internal/config"
	apperrors "tradecli/internal/errors"
	"tradecli/pkg/contracts/domain"
)

// sourceHeaders are the named source columns, keeping the workbook's names
var sourceHeaders = []string{
	"Date of Shipment",
	"Supplier Name",
	"HSN Code",
	"Goods Description",
	"HSN Description",
	"Unit",
	"Quantity",
	"Total Value (INR)",
	"Duty Paid (INR)",
}

// derivedHeaders are the columns computed by the pipeline
var derivedHeaders = []string{
	"date_of_shipment",
	"year",
	"month",
	"quarter",
	"unit_standardized",
	"grand_total_inr",
	"landed_cost_per_unit",
	"category",
	"sub_category",
	"duty_percentage",
}

// ShipmentHeaders returns the column order of the cleaned shipment file: the
// named source columns, then extra source columns in sheet order, then the
// derived columns.
func ShipmentHeaders(extra []string) []string {
	headers := make([]string, 0, len(sourceHeaders)+len(extra)+len(derivedHeaders))
	headers = append(headers, sourceHeaders...)
	headers = append(headers, extra...)
	return append(headers, derivedHeaders...)
}

// ShipmentExporter writes cleaned shipment records to CSV
type ShipmentExporter struct {
	writer    *CSVWriter
	bomPrefix bool
}

// NewShipmentExporter creates an exporter writing under paths
func NewShipmentExporter(paths *config.Paths, bomPrefix bool) *ShipmentExporter {
	return &ShipmentExporter{
		writer:    NewCSVWriter(paths),
		bomPrefix: bomPrefix,
	}
}

// WriteShipments writes one row per record, in order, and returns the file written
func (e *ShipmentExporter) WriteShipments(ctx context.Context, filePath string, records []domain.ShipmentRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rows := make([][]string, len(records))
	for i := range records {
		rows[i] = ShipmentRow(&records[i])
	}

	fullPath, err := e.writer.WriteCSV(filePath, WriteOptions{
		Headers:   ShipmentHeaders(domain.ExtraColumnNames(records)),
		Records:   rows,
		BOMPrefix: e.bomPrefix,
	})
	if err != nil {
		return "", apperrors.NewExportError("failed to write cleaned shipments", err).WithContext("path", filePath)
	}

	slog.InfoContext(ctx, "Cleaned shipments exported",
		slog.String("path", fullPath),
		slog.Int("records", len(records)))

	return fullPath, nil
}

// ShipmentRow renders a record in ShipmentHeaders order
func ShipmentRow(r *domain.ShipmentRecord) []string {
	row := make([]string, 0, len(sourceHeaders)+len(r.Extra)+len(derivedHeaders))
	row = append(row,
		r.DateOfShipment,
		r.SupplierName,
		r.HSNCode,
		r.GoodsDescription,
		r.HSNDescription,
		r.Unit,
		formatOptionalFloat(r.Quantity),
		formatOptionalFloat(r.TotalValue),
		formatOptionalFloat(r.DutyPaid),
	)
	for _, col := range r.Extra {
		row = append(row, col.Value)
	}
	return append(row,
		formatOptionalDate(r.ShipmentDate),
		formatOptionalInt(r.Year),
		formatOptionalInt(r.Month),
		formatOptionalInt(r.Quarter),
		r.UnitStandardized,
		formatOptionalFloat(r.GrandTotal),
		formatOptionalFloat(r.LandedCostPerUnit),
		string(r.Category),
		string(r.SubCategory),
		formatOptionalFloat(r.DutyPercentage),
	)
}
