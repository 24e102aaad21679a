package dataprocessing

import (
	"tradecli/pkg/contracts/domain"
)

// Summarize reports record count, shipment date range, distinct categories,
// distinct non-empty suppliers and the grand total sum of a batch.
func Summarize(records []domain.ShipmentRecord) domain.BatchSummary {
	summary := domain.BatchSummary{RecordCount: len(records)}

	categories := make(map[domain.Category]struct{})
	suppliers := make(map[string]struct{})

	for i := range records {
		r := &records[i]

		if r.ShipmentDate != nil {
			if summary.EarliestDate == nil || r.ShipmentDate.Before(*summary.EarliestDate) {
				d := *r.ShipmentDate
				summary.EarliestDate = &d
			}
			if summary.LatestDate == nil || r.ShipmentDate.After(*summary.LatestDate) {
				d := *r.ShipmentDate
				summary.LatestDate = &d
			}
		}

		if r.Category != "" {
			categories[r.Category] = struct{}{}
		}
		if r.SupplierName != "" {
			suppliers[r.SupplierName] = struct{}{}
		}
		if r.GrandTotal != nil {
			summary.GrandTotalSum += *r.GrandTotal
		}
	}

	summary.CategoryCount = len(categories)
	summary.SupplierCount = len(suppliers)
	return summary
}

// CountByCategory tallies records per assigned category
func CountByCategory(records []domain.ShipmentRecord) map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for i := range records {
		counts[records[i].Category]++
	}
	return counts
}
