package dataprocessing

import (
	"tradecli/pkg/contracts/domain"
)

// DropIncomplete returns the records that carry total value, duty paid and
// quantity, in their original order. The input slice is not modified.
func DropIncomplete(records []domain.ShipmentRecord) []domain.ShipmentRecord {
	kept := make([]domain.ShipmentRecord, 0, len(records))
	for _, record := range records {
		if record.HasRequiredNumerics() {
			kept = append(kept, record)
		}
	}
	return kept
}
