package dataprocessing

import (
	"tradecli/pkg/contracts/domain"
)

// GrandTotal is the declared value plus the duty paid on it
func GrandTotal(totalValue, dutyPaid float64) float64 {
	return totalValue + dutyPaid
}

// LandedCostPerUnit divides the grand total over the quantity.
// It returns nil unless quantity is positive.
func LandedCostPerUnit(grandTotal, quantity float64) *float64 {
	if quantity <= 0 {
		return nil
	}
	cost := grandTotal / quantity
	return &cost
}

// DutyPercentage expresses duty paid as a percentage of total value.
// It returns nil unless total value is positive.
func DutyPercentage(dutyPaid, totalValue float64) *float64 {
	if totalValue <= 0 {
		return nil
	}
	pct := (dutyPaid / totalValue) * 100
	return &pct
}

// DeriveFeatures computes grand total, landed cost per unit and duty percentage
// on every record. Records are expected to have passed DropIncomplete; any
// record still missing a numeric field is left untouched.
func DeriveFeatures(records []domain.ShipmentRecord) {
	for i := range records {
		r := &records[i]
		if !r.HasRequiredNumerics() {
			continue
		}

		grand := GrandTotal(*r.TotalValue, *r.DutyPaid)
		r.GrandTotal = &grand
		r.LandedCostPerUnit = LandedCostPerUnit(grand, *r.Quantity)
		r.DutyPercentage = DutyPercentage(*r.DutyPaid, *r.TotalValue)
	}
}
