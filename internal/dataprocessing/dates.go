package dataprocessing

import (
	"time"

	"tradecli/pkg/contracts/domain"
)

// ShipmentDateLayout is the day/month/year layout of the Date of Shipment column.
// Day and month may be one or two digits.
const ShipmentDateLayout = "2/1/2006"

// DateParts holds a parsed shipment date and the calendar fields derived from it.
// Every field is nil when the source text could not be parsed.
type DateParts struct {
	Date    *time.Time
	Year    *int
	Month   *int
	Quarter *int
}

// ParseShipmentDate parses raw in ShipmentDateLayout. Anything else yields nil.
func ParseShipmentDate(raw string) *time.Time {
	t, err := time.Parse(ShipmentDateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}

// DeriveDate parses raw and derives year, month and calendar quarter
func DeriveDate(raw string) DateParts {
	date := ParseShipmentDate(raw)
	if date == nil {
		return DateParts{}
	}

	year := date.Year()
	month := int(date.Month())
	quarter := (month + 2) / 3

	return DateParts{
		Date:    date,
		Year:    &year,
		Month:   &month,
		Quarter: &quarter,
	}
}

// DeriveDates fills the date-derived fields on every record and returns how
// many dates could not be parsed.
func DeriveDates(records []domain.ShipmentRecord) int {
	unparsed := 0
	for i := range records {
		parts := DeriveDate(records[i].DateOfShipment)
		if parts.Date == nil {
			unparsed++
		}
		records[i].ShipmentDate = parts.Date
		records[i].Year = parts.Year
		records[i].Month = parts.Month
		records[i].Quarter = parts.Quarter
	}
	return unparsed
}
