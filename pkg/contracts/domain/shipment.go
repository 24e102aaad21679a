package domain

import (
	"time"
)

// Category is the top-level goods classification assigned to a shipment
type Category string

const (
	CategoryGlass       Category = "Glass"
	CategoryWooden      Category = "Wooden"
	CategorySteel       Category = "Steel"
	CategoryPlastic     Category = "Plastic"
	CategoryElectronics Category = "Electronics"
	CategoryOthers      Category = "Others"
)

// SubCategory refines a Category. Its valid values depend on the category.
type SubCategory string

const (
	SubCategoryBorosilicate SubCategory = "Borosilicate"
	SubCategoryOpalware     SubCategory = "Opalware"
	SubCategoryOtherGlass   SubCategory = "Other Glass"

	SubCategorySpoon       SubCategory = "Spoon"
	SubCategoryFork        SubCategory = "Fork"
	SubCategoryBowl        SubCategory = "Bowl"
	SubCategoryOtherWooden SubCategory = "Other Wooden"

	SubCategoryUtensils   SubCategory = "Utensils"
	SubCategoryOtherSteel SubCategory = "Other Steel"

	SubCategoryBottles      SubCategory = "Bottles"
	SubCategoryContainers   SubCategory = "Containers"
	SubCategoryOtherPlastic SubCategory = "Other Plastic"

	SubCategoryOthers SubCategory = "Others"
)

// Categories lists every category in classification order
func Categories() []Category {
	return []Category{
		CategoryGlass,
		CategoryWooden,
		CategorySteel,
		CategoryPlastic,
		CategoryElectronics,
		CategoryOthers,
	}
}

// SubCategoriesFor returns the sub-categories a record of the given category may carry.
// Unknown categories return nil.
func SubCategoriesFor(c Category) []SubCategory {
	switch c {
	case CategoryGlass:
		return []SubCategory{SubCategoryBorosilicate, SubCategoryOpalware, SubCategoryOtherGlass}
	case CategoryWooden:
		return []SubCategory{SubCategorySpoon, SubCategoryFork, SubCategoryBowl, SubCategoryOtherWooden}
	case CategorySteel:
		return []SubCategory{SubCategoryUtensils, SubCategoryOtherSteel}
	case CategoryPlastic:
		return []SubCategory{SubCategoryBottles, SubCategoryContainers, SubCategoryOtherPlastic}
	case CategoryElectronics, CategoryOthers:
		return []SubCategory{SubCategoryOthers}
	default:
		return nil
	}
}

// BelongsTo reports whether s is a valid sub-category of c
func (s SubCategory) BelongsTo(c Category) bool {
	for _, allowed := range SubCategoriesFor(c) {
		if s == allowed {
			return true
		}
	}
	return false
}

// ExtraColumn is a source column the reader has no named field for. Its
// value is the cell text exactly as read.
type ExtraColumn struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ShipmentRecord is one row of a trade shipment export. The raw fields are
// populated by the reader; the derived fields are filled in place by the
// cleaning, classification and feature stages.
type ShipmentRecord struct {
	// SourceRow is the 1-based spreadsheet row the record was read from
	SourceRow int `json:"source_row"`

	SupplierName     string `json:"supplier_name"`
	HSNCode          string `json:"hsn_code"`
	GoodsDescription string `json:"goods_description"`
	HSNDescription   string `json:"hsn_description"`

	// Raw text as found in the sheet
	DateOfShipment string `json:"date_of_shipment_raw"`
	Unit           string `json:"unit"`

	// nil means the cell was blank or not numeric
	TotalValue *float64 `json:"total_value_inr"`
	DutyPaid   *float64 `json:"duty_paid_inr"`
	Quantity   *float64 `json:"quantity"`

	// Remaining source columns in sheet order. Every record of a batch
	// carries the same names in the same order.
	Extra []ExtraColumn `json:"extra,omitempty"`

	ShipmentDate     *time.Time `json:"date_of_shipment,omitempty"`
	Year             *int       `json:"year,omitempty"`
	Month            *int       `json:"month,omitempty"`
	Quarter          *int       `json:"quarter,omitempty"`
	UnitStandardized string     `json:"unit_standardized"`

	Category    Category    `json:"category"`
	SubCategory SubCategory `json:"sub_category"`

	GrandTotal        *float64 `json:"grand_total_inr,omitempty"`
	LandedCostPerUnit *float64 `json:"landed_cost_per_unit,omitempty"`
	DutyPercentage    *float64 `json:"duty_percentage,omitempty"`
}

// HasRequiredNumerics reports whether total value, duty paid and quantity are all present
func (r *ShipmentRecord) HasRequiredNumerics() bool {
	return r.TotalValue != nil && r.DutyPaid != nil && r.Quantity != nil
}

// ExtraColumnNames returns the names of the extra columns carried by the
// first record. An empty batch has none.
func ExtraColumnNames(records []ShipmentRecord) []string {
	if len(records) == 0 {
		return nil
	}
	names := make([]string, len(records[0].Extra))
	for i, col := range records[0].Extra {
		names[i] = col.Name
	}
	return names
}

// BatchSummary describes a processed batch
type BatchSummary struct {
	RecordCount   int        `json:"record_count"`
	EarliestDate  *time.Time `json:"earliest_date,omitempty"`
	LatestDate    *time.Time `json:"latest_date,omitempty"`
	CategoryCount int        `json:"category_count"`
	SupplierCount int        `json:"supplier_count"`
	GrandTotalSum float64    `json:"grand_total_sum"`
}
