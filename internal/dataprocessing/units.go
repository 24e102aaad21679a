package dataprocessing

import (
	"strings"

	"tradecli/pkg/contracts/domain"
)

// unitSynonyms maps upper-cased unit spellings to their canonical form
var unitSynonyms = map[string]string{
	"PCS":        "PCS",
	"PC":         "PCS",
	"NOS":        "PCS",
	"PIECES":     "PCS",
	"PIECE":      "PCS",
	"KG":         "KG",
	"KGS":        "KG",
	"MT":         "MT",
	"METRIC TON": "MT",
	"BOX":        "BOX",
	"SET":        "SET",
}

// NormalizeUnit returns the canonical unit for raw. Units missing from the
// synonym table come back exactly as given, case preserved.
func NormalizeUnit(raw string) string {
	if canonical, ok := unitSynonyms[strings.ToUpper(raw)]; ok {
		return canonical
	}
	return raw
}

// NormalizeUnits fills UnitStandardized on every record
func NormalizeUnits(records []domain.ShipmentRecord) {
	for i := range records {
		records[i].UnitStandardized = NormalizeUnit(records[i].Unit)
	}
}
