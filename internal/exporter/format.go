package exporter

import (
	"strconv"
	"time"
)

// dateFormat is the ISO layout used for derived dates
const dateFormat = "2006-01-02"

// formatFloat formats a float64 in its shortest round-trip form
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptionalFloat renders nil as an empty cell
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatOptionalInt renders nil as an empty cell
func formatOptionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

// formatOptionalDate renders nil as an empty cell
func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}
