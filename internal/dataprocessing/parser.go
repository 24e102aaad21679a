package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	apperrors "tradecli/internal/errors"
	"tradecli/internal/validation"
	"tradecli/pkg/contracts/domain"
)

// Column keys used when mapping header cells to record fields
const (
	colDate           = "date"
	colUnit           = "unit"
	colGoods          = "goods"
	colHSNDescription = "hsn_description"
	colHSNCode        = "hsn_code"
	colTotalValue     = "total_value"
	colDutyPaid       = "duty_paid"
	colQuantity       = "quantity"
	colSupplier       = "supplier"
)

// headerScanRows bounds how far down a sheet the header row is searched for
const headerScanRows = 20

// headerAliases maps normalized header text to column keys
var headerAliases = map[string]string{
	"dateofshipment":     colDate,
	"shipmentdate":       colDate,
	"unit":               colUnit,
	"uqc":                colUnit,
	"unitofmeasure":      colUnit,
	"goodsdescription":   colGoods,
	"productdescription": colGoods,
	"hsndescription":     colHSNDescription,
	"hsncode":            colHSNCode,
	"hsn":                colHSNCode,
	"totalvalueinr":      colTotalValue,
	"totalvalue":         colTotalValue,
	"dutypaidinr":        colDutyPaid,
	"dutypaid":           colDutyPaid,
	"quantity":           colQuantity,
	"qty":                colQuantity,
	"suppliername":       colSupplier,
	"supplier":           colSupplier,
}

// requiredColumns must all be present in the header row
var requiredColumns = []string{colDate, colUnit, colTotalValue, colDutyPaid, colQuantity, colSupplier}

// WorkbookReader loads shipment records from one sheet of an .xlsx workbook
type WorkbookReader struct {
	path  string
	sheet string
}

// NewWorkbookReader creates a reader for path. An empty sheet name selects
// the first sheet whose header row carries the required columns.
func NewWorkbookReader(path, sheet string) *WorkbookReader {
	return &WorkbookReader{path: path, sheet: sheet}
}

// Validate checks the workbook file exists and looks like an Excel workbook
func (r *WorkbookReader) Validate() error {
	return validation.NewFileValidator(nil).ValidateWorkbook(r.path)
}

// Load reads every data row of the workbook
func (r *WorkbookReader) Load(ctx context.Context) ([]domain.ShipmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseFile(r.path, r.sheet)
}

// ParseFile reads a shipment export workbook and returns one record per non-blank data row
func ParseFile(filePath, sheetName string) ([]domain.ShipmentRecord, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheetName != "" {
		sheets = []string{sheetName}
	}

	var lastErr error
	for _, name := range sheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			lastErr = err
			continue
		}

		headerRow, columns, err := locateHeader(rows)
		if err != nil {
			lastErr = err
			slog.Debug("Sheet has no usable header row",
				slog.String("sheet_name", name),
				slog.String("reason", err.Error()))
			continue
		}

		slog.Info("Found shipment data",
			slog.String("file_path", filePath),
			slog.String("sheet_name", name),
			slog.Int("header_row", headerRow+1),
			slog.Int("total_rows", len(rows)))

		return parseRows(rows, headerRow, columns), nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("workbook has no sheets")
	}
	return nil, apperrors.NewParsingError("could not find shipment data sheet", lastErr).WithContext("path", filePath)
}

// locateHeader finds the first row whose cells map onto every required column
func locateHeader(rows [][]string) (int, map[string]int, error) {
	var missing []string
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		columns := make(map[string]int)
		for j, cell := range rows[i] {
			if key, ok := headerAliases[normalizeHeader(cell)]; ok {
				if _, seen := columns[key]; !seen {
					columns[key] = j
				}
			}
		}
		if len(columns) == 0 {
			continue
		}

		missing = missing[:0]
		for _, col := range requiredColumns {
			if _, ok := columns[col]; !ok {
				missing = append(missing, col)
			}
		}
		if len(missing) == 0 {
			return i, columns, nil
		}
	}

	if len(missing) > 0 {
		return -1, nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return -1, nil, fmt.Errorf("no header row found")
}

func parseRows(rows [][]string, headerRow int, columns map[string]int) []domain.ShipmentRecord {
	records := make([]domain.ShipmentRecord, 0, len(rows)-headerRow-1)
	extras := extraColumns(rows, headerRow, columns)
	blank := 0

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			blank++
			continue
		}

		// Text cells are kept exactly as read; only numeric cells are trimmed
		getString := func(key string) string {
			if idx, ok := columns[key]; ok && idx < len(row) {
				return row[idx]
			}
			return ""
		}

		record := domain.ShipmentRecord{
			SourceRow:        i + 1,
			SupplierName:     getString(colSupplier),
			HSNCode:          getString(colHSNCode),
			GoodsDescription: getString(colGoods),
			HSNDescription:   getString(colHSNDescription),
			DateOfShipment:   dateCellText(getString(colDate)),
			Unit:             getString(colUnit),
			TotalValue:       parseNumber(getString(colTotalValue)),
			DutyPaid:         parseNumber(getString(colDutyPaid)),
			Quantity:         parseNumber(getString(colQuantity)),
		}

		if len(extras) > 0 {
			record.Extra = make([]domain.ExtraColumn, len(extras))
			for j, col := range extras {
				value := ""
				if col.index < len(row) {
					value = row[col.index]
				}
				record.Extra[j] = domain.ExtraColumn{Name: col.name, Value: value}
			}
		}

		records = append(records, record)
	}

	slog.Info("Parsed shipment rows",
		slog.Int("records", len(records)),
		slog.Int("extra_columns", len(extras)),
		slog.Int("blank_rows_skipped", blank))

	return records
}

// extraColumn is a sheet column with no named record field
type extraColumn struct {
	name  string
	index int
}

// extraColumns lists, in sheet order, every column of the header row and the
// rows below it that is not mapped to a record field. Blank headers become
// "Unnamed: <index>" and repeated names get a ".1", ".2", ... suffix.
func extraColumns(rows [][]string, headerRow int, columns map[string]int) []extraColumn {
	header := rows[headerRow]
	width := 0
	for i := headerRow; i < len(rows); i++ {
		width = max(width, len(rows[i]))
	}

	mapped := make(map[int]bool, len(columns))
	seen := make(map[string]int)
	for _, idx := range columns {
		mapped[idx] = true
		seen[header[idx]] = 1
	}

	var extras []extraColumn
	for j := 0; j < width; j++ {
		if mapped[j] {
			continue
		}

		name := ""
		if j < len(header) {
			name = header[j]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		seen[name]++

		extras = append(extras, extraColumn{name: name, index: j})
	}
	return extras
}

// parseNumber converts a cell to a float, tolerating thousands separators.
// Blank and non-numeric cells are reported as missing.
func parseNumber(cell string) *float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// dateCellText renders native Excel date serials as DD/MM/YYYY and leaves text as is
func dateCellText(cell string) string {
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || serial <= 0 {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return t.Format("02/01/2006")
}

func normalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
