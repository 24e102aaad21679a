package database

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"tradecli/internal/config"
	apperrors "tradecli/internal/errors"
	"tradecli/pkg/contracts/domain"
)

// ShipmentRow is the persisted form of a cleaned shipment record
type ShipmentRow struct {
	ID                 uint       `gorm:"primaryKey"`
	SourceRow          int        `gorm:"not null"`
	DateOfShipmentText string     `gorm:"type:varchar(64)"`
	SupplierName       string     `gorm:"type:text"`
	HSNCode            string     `gorm:"column:hsn_code;type:varchar(32)"`
	GoodsDescription   string     `gorm:"type:text"`
	HSNDescription     string     `gorm:"column:hsn_description;type:text"`
	Unit               string     `gorm:"type:varchar(64)"`
	Quantity           *float64   `gorm:"column:quantity"`
	TotalValueINR      *float64   `gorm:"column:total_value_inr"`
	DutyPaidINR        *float64   `gorm:"column:duty_paid_inr"`
	DateOfShipment     *time.Time `gorm:"type:date"`
	Year               *int       `gorm:"column:year"`
	Month              *int       `gorm:"column:month"`
	Quarter            *int       `gorm:"column:quarter"`
	UnitStandardized   string     `gorm:"type:varchar(64)"`
	GrandTotalINR      *float64   `gorm:"column:grand_total_inr"`
	LandedCostPerUnit  *float64   `gorm:"column:landed_cost_per_unit"`
	Category           string     `gorm:"type:varchar(32)"`
	SubCategory        string     `gorm:"type:varchar(32)"`
	DutyPercentage     *float64   `gorm:"column:duty_percentage"`
	// ExtraColumns is a JSON object of the remaining source columns, in sheet order
	ExtraColumns string `gorm:"column:extra_columns;type:text"`
}

// TableName returns the default table name for ShipmentRow
func (ShipmentRow) TableName() string {
	return config.DefaultShipmentTable
}

// NewShipmentRow converts a cleaned record into its table row
func NewShipmentRow(r *domain.ShipmentRecord) ShipmentRow {
	return ShipmentRow{
		SourceRow:          r.SourceRow,
		DateOfShipmentText: r.DateOfShipment,
		SupplierName:       r.SupplierName,
		HSNCode:            r.HSNCode,
		GoodsDescription:   r.GoodsDescription,
		HSNDescription:     r.HSNDescription,
		Unit:               r.Unit,
		Quantity:           r.Quantity,
		TotalValueINR:      r.TotalValue,
		DutyPaidINR:        r.DutyPaid,
		DateOfShipment:     r.ShipmentDate,
		Year:               r.Year,
		Month:              r.Month,
		Quarter:            r.Quarter,
		UnitStandardized:   r.UnitStandardized,
		GrandTotalINR:      r.GrandTotal,
		LandedCostPerUnit:  r.LandedCostPerUnit,
		Category:           string(r.Category),
		SubCategory:        string(r.SubCategory),
		DutyPercentage:     r.DutyPercentage,
		ExtraColumns:       extraColumnsJSON(r.Extra),
	}
}

// extraColumnsJSON encodes cols as a JSON object keeping their order. No
// columns encode as the empty string.
func extraColumnsJSON(cols []domain.ExtraColumn) string {
	if len(cols) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, col := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		name, _ := json.Marshal(col.Name)
		value, _ := json.Marshal(col.Value)
		b.Write(name)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.String()
}

// ShipmentStore writes cleaned shipments to a single table
type ShipmentStore struct {
	db        *gorm.DB
	table     string
	batchSize int
}

// NewShipmentStore creates a store for table. A non-positive batchSize uses the default.
func NewShipmentStore(db *gorm.DB, table string, batchSize int) *ShipmentStore {
	if table == "" {
		table = config.DefaultShipmentTable
	}
	if batchSize <= 0 {
		batchSize = config.DefaultInsertBatch
	}
	return &ShipmentStore{db: db, table: table, batchSize: batchSize}
}

// ReplaceAll drops and recreates the table, then inserts every record, in one
// transaction. Previous contents are lost.
func (s *ShipmentStore) ReplaceAll(ctx context.Context, records []domain.ShipmentRecord) (int, error) {
	rows := make([]ShipmentRow, len(records))
	for i := range records {
		rows[i] = NewShipmentRow(&records[i])
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(s.table); err != nil {
			return err
		}
		if err := tx.Table(s.table).AutoMigrate(&ShipmentRow{}); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Table(s.table).CreateInBatches(&rows, s.batchSize).Error
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("failed to replace shipments", err).WithContext("table", s.table)
	}

	slog.InfoContext(ctx, "Shipments table replaced",
		slog.String("table", s.table),
		slog.Int("rows", len(rows)),
		slog.Int("batch_size", s.batchSize))

	return len(rows), nil
}

// Count returns the number of rows in the table
func (s *ShipmentStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table(s.table).Count(&n).Error; err != nil {
		return 0, apperrors.NewDatabaseError("failed to count shipments", err).WithContext("table", s.table)
	}
	return n, nil
}

// List returns every row in insertion order
func (s *ShipmentStore) List(ctx context.Context) ([]ShipmentRow, error) {
	var rows []ShipmentRow
	if err := s.db.WithContext(ctx).Table(s.table).Order("id").Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to list shipments", err).WithContext("table", s.table)
	}
	return rows, nil
}
