package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tradecli/internal/dataprocessing"
	"tradecli/internal/infrastructure"
	"tradecli/pkg/contracts/domain"
)

// Step IDs
const (
	StageIDLoad      = "load"
	StageIDClean     = "clean"
	StageIDFilter    = "filter"
	StageIDClassify  = "classify"
	StageIDFeatures  = "features"
	StageIDSummarize = "summarize"
	StageIDExportCSV = "export_csv"
	StageIDLoadTable = "load_table"
	StageIDArchive   = "archive"
)

// Step names
const (
	StageNameLoad      = "Load Workbook"
	StageNameClean     = "Normalize Units and Dates"
	StageNameFilter    = "Drop Incomplete Rows"
	StageNameClassify  = "Classify Goods"
	StageNameFeatures  = "Derive Cost Features"
	StageNameSummarize = "Summarize Batch"
	StageNameExportCSV = "Write CSV"
	StageNameLoadTable = "Load Shipments Table"
	StageNameArchive   = "Archive CSV"
)

// Sink names used in metrics
const (
	SinkCSV   = "csv"
	SinkTable = "table"
)

// LoadStage reads the raw batch into the operation state
type LoadStage struct {
	BaseStage
	source  RecordSource
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewLoadStage creates a new load Step
func NewLoadStage(source RecordSource, options *StageOptions) *LoadStage {
	return &LoadStage{
		BaseStage: NewBaseStage(StageIDLoad, StageNameLoad, nil),
		source:    source,
		logger:    options.logger(StageIDLoad),
		metrics:   options.metrics(),
	}
}

// Validate checks a source is configured and, when the source can check
// itself, that its input is usable
func (s *LoadStage) Validate(state *OperationState) error {
	if s.source == nil {
		return fmt.Errorf("no record source configured")
	}
	if v, ok := s.source.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

// Execute loads every row of the workbook
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	records, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load shipments: %w", err)
	}

	state.Records = records
	state.GetStage(s.ID()).SetMetadata("records_read", len(records))
	s.metrics.AddRecordsRead(ctx, len(records))
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{"records.read": len(records)})

	s.logger.InfoContext(ctx, "Shipments loaded",
		slog.Int("records", len(records)))
	return nil
}

// CleanStage standardizes units and derives calendar fields
type CleanStage struct {
	BaseStage
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCleanStage creates a new clean Step
func NewCleanStage(options *StageOptions) *CleanStage {
	return &CleanStage{
		BaseStage: NewBaseStage(StageIDClean, StageNameClean, []string{StageIDLoad}),
		logger:    options.logger(StageIDClean),
		metrics:   options.metrics(),
	}
}

// Execute normalizes units then parses shipment dates
func (s *CleanStage) Execute(ctx context.Context, state *OperationState) error {
	dataprocessing.NormalizeUnits(state.Records)
	unparsed := dataprocessing.DeriveDates(state.Records)

	state.GetStage(s.ID()).SetMetadata("unparsed_dates", unparsed)
	s.metrics.AddUnparsedDates(ctx, unparsed)

	if unparsed > 0 {
		s.logger.WarnContext(ctx, "Some shipment dates could not be parsed",
			slog.Int("unparsed", unparsed),
			slog.Int("records", len(state.Records)))
	}
	return nil
}

// FilterStage removes rows missing a required numeric field
type FilterStage struct {
	BaseStage
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewFilterStage creates a new filter Step
func NewFilterStage(options *StageOptions) *FilterStage {
	return &FilterStage{
		BaseStage: NewBaseStage(StageIDFilter, StageNameFilter, []string{StageIDClean}),
		logger:    options.logger(StageIDFilter),
		metrics:   options.metrics(),
	}
}

// Execute drops incomplete rows, keeping order
func (s *FilterStage) Execute(ctx context.Context, state *OperationState) error {
	before := len(state.Records)
	state.Records = dataprocessing.DropIncomplete(state.Records)
	dropped := before - len(state.Records)

	state.GetStage(s.ID()).SetMetadata("records_dropped", dropped)
	s.metrics.AddRecordsDropped(ctx, dropped)
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"records.dropped":   dropped,
		"records.remaining": len(state.Records),
	})

	s.logger.InfoContext(ctx, "Incomplete rows dropped",
		slog.Int("dropped", dropped),
		slog.Int("remaining", len(state.Records)))
	return nil
}

// ClassifyStage assigns category and sub-category
type ClassifyStage struct {
	BaseStage
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewClassifyStage creates a new classify Step
func NewClassifyStage(options *StageOptions) *ClassifyStage {
	return &ClassifyStage{
		BaseStage: NewBaseStage(StageIDClassify, StageNameClassify, []string{StageIDFilter}),
		logger:    options.logger(StageIDClassify),
		metrics:   options.metrics(),
	}
}

// Execute classifies every record
func (s *ClassifyStage) Execute(ctx context.Context, state *OperationState) error {
	dataprocessing.ClassifyRecords(state.Records)

	counts := dataprocessing.CountByCategory(state.Records)
	stepState := state.GetStage(s.ID())
	for _, category := range domain.Categories() {
		if n := counts[category]; n > 0 {
			stepState.SetMetadata("category."+string(category), n)
		}
	}
	s.metrics.AddCategoryCounts(ctx, counts)

	s.logger.DebugContext(ctx, "Records classified",
		slog.Int("categories", len(counts)))
	return nil
}

// FeaturesStage computes grand total, landed cost and duty percentage
type FeaturesStage struct {
	BaseStage
}

// NewFeaturesStage creates a new features Step
func NewFeaturesStage() *FeaturesStage {
	return &FeaturesStage{
		BaseStage: NewBaseStage(StageIDFeatures, StageNameFeatures, []string{StageIDClassify}),
	}
}

// Execute derives the cost features
func (s *FeaturesStage) Execute(ctx context.Context, state *OperationState) error {
	dataprocessing.DeriveFeatures(state.Records)
	return nil
}

// SummarizeStage builds the batch summary
type SummarizeStage struct {
	BaseStage
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewSummarizeStage creates a new summarize Step
func NewSummarizeStage(options *StageOptions) *SummarizeStage {
	return &SummarizeStage{
		BaseStage: NewBaseStage(StageIDSummarize, StageNameSummarize, []string{StageIDFeatures}),
		logger:    options.logger(StageIDSummarize),
		metrics:   options.metrics(),
	}
}

// Execute summarizes the processed batch
func (s *SummarizeStage) Execute(ctx context.Context, state *OperationState) error {
	summary := dataprocessing.Summarize(state.Records)
	state.Summary = &summary
	s.metrics.AddGrandTotal(ctx, summary.GrandTotalSum)

	attrs := []any{
		slog.Int("records", summary.RecordCount),
		slog.Int("categories", summary.CategoryCount),
		slog.Int("suppliers", summary.SupplierCount),
		slog.Float64("grand_total_sum", summary.GrandTotalSum),
	}
	if summary.EarliestDate != nil && summary.LatestDate != nil {
		attrs = append(attrs,
			slog.String("earliest_date", summary.EarliestDate.Format(time.DateOnly)),
			slog.String("latest_date", summary.LatestDate.Format(time.DateOnly)))
	}
	s.logger.InfoContext(ctx, "Batch summary", attrs...)
	return nil
}

// ExportCSVStage writes the processed batch to the flat file
type ExportCSVStage struct {
	BaseStage
	sink    FlatFileSink
	path    string
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewExportCSVStage creates a new CSV export Step
func NewExportCSVStage(sink FlatFileSink, path string, options *StageOptions) *ExportCSVStage {
	return &ExportCSVStage{
		BaseStage: NewBaseStage(StageIDExportCSV, StageNameExportCSV, []string{StageIDSummarize}),
		sink:      sink,
		path:      path,
		logger:    options.logger(StageIDExportCSV),
		metrics:   options.metrics(),
	}
}

// Validate checks a sink and output path are configured
func (s *ExportCSVStage) Validate(state *OperationState) error {
	if s.sink == nil {
		return fmt.Errorf("no flat file sink configured")
	}
	if s.path == "" {
		return fmt.Errorf("output path is empty")
	}
	return nil
}

// Execute writes the CSV
func (s *ExportCSVStage) Execute(ctx context.Context, state *OperationState) error {
	fullPath, err := s.sink.WriteShipments(ctx, s.path, state.Records)
	if err != nil {
		return err
	}

	state.CSVPath = fullPath
	state.GetStage(s.ID()).SetMetadata("path", fullPath)
	s.metrics.AddRecordsWritten(ctx, SinkCSV, len(state.Records))

	s.logger.InfoContext(ctx, "CSV written",
		slog.String("path", fullPath),
		slog.Int("records", len(state.Records)))
	return nil
}

// LoadTableStage replaces the shipments table with the processed batch
type LoadTableStage struct {
	BaseStage
	sink    TableSink
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewLoadTableStage creates a new table load Step
func NewLoadTableStage(sink TableSink, options *StageOptions) *LoadTableStage {
	return &LoadTableStage{
		BaseStage: NewBaseStage(StageIDLoadTable, StageNameLoadTable, []string{StageIDSummarize}),
		sink:      sink,
		logger:    options.logger(StageIDLoadTable),
		metrics:   options.metrics(),
	}
}

// Validate checks a table sink is configured
func (s *LoadTableStage) Validate(state *OperationState) error {
	if s.sink == nil {
		return fmt.Errorf("no table sink configured")
	}
	return nil
}

// Execute overwrites the table
func (s *LoadTableStage) Execute(ctx context.Context, state *OperationState) error {
	n, err := s.sink.ReplaceAll(ctx, state.Records)
	if err != nil {
		return err
	}

	state.TableRows = n
	state.GetStage(s.ID()).SetMetadata("rows", n)
	s.metrics.AddRecordsWritten(ctx, SinkTable, n)

	s.logger.InfoContext(ctx, "Shipments table replaced",
		slog.Int("rows", n))
	return nil
}

// ArchiveStage uploads the written CSV to object storage
type ArchiveStage struct {
	BaseStage
	archiver FileArchiver
	now      func() time.Time
	logger   *slog.Logger
}

// NewArchiveStage creates a new archive Step. A nil now uses time.Now.
func NewArchiveStage(archiver FileArchiver, now func() time.Time, options *StageOptions) *ArchiveStage {
	if now == nil {
		now = time.Now
	}
	return &ArchiveStage{
		BaseStage: NewBaseStage(StageIDArchive, StageNameArchive, []string{StageIDExportCSV}),
		archiver:  archiver,
		now:       now,
		logger:    options.logger(StageIDArchive),
	}
}

// Validate checks there is a CSV to archive
func (s *ArchiveStage) Validate(state *OperationState) error {
	if s.archiver == nil {
		return fmt.Errorf("no archiver configured")
	}
	if state.CSVPath == "" {
		return fmt.Errorf("no CSV has been written")
	}
	return nil
}

// Execute uploads the CSV
func (s *ArchiveStage) Execute(ctx context.Context, state *OperationState) error {
	key, err := s.archiver.Archive(ctx, state.CSVPath, state.ID, s.now())
	if err != nil {
		return err
	}

	state.ArchiveKey = key
	state.GetStage(s.ID()).SetMetadata("key", key)

	s.logger.InfoContext(ctx, "CSV archived",
		slog.String("key", key))
	return nil
}
