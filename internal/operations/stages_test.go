package operations_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecli/internal/operations"
	"tradecli/internal/shared/testutil"
	"tradecli/pkg/contracts/domain"
)

func f64(v float64) *float64 { return &v }

type fakeSource struct {
	records []domain.ShipmentRecord
	err     error
}

func (f *fakeSource) Load(context.Context) ([]domain.ShipmentRecord, error) {
	return f.records, f.err
}

type fakeFlatFile struct {
	path    string
	written []domain.ShipmentRecord
	err     error
}

func (f *fakeFlatFile) WriteShipments(_ context.Context, path string, records []domain.ShipmentRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.path = path
	f.written = append([]domain.ShipmentRecord(nil), records...)
	return "/out/" + path, nil
}

type fakeTable struct {
	rows  int
	err   error
	calls int
}

func (f *fakeTable) ReplaceAll(_ context.Context, records []domain.ShipmentRecord) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.rows = len(records)
	return len(records), nil
}

type fakeArchiver struct {
	filePath string
	runID    string
	at       time.Time
	err      error
}

func (f *fakeArchiver) Archive(_ context.Context, filePath, runID string, at time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.filePath, f.runID, f.at = filePath, runID, at
	return "archive/" + runID, nil
}

func rawRecords() []domain.ShipmentRecord {
	return []domain.ShipmentRecord{
		{
			SourceRow:        2,
			SupplierName:     "Acme Exports",
			GoodsDescription: "Borosilicate Glass Bowl",
			DateOfShipment:   "15/03/2024",
			Unit:             "PCS",
			TotalValue:       f64(1000),
			DutyPaid:         f64(100),
			Quantity:         f64(10),
		},
		{
			SourceRow:        3,
			SupplierName:     "Wood Co",
			GoodsDescription: "Wooden spoon",
			DateOfShipment:   "not a date",
			Unit:             "nos",
			TotalValue:       f64(200),
			DutyPaid:         f64(20),
		},
		{
			SourceRow:        4,
			SupplierName:     "Plastics Ltd",
			GoodsDescription: "Plastic PET bottle",
			DateOfShipment:   "01/07/2023",
			Unit:             "kgs",
			TotalValue:       f64(0),
			DutyPaid:         f64(5),
			Quantity:         f64(0),
		},
	}
}

func TestNewPipelineRegistry(t *testing.T) {
	tests := []struct {
		name string
		deps operations.PipelineDeps
		want []string
	}{
		{
			name: "csv only",
			deps: operations.PipelineDeps{Source: &fakeSource{}, FlatFile: &fakeFlatFile{}, CSVPath: "out.csv"},
			want: []string{"load", "clean", "filter", "classify", "features", "summarize", "export_csv"},
		},
		{
			name: "all sinks",
			deps: operations.PipelineDeps{
				Source: &fakeSource{}, FlatFile: &fakeFlatFile{}, CSVPath: "out.csv",
				Table: &fakeTable{}, Archiver: &fakeArchiver{},
			},
			want: []string{"load", "clean", "filter", "classify", "features", "summarize", "export_csv", "load_table", "archive"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := operations.NewPipelineRegistry(tt.deps)
			require.NoError(t, err)

			var ids []string
			for _, s := range registry.List() {
				ids = append(ids, s.ID())
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestPipeline_RunsAllSteps(t *testing.T) {
	source := &fakeSource{records: rawRecords()}
	flat := &fakeFlatFile{}
	table := &fakeTable{}
	archiver := &fakeArchiver{}
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	registry, err := operations.NewPipelineRegistry(operations.PipelineDeps{
		Source:   source,
		FlatFile: flat,
		CSVPath:  "trade_cleaned.csv",
		Table:    table,
		Archiver: archiver,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	state, err := operations.NewManager(registry, nil).Execute(context.Background(), "run-1")
	require.NoError(t, err)

	require.Len(t, state.Records, 2, "row without quantity is dropped")
	assert.Equal(t, "trade_cleaned.csv", flat.path)
	assert.Len(t, flat.written, 2)
	assert.Equal(t, "/out/trade_cleaned.csv", state.CSVPath)
	assert.Equal(t, 2, state.TableRows)
	assert.Equal(t, "/out/trade_cleaned.csv", archiver.filePath)
	assert.Equal(t, "run-1", archiver.runID)
	assert.Equal(t, now, archiver.at)
	assert.Equal(t, "archive/run-1", state.ArchiveKey)

	glass := state.Records[0]
	assert.Equal(t, domain.CategoryGlass, glass.Category)
	assert.Equal(t, domain.SubCategoryBorosilicate, glass.SubCategory)
	assert.Equal(t, "PCS", glass.UnitStandardized)
	require.NotNil(t, glass.GrandTotal)
	assert.InDelta(t, 1100.0, *glass.GrandTotal, 1e-9)

	plastic := state.Records[1]
	assert.Equal(t, domain.CategoryPlastic, plastic.Category)
	assert.Equal(t, "KG", plastic.UnitStandardized)
	assert.Nil(t, plastic.LandedCostPerUnit)
	assert.Nil(t, plastic.DutyPercentage)

	require.NotNil(t, state.Summary)
	assert.Equal(t, 2, state.Summary.RecordCount)
	assert.Equal(t, 2, state.Summary.SupplierCount)
	assert.Equal(t, 2, state.Summary.CategoryCount)
	assert.InDelta(t, 1105.0, state.Summary.GrandTotalSum, 1e-9)

	dropped, ok := state.GetStage(operations.StageIDFilter).GetMetadata("records_dropped")
	require.True(t, ok)
	assert.Equal(t, 1, dropped)

	unparsed, ok := state.GetStage(operations.StageIDClean).GetMetadata("unparsed_dates")
	require.True(t, ok)
	assert.Equal(t, 1, unparsed)

	classify := state.GetStage(operations.StageIDClassify)
	assert.Equal(t, map[string]interface{}{"category.Glass": 1, "category.Plastic": 1}, classify.Metadata)
}

func TestPipeline_WriteFailureStopsRun(t *testing.T) {
	table := &fakeTable{}
	archiver := &fakeArchiver{}

	registry, err := operations.NewPipelineRegistry(operations.PipelineDeps{
		Source:   &fakeSource{records: rawRecords()},
		FlatFile: &fakeFlatFile{err: errBoom},
		CSVPath:  "trade_cleaned.csv",
		Table:    table,
		Archiver: archiver,
	})
	require.NoError(t, err)

	state, err := operations.NewManager(registry, nil).Execute(context.Background(), "run-2")
	require.Error(t, err)
	assert.Equal(t, operations.StageIDExportCSV, operations.FailedStep(err))
	assert.Zero(t, table.calls)
	assert.Empty(t, archiver.filePath)
	assert.Equal(t, operations.StepStatusSkipped, state.GetStage(operations.StageIDLoadTable).GetStatus())
	assert.Equal(t, operations.StepStatusSkipped, state.GetStage(operations.StageIDArchive).GetStatus())
}

func TestPipeline_LoadFailure(t *testing.T) {
	flat := &fakeFlatFile{}
	registry, err := operations.NewPipelineRegistry(operations.PipelineDeps{
		Source:   &fakeSource{err: errBoom},
		FlatFile: flat,
		CSVPath:  "trade_cleaned.csv",
	})
	require.NoError(t, err)

	state, err := operations.NewManager(registry, nil).Execute(context.Background(), "run-3")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, operations.StageIDLoad, operations.FailedStep(err))
	assert.Nil(t, flat.written, "nothing is written when the batch cannot be read")
	assert.Nil(t, state.Summary)
}

func TestStageValidation(t *testing.T) {
	state := operations.NewOperationState("run")

	assert.Error(t, operations.NewLoadStage(nil, nil).Validate(state))
	assert.Error(t, operations.NewExportCSVStage(nil, "out.csv", nil).Validate(state))
	assert.Error(t, operations.NewExportCSVStage(&fakeFlatFile{}, "", nil).Validate(state))
	assert.Error(t, operations.NewLoadTableStage(nil, nil).Validate(state))

	archive := operations.NewArchiveStage(&fakeArchiver{}, nil, nil)
	assert.Error(t, archive.Validate(state), "nothing written yet")
	state.CSVPath = "/out/trade_cleaned.csv"
	assert.NoError(t, archive.Validate(state))
}

func TestPipeline_StepLogging(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	registry, err := operations.NewPipelineRegistry(operations.PipelineDeps{
		Source:   &fakeSource{records: rawRecords()},
		FlatFile: &fakeFlatFile{},
		CSVPath:  "trade_cleaned.csv",
		Logger:   logger,
	})
	require.NoError(t, err)

	_, err = operations.NewManager(registry, nil).Execute(context.Background(), "run-4")
	require.NoError(t, err)

	dropped := testutil.AssertLogged(t, logs, slog.LevelInfo, "Incomplete rows dropped")
	assert.Equal(t, operations.StageIDFilter, dropped.Attrs["step"])
	assert.EqualValues(t, 1, dropped.Attrs["dropped"])

	unparsed := testutil.AssertLogged(t, logs, slog.LevelWarn, "could not be parsed")
	assert.Equal(t, operations.StageIDClean, unparsed.Attrs["step"])

	summary := testutil.AssertLogged(t, logs, slog.LevelInfo, "Batch summary")
	assert.EqualValues(t, 2, summary.Attrs["records"])
	testutil.AssertNoErrors(t, logs)
}
