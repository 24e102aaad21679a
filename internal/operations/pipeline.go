package operations

import (
	"fmt"
	"log/slog"
	"time"

	"tradecli/internal/infrastructure"
)

// PipelineDeps holds the collaborators a pipeline run needs.
// Table and Archiver are optional; a nil value leaves that step out.
type PipelineDeps struct {
	Source   RecordSource
	FlatFile FlatFileSink
	CSVPath  string
	Table    TableSink
	Archiver FileArchiver

	Logger  *slog.Logger
	Metrics *infrastructure.PipelineMetrics
	Now     func() time.Time
}

// NewPipelineRegistry registers the pipeline steps in execution order
func NewPipelineRegistry(deps PipelineDeps) (*Registry, error) {
	opts := &StageOptions{Logger: deps.Logger, Metrics: deps.Metrics}

	steps := []Step{
		NewLoadStage(deps.Source, opts),
		NewCleanStage(opts),
		NewFilterStage(opts),
		NewClassifyStage(opts),
		NewFeaturesStage(),
		NewSummarizeStage(opts),
		NewExportCSVStage(deps.FlatFile, deps.CSVPath, opts),
	}
	if deps.Table != nil {
		steps = append(steps, NewLoadTableStage(deps.Table, opts))
	}
	if deps.Archiver != nil {
		steps = append(steps, NewArchiveStage(deps.Archiver, deps.Now, opts))
	}

	registry := NewRegistry()
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, fmt.Errorf("failed to register step %s: %w", step.ID(), err)
		}
	}
	return registry, nil
}
