package operations

import (
	"context"
	"log/slog"
	"time"

	"tradecli/internal/infrastructure"
	"tradecli/pkg/contracts/domain"
)

// RecordSource loads the raw shipment batch
type RecordSource interface {
	Load(ctx context.Context) ([]domain.ShipmentRecord, error)
}

// FlatFileSink writes the processed batch to a delimited file and returns
// the resolved path it wrote
type FlatFileSink interface {
	WriteShipments(ctx context.Context, path string, records []domain.ShipmentRecord) (string, error)
}

// TableSink replaces the contents of the shipments table
type TableSink interface {
	ReplaceAll(ctx context.Context, records []domain.ShipmentRecord) (int, error)
}

// FileArchiver copies a written file to long-term storage and returns its key
type FileArchiver interface {
	Archive(ctx context.Context, filePath, runID string, at time.Time) (string, error)
}

// StageOptions contains optional dependencies for steps
type StageOptions struct {
	Logger  *slog.Logger
	Metrics *infrastructure.PipelineMetrics
}

func (o *StageOptions) logger(stepID string) *slog.Logger {
	logger := slog.Default()
	if o != nil && o.Logger != nil {
		logger = o.Logger
	}
	return logger.With(slog.String("step", stepID))
}

func (o *StageOptions) metrics() *infrastructure.PipelineMetrics {
	if o == nil {
		return nil
	}
	return o.Metrics
}
