package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradecli/internal/config"
	"tradecli/internal/database"
	"tradecli/internal/dataprocessing"
	apperrors "tradecli/internal/errors"
	"tradecli/internal/exporter"
	"tradecli/internal/infrastructure"
	"tradecli/internal/operations"
	"tradecli/internal/storage"
	"tradecli/pkg/contracts/domain"
)

const shutdownTimeout = 10 * time.Second

// BuildTime is set at link time by build.go
var BuildTime = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, logger)
	stop()
	infrastructure.CloseLogFile()

	if err != nil {
		os.Exit(1)
	}
}

// run executes one pipeline run. Every failure has been logged by the time it returns.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	logger.InfoContext(ctx, "Starting shipment pipeline",
		slog.String("version", config.AppVersion),
		slog.String("build_time", BuildTime),
		slog.String("input", cfg.Input.File),
		slog.String("output", cfg.Output.CSVFile),
		slog.Bool("database", cfg.Database.Enabled),
		slog.Bool("archive", cfg.Archive.Enabled()))

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	deps, err := buildDeps(ctx, cfg, logger, tel.Metrics)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up pipeline", slog.String("error", err.Error()))
		return err
	}

	registry, err := operations.NewPipelineRegistry(deps)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to register pipeline steps", slog.String("error", err.Error()))
		return err
	}

	manager := operations.NewManager(registry, operations.NewOperationTracer(tel))
	state, runErr := manager.Execute(ctx, runID)

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := tel.Push(pushCtx, runID); err != nil {
		logger.WarnContext(ctx, "Failed to push metrics", slog.String("error", err.Error()))
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("step", operations.FailedStep(runErr)),
			slog.String("status", string(state.Status)),
			slog.String("error", runErr.Error()))
		return runErr
	}

	logSummary(ctx, logger, state)
	return nil
}

// buildDeps wires the pipeline collaborators from configuration
func buildDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) (operations.PipelineDeps, error) {
	paths, err := cfg.PathResolver()
	if err != nil {
		return operations.PipelineDeps{}, apperrors.NewConfigError("failed to resolve base directory", err)
	}

	deps := operations.PipelineDeps{
		Source:   dataprocessing.NewWorkbookReader(paths.Resolve(cfg.Input.File), cfg.Input.Sheet),
		FlatFile: exporter.NewShipmentExporter(paths, cfg.Output.BOMPrefix),
		CSVPath:  cfg.Output.CSVFile,
		Logger:   infrastructure.WithComponent(logger, "pipeline"),
		Metrics:  metrics,
	}

	if cfg.Database.Enabled {
		deps.Table = &tableLoader{cfg: cfg.Database}
	}

	if cfg.Archive.Enabled() {
		archiver, err := storage.NewArchiver(ctx, cfg.Archive)
		if err != nil {
			return operations.PipelineDeps{}, err
		}
		deps.Archiver = archiver
	}

	return deps, nil
}

// tableLoader holds a database connection only for the duration of the table step
type tableLoader struct {
	cfg config.DatabaseConfig
}

// ReplaceAll opens a connection, overwrites the table and closes the connection
func (l *tableLoader) ReplaceAll(ctx context.Context, records []domain.ShipmentRecord) (int, error) {
	db, err := database.Open(ctx, l.cfg)
	if err != nil {
		return 0, apperrors.NewDatabaseError("failed to open database", err)
	}
	defer database.Close(db)

	store := database.NewShipmentStore(db, l.cfg.Table, l.cfg.BatchSize)
	return store.ReplaceAll(ctx, records)
}

func logSummary(ctx context.Context, logger *slog.Logger, state *operations.OperationState) {
	attrs := []any{
		slog.String("csv_path", state.CSVPath),
		slog.Int("table_rows", state.TableRows),
		slog.Duration("duration", state.Duration()),
	}
	if state.ArchiveKey != "" {
		attrs = append(attrs, slog.String("archive_key", state.ArchiveKey))
	}
	if s := state.Summary; s != nil {
		attrs = append(attrs,
			slog.Int("records", s.RecordCount),
			slog.Int("categories", s.CategoryCount),
			slog.Int("suppliers", s.SupplierCount),
			slog.Float64("grand_total_sum", s.GrandTotalSum))
		if s.EarliestDate != nil && s.LatestDate != nil {
			attrs = append(attrs,
				slog.String("earliest_date", s.EarliestDate.Format(time.DateOnly)),
				slog.String("latest_date", s.LatestDate.Format(time.DateOnly)))
		}
	}

	logger.InfoContext(ctx, "Pipeline complete", attrs...)
}
