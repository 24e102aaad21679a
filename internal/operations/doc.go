// Package operations runs the shipment cleaning pipeline as a sequence of
// Steps over one in-memory batch.
//
// A Manager executes the Steps held by a Registry in registration order.
// Each Step sees the shared OperationState, which carries the records,
// the batch summary and the locations of everything written. Steps run
// one at a time and are never retried: the first failure stops the run,
// the Steps after it are marked skipped, and the failure is returned as
// an *OperationError naming the Step.
//
// The pipeline Steps are:
//
//	load        read the workbook
//	clean       standardize units and derive calendar fields
//	filter      drop rows missing quantity, total value or duty paid
//	classify    assign category and sub-category
//	features    grand total, landed cost per unit, duty percentage
//	summarize   batch summary
//	export_csv  write the flat file
//	load_table  replace the shipments table (optional)
//	archive     upload the CSV to object storage (optional)
//
// NewPipelineRegistry wires them from a PipelineDeps. OperationTracer opens
// one span per Step and records step metrics when telemetry is configured.
package operations
