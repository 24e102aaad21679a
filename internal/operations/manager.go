package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager runs registered steps sequentially against one OperationState
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, tracer *OperationTracer) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	return &Manager{
		registry: registry,
		tracer:   tracer,
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step in order. The first failure aborts the
// run, marks the remaining steps skipped and is returned as an *OperationError.
// The returned state is never nil.
func (m *Manager) Execute(ctx context.Context, operationID string) (*OperationState, error) {
	if operationID == "" {
		operationID = fmt.Sprintf("operation-%d", time.Now().Unix())
	}

	steps := m.registry.List()
	state := NewOperationState(operationID)
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, operationID, len(steps))
	defer span.End()

	m.logOperationStart(ctx, operationID, len(steps))
	state.Start()

	err := m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	if err != nil {
		m.logOperationError(ctx, operationID, err)
	}
	m.logOperationComplete(ctx, operationID, state.Duration(), state.Status)
	m.tracer.RecordOperationCompletion(ctx, span, state, err)

	return state, err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemainingStages(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logStageStart(ctx, state.ID, step.ID(), i+1, len(steps))
		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemainingStages(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}

	slog.InfoContext(ctx, "all_stages_completed",
		slog.String("operation_id", state.ID))
	return nil
}

// executeStage executes a single Step. Failed steps are not retried.
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Fail(err)
		return err
	}

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(verr)
		return verr
	}

	stageCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	startTime := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(startTime)
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		if ctx.Err() != nil {
			return NewCancellationError(step.ID(), err)
		}
		return WrapError(err, step.ID(), "step execution failed")
	}

	stepState.Complete()
	m.logStageComplete(ctx, state.ID, step.ID(), duration)
	return nil
}

// checkDependencies verifies every dependency of step has completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		if !m.registry.Has(dep) {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s is not registered", dep))
		}
		if depState := state.GetStage(dep); depState == nil || depState.GetStatus() != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s has not completed", dep))
		}
	}
	return nil
}

// skipRemainingStages marks steps that never ran as skipped
func (m *Manager) skipRemainingStages(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if stepState := state.GetStage(step.ID()); stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
		}
	}
}
