package operations_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tradecli/internal/operations"
)

// testStep is a configurable Step for exercising the manager
type testStep struct {
	operations.BaseStage
	execute     func(ctx context.Context, state *operations.OperationState) error
	validateErr error

	mu    sync.Mutex
	calls int
}

func newTestStep(id string, deps ...string) *testStep {
	return &testStep{BaseStage: operations.NewBaseStage(id, "Step "+id, deps)}
}

func (s *testStep) Execute(ctx context.Context, state *operations.OperationState) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.execute != nil {
		return s.execute(ctx, state)
	}
	return nil
}

func (s *testStep) Validate(state *operations.OperationState) error {
	return s.validateErr
}

func (s *testStep) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var errBoom = errors.New("boom")

func failingStep(id string, deps ...string) *testStep {
	s := newTestStep(id, deps...)
	s.execute = func(context.Context, *operations.OperationState) error { return errBoom }
	return s
}

func newManager(t *testing.T, steps ...operations.Step) *operations.Manager {
	t.Helper()
	m := operations.NewManager(operations.NewRegistry(), nil)
	for _, s := range steps {
		require.NoError(t, m.RegisterStage(s))
	}
	return m
}
