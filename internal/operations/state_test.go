package operations_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecli/internal/operations"
)

func TestOperationState_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		finish     func(s *operations.OperationState)
		wantStatus operations.OperationStatusValue
		wantErr    bool
	}{
		{"complete", func(s *operations.OperationState) { s.Complete() }, operations.OperationStatusCompleted, false},
		{"fail", func(s *operations.OperationState) { s.Fail(errBoom) }, operations.OperationStatusFailed, true},
		{"cancel", func(s *operations.OperationState) { s.Cancel(errBoom) }, operations.OperationStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := operations.NewOperationState("run-1")
			assert.Equal(t, operations.OperationStatusPending, s.Status)

			s.Start()
			assert.Equal(t, operations.OperationStatusRunning, s.Status)
			assert.Nil(t, s.EndTime)

			tt.finish(s)
			assert.Equal(t, tt.wantStatus, s.Status)
			require.NotNil(t, s.EndTime)
			assert.GreaterOrEqual(t, s.Duration(), time.Duration(0))
			if tt.wantErr {
				assert.ErrorIs(t, s.Error, errBoom)
			} else {
				assert.NoError(t, s.Error)
			}
		})
	}
}

func TestOperationState_Stages(t *testing.T) {
	s := operations.NewOperationState("run-1")
	assert.Nil(t, s.GetStage("load"))

	load := operations.NewStepState("load", "Load")
	s.SetStage("load", load)
	assert.Same(t, load, s.GetStage("load"))
	assert.False(t, s.HasFailures())

	load.Fail(errBoom)
	assert.True(t, s.HasFailures())
}
