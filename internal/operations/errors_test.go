package operations_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecli/internal/operations"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *operations.OperationError
		want string
	}{
		{
			name: "with step",
			err:  operations.NewValidationError("archive", "no CSV has been written"),
			want: "[validation] archive: no CSV has been written",
		},
		{
			name: "with cause",
			err:  operations.NewCancellationError("load", context.Canceled),
			want: "[cancellation] load: operation was cancelled: context canceled",
		},
		{
			name: "without step",
			err:  operations.NewFatalError("registry is empty", nil),
			want: "[fatal] registry is empty",
		},
		{
			name: "nil",
			err:  nil,
			want: "unknown operation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewDependencyError(t *testing.T) {
	err := operations.NewDependencyError("filter", "clean", "dependency clean has not completed")
	assert.Equal(t, operations.ErrorTypeDependency, err.Type)
	assert.Equal(t, "clean", err.Context["depends_on"])
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, operations.ErrorType(""), operations.GetErrorType(nil))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(errBoom))
	assert.Equal(t, operations.ErrorTypeValidation,
		operations.GetErrorType(fmt.Errorf("wrapped: %w", operations.NewValidationError("x", "bad"))))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, operations.WrapError(nil, "load", "failed"))

	wrapped := operations.WrapError(errBoom, "load", "step execution failed")
	require.NotNil(t, wrapped)
	assert.Equal(t, operations.ErrorTypeExecution, wrapped.Type)
	assert.Equal(t, "load", wrapped.Step)
	assert.ErrorIs(t, wrapped, errBoom)
	assert.Equal(t, "load", operations.FailedStep(wrapped))

	// An existing OperationError keeps its type
	fatal := operations.NewFatalError("broken", errBoom)
	again := operations.WrapError(fatal, "clean", "ignored")
	assert.Same(t, fatal, again)
	assert.Equal(t, operations.ErrorTypeFatal, again.Type)
	assert.Equal(t, "clean", again.Step)

	assert.Equal(t, "", operations.FailedStep(errors.New("plain")))
}
