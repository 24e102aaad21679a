package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecli/internal/operations"
)

func TestRegistry(t *testing.T) {
	r := operations.NewRegistry()
	assert.Zero(t, r.Count())

	require.NoError(t, r.Register(newTestStep("b")))
	require.NoError(t, r.Register(newTestStep("a", "b")))
	require.NoError(t, r.Register(newTestStep("c")))

	assert.Equal(t, 3, r.Count())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("z"))

	var ids []string
	for _, s := range r.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids, "registration order is kept")

	step, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", step.ID())

	_, err = r.Get("z")
	assert.Error(t, err)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := operations.NewRegistry()

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(newTestStep("")))

	require.NoError(t, r.Register(newTestStep("load")))
	err := r.Register(newTestStep("load"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}
