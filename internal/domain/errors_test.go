package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuationErrorMessage(t *testing.T) {
	policyID := uint32(7)
	scenarioID := 3
	err := &ValuationError{Kind: ExecutionError, Detail: "non-finite NPV", PolicyID: &policyID, ScenarioID: &scenarioID}
	assert.Equal(t, "ExecutionError: non-finite NPV (policy=7 scenario=3)", err.Error())
}

func TestValuationErrorWithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := &ValuationError{Kind: ResourceExhausted, Detail: "could not allocate buffer", Cause: cause}
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, errors.Is(err, cause))
}

func TestNewExecutionErrorCarriesIDs(t *testing.T) {
	err := NewExecutionError(42, 9, "non-finite cumulative NPV at year %d", 5)
	require.NotNil(t, err.PolicyID)
	require.NotNil(t, err.ScenarioID)
	assert.Equal(t, uint32(42), *err.PolicyID)
	assert.Equal(t, 9, *err.ScenarioID)
	assert.Equal(t, ExecutionError, err.Kind)
}

func TestConstructorKinds(t *testing.T) {
	assert.Equal(t, InvalidInput, NewInvalidInput("bad").Kind)
	assert.Equal(t, ResourceExhausted, NewResourceExhausted("full").Kind)
	assert.Equal(t, Cancelled, NewCancelled().Kind)
	assert.Equal(t, CapacityExceeded, NewCapacityExceeded("too big").Kind)
}
