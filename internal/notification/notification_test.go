package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAssignsIdentity(t *testing.T) {
	s := NewService(nil)

	n, err := s.Send(TypeEmergency, PriorityCritical, "Emergency mode activated", "abnormal noise")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, TypeEmergency, n.Type)
	assert.Equal(t, PriorityCritical, n.Priority)
	assert.False(t, n.Timestamp.IsZero())
}

func TestSendDeduplicatesRepeats(t *testing.T) {
	s := NewService(nil)

	first, err := s.Send(TypeWarning, PriorityHigh, "Sensor degraded", "temperature unavailable")
	require.NoError(t, err)
	require.NotNil(t, first)

	repeat, err := s.Send(TypeWarning, PriorityHigh, "Sensor degraded", "temperature unavailable")
	require.NoError(t, err)
	assert.Nil(t, repeat, "identical notification inside the window must be suppressed")

	other, err := s.Send(TypeWarning, PriorityHigh, "Sensor degraded", "humidity unavailable")
	require.NoError(t, err)
	assert.NotNil(t, other, "different message is not a duplicate")
}

func TestInvalidPushURLDisablesPush(t *testing.T) {
	s := NewService([]string{"notaservice://nope"})
	assert.Nil(t, s.pusher)

	// push disabled, delivery must still succeed locally
	n, err := s.Send(TypeEmergency, PriorityCritical, "Emergency mode activated", "extreme temperature")
	require.NoError(t, err)
	assert.NotNil(t, n)
}
