package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderMetadata(t *testing.T) {
	err := Newf("reading %s failed", "temperature").
		Component("sensor").
		Category(CategorySensorIO).
		Context("field", "temperature").
		Build()

	assert.Equal(t, "reading temperature failed", err.Error())
	assert.Equal(t, "sensor", err.Component)
	assert.Equal(t, CategorySensorIO, err.Category)
	assert.Equal(t, "temperature", err.Context["field"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestCategoryDefaultsToGeneric(t *testing.T) {
	err := Newf("boom").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestWrapPreservesMetadata(t *testing.T) {
	inner := Newf("publish timeout").
		Component("mqtt").
		Category(CategoryMQTTPublish).
		Context("topic", "sentinel/telemetry").
		Build()

	outer := Wrap(inner).Context("attempt", 2).Build()
	assert.Equal(t, "mqtt", outer.Component)
	assert.Equal(t, CategoryMQTTPublish, outer.Category)
	assert.Equal(t, "sentinel/telemetry", outer.Context["topic"])
	assert.Equal(t, 2, outer.Context["attempt"])
}

func TestUnwrapAndIs(t *testing.T) {
	sentinel := NewStd("not connected")
	wrapped := New(fmt.Errorf("transmit: %w", sentinel)).
		Category(CategoryNetwork).
		Build()

	assert.True(t, Is(wrapped, sentinel))
	assert.True(t, IsCategory(wrapped, CategoryNetwork))
	assert.False(t, IsCategory(wrapped, CategoryAudio))
}

func TestInvalidPriorityFallsBackToMedium(t *testing.T) {
	err := Newf("x").Priority("urgent-ish").Build()
	assert.Equal(t, PriorityMedium, err.Priority)
}

type capturingReporter struct {
	captured []*EnhancedError
}

func (c *capturingReporter) ReportError(ee *EnhancedError) {
	c.captured = append(c.captured, ee)
}

func TestReporterReceivesBuiltErrors(t *testing.T) {
	rep := &capturingReporter{}
	SetReporter(rep)
	defer SetReporter(nil)

	Newf("unreachable").Category(CategoryNetwork).Build()
	require.Len(t, rep.captured, 1)
	assert.Equal(t, CategoryNetwork, rep.captured[0].Category)
}
