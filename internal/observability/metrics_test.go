package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersAllInstruments(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.Registry())

	m.Pipeline.RecordCycle(0.5)
	m.Pipeline.RecordPattern("bird_song")
	m.Pipeline.RecordThreat("abnormal noise")
	m.Pipeline.RecordWildlifeDetection()
	m.Pipeline.SetBaseline(123.4)
	m.Reporter.RecordAttempt("primary")
	m.Reporter.RecordFailure("emergency")
	m.MQTT.RecordPublish()
	m.MQTT.SetConnected(true)
	m.Command.RecordCommand("STATUS")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Pipeline.cyclesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Pipeline.patternTotal.WithLabelValues("bird_song")))
	assert.Equal(t, float64(123.4), testutil.ToFloat64(m.Pipeline.baselineNoise))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Reporter.attempts.WithLabelValues("primary")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MQTT.connected))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Command.commands.WithLabelValues("STATUS")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var p *PipelineMetrics
	var r *ReporterMetrics
	var q *MQTTMetrics
	var c *CommandMetrics

	assert.NotPanics(t, func() {
		p.RecordCycle(1)
		p.RecordPattern("ambient")
		p.SetBaseline(0)
		r.RecordAttempt("primary")
		q.RecordFailure()
		c.RecordCommand("RESET")
	})
}

func TestIndependentRegistries(t *testing.T) {
	a, err := NewMetrics()
	require.NoError(t, err)
	b, err := NewMetrics()
	require.NoError(t, err)

	a.Pipeline.RecordCycle(1)
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Pipeline.cyclesTotal))
}
