package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/errors"
)

func newTestClient() *client {
	c := NewClient(&conf.MQTTSettings{
		Broker: "tcp://127.0.0.1:1883",
		Topic:  "ecosentinel/telemetry",
	}, "ecosentinel-test", nil)
	return c.(*client)
}

func TestPublishWithoutConnection(t *testing.T) {
	c := newTestClient()

	err := c.Publish(context.Background(), `{"device_id":"x"}`)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTPublish))
	assert.False(t, c.IsConnected())
}

func TestConnectCooldown(t *testing.T) {
	c := newTestClient()
	c.lastConnAttempt = time.Now()

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTConnection))
}

func TestConnectInvalidBrokerHost(t *testing.T) {
	c := NewClient(&conf.MQTTSettings{
		Broker: "tcp://broker.invalid.:1883",
		Topic:  "ecosentinel/telemetry",
	}, "ecosentinel-test", nil).(*client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTConnection))
}

func TestDisconnectWithoutConnectionIsSafe(t *testing.T) {
	c := newTestClient()
	assert.NotPanics(t, c.Disconnect)
}
