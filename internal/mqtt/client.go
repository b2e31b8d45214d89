// Package mqtt mirrors telemetry records to an MQTT broker. The mirror is
// best effort: publish failures are counted and logged by the caller, never
// retried within a cycle.
package mqtt

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
	"github.com/tphakala/ecosentinel-go/internal/observability"
)

const (
	connectTimeout    = 30 * time.Second
	publishTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds granted to in-flight messages
	reconnectCooldown = 5 * time.Second
)

// Client publishes telemetry payloads to a broker topic.
type Client interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, payload string) error
	IsConnected() bool
	Disconnect()
}

type client struct {
	mu              sync.Mutex
	settings        conf.MQTTSettings
	clientID        string
	internalClient  pahomqtt.Client
	lastConnAttempt time.Time
	metrics         *observability.MQTTMetrics
	log             *slog.Logger
}

// NewClient creates a client for the configured broker and topic.
func NewClient(settings *conf.MQTTSettings, clientID string, metrics *observability.MQTTMetrics) Client {
	log := logging.ForService("mqtt")
	if log == nil {
		log = slog.Default()
	}
	return &client{
		settings: *settings,
		clientID: clientID,
		metrics:  metrics,
		log:      log,
	}
}

// Connect establishes the broker connection. Hostnames are resolved first so
// a misconfigured broker fails with a DNS error instead of a generic
// connection timeout.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastConnAttempt) < reconnectCooldown {
		return errors.Newf("connection attempt too recent, last attempt was %v ago",
			time.Since(c.lastConnAttempt)).
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Build()
	}
	c.lastConnAttempt = time.Now()

	u, err := url.Parse(c.settings.Broker)
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Context("broker", c.settings.Broker).
			Build()
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return errors.New(err).
				Component("mqtt").
				Category(errors.CategoryMQTTConnection).
				Context("host", host).
				Build()
		}
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(c.settings.Broker)
	opts.SetClientID(c.clientID)
	opts.SetUsername(c.settings.Username)
	opts.SetPassword(c.settings.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.internalClient = pahomqtt.NewClient(opts)

	token := c.internalClient.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.Newf("connection timeout after %v", connectTimeout).
			Component("mqtt").
			Category(errors.CategoryTimeout).
			NetworkContext(c.settings.Broker, connectTimeout).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			NetworkContext(c.settings.Broker, connectTimeout).
			Build()
	}

	c.metrics.SetConnected(true)
	return nil
}

// Publish sends one payload to the configured topic at QoS 0.
func (c *client) Publish(ctx context.Context, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient == nil || !c.internalClient.IsConnected() {
		c.metrics.RecordFailure()
		return errors.Newf("not connected to broker").
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Build()
	}

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	token := c.internalClient.Publish(c.settings.Topic, 0, false, payload)
	if !token.WaitTimeout(timeout) {
		c.metrics.RecordFailure()
		return errors.Newf("publish timeout after %v", timeout).
			Component("mqtt").
			Category(errors.CategoryTimeout).
			Context("topic", c.settings.Topic).
			Build()
	}
	if err := token.Error(); err != nil {
		c.metrics.RecordFailure()
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", c.settings.Topic).
			Build()
	}

	c.metrics.RecordPublish()
	c.log.Debug("telemetry record mirrored", "topic", c.settings.Topic, "bytes", len(payload))
	return nil
}

// IsConnected reports the broker connection state.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the broker connection, allowing in-flight messages a
// short quiesce.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.internalClient != nil {
		c.internalClient.Disconnect(disconnectQuiesce)
	}
	c.metrics.SetConnected(false)
}

func (c *client) onConnect(pahomqtt.Client) {
	c.log.Info("connected to broker", "broker", c.settings.Broker)
	c.metrics.SetConnected(true)
}

func (c *client) onConnectionLost(_ pahomqtt.Client, err error) {
	c.log.Warn("broker connection lost", "broker", c.settings.Broker, "error", err)
	c.metrics.SetConnected(false)
}
