// internal/mqtt/client.go
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/amsky-bridge/internal/config"
	"github.com/tamzrod/amsky-bridge/internal/status"
)

const (
	qos            = byte(1)
	publishTimeout = 5 * time.Second
)

// Controller receives client commands and supplies the current state.
// *host.Runtime satisfies it.
type Controller interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	NewText(ctx context.Context, name string, names, values []string) error
	Snapshot(ctx context.Context) (status.Snapshot, error)
}

// Client publishes weather snapshots and text properties for one device
// and turns command topics into Controller calls.
type Client struct {
	client paho.Client
	cfg    config.MQTTExportConfig
	topics Topics
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool
	ctrl      Controller

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(cfg config.MQTTExportConfig, device string, logger *slog.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg:    cfg,
		topics: NewTopics(cfg.TopicPrefix, device),
		logger: logger.With("component", "mqtt"),
		stopCh: make(chan struct{}),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Command handlers block until the runtime has run the command, which
	// may itself publish; they must not hold up the paho router.
	opts.SetOrderMatters(false)

	opts.SetOnConnectHandler(func(pc paho.Client) {
		c.setConnected(true)
		c.logger.Info("mqtt connected", "broker", cfg.Broker, "port", cfg.Port)

		// Clean sessions drop subscriptions; restore them on every (re)connect.
		if err := c.subscribe(pc); err != nil {
			c.logger.Error("mqtt subscribe failed", "error", err)
		}

		// A restarted broker may have lost the retained snapshot.
		go c.refresh()
	})

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		c.setConnected(false)
		c.logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = paho.NewClient(opts)
	return c, nil
}

// SetController attaches the command target. Commands arriving before a
// controller is set are dropped.
func (c *Client) SetController(ctrl Controller) {
	c.mu.Lock()
	c.ctrl = ctrl
	c.mu.Unlock()
}

// Connect waits for the initial broker connection. It respects ctx and
// Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return errors.New("mqtt: client stopped")
	default:
	}

	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			c.client.Disconnect(0)
			return ctx.Err()
		case <-c.stopCh:
			return errors.New("mqtt: client stopped")
		default:
		}
	}
}

func (c *Client) subscribe(pc paho.Client) error {
	filters := make(map[string]byte)
	for _, f := range c.topics.Commands() {
		filters[f] = qos
	}

	token := pc.SubscribeMultiple(filters, func(_ paho.Client, msg paho.Message) {
		c.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("mqtt: subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe: %w", err)
	}

	c.logger.Info("subscribed to command topics", "topics", c.topics.Commands())
	return nil
}

// Write publishes the retained weather snapshot.
func (c *Client) Write(s status.Snapshot) error {
	data, err := encodeWeather(s)
	if err != nil {
		return fmt.Errorf("mqtt: marshal weather: %w", err)
	}
	return c.publish(c.topics.Weather(), data)
}

// WriteProperty publishes a retained text property.
func (c *Client) WriteProperty(p status.TextProperty) error {
	data, err := encodeProperty(p)
	if err != nil {
		return fmt.Errorf("mqtt: marshal property: %w", err)
	}
	return c.publish(c.topics.Property(p.Name), data)
}

// DeleteProperty clears the retained property message.
func (c *Client) DeleteProperty(_ string, name string) error {
	return c.publish(c.topics.Property(name), nil)
}

func (c *Client) publish(topic string, data []byte) error {
	if !c.IsConnected() {
		return errors.New("mqtt: client not connected")
	}

	token := c.client.Publish(topic, qos, true, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}

	c.logger.Debug("published", "topic", topic, "size", len(data))
	return nil
}

func (c *Client) controller() Controller {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctrl
}

// refresh republishes the controller's current snapshot.
func (c *Client) refresh() {
	ctrl := c.controller()
	if ctrl == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := republish(ctx, ctrl, c); err != nil {
		c.logger.Warn("snapshot republish failed", "error", err)
	}
}

// republish fetches the current snapshot from ctrl and writes it to w.
func republish(ctx context.Context, ctrl Controller, w interface{ Write(status.Snapshot) error }) error {
	s, err := ctrl.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return w.Write(s)
}

func (c *Client) handleMessage(topic string, payload []byte) {
	ctrl := c.controller()

	if ctrl == nil {
		c.logger.Warn("command dropped, no controller", "topic", topic)
		return
	}

	if err := dispatch(context.Background(), c.topics, ctrl, topic, payload); err != nil {
		c.logger.Warn("command failed", "topic", topic, "error", err)
		return
	}
	c.logger.Debug("command handled", "topic", topic)
}

// dispatch runs one command message against ctrl.
func dispatch(ctx context.Context, t Topics, ctrl Controller, topic string, payload []byte) error {
	kind, name := t.parse(topic)

	switch kind {
	case cmdConnect:
		return ctrl.Connect(ctx)

	case cmdDisconnect:
		return ctrl.Disconnect(ctx)

	case cmdSet:
		names, values, err := decodeSet(payload)
		if err != nil {
			return err
		}
		return ctrl.NewText(ctx, name, names, values)

	default:
		return fmt.Errorf("unknown command topic %s", topic)
	}
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client and closes the broker connection.
// It is idempotent.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })

	if c.client != nil {
		c.client.Disconnect(250)
	}

	c.setConnected(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
