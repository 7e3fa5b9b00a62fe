package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// deviceReading is the payload published by field devices on the readings topic.
type deviceReading struct {
	SensorID     string    `json:"sensorId"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC *float64  `json:"temperatureC"`
	HumidityPct  *float64  `json:"humidityPct"`
}

// MQTT keeps the most recent device reading received on a topic.
type MQTT struct {
	client mqtt.Client
	topic  string
	maxAge time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu         sync.RWMutex
	latest     deviceReading
	receivedAt time.Time
	have       bool
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	BrokerURL string
	ClientID  string
	Topic     string
	MaxAge    time.Duration
}

// NewMQTT connects to the broker and subscribes to the readings topic.
// The subscription is renewed on every reconnect.
func NewMQTT(opts MQTTOptions, logger *slog.Logger) (*MQTT, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MQTT{
		topic:  opts.Topic,
		maxAge: opts.MaxAge,
		now:    time.Now,
		logger: logger,
	}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	clientOpts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(m.topic, 0, m.handleMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			m.logger.Error("mqtt subscribe failed", "topic", m.topic, "err", err)
			return
		}
		m.logger.Info("mqtt subscribed", "topic", m.topic)
	})
	clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		m.logger.Warn("mqtt connection lost", "err", err)
	})

	m.client = mqtt.NewClient(clientOpts)
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker %s: %w", opts.BrokerURL, token.Error())
	}
	return m, nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	if m.client != nil {
		m.client.Disconnect(250)
	}
}

func (m *MQTT) Acquire(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.have {
		return 0, 0, ErrNoReading
	}
	if age := m.now().Sub(m.receivedAt); m.maxAge > 0 && age > m.maxAge {
		return 0, 0, fmt.Errorf("%w: last message from %s is %s old", ErrNoReading, m.latest.SensorID, age.Round(time.Second))
	}
	return valueOrNaN(m.latest.TemperatureC), valueOrNaN(m.latest.HumidityPct), nil
}

func (m *MQTT) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	if err := m.store(msg.Payload()); err != nil {
		m.logger.Warn("discarding mqtt message", "topic", msg.Topic(), "err", err)
	}
}

func (m *MQTT) store(payload []byte) error {
	var reading deviceReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return fmt.Errorf("decode reading: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = reading
	m.receivedAt = m.now()
	m.have = true
	return nil
}
