package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/types"
)

const publishTimeout = 2 * time.Second

// Config holds the broker settings of one emitter.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
}

// MQTTEmitter publishes emotion samples of a single session
type MQTTEmitter struct {
	cfg       Config
	sessionID string
	Client    mqtt.Client

	mu        sync.RWMutex
	published uint64
	errors    uint64
	connected bool
}

// Stats contains emitter statistics
type Stats struct {
	Connected bool
	Published uint64
	Errors    uint64
}

// samplePayload is the JSON body of every message.
type samplePayload struct {
	SessionID  string             `json:"session_id"`
	Seq        int                `json:"seq"`
	Tick       int                `json:"tick"`
	Box        types.Region       `json:"box"`
	Label      emotion.Label      `json:"label"`
	Confidence float64            `json:"confidence"`
	Emotions   map[string]float64 `json:"emotions"`
	At         time.Time          `json:"at"`
}

// NewMQTTEmitter creates a new MQTT emitter
func NewMQTTEmitter(cfg Config, sessionID string) *MQTTEmitter {
	if cfg.ClientID == "" {
		cfg.ClientID = "moodcam-" + sessionID
	}
	return &MQTTEmitter{cfg: cfg, sessionID: sessionID}
}

// Topic is <topic>/<session-id>.
func (e *MQTTEmitter) Topic() string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(e.cfg.Topic, "/"), e.sessionID)
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// Connect establishes connection to MQTT broker
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(e.cfg.Broker))
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.setConnected(true)
		log.Info().Str("broker", e.cfg.Broker).Str("client_id", e.cfg.ClientID).Msg("mqtt connection established")
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.setConnected(false)
		log.Warn().Err(err).Str("broker", e.cfg.Broker).Msg("mqtt connection lost, will auto-reconnect")
	}

	e.Client = mqtt.NewClient(opts)

	log.Debug().Str("broker", e.cfg.Broker).Msg("connecting to mqtt broker")

	token := e.Client.Connect()
	select {
	case <-token.Done():
	case <-time.After(5 * time.Second):
		return fmt.Errorf("mqtt connection timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	e.setConnected(true)
	return nil
}

// Publish sends one sample. Failures are counted and returned; callers
// treat them as non-fatal.
func (e *MQTTEmitter) Publish(s types.Sample) error {
	if !e.isConnected() {
		e.countError()
		return fmt.Errorf("mqtt not connected")
	}

	payload, err := json.Marshal(samplePayload{
		SessionID:  e.sessionID,
		Seq:        s.Seq,
		Tick:       s.Tick,
		Box:        s.Region,
		Label:      s.Label,
		Confidence: s.Confidence,
		Emotions:   s.Confidences.Strings(),
		At:         s.At,
	})
	if err != nil {
		e.countError()
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	topic := e.Topic()
	token := e.Client.Publish(topic, e.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		e.countError()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		e.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()

	log.Debug().Str("topic", topic).Int("seq", s.Seq).Int("size", len(payload)).Msg("sample published")
	return nil
}

// Close disconnects from the broker
func (e *MQTTEmitter) Close() error {
	if e.Client != nil && e.Client.IsConnected() {
		e.Client.Disconnect(250) // 250ms grace period
		st := e.Stats()
		log.Info().Uint64("published", st.Published).Uint64("errors", st.Errors).Msg("mqtt disconnected")
	}
	e.setConnected(false)
	return nil
}

// Stats returns emitter statistics
func (e *MQTTEmitter) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{Connected: e.connected, Published: e.published, Errors: e.errors}
}

func (e *MQTTEmitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *MQTTEmitter) setConnected(v bool) {
	e.mu.Lock()
	e.connected = v
	e.mu.Unlock()
}

func (e *MQTTEmitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
