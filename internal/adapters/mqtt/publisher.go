package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
	"github.com/lcalzada-xor/wbands/internal/telemetry"
)

const publishTimeout = 10 * time.Second

// ErrNotConnected is returned when publishing without a broker session.
var ErrNotConnected = errors.New("not connected to MQTT broker")

// Config holds MQTT configuration
type Config struct {
	Enabled     bool          `yaml:"enabled"`
	Broker      string        `yaml:"broker"`
	Port        int           `yaml:"port"`
	ClientID    string        `yaml:"client_id"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	TopicPrefix string        `yaml:"topic_prefix"`
	QoS         byte          `yaml:"qos"`
	Retain      bool          `yaml:"retain"`
	Interval    time.Duration `yaml:"recommendation_interval"`
}

// DefaultConfig returns default MQTT configuration
func DefaultConfig() Config {
	return Config{
		Broker:      "localhost",
		Port:        1883,
		ClientID:    "wbands",
		TopicPrefix: "wbands",
		QoS:         1,
		Interval:    time.Minute,
	}
}

// brokerClient is the subset of MQTT.Client the publisher drives.
type brokerClient interface {
	Connect() MQTT.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token
}

// Publisher mirrors snapshot updates and recommendations to an MQTT broker.
type Publisher struct {
	cfg       Config
	client    brokerClient
	scan      ports.ScanService
	analytics ports.AnalyticsService
	mu        sync.Mutex
}

// NewPublisher builds a paho client from cfg. It does not connect.
func NewPublisher(cfg Config, scan ports.ScanService, analytics ports.AnalyticsService) *Publisher {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(MQTT.Client) {
		log.Printf("[MQTT] Connected to %s:%d", cfg.Broker, cfg.Port)
	})
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		log.Printf("[MQTT] Connection lost: %v", err)
	})

	return newPublisher(cfg, MQTT.NewClient(opts), scan, analytics)
}

func newPublisher(cfg Config, client brokerClient, scan ports.ScanService, analytics ports.AnalyticsService) *Publisher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Publisher{cfg: cfg, client: client, scan: scan, analytics: analytics}
}

// Connect opens the broker session. With connect-retry enabled paho keeps
// trying in the background, so only the first attempt is awaited.
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		log.Printf("[MQTT] Broker not reachable yet, retrying in background")
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return nil
}

// Run publishes every snapshot update and the top recommendations on a
// fixed interval until ctx is cancelled, then disconnects.
func (p *Publisher) Run(ctx context.Context) {
	updates, cancel := p.scan.Subscribe()
	defer cancel()
	defer p.client.Disconnect(250)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := p.PublishNetworks(u.Networks); err != nil && !errors.Is(err, ErrNotConnected) {
				log.Printf("[MQTT] Publish networks failed: %v", err)
			}
		case <-ticker.C:
			if err := p.PublishRecommendations(p.analytics.TopRecommendations()); err != nil && !errors.Is(err, ErrNotConnected) {
				log.Printf("[MQTT] Publish recommendations failed: %v", err)
			}
		}
	}
}

// PublishNetworks publishes the snapshot to <prefix>/networks.
func (p *Publisher) PublishNetworks(networks []domain.Network) error {
	views := make([]domain.NetworkView, len(networks))
	for i, n := range networks {
		views[i] = n.View()
	}
	return p.publishJSON("networks", map[string]interface{}{
		"timestamp": time.Now(),
		"count":     len(views),
		"networks":  views,
	})
}

// PublishRecommendations publishes to <prefix>/recommendations.
func (p *Publisher) PublishRecommendations(recs []domain.Recommendation) error {
	return p.publishJSON("recommendations", map[string]interface{}{
		"timestamp":       time.Now(),
		"recommendations": recs,
	})
}

// Topic returns the full topic for a suffix.
func (p *Publisher) Topic(suffix string) string {
	return p.cfg.TopicPrefix + "/" + suffix
}

func (p *Publisher) publishJSON(suffix string, payload interface{}) error {
	if !p.client.IsConnected() {
		telemetry.MQTTPublishes.WithLabelValues(suffix, "skipped").Inc()
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", suffix, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.client.Publish(p.Topic(suffix), p.cfg.QoS, p.cfg.Retain, data)
	if !token.WaitTimeout(publishTimeout) {
		telemetry.MQTTPublishes.WithLabelValues(suffix, "timeout").Inc()
		return fmt.Errorf("publish %s: timeout", suffix)
	}
	if err := token.Error(); err != nil {
		telemetry.MQTTPublishes.WithLabelValues(suffix, "error").Inc()
		return fmt.Errorf("publish %s: %w", suffix, err)
	}
	telemetry.MQTTPublishes.WithLabelValues(suffix, "ok").Inc()
	return nil
}
