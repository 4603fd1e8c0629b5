// Package mqtt publishes the bridge's entities to the home-automation host:
// one retained discovery config per sensor plus state updates on every
// coordinator refresh.
package mqtt

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
)

const (
	defaultDiscoveryPrefix = "homeassistant"
	defaultTopicPrefix     = "dsm_mqtt_bridge"
	connectTimeout         = 10 * time.Second
	publishTimeout         = 5 * time.Second
)

// Config configures the MQTT publisher.
type Config struct {
	Broker          string // e.g. tcp://broker:1883
	Username        string
	Password        string
	ClientID        string
	DiscoveryPrefix string
	TopicPrefix     string
}

// Publisher owns the broker connection and the topic layout.
type Publisher struct {
	cli             mqtt.Client
	discoveryPrefix string
	topicPrefix     string
	logger          client.Logger
}

// New prepares a publisher. No connection is made until Connect.
func New(cfg Config, logger client.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("broker address is required")
	}
	if cfg.DiscoveryPrefix == "" {
		cfg.DiscoveryPrefix = defaultDiscoveryPrefix
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = defaultTopicPrefix
	}
	if cfg.ClientID == "" {
		cfg.ClientID = defaultTopicPrefix + "-" + uuid.NewString()[:8]
	}
	if logger == nil {
		logger = client.NopLogger
	}

	p := &Publisher{
		discoveryPrefix: cfg.DiscoveryPrefix,
		topicPrefix:     cfg.TopicPrefix,
		logger:          logger,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetWill(p.availabilityTopic(), "offline", 1, true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("connected to MQTT broker", "broker", cfg.Broker)
		})
	p.cli = mqtt.NewClient(opts)
	return p, nil
}

// Connect establishes the broker session and marks the bridge online.
func (p *Publisher) Connect() error {
	token := p.cli.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timeout connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to MQTT broker: %w", err)
	}
	return p.publish(p.availabilityTopic(), "online", true)
}

// Close marks the bridge offline and drops the connection.
func (p *Publisher) Close() {
	if err := p.publish(p.availabilityTopic(), "offline", true); err != nil {
		p.logger.Debug("offline publish failed", "error", err)
	}
	p.cli.Disconnect(250)
}

func (p *Publisher) availabilityTopic() string {
	return p.topicPrefix + "/availability"
}

func (p *Publisher) stateTopic(uniqueID string) string {
	return p.topicPrefix + "/sensor/" + topicID(uniqueID) + "/state"
}

func (p *Publisher) attributesTopic(uniqueID string) string {
	return p.topicPrefix + "/sensor/" + topicID(uniqueID) + "/attributes"
}

func (p *Publisher) configTopic(uniqueID string) string {
	return p.discoveryPrefix + "/sensor/" + topicID(uniqueID) + "/config"
}

// topicID maps a unique id onto the discovery object-id character set
// [a-zA-Z0-9_-]; unique ids carry ':' and '.' from the API keys.
func topicID(uniqueID string) string {
	out := []rune(uniqueID)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

func (p *Publisher) publish(topic string, payload interface{}, retain bool) error {
	token := p.cli.Publish(topic, 1, retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timeout publishing to %s", topic)
	}
	return token.Error()
}
