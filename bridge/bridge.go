package bridge

import (
	"context"
	"fmt"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/coordinator"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/mqtt"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/sensor"
)

// Bridge is the running service: one NAS, one broker.
type Bridge struct {
	cfg       *Config
	logger    client.Logger
	api       *API
	publisher *mqtt.Publisher
}

// New assembles a bridge from configuration. Nothing connects until Run.
func New(cfg *Config, logger client.Logger) (*Bridge, error) {
	if logger == nil {
		logger = client.NopLogger
	}

	c, err := client.New(client.Options{
		Host:                 cfg.Synology.Host,
		Port:                 cfg.Synology.Port,
		Username:             cfg.Synology.Username,
		Password:             cfg.Synology.Password,
		UseHTTPS:             cfg.Synology.HTTPS,
		SkipCertificateCheck: cfg.Synology.SkipCertCheck,
		SessionCacheMode:     cfg.Synology.SessionCache.Mode,
		SessionCachePath:     cfg.Synology.SessionCache.Path,
		Logger:               logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize DSM client: %w", err)
	}

	publisher, err := mqtt.New(mqtt.Config{
		Broker:          cfg.MQTT.Broker,
		Username:        cfg.MQTT.Username,
		Password:        cfg.MQTT.Password,
		ClientID:        cfg.MQTT.ClientID,
		DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
		TopicPrefix:     cfg.MQTT.TopicPrefix,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize MQTT publisher: %w", err)
	}

	return &Bridge{
		cfg:       cfg,
		logger:    logger,
		api:       NewAPI(c, logger),
		publisher: publisher,
	}, nil
}

// Run connects both sides, announces all entities and polls until the
// context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.api.Setup(ctx); err != nil {
		return fmt.Errorf("setup DSM connection: %w", err)
	}
	defer func() {
		if err := b.api.Logout(context.Background()); err != nil {
			b.logger.Debug("logout failed", "error", err)
		}
	}()

	central := coordinator.New(
		"central",
		b.cfg.PollInterval,
		b.logger,
		func(ctx context.Context) (client.Snapshots, error) {
			if err := b.api.Update(ctx); err != nil {
				return client.Snapshots{}, err
			}
			return b.api.Snapshots(), nil
		},
	)

	sensors, err := sensor.Build(b.api, central, b.logger)
	if err != nil {
		return fmt.Errorf("build entities: %w", err)
	}
	b.logger.Info("entities built", "count", len(sensors))

	for _, s := range sensors {
		s.Attach()
	}
	defer func() {
		for _, s := range sensors {
			s.Detach()
		}
	}()

	if err := b.publisher.Connect(); err != nil {
		return err
	}
	defer b.publisher.Close()

	for _, s := range sensors {
		if err := b.publisher.PublishDiscovery(s); err != nil {
			return fmt.Errorf("announce %s: %w", s.UniqueID(), err)
		}
	}

	publishStates := func() {
		snap := b.api.Snapshots()
		for _, s := range sensors {
			if err := b.publisher.PublishState(s, snap); err != nil {
				b.logger.Warn("state publish failed", "unique_id", s.UniqueID(), "error", err)
			}
		}
	}
	removeListener := central.AddListener(publishStates)
	defer removeListener()

	publishStates()

	return central.Run(ctx)
}
