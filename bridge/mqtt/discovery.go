package mqtt

import (
	"encoding/json"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/entity"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/sensor"
)

// discoveryPayload is the Home Assistant MQTT discovery config for a sensor.
type discoveryPayload struct {
	Name                string            `json:"name"`
	UniqueID            string            `json:"unique_id"`
	StateTopic          string            `json:"state_topic"`
	AvailabilityTopic   string            `json:"availability_topic"`
	JSONAttributesTopic string            `json:"json_attributes_topic,omitempty"`
	UnitOfMeasurement   string            `json:"unit_of_measurement,omitempty"`
	DeviceClass         string            `json:"device_class,omitempty"`
	StateClass          string            `json:"state_class,omitempty"`
	EntityCategory      string            `json:"entity_category,omitempty"`
	Icon                string            `json:"icon,omitempty"`
	EnabledByDefault    *bool             `json:"enabled_by_default,omitempty"`
	Attribution         string            `json:"attribution,omitempty"`
	Device              entity.DeviceInfo `json:"device"`
}

// DiscoveryPayload renders the retained discovery config for a sensor.
func (p *Publisher) DiscoveryPayload(s *sensor.Sensor) ([]byte, error) {
	payload := discoveryPayload{
		Name:              s.Name(),
		UniqueID:          s.UniqueID(),
		StateTopic:        p.stateTopic(s.UniqueID()),
		AvailabilityTopic: p.availabilityTopic(),
		UnitOfMeasurement: s.Description.NativeUnit,
		DeviceClass:       s.Description.DeviceClass,
		StateClass:        s.Description.StateClass,
		EntityCategory:    s.Description.EntityCategory,
		Icon:              s.Description.Icon,
		Attribution:       entity.Attribution,
		Device:            s.DeviceInfo(),
	}
	if s.Description.Attributes != nil {
		payload.JSONAttributesTopic = p.attributesTopic(s.UniqueID())
	}
	if !s.Description.EnabledByDefault {
		// the catalogue marks diagnostic extras as disabled by default
		if s.Description.EntityCategory == sensor.CategoryDiagnostic {
			disabled := false
			payload.EnabledByDefault = &disabled
		}
	}
	return json.Marshal(payload)
}

// PublishDiscovery announces a sensor to the host platform.
func (p *Publisher) PublishDiscovery(s *sensor.Sensor) error {
	payload, err := p.DiscoveryPayload(s)
	if err != nil {
		return err
	}
	return p.publish(p.configTopic(s.UniqueID()), payload, true)
}

// PublishState publishes the current reading of a sensor. Sensors without a
// reading are skipped silently; their backing snapshot is simply absent.
func (p *Publisher) PublishState(s *sensor.Sensor, snap client.Snapshots) error {
	state, ok := s.State(snap)
	if !ok {
		return nil
	}
	if err := p.publish(p.stateTopic(s.UniqueID()), state, false); err != nil {
		return err
	}
	if attrs := s.Attributes(snap); attrs != nil {
		b, err := json.Marshal(attrs)
		if err != nil {
			return err
		}
		if err := p.publish(p.attributesTopic(s.UniqueID()), b, false); err != nil {
			return err
		}
	}
	return nil
}
