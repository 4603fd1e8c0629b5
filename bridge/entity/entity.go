package entity

import (
	"fmt"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/coordinator"
)

// Base is an entity bound to the NAS itself. It derives the unique id
// "{serial}_{api_key}:{key}" and a device-identity record for the NAS from
// the information and network snapshots.
type Base[C coordinator.Reader] struct {
	source      Source
	coordinator C
	description Description

	uniqueID    string
	deviceInfo  DeviceInfo
	unsubscribe func()
}

// NewBase builds the NAS-level entity. Missing information or network
// snapshots abort construction; a partial top-level identity is never
// produced.
func NewBase[C coordinator.Reader](source Source, coord C, description Description) (*Base[C], error) {
	information := source.Information()
	network := source.Network()
	if information == nil {
		return nil, fmt.Errorf("%w: information", ErrSnapshotMissing)
	}
	if network == nil {
		return nil, fmt.Errorf("%w: network", ErrSnapshotMissing)
	}

	b := &Base[C]{
		source:      source,
		coordinator: coord,
		description: description,
		uniqueID: fmt.Sprintf(
			"%s_%s:%s",
			information.Serial, description.APIKey, description.Key,
		),
	}
	b.deviceInfo = DeviceInfo{
		Identifiers:      []string{identifier(information.Serial)},
		Name:             network.Hostname,
		Manufacturer:     Manufacturer,
		Model:            information.Model,
		SwVersion:        information.VersionString,
		ConfigurationURL: source.ConfigURL(),
	}
	return b, nil
}

// Attach registers the entity for push updates from its API subsystem.
func (b *Base[C]) Attach() {
	b.unsubscribe = b.source.Subscribe(b.description.APIKey, b.uniqueID)
}

// Detach deregisters the entity. Safe to call when never attached.
func (b *Base[C]) Detach() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// UniqueID is the entity's globally unique id within the host registry.
func (b *Base[C]) UniqueID() string {
	return b.uniqueID
}

// DeviceInfo is the device-identity record for the host's device registry.
func (b *Base[C]) DeviceInfo() DeviceInfo {
	return b.deviceInfo
}

// Description returns the immutable entity description.
func (b *Base[C]) Description() Description {
	return b.description
}

// Name is the entity display name.
func (b *Base[C]) Name() string {
	return b.description.Name
}

// Coordinator exposes the coordinator read contract the entity is bound to.
func (b *Base[C]) Coordinator() C {
	return b.coordinator
}

// Source exposes the snapshot accessor the entity was built from.
func (b *Base[C]) Source() Source {
	return b.source
}

func identifier(parts ...string) string {
	id := Domain
	for _, p := range parts {
		id += ":" + p
	}
	return id
}
