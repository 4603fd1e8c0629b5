// Package entity derives host-platform entity descriptors from NAS API
// snapshots: a unique id plus a device-identity record per entity, with
// optional sub-device (volume, disk, USB device, USB partition) or backup
// task resolution.
package entity

import (
	"errors"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/backup"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/externalusb"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/storage"
)

const (
	// Domain namespaces device identifiers in the host registry.
	Domain = "synology_dsm"

	// Manufacturer is the fixed vendor name for NAS-level devices.
	Manufacturer = "Synology"

	// Attribution credits the data source on every entity.
	Attribution = "Data provided by Synology"
)

// ErrSnapshotMissing is returned when a snapshot required to build an entity
// has not been populated yet. This is a setup precondition failure, never a
// partial identity.
var ErrSnapshotMissing = errors.New("required snapshot not populated")

// ErrDeviceNotFound is returned when a volume or disk id does not resolve.
var ErrDeviceNotFound = errors.New("sub-device not found")

// ErrTaskNotFound is returned when a backup task id does not resolve.
var ErrTaskNotFound = errors.New("backup task not found")

// Description binds an entity to a capability key (the API it depends on)
// and a display key. Descriptions are immutable and supplied by the caller.
type Description struct {
	// APIKey names the API subsystem delivering this entity's data.
	APIKey string
	// Key is the display key, unique within the API subsystem.
	Key string
	// Name is the human-readable entity name.
	Name string
}

// DeviceInfo is the device-identity record registered with the host's device
// registry. The JSON shape matches the Home Assistant MQTT discovery device
// block.
type DeviceInfo struct {
	Identifiers      []string `json:"identifiers"`
	Name             string   `json:"name,omitempty"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
	Model            string   `json:"model,omitempty"`
	SwVersion        string   `json:"sw_version,omitempty"`
	ViaDevice        string   `json:"via_device,omitempty"`
	ConfigurationURL string   `json:"configuration_url,omitempty"`
}

// Source is the read-only snapshot accessor entities are built from. The
// coordinator layer implements it; tests substitute fakes.
type Source interface {
	Information() *dsm.Information
	Network() *dsm.Network
	Storage() *storage.Storage
	ExternalUSB() *externalusb.ExternalUSB
	HyperBackup() *backup.HyperBackup
	ConfigURL() string

	// Subscribe registers an entity for push updates under its capability
	// key and returns the deregistration handle.
	Subscribe(apiKey, uniqueID string) func()
}
