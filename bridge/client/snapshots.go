package client

import (
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/backup"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/core"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/externalusb"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/storage"
)

// Snapshots bundles the typed point-in-time views of all observed DSM
// subsystems. A nil member means the subsystem has not been fetched, either
// because nothing subscribed to it or because the fetch failed.
type Snapshots struct {
	Information *dsm.Information
	Network     *dsm.Network
	Utilization *core.Utilization
	Storage     *storage.Storage
	ExternalUSB *externalusb.ExternalUSB
	HyperBackup *backup.HyperBackup
}
