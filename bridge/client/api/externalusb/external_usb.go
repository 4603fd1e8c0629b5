// Package externalusb models the SYNO.Core.ExternalDevice.Storage.USB
// snapshot: external USB devices and their partitions.
package externalusb

import (
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api"
)

// API is the capability key for the external USB snapshot.
const API = "SYNO.Core.ExternalDevice.Storage.USB"

// Partition is a single partition on an external USB device.
type Partition struct {
	Title      string `mapstructure:"name_id"`
	Filesystem string `mapstructure:"filesystem"`
	Share      string `mapstructure:"share_name"`
	SizeTotal  int64  `mapstructure:"total_size_mb"`
	SizeUsed   int64  `mapstructure:"used_size_mb"`
}

// Device is an external USB storage device attached to the NAS.
type Device struct {
	ID           string      `mapstructure:"dev_id"`
	Name         string      `mapstructure:"dev_title"`
	Type         string      `mapstructure:"dev_type"`
	Manufacturer string      `mapstructure:"producer"`
	ProductName  string      `mapstructure:"product"`
	Status       string      `mapstructure:"status"`
	SizeTotal    int64       `mapstructure:"total_size_mb"`
	Partitions   []Partition `mapstructure:"partitions"`
}

// ExternalUSB is a point-in-time view of all attached USB storage devices.
// Devices come and go with hot-plug, so lookups legitimately miss.
type ExternalUSB struct {
	Devices []Device `mapstructure:"devices"`
}

// GetDevices returns all attached devices.
func (e *ExternalUSB) GetDevices() []Device {
	return e.Devices
}

type ListRequest struct {
	api.BaseRequest
	Additional []string `synology:"additional"`
}

type ListResponse struct {
	api.BaseResponse
	ExternalUSB `mapstructure:",squash"`
}

func NewListRequest() ListRequest {
	return ListRequest{
		BaseRequest: api.NewRequest(API, "list"),
		Additional:  []string{"all"},
	}
}
