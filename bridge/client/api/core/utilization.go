// Package core models SYNO.Core.System.Utilization: CPU, memory and network
// load figures used by the utilisation sensors.
package core

import (
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api"
)

// UtilizationAPI is the capability key for the utilisation snapshot.
const UtilizationAPI = "SYNO.Core.System.Utilization"

type CPU struct {
	UserLoad   int    `mapstructure:"user_load"`
	SystemLoad int    `mapstructure:"system_load"`
	OtherLoad  int    `mapstructure:"other_load"`
	Load1Min   int    `mapstructure:"1min_load"`
	Load5Min   int    `mapstructure:"5min_load"`
	Load15Min  int    `mapstructure:"15min_load"`
	Device     string `mapstructure:"device"`
}

// TotalLoad is the sum of the per-class CPU loads.
func (c CPU) TotalLoad() int {
	return c.UserLoad + c.SystemLoad + c.OtherLoad
}

type Memory struct {
	RealUsage  int `mapstructure:"real_usage"`
	MemorySize int `mapstructure:"memory_size"`
	AvailReal  int `mapstructure:"avail_real"`
	AvailSwap  int `mapstructure:"avail_swap"`
	Cached     int `mapstructure:"cached"`
	TotalReal  int `mapstructure:"total_real"`
	TotalSwap  int `mapstructure:"total_swap"`
}

type Network struct {
	Device string `mapstructure:"device"`
	RX     int64  `mapstructure:"rx"`
	TX     int64  `mapstructure:"tx"`
}

// Utilization is a point-in-time view of the NAS load.
type Utilization struct {
	CPU     CPU       `mapstructure:"cpu"`
	Memory  Memory    `mapstructure:"memory"`
	Network []Network `mapstructure:"network"`
}

// NetworkUp returns the transmit rate of the "total" pseudo device.
func (u Utilization) NetworkUp() int64 {
	for _, n := range u.Network {
		if n.Device == "total" {
			return n.TX
		}
	}
	return 0
}

// NetworkDown returns the receive rate of the "total" pseudo device.
func (u Utilization) NetworkDown() int64 {
	for _, n := range u.Network {
		if n.Device == "total" {
			return n.RX
		}
	}
	return 0
}

type UtilizationRequest struct {
	api.BaseRequest
	Type string `synology:"type"`
}

type UtilizationResponse struct {
	api.BaseResponse
	Utilization `mapstructure:",squash"`
}

func NewUtilizationRequest() UtilizationRequest {
	return UtilizationRequest{
		BaseRequest: api.NewRequest(UtilizationAPI, "get"),
		Type:        "current",
	}
}
