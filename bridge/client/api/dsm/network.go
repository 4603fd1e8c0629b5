package dsm

import (
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api"
)

// NetworkAPI is the capability key for the DSM network snapshot.
const NetworkAPI = "SYNO.DSM.Network"

// Interface is a single network interface of the NAS.
type Interface struct {
	ID   string `mapstructure:"ifname"`
	IP   []IP   `mapstructure:"ip"`
	Type string `mapstructure:"type"`
	MAC  string `mapstructure:"mac"`
}

type IP struct {
	Address string `mapstructure:"address"`
	Netmask string `mapstructure:"netmask"`
}

// Network is a point-in-time view of the NAS network configuration.
type Network struct {
	Hostname   string      `mapstructure:"hostname"`
	DNS        []string    `mapstructure:"dns"`
	Gateway    string      `mapstructure:"gateway"`
	Interfaces []Interface `mapstructure:"interfaces"`
	Workgroup  string      `mapstructure:"workgroup"`
}

// Macs collects the MAC addresses of all interfaces.
func (n Network) Macs() []string {
	macs := make([]string, 0, len(n.Interfaces))
	for _, iface := range n.Interfaces {
		if iface.MAC != "" {
			macs = append(macs, iface.MAC)
		}
	}
	return macs
}

type NetworkRequest struct {
	api.BaseRequest
}

type NetworkResponse struct {
	api.BaseResponse
	Network `mapstructure:",squash"`
}

func NewNetworkRequest() NetworkRequest {
	return NetworkRequest{BaseRequest: api.NewRequest(NetworkAPI, "list")}
}
