package dsm

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api"
)

// InformationAPI is the capability key for the DSM information snapshot.
const InformationAPI = "SYNO.DSM.Info"

// Information is a point-in-time view of the NAS identity data.
type Information struct {
	Model           string `mapstructure:"model"`
	RAM             int    `mapstructure:"ram"`
	Serial          string `mapstructure:"serial"`
	Temperature     int    `mapstructure:"temperature"`
	TemperatureWarn bool   `mapstructure:"temperature_warn"`
	UpTime          int64  `mapstructure:"uptime"`
	VersionString   string `mapstructure:"version_string"`
}

// Version parses the numeric DSM version out of VersionString, which looks
// like "DSM 7.2.1-69057 Update 3".
func (i Information) Version() (*version.Version, error) {
	fields := strings.Fields(i.VersionString)
	for _, f := range fields {
		if f[0] >= '0' && f[0] <= '9' {
			core, _, _ := strings.Cut(f, "-")
			return version.NewVersion(core)
		}
	}
	return nil, fmt.Errorf("no version found in %q", i.VersionString)
}

type InformationRequest struct {
	api.BaseRequest
}

type InformationResponse struct {
	api.BaseResponse
	Information `mapstructure:",squash"`
}

func NewInformationRequest() InformationRequest {
	return InformationRequest{BaseRequest: api.NewRequest(InformationAPI, "getinfo")}
}
