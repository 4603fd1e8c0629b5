package client

import (
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
)

// MinimumDSMVersion is the oldest DSM release the bridge supports. Older
// firmwares lack several of the APIs the snapshots are built from.
var MinimumDSMVersion = version.Must(version.NewVersion("6.0"))

// CheckVersion verifies the NAS firmware against MinimumDSMVersion.
func CheckVersion(info *dsm.Information) error {
	v, err := info.Version()
	if err != nil {
		return fmt.Errorf("cannot determine DSM version: %w", err)
	}
	if v.LessThan(MinimumDSMVersion) {
		return fmt.Errorf("DSM %s is not supported, need at least %s", v, MinimumDSMVersion)
	}
	return nil
}
