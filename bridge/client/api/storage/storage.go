// Package storage models the SYNO.Storage.CGI.Storage snapshot: the volumes
// and disks hosted by the NAS.
package storage

import (
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api"
)

// API is the capability key for the storage snapshot.
const API = "SYNO.Storage.CGI.Storage"

// VolumeSize holds byte counts reported as decimal strings by DSM.
type VolumeSize struct {
	Total string `mapstructure:"total"`
	Used  string `mapstructure:"used"`
}

// Volume is a storage pool volume. Volumes carry no display name of their
// own, only an id like "volume_1".
type Volume struct {
	ID         string     `mapstructure:"id"`
	DeviceType string     `mapstructure:"device_type"`
	Status     string     `mapstructure:"status"`
	FsType     string     `mapstructure:"fs_type"`
	Size       VolumeSize `mapstructure:"size"`
}

// Disk is a physical drive installed in the NAS.
type Disk struct {
	ID                 string `mapstructure:"id"`
	Name               string `mapstructure:"name"`
	Vendor             string `mapstructure:"vendor"`
	Model              string `mapstructure:"model"`
	Firm               string `mapstructure:"firm"`
	DiskType           string `mapstructure:"diskType"`
	Temperature        int    `mapstructure:"temp"`
	Status             string `mapstructure:"status"`
	SmartStatus        string `mapstructure:"smart_status"`
	BelowRemainLifeThr bool   `mapstructure:"below_remain_life_thr"`
}

// Storage is a point-in-time view of the NAS storage subsystem.
type Storage struct {
	Volumes []Volume `mapstructure:"volumes"`
	Disks   []Disk   `mapstructure:"disks"`
}

// GetVolume returns the volume with the given id, or nil when absent.
// First match wins; DSM does not guarantee uniqueness.
func (s *Storage) GetVolume(id string) *Volume {
	for i := range s.Volumes {
		if s.Volumes[i].ID == id {
			return &s.Volumes[i]
		}
	}
	return nil
}

// GetDisk returns the disk with the given id, or nil when absent.
func (s *Storage) GetDisk(id string) *Disk {
	for i := range s.Disks {
		if s.Disks[i].ID == id {
			return &s.Disks[i]
		}
	}
	return nil
}

// VolumeIDs lists the ids of all known volumes.
func (s *Storage) VolumeIDs() []string {
	ids := make([]string, 0, len(s.Volumes))
	for _, v := range s.Volumes {
		ids = append(ids, v.ID)
	}
	return ids
}

// DiskIDs lists the ids of all known disks.
func (s *Storage) DiskIDs() []string {
	ids := make([]string, 0, len(s.Disks))
	for _, d := range s.Disks {
		ids = append(ids, d.ID)
	}
	return ids
}

type LoadInfoRequest struct {
	api.BaseRequest
}

type LoadInfoResponse struct {
	api.BaseResponse
	Storage `mapstructure:",squash"`
}

func NewLoadInfoRequest() LoadInfoRequest {
	return LoadInfoRequest{BaseRequest: api.NewRequest(API, "load_info")}
}
