package sensor

import (
	"fmt"
	"strconv"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/coordinator"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/entity"
)

// Entity is the part of an entity a sensor needs: identity, device record
// and the subscription lifecycle.
type Entity interface {
	UniqueID() string
	DeviceInfo() entity.DeviceInfo
	Attach()
	Detach()
}

// Sensor pairs a sensor description with the constructed entity and the
// sub-device id its readings resolve against.
type Sensor struct {
	Description Description
	DeviceID    string

	ent  Entity
	name string
}

// UniqueID is the entity's unique id.
func (s *Sensor) UniqueID() string { return s.ent.UniqueID() }

// Name is the sensor display name.
func (s *Sensor) Name() string { return s.name }

// DeviceInfo is the device-identity record of the backing entity.
func (s *Sensor) DeviceInfo() entity.DeviceInfo { return s.ent.DeviceInfo() }

// Attach registers the backing entity for updates.
func (s *Sensor) Attach() { s.ent.Attach() }

// Detach deregisters the backing entity.
func (s *Sensor) Detach() { s.ent.Detach() }

// State resolves the current reading and renders it as the state payload.
// The second return is false when no reading is available.
func (s *Sensor) State(snap client.Snapshots) (string, bool) {
	if s.Description.Value == nil {
		return "", false
	}
	v, ok := s.Description.Value(snap, s.DeviceID)
	if !ok {
		return "", false
	}
	return formatState(v), true
}

// Attributes resolves the extra state attributes, nil when none are defined.
func (s *Sensor) Attributes(snap client.Snapshots) map[string]any {
	if s.Description.Attributes == nil {
		return nil
	}
	return s.Description.Attributes(snap, s.DeviceID)
}

func formatState(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', 1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Reader aliases the coordinator read contract bound by all bridge sensors.
type Reader = *coordinator.Coordinator[client.Snapshots]

// Build constructs the full sensor set for the current snapshots: NAS-level
// sensors plus one set per volume, disk, USB device, USB partition and
// backup task. Sensors whose sub-device cannot be resolved are skipped with
// a warning rather than failing the whole setup.
func Build(source entity.Source, coord Reader, logger client.Logger) ([]*Sensor, error) {
	if logger == nil {
		logger = client.NopLogger
	}
	var sensors []*Sensor

	for _, desc := range append(append([]Description{}, UtilisationSensors...), InformationSensors...) {
		ent, err := entity.NewBase(source, coord, desc.Description)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", desc.Key, err)
		}
		sensors = append(sensors, &Sensor{Description: desc, ent: ent, name: desc.Name})
	}

	store := source.Storage()
	if store != nil {
		for _, volumeID := range store.VolumeIDs() {
			for _, desc := range VolumeSensors {
				ent, err := entity.NewDevice(source, coord, desc.Description, volumeID)
				if err != nil {
					return nil, fmt.Errorf("build %s for %s: %w", desc.Key, volumeID, err)
				}
				sensors = append(sensors, &Sensor{
					Description: desc, DeviceID: volumeID, ent: ent, name: desc.Name,
				})
			}
		}
		for _, diskID := range store.DiskIDs() {
			for _, desc := range DiskSensors {
				ent, err := entity.NewDevice(source, coord, desc.Description, diskID)
				if err != nil {
					return nil, fmt.Errorf("build %s for %s: %w", desc.Key, diskID, err)
				}
				sensors = append(sensors, &Sensor{
					Description: desc, DeviceID: diskID, ent: ent, name: desc.Name,
				})
			}
		}
	}

	if usb := source.ExternalUSB(); usb != nil {
		for _, device := range usb.GetDevices() {
			for _, desc := range USBDeviceSensors {
				ent, err := entity.NewDevice(source, coord, desc.Description, device.Name)
				if err != nil {
					logger.Warn("skipping USB device sensor", "device", device.Name, "error", err)
					continue
				}
				sensors = append(sensors, &Sensor{
					Description: desc, DeviceID: device.Name, ent: ent, name: desc.Name,
				})
			}
			for _, partition := range device.Partitions {
				for _, desc := range USBPartitionSensors {
					ent, err := entity.NewDevice(source, coord, desc.Description, partition.Title)
					if err != nil {
						logger.Warn("skipping USB partition sensor", "partition", partition.Title, "error", err)
						continue
					}
					sensors = append(sensors, &Sensor{
						Description: desc, DeviceID: partition.Title, ent: ent, name: desc.Name,
					})
				}
			}
		}
	}

	if hyperBackup := source.HyperBackup(); hyperBackup != nil {
		for _, taskID := range hyperBackup.TaskIDs() {
			for _, desc := range BackupTaskSensors {
				ent, err := entity.NewBackupTask(source, coord, desc.Description, taskID)
				if err != nil {
					logger.Warn("skipping backup task sensor", "task", taskID, "error", err)
					continue
				}
				sensors = append(sensors, &Sensor{
					Description: desc,
					DeviceID:    strconv.Itoa(taskID),
					ent:         ent,
					name:        ent.Name(),
				})
			}
		}
	}

	return sensors, nil
}
