// Package sensor defines the sensor catalogue of the bridge: which values of
// each DSM snapshot are exposed, their units and device classes, and how a
// description key resolves to a concrete reading.
package sensor

import (
	"strconv"

	"github.com/docker/go-units"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/backup"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/core"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/externalusb"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/storage"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/entity"
)

// Units and classes as understood by the home-automation host.
const (
	UnitPercent = "%"
	UnitCelsius = "°C"
	UnitBytes   = "B"
	UnitBytesPS = "B/s"
	UnitLoad    = "load"

	DeviceClassTemperature = "temperature"
	DeviceClassDataSize    = "data_size"
	DeviceClassDataRate    = "data_rate"
	DeviceClassEnum        = "enum"

	StateClassMeasurement = "measurement"

	CategoryDiagnostic = "diagnostic"
)

// Description describes one sensor: the entity description plus presentation
// metadata and the snapshot reader producing its state.
type Description struct {
	entity.Description

	NativeUnit       string
	DeviceClass      string
	StateClass       string
	EntityCategory   string
	Icon             string
	EnabledByDefault bool

	// Value resolves the current reading from the snapshots. The second
	// return is false when the backing snapshot is absent.
	Value func(snap client.Snapshots, deviceID string) (any, bool)

	// Attributes optionally derives extra state attributes.
	Attributes func(snap client.Snapshots, deviceID string) map[string]any
}

func withUtilization(read func(u *core.Utilization) any) func(client.Snapshots, string) (any, bool) {
	return func(snap client.Snapshots, _ string) (any, bool) {
		if snap.Utilization == nil {
			return nil, false
		}
		return read(snap.Utilization), true
	}
}

func withInformation(read func(i *dsm.Information) any) func(client.Snapshots, string) (any, bool) {
	return func(snap client.Snapshots, _ string) (any, bool) {
		if snap.Information == nil {
			return nil, false
		}
		return read(snap.Information), true
	}
}

func withVolume(read func(v volumeReading) any) func(client.Snapshots, string) (any, bool) {
	return func(snap client.Snapshots, id string) (any, bool) {
		if snap.Storage == nil {
			return nil, false
		}
		volume := snap.Storage.GetVolume(id)
		if volume == nil {
			return nil, false
		}
		total, _ := strconv.ParseInt(volume.Size.Total, 10, 64)
		used, _ := strconv.ParseInt(volume.Size.Used, 10, 64)
		return read(volumeReading{volume.Status, total, used}), true
	}
}

type volumeReading struct {
	Status string
	Total  int64
	Used   int64
}

func withDisk(read func(d *storage.Disk) any) func(client.Snapshots, string) (any, bool) {
	return func(snap client.Snapshots, id string) (any, bool) {
		if snap.Storage == nil {
			return nil, false
		}
		disk := snap.Storage.GetDisk(id)
		if disk == nil {
			return nil, false
		}
		return read(disk), true
	}
}

func withUSBDevice(read func(d *externalusb.Device) any) func(client.Snapshots, string) (any, bool) {
	return func(snap client.Snapshots, id string) (any, bool) {
		if snap.ExternalUSB == nil {
			return nil, false
		}
		for i := range snap.ExternalUSB.Devices {
			if snap.ExternalUSB.Devices[i].Name == id {
				return read(&snap.ExternalUSB.Devices[i]), true
			}
		}
		return nil, false
	}
}

func withUSBPartition(read func(p *externalusb.Partition) any) func(client.Snapshots, string) (any, bool) {
	return func(snap client.Snapshots, id string) (any, bool) {
		if snap.ExternalUSB == nil {
			return nil, false
		}
		for _, device := range snap.ExternalUSB.Devices {
			for i := range device.Partitions {
				if device.Partitions[i].Title == id {
					return read(&device.Partitions[i]), true
				}
			}
		}
		return nil, false
	}
}

func withBackupTask(read func(t *backup.Task) any) func(client.Snapshots, string) (any, bool) {
	return func(snap client.Snapshots, id string) (any, bool) {
		if snap.HyperBackup == nil {
			return nil, false
		}
		taskID, err := strconv.Atoi(id)
		if err != nil {
			return nil, false
		}
		task := snap.HyperBackup.GetTask(taskID)
		if task == nil {
			return nil, false
		}
		return read(task), true
	}
}

// UtilisationSensors describe NAS load readings.
var UtilisationSensors = []Description{
	{
		Description: entity.Description{
			APIKey: core.UtilizationAPI,
			Key:    "cpu_user_load",
			Name:   "CPU Utilization (User)",
		},
		NativeUnit: UnitPercent,
		StateClass: StateClassMeasurement,
		Value:      withUtilization(func(u *core.Utilization) any { return u.CPU.UserLoad }),
	},
	{
		Description: entity.Description{
			APIKey: core.UtilizationAPI,
			Key:    "cpu_total_load",
			Name:   "CPU Utilization (Total)",
		},
		NativeUnit: UnitPercent,
		StateClass: StateClassMeasurement,
		Value:      withUtilization(func(u *core.Utilization) any { return u.CPU.TotalLoad() }),
	},
	{
		Description: entity.Description{
			APIKey: core.UtilizationAPI,
			Key:    "cpu_15min_load",
			Name:   "CPU Load Average (15 min)",
		},
		NativeUnit: UnitLoad,
		Value:      withUtilization(func(u *core.Utilization) any { return u.CPU.Load15Min }),
	},
	{
		Description: entity.Description{
			APIKey: core.UtilizationAPI,
			Key:    "memory_real_usage",
			Name:   "Memory Usage (Real)",
		},
		NativeUnit: UnitPercent,
		StateClass: StateClassMeasurement,
		Value:      withUtilization(func(u *core.Utilization) any { return u.Memory.RealUsage }),
	},
	{
		Description: entity.Description{
			APIKey: core.UtilizationAPI,
			Key:    "network_up",
			Name:   "Upload Throughput",
		},
		NativeUnit:  UnitBytesPS,
		DeviceClass: DeviceClassDataRate,
		StateClass:  StateClassMeasurement,
		Value:       withUtilization(func(u *core.Utilization) any { return u.NetworkUp() }),
	},
	{
		Description: entity.Description{
			APIKey: core.UtilizationAPI,
			Key:    "network_down",
			Name:   "Download Throughput",
		},
		NativeUnit:  UnitBytesPS,
		DeviceClass: DeviceClassDataRate,
		StateClass:  StateClassMeasurement,
		Value:       withUtilization(func(u *core.Utilization) any { return u.NetworkDown() }),
	},
}

// InformationSensors describe NAS identity readings.
var InformationSensors = []Description{
	{
		Description: entity.Description{
			APIKey: dsm.InformationAPI,
			Key:    "temperature",
			Name:   "Temperature",
		},
		NativeUnit:  UnitCelsius,
		DeviceClass: DeviceClassTemperature,
		StateClass:  StateClassMeasurement,
		Value:       withInformation(func(i *dsm.Information) any { return i.Temperature }),
	},
	{
		Description: entity.Description{
			APIKey: dsm.InformationAPI,
			Key:    "uptime",
			Name:   "Last Boot",
		},
		EntityCategory: CategoryDiagnostic,
		Value:          withInformation(func(i *dsm.Information) any { return i.UpTime }),
	},
}

// VolumeSensors describe per-volume readings. The keys contain "volume" so
// the sub-device resolver binds them to a volume record.
var VolumeSensors = []Description{
	{
		Description: entity.Description{
			APIKey: "SYNO.Storage.CGI.Storage",
			Key:    "volume_status",
			Name:   "Status",
		},
		DeviceClass: DeviceClassEnum,
		Value:       withVolume(func(v volumeReading) any { return v.Status }),
	},
	{
		Description: entity.Description{
			APIKey: "SYNO.Storage.CGI.Storage",
			Key:    "volume_size_total",
			Name:   "Total Size",
		},
		NativeUnit:  UnitBytes,
		DeviceClass: DeviceClassDataSize,
		StateClass:  StateClassMeasurement,
		Value:       withVolume(func(v volumeReading) any { return v.Total }),
		Attributes: func(snap client.Snapshots, id string) map[string]any {
			return volumeSizeAttributes(snap, id)
		},
	},
	{
		Description: entity.Description{
			APIKey: "SYNO.Storage.CGI.Storage",
			Key:    "volume_size_used",
			Name:   "Used Space",
		},
		NativeUnit:  UnitBytes,
		DeviceClass: DeviceClassDataSize,
		StateClass:  StateClassMeasurement,
		Value:       withVolume(func(v volumeReading) any { return v.Used }),
	},
	{
		Description: entity.Description{
			APIKey: "SYNO.Storage.CGI.Storage",
			Key:    "volume_percentage_used",
			Name:   "Volume Used",
		},
		NativeUnit: UnitPercent,
		StateClass: StateClassMeasurement,
		Value: withVolume(func(v volumeReading) any {
			if v.Total == 0 {
				return 0
			}
			return int(float64(v.Used) / float64(v.Total) * 100)
		}),
	},
}

// DiskSensors describe per-disk readings. The keys contain "disk".
var DiskSensors = []Description{
	{
		Description: entity.Description{
			APIKey: "SYNO.Storage.CGI.Storage",
			Key:    "disk_status",
			Name:   "Status",
		},
		DeviceClass: DeviceClassEnum,
		Value:       withDisk(func(d *storage.Disk) any { return d.Status }),
	},
	{
		Description: entity.Description{
			APIKey: "SYNO.Storage.CGI.Storage",
			Key:    "disk_smart_status",
			Name:   "Status (Smart)",
		},
		EntityCategory:   CategoryDiagnostic,
		EnabledByDefault: false,
		Value:            withDisk(func(d *storage.Disk) any { return d.SmartStatus }),
	},
	{
		Description: entity.Description{
			APIKey: "SYNO.Storage.CGI.Storage",
			Key:    "disk_temp",
			Name:   "Temperature",
		},
		NativeUnit:  UnitCelsius,
		DeviceClass: DeviceClassTemperature,
		StateClass:  StateClassMeasurement,
		Value:       withDisk(func(d *storage.Disk) any { return d.Temperature }),
	},
}

// USBDeviceSensors describe per-USB-device readings. The keys contain
// "device".
var USBDeviceSensors = []Description{
	{
		Description: entity.Description{
			APIKey: externalusb.API,
			Key:    "device_size_total",
			Name:   "Device Size",
		},
		NativeUnit:  UnitBytes,
		DeviceClass: DeviceClassDataSize,
		Value: withUSBDevice(func(d *externalusb.Device) any {
			return d.SizeTotal * units.MiB
		}),
	},
}

// USBPartitionSensors describe per-USB-partition readings. The keys contain
// "partition".
var USBPartitionSensors = []Description{
	{
		Description: entity.Description{
			APIKey: externalusb.API,
			Key:    "partition_size_total",
			Name:   "Partition Size",
		},
		NativeUnit:  UnitBytes,
		DeviceClass: DeviceClassDataSize,
		Value: withUSBPartition(func(p *externalusb.Partition) any {
			return p.SizeTotal * units.MiB
		}),
	},
	{
		Description: entity.Description{
			APIKey: externalusb.API,
			Key:    "partition_percentage_used",
			Name:   "Partition Used",
		},
		NativeUnit: UnitPercent,
		StateClass: StateClassMeasurement,
		Value: withUSBPartition(func(p *externalusb.Partition) any {
			if p.SizeTotal == 0 {
				return 0
			}
			return int(float64(p.SizeUsed) / float64(p.SizeTotal) * 100)
		}),
	},
}

// BackupTaskSensors describe per-backup-task readings.
var BackupTaskSensors = []Description{
	{
		Description: entity.Description{
			APIKey: backup.API,
			Key:    "backup_task_status",
			Name:   "Status",
		},
		DeviceClass: DeviceClassEnum,
		Value:       withBackupTask(func(t *backup.Task) any { return t.Status }),
	},
	{
		Description: entity.Description{
			APIKey: backup.API,
			Key:    "backup_task_last_result",
			Name:   "Last Result",
		},
		EntityCategory: CategoryDiagnostic,
		Value:          withBackupTask(func(t *backup.Task) any { return t.LastBackupResult }),
	},
}

// volumeSizeAttributes annotates raw byte counts with human-readable sizes.
func volumeSizeAttributes(snap client.Snapshots, id string) map[string]any {
	if snap.Storage == nil {
		return nil
	}
	volume := snap.Storage.GetVolume(id)
	if volume == nil {
		return nil
	}
	total, _ := strconv.ParseInt(volume.Size.Total, 10, 64)
	used, _ := strconv.ParseInt(volume.Size.Used, 10, 64)
	return map[string]any{
		"total": units.BytesSize(float64(total)),
		"used":  units.BytesSize(float64(used)),
	}
}
