package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/backup"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/externalusb"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/storage"
)

type fakeReader struct{}

func (fakeReader) LastSuccess() time.Time { return time.Time{} }
func (fakeReader) LastError() error       { return nil }

type fakeSource struct {
	information *dsm.Information
	network     *dsm.Network
	storage     *storage.Storage
	usb         *externalusb.ExternalUSB
	hyperBackup *backup.HyperBackup

	subscribed   []string
	unsubscribed []string
}

func (f *fakeSource) Information() *dsm.Information         { return f.information }
func (f *fakeSource) Network() *dsm.Network                 { return f.network }
func (f *fakeSource) Storage() *storage.Storage             { return f.storage }
func (f *fakeSource) ExternalUSB() *externalusb.ExternalUSB { return f.usb }
func (f *fakeSource) HyperBackup() *backup.HyperBackup      { return f.hyperBackup }
func (f *fakeSource) ConfigURL() string                     { return "https://nas.local:5001/" }

func (f *fakeSource) Subscribe(apiKey, uniqueID string) func() {
	f.subscribed = append(f.subscribed, apiKey+" "+uniqueID)
	return func() {
		f.unsubscribed = append(f.unsubscribed, apiKey+" "+uniqueID)
	}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		information: &dsm.Information{
			Model:         "DS920+",
			Serial:        "ABC123",
			VersionString: "DSM 7.2.1-69057 Update 3",
		},
		network: &dsm.Network{Hostname: "nas"},
		storage: &storage.Storage{
			Volumes: []storage.Volume{
				{ID: "volume_1", DeviceType: "raid_1", Status: "normal", FsType: "btrfs"},
				{ID: "volume_2", DeviceType: "shr_2", Status: "normal", FsType: "ext4"},
			},
			Disks: []storage.Disk{
				{
					ID:       "disk1",
					Name:     "Drive 1",
					Vendor:   "Seagate",
					Model:    "  ModelX ",
					Firm:     "SC60",
					DiskType: "ssd",
				},
			},
		},
		usb: &externalusb.ExternalUSB{
			Devices: []externalusb.Device{
				{
					ID:           "usb1",
					Name:         "USB Disk 1",
					Type:         "usbDisk",
					Manufacturer: "SanDisk",
					ProductName:  "Cruzer",
					Partitions: []externalusb.Partition{
						{Title: "USB Disk 1 Partition 1", Filesystem: "ntfs"},
					},
				},
			},
		},
		hyperBackup: &backup.HyperBackup{
			Tasks: []backup.Task{
				{TaskID: 1, Name: "Nightly", TransferType: "image_local", Status: "none"},
			},
		},
	}
}

func TestBaseUniqueID(t *testing.T) {
	source := newFakeSource()
	base, err := NewBase(source, fakeReader{}, Description{
		APIKey: "storage",
		Key:    "disk_temp",
		Name:   "Temperature",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123_storage:disk_temp", base.UniqueID())
}

func TestBaseDeviceInfo(t *testing.T) {
	source := newFakeSource()
	base, err := NewBase(source, fakeReader{}, Description{APIKey: "information", Key: "temperature"})
	require.NoError(t, err)

	info := base.DeviceInfo()
	assert.Equal(t, []string{"synology_dsm:ABC123"}, info.Identifiers)
	assert.Equal(t, "nas", info.Name)
	assert.Equal(t, "Synology", info.Manufacturer)
	assert.Equal(t, "DS920+", info.Model)
	assert.Equal(t, "DSM 7.2.1-69057 Update 3", info.SwVersion)
	assert.Equal(t, "https://nas.local:5001/", info.ConfigurationURL)
}

func TestBaseRequiresSnapshots(t *testing.T) {
	source := newFakeSource()
	source.information = nil
	_, err := NewBase(source, fakeReader{}, Description{APIKey: "information", Key: "temperature"})
	require.ErrorIs(t, err, ErrSnapshotMissing)

	source = newFakeSource()
	source.network = nil
	_, err = NewBase(source, fakeReader{}, Description{APIKey: "information", Key: "temperature"})
	require.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestBaseAttachDetach(t *testing.T) {
	source := newFakeSource()
	base, err := NewBase(source, fakeReader{}, Description{APIKey: "utilisation", Key: "cpu_total_load"})
	require.NoError(t, err)

	base.Attach()
	require.Equal(t, []string{"utilisation ABC123_utilisation:cpu_total_load"}, source.subscribed)

	base.Detach()
	assert.Equal(t, []string{"utilisation ABC123_utilisation:cpu_total_load"}, source.unsubscribed)

	// second detach is a no-op
	base.Detach()
	assert.Len(t, source.unsubscribed, 1)
}

func TestDeviceVolume(t *testing.T) {
	source := newFakeSource()
	device, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "storage",
		Key:    "volume_status",
		Name:   "Status",
	}, "volume_1")
	require.NoError(t, err)

	assert.Equal(t, "ABC123_storage:volume_status_volume_1", device.UniqueID())
	assert.Equal(t, "Volume 1", device.DeviceName())
	assert.Equal(t, "Synology", device.DeviceManufacturer())
	assert.Equal(t, "DS920+", device.DeviceModel())
	assert.Equal(t, "RAID 1", device.DeviceType())
	assert.Equal(t, "nas (Volume 1)", device.DeviceInfo().Name)
	assert.Equal(t, "synology_dsm:ABC123", device.DeviceInfo().ViaDevice)
}

func TestDeviceVolumeTypeSHR(t *testing.T) {
	source := newFakeSource()
	device, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "storage",
		Key:    "volume_status",
	}, "volume_2")
	require.NoError(t, err)
	assert.Equal(t, "SHR 2", device.DeviceType())
}

func TestDeviceVolumeNotFound(t *testing.T) {
	source := newFakeSource()
	_, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "storage",
		Key:    "volume_status",
	}, "volume_9")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestDeviceDisk(t *testing.T) {
	source := newFakeSource()
	device, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "storage",
		Key:    "disk_temp",
		Name:   "Temperature",
	}, "disk1")
	require.NoError(t, err)

	assert.Equal(t, "ABC123_storage:disk_temp_disk1", device.UniqueID())
	assert.Equal(t, "Drive 1", device.DeviceName())
	assert.Equal(t, "Seagate", device.DeviceManufacturer())
	assert.Equal(t, "ModelX", device.DeviceModel(), "model should be whitespace-trimmed")
	assert.Equal(t, "SC60", device.DeviceFirmware())
	assert.Equal(t, "ssd", device.DeviceType())
}

func TestDeviceDiskNotFound(t *testing.T) {
	source := newFakeSource()
	_, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "storage",
		Key:    "disk_temp",
	}, "disk9")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestDeviceMissingStorageSnapshot(t *testing.T) {
	source := newFakeSource()
	source.storage = nil
	_, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "storage",
		Key:    "disk_temp",
	}, "disk1")
	require.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestDeviceUSB(t *testing.T) {
	source := newFakeSource()
	device, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "external_usb",
		Key:    "device_size_total",
	}, "USB Disk 1")
	require.NoError(t, err)

	assert.Equal(t, "USB Disk 1", device.DeviceName())
	assert.Equal(t, "SanDisk", device.DeviceManufacturer())
	assert.Equal(t, "Cruzer", device.DeviceModel())
	assert.Equal(t, "usbDisk", device.DeviceType())
}

func TestDeviceUSBMissIsSilent(t *testing.T) {
	source := newFakeSource()
	device, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "external_usb",
		Key:    "device_size_total",
	}, "USB Disk 9")
	require.NoError(t, err)

	assert.Empty(t, device.DeviceName())
	assert.Empty(t, device.DeviceManufacturer())
	assert.Empty(t, device.DeviceModel())
	assert.Equal(t, "ABC123_external_usb:device_size_total_USB Disk 9", device.UniqueID())
}

func TestDeviceUSBPartition(t *testing.T) {
	source := newFakeSource()
	device, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "external_usb",
		Key:    "partition_size_total",
	}, "USB Disk 1 Partition 1")
	require.NoError(t, err)

	assert.Equal(t, "USB Disk 1 Partition 1", device.DeviceName())
	assert.Equal(t, "Synology", device.DeviceManufacturer())
	assert.Equal(t, "ntfs", device.DeviceModel())
}

func TestDeviceUSBPartitionMissIsSilent(t *testing.T) {
	source := newFakeSource()
	device, err := NewDevice(source, fakeReader{}, Description{
		APIKey: "external_usb",
		Key:    "partition_size_total",
	}, "USB Disk 9 Partition 1")
	require.NoError(t, err)
	assert.Empty(t, device.DeviceName())
}

func TestBackupTask(t *testing.T) {
	source := newFakeSource()
	task, err := NewBackupTask(source, fakeReader{}, Description{
		APIKey: "hyper_backup",
		Key:    "backup_task_status",
		Name:   "Status",
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, "ABC123_hyper_backup:backup_task_status_hyper_1", task.UniqueID())
	assert.Equal(t, "Nightly Status", task.Name())
	assert.Equal(t, "Nightly", task.DeviceName())
	assert.Equal(t, "Local Image Backup Task", task.DeviceModel())
	assert.Equal(t, "synology_dsm:ABC123", task.DeviceInfo().ViaDevice)
}

func TestBackupTaskNotFound(t *testing.T) {
	source := newFakeSource()
	_, err := NewBackupTask(source, fakeReader{}, Description{
		APIKey: "hyper_backup",
		Key:    "backup_task_status",
	}, 42)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestBackupTaskMissingSnapshot(t *testing.T) {
	source := newFakeSource()
	source.hyperBackup = nil
	_, err := NewBackupTask(source, fakeReader{}, Description{
		APIKey: "hyper_backup",
		Key:    "backup_task_status",
	}, 1)
	require.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestFormatTransferType(t *testing.T) {
	for raw, want := range map[string]string{
		"image_local":  "Local Image Backup Task",
		"image_remote": "Remote Image Backup Task",
		"local":        "Local Backup Task",
		"usbcopy":      "Usbcopy Backup Task",
	} {
		assert.Equal(t, want, formatTransferType(raw))
	}
}

func TestFormatVolumeType(t *testing.T) {
	for raw, want := range map[string]string{
		"raid_1": "RAID 1",
		"raid_5": "RAID 5",
		"shr_2":  "SHR 2",
		"basic":  "basic",
	} {
		assert.Equal(t, want, formatVolumeType(raw))
	}
}
