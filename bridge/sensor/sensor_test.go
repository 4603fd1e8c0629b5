package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/backup"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/core"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/externalusb"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/storage"
)

type fakeSource struct {
	snap client.Snapshots
}

func (f *fakeSource) Information() *dsm.Information         { return f.snap.Information }
func (f *fakeSource) Network() *dsm.Network                 { return f.snap.Network }
func (f *fakeSource) Storage() *storage.Storage             { return f.snap.Storage }
func (f *fakeSource) ExternalUSB() *externalusb.ExternalUSB { return f.snap.ExternalUSB }
func (f *fakeSource) HyperBackup() *backup.HyperBackup      { return f.snap.HyperBackup }
func (f *fakeSource) ConfigURL() string                     { return "https://nas.local:5001/" }
func (f *fakeSource) Subscribe(string, string) func()       { return func() {} }

func testSnapshots() client.Snapshots {
	return client.Snapshots{
		Information: &dsm.Information{
			Model:         "DS920+",
			Serial:        "ABC123",
			Temperature:   42,
			VersionString: "DSM 7.2.1-69057 Update 3",
		},
		Network: &dsm.Network{Hostname: "nas"},
		Utilization: &core.Utilization{
			CPU:    core.CPU{UserLoad: 10, SystemLoad: 5, OtherLoad: 2},
			Memory: core.Memory{RealUsage: 37},
			Network: []core.Network{
				{Device: "eth0", RX: 100, TX: 50},
				{Device: "total", RX: 1200, TX: 800},
			},
		},
		Storage: &storage.Storage{
			Volumes: []storage.Volume{
				{
					ID:         "volume_1",
					DeviceType: "raid_1",
					Status:     "normal",
					Size:       storage.VolumeSize{Total: "1000", Used: "250"},
				},
			},
			Disks: []storage.Disk{
				{ID: "disk1", Name: "Drive 1", Temperature: 31, Status: "normal"},
			},
		},
		ExternalUSB: &externalusb.ExternalUSB{
			Devices: []externalusb.Device{
				{
					Name:      "USB Disk 1",
					SizeTotal: 4,
					Partitions: []externalusb.Partition{
						{Title: "USB Disk 1 Partition 1", SizeTotal: 4, SizeUsed: 1},
					},
				},
			},
		},
		HyperBackup: &backup.HyperBackup{
			Tasks: []backup.Task{
				{TaskID: 1, Name: "Nightly", TransferType: "image_local", Status: "none"},
			},
		},
	}
}

func findDescription(t *testing.T, set []Description, key string) Description {
	t.Helper()
	for _, desc := range set {
		if desc.Key == key {
			return desc
		}
	}
	t.Fatalf("no description with key %q", key)
	return Description{}
}

func TestFormatState(t *testing.T) {
	assert.Equal(t, "normal", formatState("normal"))
	assert.Equal(t, "42", formatState(42))
	assert.Equal(t, "1200", formatState(int64(1200)))
	assert.Equal(t, "36.5", formatState(36.5))
}

func TestUtilisationReaders(t *testing.T) {
	snap := testSnapshots()

	v, ok := findDescription(t, UtilisationSensors, "cpu_total_load").Value(snap, "")
	require.True(t, ok)
	assert.Equal(t, 17, v)

	v, ok = findDescription(t, UtilisationSensors, "network_up").Value(snap, "")
	require.True(t, ok)
	assert.Equal(t, int64(800), v)

	v, ok = findDescription(t, UtilisationSensors, "network_down").Value(snap, "")
	require.True(t, ok)
	assert.Equal(t, int64(1200), v)

	snap.Utilization = nil
	_, ok = findDescription(t, UtilisationSensors, "cpu_total_load").Value(snap, "")
	assert.False(t, ok)
}

func TestVolumeReaders(t *testing.T) {
	snap := testSnapshots()

	v, ok := findDescription(t, VolumeSensors, "volume_status").Value(snap, "volume_1")
	require.True(t, ok)
	assert.Equal(t, "normal", v)

	v, ok = findDescription(t, VolumeSensors, "volume_size_total").Value(snap, "volume_1")
	require.True(t, ok)
	assert.Equal(t, int64(1000), v)

	v, ok = findDescription(t, VolumeSensors, "volume_percentage_used").Value(snap, "volume_1")
	require.True(t, ok)
	assert.Equal(t, 25, v)

	_, ok = findDescription(t, VolumeSensors, "volume_status").Value(snap, "volume_9")
	assert.False(t, ok)
}

func TestVolumeSizeAttributes(t *testing.T) {
	snap := testSnapshots()
	attrs := findDescription(t, VolumeSensors, "volume_size_total").Attributes(snap, "volume_1")
	require.NotNil(t, attrs)
	assert.Equal(t, "1000B", attrs["total"])
	assert.Equal(t, "250B", attrs["used"])

	assert.Nil(t, findDescription(t, VolumeSensors, "volume_size_total").Attributes(snap, "volume_9"))
}

func TestUSBReaders(t *testing.T) {
	snap := testSnapshots()

	// DSM reports USB sizes in MiB
	v, ok := findDescription(t, USBDeviceSensors, "device_size_total").Value(snap, "USB Disk 1")
	require.True(t, ok)
	assert.Equal(t, int64(4*1024*1024), v)

	v, ok = findDescription(t, USBPartitionSensors, "partition_percentage_used").
		Value(snap, "USB Disk 1 Partition 1")
	require.True(t, ok)
	assert.Equal(t, 25, v)

	_, ok = findDescription(t, USBDeviceSensors, "device_size_total").Value(snap, "USB Disk 9")
	assert.False(t, ok)
}

func TestBackupTaskReaders(t *testing.T) {
	snap := testSnapshots()

	v, ok := findDescription(t, BackupTaskSensors, "backup_task_status").Value(snap, "1")
	require.True(t, ok)
	assert.Equal(t, "none", v)

	_, ok = findDescription(t, BackupTaskSensors, "backup_task_status").Value(snap, "9")
	assert.False(t, ok)

	_, ok = findDescription(t, BackupTaskSensors, "backup_task_status").Value(snap, "not-a-number")
	assert.False(t, ok)
}

func TestBuild(t *testing.T) {
	source := &fakeSource{snap: testSnapshots()}
	sensors, err := Build(source, nil, nil)
	require.NoError(t, err)

	// 8 NAS-level, 4 volume, 3 disk, 1 USB device, 2 USB partition, 2 backup
	require.Len(t, sensors, 20)

	byID := map[string]*Sensor{}
	for _, s := range sensors {
		byID[s.UniqueID()] = s
	}

	temp, ok := byID["ABC123_SYNO.Storage.CGI.Storage:disk_temp_disk1"]
	require.True(t, ok)
	state, ok := temp.State(source.snap)
	require.True(t, ok)
	assert.Equal(t, "31", state)
	assert.Equal(t, "nas (Drive 1)", temp.DeviceInfo().Name)

	task, ok := byID["ABC123_SYNO.Backup.Task:backup_task_status_hyper_1"]
	require.True(t, ok)
	assert.Equal(t, "Nightly Status", task.Name())
}

func TestBuildRequiresInformation(t *testing.T) {
	snap := testSnapshots()
	snap.Information = nil
	_, err := Build(&fakeSource{snap: snap}, nil, nil)
	require.Error(t, err)
}

func TestBuildWithoutOptionalSnapshots(t *testing.T) {
	snap := testSnapshots()
	snap.Storage = nil
	snap.ExternalUSB = nil
	snap.HyperBackup = nil

	sensors, err := Build(&fakeSource{snap: snap}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, sensors, 8)
}
