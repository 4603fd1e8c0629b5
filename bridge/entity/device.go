package entity

import (
	"fmt"
	"strings"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/coordinator"
)

// Device is an entity bound to a sub-device of the NAS: a volume, a disk, an
// external USB device or a USB partition. Which lookup runs is decided by
// the first of the literal substrings "volume", "disk", "device",
// "partition" found in the description key.
type Device[C coordinator.Reader] struct {
	Base[C]

	deviceID           string
	deviceName         string
	deviceManufacturer string
	deviceModel        string
	deviceFirmware     string
	deviceType         string
}

// NewDevice builds a sub-device entity. Volume and disk ids must resolve;
// USB device and partition scans that find no match leave the sub-device
// fields empty without error, since hot-plug media legitimately come and go.
func NewDevice[C coordinator.Reader](source Source, coord C, description Description, deviceID string) (*Device[C], error) {
	base, err := NewBase(source, coord, description)
	if err != nil {
		return nil, err
	}
	d := &Device[C]{Base: *base, deviceID: deviceID}

	information := source.Information()
	network := source.Network()

	switch {
	case strings.Contains(description.Key, "volume"):
		store := source.Storage()
		if store == nil {
			return nil, fmt.Errorf("%w: storage", ErrSnapshotMissing)
		}
		volume := store.GetVolume(deviceID)
		if volume == nil {
			return nil, fmt.Errorf("%w: volume %q", ErrDeviceNotFound, deviceID)
		}
		// volumes have no name of their own
		d.deviceName = capitalize(strings.ReplaceAll(volume.ID, "_", " "))
		d.deviceManufacturer = Manufacturer
		d.deviceModel = information.Model
		d.deviceFirmware = information.VersionString
		d.deviceType = formatVolumeType(volume.DeviceType)

	case strings.Contains(description.Key, "disk"):
		store := source.Storage()
		if store == nil {
			return nil, fmt.Errorf("%w: storage", ErrSnapshotMissing)
		}
		disk := store.GetDisk(deviceID)
		if disk == nil {
			return nil, fmt.Errorf("%w: disk %q", ErrDeviceNotFound, deviceID)
		}
		d.deviceName = disk.Name
		d.deviceManufacturer = disk.Vendor
		d.deviceModel = strings.TrimSpace(disk.Model)
		d.deviceFirmware = disk.Firm
		d.deviceType = disk.DiskType

	case strings.Contains(description.Key, "device"):
		usb := source.ExternalUSB()
		if usb == nil {
			return nil, fmt.Errorf("%w: external_usb", ErrSnapshotMissing)
		}
		for _, device := range usb.GetDevices() {
			if device.Name == deviceID {
				d.deviceName = device.Name
				d.deviceManufacturer = device.Manufacturer
				d.deviceModel = device.ProductName
				d.deviceType = device.Type
				break
			}
		}

	case strings.Contains(description.Key, "partition"):
		usb := source.ExternalUSB()
		if usb == nil {
			return nil, fmt.Errorf("%w: external_usb", ErrSnapshotMissing)
		}
	scan:
		for _, device := range usb.GetDevices() {
			for _, partition := range device.Partitions {
				if partition.Title == deviceID {
					d.deviceName = partition.Title
					d.deviceManufacturer = Manufacturer
					d.deviceModel = partition.Filesystem
					break scan
				}
			}
		}
	}

	d.uniqueID += "_" + deviceID
	d.deviceInfo = DeviceInfo{
		Identifiers:      []string{identifier(information.Serial + "_" + deviceID)},
		Name:             fmt.Sprintf("%s (%s)", network.Hostname, d.deviceName),
		Manufacturer:     d.deviceManufacturer,
		Model:            d.deviceModel,
		SwVersion:        d.deviceFirmware,
		ViaDevice:        identifier(information.Serial),
		ConfigurationURL: source.ConfigURL(),
	}
	return d, nil
}

// DeviceID is the sub-device id the entity was resolved against.
func (d *Device[C]) DeviceID() string {
	return d.deviceID
}

// DeviceName is the resolved sub-device display name, empty when the lookup
// found nothing.
func (d *Device[C]) DeviceName() string {
	return d.deviceName
}

// DeviceManufacturer is the resolved sub-device vendor.
func (d *Device[C]) DeviceManufacturer() string {
	return d.deviceManufacturer
}

// DeviceModel is the resolved sub-device model.
func (d *Device[C]) DeviceModel() string {
	return d.deviceModel
}

// DeviceFirmware is the resolved sub-device firmware revision.
func (d *Device[C]) DeviceFirmware() string {
	return d.deviceFirmware
}

// DeviceType describes the sub-device kind, e.g. "RAID 1" or "ssd".
func (d *Device[C]) DeviceType() string {
	return d.deviceType
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// formatVolumeType turns a raw device_type like "raid_1" or "shr_2" into its
// display form ("RAID 1", "SHR 2").
func formatVolumeType(deviceType string) string {
	t := strings.ReplaceAll(deviceType, "_", " ")
	t = strings.ReplaceAll(t, "raid", "RAID")
	t = strings.ReplaceAll(t, "shr", "SHR")
	return t
}
